package edge

import (
	"math"
	"strings"
	"testing"

	"honnef.co/go/curve"
)

func TestEdgeLengthIsLive(t *testing.T) {
	a := NewArena()
	e := NewFromPoints(a, curve.Pt(0, 0), curve.Pt(3, 4))
	if got := e.Length(); got != 5 {
		t.Fatalf("Length = %v, want 5", got)
	}
	a.Set(e.End, curve.Pt(6, 8))
	if got := e.Length(); got != 10 {
		t.Errorf("Length after move = %v, want 10", got)
	}
}

func TestSharedVertexMovesBothEdges(t *testing.T) {
	a := NewArena()
	p, q, r := a.Add(curve.Pt(0, 0)), a.Add(curve.Pt(1, 0)), a.Add(curve.Pt(1, 1))
	e1, e2 := New(a, p, q), New(a, q, r)

	a.Set(q, curve.Pt(2, 0))
	if e1.EndPoint() != e2.StartPoint() {
		t.Errorf("shared vertex diverged: %v vs %v", e1.EndPoint(), e2.StartPoint())
	}
	if e1.EndPoint() != curve.Pt(2, 0) {
		t.Errorf("EndPoint = %v, want (2, 0)", e1.EndPoint())
	}
}

func TestEdgeEqual(t *testing.T) {
	a := NewArena()
	curved := func(p, q curve.Point, c Control) *Edge {
		e := NewFromPoints(a, p, q)
		e.Curvature = &c
		return e
	}

	tests := []struct {
		name string
		e, o *Edge
		want bool
	}{
		{
			name: "StraightSameLengthDifferentPlace",
			e:    NewFromPoints(a, curve.Pt(0, 0), curve.Pt(3, 4)),
			o:    NewFromPoints(a, curve.Pt(10, 10), curve.Pt(15, 10)),
			want: true,
		},
		{
			name: "StraightDifferentLength",
			e:    NewFromPoints(a, curve.Pt(0, 0), curve.Pt(3, 4)),
			o:    NewFromPoints(a, curve.Pt(0, 0), curve.Pt(6, 0)),
			want: false,
		},
		{
			name: "CurvedVsStraight",
			e:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.5, H: 0.2}),
			o:    NewFromPoints(a, curve.Pt(0, 0), curve.Pt(10, 0)),
			want: false,
		},
		{
			name: "CurvedSameShape",
			e:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.3, H: 0.2}),
			o:    curved(curve.Pt(0, 5), curve.Pt(0, 15), Control{T: 0.3, H: 0.2}),
			want: true,
		},
		{
			name: "CurvedReversedShape",
			e:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.3, H: 0.2}),
			o:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.7, H: -0.2}),
			want: true,
		},
		{
			name: "CurvedDifferentBulge",
			e:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.5, H: 0.2}),
			o:    curved(curve.Pt(0, 0), curve.Pt(10, 0), Control{T: 0.5, H: 0.3}),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Equal(tt.o); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if got := tt.o.Equal(tt.e); got != tt.want {
				t.Errorf("symmetric Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeFlipKeepsCurve(t *testing.T) {
	a := NewArena()
	e := NewFromPoints(a, curve.Pt(0, 0), curve.Pt(10, 0))
	e.Curvature = &Control{T: 0.3, H: 0.2}
	before, _ := e.ControlPoint()

	e.Flip()

	if e.StartPoint() != curve.Pt(10, 0) || e.EndPoint() != curve.Pt(0, 0) {
		t.Fatalf("endpoints not swapped: %s", e)
	}
	after, _ := e.ControlPoint()
	if d := before.Distance(after); d > 1e-12 {
		t.Errorf("control point moved from %v to %v", before, after)
	}
}

func TestEdgeArcLength(t *testing.T) {
	a := NewArena()
	e := NewFromPoints(a, curve.Pt(0, 0), curve.Pt(10, 0))
	if got := e.ArcLength(1e-9); got != 10 {
		t.Errorf("straight ArcLength = %v, want 10", got)
	}
	e.Curvature = &Control{T: 0.5, H: 0.5}
	got := e.ArcLength(1e-9)
	if got <= 10 || math.IsNaN(got) {
		t.Errorf("curved ArcLength = %v, want > 10", got)
	}
	if e.Length() != 10 {
		t.Errorf("Length should ignore curvature, got %v", e.Length())
	}
}

func TestEdgeString(t *testing.T) {
	a := NewArena()
	e := NewFromPoints(a, curve.Pt(0, 0), curve.Pt(1.5, 2))
	if got, want := e.String(), "[0.00, 0.00] -> [1.50, 2.00]"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	e.Curvature = &Control{T: 0.5, H: -0.25}
	if got := e.String(); !strings.HasSuffix(got, "~(0.50, -0.25)") {
		t.Errorf("curved String = %q", got)
	}
}
