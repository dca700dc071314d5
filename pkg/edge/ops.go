package edge

import (
	"math"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/errors"
)

// SimpleSequence creates an open chained sequence through pts.
func SimpleSequence(a *Arena, pts ...curve.Point) *Sequence {
	s := &Sequence{}
	if len(pts) < 2 {
		return s
	}
	prev := a.Add(pts[0])
	for _, p := range pts[1:] {
		next := a.Add(p)
		s.edges = append(s.edges, New(a, prev, next))
		prev = next
	}
	return s
}

// SimpleLoop creates a closed loop through pts.
func SimpleLoop(a *Arena, pts ...curve.Point) *Sequence {
	return SimpleSequence(a, pts...).CloseLoop()
}

// SplitEdge cuts e at the given fractions of its length, which must be strictly
// increasing and inside (0, 1). The pieces share e's endpoints and are chained
// through new vertices. If s contains e, the pieces replace it in s.
// Curved edges cannot be split.
func SplitEdge(s *Sequence, e *Edge, fractions ...float64) (*Sequence, error) {
	if e.Curvature != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot split curved edge %s", e)
	}
	prevF := 0.0
	for _, f := range fractions {
		if f <= prevF || f >= 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "split fractions must increase within (0, 1): %v", fractions)
		}
		prevF = f
	}

	a := e.arena
	start, end := e.StartPoint(), e.EndPoint()
	pieces := &Sequence{}
	prev := e.Start
	for _, f := range fractions {
		mid := a.Add(start.Lerp(end, f))
		pieces.edges = append(pieces.edges, newPiece(e, prev, mid))
		prev = mid
	}
	pieces.edges = append(pieces.edges, newPiece(e, prev, e.End))

	if s != nil && s.Contains(e) {
		if _, err := s.SubstituteEdge(e, pieces); err != nil {
			return nil, err
		}
	}
	return pieces, nil
}

// InsertDart cuts dart into the straight edge e.
//
// The dart is an open chained sequence; the segment from its first to its last
// vertex is its base. The base is laid onto e centred at fraction offset of
// e's length, and the dart is turned so that it points to the left of e
// (towards the inside of a counter-clockwise outline), or to the right when
// right is set. The dart template itself is not modified.
//
// The returned run starts at e's start vertex and ends at e's end vertex.
// If s contains e, the run replaces it in s.
func InsertDart(s *Sequence, e *Edge, dart *Sequence, offset float64, right bool) (*Sequence, error) {
	if e.Curvature != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot insert dart into curved edge %s", e)
	}
	if dart.Len() < 2 || !dart.IsChained() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dart must be a chained sequence of at least two edges")
	}

	pts := dart.Points()
	base0, base1 := dart.First().StartPoint(), dart.Last().EndPoint()
	baseVec := base1.Sub(base0)
	width := baseVec.Hypot()

	start, end := e.StartPoint(), e.EndPoint()
	edgeVec := end.Sub(start)
	l := edgeVec.Hypot()
	if err := checkEdgeLength(l); err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dart base has zero width")
	}
	center := offset * l
	if center-width/2 < 0 || center+width/2 > l {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"dart of width %.2f does not fit at offset %.2f of edge with length %.2f", width, offset, l)
	}

	u := edgeVec.Normalize()
	p1 := start.Translate(u.Mul(center - width/2))
	p2 := start.Translate(u.Mul(center + width/2))

	place := curve.Translate(curve.Vec2(base0).Negate()).
		ThenRotate(edgeVec.Angle() - baseVec.Angle()).
		ThenTranslate(curve.Vec2(p1))

	mirrored := false
	if tip, ok := dartTip(pts, base0, baseVec); ok {
		side := u.Cross(tip.Transform(place).Sub(p1))
		if (side < 0) != right {
			place = place.Mul(curve.Reflect(base0, baseVec))
			mirrored = true
		}
	}

	a := e.arena
	ids := make([]VertexID, len(pts))
	for i, p := range pts {
		switch i {
		case 0:
			ids[i] = a.Add(p1)
		case len(pts) - 1:
			ids[i] = a.Add(p2)
		default:
			ids[i] = a.Add(p.Transform(place))
		}
	}

	run := &Sequence{}
	run.edges = append(run.edges, newPiece(e, e.Start, ids[0]))
	for i, de := range dart.edges {
		ne := New(a, ids[i], ids[i+1])
		if de.Curvature != nil {
			c := *de.Curvature
			if mirrored {
				c.H = -c.H
			}
			ne.Curvature = &c
		}
		run.edges = append(run.edges, ne)
	}
	run.edges = append(run.edges, newPiece(e, ids[len(ids)-1], e.End))

	if s != nil && s.Contains(e) {
		if _, err := s.SubstituteEdge(e, run); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// dartTip returns the interior dart vertex farthest from the base line.
func dartTip(pts []curve.Point, base0 curve.Point, baseVec curve.Vec2) (curve.Point, bool) {
	var (
		tip  curve.Point
		best = -1.0
	)
	n := baseVec.Normalize()
	for _, p := range pts[1 : len(pts)-1] {
		if d := math.Abs(n.Cross(p.Sub(base0))); d > best {
			tip, best = p, d
		}
	}
	return tip, best > 0
}

func newPiece(orig *Edge, start, end VertexID) *Edge {
	ne := New(orig.arena, start, end)
	ne.GeometricID = orig.GeometricID
	return ne
}
