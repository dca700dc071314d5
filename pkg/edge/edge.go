package edge

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// lengthTolerance is the relative tolerance used when comparing edge lengths
// for stitch compatibility.
const lengthTolerance = 1e-9

// Edge is a directed segment between two vertices of an arena, optionally
// curved as a quadratic Bézier whose control point is stored relative to the
// edge.
//
// The zero value is not usable; create edges with [New] or [NewFromPoints].
type Edge struct {
	Start VertexID
	End   VertexID

	// Curvature is nil for straight edges.
	Curvature *Control

	// GeometricID disambiguates the pieces of a logical edge that was split
	// (e.g. by a dart). It is filled in when a panel is assembled.
	GeometricID int

	arena *Arena
}

// New creates a straight edge between two existing vertices of a.
func New(a *Arena, start, end VertexID) *Edge {
	return &Edge{Start: start, End: end, arena: a}
}

// NewFromPoints adds two fresh vertices to a and connects them.
func NewFromPoints(a *Arena, start, end curve.Point) *Edge {
	return New(a, a.Add(start), a.Add(end))
}

// Arena returns the arena the edge's vertices live in.
func (e *Edge) Arena() *Arena { return e.arena }

// StartPoint returns the current position of the start vertex.
func (e *Edge) StartPoint() curve.Point { return e.arena.At(e.Start) }

// EndPoint returns the current position of the end vertex.
func (e *Edge) EndPoint() curve.Point { return e.arena.At(e.End) }

// Length returns the distance between the current endpoint positions.
// It is evaluated on every call because vertices may move through any edge
// sharing them.
func (e *Edge) Length() float64 {
	return e.StartPoint().Distance(e.EndPoint())
}

// IsCurved reports whether the edge carries curvature.
func (e *Edge) IsCurved() bool { return e.Curvature != nil }

// ControlPoint returns the absolute position of the curve control point.
func (e *Edge) ControlPoint() (curve.Point, bool) {
	if e.Curvature == nil {
		return curve.Point{}, false
	}
	return e.Curvature.at(e.StartPoint(), e.EndPoint()), true
}

// Segment returns the edge as a path segment: a line for straight edges and a
// quadratic Bézier for curved ones.
func (e *Edge) Segment() curve.PathSegment {
	if cp, ok := e.ControlPoint(); ok {
		return curve.QuadBez{P0: e.StartPoint(), P1: cp, P2: e.EndPoint()}.Seg()
	}
	return curve.Line{P0: e.StartPoint(), P1: e.EndPoint()}.Seg()
}

// ArcLength returns the length along the curve. For straight edges it equals
// [Edge.Length].
func (e *Edge) ArcLength(accuracy float64) float64 {
	cp, ok := e.ControlPoint()
	if !ok {
		return e.Length()
	}
	return curve.QuadBez{P0: e.StartPoint(), P1: cp, P2: e.EndPoint()}.Arclen(accuracy)
}

// Equal reports whether e and o may be stitched to each other: the lengths
// match and the curve shapes match, possibly with one of the edges reversed.
// The absolute placement of the edges is irrelevant.
func (e *Edge) Equal(o *Edge) bool {
	if o == nil {
		return false
	}
	l1, l2 := e.Length(), o.Length()
	if math.Abs(l1-l2) > lengthTolerance*max(1, l1, l2) {
		return false
	}
	switch {
	case e.Curvature == nil && o.Curvature == nil:
		return true
	case e.Curvature == nil || o.Curvature == nil:
		return false
	}
	c1, c2 := *e.Curvature, *o.Curvature
	if !near(math.Abs(c1.H), math.Abs(c2.H)) {
		return false
	}
	return near(c1.T, c2.T) || near(c1.T, 1-c2.T)
}

// Flip reverses the direction of the edge in place. The curvature is mirrored
// so the curve itself does not change.
func (e *Edge) Flip() {
	e.Start, e.End = e.End, e.Start
	if e.Curvature != nil {
		c := e.Curvature.Flipped()
		e.Curvature = &c
	}
}

// String formats the edge as "[x, y] -> [x, y]".
func (e *Edge) String() string {
	s, t := e.StartPoint(), e.EndPoint()
	str := fmt.Sprintf("[%.2f, %.2f] -> [%.2f, %.2f]", s.X, s.Y, t.X, t.Y)
	if e.Curvature != nil {
		str += fmt.Sprintf(" ~(%.2f, %.2f)", e.Curvature.T, e.Curvature.H)
	}
	return str
}

func (e *Edge) chain() []*Edge { return []*Edge{e} }

func near(a, b float64) bool {
	return math.Abs(a-b) <= lengthTolerance*max(1, math.Abs(a), math.Abs(b))
}
