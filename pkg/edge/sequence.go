package edge

import (
	"errors"
	"slices"

	"github.com/charmbracelet/log"
	"honnef.co/go/curve"
)

// ErrEdgeNotInSequence is returned by [Sequence.SubstituteEdge] when the edge
// is not part of the sequence. Membership is decided by identity.
var ErrEdgeNotInSequence = errors.New("edge not in sequence")

// Chainable is anything that can be flattened into a list of edges: an
// *[Edge], an [Edges] slice or a *[Sequence].
type Chainable interface {
	chain() []*Edge
}

// Edges is a plain list of edges usable wherever a [Chainable] is expected.
type Edges []*Edge

func (es Edges) chain() []*Edge { return es }

// Sequence is an ordered list of edges. See the package documentation for
// the chaining and loop contracts.
//
// All modifiers return the sequence itself to allow call chaining.
type Sequence struct {
	edges []*Edge
}

// NewSequence flattens items into a new sequence, preserving their order.
func NewSequence(items ...Chainable) *Sequence {
	s := &Sequence{}
	return s.Append(items...)
}

func (s *Sequence) chain() []*Edge {
	if s == nil {
		return nil
	}
	return s.edges
}

// Len returns the number of edges.
func (s *Sequence) Len() int { return len(s.edges) }

// At returns the i-th edge. Negative indices count from the end.
func (s *Sequence) At(i int) *Edge {
	if i < 0 {
		i += len(s.edges)
	}
	return s.edges[i]
}

// First returns the first edge, or nil for an empty sequence.
func (s *Sequence) First() *Edge {
	if len(s.edges) == 0 {
		return nil
	}
	return s.edges[0]
}

// Last returns the last edge, or nil for an empty sequence.
func (s *Sequence) Last() *Edge {
	if len(s.edges) == 0 {
		return nil
	}
	return s.edges[len(s.edges)-1]
}

// Slice returns a new sequence viewing edges [i, j). The edges themselves are
// shared with s.
func (s *Sequence) Slice(i, j int) *Sequence {
	return &Sequence{edges: slices.Clone(s.edges[i:j])}
}

// Edges returns a copy of the edge list.
func (s *Sequence) Edges() []*Edge { return slices.Clone(s.edges) }

// Index returns the position of e in the sequence, compared by identity, or -1.
func (s *Sequence) Index(e *Edge) int {
	return slices.Index(s.edges, e)
}

// Contains reports whether e itself (not an equal edge) is in the sequence.
func (s *Sequence) Contains(e *Edge) bool { return s.Index(e) >= 0 }

// IsLoop reports whether the sequence has at least two edges and the last
// edge ends at the vertex the first edge starts at.
func (s *Sequence) IsLoop() bool {
	if len(s.edges) < 2 {
		return false
	}
	return sameVertex(s.edges[0], s.edges[0].Start, s.Last(), s.Last().End)
}

// IsChained reports whether every edge starts at the vertex its predecessor
// ends at. Sequences with fewer than two edges are not considered chained.
//
// A broken chain is logged as a warning rather than returned as an error:
// outlines are often built incrementally and checked only once complete.
func (s *Sequence) IsChained() bool {
	if len(s.edges) < 2 {
		return false
	}
	for i := 1; i < len(s.edges); i++ {
		prev, cur := s.edges[i-1], s.edges[i]
		if !sameVertex(prev, prev.End, cur, cur.Start) {
			log.Warn("edge sequence is not properly chained", "index", i, "prev", prev, "edge", cur)
			return false
		}
	}
	return true
}

// Fractions returns the length of every edge divided by the total length.
func (s *Sequence) Fractions() []float64 {
	total := s.Length()
	out := make([]float64, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Length() / total
	}
	return out
}

// Length returns the sum of the straight-line lengths of all edges.
func (s *Sequence) Length() float64 {
	var total float64
	for _, e := range s.edges {
		total += e.Length()
	}
	return total
}

// Append adds items at the end. Nil items and nil edges are skipped.
func (s *Sequence) Append(items ...Chainable) *Sequence {
	s.edges = append(s.edges, flatten(items)...)
	return s
}

// Insert places items before position i, keeping their order. Nil items and
// nil edges are skipped.
func (s *Sequence) Insert(i int, items ...Chainable) *Sequence {
	s.edges = slices.Insert(s.edges, i, flatten(items)...)
	return s
}

func flatten(items []Chainable) []*Edge {
	var flat []*Edge
	for _, item := range items {
		if item == nil {
			continue
		}
		for _, e := range item.chain() {
			if e != nil {
				flat = append(flat, e)
			}
		}
	}
	return flat
}

// Pop removes the edge at position i.
func (s *Sequence) Pop(i int) *Sequence {
	if i < 0 {
		i += len(s.edges)
	}
	s.edges = slices.Delete(s.edges, i, i+1)
	return s
}

// Substitute replaces the edge at position i with items. Vertices are not
// reconnected: the caller must make the new edges share the neighbours'
// endpoints if the sequence is to stay chained.
func (s *Sequence) Substitute(i int, items ...Chainable) *Sequence {
	return s.Pop(i).Insert(i, items...)
}

// SubstituteEdge is [Sequence.Substitute] with the replaced edge given by
// identity.
func (s *Sequence) SubstituteEdge(e *Edge, items ...Chainable) (*Sequence, error) {
	i := s.Index(e)
	if i < 0 {
		return s, ErrEdgeNotInSequence
	}
	return s.Substitute(i, items...), nil
}

// Reverse reverses the edge order in place and flips every edge, so the
// sequence still reads start to end.
func (s *Sequence) Reverse() *Sequence {
	slices.Reverse(s.edges)
	for _, e := range s.edges {
		e.Flip()
	}
	return s
}

// Vertices returns every distinct vertex of the sequence in traversal order:
// the start of the first edge, then each edge's start and end as first seen.
func (s *Sequence) Vertices() []VertexID {
	var out []VertexID
	s.eachVertex(func(a *Arena, id VertexID) { out = append(out, id) })
	return out
}

// Points returns the positions of [Sequence.Vertices].
func (s *Sequence) Points() []curve.Point {
	var out []curve.Point
	s.eachVertex(func(a *Arena, id VertexID) { out = append(out, a.At(id)) })
	return out
}

// BoundingBox returns the smallest rectangle enclosing all edges, including
// curve bulges.
func (s *Sequence) BoundingBox() curve.Rect {
	var (
		box   curve.Rect
		first = true
	)
	for _, e := range s.edges {
		b := e.Segment().BoundingBox()
		if first {
			box, first = b, false
			continue
		}
		box = box.Union(b)
	}
	return box
}

// Transform applies aff to every distinct vertex exactly once. Relative
// curvature is preserved, which is correct for rigid motions and uniform
// scaling; use [Sequence.Mirror] for reflections.
func (s *Sequence) Transform(aff curve.Affine) *Sequence {
	s.eachVertex(func(a *Arena, id VertexID) {
		a.Set(id, a.At(id).Transform(aff))
	})
	return s
}

// Translate moves every vertex by v.
func (s *Sequence) Translate(v curve.Vec2) *Sequence {
	return s.Transform(curve.Translate(v))
}

// SnapTo translates the sequence rigidly so that the start of the first edge
// lands on origin.
func (s *Sequence) SnapTo(origin curve.Point) *Sequence {
	if len(s.edges) == 0 {
		return s
	}
	shift := origin.Sub(s.edges[0].StartPoint())
	return s.Translate(shift)
}

// Rotate rotates the sequence by angle radians about the start of its first
// edge. Positive angles rotate +X towards +Y.
func (s *Sequence) Rotate(angle float64) *Sequence {
	if len(s.edges) == 0 {
		return s
	}
	return s.Transform(curve.RotateAbout(angle, s.edges[0].StartPoint()))
}

// Mirror reflects the sequence about the line through the start of its first
// edge with the given direction.
func (s *Sequence) Mirror(direction curve.Vec2) *Sequence {
	if len(s.edges) == 0 {
		return s
	}
	return s.MirrorAbout(s.edges[0].StartPoint(), direction)
}

// MirrorAbout reflects the sequence about the line through pt with the given
// direction. Reflection swaps left and right, so the perpendicular component
// of every curvature control changes sign.
func (s *Sequence) MirrorAbout(pt curve.Point, direction curve.Vec2) *Sequence {
	s.Transform(curve.Reflect(pt, direction))
	for _, e := range s.edges {
		if e.Curvature != nil {
			c := Control{T: e.Curvature.T, H: -e.Curvature.H}
			e.Curvature = &c
		}
	}
	return s
}

// CloseLoop appends an edge from the last end vertex to the first start vertex
// unless the sequence already is a loop.
func (s *Sequence) CloseLoop() *Sequence {
	if len(s.edges) == 0 {
		return s
	}
	s.IsChained()
	if s.IsLoop() {
		return s
	}
	first, last := s.edges[0], s.Last()
	s.edges = append(s.edges, New(first.arena, last.End, first.Start))
	return s
}

// Copy returns a deep copy backed by a fresh arena containing only the
// vertices of s. Handles are remapped, so vertices shared inside s are shared
// inside the copy as well; chaining and loop closure carry over, and the copy
// never aliases the original.
func (s *Sequence) Copy() *Sequence {
	a := NewArena()
	remap := make(map[vertexKey]VertexID)
	lookup := func(src *Arena, id VertexID) VertexID {
		k := vertexKey{src, id}
		if nid, ok := remap[k]; ok {
			return nid
		}
		nid := a.Add(src.At(id))
		remap[k] = nid
		return nid
	}

	out := &Sequence{edges: make([]*Edge, len(s.edges))}
	for i, e := range s.edges {
		ne := New(a, lookup(e.arena, e.Start), lookup(e.arena, e.End))
		ne.GeometricID = e.GeometricID
		if e.Curvature != nil {
			c := *e.Curvature
			ne.Curvature = &c
		}
		out.edges[i] = ne
	}
	return out
}

// String lists the edges.
func (s *Sequence) String() string {
	str := "["
	for i, e := range s.edges {
		if i > 0 {
			str += ", "
		}
		str += e.String()
	}
	return str + "]"
}

func (s *Sequence) eachVertex(fn func(a *Arena, id VertexID)) {
	seen := make(map[vertexKey]bool, len(s.edges)+1)
	visit := func(a *Arena, id VertexID) {
		k := vertexKey{a, id}
		if seen[k] {
			return
		}
		seen[k] = true
		fn(a, id)
	}
	for _, e := range s.edges {
		visit(e.arena, e.Start)
		visit(e.arena, e.End)
	}
}

func sameVertex(e1 *Edge, v1 VertexID, e2 *Edge, v2 VertexID) bool {
	return e1.arena == e2.arena && v1 == v2
}
