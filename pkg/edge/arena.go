package edge

import (
	"honnef.co/go/curve"
)

// VertexID is a handle to a vertex stored in an [Arena].
type VertexID int

// Arena owns the vertices of one or more edge sequences. Handles are never
// invalidated: vertices are only appended, never removed.
type Arena struct {
	pts []curve.Point
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewArenaFrom creates an arena holding a copy of pts; handle i refers to pts[i].
func NewArenaFrom(pts []curve.Point) *Arena {
	return &Arena{pts: append([]curve.Point(nil), pts...)}
}

// Add stores p and returns its handle.
func (a *Arena) Add(p curve.Point) VertexID {
	a.pts = append(a.pts, p)
	return VertexID(len(a.pts) - 1)
}

// At returns the current position of vertex id.
func (a *Arena) At(id VertexID) curve.Point {
	return a.pts[id]
}

// Set moves vertex id to p. Every edge referencing id observes the change.
func (a *Arena) Set(id VertexID, p curve.Point) {
	a.pts[id] = p
}

// Len returns the number of vertices in the arena.
func (a *Arena) Len() int { return len(a.pts) }

// Points returns a copy of all vertex positions, indexed by handle.
func (a *Arena) Points() []curve.Point {
	return append([]curve.Point(nil), a.pts...)
}

// vertexKey identifies a vertex across arenas.
type vertexKey struct {
	arena *Arena
	id    VertexID
}
