// Package edge provides the edge and edge-sequence model used to build panel
// outlines procedurally.
//
// # Overview
//
// A panel outline is a closed chain of edges. Adjacent edges do not hold equal
// copies of their common vertex: they reference the same vertex, so moving it
// changes the length of every edge that touches it. Vertices live in an
// [Arena] and edges store two [VertexID] handles into it. "Same vertex" is
// handle equality, which is the only notion of vertex identity in this package.
//
//	a := edge.NewArena()
//	s := edge.SimpleLoop(a, curve.Pt(0, 0), curve.Pt(10, 0), curve.Pt(10, 20))
//	s.IsLoop()   // true
//	s.Len()      // 3
//
// # Edges
//
// [Edge.Length] is recomputed from the arena on every call and never cached.
// Curved edges carry a [Control] in relative coordinates: the fraction T along
// the edge and the perpendicular offset H as a fraction of the edge length.
// Relative coordinates make the curve shape follow length changes of the edge
// automatically. [AbsoluteToRelative] and [RelativeToAbsolute] convert between
// the two forms.
//
// [Edge.Equal] answers "may these two edges be stitched together", not "do
// they occupy the same place".
//
// # Sequences
//
// A [Sequence] is an ordered list of edges. It is chained when every edge
// starts at the vertex its predecessor ends at, and a loop when the last edge
// also ends where the first one starts. Structural edits ([Sequence.Insert],
// [Sequence.Substitute], ...) never reconnect vertices; callers building
// outlines incrementally are responsible for that and may check the result with
// [Sequence.IsChained], which only logs a warning on failure.
//
// Geometric transforms ([Sequence.SnapTo], [Sequence.Rotate],
// [Sequence.Mirror], ...) visit every distinct vertex exactly once, so shared
// vertices are never moved twice.
//
// # Concurrency
//
// Arenas, edges and sequences are not safe for concurrent use without external
// synchronization.
package edge
