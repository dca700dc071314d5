package panel

import (
	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/errors"
)

// Raw is the serialized form of a panel: plain vertex and edge arrays that
// index into each other. It is the persistent state of a pattern; [Panel]
// values are views built from it.
type Raw struct {
	Vertices    [][2]float64 `json:"vertices"`
	Edges       []RawEdge    `json:"edges"`
	Translation [3]float64   `json:"translation"`
	Rotation    *[3]float64  `json:"rotation,omitempty"`
}

// RawEdge connects two vertices of a [Raw] panel by index. Curvature is a
// control point, either absolute or edge-relative depending on the pattern's
// curvature coordinate system.
type RawEdge struct {
	Endpoints [2]int      `json:"endpoints"`
	Curvature *[2]float64 `json:"curvature,omitempty"`
}

// Vertex returns vertex i as a point.
func (r *Raw) Vertex(i int) curve.Point {
	return curve.Pt(r.Vertices[i][0], r.Vertices[i][1])
}

// SetVertex moves vertex i to p.
func (r *Raw) SetVertex(i int, p curve.Point) {
	r.Vertices[i] = [2]float64{p.X, p.Y}
}

// EdgeLength returns the straight-line length of edge i.
func (r *Raw) EdgeLength(i int) float64 {
	e := r.Edges[i]
	return r.Vertex(e.Endpoints[0]).Distance(r.Vertex(e.Endpoints[1]))
}

// Validate checks that every edge references existing, distinct vertices.
func (r *Raw) Validate() error {
	if len(r.Edges) == 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "panel has no edges")
	}
	for i, e := range r.Edges {
		for _, v := range e.Endpoints {
			if v < 0 || v >= len(r.Vertices) {
				return errors.New(errors.ErrCodeInvalidSpec,
					"edge %d references vertex %d, panel has %d vertices", i, v, len(r.Vertices))
			}
		}
		if e.Endpoints[0] == e.Endpoints[1] {
			return errors.New(errors.ErrCodeInvalidSpec, "edge %d starts and ends at vertex %d", i, e.Endpoints[0])
		}
	}
	return nil
}

// CenterVertices shifts all vertices so that their mean lies at the origin,
// adds the shift to the translation and returns it.
func (r *Raw) CenterVertices() [2]float64 {
	if len(r.Vertices) == 0 {
		return [2]float64{}
	}
	var mean [2]float64
	for _, v := range r.Vertices {
		mean[0] += v[0]
		mean[1] += v[1]
	}
	mean[0] /= float64(len(r.Vertices))
	mean[1] /= float64(len(r.Vertices))

	for i := range r.Vertices {
		r.Vertices[i][0] -= mean[0]
		r.Vertices[i][1] -= mean[1]
	}
	r.Translation[0] += mean[0]
	r.Translation[1] += mean[1]
	return mean
}

// Clone returns a deep copy.
func (r *Raw) Clone() *Raw {
	out := &Raw{
		Vertices:    append([][2]float64(nil), r.Vertices...),
		Edges:       make([]RawEdge, len(r.Edges)),
		Translation: r.Translation,
	}
	for i, e := range r.Edges {
		out.Edges[i] = RawEdge{Endpoints: e.Endpoints}
		if e.Curvature != nil {
			c := *e.Curvature
			out.Edges[i].Curvature = &c
		}
	}
	if r.Rotation != nil {
		rot := *r.Rotation
		out.Rotation = &rot
	}
	return out
}
