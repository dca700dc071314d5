package panel

import (
	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/edge"
	"github.com/matzehuels/seamline/pkg/errors"
)

// Panel is a flat piece of fabric: a closed loop of edges in local 2D
// coordinates plus its placement in 3D.
type Panel struct {
	Name  string
	Edges *edge.Sequence

	// Translation and Rotation place the panel in 3D. Rotation holds Euler
	// angles in degrees.
	Translation [3]float64
	Rotation    [3]float64

	Interfaces []Interface
}

// New creates a panel at the origin.
func New(name string, edges *edge.Sequence) *Panel {
	return &Panel{Name: name, Edges: edges}
}

// FromRaw builds a panel view over a copy of r's geometry. Curvature values
// are taken as edge-relative controls. Each edge's GeometricID is its index
// in r.
func FromRaw(name string, r *Raw) (*Panel, error) {
	if err := r.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "panel %q", name)
	}
	pts := make([]curve.Point, len(r.Vertices))
	for i := range r.Vertices {
		pts[i] = r.Vertex(i)
	}
	a := edge.NewArenaFrom(pts)

	edges := make(edge.Edges, len(r.Edges))
	for i, re := range r.Edges {
		e := edge.New(a, edge.VertexID(re.Endpoints[0]), edge.VertexID(re.Endpoints[1]))
		if re.Curvature != nil {
			e.Curvature = &edge.Control{T: re.Curvature[0], H: re.Curvature[1]}
		}
		e.GeometricID = i
		edges[i] = e
	}

	p := New(name, edge.NewSequence(edges))
	p.Translation = r.Translation
	if r.Rotation != nil {
		p.Rotation = *r.Rotation
	}
	return p, nil
}

// Assemble projects the panel back to its serialized form. Vertices are
// numbered in traversal order and only vertices used by an edge are kept.
// Every edge's GeometricID is set to its position in the assembled list.
func (p *Panel) Assemble() *Raw {
	r := &Raw{Translation: p.Translation}
	if p.Rotation != ([3]float64{}) {
		rot := p.Rotation
		r.Rotation = &rot
	}

	index := make(map[edge.VertexID]int)
	lookup := func(e *edge.Edge, id edge.VertexID) int {
		if i, ok := index[id]; ok {
			return i
		}
		pt := e.Arena().At(id)
		r.Vertices = append(r.Vertices, [2]float64{pt.X, pt.Y})
		index[id] = len(r.Vertices) - 1
		return index[id]
	}

	for i, e := range p.Edges.Edges() {
		re := RawEdge{Endpoints: [2]int{lookup(e, e.Start), lookup(e, e.End)}}
		if e.Curvature != nil {
			re.Curvature = &[2]float64{e.Curvature.T, e.Curvature.H}
		}
		e.GeometricID = i
		r.Edges = append(r.Edges, re)
	}
	return r
}

// TranslateBy moves the panel's 3D placement by v.
func (p *Panel) TranslateBy(v [3]float64) *Panel {
	for i := range p.Translation {
		p.Translation[i] += v[i]
	}
	return p
}

// Mirror reflects the panel about its local Y axis and mirrors its placement
// about the YZ plane. The outline is reversed afterwards so it keeps its
// winding direction.
func (p *Panel) Mirror() *Panel {
	p.Edges.MirrorAbout(curve.Pt(0, 0), curve.Vec(0, 1)).Reverse()
	p.Translation[0] = -p.Translation[0]
	p.Rotation[1] = -p.Rotation[1]
	p.Rotation[2] = -p.Rotation[2]
	return p
}

// Area returns the signed area of the outline polygon, ignoring curvature.
// It is positive for counter-clockwise outlines.
func (p *Panel) Area() float64 {
	var sum float64
	for _, e := range p.Edges.Edges() {
		s, t := e.StartPoint(), e.EndPoint()
		sum += s.X*t.Y - t.X*s.Y
	}
	return sum / 2
}

// AddInterface registers a named group of the panel's edges for stitching.
func (p *Panel) AddInterface(name string, edges ...*edge.Edge) *Panel {
	p.Interfaces = append(p.Interfaces, Interface{
		Name:  name,
		Panel: p,
		Edges: edge.NewSequence(edge.Edges(edges)),
	})
	return p
}

// Interface returns the interface with the given name.
func (p *Panel) Interface(name string) (Interface, bool) {
	for _, in := range p.Interfaces {
		if in.Name == name {
			return in, true
		}
	}
	return Interface{}, false
}
