package pattern

import (
	"math"
	"math/rand/v2"
	"slices"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/panel"
)

// ApplyAll deforms the panels by the current parameter values, one parameter
// at a time in ParameterOrder. The geometry is expected to be in its template
// state when called.
func (s *Spec) ApplyAll() error {
	for _, name := range s.ParameterOrder {
		p, err := s.parameter(name)
		if err != nil {
			return err
		}
		for _, in := range p.Influence {
			for _, ei := range in.EdgeList {
				if err := s.applyInfluence(name, p.Type, in.Panel, ei, p.Value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RestoreTemplate undoes [Spec.ApplyAll] by applying the inverse of every
// parameter value, walking parameters, influences and edge lists in reverse.
// With toDefault set, every value is reset to the identity afterwards.
//
// All values are checked before any geometry is touched: a zero value fails
// with NON_INVERTIBLE_VALUE and leaves the pattern unchanged.
func (s *Spec) RestoreTemplate(toDefault bool) error {
	inverses := make([]Value, len(s.ParameterOrder))
	for i, name := range s.ParameterOrder {
		p, err := s.parameter(name)
		if err != nil {
			return err
		}
		if _, ok := kindNames[p.Type]; !ok {
			return errors.New(errors.ErrCodeInvalidParameterType, "parameter %q has unsupported type %d", name, int(p.Type))
		}
		inv, err := p.Value.Inverse()
		if err != nil {
			return errors.Wrap(errors.ErrCodeNonInvertibleValue, err,
				"zero value of parameter %q encountered while restoring template", name)
		}
		inverses[i] = inv
	}

	for i := len(s.ParameterOrder) - 1; i >= 0; i-- {
		name := s.ParameterOrder[i]
		p := s.Parameters[name]
		for j := len(p.Influence) - 1; j >= 0; j-- {
			in := p.Influence[j]
			for k := len(in.EdgeList) - 1; k >= 0; k-- {
				if err := s.applyInfluence(name, p.Type, in.Panel, in.EdgeList[k], inverses[i]); err != nil {
					return err
				}
			}
		}
		if toDefault {
			p.Value = p.Value.Identity()
		}
	}
	return nil
}

func (s *Spec) applyInfluence(name string, kind Kind, panelName string, ei EdgeInfluence, v Value) error {
	switch kind {
	case KindLength:
		if err := s.ExtendEdge(panelName, ei, v); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "parameter %q", name)
		}
	case KindCurve:
		for _, id := range ei.ID.ids {
			if err := s.CurveEdge(panelName, id, v); err != nil {
				return errors.Wrap(errors.GetCode(err), err, "parameter %q", name)
			}
		}
	default:
		return errors.New(errors.ErrCodeInvalidParameterType, "parameter %q has unsupported type %d", name, int(kind))
	}
	return nil
}

// ExtendEdge scales an edge or meta-edge of a panel along an axis.
//
// The vertex chain is the start of the first edge followed by the end of every
// edge. The fixed point depends on the direction: the first vertex for
// [DirectionEnd], the last for [DirectionStart] and their midpoint for
// [DirectionBoth]. The axis is Along when set, otherwise the line from the
// first to the last vertex. Each vertex keeps its offset perpendicular to the
// axis while its offset along the axis is multiplied by scale, so curvature
// stored in relative form follows the edge. A scale of 1 changes nothing.
func (s *Spec) ExtendEdge(panelName string, ei EdgeInfluence, scale Value) error {
	if scale.IsVector() {
		return errors.New(errors.ErrCodeInvalidScaleShape,
			"edge extension takes a single scaling factor, got %s", scale)
	}
	raw, err := s.rawPanel(panelName)
	if err != nil {
		return err
	}
	verts, err := chainVertices(panelName, raw, ei.ID)
	if err != nil {
		return err
	}

	pts := make([]curve.Point, len(verts))
	for i, v := range verts {
		pts[i] = raw.Vertex(v)
	}
	first, last := pts[0], pts[len(pts)-1]

	var fixed curve.Point
	switch ei.Direction {
	case DirectionEnd:
		fixed = first
	case DirectionStart:
		fixed = last
	default:
		fixed = first.Midpoint(last)
	}

	axis := last.Sub(first)
	if ei.Along != nil {
		axis = curve.Vec(ei.Along[0], ei.Along[1])
	}
	if l := axis.Hypot(); l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return errors.New(errors.ErrCodeDegenerateEdge,
			"cannot extend edge %v of panel %q along a zero-length axis", ei.ID.ids, panelName)
	}
	axis = axis.Normalize()

	k := 1 - scale.Scalar()
	moved := make([]curve.Point, len(pts))
	for i, p := range pts {
		proj := axis.Mul(p.Sub(fixed).Dot(axis))
		moved[i] = p.Translate(proj.Mul(-k))
	}
	for i, v := range verts {
		raw.SetVertex(v, moved[i])
	}
	return nil
}

// CurveEdge scales the curvature control of a panel edge. A scalar changes
// only the bulge depth H; a pair scales T and H independently.
func (s *Spec) CurveEdge(panelName string, edgeID int, scale Value) error {
	raw, err := s.rawPanel(panelName)
	if err != nil {
		return err
	}
	if edgeID < 0 || edgeID >= len(raw.Edges) {
		return errors.New(errors.ErrCodeUnknownEdge, "panel %q has no edge %d", panelName, edgeID)
	}
	c := raw.Edges[edgeID].Curvature
	if c == nil {
		return errors.New(errors.ErrCodeNonCurvedEdge,
			"applying curvature scaling to non-curved edge %d of %s", edgeID, panelName)
	}

	switch {
	case !scale.IsVector():
		c[1] *= scale.Scalar()
	case scale.Len() == 2:
		c[0] *= scale.components[0]
		c[1] *= scale.components[1]
	default:
		return errors.New(errors.ErrCodeInvalidScaleShape,
			"curvature scaling takes a scalar or a pair, got %s", scale)
	}
	return nil
}

// RandomizeParameters draws a new value for every parameter uniformly from
// its range, one draw per component for vector values. Parameters are visited
// in name order so that a seeded rng always yields the same values.
func (s *Spec) RandomizeParameters(rng *rand.Rand) error {
	names := s.ParameterNames()
	drawn := make(map[string]Value, len(names))
	for _, name := range names {
		p := s.Parameters[name]
		v := p.Value.clone()
		if len(v.components) == 0 {
			v = Scalar(0)
		}
		for i := range v.components {
			b, err := p.Range.Bounds(i)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidSpec, err, "parameter %q", name)
			}
			v.components[i] = b[0] + rng.Float64()*(b[1]-b[0])
		}
		drawn[name] = v
	}
	for name, v := range drawn {
		s.Parameters[name].Value = v
	}
	return nil
}

// SetValues replaces parameter values without touching geometry. Every value
// is checked first; on error nothing is changed.
func (s *Spec) SetValues(values map[string]Value) error {
	for name, v := range values {
		p, err := s.parameter(name)
		if err != nil {
			return err
		}
		if !v.SameShape(p.Value) {
			return errors.New(errors.ErrCodeInvalidScaleShape,
				"parameter %q expects a value shaped like %s, got %s", name, p.Value, v)
		}
	}
	for name, v := range values {
		s.Parameters[name].Value = v.clone()
	}
	return nil
}

// Apply moves the pattern to the instance described by values: the current
// values are undone, the new ones stored and applied. Parameters missing from
// values keep their current value.
func (s *Spec) Apply(values map[string]Value) error {
	for name, v := range values {
		p, err := s.parameter(name)
		if err != nil {
			return err
		}
		if !v.SameShape(p.Value) {
			return errors.New(errors.ErrCodeInvalidScaleShape,
				"parameter %q expects a value shaped like %s, got %s", name, p.Value, v)
		}
	}
	current := s.Values()
	if err := s.RestoreTemplate(false); err != nil {
		return err
	}
	for name, v := range values {
		current[name] = v
	}
	if err := s.SetValues(current); err != nil {
		return err
	}
	return s.ApplyAll()
}

// Values returns a copy of the current parameter values.
func (s *Spec) Values() map[string]Value {
	out := make(map[string]Value, len(s.Parameters))
	for name, p := range s.Parameters {
		out[name] = p.Value.clone()
	}
	return out
}

// EdgeLength returns the current straight-line length of an edge.
func (s *Spec) EdgeLength(panelName string, edgeID int) (float64, error) {
	raw, err := s.rawPanel(panelName)
	if err != nil {
		return 0, err
	}
	if edgeID < 0 || edgeID >= len(raw.Edges) {
		return 0, errors.New(errors.ErrCodeUnknownEdge, "panel %q has no edge %d", panelName, edgeID)
	}
	return raw.EdgeLength(edgeID), nil
}

// Panel returns an edge view of a panel. The view works on a copy: edits to
// it do not reach the spec until projected back with [panel.Panel.Assemble].
func (s *Spec) Panel(name string) (*panel.Panel, error) {
	raw, err := s.rawPanel(name)
	if err != nil {
		return nil, err
	}
	return panel.FromRaw(name, raw)
}

// Clone returns a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	out := &Spec{
		Name: s.Name,
		Pattern: Pattern{
			Panels:   make(map[string]*panel.Raw, len(s.Pattern.Panels)),
			Stitches: slices.Clone(s.Pattern.Stitches),
		},
		Properties:     s.Properties,
		ParameterOrder: slices.Clone(s.ParameterOrder),
	}
	for name, raw := range s.Pattern.Panels {
		out.Pattern.Panels[name] = raw.Clone()
	}
	if s.Parameters != nil {
		out.Parameters = make(map[string]*Parameter, len(s.Parameters))
		for name, p := range s.Parameters {
			out.Parameters[name] = p.clone()
		}
	}
	return out
}

func (s *Spec) parameter(name string) (*Parameter, error) {
	p, ok := s.Parameters[name]
	if !ok || p == nil {
		return nil, errors.New(errors.ErrCodeUnknownParameter, "unknown parameter %q", name)
	}
	return p, nil
}

func (s *Spec) rawPanel(name string) (*panel.Raw, error) {
	raw, ok := s.Pattern.Panels[name]
	if !ok || raw == nil {
		return nil, errors.New(errors.ErrCodeUnknownPanel, "unknown panel %q", name)
	}
	return raw, nil
}

// chainVertices resolves ref to vertex indices: the start of the first edge
// followed by the end of every edge.
func chainVertices(panelName string, raw *panel.Raw, ref EdgeRef) ([]int, error) {
	if len(ref.ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSpec, "empty edge reference in panel %q", panelName)
	}
	for _, id := range ref.ids {
		if id < 0 || id >= len(raw.Edges) {
			return nil, errors.New(errors.ErrCodeUnknownEdge, "panel %q has no edge %d", panelName, id)
		}
	}
	verts := []int{raw.Edges[ref.ids[0]].Endpoints[0]}
	for _, id := range ref.ids {
		verts = append(verts, raw.Edges[id].Endpoints[1])
	}
	return verts, nil
}
