package pattern

import (
	"slices"

	"github.com/matzehuels/seamline/pkg/errors"
)

// Validate checks the structure of the spec: panel geometry references,
// parameter order, influence targets and value/range shapes. It does not
// check that values lie inside their ranges, since instances produced by
// hand may legitimately step outside them.
func (s *Spec) Validate() error {
	if len(s.Pattern.Panels) == 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "pattern has no panels")
	}
	if err := s.Properties.CurvatureCoords.validate(); err != nil {
		return err
	}
	for _, name := range s.Pattern.PanelNames() {
		raw := s.Pattern.Panels[name]
		if raw == nil {
			return errors.New(errors.ErrCodeInvalidSpec, "panel %q is empty", name)
		}
		if err := raw.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSpec, err, "panel %q", name)
		}
	}

	seen := make(map[string]bool, len(s.ParameterOrder))
	for _, name := range s.ParameterOrder {
		if _, ok := s.Parameters[name]; !ok {
			return errors.New(errors.ErrCodeUnknownParameter, "parameter_order lists undefined parameter %q", name)
		}
		if seen[name] {
			return errors.New(errors.ErrCodeInvalidSpec, "parameter %q appears twice in parameter_order", name)
		}
		seen[name] = true
	}
	for _, name := range s.ParameterNames() {
		if !seen[name] {
			return errors.New(errors.ErrCodeInvalidSpec, "parameter %q is missing from parameter_order", name)
		}
		if err := s.validateParameter(name, s.Parameters[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Spec) validateParameter(name string, p *Parameter) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidSpec, "parameter %q is empty", name)
	}
	if p.Value.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "parameter %q has an empty value", name)
	}
	switch p.Type {
	case KindLength:
		if p.Value.IsVector() {
			return errors.New(errors.ErrCodeInvalidScaleShape, "length parameter %q must have a scalar value", name)
		}
	case KindCurve:
		if p.Value.IsVector() && p.Value.Len() != 2 {
			return errors.New(errors.ErrCodeInvalidScaleShape, "curve parameter %q must have a scalar or pair value", name)
		}
	default:
		return errors.New(errors.ErrCodeInvalidParameterType, "parameter %q has unsupported type %d", name, int(p.Type))
	}
	if p.Range.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "parameter %q has no range", name)
	}
	if p.Range.PerComponent() && p.Range.Len() != p.Value.Len() {
		return errors.New(errors.ErrCodeInvalidSpec,
			"parameter %q has %d range bounds for %d value components", name, p.Range.Len(), p.Value.Len())
	}

	for _, in := range p.Influence {
		raw, err := s.rawPanel(in.Panel)
		if err != nil {
			return errors.Wrap(errors.ErrCodeUnknownPanel, err, "parameter %q", name)
		}
		for _, ei := range in.EdgeList {
			if len(ei.ID.ids) == 0 {
				return errors.New(errors.ErrCodeInvalidSpec, "parameter %q has an empty edge reference", name)
			}
			for _, id := range ei.ID.ids {
				if id < 0 || id >= len(raw.Edges) {
					return errors.New(errors.ErrCodeUnknownEdge,
						"parameter %q references edge %d of panel %q, which has %d edges", name, id, in.Panel, len(raw.Edges))
				}
				if p.Type == KindCurve && raw.Edges[id].Curvature == nil {
					return errors.New(errors.ErrCodeNonCurvedEdge,
						"curve parameter %q references straight edge %d of panel %q", name, id, in.Panel)
				}
			}
		}
	}
	return nil
}

// ParameterNames returns the defined parameter names in sorted order.
func (s *Spec) ParameterNames() []string {
	names := make([]string, 0, len(s.Parameters))
	for name := range s.Parameters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
