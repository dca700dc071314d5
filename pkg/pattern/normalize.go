package pattern

import (
	"github.com/charmbracelet/log"
	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/edge"
	"github.com/matzehuels/seamline/pkg/errors"
)

// Normalize prepares a freshly loaded template for processing.
//
// Absolute curvature controls are converted to edge-relative ones and the
// curvature_coords property is switched to relative, so a saved and reloaded
// spec is never converted twice. When normalize_panel_translation is set,
// each panel's vertices are centred on their mean and the offset is moved
// into the panel translation; the flag is cleared afterwards.
//
// Normalize is idempotent. On error the spec is unchanged.
func (s *Spec) Normalize() error {
	if s.Properties.CurvatureCoords == CoordsAbsolute {
		if err := s.curvatureToRelative(); err != nil {
			return err
		}
		s.Properties.CurvatureCoords = CoordsRelative
	}

	if s.Properties.NormalizePanelTranslation {
		s.Properties.NormalizePanelTranslation = false
		for _, name := range s.Pattern.PanelNames() {
			offset := s.Pattern.Panels[name].CenterVertices()
			log.Debug("normalized panel translation", "panel", name, "offset", offset)
		}
	}
	return nil
}

func (s *Spec) curvatureToRelative() error {
	type update struct {
		c    *[2]float64
		ctrl edge.Control
	}
	var updates []update
	for _, name := range s.Pattern.PanelNames() {
		raw := s.Pattern.Panels[name]
		for i, e := range raw.Edges {
			if e.Curvature == nil {
				continue
			}
			cp := e.Curvature
			ctrl, err := edge.AbsoluteToRelative(
				raw.Vertex(e.Endpoints[0]), raw.Vertex(e.Endpoints[1]), pointOf(*cp))
			if err != nil {
				return errors.Wrap(errors.ErrCodeDegenerateEdge, err, "edge %d of panel %q", i, name)
			}
			updates = append(updates, update{c: cp, ctrl: ctrl})
		}
	}
	for _, u := range updates {
		*u.c = [2]float64{u.ctrl.T, u.ctrl.H}
	}
	return nil
}

func pointOf(v [2]float64) curve.Point { return curve.Pt(v[0], v[1]) }
