package render

import (
	"encoding/json"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/pattern"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	parameters bool
	layout     bool
	margin     float64
}

// WithJSONParameters includes the current parameter values.
func WithJSONParameters() JSONOption { return func(r *jsonRenderer) { r.parameters = true } }

// WithJSONLayout includes each panel's bounding box on the sheet produced by
// [Arrange].
func WithJSONLayout(margin float64) JSONOption {
	return func(r *jsonRenderer) { r.layout = true; r.margin = margin }
}

type jsonOutput struct {
	Name       string                   `json:"name,omitempty"`
	Coords     pattern.CoordSystem      `json:"curvature_coords"`
	Width      float64                  `json:"width,omitempty"`
	Height     float64                  `json:"height,omitempty"`
	Panels     []jsonPanel              `json:"panels"`
	Parameters map[string]pattern.Value `json:"parameters,omitempty"`
}

type jsonPanel struct {
	Name        string      `json:"name"`
	Translation [3]float64  `json:"translation"`
	Rotation    [3]float64  `json:"rotation"`
	Area        float64     `json:"area"`
	Perimeter   float64     `json:"perimeter"`
	Bounds      *[4]float64 `json:"bounds,omitempty"`
	Edges       []jsonEdge  `json:"edges"`
}

type jsonEdge struct {
	ID        int         `json:"id"`
	Start     [2]float64  `json:"start"`
	End       [2]float64  `json:"end"`
	Length    float64     `json:"length"`
	ArcLength float64     `json:"arc_length"`
	Curvature *[2]float64 `json:"curvature,omitempty"`
}

// RenderJSON summarizes the panel geometry of s: per-panel placement, area
// and perimeter, and per-edge endpoints, lengths and curvature controls.
func RenderJSON(s *pattern.Spec, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Name: s.Name, Coords: s.Properties.CurvatureCoords, Panels: []jsonPanel{}}
	var bounds map[string]curve.Rect
	if r.layout {
		l, err := Arrange(s, r.margin)
		if err != nil {
			return nil, err
		}
		out.Width, out.Height = l.Width, l.Height
		bounds = make(map[string]curve.Rect, len(l.Panels))
		for _, p := range l.Panels {
			bounds[p.Panel.Name] = p.Bounds
		}
	}

	for _, name := range s.Pattern.PanelNames() {
		p, err := s.Panel(name)
		if err != nil {
			return nil, err
		}
		jp := jsonPanel{
			Name:        name,
			Translation: p.Translation,
			Rotation:    p.Rotation,
			Area:        p.Area(),
			Perimeter:   Outline(p).Perimeter(curve.DefaultAccuracy),
		}
		if b, ok := bounds[name]; ok {
			jp.Bounds = &[4]float64{b.X0, b.Y0, b.X1, b.Y1}
		}
		for _, e := range p.Edges.Edges() {
			start, end := e.StartPoint(), e.EndPoint()
			je := jsonEdge{
				ID:        e.GeometricID,
				Start:     [2]float64{start.X, start.Y},
				End:       [2]float64{end.X, end.Y},
				Length:    e.Length(),
				ArcLength: e.ArcLength(curve.DefaultAccuracy),
			}
			if e.Curvature != nil {
				je.Curvature = &[2]float64{e.Curvature.T, e.Curvature.H}
			}
			jp.Edges = append(jp.Edges, je)
		}
		out.Panels = append(out.Panels, jp)
	}
	if r.parameters {
		out.Parameters = s.Values()
	}
	return json.MarshalIndent(out, "", "  ")
}
