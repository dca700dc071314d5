package render

import (
	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/edge"
	"github.com/matzehuels/seamline/pkg/panel"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// DefaultMargin is the gap between panels and around the sheet, in pattern
// units.
const DefaultMargin = 5.0

// Layout is a flat arrangement of all panels of a pattern, in sheet
// coordinates (y pointing down).
type Layout struct {
	Width   float64
	Height  float64
	Margin  float64
	Panels  []Placed
	Pattern string
}

// Placed is one panel positioned on the sheet.
type Placed struct {
	Panel *panel.Panel

	// Transform maps panel coordinates to sheet coordinates.
	Transform curve.Affine

	// Outline is the closed panel boundary in sheet coordinates.
	Outline curve.BezPath

	// Bounds is the bounding box of Outline.
	Bounds curve.Rect
}

// Arrange lays the panels of s out in a row, sorted by name, with margin
// between them. The y axis is flipped so that the panels keep their
// orientation when drawn on a y-down canvas.
func Arrange(s *pattern.Spec, margin float64) (Layout, error) {
	l := Layout{Margin: margin, Pattern: s.Name}
	cursor := margin
	tallest := 0.0
	for _, name := range s.Pattern.PanelNames() {
		p, err := s.Panel(name)
		if err != nil {
			return Layout{}, err
		}
		local := Outline(p)
		box := local.BoundingBox()

		aff := curve.Scale(1, -1).ThenTranslate(curve.Vec(cursor-box.MinX(), margin+box.MaxY()))
		placed := local.Transform(aff)
		bounds := placed.BoundingBox()

		l.Panels = append(l.Panels, Placed{Panel: p, Transform: aff, Outline: placed, Bounds: bounds})
		cursor += box.Width() + margin
		tallest = max(tallest, box.Height())
	}
	l.Width = cursor
	l.Height = tallest + 2*margin
	return l, nil
}

// Outline returns the boundary of p as a path in panel coordinates. Each
// chained run of edges becomes one subpath; runs that return to their first
// vertex are closed.
func Outline(p *panel.Panel) curve.BezPath {
	var (
		path     curve.BezPath
		open     bool
		subStart edge.VertexID
		prevEnd  edge.VertexID
	)
	for _, e := range p.Edges.Edges() {
		if !open || e.Start != prevEnd {
			path.MoveTo(e.StartPoint())
			subStart = e.Start
			open = true
		}
		if cp, ok := e.ControlPoint(); ok {
			path.QuadTo(cp, e.EndPoint())
		} else {
			path.LineTo(e.EndPoint())
		}
		prevEnd = e.End
		if e.End == subStart {
			path.ClosePath()
			open = false
		}
	}
	return path
}
