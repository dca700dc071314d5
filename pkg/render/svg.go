package render

import (
	"bytes"
	"fmt"
	"html"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/pattern"
)

const svgStyle = `
    .panel path { fill: %s; stroke: #333; stroke-width: %.2f; stroke-linejoin: round; }
    .panel .label { font: 4px sans-serif; fill: #333; text-anchor: middle; dominant-baseline: middle; }
    .panel .edge-id { font: 2.5px monospace; fill: #a33; text-anchor: middle; dominant-baseline: middle; }
    .panel .vertex { fill: #333; }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	margin      float64
	fill        string
	strokeWidth float64
	labels      bool
	vertices    bool
	edgeIDs     bool
}

// WithLabels writes each panel's name at the center of its bounding box.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithVertices marks every vertex with a dot.
func WithVertices() SVGOption { return func(r *svgRenderer) { r.vertices = true } }

// WithEdgeIDs writes each edge's index at the midpoint of the edge.
func WithEdgeIDs() SVGOption { return func(r *svgRenderer) { r.edgeIDs = true } }

// WithMargin sets the gap between panels (default [DefaultMargin]).
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithFill sets the panel fill color.
func WithFill(color string) SVGOption { return func(r *svgRenderer) { r.fill = color } }

// WithStrokeWidth sets the outline width in pattern units.
func WithStrokeWidth(w float64) SVGOption { return func(r *svgRenderer) { r.strokeWidth = w } }

// RenderSVG draws every panel of s as one closed path. Curved edges become
// quadratic Bézier segments.
func RenderSVG(s *pattern.Spec, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	l, err := Arrange(s, r.margin)
	if err != nil {
		return nil, err
	}
	return r.render(l), nil
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{margin: DefaultMargin, fill: "#f4efe6", strokeWidth: 0.4}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r svgRenderer) render(l Layout) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, "  <style>"+svgStyle+"\n  </style>\n", html.EscapeString(r.fill), r.strokeWidth)

	for _, p := range l.Panels {
		r.renderPanel(&buf, p)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderPanel(buf *bytes.Buffer, p Placed) {
	name := html.EscapeString(p.Panel.Name)
	fmt.Fprintf(buf, `  <g id="panel-%s" class="panel">`+"\n", name)
	fmt.Fprintf(buf, `    <path d="%s"/>`+"\n", curve.SVG(p.Outline.Elements(), curve.SVGOptions{MaxPrecision: 3}))

	if r.vertices {
		for _, pt := range p.Panel.Edges.Points() {
			c := pt.Transform(p.Transform)
			fmt.Fprintf(buf, `    <circle class="vertex" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", c.X, c.Y, r.strokeWidth*2)
		}
	}
	if r.edgeIDs {
		for _, e := range p.Panel.Edges.Edges() {
			mid := e.Segment().Transform(p.Transform).Eval(0.5)
			fmt.Fprintf(buf, `    <text class="edge-id" x="%.2f" y="%.2f">%d</text>`+"\n", mid.X, mid.Y, e.GeometricID)
		}
	}
	if r.labels {
		c := p.Bounds.Center()
		fmt.Fprintf(buf, `    <text class="label" x="%.2f" y="%.2f">%s</text>`+"\n", c.X, c.Y, name)
	}
	buf.WriteString("  </g>\n")
}
