// Package render draws pattern previews.
//
// # Overview
//
// [Arrange] lays the panels of a pattern out in a row on a flat sheet, in
// panel name order, and builds each panel's outline as a [curve.BezPath].
// Curved edges become quadratic Bézier segments through their absolute
// control points. The sinks draw that layout:
//
//   - [RenderSVG]: one <path> per panel, with optional labels, vertex
//     markers and edge ids
//   - [RenderPNG]: pure-Go rasterization with golang.org/x/image/vector
//   - [RenderPDF]: SVG converted by the external rsvg-convert tool
//   - [RenderJSON]: per-panel and per-edge measurements
//
// The influence graph of the parameters is rendered by the [nodelink]
// subpackage.
//
//	svg, err := render.RenderSVG(spec, render.WithLabels(), render.WithEdgeIDs())
//	png, err := render.RenderPNG(spec, render.WithScale(8))
//	pdf, err := render.ToPDF(svg)
//
// Rendering reads the spec through [pattern.Spec.Panel] and never modifies
// it.
package render
