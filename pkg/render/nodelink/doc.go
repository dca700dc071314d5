// Package nodelink renders the parameter influence graph of a pattern as a
// node-link diagram.
//
// # Overview
//
// Parameters appear as ellipses and panels as boxes, with an arrow from a
// parameter to each panel it deforms. Curve parameters are drawn shaded with
// dashed arrows so they stand apart from length parameters.
//
// # Usage
//
//	dot := nodelink.ToDOT(spec, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With Detailed set, parameter nodes show the current value and range, and
// arrows carry the influenced edge ids. Meta-edges (runs of edges extended
// as one) are written in parentheses: "(3+0+1)".
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF conversion requires librsvg (rsvg-convert).
package nodelink
