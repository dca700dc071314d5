package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
	"github.com/matzehuels/seamline/pkg/render"
	"github.com/matzehuels/seamline/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, s *pattern.Spec, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, s, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates a single artifact.
func RenderFormat(ctx context.Context, s *pattern.Spec, format string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data, err = render.RenderSVG(s, buildSVGOptions(opts)...)
	case FormatPNG:
		data, err = render.RenderPNG(s, render.WithScale(opts.Scale), render.WithPNGMargin(opts.Margin))
	case FormatPDF:
		data, err = render.RenderPDF(s, buildSVGOptions(opts)...)
	case FormatJSON:
		data, err = render.RenderJSON(s, render.WithJSONParameters(), render.WithJSONLayout(opts.Margin))
	case FormatDOT:
		data = []byte(nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed}))
	case FormatGraph:
		data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed}))
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithMargin(opts.Margin)}
	if opts.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	if opts.EdgeIDs {
		svgOpts = append(svgOpts, render.WithEdgeIDs())
	}
	if opts.Vertices {
		svgOpts = append(svgOpts, render.WithVertices())
	}
	return svgOpts
}
