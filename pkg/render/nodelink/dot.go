package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/seamline/pkg/pattern"
)

// Options configures influence diagram rendering.
type Options struct {
	// Detailed includes parameter values and ranges in node labels and the
	// influenced edge ids on the arrows. When false, only names are shown.
	Detailed bool
}

// ToDOT converts the parameters of a pattern to a Graphviz DOT graph with an
// arrow from each parameter to every panel it influences. Parameters are
// ranked in parameter_order; panels follow in name order.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPDF].
func ToDOT(s *pattern.Spec, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, name := range s.ParameterOrder {
		p, ok := s.Parameters[name]
		if !ok {
			continue
		}
		attrs := fmtParamAttrs(name, p, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", "param:"+name, strings.Join(attrs, ", "))
	}
	for _, name := range s.Pattern.PanelNames() {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box, style=\"rounded,filled\", fillcolor=white];\n", "panel:"+name, name)
	}

	buf.WriteString("\n")
	for _, name := range s.ParameterOrder {
		p, ok := s.Parameters[name]
		if !ok {
			continue
		}
		for _, inf := range p.Influence {
			attrs := []string{}
			if opts.Detailed {
				attrs = append(attrs, fmt.Sprintf("label=%q", fmtEdgeList(inf.EdgeList)))
			}
			if p.Type == pattern.KindCurve {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  %q -> %q", "param:"+name, "panel:"+inf.Panel)
			if len(attrs) > 0 {
				fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtParamAttrs(name string, p *pattern.Parameter, detailed bool) []string {
	label := name
	if detailed {
		label = fmt.Sprintf("%s\n%s = %s\nrange %s", name, p.Type, p.Value, p.Range)
	}
	attrs := []string{fmt.Sprintf("label=%q", label), "shape=ellipse"}
	if p.Type == pattern.KindCurve {
		attrs = append(attrs, "style=filled", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtEdgeList(list []pattern.EdgeInfluence) string {
	parts := make([]string, 0, len(list))
	for _, ei := range list {
		ids := ei.ID.IDs()
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = strconv.Itoa(id)
		}
		part := strings.Join(strs, "+")
		if ei.ID.IsMeta() {
			part = "(" + part + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg header with one whose viewBox
// starts at the origin and whose size matches the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
