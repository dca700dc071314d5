package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamline/pkg/edge"
	"github.com/matzehuels/seamline/pkg/pattern"
	"github.com/matzehuels/seamline/pkg/pipeline"
)

// arcAccuracy is the tolerance used for curved edge lengths in tables.
const arcAccuracy = 1e-6

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		sets  []string
		edges bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [spec.json]",
		Short: "Show panels, parameters and edge lengths of a pattern",
		Long: `Show panels, parameters and edge lengths of a pattern.

With --set the pattern is inspected after applying the given values, which
makes it easy to see how a parameter changes each edge.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			opts := pipeline.Options{SpecPath: args[0], Values: values, Logger: c.Logger}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			s, err := c.instantiate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printSpec(cmd.OutOrStdout(), s, edges)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "apply name=value before inspecting (repeatable)")
	cmd.Flags().BoolVar(&edges, "edges", false, "list every edge with its length")
	return cmd
}

// printSpec prints the summary and tables for s.
func printSpec(w io.Writer, s *pattern.Spec, withEdges bool) error {
	printKeyValue(w, "Pattern", s.Name)
	printKeyValue(w, "Curvature", string(s.Properties.CurvatureCoords))
	printKeyValue(w, "Panels", strconv.Itoa(len(s.Pattern.Panels)))
	printKeyValue(w, "Parameters", strconv.Itoa(len(s.Parameters)))

	printTitle(w, "Panels")
	var rows [][]string
	for _, name := range s.Pattern.PanelNames() {
		p, err := s.Panel(name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(p.Edges.Len()),
			formatFloat(math.Abs(p.Area())),
			formatFloat(perimeter(p.Edges.Edges())),
			formatVec(p.Translation[:]),
			formatVec(p.Rotation[:]),
		})
	}
	printTable(w, []string{"Panel", "Edges", "Area", "Perimeter", "Translation", "Rotation"}, rows, 1, 2, 3)

	if len(s.Parameters) > 0 {
		printTitle(w, "Parameters")
		rows = nil
		for _, name := range s.ParameterNames() {
			p := s.Parameters[name]
			var panels []string
			for _, in := range p.Influence {
				panels = append(panels, in.Panel)
			}
			rows = append(rows, []string{name, p.Type.String(), p.Value.String(), p.Range.String(), strings.Join(panels, ", ")})
		}
		printTable(w, []string{"Parameter", "Type", "Value", "Range", "Panels"}, rows, 2)
	}

	if withEdges {
		for _, name := range s.Pattern.PanelNames() {
			p, err := s.Panel(name)
			if err != nil {
				return err
			}
			printTitle(w, "Edges of "+name)
			rows = nil
			for i, e := range p.Edges.Edges() {
				curved := ""
				if e.Curvature != nil {
					curved = fmt.Sprintf("%s, %s", formatFloat(e.Curvature.T), formatFloat(e.Curvature.H))
				}
				rows = append(rows, []string{
					strconv.Itoa(i),
					formatFloat(e.Length()),
					formatFloat(e.ArcLength(arcAccuracy)),
					curved,
				})
			}
			printTable(w, []string{"Edge", "Length", "Arc length", "Curvature"}, rows, 1, 2)
		}
	}
	return nil
}

func perimeter(edges []*edge.Edge) float64 {
	var total float64
	for _, e := range edges {
		total += e.ArcLength(arcAccuracy)
	}
	return total
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func formatVec(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatFloat(x, 'g', 4, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
