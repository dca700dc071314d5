package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pipeline"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	formats   string
	sets      []string
	randomize bool
	seed      uint64
	output    string
	labels    bool
	edgeIDs   bool
	vertices  bool
	detailed  bool
	margin    float64
	scale     float64
	noCache   bool
	refresh   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render [spec.json]",
		Short: "Render a pattern instance to SVG, PNG, PDF, JSON or a graph",
		Long: `Render a pattern instance to SVG, PNG, PDF, JSON or a graph.

Parameter values from --set (or a random draw with --randomize) are applied
before rendering. Each format is written next to the output base path:

  seamline render skirt.json -f svg,png --set length=1.2 -o out/skirt

writes out/skirt.svg and out/skirt.png. Formats "dot" and "graph" describe
which parameters influence which panels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd, args[0], flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			base := flags.output
			if base == "" {
				base = result.Spec.Name
			}
			return writeArtifacts(cmd.OutOrStdout(), base, opts.Formats, result)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats, comma separated: "+strings.Join(pipeline.FormatNames(), ", "))
	cmd.Flags().StringArrayVar(&flags.sets, "set", nil, "parameter value as name=value (repeatable)")
	cmd.Flags().BoolVar(&flags.randomize, "randomize", false, "draw random parameter values first")
	cmd.Flags().Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "random seed for --randomize")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output base path (default: pattern name)")
	cmd.Flags().BoolVar(&flags.labels, "labels", false, "label panels")
	cmd.Flags().BoolVar(&flags.edgeIDs, "edge-ids", false, "label edges with their index")
	cmd.Flags().BoolVar(&flags.vertices, "vertices", false, "mark vertices")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show edge lists on graph arrows")
	cmd.Flags().Float64Var(&flags.margin, "margin", pipeline.DefaultMargin, "margin around the drawing")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "pixels per unit for PNG output")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when cached")
	return cmd
}

// renderOptions merges flags and config into pipeline options. Config values
// apply only where the flag was not set.
func (c *CLI) renderOptions(cmd *cobra.Command, input string, flags renderFlags) (pipeline.Options, error) {
	values, err := parseAssignments(flags.sets)
	if err != nil {
		return pipeline.Options{}, err
	}
	changed := cmd.Flags().Changed
	opts := pipeline.Options{
		SpecPath:  input,
		Values:    values,
		Randomize: flags.randomize,
		Seed:      &flags.seed,
		Formats:   parseFormats(flags.formats),
		Margin:    flags.margin,
		Scale:     flags.scale,
		Labels:    flags.labels,
		EdgeIDs:   flags.edgeIDs,
		Vertices:  flags.vertices,
		Detailed:  flags.detailed,
		Refresh:   flags.refresh,
		Logger:    c.Logger,
	}
	if !changed("format") && len(c.Config.Formats) > 0 {
		opts.Formats = slices.Clone(c.Config.Formats)
	}
	if !changed("seed") {
		seed := c.Config.Seed
		opts.Seed = &seed
	}
	if !changed("margin") {
		opts.Margin = c.Config.Margin
	}
	if !changed("scale") {
		opts.Scale = c.Config.Scale
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// writeArtifacts writes each rendered format to base plus its extension.
func writeArtifacts(w io.Writer, base string, formats []string, result *pipeline.Result) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	cached := result.CacheInfo.RenderHit
	printSuccess(w, "Rendered %s", result.Spec.Name)
	for _, f := range formats {
		data, ok := result.Artifacts[f]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "format %s was not rendered", f)
		}
		path := base + pipeline.Extensions[f]
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(w, path, cached)
	}
	printDetail(w, "%d panels, %d parameters", result.Stats.PanelCount, result.Stats.ParameterCount)
	return nil
}
