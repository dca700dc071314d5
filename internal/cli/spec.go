package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
	"github.com/matzehuels/seamline/pkg/pipeline"
)

// specFlags are the flags shared by the commands that write a spec.
type specFlags struct {
	sets      []string // --set name=value
	output    string   // output file; stdout when empty
	dir       string   // export directory
	subfolder bool     // export as dir/<name>/specification.json
	name      string   // rename the pattern
}

func (f *specFlags) register(cmd *cobra.Command, withSet bool) {
	if withSet {
		cmd.Flags().StringArrayVar(&f.sets, "set", nil, "parameter value as name=value or name=a,b for curves (repeatable)")
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "export into this directory instead of --output")
	cmd.Flags().BoolVar(&f.subfolder, "subfolder", false, "export as <dir>/<name>/specification.json")
	cmd.Flags().StringVar(&f.name, "name", "", "name of the resulting pattern")
	cmd.MarkFlagsMutuallyExclusive("output", "dir")
}

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "apply [spec.json]",
		Short: "Apply parameter values to a pattern",
		Long: `Apply parameter values to a pattern.

The current values stored in the spec are undone first, so applying is
always relative to the template:

  seamline apply skirt.json --set length=1.2 --set waist_curve=1,1.5 -o long.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(flags.sets) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to apply; use --set name=value")
			}
			return c.runSpec(cmd, args[0], pipeline.Options{}, flags)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// restoreCommand creates the restore command.
func (c *CLI) restoreCommand() *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "restore [spec.json]",
		Short: "Undo all parameter values and reset them to the identity",
		Long: `Undo all parameter values and reset them to the identity.

Restoring fails without touching the output when a stored value is zero,
since such a value cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSpec(cmd, args[0], pipeline.Options{Restore: true}, flags)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// randomizeCommand creates the randomize command.
func (c *CLI) randomizeCommand() *cobra.Command {
	var (
		flags specFlags
		seed  uint64
		count int
	)
	cmd := &cobra.Command{
		Use:   "randomize [spec.json]",
		Short: "Draw random parameter values within their ranges",
		Long: `Draw random parameter values within their ranges.

The same seed always gives the same instance. Values given with --set are
kept instead of drawn. With --count, instances for seeds seed, seed+1, ...
are exported into --dir as <name>_<seed>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = c.Config.Seed
			}
			if count < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--count must be at least 1")
			}
			if count == 1 {
				return c.runSpec(cmd, args[0], pipeline.Options{Randomize: true, Seed: &seed}, flags)
			}
			if flags.dir == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--count needs --dir")
			}
			for i := range count {
				f := flags
				s := seed + uint64(i)
				base := flags.name
				if base == "" {
					base = pattern.NameFromPath(args[0])
				}
				f.name = fmt.Sprintf("%s_%d", base, s)
				if err := c.runSpec(cmd, args[0], pipeline.Options{Randomize: true, Seed: &s}, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&count, "count", 1, "number of instances to draw")
	return cmd
}

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "normalize [spec.json]",
		Short: "Convert curvature to edge-relative coordinates",
		Long: `Convert curvature to edge-relative coordinates.

Control points stored in panel coordinates are rewritten relative to their
edges, and panel translations are normalized when the spec asks for it.
Specs that are already relative are written unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSpec(cmd, args[0], pipeline.Options{}, flags)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// runSpec loads input, moves it to the instance described by opts and writes
// the resulting spec.
func (c *CLI) runSpec(cmd *cobra.Command, input string, opts pipeline.Options, flags specFlags) error {
	values, err := parseAssignments(flags.sets)
	if err != nil {
		return err
	}
	opts.SpecPath = input
	opts.Name = flags.name
	opts.Values = values
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	s, err := c.instantiate(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return c.writeSpec(cmd.OutOrStdout(), s, flags)
}

func (c *CLI) instantiate(ctx context.Context, opts pipeline.Options) (*pattern.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	s, _, err := pipeline.Load(opts)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Instantiate(s, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	prog.done("instantiated pattern",
		"pattern", s.Name,
		"values", len(opts.Values),
		"randomize", opts.Randomize,
		"restore", opts.Restore)
	return s, nil
}

// writeSpec writes s to the destination selected by flags.
func (c *CLI) writeSpec(w io.Writer, s *pattern.Spec, flags specFlags) error {
	switch {
	case flags.dir != "":
		dir, err := pattern.Export(s, flags.dir, flags.subfolder)
		if err != nil {
			return err
		}
		printSuccess(w, "Exported %s", s.Name)
		printDetail(w, "Directory: %s", dir)
	case flags.output != "":
		if err := pattern.Save(s, flags.output); err != nil {
			return err
		}
		printSuccess(w, "Wrote %s", s.Name)
		printFile(w, flags.output, false)
	default:
		return pattern.Write(s, w)
	}
	return nil
}
