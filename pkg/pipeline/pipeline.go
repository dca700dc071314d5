// Package pipeline provides the load → instantiate → render pipeline for
// Seamline patterns.
//
// The CLI and the preview server both go through this package so that a
// pattern instance is built the same way regardless of entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a template from a file, inline JSON or an already loaded spec
//  2. Instantiate: Restore, randomize and apply parameter values
//  3. Render: Generate outputs (SVG, PNG, PDF, JSON, DOT, influence graph)
//
// Instances and artifacts are cached by content hash, so asking twice for the
// same measurements of the same template renders once.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SpecPath: "skirt/specification.json",
//	    Values:   map[string]string{"length": "1.2"},
//	    Formats:  []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seamline/pkg/cache"
	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
	"github.com/matzehuels/seamline/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSeed is the random seed used when randomizing without one.
	DefaultSeed = uint64(42)

	// DefaultMargin is the gap between panels in pattern units.
	DefaultMargin = render.DefaultMargin

	// DefaultScale is the number of PNG pixels per pattern unit.
	DefaultScale = 4.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	// FormatGraph is the parameter influence graph rendered to SVG.
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// Extensions maps each format to the file extension used when writing it.
var Extensions = map[string]string{
	FormatSVG:   ".svg",
	FormatPNG:   ".png",
	FormatPDF:   ".pdf",
	FormatJSON:  ".json",
	FormatDOT:   ".dot",
	FormatGraph: ".graph.svg",
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:   "image/svg+xml",
	FormatPNG:   "image/png",
	FormatPDF:   "application/pdf",
	FormatJSON:  "application/json",
	FormatDOT:   "text/vnd.graphviz",
	FormatGraph: "image/svg+xml",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options. Exactly one of SpecPath, Spec and Template is used, in
	// that order of precedence.
	SpecPath string          `json:"-"`
	Spec     json.RawMessage `json:"spec,omitempty"`
	Name     string          `json:"name,omitempty"` // Overrides the derived pattern name

	// Instance options
	Values    map[string]string `json:"values,omitempty"` // "1.2" or "1.2,0.8"
	Randomize bool              `json:"randomize,omitempty"`
	Seed      *uint64           `json:"seed,omitempty"`    // Nil selects DefaultSeed; 0 is a valid seed
	Restore   bool              `json:"restore,omitempty"` // Reset to the template before applying

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Margin   float64  `json:"margin,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	EdgeIDs  bool     `json:"edge_ids,omitempty"`
	Vertices bool     `json:"vertices,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Edge lists on influence graph arrows
	Refresh  bool     `json:"refresh,omitempty"`  // Bypass the cache

	// Runtime options (not serialized)
	Template *pattern.Spec `json:"-"`
	Logger   *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the pattern instance the artifacts were rendered from.
	Spec *pattern.Spec

	// TemplateHash is the content hash of the loaded template.
	TemplateHash string

	// InstanceHash is the content hash of the instance.
	InstanceHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PanelCount     int
	ParameterCount int
	LoadTime       time.Duration
	ApplyTime      time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	InstanceHit bool // Whether the instance came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ParseValues converts "name" → "1.2" / "1.2,0.8" pairs into parameter values.
func ParseValues(raw map[string]string) (map[string]pattern.Value, error) {
	out := make(map[string]pattern.Value, len(raw))
	for name, s := range raw {
		v, err := pattern.ParseValue(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parameter %q", name)
		}
		out[name] = v
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.SpecPath == "" && len(o.Spec) == 0 && o.Template == nil {
		return errors.New(errors.ErrCodeInvalidInput, "spec path, inline spec or template is required")
	}
	if o.Name != "" {
		if err := errors.ValidateName(o.Name); err != nil {
			return err
		}
	}
	if _, err := ParseValues(o.Values); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative, got %g", o.Margin)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Randomize && o.Seed == nil {
		seed := DefaultSeed
		o.Seed = &seed
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = dedupe(o.Formats)
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// seed returns the random seed, or 0 when none is set.
func (o *Options) seed() uint64 {
	if o.Seed == nil {
		return 0
	}
	return *o.Seed
}

// InstanceKeyOpts returns cache key options for the instance stage.
func (o *Options) InstanceKeyOpts() cache.InstanceKeyOpts {
	return cache.InstanceKeyOpts{
		Values:    o.Values,
		Randomize: o.Randomize,
		Seed:      o.seed(),
		Restore:   o.Restore,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Options
// that do not affect a format are left out so they do not split its cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPDF:
		k.Margin, k.Labels, k.EdgeIDs, k.Vertices = o.Margin, o.Labels, o.EdgeIDs, o.Vertices
	case FormatPNG:
		k.Margin, k.Scale = o.Margin, o.Scale
	case FormatJSON:
		k.Margin = o.Margin
	case FormatDOT, FormatGraph:
		k.Detailed = o.Detailed
	}
	return k
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
