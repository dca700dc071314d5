package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seamline/pkg/cache"
	"github.com/matzehuels/seamline/pkg/observability"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Every run loads its own copy of the template, so
// multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → instantiate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	source := opts.source()
	hooks.OnLoadStart(ctx, source)
	loadStart := time.Now()
	s, data, err := Load(opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	hooks.OnLoadComplete(ctx, source, len(s.Pattern.Panels), result.Stats.LoadTime, nil)
	result.TemplateHash = cache.Hash(append([]byte(s.Name+"\n"), data...))
	result.Stats.PanelCount = len(s.Pattern.Panels)
	result.Stats.ParameterCount = len(s.Parameters)

	r.Logger.Info("loaded pattern",
		"name", s.Name,
		"panels", result.Stats.PanelCount,
		"parameters", result.Stats.ParameterCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Instantiate
	hooks.OnApplyStart(ctx, s.Name, len(opts.Values))
	applyStart := time.Now()
	s, instance, hit, err := r.InstantiateWithCacheInfo(ctx, s, result.TemplateHash, opts)
	result.Stats.ApplyTime = time.Since(applyStart)
	hooks.OnApplyComplete(ctx, opts.nameOr(s), result.Stats.ApplyTime, err)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	result.Spec = s
	result.InstanceHash = cache.Hash(instance)
	result.CacheInfo.InstanceHit = hit

	r.Logger.Info("applied parameters",
		"values", len(opts.Values),
		"randomize", opts.Randomize,
		"restore", opts.Restore,
		"cached", hit,
		"duration", result.Stats.ApplyTime)

	// Stage 3: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, result.InstanceHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// InstantiateWithCacheInfo applies opts to the loaded template s and returns
// the instance, its serialized form and whether it came from cache. On a
// cache hit the returned spec is decoded from the cache and s is untouched.
func (r *Runner) InstantiateWithCacheInfo(ctx context.Context, s *pattern.Spec, templateHash string, opts Options) (*pattern.Spec, []byte, bool, error) {
	cacheKey := r.Keyer.InstanceKey(templateHash, opts.InstanceKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := pattern.Read(bytes.NewReader(data))
			if err == nil {
				cached.Name = s.Name
				cacheHooks.OnCacheHit(ctx, "instance")
				return cached, data, true, nil
			}
			// If decoding fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("instance cache unavailable", "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, "instance")
	}

	if err := Instantiate(s, opts); err != nil {
		return nil, nil, false, err
	}
	var buf bytes.Buffer
	if err := pattern.Write(s, &buf); err != nil {
		return nil, nil, false, err
	}
	data := buf.Bytes()

	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLInstance); err != nil {
		r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
	} else {
		cacheHooks.OnCacheSet(ctx, "instance", len(data))
	}
	return s, data, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Only the formats missing from the cache are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *pattern.Spec, instanceHash string, opts Options) (map[string][]byte, bool, error) {
	cacheHooks := observability.Cache()
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(instanceHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := RenderFormat(ctx, s, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// source describes where the template comes from, for hooks and logs.
func (o *Options) source() string {
	switch {
	case o.SpecPath != "":
		return o.SpecPath
	case len(o.Spec) > 0:
		return "inline"
	case o.Template != nil:
		return o.Template.Name
	}
	return ""
}

func (o *Options) nameOr(s *pattern.Spec) string {
	if s != nil {
		return s.Name
	}
	return o.Name
}
