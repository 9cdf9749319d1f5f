package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prereqtree/pkg/cache"
	"github.com/matzehuels/prereqtree/pkg/observability"
	"github.com/matzehuels/prereqtree/pkg/source"
)

const cacheKeyType = "artifact"

// Runner runs the load, shape, layout and render stages against a shared
// cache. The CLI and the server both go through it, so a given payload and
// setting produce the same artifact key everywhere. It is safe for
// concurrent use.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *source.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Payloads are fetched through the same cache.
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
	f := source.NewFetcher(c, logger)
	f.Keyer = keyer
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: f,
		Logger:  logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	t, data, err := Parse(ctx, r.Fetcher, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := Shape(t, opts); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Tree = t
	result.PayloadHash = cache.Hash(data)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = t.Len()

	r.Logger.Debug("parsed payload",
		"nodes", t.Len(),
		"hash", result.PayloadHash[:12],
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	frame, err := GenerateLayout(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(frame.Glyphs)

	r.Logger.Debug("computed layout",
		"visible", len(frame.Glyphs),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render. Formats already in the cache are reused; only the
	// rest are drawn.
	renderStart := time.Now()
	artifacts, missing := r.cachedArtifacts(ctx, result.PayloadHash, opts)
	if len(missing) > 0 {
		sub := opts
		sub.Formats = missing
		drawn, err := Render(ctx, frame, t, sub)
		if err != nil {
			observability.View().OnRender(ctx, strings.Join(missing, ","), time.Since(renderStart), err)
			return nil, fmt.Errorf("render: %w", err)
		}
		r.storeArtifacts(ctx, result.PayloadHash, opts, drawn)
		for format, data := range drawn {
			artifacts[format] = data
		}
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = len(missing) == 0
	result.Stats.RenderTime = time.Since(renderStart)
	for _, format := range missing {
		observability.View().OnRender(ctx, format, result.Stats.RenderTime, nil)
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"drawn", missing,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// cachedArtifacts looks up every requested format. It returns the hits and
// the formats that still have to be rendered, in request order. Refresh
// treats everything as missing.
func (r *Runner) cachedArtifacts(ctx context.Context, hash string, opts Options) (map[string][]byte, []string) {
	hits := make(map[string][]byte, len(opts.Formats))
	if opts.Refresh {
		return hits, append([]string(nil), opts.Formats...)
	}
	var missing []string
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, cacheKeyType)
			missing = append(missing, format)
			continue
		}
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
		hits[format] = data
	}
	return hits, missing
}

func (r *Runner) storeArtifacts(ctx context.Context, hash string, opts Options, artifacts map[string][]byte) {
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
