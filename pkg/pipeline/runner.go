package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ladderworks/ladderkit/pkg/cache"
	"github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/ladder"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/observability"
	"github.com/ladderworks/ladderkit/pkg/render"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Runner executes the rendering pipeline with caching.
//
// The Runner caches rendered artifacts keyed by document content and
// geometry config. Loading a document and laying it out are integer-cheap
// operations, so those stages always recompute; only the render stage,
// which can involve rasterization, consults the cache.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a pipeline runner. A nil cache disables caching, a
// nil keyer uses the default keyer, and a nil logger uses the default
// logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete pipeline: load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.DocHash = DocumentHash(doc)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RungCount = len(doc.Rungs)

	r.Logger.Info("loaded document",
		"name", doc.Name,
		"rungs", len(doc.Rungs),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	rt, rl, err := r.ComputeLayout(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = rl
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"rungs", len(rl.Rungs),
		"height", rl.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rt, rl, result.DocHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and validates the routine document named by the options.
func (r *Runner) Load(ctx context.Context, opts Options) (*ladder.Document, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	source := opts.Input
	if opts.Document != nil {
		source = "document"
	}
	observability.Pipeline().OnLoadStart(ctx, source)

	start := time.Now()
	doc := opts.Document
	var err error
	if doc == nil {
		doc, err = ladder.ReadFile(opts.Input)
	} else {
		err = doc.Validate()
	}
	rungs := 0
	if doc != nil {
		rungs = len(doc.Rungs)
	}
	observability.Pipeline().OnLoadComplete(ctx, source, rungs, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ComputeLayout parses the document into a routine model and lays it out.
func (r *Runner) ComputeLayout(ctx context.Context, doc *ladder.Document, opts Options) (*rung.Routine, *layout.RoutineLayout, error) {
	if err := opts.SetLayoutDefaults(); err != nil {
		return nil, nil, err
	}

	observability.Pipeline().OnLayoutStart(ctx, doc.Name, len(doc.Rungs))
	start := time.Now()

	rt, err := doc.Routine()
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, doc.Name, time.Since(start), err)
		return nil, nil, err
	}
	rl, err := layout.NewEngine(opts.Config).LayoutRoutine(rt)
	observability.Pipeline().OnLayoutComplete(ctx, doc.Name, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return rt, rl, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports
// whether every requested format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rt *rung.Routine, rl *layout.RoutineLayout, docHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.SetRenderDefaults(); err != nil {
		return nil, false, err
	}
	if err := opts.SetLayoutDefaults(); err != nil {
		return nil, false, err
	}

	// Artifacts are keyed by the layout key, which already folds in the
	// document hash and the geometry config.
	layoutHash := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err == nil && hit {
				observability.Cache().OnCacheHit(ctx, key)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, key)
			allCached = false
			break
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.renderAll(rt, rl, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rt *rung.Routine, rl *layout.RoutineLayout, docHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, rt, rl, docHash, opts)
	return artifacts, err
}

func (r *Runner) renderAll(rt *rung.Routine, rl *layout.RoutineLayout, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = render.RenderSVG(rl,
				render.WithConfig(opts.Config),
				render.WithTitle(opts.Title))
		case FormatJSON:
			data, err := render.RenderJSON(rl,
				render.WithJSONConfig(opts.Config),
				render.WithJSONRoutine(rt.Name),
				render.WithJSONWires())
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(rl,
				render.WithPNGConfig(opts.Config),
				render.WithPNGScale(opts.Scale))
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatDOT:
			out[format] = []byte(routineDOT(rt))
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "invalid format: %q", format)
		}
	}
	return out, nil
}

// routineDOT renders the branch structure of every rung. Graphviz
// accepts multiple graphs in one stream and renders one page per graph.
func routineDOT(rt *rung.Routine) string {
	var b strings.Builder
	for _, rg := range rt.Rungs() {
		b.WriteString(render.ToDOT(rg, render.DotOptions{}))
		b.WriteString("\n")
	}
	return b.String()
}

// DocumentHash computes the content hash of a document.
func DocumentHash(doc *ladder.Document) string {
	data, _ := json.Marshal(doc)
	return cache.Hash(data)
}

// configHash folds the geometry config into cache keys.
func configHash(cfg layout.Config) string {
	data, _ := json.Marshal(cfg)
	return cache.Hash(data)
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
