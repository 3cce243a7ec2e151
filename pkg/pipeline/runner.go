package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowviz/sankey/pkg/cache"
	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/graph"
	"github.com/flowviz/sankey/pkg/observability"
	"github.com/flowviz/sankey/pkg/render/dot"
	"github.com/flowviz/sankey/pkg/render/svg"
	"github.com/flowviz/sankey/pkg/sankey"
)

// cacheTTL bounds how long cached layouts and artifacts live. Content-derived
// keys never go stale, so the TTL only limits disk and Redis growth.
const cacheTTL = 24 * time.Hour

// =============================================================================
// Runner - Pipeline Orchestration
// =============================================================================

// Runner executes the layout → render pipeline with caching.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a pipeline runner. A nil cache disables caching and a nil
// logger discards output.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Logger: logger}
}

// Result contains the output of a pipeline execution.
type Result struct {
	Layout    graph.Layout      // computed geometry
	Artifacts map[string][]byte // rendered output keyed by format
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats captures execution metrics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which pipeline stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // true only when every requested artifact was cached
}

// Execute runs the full pipeline: validate → layout → render.
// The input graph is never mutated.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	raw, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal graph")
	}
	graphHash := cache.Hash(raw)

	result := &Result{
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats:     Stats{NodeCount: len(g.Nodes), LinkCount: len(g.Links)},
	}

	hooks := observability.GetPipelineHooks()

	// Stage 1: layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, len(g.Nodes), len(g.Links))
	layout, layoutJSON, hit, err := r.computeLayout(ctx, g, graphHash, opts)
	hooks.OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	logger.Info("layout ready",
		"nodes", len(layout.Nodes),
		"links", len(layout.Links),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: render artifacts
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	allHit := true
	layoutHash := cache.Hash(layoutJSON)
	var renderErr error
	for _, format := range opts.Formats {
		data, artifactHit, err := r.renderArtifact(ctx, g, layout, layoutJSON, layoutHash, format, hit, opts)
		if err != nil {
			renderErr = err
			break
		}
		result.Artifacts[format] = data
		allHit = allHit && artifactHit
		logger.Info("artifact ready", "format", format, "bytes", len(data), "cached", artifactHit)
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), renderErr)
	if renderErr != nil {
		return nil, renderErr
	}
	result.CacheInfo.RenderHit = allHit
	result.Stats.RenderTime = time.Since(renderStart)

	return result, nil
}

// computeLayout returns the layout for the graph, from cache when possible,
// along with its JSON serialization.
func (r *Runner) computeLayout(ctx context.Context, g graph.Graph, graphHash string, opts Options) (graph.Layout, []byte, bool, error) {
	key := cache.LayoutKey(graphHash, opts.LayoutKeyOpts())

	cacheHooks := observability.GetCacheHooks()
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			if layout, err := graph.UnmarshalLayout(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				return layout, data, true, nil
			}
			// Corrupt entry: fall through and recompute.
			_ = r.Cache.Delete(ctx, key)
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	eg, err := graph.ToSankey(g)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	if err := sankey.Compute(eg, opts.LayoutOptions()...); err != nil {
		return graph.Layout{}, nil, false, layoutError(err)
	}

	layout := graph.LayoutOf(eg, opts.Width, opts.Height)
	data, err := graph.MarshalLayout(layout)
	if err != nil {
		return graph.Layout{}, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "marshal layout")
	}
	if err := r.Cache.Set(ctx, key, data, cacheTTL); err != nil {
		opts.Logger.Warn("layout cache write failed", "error", err)
	} else {
		cacheHooks.OnCacheSet(ctx, "layout", len(data))
	}
	return layout, data, false, nil
}

// renderArtifact produces one output format, from cache when possible.
func (r *Runner) renderArtifact(ctx context.Context, g graph.Graph, layout graph.Layout, layoutJSON []byte, layoutHash, format string, layoutHit bool, opts Options) ([]byte, bool, error) {
	if format == FormatJSON {
		// The layout JSON is the artifact; its caching rides on the layout stage.
		return layoutJSON, layoutHit, nil
	}

	cacheHooks := observability.GetCacheHooks()
	key := cache.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	var data []byte
	switch format {
	case FormatSVG:
		linkStyle, err := svg.ParseLinkStyle(opts.LinkStyle)
		if err != nil {
			return nil, false, err
		}
		nodeStyle, err := svg.ParseNodeStyle(opts.NodeStyle)
		if err != nil {
			return nil, false, err
		}
		data = svg.RenderLayout(layout,
			svg.WithViewBox(opts.Width, opts.Height),
			svg.WithLinkStyle(linkStyle),
			svg.WithNodeStyle(nodeStyle))
	case FormatDOT:
		data = []byte(dot.ToDOT(g))
	case FormatPreview:
		rendered, err := dot.RenderSVG(ctx, dot.ToDOT(g))
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "graphviz preview")
		}
		data = rendered
	default:
		return nil, false, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}

	if err := r.Cache.Set(ctx, key, data, cacheTTL); err != nil {
		opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
	} else {
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// layoutError maps engine sentinel errors to coded errors so the CLI and API
// report them consistently.
func layoutError(err error) error {
	switch {
	case stderrors.Is(err, sankey.ErrCycleDetected):
		return errors.Wrap(errors.ErrCodeCycle, err, "graph contains a cycle")
	case stderrors.Is(err, sankey.ErrUnknownSourceNode), stderrors.Is(err, sankey.ErrUnknownTargetNode):
		return errors.Wrap(errors.ErrCodeUnknownNode, err, "link references an unknown node")
	case stderrors.Is(err, sankey.ErrDuplicateNodeID):
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "duplicate node id")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "layout failed")
	}
}
