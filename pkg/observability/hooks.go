// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layout computation, rendering, and
// cache operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Hooks are called synchronously on the pipeline's goroutine; implementations
// that do real work should hand off to their own goroutines.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// PipelineHooks receives events about pipeline stage execution.
type PipelineHooks interface {
	// OnLayoutStart is called before layout computation begins.
	OnLayoutStart(ctx context.Context, nodeCount, linkCount int)

	// OnLayoutComplete is called when layout computation finishes.
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// OnRenderStart is called before artifact rendering begins.
	OnRenderStart(ctx context.Context, formats []string)

	// OnRenderComplete is called when artifact rendering finishes.
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events about cache operations.
type CacheHooks interface {
	// OnCacheHit is called when a lookup finds a cached entry.
	// Kind is "layout" or "artifact".
	OnCacheHit(ctx context.Context, kind string)

	// OnCacheMiss is called when a lookup finds nothing.
	OnCacheMiss(ctx context.Context, kind string)

	// OnCacheSet is called after storing an entry of the given size.
	OnCacheSet(ctx context.Context, kind string, bytes int)
}

// =============================================================================
// No-op Defaults
// =============================================================================

// NoopPipelineHooks is a PipelineHooks implementation that does nothing.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, int, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a CacheHooks implementation that does nothing.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Registration
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
)

// SetPipelineHooks registers pipeline hooks. Safe for concurrent use, though
// registration is normally done once at startup. Passing nil restores the
// no-op default.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		h = NoopPipelineHooks{}
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = h
}

// GetPipelineHooks returns the registered pipeline hooks.
func GetPipelineHooks() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// SetCacheHooks registers cache hooks. Passing nil restores the no-op default.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		h = NoopCacheHooks{}
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cacheHooks = h
}

// GetCacheHooks returns the registered cache hooks.
func GetCacheHooks() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}
