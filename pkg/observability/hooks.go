// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about rung editing, layout passes, rendering, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(&myEditorHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Editor().OnMutation(ctx, "insert_instruction", rungNumber, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the mutation controller.
type EditorHooks interface {
	// OnMutation records a structural edit applied to a rung.
	OnMutation(ctx context.Context, op string, rungNumber int, err error)

	// OnRelayout records one rung being laid out again after invalidation.
	OnRelayout(ctx context.Context, rungNumber, height int, duration time.Duration)

	// OnCascade records a height change rippling to following rungs.
	OnCascade(ctx context.Context, fromRung, shifted int)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load/layout/render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, rungCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, routine string, rungCount int)
	OnLayoutComplete(ctx context.Context, routine string, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from routine library backends.
type StorageHooks interface {
	// OnQuery records a library read.
	OnQuery(ctx context.Context, backend, op string, duration time.Duration, err error)

	// OnWrite records a library write.
	OnWrite(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type noopEditorHooks struct{}

func (noopEditorHooks) OnMutation(context.Context, string, int, error)       {}
func (noopEditorHooks) OnRelayout(context.Context, int, int, time.Duration) {}
func (noopEditorHooks) OnCascade(context.Context, int, int)                 {}

type noopPipelineHooks struct{}

func (noopPipelineHooks) OnLoadStart(context.Context, string)                                  {}
func (noopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)    {}
func (noopPipelineHooks) OnLayoutStart(context.Context, string, int)                           {}
func (noopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)       {}
func (noopPipelineHooks) OnRenderStart(context.Context, []string)                              {}
func (noopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)     {}

type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(context.Context, string)       {}
func (noopCacheHooks) OnCacheMiss(context.Context, string)      {}
func (noopCacheHooks) OnCacheSet(context.Context, string, int)  {}

type noopStorageHooks struct{}

func (noopStorageHooks) OnQuery(context.Context, string, string, time.Duration, error) {}
func (noopStorageHooks) OnWrite(context.Context, string, string, time.Duration, error) {}

// =============================================================================
// Registration
// =============================================================================

var (
	mu            sync.RWMutex
	editorHooks   EditorHooks   = noopEditorHooks{}
	pipelineHooks PipelineHooks = noopPipelineHooks{}
	cacheHooks    CacheHooks    = noopCacheHooks{}
	storageHooks  StorageHooks  = noopStorageHooks{}
)

// SetEditorHooks registers editor hooks. Pass nil to reset to no-op.
func SetEditorHooks(h EditorHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		editorHooks = noopEditorHooks{}
		return
	}
	editorHooks = h
}

// SetPipelineHooks registers pipeline hooks. Pass nil to reset to no-op.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		pipelineHooks = noopPipelineHooks{}
		return
	}
	pipelineHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to reset to no-op.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = noopCacheHooks{}
		return
	}
	cacheHooks = h
}

// SetStorageHooks registers storage hooks. Pass nil to reset to no-op.
func SetStorageHooks(h StorageHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		storageHooks = noopStorageHooks{}
		return
	}
	storageHooks = h
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	mu.RLock()
	defer mu.RUnlock()
	return editorHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storageHooks
}
