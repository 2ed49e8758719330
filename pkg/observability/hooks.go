// Package observability lets the caller watch a run without the libraries
// knowing who is watching.
//
// The pipeline, the result cache and the HTTP transport report events
// through three hook interfaces. Each has a no-op default, so nothing is
// emitted until a caller registers an implementation. The CLI registers
// pipeline hooks to drive its terminal progress lines; tests register
// counting hooks to assert on cache behavior.
//
// Registration swaps the global hooks and hands back the previous ones:
//
//	prev := observability.SetPipelineHooks(progress)
//	defer observability.SetPipelineHooks(prev)
//
// Emitting sites look the hooks up on every event:
//
//	observability.Pipeline().OnFetchStart(ctx, batch, len(requests))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the patching pipeline.
type PipelineHooks interface {
	// Batch events
	OnBatchStart(ctx context.Context, batch, packages int)
	OnBatchComplete(ctx context.Context, batch int, duration time.Duration, err error)

	// Fetch events
	OnFetchStart(ctx context.Context, batch, archives int)
	OnFetchComplete(ctx context.Context, batch, fetched, failed int, duration time.Duration)

	// Per-archive and per-definition events
	OnArchiveClassified(ctx context.Context, digest string, languages []string, err error)
	OnDefinitionPatched(ctx context.Context, pkg string, languages []string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit. keyType is the key namespace, e.g. "langs".
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBatchStart(context.Context, int, int)                         {}
func (NoopPipelineHooks) OnBatchComplete(context.Context, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnFetchStart(context.Context, int, int)                         {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, int, int, int, time.Duration)  {}
func (NoopPipelineHooks) OnArchiveClassified(context.Context, string, []string, error)   {}
func (NoopPipelineHooks) OnDefinitionPatched(context.Context, string, []string, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the registered implementation of one hook interface.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] {
	return &slot[T]{cur: def, def: def}
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// swap installs h unless it is nil and returns the previous hooks.
func (s *slot[T]) swap(h T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	if any(h) != nil {
		s.cur = h
	}
	return prev
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.def
}

var (
	pipelineHooks = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheHooks    = newSlot[CacheHooks](NoopCacheHooks{})
	httpHooks     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers custom pipeline hooks and returns the previous
// ones so a caller can restore them when its run ends. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) PipelineHooks { return pipelineHooks.swap(h) }

// SetCacheHooks registers custom cache hooks and returns the previous ones.
func SetCacheHooks(h CacheHooks) CacheHooks { return cacheHooks.swap(h) }

// SetHTTPHooks registers custom HTTP hooks and returns the previous ones.
func SetHTTPHooks(h HTTPHooks) HTTPHooks { return httpHooks.swap(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
