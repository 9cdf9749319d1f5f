// Package observability lets prereqtree report what it is doing without
// depending on a metrics backend.
//
// Three hook sets cover the events worth counting: [ViewHooks] for loads,
// toggles, layouts, transitions and renders; [CacheHooks] for payload and
// artifact cache traffic; [HTTPHooks] for payload fetches and served
// requests. Each defaults to a no-op. A binary swaps in real hooks once at
// start-up, and the serve command installs [PrometheusHooks]:
//
//	hooks := observability.NewPrometheusHooks(reg)
//	observability.SetViewHooks(hooks)
//	observability.SetCacheHooks(hooks)
//
// Packages emit through the accessors:
//
//	observability.View().OnLayout(ctx, len(visible), time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// View Hooks
// =============================================================================

// ViewHooks receives events from interactive tree views.
type ViewHooks interface {
	// OnLoad records a payload turned into a tree.
	OnLoad(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// OnToggle records a node activation. collapsed reports the node's state
	// after the toggle.
	OnToggle(ctx context.Context, nodeID int, collapsed bool, err error)

	// OnLayout records a layout pass over the visible nodes.
	OnLayout(ctx context.Context, visibleCount int, duration time.Duration, err error)

	// OnTransition records the sizes of a reconciled render cycle.
	OnTransition(ctx context.Context, entering, updating, exiting int)

	// OnRender records a render surface being produced.
	OnRender(ctx context.Context, format string, duration time.Duration, err error)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP operations: payload fetches by the
// client, and requests served by the server under the host "server".
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

// NoopViewHooks is a no-op implementation of ViewHooks.
type NoopViewHooks struct{}

func (NoopViewHooks) OnLoad(context.Context, int, time.Duration, error)   {}
func (NoopViewHooks) OnToggle(context.Context, int, bool, error)          {}
func (NoopViewHooks) OnLayout(context.Context, int, time.Duration, error) {}
func (NoopViewHooks) OnTransition(context.Context, int, int, int)         {}

func (NoopViewHooks) OnRender(context.Context, string, time.Duration, error) {}

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
// Registry
// =============================================================================

// slot holds the current implementation of one hook set. Reads are
// lock-free because hooks fire on every frame and request.
type slot[H any] struct {
	p    atomic.Pointer[H]
	noop H
}

func newSlot[H any](noop H) *slot[H] {
	s := &slot[H]{noop: noop}
	s.reset()
	return s
}

func (s *slot[H]) get() H { return *s.p.Load() }

func (s *slot[H]) set(h H) { s.p.Store(&h) }

func (s *slot[H]) reset() { s.set(s.noop) }

var (
	viewSlot  = newSlot[ViewHooks](NoopViewHooks{})
	cacheSlot = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot  = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetViewHooks installs h for every view. A nil h is ignored.
func SetViewHooks(h ViewHooks) {
	if h != nil {
		viewSlot.set(h)
	}
}

// SetCacheHooks installs h for every cache. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h for fetches and the server. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func View() ViewHooks   { return viewSlot.get() }
func Cache() CacheHooks { return cacheSlot.get() }
func HTTP() HTTPHooks   { return httpSlot.get() }

// Reset puts the no-op hooks back, typically when serve exits or a test ends.
func Reset() {
	viewSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
