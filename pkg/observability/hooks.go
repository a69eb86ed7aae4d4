// Package observability lets a binary observe ancestry queries, cache
// traffic, and HTTP responses without the libraries importing a metrics
// backend.
//
// Every hook set defaults to a no-op. A binary installs its own at startup,
// before serving:
//
//	observability.SetGraphHooks(recorder)
//	observability.SetCacheHooks(recorder)
//
// and libraries report through the accessors:
//
//	observability.Graph().OnCycleDetected(nodeID, path)
//
// Graph hooks take no context because ancestry is computed in memory and
// never sees a request.
package observability

import (
	"context"
	"sync"
	"time"
)

// GraphHooks receives events from ancestry traversal.
type GraphHooks interface {
	// OnCycleDetected records a traversal that re-entered a node in progress.
	// path lists the node ids on the cycle, starting at the re-entered node.
	OnCycleDetected(nodeID string, path []string)

	// OnDanglingReference records a dependency naming an unknown node.
	OnDanglingReference(nodeID, missingID string)

	// OnClosureComputed records a completed (uncached) ancestry query.
	OnClosureComputed(nodeID string, size int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	// OnCacheSet records a write of size bytes.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP query server.
type HTTPHooks interface {
	// OnResponse records a served request. route is the matched route
	// pattern, not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopGraphHooks discards graph events.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnCycleDetected(string, []string)             {}
func (NoopGraphHooks) OnDanglingReference(string, string)           {}
func (NoopGraphHooks) OnClosureComputed(string, int, time.Duration) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

type hookSet struct {
	graph GraphHooks
	cache CacheHooks
	http  HTTPHooks
}

func noopSet() hookSet {
	return hookSet{NoopGraphHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu     sync.RWMutex
	active = noopSet()
)

func update(fn func(*hookSet)) {
	mu.Lock()
	fn(&active)
	mu.Unlock()
}

func current() hookSet {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// SetGraphHooks installs h for ancestry events. A nil h is ignored.
func SetGraphHooks(h GraphHooks) {
	if h != nil {
		update(func(s *hookSet) { s.graph = h })
	}
}

// SetCacheHooks installs h for cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h for server responses. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Graph returns the installed graph hooks.
func Graph() GraphHooks { return current().graph }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current().http }

// Reset puts every hook set back to its no-op default.
func Reset() {
	update(func(s *hookSet) { *s = noopSet() })
}
