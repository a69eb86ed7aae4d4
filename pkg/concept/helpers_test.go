package concept

import (
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

// rec builds a record whose dependencies come from deps, in order.
func rec(id string, deps ...string) Record {
	r := Record{ID: id}
	for _, d := range deps {
		r.Dependencies = append(r.Dependencies, NewEdge(d, id, "", ""))
	}
	return r
}

func build(t *testing.T, recs ...Record) *Graph {
	t.Helper()
	g := NewGraph()
	if err := g.Load(recs); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return g
}

func assertSet(t *testing.T, name string, got Set, want ...string) {
	t.Helper()
	if !got.Equal(NewSet(want...)) {
		t.Errorf("%s = %v, want %v", name, got.Sorted(), NewSet(want...).Sorted())
	}
}

// recordingHooks captures graph hook calls.
type recordingHooks struct {
	mu       sync.Mutex
	cycles   [][]string
	dangling []string
	computed []string
}

func (h *recordingHooks) OnCycleDetected(nodeID string, path []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cycles = append(h.cycles, path)
}

func (h *recordingHooks) OnDanglingReference(nodeID, missingID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dangling = append(h.dangling, missingID)
}

func (h *recordingHooks) OnClosureComputed(nodeID string, size int, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.computed = append(h.computed, nodeID)
}

func installHooks(t *testing.T) *recordingHooks {
	t.Helper()
	h := &recordingHooks{}
	observability.SetGraphHooks(h)
	t.Cleanup(observability.Reset)
	return h
}
