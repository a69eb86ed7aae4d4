package concept

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

// Graph is the authoritative id → node mapping. It resolves dependency
// sources for ancestry queries and versions its contents so that cached
// results go stale when dependency edges change.
//
// Insertion order is kept for display and export; it has no effect on query
// results. There is no node removal.
type Graph struct {
	mu      sync.RWMutex
	nodes   map[string]*Node
	order   []string
	version atomic.Uint64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// Load bulk-inserts records. Either every record is inserted or, on the first
// invalid or duplicate record, none is.
func (g *Graph) Load(records []Record) error {
	nodes := make([]*Node, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		n, err := NewNode(rec)
		if err != nil {
			return err
		}
		if seen[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
	}
	for _, n := range nodes {
		g.insert(n)
	}
	return nil
}

// Add inserts a single node. Cached results stay valid: a node whose edge
// named the new id could not resolve it and so never cached a result.
func (g *Graph) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrInvalidNodeID
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	g.insert(n)
	return nil
}

// insert adds n. Callers hold the write lock.
func (g *Graph) insert(n *Node) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

// AddDependency appends e to the dependencies of node e.To. The source need
// not exist yet; queries report it as a dangling reference until it does.
// Every cached result in the graph goes stale.
func (g *Graph) AddDependency(e DirectedEdge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[e.To]
	if !ok {
		return &NotFoundError{ID: e.To}
	}
	if err := n.addDependency(e); err != nil {
		return err
	}
	g.version.Add(1)
	return nil
}

// RemoveDependency removes the dependency edge with edgeID from node to.
// It reports whether an edge was removed; removing an absent edge is not an
// error and leaves caches intact.
func (g *Graph) RemoveDependency(to, edgeID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[to]
	if !ok {
		return false, &NotFoundError{ID: to}
	}
	_, removed := n.removeDependency(edgeID)
	if !removed {
		return false, nil
	}
	g.version.Add(1)
	return true, nil
}

// Invalidate marks every cached result in the graph stale.
func (g *Graph) Invalidate() { g.version.Add(1) }

// Version returns the current content version.
func (g *Graph) Version() uint64 { return g.version.Load() }

// Resolve implements [Resolver].
func (g *Graph) Resolve(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Get returns the node with the given id, or a [*NotFoundError].
func (g *Graph) Get(id string) (*Node, error) {
	if n, ok := g.Resolve(id); ok {
		return n, nil
	}
	return nil, &NotFoundError{ID: id}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// IDs returns the node ids in insertion order.
func (g *Graph) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Records returns a copy of every node's data in insertion order.
func (g *Graph) Records() []Record {
	nodes := g.Nodes()
	recs := make([]Record, len(nodes))
	for i, n := range nodes {
		recs[i] = n.Record()
	}
	return recs
}

// Ancestors returns the ancestor set of node id.
func (g *Graph) Ancestors(id string) (Set, error) {
	n, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	return n.Ancestors(g)
}

// IsAncestor reports whether candidate is an ancestor of node id.
func (g *Graph) IsAncestor(id, candidate string) (bool, error) {
	n, err := g.Get(id)
	if err != nil {
		return false, err
	}
	return n.IsAncestor(g, candidate)
}

// UniqueDependencies returns the unique dependency set of node id.
func (g *Graph) UniqueDependencies(id string) (Set, error) {
	n, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	return n.UniqueDependencies(g)
}

// IsUniqueDependency reports whether dep is a unique dependency of node id.
func (g *Graph) IsUniqueDependency(id, dep string) (bool, error) {
	n, err := g.Get(id)
	if err != nil {
		return false, err
	}
	return n.IsUniqueDependency(g, dep)
}

// Subgraph returns a new graph holding node id and all of its ancestors, in
// this graph's insertion order. This is the map a client requests for a
// single key topic.
func (g *Graph) Subgraph(id string) (*Graph, error) {
	ancestors, err := g.Ancestors(id)
	if err != nil {
		return nil, err
	}
	var recs []Record
	for _, n := range g.Nodes() {
		if n.ID == id || ancestors.Has(n.ID) {
			recs = append(recs, n.Record())
		}
	}
	sub := NewGraph()
	if err := sub.Load(recs); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unlearned returns node id and its ancestors that are not in learned,
// prerequisites first. Dependencies are visited in declaration order, so the
// result is deterministic.
func (g *Graph) Unlearned(id string, learned Set) ([]string, error) {
	root, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	// Resolves every reachable source, so the walk below cannot dangle.
	if _, err := root.Ancestors(g); err != nil {
		return nil, err
	}

	var out []string
	visited := make(map[string]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		visited[n.ID] = true
		for _, dep := range n.DependencyIDs() {
			if visited[dep] {
				continue
			}
			if src, ok := g.Resolve(dep); ok {
				visit(src)
			}
		}
		if !learned.Has(n.ID) {
			out = append(out, n.ID)
		}
	}
	visit(root)
	return out, nil
}

// Report is the outcome of [Graph.Check].
type Report struct {
	Dangling []*DanglingReferenceError
	Cycles   []CycleDetectedWarning
}

// OK reports whether the graph has neither dangling references nor cycles.
func (r Report) OK() bool { return len(r.Dangling) == 0 && len(r.Cycles) == 0 }

// Check computes the ancestry of every node from scratch and reports every
// cycle it meets and every dependency naming an unknown node. Existing
// caches are invalidated.
func (g *Graph) Check() Report {
	g.Invalidate()
	version := g.Version()

	var (
		report Report
		cycles warnings
	)
	nodes := g.Nodes()
	seen := make(map[DanglingReferenceError]bool)
	for _, n := range nodes {
		for _, src := range n.DependencyIDs() {
			ref := DanglingReferenceError{NodeID: n.ID, MissingID: src}
			if _, ok := g.Resolve(src); ok || seen[ref] {
				continue
			}
			seen[ref] = true
			observability.Graph().OnDanglingReference(n.ID, src)
			report.Dangling = append(report.Dangling, &ref)
		}
	}
	for _, n := range nodes {
		if n.cached(version) != nil {
			continue
		}
		// Dangling references were collected above; the walk is for cycles.
		t := newTraversal(g, version, cycles.add)
		t.onDangling = func(string, string) {}
		t.run(n)
	}
	report.Cycles = cycles.list
	return report
}
