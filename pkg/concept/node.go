package concept

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Record is the plain-data form of a node, used to construct nodes and to
// export them again. Dependencies must target the record's ID; Outlinks
// originate at it.
type Record struct {
	ID           string
	Title        string
	Summary      string
	Pointers     string
	Questions    []Question
	Resources    []Resource
	Dependencies []DirectedEdge
	Outlinks     []DirectedEdge
}

// Resolver turns a node id into a node. [Graph] is the canonical
// implementation; [Index] serves tests and ad-hoc traversals.
type Resolver interface {
	Resolve(id string) (*Node, bool)
}

// versioned is implemented by resolvers whose contents can change. Cached
// results stamped with an older version are recomputed.
type versioned interface {
	Version() uint64
}

func versionOf(r Resolver) uint64 {
	if v, ok := r.(versioned); ok {
		return v.Version()
	}
	return 0
}

// Index is a fixed map-backed [Resolver].
type Index map[string]*Node

// Resolve implements [Resolver].
func (x Index) Resolve(id string) (*Node, bool) {
	n, ok := x[id]
	return n, ok
}

// Node is a topic in the dependency graph. Text fields and the auxiliary
// collections are plain data; the dependency collection is guarded because
// ancestry results are derived from it.
//
// A Node never holds a reference to the graph that owns it. Queries take the
// [Resolver] used to look up dependency sources.
type Node struct {
	ID        string
	Title     string
	Summary   string
	Pointers  string
	Questions []Question
	Resources []Resource
	Outlinks  []DirectedEdge

	mu           sync.RWMutex
	deps         []DirectedEdge
	memo         *ancestry
	displayTitle string
}

// ancestry is the memoized result of a traversal, valid for one version.
type ancestry struct {
	version   uint64
	ancestors Set
	unique    Set
}

// NewNode builds a node from a record. It returns ErrInvalidNodeID for an
// empty id, ErrEdgeTarget if a dependency targets another node, and
// ErrDuplicateEdge if two dependencies share an edge id.
func NewNode(rec Record) (*Node, error) {
	if rec.ID == "" {
		return nil, ErrInvalidNodeID
	}
	n := &Node{
		ID:        rec.ID,
		Title:     rec.Title,
		Summary:   rec.Summary,
		Pointers:  rec.Pointers,
		Questions: slices.Clone(rec.Questions),
		Outlinks:  slices.Clone(rec.Outlinks),
	}
	for _, r := range rec.Resources {
		n.Resources = append(n.Resources, NormalizeResource(r))
	}
	for _, e := range rec.Dependencies {
		if err := n.addDependency(e); err != nil {
			return nil, fmt.Errorf("node %s: %w", rec.ID, err)
		}
	}
	return n, nil
}

// Record returns a copy of the node's data.
func (n *Node) Record() Record {
	return Record{
		ID:           n.ID,
		Title:        n.Title,
		Summary:      n.Summary,
		Pointers:     n.Pointers,
		Questions:    slices.Clone(n.Questions),
		Resources:    slices.Clone(n.Resources),
		Dependencies: n.Dependencies(),
		Outlinks:     slices.Clone(n.Outlinks),
	}
}

// Dependencies returns a copy of the dependency edges in declaration order.
func (n *Node) Dependencies() []DirectedEdge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.deps)
}

// DependencyIDs returns the source id of every dependency in declaration
// order, duplicates included.
func (n *Node) DependencyIDs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]string, len(n.deps))
	for i, e := range n.deps {
		ids[i] = e.From
	}
	return ids
}

// DisplayTitle returns the title, or the id with underscores replaced by
// spaces when no title is set. The result is computed once.
func (n *Node) DisplayTitle() string {
	n.mu.RLock()
	t := n.displayTitle
	n.mu.RUnlock()
	if t != "" {
		return t
	}

	t = n.Title
	if t == "" {
		t = strings.ReplaceAll(n.ID, "_", " ")
	}
	n.mu.Lock()
	n.displayTitle = t
	n.mu.Unlock()
	return t
}

// Ancestors returns every node id reachable through dependency edges. The
// result is computed on first use and cached; the returned set is a copy.
func (n *Node) Ancestors(r Resolver) (Set, error) {
	a, err := n.ancestry(r)
	if err != nil {
		return nil, err
	}
	return a.ancestors.clone(), nil
}

// IsAncestor reports whether id is in the node's ancestor set.
func (n *Node) IsAncestor(r Resolver, id string) (bool, error) {
	a, err := n.ancestry(r)
	if err != nil {
		return false, err
	}
	return a.ancestors.Has(id), nil
}

// UniqueDependencies returns the direct dependencies that are not implied by
// another direct dependency's ancestry. The returned set is a copy.
func (n *Node) UniqueDependencies(r Resolver) (Set, error) {
	a, err := n.ancestry(r)
	if err != nil {
		return nil, err
	}
	return a.unique.clone(), nil
}

// IsUniqueDependency reports whether id is a unique dependency of the node.
func (n *Node) IsUniqueDependency(r Resolver, id string) (bool, error) {
	a, err := n.ancestry(r)
	if err != nil {
		return false, err
	}
	return a.unique.Has(id), nil
}

// Invalidate drops the cached ancestry of this node only. Use
// [Graph.Invalidate] to drop every cache in a graph.
func (n *Node) Invalidate() {
	n.mu.Lock()
	n.memo = nil
	n.mu.Unlock()
}

func (n *Node) ancestry(r Resolver) (*ancestry, error) {
	version := versionOf(r)
	if a := n.cached(version); a != nil {
		return a, nil
	}
	return newTraversal(r, version, reportCycle).run(n)
}

// cached returns the memo if it was computed at version.
func (n *Node) cached(version uint64) *ancestry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.memo != nil && n.memo.version == version {
		return n.memo
	}
	return nil
}

func (n *Node) store(a *ancestry) {
	n.mu.Lock()
	n.memo = a
	n.mu.Unlock()
}

func (n *Node) addDependency(e DirectedEdge) error {
	if e.To != n.ID {
		return fmt.Errorf("%w: edge %s targets %q", ErrEdgeTarget, e.ID, e.To)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if slices.ContainsFunc(n.deps, func(d DirectedEdge) bool { return d.ID == e.ID }) {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.ID)
	}
	n.deps = append(n.deps, e)
	n.memo = nil
	return nil
}

func (n *Node) removeDependency(edgeID string) (DirectedEdge, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := slices.IndexFunc(n.deps, func(d DirectedEdge) bool { return d.ID == edgeID })
	if i < 0 {
		return DirectedEdge{}, false
	}
	e := n.deps[i]
	n.deps = slices.Delete(n.deps, i, i+1)
	n.memo = nil
	return e, true
}
