package concept

import (
	"math"
	"strings"
	"time"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

// complete marks a traversal result that does not depend on any node still
// in progress.
const complete = math.MaxInt

// frame is one node on the explicit traversal stack.
type frame struct {
	node *Node
	deps []DirectedEdge
	srcs []*Node // resolved source per dependency, filled as next advances
	memo []Set   // cached closure per dependency, captured when resolved
	next int
	low  int // shallowest in-progress stack depth reachable from this node
}

// partial is a closure computed during the current traversal. Results with
// low != complete were cut short by a cycle through the frame at depth low
// and are only reused until that frame finishes.
type partial struct {
	ancestors Set
	unique    Set
	low       int
}

// traversal computes ancestor closures depth-first with an explicit stack.
// Complete results are memoized on their nodes; results truncated by a cycle
// are kept locally until the cycle's entry node is done.
type traversal struct {
	resolver   Resolver
	version    uint64
	onCycle    func(CycleDetectedWarning)
	onDangling func(nodeID, missingID string)

	stack      []*frame
	inProgress map[string]int // node id -> stack depth
	results    map[string]*partial
	anchored   map[int][]string // stack depth -> ids of truncated results
}

func newTraversal(r Resolver, version uint64, onCycle func(CycleDetectedWarning)) *traversal {
	return &traversal{
		resolver:   r,
		version:    version,
		onCycle:    onCycle,
		onDangling: observability.Graph().OnDanglingReference,
		inProgress: make(map[string]int),
		results:    make(map[string]*partial),
		anchored:   make(map[int][]string),
	}
}

func reportCycle(w CycleDetectedWarning) {
	observability.Graph().OnCycleDetected(w.NodeID, w.Path)
}

// run returns the ancestry of root, computing whatever is not cached.
func (t *traversal) run(root *Node) (*ancestry, error) {
	start := time.Now()
	t.push(root)

	var last *partial
	for len(t.stack) > 0 {
		f := t.stack[len(t.stack)-1]
		if f.next < len(f.deps) {
			if err := t.advance(f); err != nil {
				return nil, err
			}
			continue
		}
		last = t.finish(f)
	}

	a := &ancestry{version: t.version, ancestors: last.ancestors, unique: last.unique}
	root.store(a)
	observability.Graph().OnClosureComputed(root.ID, a.ancestors.Len(), time.Since(start))
	return a, nil
}

func (t *traversal) push(n *Node) {
	deps := n.Dependencies()
	t.inProgress[n.ID] = len(t.stack)
	t.stack = append(t.stack, &frame{
		node: n,
		deps: deps,
		srcs: make([]*Node, len(deps)),
		memo: make([]Set, len(deps)),
		low:  complete,
	})
}

// advance resolves the next dependency of f and descends into it if its
// closure is not yet known.
func (t *traversal) advance(f *frame) error {
	dep := f.deps[f.next]
	f.next++

	src, ok := t.resolver.Resolve(dep.From)
	if !ok {
		t.onDangling(f.node.ID, dep.From)
		return &DanglingReferenceError{NodeID: f.node.ID, MissingID: dep.From}
	}
	f.srcs[f.next-1] = src

	if depth, ok := t.inProgress[src.ID]; ok {
		f.low = min(f.low, depth)
		path := make([]string, 0, len(t.stack)-depth)
		for _, fr := range t.stack[depth:] {
			path = append(path, fr.node.ID)
		}
		t.onCycle(CycleDetectedWarning{NodeID: f.node.ID, Path: path})
		return nil
	}
	if p, ok := t.results[src.ID]; ok {
		f.low = min(f.low, p.low)
		return nil
	}
	if a := src.cached(t.version); a != nil {
		f.memo[f.next-1] = a.ancestors
		return nil
	}
	t.push(src)
	return nil
}

// finish computes the closure of the frame on top of the stack and pops it.
func (t *traversal) finish(f *frame) *partial {
	depth := len(t.stack) - 1

	closures := make([]Set, len(f.srcs))
	ancestors := Set{}
	for i, src := range f.srcs {
		closures[i] = f.memo[i]
		if closures[i] == nil {
			closures[i] = t.closureOf(src)
		}
		ancestors.merge(closures[i])
	}
	unique := uniqueOf(f.deps, closures)
	for _, dep := range f.deps {
		ancestors.add(dep.From)
	}

	p := &partial{ancestors: ancestors, unique: unique, low: complete}
	if f.low < depth {
		p.low = f.low
		t.anchored[f.low] = append(t.anchored[f.low], f.node.ID)
	} else if depth > 0 {
		f.node.store(&ancestry{version: t.version, ancestors: ancestors, unique: unique})
	}
	t.results[f.node.ID] = p

	for _, id := range t.anchored[depth] {
		delete(t.results, id)
	}
	delete(t.anchored, depth)
	delete(t.inProgress, f.node.ID)
	t.stack = t.stack[:depth]

	if depth > 0 {
		parent := t.stack[depth-1]
		parent.low = min(parent.low, p.low)
	}
	return p
}

// uniqueOf returns the sources of deps that no dependency on a different
// source reaches. closures[i] is the ancestor set contributed by deps[i]. A
// source declared more than once counts on its first declaration only.
func uniqueOf(deps []DirectedEdge, closures []Set) Set {
	unique := Set{}
	seen := Set{}
	for i, dep := range deps {
		id := dep.From
		if seen.Has(id) {
			continue
		}
		seen.add(id)
		reached := false
		for j, c := range closures {
			if j != i && deps[j].From != id && c.Has(id) {
				reached = true
				break
			}
		}
		if !reached {
			unique.add(id)
		}
	}
	return unique
}

// closureOf returns the ancestors contributed by src: the closure computed in
// this traversal, or nothing while src is still in progress.
func (t *traversal) closureOf(src *Node) Set {
	if p, ok := t.results[src.ID]; ok {
		return p.ancestors
	}
	return nil
}

// warnings collects cycle reports for [Graph.Check] while still forwarding
// them to the observability hooks.
type warnings struct {
	seen map[string]bool
	list []CycleDetectedWarning
}

func (w *warnings) add(c CycleDetectedWarning) {
	reportCycle(c)
	key := c.NodeID + "\x00" + strings.Join(c.Path, "\x00")
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.list = append(w.list, c)
}
