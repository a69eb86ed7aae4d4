// Package concept provides the concept-dependency graph: learning topics
// connected by "depends on" edges, with cached ancestry queries.
//
// # Overview
//
// A [Node] is one topic. Its [Node.Dependencies] are [DirectedEdge] values
// that terminate at the node and originate at a prerequisite. A [Graph] owns
// the nodes and is the only component that can turn an edge's From id back
// into a node, which it does through the [Resolver] interface.
//
// Two derived sets are computed per node:
//
//   - the ancestor set: every node reachable by following dependency edges
//     backward toward prerequisites
//   - the unique dependency set: the direct dependencies that are not already
//     implied by another direct dependency's ancestry
//
// The unique set is what a map view draws when it wants to hide redundant
// prerequisite edges (if B depends on A and C depends on both A and B, the
// A→C edge carries no information).
//
// # Basic Usage
//
//	g := concept.NewGraph()
//	_ = g.Load([]concept.Record{
//	    {ID: "root"},
//	    {ID: "mid", Dependencies: []concept.DirectedEdge{concept.NewEdge("root", "mid", "", "")}},
//	    {ID: "top", Dependencies: []concept.DirectedEdge{
//	        concept.NewEdge("root", "top", "", ""),
//	        concept.NewEdge("mid", "top", "", ""),
//	    }},
//	})
//	unique, _ := g.UniqueDependencies("top") // {mid}
//
// # Unique Dependency Policy
//
// For a node with dependencies d1..dk, a source is unique when it is not an
// ancestor of any dependency on a different source. Dependencies are visited
// in declaration order and a source declared twice counts only the first
// time, so it is unique at most once.
//
// # Cycles
//
// Dependency data is not guaranteed to be acyclic. Traversal keeps an
// in-progress set; re-entering a node that is still being computed
// contributes nothing and is reported as a [CycleDetectedWarning] to the
// observability hooks. Nodes on a cycle count themselves among their own
// ancestors. A source is never ruled out by its own closure, so a node whose
// only dependency leads back to it still has that dependency as unique.
//
// # Caching and Invalidation
//
// Results are memoized on the node and stamped with the graph version. Any
// change to a dependency collection bumps the version, so every stale cache
// is recomputed on its next query. Adding a node never bumps the version: a
// node whose edge named the missing id failed its query and cached nothing.
//
// # Concurrency
//
// Graph and Node are safe for concurrent use. Cached reads share a read lock;
// storing a freshly computed result takes the node's write lock.
package concept
