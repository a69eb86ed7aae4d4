// Package pkg provides the libraries behind conceptmap.
//
// # Overview
//
// A concept map is a set of topics, each naming the topics it builds on.
// The packages are organized as follows:
//
//   - [concept]: nodes, edges, and the cycle-safe ancestry queries
//   - [io]: JSON and TOML data files
//   - [render/nodelink]: Graphviz DOT and SVG output
//   - [userdata]: per-reader learned and visible topics
//   - [cache]: file, Redis, and null cache backends
//   - [store/mongostore]: maps kept in MongoDB
//   - [errors]: coded errors and input validation
//   - [observability]: hooks for metrics and logging
//   - [buildinfo]: version reporting
//
// # Quick Start
//
//	g, err := io.ImportFile("calculus.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	direct, err := g.UniqueDependencies("limits")
//	// direct holds the prerequisites of limits that no other prerequisite implies
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{UniqueOnly: true})
package pkg
