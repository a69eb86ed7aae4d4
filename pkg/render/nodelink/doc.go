// Package nodelink renders concept maps as node-link diagrams.
//
// # Overview
//
// Topics appear as boxes, and arrows run from each prerequisite to the
// topics that depend on it. Layout is left to Graphviz.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{UniqueOnly: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Renderer] adds a cache in front of [RenderSVG], keyed by the hash of the
// DOT source.
//
// # Options
//
//   - UniqueOnly: hide edges implied by a longer path (the usual map view)
//   - KeyNode: outline the topic the map was requested for
//   - Learned: grey out topics the reader already knows
//   - WrapWidth: label line length, 10 by default
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
