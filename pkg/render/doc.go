// Package render groups the visual outputs of a concept map.
//
// The [nodelink] subpackage turns a graph into Graphviz DOT and renders it
// to SVG:
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{UniqueOnly: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/conceptmap/pkg/render/nodelink
package render
