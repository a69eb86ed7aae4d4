package nodelink

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

// DefaultWrapWidth is the label line length used when Options.WrapWidth is 0.
const DefaultWrapWidth = 10

// Options configures map generation.
type Options struct {
	// UniqueOnly draws only unique-dependency edges, hiding every edge that
	// is implied by another path.
	UniqueOnly bool

	// KeyNode is drawn with a heavy outline.
	KeyNode string

	// Learned nodes are drawn greyed out.
	Learned concept.Set

	// WrapWidth is the maximum label line length in characters. Negative
	// values disable wrapping.
	WrapWidth int
}

// ToDOT converts a concept graph to Graphviz DOT. Nodes appear in insertion
// order and point at the topics that depend on them. Each edge line is the
// edge's [concept.DirectedEdge.EdgeNotation]; ids that are not plain DOT
// identifiers are quoted instead.
//
// With UniqueOnly set, the unique dependencies of every node are computed,
// so a dangling reference anywhere in g is returned as an error.
func ToDOT(g *concept.Graph, opts Options) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := g.Nodes()
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		var keep concept.Set
		if opts.UniqueOnly {
			u, err := n.UniqueDependencies(g)
			if err != nil {
				return "", err
			}
			keep = u
		}
		seen := make(map[string]bool)
		for _, e := range n.Dependencies() {
			if seen[e.From] || (keep != nil && !keep.Has(e.From)) {
				continue
			}
			seen[e.From] = true
			buf.WriteString("  " + edgeLine(e) + "\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

var dotIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func edgeLine(e concept.DirectedEdge) string {
	if dotIdentRe.MatchString(e.From) && dotIdentRe.MatchString(e.To) {
		return e.EdgeNotation()
	}
	return quote(e.From) + " -> " + quote(e.To) + ";"
}

// dotEscaper escapes a DOT quoted string. A newline becomes the \n escape,
// which Graphviz renders as a centred line break.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtAttrs(n *concept.Node, opts Options) []string {
	width := opts.WrapWidth
	if width == 0 {
		width = DefaultWrapWidth
	}
	attrs := []string{"label=" + quote(wrap(n.DisplayTitle(), width))}
	if n.Summary != "" {
		attrs = append(attrs, "tooltip=" + quote(n.Summary))
	}
	if opts.Learned.Has(n.ID) {
		attrs = append(attrs, "fillcolor=\"#e8e8e8\"", "fontcolor=gray40")
	}
	if n.ID == opts.KeyNode {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// wrap breaks s into lines of at most width characters at spaces. Words
// longer than width stay whole.
func wrap(s string, width int) string {
	if width < 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
