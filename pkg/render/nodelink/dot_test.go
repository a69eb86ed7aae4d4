package nodelink

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
)

func edge(from, to string) concept.DirectedEdge { return concept.NewEdge(from, to, "", "") }

func testGraph(t *testing.T) *concept.Graph {
	t.Helper()
	g := concept.NewGraph()
	err := g.Load([]concept.Record{
		{ID: "sets"},
		{ID: "functions", Dependencies: []concept.DirectedEdge{edge("sets", "functions")}},
		{ID: "limits", Title: "Limits of Functions", Dependencies: []concept.DirectedEdge{
			edge("sets", "limits"),
			edge("functions", "limits"),
		}},
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(testGraph(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT() error: %v", err)
	}

	for _, want := range []string{
		"digraph G {",
		`"sets" [label="sets"];`,
		"  sets->functions;\n",
		"  sets->limits;\n",
		"  functions->limits;\n",
		`label="Limits of\nFunctions"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_UniqueOnly(t *testing.T) {
	dot, err := ToDOT(testGraph(t), Options{UniqueOnly: true})
	if err != nil {
		t.Fatalf("ToDOT() error: %v", err)
	}
	if strings.Contains(dot, "sets->limits;") {
		t.Errorf("redundant edge sets->limits should be hidden:\n%s", dot)
	}
	if !strings.Contains(dot, "functions->limits;") || !strings.Contains(dot, "sets->functions;") {
		t.Errorf("unique edges missing:\n%s", dot)
	}
}

func TestToDOT_Dangling(t *testing.T) {
	g := concept.NewGraph()
	_ = g.Load([]concept.Record{{ID: "b", Dependencies: []concept.DirectedEdge{edge("ghost", "b")}}})

	if _, err := ToDOT(g, Options{}); err != nil {
		t.Errorf("ToDOT() without UniqueOnly should not query: %v", err)
	}
	_, err := ToDOT(g, Options{UniqueOnly: true})
	if !errors.Is(err, concept.ErrDanglingReference) {
		t.Errorf("ToDOT(UniqueOnly) error = %v, want ErrDanglingReference", err)
	}
}

func TestToDOT_Highlights(t *testing.T) {
	dot, _ := ToDOT(testGraph(t), Options{KeyNode: "limits", Learned: concept.NewSet("sets"), WrapWidth: -1})

	if !strings.Contains(dot, `"limits" [label="Limits of Functions", penwidth=3];`) {
		t.Errorf("key node not outlined:\n%s", dot)
	}
	if !strings.Contains(dot, `"sets" [label="sets", fillcolor="#e8e8e8", fontcolor=gray40];`) {
		t.Errorf("learned node not greyed:\n%s", dot)
	}
}

func TestEdgeLine(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"a", "b", "a->b;"},
		{"linear_algebra", "pca", "linear_algebra->pca;"},
		{"set-theory", "b", `"set-theory" -> "b";`},
		{"v1.0", "b", `"v1.0" -> "b";`},
		{"grenzwert-ä", "b", `"grenzwert-ä" -> "b";`},
	}
	for _, tt := range tests {
		if got := edgeLine(edge(tt.from, tt.to)); got != tt.want {
			t.Errorf("edgeLine(%s, %s) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"Ableitung ∂", `"Ableitung ∂"`},
		{"two\nlines", `"two\nlines"`},
		{"tab\there", "\"tab\there\""},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"linear algebra", 10, "linear\nalgebra"},
		{"a b c", 10, "a b c"},
		{"eigendecomposition", 10, "eigendecomposition"},
		{"linear algebra", -1, "linear algebra"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := wrap(tt.in, tt.width); got != tt.want {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 100.00 50.00" width="100" height="50"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if plain := []byte("<svg><g/></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderer_Caches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(fc, nil, 0)
	calls := 0
	r.render = func(_ context.Context, dot string) ([]byte, error) {
		calls++
		return []byte("<svg>" + dot + "</svg>"), nil
	}

	ctx := context.Background()
	first, cached, err := r.SVG(ctx, "digraph G {}")
	if err != nil || cached {
		t.Fatalf("first SVG() = cached %v, err %v", cached, err)
	}
	second, cached, err := r.SVG(ctx, "digraph G {}")
	if err != nil || !cached {
		t.Fatalf("second SVG() = cached %v, err %v", cached, err)
	}
	if !bytes.Equal(first, second) || calls != 1 {
		t.Errorf("render calls = %d, want 1", calls)
	}

	if _, cached, _ := r.SVG(ctx, "digraph H {}"); cached {
		t.Error("different DOT source should not hit the cache")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	dot, _ := ToDOT(testGraph(t), Options{UniqueOnly: true})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}
