package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/internal/metrics"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

func edge(from, to string) concept.DirectedEdge { return concept.NewEdge(from, to, "", "") }

func testGraph(t *testing.T, extra ...concept.Record) *concept.Graph {
	t.Helper()
	recs := append([]concept.Record{
		{ID: "sets", Title: "Sets"},
		{ID: "functions", Dependencies: []concept.DirectedEdge{edge("sets", "functions")}},
		{ID: "limits", Dependencies: []concept.DirectedEdge{
			edge("sets", "limits"),
			edge("functions", "limits"),
		}},
	}, extra...)
	g := concept.NewGraph()
	if err := g.Load(recs); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return g
}

func newTestServer(t *testing.T, g *concept.Graph, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{
		Graph:   g,
		Cache:   c,
		Metrics: m,
		Logger:  log.New(io.Discard),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)
	var got healthResponse
	resp := do(t, "GET", ts.URL+"/health", &got)
	if resp.StatusCode != http.StatusOK || got.Status != "ok" || got.Nodes != 3 {
		t.Errorf("health = %d %+v", resp.StatusCode, got)
	}
	if got.Build.GoVersion == "" {
		t.Error("build info missing")
	}
}

func TestListNodes(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)
	var got []nodeSummary
	do(t, "GET", ts.URL+"/nodes", &got)
	if len(got) != 3 {
		t.Fatalf("got %d nodes, want 3", len(got))
	}
	if got[0].ID != "sets" || got[0].Title != "Sets" || len(got[0].Dependencies) != 0 {
		t.Errorf("nodes[0] = %+v", got[0])
	}
	if got[2].ID != "limits" || strings.Join(got[2].Dependencies, ",") != "sets,functions" {
		t.Errorf("nodes[2] = %+v", got[2])
	}
}

func TestQueries(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	sets := []struct {
		path string
		want string
	}{
		{"/nodes/limits/ancestors", "functions,sets"},
		{"/nodes/limits/unique", "functions"},
		{"/nodes/sets/ancestors", ""},
		{"/nodes/functions/unique", "sets"},
	}
	for _, tt := range sets {
		t.Run(tt.path, func(t *testing.T) {
			var got setResponse
			resp := do(t, "GET", ts.URL+tt.path, &got)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got.IDs == nil || strings.Join(got.IDs, ",") != tt.want {
				t.Errorf("ids = %v, want %q", got.IDs, tt.want)
			}
		})
	}

	members := []struct {
		path string
		want bool
	}{
		{"/nodes/limits/ancestors/sets", true},
		{"/nodes/sets/ancestors/limits", false},
		{"/nodes/limits/unique/functions", true},
		{"/nodes/limits/unique/sets", false},
	}
	for _, tt := range members {
		t.Run(tt.path, func(t *testing.T) {
			var got membershipResponse
			do(t, "GET", ts.URL+tt.path, &got)
			if got.Result != tt.want {
				t.Errorf("result = %v, want %v", got.Result, tt.want)
			}
		})
	}
}

func TestGetNode(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	var node map[string]any
	do(t, "GET", ts.URL+"/nodes/functions", &node)
	if node["id"] != "functions" {
		t.Errorf("node = %v", node)
	}

	var m []map[string]any
	do(t, "GET", ts.URL+"/nodes/functions?set=map", &m)
	if len(m) != 2 || m[0]["id"] != "sets" || m[1]["id"] != "functions" {
		t.Errorf("map = %v", m)
	}
}

func TestErrors(t *testing.T) {
	dangling := concept.Record{ID: "series", Dependencies: []concept.DirectedEdge{edge("sequences", "series")}}
	ts := newTestServer(t, testGraph(t, dangling), nil)

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/nodes/nope/ancestors", http.StatusNotFound, "NOT_FOUND"},
		{"/nodes/a..b", http.StatusBadRequest, "INVALID_INPUT"},
		{"/nodes/series/ancestors", http.StatusUnprocessableEntity, "DANGLING_REFERENCE"},
		{"/nodes/limits?set=tree", http.StatusBadRequest, "INVALID_INPUT"},
		{"/graph.dot?unique=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"/graph.dot?key=nope", http.StatusNotFound, "NOT_FOUND"},
		{"/users/not-a-uuid", http.StatusBadRequest, "INVALID_INPUT"},
		{"/users/7d444840-9dc0-11d1-b245-5ffdce74fad2", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var got errorResponse
			resp := do(t, "GET", ts.URL+tt.path, &got)
			if resp.StatusCode != tt.wantStatus || string(got.Code) != tt.wantCode {
				t.Errorf("got %d %s, want %d %s", resp.StatusCode, got.Code, tt.wantStatus, tt.wantCode)
			}
			if got.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestGraphDOT(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	resp, err := http.Get(ts.URL + "/graph.dot?unique=true&key=limits")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	dot := string(body)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(dot, "functions->limits;") || strings.Contains(dot, "sets->limits;") {
		t.Errorf("unique map wrong:\n%s", dot)
	}
	if !strings.Contains(dot, "penwidth=3") {
		t.Errorf("key node not highlighted:\n%s", dot)
	}
}

func TestUserFlow(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	var created struct {
		ID      string   `json:"id"`
		Learned []string `json:"learned_nodes"`
		Clicked string   `json:"clicked_node"`
	}
	if resp := do(t, "POST", ts.URL+"/users", &created); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	user := ts.URL + "/users/" + created.ID

	var unlearned setResponse
	do(t, "GET", user+"/unlearned/limits", &unlearned)
	if strings.Join(unlearned.IDs, ",") != "sets,functions,limits" {
		t.Errorf("unlearned before = %v", unlearned.IDs)
	}

	var state = created
	do(t, "PUT", user+"/learned/sets", &state)
	if strings.Join(state.Learned, ",") != "sets" || state.Clicked != "sets" {
		t.Errorf("state after PUT = %+v", state)
	}

	do(t, "GET", user+"/unlearned/limits", &unlearned)
	if strings.Join(unlearned.IDs, ",") != "functions,limits" {
		t.Errorf("unlearned after = %v", unlearned.IDs)
	}

	if resp := do(t, "PUT", user+"/learned/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("learning unknown concept status = %d", resp.StatusCode)
	}

	do(t, "DELETE", user+"/learned/sets", &state)
	if len(state.Learned) != 0 {
		t.Errorf("learned after DELETE = %v", state.Learned)
	}

	var fetched = created
	do(t, "GET", user, &fetched)
	if fetched.ID != created.ID || len(fetched.Learned) != 0 {
		t.Errorf("fetched = %+v", fetched)
	}

	if resp := do(t, "DELETE", user, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	if resp := do(t, "GET", user, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestConcurrentLearned(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	var created struct {
		ID string `json:"id"`
	}
	do(t, "POST", ts.URL+"/users", &created)
	user := ts.URL + "/users/" + created.ID

	var wg sync.WaitGroup
	for _, id := range []string{"sets", "functions", "limits"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			req, _ := http.NewRequest("PUT", user+"/learned/"+id, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Errorf("PUT %s: %v", id, err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("PUT %s status = %d", id, resp.StatusCode)
			}
		}(id)
	}
	wg.Wait()

	var state struct {
		Learned []string `json:"learned_nodes"`
	}
	do(t, "GET", user, &state)
	if strings.Join(state.Learned, ",") != "functions,limits,sets" {
		t.Errorf("learned = %v, want all three", state.Learned)
	}

	if resp := do(t, "PUT", ts.URL+"/users/7d444840-9dc0-11d1-b245-5ffdce74fad2/learned/sets", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", resp.StatusCode)
	}
}

func TestLearnedHighlight(t *testing.T) {
	ts := newTestServer(t, testGraph(t), nil)

	var created struct {
		ID string `json:"id"`
	}
	do(t, "POST", ts.URL+"/users", &created)
	do(t, "PUT", ts.URL+"/users/"+created.ID+"/learned/functions", nil)

	resp, err := http.Get(ts.URL + "/graph.dot?user=" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	plain, err := http.Get(ts.URL + "/graph.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Body.Close()
	plainBody, _ := io.ReadAll(plain.Body)
	if string(body) == string(plainBody) {
		t.Error("learned concept not marked in map")
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := metrics.New()
	m.Install()
	ts := newTestServer(t, testGraph(t), m)

	do(t, "GET", ts.URL+"/nodes/limits/ancestors", nil)
	do(t, "GET", ts.URL+"/nodes/sets/ancestors", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	for _, want := range []string{
		"conceptmap_nodes 3",
		`conceptmap_http_requests_total{method="GET",route="/nodes/{id}/ancestors",status="200"} 2`,
		"conceptmap_closure_size_count",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := New(Options{Graph: testGraph(t), Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestSetGraph(t *testing.T) {
	m := metrics.New()
	s := New(Options{Graph: testGraph(t), Metrics: m, Logger: log.New(io.Discard)})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	next := concept.NewGraph()
	if err := next.Load([]concept.Record{{ID: "sets"}}); err != nil {
		t.Fatal(err)
	}
	s.SetGraph(next)

	var got healthResponse
	do(t, "GET", ts.URL+"/health", &got)
	if got.Nodes != 1 {
		t.Errorf("nodes after swap = %d, want 1", got.Nodes)
	}
	if resp := do(t, "GET", ts.URL+"/nodes/limits", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("old concept still served: %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	s := New(Options{Graph: testGraph(t), Logger: log.New(io.Discard), AllowedOrigins: []string{"https://maps.example.org"}})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	req, _ := http.NewRequest("GET", ts.URL+"/health", nil)
	req.Header.Set("Origin", "https://maps.example.org")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://maps.example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
