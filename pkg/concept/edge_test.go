package concept

import "testing"

func TestNewEdge_ID(t *testing.T) {
	tests := []struct {
		name string
		edge DirectedEdge
		want string
	}{
		{"derived from endpoints", NewEdge("a", "b", "", ""), "ab"},
		{"explicit id", NewEdge("a", "b", "", "e1"), "e1"},
		{"reason does not affect id", NewEdge("a", "b", "needs a", ""), "ab"},
		{"empty source", NewEdge("", "b", "", ""), "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.edge.ID != tt.want {
				t.Errorf("ID = %q, want %q", tt.edge.ID, tt.want)
			}
		})
	}
}

func TestNewEdge_Fields(t *testing.T) {
	e := NewEdge("linear_algebra", "pca", "eigenvectors", "")

	if e.From != "linear_algebra" || e.To != "pca" {
		t.Errorf("endpoints = %q->%q, want linear_algebra->pca", e.From, e.To)
	}
	if e.Reason != "eigenvectors" {
		t.Errorf("Reason = %q, want eigenvectors", e.Reason)
	}
}

func TestEdgeNotation(t *testing.T) {
	tests := []struct {
		name string
		edge DirectedEdge
		want string
	}{
		{"regular edge", NewEdge("a", "b", "", ""), "a->b;"},
		{"empty source", NewEdge("", "b", "", ""), ""},
		{"zero value", DirectedEdge{}, ""},
		{"explicit id ignored", NewEdge("x", "y", "", "e7"), "x->y;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edge.EdgeNotation(); got != tt.want {
				t.Errorf("EdgeNotation() = %q, want %q", got, tt.want)
			}
		})
	}
}
