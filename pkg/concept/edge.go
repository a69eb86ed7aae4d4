package concept

// DirectedEdge is a from→to relation between two topics with an optional
// free-text reason. Edges know nothing about any graph; From and To are plain
// node ids.
//
// The zero value is an edge with no endpoints. Use [NewEdge] so that the
// identifier is derived consistently.
type DirectedEdge struct {
	ID     string // Explicit id, or From+To when none was supplied
	From   string // Source node id (the prerequisite)
	To     string // Target node id (the dependent topic)
	Reason string // Why the dependency exists (optional)
}

// NewEdge creates an edge from→to. When id is empty the identifier is the
// concatenation of from and to, so two edges over the same ordered pair
// collide unless they are given distinct explicit ids.
func NewEdge(from, to, reason, id string) DirectedEdge {
	if id == "" {
		id = from + to
	}
	return DirectedEdge{ID: id, From: from, To: to, Reason: reason}
}

// EdgeNotation returns the edge as a single graph-layout statement, e.g.
// "a->b;". An edge without a source yields the empty string.
func (e DirectedEdge) EdgeNotation() string {
	if e.From == "" {
		return ""
	}
	return e.From + "->" + e.To + ";"
}
