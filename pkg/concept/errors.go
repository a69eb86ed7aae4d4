package concept

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidNodeID is returned when a node has an empty id.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Add] and [Graph.Load] when the
	// id is already present.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdge is returned when a node already holds a dependency with
	// the same edge id.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrEdgeTarget is returned when a dependency edge does not terminate at
	// the node that holds it.
	ErrEdgeTarget = errors.New("dependency edge does not target its node")

	// ErrNotFound matches every [*NotFoundError] via errors.Is.
	ErrNotFound = errors.New("node not found")

	// ErrDanglingReference matches every [*DanglingReferenceError] via errors.Is.
	ErrDanglingReference = errors.New("dangling dependency reference")

	// ErrCycleDetected matches every [CycleDetectedWarning] via errors.Is.
	ErrCycleDetected = errors.New("dependency cycle detected")
)

// NotFoundError is returned by graph lookups of an unknown id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("node %q not found", e.ID) }

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DanglingReferenceError reports a dependency edge whose source id does not
// resolve. The query that hit it is aborted and caches nothing for the
// queried node or any node that reaches the missing id. Closures finished
// earlier in the same walk do not reach it and stay cached.
type DanglingReferenceError struct {
	NodeID    string // Node holding the broken dependency
	MissingID string // Source id that is absent from the graph
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %q depends on unknown node %q", e.NodeID, e.MissingID)
}

// Is makes errors.Is(err, ErrDanglingReference) succeed.
func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// CycleDetectedWarning describes a traversal that re-entered a node still in
// progress. It is recovered from locally and never returned by a query; it
// is delivered to the observability hooks and collected by [Graph.Check].
type CycleDetectedWarning struct {
	NodeID string   // Node whose dependency closed the cycle
	Path   []string // Ids from the re-entered node down to NodeID
}

func (w CycleDetectedWarning) Error() string {
	if len(w.Path) == 0 {
		return fmt.Sprintf("cycle detected at %q", w.NodeID)
	}
	return fmt.Sprintf("cycle detected at %q: %s -> %s", w.NodeID, strings.Join(w.Path, " -> "), w.Path[0])
}

// Is makes errors.Is(w, ErrCycleDetected) succeed.
func (w CycleDetectedWarning) Is(target error) bool { return target == ErrCycleDetected }
