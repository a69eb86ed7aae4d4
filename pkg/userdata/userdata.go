// Package userdata tracks what a reader has learned on a concept map.
//
// A [State] holds the learned and visible topic sets and the topic last
// clicked. Setters notify change listeners so that views can re-render the
// affected topic. A [Store] persists states through any [cache.Cache]
// backend: files for the CLI, Redis for a shared server.
//
// # Usage
//
//	st := userdata.New()
//	st.OnChange(func(c userdata.Change) { log.Info("changed", "node", c.NodeID) })
//	st.SetLearned("sets", true)
//
//	store := userdata.NewStore(c, nil, userdata.DefaultTTL)
//	err := store.Save(ctx, st)
package userdata

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

// ErrNotFound is returned when no state is stored under an id.
var ErrNotFound = errors.New("user state not found")

// Kind names the set a [Change] applies to.
type Kind string

const (
	KindLearned Kind = "learned"
	KindVisible Kind = "visible"
	KindClicked Kind = "clicked"
)

// Change describes one update to a [State].
type Change struct {
	Kind   Kind
	NodeID string
	Status bool
}

// State is one reader's progress on a map. It is safe for concurrent use.
// Listeners run synchronously, after the state lock is released.
type State struct {
	ID string

	mu        sync.RWMutex
	clicked   string
	learned   concept.Set
	visible   concept.Set
	updatedAt time.Time
	listeners []func(Change)
}

// New returns an empty state with a fresh random id.
func New() *State {
	return newState(uuid.NewString())
}

func newState(id string) *State {
	return &State{ID: id, learned: concept.Set{}, visible: concept.Set{}}
}

// OnChange registers fn to be called after every reported change.
func (s *State) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetLearned marks id learned (status true) or unlearned. Marking learned
// always reports a change; unmarking reports one only if id was learned.
func (s *State) SetLearned(id string, status bool) bool {
	return s.update(KindLearned, id, status)
}

// SetVisible marks id visible or hidden, with the same change rules as
// [State.SetLearned].
func (s *State) SetVisible(id string, status bool) bool {
	return s.update(KindVisible, id, status)
}

// SetClicked records the topic the reader last selected.
func (s *State) SetClicked(id string) {
	s.mu.Lock()
	s.clicked = id
	s.updatedAt = time.Now()
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, Change{Kind: KindClicked, NodeID: id, Status: id != ""})
}

func (s *State) update(kind Kind, id string, status bool) bool {
	s.mu.Lock()
	set := s.learned
	if kind == KindVisible {
		set = s.visible
	}
	switch {
	case status:
		set[id] = struct{}{}
	case set.Has(id):
		delete(set, id)
	default:
		s.mu.Unlock()
		return false
	}
	s.updatedAt = time.Now()
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Change{Kind: kind, NodeID: id, Status: status})
	return true
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}

// IsLearned reports whether id is marked learned.
func (s *State) IsLearned(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learned.Has(id)
}

// IsVisible reports whether id is marked visible.
func (s *State) IsVisible(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible.Has(id)
}

// Learned returns a copy of the learned set.
func (s *State) Learned() concept.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return concept.NewSet(s.learned.Sorted()...)
}

// Visible returns a copy of the visible set.
func (s *State) Visible() concept.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return concept.NewSet(s.visible.Sorted()...)
}

// Clicked returns the topic the reader last selected.
func (s *State) Clicked() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clicked
}

// UpdatedAt returns the time of the last change.
func (s *State) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// snapshot is the serialized form of a State.
type snapshot struct {
	ID        string    `json:"id"`
	Clicked   string    `json:"clicked_node,omitempty"`
	Learned   []string  `json:"learned_nodes"`
	Visible   []string  `json:"visible_nodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler. Sets are written sorted.
func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	snap := snapshot{
		ID:        s.ID,
		Clicked:   s.clicked,
		Learned:   s.learned.Sorted(),
		Visible:   s.visible.Sorted(),
		UpdatedAt: s.updatedAt,
	}
	s.mu.RUnlock()
	return json.Marshal(snap)
}

// UnmarshalJSON implements json.Unmarshaler. Registered listeners are kept.
func (s *State) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ID = snap.ID
	s.clicked = snap.Clicked
	s.learned = concept.NewSet(snap.Learned...)
	s.visible = concept.NewSet(snap.Visible...)
	s.updatedAt = snap.UpdatedAt
	return nil
}
