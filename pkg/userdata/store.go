package userdata

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/matzehuels/conceptmap/pkg/cache"
)

// DefaultTTL keeps an untouched state for 90 days.
const DefaultTTL = 90 * 24 * time.Hour

// Store persists states in a cache backend.
//
// [Store.Update] serializes changes to one state within this process. Two
// processes sharing a Redis cache can still interleave an update.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	locks [64]sync.Mutex // striped by state id
}

// NewStore returns a store writing through c. A nil keyer uses
// [cache.NewDefaultKeyer]; a zero ttl keeps states forever.
func NewStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Store{cache: c, keyer: keyer, ttl: ttl}
}

func (s *Store) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// Update loads the state stored under id, applies fn, and saves the result
// when fn reports a change. Concurrent updates of the same id run one at a
// time, so none is lost.
func (s *Store) Update(ctx context.Context, id string, fn func(*State) bool) (*State, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if fn(st) {
		if err := s.Save(ctx, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Create stores and returns a new empty state.
func (s *Store) Create(ctx context.Context) (*State, error) {
	st := New()
	if err := s.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get loads the state stored under id, or returns ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*State, error) {
	data, ok, err := s.cache.Get(ctx, s.keyer.UserKey(id))
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	st := newState(id)
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return st, nil
}

// Save writes st, resetting its expiration.
func (s *Store) Save(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", st.ID, err)
	}
	if err := s.cache.Set(ctx, s.keyer.UserKey(st.ID), data, s.ttl); err != nil {
		return fmt.Errorf("save user %s: %w", st.ID, err)
	}
	return nil
}

// Delete removes the state stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, s.keyer.UserKey(id))
}
