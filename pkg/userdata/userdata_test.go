package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/conceptmap/pkg/cache"
)

func TestNew(t *testing.T) {
	st := New()
	if _, err := uuid.Parse(st.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", st.ID, err)
	}
	if New().ID == st.ID {
		t.Error("ids should be unique")
	}
	if st.Learned().Len() != 0 || st.Visible().Len() != 0 {
		t.Error("new state should be empty")
	}
}

func TestSetLearned(t *testing.T) {
	st := New()
	var changes []Change
	st.OnChange(func(c Change) { changes = append(changes, c) })

	tests := []struct {
		name    string
		id      string
		status  bool
		changed bool
		learned bool
	}{
		{"learn", "sets", true, true, true},
		{"learn again still reports", "sets", true, true, true},
		{"unlearn", "sets", false, true, false},
		{"unlearn absent", "sets", false, false, false},
		{"unlearn never seen", "limits", false, false, false},
	}
	for _, tt := range tests {
		if got := st.SetLearned(tt.id, tt.status); got != tt.changed {
			t.Errorf("%s: SetLearned() = %v, want %v", tt.name, got, tt.changed)
		}
		if got := st.IsLearned(tt.id); got != tt.learned {
			t.Errorf("%s: IsLearned() = %v, want %v", tt.name, got, tt.learned)
		}
	}

	if len(changes) != 3 {
		t.Fatalf("listener calls = %d, want 3", len(changes))
	}
	if c := changes[2]; c.Kind != KindLearned || c.NodeID != "sets" || c.Status {
		t.Errorf("last change = %+v", c)
	}
}

func TestSetVisible(t *testing.T) {
	st := New()
	if !st.SetVisible("a", true) || !st.IsVisible("a") {
		t.Error("SetVisible(a, true) should add a")
	}
	if st.IsLearned("a") {
		t.Error("visible and learned sets must be independent")
	}
	if !st.SetVisible("a", false) || st.IsVisible("a") {
		t.Error("SetVisible(a, false) should remove a")
	}
}

func TestSetClicked(t *testing.T) {
	st := New()
	var got Change
	st.OnChange(func(c Change) { got = c })
	st.SetClicked("pca")
	if st.Clicked() != "pca" || got.Kind != KindClicked || got.NodeID != "pca" {
		t.Errorf("clicked = %q, change = %+v", st.Clicked(), got)
	}
}

func TestListenerMayReadState(t *testing.T) {
	st := New()
	var seen bool
	st.OnChange(func(c Change) { seen = st.IsLearned(c.NodeID) })
	st.SetLearned("a", true)
	if !seen {
		t.Error("listener should observe the updated state")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	st := New()
	st.SetLearned("b", true)
	st.SetLearned("a", true)
	st.SetVisible("c", true)
	st.SetClicked("a")

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	if l := raw["learned_nodes"].([]any); l[0] != "a" || l[1] != "b" {
		t.Errorf("learned_nodes = %v, want sorted [a b]", l)
	}

	back := newState("")
	if err := json.Unmarshal(data, back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.ID != st.ID || !back.Learned().Equal(st.Learned()) || !back.IsVisible("c") || back.Clicked() != "a" {
		t.Errorf("round trip = %s", data)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(fc, nil, DefaultTTL)

	st, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	st.SetLearned("sets", true)
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !got.IsLearned("sets") {
		t.Error("loaded state lost learned topic")
	}

	if err := s.Delete(ctx, st.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_NullCache(t *testing.T) {
	s := NewStore(cache.NewNullCache(), nil, 0)
	st, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := s.Get(context.Background(), st.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(fc, nil, DefaultTTL)
	st, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, st.ID, func(st *State) bool {
				return st.SetLearned(fmt.Sprintf("topic%02d", i), true)
			})
			if err != nil {
				t.Errorf("Update(%d) error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Learned().Len() != n {
		t.Errorf("learned %d topics, want %d", got.Learned().Len(), n)
	}

	saved := false
	if _, err := s.Update(ctx, st.ID, func(*State) bool { return false }); err != nil {
		t.Errorf("no-op Update() error: %v", err)
	}
	if _, err := s.Update(ctx, uuid.NewString(), func(*State) bool { saved = true; return true }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}
	if saved {
		t.Error("Update(unknown) ran fn")
	}
}
