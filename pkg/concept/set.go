package concept

import (
	"maps"
	"slices"
)

// Set is an unordered collection of node ids.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string { return slices.Sorted(maps.Keys(s)) }

// Equal reports whether both sets hold the same ids.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (s Set) add(id string) { s[id] = struct{}{} }

func (s Set) merge(o Set) {
	for id := range o {
		s[id] = struct{}{}
	}
}

func (s Set) clone() Set {
	if s == nil {
		return Set{}
	}
	return maps.Clone(s)
}
