package progress

import (
	"maps"
	"slices"
)

// IndexSet is an unordered set of question indices.
type IndexSet map[int]struct{}

// NewIndexSet returns a set holding the given indices. Duplicates collapse.
func NewIndexSet(indices ...int) IndexSet {
	s := make(IndexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts i. Adding an existing index is a no-op.
func (s IndexSet) Add(i int) {
	s[i] = struct{}{}
}

// Remove deletes i and reports whether it was present.
func (s IndexSet) Remove(i int) bool {
	if _, ok := s[i]; !ok {
		return false
	}
	delete(s, i)
	return true
}

func (s IndexSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

func (s IndexSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order. This is the canonical
// ordering used on the wire and for mistake-book review.
func (s IndexSet) Sorted() []int {
	out := slices.Collect(maps.Keys(s))
	slices.Sort(out)
	if out == nil {
		out = []int{}
	}
	return out
}

func (s IndexSet) Clone() IndexSet {
	c := make(IndexSet, len(s))
	for i := range s {
		c[i] = struct{}{}
	}
	return c
}

func (s IndexSet) Equal(o IndexSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if _, ok := o[i]; !ok {
			return false
		}
	}
	return true
}
