package changes

import (
	"maps"
	"slices"
)

// NameSet is a set of symbol names. The zero value is an empty set that
// must be initialized with NewNameSet before Add.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Len() int {
	return len(s)
}

func (s NameSet) Union(other NameSet) NameSet {
	out := make(NameSet, len(s)+len(other))
	maps.Copy(out, s)
	maps.Copy(out, other)
	return out
}

func (s NameSet) Intersect(other NameSet) NameSet {
	out := NameSet{}
	for name := range s {
		if other.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// Difference returns the names of s that are not in other.
func (s NameSet) Difference(other NameSet) NameSet {
	out := NameSet{}
	for name := range s {
		if !other.Has(name) {
			out.Add(name)
		}
	}
	return out
}

func (s NameSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
