package model

import (
	"encoding/json"
	"sort"
)

// StringSet is an unordered set of strings that marshals as a sorted JSON
// array, so two sets with the same members always produce identical JSON
// regardless of insertion order.
type StringSet map[string]struct{}

// NewStringSet builds a StringSet from the given members.
func NewStringSet(members ...string) StringSet {
	s := make(StringSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts a member into the set.
func (s StringSet) Add(member string) {
	s[member] = struct{}{}
}

// Has reports whether member is in the set.
func (s StringSet) Has(member string) bool {
	_, ok := s[member]
	return ok
}

// Slice returns the set's members as a sorted slice.
func (s StringSet) Slice() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	set := make(StringSet, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	*s = set
	return nil
}
