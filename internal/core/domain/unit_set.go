package domain

import (
	"encoding/json"
	"slices"
)

// UnitSet is an unordered set of unit (or source) identifiers.
type UnitSet map[InternedString]struct{}

// NewUnitSet builds a set from the given identifiers.
func NewUnitSet(ids ...InternedString) UnitSet {
	s := make(UnitSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s UnitSet) Add(id InternedString) {
	s[id] = struct{}{}
}

// Remove deletes id from the set.
func (s UnitSet) Remove(id InternedString) {
	delete(s, id)
}

// Has reports whether id is a member. A nil set has no members.
func (s UnitSet) Has(id InternedString) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s UnitSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s UnitSet) Clone() UnitSet {
	out := make(UnitSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union returns a new set holding the members of s and every other set.
func (s UnitSet) Union(others ...UnitSet) UnitSet {
	out := s.Clone()
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Filter returns the members for which keep returns true.
func (s UnitSet) Filter(keep func(InternedString) bool) UnitSet {
	out := make(UnitSet, len(s))
	for id := range s {
		if keep(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexicographic order.
func (s UnitSet) Sorted() []InternedString {
	out := make([]InternedString, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.SortFunc(out, InternedString.Compare)
	return out
}

// MarshalJSON encodes the set as a sorted array so persisted state diffs cleanly.
func (s UnitSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a set from an array of identifiers.
func (s *UnitSet) UnmarshalJSON(data []byte) error {
	var ids []InternedString
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewUnitSet(ids...)
	return nil
}
