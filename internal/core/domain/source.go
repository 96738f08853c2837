package domain

// Source is a timestamped container declaring zero or more units.
type Source struct {
	ID           InternedString                 `json:"id"`
	LastModified int64                          `json:"last_modified"`
	Digest       uint64                         `json:"digest,omitempty"`
	Declarations map[InternedString]Declaration `json:"declarations,omitempty"`
	Err          string                         `json:"error,omitempty"`
}

// Broken reports whether the last read of the source failed.
func (s Source) Broken() bool {
	return s.Err != ""
}

// Units returns the identifiers of the units declared by the source.
func (s Source) Units() UnitSet {
	out := make(UnitSet, len(s.Declarations))
	for id := range s.Declarations {
		out.Add(id)
	}
	return out
}
