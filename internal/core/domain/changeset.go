package domain

// ChangeSet is the outcome of one scan: the state before and after, plus the
// raw sets of units touched by modified or deleted sources.
type ChangeSet struct {
	Previous *ScanState
	Next     *ScanState

	// ToUnload holds the units declared by modified or deleted sources under the previous mapping.
	ToUnload UnitSet
	// ToLoad holds the units declared by modified sources under the new mapping.
	ToLoad UnitSet
	// ModifiedSources holds the sources that were re-read successfully.
	ModifiedSources UnitSet

	// BrokenUnits maps every unit of a broken source to the read error.
	BrokenUnits map[InternedString]error
	// SourceErrors maps every broken source to its read error.
	SourceErrors map[InternedString]error
}

// Active reports whether id was loaded before the scan.
func (cs *ChangeSet) Active(id InternedString) bool {
	return cs.Previous != nil && cs.Previous.Loaded.Has(id)
}

// Lookup returns the newest known record of a unit, falling back to the
// previous state for units that no longer exist.
func (cs *ChangeSet) Lookup(id InternedString) (Unit, bool) {
	if u, ok := cs.Next.Units[id]; ok {
		return u, true
	}
	if cs.Previous != nil {
		if u, ok := cs.Previous.Units[id]; ok {
			return u, true
		}
	}
	return Unit{}, false
}
