package domain

import (
	"maps"
	"slices"
)

// CarriedState is per-unit state preserved across an unload/load cycle.
type CarriedState map[string]any

// DeepMerge merges next over prev. Nested maps are merged recursively and
// values from next win on conflicting keys. Neither argument is modified.
func DeepMerge(prev, next CarriedState) CarriedState {
	if len(prev) == 0 && len(next) == 0 {
		return nil
	}
	out := make(CarriedState, len(prev)+len(next))
	maps.Copy(out, prev)
	for k, v := range next {
		if nv, ok := asMap(v); ok {
			if pv, ok := asMap(out[k]); ok {
				out[k] = map[string]any(DeepMerge(pv, nv))
				continue
			}
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (CarriedState, bool) {
	switch m := v.(type) {
	case CarriedState:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// ScanState is the single persisted record describing everything the engine knows.
// Watermark is the logical time (UnixNano) up to which sources were fully scanned.
// PendingUnload is ordered outermost dependent first, PendingLoad dependency first.
type ScanState struct {
	Watermark     int64                           `json:"watermark"`
	Sources       map[InternedString]Source       `json:"sources"`
	Units         map[InternedString]Unit         `json:"units"`
	Loaded        UnitSet                         `json:"loaded"`
	PendingUnload []InternedString                `json:"pending_unload,omitempty"`
	PendingLoad   []InternedString                `json:"pending_load,omitempty"`
	Broken        map[InternedString]string       `json:"broken,omitempty"`
	Carried       map[InternedString]CarriedState `json:"carried,omitempty"`
}

// NewScanState returns an empty state, as seen before the first scan.
func NewScanState() *ScanState {
	return &ScanState{
		Sources: make(map[InternedString]Source),
		Units:   make(map[InternedString]Unit),
		Loaded:  make(UnitSet),
		Broken:  make(map[InternedString]string),
		Carried: make(map[InternedString]CarriedState),
	}
}

// Clone copies every map and slice of the state. Source and Unit values are
// shared since they are never mutated after construction.
func (s *ScanState) Clone() *ScanState {
	if s == nil {
		return NewScanState()
	}
	out := &ScanState{
		Watermark:     s.Watermark,
		Sources:       maps.Clone(s.Sources),
		Units:         maps.Clone(s.Units),
		Loaded:        s.Loaded.Clone(),
		PendingUnload: slices.Clone(s.PendingUnload),
		PendingLoad:   slices.Clone(s.PendingLoad),
		Broken:        maps.Clone(s.Broken),
		Carried:       maps.Clone(s.Carried),
	}
	out.normalize()
	return out
}

// normalize replaces nil maps so callers can write without checks.
func (s *ScanState) normalize() {
	if s.Sources == nil {
		s.Sources = make(map[InternedString]Source)
	}
	if s.Units == nil {
		s.Units = make(map[InternedString]Unit)
	}
	if s.Loaded == nil {
		s.Loaded = make(UnitSet)
	}
	if s.Broken == nil {
		s.Broken = make(map[InternedString]string)
	}
	if s.Carried == nil {
		s.Carried = make(map[InternedString]CarriedState)
	}
}

// Normalize fills nil maps, typically after decoding a persisted state.
func (s *ScanState) Normalize() *ScanState {
	s.normalize()
	return s
}
