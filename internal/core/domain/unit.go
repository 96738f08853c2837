package domain

import (
	"maps"
	"slices"
)

// Kind tags a unit declaration with the strategy used to preserve its state
// across an unload/load cycle. The engine never branches on it; only the
// state-preservation collaborator reads the capability.
type Kind string

const (
	// KindModule is a plain unit without carried state.
	KindModule Kind = "module"
	// KindStateful units capture state on unload and restore it on load.
	KindStateful Kind = "stateful"
	// KindEphemeral units are never restored, even if state was captured earlier.
	KindEphemeral Kind = "ephemeral"
)

// Capability describes what a declaration kind supports.
type Capability struct {
	// Capture is true when unloading should collect carried state.
	Capture bool
	// Restore is true when loading should receive carried state.
	Restore bool
}

// Capability returns the descriptor for k. Unknown kinds behave like KindModule.
func (k Kind) Capability() Capability {
	switch k {
	case KindStateful:
		return Capability{Capture: true, Restore: true}
	default:
		return Capability{}
	}
}

// Valid reports whether k is a known kind. The empty kind is valid and means KindModule.
func (k Kind) Valid() bool {
	switch k {
	case "", KindModule, KindStateful, KindEphemeral:
		return true
	default:
		return false
	}
}

// Declaration is what a single source says about a single unit.
type Declaration struct {
	Dependencies []InternedString `json:"dependencies,omitempty"`
	Kind         Kind              `json:"kind,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
	NoUnload     bool              `json:"no_unload,omitempty"`
	NoLoad       bool              `json:"no_load,omitempty"`
	NoReload     bool              `json:"no_reload,omitempty"`
}

// Unit is a named, independently loadable piece of work.
type Unit struct {
	ID                InternedString    `json:"id"`
	Dependencies      []InternedString  `json:"dependencies,omitempty"`
	Sources           []InternedString  `json:"sources,omitempty"`
	Kind              Kind              `json:"kind,omitempty"`
	Meta              map[string]string `json:"meta,omitempty"`
	ExcludeFromUnload bool              `json:"exclude_from_unload,omitempty"`
	ExcludeFromLoad   bool              `json:"exclude_from_load,omitempty"`
	ExcludeFromReload bool              `json:"exclude_from_reload,omitempty"`
}

// MergeUnits derives the unit table from the declarations of every live source.
// A unit declared by several sources unions dependencies and sources, merges
// meta in source order (later sources win) and ORs the policy flags.
func MergeUnits(sources map[InternedString]Source) map[InternedString]Unit {
	ids := make([]InternedString, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, InternedString.Compare)

	deps := make(map[InternedString]UnitSet)
	units := make(map[InternedString]Unit)

	for _, sourceID := range ids {
		src := sources[sourceID]
		for unitID, decl := range src.Declarations {
			u, ok := units[unitID]
			if !ok {
				u = Unit{ID: unitID}
				deps[unitID] = make(UnitSet)
			}

			for _, d := range decl.Dependencies {
				deps[unitID].Add(d)
			}
			u.Sources = append(u.Sources, sourceID)

			if u.Kind == "" || u.Kind == KindModule {
				u.Kind = decl.Kind
			}
			if len(decl.Meta) > 0 {
				if u.Meta == nil {
					u.Meta = make(map[string]string, len(decl.Meta))
				}
				maps.Copy(u.Meta, decl.Meta)
			}

			u.ExcludeFromUnload = u.ExcludeFromUnload || decl.NoUnload
			u.ExcludeFromLoad = u.ExcludeFromLoad || decl.NoLoad
			u.ExcludeFromReload = u.ExcludeFromReload || decl.NoReload
			units[unitID] = u
		}
	}

	for id, u := range units {
		if len(deps[id]) > 0 {
			u.Dependencies = deps[id].Sorted()
		}
		if u.Kind == "" {
			u.Kind = KindModule
		}
		units[id] = u
	}

	return units
}
