// Package source reads unit declarations from YAML and HCL source files.
package source

import (
	"maps"
	"slices"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/zerr"
)

// unitEntry is the format-independent shape of one unit declaration.
type unitEntry struct {
	Dependencies []string          `yaml:"dependencies"`
	Kind         string            `yaml:"kind"`
	Meta         map[string]string `yaml:"meta"`
	NoUnload     bool              `yaml:"no_unload"`
	NoLoad       bool              `yaml:"no_load"`
	NoReload     bool              `yaml:"no_reload"`
}

func (s unitEntry) declaration(unit string) (domain.Declaration, error) {
	kind := domain.Kind(s.Kind)
	if !kind.Valid() {
		return domain.Declaration{}, zerr.With(zerr.With(zerr.New("unknown unit kind"), "unit", unit), "kind", s.Kind)
	}
	if kind == "" {
		kind = domain.KindModule
	}

	deps := slices.Clone(s.Dependencies)
	slices.Sort(deps)
	deps = slices.Compact(deps)
	for _, d := range deps {
		if d == "" {
			return domain.Declaration{}, zerr.With(zerr.New("empty dependency name"), "unit", unit)
		}
	}

	var meta map[string]string
	if len(s.Meta) > 0 {
		meta = maps.Clone(s.Meta)
	}

	return domain.Declaration{
		Dependencies: domain.NewInternedStrings(deps...),
		Kind:         kind,
		Meta:         meta,
		NoUnload:     s.NoUnload,
		NoLoad:       s.NoLoad,
		NoReload:     s.NoReload,
	}, nil
}

func declarations(entries map[string]unitEntry) (map[domain.InternedString]domain.Declaration, error) {
	out := make(map[domain.InternedString]domain.Declaration, len(entries))
	for name, entry := range entries {
		if name == "" {
			return nil, zerr.New("empty unit name")
		}
		decl, err := entry.declaration(name)
		if err != nil {
			return nil, err
		}
		out[domain.NewInternedString(name)] = decl
	}
	return out, nil
}

func parseError(err error, source domain.InternedString) error {
	return zerr.With(domain.Classify(domain.ErrSourceParse, err), "source", source.String())
}
