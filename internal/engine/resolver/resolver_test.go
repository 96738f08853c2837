package resolver_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports/mocks"
	"go.trai.ch/reload/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func id(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func set(ids ...string) domain.UnitSet {
	return domain.NewUnitSet(domain.NewInternedStrings(ids...)...)
}

func units(edges map[string][]string) map[domain.InternedString]domain.Unit {
	out := make(map[domain.InternedString]domain.Unit, len(edges))
	for name, deps := range edges {
		out[id(name)] = domain.Unit{
			ID:           id(name),
			Dependencies: domain.NewInternedStrings(deps...),
			Kind:         domain.KindModule,
		}
	}
	return out
}

// changeSet builds a change set where prev and next hold the given unit graphs.
func changeSet(prev, next map[string][]string, loaded ...string) *domain.ChangeSet {
	p := domain.NewScanState()
	p.Units = units(prev)
	p.Loaded = set(loaded...)

	n := p.Clone()
	n.Units = units(next)

	return &domain.ChangeSet{
		Previous:        p,
		Next:            n,
		ToUnload:        make(domain.UnitSet),
		ToLoad:          make(domain.UnitSet),
		ModifiedSources: make(domain.UnitSet),
		BrokenUnits:     make(map[domain.InternedString]error),
		SourceErrors:    make(map[domain.InternedString]error),
	}
}

func abc() map[string][]string {
	return map[string][]string{"a": nil, "b": {"a"}, "c": {"a"}}
}

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return resolver.New(log)
}

func indexOf(seq []domain.InternedString, name string) int {
	for i, u := range seq {
		if u.String() == name {
			return i
		}
	}
	return -1
}

func TestResolve_ChangedDependency(t *testing.T) {
	cs := changeSet(abc(), abc(), "a", "b", "c")
	cs.ToUnload = set("a")
	cs.ToLoad = set("a")

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	require.Len(t, res.Unload, 3)
	assert.Equal(t, "a", res.Unload[2].String(), "a unloads strictly last")
	assert.ElementsMatch(t, []string{"b", "c"}, domain.Strings(res.Unload[:2]))

	require.Len(t, res.Load, 3)
	assert.Equal(t, "a", res.Load[0].String(), "a loads strictly first")
	assert.ElementsMatch(t, []string{"b", "c"}, domain.Strings(res.Load[1:]))

	assert.Equal(t, []string{"c", "b", "a"}, domain.Strings(res.Unload))
	assert.Equal(t, domain.Reverse(res.Load), res.Unload)
}

func TestResolve_FastModeKeepsOrdering(t *testing.T) {
	cs := changeSet(abc(), abc(), "a", "b", "c")
	cs.ToUnload = set("a")
	cs.ToLoad = set("a")

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged})
	require.NoError(t, err)

	assert.Equal(t, 2, indexOf(res.Unload, "a"))
	assert.Equal(t, 0, indexOf(res.Load, "a"))
}

func TestResolve_DeletedUnit(t *testing.T) {
	cs := changeSet(
		map[string][]string{"x": nil, "y": nil},
		map[string][]string{"y": nil},
		"x", "y",
	)
	cs.ToUnload = set("x")

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, domain.Strings(res.Unload))
	assert.Empty(t, res.Load)
}

func TestResolve_DeletedUnitUnloadsDependents(t *testing.T) {
	// x disappeared; its dependent z still exists and must be cycled.
	cs := changeSet(
		map[string][]string{"x": nil, "z": {"x"}},
		map[string][]string{"z": {"x"}},
		"x", "z",
	)
	cs.ToUnload = set("x")

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "x"}, domain.Strings(res.Unload))
	assert.Equal(t, []string{"z"}, domain.Strings(res.Load))
}

func TestResolve_Exclusions(t *testing.T) {
	t.Run("Reload exclusion from options", func(t *testing.T) {
		cs := changeSet(abc(), abc(), "a", "b", "c")
		cs.ToUnload = set("a")
		cs.ToLoad = set("a")

		res, err := newResolver(t).Resolve(cs, resolver.Options{
			Mode:          domain.ModeChanged,
			Stable:        true,
			ExcludeReload: set("b"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"c", "a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "c"}, domain.Strings(res.Load))
	})

	t.Run("Unload exclusion from unit flag", func(t *testing.T) {
		cs := changeSet(abc(), abc(), "a", "b", "c")
		c := cs.Next.Units[id("c")]
		c.ExcludeFromUnload = true
		cs.Next.Units[id("c")] = c
		cs.ToUnload = set("a")
		cs.ToLoad = set("a")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "b"}, domain.Strings(res.Load))
	})

	t.Run("Load exclusion", func(t *testing.T) {
		cs := changeSet(abc(), abc(), "a", "b", "c")
		cs.ToUnload = set("a")
		cs.ToLoad = set("a")

		res, err := newResolver(t).Resolve(cs, resolver.Options{
			Mode:        domain.ModeChanged,
			Stable:      true,
			ExcludeLoad: set("c"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"c", "b", "a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "b"}, domain.Strings(res.Load))
	})
}

func TestResolve_Modes(t *testing.T) {
	graph := map[string][]string{"a": nil, "b": {"a"}, "d": nil}

	t.Run("All loaded", func(t *testing.T) {
		cs := changeSet(graph, graph, "a", "b")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeAllLoaded, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "b"}, domain.Strings(res.Load))
	})

	t.Run("All discovered", func(t *testing.T) {
		cs := changeSet(graph, graph, "a")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeAllDiscovered, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "b", "d"}, domain.Strings(res.Load))
	})

	t.Run("Pattern", func(t *testing.T) {
		cs := changeSet(graph, graph, "a", "b")

		res, err := newResolver(t).Resolve(cs, resolver.Options{
			Mode:    domain.ModePattern,
			Pattern: regexp.MustCompile(`^(b|d)$`),
			Stable:  true,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"b"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"b", "d"}, domain.Strings(res.Load))
	})

	t.Run("Pattern required", func(t *testing.T) {
		cs := changeSet(graph, graph)
		_, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModePattern})
		require.ErrorIs(t, err, domain.ErrMissingPattern)
	})

	t.Run("Unknown mode", func(t *testing.T) {
		cs := changeSet(graph, graph)
		_, err := newResolver(t).Resolve(cs, resolver.Options{Mode: "sometimes"})
		require.ErrorIs(t, err, domain.ErrUnknownMode)
	})
}

func TestResolve_InactiveDependencies(t *testing.T) {
	graph := map[string][]string{"a": nil, "c": {"a", "d"}, "d": nil}

	t.Run("Changed skips a dependency that was never loaded", func(t *testing.T) {
		cs := changeSet(graph, graph, "a", "c")
		cs.ToUnload = set("c")
		cs.ToLoad = set("c")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"c"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"c"}, domain.Strings(res.Load), "active a stays loaded, inactive d is left alone")
	})

	t.Run("Changed loads a dependency from a new source", func(t *testing.T) {
		cs := changeSet(graph, graph, "a", "c")
		cs.ToUnload = set("c")
		cs.ToLoad = set("c", "d")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"d", "c"}, domain.Strings(res.Load))
	})

	t.Run("All loaded never pulls in inactive units", func(t *testing.T) {
		cs := changeSet(graph, graph, "a", "c")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeAllLoaded, Stable: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"c", "a"}, domain.Strings(res.Unload))
		assert.Equal(t, []string{"a", "c"}, domain.Strings(res.Load))
	})

	t.Run("Changed loads a new unit", func(t *testing.T) {
		next := map[string][]string{"a": nil, "c": {"a", "d"}, "d": nil, "n": nil}
		cs := changeSet(graph, next, "a", "c")
		cs.ToLoad = set("n")

		res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
		require.NoError(t, err)

		assert.Empty(t, res.Unload)
		assert.Equal(t, []string{"n"}, domain.Strings(res.Load))
	})
}

func TestResolve_PendingWork(t *testing.T) {
	graph := map[string][]string{"a": nil, "m": {"a"}}
	cs := changeSet(graph, graph, "a")
	cs.Previous.PendingUnload = domain.NewInternedStrings("m")
	cs.Previous.PendingLoad = domain.NewInternedStrings("m")

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"m"}, domain.Strings(res.Unload))
	assert.Equal(t, []string{"m"}, domain.Strings(res.Load))
}

func TestResolve_BrokenUnitIsNotLoaded(t *testing.T) {
	cs := changeSet(abc(), abc())
	cs.ToLoad = set("a", "b")
	cs.Next.Broken[id("b")] = "bad"

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	assert.Empty(t, res.Unload)
	assert.Equal(t, []string{"a"}, domain.Strings(res.Load))
}

func TestResolve_CarriedState(t *testing.T) {
	graph := map[string][]string{"a": nil, "b": {"a"}}
	cs := changeSet(graph, graph, "a", "b")
	cs.ToUnload = set("b")
	cs.ToLoad = set("b")
	cs.Previous.Carried = map[domain.InternedString]domain.CarriedState{
		id("b"):    {"port": "8080"},
		id("gone"): {"k": "v"},
	}
	cs.Next.Carried = map[domain.InternedString]domain.CarriedState{
		id("b"):    {"port": "8080"},
		id("gone"): {"k": "v"},
	}

	res, err := newResolver(t).Resolve(cs, resolver.Options{Mode: domain.ModeChanged, Stable: true})
	require.NoError(t, err)

	assert.Equal(t, map[domain.InternedString]domain.CarriedState{id("b"): {"port": "8080"}}, res.Carried)
	assert.NotContains(t, cs.Next.Carried, id("gone"))
	assert.Contains(t, cs.Next.Carried, id("b"))
	assert.NotNil(t, res.Graph)
}
