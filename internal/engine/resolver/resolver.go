// Package resolver turns a change set into ordered unload and load sequences.
package resolver

import (
	"maps"
	"regexp"
	"slices"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options selects which units a run touches.
type Options struct {
	Mode domain.Mode
	// Pattern is required in pattern mode and ignored otherwise.
	Pattern       *regexp.Regexp
	ExcludeUnload domain.UnitSet
	ExcludeReload domain.UnitSet
	ExcludeLoad   domain.UnitSet
	// Stable selects lexicographic tie-breaking between independent units.
	Stable bool
}

// Resolution is the ordered work of one run.
type Resolution struct {
	// Unload lists units outermost dependent first.
	Unload []domain.InternedString
	// Load lists units dependency first.
	Load []domain.InternedString
	// Carried holds the stashed state of every unit in Load that has one.
	Carried map[domain.InternedString]domain.CarriedState
	// Graph holds the new units overlaid on the previous ones. Every edge
	// constraining either sequence is part of it.
	Graph *domain.Graph
}

// Resolver computes unload and load sequences.
type Resolver struct {
	logger ports.Logger
}

// New creates a Resolver.
func New(logger ports.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve computes the ordered sequences for cs. Stashed carried state of
// units that no longer exist is dropped from cs.Next.
func (r *Resolver) Resolve(cs *domain.ChangeSet, opts Options) (*Resolution, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	run := &resolution{cs: cs, opts: opts}

	overlay := domain.NewGraph(overlayUnits(cs))
	unloadSet, unload := r.resolveUnload(run, overlay)
	load := r.resolveLoad(run, domain.NewGraph(cs.Next.Units), unloadSet)

	for unitID := range cs.Next.Carried {
		if _, ok := cs.Next.Units[unitID]; !ok {
			delete(cs.Next.Carried, unitID)
		}
	}

	carried := make(map[domain.InternedString]domain.CarriedState)
	for _, unitID := range load {
		if stash, ok := cs.Previous.Carried[unitID]; ok && len(stash) > 0 {
			carried[unitID] = domain.DeepMerge(stash, carried[unitID])
		}
	}

	return &Resolution{
		Unload:  unload,
		Load:    load,
		Carried: carried,
		Graph:   overlay,
	}, nil
}

func validate(opts Options) error {
	switch opts.Mode {
	case domain.ModeChanged, domain.ModeAllLoaded, domain.ModeAllDiscovered:
		return nil
	case domain.ModePattern:
		if opts.Pattern == nil {
			return domain.ErrMissingPattern
		}
		return nil
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownMode, "cannot resolve"), "mode", string(opts.Mode))
	}
}

// resolution carries the predicates of a single Resolve call.
type resolution struct {
	cs   *domain.ChangeSet
	opts Options
}

func (r *resolution) active(u domain.InternedString) bool {
	return r.cs.Active(u)
}

func (r *resolution) matches(u domain.InternedString) bool {
	return r.opts.Pattern != nil && r.opts.Pattern.MatchString(u.String())
}

func (r *resolution) excludedFromUnload(u domain.InternedString) bool {
	unit, _ := r.cs.Lookup(u)
	return unit.ExcludeFromUnload || r.opts.ExcludeUnload.Has(u)
}

func (r *resolution) excludedFromReload(u domain.InternedString) bool {
	unit, _ := r.cs.Lookup(u)
	return unit.ExcludeFromReload || r.opts.ExcludeReload.Has(u)
}

func (r *resolution) excludedFromLoad(u domain.InternedString) bool {
	unit, _ := r.cs.Lookup(u)
	return unit.ExcludeFromLoad || r.opts.ExcludeLoad.Has(u)
}

func (r *resolution) canUnload(u domain.InternedString) bool {
	return r.active(u) && !r.excludedFromUnload(u) && !r.excludedFromReload(u)
}

// canLoadBase holds in every mode.
func (r *resolution) canLoadBase(u domain.InternedString) bool {
	if _, ok := r.cs.Next.Units[u]; !ok {
		return false
	}
	if _, broken := r.cs.Next.Broken[u]; broken {
		return false
	}
	return !r.excludedFromReload(u) && !r.excludedFromLoad(u)
}

func (r *resolution) canLoad(u domain.InternedString) bool {
	if !r.canLoadBase(u) {
		return false
	}
	switch r.opts.Mode {
	case domain.ModeAllLoaded:
		return r.active(u)
	case domain.ModeAllDiscovered:
		return true
	case domain.ModePattern:
		return r.active(u) || r.matches(u) || r.cs.ToLoad.Has(u)
	default:
		return r.active(u) || r.cs.ToLoad.Has(u)
	}
}

func (r *resolution) rawUnload() domain.UnitSet {
	switch r.opts.Mode {
	case domain.ModeAllLoaded, domain.ModeAllDiscovered:
		return r.cs.Previous.Loaded.Clone()
	case domain.ModePattern:
		return r.cs.ToUnload.Union(r.cs.Previous.Loaded.Filter(r.matches))
	default:
		return r.cs.ToUnload.Clone()
	}
}

func (r *resolution) rawLoad() domain.UnitSet {
	switch r.opts.Mode {
	case domain.ModeAllLoaded:
		return r.cs.Previous.Loaded.Clone()
	case domain.ModeAllDiscovered:
		return domain.NewUnitSet(slices.Collect(maps.Keys(r.cs.Next.Units))...)
	case domain.ModePattern:
		matching := make(domain.UnitSet)
		for u := range r.cs.Next.Units {
			if r.matches(u) {
				matching.Add(u)
			}
		}
		return r.cs.ToLoad.Union(matching)
	default:
		return r.cs.ToLoad.Clone()
	}
}

// overlayUnits lays the new units over the previous ones, so units that
// disappeared keep their last known edges.
func overlayUnits(cs *domain.ChangeSet) map[domain.InternedString]domain.Unit {
	units := make(map[domain.InternedString]domain.Unit, len(cs.Previous.Units)+len(cs.Next.Units))
	maps.Copy(units, cs.Previous.Units)
	maps.Copy(units, cs.Next.Units)
	return units
}

func (r *Resolver) resolveUnload(run *resolution, graph *domain.Graph) (domain.UnitSet, []domain.InternedString) {
	dependents := graph.DependentsMap()

	seeds := run.rawUnload().Filter(run.canUnload)
	set := domain.TransitiveClosure(dependents, seeds).Filter(run.canUnload)

	for _, u := range run.cs.Previous.PendingUnload {
		if !run.excludedFromUnload(u) && !run.excludedFromReload(u) {
			set.Add(u)
		}
	}

	order, broken := graph.Order(run.opts.Stable)
	r.warnCycles(broken)

	seq := domain.Restrict(domain.Reverse(order), set)
	return set, prependMissing(seq, set)
}

func (r *Resolver) resolveLoad(run *resolution, graph *domain.Graph, unloadSet domain.UnitSet) []domain.InternedString {
	seeds := run.rawLoad().Union(unloadSet).Filter(run.canLoad)

	// A dependency that stays loaded through the unload phase is not loaded twice.
	closure := domain.TransitiveClosure(graph.DependenciesMap(), seeds)
	set := closure.Filter(func(u domain.InternedString) bool {
		if seeds.Has(u) {
			return true
		}
		stillLoaded := run.active(u) && !unloadSet.Has(u)
		return run.canLoad(u) && !stillLoaded
	})

	for _, u := range run.cs.Previous.PendingLoad {
		if run.canLoadBase(u) {
			set.Add(u)
		}
	}

	order, broken := graph.Order(run.opts.Stable)
	r.warnCycles(broken)

	return domain.Restrict(order, set)
}

func (r *Resolver) warnCycles(broken []domain.InternedString) {
	if len(broken) > 0 && r.logger != nil {
		r.logger.Warn("dependency cycle broken", "units", domain.Strings(broken))
	}
}

// prependMissing places members of set that the graph does not know about in
// front of seq, in lexicographic order.
func prependMissing(seq []domain.InternedString, set domain.UnitSet) []domain.InternedString {
	if len(seq) == len(set) {
		return seq
	}
	present := domain.NewUnitSet(seq...)
	missing := set.Filter(func(u domain.InternedString) bool { return !present.Has(u) }).Sorted()
	return append(missing, seq...)
}
