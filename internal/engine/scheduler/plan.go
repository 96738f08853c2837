// Package scheduler turns unload and load sequences into a fork-join plan and executes it.
package scheduler

import (
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/zerr"
)

// BuildSpine consumes both sequences head-first and builds a linear chain of
// plan nodes, each forking into the next.
//
// unload is ordered outermost dependent first. After tasks run innermost
// first, so load must be given outermost first as well: the reverse of the
// dependency-first load order.
func BuildSpine(unload, load []domain.InternedString) *domain.Plan {
	root := &domain.Plan{}
	node := root

	for len(unload) > 0 || len(load) > 0 {
		switch {
		case len(unload) > 0 && len(load) > 0 && unload[0] == load[0]:
			node.Before = []domain.Task{domain.Unload(unload[0])}
			node.After = []domain.Task{domain.Load(load[0])}
			unload, load = unload[1:], load[1:]
		case len(unload) > 0:
			node.Before = []domain.Task{domain.Unload(unload[0])}
			unload = unload[1:]
		default:
			node.After = []domain.Task{domain.Load(load[0])}
			load = load[1:]
		}

		if len(unload) == 0 && len(load) == 0 {
			break
		}
		child := &domain.Plan{}
		node.Forks = []*domain.Plan{child}
		node = child
	}

	return root
}

// BuildPlan splits the touched units into weakly connected components of g
// and builds one spine per component. Components share no edge, so their
// spines run concurrently under a common root. load is dependency first.
func BuildPlan(g *domain.Graph, unload, load []domain.InternedString) *domain.Plan {
	touched := domain.NewUnitSet(unload...).Union(domain.NewUnitSet(load...))
	components := g.Components(touched)

	if len(components) <= 1 {
		return BuildSpine(unload, domain.Reverse(load))
	}

	root := &domain.Plan{Forks: make([]*domain.Plan, 0, len(components))}
	for _, members := range components {
		set := domain.NewUnitSet(members...)
		root.Forks = append(root.Forks, BuildSpine(
			domain.Restrict(unload, set),
			domain.Reverse(domain.Restrict(load, set)),
		))
	}
	return root
}

// Validate checks the sequences against g and the plan against the sequences.
// Any violation is a bug upstream and yields ErrPlanInvariant.
func Validate(plan *domain.Plan, g *domain.Graph, unload, load []domain.InternedString) error {
	unloadPos, err := positions("unload", unload)
	if err != nil {
		return err
	}
	loadPos, err := positions("load", load)
	if err != nil {
		return err
	}

	// A dependency must be unloaded after its dependents.
	if err := checkOrder("unload", g, unloadPos, func(dep, dependent int) bool { return dep > dependent }); err != nil {
		return err
	}
	// A dependency must be loaded before its dependents.
	if err := checkOrder("load", g, loadPos, func(dep, dependent int) bool { return dep < dependent }); err != nil {
		return err
	}

	want := make(map[domain.Task]int, len(unload)+len(load))
	for _, u := range unload {
		want[domain.Unload(u)]++
	}
	for _, u := range load {
		want[domain.Load(u)]++
	}
	for t := range plan.Tasks() {
		want[t]--
		if want[t] < 0 {
			return zerr.With(zerr.Wrap(domain.ErrPlanInvariant, "task planned more than once"), "task", t.String())
		}
	}
	for t, n := range want {
		if n > 0 {
			return zerr.With(zerr.Wrap(domain.ErrPlanInvariant, "task missing from plan"), "task", t.String())
		}
	}

	return nil
}

func positions(name string, seq []domain.InternedString) (map[domain.InternedString]int, error) {
	pos := make(map[domain.InternedString]int, len(seq))
	for i, u := range seq {
		if _, dup := pos[u]; dup {
			err := zerr.With(zerr.Wrap(domain.ErrPlanInvariant, "duplicate unit in sequence"), "sequence", name)
			return nil, zerr.With(err, "unit", u.String())
		}
		pos[u] = i
	}
	return pos, nil
}

// checkOrder verifies every direct edge between members of a sequence.
// Edges inside a dependency cycle cannot all be honoured and are skipped.
func checkOrder(
	name string,
	g *domain.Graph,
	pos map[domain.InternedString]int,
	ok func(dep, dependent int) bool,
) error {
	for dependent, i := range pos {
		for dep := range g.Dependencies(dependent) {
			j, in := pos[dep]
			if !in || dep == dependent || ok(j, i) {
				continue
			}
			if g.DependsOn(dep, dependent) {
				continue
			}
			err := zerr.With(zerr.Wrap(domain.ErrPlanInvariant, "sequence violates dependency order"), "sequence", name)
			err = zerr.With(err, "unit", dependent.String())
			return zerr.With(err, "dependency", dep.String())
		}
	}
	return nil
}
