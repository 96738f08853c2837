// Package domain contains the core domain models and graph algorithms for unit reloading.
package domain

import (
	"container/heap"
	"slices"
)

// BuildDependents maps every unit to the set of units that depend on it.
// Units without dependents map to an empty set. Dependency ids that are not
// in units are tolerated and become keys as well.
func BuildDependents(units map[InternedString]Unit) map[InternedString]UnitSet {
	out := make(map[InternedString]UnitSet, len(units))
	for id, u := range units {
		if _, ok := out[id]; !ok {
			out[id] = make(UnitSet)
		}
		for _, dep := range u.Dependencies {
			if _, ok := out[dep]; !ok {
				out[dep] = make(UnitSet)
			}
			out[dep].Add(id)
		}
	}
	return out
}

// BuildDependencies maps every unit to the set of units it depends on.
func BuildDependencies(units map[InternedString]Unit) map[InternedString]UnitSet {
	out := make(map[InternedString]UnitSet, len(units))
	for id, u := range units {
		deps := NewUnitSet(u.Dependencies...)
		if existing, ok := out[id]; ok {
			deps = deps.Union(existing)
		}
		out[id] = deps
		for _, dep := range u.Dependencies {
			if _, ok := out[dep]; !ok {
				out[dep] = make(UnitSet)
			}
		}
	}
	return out
}

// Invert flips the direction of a relation, turning dependents into dependencies
// and vice versa.
func Invert(rel map[InternedString]UnitSet) map[InternedString]UnitSet {
	out := make(map[InternedString]UnitSet, len(rel))
	for from, tos := range rel {
		if _, ok := out[from]; !ok {
			out[from] = make(UnitSet)
		}
		for to := range tos {
			if _, ok := out[to]; !ok {
				out[to] = make(UnitSet)
			}
			out[to].Add(from)
		}
	}
	return out
}

// TransitiveClosure returns every unit reachable from starts along rel,
// including the starts themselves. A visited set guards against cycles.
func TransitiveClosure(rel map[InternedString]UnitSet, starts UnitSet) UnitSet {
	visited := make(UnitSet, len(starts))
	stack := make([]InternedString, 0, len(starts))
	for id := range starts {
		visited.Add(id)
		stack = append(stack, id)
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for next := range rel[id] {
			if !visited.Has(next) {
				visited.Add(next)
				stack = append(stack, next)
			}
		}
	}

	return visited
}

// TopologicalOrder orders the units of a dependents relation so that every unit
// precedes all of its dependents.
//
// In stable mode the lexicographically smallest ready unit is always picked,
// which makes the result reproducible. Otherwise ready units are taken in
// whatever order the maps yield them.
//
// Cycles do not abort the sort: when no unit is ready, the smallest remaining
// unit is emitted anyway and reported in broken.
func TopologicalOrder(dependents map[InternedString]UnitSet, stable bool) (order, broken []InternedString) {
	inDegree := make(map[InternedString]int, len(dependents))
	for id, deps := range dependents {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
		}
		for d := range deps {
			inDegree[d]++
		}
	}

	var ready readyQueue = &lifoQueue{}
	if stable {
		ready = &minQueue{}
	}
	for id, degree := range inDegree {
		if degree == 0 {
			ready.push(id)
		}
	}

	// Sorted view used to pick a deterministic victim when a cycle blocks progress.
	all := make([]InternedString, 0, len(inDegree))
	for id := range inDegree {
		all = append(all, id)
	}
	slices.SortFunc(all, InternedString.Compare)
	next := 0

	emitted := make(UnitSet, len(inDegree))
	order = make([]InternedString, 0, len(inDegree))

	for len(order) < len(inDegree) {
		if ready.len() == 0 {
			for emitted.Has(all[next]) {
				next++
			}
			victim := all[next]
			broken = append(broken, victim)
			ready.push(victim)
		}

		id := ready.pop()
		if emitted.Has(id) {
			continue
		}
		emitted.Add(id)
		order = append(order, id)

		for d := range dependents[id] {
			if emitted.Has(d) {
				continue
			}
			inDegree[d]--
			if inDegree[d] == 0 {
				ready.push(d)
			}
		}
	}

	return order, broken
}

// Reverse returns a reversed copy of seq.
func Reverse(seq []InternedString) []InternedString {
	out := slices.Clone(seq)
	slices.Reverse(out)
	return out
}

// Restrict keeps the elements of order that belong to set, preserving order.
func Restrict(order []InternedString, set UnitSet) []InternedString {
	out := make([]InternedString, 0, len(set))
	for _, id := range order {
		if set.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

type readyQueue interface {
	push(id InternedString)
	pop() InternedString
	len() int
}

type lifoQueue struct {
	items []InternedString
}

func (q *lifoQueue) push(id InternedString) { q.items = append(q.items, id) }

func (q *lifoQueue) pop() InternedString {
	id := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return id
}

func (q *lifoQueue) len() int { return len(q.items) }

// minQueue is a min-heap of identifiers ordered by their string value.
type minQueue struct {
	h idHeap
}

func (q *minQueue) push(id InternedString) { heap.Push(&q.h, id) }

func (q *minQueue) pop() InternedString {
	id, _ := heap.Pop(&q.h).(InternedString)
	return id
}

func (q *minQueue) len() int { return q.h.Len() }

type idHeap []InternedString

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i].Compare(h[j]) < 0 }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *idHeap) Push(x any) {
	id, _ := x.(InternedString)
	*h = append(*h, id)
}

func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	id := old[n-1]
	*h = old[:n-1]
	return id
}

// Graph bundles a unit table with both directions of its dependency relation.
type Graph struct {
	units        map[InternedString]Unit
	dependents   map[InternedString]UnitSet
	dependencies map[InternedString]UnitSet
}

// NewGraph indexes units in both directions.
func NewGraph(units map[InternedString]Unit) *Graph {
	return &Graph{
		units:        units,
		dependents:   BuildDependents(units),
		dependencies: BuildDependencies(units),
	}
}

// Unit returns the unit record for id.
func (g *Graph) Unit(id InternedString) (Unit, bool) {
	u, ok := g.units[id]
	return u, ok
}

// Units returns the unit table the graph was built from.
func (g *Graph) Units() map[InternedString]Unit {
	return g.units
}

// Dependents returns the direct dependents of id.
func (g *Graph) Dependents(id InternedString) UnitSet {
	return g.dependents[id]
}

// Dependencies returns the direct dependencies of id.
func (g *Graph) Dependencies(id InternedString) UnitSet {
	return g.dependencies[id]
}

// DependentsMap returns the full dependents relation.
func (g *Graph) DependentsMap() map[InternedString]UnitSet {
	return g.dependents
}

// DependenciesMap returns the full dependencies relation.
func (g *Graph) DependenciesMap() map[InternedString]UnitSet {
	return g.dependencies
}

// Order returns a dependency-first order of every unit in the graph.
func (g *Graph) Order(stable bool) (order, broken []InternedString) {
	return TopologicalOrder(g.dependents, stable)
}

// DependsOn reports whether a reaches b by following dependencies.
func (g *Graph) DependsOn(a, b InternedString) bool {
	if a == b {
		return false
	}
	return TransitiveClosure(g.dependencies, NewUnitSet(a)).Has(b)
}

// Components groups the members of set into weakly connected components of
// the whole graph. Paths through units outside set still connect members, so
// two members end up in different components only when no chain of edges
// links them. Each component is sorted and components are ordered by their
// smallest member.
func (g *Graph) Components(set UnitSet) [][]InternedString {
	parent := make(map[InternedString]InternedString)
	var find func(InternedString) InternedString
	find = func(id InternedString) InternedString {
		p, ok := parent[id]
		if !ok {
			parent[id] = id
			return id
		}
		if p == id {
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	union := func(a, b InternedString) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for id, deps := range g.dependencies {
		find(id)
		for d := range deps {
			union(id, d)
		}
	}

	groups := make(map[InternedString][]InternedString)
	for id := range set {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	out := make([][]InternedString, 0, len(groups))
	for _, members := range groups {
		slices.SortFunc(members, InternedString.Compare)
		out = append(out, members)
	}
	slices.SortFunc(out, func(a, b []InternedString) int {
		return a[0].Compare(b[0])
	})
	return out
}
