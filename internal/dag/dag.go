// Package dag models the dependency graph between SQL units and
// resolves a deterministic execution order over it.
package dag

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports that the graph is not acyclic. Members holds the
// cycle path with the entry node repeated at the end (a -> b -> a).
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Members, " -> "))
}

// Graph is a directed graph keyed by unit name. Edges point from a
// dependency to its dependent: an edge u -> v means v reads from u, so
// u must run first.
type Graph struct {
	nodes    map[string]struct{}
	children map[string][]string // dependency -> dependents
	parents  map[string][]string // dependent -> dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]struct{}),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode registers a unit. Adding the same name twice is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodes[name]; ok {
		return
	}
	g.nodes[name] = struct{}{}
}

// AddEdge records that dependent reads from dep. Both nodes must have
// been added; unknown names are the caller's signal that a reference
// points outside the unit set and must not become an edge.
func (g *Graph) AddEdge(dep, dependent string) error {
	if _, ok := g.nodes[dep]; !ok {
		return fmt.Errorf("unknown dependency node %q", dep)
	}
	if _, ok := g.nodes[dependent]; !ok {
		return fmt.Errorf("unknown dependent node %q", dependent)
	}
	if containsString(g.children[dep], dependent) {
		return nil
	}
	g.children[dep] = append(g.children[dep], dependent)
	g.parents[dependent] = append(g.parents[dependent], dep)
	return nil
}

// HasNode reports whether the unit is in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Parents returns the dependencies of a unit, sorted.
func (g *Graph) Parents(name string) []string {
	return sortedCopy(g.parents[name])
}

// Children returns the dependents of a unit, sorted.
func (g *Graph) Children(name string) []string {
	return sortedCopy(g.children[name])
}

// Nodes returns all unit names, sorted.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the number of units in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.children {
		count += len(deps)
	}
	return count
}

// Roots returns units with no dependencies, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for name := range g.nodes {
		if len(g.parents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns units with no dependents, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for name := range g.nodes {
		if len(g.children[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// TopologicalSort returns every unit ordered so that dependencies come
// before dependents. Among units whose dependencies are all satisfied
// the lexically smallest name runs first, so the order is stable across
// runs and platforms. A cyclic graph returns *CycleError and no order.
func (g *Graph) TopologicalSort() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		indegree[name] = len(g.parents[name])
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var released []string
		for _, child := range g.children[name] {
			indegree[child]--
			if indegree[child] == 0 {
				released = append(released, child)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Members: g.findCycle()}
	}
	return order, nil
}

// ExecutionLevels groups units by depth: level 0 has no dependencies,
// level N+1 depends on something at level N. Each level is sorted.
func (g *Graph) ExecutionLevels() ([][]string, error) {
	if _, err := g.TopologicalSort(); err != nil {
		return nil, err
	}

	depth := make(map[string]int)
	var levelOf func(name string) int
	levelOf = func(name string) int {
		if d, ok := depth[name]; ok {
			return d
		}
		max := -1
		for _, parent := range g.parents[name] {
			if d := levelOf(parent); d > max {
				max = d
			}
		}
		depth[name] = max + 1
		return max + 1
	}

	maxDepth := 0
	for name := range g.nodes {
		if d := levelOf(name); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for name, d := range depth {
		levels[d] = append(levels[d], name)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	if len(g.nodes) == 0 {
		return nil, nil
	}
	return levels, nil
}

// findCycle locates one cycle by DFS and returns its path with the
// entry node repeated at the end.
func (g *Graph) findCycle() []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(name string) bool
	dfs = func(name string) bool {
		state[name] = inStack
		for _, child := range sortedCopy(g.children[name]) {
			switch state[child] {
			case unvisited:
				cameFrom[child] = name
				if dfs(child) {
					return true
				}
			case inStack:
				cycle = []string{child}
				for cur := name; cur != child; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{child}, cycle...)
				return true
			}
		}
		state[name] = done
		return false
	}

	for _, name := range g.Nodes() {
		if state[name] == unvisited && dfs(name) {
			return cycle
		}
	}
	return nil
}

func sortedCopy(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
