package dag

import (
	"errors"
	"testing"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()

	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// b depends on a
	if err := g.AddEdge("a", "b"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// c depends on b
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_UnknownNodes(t *testing.T) {
	g := New()
	g.AddNode("a")

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for unknown dependent node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for unknown dependency node")
	}
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	// b depends on a, c depends on both a and b
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	parents := g.Parents("c")
	if len(parents) != 2 {
		t.Errorf("expected c to have 2 parents, got %d", len(parents))
	}

	children := g.Children("a")
	if len(children) != 2 {
		t.Errorf("expected a to have 2 children, got %d", len(children))
	}
}

func TestGraph_TopologicalSort_Chain(t *testing.T) {
	g := New()
	g.AddNode("dependent")
	g.AddNode("source")

	// dependent reads from source
	g.AddEdge("source", "dependent")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	want := []string{"source", "dependent"}
	if len(order) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(order))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("position %d: expected %s, got %s", i, name, order[i])
		}
	}
}

func TestGraph_TopologicalSort_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, name := range []string{"zeta", "alpha", "mid", "beta"} {
			g.AddNode(name)
		}
		g.AddEdge("alpha", "mid")
		g.AddEdge("beta", "mid")
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	// Independent nodes come out lexically ordered.
	want := []string{"alpha", "beta", "zeta", "mid"}
	for i, name := range want {
		if first[i] != name {
			t.Fatalf("expected order %v, got %v", want, first)
		}
	}

	// Rebuilding and resorting yields the identical order.
	for i := 0; i < 5; i++ {
		again, err := build().TopologicalSort()
		if err != nil {
			t.Fatalf("failed to sort: %v", err)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("order changed between runs: %v vs %v", first, again)
			}
		}
	}
}

func TestGraph_TopologicalSort_Diamond(t *testing.T) {
	// Diamond dependency: a -> b, a -> c, b -> d, c -> d
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddNode("d")

	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "d")
	g.AddEdge("c", "d")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	positions := make(map[string]int)
	for i, name := range order {
		positions[name] = i
	}

	if positions["a"] != 0 {
		t.Error("a should be first")
	}
	if positions["d"] != 3 {
		t.Error("d should be last")
	}
}

func TestGraph_TopologicalSort_Empty(t *testing.T) {
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected empty order, got %v", order)
	}
}

func TestGraph_TopologicalSort_Cycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected error for cyclic graph")
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Members) < 3 {
		t.Errorf("expected cycle path with repeated entry node, got %v", cycleErr.Members)
	}
	members := make(map[string]bool)
	for _, m := range cycleErr.Members {
		members[m] = true
	}
	if !members["a"] || !members["b"] {
		t.Errorf("expected cycle to contain a and b, got %v", cycleErr.Members)
	}
}

func TestGraph_TopologicalSort_SelfCycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddEdge("a", "a")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}

func TestGraph_ExecutionLevels(t *testing.T) {
	g := New()
	g.AddNode("raw1")
	g.AddNode("raw2")
	g.AddNode("staging1")
	g.AddNode("staging2")
	g.AddNode("mart")

	g.AddEdge("raw1", "staging1")
	g.AddEdge("raw2", "staging2")
	g.AddEdge("staging1", "mart")
	g.AddEdge("staging2", "mart")

	levels, err := g.ExecutionLevels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}

	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if len(levels[0]) != 2 {
		t.Errorf("expected 2 nodes at level 0, got %d", len(levels[0]))
	}
	if len(levels[1]) != 2 {
		t.Errorf("expected 2 nodes at level 1, got %d", len(levels[1]))
	}
	if len(levels[2]) != 1 || levels[2][0] != "mart" {
		t.Errorf("expected [mart] at level 2, got %v", levels[2])
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	roots := g.Roots()
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "b" {
		t.Errorf("expected roots [a b], got %v", roots)
	}

	leaves := g.Leaves()
	if len(leaves) != 1 || leaves[0] != "c" {
		t.Errorf("expected leaves [c], got %v", leaves)
	}
}

func TestGraph_DisconnectedComponents(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddNode("d")

	g.AddEdge("a", "b")
	g.AddEdge("c", "d")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	positions := make(map[string]int)
	for i, name := range order {
		positions[name] = i
	}

	if positions["a"] >= positions["b"] {
		t.Error("a should come before b")
	}
	if positions["c"] >= positions["d"] {
		t.Error("c should come before d")
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge (no duplicates), got %d", g.EdgeCount())
	}
}
