// Package model discovers SQL units in a workspace, extracts their
// dependencies and builds the dependency graph over them.
package model

import (
	"fmt"

	"github.com/crabwalk-labs/crabwalk/internal/config"
	"github.com/crabwalk-labs/crabwalk/internal/dag"
	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
)

// Model is one SQL unit: a .sql file whose stem names the relation it
// materializes. Models are immutable once scanned; every run rescans.
type Model struct {
	// Name is the file stem and the relation name.
	Name string
	// Path is the absolute or workspace-relative file path.
	Path string
	// RawSQL is the file content as read.
	RawSQL string
	// Statements are the parsed statements in file order.
	Statements []sqlparse.Statement
	// Deps holds every referenced table name, minus the model's own
	// name. Names that match no model are external and create no edge.
	Deps map[string]struct{}
	// Output is the inline materialization override, nil when the file
	// carries no @config directive.
	Output *config.OutputConfig
}

// DuplicateUnitError reports two files sharing a stem. Relation names
// are global, so the workspace refuses to run rather than letting one
// file's output silently clobber the other's.
type DuplicateUnitError struct {
	Name  string
	Paths [2]string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate unit name %q: %s and %s", e.Name, e.Paths[0], e.Paths[1])
}

// computeDeps unions table references across all statements and drops
// the model's own name, which also suppresses same-named CTE
// self-references.
func computeDeps(name string, stmts []sqlparse.Statement) map[string]struct{} {
	deps := make(map[string]struct{})
	for _, stmt := range stmts {
		for table := range sqlparse.ExtractTables(stmt) {
			deps[table] = struct{}{}
		}
	}
	delete(deps, name)
	return deps
}

// BuildGraph assembles the dependency graph. Nodes are model names;
// an edge runs from dependency to dependent only when the dependency
// is itself a model. External references never create edges.
func BuildGraph(models []*Model) *dag.Graph {
	g := dag.New()
	for _, m := range models {
		g.AddNode(m.Name)
	}
	for _, m := range models {
		for dep := range m.Deps {
			if !g.HasNode(dep) {
				continue
			}
			// Both endpoints exist, AddEdge cannot fail.
			_ = g.AddEdge(dep, m.Name)
		}
	}
	return g
}

// ExecutionOrder resolves the deterministic run order for the models.
// A cyclic workspace returns *dag.CycleError.
func ExecutionOrder(models []*Model) ([]*Model, error) {
	order, err := BuildGraph(models).TopologicalSort()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Model, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}
	sorted := make([]*Model, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, byName[name])
	}
	return sorted, nil
}
