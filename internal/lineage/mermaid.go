// Package lineage renders the unit dependency map as mermaid and HTML
// diagrams.
package lineage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crabwalk-labs/crabwalk/internal/model"
)

// MermaidFileName is the diagram written into the workspace.
const MermaidFileName = "lineage.mmd"

// Mermaid renders the dependency map as a mermaid flowchart. Nodes
// and edges are emitted in sorted order so the output is stable.
// Edges only appear between known units; external references are
// omitted.
func Mermaid(models []*model.Model) string {
	known := make(map[string]struct{}, len(models))
	names := make([]string, 0, len(models))
	for _, m := range models {
		if _, ok := known[m.Name]; ok {
			continue
		}
		known[m.Name] = struct{}{}
		names = append(names, m.Name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, name := range names {
		fmt.Fprintf(&b, "    %s\n", name)
	}

	byName := make(map[string]*model.Model, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}
	for _, name := range names {
		for _, dep := range sortedDeps(byName[name]) {
			if _, ok := known[dep]; !ok {
				continue
			}
			fmt.Fprintf(&b, "    %s --> %s\n", dep, name)
		}
	}
	return b.String()
}

// WriteMermaid writes the diagram to <dir>/lineage.mmd.
func WriteMermaid(dir string, models []*model.Model) error {
	path := filepath.Join(dir, MermaidFileName)
	if err := os.WriteFile(path, []byte(Mermaid(models)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func sortedDeps(m *model.Model) []string {
	deps := make([]string, 0, len(m.Deps))
	for dep := range m.Deps {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}
