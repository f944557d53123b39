package engine

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/crabwalk-labs/crabwalk/internal/lineage"
	"github.com/crabwalk-labs/crabwalk/internal/model"
)

// RunForce executes every .sql file under root exactly once in lexical
// path order, ignoring the dependency graph. Per-unit parse and
// execution failures are recorded in the summary and never abort the
// batch; the error return is reserved for failures that prevent the
// traversal itself (unreadable workspace, schema setup).
func (e *Engine) RunForce(ctx context.Context, root string) (*Summary, error) {
	summary := &Summary{}

	paths, err := e.scanner.ListSQLFiles(root)
	if err != nil {
		return summary, err
	}

	if err := e.prepareSchema(ctx); err != nil {
		return summary, err
	}

	var loaded []*model.Model
	for _, path := range paths {
		start := time.Now()
		m, err := e.scanner.LoadFile(ctx, path)
		if err != nil {
			e.logger.Error("unit failed to parse, continuing", "path", path, "error", err)
			summary.add(UnitResult{Name: unitName(path), Path: path, Duration: time.Since(start), Err: err})
			continue
		}
		loaded = append(loaded, m)

		if err := e.runModel(ctx, m); err != nil {
			e.logger.Error("unit failed, continuing", "unit", m.Name, "error", err)
			summary.add(UnitResult{Name: m.Name, Path: path, Duration: time.Since(start), Err: err})
			continue
		}
		summary.add(UnitResult{Name: m.Name, Path: path, Duration: time.Since(start)})
	}

	// Lineage is best-effort here: a broken workspace should still get
	// whatever diagram the loadable units allow.
	if err := lineage.WriteMermaid(lineageDir(root), loaded); err != nil {
		e.logger.Warn("could not write lineage diagram", "error", err)
	}

	e.logger.Info("force run complete",
		"total", len(summary.Results),
		"succeeded", summary.SuccessCount(),
		"failed", summary.FailureCount())
	return summary, nil
}

func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
