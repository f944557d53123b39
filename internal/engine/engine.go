// Package engine executes SQL units against an embedded DuckDB
// database in dependency order.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/crabwalk-labs/crabwalk/internal/config"
	"github.com/crabwalk-labs/crabwalk/internal/lineage"
	"github.com/crabwalk-labs/crabwalk/internal/model"
	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
)

// Engine ties a session, a scanner and the workspace configuration
// together for one or more runs. Not safe for concurrent use; runs are
// strictly sequential.
type Engine struct {
	cfg     *config.Config
	session *Session
	scanner *model.Scanner
	logger  *slog.Logger
}

// New opens the configured database and prepares an engine.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	session, err := OpenSession(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:     cfg,
		session: session,
		scanner: model.NewScanner(cfg.Dialect, session, logger),
		logger:  logger,
	}, nil
}

// Close releases the database connection.
func (e *Engine) Close() error {
	return e.session.Close()
}

// Session exposes the underlying session for backup/restore commands.
func (e *Engine) Session() *Session {
	return e.session
}

// Discover scans root and returns its models.
func (e *Engine) Discover(ctx context.Context, root string) ([]*model.Model, error) {
	return e.scanner.Scan(ctx, root)
}

// Run executes every unit under root in dependency order. The first
// failure aborts the run; units that already completed keep their
// artifacts. The returned summary covers the units attempted so far.
func (e *Engine) Run(ctx context.Context, root string) (*Summary, error) {
	summary := &Summary{}

	models, err := e.Discover(ctx, root)
	if err != nil {
		return summary, err
	}

	order, err := model.ExecutionOrder(models)
	if err != nil {
		return summary, err
	}

	if err := e.prepareSchema(ctx); err != nil {
		return summary, err
	}

	for _, m := range order {
		start := time.Now()
		err := e.runModel(ctx, m)
		summary.add(UnitResult{Name: m.Name, Path: m.Path, Duration: time.Since(start), Err: err})
		if err != nil {
			return summary, fmt.Errorf("unit %s: %w", m.Name, err)
		}
		e.logger.Info("unit complete", "unit", m.Name, "duration", time.Since(start))
	}

	if err := lineage.WriteMermaid(lineageDir(root), models); err != nil {
		return summary, fmt.Errorf("writing lineage diagram: %w", err)
	}
	return summary, nil
}

// prepareSchema runs the pre-queries: the target schema is created if
// missing and made the default for everything that follows.
func (e *Engine) prepareSchema(ctx context.Context) error {
	if err := e.session.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", e.cfg.Schema)); err != nil {
		return fmt.Errorf("creating schema %s: %w", e.cfg.Schema, err)
	}
	if err := e.session.Exec(ctx, fmt.Sprintf("USE %s", e.cfg.Schema)); err != nil {
		return fmt.Errorf("switching to schema %s: %w", e.cfg.Schema, err)
	}
	return nil
}

// runModel executes one unit: raw statements run verbatim, SELECT
// statements materialize according to the merged output config.
func (e *Engine) runModel(ctx context.Context, m *model.Model) error {
	output := config.MergeOutput(&e.cfg.Output, m.Output)

	for _, stmt := range m.Statements {
		switch s := stmt.(type) {
		case *sqlparse.RawStmt:
			if err := e.session.Exec(ctx, s.Raw()); err != nil {
				return err
			}
		case *sqlparse.SelectStmt:
			if err := e.materialize(ctx, m.Name, s.Raw(), output); err != nil {
				return err
			}
		}
	}
	return nil
}

// lineageDir returns where lineage artifacts are written: the
// workspace directory, or the parent when root is a single file.
func lineageDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}
