package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crabwalk-labs/crabwalk/internal/config"
)

// materialize turns a SELECT statement into the configured artifact.
// Tables and views become CREATE OR REPLACE objects in the target
// schema; file formats stage through a table and COPY TO, dropping the
// staging table unless keep_table is set.
func (e *Engine) materialize(ctx context.Context, name, query string, output *config.OutputConfig) error {
	switch output.Type {
	case config.OutputTable:
		return e.session.Exec(ctx, fmt.Sprintf(
			"CREATE OR REPLACE TABLE %s.%s AS (%s)", e.cfg.Schema, name, query))

	case config.OutputView:
		return e.session.Exec(ctx, fmt.Sprintf(
			"CREATE OR REPLACE VIEW %s.%s AS (%s)", e.cfg.Schema, name, query))

	case config.OutputParquet, config.OutputCSV, config.OutputJSON:
		return e.exportFile(ctx, name, query, output)

	default:
		return fmt.Errorf("unknown output type %q for unit %s", output.Type, name)
	}
}

func (e *Engine) exportFile(ctx context.Context, name, query string, output *config.OutputConfig) error {
	location := resolveLocation(name, output)
	if dir := filepath.Dir(location); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	table := fmt.Sprintf("%s.%s", e.cfg.Schema, name)
	if err := e.session.Exec(ctx, fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS (%s)", table, query)); err != nil {
		return err
	}

	copyStmt := fmt.Sprintf("COPY (SELECT * FROM %s) TO '%s' %s",
		table, escapeSingleQuotes(location), copyOptions(output.Type))
	if err := e.session.Exec(ctx, copyStmt); err != nil {
		return err
	}
	e.logger.Info("exported unit", "unit", name, "format", string(output.Type), "location", location)

	if !output.KeepTable {
		if err := e.session.Exec(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
			return err
		}
	}
	return nil
}

// resolveLocation picks the export path: the configured location with
// {table_name} substituted, or ./output/<name>.<ext>.
func resolveLocation(name string, output *config.OutputConfig) string {
	if output.Location != "" {
		return strings.ReplaceAll(output.Location, "{table_name}", name)
	}
	return filepath.Join("output", name+"."+output.Type.Extension())
}

func copyOptions(t config.OutputType) string {
	switch t {
	case config.OutputCSV:
		return "(FORMAT CSV, HEADER)"
	case config.OutputJSON:
		return "(FORMAT JSON)"
	default:
		return "(FORMAT PARQUET)"
	}
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
