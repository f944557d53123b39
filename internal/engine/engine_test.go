package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crabwalk-labs/crabwalk/internal/config"
	"github.com/crabwalk-labs/crabwalk/internal/dag"
	"github.com/crabwalk-labs/crabwalk/internal/engine"
	"github.com/crabwalk-labs/crabwalk/internal/lineage"
	"github.com/crabwalk-labs/crabwalk/internal/testutil"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := &config.Config{
		Database: ":memory:",
		Schema:   "transform",
		Dialect:  config.DefaultDialect,
		Output:   config.OutputConfig{Type: config.OutputTable},
	}
	eng, err := engine.New(context.Background(), cfg, testutil.Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func writeSQL(t *testing.T, dir, name, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
}

func queryInt(t *testing.T, eng *engine.Engine, query string) int {
	t.Helper()
	var n int
	require.NoError(t, eng.Session().DB().QueryRowContext(context.Background(), query).Scan(&n))
	return n
}

func TestRunExecutesInDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "source.sql", "SELECT 1 AS id UNION ALL SELECT 2 AS id")
	writeSQL(t, dir, "dependent.sql", "SELECT id FROM source WHERE id > 1")

	eng := newTestEngine(t)
	summary, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, "source", summary.Results[0].Name)
	assert.Equal(t, "dependent", summary.Results[1].Name)
	assert.Equal(t, 0, summary.FailureCount())

	assert.Equal(t, 2, queryInt(t, eng, "SELECT count(*) FROM transform.source"))
	assert.Equal(t, 1, queryInt(t, eng, "SELECT count(*) FROM transform.dependent"))

	// A completed run leaves a lineage diagram next to the units.
	data, err := os.ReadFile(filepath.Join(dir, lineage.MermaidFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "source --> dependent")
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "broken.sql", "SELECT * FROM no_such_table")
	writeSQL(t, dir, "healthy.sql", "SELECT 1 AS id")

	eng := newTestEngine(t)
	summary, err := eng.Run(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	// Lexical order puts broken first, so healthy is never attempted.
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "broken", summary.Results[0].Name)
	assert.Equal(t, 1, summary.FailureCount())
}

func TestRunKeepsArtifactsBeforeFailure(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "base.sql", "SELECT 1 AS id")
	writeSQL(t, dir, "downstream.sql", "SELECT missing_column FROM base")

	eng := newTestEngine(t)
	summary, err := eng.Run(context.Background(), dir)
	require.Error(t, err)

	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Results[0].OK())
	assert.False(t, summary.Results[1].OK())
	assert.Equal(t, 1, queryInt(t, eng, "SELECT count(*) FROM transform.base"))
}

func TestRunDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "a.sql", "SELECT * FROM b")
	writeSQL(t, dir, "b.sql", "SELECT * FROM a")

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), dir)

	var cycleErr *dag.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Members)
}

func TestRunForceContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "broken.sql", "SELECT * FROM no_such_table")
	writeSQL(t, dir, "healthy.sql", "SELECT 1 AS id")

	eng := newTestEngine(t)
	summary, err := eng.RunForce(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.FailureCount())
	assert.Equal(t, 1, summary.SuccessCount())
	assert.Equal(t, 1, queryInt(t, eng, "SELECT count(*) FROM transform.healthy"))
}

func TestRunForceIgnoresCycles(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "a.sql", "SELECT * FROM b")
	writeSQL(t, dir, "b.sql", "SELECT * FROM a")

	// Strict mode refuses this workspace outright; force mode still
	// attempts every file once and reports the failures.
	eng := newTestEngine(t)
	summary, err := eng.RunForce(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 2, summary.FailureCount())
}

func TestRunViewOutput(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "reporting.sql", "-- @config: {output: {type: view}}\nSELECT 42 AS answer")

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	count := queryInt(t, eng,
		"SELECT count(*) FROM duckdb_views() WHERE view_name = 'reporting' AND schema_name = 'transform'")
	assert.Equal(t, 1, count)
	assert.Equal(t, 42, queryInt(t, eng, "SELECT answer FROM transform.reporting"))
}

func TestRunCSVExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "export.csv")
	writeSQL(t, dir, "extract.sql",
		"-- @config: {output: {type: csv, location: "+out+"}}\nSELECT 1 AS id, 'north' AS region")

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,region"))

	// The staging table is dropped unless keep_table asks for it.
	count := queryInt(t, eng,
		"SELECT count(*) FROM duckdb_tables() WHERE table_name = 'extract' AND schema_name = 'transform'")
	assert.Equal(t, 0, count)
}

func TestRunKeepTableExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "kept.csv")
	writeSQL(t, dir, "kept.sql",
		"-- @config: {output: {type: csv, location: "+out+", keep_table: true}}\nSELECT 7 AS id")

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.FileExists(t, out)
	assert.Equal(t, 7, queryInt(t, eng, "SELECT id FROM transform.kept"))
}

func TestRunEnvSubstitution(t *testing.T) {
	t.Setenv("CRABWALK_TEST_ROWS", "3")
	dir := t.TempDir()
	writeSQL(t, dir, "generated.sql", "SELECT * FROM range({{CRABWALK_TEST_ROWS}})")

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, queryInt(t, eng, "SELECT count(*) FROM transform.generated"))
}

func TestRunRawStatementsExecuteVerbatim(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "seeded.sql",
		"CREATE OR REPLACE TABLE seed_rows (id INTEGER); INSERT INTO seed_rows VALUES (1), (2); SELECT * FROM seed_rows")

	eng := newTestEngine(t)
	summary, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 2, queryInt(t, eng, "SELECT count(*) FROM transform.seeded"))
}

func TestRunSingleFileWorkspace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solo.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1 AS id"), 0o644))

	eng := newTestEngine(t)
	summary, err := eng.Run(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	// Lineage lands next to the file, not inside it.
	assert.FileExists(t, filepath.Join(dir, lineage.MermaidFileName))
}

func TestRunEmptyWorkspace(t *testing.T) {
	dir := t.TempDir()
	eng := newTestEngine(t)

	summary, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, summary.Results)

	// Still writes an empty diagram for consistency.
	data, err := os.ReadFile(filepath.Join(dir, lineage.MermaidFileName))
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n", string(data))
}

func TestOpenSessionBadPath(t *testing.T) {
	_, err := engine.New(context.Background(), &config.Config{
		Database: filepath.Join(t.TempDir(), "missing", "nested", "db.duckdb"),
		Schema:   "transform",
		Dialect:  config.DefaultDialect,
		Output:   config.OutputConfig{Type: config.OutputTable},
	}, testutil.Logger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.duckdb")
}
