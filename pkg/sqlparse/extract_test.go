package sqlparse_test

import (
	"testing"

	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractAll(t *testing.T, sql string) map[string]struct{} {
	t.Helper()
	stmts, err := sqlparse.Parse(sql)
	require.NoError(t, err)

	tables := make(map[string]struct{})
	for _, stmt := range stmts {
		for name := range sqlparse.ExtractTables(stmt) {
			tables[name] = struct{}{}
		}
	}
	return tables
}

func TestExtractTables(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "single table",
			sql:  "SELECT * FROM customers",
			want: []string{"customers"},
		},
		{
			name: "join",
			sql:  "SELECT * FROM source1 JOIN source2 ON source1.id = source2.id",
			want: []string{"source1", "source2"},
		},
		{
			name: "comma join",
			sql:  "SELECT * FROM a, b WHERE a.id = b.id",
			want: []string{"a", "b"},
		},
		{
			name: "schema qualified",
			sql:  "SELECT * FROM raw.orders o JOIN staging.users u ON o.user_id = u.id",
			want: []string{"raw.orders", "staging.users"},
		},
		{
			name: "derived table",
			sql:  "SELECT * FROM (SELECT * FROM inner_table) t",
			want: []string{"inner_table"},
		},
		{
			name: "nested derived tables",
			sql:  "SELECT * FROM (SELECT * FROM (SELECT * FROM deep) a) b",
			want: []string{"deep"},
		},
		{
			name: "cte bodies",
			sql:  "WITH x AS (SELECT * FROM base1), y AS (SELECT * FROM base2) SELECT * FROM x JOIN y USING (id)",
			want: []string{"base1", "base2", "x", "y"},
		},
		{
			name: "union operands",
			sql:  "SELECT * FROM a UNION ALL SELECT * FROM b UNION SELECT * FROM c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "intersect and except",
			sql:  "SELECT * FROM a INTERSECT SELECT * FROM b EXCEPT SELECT * FROM c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "parenthesized set operands",
			sql:  "(SELECT * FROM a) UNION (SELECT * FROM b)",
			want: []string{"a", "b"},
		},
		{
			name: "no from clause",
			sql:  "SELECT 1",
			want: nil,
		},
		{
			name: "multiple joins",
			sql:  "SELECT * FROM a JOIN b ON a.id = b.id LEFT JOIN c ON b.id = c.id CROSS JOIN d",
			want: []string{"a", "b", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractAll(t, tt.sql)
			assert.Len(t, got, len(tt.want))
			for _, name := range tt.want {
				assert.Contains(t, got, name)
			}
		})
	}
}

func TestExtractTablesRawStmtIsEmpty(t *testing.T) {
	stmts, err := sqlparse.Parse("CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Empty(t, sqlparse.ExtractTables(stmts[0]))
}

func TestExtractTablesIsPure(t *testing.T) {
	stmts, err := sqlparse.Parse("SELECT * FROM a JOIN b ON a.id = b.id")
	require.NoError(t, err)

	first := sqlparse.ExtractTables(stmts[0])
	second := sqlparse.ExtractTables(stmts[0])
	assert.Equal(t, first, second)
}
