package sqlparse_test

import (
	"testing"

	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Serialized trees below follow the shape DuckDB's json_serialize_sql
// emits, trimmed to the fields the decoder reads.

func TestDecodeNativeSelect(t *testing.T) {
	data := `{
		"error": false,
		"statements": [{"node": {
			"type": "SELECT_NODE",
			"cte_map": {"map": []},
			"from_table": {
				"type": "BASE_TABLE",
				"catalog_name": "",
				"schema_name": "raw",
				"table_name": "orders",
				"alias": "o"
			}
		}}]
	}`

	sel, err := sqlparse.DecodeNativeAST([]byte(data))
	require.NoError(t, err)

	table, ok := sel.Body.Left.From.Source.(*sqlparse.TableName)
	require.True(t, ok)
	assert.Equal(t, "raw", table.Schema)
	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, "o", table.Alias)
}

func TestDecodeNativeJoin(t *testing.T) {
	data := `{
		"error": false,
		"statements": [{"node": {
			"type": "SELECT_NODE",
			"cte_map": {"map": []},
			"from_table": {
				"type": "JOIN",
				"join_type": "LEFT",
				"left": {"type": "BASE_TABLE", "table_name": "a"},
				"right": {"type": "BASE_TABLE", "table_name": "b"}
			}
		}}]
	}`

	sel, err := sqlparse.DecodeNativeAST([]byte(data))
	require.NoError(t, err)

	tables := sqlparse.ExtractTables(sel)
	assert.Contains(t, tables, "a")
	assert.Contains(t, tables, "b")
	require.Len(t, sel.Body.Left.From.Joins, 1)
	assert.Equal(t, sqlparse.JoinLeft, sel.Body.Left.From.Joins[0].Type)
}

func TestDecodeNativeCTEAndSetOp(t *testing.T) {
	data := `{
		"error": false,
		"statements": [{"node": {
			"type": "SET_OPERATION_NODE",
			"setop_type": "UNION",
			"setop_all": true,
			"cte_map": {"map": [{
				"key": "recent",
				"value": {"query": {"node": {
					"type": "SELECT_NODE",
					"cte_map": {"map": []},
					"from_table": {"type": "BASE_TABLE", "table_name": "events"}
				}}}
			}]},
			"left": {
				"type": "SELECT_NODE",
				"cte_map": {"map": []},
				"from_table": {"type": "BASE_TABLE", "table_name": "recent"}
			},
			"right": {
				"type": "SELECT_NODE",
				"cte_map": {"map": []},
				"from_table": {"type": "BASE_TABLE", "table_name": "archive"}
			}
		}}]
	}`

	sel, err := sqlparse.DecodeNativeAST([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, sqlparse.SetOpUnion, sel.Body.Op)
	assert.True(t, sel.Body.All)

	tables := sqlparse.ExtractTables(sel)
	assert.Contains(t, tables, "events")
	assert.Contains(t, tables, "recent")
	assert.Contains(t, tables, "archive")
}

func TestDecodeNativeSubquery(t *testing.T) {
	data := `{
		"error": false,
		"statements": [{"node": {
			"type": "SELECT_NODE",
			"cte_map": {"map": []},
			"from_table": {
				"type": "SUBQUERY",
				"alias": "t",
				"subquery": {"node": {
					"type": "SELECT_NODE",
					"cte_map": {"map": []},
					"from_table": {"type": "BASE_TABLE", "table_name": "inner_table"}
				}}
			}
		}}]
	}`

	sel, err := sqlparse.DecodeNativeAST([]byte(data))
	require.NoError(t, err)

	tables := sqlparse.ExtractTables(sel)
	assert.Contains(t, tables, "inner_table")
}

func TestDecodeNativeUnsupportedNodeFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "unknown query node",
			data: `{"error": false, "statements": [{"node": {"type": "RECURSIVE_CTE_NODE"}}]}`,
		},
		{
			name: "table function ref",
			data: `{"error": false, "statements": [{"node": {
				"type": "SELECT_NODE",
				"cte_map": {"map": []},
				"from_table": {"type": "TABLE_FUNCTION"}
			}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sqlparse.DecodeNativeAST([]byte(tt.data))
			require.Error(t, err)

			var unsupported *sqlparse.UnsupportedNodeError
			assert.ErrorAs(t, err, &unsupported)
		})
	}
}

func TestDecodeNativeErrorPayload(t *testing.T) {
	data := `{"error": true, "error_type": "parser", "error_message": "syntax error at or near \"FROM\""}`
	_, err := sqlparse.DecodeNativeAST([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestDecodeNativeEmptyFrom(t *testing.T) {
	data := `{
		"error": false,
		"statements": [{"node": {
			"type": "SELECT_NODE",
			"cte_map": {"map": []},
			"from_table": {"type": "EMPTY"}
		}}]
	}`

	sel, err := sqlparse.DecodeNativeAST([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, sqlparse.ExtractTables(sel))
}
