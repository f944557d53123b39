package sqlparse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNative struct {
	payload string
	err     error
	calls   int
}

func (f *fakeNative) ParseNative(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.payload), nil
}

func TestParseStatementsNativePreferred(t *testing.T) {
	native := &fakeNative{payload: `{
		"error": false,
		"statements": [{"node": {
			"type": "SELECT_NODE",
			"cte_map": {"map": []},
			"from_table": {"type": "BASE_TABLE", "table_name": "orders"}
		}}]
	}`}

	stmts, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM orders", sqlparse.DialectDuckDB, native, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, 1, native.calls)

	sel := stmts[0].(*sqlparse.SelectStmt)
	assert.Equal(t, "SELECT * FROM orders", sel.Raw())
	assert.Contains(t, sqlparse.ExtractTables(sel), "orders")
}

func TestParseStatementsFallsBackOnNativeError(t *testing.T) {
	native := &fakeNative{err: errors.New("connection lost")}

	stmts, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM orders", sqlparse.DialectDuckDB, native, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, sqlparse.ExtractTables(stmts[0]), "orders")
}

func TestParseStatementsFallsBackOnUnsupportedNode(t *testing.T) {
	native := &fakeNative{payload: `{"error": false, "statements": [{"node": {"type": "PIVOT_NODE"}}]}`}

	stmts, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM orders", sqlparse.DialectDuckDB, native, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, sqlparse.ExtractTables(stmts[0]), "orders")
}

func TestParseStatementsGenericDialectSkipsNative(t *testing.T) {
	native := &fakeNative{}

	stmts, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM orders", "generic", native, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, 0, native.calls)
}

func TestParseStatementsNilNative(t *testing.T) {
	stmts, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM a; SELECT * FROM b", sqlparse.DialectDuckDB, nil, nil)
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}

func TestParseStatementsBothPathsFail(t *testing.T) {
	native := &fakeNative{err: errors.New("no database")}

	_, err := sqlparse.ParseStatements(context.Background(), "SELECT * FROM WHERE", sqlparse.DialectDuckDB, native, nil)
	require.Error(t, err)

	var perr *sqlparse.ParseError
	assert.ErrorAs(t, err, &perr)
}
