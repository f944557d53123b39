package sqlparse

import "strings"

// Statement is a single SQL statement from a script. Only SELECT
// statements (including WITH-prefixed ones) carry structure; everything
// else is preserved verbatim as a RawStmt.
type Statement interface {
	// Raw returns the original SQL text of the statement, without a
	// trailing semicolon.
	Raw() string
	stmtNode()
}

// SelectStmt is a full SELECT statement with optional WITH clause.
type SelectStmt struct {
	With *WithClause
	Body *SelectBody
	Text string
}

// RawStmt is a statement the grammar does not model (DDL, COPY, SET,
// INSERT, ...). It executes as-is and contributes no table references.
type RawStmt struct {
	Text string
}

func (s *SelectStmt) Raw() string { return s.Text }
func (s *RawStmt) Raw() string    { return s.Text }

func (*SelectStmt) stmtNode() {}
func (*RawStmt) stmtNode()    {}

// WithClause is a WITH [RECURSIVE] clause.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE is a single common table expression.
type CTE struct {
	Name   string
	Select *SelectStmt
}

// SetOpType distinguishes set operations between select cores.
type SetOpType int

const (
	SetOpNone SetOpType = iota
	SetOpUnion
	SetOpIntersect
	SetOpExcept
)

// SelectBody is a select core optionally combined with another body by
// a set operation. Set operations nest right-recursively: a UNION b
// UNION c parses as a UNION (b UNION c), which is equivalent for
// dependency extraction.
type SelectBody struct {
	Left  *SelectCore
	Op    SetOpType
	All   bool
	Right *SelectBody
}

// SelectCore is one SELECT ... FROM ... block. Projections and filter
// expressions are not modeled; only the FROM clause matters for
// dependency extraction.
type SelectCore struct {
	From *FromClause
}

// FromClause is a source table reference plus any number of joins.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

// Join is one join step in a FROM clause. Comma joins record
// JoinComma; ON/USING conditions are skipped, not stored.
type Join struct {
	Type  JoinType
	Right TableRef
}

// JoinType identifies the join keyword used.
type JoinType string

const (
	JoinInner      JoinType = "INNER"
	JoinLeft       JoinType = "LEFT"
	JoinRight      JoinType = "RIGHT"
	JoinFull       JoinType = "FULL"
	JoinCross      JoinType = "CROSS"
	JoinSemi       JoinType = "SEMI"
	JoinAnti       JoinType = "ANTI"
	JoinAsof       JoinType = "ASOF"
	JoinPositional JoinType = "POSITIONAL"
	JoinComma      JoinType = ","
)

// TableRef is a FROM-clause item: a named table or a derived table.
type TableRef interface {
	tableRefNode()
}

// TableName is a possibly qualified table reference.
type TableName struct {
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

// DerivedTable is a parenthesized subquery in a FROM clause.
type DerivedTable struct {
	Select *SelectStmt
	Alias  string
}

func (*TableName) tableRefNode()    {}
func (*DerivedTable) tableRefNode() {}

// Qualified returns the dotted catalog.schema.name form, omitting
// empty qualifiers.
func (t *TableName) Qualified() string {
	parts := make([]string, 0, 3)
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}
