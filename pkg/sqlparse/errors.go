package sqlparse

import "fmt"

// ParseError is a syntax error from the fallback grammar parser.
type ParseError struct {
	Msg string
	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// UnsupportedNodeError signals that the native DuckDB AST contained a
// node kind the adapter does not model. It always fails the native
// path closed so the caller retries with the grammar parser instead of
// silently losing table references.
type UnsupportedNodeError struct {
	Kind string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported statement node type: %s", e.Kind)
}
