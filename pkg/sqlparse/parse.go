package sqlparse

import (
	"context"
	"log/slog"
	"strings"
)

// DialectDuckDB enables the native json_serialize_sql path; any other
// dialect goes straight to the grammar parser.
const DialectDuckDB = "duckdb"

// NativeParser serializes a single SQL statement through an engine's
// own parser and returns the JSON parse tree. Implemented by the
// execution session; nil means no engine is available (lineage-only
// commands parse without opening a database).
type NativeParser interface {
	ParseNative(ctx context.Context, sql string) ([]byte, error)
}

// SplitStatements splits a SQL script on top-level semicolons, keeping
// each statement's original text. Semicolons inside strings, comments
// and parens do not split. Empty segments are dropped.
func SplitStatements(input string) []string {
	var (
		segments []string
		start    = 0
		depth    = 0
	)
	l := NewLexer(input)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TOKEN_EOF:
			if seg := strings.TrimSpace(input[start:]); seg != "" {
				segments = append(segments, seg)
			}
			return segments
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		case TOKEN_SEMI:
			if depth <= 0 {
				if seg := strings.TrimSpace(input[start:tok.Pos.Offset]); seg != "" {
					segments = append(segments, seg)
				}
				start = tok.Pos.Offset + 1
			}
		}
	}
}

// ParseStatements parses a SQL script into canonical statements.
//
// Each statement is tried against the native parser first when the
// dialect is duckdb and one is available; any native failure
// (serialization error, unsupported node kind) logs at debug and falls
// back to the built-in grammar parser. If the fallback also fails, its
// error is returned.
func ParseStatements(ctx context.Context, sql, dialect string, native NativeParser, logger *slog.Logger) ([]Statement, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	segments := SplitStatements(sql)
	stmts := make([]Statement, 0, len(segments))

	for _, seg := range segments {
		if dialect == DialectDuckDB && native != nil {
			stmt, err := parseNativeSegment(ctx, seg, native)
			if err == nil {
				stmts = append(stmts, stmt)
				continue
			}
			logger.Debug("native parse unavailable, using grammar parser",
				"error", err)
		}

		parsed, err := Parse(seg)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, parsed...)
	}
	return stmts, nil
}

func parseNativeSegment(ctx context.Context, seg string, native NativeParser) (Statement, error) {
	data, err := native.ParseNative(ctx, seg)
	if err != nil {
		return nil, err
	}
	sel, err := DecodeNativeAST(data)
	if err != nil {
		return nil, err
	}
	sel.Text = seg
	return sel, nil
}
