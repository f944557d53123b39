package sqlparse

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for SQL token conventions
const (
	// TOKEN_EOF represents end of input.
	TOKEN_EOF TokenType = iota
	// TOKEN_ILLEGAL represents an unrecognized character.
	TOKEN_ILLEGAL

	// TOKEN_IDENT represents an identifier (possibly quoted).
	TOKEN_IDENT
	// TOKEN_NUMBER represents a numeric literal.
	TOKEN_NUMBER
	// TOKEN_STRING represents a single-quoted string literal.
	TOKEN_STRING
	// TOKEN_OP represents any operator or punctuation the parser does not
	// need to distinguish (=, <, ||, arithmetic, ...).
	TOKEN_OP

	TOKEN_DOT    // .
	TOKEN_COMMA  // ,
	TOKEN_LPAREN // (
	TOKEN_RPAREN // )
	TOKEN_SEMI   // ;
	TOKEN_STAR   // *

	// Keywords (alphabetical)
	TOKEN_ALL
	TOKEN_ANTI
	TOKEN_AS
	TOKEN_ASOF
	TOKEN_BY
	TOKEN_CROSS
	TOKEN_DISTINCT
	TOKEN_EXCEPT
	TOKEN_FROM
	TOKEN_FULL
	TOKEN_GROUP
	TOKEN_HAVING
	TOKEN_INNER
	TOKEN_INTERSECT
	TOKEN_JOIN
	TOKEN_LATERAL
	TOKEN_LEFT
	TOKEN_LIMIT
	TOKEN_NATURAL
	TOKEN_OFFSET
	TOKEN_ON
	TOKEN_ORDER
	TOKEN_OUTER
	TOKEN_POSITIONAL
	TOKEN_QUALIFY
	TOKEN_RECURSIVE
	TOKEN_RIGHT
	TOKEN_SELECT
	TOKEN_SEMI_JOIN // SEMI (join modifier); TOKEN_SEMI is the ; terminator
	TOKEN_UNION
	TOKEN_USING
	TOKEN_WHERE
	TOKEN_WINDOW
	TOKEN_WITH
)

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position represents a location in the SQL source.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_IDENT:   "IDENT",
	TOKEN_NUMBER:  "NUMBER",
	TOKEN_STRING:  "STRING",
	TOKEN_OP:      "OP",

	TOKEN_DOT:    ".",
	TOKEN_COMMA:  ",",
	TOKEN_LPAREN: "(",
	TOKEN_RPAREN: ")",
	TOKEN_SEMI:   ";",
	TOKEN_STAR:   "*",

	TOKEN_ALL:        "ALL",
	TOKEN_ANTI:       "ANTI",
	TOKEN_AS:         "AS",
	TOKEN_ASOF:       "ASOF",
	TOKEN_BY:         "BY",
	TOKEN_CROSS:      "CROSS",
	TOKEN_DISTINCT:   "DISTINCT",
	TOKEN_EXCEPT:     "EXCEPT",
	TOKEN_FROM:       "FROM",
	TOKEN_FULL:       "FULL",
	TOKEN_GROUP:      "GROUP",
	TOKEN_HAVING:     "HAVING",
	TOKEN_INNER:      "INNER",
	TOKEN_INTERSECT:  "INTERSECT",
	TOKEN_JOIN:       "JOIN",
	TOKEN_LATERAL:    "LATERAL",
	TOKEN_LEFT:       "LEFT",
	TOKEN_LIMIT:      "LIMIT",
	TOKEN_NATURAL:    "NATURAL",
	TOKEN_OFFSET:     "OFFSET",
	TOKEN_ON:         "ON",
	TOKEN_ORDER:      "ORDER",
	TOKEN_OUTER:      "OUTER",
	TOKEN_POSITIONAL: "POSITIONAL",
	TOKEN_QUALIFY:    "QUALIFY",
	TOKEN_RECURSIVE:  "RECURSIVE",
	TOKEN_RIGHT:      "RIGHT",
	TOKEN_SELECT:     "SELECT",
	TOKEN_SEMI_JOIN:  "SEMI",
	TOKEN_UNION:      "UNION",
	TOKEN_USING:      "USING",
	TOKEN_WHERE:      "WHERE",
	TOKEN_WINDOW:     "WINDOW",
	TOKEN_WITH:       "WITH",
}

// keywords maps lowercase keyword strings to their token types.
// Only keywords the dependency parser must recognize are tokenized;
// everything else lexes as a plain identifier.
var keywords = map[string]TokenType{
	"all":        TOKEN_ALL,
	"anti":       TOKEN_ANTI,
	"as":         TOKEN_AS,
	"asof":       TOKEN_ASOF,
	"by":         TOKEN_BY,
	"cross":      TOKEN_CROSS,
	"distinct":   TOKEN_DISTINCT,
	"except":     TOKEN_EXCEPT,
	"from":       TOKEN_FROM,
	"full":       TOKEN_FULL,
	"group":      TOKEN_GROUP,
	"having":     TOKEN_HAVING,
	"inner":      TOKEN_INNER,
	"intersect":  TOKEN_INTERSECT,
	"join":       TOKEN_JOIN,
	"lateral":    TOKEN_LATERAL,
	"left":       TOKEN_LEFT,
	"limit":      TOKEN_LIMIT,
	"natural":    TOKEN_NATURAL,
	"offset":     TOKEN_OFFSET,
	"on":         TOKEN_ON,
	"order":      TOKEN_ORDER,
	"outer":      TOKEN_OUTER,
	"positional": TOKEN_POSITIONAL,
	"qualify":    TOKEN_QUALIFY,
	"recursive":  TOKEN_RECURSIVE,
	"right":      TOKEN_RIGHT,
	"select":     TOKEN_SELECT,
	"semi":       TOKEN_SEMI_JOIN,
	"union":      TOKEN_UNION,
	"using":      TOKEN_USING,
	"where":      TOKEN_WHERE,
	"window":     TOKEN_WINDOW,
	"with":       TOKEN_WITH,
}

// LookupIdent returns the token type for the given identifier.
// Keywords return their keyword token type; everything else is TOKEN_IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}
