package sqlparse

import "strings"

// Parser is the built-in grammar parser used when the native DuckDB
// AST is unavailable. It models only the structure dependency
// extraction needs: WITH clauses, select cores, FROM items, joins and
// set operations. Projections and filter expressions are skipped with
// balanced-paren scanning.
//
// Grammar:
//
//	script        → statement (";" statement)*
//	statement     → select_stmt | raw_stmt
//	select_stmt   → [WITH [RECURSIVE] cte ("," cte)*] select_body
//	cte           → identifier [column_list] AS "(" select_stmt ")"
//	select_body   → select_core [set_op [ALL|DISTINCT] select_body]
//	select_core   → SELECT ... [FROM from_clause] ...
//	              | "(" select_stmt ")"
//	from_clause   → table_ref (join)*
//	table_ref     → table_name | derived_table | lateral_table
//	join          → join_type JOIN table_ref [ON expr | USING cols] | "," table_ref
type Parser struct {
	input  string
	tokens []Token
	pos    int
	errors []*ParseError
}

// NewParser creates a parser over the given SQL text.
func NewParser(input string) *Parser {
	return &Parser{
		input:  input,
		tokens: Tokenize(input),
	}
}

// Parse splits the input on top-level semicolons and parses each
// statement. SELECT and WITH statements are parsed structurally;
// everything else becomes a RawStmt. The first syntax error aborts.
func Parse(input string) ([]Statement, error) {
	p := NewParser(input)
	stmts := p.parseScript()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmts, nil
}

func (p *Parser) parseScript() []Statement {
	var stmts []Statement
	for {
		for p.check(TOKEN_SEMI) {
			p.nextToken()
		}
		if p.check(TOKEN_EOF) {
			return stmts
		}
		if len(p.errors) > 0 {
			return stmts
		}

		start := p.token().Pos.Offset
		var stmt Statement
		if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
			sel := p.parseSelectStmt()
			sel.Text = p.textSince(start)
			stmt = sel
			// Anything left before the statement boundary is a syntax
			// error, not raw trailer text.
			if !p.check(TOKEN_SEMI) && !p.check(TOKEN_EOF) {
				p.addError("unexpected token " + p.token().Type.String() + " after statement")
			}
		} else {
			stmt = p.parseRawStmt(start)
		}
		stmts = append(stmts, stmt)
	}
}

// parseRawStmt consumes tokens up to the next top-level semicolon and
// keeps the original text.
func (p *Parser) parseRawStmt(start int) *RawStmt {
	depth := 0
	for {
		switch p.token().Type {
		case TOKEN_EOF:
			return &RawStmt{Text: p.textSince(start)}
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		case TOKEN_SEMI:
			if depth <= 0 {
				return &RawStmt{Text: p.textSince(start)}
			}
		}
		p.nextToken()
	}
}

func (p *Parser) parseSelectStmt() *SelectStmt {
	stmt := &SelectStmt{}
	if p.match(TOKEN_WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()
	return stmt
}

func (p *Parser) parseWithClause() *WithClause {
	with := &WithClause{}
	with.Recursive = p.match(TOKEN_RECURSIVE)

	for {
		cte := p.parseCTE()
		if cte == nil {
			break
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return with
}

func (p *Parser) parseCTE() *CTE {
	if !p.check(TOKEN_IDENT) {
		p.addError("expected CTE name")
		return nil
	}
	cte := &CTE{Name: p.token().Literal}
	p.nextToken()

	// Optional column list
	if p.check(TOKEN_LPAREN) {
		p.skipBalanced()
	}

	if !p.expect(TOKEN_AS) {
		return nil
	}
	if !p.expect(TOKEN_LPAREN) {
		return nil
	}
	cte.Select = p.parseSelectStmt()
	p.expect(TOKEN_RPAREN)
	return cte
}

func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{Left: p.parseSelectCore()}

	switch p.token().Type {
	case TOKEN_UNION:
		body.Op = SetOpUnion
	case TOKEN_INTERSECT:
		body.Op = SetOpIntersect
	case TOKEN_EXCEPT:
		body.Op = SetOpExcept
	default:
		return body
	}
	p.nextToken()

	if p.match(TOKEN_ALL) {
		body.All = true
	} else {
		p.match(TOKEN_DISTINCT)
	}
	// UNION [ALL] BY NAME
	if p.match(TOKEN_BY) {
		p.expect(TOKEN_IDENT)
	}

	body.Right = p.parseSelectBody()
	return body
}

func (p *Parser) parseSelectCore() *SelectCore {
	core := &SelectCore{}

	// Parenthesized query as a set-operation operand:
	// (SELECT ...) UNION (SELECT ...)
	if p.check(TOKEN_LPAREN) && p.peekIsQuery() {
		p.nextToken() // consume '('
		inner := p.parseSelectStmt()
		p.expect(TOKEN_RPAREN)
		core.From = &FromClause{Source: &DerivedTable{Select: inner}}
		return core
	}

	if !p.expect(TOKEN_SELECT) {
		return core
	}

	if !p.match(TOKEN_DISTINCT) {
		p.match(TOKEN_ALL)
	}

	p.skipSelectList()

	if p.match(TOKEN_FROM) {
		core.From = p.parseFromClause()
	}

	p.skipTrailingClauses()
	return core
}

// skipSelectList skips the projection up to FROM or the end of the
// core. `* EXCEPT (cols)` is a projection modifier, not a set
// operation, so EXCEPT followed by '(' does not terminate the list.
func (p *Parser) skipSelectList() {
	depth := 0
	for {
		t := p.token().Type
		if t == TOKEN_EOF {
			return
		}
		if depth == 0 {
			switch t {
			case TOKEN_FROM, TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING,
				TOKEN_QUALIFY, TOKEN_WINDOW, TOKEN_ORDER, TOKEN_LIMIT,
				TOKEN_OFFSET, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_SEMI:
				return
			case TOKEN_EXCEPT:
				if p.peek().Type != TOKEN_LPAREN {
					return
				}
			case TOKEN_RPAREN:
				return
			}
		}
		switch t {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		}
		p.nextToken()
	}
}

// skipTrailingClauses skips WHERE/GROUP BY/HAVING/QUALIFY/WINDOW/ORDER
// BY/LIMIT/OFFSET up to a set operation or statement boundary.
func (p *Parser) skipTrailingClauses() {
	depth := 0
	for {
		t := p.token().Type
		if t == TOKEN_EOF {
			return
		}
		if depth == 0 {
			switch t {
			case TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
				TOKEN_SEMI, TOKEN_RPAREN:
				return
			}
		}
		switch t {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		}
		p.nextToken()
	}
}

func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{}
	from.Source = p.parseTableRef(from)

	for {
		join := p.parseJoin(from)
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}
	return from
}

// parseTableRef parses one FROM item. Parenthesized join groups are
// flattened into the enclosing clause's join list.
func (p *Parser) parseTableRef(from *FromClause) TableRef {
	if p.match(TOKEN_LATERAL) {
		return p.parseDerivedTable()
	}

	if p.check(TOKEN_LPAREN) {
		if p.peekIsQuery() {
			return p.parseDerivedTable()
		}
		// Parenthesized table refs: (a JOIN b ON ...)
		p.nextToken()
		inner := p.parseFromClause()
		p.expect(TOKEN_RPAREN)
		from.Joins = append(from.Joins, inner.Joins...)
		return inner.Source
	}

	return p.parseTableName()
}

func (p *Parser) parseTableName() *TableName {
	table := &TableName{}

	if !p.check(TOKEN_IDENT) {
		p.addError("expected table name")
		return table
	}

	parts := []string{p.token().Literal}
	p.nextToken()

	for p.match(TOKEN_DOT) {
		if p.check(TOKEN_IDENT) {
			parts = append(parts, p.token().Literal)
			p.nextToken()
		}
	}

	switch len(parts) {
	case 1:
		table.Name = parts[0]
	case 2:
		table.Schema = parts[0]
		table.Name = parts[1]
	default:
		table.Catalog = parts[0]
		table.Schema = parts[1]
		table.Name = strings.Join(parts[2:], ".")
	}

	// Table function: read_parquet('...'), range(10), ... The function
	// name stays as the reference; arguments are skipped.
	if p.check(TOKEN_LPAREN) {
		p.skipBalanced()
	}

	p.parseAlias(&table.Alias)
	return table
}

func (p *Parser) parseDerivedTable() *DerivedTable {
	p.expect(TOKEN_LPAREN)
	derived := &DerivedTable{}
	derived.Select = p.parseSelectStmt()
	p.expect(TOKEN_RPAREN)
	p.parseAlias(&derived.Alias)
	return derived
}

func (p *Parser) parseAlias(alias *string) {
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			*alias = p.token().Literal
			p.nextToken()
		}
		return
	}
	if p.check(TOKEN_IDENT) {
		*alias = p.token().Literal
		p.nextToken()
		// Alias column list: t(a, b)
		if p.check(TOKEN_LPAREN) {
			p.skipBalanced()
		}
	}
}

func (p *Parser) parseJoin(from *FromClause) *Join {
	// Comma join (implicit cross join)
	if p.match(TOKEN_COMMA) {
		join := &Join{Type: JoinComma}
		join.Right = p.parseTableRef(from)
		p.parseJoinCondition()
		return join
	}

	join := &Join{}
	natural := p.match(TOKEN_NATURAL)
	asof := p.match(TOKEN_ASOF)

	switch p.token().Type {
	case TOKEN_INNER:
		join.Type = JoinInner
		p.nextToken()
	case TOKEN_LEFT, TOKEN_RIGHT, TOKEN_FULL:
		switch p.token().Type {
		case TOKEN_LEFT:
			join.Type = JoinLeft
		case TOKEN_RIGHT:
			join.Type = JoinRight
		default:
			join.Type = JoinFull
		}
		p.nextToken()
		p.match(TOKEN_OUTER)
		// Compound forms: LEFT SEMI, LEFT ANTI
		if p.match(TOKEN_SEMI_JOIN) {
			join.Type = JoinSemi
		} else if p.match(TOKEN_ANTI) {
			join.Type = JoinAnti
		}
	case TOKEN_CROSS:
		join.Type = JoinCross
		p.nextToken()
	case TOKEN_SEMI_JOIN:
		join.Type = JoinSemi
		p.nextToken()
	case TOKEN_ANTI:
		join.Type = JoinAnti
		p.nextToken()
	case TOKEN_POSITIONAL:
		join.Type = JoinPositional
		p.nextToken()
	case TOKEN_JOIN:
		join.Type = JoinInner
	default:
		if natural || asof {
			join.Type = JoinInner
		} else {
			return nil // no join
		}
	}
	if asof {
		join.Type = JoinAsof
	}

	if !p.expect(TOKEN_JOIN) {
		return nil
	}

	join.Right = p.parseTableRef(from)
	p.parseJoinCondition()
	return join
}

// parseJoinCondition skips ON expressions and USING column lists; the
// extractor does not descend into them.
func (p *Parser) parseJoinCondition() {
	if p.match(TOKEN_ON) {
		p.skipJoinExpr()
		return
	}
	if p.match(TOKEN_USING) {
		if p.check(TOKEN_LPAREN) {
			p.skipBalanced()
		}
	}
}

// skipJoinExpr skips an ON expression up to the next join, clause
// keyword or statement boundary.
func (p *Parser) skipJoinExpr() {
	depth := 0
	for {
		t := p.token().Type
		if t == TOKEN_EOF {
			return
		}
		if depth == 0 {
			switch t {
			case TOKEN_COMMA, TOKEN_JOIN, TOKEN_INNER, TOKEN_LEFT,
				TOKEN_RIGHT, TOKEN_FULL, TOKEN_CROSS, TOKEN_NATURAL,
				TOKEN_SEMI_JOIN, TOKEN_ANTI, TOKEN_ASOF, TOKEN_POSITIONAL,
				TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_QUALIFY,
				TOKEN_WINDOW, TOKEN_ORDER, TOKEN_LIMIT, TOKEN_OFFSET,
				TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
				TOKEN_SEMI, TOKEN_RPAREN:
				return
			}
		}
		switch t {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		}
		p.nextToken()
	}
}

// skipBalanced consumes a balanced parenthesized group starting at the
// current '(' token.
func (p *Parser) skipBalanced() {
	if !p.check(TOKEN_LPAREN) {
		return
	}
	depth := 0
	for {
		switch p.token().Type {
		case TOKEN_EOF:
			return
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// peekIsQuery reports whether the token after the current '(' starts a
// query (possibly through further parens).
func (p *Parser) peekIsQuery() bool {
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TOKEN_LPAREN:
			continue
		case TOKEN_SELECT, TOKEN_WITH:
			return true
		default:
			return false
		}
	}
	return false
}

func (p *Parser) token() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) check(t TokenType) bool {
	return p.token().Type == t
}

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError("expected " + t.String() + ", got " + p.token().Type.String())
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Msg: msg, Pos: p.token().Pos})
}

// textSince slices the original input from start up to the current
// token, trimming surrounding whitespace.
func (p *Parser) textSince(start int) string {
	end := len(p.input)
	if p.pos < len(p.tokens) && p.token().Type != TOKEN_EOF {
		end = p.token().Pos.Offset
	}
	if start > end {
		start = end
	}
	return strings.TrimSpace(p.input[start:end])
}
