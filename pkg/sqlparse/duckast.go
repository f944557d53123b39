package sqlparse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Native AST decoding. DuckDB's json_serialize_sql() returns the
// engine's own parse tree as JSON; this file converts the node kinds
// the extractor cares about into the canonical AST. Any node type the
// adapter does not model returns UnsupportedNodeError so the caller
// falls back to the grammar parser instead of losing references.

type duckSerialized struct {
	Error        bool   `json:"error"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Statements   []struct {
		Node json.RawMessage `json:"node"`
	} `json:"statements"`
}

type duckNodeHeader struct {
	Type string `json:"type"`
}

type duckSelectNode struct {
	CTEMap    duckCTEMap      `json:"cte_map"`
	FromTable json.RawMessage `json:"from_table"`
}

type duckSetOpNode struct {
	CTEMap   duckCTEMap      `json:"cte_map"`
	SetOpAll bool            `json:"setop_all"`
	SetOp    string          `json:"setop_type"`
	Left     json.RawMessage `json:"left"`
	Right    json.RawMessage `json:"right"`
}

type duckCTEMap struct {
	Map []struct {
		Key   string `json:"key"`
		Value struct {
			Query struct {
				Node json.RawMessage `json:"node"`
			} `json:"query"`
		} `json:"value"`
	} `json:"map"`
}

type duckTableRef struct {
	Type      string          `json:"type"`
	Alias     string          `json:"alias"`
	Catalog   string          `json:"catalog_name"`
	Schema    string          `json:"schema_name"`
	TableName string          `json:"table_name"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	JoinType  string          `json:"join_type"`
}

// DecodeNativeAST converts the json_serialize_sql output for a single
// statement into a SelectStmt. A serialization-level error (DuckDB
// refuses non-SELECT statements) comes back as a plain error; an
// unmodeled node kind comes back as UnsupportedNodeError. Either way
// the caller retries with the grammar parser.
func DecodeNativeAST(data []byte) (*SelectStmt, error) {
	var ser duckSerialized
	if err := json.Unmarshal(data, &ser); err != nil {
		return nil, fmt.Errorf("decoding serialized ast: %w", err)
	}
	if ser.Error {
		return nil, fmt.Errorf("native parse failed (%s): %s", ser.ErrorType, ser.ErrorMessage)
	}
	if len(ser.Statements) != 1 {
		return nil, fmt.Errorf("expected 1 serialized statement, got %d", len(ser.Statements))
	}
	return convertQueryNode(ser.Statements[0].Node)
}

func convertQueryNode(raw json.RawMessage) (*SelectStmt, error) {
	var head duckNodeHeader
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decoding query node: %w", err)
	}

	switch head.Type {
	case "SELECT_NODE":
		return convertSelectNode(raw)
	case "SET_OPERATION_NODE":
		return convertSetOpNode(raw)
	default:
		return nil, &UnsupportedNodeError{Kind: head.Type}
	}
}

func convertSelectNode(raw json.RawMessage) (*SelectStmt, error) {
	var node duckSelectNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decoding select node: %w", err)
	}

	stmt := &SelectStmt{Body: &SelectBody{Left: &SelectCore{}}}

	with, err := convertCTEMap(node.CTEMap)
	if err != nil {
		return nil, err
	}
	stmt.With = with

	if len(node.FromTable) > 0 {
		from, err := convertFromNode(node.FromTable)
		if err != nil {
			return nil, err
		}
		stmt.Body.Left.From = from
	}
	return stmt, nil
}

func convertSetOpNode(raw json.RawMessage) (*SelectStmt, error) {
	var node duckSetOpNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decoding set operation node: %w", err)
	}

	var op SetOpType
	switch node.SetOp {
	case "UNION", "UNION_BY_NAME":
		op = SetOpUnion
	case "INTERSECT":
		op = SetOpIntersect
	case "EXCEPT":
		op = SetOpExcept
	default:
		return nil, &UnsupportedNodeError{Kind: "setop " + node.SetOp}
	}

	left, err := convertQueryNode(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := convertQueryNode(node.Right)
	if err != nil {
		return nil, err
	}

	with, err := convertCTEMap(node.CTEMap)
	if err != nil {
		return nil, err
	}

	return &SelectStmt{
		With: with,
		Body: &SelectBody{
			Left:  operandCore(left),
			Op:    op,
			All:   node.SetOpAll,
			Right: &SelectBody{Left: operandCore(right)},
		},
	}, nil
}

// operandCore adapts a converted operand into a select core. Simple
// selects embed directly; nested set operations or WITH-carrying
// operands wrap as derived tables, which extracts identically.
func operandCore(stmt *SelectStmt) *SelectCore {
	if stmt.With == nil && stmt.Body != nil && stmt.Body.Op == SetOpNone {
		return stmt.Body.Left
	}
	return &SelectCore{From: &FromClause{Source: &DerivedTable{Select: stmt}}}
}

func convertCTEMap(m duckCTEMap) (*WithClause, error) {
	if len(m.Map) == 0 {
		return nil, nil
	}
	with := &WithClause{}
	for _, entry := range m.Map {
		sel, err := convertQueryNode(entry.Value.Query.Node)
		if err != nil {
			return nil, err
		}
		with.CTEs = append(with.CTEs, &CTE{Name: entry.Key, Select: sel})
	}
	return with, nil
}

// convertFromNode converts a from_table node into a FromClause.
// JOIN and CROSS_PRODUCT nodes flatten left-depth-first into the
// clause's join list.
func convertFromNode(raw json.RawMessage) (*FromClause, error) {
	var ref duckTableRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("decoding table ref: %w", err)
	}

	switch ref.Type {
	case "EMPTY":
		return nil, nil

	case "BASE_TABLE":
		return &FromClause{Source: &TableName{
			Catalog: ref.Catalog,
			Schema:  ref.Schema,
			Name:    ref.TableName,
			Alias:   ref.Alias,
		}}, nil

	case "SUBQUERY":
		var sub struct {
			Subquery struct {
				Node json.RawMessage `json:"node"`
			} `json:"subquery"`
		}
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("decoding subquery ref: %w", err)
		}
		sel, err := convertQueryNode(sub.Subquery.Node)
		if err != nil {
			return nil, err
		}
		return &FromClause{Source: &DerivedTable{Select: sel, Alias: ref.Alias}}, nil

	case "JOIN", "CROSS_PRODUCT":
		left, err := convertFromNode(ref.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertFromNode(ref.Right)
		if err != nil {
			return nil, err
		}
		joinType := JoinCross
		if ref.Type == "JOIN" {
			joinType = JoinType(strings.ToUpper(ref.JoinType))
		}
		from := left
		if from == nil {
			from = &FromClause{}
		}
		if right != nil {
			from.Joins = append(from.Joins, &Join{Type: joinType, Right: right.Source})
			from.Joins = append(from.Joins, right.Joins...)
		}
		return from, nil

	default:
		// TABLE_FUNCTION, PIVOT, EXPRESSION_LIST, ... are not modeled;
		// the grammar parser handles those scripts.
		return nil, &UnsupportedNodeError{Kind: ref.Type}
	}
}
