package sqlparse

// ExtractTables returns every table name referenced by the statement:
// FROM sources, joins, derived tables, set-operation operands and CTE
// bodies. CTE names themselves are included when referenced; removing
// a unit's self-reference is the caller's concern. RawStmt contributes
// nothing. The result is an unordered set.
func ExtractTables(stmt Statement) map[string]struct{} {
	tables := make(map[string]struct{})
	sel, ok := stmt.(*SelectStmt)
	if !ok {
		return tables
	}
	collectSelect(sel, tables)
	return tables
}

func collectSelect(sel *SelectStmt, tables map[string]struct{}) {
	if sel == nil {
		return
	}
	if sel.With != nil {
		for _, cte := range sel.With.CTEs {
			collectSelect(cte.Select, tables)
		}
	}
	collectBody(sel.Body, tables)
}

func collectBody(body *SelectBody, tables map[string]struct{}) {
	for body != nil {
		collectCore(body.Left, tables)
		body = body.Right
	}
}

func collectCore(core *SelectCore, tables map[string]struct{}) {
	if core == nil || core.From == nil {
		return
	}
	collectTableRef(core.From.Source, tables)
	for _, join := range core.From.Joins {
		collectTableRef(join.Right, tables)
	}
}

func collectTableRef(ref TableRef, tables map[string]struct{}) {
	switch t := ref.(type) {
	case *TableName:
		if t.Name != "" {
			tables[t.Qualified()] = struct{}{}
		}
	case *DerivedTable:
		collectSelect(t.Select, tables)
	}
}
