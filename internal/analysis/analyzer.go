/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package analysis

import (
	"emberdb/internal/catalog"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/sql"
)

// Analyzer resolves DML statements against the catalog.
type Analyzer struct {
	catalog *catalog.Manager
}

// NewAnalyzer returns an analyzer over the given catalog.
func NewAnalyzer(c *catalog.Manager) *Analyzer {
	return &Analyzer{catalog: c}
}

// Analyze lowers a parsed DML statement into an untyped query. DDL and
// session statements are not analyzable and are handled before this point.
func (a *Analyzer) Analyze(stmt sql.Statement) (Query, error) {
	switch stmt := stmt.(type) {
	case sql.InsertStmt:
		return a.analyzeInsert(stmt)
	case sql.SelectStmt:
		return a.analyzeSelect(stmt)
	case sql.UpdateStmt:
		return a.analyzeUpdate(stmt)
	case sql.DeleteStmt:
		return a.analyzeDelete(stmt)
	}
	return nil, sqlerr.FeatureNotSupported("statement")
}

// resolveTable finds the target table, defaulting an unqualified reference
// to the default schema.
func (a *Analyzer) resolveTable(name sql.TableName) (TableInfo, error) {
	schema := name.Schema
	if schema == "" {
		schema = catalog.DefaultCatalog
	}
	t, err := a.catalog.Table(schema, name.Name)
	if err != nil {
		return TableInfo{}, err
	}
	return TableInfo{
		SchemaName: schema,
		TableName:  name.Name,
		SchemaID:   t.SchemaID,
		TableID:    t.ID,
		Columns:    t.Columns,
	}, nil
}

func (a *Analyzer) analyzeInsert(stmt sql.InsertStmt) (Query, error) {
	table, err := a.resolveTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	targets := make([]int, 0, len(table.Columns))
	if len(stmt.Columns) == 0 {
		for i := range table.Columns {
			targets = append(targets, i)
		}
	} else {
		seen := map[string]struct{}{}
		for _, name := range stmt.Columns {
			col, ok := tableColumn(table, name)
			if !ok {
				return nil, sqlerr.ColumnDoesNotExist(name)
			}
			if _, dup := seen[name]; dup {
				return nil, sqlerr.DuplicateColumn(name)
			}
			seen[name] = struct{}{}
			targets = append(targets, col.Ordinal-1)
		}
	}
	rows := make([][]Expr, len(stmt.Rows))
	for i, row := range stmt.Rows {
		if len(row) != len(targets) {
			return nil, sqlerr.SyntaxError("INSERT value list does not match target columns")
		}
		exprs := make([]Expr, len(row))
		for j, e := range row {
			lowered, err := a.lowerExpr(table, e)
			if err != nil {
				return nil, err
			}
			exprs[j] = lowered
		}
		rows[i] = exprs
	}
	return InsertQuery{Table: table, Targets: targets, Rows: rows}, nil
}

func (a *Analyzer) analyzeSelect(stmt sql.SelectStmt) (Query, error) {
	table, err := a.resolveTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	var columns []SelectColumn
	for _, item := range stmt.Items {
		if item.Star {
			for _, col := range table.Columns {
				columns = append(columns, SelectColumn{
					Expr: Column{Ordinal: col.Ordinal - 1, Name: col.Name, Type: col.Type},
					Name: col.Name,
				})
			}
			continue
		}
		lowered, err := a.lowerExpr(table, item.Expr)
		if err != nil {
			return nil, err
		}
		columns = append(columns, SelectColumn{Expr: lowered, Name: outputName(lowered)})
	}
	filter, err := a.lowerFilter(table, stmt.Where)
	if err != nil {
		return nil, err
	}
	return SelectQuery{Table: table, Columns: columns, Filter: filter}, nil
}

func (a *Analyzer) analyzeUpdate(stmt sql.UpdateStmt) (Query, error) {
	table, err := a.resolveTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	assignments := make([]ColumnAssignment, 0, len(stmt.Set))
	for _, assign := range stmt.Set {
		col, ok := tableColumn(table, assign.Column)
		if !ok {
			return nil, sqlerr.ColumnDoesNotExist(assign.Column)
		}
		if _, dup := seen[assign.Column]; dup {
			return nil, sqlerr.DuplicateColumn(assign.Column)
		}
		seen[assign.Column] = struct{}{}
		value, err := a.lowerExpr(table, assign.Value)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, ColumnAssignment{Ordinal: col.Ordinal - 1, Value: value})
	}
	filter, err := a.lowerFilter(table, stmt.Where)
	if err != nil {
		return nil, err
	}
	return UpdateQuery{Table: table, Assignments: assignments, Filter: filter}, nil
}

func (a *Analyzer) analyzeDelete(stmt sql.DeleteStmt) (Query, error) {
	table, err := a.resolveTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	filter, err := a.lowerFilter(table, stmt.Where)
	if err != nil {
		return nil, err
	}
	return DeleteQuery{Table: table, Filter: filter}, nil
}

func (a *Analyzer) lowerFilter(table TableInfo, where sql.Expression) (Expr, error) {
	if where == nil {
		return nil, nil
	}
	return a.lowerExpr(table, where)
}

func (a *Analyzer) lowerExpr(table TableInfo, e sql.Expression) (Expr, error) {
	switch e := e.(type) {
	case sql.NumberLit:
		return Number{Text: e.Text}, nil
	case sql.StringLit:
		return Str{Text: e.Value}, nil
	case sql.BoolLit:
		return BoolConst{Value: e.Value}, nil
	case sql.NullLit:
		return Null{}, nil
	case sql.Param:
		return Param{Index: e.Index}, nil
	case sql.ColumnRef:
		if e.Table != "" && e.Table != table.TableName {
			return nil, sqlerr.ColumnDoesNotExist(e.Table + "." + e.Name)
		}
		col, ok := tableColumn(table, e.Name)
		if !ok {
			return nil, sqlerr.ColumnDoesNotExist(e.Name)
		}
		return Column{Ordinal: col.Ordinal - 1, Name: col.Name, Type: col.Type}, nil
	case sql.BinaryExpr:
		left, err := a.lowerExpr(table, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := a.lowerExpr(table, e.Right)
		if err != nil {
			return nil, err
		}
		return Binary{Op: e.Op, Left: left, Right: right}, nil
	case sql.UnaryExpr:
		operand, err := a.lowerExpr(table, e.Operand)
		if err != nil {
			return nil, err
		}
		return Unary{Op: e.Op, Operand: operand}, nil
	case sql.CastExpr:
		inner, err := a.lowerExpr(table, e.Expr)
		if err != nil {
			return nil, err
		}
		return Cast{Expr: inner, Target: e.Target}, nil
	case sql.IsNullExpr:
		inner, err := a.lowerExpr(table, e.Expr)
		if err != nil {
			return nil, err
		}
		return IsNull{Expr: inner, Negate: e.Negate}, nil
	}
	return nil, sqlerr.FeatureNotSupported("expression")
}

func tableColumn(table TableInfo, name string) (catalog.Column, bool) {
	for _, col := range table.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return catalog.Column{}, false
}

// outputName names a projection column the way PostgreSQL does: plain
// column references keep their name, everything else is ?column?.
func outputName(e Expr) string {
	if col, ok := e.(Column); ok {
		return col.Name
	}
	return "?column?"
}
