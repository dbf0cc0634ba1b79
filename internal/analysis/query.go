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

/*
Package analysis resolves names in parsed DML statements against the
catalog and lowers them into an untyped query representation.

The analyzer checks that the referenced schema, table, and columns exist
and rewrites every column reference into its ordinal in the table's row
layout. What it does not do is typing: expressions keep their literal text
and placeholders, and the typing passes downstream decide families,
check operator overloads, and coerce values.
*/
package analysis

import (
	"emberdb/internal/catalog"
	"emberdb/internal/types"
)

// TableInfo identifies the resolved target table of a query.
type TableInfo struct {
	SchemaName string
	TableName  string
	SchemaID   uint64
	TableID    uint64
	Columns    []catalog.Column
}

// Query is an untyped, name-resolved DML query.
type Query interface {
	queryNode()
}

// InsertQuery writes rows into a table. Targets holds the 0-based row
// positions the value lists bind to, in the order the values appear.
type InsertQuery struct {
	Table   TableInfo
	Targets []int
	Rows    [][]Expr
}

func (InsertQuery) queryNode() {}

// SelectColumn is one resolved projection item.
type SelectColumn struct {
	Expr Expr
	Name string
}

// SelectQuery reads rows from a table. The star projection is already
// expanded into one SelectColumn per table column.
type SelectQuery struct {
	Table   TableInfo
	Columns []SelectColumn
	Filter  Expr
}

func (SelectQuery) queryNode() {}

// ColumnAssignment pairs a 0-based row position with its new value
// expression.
type ColumnAssignment struct {
	Ordinal int
	Value   Expr
}

// UpdateQuery rewrites columns of matching rows.
type UpdateQuery struct {
	Table       TableInfo
	Assignments []ColumnAssignment
	Filter      Expr
}

func (UpdateQuery) queryNode() {}

// DeleteQuery removes matching rows.
type DeleteQuery struct {
	Table  TableInfo
	Filter Expr
}

func (DeleteQuery) queryNode() {}

// Expr is an untyped, name-resolved expression.
type Expr interface {
	analysisExpr()
}

// Column is a resolved column reference. Ordinal is the 0-based position
// of the column in the row layout, one less than its catalog ordinal.
type Column struct {
	Ordinal int
	Name    string
	Type    types.Type
}

func (Column) analysisExpr() {}

// Param is a placeholder, 1-based.
type Param struct {
	Index int
}

func (Param) analysisExpr() {}

// Number is a numeric literal kept as text; the typing pass picks the
// narrowest family that holds it.
type Number struct {
	Text string
}

func (Number) analysisExpr() {}

// Str is a string literal. Until typing fixes a family it behaves as the
// unknown family, like PostgreSQL's unknown-typed literals.
type Str struct {
	Text string
}

func (Str) analysisExpr() {}

// BoolConst is a boolean literal.
type BoolConst struct {
	Value bool
}

func (BoolConst) analysisExpr() {}

// Null is the NULL literal.
type Null struct{}

func (Null) analysisExpr() {}

// IsNull tests an expression for NULL, or for non-NULL when negated.
type IsNull struct {
	Expr   Expr
	Negate bool
}

func (IsNull) analysisExpr() {}

// Binary applies a binary operator.
type Binary struct {
	Op    types.BinaryOp
	Left  Expr
	Right Expr
}

func (Binary) analysisExpr() {}

// Unary applies a unary operator.
type Unary struct {
	Op      types.UnaryOp
	Operand Expr
}

func (Unary) analysisExpr() {}

// Cast converts its operand to an explicit target type.
type Cast struct {
	Expr   Expr
	Target types.Type
}

func (Cast) analysisExpr() {}

// ParamCount returns the number of placeholders a query uses, which is the
// highest placeholder index referenced anywhere in it.
func ParamCount(q Query) int {
	max := 0
	walk := func(e Expr) {
		if n := maxParam(e); n > max {
			max = n
		}
	}
	switch q := q.(type) {
	case InsertQuery:
		for _, row := range q.Rows {
			for _, e := range row {
				walk(e)
			}
		}
	case SelectQuery:
		for _, c := range q.Columns {
			walk(c.Expr)
		}
		walk(q.Filter)
	case UpdateQuery:
		for _, a := range q.Assignments {
			walk(a.Value)
		}
		walk(q.Filter)
	case DeleteQuery:
		walk(q.Filter)
	}
	return max
}

func maxParam(e Expr) int {
	switch e := e.(type) {
	case nil:
		return 0
	case Param:
		return e.Index
	case Binary:
		l, r := maxParam(e.Left), maxParam(e.Right)
		if l > r {
			return l
		}
		return r
	case Unary:
		return maxParam(e.Operand)
	case Cast:
		return maxParam(e.Expr)
	case IsNull:
		return maxParam(e.Expr)
	}
	return 0
}
