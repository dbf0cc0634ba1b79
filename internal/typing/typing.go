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
Package typing turns name-resolved queries into typed, executable ones.

It runs three passes over each expression tree. Inference assigns every
node a type family bottom-up: literals take the narrowest family that
holds them, columns their declared family, placeholders their declared
family or unknown. Checking verifies each operator has an overload for
its operand families and that literals fit their assigned family; both
are folded into the inference walk since they share its traversal.
Coercion then casts insert values and update assignments to their target
column types, and along the way fixes the type of every placeholder that
inference left unknown. A placeholder no context resolves is an
indeterminate-parameter error.

Insert values are typed as static expressions: they may reference
placeholders but not columns. Projections, filters, and update
right-hand sides are dynamic and are evaluated against each row.
*/
package typing

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"emberdb/internal/analysis"
	"emberdb/internal/catalog"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/types"
)

// Query is a fully typed DML query ready for planning. Params carries the
// resolved placeholder types in order, for statement description and for
// decoding bind values.
type Query interface {
	ParamTypes() []types.Type
}

// Insert appends rows of static values to a table.
type Insert struct {
	Table   analysis.TableInfo
	Targets []int
	Rows    [][]Expr
	Params  []types.Type
}

func (q Insert) ParamTypes() []types.Type { return q.Params }

// OutputColumn is one typed projection item.
type OutputColumn struct {
	Name string
	Expr Expr
}

// Select projects rows matching the filter.
type Select struct {
	Table   analysis.TableInfo
	Columns []OutputColumn
	Filter  Expr
	Params  []types.Type
}

func (q Select) ParamTypes() []types.Type { return q.Params }

// Assignment pairs a column ordinal with its typed replacement value.
type Assignment struct {
	Ordinal int
	Value   Expr
}

// Update rewrites columns of rows matching the filter.
type Update struct {
	Table       analysis.TableInfo
	Assignments []Assignment
	Filter      Expr
	Params      []types.Type
}

func (q Update) ParamTypes() []types.Type { return q.Params }

// Delete removes rows matching the filter.
type Delete struct {
	Table  analysis.TableInfo
	Filter Expr
	Params []types.Type
}

func (q Delete) ParamTypes() []types.Type { return q.Params }

// TypeQuery types an analyzed query under the declared placeholder types.
// Declared entries with the unknown family are treated as undeclared and
// resolved from context.
func TypeQuery(q analysis.Query, declared []types.Type) (Query, error) {
	c := &checker{params: append([]types.Type(nil), declared...)}
	for len(c.params) < analysis.ParamCount(q) {
		c.params = append(c.params, types.TypeOf(types.Unknown))
	}
	var typed Query
	var err error
	switch q := q.(type) {
	case analysis.InsertQuery:
		typed, err = c.typeInsert(q)
	case analysis.SelectQuery:
		typed, err = c.typeSelect(q)
	case analysis.UpdateQuery:
		typed, err = c.typeUpdate(q)
	case analysis.DeleteQuery:
		typed, err = c.typeDelete(q)
	default:
		return nil, sqlerr.FeatureNotSupported("statement")
	}
	if err != nil {
		return nil, err
	}
	return typed, nil
}

// checker carries the placeholder type environment through the passes.
type checker struct {
	params []types.Type
}

func (c *checker) paramFamily(index int) types.Family {
	return c.params[index-1].Family
}

// resolve fixes a placeholder's type the first time a context determines
// it; later contexts do not override.
func (c *checker) resolve(index int, t types.Type) {
	if c.params[index-1].Family.IsUnknown() && !t.Family.IsUnknown() {
		c.params[index-1] = t
	}
}

// exprFamily reads an expression's current family, looking through
// placeholders into the environment so that resolutions made after the
// node was built are visible.
func (c *checker) exprFamily(e Expr) types.Family {
	if p, ok := e.(*ParamRef); ok {
		return c.paramFamily(p.Index)
	}
	return e.Type().Family
}

func (c *checker) typeInsert(q analysis.InsertQuery) (Insert, error) {
	rows := make([][]Expr, len(q.Rows))
	for i, row := range q.Rows {
		exprs := make([]Expr, len(row))
		for j, e := range row {
			typed, err := c.inferExpr(e, true)
			if err != nil {
				return Insert{}, err
			}
			col := q.Table.Columns[q.Targets[j]]
			coerced, err := c.coerceAssign(typed, col, j+1)
			if err != nil {
				return Insert{}, err
			}
			exprs[j] = coerced
		}
		rows[i] = exprs
	}
	for _, row := range rows {
		for _, e := range row {
			if err := c.finalize(e); err != nil {
				return Insert{}, err
			}
		}
	}
	params, err := c.resolvedParams()
	if err != nil {
		return Insert{}, err
	}
	return Insert{Table: q.Table, Targets: q.Targets, Rows: rows, Params: params}, nil
}

func (c *checker) typeSelect(q analysis.SelectQuery) (Select, error) {
	columns := make([]OutputColumn, len(q.Columns))
	for i, col := range q.Columns {
		typed, err := c.inferExpr(col.Expr, false)
		if err != nil {
			return Select{}, err
		}
		columns[i] = OutputColumn{Name: col.Name, Expr: typed}
	}
	filter, err := c.typeFilter(q.Filter)
	if err != nil {
		return Select{}, err
	}
	for _, col := range columns {
		if err := c.finalize(col.Expr); err != nil {
			return Select{}, err
		}
	}
	if err := c.finalize(filter); err != nil {
		return Select{}, err
	}
	params, err := c.resolvedParams()
	if err != nil {
		return Select{}, err
	}
	return Select{Table: q.Table, Columns: columns, Filter: filter, Params: params}, nil
}

func (c *checker) typeUpdate(q analysis.UpdateQuery) (Update, error) {
	assignments := make([]Assignment, len(q.Assignments))
	for i, assign := range q.Assignments {
		typed, err := c.inferExpr(assign.Value, false)
		if err != nil {
			return Update{}, err
		}
		col := q.Table.Columns[assign.Ordinal]
		coerced, err := c.coerceAssign(typed, col, i+1)
		if err != nil {
			return Update{}, err
		}
		assignments[i] = Assignment{Ordinal: assign.Ordinal, Value: coerced}
	}
	filter, err := c.typeFilter(q.Filter)
	if err != nil {
		return Update{}, err
	}
	for _, assign := range assignments {
		if err := c.finalize(assign.Value); err != nil {
			return Update{}, err
		}
	}
	if err := c.finalize(filter); err != nil {
		return Update{}, err
	}
	params, err := c.resolvedParams()
	if err != nil {
		return Update{}, err
	}
	return Update{Table: q.Table, Assignments: assignments, Filter: filter, Params: params}, nil
}

func (c *checker) typeDelete(q analysis.DeleteQuery) (Delete, error) {
	filter, err := c.typeFilter(q.Filter)
	if err != nil {
		return Delete{}, err
	}
	if err := c.finalize(filter); err != nil {
		return Delete{}, err
	}
	params, err := c.resolvedParams()
	if err != nil {
		return Delete{}, err
	}
	return Delete{Table: q.Table, Filter: filter, Params: params}, nil
}

// typeFilter types a WHERE expression and requires it to be boolean. A
// bare placeholder filter resolves to boolean.
func (c *checker) typeFilter(e analysis.Expr) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	typed, err := c.inferExpr(e, false)
	if err != nil {
		return nil, err
	}
	if p, ok := typed.(*ParamRef); ok {
		c.resolve(p.Index, types.TypeOf(types.Bool))
	}
	if f := c.exprFamily(typed); !f.IsBool() && !f.IsUnknown() {
		return nil, sqlerr.ArgumentMustBeBoolean("WHERE", f.String())
	}
	return typed, nil
}

// inferExpr builds the typed tree bottom-up. With static set, column
// references are rejected: insert values have no row to read from.
func (c *checker) inferExpr(e analysis.Expr, static bool) (Expr, error) {
	switch e := e.(type) {
	case analysis.Number:
		return parseNumberLiteral(e.Text)
	case analysis.Str:
		return &Literal{Val: types.NewString(e.Text), T: types.TypeOf(types.Text)}, nil
	case analysis.BoolConst:
		return &Literal{Val: types.NewBool(e.Value), T: types.TypeOf(types.Bool)}, nil
	case analysis.Null:
		return &Literal{Val: types.Null, T: types.TypeOf(types.Unknown)}, nil
	case analysis.Column:
		if static {
			return nil, sqlerr.ColumnDoesNotExist(e.Name)
		}
		return &ColumnRef{Ordinal: e.Ordinal, T: e.Type}, nil
	case analysis.Param:
		return &ParamRef{Index: e.Index, T: types.TypeOf(types.Unknown)}, nil
	case analysis.Binary:
		return c.inferBinary(e, static)
	case analysis.Unary:
		return c.inferUnary(e, static)
	case analysis.Cast:
		return c.inferCast(e, static)
	case analysis.IsNull:
		inner, err := c.inferExpr(e.Expr, static)
		if err != nil {
			return nil, err
		}
		// An unconstrained placeholder under IS NULL defaults to text.
		if p, ok := inner.(*ParamRef); ok {
			c.resolve(p.Index, types.TypeOf(types.Text))
		}
		return &IsNull{Inner: inner, Negate: e.Negate}, nil
	}
	return nil, sqlerr.FeatureNotSupported("expression")
}

func (c *checker) inferBinary(e analysis.Binary, static bool) (Expr, error) {
	left, err := c.inferExpr(e.Left, static)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(e.Right, static)
	if err != nil {
		return nil, err
	}
	lf, rf := c.exprFamily(left), c.exprFamily(right)
	result, err := e.Op.InferReturnType(lf, rf)
	if err != nil {
		return nil, err
	}
	// An overload was chosen, so an unknown placeholder side now has a
	// determined type.
	if p, ok := left.(*ParamRef); ok && lf.IsUnknown() {
		c.resolve(p.Index, types.TypeOf(binaryParamTarget(e.Op, rf)))
	}
	if p, ok := right.(*ParamRef); ok && rf.IsUnknown() {
		c.resolve(p.Index, types.TypeOf(binaryParamTarget(e.Op, lf)))
	}
	return &Binary{Op: e.Op, T: types.TypeOf(result), Left: left, Right: right}, nil
}

// binaryParamTarget picks the type an unknown placeholder takes from the
// concrete side of a binary operator. Temporal addition and subtraction
// admit only an interval on the unknown side.
func binaryParamTarget(op types.BinaryOp, other types.Family) types.Family {
	switch {
	case op == types.And || op == types.Or:
		return types.Bool
	case op == types.Like || op == types.NotLike:
		return types.Text
	case op.IsComparison():
		return other
	case (op == types.Add || op == types.Sub) && other.IsTemporal():
		return types.Interval
	default:
		return other
	}
}

func (c *checker) inferUnary(e analysis.Unary, static bool) (Expr, error) {
	operand, err := c.inferExpr(e.Operand, static)
	if err != nil {
		return nil, err
	}
	if p, ok := operand.(*ParamRef); ok && e.Op == types.Not {
		c.resolve(p.Index, types.TypeOf(types.Bool))
	}
	result, err := e.Op.InferReturnType(c.exprFamily(operand))
	if err != nil {
		return nil, err
	}
	return &Unary{Op: e.Op, T: types.TypeOf(result), Operand: operand}, nil
}

func (c *checker) inferCast(e analysis.Cast, static bool) (Expr, error) {
	inner, err := c.inferExpr(e.Expr, static)
	if err != nil {
		return nil, err
	}
	from := c.exprFamily(inner)
	if p, ok := inner.(*ParamRef); ok && from.IsUnknown() {
		c.resolve(p.Index, e.Target)
	}
	if !from.IsUnknown() && !from.ComparableWith(e.Target.Family) {
		return nil, sqlerr.CannotCoerce(from.String(), e.Target.Family.String())
	}
	return &Cast{Inner: inner, Target: e.Target}, nil
}

// coerceAssign coerces a value expression to its target column's type.
// Literals are cast eagerly so bad input surfaces at prepare time with
// the column name and value position; other expressions get a runtime
// cast. Position is 1-based within the value list.
func (c *checker) coerceAssign(e Expr, col catalog.Column, position int) (Expr, error) {
	target := col.Type
	if p, ok := e.(*ParamRef); ok {
		c.resolve(p.Index, target)
	}
	from := c.exprFamily(e)
	if !from.IsUnknown() && !from.ComparableWith(target.Family) {
		return nil, sqlerr.DatatypeMismatch(target.String(), from.String(), col.Name)
	}
	if lit, ok := e.(*Literal); ok {
		if lit.Val.IsNull() {
			return &Literal{Val: types.Null, T: target}, nil
		}
		v, err := lit.Val.Cast(target)
		if err != nil {
			if se := sqlerr.AsSqlError(err); se != nil && se.Kind == sqlerr.KindInvalidTextRepresentation {
				return nil, sqlerr.MostSpecificTypeMismatch(lit.Val.Text(), target.Family.String(), col.Name, position)
			}
			return nil, err
		}
		return &Literal{Val: v, T: target}, nil
	}
	if from == target.Family && target.Length == 0 {
		return e, nil
	}
	return &Cast{Inner: e, Target: target}, nil
}

// finalize stamps resolved types onto placeholder nodes. A placeholder
// that no context resolved has no determinable type.
func (c *checker) finalize(e Expr) error {
	switch e := e.(type) {
	case nil:
		return nil
	case *ParamRef:
		t := c.params[e.Index-1]
		if t.Family.IsUnknown() {
			return sqlerr.IndeterminateParameterDataType(e.Index)
		}
		e.T = t
	case *Binary:
		if err := c.finalize(e.Left); err != nil {
			return err
		}
		return c.finalize(e.Right)
	case *Unary:
		return c.finalize(e.Operand)
	case *Cast:
		return c.finalize(e.Inner)
	case *IsNull:
		return c.finalize(e.Inner)
	}
	return nil
}

// resolvedParams returns the final placeholder types, rejecting any slot
// the statement never determined.
func (c *checker) resolvedParams() ([]types.Type, error) {
	for i, t := range c.params {
		if t.Family.IsUnknown() {
			return nil, sqlerr.IndeterminateParameterDataType(i + 1)
		}
	}
	return c.params, nil
}

// ConstNumber parses a numeric literal into a value with the same
// narrowing rules inference uses.
func ConstNumber(text string) (types.Value, error) {
	lit, err := parseNumberLiteral(text)
	if err != nil {
		return types.Null, err
	}
	return lit.Val, nil
}

// parseNumberLiteral assigns a numeric literal the narrowest family that
// holds it: integers widen smallint through bigint into numeric, and
// anything with a fraction or exponent is double precision.
func parseNumberLiteral(text string) (*Literal, error) {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, sqlerr.InvalidTextRepresentation("double precision", text)
		}
		return &Literal{Val: types.NewFloat64(f), T: types.TypeOf(types.Double)}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		d, _, derr := apd.NewFromString(text)
		if derr != nil {
			return nil, sqlerr.InvalidTextRepresentation("numeric", text)
		}
		return &Literal{Val: types.NewNumeric(d), T: types.TypeOf(types.Numeric)}, nil
	}
	switch {
	case i >= math.MinInt16 && i <= math.MaxInt16:
		return &Literal{Val: types.NewInt16(int16(i)), T: types.TypeOf(types.SmallInt)}, nil
	case i >= math.MinInt32 && i <= math.MaxInt32:
		return &Literal{Val: types.NewInt32(int32(i)), T: types.TypeOf(types.Integer)}, nil
	default:
		return &Literal{Val: types.NewInt64(i), T: types.TypeOf(types.BigInt)}, nil
	}
}
