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

package typing

import "emberdb/internal/types"

// Expr is a typed, executable expression. Row holds the current row's
// column values by ordinal and params the portal's decoded parameter
// values by 1-based index; static expressions ignore the row.
type Expr interface {
	Type() types.Type
	Eval(row, params []types.Value) (types.Value, error)
}

// Literal is a constant value fixed at typing time.
type Literal struct {
	Val types.Value
	T   types.Type
}

func (l *Literal) Type() types.Type { return l.T }

func (l *Literal) Eval(_, _ []types.Value) (types.Value, error) {
	return l.Val, nil
}

// ColumnRef reads a column of the current row.
type ColumnRef struct {
	Ordinal int
	T       types.Type
}

func (c *ColumnRef) Type() types.Type { return c.T }

func (c *ColumnRef) Eval(row, _ []types.Value) (types.Value, error) {
	return row[c.Ordinal], nil
}

// ParamRef reads a bound parameter. Its type is settled after the whole
// statement has been typed, once every use site has had a chance to
// resolve the placeholder.
type ParamRef struct {
	Index int
	T     types.Type
}

func (p *ParamRef) Type() types.Type { return p.T }

func (p *ParamRef) Eval(_, params []types.Value) (types.Value, error) {
	return params[p.Index-1], nil
}

// Binary applies a binary operator to two typed operands.
type Binary struct {
	Op    types.BinaryOp
	T     types.Type
	Left  Expr
	Right Expr
}

func (b *Binary) Type() types.Type { return b.T }

func (b *Binary) Eval(row, params []types.Value) (types.Value, error) {
	left, err := b.Left.Eval(row, params)
	if err != nil {
		return types.Null, err
	}
	right, err := b.Right.Eval(row, params)
	if err != nil {
		return types.Null, err
	}
	return types.EvalBinary(b.Op, left, right)
}

// Unary applies a unary operator.
type Unary struct {
	Op      types.UnaryOp
	T       types.Type
	Operand Expr
}

func (u *Unary) Type() types.Type { return u.T }

func (u *Unary) Eval(row, params []types.Value) (types.Value, error) {
	operand, err := u.Operand.Eval(row, params)
	if err != nil {
		return types.Null, err
	}
	return types.EvalUnary(u.Op, operand)
}

// IsNull tests its operand for NULL. Unlike other operators it never
// yields NULL itself.
type IsNull struct {
	Inner  Expr
	Negate bool
}

func (n *IsNull) Type() types.Type { return types.TypeOf(types.Bool) }

func (n *IsNull) Eval(row, params []types.Value) (types.Value, error) {
	v, err := n.Inner.Eval(row, params)
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(v.IsNull() != n.Negate), nil
}

// Cast converts its operand to the target type at evaluation time.
type Cast struct {
	Inner  Expr
	Target types.Type
}

func (c *Cast) Type() types.Type { return c.Target }

func (c *Cast) Eval(row, params []types.Value) (types.Value, error) {
	v, err := c.Inner.Eval(row, params)
	if err != nil {
		return types.Null, err
	}
	return v.Cast(c.Target)
}
