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

package types

import "emberdb/internal/errors"

// BinaryOp is a SQL binary operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Exp
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	BitAnd
	BitOr
	BitXor
	ShiftLeft
	ShiftRight
	And
	Or
	Like
	NotLike
	Concat
)

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Exp:
		return "^"
	case Eq:
		return "="
	case NotEq:
		return "<>"
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "#"
	case ShiftLeft:
		return "<<"
	case ShiftRight:
		return ">>"
	case And:
		return "AND"
	case Or:
		return "OR"
	case Like:
		return "LIKE"
	case NotLike:
		return "NOT LIKE"
	case Concat:
		return "||"
	}
	return "?"
}

// IsComparison reports whether the operator yields a boolean comparison.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case Eq, NotEq, Lt, LtEq, Gt, GtEq:
		return true
	}
	return false
}

func (op BinaryOp) isArithmetic() bool {
	switch op {
	case Add, Sub, Mul, Div, Mod, Exp:
		return true
	}
	return false
}

func (op BinaryOp) isBitwise() bool {
	switch op {
	case BitAnd, BitOr, BitXor, ShiftLeft, ShiftRight:
		return true
	}
	return false
}

// InferReturnType determines the result family of applying op to operands of
// the given families, or an undefined-function error when no overload exists.
// The unknown family stands for operands whose type is not yet fixed
// (placeholders, string literals in inference position): a single unknown
// operand inherits the other side's overload, while unknown on both sides of
// an arithmetic or string operator is rejected because no overload can be
// chosen.
func (op BinaryOp) InferReturnType(left, right Family) (Family, error) {
	switch {
	case op.isArithmetic():
		return inferArithmetic(op, left, right)
	case op.IsComparison():
		if left.ComparableWith(right) {
			return Bool, nil
		}
	case op.isBitwise():
		return inferBitwise(op, left, right)
	case op == And || op == Or:
		if (left.IsBool() || left.IsUnknown()) && (right.IsBool() || right.IsUnknown()) {
			return Bool, nil
		}
	case op == Like || op == NotLike:
		if (left.IsString() || left.IsUnknown()) && (right.IsString() || right.IsUnknown()) {
			return Bool, nil
		}
	case op == Concat:
		return inferConcat(op, left, right)
	}
	return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
}

func inNumericTower(f Family) bool {
	return f.IsInt() || f.IsFloat() || f.IsNumeric() || f.IsUnknown()
}

func inferArithmetic(op BinaryOp, left, right Family) (Family, error) {
	if left.IsTemporal() || right.IsTemporal() {
		if op == Add {
			if f, ok := temporalAdd(left, right); ok {
				return f, nil
			}
			if f, ok := temporalAdd(right, left); ok {
				return f, nil
			}
		}
		if op == Sub {
			if f, ok := temporalSub(left, right); ok {
				return f, nil
			}
		}
		return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
	}
	if !inNumericTower(left) || !inNumericTower(right) {
		return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
	}
	if left.IsUnknown() && right.IsUnknown() {
		return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
	}
	// An unknown operand inherits the concrete side's overload.
	if left.IsUnknown() {
		return right, nil
	}
	if right.IsUnknown() {
		return left, nil
	}
	// Any float operand widens the whole expression to double precision.
	if left.IsFloat() || right.IsFloat() {
		return Double, nil
	}
	f, ok := left.Promote(right)
	if !ok {
		return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
	}
	return f, nil
}

// temporalAdd resolves one direction of the commutative addition table for
// temporal operands. Date + unknown has no overload: the missing side could
// be an integer day count or an interval, which produce different results.
func temporalAdd(left, right Family) (Family, bool) {
	switch left {
	case Date:
		switch right {
		case SmallInt, Integer:
			return Date, true
		case Interval, Time:
			return Timestamp, true
		}
	case Time:
		switch right {
		case Interval, Unknown:
			return Time, true
		case Timestamp:
			return Timestamp, true
		case TimestampTZ:
			return TimestampTZ, true
		}
	case Timestamp:
		switch right {
		case Interval, Unknown:
			return Timestamp, true
		}
	case TimestampTZ:
		switch right {
		case Interval, Unknown:
			return TimestampTZ, true
		}
	case Interval:
		switch right {
		case Interval, Unknown:
			return Interval, true
		}
	}
	return Family{}, false
}

// temporalSub is directional: an interval subtracts from a point in time,
// never the reverse.
func temporalSub(left, right Family) (Family, bool) {
	switch left {
	case Date:
		switch right {
		case SmallInt, Integer:
			return Date, true
		case Interval:
			return Timestamp, true
		}
	case Time:
		if right == Interval || right == Unknown {
			return Time, true
		}
	case Timestamp:
		if right == Interval || right == Unknown {
			return Timestamp, true
		}
	case TimestampTZ:
		if right == Interval || right == Unknown {
			return TimestampTZ, true
		}
	case Interval:
		if right == Interval || right == Unknown {
			return Interval, true
		}
	}
	return Family{}, false
}

func inferBitwise(op BinaryOp, left, right Family) (Family, error) {
	if left.IsInt() && right.IsInt() {
		f, _ := left.Promote(right)
		return f, nil
	}
	if left.IsInt() && right.IsUnknown() {
		return left, nil
	}
	if left.IsUnknown() && right.IsInt() {
		return right, nil
	}
	return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
}

func inferConcat(op BinaryOp, left, right Family) (Family, error) {
	if left.IsString() && right.IsString() {
		f, _ := left.Promote(right)
		return f, nil
	}
	if left.IsString() && right.IsUnknown() {
		return left, nil
	}
	if left.IsUnknown() && right.IsString() {
		return right, nil
	}
	return Family{}, errors.UndefinedBinaryFunction(op.String(), left.String(), right.String())
}

// UnaryOp is a SQL unary operator.
type UnaryOp int

const (
	UnaryMinus UnaryOp = iota
	UnaryPlus
	Not
	BitNot
)

// String returns the SQL spelling of the operator.
func (op UnaryOp) String() string {
	switch op {
	case UnaryMinus:
		return "-"
	case UnaryPlus:
		return "+"
	case Not:
		return "NOT"
	case BitNot:
		return "~"
	}
	return "?"
}

// InferReturnType determines the result family of applying op to an operand
// of the given family.
func (op UnaryOp) InferReturnType(operand Family) (Family, error) {
	switch op {
	case UnaryMinus, UnaryPlus:
		if inNumericTower(operand) {
			return operand, nil
		}
	case Not:
		if operand.IsBool() || operand.IsUnknown() {
			return Bool, nil
		}
	case BitNot:
		if operand.IsInt() {
			return operand, nil
		}
	}
	return Family{}, errors.UndefinedUnaryFunction(op.String(), operand.String())
}
