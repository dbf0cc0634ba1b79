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

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"emberdb/internal/errors"
)

// EvalBinary applies a binary operator to two runtime values. The result
// family follows InferReturnType; operands are promoted before computing.
// NULL operands yield NULL, except for AND/OR which follow three-valued
// logic.
func EvalBinary(op BinaryOp, left, right Value) (Value, error) {
	if op == And || op == Or {
		return evalLogical(op, left, right)
	}
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	if op.IsComparison() {
		c, err := left.Compare(right)
		if err != nil {
			return Null, err
		}
		switch op {
		case Eq:
			return NewBool(c == 0), nil
		case NotEq:
			return NewBool(c != 0), nil
		case Lt:
			return NewBool(c < 0), nil
		case LtEq:
			return NewBool(c <= 0), nil
		case Gt:
			return NewBool(c > 0), nil
		default:
			return NewBool(c >= 0), nil
		}
	}
	result, err := op.InferReturnType(left.Family(), right.Family())
	if err != nil {
		return Null, err
	}
	switch {
	case op.isArithmetic():
		return evalArithmetic(op, result, left, right)
	case op.isBitwise():
		return evalBitwise(op, result, left, right)
	case op == Like || op == NotLike:
		return evalLike(op, left, right)
	case op == Concat:
		return NewString(left.Text() + right.Text()).Cast(TypeOf(result))
	}
	return Null, errors.UndefinedBinaryFunction(op.String(), left.Family().String(), right.Family().String())
}

// EvalUnary applies a unary operator to a runtime value.
func EvalUnary(op UnaryOp, operand Value) (Value, error) {
	if operand.IsNull() {
		return Null, nil
	}
	result, err := op.InferReturnType(operand.Family())
	if err != nil {
		return Null, err
	}
	switch op {
	case UnaryPlus:
		return operand, nil
	case Not:
		v, err := operand.Cast(TypeOf(Bool))
		if err != nil {
			return Null, err
		}
		return NewBool(!v.Bool()), nil
	case UnaryMinus:
		switch {
		case result.IsInt():
			if operand.i == math.MinInt64 {
				return Null, errors.OutOfRange(result.String())
			}
			return intValue(result, -operand.i), nil
		case result.IsFloat():
			v := operand
			v.f = -v.f
			return v, nil
		case result.IsNumeric():
			d := new(apd.Decimal).Neg(operand.d)
			return NewNumeric(d), nil
		}
	case BitNot:
		return intValue(result, ^operand.i), nil
	}
	return Null, errors.UndefinedUnaryFunction(op.String(), operand.Family().String())
}

func evalLogical(op BinaryOp, left, right Value) (Value, error) {
	truth := func(v Value) (bool, bool, error) {
		if v.IsNull() {
			return false, false, nil
		}
		b, err := v.Cast(TypeOf(Bool))
		if err != nil {
			return false, false, err
		}
		return b.Bool(), true, nil
	}
	l, lok, err := truth(left)
	if err != nil {
		return Null, err
	}
	r, rok, err := truth(right)
	if err != nil {
		return Null, err
	}
	if op == And {
		if (lok && !l) || (rok && !r) {
			return NewBool(false), nil
		}
		if lok && rok {
			return NewBool(true), nil
		}
		return Null, nil
	}
	if (lok && l) || (rok && r) {
		return NewBool(true), nil
	}
	if lok && rok {
		return NewBool(false), nil
	}
	return Null, nil
}

func evalArithmetic(op BinaryOp, result Family, left, right Value) (Value, error) {
	if result.IsTemporal() {
		return evalTemporalArithmetic(op, result, left, right)
	}
	switch {
	case result.IsInt():
		a, err := left.Cast(TypeOf(result))
		if err != nil {
			return Null, err
		}
		b, err := right.Cast(TypeOf(result))
		if err != nil {
			return Null, err
		}
		return evalIntArithmetic(op, result, a.i, b.i)
	case result.IsFloat():
		a, err := left.Cast(TypeOf(Double))
		if err != nil {
			return Null, err
		}
		b, err := right.Cast(TypeOf(Double))
		if err != nil {
			return Null, err
		}
		return evalFloatArithmetic(op, a.f, b.f)
	case result.IsNumeric():
		a, err := left.Cast(TypeOf(Numeric))
		if err != nil {
			return Null, err
		}
		b, err := right.Cast(TypeOf(Numeric))
		if err != nil {
			return Null, err
		}
		return evalNumericArithmetic(op, a.d, b.d)
	}
	return Null, errors.UndefinedBinaryFunction(op.String(), left.Family().String(), right.Family().String())
}

func evalIntArithmetic(op BinaryOp, result Family, a, b int64) (Value, error) {
	lo, hi := intRange(result)
	var r int64
	switch op {
	case Add:
		r = a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return Null, errors.OutOfRange(result.String())
		}
	case Sub:
		r = a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return Null, errors.OutOfRange(result.String())
		}
	case Mul:
		if a != 0 {
			r = a * b
			if r/a != b {
				return Null, errors.OutOfRange(result.String())
			}
		}
	case Div:
		if b == 0 {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		r = a / b
	case Mod:
		if b == 0 {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		r = a % b
	case Exp:
		f := math.Pow(float64(a), float64(b))
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Null, errors.OutOfRange(result.String())
		}
		r = int64(f)
	}
	if r < lo || r > hi {
		return Null, errors.OutOfRange(result.String())
	}
	return intValue(result, r), nil
}

func evalBitwise(op BinaryOp, result Family, left, right Value) (Value, error) {
	a, err := left.Cast(TypeOf(result))
	if err != nil {
		return Null, err
	}
	b, err := right.Cast(TypeOf(result))
	if err != nil {
		return Null, err
	}
	lo, hi := intRange(result)
	var r int64
	switch op {
	case BitAnd:
		r = a.i & b.i
	case BitOr:
		r = a.i | b.i
	case BitXor:
		r = a.i ^ b.i
	case ShiftLeft:
		if b.i < 0 || b.i > 63 {
			return Null, errors.OutOfRange(result.String())
		}
		r = a.i << uint(b.i)
		if r>>uint(b.i) != a.i {
			return Null, errors.OutOfRange(result.String())
		}
	case ShiftRight:
		if b.i < 0 || b.i > 63 {
			return Null, errors.OutOfRange(result.String())
		}
		r = a.i >> uint(b.i)
	}
	if r < lo || r > hi {
		return Null, errors.OutOfRange(result.String())
	}
	return intValue(result, r), nil
}

func evalFloatArithmetic(op BinaryOp, a, b float64) (Value, error) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Sub:
		r = a - b
	case Mul:
		r = a * b
	case Div:
		if b == 0 {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		r = a / b
	case Mod:
		if b == 0 {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		r = math.Mod(a, b)
	case Exp:
		r = math.Pow(a, b)
	}
	if math.IsInf(r, 0) {
		return Null, errors.OutOfRange(Double.String())
	}
	return NewFloat64(r), nil
}

func evalNumericArithmetic(op BinaryOp, a, b *apd.Decimal) (Value, error) {
	r := new(apd.Decimal)
	var err error
	switch op {
	case Add:
		_, err = decCtx.Add(r, a, b)
	case Sub:
		_, err = decCtx.Sub(r, a, b)
	case Mul:
		_, err = decCtx.Mul(r, a, b)
	case Div:
		if b.IsZero() {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		_, err = decCtx.Quo(r, a, b)
	case Mod:
		if b.IsZero() {
			return Null, errors.InvalidParameterValue("division by zero")
		}
		_, err = decCtx.Rem(r, a, b)
	case Exp:
		_, err = decCtx.Pow(r, a, b)
	}
	if err != nil {
		return Null, errors.OutOfRange(Numeric.String())
	}
	return NewNumeric(r), nil
}

func evalTemporalArithmetic(op BinaryOp, result Family, left, right Value) (Value, error) {
	// Normalize so the temporal anchor is on the left; addition is
	// commutative and subtraction never has the anchor on the right.
	if !left.Family().IsTemporal() {
		left, right = right, left
	} else if op == Add && right.Family().IsTemporal() {
		switch {
		case left.kind == KindInterval && right.kind != KindInterval:
			left, right = right, left
		case left.kind == KindTime && right.kind == KindDate:
			left, right = right, left
		case (left.kind == KindTimestamp || left.kind == KindTimestampTZ) && right.kind == KindTime:
			left, right = right, left
		}
	}
	sign := 1
	if op == Sub {
		sign = -1
	}
	switch {
	case left.kind == KindDate && right.Family().IsInt():
		return NewDate(left.t.AddDate(0, 0, sign*int(right.i))), nil
	case left.kind == KindDate && right.kind == KindTime:
		d := left.t
		return NewTimestamp(time.Date(d.Year(), d.Month(), d.Day(),
			right.t.Hour(), right.t.Minute(), right.t.Second(), right.t.Nanosecond(), time.UTC)), nil
	case right.kind == KindInterval:
		months, days, micros := right.IntervalParts()
		shifted := left.t.AddDate(0, sign*int(months), sign*int(days)).
			Add(time.Duration(int64(sign)*micros) * time.Microsecond)
		switch result {
		case Date:
			return NewDate(shifted), nil
		case Time:
			return NewTime(shifted), nil
		case Timestamp:
			return NewTimestamp(shifted), nil
		case TimestampTZ:
			return NewTimestampTZ(shifted), nil
		}
	case left.kind == KindTime && (right.kind == KindTimestamp || right.kind == KindTimestampTZ):
		d := right.t
		ts := time.Date(d.Year(), d.Month(), d.Day(),
			left.t.Hour(), left.t.Minute(), left.t.Second(), left.t.Nanosecond(), time.UTC)
		if result == TimestampTZ {
			return NewTimestampTZ(ts), nil
		}
		return NewTimestamp(ts), nil
	case left.kind == KindInterval && right.kind == KindInterval:
		lm, ld, lu := left.IntervalParts()
		rm, rd, ru := right.IntervalParts()
		return NewInterval(lm+int32(sign)*rm, ld+int32(sign)*rd, lu+int64(sign)*ru), nil
	}
	return Null, errors.UndefinedBinaryFunction(op.String(), left.Family().String(), right.Family().String())
}

func evalLike(op BinaryOp, left, right Value) (Value, error) {
	pattern := likeToRegexp(right.Text())
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Null, errors.InvalidParameterValue("malformed LIKE pattern")
	}
	matched := re.MatchString(left.Text())
	if op == NotLike {
		matched = !matched
	}
	return NewBool(matched), nil
}

// likeToRegexp translates a LIKE pattern into an anchored regular
// expression: % matches any run, _ matches one character, everything else
// is literal.
func likeToRegexp(pattern string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
