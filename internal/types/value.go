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
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"emberdb/internal/errors"
)

// ValueKind discriminates the runtime representation of a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindNumeric
	KindString
	KindDate
	KindTime
	KindTimestamp
	KindTimestampTZ
	KindInterval
)

// decCtx is the apd context for all numeric arithmetic.
var decCtx = apd.BaseContext.WithPrecision(38)

// Value is a runtime SQL scalar. The zero Value is NULL.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	d    *apd.Decimal
	s    string
	t    time.Time
	// interval components
	months int32
	days   int32
	micros int64
}

// Null is the SQL NULL value.
var Null = Value{kind: KindNull}

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt16 returns a smallint value.
func NewInt16(i int16) Value { return Value{kind: KindInt16, i: int64(i)} }

// NewInt32 returns an integer value.
func NewInt32(i int32) Value { return Value{kind: KindInt32, i: int64(i)} }

// NewInt64 returns a bigint value.
func NewInt64(i int64) Value { return Value{kind: KindInt64, i: i} }

// NewFloat32 returns a real value.
func NewFloat32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// NewFloat64 returns a double precision value.
func NewFloat64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// NewNumeric returns a numeric value.
func NewNumeric(d *apd.Decimal) Value { return Value{kind: KindNumeric, d: d} }

// NewString returns a character value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewDate returns a date value; the time-of-day part of t is ignored.
func NewDate(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewTime returns a time-of-day value.
func NewTime(t time.Time) Value { return Value{kind: KindTime, t: t} }

// NewTimestamp returns a timestamp without time zone.
func NewTimestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t.UTC()} }

// NewTimestampTZ returns a timestamp with time zone.
func NewTimestampTZ(t time.Time) Value { return Value{kind: KindTimestampTZ, t: t} }

// NewInterval returns an interval value from its month, day, and microsecond
// components, which do not normalize into each other.
func NewInterval(months, days int32, micros int64) Value {
	return Value{kind: KindInterval, months: months, days: days, micros: micros}
}

// Kind returns the runtime kind of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Family returns the type family the value belongs to. NULL belongs to the
// unknown family.
func (v Value) Family() Family {
	switch v.kind {
	case KindBool:
		return Bool
	case KindInt16:
		return SmallInt
	case KindInt32:
		return Integer
	case KindInt64:
		return BigInt
	case KindFloat32:
		return Real
	case KindFloat64:
		return Double
	case KindNumeric:
		return Numeric
	case KindString:
		return Text
	case KindDate:
		return Date
	case KindTime:
		return Time
	case KindTimestamp:
		return Timestamp
	case KindTimestampTZ:
		return TimestampTZ
	case KindInterval:
		return Interval
	}
	return Unknown
}

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Int64 returns the integer payload widened to 64 bits.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the float payload widened to 64 bits.
func (v Value) Float64() float64 { return v.f }

// Decimal returns the numeric payload.
func (v Value) Decimal() *apd.Decimal { return v.d }

// Str returns the character payload.
func (v Value) Str() string { return v.s }

// Time returns the temporal payload for date, time, and timestamp kinds.
func (v Value) Time() time.Time { return v.t }

// IntervalParts returns the interval components.
func (v Value) IntervalParts() (months, days int32, micros int64) {
	return v.months, v.days, v.micros
}

// Cast coerces v to the target type, validating range and length. The
// coercions permitted here mirror the promotion lattice: casting to an
// incomparable family fails with a cannot-coerce error.
func (v Value) Cast(target Type) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	from := v.Family()
	if c, ok := from.Compare(target.Family); ok && c == 0 && !target.Family.IsString() {
		return v, nil
	}
	switch {
	case target.Family.IsInt():
		return v.castToInt(target.Family)
	case target.Family.IsFloat():
		return v.castToFloat(target.Family)
	case target.Family.IsNumeric():
		return v.castToNumeric()
	case target.Family.IsString():
		return v.castToString(target)
	case target.Family.IsTemporal():
		return v.castToTemporal(target.Family)
	case target.Family.IsBool():
		if v.kind == KindBool {
			return v, nil
		}
		if v.kind == KindString {
			return parseBoolText(v.s)
		}
	}
	return Null, errors.CannotCoerce(from.String(), target.Family.String())
}

func intRange(f Family) (int64, int64) {
	switch f {
	case SmallInt:
		return math.MinInt16, math.MaxInt16
	case Integer:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func intValue(f Family, i int64) Value {
	switch f {
	case SmallInt:
		return NewInt16(int16(i))
	case Integer:
		return NewInt32(int32(i))
	default:
		return NewInt64(i)
	}
}

func (v Value) castToInt(f Family) (Value, error) {
	lo, hi := intRange(f)
	switch v.kind {
	case KindInt16, KindInt32, KindInt64:
		if v.i < lo || v.i > hi {
			return Null, errors.OutOfRange(f.String())
		}
		return intValue(f, v.i), nil
	case KindNumeric:
		i, err := v.d.Int64()
		if err != nil || i < lo || i > hi {
			return Null, errors.OutOfRange(f.String())
		}
		return intValue(f, i), nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return Null, errors.InvalidTextRepresentation(f.String(), v.s)
		}
		if i < lo || i > hi {
			return Null, errors.OutOfRange(f.String())
		}
		return intValue(f, i), nil
	}
	return Null, errors.CannotCoerce(v.Family().String(), f.String())
}

func (v Value) castToFloat(f Family) (Value, error) {
	var x float64
	switch v.kind {
	case KindInt16, KindInt32, KindInt64:
		x = float64(v.i)
	case KindFloat32, KindFloat64:
		x = v.f
	case KindNumeric:
		var err error
		x, err = v.d.Float64()
		if err != nil {
			return Null, errors.OutOfRange(f.String())
		}
	case KindString:
		var err error
		x, err = strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return Null, errors.InvalidTextRepresentation(f.String(), v.s)
		}
	default:
		return Null, errors.CannotCoerce(v.Family().String(), f.String())
	}
	if f == Real {
		if x != 0 && (math.Abs(x) > math.MaxFloat32 || math.Abs(x) < math.SmallestNonzeroFloat32) {
			return Null, errors.OutOfRange(f.String())
		}
		return NewFloat32(float32(x)), nil
	}
	return NewFloat64(x), nil
}

func (v Value) castToNumeric() (Value, error) {
	switch v.kind {
	case KindInt16, KindInt32, KindInt64:
		return NewNumeric(apd.New(v.i, 0)), nil
	case KindFloat32, KindFloat64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(v.f); err != nil {
			return Null, errors.OutOfRange(Numeric.String())
		}
		return NewNumeric(d), nil
	case KindNumeric:
		return v, nil
	case KindString:
		d, _, err := apd.NewFromString(strings.TrimSpace(v.s))
		if err != nil {
			return Null, errors.InvalidTextRepresentation(Numeric.String(), v.s)
		}
		return NewNumeric(d), nil
	}
	return Null, errors.CannotCoerce(v.Family().String(), Numeric.String())
}

func (v Value) castToString(target Type) (Value, error) {
	s := v.Text()
	if target.Length > 0 && (target.Family == Char || target.Family == VarChar) {
		if uint32(len([]rune(s))) > target.Length {
			name := "varchar"
			if target.Family == Char {
				name = "char"
			}
			return Null, errors.StringDataRightTruncation(name, target.Length)
		}
	}
	return NewString(s), nil
}

func (v Value) castToTemporal(f Family) (Value, error) {
	if v.kind == KindString {
		return parseTemporalText(f, v.s)
	}
	switch f {
	case Timestamp:
		if v.kind == KindDate || v.kind == KindTimestamp {
			return NewTimestamp(v.t), nil
		}
	case TimestampTZ:
		if v.kind == KindDate || v.kind == KindTimestamp || v.kind == KindTimestampTZ {
			return NewTimestampTZ(v.t), nil
		}
	case Date:
		if v.kind == KindDate {
			return v, nil
		}
	case Time:
		if v.kind == KindTime {
			return v, nil
		}
	case Interval:
		if v.kind == KindInterval {
			return v, nil
		}
	}
	return Null, errors.CannotCoerce(v.Family().String(), f.String())
}

// Compare orders two values. NULL compares less than everything except NULL.
// Values of different families are promoted to the wider family first; an
// incomparable pair is a datatype mismatch.
func (v Value) Compare(o Value) (int, error) {
	if v.IsNull() || o.IsNull() {
		switch {
		case v.IsNull() && o.IsNull():
			return 0, nil
		case v.IsNull():
			return -1, nil
		default:
			return 1, nil
		}
	}
	target, ok := v.Family().Promote(o.Family())
	if !ok {
		return 0, errors.DatatypeMismatch(v.Family().String(), o.Family().String(), "")
	}
	a, err := v.Cast(TypeOf(target))
	if err != nil {
		return 0, err
	}
	b, err := o.Cast(TypeOf(target))
	if err != nil {
		return 0, err
	}
	switch a.kind {
	case KindBool:
		return cmpOrd(boolInt(a.b), boolInt(b.b)), nil
	case KindInt16, KindInt32, KindInt64:
		return cmpOrd64(a.i, b.i), nil
	case KindFloat32, KindFloat64:
		switch {
		case a.f < b.f:
			return -1, nil
		case a.f > b.f:
			return 1, nil
		}
		return 0, nil
	case KindNumeric:
		return a.d.Cmp(b.d), nil
	case KindString:
		return strings.Compare(a.s, b.s), nil
	case KindDate, KindTime, KindTimestamp, KindTimestampTZ:
		switch {
		case a.t.Before(b.t):
			return -1, nil
		case a.t.After(b.t):
			return 1, nil
		}
		return 0, nil
	case KindInterval:
		return cmpOrd64(a.intervalMicros(), b.intervalMicros()), nil
	}
	return 0, errors.DatatypeMismatch(v.Family().String(), o.Family().String(), "")
}

// intervalMicros flattens an interval for ordering, using the PostgreSQL
// convention of 30-day months and 24-hour days.
func (v Value) intervalMicros() int64 {
	const microsPerDay = 24 * 3600 * 1000000
	return int64(v.months)*30*microsPerDay + int64(v.days)*microsPerDay + v.micros
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrd64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
