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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"emberdb/internal/errors"
)

func TestBooleanTextAcceptSets(t *testing.T) {
	trueForms := []string{"t", "tr", "tru", "true", "TRUE", "y", "ye", "yes", "on", "1", "  True  "}
	for _, s := range trueForms {
		v, err := DecodeText(TypeOf(Bool), []byte(s))
		require.NoError(t, err, "%q", s)
		require.True(t, v.Bool(), "%q", s)
	}
	falseForms := []string{"f", "fa", "fal", "fals", "false", "N", "no", "of", "off", "0"}
	for _, s := range falseForms {
		v, err := DecodeText(TypeOf(Bool), []byte(s))
		require.NoError(t, err, "%q", s)
		require.False(t, v.Bool(), "%q", s)
	}
	_, err := DecodeText(TypeOf(Bool), []byte("maybe"))
	require.Error(t, err)
	require.Equal(t, "22P02", asCode(t, err))
}

func asCode(t *testing.T, err error) string {
	t.Helper()
	se := errors.AsSqlError(err)
	require.NotNil(t, se)
	return se.Code
}

func TestSmallIntTextRoundTrip(t *testing.T) {
	v, err := DecodeText(TypeOf(SmallInt), []byte("123"))
	require.NoError(t, err)
	require.Equal(t, KindInt16, v.Kind())
	require.Equal(t, "123", v.Text())

	_, err = DecodeText(TypeOf(SmallInt), []byte("40000"))
	require.Error(t, err)
	require.Equal(t, "22003", asCode(t, err))

	_, err = DecodeText(TypeOf(SmallInt), []byte("abc"))
	require.Error(t, err)
	require.Equal(t, "22P02", asCode(t, err))
}

func TestSmallIntBinary(t *testing.T) {
	v, err := DecodeBinary(TypeOf(SmallInt), []byte{0x00, 0x7B})
	require.NoError(t, err)
	require.Equal(t, int64(123), v.Int64())
	require.Equal(t, []byte{0x00, 0x7B}, EncodeBinary(v))

	_, err = DecodeBinary(TypeOf(SmallInt), []byte{0x00})
	require.Error(t, err)
}

func TestBoolText(t *testing.T) {
	require.Equal(t, "t", NewBool(true).Text())
	require.Equal(t, "f", NewBool(false).Text())
}

func TestVarCharLengthEnforced(t *testing.T) {
	_, err := DecodeText(SizedType(VarChar, 3), []byte("abcd"))
	require.Error(t, err)
	require.Equal(t, "22026", asCode(t, err))

	v, err := DecodeText(SizedType(VarChar, 3), []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, "abc", v.Str())
}

func TestCastIntWidening(t *testing.T) {
	v, err := NewInt16(7).Cast(TypeOf(BigInt))
	require.NoError(t, err)
	require.Equal(t, KindInt64, v.Kind())

	_, err = NewInt64(1 << 40).Cast(TypeOf(Integer))
	require.Error(t, err)
	require.Equal(t, "22003", asCode(t, err))
}

func TestCompareAcrossFamilies(t *testing.T) {
	c, err := NewInt16(3).Compare(NewFloat64(3.5))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = NewString("b").Compare(NewString("a"))
	require.NoError(t, err)
	require.Equal(t, 1, c)

	_, err = NewBool(true).Compare(NewInt32(1))
	require.Error(t, err)
}

func TestEvalIntegerArithmetic(t *testing.T) {
	v, err := EvalBinary(Add, NewInt16(2), NewInt16(3))
	require.NoError(t, err)
	require.Equal(t, KindInt16, v.Kind())
	require.Equal(t, int64(5), v.Int64())

	_, err = EvalBinary(Div, NewInt32(1), NewInt32(0))
	require.Error(t, err)

	_, err = EvalBinary(Add, NewInt16(32767), NewInt16(1))
	require.Error(t, err)
	require.Equal(t, "22003", asCode(t, err))
}

func TestEvalBitwise(t *testing.T) {
	v, err := EvalBinary(BitAnd, NewInt16(0b1100), NewInt32(0b1010))
	require.NoError(t, err)
	require.Equal(t, KindInt32, v.Kind())
	require.Equal(t, int64(0b1000), v.Int64())

	v, err = EvalBinary(BitOr, NewInt64(0b1100), NewInt64(0b1010))
	require.NoError(t, err)
	require.Equal(t, int64(0b1110), v.Int64())

	v, err = EvalBinary(BitXor, NewInt32(0b1100), NewInt32(0b1010))
	require.NoError(t, err)
	require.Equal(t, int64(0b0110), v.Int64())

	v, err = EvalBinary(ShiftLeft, NewInt32(3), NewInt32(4))
	require.NoError(t, err)
	require.Equal(t, int64(48), v.Int64())

	v, err = EvalBinary(ShiftRight, NewInt64(48), NewInt64(4))
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Int64())

	_, err = EvalBinary(ShiftLeft, NewInt16(1), NewInt16(15))
	require.Error(t, err)
	require.Equal(t, "22003", asCode(t, err))

	v, err = EvalBinary(BitAnd, Null, NewInt32(7))
	require.NoError(t, err)
	require.True(t, v.IsNull())

	_, err = EvalBinary(BitAnd, NewFloat64(1), NewInt32(1))
	require.Error(t, err)
	require.Equal(t, "42883", asCode(t, err))
}

func TestEvalComparison(t *testing.T) {
	v, err := EvalBinary(GtEq, NewInt32(5), NewInt32(5))
	require.NoError(t, err)
	require.True(t, v.Bool())

	v, err = EvalBinary(NotEq, NewString("a"), NewString("a"))
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestEvalThreeValuedLogic(t *testing.T) {
	v, err := EvalBinary(And, NewBool(false), Null)
	require.NoError(t, err)
	require.False(t, v.Bool())

	v, err = EvalBinary(Or, Null, NewBool(true))
	require.NoError(t, err)
	require.True(t, v.Bool())

	v, err = EvalBinary(And, NewBool(true), Null)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalLike(t *testing.T) {
	v, err := EvalBinary(Like, NewString("ember"), NewString("em%"))
	require.NoError(t, err)
	require.True(t, v.Bool())

	v, err = EvalBinary(NotLike, NewString("ember"), NewString("x_"))
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestEvalDatePlusInterval(t *testing.T) {
	d, err := DecodeText(TypeOf(Date), []byte("2024-03-01"))
	require.NoError(t, err)
	iv, err := DecodeText(TypeOf(Interval), []byte("1 day"))
	require.NoError(t, err)

	v, err := EvalBinary(Add, d, iv)
	require.NoError(t, err)
	require.Equal(t, KindTimestamp, v.Kind())
	require.Equal(t, "2024-03-02 00:00:00", v.Text())
}

func TestEvalDatePlusDays(t *testing.T) {
	d, err := DecodeText(TypeOf(Date), []byte("2024-02-28"))
	require.NoError(t, err)
	v, err := EvalBinary(Add, d, NewInt32(2))
	require.NoError(t, err)
	require.Equal(t, "2024-03-01", v.Text())
}

func TestEvalTemporalAddCommutes(t *testing.T) {
	d, err := DecodeText(TypeOf(Date), []byte("2020-01-02"))
	require.NoError(t, err)
	tm, err := DecodeText(TypeOf(Time), []byte("12:30:00"))
	require.NoError(t, err)
	ts, err := DecodeText(TypeOf(Timestamp), []byte("2020-01-02 08:00:00"))
	require.NoError(t, err)
	iv, err := DecodeText(TypeOf(Interval), []byte("1 day"))
	require.NoError(t, err)

	for _, pair := range [][2]Value{{d, tm}, {tm, d}} {
		v, err := EvalBinary(Add, pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, KindTimestamp, v.Kind())
		require.Equal(t, "2020-01-02 12:30:00", v.Text())
	}

	for _, pair := range [][2]Value{{ts, tm}, {tm, ts}} {
		v, err := EvalBinary(Add, pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, "2020-01-02 12:30:00", v.Text())
	}

	for _, pair := range [][2]Value{{d, iv}, {iv, d}} {
		v, err := EvalBinary(Add, pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, "2020-01-03 00:00:00", v.Text())
	}
}

func TestIntervalTextRoundTrip(t *testing.T) {
	v, err := DecodeText(TypeOf(Interval), []byte("1 year 2 mons 3 days 04:05:06"))
	require.NoError(t, err)
	months, days, micros := v.IntervalParts()
	require.Equal(t, int32(14), months)
	require.Equal(t, int32(3), days)
	require.Equal(t, int64(4*3600+5*60+6)*1000000, micros)
	require.Equal(t, "1 year 2 mons 3 days 04:05:06", v.Text())
}

func TestTimestampBinaryRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	raw := EncodeBinary(ts)
	back, err := DecodeBinary(TypeOf(Timestamp), raw)
	require.NoError(t, err)
	require.True(t, ts.Time().Equal(back.Time()))
}
