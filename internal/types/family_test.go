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

	"github.com/stretchr/testify/require"
)

func allFamilies() []Family {
	return []Family{
		Unknown, Bool, SmallInt, Integer, BigInt, Real, Double, Numeric,
		Char, VarChar, Text, Date, Time, Timestamp, TimestampTZ, Interval,
	}
}

func TestUnknownBelowEverything(t *testing.T) {
	for _, f := range allFamilies() {
		if f == Unknown {
			continue
		}
		c, ok := Unknown.Compare(f)
		require.True(t, ok, "unknown vs %s", f)
		require.Equal(t, -1, c, "unknown vs %s", f)
	}
}

func TestNumericTowerOrder(t *testing.T) {
	chain := []Family{SmallInt, Integer, BigInt, Numeric, Real, Double, Char, VarChar, Text}
	for i := 0; i < len(chain); i++ {
		for j := i + 1; j < len(chain); j++ {
			c, ok := chain[i].Compare(chain[j])
			require.True(t, ok, "%s vs %s", chain[i], chain[j])
			require.Equal(t, -1, c, "%s vs %s", chain[i], chain[j])
		}
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	for _, a := range allFamilies() {
		for _, b := range allFamilies() {
			ca, aok := a.Compare(b)
			cb, bok := b.Compare(a)
			require.Equal(t, aok, bok, "%s vs %s", a, b)
			if aok {
				require.Equal(t, ca, -cb, "%s vs %s", a, b)
			}
		}
	}
}

func TestBoolComparableOnlyWithStringsAndSelf(t *testing.T) {
	for _, f := range allFamilies() {
		_, ok := Bool.Compare(f)
		expected := f == Bool || f == Unknown || f.IsString()
		require.Equal(t, expected, ok, "bool vs %s", f)
	}
}

func TestTemporalChain(t *testing.T) {
	c, ok := Date.Compare(Timestamp)
	require.True(t, ok)
	require.Equal(t, -1, c)
	c, ok = Timestamp.Compare(TimestampTZ)
	require.True(t, ok)
	require.Equal(t, -1, c)

	for _, f := range []Family{Date, Timestamp, TimestampTZ, Interval} {
		_, ok := Time.Compare(f)
		require.False(t, ok, "time vs %s", f)
	}
	_, ok = Interval.Compare(Date)
	require.False(t, ok)
}

func TestInferAddIntegers(t *testing.T) {
	f, err := Add.InferReturnType(SmallInt, Integer)
	require.NoError(t, err)
	require.Equal(t, Integer, f)

	f, err = Add.InferReturnType(BigInt, SmallInt)
	require.NoError(t, err)
	require.Equal(t, BigInt, f)
}

func TestInferFloatWidensToDouble(t *testing.T) {
	for _, right := range []Family{SmallInt, Integer, BigInt, Real, Double, Numeric} {
		f, err := Mul.InferReturnType(Real, right)
		require.NoError(t, err)
		require.Equal(t, Double, f, "real * %s", right)
	}
}

func TestInferUnknownInheritsConcreteSide(t *testing.T) {
	for _, concrete := range []Family{SmallInt, Integer, BigInt, Real, Double, Numeric} {
		f, err := Add.InferReturnType(Unknown, concrete)
		require.NoError(t, err)
		require.Equal(t, concrete, f)

		f, err = Add.InferReturnType(concrete, Unknown)
		require.NoError(t, err)
		require.Equal(t, concrete, f)
	}
	_, err := Add.InferReturnType(Unknown, Unknown)
	require.Error(t, err)
}

func TestInferTemporalAddition(t *testing.T) {
	cases := []struct {
		left, right, want Family
	}{
		{Date, SmallInt, Date},
		{Date, Integer, Date},
		{Integer, Date, Date},
		{Date, Interval, Timestamp},
		{Date, Time, Timestamp},
		{Time, Interval, Time},
		{Time, Timestamp, Timestamp},
		{Time, TimestampTZ, TimestampTZ},
		{Timestamp, Interval, Timestamp},
		{TimestampTZ, Interval, TimestampTZ},
		{Interval, Interval, Interval},
		{Unknown, Interval, Interval},
		{Timestamp, Unknown, Timestamp},
	}
	for _, tc := range cases {
		f, err := Add.InferReturnType(tc.left, tc.right)
		require.NoError(t, err, "%s + %s", tc.left, tc.right)
		require.Equal(t, tc.want, f, "%s + %s", tc.left, tc.right)
	}

	_, err := Add.InferReturnType(Date, Unknown)
	require.Error(t, err, "date + unknown is ambiguous")
	_, err = Add.InferReturnType(Date, BigInt)
	require.Error(t, err)
	_, err = Mul.InferReturnType(Date, Interval)
	require.Error(t, err)
}

func TestInferComparisonNeedsComparableFamilies(t *testing.T) {
	f, err := Eq.InferReturnType(Integer, Numeric)
	require.NoError(t, err)
	require.Equal(t, Bool, f)

	f, err = Lt.InferReturnType(Bool, Text)
	require.NoError(t, err)
	require.Equal(t, Bool, f)

	_, err = Eq.InferReturnType(Bool, Integer)
	require.Error(t, err)
}

func TestInferConcatRequiresStrings(t *testing.T) {
	f, err := Concat.InferReturnType(VarChar, Text)
	require.NoError(t, err)
	require.Equal(t, Text, f)

	_, err = Concat.InferReturnType(Integer, Integer)
	require.Error(t, err)
	require.EqualError(t, err, "42883: operator does not exist: (integer || integer)")
}

func TestInferBitwiseRequiresIntegers(t *testing.T) {
	f, err := BitAnd.InferReturnType(SmallInt, BigInt)
	require.NoError(t, err)
	require.Equal(t, BigInt, f)

	_, err = BitOr.InferReturnType(Real, Integer)
	require.Error(t, err)
}

func TestInferUnary(t *testing.T) {
	f, err := UnaryMinus.InferReturnType(Numeric)
	require.NoError(t, err)
	require.Equal(t, Numeric, f)

	f, err = Not.InferReturnType(Unknown)
	require.NoError(t, err)
	require.Equal(t, Bool, f)

	_, err = BitNot.InferReturnType(Text)
	require.Error(t, err)
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "smallint", TypeOf(SmallInt).String())
	require.Equal(t, "character varying(10)", SizedType(VarChar, 10).String())
	require.Equal(t, "double precision", TypeOf(Double).String())
	require.Equal(t, "timestamp without time zone", TypeOf(Timestamp).String())
}
