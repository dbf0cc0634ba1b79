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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"emberdb/internal/analysis"
	"emberdb/internal/catalog"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/sql"
	"emberdb/internal/storage"
	"emberdb/internal/types"
)

func newFixture(t *testing.T) *analysis.Analyzer {
	t.Helper()
	e, err := storage.Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	m, err := catalog.Open(e)
	require.NoError(t, err)
	_, err = m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", []catalog.ColumnSpec{
		{Name: "col1", Type: types.TypeOf(types.SmallInt)},
		{Name: "col2", Type: types.SizedType(types.VarChar, 10)},
		{Name: "col3", Type: types.TypeOf(types.Date)},
		{Name: "col4", Type: types.TypeOf(types.Timestamp)},
	}, false)
	require.NoError(t, err)
	return analysis.NewAnalyzer(m)
}

func typeText(t *testing.T, a *analysis.Analyzer, text string, declared ...types.Type) (Query, error) {
	t.Helper()
	stmt, err := sql.Parse(text)
	require.NoError(t, err)
	q, err := a.Analyze(stmt)
	require.NoError(t, err)
	return TypeQuery(q, declared)
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se, "%v", err)
	return se.Code
}

func TestInsertLiteralCoercion(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "INSERT INTO s.t (col1, col2, col3) VALUES ('123', 456, '2024-05-01')")
	require.NoError(t, err)
	ins := q.(Insert)
	v, err := ins.Rows[0][0].Eval(nil, nil)
	require.NoError(t, err)
	require.Equal(t, types.KindInt16, v.Kind())
	require.Equal(t, int64(123), v.Int64())
	v, err = ins.Rows[0][2].Eval(nil, nil)
	require.NoError(t, err)
	require.Equal(t, types.KindDate, v.Kind())
	require.Equal(t, "2024-05-01", v.Text())
}

func TestInsertBadLiteral(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "INSERT INTO s.t (col1) VALUES ('abc')")
	require.Equal(t, "2200G", errCode(t, err))
	require.Contains(t, err.Error(), `column "col1" at position 1`)
}

func TestInsertOutOfRangeLiteral(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "INSERT INTO s.t (col1) VALUES (40000)")
	require.Equal(t, "22003", errCode(t, err))
}

func TestInsertStringTooLong(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "INSERT INTO s.t (col2) VALUES ('this is far too long')")
	require.Equal(t, "22026", errCode(t, err))
}

func TestInsertColumnReferenceRejected(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "INSERT INTO s.t (col1) VALUES (col1)")
	require.Equal(t, "42703", errCode(t, err))
}

func TestInsertParamsResolveToColumnTypes(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "INSERT INTO s.t (col1, col2) VALUES ($1, $2)")
	require.NoError(t, err)
	require.Equal(t, []types.Type{
		types.TypeOf(types.SmallInt),
		types.SizedType(types.VarChar, 10),
	}, q.ParamTypes())
}

func TestFilterParamResolvesFromComparison(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT * FROM s.t WHERE col1 = $1")
	require.NoError(t, err)
	require.Equal(t, []types.Type{types.TypeOf(types.SmallInt)}, q.ParamTypes())
}

func TestDeclaredParamTypeWins(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT * FROM s.t WHERE col1 = $1", types.TypeOf(types.Integer))
	require.NoError(t, err)
	require.Equal(t, []types.Type{types.TypeOf(types.Integer)}, q.ParamTypes())
}

func TestIndeterminateParam(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "SELECT $1 FROM s.t")
	require.Equal(t, "42P18", errCode(t, err))
	require.Contains(t, err.Error(), "$1")
}

func TestFilterMustBeBoolean(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "SELECT * FROM s.t WHERE col1")
	require.Equal(t, "42804", errCode(t, err))
	require.Contains(t, err.Error(), "argument of WHERE must be type boolean")
}

func TestUndefinedOperator(t *testing.T) {
	a := newFixture(t)
	_, err := typeText(t, a, "SELECT col1 + col2 FROM s.t")
	require.Equal(t, "42883", errCode(t, err))
	require.Equal(t, "42883: operator does not exist: (smallint + character varying)", err.Error())
}

func TestProjectionEval(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT col1 + 1, col2 || '!' FROM s.t")
	require.NoError(t, err)
	sel := q.(Select)
	require.Equal(t, types.SmallInt, sel.Columns[0].Expr.Type().Family)

	row := []types.Value{types.NewInt16(123), types.NewString("x"), types.Null}
	v, err := sel.Columns[0].Expr.Eval(row, nil)
	require.NoError(t, err)
	require.Equal(t, int64(124), v.Int64())
	v, err = sel.Columns[1].Expr.Eval(row, nil)
	require.NoError(t, err)
	require.Equal(t, "x!", v.Str())
}

func TestFilterEval(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT * FROM s.t WHERE col1 > 100 AND col2 LIKE 'a%'")
	require.NoError(t, err)
	sel := q.(Select)
	v, err := sel.Filter.Eval([]types.Value{types.NewInt16(123), types.NewString("abc"), types.Null}, nil)
	require.NoError(t, err)
	require.True(t, v.Bool())
	v, err = sel.Filter.Eval([]types.Value{types.NewInt16(42), types.NewString("abc"), types.Null}, nil)
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestUpdateAssignmentCoercion(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "UPDATE s.t SET col1 = col1 + 1, col2 = $1 WHERE col3 = '2024-05-01'")
	require.NoError(t, err)
	up := q.(Update)
	require.Len(t, up.Assignments, 2)
	require.Equal(t, []types.Type{types.SizedType(types.VarChar, 10)}, up.Params)

	_, err = typeText(t, a, "UPDATE s.t SET col1 = true")
	require.Equal(t, "42804", errCode(t, err))
}

func TestExplicitCast(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT col1::text FROM s.t")
	require.NoError(t, err)
	sel := q.(Select)
	require.Equal(t, types.Text, sel.Columns[0].Expr.Type().Family)
	v, err := sel.Columns[0].Expr.Eval([]types.Value{types.NewInt16(7), types.NewString(""), types.Null}, nil)
	require.NoError(t, err)
	require.Equal(t, "7", v.Str())

	_, err = typeText(t, a, "SELECT col3::smallint FROM s.t")
	require.Equal(t, "42846", errCode(t, err))
}

func TestTemporalParamResolvesToInterval(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT * FROM s.t WHERE col4 + $1 > '2024-05-01 00:00:00'", types.TypeOf(types.Unknown))
	require.NoError(t, err)
	require.Equal(t, []types.Type{types.TypeOf(types.Interval)}, q.ParamTypes())
}

func TestIsNullPredicate(t *testing.T) {
	a := newFixture(t)
	q, err := typeText(t, a, "SELECT col1 IS NULL, col1 IS NOT NULL FROM s.t")
	require.NoError(t, err)
	sel := q.(Select)
	require.Equal(t, types.Bool, sel.Columns[0].Expr.Type().Family)

	row := []types.Value{types.Null, types.NewString("x"), types.Null, types.Null}
	v, err := sel.Columns[0].Expr.Eval(row, nil)
	require.NoError(t, err)
	require.True(t, v.Bool())
	v, err = sel.Columns[1].Expr.Eval(row, nil)
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestNumberLiteralFamilies(t *testing.T) {
	cases := map[string]types.Family{
		"1":                   types.SmallInt,
		"40000":               types.Integer,
		"3000000000":          types.BigInt,
		"99999999999999999999": types.Numeric,
		"1.5":                 types.Double,
		"2e10":                types.Double,
	}
	for text, want := range cases {
		lit, err := parseNumberLiteral(text)
		require.NoError(t, err, text)
		require.Equal(t, want, lit.T.Family, text)
	}
}
