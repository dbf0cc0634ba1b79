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
	"testing"

	"github.com/stretchr/testify/require"

	"emberdb/internal/catalog"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/sql"
	"emberdb/internal/storage"
	"emberdb/internal/types"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
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
	}, false)
	require.NoError(t, err)
	return NewAnalyzer(m)
}

func analyze(t *testing.T, a *Analyzer, text string) (Query, error) {
	t.Helper()
	stmt, err := sql.Parse(text)
	require.NoError(t, err)
	return a.Analyze(stmt)
}

func TestAnalyzeSelectStarExpandsColumns(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "SELECT * FROM s.t")
	require.NoError(t, err)
	sel := q.(SelectQuery)
	require.Len(t, sel.Columns, 2)
	require.Equal(t, "col1", sel.Columns[0].Name)
	require.Equal(t, Column{Ordinal: 0, Name: "col1", Type: types.TypeOf(types.SmallInt)}, sel.Columns[0].Expr)
	require.Equal(t, "col2", sel.Columns[1].Name)
}

func TestAnalyzeUnknownSchemaAndTable(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := analyze(t, a, "SELECT * FROM missing.t")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "3F000", se.Code)

	_, err = analyze(t, a, "SELECT * FROM s.missing")
	se = sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P01", se.Code)
}

func TestAnalyzeUnknownColumn(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := analyze(t, a, "SELECT nope FROM s.t")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42703", se.Code)
}

func TestAnalyzeInsertDefaultsToAllColumns(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "INSERT INTO s.t VALUES (1, 'x')")
	require.NoError(t, err)
	ins := q.(InsertQuery)
	require.Equal(t, []int{0, 1}, ins.Targets)
	require.Equal(t, Number{Text: "1"}, ins.Rows[0][0])
	require.Equal(t, Str{Text: "x"}, ins.Rows[0][1])
}

func TestAnalyzeInsertColumnList(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "INSERT INTO s.t (col2, col1) VALUES ('x', 1)")
	require.NoError(t, err)
	require.Equal(t, []int{1, 0}, q.(InsertQuery).Targets)

	_, err = analyze(t, a, "INSERT INTO s.t (col1, col1) VALUES (1, 2)")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42701", se.Code)

	_, err = analyze(t, a, "INSERT INTO s.t (col1) VALUES (1, 2)")
	se = sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42601", se.Code)
}

func TestAnalyzeUpdateResolvesAssignments(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "UPDATE s.t SET col1 = col1 + 1 WHERE col2 = 'x'")
	require.NoError(t, err)
	up := q.(UpdateQuery)
	require.Len(t, up.Assignments, 1)
	require.Equal(t, 0, up.Assignments[0].Ordinal)
	require.NotNil(t, up.Filter)

	_, err = analyze(t, a, "UPDATE s.t SET nope = 1")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42703", se.Code)
}

func TestAnalyzeUnqualifiedTableUsesDefaultSchema(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := analyze(t, a, "SELECT * FROM t")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	// The default schema exists but holds no such table.
	require.Equal(t, "42P01", se.Code)
}

func TestParamCount(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "UPDATE s.t SET col1 = $2 WHERE col1 = $1")
	require.NoError(t, err)
	require.Equal(t, 2, ParamCount(q))

	q, err = analyze(t, a, "SELECT * FROM s.t")
	require.NoError(t, err)
	require.Equal(t, 0, ParamCount(q))
}

func TestAnalyzeProjectionExpressionName(t *testing.T) {
	a := newTestAnalyzer(t)
	q, err := analyze(t, a, "SELECT col1 + 1 FROM s.t")
	require.NoError(t, err)
	require.Equal(t, "?column?", q.(SelectQuery).Columns[0].Name)
}
