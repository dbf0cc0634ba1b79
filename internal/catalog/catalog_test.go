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

package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	sqlerr "emberdb/internal/errors"
	"emberdb/internal/storage"
	"emberdb/internal/types"
)

func newTestCatalog(t *testing.T) (*Manager, *storage.Engine) {
	t.Helper()
	e, err := storage.Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	m, err := Open(e)
	require.NoError(t, err)
	return m, e
}

func smallintCols() []ColumnSpec {
	return []ColumnSpec{{Name: "col1", Type: types.TypeOf(types.SmallInt)}}
}

func TestCreateSchema(t *testing.T) {
	m, _ := newTestCatalog(t)
	res, err := m.CreateSchema("schema_name", false)
	require.NoError(t, err)
	require.Equal(t, SchemaCreated, res)

	s, err := m.Schema("schema_name")
	require.NoError(t, err)
	require.Equal(t, "schema_name", s.Name)
}

func TestCreateSchemaTwiceFails(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("schema_name", false)
	require.NoError(t, err)

	_, err = m.CreateSchema("schema_name", false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P06", se.Code)
	require.Equal(t, `schema "schema_name" already exists`, se.Message)

	res, err := m.CreateSchema("schema_name", true)
	require.NoError(t, err)
	require.Equal(t, SchemaSkipped, res)
}

func TestCreateTableNeedsSchema(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateTable("nope", "t", smallintCols(), false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "3F000", se.Code)
}

func TestCreateTableAndLookup(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	res, err := m.CreateTable("s", "t", []ColumnSpec{
		{Name: "a", Type: types.TypeOf(types.SmallInt)},
		{Name: "b", Type: types.SizedType(types.VarChar, 10)},
	}, false)
	require.NoError(t, err)
	require.Equal(t, TableCreated, res)

	tbl, err := m.Table("s", "t")
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 2)
	require.Equal(t, "a", tbl.Columns[0].Name)
	require.Equal(t, types.SmallInt, tbl.Columns[0].Type.Family)
	require.Equal(t, uint32(10), tbl.Columns[1].Type.Length)

	_, err = m.CreateTable("s", "t", smallintCols(), false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P07", se.Code)
}

func TestDuplicateColumnRejected(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", []ColumnSpec{
		{Name: "a", Type: types.TypeOf(types.SmallInt)},
		{Name: "a", Type: types.TypeOf(types.Integer)},
	}, false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42701", se.Code)
}

func TestDropSchemaRestrictWithTables(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", smallintCols(), false)
	require.NoError(t, err)

	_, err = m.DropSchema("s", Restrict, false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "2BP01", se.Code)

	dropped, err := m.DropSchema("s", Cascade, false)
	require.NoError(t, err)
	require.True(t, dropped)

	_, err = m.Schema("s")
	require.Error(t, err)
}

func TestDropMissingSchemaIfExists(t *testing.T) {
	m, _ := newTestCatalog(t)
	dropped, err := m.DropSchema("nope", Restrict, true)
	require.NoError(t, err)
	require.False(t, dropped)

	_, err = m.DropSchema("nope", Restrict, false)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "3F000", se.Code)
}

func TestDropTable(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", smallintCols(), false)
	require.NoError(t, err)

	dropped, err := m.DropTable("s", "t", false)
	require.NoError(t, err)
	require.True(t, dropped)

	_, err = m.Table("s", "t")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P01", se.Code)

	dropped, err = m.DropTable("s", "t", true)
	require.NoError(t, err)
	require.False(t, dropped)
}

func TestColumnOrdinalsOneBased(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", []ColumnSpec{
		{Name: "a", Type: types.TypeOf(types.SmallInt)},
		{Name: "b", Type: types.TypeOf(types.Integer)},
		{Name: "c", Type: types.TypeOf(types.Bool)},
	}, false)
	require.NoError(t, err)

	tbl, err := m.Table("s", "t")
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 3)
	for i, col := range tbl.Columns {
		require.Equal(t, i+1, col.Ordinal)
	}
}

func TestCreateCatalogTwiceFails(t *testing.T) {
	m, _ := newTestCatalog(t)
	require.NoError(t, m.CreateCatalog("analytics"))

	err := m.CreateCatalog("analytics")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P04", se.Code)
	require.Equal(t, `catalog "analytics" already exists`, se.Message)

	// The bootstrap catalog counts as existing too.
	err = m.CreateCatalog(DefaultCatalog)
	se = sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P04", se.Code)
}

func TestDropCatalogStrategies(t *testing.T) {
	m, _ := newTestCatalog(t)
	_, err := m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", smallintCols(), false)
	require.NoError(t, err)

	err = m.DropCatalog(DefaultCatalog, Restrict)
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "2BP01", se.Code)

	require.NoError(t, m.DropCatalog(DefaultCatalog, Cascade))
	_, err = m.Schema("s")
	require.Error(t, err)

	err = m.DropCatalog(DefaultCatalog, Restrict)
	se = sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "3D000", se.Code)
}

func TestCatalogRecordsPersist(t *testing.T) {
	e, err := storage.Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	m, err := Open(e)
	require.NoError(t, err)
	require.NoError(t, m.CreateCatalog("analytics"))

	reopened, err := Open(e)
	require.NoError(t, err)
	err = reopened.CreateCatalog("analytics")
	se := sqlerr.AsSqlError(err)
	require.NotNil(t, se)
	require.Equal(t, "42P04", se.Code)

	// An empty catalog drops under Restrict and frees its name.
	require.NoError(t, reopened.DropCatalog("analytics", Restrict))
	require.NoError(t, reopened.CreateCatalog("analytics"))
}

func TestReopenRebuildsIndexAndIDGenerators(t *testing.T) {
	e, err := storage.Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	m, err := Open(e)
	require.NoError(t, err)
	_, err = m.CreateSchema("s", false)
	require.NoError(t, err)
	_, err = m.CreateTable("s", "t", []ColumnSpec{
		{Name: "a", Type: types.TypeOf(types.Integer)},
		{Name: "b", Type: types.TypeOf(types.Bool)},
	}, false)
	require.NoError(t, err)
	firstTable, err := m.Table("s", "t")
	require.NoError(t, err)

	// A second manager over the same engine sees the persisted state.
	reopened, err := Open(e)
	require.NoError(t, err)
	tbl, err := reopened.Table("s", "t")
	require.NoError(t, err)
	require.Equal(t, firstTable.ID, tbl.ID)
	require.Len(t, tbl.Columns, 2)
	require.Equal(t, "b", tbl.Columns[1].Name)
	require.Equal(t, types.Bool, tbl.Columns[1].Type.Family)
	require.Equal(t, 2, tbl.Columns[1].Ordinal)

	// New ids continue past the highest persisted id.
	_, err = reopened.CreateTable("s", "t2", smallintCols(), false)
	require.NoError(t, err)
	t2, err := reopened.Table("s", "t2")
	require.NoError(t, err)
	require.Greater(t, t2.ID, tbl.ID)
	require.Greater(t, t2.Columns[0].ID, tbl.Columns[1].ID)
}
