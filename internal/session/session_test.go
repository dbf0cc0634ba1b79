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

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"emberdb/internal/catalog"
	"emberdb/internal/plan"
	"emberdb/internal/storage"
	"emberdb/internal/types"
)

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	e, err := storage.Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	m, err := catalog.Open(e)
	require.NoError(t, err)
	return New(e, m, opts)
}

func query(s *Session, text string) []Event {
	return s.Handle(Query{SQL: text})
}

func TestCreateThenDuplicateSchema(t *testing.T) {
	s := newSession(t, Options{})

	events := query(s, "create schema schema_name;")
	require.Equal(t, []Event{SchemaCreated{}, QueryComplete{}}, events)

	events = query(s, "create schema schema_name;")
	require.Equal(t, []Event{
		ErrorResponse{Code: "42P06", Message: `schema "schema_name" already exists`},
		QueryComplete{},
	}, events)
}

func TestInsertThenSelectSingleRow(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema schema_name")
	query(s, "create table schema_name.table_name (column_test smallint)")

	events := query(s, "insert into schema_name.table_name values (123);")
	require.Equal(t, []Event{RecordsInserted{Count: 1}, QueryComplete{}}, events)

	events = query(s, "select * from schema_name.table_name;")
	require.Equal(t, []Event{
		RowDescription{Columns: []ResultColumn{
			{Name: "column_test", Type: types.TypeOf(types.SmallInt), Format: FormatText},
		}},
		DataRow{Values: [][]byte{[]byte("123")}},
		RecordsSelected{Count: 1},
		QueryComplete{},
	}, events)
}

func TestExtendedParameterizedInsert(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	events := s.Handle(Parse{
		Name:       "stmt",
		SQL:        "insert into s.t values ($1)",
		ParamTypes: []types.Type{types.TypeOf(types.SmallInt)},
	})
	require.Equal(t, []Event{ParseComplete{}}, events)

	events = s.Handle(Bind{
		Portal:       "p",
		Statement:    "stmt",
		ParamFormats: []int16{FormatBinary},
		Params:       [][]byte{{0x00, 0x7B}},
	})
	require.Equal(t, []Event{BindComplete{}}, events)

	events = s.Handle(Execute{Portal: "p"})
	require.Equal(t, []Event{RecordsInserted{Count: 1}}, events)

	require.Equal(t, []Event{QueryComplete{}}, s.Handle(Sync{}))

	events = query(s, "select c from s.t")
	require.Equal(t, DataRow{Values: [][]byte{[]byte("123")}}, events[1])
}

func TestBindWrongParameterCount(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	s.Handle(Parse{Name: "stmt", SQL: "insert into s.t values ($1)"})
	events := s.Handle(Bind{Portal: "p", Statement: "stmt"})
	require.Len(t, events, 1)
	errResp := events[0].(ErrorResponse)
	require.Equal(t, "08P01", errResp.Code)
	require.Equal(t,
		`Bind message supplies 0 parameters, but prepared statement "stmt" requires 1`,
		errResp.Message)

	// Subsequent extended commands are skipped until Sync.
	require.Nil(t, s.Handle(Execute{Portal: "p"}))
	require.Equal(t, []Event{QueryComplete{}}, s.Handle(Sync{}))
	require.Len(t, s.Handle(DescribeStatement{Name: "stmt"}), 2)
}

func TestUpdateAllRows(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c integer)")
	query(s, "insert into s.t values (123), (456)")

	events := query(s, "update s.t set c = 789")
	require.Equal(t, []Event{RecordsUpdated{Count: 2}, QueryComplete{}}, events)

	events = query(s, "select * from s.t")
	require.Equal(t, DataRow{Values: [][]byte{[]byte("789")}}, events[1])
	require.Equal(t, DataRow{Values: [][]byte{[]byte("789")}}, events[2])
	require.Equal(t, RecordsSelected{Count: 2}, events[3])
}

func TestDescribeStatement(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (a integer, b varchar(10))")

	s.Handle(Parse{Name: "ins", SQL: "insert into s.t values ($1, $2)"})
	events := s.Handle(DescribeStatement{Name: "ins"})
	require.Equal(t, []Event{
		StatementParameters{Types: []types.Type{
			types.TypeOf(types.Integer),
			types.SizedType(types.VarChar, 10),
		}},
		StatementDescription{},
	}, events)

	s.Handle(Parse{Name: "sel", SQL: "select a, b from s.t"})
	events = s.Handle(DescribeStatement{Name: "sel"})
	require.Equal(t, []Event{
		StatementParameters{},
		StatementDescription{Columns: []plan.Description{
			{Name: "a", Type: types.TypeOf(types.Integer)},
			{Name: "b", Type: types.SizedType(types.VarChar, 10)},
		}},
	}, events)

	events = s.Handle(DescribeStatement{Name: "missing"})
	require.Equal(t, "26000", events[0].(ErrorResponse).Code)
}

func TestDescribePortal(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (a integer)")

	s.Handle(Parse{Name: "", SQL: "select a from s.t"})
	s.Handle(Bind{Portal: "", Statement: "", ResultFormats: []int16{FormatBinary}})
	events := s.Handle(DescribePortal{Name: ""})
	require.Equal(t, []Event{
		RowDescription{Columns: []ResultColumn{
			{Name: "a", Type: types.TypeOf(types.Integer), Format: FormatBinary},
		}},
	}, events)
}

func TestBinaryResultFormat(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (a smallint)")
	query(s, "insert into s.t values (123)")

	s.Handle(Parse{Name: "", SQL: "select a from s.t"})
	s.Handle(Bind{Portal: "", Statement: "", ResultFormats: []int16{FormatBinary}})
	events := s.Handle(Execute{Portal: ""})
	require.Equal(t, DataRow{Values: [][]byte{{0x00, 0x7B}}}, events[1])
}

func TestInvalidParameterValue(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	s.Handle(Parse{Name: "stmt", SQL: "insert into s.t values ($1)"})
	events := s.Handle(Bind{
		Portal:    "p",
		Statement: "stmt",
		Params:    [][]byte{[]byte("not-a-number")},
	})
	require.Equal(t, "22023", events[0].(ErrorResponse).Code)
}

func TestNullParameter(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	s.Handle(Parse{Name: "stmt", SQL: "insert into s.t values ($1)"})
	s.Handle(Bind{Portal: "p", Statement: "stmt", Params: [][]byte{nil}})
	events := s.Handle(Execute{Portal: "p"})
	require.Equal(t, []Event{RecordsInserted{Count: 1}}, events)

	events = query(s, "select * from s.t where c is null")
	require.Equal(t, RecordsSelected{Count: 1}, events[2])
}

func TestParseReuseAndOverwrite(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	require.Equal(t, []Event{ParseComplete{}},
		s.Handle(Parse{Name: "stmt", SQL: "select c from s.t"}))
	// Same name, same SQL: reused.
	require.Equal(t, []Event{ParseComplete{}},
		s.Handle(Parse{Name: "stmt", SQL: "select c from s.t"}))
	// Same name, different SQL: replaced.
	require.Equal(t, []Event{ParseComplete{}},
		s.Handle(Parse{Name: "stmt", SQL: "select c + 1 from s.t"}))

	events := s.Handle(DescribeStatement{Name: "stmt"})
	desc := events[1].(StatementDescription)
	require.Equal(t, "?column?", desc.Columns[0].Name)
}

func TestParseErrorLeavesStatementsIntact(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	s.Handle(Parse{Name: "stmt", SQL: "select c from s.t"})
	events := s.Handle(Parse{Name: "stmt", SQL: "selec nonsense"})
	require.Equal(t, "42601", events[0].(ErrorResponse).Code)
	s.Handle(Sync{})

	// The earlier statement is still there.
	events = s.Handle(DescribeStatement{Name: "stmt"})
	require.Len(t, events, 2)
}

func TestSimplePrepareExecuteDeallocate(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	events := query(s, "PREPARE plan (smallint) AS INSERT INTO s.t VALUES ($1)")
	require.Equal(t, []Event{StatementPrepared{}, QueryComplete{}}, events)

	events = query(s, "EXECUTE plan (123)")
	require.Equal(t, []Event{RecordsInserted{Count: 1}, QueryComplete{}}, events)

	events = query(s, "EXECUTE plan (1, 2)")
	require.Equal(t, "08P01", events[0].(ErrorResponse).Code)

	events = query(s, "DEALLOCATE plan")
	require.Equal(t, []Event{StatementDeallocated{}, QueryComplete{}}, events)

	events = query(s, "EXECUTE plan (123)")
	require.Equal(t, "26000", events[0].(ErrorResponse).Code)
}

func TestTransactionAndSetAcknowledged(t *testing.T) {
	s := newSession(t, Options{})
	require.Equal(t, []Event{TransactionStarted{}, QueryComplete{}}, query(s, "BEGIN"))
	require.Equal(t, []Event{TransactionCommitted{}, QueryComplete{}}, query(s, "COMMIT"))
	require.Equal(t, []Event{TransactionRolledBack{}, QueryComplete{}}, query(s, "ROLLBACK"))
	require.Equal(t, []Event{SettingApplied{Name: "client_encoding"}, QueryComplete{}},
		query(s, "SET client_encoding TO 'UTF8'"))
}

func TestCreateTableIfNotExistsFlag(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	events := query(s, "create table if not exists s.t (c smallint)")
	require.Equal(t, "0A000", events[0].(ErrorResponse).Code)

	gated := newSession(t, Options{CreateTableIfNotExists: true})
	query(gated, "create schema s")
	require.Equal(t, []Event{TableCreated{}, QueryComplete{}},
		query(gated, "create table if not exists s.t (c smallint)"))
	require.Equal(t, []Event{TableCreated{}, QueryComplete{}},
		query(gated, "create table if not exists s.t (c smallint)"))
}

func TestDropSchemaRestrictAndCascade(t *testing.T) {
	s := newSession(t, Options{})
	query(s, "create schema s")
	query(s, "create table s.t (c smallint)")

	events := query(s, "drop schema s")
	require.Equal(t, "2BP01", events[0].(ErrorResponse).Code)

	events = query(s, "drop schema s cascade")
	require.Equal(t, []Event{SchemaDropped{}, QueryComplete{}}, events)

	events = query(s, "select * from s.t")
	require.Equal(t, "3F000", events[0].(ErrorResponse).Code)
}

func TestSyntaxErrorOnSimpleQuery(t *testing.T) {
	s := newSession(t, Options{})
	events := query(s, "selec 1")
	require.Len(t, events, 2)
	require.Equal(t, "42601", events[0].(ErrorResponse).Code)
	require.Equal(t, QueryComplete{}, events[1])
}
