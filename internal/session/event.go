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
	"emberdb/internal/plan"
	"emberdb/internal/types"
)

// Event is one server response. The protocol edge renders events into
// backend messages.
type Event interface {
	event()
}

// ParseComplete acknowledges a Parse command.
type ParseComplete struct{}

func (ParseComplete) event() {}

// BindComplete acknowledges a Bind command.
type BindComplete struct{}

func (BindComplete) event() {}

// CloseComplete acknowledges a Close command.
type CloseComplete struct{}

func (CloseComplete) event() {}

// QueryComplete marks the end of a command cycle; the connection is ready
// for the next command.
type QueryComplete struct{}

func (QueryComplete) event() {}

// StatementParameters reports a prepared statement's resolved parameter
// types.
type StatementParameters struct {
	Types []types.Type
}

func (StatementParameters) event() {}

// StatementDescription reports a prepared statement's result columns;
// empty for statements that return no rows.
type StatementDescription struct {
	Columns []plan.Description
}

func (StatementDescription) event() {}

// ResultColumn describes one column of a result set, including the
// format its DataRow cells use.
type ResultColumn struct {
	Name   string
	Type   types.Type
	Format int16
}

// RowDescription precedes the data rows of a result set.
type RowDescription struct {
	Columns []ResultColumn
}

func (RowDescription) event() {}

// DataRow is one result row. A nil cell is NULL; otherwise the cell is
// encoded in its column's format.
type DataRow struct {
	Values [][]byte
}

func (DataRow) event() {}

// Completion events, one per statement class.
type (
	RecordsSelected struct{ Count int }
	RecordsInserted struct{ Count int }
	RecordsUpdated  struct{ Count int }
	RecordsDeleted  struct{ Count int }

	SchemaCreated struct{}
	SchemaDropped struct{}
	TableCreated  struct{}
	TableDropped  struct{}

	TransactionStarted    struct{}
	TransactionCommitted  struct{}
	TransactionRolledBack struct{}

	SettingApplied       struct{ Name string }
	StatementPrepared    struct{}
	StatementDeallocated struct{}
)

func (RecordsSelected) event()       {}
func (RecordsInserted) event()       {}
func (RecordsUpdated) event()        {}
func (RecordsDeleted) event()        {}
func (SchemaCreated) event()         {}
func (SchemaDropped) event()         {}
func (TableCreated) event()          {}
func (TableDropped) event()          {}
func (TransactionStarted) event()    {}
func (TransactionCommitted) event()  {}
func (TransactionRolledBack) event() {}
func (SettingApplied) event()        {}
func (StatementPrepared) event()     {}
func (StatementDeallocated) event()  {}

// ErrorResponse reports a failed command with its SQLSTATE code.
type ErrorResponse struct {
	Code    string
	Message string
}

func (ErrorResponse) event() {}
