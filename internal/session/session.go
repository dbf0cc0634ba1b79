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

/*
Package session implements the per-connection query state machine.

A session consumes commands and produces events; it knows nothing about
the wire format. The simple-query path parses, plans, and executes in one
step. The extended path keeps named prepared statements and portals:
Parse stores a statement, Describe resolves its parameter and result
types through the full type pipeline, Bind decodes parameter values into
a portal, and Execute runs the portal's plan inside a single storage
transaction. After an error, extended commands are skipped until the
next Sync.
*/
package session

import (
	"emberdb/internal/analysis"
	"emberdb/internal/catalog"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/logging"
	"emberdb/internal/plan"
	"emberdb/internal/sql"
	"emberdb/internal/storage"
	"emberdb/internal/types"
	"emberdb/internal/typing"
)

// Options carries session feature flags.
type Options struct {
	// CreateTableIfNotExists enables the IF NOT EXISTS clause on CREATE
	// TABLE.
	CreateTableIfNotExists bool
}

// Session is one connection's state machine. It is not safe for
// concurrent use; each connection owns exactly one session.
type Session struct {
	engine   *storage.Engine
	catalog  *catalog.Manager
	analyzer *analysis.Analyzer
	log      *logging.Logger
	opts     Options

	prepared map[string]*preparedStatement
	portals  map[string]*portal

	// failed suppresses extended commands until the next Sync.
	failed bool
}

// preparedStatement is a parsed statement plus its memoized description.
type preparedStatement struct {
	name     string
	raw      string
	stmt     sql.Statement
	declared []types.Type

	described bool
	typed     typing.Query // nil for DDL and session statements
	params    []types.Type
	columns   []plan.Description
}

// portal is a bound, executable statement.
type portal struct {
	statement     *preparedStatement
	params        []types.Value
	resultFormats []int16
	plan          plan.Plan // nil for DDL and session statements
}

// New creates a session over the shared engine and catalog.
func New(engine *storage.Engine, cat *catalog.Manager, opts Options) *Session {
	return &Session{
		engine:   engine,
		catalog:  cat,
		analyzer: analysis.NewAnalyzer(cat),
		log:      logging.NewLogger("session"),
		opts:     opts,
		prepared: make(map[string]*preparedStatement),
		portals:  make(map[string]*portal),
	}
}

// Handle processes one command and returns the events it produced, in
// emission order.
func (s *Session) Handle(cmd Command) []Event {
	switch cmd := cmd.(type) {
	case Query:
		return s.handleQuery(cmd.SQL)
	case Parse:
		return s.extended(func() ([]Event, error) { return s.handleParse(cmd) })
	case Bind:
		return s.extended(func() ([]Event, error) { return s.handleBind(cmd) })
	case DescribeStatement:
		return s.extended(func() ([]Event, error) { return s.handleDescribeStatement(cmd.Name) })
	case DescribePortal:
		return s.extended(func() ([]Event, error) { return s.handleDescribePortal(cmd.Name) })
	case Execute:
		return s.extended(func() ([]Event, error) { return s.handleExecute(cmd.Portal) })
	case CloseStatement:
		return s.extended(func() ([]Event, error) {
			delete(s.prepared, cmd.Name)
			return []Event{CloseComplete{}}, nil
		})
	case ClosePortal:
		return s.extended(func() ([]Event, error) {
			delete(s.portals, cmd.Name)
			return []Event{CloseComplete{}}, nil
		})
	case Sync:
		s.failed = false
		return []Event{QueryComplete{}}
	case Flush:
		// Draining the output buffer is the protocol edge's business.
		return nil
	case Terminate:
		s.prepared = make(map[string]*preparedStatement)
		s.portals = make(map[string]*portal)
		return nil
	}
	return []Event{s.errorEvent(sqlerr.ProtocolViolation("unrecognized command"))}
}

// extended runs one extended-protocol command, skipping it entirely when
// a previous command in the batch failed.
func (s *Session) extended(fn func() ([]Event, error)) []Event {
	if s.failed {
		return nil
	}
	events, err := fn()
	if err != nil {
		s.failed = true
		return []Event{s.errorEvent(err)}
	}
	return events
}

func (s *Session) errorEvent(err error) ErrorResponse {
	if se := sqlerr.AsSqlError(err); se != nil {
		return ErrorResponse{Code: se.Code, Message: se.Message}
	}
	s.log.Error("internal error", "error", err)
	internal := sqlerr.Internal(err)
	return ErrorResponse{Code: internal.Code, Message: internal.Message}
}

// handleQuery is the simple-query path: parse, plan, and execute in one
// step, with every result cell in text format.
func (s *Session) handleQuery(text string) []Event {
	stmt, err := sql.Parse(text)
	if err != nil {
		return []Event{s.errorEvent(err), QueryComplete{}}
	}
	events, err := s.runStatement(stmt)
	if err != nil {
		return []Event{s.errorEvent(err), QueryComplete{}}
	}
	return append(events, QueryComplete{})
}

// runStatement executes one parsed statement with no bound parameters.
func (s *Session) runStatement(stmt sql.Statement) ([]Event, error) {
	switch stmt := stmt.(type) {
	case sql.CreateSchemaStmt:
		if _, err := s.catalog.CreateSchema(stmt.Name, stmt.IfNotExists); err != nil {
			return nil, err
		}
		return []Event{SchemaCreated{}}, nil
	case sql.DropSchemaStmt:
		strategy := catalog.Restrict
		if stmt.Cascade {
			strategy = catalog.Cascade
		}
		for _, name := range stmt.Names {
			if _, err := s.catalog.DropSchema(name, strategy, stmt.IfExists); err != nil {
				return nil, err
			}
		}
		return []Event{SchemaDropped{}}, nil
	case sql.CreateTableStmt:
		if stmt.IfNotExists && !s.opts.CreateTableIfNotExists {
			return nil, sqlerr.FeatureNotSupported("CREATE TABLE IF NOT EXISTS")
		}
		columns := make([]catalog.ColumnSpec, len(stmt.Columns))
		for i, col := range stmt.Columns {
			columns[i] = catalog.ColumnSpec{Name: col.Name, Type: col.Type}
		}
		schema := stmt.Table.Schema
		if schema == "" {
			schema = catalog.DefaultCatalog
		}
		if _, err := s.catalog.CreateTable(schema, stmt.Table.Name, columns, stmt.IfNotExists); err != nil {
			return nil, err
		}
		return []Event{TableCreated{}}, nil
	case sql.DropTableStmt:
		for _, table := range stmt.Tables {
			schema := table.Schema
			if schema == "" {
				schema = catalog.DefaultCatalog
			}
			if _, err := s.catalog.DropTable(schema, table.Name, stmt.IfExists); err != nil {
				return nil, err
			}
		}
		return []Event{TableDropped{}}, nil
	case sql.BeginStmt:
		return []Event{TransactionStarted{}}, nil
	case sql.CommitStmt:
		return []Event{TransactionCommitted{}}, nil
	case sql.RollbackStmt:
		return []Event{TransactionRolledBack{}}, nil
	case sql.SetStmt:
		// Settings are acknowledged but not honored.
		return []Event{SettingApplied{Name: stmt.Name}}, nil
	case sql.PrepareStmt:
		s.prepared[stmt.Name] = &preparedStatement{
			name:     stmt.Name,
			stmt:     stmt.Statement,
			declared: stmt.ParamTypes,
		}
		return []Event{StatementPrepared{}}, nil
	case sql.ExecuteStmt:
		return s.runPreparedWithArgs(stmt)
	case sql.DeallocateStmt:
		if stmt.All {
			s.prepared = make(map[string]*preparedStatement)
			return []Event{StatementDeallocated{}}, nil
		}
		if _, ok := s.prepared[stmt.Name]; !ok {
			return nil, sqlerr.PreparedStatementDoesNotExist(stmt.Name)
		}
		delete(s.prepared, stmt.Name)
		return []Event{StatementDeallocated{}}, nil
	}
	return s.runDML(stmt, nil, nil, nil)
}

// runDML pushes a DML statement through analysis, typing, planning, and
// execution inside one storage transaction.
func (s *Session) runDML(stmt sql.Statement, declared []types.Type, params []types.Value, resultFormats []int16) ([]Event, error) {
	q, err := s.analyzer.Analyze(stmt)
	if err != nil {
		return nil, err
	}
	typed, err := typing.TypeQuery(q, declared)
	if err != nil {
		return nil, err
	}
	p, err := plan.New(typed)
	if err != nil {
		return nil, err
	}
	return s.executePlan(p, params, resultFormats)
}

func (s *Session) executePlan(p plan.Plan, params []types.Value, resultFormats []int16) ([]Event, error) {
	var out plan.Outcome
	err := s.engine.Transaction(func(tx *storage.Tx) error {
		var err error
		out, err = p.Execute(tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.outcomeEvents(out, resultFormats)
}

// outcomeEvents renders a plan outcome: completion counts for writes, a
// row description plus the data rows for reads.
func (s *Session) outcomeEvents(out plan.Outcome, resultFormats []int16) ([]Event, error) {
	switch out := out.(type) {
	case plan.Inserted:
		return []Event{RecordsInserted{Count: out.Count}}, nil
	case plan.Updated:
		return []Event{RecordsUpdated{Count: out.Count}}, nil
	case plan.Deleted:
		return []Event{RecordsDeleted{Count: out.Count}}, nil
	case plan.Selected:
		formats, err := padFormats(resultFormats, len(out.Columns))
		if err != nil {
			return nil, err
		}
		events := []Event{RowDescription{Columns: describeColumns(out.Columns, formats)}}
		for _, row := range out.Rows {
			cells := make([][]byte, len(row))
			for i, v := range row {
				if v.IsNull() {
					continue
				}
				if formats[i] == FormatBinary {
					cells[i] = types.EncodeBinary(v)
				} else {
					cells[i] = []byte(v.Text())
				}
			}
			events = append(events, DataRow{Values: cells})
		}
		return append(events, RecordsSelected{Count: len(out.Rows)}), nil
	}
	return nil, sqlerr.Internal(nil)
}

func describeColumns(columns []plan.Description, formats []int16) []ResultColumn {
	out := make([]ResultColumn, len(columns))
	for i, col := range columns {
		out[i] = ResultColumn{Name: col.Name, Type: col.Type, Format: formats[i]}
	}
	return out
}

// padFormats normalizes a wire format list against n values: empty means
// all text, a single code repeats, and otherwise the list must match
// exactly.
func padFormats(formats []int16, n int) ([]int16, error) {
	switch {
	case n == 0:
		return nil, nil
	case len(formats) == 0:
		return make([]int16, n), nil
	case len(formats) == 1:
		out := make([]int16, n)
		for i := range out {
			out[i] = formats[0]
		}
		return out, nil
	case len(formats) == n:
		return formats, nil
	}
	return nil, sqlerr.ProtocolViolation("format codes do not match values")
}

// runPreparedWithArgs is the simple-query EXECUTE path: argument
// expressions are evaluated as constants and cast to the statement's
// resolved parameter types.
func (s *Session) runPreparedWithArgs(stmt sql.ExecuteStmt) ([]Event, error) {
	ps, ok := s.prepared[stmt.Name]
	if !ok {
		return nil, sqlerr.PreparedStatementDoesNotExist(stmt.Name)
	}
	if err := s.describe(ps); err != nil {
		return nil, err
	}
	if len(stmt.Args) != len(ps.params) {
		return nil, sqlerr.BindParameterCountMismatch(ps.name, len(stmt.Args), len(ps.params))
	}
	params := make([]types.Value, len(stmt.Args))
	for i, arg := range stmt.Args {
		v, err := constValue(arg)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() {
			if v, err = v.Cast(ps.params[i]); err != nil {
				return nil, err
			}
		}
		params[i] = v
	}
	if ps.typed == nil {
		return nil, sqlerr.FeatureNotSupported("EXECUTE of a non-DML statement")
	}
	p, err := plan.New(ps.typed)
	if err != nil {
		return nil, err
	}
	return s.executePlan(p, params, nil)
}

// constValue evaluates an argument expression of EXECUTE. Only constant
// expressions are allowed.
func constValue(e sql.Expression) (types.Value, error) {
	switch e := e.(type) {
	case sql.NumberLit:
		lit, err := typing.ConstNumber(e.Text)
		if err != nil {
			return types.Null, err
		}
		return lit, nil
	case sql.StringLit:
		return types.NewString(e.Value), nil
	case sql.BoolLit:
		return types.NewBool(e.Value), nil
	case sql.NullLit:
		return types.Null, nil
	case sql.UnaryExpr:
		v, err := constValue(e.Operand)
		if err != nil {
			return types.Null, err
		}
		return types.EvalUnary(e.Op, v)
	}
	return types.Null, sqlerr.FeatureNotSupported("non-constant EXECUTE argument")
}

// handleParse stores (or refreshes) a prepared statement. A failed parse
// leaves the statement map untouched.
func (s *Session) handleParse(cmd Parse) ([]Event, error) {
	if existing, ok := s.prepared[cmd.Name]; ok && existing.raw == cmd.SQL {
		// Same SQL under the same name: reuse, adopting the new declared
		// types when the client supplied a full set.
		if len(cmd.ParamTypes) > 0 && allDeclared(cmd.ParamTypes) {
			existing.declared = cmd.ParamTypes
			existing.described = false
		}
		return []Event{ParseComplete{}}, nil
	}
	stmt, err := sql.Parse(cmd.SQL)
	if err != nil {
		return nil, err
	}
	s.prepared[cmd.Name] = &preparedStatement{
		name:     cmd.Name,
		raw:      cmd.SQL,
		stmt:     stmt,
		declared: cmd.ParamTypes,
	}
	return []Event{ParseComplete{}}, nil
}

func allDeclared(ts []types.Type) bool {
	for _, t := range ts {
		if t.Family.IsUnknown() {
			return false
		}
	}
	return true
}

// describe resolves and memoizes a statement's parameter types and
// result columns through the type pipeline.
func (s *Session) describe(ps *preparedStatement) error {
	if ps.described {
		return nil
	}
	switch ps.stmt.(type) {
	case sql.InsertStmt, sql.SelectStmt, sql.UpdateStmt, sql.DeleteStmt:
		q, err := s.analyzer.Analyze(ps.stmt)
		if err != nil {
			return err
		}
		typed, err := typing.TypeQuery(q, ps.declared)
		if err != nil {
			return err
		}
		ps.typed = typed
		ps.params = typed.ParamTypes()
		ps.columns = plan.Describe(typed)
	default:
		// DDL and session statements take no parameters and return no
		// rows.
		ps.typed = nil
		ps.params = nil
		ps.columns = nil
	}
	ps.described = true
	return nil
}

func (s *Session) handleDescribeStatement(name string) ([]Event, error) {
	ps, ok := s.prepared[name]
	if !ok {
		return nil, sqlerr.PreparedStatementDoesNotExist(name)
	}
	if err := s.describe(ps); err != nil {
		return nil, err
	}
	return []Event{
		StatementParameters{Types: ps.params},
		StatementDescription{Columns: ps.columns},
	}, nil
}

func (s *Session) handleDescribePortal(name string) ([]Event, error) {
	p, ok := s.portals[name]
	if !ok {
		return nil, sqlerr.PortalDoesNotExist(name)
	}
	ps := p.statement
	if len(ps.columns) == 0 {
		return []Event{StatementDescription{}}, nil
	}
	formats, err := padFormats(p.resultFormats, len(ps.columns))
	if err != nil {
		return nil, err
	}
	return []Event{RowDescription{Columns: describeColumns(ps.columns, formats)}}, nil
}

// handleBind decodes parameter values against the statement's resolved
// types and stores the resulting portal.
func (s *Session) handleBind(cmd Bind) ([]Event, error) {
	ps, ok := s.prepared[cmd.Statement]
	if !ok {
		return nil, sqlerr.PreparedStatementDoesNotExist(cmd.Statement)
	}
	if err := s.describe(ps); err != nil {
		return nil, err
	}
	if len(cmd.Params) != len(ps.params) {
		return nil, sqlerr.BindParameterCountMismatch(ps.name, len(cmd.Params), len(ps.params))
	}
	formats, err := padFormats(cmd.ParamFormats, len(cmd.Params))
	if err != nil {
		return nil, err
	}
	params := make([]types.Value, len(cmd.Params))
	for i, raw := range cmd.Params {
		if raw == nil {
			params[i] = types.Null
			continue
		}
		var v types.Value
		if formats[i] == FormatBinary {
			v, err = types.DecodeBinary(ps.params[i], raw)
		} else {
			v, err = types.DecodeText(ps.params[i], raw)
		}
		if err != nil {
			return nil, sqlerr.InvalidParameterValue(err.Error())
		}
		params[i] = v
	}
	var pl plan.Plan
	if ps.typed != nil {
		if pl, err = plan.New(ps.typed); err != nil {
			return nil, err
		}
	}
	s.portals[cmd.Portal] = &portal{
		statement:     ps,
		params:        params,
		resultFormats: cmd.ResultFormats,
		plan:          pl,
	}
	return []Event{BindComplete{}}, nil
}

// handleExecute runs a portal to completion.
func (s *Session) handleExecute(name string) ([]Event, error) {
	p, ok := s.portals[name]
	if !ok {
		return nil, sqlerr.PortalDoesNotExist(name)
	}
	if p.plan == nil {
		// A portal over DDL or a session statement runs the statement
		// directly.
		return s.runStatement(p.statement.stmt)
	}
	return s.executePlan(p.plan, p.params, p.resultFormats)
}
