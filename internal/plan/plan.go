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
Package plan executes typed queries against the storage engine.

Plans are straight table scans: SELECT iterates the table and projects
matching rows, UPDATE and DELETE collect their victims during the scan
and apply the changes after it, INSERT appends under freshly generated
row ids. Row ids are monotonic per table, so an unfiltered scan yields
rows in insertion order.
*/
package plan

import (
	"encoding/binary"

	"emberdb/internal/analysis"
	sqlerr "emberdb/internal/errors"
	"emberdb/internal/storage"
	"emberdb/internal/types"
	"emberdb/internal/typing"
)

// Description is one column of a result set.
type Description struct {
	Name string
	Type types.Type
}

// Outcome is the result of executing a plan.
type Outcome interface {
	outcome()
}

// Inserted reports the number of rows written.
type Inserted struct{ Count int }

func (Inserted) outcome() {}

// Updated reports the number of rows rewritten.
type Updated struct{ Count int }

func (Updated) outcome() {}

// Deleted reports the number of rows removed.
type Deleted struct{ Count int }

func (Deleted) outcome() {}

// Selected carries a result set: the projection schema and the rows, each
// aligned with the schema.
type Selected struct {
	Columns []Description
	Rows    [][]types.Value
}

func (Selected) outcome() {}

// Plan is an executable query. Params are the portal's decoded parameter
// values in order.
type Plan interface {
	Execute(tx *storage.Tx, params []types.Value) (Outcome, error)
}

// New builds the plan for a typed query.
func New(q typing.Query) (Plan, error) {
	switch q := q.(type) {
	case typing.Insert:
		return &insertPlan{q: q}, nil
	case typing.Select:
		return &selectPlan{q: q}, nil
	case typing.Update:
		return &updatePlan{q: q}, nil
	case typing.Delete:
		return &deletePlan{q: q}, nil
	}
	return nil, sqlerr.FeatureNotSupported("statement")
}

// Describe returns the result schema of a query: the projection for a
// SELECT, empty for everything else.
func Describe(q typing.Query) []Description {
	sel, ok := q.(typing.Select)
	if !ok {
		return nil
	}
	columns := make([]Description, len(sel.Columns))
	for i, col := range sel.Columns {
		columns[i] = Description{Name: col.Name, Type: col.Expr.Type()}
	}
	return columns
}

type insertPlan struct {
	q typing.Insert
}

func (p *insertPlan) Execute(tx *storage.Tx, params []types.Value) (Outcome, error) {
	table := p.q.Table
	next, err := nextRowID(tx, table.SchemaName, table.TableName)
	if err != nil {
		return nil, err
	}
	for _, row := range p.q.Rows {
		values := make([]types.Value, len(table.Columns))
		for i := range values {
			values[i] = types.Null
		}
		for j, e := range row {
			v, err := e.Eval(nil, params)
			if err != nil {
				return nil, err
			}
			values[p.q.Targets[j]] = v
		}
		if err := tx.Write(table.SchemaName, table.TableName, rowKey(next), encodeRow(values)); err != nil {
			return nil, err
		}
		next++
	}
	return Inserted{Count: len(p.q.Rows)}, nil
}

type selectPlan struct {
	q typing.Select
}

func (p *selectPlan) Execute(tx *storage.Tx, params []types.Value) (Outcome, error) {
	table := p.q.Table
	var rows [][]types.Value
	err := scan(tx, table, func(_ []byte, row []types.Value) error {
		match, err := matches(p.q.Filter, row, params)
		if err != nil || !match {
			return err
		}
		projected := make([]types.Value, len(p.q.Columns))
		for i, col := range p.q.Columns {
			v, err := col.Expr.Eval(row, params)
			if err != nil {
				return err
			}
			projected[i] = v
		}
		rows = append(rows, projected)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Selected{Columns: Describe(p.q), Rows: rows}, nil
}

type updatePlan struct {
	q typing.Update
}

func (p *updatePlan) Execute(tx *storage.Tx, params []types.Value) (Outcome, error) {
	table := p.q.Table
	type change struct {
		key []byte
		row []types.Value
	}
	var changes []change
	err := scan(tx, table, func(key []byte, row []types.Value) error {
		match, err := matches(p.q.Filter, row, params)
		if err != nil || !match {
			return err
		}
		// Every assignment sees the pre-image row.
		updated := append([]types.Value(nil), row...)
		for _, assign := range p.q.Assignments {
			v, err := assign.Value.Eval(row, params)
			if err != nil {
				return err
			}
			updated[assign.Ordinal] = v
		}
		changes = append(changes, change{key: append([]byte(nil), key...), row: updated})
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, ch := range changes {
		if err := tx.Write(table.SchemaName, table.TableName, ch.key, encodeRow(ch.row)); err != nil {
			return nil, err
		}
	}
	return Updated{Count: len(changes)}, nil
}

type deletePlan struct {
	q typing.Delete
}

func (p *deletePlan) Execute(tx *storage.Tx, params []types.Value) (Outcome, error) {
	table := p.q.Table
	var victims [][]byte
	err := scan(tx, table, func(key []byte, row []types.Value) error {
		match, err := matches(p.q.Filter, row, params)
		if err != nil || !match {
			return err
		}
		victims = append(victims, append([]byte(nil), key...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, key := range victims {
		if err := tx.Delete(table.SchemaName, table.TableName, key); err != nil {
			return nil, err
		}
	}
	return Deleted{Count: len(victims)}, nil
}

// scan walks every row of a table in key order, decoding each into column
// values.
func scan(tx *storage.Tx, table analysis.TableInfo, fn func(key []byte, row []types.Value) error) error {
	it, err := tx.Read(table.SchemaName, table.TableName)
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()
	for it.Next() {
		row, err := decodeRow(table.Columns, it.Value())
		if err != nil {
			return err
		}
		if err := fn(it.Key(), row); err != nil {
			return err
		}
	}
	return nil
}

// matches evaluates a filter against a row. A nil filter matches
// everything; NULL does not match.
func matches(filter typing.Expr, row, params []types.Value) (bool, error) {
	if filter == nil {
		return true, nil
	}
	v, err := filter.Eval(row, params)
	if err != nil {
		return false, err
	}
	return !v.IsNull() && v.Bool(), nil
}

// nextRowID finds the next free row id by looking at the table's greatest
// key. Ids start at 1.
func nextRowID(tx *storage.Tx, schema, table string) (uint64, error) {
	it, err := tx.Read(schema, table)
	if err != nil {
		return 0, err
	}
	defer func() { _ = it.Close() }()
	var last []byte
	for it.Next() {
		last = append(last[:0], it.Key()...)
	}
	if len(last) != 8 {
		return 1, nil
	}
	return binary.BigEndian.Uint64(last) + 1, nil
}
