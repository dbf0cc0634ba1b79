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
Package catalog maintains EmberDB's persistent metadata: which schemas
exist, which tables they contain, and the typed column layout of each table.

Metadata lives in four definition tables inside the reserved system
namespace, keyed by packed big-endian id paths:

	CATALOG_NAMES  (catalog_id)                       -> catalog name
	SCHEMATA       (catalog_id, schema_id)            -> schema name
	TABLES         (catalog_id, schema_id, table_id)  -> table name
	COLUMNS        (catalog_id, schema_id, table_id,
	                column_id)                        -> name, type, ordinal

Numeric ids, not names, are the durable identity of every object. Opening a
database rebuilds the in-memory index from these tables and resumes each id
generator at the highest allocated id plus one, so ids are never reused
within a single lineage of the database files.

The manager keeps a per-catalog RWMutex: reads of the index (name
resolution, column lookups) take the read lock, definition changes take the
write lock and write through to storage before the index is updated.
*/
package catalog

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	sqlerr "emberdb/internal/errors"
	"emberdb/internal/logging"
	"emberdb/internal/storage"
	"emberdb/internal/types"
)

// Reserved names of the system namespace and definition tables.
const (
	SystemNamespace  = "system"
	DefinitionSchema = "DEFINITION_SCHEMA"

	catalogNamesTable = "CATALOG_NAMES"
	schemataTable     = "SCHEMATA"
	tablesTable       = "TABLES"
	columnsTable      = "COLUMNS"

	// DefaultCatalog is the single catalog every database starts with.
	DefaultCatalog = "public"
)

// DropStrategy selects the behavior of a drop over a non-empty container.
type DropStrategy int

const (
	// Restrict fails the drop when dependent objects exist.
	Restrict DropStrategy = iota
	// Cascade drops dependent objects along with the container.
	Cascade
)

// Column describes one column of a table. Ordinals are 1-based and dense:
// the highest ordinal equals the column count.
type Column struct {
	ID      uint64
	Name    string
	Type    types.Type
	Ordinal int
}

// Table describes a user table. Columns are ordered by ordinal.
type Table struct {
	ID       uint64
	SchemaID uint64
	Name     string
	Columns  []Column
}

// Column returns the column with the given name and true, or false when the
// table has no such column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Schema describes a schema and its tables.
type Schema struct {
	ID     uint64
	Name   string
	tables map[string]*Table
}

// Tables lists the schema's tables sorted by name.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// catalogState is the in-memory index of one catalog.
type catalogState struct {
	id      uint64
	name    string
	mu      sync.RWMutex
	schemas map[string]*Schema
	// id generators, resumed at max+1 on open
	nextSchemaID uint64
	nextTableID  uint64
	nextColumnID uint64
}

// Manager is the catalog manager. All definition operations write through
// to the storage engine in their own transaction before the in-memory index
// changes, so a crash between the two leaves only durable state behind.
type Manager struct {
	engine  *storage.Engine
	log     *logging.Logger
	catalog *catalogState

	// catalog-level records; the manager binds to one catalog but keeps the
	// full CATALOG_NAMES registry for create/drop of others.
	mu            sync.Mutex
	catalogs      map[string]uint64
	nextCatalogID uint64
}

// Open loads (or bootstraps) the catalog from the storage engine.
func Open(engine *storage.Engine) (*Manager, error) {
	m := &Manager{
		engine: engine,
		log:    logging.NewLogger("catalog"),
	}
	if err := m.bootstrap(); err != nil {
		return nil, err
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	m.log.Info("Catalog opened",
		"catalog", m.catalog.name, "schemas", len(m.catalog.schemas))
	return m, nil
}

// bootstrap creates the system namespace, the definition tables, and the
// default catalog record on first open.
func (m *Manager) bootstrap() error {
	return m.engine.Transaction(func(tx *storage.Tx) error {
		exists, err := tx.SchemaExists(SystemNamespace)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.CreateSchema(SystemNamespace); err != nil {
			return err
		}
		for _, table := range []string{catalogNamesTable, schemataTable, tablesTable, columnsTable} {
			if err := tx.CreateObject(SystemNamespace, table); err != nil {
				return err
			}
		}
		return tx.Write(SystemNamespace, catalogNamesTable, packIDs(1), []byte(DefaultCatalog))
	})
}

// load rebuilds the in-memory index from the definition tables.
func (m *Manager) load() error {
	state := &catalogState{
		schemas:      map[string]*Schema{},
		nextSchemaID: 1,
		nextTableID:  1,
		nextColumnID: 1,
	}
	m.catalogs = map[string]uint64{}
	m.nextCatalogID = 1
	err := m.engine.View(func(tx *storage.Tx) error {
		if err := scan(tx, catalogNamesTable, func(ids []uint64, val []byte) error {
			m.catalogs[string(val)] = ids[0]
			if ids[0] >= m.nextCatalogID {
				m.nextCatalogID = ids[0] + 1
			}
			// The manager binds to the first catalog record; the rest exist
			// only as CATALOG_NAMES entries.
			if state.id == 0 {
				state.id = ids[0]
				state.name = string(val)
			}
			return nil
		}); err != nil {
			return err
		}

		byID := map[uint64]*Schema{}
		if err := scan(tx, schemataTable, func(ids []uint64, val []byte) error {
			if ids[0] != state.id {
				return nil
			}
			s := &Schema{ID: ids[1], Name: string(val), tables: map[string]*Table{}}
			state.schemas[s.Name] = s
			byID[s.ID] = s
			if s.ID >= state.nextSchemaID {
				state.nextSchemaID = s.ID + 1
			}
			return nil
		}); err != nil {
			return err
		}

		tablesByID := map[uint64]*Table{}
		if err := scan(tx, tablesTable, func(ids []uint64, val []byte) error {
			if ids[0] != state.id {
				return nil
			}
			s, ok := byID[ids[1]]
			if !ok {
				return errors.Newf("table record references unknown schema id %d", ids[1])
			}
			t := &Table{ID: ids[2], SchemaID: s.ID, Name: string(val)}
			s.tables[t.Name] = t
			tablesByID[t.ID] = t
			if t.ID >= state.nextTableID {
				state.nextTableID = t.ID + 1
			}
			return nil
		}); err != nil {
			return err
		}

		return scan(tx, columnsTable, func(ids []uint64, val []byte) error {
			if ids[0] != state.id {
				return nil
			}
			t, ok := tablesByID[ids[2]]
			if !ok {
				return errors.Newf("column record references unknown table id %d", ids[2])
			}
			col, err := decodeColumn(ids[3], val)
			if err != nil {
				return err
			}
			t.Columns = append(t.Columns, col)
			if col.ID >= state.nextColumnID {
				state.nextColumnID = col.ID + 1
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	for _, s := range state.schemas {
		for _, t := range s.tables {
			sort.Slice(t.Columns, func(i, j int) bool {
				return t.Columns[i].Ordinal < t.Columns[j].Ordinal
			})
		}
	}
	m.catalog = state
	return nil
}

// scan walks one definition table, unpacking the id path of each key.
func scan(tx *storage.Tx, table string, fn func(ids []uint64, val []byte) error) error {
	it, err := tx.Read(SystemNamespace, table)
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()
	for it.Next() {
		ids := unpackIDs(it.Key())
		if err := fn(ids, append([]byte(nil), it.Value()...)); err != nil {
			return err
		}
	}
	return nil
}

// packIDs encodes an id path as concatenated big-endian u64s, so that the
// key order of a definition table is the lexicographic order of id paths.
func packIDs(ids ...uint64) []byte {
	out := make([]byte, 0, len(ids)*8)
	for _, id := range ids {
		out = binary.BigEndian.AppendUint64(out, id)
	}
	return out
}

func unpackIDs(key []byte) []uint64 {
	ids := make([]uint64, 0, len(key)/8)
	for len(key) >= 8 {
		ids = append(ids, binary.BigEndian.Uint64(key[:8]))
		key = key[8:]
	}
	return ids
}

// CreateCatalog defines a new catalog record. The manager stays bound to
// the catalog it was opened with; additional catalogs exist only as
// CATALOG_NAMES entries until a manager binds to them.
func (m *Manager) CreateCatalog(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.catalogs[name]; ok {
		return sqlerr.CatalogAlreadyExists(name)
	}
	id := m.nextCatalogID
	err := m.engine.Transaction(func(tx *storage.Tx) error {
		return tx.Write(SystemNamespace, catalogNamesTable, packIDs(id), []byte(name))
	})
	if err != nil {
		return err
	}
	m.nextCatalogID++
	m.catalogs[name] = id
	m.log.Info("Catalog created", "catalog", name, "id", id)
	return nil
}

// DropCatalog removes a catalog. Restrict fails while the catalog still
// holds schemas; Cascade deletes its schema, table, and column records too.
// Dropping the catalog the manager is bound to also clears the in-memory
// index and removes the storage schemas behind it.
func (m *Manager) DropCatalog(name string, strategy DropStrategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.catalogs[name]
	if !ok {
		return sqlerr.CatalogDoesNotExist(name)
	}
	bound := m.catalog != nil && m.catalog.id == id
	if bound {
		m.catalog.mu.Lock()
		defer m.catalog.mu.Unlock()
	}

	hasSchemas := false
	if bound {
		hasSchemas = len(m.catalog.schemas) > 0
	} else {
		err := m.engine.View(func(tx *storage.Tx) error {
			return scan(tx, schemataTable, func(ids []uint64, _ []byte) error {
				if ids[0] == id {
					hasSchemas = true
				}
				return nil
			})
		})
		if err != nil {
			return err
		}
	}
	if strategy == Restrict && hasSchemas {
		return sqlerr.CatalogHasDependentObjects(name)
	}

	err := m.engine.Transaction(func(tx *storage.Tx) error {
		for _, table := range []string{columnsTable, tablesTable, schemataTable} {
			var doomed [][]byte
			if err := scan(tx, table, func(ids []uint64, _ []byte) error {
				if ids[0] == id {
					doomed = append(doomed, packIDs(ids...))
				}
				return nil
			}); err != nil {
				return err
			}
			for _, key := range doomed {
				if err := tx.Delete(SystemNamespace, table, key); err != nil {
					return err
				}
			}
		}
		if bound {
			for schema := range m.catalog.schemas {
				if err := tx.DropSchema(schema); err != nil {
					return err
				}
			}
		}
		return tx.Delete(SystemNamespace, catalogNamesTable, packIDs(id))
	})
	if err != nil {
		return err
	}
	delete(m.catalogs, name)
	if bound {
		m.catalog.schemas = map[string]*Schema{}
	}
	m.log.Info("Catalog dropped", "catalog", name, "cascade", strategy == Cascade)
	return nil
}

// CreateSchemaResult reports what a create-schema call did.
type CreateSchemaResult int

const (
	SchemaCreated CreateSchemaResult = iota
	SchemaSkipped
)

// CreateSchema defines a new schema. With ifNotExists, creating an existing
// schema reports SchemaSkipped instead of failing.
func (m *Manager) CreateSchema(name string, ifNotExists bool) (CreateSchemaResult, error) {
	c := m.catalog
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schemas[name]; ok {
		if ifNotExists {
			return SchemaSkipped, nil
		}
		return 0, sqlerr.SchemaAlreadyExists(name)
	}
	id := c.nextSchemaID
	err := m.engine.Transaction(func(tx *storage.Tx) error {
		if err := tx.Write(SystemNamespace, schemataTable, packIDs(c.id, id), []byte(name)); err != nil {
			return err
		}
		return tx.CreateSchema(name)
	})
	if err != nil {
		return 0, err
	}
	c.nextSchemaID++
	c.schemas[name] = &Schema{ID: id, Name: name, tables: map[string]*Table{}}
	m.log.Info("Schema created", "schema", name, "id", id)
	return SchemaCreated, nil
}

// DropSchema removes a schema. Restrict fails when the schema still holds
// tables; Cascade drops the tables too. With ifExists, a missing schema is
// not an error and the bool result reports whether anything was dropped.
func (m *Manager) DropSchema(name string, strategy DropStrategy, ifExists bool) (bool, error) {
	c := m.catalog
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[name]
	if !ok {
		if ifExists {
			return false, nil
		}
		return false, sqlerr.SchemaDoesNotExist(name)
	}
	if strategy == Restrict && len(s.tables) > 0 {
		return false, sqlerr.SchemaHasDependentObjects(name)
	}
	err := m.engine.Transaction(func(tx *storage.Tx) error {
		for _, t := range s.tables {
			if err := m.deleteTableRecords(tx, c.id, s.ID, t); err != nil {
				return err
			}
		}
		if err := tx.Delete(SystemNamespace, schemataTable, packIDs(c.id, s.ID)); err != nil {
			return err
		}
		return tx.DropSchema(name)
	})
	if err != nil {
		return false, err
	}
	delete(c.schemas, name)
	m.log.Info("Schema dropped", "schema", name, "cascade", strategy == Cascade)
	return true, nil
}

// CreateTableResult reports what a create-table call did.
type CreateTableResult int

const (
	TableCreated CreateTableResult = iota
	TableSkipped
)

// ColumnSpec is the requested definition of one column.
type ColumnSpec struct {
	Name string
	Type types.Type
}

// CreateTable defines a new table in an existing schema.
func (m *Manager) CreateTable(schema, table string, columns []ColumnSpec, ifNotExists bool) (CreateTableResult, error) {
	c := m.catalog
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[schema]
	if !ok {
		return 0, sqlerr.SchemaDoesNotExist(schema)
	}
	if _, ok := s.tables[table]; ok {
		if ifNotExists {
			return TableSkipped, nil
		}
		return 0, sqlerr.TableAlreadyExists(schema, table)
	}
	seen := map[string]struct{}{}
	for _, col := range columns {
		if _, dup := seen[col.Name]; dup {
			return 0, sqlerr.DuplicateColumn(col.Name)
		}
		seen[col.Name] = struct{}{}
	}

	tableID := c.nextTableID
	cols := make([]Column, len(columns))
	for i, spec := range columns {
		cols[i] = Column{
			ID:      c.nextColumnID + uint64(i),
			Name:    spec.Name,
			Type:    spec.Type,
			Ordinal: i + 1,
		}
	}
	err := m.engine.Transaction(func(tx *storage.Tx) error {
		if err := tx.Write(SystemNamespace, tablesTable, packIDs(c.id, s.ID, tableID), []byte(table)); err != nil {
			return err
		}
		for _, col := range cols {
			key := packIDs(c.id, s.ID, tableID, col.ID)
			if err := tx.Write(SystemNamespace, columnsTable, key, encodeColumn(col)); err != nil {
				return err
			}
		}
		return tx.CreateObject(schema, table)
	})
	if err != nil {
		return 0, err
	}
	c.nextTableID++
	c.nextColumnID += uint64(len(cols))
	s.tables[table] = &Table{ID: tableID, SchemaID: s.ID, Name: table, Columns: cols}
	m.log.Info("Table created", "schema", schema, "table", table, "id", tableID, "columns", len(cols))
	return TableCreated, nil
}

// DropTable removes a table and its rows. With ifExists, a missing table is
// not an error and the bool result reports whether anything was dropped.
func (m *Manager) DropTable(schema, table string, ifExists bool) (bool, error) {
	c := m.catalog
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[schema]
	if !ok {
		if ifExists {
			return false, nil
		}
		return false, sqlerr.SchemaDoesNotExist(schema)
	}
	t, ok := s.tables[table]
	if !ok {
		if ifExists {
			return false, nil
		}
		return false, sqlerr.TableDoesNotExist(schema + "." + table)
	}
	err := m.engine.Transaction(func(tx *storage.Tx) error {
		if err := m.deleteTableRecords(tx, c.id, s.ID, t); err != nil {
			return err
		}
		return tx.DropObject(schema, table)
	})
	if err != nil {
		return false, err
	}
	delete(s.tables, table)
	m.log.Info("Table dropped", "schema", schema, "table", table)
	return true, nil
}

func (m *Manager) deleteTableRecords(tx *storage.Tx, catalogID, schemaID uint64, t *Table) error {
	for _, col := range t.Columns {
		if err := tx.Delete(SystemNamespace, columnsTable, packIDs(catalogID, schemaID, t.ID, col.ID)); err != nil {
			return err
		}
	}
	return tx.Delete(SystemNamespace, tablesTable, packIDs(catalogID, schemaID, t.ID))
}

// Schema resolves a schema by name.
func (m *Manager) Schema(name string) (*Schema, error) {
	c := m.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[name]
	if !ok {
		return nil, sqlerr.SchemaDoesNotExist(name)
	}
	return s, nil
}

// Table resolves a table by schema and name.
func (m *Manager) Table(schema, table string) (*Table, error) {
	c := m.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[schema]
	if !ok {
		return nil, sqlerr.SchemaDoesNotExist(schema)
	}
	t, ok := s.tables[table]
	if !ok {
		return nil, sqlerr.TableDoesNotExist(schema + "." + table)
	}
	return t, nil
}
