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
Package storage provides the transactional key-value layer under EmberDB.

The engine wraps a single pebble database. The key space is organized as a
two-level namespace of schemas and objects; each object holds an ordered set
of binary key/value pairs. Both user tables and the catalog's definition
tables live behind this one interface, so a transaction that spans catalog
and data mutations commits or discards atomically.

All mutations happen inside Transaction. The callback receives a Tx bound to
an indexed pebble batch: reads through the Tx observe the batch's own writes.
Returning nil commits the batch with a synced WAL write; returning any error
discards it.
*/
package storage

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"emberdb/internal/logging"
)

// Sentinel errors surfaced by Tx operations.
var (
	ErrSchemaAlreadyExists = errors.New("storage: schema already exists")
	ErrSchemaNotFound      = errors.New("storage: schema not found")
	ErrObjectAlreadyExists = errors.New("storage: object already exists")
	ErrObjectNotFound      = errors.New("storage: object not found")

	// ErrAbort can be returned from a transaction callback to discard the
	// batch without surfacing an error to the caller of Transaction.
	ErrAbort = errors.New("storage: transaction aborted")
)

// Engine is a handle on the underlying pebble database.
type Engine struct {
	db  *pebble.DB
	log *logging.Logger
}

// Open opens (or creates) the database at dir. With inMemory set, the engine
// runs on pebble's in-memory filesystem and dir is only a label.
func Open(dir string, inMemory bool) (*Engine, error) {
	opts := &pebble.Options{}
	if inMemory {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database at %s", dir)
	}
	log := logging.NewLogger("storage")
	log.Info("Database opened", "dir", dir, "in_memory", inMemory)
	return &Engine{db: db, log: log}, nil
}

// Close shuts the database down.
func (e *Engine) Close() error {
	e.log.Info("Database closing")
	return e.db.Close()
}

// Transaction runs fn inside a transaction. The batch commits when fn
// returns nil and is discarded otherwise. fn's error is returned as-is,
// except ErrAbort which is swallowed after the rollback.
func (e *Engine) Transaction(fn func(tx *Tx) error) error {
	batch := e.db.NewIndexedBatch()
	tx := &Tx{batch: batch}
	if err := fn(tx); err != nil {
		_ = batch.Close()
		if errors.Is(err, ErrAbort) {
			return nil
		}
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// View runs fn with a Tx that is always discarded, for read-only access.
func (e *Engine) View(fn func(tx *Tx) error) error {
	batch := e.db.NewIndexedBatch()
	defer func() { _ = batch.Close() }()
	return fn(&Tx{batch: batch})
}
