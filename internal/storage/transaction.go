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

package storage

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// Key prefixes. Markers record schema and object existence; data rows live
// under their own prefix so an object scan never sees marker keys.
const (
	markerPrefix = 'm'
	dataPrefix   = 'd'
	keySep       = 0x00
)

func schemaMarkerKey(schema string) []byte {
	k := []byte{markerPrefix, keySep}
	return append(k, schema...)
}

func objectMarkerKey(schema, object string) []byte {
	k := append(schemaMarkerKey(schema), keySep)
	return append(k, object...)
}

func dataKey(schema, object string, key []byte) []byte {
	k := objectDataPrefix(schema, object)
	return append(k, key...)
}

func objectDataPrefix(schema, object string) []byte {
	k := []byte{dataPrefix, keySep}
	k = append(k, schema...)
	k = append(k, keySep)
	k = append(k, object...)
	k = append(k, keySep)
	return k
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Tx is a transaction over the engine. It is bound to a single indexed
// batch and is not safe for concurrent use.
type Tx struct {
	batch *pebble.Batch
}

func (tx *Tx) has(key []byte) (bool, error) {
	_, closer, err := tx.batch.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "reading key")
	}
	_ = closer.Close()
	return true, nil
}

// SchemaExists reports whether a schema marker is present.
func (tx *Tx) SchemaExists(schema string) (bool, error) {
	return tx.has(schemaMarkerKey(schema))
}

// CreateSchema records a new schema namespace.
func (tx *Tx) CreateSchema(schema string) error {
	exists, err := tx.SchemaExists(schema)
	if err != nil {
		return err
	}
	if exists {
		return ErrSchemaAlreadyExists
	}
	return errors.Wrap(tx.batch.Set(schemaMarkerKey(schema), nil, nil), "creating schema")
}

// DropSchema removes a schema, all its objects, and all their rows.
func (tx *Tx) DropSchema(schema string) error {
	exists, err := tx.SchemaExists(schema)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSchemaNotFound
	}
	// Object markers share the schema marker as their prefix.
	markers := append(schemaMarkerKey(schema), keySep)
	if err := tx.batch.DeleteRange(markers, prefixEnd(markers), nil); err != nil {
		return errors.Wrap(err, "dropping schema objects")
	}
	data := []byte{dataPrefix, keySep}
	data = append(data, schema...)
	data = append(data, keySep)
	if err := tx.batch.DeleteRange(data, prefixEnd(data), nil); err != nil {
		return errors.Wrap(err, "dropping schema data")
	}
	return errors.Wrap(tx.batch.Delete(schemaMarkerKey(schema), nil), "dropping schema")
}

// ObjectExists reports whether an object marker is present.
func (tx *Tx) ObjectExists(schema, object string) (bool, error) {
	return tx.has(objectMarkerKey(schema, object))
}

// CreateObject records a new object under an existing schema.
func (tx *Tx) CreateObject(schema, object string) error {
	schemaExists, err := tx.SchemaExists(schema)
	if err != nil {
		return err
	}
	if !schemaExists {
		return ErrSchemaNotFound
	}
	exists, err := tx.ObjectExists(schema, object)
	if err != nil {
		return err
	}
	if exists {
		return ErrObjectAlreadyExists
	}
	return errors.Wrap(tx.batch.Set(objectMarkerKey(schema, object), nil, nil), "creating object")
}

// DropObject removes an object and all its rows.
func (tx *Tx) DropObject(schema, object string) error {
	exists, err := tx.ObjectExists(schema, object)
	if err != nil {
		return err
	}
	if !exists {
		return ErrObjectNotFound
	}
	data := objectDataPrefix(schema, object)
	if err := tx.batch.DeleteRange(data, prefixEnd(data), nil); err != nil {
		return errors.Wrap(err, "dropping object data")
	}
	return errors.Wrap(tx.batch.Delete(objectMarkerKey(schema, object), nil), "dropping object")
}

// Write stores a key/value pair in an object.
func (tx *Tx) Write(schema, object string, key, value []byte) error {
	return errors.Wrap(tx.batch.Set(dataKey(schema, object, key), value, nil), "writing row")
}

// Delete removes a key from an object.
func (tx *Tx) Delete(schema, object string, key []byte) error {
	return errors.Wrap(tx.batch.Delete(dataKey(schema, object, key), nil), "deleting row")
}

// ReadKey fetches a single value. The second return is false when the key
// is absent.
func (tx *Tx) ReadKey(schema, object string, key []byte) ([]byte, bool, error) {
	val, closer, err := tx.batch.Get(dataKey(schema, object, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "reading row")
	}
	out := append([]byte(nil), val...)
	_ = closer.Close()
	return out, true, nil
}

// Read returns an iterator over all rows of an object in key order.
func (tx *Tx) Read(schema, object string) (*Iterator, error) {
	prefix := objectDataPrefix(schema, object)
	it, err := tx.batch.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening scan")
	}
	return &Iterator{it: it, prefix: prefix, first: true}, nil
}

// Iterator walks the rows of one object. Keys are reported without the
// object prefix.
type Iterator struct {
	it     *pebble.Iterator
	prefix []byte
	first  bool
}

// Next advances to the next row, returning false at the end.
func (i *Iterator) Next() bool {
	if i.first {
		i.first = false
		return i.it.First()
	}
	return i.it.Next()
}

// Key returns the current row key, valid until the next call to Next.
func (i *Iterator) Key() []byte {
	return bytes.TrimPrefix(i.it.Key(), i.prefix)
}

// Value returns the current row value, valid until the next call to Next.
func (i *Iterator) Value() []byte {
	return i.it.Value()
}

// Close releases the iterator.
func (i *Iterator) Close() error {
	return i.it.Close()
}
