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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open("test", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestCreateSchemaTwice(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		return tx.CreateSchema("public")
	}))
	err := e.Transaction(func(tx *Tx) error {
		return tx.CreateSchema("public")
	})
	require.ErrorIs(t, err, ErrSchemaAlreadyExists)
}

func TestObjectNeedsSchema(t *testing.T) {
	e := newTestEngine(t)
	err := e.Transaction(func(tx *Tx) error {
		return tx.CreateObject("missing", "t")
	})
	require.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestWriteReadScanOrder(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		if err := tx.CreateObject("s", "t"); err != nil {
			return err
		}
		for _, k := range []string{"b", "a", "c"} {
			if err := tx.Write("s", "t", []byte(k), []byte("v"+k)); err != nil {
				return err
			}
		}
		return nil
	}))

	var keys []string
	require.NoError(t, e.View(func(tx *Tx) error {
		it, err := tx.Read("s", "t")
		if err != nil {
			return err
		}
		defer it.Close()
		for it.Next() {
			keys = append(keys, string(it.Key()))
			require.Equal(t, "v"+string(it.Key()), string(it.Value()))
		}
		return nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestTransactionRollbackOnError(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("boom")
	err := e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, e.View(func(tx *Tx) error {
		exists, err := tx.SchemaExists("s")
		require.NoError(t, err)
		require.False(t, exists)
		return nil
	}))
}

func TestAbortIsSilent(t *testing.T) {
	e := newTestEngine(t)
	err := e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		return ErrAbort
	})
	require.NoError(t, err)
	require.NoError(t, e.View(func(tx *Tx) error {
		exists, err := tx.SchemaExists("s")
		require.NoError(t, err)
		require.False(t, exists)
		return nil
	}))
}

func TestDropSchemaRemovesObjectsAndData(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		if err := tx.CreateObject("s", "t"); err != nil {
			return err
		}
		return tx.Write("s", "t", []byte("k"), []byte("v"))
	}))
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		return tx.DropSchema("s")
	}))
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		exists, err := tx.ObjectExists("s", "t")
		require.NoError(t, err)
		require.False(t, exists)
		return nil
	}))
}

func TestReadKey(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Transaction(func(tx *Tx) error {
		if err := tx.CreateSchema("s"); err != nil {
			return err
		}
		if err := tx.CreateObject("s", "t"); err != nil {
			return err
		}
		return tx.Write("s", "t", []byte("k"), []byte("v"))
	}))
	require.NoError(t, e.View(func(tx *Tx) error {
		v, ok, err := tx.ReadKey("s", "t", []byte("k"))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "v", string(v))

		_, ok, err = tx.ReadKey("s", "t", []byte("nope"))
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}
