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

package plan

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"emberdb/internal/catalog"
	"emberdb/internal/types"
)

// Rows are stored as one cell per table column in ordinal order. Each cell
// is a u32 length followed by the value's text encoding; the all-ones
// length marks NULL.
const nullCell = 0xFFFFFFFF

// rowKey builds the storage key for a row id. Big-endian keys keep the
// scan in insertion order.
func rowKey(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}

func encodeRow(values []types.Value) []byte {
	var buf []byte
	for _, v := range values {
		if v.IsNull() {
			buf = binary.BigEndian.AppendUint32(buf, nullCell)
			continue
		}
		text := v.Text()
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(text)))
		buf = append(buf, text...)
	}
	return buf
}

func decodeRow(columns []catalog.Column, data []byte) ([]types.Value, error) {
	values := make([]types.Value, len(columns))
	for i, col := range columns {
		if len(data) < 4 {
			return nil, errors.Newf("row truncated at column %q", col.Name)
		}
		n := binary.BigEndian.Uint32(data)
		data = data[4:]
		if n == nullCell {
			values[i] = types.Null
			continue
		}
		if uint32(len(data)) < n {
			return nil, errors.Newf("row truncated at column %q", col.Name)
		}
		v, err := types.DecodeText(col.Type, data[:n])
		if err != nil {
			return nil, err
		}
		values[i] = v
		data = data[n:]
	}
	return values, nil
}
