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
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"emberdb/internal/types"
)

// Stable on-disk codes for type families. Append-only: codes are persisted
// in COLUMNS records and must never be renumbered.
const (
	codeBool        = 1
	codeSmallInt    = 2
	codeInteger     = 3
	codeBigInt      = 4
	codeReal        = 5
	codeDouble      = 6
	codeNumeric     = 7
	codeChar        = 8
	codeVarChar     = 9
	codeText        = 10
	codeDate        = 11
	codeTime        = 12
	codeTimestamp   = 13
	codeTimestampTZ = 14
	codeInterval    = 15
)

var familyToCode = map[types.Family]byte{
	types.Bool:        codeBool,
	types.SmallInt:    codeSmallInt,
	types.Integer:     codeInteger,
	types.BigInt:      codeBigInt,
	types.Real:        codeReal,
	types.Double:      codeDouble,
	types.Numeric:     codeNumeric,
	types.Char:        codeChar,
	types.VarChar:     codeVarChar,
	types.Text:        codeText,
	types.Date:        codeDate,
	types.Time:        codeTime,
	types.Timestamp:   codeTimestamp,
	types.TimestampTZ: codeTimestampTZ,
	types.Interval:    codeInterval,
}

var codeToFamily = func() map[byte]types.Family {
	out := make(map[byte]types.Family, len(familyToCode))
	for f, c := range familyToCode {
		out[c] = f
	}
	return out
}()

// encodeColumn serializes a column definition:
//
//	u16 name length, name bytes, u8 family code, u32 length, u16 ordinal
func encodeColumn(col Column) []byte {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(col.Name)))
	out = append(out, col.Name...)
	out = append(out, familyToCode[col.Type.Family])
	out = binary.BigEndian.AppendUint32(out, col.Type.Length)
	return binary.BigEndian.AppendUint16(out, uint16(col.Ordinal))
}

func decodeColumn(id uint64, data []byte) (Column, error) {
	if len(data) < 2 {
		return Column{}, errors.New("truncated column record")
	}
	nameLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < nameLen+7 {
		return Column{}, errors.New("truncated column record")
	}
	name := string(data[:nameLen])
	data = data[nameLen:]
	family, ok := codeToFamily[data[0]]
	if !ok {
		return Column{}, errors.Newf("unknown type code %d in column record", data[0])
	}
	length := binary.BigEndian.Uint32(data[1:5])
	ordinal := int(binary.BigEndian.Uint16(data[5:7]))
	return Column{
		ID:      id,
		Name:    name,
		Type:    types.Type{Family: family, Length: length},
		Ordinal: ordinal,
	}, nil
}
