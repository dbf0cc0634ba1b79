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

package pgwire

import (
	"github.com/lib/pq/oid"

	"emberdb/internal/types"
)

var familyToOid = map[types.Family]oid.Oid{
	types.Bool:        oid.T_bool,
	types.SmallInt:    oid.T_int2,
	types.Integer:     oid.T_int4,
	types.BigInt:      oid.T_int8,
	types.Real:        oid.T_float4,
	types.Double:      oid.T_float8,
	types.Numeric:     oid.T_numeric,
	types.Char:        oid.T_bpchar,
	types.VarChar:     oid.T_varchar,
	types.Text:        oid.T_text,
	types.Date:        oid.T_date,
	types.Time:        oid.T_time,
	types.Timestamp:   oid.T_timestamp,
	types.TimestampTZ: oid.T_timestamptz,
	types.Interval:    oid.T_interval,
}

var oidToFamily = func() map[oid.Oid]types.Family {
	m := make(map[oid.Oid]types.Family, len(familyToOid))
	for f, o := range familyToOid {
		m[o] = f
	}
	return m
}()

// typeOid returns the wire OID for a type family. The unknown family maps
// to the unknown pseudo-type.
func typeOid(f types.Family) oid.Oid {
	if o, ok := familyToOid[f]; ok {
		return o
	}
	return oid.T_unknown
}

// oidType maps a declared parameter OID to a type. Zero and unrecognized
// OIDs leave the parameter undeclared, to be resolved from context.
func oidType(o uint32) types.Type {
	if f, ok := oidToFamily[oid.Oid(o)]; ok {
		return types.TypeOf(f)
	}
	return types.TypeOf(types.Unknown)
}

// typeSize returns the wire size of a family's binary encoding, or -1 for
// variable-length types.
func typeSize(f types.Family) int16 {
	switch f {
	case types.Bool:
		return 1
	case types.SmallInt:
		return 2
	case types.Integer, types.Real, types.Date:
		return 4
	case types.BigInt, types.Double, types.Time, types.Timestamp, types.TimestampTZ:
		return 8
	case types.Interval:
		return 16
	}
	return -1
}

// typeModifier carries the declared length of sized character types, per
// the varchar typmod convention.
func typeModifier(t types.Type) int32 {
	if (t.Family == types.Char || t.Family == types.VarChar) && t.Length > 0 {
		return int32(t.Length) + 4
	}
	return -1
}
