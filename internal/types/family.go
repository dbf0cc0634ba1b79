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
Package types defines EmberDB's SQL type system: the family lattice used by
type inference, the operator return-type tables, runtime scalar values, and
the text/binary codecs of the wire protocol.

The central concept is the Family: the promotion lattice over type families
forms a partial order, and Compare is its comparison. Two families that
compare are implicitly coercible, and the greater of the two is the promotion
target. Families that do not compare (for example boolean and integer) admit
no implicit coercion, which is how the checker rejects mixed expressions.
*/
package types

import "fmt"

// familyKind discriminates the top-level family groups.
type familyKind int

const (
	kindUnknown familyKind = iota
	kindBool
	kindInt
	kindFloat
	kindNumeric
	kindString
	kindTemporal
)

// intWidth orders the integer families by width.
type intWidth int

const (
	intSmall intWidth = iota
	intRegular
	intBig
)

// floatWidth orders the float families by width.
type floatWidth int

const (
	floatReal floatWidth = iota
	floatDouble
)

// stringKind orders the character families by generality.
type stringKind int

const (
	stringChar stringKind = iota
	stringVarChar
	stringText
)

// temporalKind discriminates the temporal families.
type temporalKind int

const (
	temporalDate temporalKind = iota
	temporalTime
	temporalTimestamp
	temporalTimestampTZ
	temporalInterval
)

// Family identifies a type family in the promotion lattice. It is a
// comparable value; families are equal exactly when they denote the same
// SQL type family.
type Family struct {
	kind     familyKind
	intW     intWidth
	floatW   floatWidth
	stringK  stringKind
	temporal temporalKind
}

// The sixteen type families.
var (
	Unknown     = Family{kind: kindUnknown}
	Bool        = Family{kind: kindBool}
	SmallInt    = Family{kind: kindInt, intW: intSmall}
	Integer     = Family{kind: kindInt, intW: intRegular}
	BigInt      = Family{kind: kindInt, intW: intBig}
	Real        = Family{kind: kindFloat, floatW: floatReal}
	Double      = Family{kind: kindFloat, floatW: floatDouble}
	Numeric     = Family{kind: kindNumeric}
	Char        = Family{kind: kindString, stringK: stringChar}
	VarChar     = Family{kind: kindString, stringK: stringVarChar}
	Text        = Family{kind: kindString, stringK: stringText}
	Date        = Family{kind: kindTemporal, temporal: temporalDate}
	Time        = Family{kind: kindTemporal, temporal: temporalTime}
	Timestamp   = Family{kind: kindTemporal, temporal: temporalTimestamp}
	TimestampTZ = Family{kind: kindTemporal, temporal: temporalTimestampTZ}
	Interval    = Family{kind: kindTemporal, temporal: temporalInterval}
)

// String returns the PostgreSQL name of the family.
func (f Family) String() string {
	switch f.kind {
	case kindUnknown:
		return "unknown"
	case kindBool:
		return "boolean"
	case kindInt:
		switch f.intW {
		case intSmall:
			return "smallint"
		case intRegular:
			return "integer"
		default:
			return "bigint"
		}
	case kindFloat:
		if f.floatW == floatReal {
			return "real"
		}
		return "double precision"
	case kindNumeric:
		return "numeric"
	case kindString:
		switch f.stringK {
		case stringChar:
			return "character"
		case stringVarChar:
			return "character varying"
		default:
			return "text"
		}
	case kindTemporal:
		switch f.temporal {
		case temporalDate:
			return "date"
		case temporalTime:
			return "time without time zone"
		case temporalTimestamp:
			return "timestamp without time zone"
		case temporalTimestampTZ:
			return "timestamp with time zone"
		default:
			return "interval"
		}
	}
	return fmt.Sprintf("family(%d)", int(f.kind))
}

// IsUnknown reports whether f is the Unknown family.
func (f Family) IsUnknown() bool { return f.kind == kindUnknown }

// IsBool reports whether f is the boolean family.
func (f Family) IsBool() bool { return f.kind == kindBool }

// IsInt reports whether f is one of the integer families.
func (f Family) IsInt() bool { return f.kind == kindInt }

// IsFloat reports whether f is one of the float families.
func (f Family) IsFloat() bool { return f.kind == kindFloat }

// IsNumeric reports whether f is the arbitrary-precision numeric family.
func (f Family) IsNumeric() bool { return f.kind == kindNumeric }

// IsString reports whether f is one of the character families.
func (f Family) IsString() bool { return f.kind == kindString }

// IsTemporal reports whether f is one of the temporal families.
func (f Family) IsTemporal() bool { return f.kind == kindTemporal }

// Compare reports the position of f relative to o in the promotion lattice.
// It returns (-1, true) when f promotes to o, (0, true) when the families are
// equal, (1, true) when o promotes to f, and (0, false) when the families are
// incomparable and admit no implicit coercion.
//
// Unknown sits below every family. Within the numeric tower, integers sit
// below numeric, numeric below float, and float below string; every
// non-string family promotes to the character families. Bool is comparable
// only with itself and strings. Temporals are comparable with strings, and
// among themselves only date < timestamp < timestamptz; time and interval
// compare only to themselves.
func (f Family) Compare(o Family) (int, bool) {
	if f == o {
		return 0, true
	}
	if f.kind == kindUnknown {
		return -1, true
	}
	if o.kind == kindUnknown {
		return 1, true
	}
	// Everything coerces to a character family; wider character families
	// absorb narrower ones.
	if o.kind == kindString {
		if f.kind != kindString {
			return -1, true
		}
		return cmpOrd(int(f.stringK), int(o.stringK)), true
	}
	if f.kind == kindString {
		return 1, true
	}
	switch f.kind {
	case kindBool:
		return 0, false
	case kindInt:
		switch o.kind {
		case kindInt:
			return cmpOrd(int(f.intW), int(o.intW)), true
		case kindNumeric, kindFloat:
			return -1, true
		}
		return 0, false
	case kindNumeric:
		switch o.kind {
		case kindInt:
			return 1, true
		case kindFloat:
			return -1, true
		}
		return 0, false
	case kindFloat:
		switch o.kind {
		case kindInt, kindNumeric:
			return 1, true
		case kindFloat:
			return cmpOrd(int(f.floatW), int(o.floatW)), true
		}
		return 0, false
	case kindTemporal:
		if o.kind != kindTemporal {
			return 0, false
		}
		return compareTemporal(f.temporal, o.temporal)
	}
	return 0, false
}

// ComparableWith reports whether the two families occupy a common chain in
// the lattice, which is the condition for an implicit coercion to exist.
func (f Family) ComparableWith(o Family) bool {
	_, ok := f.Compare(o)
	return ok
}

// Promote returns the greater of the two families, when they compare.
func (f Family) Promote(o Family) (Family, bool) {
	c, ok := f.Compare(o)
	if !ok {
		return Family{}, false
	}
	if c < 0 {
		return o, true
	}
	return f, true
}

// compareTemporal encodes the date < timestamp < timestamptz chain. Time and
// interval are islands: they compare only with themselves.
func compareTemporal(a, b temporalKind) (int, bool) {
	if a == b {
		return 0, true
	}
	rank := func(k temporalKind) (int, bool) {
		switch k {
		case temporalDate:
			return 0, true
		case temporalTimestamp:
			return 1, true
		case temporalTimestampTZ:
			return 2, true
		}
		return 0, false
	}
	ra, aok := rank(a)
	rb, bok := rank(b)
	if !aok || !bok {
		return 0, false
	}
	return cmpOrd(ra, rb), true
}

func cmpOrd(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Type is a family plus the declared length for the sized character types.
// Length is meaningful only for Char and VarChar, where it is at least 1.
type Type struct {
	Family Family
	Length uint32
}

// TypeOf returns the unsized type of a family.
func TypeOf(f Family) Type { return Type{Family: f} }

// SizedType returns a character type with an explicit length.
func SizedType(f Family, length uint32) Type { return Type{Family: f, Length: length} }

// String renders the type the way PostgreSQL names it, with the length
// suffix for sized character types.
func (t Type) String() string {
	if (t.Family == Char || t.Family == VarChar) && t.Length > 0 {
		return fmt.Sprintf("%s(%d)", t.Family, t.Length)
	}
	return t.Family.String()
}
