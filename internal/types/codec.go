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

package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"emberdb/internal/errors"
)

// postgresEpoch is the zero point of the binary date and timestamp formats.
var postgresEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Text renders the value in the wire text format. NULL has no text form and
// renders as the empty string; callers encode NULL as the -1 length marker
// before reaching this point.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "t"
		}
		return "f"
	case KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat32:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindNumeric:
		return v.d.Text('f')
	case KindString:
		return v.s
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return formatTimeOfDay(v.t)
	case KindTimestamp:
		return v.t.Format("2006-01-02") + " " + formatTimeOfDay(v.t)
	case KindTimestampTZ:
		return v.t.Format("2006-01-02 15:04:05.999999-07")
	case KindInterval:
		return formatInterval(v.months, v.days, v.micros)
	}
	return ""
}

func formatTimeOfDay(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format("15:04:05.999999")
	}
	return t.Format("15:04:05")
}

// DecodeText parses the wire text representation of a value of type t.
func DecodeText(t Type, data []byte) (Value, error) {
	s := string(data)
	f := t.Family
	switch {
	case f.IsBool():
		return parseBoolText(s)
	case f.IsInt():
		lo, hi := intRange(f)
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Null, errors.InvalidTextRepresentation(f.String(), s)
		}
		if i < lo || i > hi {
			return Null, errors.OutOfRange(f.String())
		}
		return intValue(f, i), nil
	case f.IsFloat():
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Null, errors.InvalidTextRepresentation(f.String(), s)
		}
		if f == Real {
			if x != 0 && (math.Abs(x) > math.MaxFloat32) {
				return Null, errors.OutOfRange(f.String())
			}
			return NewFloat32(float32(x)), nil
		}
		return NewFloat64(x), nil
	case f.IsNumeric():
		d, _, err := apd.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return Null, errors.InvalidTextRepresentation(f.String(), s)
		}
		return NewNumeric(d), nil
	case f.IsString():
		return NewString(s).Cast(t)
	case f.IsTemporal():
		return parseTemporalText(f, s)
	}
	return Null, errors.InvalidTextRepresentation(f.String(), s)
}

// Boolean text accept sets, matching the PostgreSQL prefixes of true/false
// along with yes/no, on/off, and 1/0.
var (
	boolTrueText  = map[string]struct{}{"t": {}, "tr": {}, "tru": {}, "true": {}, "y": {}, "ye": {}, "yes": {}, "on": {}, "1": {}}
	boolFalseText = map[string]struct{}{"f": {}, "fa": {}, "fal": {}, "fals": {}, "false": {}, "n": {}, "no": {}, "of": {}, "off": {}, "0": {}}
)

func parseBoolText(s string) (Value, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if _, ok := boolTrueText[k]; ok {
		return NewBool(true), nil
	}
	if _, ok := boolFalseText[k]; ok {
		return NewBool(false), nil
	}
	return Null, errors.InvalidTextRepresentation(Bool.String(), s)
}

var (
	dateFormats = []string{"2006-01-02"}
	timeFormats = []string{"15:04:05.999999", "15:04:05", "15:04"}
	tsFormats   = []string{
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	tstzFormats = []string{
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05.999999-07",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05-07",
		time.RFC3339Nano,
		time.RFC3339,
	}
)

func parseWith(formats []string, s string) (time.Time, bool) {
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTemporalText(f Family, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch f {
	case Date:
		if t, ok := parseWith(dateFormats, s); ok {
			return NewDate(t), nil
		}
	case Time:
		if t, ok := parseWith(timeFormats, s); ok {
			return NewTime(t), nil
		}
	case Timestamp:
		if t, ok := parseWith(tsFormats, s); ok {
			return NewTimestamp(t), nil
		}
	case TimestampTZ:
		if t, ok := parseWith(tstzFormats, s); ok {
			return NewTimestampTZ(t), nil
		}
		if t, ok := parseWith(tsFormats, s); ok {
			return NewTimestampTZ(t), nil
		}
	case Interval:
		return parseIntervalText(s)
	}
	return Null, errors.InvalidTextRepresentation(f.String(), s)
}

// parseIntervalText reads the verbose interval form: a sequence of
// "<quantity> <unit>" pairs optionally followed by an HH:MM[:SS] clock part,
// for example "1 year 2 mons 3 days 04:05:06".
func parseIntervalText(s string) (Value, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Null, errors.InvalidTextRepresentation(Interval.String(), s)
	}
	var months, days int32
	var micros int64
	i := 0
	for i < len(fields) {
		if strings.Contains(fields[i], ":") {
			m, err := parseClock(fields[i])
			if err != nil {
				return Null, errors.InvalidTextRepresentation(Interval.String(), s)
			}
			micros += m
			i++
			continue
		}
		if i+1 >= len(fields) {
			return Null, errors.InvalidTextRepresentation(Interval.String(), s)
		}
		n, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return Null, errors.InvalidTextRepresentation(Interval.String(), s)
		}
		switch strings.TrimSuffix(strings.ToLower(fields[i+1]), "s") {
		case "year", "yr":
			months += int32(n) * 12
		case "mon", "month":
			months += int32(n)
		case "week":
			days += int32(n) * 7
		case "day":
			days += int32(n)
		case "hour", "hr":
			micros += n * 3600 * 1000000
		case "minute", "min":
			micros += n * 60 * 1000000
		case "second", "sec":
			micros += n * 1000000
		default:
			return Null, errors.InvalidTextRepresentation(Interval.String(), s)
		}
		i += 2
	}
	return NewInterval(months, days, micros), nil
}

func parseClock(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, err
	}
	var sec float64
	if len(parts) == 3 {
		sec, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, err
		}
	}
	micros := h*3600*1000000 + m*60*1000000 + int64(sec*1000000)
	if neg {
		micros = -micros
	}
	return micros, nil
}

func formatInterval(months, days int32, micros int64) string {
	var parts []string
	if y := months / 12; y != 0 {
		parts = append(parts, plural(int64(y), "year"))
	}
	if m := months % 12; m != 0 {
		parts = append(parts, plural(int64(m), "mon"))
	}
	if days != 0 {
		parts = append(parts, plural(int64(days), "day"))
	}
	if micros != 0 || len(parts) == 0 {
		neg := micros < 0
		abs := micros
		if neg {
			abs = -abs
		}
		h := abs / (3600 * 1000000)
		rem := abs % (3600 * 1000000)
		m := rem / (60 * 1000000)
		rem %= 60 * 1000000
		s := rem / 1000000
		us := rem % 1000000
		clock := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		if us != 0 {
			clock += strings.TrimRight(fmt.Sprintf(".%06d", us), "0")
		}
		if neg {
			clock = "-" + clock
		}
		parts = append(parts, clock)
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// EncodeBinary renders the value in the wire binary format: big-endian
// two's-complement integers, IEEE 754 floats, single-byte booleans, raw
// UTF-8 for character types, and the 2000-01-01 epoch offsets for temporals.
// Numeric falls back to its text form, which every driver accepts on the
// text path and EmberDB accepts back on Bind.
func EncodeBinary(v Value) []byte {
	switch v.kind {
	case KindBool:
		if v.b {
			return []byte{1}
		}
		return []byte{0}
	case KindInt16:
		return binary.BigEndian.AppendUint16(nil, uint16(int16(v.i)))
	case KindInt32:
		return binary.BigEndian.AppendUint32(nil, uint32(int32(v.i)))
	case KindInt64:
		return binary.BigEndian.AppendUint64(nil, uint64(v.i))
	case KindFloat32:
		return binary.BigEndian.AppendUint32(nil, math.Float32bits(float32(v.f)))
	case KindFloat64:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(v.f))
	case KindDate:
		days := int32(v.t.Sub(postgresEpoch).Hours() / 24)
		return binary.BigEndian.AppendUint32(nil, uint32(days))
	case KindTimestamp, KindTimestampTZ:
		micros := v.t.Sub(postgresEpoch).Microseconds()
		return binary.BigEndian.AppendUint64(nil, uint64(micros))
	case KindTime:
		micros := int64(v.t.Hour())*3600*1000000 +
			int64(v.t.Minute())*60*1000000 +
			int64(v.t.Second())*1000000 +
			int64(v.t.Nanosecond())/1000
		return binary.BigEndian.AppendUint64(nil, uint64(micros))
	case KindInterval:
		out := binary.BigEndian.AppendUint64(nil, uint64(v.micros))
		out = binary.BigEndian.AppendUint32(out, uint32(v.days))
		return binary.BigEndian.AppendUint32(out, uint32(v.months))
	default:
		return []byte(v.Text())
	}
}

// DecodeBinary parses the wire binary representation of a value of type t.
func DecodeBinary(t Type, data []byte) (Value, error) {
	f := t.Family
	wrongLen := func() error {
		return errors.InvalidParameterValue(fmt.Sprintf(
			"incorrect binary data format for type %s", f))
	}
	switch {
	case f.IsBool():
		if len(data) != 1 {
			return Null, wrongLen()
		}
		return NewBool(data[0] != 0), nil
	case f.IsInt():
		switch f {
		case SmallInt:
			if len(data) != 2 {
				return Null, wrongLen()
			}
			return NewInt16(int16(binary.BigEndian.Uint16(data))), nil
		case Integer:
			if len(data) != 4 {
				return Null, wrongLen()
			}
			return NewInt32(int32(binary.BigEndian.Uint32(data))), nil
		default:
			if len(data) != 8 {
				return Null, wrongLen()
			}
			return NewInt64(int64(binary.BigEndian.Uint64(data))), nil
		}
	case f.IsFloat():
		if f == Real {
			if len(data) != 4 {
				return Null, wrongLen()
			}
			return NewFloat32(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
		}
		if len(data) != 8 {
			return Null, wrongLen()
		}
		return NewFloat64(math.Float64frombits(binary.BigEndian.Uint64(data))), nil
	case f.IsNumeric():
		// Numeric travels as text on both directions of the binary path.
		return DecodeText(t, data)
	case f.IsString():
		return NewString(string(data)).Cast(t)
	case f.IsTemporal():
		return decodeTemporalBinary(f, data, wrongLen)
	}
	return Null, errors.TypeDoesNotExist(f.String())
}

func decodeTemporalBinary(f Family, data []byte, wrongLen func() error) (Value, error) {
	switch f {
	case Date:
		if len(data) != 4 {
			return Null, wrongLen()
		}
		days := int32(binary.BigEndian.Uint32(data))
		return NewDate(postgresEpoch.AddDate(0, 0, int(days))), nil
	case Time:
		if len(data) != 8 {
			return Null, wrongLen()
		}
		micros := int64(binary.BigEndian.Uint64(data))
		return NewTime(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(micros) * time.Microsecond)), nil
	case Timestamp, TimestampTZ:
		if len(data) != 8 {
			return Null, wrongLen()
		}
		micros := int64(binary.BigEndian.Uint64(data))
		ts := postgresEpoch.Add(time.Duration(micros) * time.Microsecond)
		if f == TimestampTZ {
			return NewTimestampTZ(ts), nil
		}
		return NewTimestamp(ts), nil
	case Interval:
		if len(data) != 16 {
			return Null, wrongLen()
		}
		micros := int64(binary.BigEndian.Uint64(data[0:8]))
		days := int32(binary.BigEndian.Uint32(data[8:12]))
		months := int32(binary.BigEndian.Uint32(data[12:16]))
		return NewInterval(months, days, micros), nil
	}
	return Null, errors.TypeDoesNotExist(f.String())
}
