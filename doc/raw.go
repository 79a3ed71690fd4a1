// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package doc

// RawValue is the shape a JSON adapter (carbonjson) hands to Object's
// Put methods: a parsed-but-not-yet-narrowed scalar or array element.
// Unlike Value, a RawValue distinguishes "unsigned integer literal"
// from "negative integer literal" from "real number", since that
// distinction is what the type inference in spec §4.2 narrows from.
type RawValue struct {
	kind rawKind

	boolean bool
	uint    uint64 // non-negative integer literal
	integer int64  // negative integer literal (always < 0)
	float   float64
	str     string
	object  *Object
}

type rawKind int

const (
	rawNull rawKind = iota
	rawBool
	rawUint
	rawInt
	rawFloat
	rawString
	rawObject
	rawArray // a nested JSON array; only ever rejected, never stored
)

// RawNull returns a raw JSON null.
func RawNull() RawValue { return RawValue{kind: rawNull} }

// RawBool returns a raw JSON boolean.
func RawBool(b bool) RawValue { return RawValue{kind: rawBool, boolean: b} }

// RawUint returns a raw non-negative JSON integer literal.
func RawUint(u uint64) RawValue { return RawValue{kind: rawUint, uint: u} }

// RawInt returns a raw negative JSON integer literal. i must be < 0;
// non-negative integers should use RawUint.
func RawInt(i int64) RawValue { return RawValue{kind: rawInt, integer: i} }

// RawFloat returns a raw JSON real number (has a fraction or exponent).
func RawFloat(f float64) RawValue { return RawValue{kind: rawFloat, float: f} }

// RawString returns a raw JSON string.
func RawString(s string) RawValue { return RawValue{kind: rawString, str: s} }

// RawObject returns a raw JSON object already converted to *Object.
func RawObject(o *Object) RawValue { return RawValue{kind: rawObject, object: o} }

// RawArray marks an array element that was itself a JSON array. It
// carries no value; PutArray rejects any occurrence of it with
// ARRAY_OF_ARRAYS (spec §4.2).
func RawArray() RawValue { return RawValue{kind: rawArray} }

func (r RawValue) category() category {
	switch r.kind {
	case rawNull:
		return catNull
	case rawBool:
		return catBool
	case rawString:
		return catString
	case rawObject:
		return catObject
	default:
		return catNumeric
	}
}

// scalarType narrows a single raw numeric literal to its T, ignoring
// array-join considerations (spec §4.2's per-JSON-member table).
func (r RawValue) scalarType() T {
	switch r.kind {
	case rawNull:
		return Null
	case rawBool:
		return Bool
	case rawUint:
		return NarrowUnsigned(r.uint)
	case rawInt:
		return NarrowSigned(r.integer)
	case rawFloat:
		return F32
	case rawString:
		return String
	case rawObject:
		return Object
	default:
		return Null
	}
}

// asSigned reinterprets a numeric literal as a signed int64, used
// when an array turns out to need a signed column because some other
// element was negative.
func (r RawValue) asSigned() int64 {
	switch r.kind {
	case rawUint:
		return int64(r.uint)
	case rawInt:
		return r.integer
	default:
		return 0
	}
}

func (r RawValue) toValue(t T) Value {
	switch t {
	case Bool:
		if r.boolean {
			return Value{Type: Bool, Bool: 1}
		}
		return Value{Type: Bool, Bool: 0}
	case I8, I16, I32, I64:
		return Value{Type: t, Int: r.asSigned()}
	case U8, U16, U32, U64:
		return Value{Type: t, Uint: r.uint}
	case F32:
		var f float64
		if r.kind == rawFloat {
			f = r.float
		} else {
			f = float64(r.asSigned())
		}
		return Value{Type: t, Float: float32(f)}
	case String:
		return Value{Type: String, Str: r.str}
	case Object:
		return Value{Type: Object, Object: r.object}
	default:
		return Value{Type: t}
	}
}
