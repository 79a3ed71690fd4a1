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

// Value is one fixed-type datum: either a scalar property value or
// one element of an array. Which field is meaningful is determined by
// Type.
//
// Bool is stored as a raw byte code rather than a Go bool so that it
// can carry the reserved null sentinel 0x7F alongside 0 (false) and 1
// (true), per spec §9: "the null-value encoding for booleans uses the
// same sentinel as i8".
type Value struct {
	Type   T
	Bool   int8
	Int    int64   // I8..I64
	Uint   uint64  // U8..U64
	Float  float32 // F32
	Str    string  // String (raw text; interning happens in columndoc)
	Object *Object  // Object
}

// BoolValue constructs a non-null Bool value.
func BoolValue(b bool) Value {
	if b {
		return Value{Type: Bool, Bool: 1}
	}
	return Value{Type: Bool, Bool: 0}
}

// AsBool returns the boolean value and whether it is the null sentinel.
func (v Value) AsBool() (value, isNull bool) {
	return v.Bool != 0 && v.Bool != SentinelBool, v.Bool == SentinelBool
}

// IsNullSentinel reports whether v carries the reserved null sentinel
// for its type (spec §3, §9).
func (v Value) IsNullSentinel() bool {
	switch v.Type {
	case Bool:
		return v.Bool == SentinelBool
	case I8:
		return int8(v.Int) == SentinelI8
	case I16:
		return int16(v.Int) == SentinelI16
	case I32:
		return int32(v.Int) == SentinelI32
	case I64:
		return v.Int == SentinelI64
	case U8:
		return uint8(v.Uint) == SentinelU8
	case U16:
		return uint16(v.Uint) == SentinelU16
	case U32:
		return uint32(v.Uint) == SentinelU32
	case U64:
		return v.Uint == SentinelU64
	case F32:
		return isNaN32(v.Float)
	case String:
		return v.Str == ""
	default:
		return false
	}
}

func isNaN32(f float32) bool { return f != f }

// nullValue returns the sentinel Value for t, used to fill a null
// position inside an otherwise-typed array (spec §4.2: "Null elements
// are permitted and encoded as the sentinel for the chosen type").
func nullValue(t T) Value {
	switch t {
	case Bool:
		return Value{Type: Bool, Bool: SentinelBool}
	case I8:
		return Value{Type: I8, Int: int64(SentinelI8)}
	case I16:
		return Value{Type: I16, Int: int64(SentinelI16)}
	case I32:
		return Value{Type: I32, Int: int64(SentinelI32)}
	case I64:
		return Value{Type: I64, Int: SentinelI64}
	case U8:
		return Value{Type: U8, Uint: uint64(SentinelU8)}
	case U16:
		return Value{Type: U16, Uint: uint64(SentinelU16)}
	case U32:
		return Value{Type: U32, Uint: uint64(SentinelU32)}
	case U64:
		return Value{Type: U64, Uint: SentinelU64}
	case F32:
		return Value{Type: F32, Float: SentinelF32}
	case String:
		return Value{Type: String, Str: ""}
	default:
		return Value{Type: t}
	}
}

// Entry is one ordered (key, type, values) triple inside an Object
// (spec §3). len(Values)==0 means a JSON null property; len==1 means
// a scalar; len>1 means an array.
type Entry struct {
	Key    string
	Type   T
	Values []Value

	// Synthesized marks entries produced by pivoting an object array
	// back into per-element sibling records rather than written
	// directly by a caller (supplemented from
	// original_source/include/carbon/carbon-doc.h's back-reference
	// bookkeeping). No package in this module sets or reads it;
	// columndoc.Transform handles every entry the same way.
	Synthesized bool
}

// Object is an ordered list of entries: the document model's interior
// node (spec §3).
type Object struct {
	Entries []Entry
}

// NewObject returns an empty Object.
func NewObject() *Object { return &Object{} }

func (o *Object) find(key string) int {
	for i := range o.Entries {
		if o.Entries[i].Key == key {
			return i
		}
	}
	return -1
}
