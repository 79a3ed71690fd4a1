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

// Package doc implements the in-memory document model (component C2)
// that mirrors parsed JSON, and the numeric type inference used to
// narrow scalars and arrays to the smallest fitting primitive type
// (component C3).
package doc

import "math"

// T is the value type set from spec.md §3: null, bool, the eight
// fixed-width integer types, f32, string, and object. The ordinal of
// T is also the "nested-type ordinal" spec §3's sort discipline
// orders object-array columns by.
type T int

const (
	Null T = iota
	Bool
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	String
	Object
)

func (t T) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case String:
		return "string"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether t is one of the eight integer types or f32.
func (t T) IsNumeric() bool {
	switch t {
	case I8, I16, I32, I64, U8, U16, U32, U64, F32:
		return true
	default:
		return false
	}
}

func (t T) signed() bool {
	switch t {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// category groups T into the classes spec §4.2's mixed-type validator
// distinguishes: null is compatible with any, bool/numeric/string/
// object are mutually exclusive.
type category int

const (
	catNull category = iota
	catBool
	catNumeric
	catString
	catObject
)

func (t T) category() category {
	switch t {
	case Null:
		return catNull
	case Bool:
		return catBool
	case String:
		return catString
	case Object:
		return catObject
	default:
		return catNumeric
	}
}

// Sentinel null values per type (spec §3, §9 "numeric null sentinels").
// Every integer/float type reserves its maximum (or NaN, or 0x7F for
// bool, by convention shared with i8) as "this element is null". This
// narrows the type's usable range by one value. NarrowUnsigned and
// NarrowSigned do not exclude it: they compare with <=, so a value
// equal to a type's sentinel still selects that type.
const (
	SentinelBool = int8(0x7F) // shares i8's sentinel, per spec §9
	SentinelI8   = int8(math.MaxInt8)
	SentinelI16  = int16(math.MaxInt16)
	SentinelI32  = int32(math.MaxInt32)
	SentinelI64  = int64(math.MaxInt64)
	SentinelU8   = uint8(math.MaxUint8)
	SentinelU16  = uint16(math.MaxUint16)
	SentinelU32  = uint32(math.MaxUint32)
	SentinelU64  = uint64(math.MaxUint64)
)

// SentinelF32 is NaN, reserved as the null value for f32 columns.
var SentinelF32 = float32(math.NaN())

// NarrowUnsigned returns the narrowest unsigned type whose bit width
// can represent n. Selection is by magnitude alone (spec §8's boundary
// scenario: 2^32-1, which equals the u32 sentinel, still selects u32).
// joinArrayType applies the same rule to array elements and does not
// widen when an element equals the chosen type's sentinel, also when
// the same array contains a null.
func NarrowUnsigned(n uint64) T {
	switch {
	case n <= uint64(SentinelU8):
		return U8
	case n <= uint64(SentinelU16):
		return U16
	case n <= uint64(SentinelU32):
		return U32
	default:
		return U64
	}
}

// NarrowSigned returns the narrowest signed type whose bit width can
// represent v. v may be negative or non-negative; callers use this
// once they've already decided the column must be signed (e.g.
// because some other element is negative).
func NarrowSigned(v int64) T {
	switch {
	case v >= math.MinInt8 && v <= int64(SentinelI8):
		return I8
	case v >= math.MinInt16 && v <= int64(SentinelI16):
		return I16
	case v >= math.MinInt32 && v <= int64(SentinelI32):
		return I32
	default:
		return I64
	}
}

// rank orders same-signedness numeric types for the array join
// lattice (spec §4.2): u8<u16<u32<u64 and i8<i16<i32<i64, each
// widening to f32 once any element requires it.
func rank(t T) int {
	switch t {
	case U8, I8:
		return 0
	case U16, I16:
		return 1
	case U32, I32:
		return 2
	case U64, I64:
		return 3
	case F32:
		return 4
	default:
		return -1
	}
}
