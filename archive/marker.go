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

// Package archive implements the record serializer (component C6): a
// marker-tagged binary record stream with a compressed string table
// and an object-array column pivot wire encoding, plus a printer/
// walker (archive.Print/archive.Walk) for round-trip inspection
// without a schema.
package archive

import "github.com/carbonfmt/carbon/doc"

// marker is one of the single-ASCII-byte tags carried in-band
// throughout the file so a validator/printer can walk the stream
// without a schema (spec §4.5's marker alphabet).
type marker byte

const (
	markerObjectBegin marker = 'O'
	markerObjectEnd   marker = 'o'

	markerPropNull   marker = 'N'
	markerPropBool   marker = 'B'
	markerPropI8     marker = '1'
	markerPropI16    marker = '2'
	markerPropI32    marker = '3'
	markerPropI64    marker = '4'
	markerPropU8     marker = '5'
	markerPropU16    marker = '6'
	markerPropU32    marker = '7'
	markerPropU64    marker = '8'
	markerPropFloat  marker = 'F'
	markerPropString marker = 'S'
	markerPropObject marker = 'P'

	markerPropNullArray   marker = 'n'
	markerPropBoolArray   marker = 'b'
	markerPropI8Array     marker = 'i'
	markerPropI16Array    marker = 'j'
	markerPropI32Array    marker = 'k'
	markerPropI64Array    marker = 'l'
	markerPropU8Array     marker = 'u'
	markerPropU16Array    marker = 'v'
	markerPropU32Array    marker = 'w'
	markerPropU64Array    marker = 'x'
	markerPropFloatArray  marker = 'f'
	markerPropStringArray marker = 's'
	markerPropObjectArray marker = 'A'

	markerColumnGroup marker = 'G'
	markerColumn      marker = 'C'

	markerRecordHeader marker = 'R'
	markerStrtabHeader marker = 'T'
	markerStrtabEntry  marker = 't'
	markerVectorHeader marker = 'V'
)

// propMarker returns the fixed/variable-length property block marker
// for a scalar of type t (spec §4.5's "Fixed-length"/"Variable-length
// property block").
func propMarker(t doc.T) marker {
	switch t {
	case doc.Null:
		return markerPropNull
	case doc.Bool:
		return markerPropBool
	case doc.I8:
		return markerPropI8
	case doc.I16:
		return markerPropI16
	case doc.I32:
		return markerPropI32
	case doc.I64:
		return markerPropI64
	case doc.U8:
		return markerPropU8
	case doc.U16:
		return markerPropU16
	case doc.U32:
		return markerPropU32
	case doc.U64:
		return markerPropU64
	case doc.F32:
		return markerPropFloat
	case doc.String:
		return markerPropString
	case doc.Object:
		return markerPropObject
	default:
		return 0
	}
}

// arrayMarker returns the array property block marker for arrays
// whose elements have type t.
func arrayMarker(t doc.T) marker {
	switch t {
	case doc.Null:
		return markerPropNullArray
	case doc.Bool:
		return markerPropBoolArray
	case doc.I8:
		return markerPropI8Array
	case doc.I16:
		return markerPropI16Array
	case doc.I32:
		return markerPropI32Array
	case doc.I64:
		return markerPropI64Array
	case doc.U8:
		return markerPropU8Array
	case doc.U16:
		return markerPropU16Array
	case doc.U32:
		return markerPropU32Array
	case doc.U64:
		return markerPropU64Array
	case doc.F32:
		return markerPropFloatArray
	case doc.String:
		return markerPropStringArray
	default:
		return 0
	}
}

// flagBitFor returns a (kind, type) pair's bit position in an ObjectHeader's flags
// bitset (spec §4.5: "one bit per (primitive|array) x type plus object
// and object_array"). The ordering is canonical and shared by writer
// and reader.
type flagKind int

const (
	flagScalar flagKind = iota
	flagArray
	flagObjectScalar
	flagObjectArray
)

var flagOrder = []struct {
	kind flagKind
	t    doc.T
}{
	{flagScalar, doc.Null},
	{flagScalar, doc.Bool},
	{flagScalar, doc.I8},
	{flagScalar, doc.I16},
	{flagScalar, doc.I32},
	{flagScalar, doc.I64},
	{flagScalar, doc.U8},
	{flagScalar, doc.U16},
	{flagScalar, doc.U32},
	{flagScalar, doc.U64},
	{flagScalar, doc.F32},
	{flagScalar, doc.String},
	{flagObjectScalar, doc.Null}, // object scalar column
	{flagArray, doc.Null},
	{flagArray, doc.Bool},
	{flagArray, doc.I8},
	{flagArray, doc.I16},
	{flagArray, doc.I32},
	{flagArray, doc.I64},
	{flagArray, doc.U8},
	{flagArray, doc.U16},
	{flagArray, doc.U32},
	{flagArray, doc.U64},
	{flagArray, doc.F32},
	{flagArray, doc.String},
	{flagObjectArray, doc.Null}, // object-array column group
}

func flagBitFor(kind flagKind, t doc.T) int {
	for i, e := range flagOrder {
		if e.kind == kind && e.t == t {
			return i
		}
	}
	return -1
}

const numFlagBits = len(flagOrder)
