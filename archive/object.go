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

package archive

import (
	"github.com/carbonfmt/carbon/carbonerr"
	"github.com/carbonfmt/carbon/columndoc"
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

// writeObject emits one Object (spec §4.5's "Object on the wire") and
// returns the absolute position of its ObjectHeader marker.
func writeObject(b *buffer, d dict.Dictionary, gen *objectIDGen, c *columndoc.ColumnObject) (int, error) {
	headerStart := b.Len()
	b.marker(markerObjectBegin)
	oid, err := gen.next()
	if err != nil {
		return 0, err
	}
	b.u64(oid)

	set := computeFlags(c)
	b.u32(encodeFlags(set))

	offsetPos := make(map[int]int, len(set))
	for _, bit := range set {
		offsetPos[bit] = b.reserveU64()
	}
	nextObjPos := b.reserveU64()

	for _, bit := range set {
		blockStart := b.Len()
		b.patchU64(offsetPos[bit], uint64(blockStart-headerStart))
		e := flagOrder[bit]
		var err error
		switch {
		case bit == flagBitFor(flagObjectScalar, doc.Null):
			err = writeObjectScalarBlock(b, d, gen, c)
		case bit == flagBitFor(flagObjectArray, doc.Null):
			err = writeObjectArrayBlock(b, d, gen, c)
		case e.kind == flagScalar && e.t == doc.Null:
			writeNullBlock(b, c.NullKeys)
		case e.kind == flagScalar:
			err = writeFixedLengthBlock(b, d, c.Scalars[e.t])
		case e.kind == flagArray && e.t == doc.Null:
			writeNullArrayBlock(b, c.NullArrayKeys, c.NullArrayLengths)
		case e.kind == flagArray:
			err = writeArrayBlock(b, d, c.Arrays[e.t])
		}
		if err != nil {
			return 0, err
		}
	}

	b.marker(markerObjectEnd)
	// next_object_or_nil is always nil: traversal uses the offset
	// header's per-property pointers exclusively, never a sibling chain.
	b.patchU64(nextObjPos, 0)
	return headerStart, nil
}

// computeFlags returns, in canonical flagOrder index order, every bit
// that this ColumnObject actually populates.
func computeFlags(c *columndoc.ColumnObject) []int {
	var set []int
	if len(c.NullKeys) > 0 {
		set = append(set, flagBitFor(flagScalar, doc.Null))
	}
	for _, t := range []doc.T{doc.Bool, doc.I8, doc.I16, doc.I32, doc.I64, doc.U8, doc.U16, doc.U32, doc.U64, doc.F32, doc.String} {
		if sc := c.Scalars[t]; sc != nil && len(sc.Keys) > 0 {
			set = append(set, flagBitFor(flagScalar, t))
		}
	}
	if len(c.ObjectKeys) > 0 {
		set = append(set, flagBitFor(flagObjectScalar, doc.Null))
	}
	if len(c.NullArrayKeys) > 0 {
		set = append(set, flagBitFor(flagArray, doc.Null))
	}
	for _, t := range []doc.T{doc.Bool, doc.I8, doc.I16, doc.I32, doc.I64, doc.U8, doc.U16, doc.U32, doc.U64, doc.F32, doc.String} {
		if ac := c.Arrays[t]; ac != nil && len(ac.Keys) > 0 {
			set = append(set, flagBitFor(flagArray, t))
		}
	}
	if len(c.ObjectArrayGroups) > 0 {
		set = append(set, flagBitFor(flagObjectArray, doc.Null))
	}
	return set
}

func encodeFlags(set []int) uint32 {
	var f uint32
	for _, bit := range set {
		f |= 1 << uint(bit)
	}
	return f
}

// writeNullBlock emits a length-0 fixed block: just the key ids (spec
// §4.5's fixed-length block with no value column, since every value is
// implicitly null).
func writeNullBlock(b *buffer, keys []dict.ID) {
	b.marker(markerPropNull)
	b.u32(uint32(len(keys)))
	for _, k := range keys {
		b.u64(uint64(k))
	}
}

// writeNullArrayBlock emits the dedicated all-null-array block: each
// "len" IS the value, per spec §4.5.
func writeNullArrayBlock(b *buffer, keys []dict.ID, lengths []uint32) {
	b.marker(markerPropNullArray)
	b.u32(uint32(len(keys)))
	for _, k := range keys {
		b.u64(uint64(k))
	}
	for _, n := range lengths {
		b.u32(n)
	}
}

// writeFixedLengthBlock emits a primitive, non-object property block:
// (marker, num_entries) [key_id]xN [value:t]xN.
func writeFixedLengthBlock(b *buffer, d dict.Dictionary, sc *columndoc.ScalarColumn) error {
	if sc == nil {
		return nil
	}
	t := sc.Values[0].Type
	b.marker(propMarker(t))
	b.u32(uint32(len(sc.Keys)))
	for _, k := range sc.Keys {
		b.u64(uint64(k))
	}
	for _, v := range sc.Values {
		if err := writeValue(b, d, v); err != nil {
			return err
		}
	}
	return nil
}

// writeArrayBlock emits an array property block: (marker, num_entries)
// [key_id]xN [len:u32]xN [values...], the values region being the
// concatenation of the N inner arrays in order (spec §4.5).
func writeArrayBlock(b *buffer, d dict.Dictionary, ac *columndoc.ArrayColumn) error {
	if ac == nil {
		return nil
	}
	t := ac.Values[0][0].Type
	b.marker(arrayMarker(t))
	b.u32(uint32(len(ac.Keys)))
	for _, k := range ac.Keys {
		b.u64(uint64(k))
	}
	for _, seq := range ac.Values {
		b.u32(uint32(len(seq)))
	}
	for _, seq := range ac.Values {
		for _, v := range seq {
			if err := writeValue(b, d, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeObjectScalarBlock emits the variable-length (object-valued)
// property block: offsets are written as zeros and patched once each
// nested object has actually been emitted (spec §4.5).
func writeObjectScalarBlock(b *buffer, d dict.Dictionary, gen *objectIDGen, c *columndoc.ColumnObject) error {
	headerStart := b.Len()
	b.marker(markerPropObject)
	b.u32(uint32(len(c.ObjectKeys)))
	for _, k := range c.ObjectKeys {
		b.u64(uint64(k))
	}
	offsetPositions := make([]int, len(c.ObjectKeys))
	for i := range offsetPositions {
		offsetPositions[i] = b.reserveU64()
	}
	for i, nested := range c.ObjectVals {
		nestedStart, err := writeObject(b, d, gen, nested)
		if err != nil {
			return err
		}
		b.patchU64(offsetPositions[i], uint64(nestedStart-headerStart))
	}
	return nil
}

// writeObjectArrayBlock emits the object-array property block: outer
// keys and group offsets, then one COLUMN_GROUP per outer key with its
// columns (spec §4.5).
func writeObjectArrayBlock(b *buffer, d dict.Dictionary, gen *objectIDGen, c *columndoc.ColumnObject) error {
	headerStart := b.Len()
	b.marker(markerPropObjectArray)
	b.u32(uint32(len(c.ObjectArrayGroups)))
	for _, g := range c.ObjectArrayGroups {
		b.u64(uint64(g.OuterKey))
	}
	groupOffsetPos := make([]int, len(c.ObjectArrayGroups))
	for i := range groupOffsetPos {
		groupOffsetPos[i] = b.reserveU64()
	}
	for i, g := range c.ObjectArrayGroups {
		groupStart := b.Len()
		b.patchU64(groupOffsetPos[i], uint64(groupStart-headerStart))
		if err := writeColumnGroup(b, d, gen, g); err != nil {
			return err
		}
	}
	return nil
}

func writeColumnGroup(b *buffer, d dict.Dictionary, gen *objectIDGen, g *columndoc.ObjectArrayGroup) error {
	groupStart := b.Len()
	b.marker(markerColumnGroup)
	b.u32(uint32(len(g.Columns)))

	numObjects := 0
	for _, col := range g.Columns {
		for p := range col.Positions {
			if int(col.Positions[p])+1 > numObjects {
				numObjects = int(col.Positions[p]) + 1
			}
		}
	}
	b.u32(uint32(numObjects))
	for i := 0; i < numObjects; i++ {
		oid, err := gen.next()
		if err != nil {
			return err
		}
		b.u64(oid)
	}

	colOffsetPos := make([]int, len(g.Columns))
	for i := range colOffsetPos {
		colOffsetPos[i] = b.reserveU64()
	}
	for i, col := range g.Columns {
		colStart := b.Len()
		b.patchU64(colOffsetPos[i], uint64(colStart-groupStart))
		if err := writeColumn(b, d, gen, col); err != nil {
			return err
		}
	}
	return nil
}

func writeColumn(b *buffer, d dict.Dictionary, gen *objectIDGen, col *columndoc.ObjectArrayColumn) error {
	b.marker(markerColumn)
	b.u64(uint64(col.NestedKey))
	b.byte(byte(col.NestedType))
	n := len(col.Positions)
	b.u32(uint32(n))

	valueOffsetPos := make([]int, n)
	for i := range valueOffsetPos {
		valueOffsetPos[i] = b.reserveU64()
	}
	for _, p := range col.Positions {
		b.u32(p)
	}

	colBodyStart := b.Len()
	for i := 0; i < n; i++ {
		entryStart := b.Len()
		b.patchU64(valueOffsetPos[i], uint64(entryStart-colBodyStart))
		if col.NestedType == doc.Object {
			subs := col.Objects[i]
			b.u32(uint32(len(subs)))
			for _, sub := range subs {
				if _, err := writeObject(b, d, gen, sub); err != nil {
					return err
				}
			}
			continue
		}
		seq := col.Values[i]
		b.u32(uint32(len(seq)))
		for _, v := range seq {
			if err := writeValue(b, d, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeValue emits one fixed-width scalar, narrowed to its type's
// wire size; strings are written as their dictionary id (spec §3:
// "string is represented as a 64-bit id after interning").
func writeValue(b *buffer, d dict.Dictionary, v doc.Value) error {
	switch v.Type {
	case doc.Bool:
		b.byte(byte(v.Bool))
	case doc.I8:
		b.byte(byte(int8(v.Int)))
	case doc.I16:
		b.i16(int16(v.Int))
	case doc.I32:
		b.i32(int32(v.Int))
	case doc.I64:
		b.i64(v.Int)
	case doc.U8:
		b.byte(byte(v.Uint))
	case doc.U16:
		b.u16(uint16(v.Uint))
	case doc.U32:
		b.u32(uint32(v.Uint))
	case doc.U64:
		b.u64(v.Uint)
	case doc.F32:
		b.f32(v.Float)
	case doc.String:
		id := d.LocateFast([]string{v.Str})[0]
		b.u64(uint64(id))
	default:
		return carbonerr.New(carbonerr.Type, "archive.writeValue", "unexpected value type in property block")
	}
	return nil
}
