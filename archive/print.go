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
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/carbonfmt/carbon/carbonerr"
	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/doc"
)

// Printed is the fully-decoded, schema-free mirror of a ColumnObject
// (spec §4.4/§7: "a validator/printer can walk the file without a
// schema"). It carries the same columnar shape that archive.Build
// serialized, with every dict.ID resolved back to its string via the
// archive's own string table — no external dictionary is consulted.
type Printed struct {
	ObjectID uint64

	NullKeys []string

	NullArrayKeys    []string
	NullArrayLengths []uint32

	Scalars map[doc.T]*PrintedScalarColumn
	Arrays  map[doc.T]*PrintedArrayColumn

	ObjectKeys []string
	ObjectVals []*Printed

	ObjectArrayGroups []*PrintedGroup
}

type PrintedScalarColumn struct {
	Keys   []string
	Values []doc.Value
}

type PrintedArrayColumn struct {
	Keys   []string
	Values [][]doc.Value
}

type PrintedColumn struct {
	NestedKey  string
	NestedType doc.T
	Positions  []uint32
	Values     [][]doc.Value
	Objects    [][]*Printed
}

type PrintedGroup struct {
	OuterKey string
	Columns  []*PrintedColumn
}

func newPrinted() *Printed {
	return &Printed{
		Scalars: make(map[doc.T]*PrintedScalarColumn),
		Arrays:  make(map[doc.T]*PrintedArrayColumn),
	}
}

// Walk decodes an entire archive file produced by Build, resolving
// every interned string via its own embedded string table. fallback
// selects the codec to use if the string table's flag bit names one
// this build doesn't recognize (mirrors readStringTable's contract).
func Walk(buf []byte, fallback codec.Codec) (*Printed, error) {
	hdr, err := ReadArchiveHeader(buf)
	if err != nil {
		return nil, err
	}
	entries, _, err := readStringTable(buf, archiveHeaderSize, fallback)
	if err != nil {
		return nil, err
	}
	strOf := make(map[uint64]string, len(entries))
	for _, e := range entries {
		strOf[uint64(e.ID)] = e.Str
	}
	root, _, err := readObject(buf, strOf, int(hdr.RootObjectOffset))
	return root, err
}

// Print is an alias of Walk naming the printer's primary use case:
// producing a human-inspectable tree for dumps and round-trip tests.
func Print(buf []byte, fallback codec.Codec) (*Printed, error) {
	return Walk(buf, fallback)
}

// readObject decodes one Object starting at pos (the absolute position
// of its ObjectHeader marker) and returns the position immediately
// following its ObjectEnd marker (next_object_or_nil sits in the
// header, before the blocks, so nothing follows the marker). Every block inside an object is
// decoded strictly in ascending flagOrder order, matching writeObject's
// own emission order, so this walk never needs the offset header's
// values for navigation; the offsets exist for random access, not
// because decoding requires them.
func readObject(buf []byte, strOf map[uint64]string, pos int) (*Printed, int, error) {
	if pos >= len(buf) || marker(buf[pos]) != markerObjectBegin {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readObject", "expected OBJECT_BEGIN marker")
	}
	p := newPrinted()
	cursor := pos + 1
	p.ObjectID = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
	cursor += 8
	flags := binary.LittleEndian.Uint32(buf[cursor : cursor+4])
	cursor += 4

	nSet := bits.OnesCount32(flags)
	cursor += nSet * 8 // offset header: one u64 per set bit
	cursor += 8        // next_object_or_nil

	for bit := 0; bit < numFlagBits; bit++ {
		if flags&(1<<uint(bit)) == 0 {
			continue
		}
		e := flagOrder[bit]
		var err error
		switch {
		case bit == flagBitFor(flagObjectScalar, doc.Null):
			cursor, err = readObjectScalarBlock(buf, strOf, cursor, p)
		case bit == flagBitFor(flagObjectArray, doc.Null):
			cursor, err = readObjectArrayBlock(buf, strOf, cursor, p)
		case e.kind == flagScalar && e.t == doc.Null:
			cursor, err = readNullBlock(buf, strOf, cursor, p)
		case e.kind == flagScalar:
			cursor, err = readFixedBlock(buf, strOf, cursor, e.t, p)
		case e.kind == flagArray && e.t == doc.Null:
			cursor, err = readNullArrayBlock(buf, strOf, cursor, p)
		case e.kind == flagArray:
			cursor, err = readArrayBlock(buf, strOf, cursor, e.t, p)
		}
		if err != nil {
			return nil, 0, err
		}
	}

	if cursor >= len(buf) || marker(buf[cursor]) != markerObjectEnd {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readObject", "expected OBJECT_END marker")
	}
	cursor++ // OBJECT_END marker
	return p, cursor, nil
}

func readNullBlock(buf []byte, strOf map[uint64]string, pos int, p *Printed) (int, error) {
	if marker(buf[pos]) != markerPropNull {
		return 0, carbonerr.New(carbonerr.Format, "archive.readNullBlock", "expected PROP_NULL marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	for i := uint32(0); i < n; i++ {
		id := binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		p.NullKeys = append(p.NullKeys, strOf[id])
		cursor += 8
	}
	return cursor, nil
}

func readNullArrayBlock(buf []byte, strOf map[uint64]string, pos int, p *Printed) (int, error) {
	if marker(buf[pos]) != markerPropNullArray {
		return 0, carbonerr.New(carbonerr.Format, "archive.readNullArrayBlock", "expected PROP_NULL_ARRAY marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	ids := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		ids[i] = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		cursor += 8
	}
	for i := uint32(0); i < n; i++ {
		p.NullArrayKeys = append(p.NullArrayKeys, strOf[ids[i]])
		p.NullArrayLengths = append(p.NullArrayLengths, binary.LittleEndian.Uint32(buf[cursor:cursor+4]))
		cursor += 4
	}
	return cursor, nil
}

func readFixedBlock(buf []byte, strOf map[uint64]string, pos int, t doc.T, p *Printed) (int, error) {
	if marker(buf[pos]) != propMarker(t) {
		return 0, carbonerr.New(carbonerr.Format, "archive.readFixedBlock", "unexpected property block marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	ids := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		ids[i] = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		cursor += 8
	}
	sc := &PrintedScalarColumn{}
	for i := uint32(0); i < n; i++ {
		v, next, err := readValue(buf, strOf, cursor, t)
		if err != nil {
			return 0, err
		}
		sc.Keys = append(sc.Keys, strOf[ids[i]])
		sc.Values = append(sc.Values, v)
		cursor = next
	}
	p.Scalars[t] = sc
	return cursor, nil
}

func readArrayBlock(buf []byte, strOf map[uint64]string, pos int, t doc.T, p *Printed) (int, error) {
	if marker(buf[pos]) != arrayMarker(t) {
		return 0, carbonerr.New(carbonerr.Format, "archive.readArrayBlock", "unexpected array block marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	ids := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		ids[i] = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		cursor += 8
	}
	lens := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		lens[i] = binary.LittleEndian.Uint32(buf[cursor : cursor+4])
		cursor += 4
	}
	ac := &PrintedArrayColumn{}
	for i := uint32(0); i < n; i++ {
		seq := make([]doc.Value, 0, lens[i])
		for j := uint32(0); j < lens[i]; j++ {
			v, next, err := readValue(buf, strOf, cursor, t)
			if err != nil {
				return 0, err
			}
			seq = append(seq, v)
			cursor = next
		}
		ac.Keys = append(ac.Keys, strOf[ids[i]])
		ac.Values = append(ac.Values, seq)
	}
	p.Arrays[t] = ac
	return cursor, nil
}

func readObjectScalarBlock(buf []byte, strOf map[uint64]string, pos int, p *Printed) (int, error) {
	if marker(buf[pos]) != markerPropObject {
		return 0, carbonerr.New(carbonerr.Format, "archive.readObjectScalarBlock", "expected PROP_OBJECT marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	ids := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		ids[i] = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		cursor += 8
	}
	cursor += int(n) * 8 // offset header: unused by this sequential walk
	for i := uint32(0); i < n; i++ {
		nested, next, err := readObject(buf, strOf, cursor)
		if err != nil {
			return 0, err
		}
		p.ObjectKeys = append(p.ObjectKeys, strOf[ids[i]])
		p.ObjectVals = append(p.ObjectVals, nested)
		cursor = next
	}
	return cursor, nil
}

func readObjectArrayBlock(buf []byte, strOf map[uint64]string, pos int, p *Printed) (int, error) {
	if marker(buf[pos]) != markerPropObjectArray {
		return 0, carbonerr.New(carbonerr.Format, "archive.readObjectArrayBlock", "expected PROP_OBJECT_ARRAY marker")
	}
	n := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	cursor := pos + 5
	ids := make([]uint64, n)
	for i := uint32(0); i < n; i++ {
		ids[i] = binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		cursor += 8
	}
	cursor += int(n) * 8 // group offset header: unused by this sequential walk
	for i := uint32(0); i < n; i++ {
		g, next, err := readColumnGroup(buf, strOf, cursor)
		if err != nil {
			return 0, err
		}
		g.OuterKey = strOf[ids[i]]
		p.ObjectArrayGroups = append(p.ObjectArrayGroups, g)
		cursor = next
	}
	return cursor, nil
}

func readColumnGroup(buf []byte, strOf map[uint64]string, pos int) (*PrintedGroup, int, error) {
	if marker(buf[pos]) != markerColumnGroup {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readColumnGroup", "expected COLUMN_GROUP marker")
	}
	numColumns := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
	numObjects := binary.LittleEndian.Uint32(buf[pos+5 : pos+9])
	cursor := pos + 9
	cursor += int(numObjects) * 8 // per-element synthesized object ids: not retained by the printer
	cursor += int(numColumns) * 8 // column offset header: unused by this sequential walk

	g := &PrintedGroup{}
	for i := uint32(0); i < numColumns; i++ {
		col, next, err := readColumn(buf, strOf, cursor)
		if err != nil {
			return nil, 0, err
		}
		g.Columns = append(g.Columns, col)
		cursor = next
	}
	return g, cursor, nil
}

func readColumn(buf []byte, strOf map[uint64]string, pos int) (*PrintedColumn, int, error) {
	if marker(buf[pos]) != markerColumn {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readColumn", "expected COLUMN marker")
	}
	nestedKeyID := binary.LittleEndian.Uint64(buf[pos+1 : pos+9])
	nestedType := doc.T(buf[pos+9])
	n := binary.LittleEndian.Uint32(buf[pos+10 : pos+14])
	cursor := pos + 14
	cursor += int(n) * 8 // value offset header: unused by this sequential walk

	col := &PrintedColumn{
		NestedKey:  strOf[nestedKeyID],
		NestedType: nestedType,
		Positions:  make([]uint32, n),
	}
	for i := uint32(0); i < n; i++ {
		col.Positions[i] = binary.LittleEndian.Uint32(buf[cursor : cursor+4])
		cursor += 4
	}

	for i := uint32(0); i < n; i++ {
		if nestedType == doc.Object {
			count := binary.LittleEndian.Uint32(buf[cursor : cursor+4])
			cursor += 4
			subs := make([]*Printed, 0, count)
			for j := uint32(0); j < count; j++ {
				sub, next, err := readObject(buf, strOf, cursor)
				if err != nil {
					return nil, 0, err
				}
				subs = append(subs, sub)
				cursor = next
			}
			col.Objects = append(col.Objects, subs)
			continue
		}
		length := binary.LittleEndian.Uint32(buf[cursor : cursor+4])
		cursor += 4
		seq := make([]doc.Value, 0, length)
		for j := uint32(0); j < length; j++ {
			v, next, err := readValue(buf, strOf, cursor, nestedType)
			if err != nil {
				return nil, 0, err
			}
			seq = append(seq, v)
			cursor = next
		}
		col.Values = append(col.Values, seq)
	}
	return col, cursor, nil
}

// readValue decodes one fixed-width scalar of type t starting at pos,
// the inverse of writeValue.
func readValue(buf []byte, strOf map[uint64]string, pos int, t doc.T) (doc.Value, int, error) {
	switch t {
	case doc.Bool:
		return doc.Value{Type: doc.Bool, Bool: int8(buf[pos])}, pos + 1, nil
	case doc.I8:
		return doc.Value{Type: doc.I8, Int: int64(int8(buf[pos]))}, pos + 1, nil
	case doc.I16:
		return doc.Value{Type: doc.I16, Int: int64(int16(binary.LittleEndian.Uint16(buf[pos : pos+2])))}, pos + 2, nil
	case doc.I32:
		return doc.Value{Type: doc.I32, Int: int64(int32(binary.LittleEndian.Uint32(buf[pos : pos+4])))}, pos + 4, nil
	case doc.I64:
		return doc.Value{Type: doc.I64, Int: int64(binary.LittleEndian.Uint64(buf[pos : pos+8]))}, pos + 8, nil
	case doc.U8:
		return doc.Value{Type: doc.U8, Uint: uint64(buf[pos])}, pos + 1, nil
	case doc.U16:
		return doc.Value{Type: doc.U16, Uint: uint64(binary.LittleEndian.Uint16(buf[pos : pos+2]))}, pos + 2, nil
	case doc.U32:
		return doc.Value{Type: doc.U32, Uint: uint64(binary.LittleEndian.Uint32(buf[pos : pos+4]))}, pos + 4, nil
	case doc.U64:
		return doc.Value{Type: doc.U64, Uint: binary.LittleEndian.Uint64(buf[pos : pos+8])}, pos + 8, nil
	case doc.F32:
		return doc.Value{Type: doc.F32, Float: math.Float32frombits(binary.LittleEndian.Uint32(buf[pos : pos+4]))}, pos + 4, nil
	case doc.String:
		id := binary.LittleEndian.Uint64(buf[pos : pos+8])
		return doc.Value{Type: doc.String, Str: strOf[id]}, pos + 8, nil
	default:
		return doc.Value{}, 0, carbonerr.New(carbonerr.Type, "archive.readValue", "unexpected value type in property block")
	}
}
