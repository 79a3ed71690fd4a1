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

package columndoc

import (
	"testing"

	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

func mustTransform(t *testing.T, o *doc.Object) (*dict.Sync, *ColumnObject) {
	t.Helper()
	d := &dict.Sync{}
	if err := Preregister(d, o); err != nil {
		t.Fatalf("preregister: %v", err)
	}
	c, err := Transform(d, o)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	return d, c
}

func TestTransformScalarsAndNulls(t *testing.T) {
	o := doc.NewObject()
	_ = o.Put("a", doc.RawUint(1))
	_ = o.Put("b", doc.RawString("x"))
	_ = o.Put("c", doc.RawNull())

	d, c := mustTransform(t, o)

	u8 := c.Scalars[doc.U8]
	if u8 == nil || len(u8.Keys) != 1 {
		t.Fatalf("expected one u8 scalar, got %v", u8)
	}
	if got := d.Extract([]dict.ID{u8.Keys[0]})[0]; got != "a" {
		t.Fatalf("want key a, got %s", got)
	}

	str := c.Scalars[doc.String]
	if str == nil || len(str.Keys) != 1 || str.Values[0].Str != "x" {
		t.Fatalf("expected one string scalar 'x', got %v", str)
	}

	if len(c.NullKeys) != 1 || d.Extract([]dict.ID{c.NullKeys[0]})[0] != "c" {
		t.Fatalf("expected null key c, got %v", c.NullKeys)
	}
}

func TestTransformArrayColumn(t *testing.T) {
	o := doc.NewObject()
	_ = o.PutArray("xs", []doc.RawValue{doc.RawUint(1), doc.RawInt(-2), doc.RawUint(3)})

	_, c := mustTransform(t, o)

	ac := c.Arrays[doc.I8]
	if ac == nil || len(ac.Keys) != 1 {
		t.Fatalf("expected one i8 array column, got %v", ac)
	}
	if len(ac.Values[0]) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(ac.Values[0]))
	}
}

func TestTransformNestedObject(t *testing.T) {
	o := doc.NewObject()
	inner := doc.NewObject()
	_ = inner.Put("k", doc.RawUint(7))
	_ = o.PutObject("nested", inner)

	_, c := mustTransform(t, o)

	if len(c.ObjectKeys) != 1 || len(c.ObjectVals) != 1 {
		t.Fatalf("expected one nested object, got keys=%v vals=%v", c.ObjectKeys, c.ObjectVals)
	}
	nestedU8 := c.ObjectVals[0].Scalars[doc.U8]
	if nestedU8 == nil || len(nestedU8.Keys) != 1 {
		t.Fatalf("expected nested scalar u8, got %v", nestedU8)
	}
}

func TestTransformObjectArrayPivot(t *testing.T) {
	o := doc.NewObject()
	c1 := doc.NewObject()
	_ = c1.Put("k", doc.RawUint(1))
	c2 := doc.NewObject()
	_ = c2.Put("k", doc.RawUint(2))
	_ = c2.Put("v", doc.RawString("x"))
	_ = o.PutArray("items", []doc.RawValue{doc.RawObject(c1), doc.RawObject(c2)})

	d, c := mustTransform(t, o)

	if len(c.ObjectArrayGroups) != 1 {
		t.Fatalf("expected one object-array group, got %d", len(c.ObjectArrayGroups))
	}
	g := c.ObjectArrayGroups[0]
	if d.Extract([]dict.ID{g.OuterKey})[0] != "items" {
		t.Fatalf("wrong outer key")
	}
	if len(g.Columns) != 2 {
		t.Fatalf("expected 2 columns (k, v), got %d", len(g.Columns))
	}
	var kCol, vCol *ObjectArrayColumn
	for _, col := range g.Columns {
		switch d.Extract([]dict.ID{col.NestedKey})[0] {
		case "k":
			kCol = col
		case "v":
			vCol = col
		}
	}
	if kCol == nil || len(kCol.Positions) != 2 {
		t.Fatalf("expected column k with 2 occurrences, got %v", kCol)
	}
	if vCol == nil || len(vCol.Positions) != 1 || vCol.Positions[0] != 1 {
		t.Fatalf("expected column v with 1 occurrence at position 1, got %v", vCol)
	}
}

func TestTransformDuplicateColumnNotDuplicated(t *testing.T) {
	o := doc.NewObject()
	elems := make([]doc.RawValue, 3)
	for i := 0; i < 3; i++ {
		e := doc.NewObject()
		_ = e.Put("k", doc.RawUint(uint64(i)))
		elems[i] = doc.RawObject(e)
	}
	_ = o.PutArray("items", elems)

	_, c := mustTransform(t, o)
	g := c.ObjectArrayGroups[0]
	if len(g.Columns) != 1 {
		t.Fatalf("expected exactly one (k, u8) column, got %d", len(g.Columns))
	}
	if len(g.Columns[0].Positions) != 3 {
		t.Fatalf("expected 3 occurrences in column k, got %d", len(g.Columns[0].Positions))
	}
}
