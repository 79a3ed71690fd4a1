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

func TestSortScalarColumnOrdersByValue(t *testing.T) {
	o := doc.NewObject()
	_ = o.Put("c", doc.RawUint(3))
	_ = o.Put("a", doc.RawUint(1))
	_ = o.Put("b", doc.RawUint(2))

	d, c := mustTransform(t, o)
	Sort(d, c)

	sc := c.Scalars[doc.U8]
	for i := 1; i < len(sc.Values); i++ {
		if sc.Values[i-1].Uint > sc.Values[i].Uint {
			t.Fatalf("values not ascending: %v", sc.Values)
		}
	}
}

func TestSortArrayColumnElementwise(t *testing.T) {
	o := doc.NewObject()
	_ = o.PutArray("z", []doc.RawValue{doc.RawUint(9), doc.RawUint(9)})
	_ = o.PutArray("y", []doc.RawValue{doc.RawUint(1), doc.RawUint(2)})

	d, c := mustTransform(t, o)
	Sort(d, c)

	ac := c.Arrays[doc.U8]
	if !arrayLEQ(ac.Values[0], ac.Values[1]) {
		t.Fatalf("expected first array <= second after sort: %v", ac.Values)
	}
}

func TestSortObjectArrayGroupsByOuterKey(t *testing.T) {
	o := doc.NewObject()
	e1 := doc.NewObject()
	_ = e1.Put("k", doc.RawUint(1))
	_ = o.PutArray("zs", []doc.RawValue{doc.RawObject(e1)})
	e2 := doc.NewObject()
	_ = e2.Put("k", doc.RawUint(2))
	_ = o.PutArray("as", []doc.RawValue{doc.RawObject(e2)})

	d, c := mustTransform(t, o)
	Sort(d, c)

	if len(c.ObjectArrayGroups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(c.ObjectArrayGroups))
	}
	first := d.Extract([]dict.ID{c.ObjectArrayGroups[0].OuterKey})[0]
	second := d.Extract([]dict.ID{c.ObjectArrayGroups[1].OuterKey})[0]
	if first != "as" || second != "zs" {
		t.Fatalf("groups not sorted by outer key: %s, %s", first, second)
	}
}
