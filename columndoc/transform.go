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
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

// Transform pivots o into a ColumnObject, recursing into every nested
// object and object-array element (spec §4.3). The caller must already
// have bulk-interned every string reachable from o via Preregister;
// Transform only performs locate_fast-style lookups, never Insert.
func Transform(d dict.Dictionary, o *doc.Object) (*ColumnObject, error) {
	c := newColumnObject()
	for i := range o.Entries {
		e := &o.Entries[i]
		kid := id(d, e.Key)
		switch len(e.Values) {
		case 0:
			c.NullKeys = append(c.NullKeys, kid)
		case 1:
			if err := c.putScalar(d, kid, e.Values[0]); err != nil {
				return nil, err
			}
		default:
			if e.Type == doc.Null {
				c.NullArrayKeys = append(c.NullArrayKeys, kid)
				c.NullArrayLengths = append(c.NullArrayLengths, uint32(len(e.Values)))
				continue
			}
			if e.Type != doc.Object {
				ac := c.arrayColumn(e.Type)
				ac.Keys = append(ac.Keys, kid)
				seq := make([]doc.Value, len(e.Values))
				copy(seq, e.Values)
				ac.Values = append(ac.Values, seq)
				continue
			}
			if err := c.pivotObjectArray(d, kid, e.Values); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *ColumnObject) putScalar(d dict.Dictionary, kid dict.ID, v doc.Value) error {
	if v.Type == doc.Object {
		nested, err := Transform(d, v.Object)
		if err != nil {
			return err
		}
		c.ObjectKeys = append(c.ObjectKeys, kid)
		c.ObjectVals = append(c.ObjectVals, nested)
		return nil
	}
	if v.Type == doc.Null {
		// a one-element all-null array: a null array of length 1
		c.NullArrayKeys = append(c.NullArrayKeys, kid)
		c.NullArrayLengths = append(c.NullArrayLengths, 1)
		return nil
	}
	sc := c.scalarColumn(v.Type)
	sc.Keys = append(sc.Keys, kid)
	sc.Values = append(sc.Values, v)
	return nil
}

// pivotObjectArray implements spec §4.3 step 4's object-array branch:
// for each element object at position i, and each inner entry of that
// element, locate-or-create the (outer-key, nested-key, nested-type)
// column and push that entry's occurrence onto it.
func (c *ColumnObject) pivotObjectArray(d dict.Dictionary, outerKey dict.ID, elems []doc.Value) error {
	g := c.group(outerKey)
	for i, elem := range elems {
		if elem.Object == nil {
			continue
		}
		nested := elem.Object
		for j := range nested.Entries {
			ne := &nested.Entries[j]
			nkid := id(d, ne.Key)
			col := g.column(nkid, ne.Type)
			col.Positions = append(col.Positions, uint32(i))
			if ne.Type != doc.Object {
				seq := make([]doc.Value, len(ne.Values))
				copy(seq, ne.Values)
				col.Values = append(col.Values, seq)
				continue
			}
			subs := make([]*ColumnObject, 0, len(ne.Values))
			for _, nv := range ne.Values {
				if nv.Object == nil {
					continue
				}
				sub, err := Transform(d, nv.Object)
				if err != nil {
					return err
				}
				subs = append(subs, sub)
			}
			col.Objects = append(col.Objects, subs)
		}
	}
	return nil
}

// id looks up a single preregistered string. Batch-of-one is
// acceptable here: LocateFast's contract only requires the key be
// already interned, not that lookups be batched.
func id(d dict.Dictionary, s string) dict.ID {
	return d.LocateFast([]string{s})[0]
}
