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

// Package columndoc implements the columnar transform (component C4)
// that pivots a doc.Object tree into per-type key/value columns and
// object-array column groups, and the read-optimization sort pass
// (component C5) that orders those columns for binary-search access.
package columndoc

import (
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

// ScalarColumn is the parallel (keys_t, vals_t) pair for one primitive
// type's single-valued properties.
type ScalarColumn struct {
	Keys   []dict.ID
	Values []doc.Value
}

// ArrayColumn is the parallel (array_keys_t, array_vals_t) pair for
// one primitive type's array-valued properties; Values[i] is the
// ordered sequence of elements for the i'th array.
type ArrayColumn struct {
	Keys   []dict.ID
	Values [][]doc.Value
}

// ObjectArrayColumn is one column inside an object-array column group:
// all occurrences, across every element object of the source array, of
// a single (nested-key, nested-type) pair (spec §3, §4.3).
type ObjectArrayColumn struct {
	NestedKey  dict.ID
	NestedType doc.T

	// Positions[i] is the index of the source array element that
	// contributed Values[i] (or Objects[i]).
	Positions []uint32

	// Values holds the occurrence's value sequence when NestedType is
	// not doc.Object; Objects holds the recursively-transformed nested
	// ColumnObjects when NestedType is doc.Object. Exactly one of the
	// two is populated, selected by NestedType.
	Values  [][]doc.Value
	Objects [][]*ColumnObject
}

// ObjectArrayGroup is every column produced by pivoting one
// array-of-objects valued key.
type ObjectArrayGroup struct {
	OuterKey dict.ID
	Columns  []*ObjectArrayColumn
}

func (g *ObjectArrayGroup) column(nestedKey dict.ID, nestedType doc.T) *ObjectArrayColumn {
	for _, c := range g.Columns {
		if c.NestedKey == nestedKey && c.NestedType == nestedType {
			return c
		}
	}
	c := &ObjectArrayColumn{NestedKey: nestedKey, NestedType: nestedType}
	g.Columns = append(g.Columns, c)
	return c
}

// ColumnObject is one columnar node of the transform, one per doc.Object
// in the source tree (spec §3's "columnar model").
type ColumnObject struct {
	NullKeys []dict.ID

	// NullArrayKeys/NullArrayLengths is the dedicated pair for
	// all-null arrays (spec §3): rather than storing a full value
	// sequence of sentinel nulls, only the key and element count are
	// kept, matching §4.4's "null vectors are not sorted — only counts
	// exist".
	NullArrayKeys    []dict.ID
	NullArrayLengths []uint32

	// Scalars and Arrays are keyed by T (excluding doc.Null, which
	// routes to NullKeys/NullArrayKeys+Lengths, and doc.Object, which
	// has its own dedicated ObjectKeys/ObjectVals and
	// ObjectArrayGroups lists per spec §3).
	Scalars map[doc.T]*ScalarColumn
	Arrays  map[doc.T]*ArrayColumn

	ObjectKeys []dict.ID
	ObjectVals []*ColumnObject

	ObjectArrayGroups []*ObjectArrayGroup
}

func newColumnObject() *ColumnObject {
	return &ColumnObject{
		Scalars: make(map[doc.T]*ScalarColumn),
		Arrays:  make(map[doc.T]*ArrayColumn),
	}
}

func (c *ColumnObject) scalarColumn(t doc.T) *ScalarColumn {
	s, ok := c.Scalars[t]
	if !ok {
		s = &ScalarColumn{}
		c.Scalars[t] = s
	}
	return s
}

func (c *ColumnObject) arrayColumn(t doc.T) *ArrayColumn {
	a, ok := c.Arrays[t]
	if !ok {
		a = &ArrayColumn{}
		c.Arrays[t] = a
	}
	return a
}

func (c *ColumnObject) group(outerKey dict.ID) *ObjectArrayGroup {
	for _, g := range c.ObjectArrayGroups {
		if g.OuterKey == outerKey {
			return g
		}
	}
	g := &ObjectArrayGroup{OuterKey: outerKey}
	c.ObjectArrayGroups = append(c.ObjectArrayGroups, g)
	return g
}
