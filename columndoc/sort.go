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
	"bytes"
	"sort"

	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

// Sort applies the read-optimization sort pass (spec §4.4) to c and
// every object reachable from it, in place. Sort always sorts; it has
// no read-optimized switch of its own. Transform always produces an
// unsorted ColumnObject and Sort is applied separately so callers can
// skip it entirely.
func Sort(d dict.Dictionary, c *ColumnObject) {
	for _, sc := range c.Scalars {
		sortScalarColumn(sc)
	}
	for _, ac := range c.Arrays {
		sortArrayColumn(ac)
	}
	for _, sub := range c.ObjectVals {
		Sort(d, sub)
	}
	sortObjectArrayGroups(d, c.ObjectArrayGroups)
	for _, g := range c.ObjectArrayGroups {
		for _, col := range g.Columns {
			for _, subs := range col.Objects {
				for _, sub := range subs {
					Sort(d, sub)
				}
			}
		}
	}
}

// permutation returns indices 0..n-1 ordered by less, via a stable
// indirect sort (spec §4.4: "compute a permutation via quicksort...
// then materialize sorted copies").
func permutation(n int, less func(i, j int) bool) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return less(perm[a], perm[b]) })
	return perm
}

func sortScalarColumn(sc *ScalarColumn) {
	n := len(sc.Keys)
	perm := permutation(n, func(i, j int) bool {
		return compareValue(sc.Values[i], sc.Values[j]) < 0
	})
	newKeys := make([]dict.ID, n)
	newValues := make([]doc.Value, n)
	for i, p := range perm {
		newKeys[i] = sc.Keys[p]
		newValues[i] = sc.Values[p]
	}
	sc.Keys, sc.Values = newKeys, newValues
}

func sortArrayColumn(ac *ArrayColumn) {
	n := len(ac.Keys)
	perm := permutation(n, func(i, j int) bool {
		return arrayLess(ac.Values[i], ac.Values[j])
	})
	newKeys := make([]dict.ID, n)
	newValues := make([][]doc.Value, n)
	for i, p := range perm {
		newKeys[i] = ac.Keys[p]
		newValues[i] = ac.Values[p]
	}
	ac.Keys, ac.Values = newKeys, newValues
}

func sortObjectArrayGroups(d dict.Dictionary, groups []*ObjectArrayGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return extractOne(d, groups[i].OuterKey) < extractOne(d, groups[j].OuterKey)
	})
	for _, g := range groups {
		cols := g.Columns
		sort.SliceStable(cols, func(i, j int) bool {
			a, b := cols[i], cols[j]
			ka, kb := extractOne(d, a.NestedKey), extractOne(d, b.NestedKey)
			if ka != kb {
				return ka < kb
			}
			return a.NestedType < b.NestedType
		})
		for _, col := range cols {
			sortObjectArrayColumn(col)
		}
	}
}

// sortObjectArrayColumn jointly reorders Positions with Values (or
// Objects) by the column's values, per spec §4.4. Object-typed columns
// have no scalar "value" to compare by and are left in array-element
// order; their nested ColumnObjects are still sorted individually by
// the caller.
func sortObjectArrayColumn(col *ObjectArrayColumn) {
	if col.NestedType == doc.Object {
		return
	}
	n := len(col.Positions)
	perm := permutation(n, func(i, j int) bool {
		return arrayLess(col.Values[i], col.Values[j])
	})
	newPos := make([]uint32, n)
	newVals := make([][]doc.Value, n)
	for i, p := range perm {
		newPos[i] = col.Positions[p]
		newVals[i] = col.Values[p]
	}
	col.Positions, col.Values = newPos, newVals
}

func extractOne(d dict.Dictionary, id dict.ID) string {
	return d.Extract([]dict.ID{id})[0]
}

// compareValue orders two same-type values under the natural ordering
// named in spec §4.4: ascending for numerics, decoded-byte
// lexicographic for strings.
func compareValue(a, b doc.Value) int {
	switch a.Type {
	case doc.Bool:
		return int(a.Bool) - int(b.Bool)
	case doc.I8, doc.I16, doc.I32, doc.I64:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case doc.U8, doc.U16, doc.U32, doc.U64:
		switch {
		case a.Uint < b.Uint:
			return -1
		case a.Uint > b.Uint:
			return 1
		default:
			return 0
		}
	case doc.F32:
		switch {
		case a.Float < b.Float:
			return -1
		case a.Float > b.Float:
			return 1
		default:
			return 0
		}
	case doc.String:
		return bytes.Compare([]byte(a.Str), []byte(b.Str))
	default:
		return 0
	}
}

// arrayLEQ implements spec §4.4's non-total elementwise-≤ predicate:
// ∀ i < min(|a|,|b|): a[i] ≤ b[i].
func arrayLEQ(a, b []doc.Value) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if compareValue(a[i], b[i]) > 0 {
			return false
		}
	}
	return true
}

// arrayLess derives a strict order from arrayLEQ for use as a sort
// comparator. Because arrayLEQ is not a total order, this is not
// transitive in general; the sort pass is specified as "preserve the
// existing (non-total) behavior" rather than impose a total order.
func arrayLess(a, b []doc.Value) bool {
	return arrayLEQ(a, b) && !arrayLEQ(b, a)
}
