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

import "github.com/carbonfmt/carbon/carbonerr"

// Put sets key to a single scalar value (spec §4.2's per-JSON-member
// table). A RawNull() value produces a length-0 Entry (a JSON null
// property); any other RawValue produces a length-1 Entry narrowed to
// its scalar type.
func (o *Object) Put(key string, v RawValue) error {
	if v.kind == rawArray {
		return carbonerr.New(carbonerr.Invariant, "doc.Put", "bare array marker is not a valid scalar")
	}
	e := Entry{Key: key, Type: v.scalarType()}
	if v.kind != rawNull {
		e.Values = []Value{v.toValue(e.Type)}
	}
	o.Entries = append(o.Entries, e)
	return nil
}

// PutArray sets key to an array of elements (spec §4.2, §4.3). A
// single-element array produces a length-1 entry, the same shape as a
// scalar: nothing in the Entry records that it came from an array
// literal, and columndoc.Transform treats it as a scalar. Empty arrays
// produce a length-0 entry of type Null, the same shape as a JSON null
// property.
func (o *Object) PutArray(key string, elems []RawValue) error {
	for _, e := range elems {
		if e.kind == rawArray {
			return carbonerr.New(carbonerr.Invariant, "doc.PutArray", "ARRAY_OF_ARRAYS: array elements must not themselves be arrays")
		}
	}
	t, err := joinArrayType(elems)
	if err != nil {
		return err
	}
	entry := Entry{Key: key, Type: t}
	if len(elems) > 0 {
		entry.Values = make([]Value, len(elems))
		for i, e := range elems {
			if e.kind == rawNull || t == Null {
				entry.Values[i] = nullValue(t)
				continue
			}
			entry.Values[i] = e.toValue(t)
		}
	}
	o.Entries = append(o.Entries, entry)
	return nil
}

// PutObject sets key to a single nested object.
func (o *Object) PutObject(key string, v *Object) error {
	return o.Put(key, RawObject(v))
}

// joinArrayType validates the mixed-type rule and computes the join
// type for a (possibly empty) array of raw elements (spec §4.2).
func joinArrayType(elems []RawValue) (T, error) {
	var (
		seenCat     category
		haveSeenCat bool
		sawFloat    bool
		sawSigned   bool
		maxRank     int = -1
		anyNonNull  bool
	)
	for _, e := range elems {
		cat := e.category()
		if cat == catNull {
			continue
		}
		anyNonNull = true
		if !haveSeenCat {
			seenCat = cat
			haveSeenCat = true
		} else if cat != seenCat {
			return Null, carbonerr.New(carbonerr.Invariant, "doc.PutArray",
				"ARRAY_OF_MIXED_TYPES: array elements must share one non-null category")
		}
		if cat != catNumeric {
			continue
		}
		if e.kind == rawFloat {
			sawFloat = true
			continue
		}
		if e.kind == rawInt {
			sawSigned = true
		}
		var r int
		if e.kind == rawInt {
			r = rank(NarrowSigned(e.integer))
		} else {
			r = rank(NarrowUnsigned(e.uint))
		}
		if r > maxRank {
			maxRank = r
		}
	}
	if !anyNonNull {
		// empty array, or an array of all-null elements: spec §8's
		// boundary case ("single null-array property with the count
		// as its value").
		return Null, nil
	}
	switch seenCat {
	case catBool:
		return Bool, nil
	case catString:
		return String, nil
	case catObject:
		return Object, nil
	}
	// catNumeric: resolve via the widening lattice. A later pass over
	// all non-null numeric elements may still require widening beyond
	// what any single element's scalarType would need, e.g. an array
	// of u8-sized values that also contains one negative element must
	// become the narrowest *signed* type that fits every element, not
	// just the negative one (spec §4.2: "the chosen array element type
	// is the join under the lattice").
	if sawFloat {
		return F32, nil
	}
	if sawSigned {
		// recompute maxRank purely in the signed branch, since an
		// element originally ranked under its unsigned scalar type
		// may need a wider signed type to hold the same value.
		maxRank = -1
		for _, e := range elems {
			if e.category() != catNumeric || e.kind == rawFloat {
				continue
			}
			r := rank(NarrowSigned(e.asSigned()))
			if r > maxRank {
				maxRank = r
			}
		}
		return signedFromRank(maxRank), nil
	}
	return unsignedFromRank(maxRank), nil
}

func signedFromRank(r int) T {
	switch r {
	case 0:
		return I8
	case 1:
		return I16
	case 2:
		return I32
	default:
		return I64
	}
}

func unsignedFromRank(r int) T {
	switch r {
	case 0:
		return U8
	case 1:
		return U16
	case 2:
		return U32
	default:
		return U64
	}
}
