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

import "testing"

func TestPutScalarTypes(t *testing.T) {
	o := NewObject()
	if err := o.Put("a", RawUint(1)); err != nil {
		t.Fatal(err)
	}
	if err := o.Put("b", RawString("x")); err != nil {
		t.Fatal(err)
	}
	if got := o.Entries[0].Type; got != U8 {
		t.Fatalf("a: want u8, got %s", got)
	}
	if got := o.Entries[1].Type; got != String {
		t.Fatalf("b: want string, got %s", got)
	}
	if len(o.Entries[0].Values) != 1 || len(o.Entries[1].Values) != 1 {
		t.Fatalf("scalars must produce exactly one value")
	}
}

func TestPutArraySignedWidening(t *testing.T) {
	o := NewObject()
	err := o.PutArray("xs", []RawValue{RawUint(1), RawInt(-2), RawUint(3)})
	if err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != I8 {
		t.Fatalf("want i8, got %s", e.Type)
	}
	want := []int64{1, -2, 3}
	for i, v := range e.Values {
		if v.Int != want[i] {
			t.Fatalf("value %d: want %d, got %d", i, want[i], v.Int)
		}
	}
}

func TestPutArrayOfArraysRejected(t *testing.T) {
	o := NewObject()
	err := o.PutArray("a", []RawValue{RawArray()})
	if err == nil {
		t.Fatal("expected ARRAY_OF_ARRAYS error, got nil")
	}
}

func TestPutArrayMixedTypesRejected(t *testing.T) {
	o := NewObject()
	err := o.PutArray("a", []RawValue{RawUint(1), RawString("x")})
	if err == nil {
		t.Fatal("expected ARRAY_OF_MIXED_TYPES error, got nil")
	}
}

func TestPutArrayU32Boundary(t *testing.T) {
	o := NewObject()
	err := o.PutArray("a", []RawValue{RawUint(1<<32 - 1)})
	if err != nil {
		t.Fatal(err)
	}
	if got := o.Entries[0].Type; got != U32 {
		t.Fatalf("2^32-1 alone: want u32, got %s", got)
	}

	o2 := NewObject()
	err = o2.PutArray("a", []RawValue{RawUint(1<<32 - 1), RawUint(1 << 32)})
	if err != nil {
		t.Fatal(err)
	}
	if got := o2.Entries[0].Type; got != U64 {
		t.Fatalf("adding 2^32: want u64, got %s", got)
	}
}

func TestPutArrayAllNull(t *testing.T) {
	o := NewObject()
	if err := o.PutArray("a", []RawValue{RawNull(), RawNull()}); err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != Null {
		t.Fatalf("want null, got %s", e.Type)
	}
	if len(e.Values) != 2 {
		t.Fatalf("want 2 null-filled values, got %d", len(e.Values))
	}
}

func TestPutArrayEmpty(t *testing.T) {
	o := NewObject()
	if err := o.PutArray("a", nil); err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != Null {
		t.Fatalf("empty array: want null, got %s", e.Type)
	}
	if len(e.Values) != 0 {
		t.Fatalf("empty array: want 0 values, got %d", len(e.Values))
	}
}

func TestPutArrayNullCompatibleWithAnyCategory(t *testing.T) {
	o := NewObject()
	err := o.PutArray("a", []RawValue{RawString("x"), RawNull(), RawString("y")})
	if err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != String {
		t.Fatalf("want string, got %s", e.Type)
	}
	if e.Values[1].Str != "" || !e.Values[1].IsNullSentinel() {
		t.Fatalf("null element should be the empty-string sentinel")
	}
}

func TestPutArrayFloatWidening(t *testing.T) {
	o := NewObject()
	err := o.PutArray("a", []RawValue{RawUint(1), RawFloat(2.5)})
	if err != nil {
		t.Fatal(err)
	}
	if got := o.Entries[0].Type; got != F32 {
		t.Fatalf("want f32, got %s", got)
	}
}

func TestPutObjectArrayType(t *testing.T) {
	o := NewObject()
	child1 := NewObject()
	_ = child1.Put("k", RawUint(1))
	child2 := NewObject()
	_ = child2.Put("k", RawUint(2))
	_ = child2.Put("v", RawString("x"))

	err := o.PutArray("items", []RawValue{RawObject(child1), RawObject(child2)})
	if err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != Object {
		t.Fatalf("want object, got %s", e.Type)
	}
	if len(e.Values) != 2 || e.Values[0].Object != child1 || e.Values[1].Object != child2 {
		t.Fatalf("object array values not preserved")
	}
}

func TestPutArrayBoolean(t *testing.T) {
	o := NewObject()
	err := o.PutArray("flags", []RawValue{RawBool(true), RawNull(), RawBool(false)})
	if err != nil {
		t.Fatal(err)
	}
	e := o.Entries[0]
	if e.Type != Bool {
		t.Fatalf("want bool, got %s", e.Type)
	}
	if v, isNull := e.Values[0].AsBool(); isNull || !v {
		t.Fatalf("element 0: want true, got %v (null=%v)", v, isNull)
	}
	if _, isNull := e.Values[1].AsBool(); !isNull {
		t.Fatalf("element 1: want null")
	}
	if v, isNull := e.Values[2].AsBool(); isNull || v {
		t.Fatalf("element 2: want false, got %v (null=%v)", v, isNull)
	}
}
