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

package strindex

import "testing"

func identity(k uint64) uint64 { return k }

func TestInsertGet(t *testing.T) {
	tbl := New[uint64, uint64](4, HashID)
	for i := uint64(0); i < 100; i++ {
		tbl.InsertOrUpdate(i, i*10)
	}
	if tbl.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", tbl.Len())
	}
	for i := uint64(0); i < 100; i++ {
		v, ok := tbl.Get(i)
		if !ok || v != i*10 {
			t.Fatalf("Get(%d) = %d, %v; want %d, true", i, v, ok, i*10)
		}
	}
	if _, ok := tbl.Get(12345); ok {
		t.Fatal("Get of absent key reported found")
	}
}

func TestInsertOrUpdateOverwrites(t *testing.T) {
	tbl := New[uint64, uint64](4, identity)
	tbl.InsertOrUpdate(7, 1)
	tbl.InsertOrUpdate(7, 2)
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	v, ok := tbl.Get(7)
	if !ok || v != 2 {
		t.Fatalf("Get(7) = %d, %v; want 2, true", v, ok)
	}
}

func TestRemoveIfContained(t *testing.T) {
	tbl := New[uint64, uint64](4, identity)
	for i := uint64(0); i < 20; i++ {
		tbl.InsertOrUpdate(i, i)
	}
	if !tbl.RemoveIfContained(5) {
		t.Fatal("RemoveIfContained(5) = false, want true")
	}
	if tbl.RemoveIfContained(5) {
		t.Fatal("second RemoveIfContained(5) = true, want false")
	}
	if _, ok := tbl.Get(5); ok {
		t.Fatal("Get(5) found after removal")
	}
	for i := uint64(0); i < 20; i++ {
		if i == 5 {
			continue
		}
		if _, ok := tbl.Get(i); !ok {
			t.Fatalf("Get(%d) missing after unrelated removal", i)
		}
	}
}

func TestRehashPreservesContents(t *testing.T) {
	tbl := New[uint64, uint64](2, HashID)
	for i := uint64(0); i < 50; i++ {
		tbl.InsertOrUpdate(i, i+1000)
	}
	for i := uint64(0); i < 50; i++ {
		v, ok := tbl.Get(i)
		if !ok || v != i+1000 {
			t.Fatalf("Get(%d) = %d, %v; want %d, true", i, v, ok, i+1000)
		}
	}
}

func TestAverageDisplacementNonNegative(t *testing.T) {
	tbl := New[uint64, uint64](8, HashID)
	for i := uint64(0); i < 30; i++ {
		tbl.InsertOrUpdate(i, i)
	}
	if d := tbl.AverageDisplacement(); d < 0 {
		t.Fatalf("AverageDisplacement() = %f, want >= 0", d)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	tbl := New[uint64, uint64](4, HashID)
	want := map[uint64]uint64{1: 100, 2: 200, 42: 4242, 999: 1}
	for k, v := range want {
		tbl.InsertOrUpdate(k, v)
	}

	buf := Marshal(tbl)
	got, err := Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", got.Len(), len(want))
	}
	for k, v := range want {
		gv, ok := got.Get(k)
		if !ok || gv != v {
			t.Fatalf("Get(%d) = %d, %v; want %d, true", k, gv, ok, v)
		}
	}
}

func TestUnmarshalRejectsBadMarker(t *testing.T) {
	buf := make([]byte, headerSize)
	if _, err := Unmarshal(buf); err == nil {
		t.Fatal("expected error for missing index marker")
	}
}
