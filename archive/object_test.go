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
	"bytes"
	"testing"

	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/columndoc"
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

func buildFixture(t *testing.T) *doc.Object {
	t.Helper()
	inner := doc.NewObject()
	must(t, inner.Put("city", doc.RawString("Reno")))
	must(t, inner.Put("zip", doc.RawUint(89501)))

	tag1 := doc.NewObject()
	must(t, tag1.Put("name", doc.RawString("alpha")))
	tag2 := doc.NewObject()
	must(t, tag2.Put("name", doc.RawString("beta")))

	o := doc.NewObject()
	must(t, o.Put("id", doc.RawUint(42)))
	must(t, o.Put("score", doc.RawFloat(3.5)))
	must(t, o.Put("active", doc.RawBool(true)))
	must(t, o.Put("nickname", doc.RawNull()))
	must(t, o.PutArray("counts", []doc.RawValue{doc.RawUint(1), doc.RawUint(2), doc.RawUint(300)}))
	must(t, o.PutArray("nothing", []doc.RawValue{doc.RawNull(), doc.RawNull(), doc.RawNull()}))
	must(t, o.PutObject("address", inner))
	must(t, o.PutArray("tags", []doc.RawValue{doc.RawObject(tag1), doc.RawObject(tag2)}))
	return o
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func buildArchive(t *testing.T, o *doc.Object, c codec.Codec) ([]byte, *dict.Sync) {
	t.Helper()
	d := &dict.Sync{}
	if err := columndoc.Preregister(d, o); err != nil {
		t.Fatal(err)
	}
	col, err := columndoc.Transform(d, o)
	if err != nil {
		t.Fatal(err)
	}
	columndoc.Sort(d, col)

	var buf bytes.Buffer
	if err := Build(&buf, d, col, c); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes(), d
}

func TestBuildWalkRoundTrip(t *testing.T) {
	o := buildFixture(t)
	for _, c := range codec.Registered {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			data, d := buildArchive(t, o, c)

			hdr, err := ReadArchiveHeader(data)
			if err != nil {
				t.Fatalf("ReadArchiveHeader: %v", err)
			}
			if hdr.Version != formatVersion {
				t.Fatalf("unexpected version %d", hdr.Version)
			}

			p, err := Walk(data, c)
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}

			wantID := d.LocateFast([]string{"id"})[0]
			foundID := false
			for _, nt := range []doc.T{doc.U8, doc.U16, doc.U32, doc.U64} {
				if col := p.Scalars[nt]; col != nil {
					for i, k := range col.Keys {
						if k == "id" {
							foundID = true
							if col.Values[i].Uint != 42 {
								t.Fatalf("id value = %d, want 42", col.Values[i].Uint)
							}
						}
					}
				}
			}
			if !foundID {
				t.Fatalf("id key %v not found in any scalar column", wantID)
			}

			if len(p.NullKeys) != 1 || p.NullKeys[0] != "nickname" {
				t.Fatalf("NullKeys = %v, want [nickname]", p.NullKeys)
			}

			if len(p.NullArrayKeys) != 1 || p.NullArrayKeys[0] != "nothing" || p.NullArrayLengths[0] != 3 {
				t.Fatalf("null array block = %v/%v, want [nothing]/[3]", p.NullArrayKeys, p.NullArrayLengths)
			}

			foundCounts := false
			for _, t2 := range []doc.T{doc.U8, doc.U16, doc.U32, doc.U64} {
				ac := p.Arrays[t2]
				if ac == nil {
					continue
				}
				for i, k := range ac.Keys {
					if k == "counts" {
						foundCounts = true
						got := []uint64{}
						for _, v := range ac.Values[i] {
							got = append(got, v.Uint)
						}
						if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 300 {
							t.Fatalf("counts = %v, want [1 2 300]", got)
						}
					}
				}
			}
			if !foundCounts {
				t.Fatal("counts array key not found")
			}

			if len(p.ObjectKeys) != 1 || p.ObjectKeys[0] != "address" {
				t.Fatalf("ObjectKeys = %v, want [address]", p.ObjectKeys)
			}
			addr := p.ObjectVals[0]
			foundCity := false
			if sc := addr.Scalars[doc.String]; sc != nil {
				for i, k := range sc.Keys {
					if k == "city" && sc.Values[i].Str == "Reno" {
						foundCity = true
					}
				}
			}
			if !foundCity {
				t.Fatal("nested address.city = Reno not found")
			}

			if len(p.ObjectArrayGroups) != 1 || p.ObjectArrayGroups[0].OuterKey != "tags" {
				t.Fatalf("ObjectArrayGroups = %+v, want one group keyed tags", p.ObjectArrayGroups)
			}
			group := p.ObjectArrayGroups[0]
			if len(group.Columns) != 1 || group.Columns[0].NestedKey != "name" {
				t.Fatalf("tags columns = %+v, want one column keyed name", group.Columns)
			}
			names := map[string]bool{}
			for _, v := range group.Columns[0].Values {
				if len(v) != 1 {
					t.Fatalf("tags.name occurrence = %v, want single value", v)
				}
				names[v[0].Str] = true
			}
			if !names["alpha"] || !names["beta"] {
				t.Fatalf("tags.name values = %v, want alpha and beta", names)
			}
		})
	}
}

func TestReadArchiveHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, archiveHeaderSize)
	copy(buf, "GARBAGE1")
	if _, err := ReadArchiveHeader(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadArchiveHeaderRejectsTruncated(t *testing.T) {
	if _, err := ReadArchiveHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestObjectIDGenExhaustion(t *testing.T) {
	g := &objectIDGen{seed: 0, counter: (uint64(1) << objectIDCounterBits) - 1}
	if _, err := g.next(); err != nil {
		t.Fatalf("unexpected error on last valid id: %v", err)
	}
	if _, err := g.next(); err == nil {
		t.Fatal("expected THREAD_OOO_OBJ_IDS error on exhaustion")
	}
}
