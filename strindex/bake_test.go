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

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbonfmt/carbon/archive"
	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/columndoc"
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

func TestBakeAppendsRecoverableIndex(t *testing.T) {
	o := doc.NewObject()
	if err := o.Put("city", doc.RawString("Reno")); err != nil {
		t.Fatal(err)
	}
	if err := o.Put("state", doc.RawString("NV")); err != nil {
		t.Fatal(err)
	}

	d := &dict.Sync{}
	if err := columndoc.Preregister(d, o); err != nil {
		t.Fatal(err)
	}
	col, err := columndoc.Transform(d, o)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	c := codec.Passthrough{}
	if err := archive.Build(&buf, d, col, c); err != nil {
		t.Fatal(err)
	}
	original := buf.Bytes()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.carbon")
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}

	offsets, err := archive.StringOffsets(original, c)
	if err != nil {
		t.Fatal(err)
	}

	if err := Bake(path, c); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	baked, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	hdr, err := archive.ReadArchiveHeader(baked)
	if err != nil {
		t.Fatalf("ReadArchiveHeader after bake: %v", err)
	}
	if hdr.StringIDToOffsetIndexOffset == 0 {
		t.Fatal("StringIDToOffsetIndexOffset still zero after Bake")
	}
	if int(hdr.StringIDToOffsetIndexOffset) != len(original) {
		t.Fatalf("index offset = %d, want %d (end of original content)", hdr.StringIDToOffsetIndexOffset, len(original))
	}

	tbl, err := Lookup(baked[hdr.StringIDToOffsetIndexOffset:])
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tbl.Len() != len(offsets) {
		t.Fatalf("baked index has %d entries, want %d", tbl.Len(), len(offsets))
	}
	for id, off := range offsets {
		got, ok := tbl.Get(id)
		if !ok || got != off {
			t.Fatalf("baked index Get(%d) = %d, %v; want %d, true", id, got, ok, off)
		}
	}

	// Bake may only patch the StringIDToOffsetIndexOffset field (the
	// 8 bytes at offsets 20..27 of the header); everything before it,
	// and the whole body, must survive untouched.
	if !bytes.Equal(baked[:20], original[:20]) {
		t.Fatal("bake rewrote bytes before the index-offset field")
	}
	if !bytes.Equal(baked[28:len(original)], original[28:]) {
		t.Fatal("bake rewrote archive body bytes")
	}
}
