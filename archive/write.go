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
	"io"
	"sort"

	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/columndoc"
	"github.com/carbonfmt/carbon/dict"
)

// Build serializes root (a fully transformed, optionally sorted
// ColumnObject) to w, following the fixed top-level layout of spec
// §4.5: [ArchiveHeader] [StringTable] [RecordHeader] [RootObject]. A
// string-id index is never appended here; baking one is strindex's
// job, run against the committed file this function produces.
func Build(w io.Writer, d dict.Dictionary, root *columndoc.ColumnObject, c codec.Codec) error {
	entries := d.Contents()
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	b := &buffer{}
	rootOffsetPos, indexOffsetPos := writeArchiveHeaderPlaceholder(b)
	writeStringTable(b, entries, c)

	b.marker(markerRecordHeader)
	b.u32(0) // record flags: reserved, unused by this format revision
	recordSizePos := b.reserveU64()

	recordBodyStart := b.Len()
	gen := newObjectIDGen()
	rootStart, err := writeObject(b, d, gen, root)
	if err != nil {
		return err
	}

	b.patchU64(recordSizePos, uint64(b.Len()-recordBodyStart))
	b.patchU64(rootOffsetPos, uint64(rootStart))
	b.patchU64(indexOffsetPos, 0)

	_, err = b.WriteTo(w)
	return err
}
