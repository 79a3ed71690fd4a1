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
	"encoding/binary"

	"github.com/carbonfmt/carbon/carbonerr"
	"github.com/carbonfmt/carbon/codec"
)

// StringOffsets scans a committed archive's string table and returns
// every (string_id, file_offset) pair, the exact input strindex's
// baking pass needs to build its secondary index (spec §4.6: "scan the
// archive, collect (string_id, file_offset_of_entry) pairs"). The
// offset is the absolute position of the entry's own STRTAB_ENTRY
// marker, not its encoded payload, so the index can point straight at
// a self-describing record.
func StringOffsets(buf []byte, fallback codec.Codec) (map[uint64]uint64, error) {
	entries, _, err := readStringTable(buf, archiveHeaderSize, fallback)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]uint64, len(entries))
	for _, e := range entries {
		out[uint64(e.ID)] = uint64(e.Offset)
	}
	return out, nil
}

// indexOffsetFieldPos is the absolute byte position of
// ArchiveHeader.StringIDToOffsetIndexOffset within any archive this
// package writes (spec §4.5's fixed header layout).
const indexOffsetFieldPos = 20

// PatchIndexOffset overwrites the already-validated archive header's
// StringIDToOffsetIndexOffset field in place, the final step of
// baking a string-id index onto a previously-written archive (spec
// §4.6: "the final index offset is patched into the ArchiveHeader").
func PatchIndexOffset(buf []byte, offset uint64) error {
	if len(buf) < archiveHeaderSize {
		return carbonerr.New(carbonerr.Format, "archive.PatchIndexOffset", "truncated archive header")
	}
	binary.LittleEndian.PutUint64(buf[indexOffsetFieldPos:indexOffsetFieldPos+8], offset)
	return nil
}
