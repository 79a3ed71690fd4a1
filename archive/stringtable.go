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
	"github.com/carbonfmt/carbon/dict"
)

// writeStringTable emits the StringTable block (spec §4.5): a header
// naming the codec in use, followed by one entry per dictionary
// string, in ascending-id order (dict.Sync.SortedContents' order) so
// the table's layout is deterministic across otherwise-equal builds.
// Offsets (first_entry_offset, next_entry_offset) are relative to the
// STRTAB_HEADER marker's own absolute position, matching the
// enclosing-header-relative convention used by object offsets.
func writeStringTable(b *buffer, entries []dict.Entry, c codec.Codec) {
	tableStart := b.Len()
	b.marker(markerStrtabHeader)
	b.u32(c.FlagBit())
	b.u32(uint32(len(entries)))
	firstEntryPos := b.reserveU64()
	extraSizePos := b.reserveU64()

	extraStart := b.Len()
	b.bytes(c.WriteExtra(nil))
	b.patchU64(extraSizePos, uint64(b.Len()-extraStart))

	firstEntry := b.Len()
	b.patchU64(firstEntryPos, uint64(firstEntry-tableStart))

	// next_entry_offset always names where this entry's encoded bytes
	// end, whether that's the next STRTAB_ENTRY or (for the last entry)
	// the table's own end — so a reader never needs a sentinel to find
	// the last entry's boundary, only numEntries.
	prevNextPos := -1
	for _, e := range entries {
		entryStart := b.Len()
		if prevNextPos >= 0 {
			b.patchU64(prevNextPos, uint64(entryStart-tableStart))
		}
		b.marker(markerStrtabEntry)
		nextPos := b.reserveU64()
		b.u64(uint64(e.ID))
		b.u32(uint32(len(e.Str)))
		b.bytes(c.Encode(nil, e.Str))
		prevNextPos = nextPos
	}
	if prevNextPos >= 0 {
		b.patchU64(prevNextPos, uint64(b.Len()-tableStart))
	}
}

// stringTableEntry is one decoded STRTAB_ENTRY, as returned by
// readStringTable.
type stringTableEntry struct {
	Offset   int // absolute position of the entry's marker byte
	ID       dict.ID
	Str      string
	StrBytes int // encoded length, i.e. distance from this entry's body to the next entry
}

// readStringTable decodes every entry of the string table starting at
// tableStart (the absolute position of its STRTAB_HEADER marker),
// returning the entries and the absolute position immediately
// following the table (where the RecordHeader begins).
func readStringTable(buf []byte, tableStart int, fallback codec.Codec) ([]stringTableEntry, int, error) {
	if tableStart+25 > len(buf) || marker(buf[tableStart]) != markerStrtabHeader {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readStringTable", "expected STRTAB_HEADER marker")
	}
	flagBit := binary.LittleEndian.Uint32(buf[tableStart+1 : tableStart+5])
	numEntries := binary.LittleEndian.Uint32(buf[tableStart+5 : tableStart+9])
	firstEntryOff := binary.LittleEndian.Uint64(buf[tableStart+9 : tableStart+17])
	extraSize := binary.LittleEndian.Uint64(buf[tableStart+17 : tableStart+25])

	c := codec.ByFlagBit(flagBit)
	if c == nil {
		c = fallback
	}
	extraStart := tableStart + 25
	if extraStart+int(extraSize) > len(buf) {
		return nil, 0, carbonerr.New(carbonerr.Format, "archive.readStringTable", "truncated extra region")
	}
	if _, err := c.ReadExtra(buf[extraStart : extraStart+int(extraSize)]); err != nil {
		return nil, 0, err
	}

	out := make([]stringTableEntry, 0, numEntries)
	pos := tableStart + int(firstEntryOff)
	tableEnd := pos
	for i := uint32(0); i < numEntries; i++ {
		if pos >= len(buf) || marker(buf[pos]) != markerStrtabEntry {
			return nil, 0, carbonerr.New(carbonerr.Format, "archive.readStringTable", "expected STRTAB_ENTRY marker")
		}
		entryStart := pos
		nextOff := binary.LittleEndian.Uint64(buf[pos+1 : pos+9])
		id := binary.LittleEndian.Uint64(buf[pos+9 : pos+17])
		strLen := binary.LittleEndian.Uint32(buf[pos+17 : pos+21])
		bodyStart := pos + 21

		next := tableStart + int(nextOff)
		encoded := buf[bodyStart:next]
		decoded, err := c.Decode(nil, encoded, int(strLen))
		if err != nil {
			return nil, 0, err
		}
		out = append(out, stringTableEntry{
			Offset:   entryStart,
			ID:       dict.ID(id),
			Str:      string(decoded),
			StrBytes: next - bodyStart,
		})
		pos = next
		tableEnd = next
	}
	return out, tableEnd, nil
}
