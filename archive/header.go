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
)

// magic identifies a carbon archive file; a mismatch is a NOARCHIVEFILE
// failure (spec §6).
var magic = [8]byte{'C', 'A', 'R', 'B', 'O', 'N', '1', 0}

// formatVersion gates wire compatibility; a mismatch is a FORMATVERERR
// failure (spec §6).
const formatVersion uint32 = 1

// ArchiveHeader is the fixed top-level header (spec §4.5).
type ArchiveHeader struct {
	Version                     uint32
	RootObjectOffset            uint64
	StringIDToOffsetIndexOffset uint64 // 0 if absent
}

const archiveHeaderSize = 8 + 4 + 8 + 8

func writeArchiveHeaderPlaceholder(b *buffer) (rootOffsetPos, indexOffsetPos int) {
	b.bytes(magic[:])
	b.u32(formatVersion)
	rootOffsetPos = b.reserveU64()
	indexOffsetPos = b.reserveU64()
	return
}

// ReadArchiveHeader decodes the fixed header from the front of buf.
func ReadArchiveHeader(buf []byte) (ArchiveHeader, error) {
	if len(buf) < archiveHeaderSize {
		return ArchiveHeader{}, carbonerr.New(carbonerr.Format, "archive.ReadArchiveHeader", "truncated archive header")
	}
	for i := range magic {
		if buf[i] != magic[i] {
			return ArchiveHeader{}, carbonerr.New(carbonerr.Format, "archive.ReadArchiveHeader", "NOARCHIVEFILE: bad magic")
		}
	}
	h := ArchiveHeader{
		Version:                     binary.LittleEndian.Uint32(buf[8:12]),
		RootObjectOffset:            binary.LittleEndian.Uint64(buf[12:20]),
		StringIDToOffsetIndexOffset: binary.LittleEndian.Uint64(buf[20:28]),
	}
	if h.Version != formatVersion {
		return h, carbonerr.New(carbonerr.Format, "archive.ReadArchiveHeader", "FORMATVERERR: unsupported version")
	}
	return h, nil
}

// RecordHeader precedes the root object (spec §4.5).
type RecordHeader struct {
	Flags      uint32
	RecordSize uint64
}
