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
	"encoding/binary"

	"github.com/carbonfmt/carbon/carbonerr"
)

// indexMarker tags the start of a serialized index block, distinct
// from archive's own marker alphabet since a baked index is appended
// to, not interleaved with, the archive's record stream.
const indexMarker = 'X'

const (
	keySize   = 8
	valueSize = 8
	// bucketRecordSize is in_use(1) + displacement(4) + num_probes(4) +
	// key(8) + value(8).
	bucketRecordSize = 1 + 4 + 4 + keySize + valueSize
)

// headerSize is marker(1) + capacity(4) + num_elems(4) + key_size(4) +
// value_size(4) + grow_factor(4), spec §4.6's serialized header tuple.
const headerSize = 1 + 4 + 4 + 4 + 4 + 4

// Marshal serializes t (a Table[uint64, uint64]) to its wire form:
// the header tuple spec §4.6 names, followed by one fixed-width
// record per bucket slot, occupied or not, so the array can be loaded
// back verbatim without needing to re-run robin-hood insertion.
func Marshal(t *Table[uint64, uint64]) []byte {
	out := make([]byte, headerSize+len(t.buckets)*bucketRecordSize)
	out[0] = indexMarker
	binary.LittleEndian.PutUint32(out[1:5], uint32(len(t.buckets)))
	binary.LittleEndian.PutUint32(out[5:9], uint32(t.size))
	binary.LittleEndian.PutUint32(out[9:13], keySize)
	binary.LittleEndian.PutUint32(out[13:17], valueSize)
	binary.LittleEndian.PutUint32(out[17:21], growFactor)

	pos := headerSize
	for _, b := range t.buckets {
		if b.inUse {
			out[pos] = 1
		}
		binary.LittleEndian.PutUint32(out[pos+1:pos+5], uint32(b.displacement))
		binary.LittleEndian.PutUint32(out[pos+5:pos+9], b.numProbes)
		binary.LittleEndian.PutUint64(out[pos+9:pos+17], b.key)
		binary.LittleEndian.PutUint64(out[pos+17:pos+25], b.value)
		pos += bucketRecordSize
	}
	return out
}

// Unmarshal decodes a Table[uint64, uint64] previously produced by
// Marshal.
func Unmarshal(buf []byte) (*Table[uint64, uint64], error) {
	if len(buf) < headerSize || buf[0] != indexMarker {
		return nil, carbonerr.New(carbonerr.Format, "strindex.Unmarshal", "expected string-id index marker")
	}
	capacity := binary.LittleEndian.Uint32(buf[1:5])
	numElems := binary.LittleEndian.Uint32(buf[5:9])
	gotKeySize := binary.LittleEndian.Uint32(buf[9:13])
	gotValueSize := binary.LittleEndian.Uint32(buf[13:17])
	if gotKeySize != keySize || gotValueSize != valueSize {
		return nil, carbonerr.New(carbonerr.Format, "strindex.Unmarshal", "unsupported key/value size")
	}
	want := headerSize + int(capacity)*bucketRecordSize
	if len(buf) < want {
		return nil, carbonerr.New(carbonerr.Format, "strindex.Unmarshal", "truncated index body")
	}

	t := &Table[uint64, uint64]{
		buckets: make([]bucket[uint64, uint64], capacity),
		hash:    HashID,
	}
	pos := headerSize
	for i := uint32(0); i < capacity; i++ {
		b := &t.buckets[i]
		b.inUse = buf[pos] != 0
		b.displacement = int32(binary.LittleEndian.Uint32(buf[pos+1 : pos+5]))
		b.numProbes = binary.LittleEndian.Uint32(buf[pos+5 : pos+9])
		b.key = binary.LittleEndian.Uint64(buf[pos+9 : pos+17])
		b.value = binary.LittleEndian.Uint64(buf[pos+17 : pos+25])
		pos += bucketRecordSize
	}
	t.size = int(numElems)
	return t, nil
}
