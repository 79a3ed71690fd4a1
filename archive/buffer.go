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
	"io"
	"math"
)

// buffer is the archive's binary writer: an append-only byte slice
// plus offset-patching support, grounded on ion.Buffer's grow/segment
// approach but simplified since every field here is fixed-width
// (u32/u64), unlike ion's variable-length TLV encoding. Callers write
// a placeholder of zeros for any value not yet known (an object's
// eventual offset, a forward reference) and patch it once the value
// is known, per spec §4.5: "the offset column is written as zeros,
// then patched after each object is emitted".
type buffer struct {
	buf []byte
}

// Len returns the current absolute write position.
func (b *buffer) Len() int { return len(b.buf) }

// Bytes returns the buffer's contents.
func (b *buffer) Bytes() []byte { return b.buf }

func (b *buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	return int64(n), err
}

func (b *buffer) grow(n int) []byte {
	off := len(b.buf)
	if cap(b.buf)-off >= n {
		b.buf = b.buf[:off+n]
	} else {
		nb := make([]byte, off+n, 2*(off+n)+64)
		copy(nb, b.buf)
		b.buf = nb
	}
	return b.buf[off:]
}

func (b *buffer) byte(v byte) { b.buf = append(b.buf, v) }

func (b *buffer) marker(m marker) { b.buf = append(b.buf, byte(m)) }

func (b *buffer) u16(v uint16) {
	binary.LittleEndian.PutUint16(b.grow(2), v)
}

func (b *buffer) i16(v int16) { b.u16(uint16(v)) }

func (b *buffer) u32(v uint32) {
	binary.LittleEndian.PutUint32(b.grow(4), v)
}

func (b *buffer) i32(v int32) { b.u32(uint32(v)) }

func (b *buffer) u64(v uint64) {
	binary.LittleEndian.PutUint64(b.grow(8), v)
}

func (b *buffer) i64(v int64) { b.u64(uint64(v)) }

func (b *buffer) f32(v float32) {
	binary.LittleEndian.PutUint32(b.grow(4), math.Float32bits(v))
}

func (b *buffer) bytes(p []byte) {
	copy(b.grow(len(p)), p)
}

// reserveU64 writes a zero placeholder and returns its absolute
// position so a later patchU64 call can fill it in.
func (b *buffer) reserveU64() int {
	pos := len(b.buf)
	b.u64(0)
	return pos
}

// patchU64 overwrites the 8 bytes at pos (previously produced by
// reserveU64) with v.
func (b *buffer) patchU64(pos int, v uint64) {
	binary.LittleEndian.PutUint64(b.buf[pos:pos+8], v)
}
