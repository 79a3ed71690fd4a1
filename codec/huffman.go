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

package codec

import (
	"fmt"

	"github.com/klauspost/compress/huff0"
)

// Huffman is the per-entry Huffman codec named in spec §6 ("others
// (Huffman, etc.) are selectable via build/creation flags"). Each
// string is entropy-coded independently with its own table (no shared
// cross-entry table), since the string table format already carries
// an explicit length per entry.
//
// Short or already-dense strings are frequently not compressible by a
// Huffman code; huff0 reports that with ErrIncompressible/ErrUseRLE/
// ErrTooBig, in which case Encode falls back to storing the bytes
// verbatim, flagged by a one-byte prefix.
type Huffman struct{}

const (
	huffRaw        = 0
	huffCompressed = 1
)

func (Huffman) Name() string    { return "huffman" }
func (Huffman) FlagBit() uint32 { return 1 }

func (Huffman) WriteExtra(dst []byte) []byte { return dst }
func (Huffman) ReadExtra(src []byte) ([]byte, error) {
	return src, nil
}

func (Huffman) Encode(dst []byte, s string) []byte {
	var scratch huff0.Scratch
	out, _, err := huff0.Compress1X([]byte(s), &scratch)
	// err is almost always one of huff0's "didn't shrink" sentinels for
	// short strings; any other error also just falls back to raw,
	// since a string table entry must never fail to encode.
	if err != nil || len(out) >= len(s) {
		dst = append(dst, huffRaw)
		return append(dst, s...)
	}
	dst = append(dst, huffCompressed)
	return append(dst, out...)
}

func (Huffman) Decode(dst []byte, src []byte, n int) ([]byte, error) {
	if len(src) < 1 {
		return nil, fmt.Errorf("codec.Huffman.Decode: empty input")
	}
	tag, body := src[0], src[1:]
	switch tag {
	case huffRaw:
		if len(body) < n {
			return nil, fmt.Errorf("codec.Huffman.Decode: need %d raw bytes, have %d", n, len(body))
		}
		return append(dst, body[:n]...), nil
	case huffCompressed:
		var scratch huff0.Scratch
		scratch.MaxDecodedSize = n
		out, err := scratch.Decompress1X(body)
		if err != nil {
			return nil, fmt.Errorf("codec.Huffman.Decode: %w", err)
		}
		if len(out) != n {
			return nil, fmt.Errorf("codec.Huffman.Decode: expected %d bytes, got %d", n, len(out))
		}
		return append(dst, out...), nil
	default:
		return nil, fmt.Errorf("codec.Huffman.Decode: unknown entry tag %d", tag)
	}
}

func (Huffman) PrintExtra() string { return "" }

func (Huffman) PrintEncoded(src []byte, n int) string {
	if len(src) == 0 {
		return "<empty>"
	}
	if src[0] == huffRaw {
		return fmt.Sprintf("raw:%q", string(src[1:]))
	}
	return fmt.Sprintf("huffman:%d bytes -> %d bytes", len(src)-1, n)
}
