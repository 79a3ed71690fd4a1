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
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Zstd is a per-entry zstd codec, supplementing spec §6's two named
// codecs (none, Huffman) with a third real compressor from the same
// library family the rest of the corpus uses for block compression.
type Zstd struct{}

func (Zstd) Name() string    { return "zstd" }
func (Zstd) FlagBit() uint32 { return 2 }

func (Zstd) WriteExtra(dst []byte) []byte { return dst }
func (Zstd) ReadExtra(src []byte) ([]byte, error) {
	return src, nil
}

var (
	zstdEncOnce sync.Once
	zstdEnc     *zstd.Encoder
	zstdDecOnce sync.Once
	zstdDec     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	zstdEncOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	})
	return zstdEnc
}

func zstdDecoder() *zstd.Decoder {
	zstdDecOnce.Do(func() {
		zstdDec, _ = zstd.NewReader(nil)
	})
	return zstdDec
}

func (Zstd) Encode(dst []byte, s string) []byte {
	return zstdEncoder().EncodeAll([]byte(s), dst)
}

func (Zstd) Decode(dst []byte, src []byte, n int) ([]byte, error) {
	out, err := zstdDecoder().DecodeAll(src, dst)
	if err != nil {
		return nil, fmt.Errorf("codec.Zstd.Decode: %w", err)
	}
	if len(out)-len(dst) != n {
		return nil, fmt.Errorf("codec.Zstd.Decode: expected %d bytes, got %d", n, len(out)-len(dst))
	}
	return out, nil
}

func (Zstd) PrintExtra() string { return "" }

func (Zstd) PrintEncoded(src []byte, n int) string {
	return fmt.Sprintf("zstd:%d bytes -> %d bytes", len(src), n)
}
