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

import "fmt"

// Passthrough is the uncompressed codec required by spec §6 ("one
// registered codec is an uncompressed passthrough").
type Passthrough struct{}

func (Passthrough) Name() string    { return "none" }
func (Passthrough) FlagBit() uint32 { return 0 }

func (Passthrough) WriteExtra(dst []byte) []byte { return dst }
func (Passthrough) ReadExtra(src []byte) ([]byte, error) {
	return src, nil
}

func (Passthrough) Encode(dst []byte, s string) []byte {
	return append(dst, s...)
}

func (Passthrough) Decode(dst []byte, src []byte, n int) ([]byte, error) {
	if len(src) < n {
		return nil, fmt.Errorf("codec.Passthrough.Decode: need %d bytes, have %d", n, len(src))
	}
	return append(dst, src[:n]...), nil
}

func (Passthrough) PrintExtra() string { return "" }

func (Passthrough) PrintEncoded(src []byte, n int) string {
	return fmt.Sprintf("%q", string(src[:n]))
}
