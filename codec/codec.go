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

// Package codec defines the dictionary codec plugin interface (spec
// §6) that the archive string table uses to compress interned string
// bytes, and a small registry of concrete codecs wrapping
// klauspost/compress, mirroring the unified-compressor pattern in
// compr.Compressor/Decompressor.
package codec

import "fmt"

// Codec is the pluggable packer interface an archive string table uses
// to encode and decode its string entries. WriteExtra/ReadExtra carry
// any codec-specific header the string table's "extra" region needs
// (e.g. a shared Huffman table); Encode/Decode operate per string
// entry. FlagBit identifies the codec in the string table's flags
// word so a reader can select the matching Codec without
// out-of-band configuration.
type Codec interface {
	// Name identifies the codec for diagnostics and CLI selection.
	Name() string
	// FlagBit is this codec's bit position in the string table's
	// flags word (spec §4.5).
	FlagBit() uint32
	// WriteExtra appends any codec-specific shared header to dst and
	// returns the result.
	WriteExtra(dst []byte) []byte
	// ReadExtra consumes this codec's shared header from the front of
	// src, returning the remaining bytes.
	ReadExtra(src []byte) ([]byte, error)
	// Encode appends the encoded form of s to dst and returns the
	// result.
	Encode(dst []byte, s string) []byte
	// Decode decodes exactly n original bytes from the front of src,
	// appending them to dst.
	Decode(dst []byte, src []byte, n int) ([]byte, error)
	// PrintExtra renders the codec's shared header for a human
	// readable dump (archive.Print does not call it).
	PrintExtra() string
	// PrintEncoded renders one encoded entry for a human readable
	// dump.
	PrintEncoded(src []byte, n int) string
}

// ByFlagBit returns the registered Codec owning bit, or nil if no
// registered codec claims it.
func ByFlagBit(bit uint32) Codec {
	for _, c := range Registered {
		if c.FlagBit() == bit {
			return c
		}
	}
	return nil
}

// ByName returns the registered Codec with the given name, or nil.
func ByName(name string) Codec {
	for _, c := range Registered {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Require resolves name to a Codec, returning an error if name names
// no registered codec (used by the CLI's --compressor flag).
func Require(name string) (Codec, error) {
	if c := ByName(name); c != nil {
		return c, nil
	}
	return nil, errUnknownCodec(name)
}

// Registered lists every codec this build knows how to select by
// name or flag bit.
var Registered = []Codec{
	Passthrough{},
	Huffman{},
	Zstd{},
}

func errUnknownCodec(name string) error {
	return fmt.Errorf("codec: unknown codec %q", name)
}
