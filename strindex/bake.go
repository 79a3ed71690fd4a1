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
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/carbonfmt/carbon/archive"
	"github.com/carbonfmt/carbon/carbonerr"
	"github.com/carbonfmt/carbon/codec"
)

// Bake scans the archive file at path, builds a string-id -> file-
// offset index over its string table, appends the serialized index to
// the file, and patches ArchiveHeader.StringIDToOffsetIndexOffset to
// point at it (spec §4.6). The rewrite happens through a scratch file
// carrying a random name in path's own directory, which is always
// removed before Bake returns, success or failure (spec §6's
// "Persisted state" contract) — path itself is only replaced once the
// new content is fully and durably written.
func Bake(path string, fallback codec.Codec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return carbonerr.New(carbonerr.IO, "strindex.Bake", err.Error())
	}
	if _, err := archive.ReadArchiveHeader(data); err != nil {
		return err
	}
	offsets, err := archive.StringOffsets(data, fallback)
	if err != nil {
		return err
	}

	t := New[uint64, uint64](nextPow2(len(offsets)), HashID)
	for id, off := range offsets {
		t.InsertOrUpdate(id, off)
	}
	indexBytes := Marshal(t)

	out := make([]byte, len(data)+len(indexBytes))
	copy(out, data)
	copy(out[len(data):], indexBytes)
	if err := archive.PatchIndexOffset(out, uint64(len(data))); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	scratchPath := filepath.Join(dir, fmt.Sprintf(".%s.carbon-scratch", uuid.New().String()))
	if err := os.WriteFile(scratchPath, out, 0o644); err != nil {
		return carbonerr.New(carbonerr.IO, "strindex.Bake", err.Error())
	}
	defer os.Remove(scratchPath)

	if err := os.Rename(scratchPath, path); err != nil {
		return carbonerr.New(carbonerr.IO, "strindex.Bake", err.Error())
	}
	return nil
}

// Lookup loads a baked index out of a buffer containing exactly the
// serialized index bytes (archive.ReadArchiveHeader's
// StringIDToOffsetIndexOffset names where they start within the full
// archive file) and returns the Table ready for Get calls.
func Lookup(indexBuf []byte) (*Table[uint64, uint64], error) {
	return Unmarshal(indexBuf)
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
