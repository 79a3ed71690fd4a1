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

// Package dict implements the thread-safe string dictionary (component
// C1): a many-to-one mapping from byte strings to dense-ish 64-bit ids,
// plus the inverse. Two implementations are provided: Sync, a single
// spinlock-guarded table, and Async, which shards work across Sync
// partitions.
package dict

import (
	"fmt"

	"github.com/carbonfmt/carbon/carbonerr"
)

// ID is a dictionary-assigned string id. ID 0 denotes the null/absent
// string and is never returned for an interned, non-empty lookup.
type ID uint64

// NullID is the reserved id meaning "no string".
const NullID ID = 0

// Entry is one (id, string) pair, as returned by Contents.
type Entry struct {
	ID  ID
	Str string
}

// Dictionary is the contract both Sync and Async satisfy (spec §4.1).
type Dictionary interface {
	// Insert interns every string in strs, returning one id per input
	// string in the same order. Interning the same string twice
	// returns the same id both times.
	Insert(strs []string) ([]ID, error)
	// Remove releases the given ids. Their slots may be recycled by a
	// later Insert. Removing an unknown id is an error.
	Remove(ids []ID) error
	// LocateSafe looks up each of keys, reporting which were found.
	LocateSafe(keys []string) (ids []ID, found []bool, nMissing int)
	// LocateFast looks up each of keys, which the caller guarantees
	// are already interned. The id for an unknown key is unspecified.
	LocateFast(keys []string) []ID
	// Extract returns the strings associated with ids. The result for
	// an unknown id is unspecified.
	Extract(ids []ID) []string
	// NumDistinct reports the number of currently-interned strings.
	NumDistinct() int
	// Contents returns every (id, string) pair currently interned.
	Contents() []Entry
}

func errUnknownID(op string, id ID) error {
	return carbonerr.New(carbonerr.Lookup, op, fmt.Sprintf("unknown id %d", id))
}
