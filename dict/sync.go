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

package dict

import (
	"crypto/rand"
	"encoding/binary"
	"sort"

	"github.com/carbonfmt/carbon/internal/prehash"
	"github.com/carbonfmt/carbon/internal/spin"
)

type slot struct {
	str   string
	inUse bool
}

// Sync is a single spinlock-guarded string dictionary (spec §4.1,
// "Sync variant"). The zero value is ready to use.
type Sync struct {
	lock  spin.Lock
	key   prehash.Key
	slots []slot
	free  []uint32
	index map[string]uint32
	count int
}

var _ Dictionary = (*Sync)(nil)

func randomKey() prehash.Key {
	var buf [16]byte
	// crypto/rand never fails on supported platforms; a zero key is
	// an acceptable (if non-random) fallback and keeps Insert total.
	_, _ = rand.Read(buf[:])
	return prehash.Key{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	}
}

func (s *Sync) init() {
	if s.index == nil {
		s.index = make(map[string]uint32)
		s.key = randomKey()
	}
}

// idOf converts a slot index to the public ID (slot 0 is a valid
// slot; ids are offset by one so that ID 0 stays reserved for null).
func idOf(slotIdx uint32) ID { return ID(slotIdx) + 1 }
func slotOf(id ID) (uint32, bool) {
	if id == NullID {
		return 0, false
	}
	return uint32(id - 1), true
}

// allocSlot pops the most recently freed slot index, or else grows the
// slot vector by one zero-valued slot and returns its index. Growth
// does not add indices to the freelist; the freelist only ever holds
// slots released by Remove.
func (s *Sync) allocSlot() uint32 {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		return idx
	}
	idx := uint32(len(s.slots))
	s.slots = append(s.slots, slot{})
	return idx
}

// Insert interns strs, returning one id per input in order. See
// Dictionary.Insert.
func (s *Sync) Insert(strs []string) ([]ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.init()

	ids := make([]ID, len(strs))
	var missing []int
	for i, str := range strs {
		if idx, ok := s.index[str]; ok {
			ids[i] = idOf(idx)
		} else {
			missing = append(missing, i)
		}
	}
	filter := newBatchFilter(len(missing))
	for _, i := range missing {
		str := strs[i]
		d := s.key.Sum([]byte(str))
		var idx uint32
		var ok bool
		if filter.maybeSeen(d) {
			idx, ok = s.index[str]
		}
		if !ok {
			idx = s.allocSlot()
			s.slots[idx] = slot{str: str, inUse: true}
			s.index[str] = idx
			s.count++
			filter.set(d)
		}
		ids[i] = idOf(idx)
	}
	return ids, nil
}

// Remove releases ids. See Dictionary.Remove.
func (s *Sync) Remove(ids []ID) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.init()
	for _, id := range ids {
		idx, ok := slotOf(id)
		if !ok || int(idx) >= len(s.slots) || !s.slots[idx].inUse {
			return errUnknownID("dict.Sync.Remove", id)
		}
		delete(s.index, s.slots[idx].str)
		s.slots[idx] = slot{}
		s.free = append(s.free, idx)
		s.count--
	}
	return nil
}

// LocateSafe looks up keys. See Dictionary.LocateSafe.
func (s *Sync) LocateSafe(keys []string) ([]ID, []bool, int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.init()
	ids := make([]ID, len(keys))
	found := make([]bool, len(keys))
	missing := 0
	for i, k := range keys {
		if idx, ok := s.index[k]; ok {
			ids[i] = idOf(idx)
			found[i] = true
		} else {
			missing++
		}
	}
	return ids, found, missing
}

// LocateFast looks up keys known to exist. See Dictionary.LocateFast.
func (s *Sync) LocateFast(keys []string) []ID {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.init()
	ids := make([]ID, len(keys))
	for i, k := range keys {
		if idx, ok := s.index[k]; ok {
			ids[i] = idOf(idx)
		}
	}
	return ids
}

// Extract returns the strings for ids. See Dictionary.Extract.
func (s *Sync) Extract(ids []ID) []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]string, len(ids))
	for i, id := range ids {
		idx, ok := slotOf(id)
		if !ok || int(idx) >= len(s.slots) {
			continue
		}
		out[i] = s.slots[idx].str
	}
	return out
}

// NumDistinct reports the number of in-use slots.
func (s *Sync) NumDistinct() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.count
}

// Contents returns every (id, string) pair, in slot order.
func (s *Sync) Contents() []Entry {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]Entry, 0, s.count)
	for i := range s.slots {
		if s.slots[i].inUse {
			out = append(out, Entry{ID: idOf(uint32(i)), Str: s.slots[i].str})
		}
	}
	return out
}

// SortedContents returns every (id, string) pair ordered by id, a
// deterministic iteration order independent of slot-reuse history.
// archive.Build does not call it; it sorts Contents by id itself.
func (s *Sync) SortedContents() []Entry {
	out := s.Contents()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
