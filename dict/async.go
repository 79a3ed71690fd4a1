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
	"sync"

	"github.com/carbonfmt/carbon/internal/prehash"
)

// localBits is the number of low bits of a global Async ID reserved
// for the local (per-partition) id. The remaining high bits hold the
// partition index, so a global id is (partition << localBits) | local
// (spec §4.1, "Async variant").
const localBits = 48

const maxPartitions = 1 << (64 - localBits)

// Async shards strings across P independent Sync partitions by a hash
// of the key (spec §4.1, §5). Insert splits the input array into
// per-partition sub-arrays, dispatches one goroutine per partition,
// and stitches the results back into the caller's original order; the
// caller blocks until every partition finishes.
type Async struct {
	partitions []*Sync
	partKey    prehash.Key
}

var _ Dictionary = (*Async)(nil)

// NewAsync returns an Async dictionary sharded across nthreads
// partitions. nthreads must be at least 1.
func NewAsync(nthreads int) *Async {
	if nthreads < 1 {
		nthreads = 1
	}
	if nthreads > maxPartitions {
		nthreads = maxPartitions
	}
	a := &Async{
		partitions: make([]*Sync, nthreads),
		partKey:    randomKey(),
	}
	for i := range a.partitions {
		a.partitions[i] = &Sync{}
	}
	return a
}

func (a *Async) partitionOf(key string) int {
	return a.partKey.Sum([]byte(key)).Partition(len(a.partitions))
}

func globalID(part int, local ID) ID {
	return ID(uint64(part)<<localBits | uint64(local))
}

func (a *Async) split(id ID) (part int, local ID) {
	return int(uint64(id) >> localBits), ID(uint64(id) & (1<<localBits - 1))
}

// fanout groups items by partition, preserving each partition's
// relative order, runs fn on every non-empty partition concurrently,
// and returns once all goroutines complete.
func (a *Async) fanout(n int, partitionOf func(i int) int, fn func(part int, idx []int)) {
	idxByPart := make([][]int, len(a.partitions))
	for i := 0; i < n; i++ {
		p := partitionOf(i)
		idxByPart[p] = append(idxByPart[p], i)
	}
	var wg sync.WaitGroup
	for part, idx := range idxByPart {
		if len(idx) == 0 {
			continue
		}
		wg.Add(1)
		go func(part int, idx []int) {
			defer wg.Done()
			fn(part, idx)
		}(part, idx)
	}
	wg.Wait()
}

// Insert interns strs. See Dictionary.Insert.
func (a *Async) Insert(strs []string) ([]ID, error) {
	ids := make([]ID, len(strs))
	var errs []error
	var mu sync.Mutex
	a.fanout(len(strs), func(i int) int { return a.partitionOf(strs[i]) },
		func(part int, idx []int) {
			sub := make([]string, len(idx))
			for j, i := range idx {
				sub[j] = strs[i]
			}
			localIDs, err := a.partitions[part].Insert(sub)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			for j, i := range idx {
				ids[i] = globalID(part, localIDs[j])
			}
		})
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return ids, nil
}

// Remove releases ids. See Dictionary.Remove.
func (a *Async) Remove(ids []ID) error {
	var errs []error
	var mu sync.Mutex
	a.fanout(len(ids), func(i int) int { p, _ := a.split(ids[i]); return p },
		func(part int, idx []int) {
			sub := make([]ID, len(idx))
			for j, i := range idx {
				_, local := a.split(ids[i])
				sub[j] = local
			}
			if err := a.partitions[part].Remove(sub); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// LocateSafe looks up keys. See Dictionary.LocateSafe.
func (a *Async) LocateSafe(keys []string) ([]ID, []bool, int) {
	ids := make([]ID, len(keys))
	found := make([]bool, len(keys))
	var missing int32
	var mu sync.Mutex
	a.fanout(len(keys), func(i int) int { return a.partitionOf(keys[i]) },
		func(part int, idx []int) {
			sub := make([]string, len(idx))
			for j, i := range idx {
				sub[j] = keys[i]
			}
			localIDs, localFound, localMissing := a.partitions[part].LocateSafe(sub)
			mu.Lock()
			missing += int32(localMissing)
			mu.Unlock()
			for j, i := range idx {
				if localFound[j] {
					ids[i] = globalID(part, localIDs[j])
					found[i] = true
				}
			}
		})
	return ids, found, int(missing)
}

// LocateFast looks up keys known to exist. See Dictionary.LocateFast.
func (a *Async) LocateFast(keys []string) []ID {
	ids := make([]ID, len(keys))
	a.fanout(len(keys), func(i int) int { return a.partitionOf(keys[i]) },
		func(part int, idx []int) {
			sub := make([]string, len(idx))
			for j, i := range idx {
				sub[j] = keys[i]
			}
			localIDs := a.partitions[part].LocateFast(sub)
			for j, i := range idx {
				ids[i] = globalID(part, localIDs[j])
			}
		})
	return ids
}

// Extract returns the strings for ids. See Dictionary.Extract.
func (a *Async) Extract(ids []ID) []string {
	out := make([]string, len(ids))
	a.fanout(len(ids), func(i int) int { p, _ := a.split(ids[i]); return p },
		func(part int, idx []int) {
			sub := make([]ID, len(idx))
			for j, i := range idx {
				_, local := a.split(ids[i])
				sub[j] = local
			}
			vals := a.partitions[part].Extract(sub)
			for j, i := range idx {
				out[i] = vals[j]
			}
		})
	return out
}

// NumDistinct reports the number of currently-interned strings across
// all partitions.
func (a *Async) NumDistinct() int {
	n := 0
	for _, p := range a.partitions {
		n += p.NumDistinct()
	}
	return n
}

// Contents returns every (id, string) pair across all partitions,
// concatenated partition by partition.
func (a *Async) Contents() []Entry {
	out := make([]Entry, 0, a.NumDistinct())
	for part, p := range a.partitions {
		for _, e := range p.Contents() {
			out = append(out, Entry{ID: globalID(part, e.ID), Str: e.Str})
		}
	}
	return out
}
