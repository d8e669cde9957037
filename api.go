// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// Public mutation API (spec C9): Insert, Store, StoreRange, and the
// allocation-refill retry discipline around the internal store engines.

// Insert places entry at the single index index, failing with ErrExist if
// that index already holds a non-null entry (spec C9 "insert": "strict,
// no-overwrite point write").
func (t *Tree[V]) Insert(index uint, entry *V) error {
	if entry == nil || isReservedEntry(*entry) {
		return ErrInvalid
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if loadLocked(t, index) != nil {
		return ErrExist
	}
	return storeLocked(t, index, index, entry)
}

// Store overwrites the single index index with entry (nil erases), always
// succeeding over any prior content (spec C9 "store"). Like insert_range,
// store_range validates entry against the reserved-entry values (spec §6).
func (t *Tree[V]) Store(index uint, entry *V) error {
	if entry != nil && isReservedEntry(*entry) {
		return ErrInvalid
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return storeLocked(t, index, index, entry)
}

// StoreRange overwrites every index in [first,last] with entry (nil erases
// the whole range), unconditionally replacing whatever was there (spec C9
// "store_range", which "validates this" against the reserved-entry values
// of spec §6 the same way insert_range does).
func (t *Tree[V]) StoreRange(first, last uint, entry *V) error {
	if first > last {
		return ErrInvalid
	}
	if entry != nil && isReservedEntry(*entry) {
		return ErrInvalid
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return storeLocked(t, first, last, entry)
}

// loadLocked is Load's logic reused by Insert while already holding mu, to
// avoid Load's own (redundant, but harmless) read-side epoch bookkeeping
// racing the writer's own lock discipline.
func loadLocked[V any](t *Tree[V], index uint) *V {
	n, slot, _, _, ok := walkForRead(t, index)
	if !ok || n == nil {
		return nil
	}
	return n.getSlot(slot)
}

// storeLocked drives a single store/insert/erase mutation to completion,
// retrying the allocation-refill loop on ErrNoMemory under GFPKernel (spec
// §5 "Suspension points": the writer may drop into a blocking allocation
// and retry the whole walk, since walkForWrite is idempotent and cheap
// relative to allocation).
func storeLocked[V any](t *Tree[V], first, last uint, entry *V) error {
	c := newCursor(t)
	defer c.reset()

	for attempt := 0; attempt < 2; attempt++ {
		gfp := GFPAtomic
		if attempt > 0 {
			gfp = GFPKernel
		}

		c.setRange(first, last)
		walkForWrite(c)
		if c.isError() {
			return wrapf(c.err, "maple: walk [%d,%d]", first, last)
		}

		if c.spanning {
			spanningStore(c, entry, gfp)
		} else {
			singleNodeStore(c, entry, gfp)
		}

		if c.isError() {
			if c.err == ErrNoMemory && attempt == 0 {
				t.reclaimer.Poll(t.pool)
				continue
			}
			return wrapf(c.err, "maple: store [%d,%d]", first, last)
		}

		return nil
	}
	return ErrNoMemory
}
