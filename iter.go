// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// Iteration and point-read operations (spec C7): load, find, next, prev,
// erase, and the two supplemented whole-tree walks, Walk (preorder) and
// PostOrder.

// Load returns the entry stored at index, or nil if index falls in a null
// range or past the tree's populated extent (spec C7 "load").
func (t *Tree[V]) Load(index uint) *V {
	return loadEntry(t, index)
}

// Find walks to the first occupied entry within [min,max], returning its
// value, the index of its range's lower bound, and whether one was found
// (spec C7 "find(min..max)", used by mas_find/mas_next under the hood). A
// match whose lower bound falls past max counts as no match, same as if
// the tree had nothing left to offer before max. The returned lo is the
// start of the matched range, useful for resuming a scan past it.
func (t *Tree[V]) Find(min, max uint) (value *V, lo uint, ok bool) {
	v, l, _, found := findFrom(t, min)
	if !found || l > max {
		return nil, 0, false
	}
	return v, l, true
}

// findFrom is Find's core walk, also returning the matched range's upper
// bound (hi) for callers (Iter.Next) that need it to resume a scan.
func findFrom[V any](t *Tree[V], index uint) (value *V, lo, hi uint, ok bool) {
	epoch := t.reclaimer.EnterRead()
	defer t.reclaimer.ExitRead(epoch)

	for {
		n, slot, slotLo, slotHi, walkOK := walkForRead(t, index)
		if !walkOK {
			continue
		}
		if n == nil {
			return nil, 0, 0, false
		}
		if v := n.getSlot(slot); v != nil {
			return v, slotLo, slotHi, true
		}
		next, nlo, nhi, found := scanForward(t, n, slot)
		if !found {
			return nil, 0, 0, false
		}
		return next, nlo, nhi, true
	}
}

// scanForward walks forward from (n,slot) across sibling slots and, when
// exhausted, up to the parent and over to the next sibling subtree,
// returning the first occupied entry encountered (spec C7 "next").
func scanForward[V any](t *Tree[V], n *node[V], slot int) (*V, uint, uint, bool) {
	for {
		for i := slot + 1; i <= n.numPivots; i++ {
			if v := n.getSlot(i); v != nil {
				lo, hi := n.slotRange(i)
				return v, lo, hi, true
			}
		}
		parent := n.parent.Load()
		if parent == nil {
			return nil, 0, 0, false
		}
		if parent.isDead() || n.isDead() {
			return nil, 0, 0, false
		}
		mySlot := n.parentSlot
		for i := mySlot + 1; i <= parent.numPivots; i++ {
			child := parent.getChild(i)
			if child == nil {
				continue
			}
			if v, lo, hi, ok := descendLeftmost(child); ok {
				return v, lo, hi, true
			}
		}
		n, slot = parent, mySlot
	}
}

// descendLeftmost finds the first occupied entry in n's subtree, descending
// into the leftmost non-nil child at each branch level.
func descendLeftmost[V any](n *node[V]) (*V, uint, uint, bool) {
	for !n.isLeaf() {
		var next *node[V]
		for i := 0; i <= n.numPivots; i++ {
			if c := n.getChild(i); c != nil {
				next = c
				break
			}
		}
		if next == nil {
			return nil, 0, 0, false
		}
		n = next
	}
	for i := 0; i <= n.numPivots; i++ {
		if v := n.getSlot(i); v != nil {
			lo, hi := n.slotRange(i)
			return v, lo, hi, true
		}
	}
	return nil, 0, 0, false
}

// Next returns the first occupied entry strictly after index (spec C7
// "next"), or ok=false if none exists.
func (t *Tree[V]) Next(index uint) (value *V, lo uint, ok bool) {
	if index == ^uint(0) {
		return nil, 0, false
	}
	return t.Find(index+1, ^uint(0))
}

// LastEntry returns the occupied entry with the greatest lower bound in the
// tree, provided that lower bound is at least limit (spec C7 "last_entry",
// grounded in the original's mas_last_entry: since ranges never overlap,
// the rightmost occupied entry in tree order necessarily has the greatest
// lower bound of any entry, so limit is simply a floor on that one
// candidate rather than a scan bound).
func (t *Tree[V]) LastEntry(limit uint) (value *V, lo uint, ok bool) {
	epoch := t.reclaimer.EnterRead()
	defer t.reclaimer.ExitRead(epoch)

	for {
		root := t.root.Load()
		if root == nil {
			return nil, 0, false
		}
		if root.isDead() {
			continue
		}
		v, l, found := descendRightmost(root)
		if !found || l < limit {
			return nil, 0, false
		}
		return v, l, true
	}
}

// Prev returns the last occupied entry strictly before index (spec C7
// "prev"), or ok=false if none exists.
func (t *Tree[V]) Prev(index uint) (value *V, lo uint, ok bool) {
	if index == 0 {
		return nil, 0, false
	}
	epoch := t.reclaimer.EnterRead()
	defer t.reclaimer.ExitRead(epoch)

	for {
		n, slot, slotLo, _, walkOK := walkForRead(t, index-1)
		if !walkOK {
			continue
		}
		if n == nil {
			return nil, 0, false
		}
		if v := n.getSlot(slot); v != nil {
			return v, slotLo, true
		}
		v, lo2, found := scanBackward(n, slot)
		if !found {
			return nil, 0, false
		}
		return v, lo2, true
	}
}

func scanBackward[V any](n *node[V], slot int) (*V, uint, bool) {
	for {
		for i := slot - 1; i >= 0; i-- {
			if v := n.getSlot(i); v != nil {
				lo, _ := n.slotRange(i)
				return v, lo, true
			}
		}
		parent := n.parent.Load()
		if parent == nil {
			return nil, 0, false
		}
		if parent.isDead() || n.isDead() {
			return nil, 0, false
		}
		mySlot := n.parentSlot
		for i := mySlot - 1; i >= 0; i-- {
			child := parent.getChild(i)
			if child == nil {
				continue
			}
			if v, lo, ok := descendRightmost(child); ok {
				return v, lo, true
			}
		}
		n, slot = parent, mySlot
	}
}

func descendRightmost[V any](n *node[V]) (*V, uint, bool) {
	for !n.isLeaf() {
		var next *node[V]
		for i := n.numPivots; i >= 0; i-- {
			if c := n.getChild(i); c != nil {
				next = c
				break
			}
		}
		if next == nil {
			return nil, 0, false
		}
		n = next
	}
	for i := n.numPivots; i >= 0; i-- {
		if v := n.getSlot(i); v != nil {
			lo, _ := n.slotRange(i)
			return v, lo, true
		}
	}
	return nil, 0, false
}

// Iter is a resumable ascending-order iterator over occupied entries,
// built on the cursor pause/resume contract the internal walk state
// machine already implements (spec C2 "pause"). Unlike Find/Next, which
// each re-walk from the root and complete within a single read-side
// critical section, Iter saves just enough state between calls to Next
// for the caller to drop any lock or critical section in between — the
// use case pause documents ("so that the caller may drop the read-side
// critical section ... and resume later").
type Iter[V any] struct {
	tree *Tree[V]
	c    *cursor[V]
}

// NewIter starts an iterator positioned to return the first occupied
// entry at or after start.
func (t *Tree[V]) NewIter(start uint) *Iter[V] {
	c := newCursor(t)
	c.set(start)
	return &Iter[V]{tree: t, c: c}
}

// Next returns the next occupied entry and pauses the cursor to resume
// just past it (spec C2 "pause": on resume the walk restarts at
// index = previous last + 1, saturating to exhausted at the maximum
// index). Returns ok=false once the tree has nothing left to offer.
func (it *Iter[V]) Next() (value *V, lo uint, ok bool) {
	if it.c.isNone() {
		return nil, 0, false
	}
	v, l, hi, found := findFrom(it.tree, it.c.index)
	if !found {
		it.c.state = stateNone
		return nil, 0, false
	}
	it.c.last = hi
	it.c.pause()
	return v, l, true
}

// Erase removes the entry (if any) covering index, equivalent to a
// store_range of nil over that entry's full range (spec C7 "erase").
func (t *Tree[V]) Erase(index uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, slot, lo, hi, ok := walkForRead(t, index)
	if !ok || n == nil || n.getSlot(slot) == nil {
		return nil
	}
	return storeLocked(t, lo, hi, nil)
}

// WalkFunc is called once per occupied entry during Walk/PostOrder, with
// the inclusive range it covers. Returning false stops the traversal early.
type WalkFunc[V any] func(lo, hi uint, value *V) bool

// Walk performs a preorder traversal of every occupied entry in the tree
// (spec's supplemented mt_dump/tree-walk use case, see SPEC_FULL.md). The
// writer lock is held for the duration so the view is stable, matching the
// teacher's Table.All iterator contract of a point-in-time snapshot.
func (t *Tree[V]) Walk(fn WalkFunc[V]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	walkPreorder(t.root.Load(), fn)
}

func walkPreorder[V any](n *node[V], fn WalkFunc[V]) bool {
	if n == nil {
		return true
	}
	if n.isLeaf() {
		for i := 0; i <= n.numPivots; i++ {
			if v := n.getSlot(i); v != nil {
				lo, hi := n.slotRange(i)
				if !fn(lo, hi, v) {
					return false
				}
			}
		}
		return true
	}
	for i := 0; i <= n.numPivots; i++ {
		if !walkPreorder(n.getChild(i), fn) {
			return false
		}
	}
	return true
}

// PostOrder performs a postorder traversal of every occupied entry, for
// callers that need child ranges visited before any ancestor-level
// bookkeeping the caller itself performs on the way back up (spec's
// supplemented feature; grounded in the original's mas_destroy's
// postorder node-teardown walk, repurposed here as a read-only visitor).
func (t *Tree[V]) PostOrder(fn WalkFunc[V]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	walkPostorder(t.root.Load(), fn)
}

func walkPostorder[V any](n *node[V], fn WalkFunc[V]) bool {
	if n == nil {
		return true
	}
	if n.isLeaf() {
		for i := 0; i <= n.numPivots; i++ {
			if v := n.getSlot(i); v != nil {
				lo, hi := n.slotRange(i)
				if !fn(lo, hi, v) {
					return false
				}
			}
		}
		return true
	}
	for i := n.numPivots; i >= 0; i-- {
		if !walkPostorder(n.getChild(i), fn) {
			return false
		}
	}
	return true
}
