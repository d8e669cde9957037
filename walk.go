// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// walkForRead descends from the tree root until a leaf is reached or a nil
// slot is found, resolving the bounds of the final slot. Returns false if a
// dead node was observed anywhere along the descent, signaling the caller to
// restart from the root (spec §3, §5).
func walkForRead[V any](t *Tree[V], index uint) (n *node[V], slot int, min, max uint, ok bool) {
	n = t.root.Load()
	min, max = 0, ^uint(0)

	for n != nil {
		if n.isDead() {
			return nil, 0, 0, 0, false
		}
		i := n.findSlot(index)
		lo, hi := n.slotRange(i)

		if n.isLeaf() {
			return n, i, lo, hi, true
		}

		child := n.getChild(i)
		min, max = lo, hi
		n = child
	}
	return nil, 0, min, max, true
}

// loadEntry performs a restart-safe point read: walkForRead observing a
// dead node anywhere along the descent simply retries from the root, since
// a writer never blocks readers and the structure a reader would otherwise
// see is always internally consistent at any single instant (spec §5,
// invariant 9).
func loadEntry[V any](t *Tree[V], index uint) *V {
	epoch := t.reclaimer.EnterRead()
	defer t.reclaimer.ExitRead(epoch)

	for {
		n, slot, _, _, ok := walkForRead(t, index)
		if !ok {
			continue
		}
		if n == nil {
			return nil
		}
		return n.getSlot(slot)
	}
}

// writeWalkResult classifies the outcome of walkForWrite (spec C3).
type writeWalkResult struct {
	spanning bool
}

// walkForWrite descends to the leaf (or nil-slot position) that the write
// [c.index,c.last] must modify, additionally computing c.fullCount (signed
// count of consecutive full or under-full nodes along the descent) and
// c.spanAnchor (the highest ancestor whose slot
// range is fully overwritten by the write).
//
// A node is classified "span" if last >= pivot(i) and either the node is
// internal (the write crosses into more than one child) or, at a leaf,
// last >= node.max (the write extends past the node's own range). A write
// of exactly [0, ^uint(0)] that fills the whole tree's [min,max] is *not*
// spanning (spec C3).
func walkForWrite[V any](c *cursor[V]) {
	n := c.tree.root.Load()
	c.min, c.max = 0, ^uint(0)
	c.depth = 0
	c.fullCount = 0
	c.spanAnchor = nil
	c.spanning = false

	for n != nil {
		if n.isDead() {
			// No restart here: the walk fails with ErrInvalid and
			// storeLocked returns that error to the caller.
			c.fail(ErrInvalid)
			return
		}

		i := n.findSlot(c.index)
		lo, hi := n.slotRange(i)

		full := n.slotCount() >= maxSlots
		under := n.slotCount() <= minSlots
		switch {
		case full && c.fullCount >= 0:
			c.fullCount++
		case under && c.fullCount <= 0:
			c.fullCount--
		default:
			c.fullCount = 0
		}

		isWholeTreeFill := c.index == 0 && c.last == ^uint(0)
		spansThisNode := c.last >= hi && !isWholeTreeFill
		if n.isLeaf() {
			spansThisNode = c.last >= n.max && !isWholeTreeFill
		}
		if spansThisNode {
			if c.spanAnchor == nil {
				c.spanAnchor = n
			}
		} else {
			c.spanAnchor = nil
		}

		if n.isLeaf() {
			c.current = n
			c.slot = i
			c.min, c.max = lo, hi
			c.spanning = c.spanAnchor != nil
			c.state = stateActive
			return
		}

		child := n.getChild(i)
		c.depth++
		c.min, c.max = lo, hi
		if child == nil {
			c.current = n
			c.slot = i
			c.spanning = false
			c.state = stateActive
			return
		}
		n = child
	}

	// Empty tree: no root yet.
	c.current = nil
	c.slot = 0
	c.state = stateActive
}
