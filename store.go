// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// singleNodeStore rewrites the leaf c.current to hold entry over
// [c.index,c.last], for a write walkForWrite classified as non-spanning
// (spec C4). Every case copies the new content into fresh node(s) through
// rebuildAndCommit, which splits or rebalances when needed; the live leaf
// is never appended to or reused in place.
func singleNodeStore[V any](c *cursor[V], entry *V, gfp GFP) {
	n := c.current
	if n == nil || !n.isLeaf() {
		// Empty tree, or write falls past an absent child: materialize a
		// brand new single-leaf tree (or attach a new leaf under the
		// walked-to branch parent).
		insertFreshLeaf(c, entry, gfp)
		return
	}

	bn := buildBigNodeLeaf(n, c.index, c.last, entry)

	fits := bn.len() <= maxSlots
	underfull := bn.len() <= minSlots

	switch {
	case fits && !underfull:
		if !c.requestNodes(1, gfp) {
			return
		}
		rebuildAndCommit(c, n, n, bn, gfp)

	case fits && underfull && (n.isRoot() || c.tree.height.Load() <= 1):
		// A lone root leaf, or top-of-tree leaf, is allowed to go below
		// minSlots (invariant 3's documented exception for unsiblinged
		// leaves).
		if !c.requestNodes(1, gfp) {
			return
		}
		rebuildAndCommit(c, n, n, bn, gfp)

	default:
		// Overflow (needs a split) or genuine underflow (needs a
		// rebalance against a sibling): both delegate to the generic
		// ascend-and-replace engine (spec C4 step 3 "Rebalance"/"Split",
		// unified here with C5's per-level procedure, see spanning.go).
		if !c.requestNodes(3, gfp) {
			return
		}
		rebuildAndCommit(c, n, n, bn, gfp)
	}
}

// insertFreshLeaf handles a write landing where no node exists yet: either
// the tree is entirely empty (new root leaf) or the walk reached a nil
// child slot under an existing branch (new leaf attached there). The
// covered range [min,max] may be wider than [c.index,c.last], so the new
// leaf's content is built as a (left-null / entry / right-null) big node
// exactly like an ordinary rewrite, rather than assumed to collapse to one
// slot (spec C4 step 2 "fresh leaf under a nil child").
func insertFreshLeaf[V any](c *cursor[V], entry *V, gfp GFP) {
	parent := c.current // the branch node under which the nil slot was found, or nil for an empty tree

	var min, max uint
	if parent == nil {
		min, max = 0, ^uint(0)
	} else {
		min, max = c.min, c.max
	}

	if !c.requestNodes(3, gfp) {
		return
	}

	bn := newBigNode[V](leafKind)
	if min < c.index {
		bn.appendValue(c.index-1, nil)
	}
	bn.appendValue(c.last, entry)
	if max > c.last {
		bn.appendValue(max, nil)
	}

	replacements := splitBigNode(c, bn, min, max, parent == nil || parent.isRoot())

	if parent == nil {
		r := replacements[0].n
		r.setParent(nil, 0)
		c.tree.root.Store(r)
		c.tree.height.Store(1)
		recomputeGapSpine(c.tree, r)
	} else if len(replacements) == 1 {
		parent.setChild(c.slot, replacements[0].n)
		recomputeGapSpine(c.tree, replacements[0].n)
	} else {
		// The fresh content overflowed a single slot's width (an
		// unusually narrow nil child slot): ascend through the same
		// generic machinery the rest of C4 uses.
		parentBN := newBigNode[V](branchKind)
		for i := 0; i < c.slot; i++ {
			parentBN.appendChild(parent.getPivot(i), parent.getChild(i))
		}
		for _, r := range replacements {
			parentBN.appendChild(r.max, r.n)
		}
		for i := c.slot + 1; i <= parent.numPivots; i++ {
			parentBN.appendChild(parent.getPivot(i), parent.getChild(i))
		}
		total := parentBN.len()
		if total <= maxSlots && (total > minSlots || parent.isRoot()) {
			commitAncestorPatch(c, parent, parentBN, gfp)
		} else {
			replaceRange(c, parent, parent.parentSlot, parent.parentSlot, parentBN, parent.min, parent.max, nil, gfp)
		}
	}

	if entry != nil {
		c.tree.sizeDelta(1)
	}
}

// growRoot installs a fresh branch root over 2-3 sibling replacement nodes,
// incrementing the cached tree height (spec §4.5 "Height change").
func growRoot[V any](c *cursor[V], replacements []builtNode[V]) {
	if !c.requestNodes(1, GFPKernel) {
		return
	}
	root := c.takeNode()
	root.kind = branchKind
	root.numPivots = len(replacements) - 1
	root.min, root.max = 0, ^uint(0)
	for i, r := range replacements {
		if i < len(replacements)-1 {
			root.pivots[i] = r.max
		}
		root.setChild(i, r.n)
	}
	root.setParent(nil, 0)
	c.tree.root.Store(root)
	c.tree.height.Add(1)
	recomputeGapSpine(c.tree, root)
}
