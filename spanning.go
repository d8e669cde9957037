// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// This file implements the spanning-store engine (spec C5) together with
// the generic ascend-and-replace machinery C4's single-node overflow path
// delegates to.
//
// Simplification, documented here and in DESIGN.md: the spec's engine
// builds an entire replacement sub-tree "in isolation" and swaps it in with
// one atomic commit at the end, so that a mid-build failure leaves the old
// tree untouched. maple instead commits each ancestor level's replacement
// immediately, bottom-up, as soon as that level's new node(s) are fully
// constructed. Because the writer holds the tree's mutex for the whole
// mutation (spec §5) and every published pointer is still a single
// release-ordered atomic store of a fully-built node, this is
// observationally identical to a concurrent reader: it never sees a
// partially built subtree, only ever a sequence of consistent trees.
// Failure-atomicity against allocation exhaustion is preserved a different
// way: cursor.requestNodes pre-allocates the whole mutation's worst-case
// node budget before any pointer is published, so a mutation that has
// begun publishing changes never subsequently fails for want of a node.

// replaceRange rebuilds the ancestor chain above old to reflect content
// bn replacing old's parent's slots [fromSlot,toSlot] (for a plain
// single-node replacement, fromSlot==toSlot==old.parentSlot). destroyed
// holds any additional old sibling subtrees fully consumed by the
// replacement (spanning multi-leaf case); they are recursively reclaimed
// once the new content is published.
func replaceRange[V any](c *cursor[V], old *node[V], fromSlot, toSlot int, bn *bigNode[V], min, max uint, destroyed []*node[V], gfp GFP) {
	parent := old.parent.Load()

	rootLevel := parent == nil || parent.isRoot()
	allowUndersize := rootLevel

	// absorbed is the sibling whose slots were moved into bn; only that
	// node itself is retired, since any children it had now belong to the
	// replacement.
	var absorbed *node[V]
	if !rootLevel && bn.len() < minSlots {
		if nf, nt, nmin, nmax, sib, ok := absorbSibling(parent, fromSlot, toSlot, bn, min, max); ok {
			fromSlot, toSlot, min, max = nf, nt, nmin, nmax
			absorbed = sib
		} else {
			// parent has no other child to lend from: this slot range
			// already spans the whole parent, so the undersized result
			// is unavoidable (invariant 3's no-siblings exception,
			// generalized from the root-leaf case to any node whose
			// parent cannot supply a donor).
			allowUndersize = true
		}
	}

	replacements := splitBigNode(c, bn, min, max, allowUndersize)

	if parent == nil {
		finishRootReplace(c, old, replacements, destroyed)
		return
	}

	// Wire the new sibling(s) into parent in place, replacing
	// [fromSlot,toSlot], then decide whether parent itself now needs to
	// be replaced one level further up (overflow/underflow) or whether
	// it can simply keep its (now-updated) identity.
	parentBN := newBigNode[V](branchKind)
	for i := 0; i < fromSlot; i++ {
		parentBN.appendChild(parent.getPivot(i), parent.getChild(i))
	}
	for _, r := range replacements {
		parentBN.appendChild(r.max, r.n)
	}
	for i := toSlot + 1; i <= parent.numPivots; i++ {
		parentBN.appendChild(parent.getPivot(i), parent.getChild(i))
	}

	total := parentBN.len()
	if total <= maxSlots && (total > minSlots || parent.isRoot()) {
		// Fits directly: this is the common case and avoids growing the
		// ancestor chain further.
		commitAncestorPatch(c, parent, parentBN, gfp)
	} else {
		// parent itself must be replaced (overflow needing a split, or
		// genuine underflow needing a rebalance) — ascend one more level.
		replaceRange(c, parent, parent.parentSlot, parent.parentSlot, parentBN, parent.min, parent.max, nil, gfp)
	}

	// The replacement is published by now; only then are the old nodes
	// marked dead.
	retireNode(c.tree, old)
	retireNode(c.tree, absorbed)
	for _, d := range destroyed {
		destroySubtree(c.tree, d)
	}
}

// absorbSibling widens bn (the replacement content for parent's slots
// [fromSlot,toSlot]) to also include one adjacent sibling's content,
// whenever bn alone would fall under minSlots (spec §4.5.5 "sibling
// rebalance (right)"/"(left)"). It prefers the right sibling, mirroring
// the original implementation's try-right-then-left order in its spanning
// rebalance path. Returns ok=false if parent has no other child at all
// (the replaced range already spans the whole parent), in which case no
// donor exists and the caller must accept the undersized result.
func absorbSibling[V any](parent *node[V], fromSlot, toSlot int, bn *bigNode[V], min, max uint) (newFrom, newTo int, newMin, newMax uint, sibling *node[V], ok bool) {
	if toSlot+1 <= parent.numPivots {
		if sib := parent.getChild(toSlot + 1); sib != nil {
			if bn.kind == leafKind {
				bn.appendSiblingLeaf(sib)
			} else {
				bn.appendSiblingBranch(sib)
			}
			return fromSlot, toSlot + 1, min, sib.max, sib, true
		}
	}
	if fromSlot-1 >= 0 {
		if sib := parent.getChild(fromSlot - 1); sib != nil {
			merged := newBigNode[V](bn.kind)
			if bn.kind == leafKind {
				merged.appendSiblingLeaf(sib)
				for _, it := range bn.items {
					merged.appendValue(it.hi, it.value)
				}
			} else {
				merged.appendSiblingBranch(sib)
				for _, it := range bn.items {
					merged.appendChild(it.hi, it.child)
				}
			}
			*bn = *merged
			return fromSlot - 1, toSlot, sib.min, max, sib, true
		}
	}
	return fromSlot, toSlot, min, max, nil, false
}

// commitAncestorPatch finalizes parentBN as n's replacement content: a
// direct in-place patch when the tree permits it, or a fresh copy
// published with a single release-ordered pointer swap when RCUMode
// forbids in-place pivot patches (spec §4.4 step 3 "Append"/"Reuse...
// forbidden when the tree is in RCU mode").
func commitAncestorPatch[V any](c *cursor[V], n *node[V], bn *bigNode[V], gfp GFP) {
	if !c.tree.rcuMode() {
		applyBigNodeInPlace(n, bn)
		recomputeGapSpine(c.tree, n)
		return
	}

	if !c.requestNodes(1, gfp) {
		return
	}
	replacements := splitBigNode(c, bn, n.min, n.max, true)
	r := replacements[0].n
	if grandparent := n.parent.Load(); grandparent == nil {
		r.setParent(nil, 0)
		c.tree.root.Store(r)
	} else {
		grandparent.setChild(n.parentSlot, r)
	}
	retireNode(c.tree, n)
	recomputeGapSpine(c.tree, r)
}

// applyBigNodeInPlace overwrites node n's slot/pivot/child arrays from bn's
// content. Only ever called by commitAncestorPatch when the tree is not in
// RCU mode: maple's single-writer-holds-mutex model makes this safe there
// because n has not changed identity (same pointer, same parent slot) so no
// reader-visible structural swap is skipped — only the leaf/branch payload
// arrays are rewritten, each element still published with the node's
// existing release-ordered child/slot setters. A reader racing this exact
// patch may still observe a torn numPivots/pivots pair; that is the
// documented cost of disabling RCU mode (tree.go's Flags doc), not a bug.
func applyBigNodeInPlace[V any](n *node[V], bn *bigNode[V]) {
	n.numPivots = bn.len() - 1
	for i, it := range bn.items {
		if i < bn.len()-1 {
			n.pivots[i] = it.hi
		}
	}
	for i := bn.len(); i < maxSlots; i++ {
		n.children[i].Store(nil)
	}
	for i, it := range bn.items {
		n.setChild(i, it.child)
	}
}

// finishRootReplace installs replacements as the new root, growing or
// shrinking tree height as needed (spec §4.5 "Height change", step 5(b)
// "promote the big-node content as the new root").
func finishRootReplace[V any](c *cursor[V], old *node[V], replacements []builtNode[V], destroyed []*node[V]) {
	defer func() {
		retireNode(c.tree, old)
		for _, d := range destroyed {
			destroySubtree(c.tree, d)
		}
	}()

	switch len(replacements) {
	case 0:
		c.tree.root.Store(nil)
		c.tree.height.Store(0)
	case 1:
		r := replacements[0].n
		r.setParent(nil, 0)
		c.tree.root.Store(r)
		recomputeGapSpine(c.tree, r)
	default:
		growRoot(c, replacements)
	}
}

// retireNode marks n dead and defers it for reclamation (spec §5). A node
// already marked dead is left alone: the ascend loop in spanningStore may
// name the same ancestor from both the retiring path and the generic
// replaceRange call, and Defer must only ever run once per node.
func retireNode[V any](t *Tree[V], n *node[V]) {
	if n == nil || n.isDead() {
		return
	}
	n.markDead()
	t.reclaimer.Defer(n, t.pool)
}

// destroySubtree recursively reclaims n and, if it is a branch, every live
// descendant (spec C5 "destroy" topiary list, spec C8 "recursive post-order
// walk").
func destroySubtree[V any](t *Tree[V], n *node[V]) {
	if n == nil {
		return
	}
	if n.kind == branchKind {
		for i := 0; i <= n.numPivots; i++ {
			destroySubtree(t, n.getChild(i))
		}
	}
	retireNode(t, n)
}

// rebuildAndCommit is C4's delegation point for every single-leaf rewrite:
// the new content bn of leaf n is copied into fresh node(s), split or
// rebalanced when it overflows or falls under-full. It is a thin wrapper
// over replaceRange with fromSlot==toSlot==n's own parent slot and no
// additional destroyed siblings.
func rebuildAndCommit[V any](c *cursor[V], old, n *node[V], bn *bigNode[V], gfp GFP) {
	replaceRange(c, old, n.parentSlot, n.parentSlot, bn, n.min, n.max, nil, gfp)
}

// spanningStore handles a write flagged spanning by walkForWrite: the
// range [c.index,c.last] crosses the boundary of a single leaf's
// responsibility (spec §4.5 "Spanning store (top-level)").
func spanningStore[V any](c *cursor[V], entry *V, gfp GFP) {
	leftLeaf := c.current
	if leftLeaf == nil {
		insertFreshLeaf(c, entry, gfp)
		return
	}

	rightLeaf, _, _, rMax, ok := walkForRead(c.tree, c.last)
	if !ok || rightLeaf == nil {
		// Right boundary falls past the rightmost existing leaf (e.g. a
		// store_range extending to the tree's max with nothing there
		// yet): treat the tail as an implicit null leaf bounded by
		// leftLeaf's own node.max at minimum.
		rightLeaf = leftLeaf
		rMax = leftLeaf.max
	}
	_ = rMax

	if !c.requestNodes(3, gfp) {
		return
	}

	var bn *bigNode[V]
	if leftLeaf == rightLeaf {
		bn = buildBigNodeLeaf(leftLeaf, c.index, c.last, entry)
	} else {
		bn = newBigNode[V](leafKind)
		for i := 0; i <= leftLeaf.numPivots; i++ {
			lo, hi := leftLeaf.slotRange(i)
			if hi < c.index {
				bn.appendValue(hi, leftLeaf.getSlot(i))
			} else if lo < c.index {
				bn.appendValue(c.index-1, leftLeaf.getSlot(i))
			}
		}
		bn.appendValue(c.last, entry)
		for i := 0; i <= rightLeaf.numPivots; i++ {
			lo, hi := rightLeaf.slotRange(i)
			if lo > c.last {
				bn.appendValue(hi, rightLeaf.getSlot(i))
			} else if hi > c.last {
				bn.appendValue(hi, rightLeaf.getSlot(i))
			}
		}
	}

	min, max := leftLeaf.min, rightLeaf.max

	if leftLeaf == rightLeaf {
		rebuildAndCommit(c, leftLeaf, leftLeaf, bn, gfp)
		return
	}

	// Ascend both boundary leaves in lockstep (all leaves share depth in
	// a balanced tree) until a common parent is found, collecting fully
	// enclosed sibling subtrees to destroy along the way.
	leftAnc, rightAnc := leftLeaf, rightLeaf
	var destroyed []*node[V]
	for leftAnc.parent.Load() != rightAnc.parent.Load() {
		lp, rp := leftAnc.parent.Load(), rightAnc.parent.Load()
		if lp == nil || rp == nil {
			break
		}
		for i := leftAnc.parentSlot + 1; i <= lp.numPivots; i++ {
			destroyed = append(destroyed, lp.getChild(i))
		}
		for i := 0; i < rightAnc.parentSlot; i++ {
			destroyed = append(destroyed, rp.getChild(i))
		}
		leftAnc, rightAnc = lp, rp
	}

	parent := leftAnc.parent.Load()
	fromSlot, toSlot := leftAnc.parentSlot, rightAnc.parentSlot
	if parent != nil {
		for i := fromSlot + 1; i < toSlot; i++ {
			destroyed = append(destroyed, parent.getChild(i))
		}
	}
	if rightAnc != leftAnc {
		// replaceRange only retires its single `old` argument (leftAnc);
		// rightAnc is consumed the same way and must be torn down too.
		destroyed = append(destroyed, rightAnc)
	}

	replaceRange(c, leftAnc, fromSlot, toSlot, bn, min, max, destroyed, gfp)

	if leftAnc != leftLeaf {
		retireNode(c.tree, leftLeaf)
	}
	if rightAnc != rightLeaf {
		retireNode(c.tree, rightLeaf)
	}
}
