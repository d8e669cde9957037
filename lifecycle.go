// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import "github.com/mapletree/maple/internal/pagesize"

// Destroy tears the whole tree down, returning every live node to the pool
// in page-sized batches rather than one at a time (spec C8 "Destroy"),
// leaving t ready for reuse after a fresh Init.
func (t *Tree[V]) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	if root == nil {
		return
	}

	batch := pagesize.NodeBatch(nodeApproxSize)
	var pending []*node[V]
	flush := func() {
		if len(pending) == 0 {
			return
		}
		t.pool.PutBulk(pending)
		pending = pending[:0]
	}

	var walk func(n *node[V])
	walk = func(n *node[V]) {
		if n == nil {
			return
		}
		if n.kind == branchKind {
			for i := 0; i <= n.numPivots; i++ {
				walk(n.getChild(i))
			}
		}
		n.markDead()
		pending = append(pending, n)
		if len(pending) >= batch {
			flush()
		}
	}
	walk(root)
	flush()

	t.root.Store(nil)
	t.height.Store(0)
	t.size = 0
}

// nodeApproxSize estimates one node[V]'s footprint for page-batch sizing;
// exact size depends on V, but the fixed arrays dominate for any reasonably
// small value type, so a conservative constant is good enough to pick a
// sane batch size (spec C8 batch sizing is a tuning knob, not a
// correctness requirement).
const nodeApproxSize = 512

// Duplicate deep-copies src into dst, which must be freshly Init'd (same
// flags as src), producing an independent tree sharing no node with src
// (spec C8 "Duplicate"). Entries themselves are not copied: dst's leaves
// reference the same *V pointers as src's.
func Duplicate[V any](dst, src *Tree[V]) error {
	src.mu.Lock()
	defer src.mu.Unlock()
	dst.mu.Lock()
	defer dst.mu.Unlock()

	root := src.root.Load()
	if root == nil {
		dst.root.Store(nil)
		dst.height.Store(0)
		dst.size = 0
		return nil
	}

	cloned, err := cloneSubtree(dst, root, nil, 0)
	if err != nil {
		return err
	}
	dst.root.Store(cloned)
	dst.height.Store(src.height.Load())
	dst.size = src.size
	return nil
}

func cloneSubtree[V any](dst *Tree[V], n *node[V], parent *node[V], slot int) (*node[V], error) {
	if n == nil {
		return nil, nil
	}
	c := dst.pool.Get(GFPKernel)
	if c == nil {
		return nil, ErrNoMemory
	}
	c.kind = n.kind
	c.min, c.max = n.min, n.max
	c.numPivots = n.numPivots
	c.pivots = n.pivots
	c.setParent(parent, slot)

	if n.isLeaf() {
		c.slots = n.slots
		return c, nil
	}

	for i := 0; i <= n.numPivots; i++ {
		child := n.getChild(i)
		if child == nil {
			continue
		}
		cc, err := cloneSubtree(dst, child, c, i)
		if err != nil {
			return nil, err
		}
		c.children[i].Store(cc)
		c.gaps[i] = n.gaps[i]
	}
	return c, nil
}
