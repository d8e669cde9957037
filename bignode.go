// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// bigItem is one (upperBound, payload) pair in a big-node scratch buffer
// (spec C4 step 1 "big node"). payload is either a leaf entry (*V, via
// value) or a branch child (*node[V], via child); exactly one of the two is
// meaningful, selected by the owning bigNode's kind.
type bigItem[V any] struct {
	hi    uint
	value *V
	child *node[V]
}

// bigNode is the scratch buffer used to stage a single-level rewrite,
// wide enough to hold the union of an existing node's slots, a write, and
// up to two boundary residues, or (in the spanning-store engine) an
// entire run of sibling slots being collapsed and replaced.
type bigNode[V any] struct {
	kind  nodeKind
	items []bigItem[V]
}

func newBigNode[V any](kind nodeKind) *bigNode[V] {
	bn := &bigNode[V]{kind: kind}
	bn.items = make([]bigItem[V], 0, bigSlots)
	return bn
}

// appendValue appends a leaf slot, merging with the previous slot if both
// are nil (an empty range extended outward, per extend_null in spec C5/C7).
func (bn *bigNode[V]) appendValue(hi uint, v *V) {
	if n := len(bn.items); n > 0 && bn.items[n-1].value == nil && v == nil {
		bn.items[n-1].hi = hi
		return
	}
	bn.items = append(bn.items, bigItem[V]{hi: hi, value: v})
}

// appendChild appends a branch slot, merging adjacent nil children the same
// way appendValue merges adjacent null leaf slots.
func (bn *bigNode[V]) appendChild(hi uint, ch *node[V]) {
	if n := len(bn.items); n > 0 && bn.items[n-1].child == nil && ch == nil {
		bn.items[n-1].hi = hi
		return
	}
	bn.items = append(bn.items, bigItem[V]{hi: hi, child: ch})
}

func (bn *bigNode[V]) len() int { return len(bn.items) }

// appendSiblingLeaf appends sib's own leaf slots to bn, used when widening a
// big node to absorb a neighboring sibling before a split/rebalance
// decision (spec §4.5.5 "sibling rebalance").
func (bn *bigNode[V]) appendSiblingLeaf(sib *node[V]) {
	for i := 0; i <= sib.numPivots; i++ {
		bn.appendValue(sib.getPivot(i), sib.getSlot(i))
	}
}

// appendSiblingBranch is appendSiblingLeaf for a branch-kind big node.
func (bn *bigNode[V]) appendSiblingBranch(sib *node[V]) {
	for i := 0; i <= sib.numPivots; i++ {
		bn.appendChild(sib.getPivot(i), sib.getChild(i))
	}
}

// buildBigNodeLeaf materializes the big-node content for a non-spanning
// leaf rewrite: the union of n's existing slots and the new [index,last]
// write, including boundary residues (spec §4.4 step 1-2).
func buildBigNodeLeaf[V any](n *node[V], index, last uint, entry *V) *bigNode[V] {
	bn := newBigNode[V](leafKind)
	inserted := false

	insertEntry := func() {
		if !inserted {
			bn.appendValue(last, entry)
			inserted = true
		}
	}

	for i := 0; i <= n.numPivots; i++ {
		lo, hi := n.slotRange(i)
		val := n.getSlot(i)

		switch {
		case hi < index:
			bn.appendValue(hi, val)
		case lo > last:
			insertEntry()
			bn.appendValue(hi, val)
		default:
			if lo < index {
				bn.appendValue(index-1, val)
			}
			insertEntry()
			if hi > last {
				bn.appendValue(hi, val)
			}
		}
	}
	insertEntry()
	return bn
}

// builtNode is a materialized replacement node awaiting insertion into its
// new parent.
type builtNode[V any] struct {
	n        *node[V]
	min, max uint
}

// splitBigNode partitions bn's content across one, two, or three real
// nodes, respecting maxSlots/minSlots (spec §4.5 step 1 "split decision").
// allowUndersize permits a single resulting node smaller than minSlots.
// replaceRange (spanning.go) passes it for the root, for a node whose
// parent is the root (without trying to borrow from a sibling, so a child
// of the root can end up below minSlots), and for a node whose parent has
// no other child to lend from; insertFreshLeaf passes it when the new leaf
// is the root or a child of the root.
//
// Below the root's children, replaceRange widens bn via absorbSibling
// whenever bn.len() < minSlots and a sibling exists to borrow from, and
// calls with allowUndersize false. The panic below is a last-resort
// invariant check, not part of the normal control flow.
func splitBigNode[V any](c *cursor[V], bn *bigNode[V], min, max uint, allowUndersize bool) []builtNode[V] {
	total := bn.len()

	k := 1
	switch {
	case total > 2*maxSlots:
		k = 3
	case total > maxSlots:
		k = 2
	}
	// Avoid chunks that would fall below minSlots if k can shrink and
	// still fit.
	for k > 1 && total/k < minSlots {
		k--
	}
	if k == 0 {
		k = 1
	}
	if k == 1 && total < minSlots && !allowUndersize {
		panic("maple: splitBigNode: undersized single result not permitted by caller")
	}

	chunkLen := (total + k - 1) / k
	out := make([]builtNode[V], 0, k)

	idx := 0
	for part := 0; part < k; part++ {
		end := idx + chunkLen
		if part == k-1 || end > total {
			end = total
		}
		if idx >= end {
			break
		}
		items := bn.items[idx:end]

		n := c.takeNode()
		n.kind = bn.kind
		n.numPivots = len(items) - 1
		for j, it := range items {
			if j < len(items)-1 {
				n.pivots[j] = it.hi
			}
			switch bn.kind {
			case leafKind:
				n.slots[j] = it.value
			case branchKind:
				n.children[j].Store(it.child)
			}
		}
		var lo uint
		if part == 0 {
			lo = min
		} else {
			lo = out[part-1].max + 1
		}
		var hi uint
		if part == k-1 {
			hi = max
		} else {
			hi = items[len(items)-1].hi
		}
		n.min, n.max = lo, hi

		if bn.kind == branchKind {
			for j, it := range items {
				if it.child != nil {
					slo, shi := n.slotRange(j)
					it.child.min, it.child.max = slo, shi
					it.child.setParent(n, j)
				}
			}
		}

		out = append(out, builtNode[V]{n: n, min: lo, max: hi})
		idx = end
	}

	return out
}
