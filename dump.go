// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Dump renders the tree's node structure as ASCII art: one line per node
// showing its kind, [min,max], slot count and dead flag, and under each
// leaf one line per slot range (null slots included), for use in test
// failure output and interactive debugging (spec's supplemented mt_dump,
// see SPEC_FULL.md; replaces the teacher's hand-rolled dumper.go/stringify.go
// with xlab/treeprint).
func (t *Tree[V]) Dump() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	tree := treeprint.New()
	if root == nil {
		tree.SetValue("(empty)")
		return tree.String()
	}
	tree.SetValue(nodeLabel(root))
	appendChildren(tree, root)
	return tree.String()
}

func nodeLabel[V any](n *node[V]) string {
	kind := "leaf"
	if n.kind == branchKind {
		kind = "branch"
	}
	return fmt.Sprintf("%s [%d,%d] slots=%d dead=%t", kind, n.min, n.max, n.slotCount(), n.isDead())
}

func appendChildren[V any](tree treeprint.Tree, n *node[V]) {
	if n.isLeaf() {
		for i := 0; i <= n.numPivots; i++ {
			lo, hi := n.slotRange(i)
			v := n.getSlot(i)
			if v == nil {
				tree.AddNode(fmt.Sprintf("[%d,%d] (null)", lo, hi))
				continue
			}
			tree.AddNode(fmt.Sprintf("[%d,%d] = %v", lo, hi, *v))
		}
		return
	}
	for i := 0; i <= n.numPivots; i++ {
		child := n.getChild(i)
		if child == nil {
			tree.AddNode("(nil child)")
			continue
		}
		branch := tree.AddBranch(nodeLabel(child))
		appendChildren(branch, child)
	}
}
