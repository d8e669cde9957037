// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"sync"
	"sync/atomic"
)

// Flags configures a Tree at Init time (spec §3 "flags word", §6 "tree
// flags bit layout"). Unlike the original bit-packed word (allocation bit,
// RCU bit, 4 bits of cached height crammed into one integer) we keep the
// cached height as its own field (tree.go's Tree.height) since Go has no
// reason to share a word across concerns; Flags itself only carries the two
// independent mode bits the public API actually branches on.
type Flags uint8

const (
	// AllocMode enables gap tracking on internal nodes, which is required
	// by AllocRange/AllocRangeReverse (spec C6).
	AllocMode Flags = 1 << iota

	// RCUMode forbids in-place reuse and in-place pivot patches so that
	// concurrent readers only ever observe atomic pointer swaps (spec
	// §3, §4.4 step 3 "forbidden when the tree is in RCU mode").
	RCUMode
)

// Tree is a process-local handle to an adaptive range-keyed tree mapping
// non-overlapping ranges over [0, ^uint(0)] to values of type V.
//
// A Tree is safe for one writer concurrent with any number of readers
// (spec §5). The zero value is not ready to use; call Init.
type Tree[V any] struct {
	// root is published with release ordering; readers load it without
	// taking mu (spec §5).
	root atomic.Pointer[node[V]]

	flags Flags

	// height is the cached tree height (root depth), used to size
	// pre-allocation in the cursor (spec §3). Updated under mu on commit.
	height atomic.Int32

	// mu serializes writers; readers never take it (spec §5).
	mu sync.Mutex

	// size is incremented by sizeDelta when a non-null write creates a
	// fresh leaf (store.go insertFreshLeaf). Len does not read it.
	size int

	pool      NodePool[V]
	reclaimer Reclaimer[V]
}

// Init prepares an empty tree with the given flags. The zero Tree value
// with a subsequent Init call is the supported construction path, mirroring
// the teacher's "zero value is ready to use" Table contract but making the
// allocation-mode / RCU-mode choice explicit up front, since unlike bart's
// routing table neither mode can be toggled after the first insert without
// a full rebuild.
func (t *Tree[V]) Init(flags Flags) {
	t.flags = flags
	t.root.Store(nil)
	t.height.Store(0)
	t.size = 0
	if t.pool == nil {
		t.pool = newSyncPool[V]()
	}
	if t.reclaimer == nil {
		t.reclaimer = newEpochReclaimer[V]()
	}
}

// SetCollaborators installs a caller-provided node pool and/or reclaimer in
// place of the defaults (spec §6: both are external collaborators accessed
// only through an interface). Passing nil for either argument leaves the
// current collaborator untouched. Must be called before any mutation.
func (t *Tree[V]) SetCollaborators(pool NodePool[V], reclaimer Reclaimer[V]) {
	if pool != nil {
		t.pool = pool
	}
	if reclaimer != nil {
		t.reclaimer = reclaimer
	}
}

func (t *Tree[V]) allocMode() bool { return t.flags&AllocMode != 0 }
func (t *Tree[V]) rcuMode() bool   { return t.flags&RCUMode != 0 }

// Len returns the number of distinct stored (non-null) ranges, counted by
// walking every leaf under mu.
func (t *Tree[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	walkPreorder(t.root.Load(), func(lo, hi uint, value *V) bool {
		count++
		return true
	})
	return count
}

func (t *Tree[V]) sizeDelta(d int) {
	t.size += d
}
