// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"sync"
	"sync/atomic"
)

// NodePool is the node-pool memory allocator collaborator (spec §6):
// external to the tree core, reached only through this interface.
//
//	Get(gfp) -> node | nil   (pool_alloc_one)
//	Put(node)                (pool_free)
//	PutBulk(nodes)            (pool_free_bulk)
type NodePool[V any] interface {
	// Get returns a node ready for reuse, or nil if allocation failed and
	// gfp forbids blocking. The returned node is reset (see node.reset).
	Get(gfp GFP) *node[V]

	// Put returns a single node to the pool for reuse.
	Put(n *node[V])

	// PutBulk returns many nodes at once (spec C8 "bulk-frees leaves in
	// sized batches").
	PutBulk(nodes []*node[V])

	// Stats reports live (checked out) and total-ever-allocated counts,
	// mirroring the teacher's pool.Stats() debug/perf accessor.
	Stats() (live, total int64)
}

// GFP (named for the kernel allocation-flags parameter threaded through the
// original spec's gfp argument) tells Get/refill whether blocking to make
// an allocation succeed is permitted.
type GFP uint8

const (
	// GFPAtomic forbids blocking; a failed Get returns nil immediately.
	GFPAtomic GFP = iota
	// GFPKernel permits Get to block until it can return a node.
	// storeLocked uses it on its retry attempt and keeps holding the
	// tree's mutex while Get blocks; the lock is not dropped.
	GFPKernel
)

// syncNodePool is the default NodePool, a type-safe sync.Pool wrapper
// directly grounded in the teacher's pool.go/multipool.go: a sync.Pool of
// *node[V] plus atomic.Int64 live/total counters for diagnostics, reset on
// Put so the caller never observes stale slot data.
type syncNodePool[V any] struct {
	sync.Pool
	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

func newSyncPool[V any]() *syncNodePool[V] {
	p := &syncNodePool[V]{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return new(node[V])
	}
	return p
}

func (p *syncNodePool[V]) Get(gfp GFP) *node[V] {
	if p == nil {
		return new(node[V])
	}
	p.currentLive.Add(1)
	n, _ := p.Pool.Get().(*node[V])
	if n == nil {
		p.totalAllocated.Add(1)
		return new(node[V])
	}
	return n
}

func (p *syncNodePool[V]) Put(n *node[V]) {
	if p == nil || n == nil {
		return
	}
	n.reset()
	p.currentLive.Add(-1)
	p.Pool.Put(n)
}

func (p *syncNodePool[V]) PutBulk(nodes []*node[V]) {
	for _, n := range nodes {
		p.Put(n)
	}
}

func (p *syncNodePool[V]) Stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
