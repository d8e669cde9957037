// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import "sync/atomic"

// Reclaimer is the deferred-reclamation collaborator (spec §6: external to
// the tree core; "defer_free must delay reclamation until no read-side
// critical section in progress at the call site can still observe the
// node"). Design Notes §9 suggests an epoch-based scheme or hazard
// pointers; we provide a minimal epoch-barrier implementation and let
// callers substitute their own (e.g. one backed by an existing RCU
// subsystem) via Tree.SetCollaborators.
type Reclaimer[V any] interface {
	// EnterRead marks the start of a read-side critical section and
	// returns a token to pass to ExitRead.
	EnterRead() (epoch uint64)

	// ExitRead ends a read-side critical section started by EnterRead.
	ExitRead(epoch uint64)

	// Defer schedules n (already marked dead) for reclamation once no
	// reader that could have observed it remains active, then hands it
	// to pool for reuse.
	Defer(n *node[V], pool NodePool[V])

	// Poll drives reclamation forward; callers (typically the writer,
	// between mutations) call this to reclaim whatever has become safe.
	// Implementations that reclaim synchronously inside Defer may make
	// this a no-op.
	Poll(pool NodePool[V])
}

// epochReclaimer is a minimal generation-counter reclaimer: a global epoch
// bumped on every Defer, and a single count of readers currently inside
// EnterRead/ExitRead. Deferred nodes are freed together, and only at a
// moment when that count is zero; the epoch recorded with each node is not
// consulted when freeing.
//
// This is intentionally simple (a single coarse epoch rather than
// hazard pointers or true RCU grace periods): a correct but not especially
// low-latency reclaimer, good enough as the shipped default and easy for a
// caller to replace per the Reclaimer interface.
type epochReclaimer[V any] struct {
	epoch       atomic.Uint64 // current global epoch, bumped on Defer
	activeCount atomic.Int64  // number of readers currently inside EnterRead/ExitRead

	pending []pendingFree[V]
}

type pendingFree[V any] struct {
	n         *node[V]
	freeEpoch uint64
}

func newEpochReclaimer[V any]() *epochReclaimer[V] {
	return &epochReclaimer[V]{}
}

func (r *epochReclaimer[V]) EnterRead() uint64 {
	r.activeCount.Add(1)
	return r.epoch.Load()
}

func (r *epochReclaimer[V]) ExitRead(epoch uint64) {
	r.activeCount.Add(-1)
}

// Defer records the node for later reclamation. Because the writer is
// single-threaded and serializes with readers only through the epoch
// counter (never a direct handoff), we conservatively wait until no reader
// is active at all before freeing: activeCount reaching zero is sufficient
// (not merely necessary) proof that every reader that could have observed
// the node has exited.
func (r *epochReclaimer[V]) Defer(n *node[V], pool NodePool[V]) {
	r.epoch.Add(1)
	r.pending = append(r.pending, pendingFree[V]{n: n, freeEpoch: r.epoch.Load()})
	r.Poll(pool)
}

func (r *epochReclaimer[V]) Poll(pool NodePool[V]) {
	if r.activeCount.Load() != 0 || len(r.pending) == 0 {
		return
	}
	ready := r.pending
	r.pending = nil
	nodes := make([]*node[V], 0, len(ready))
	for _, pf := range ready {
		nodes = append(nodes, pf.n)
	}
	pool.PutBulk(nodes)
}
