// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncPoolGetPutStats(t *testing.T) {
	p := newSyncPool[string]()

	n1 := p.Get(GFPAtomic)
	require.NotNil(t, n1)
	live, total := p.Stats()
	require.Equal(t, int64(1), live)
	require.Equal(t, int64(1), total)

	n1.kind = branchKind
	n1.numPivots = 3
	p.Put(n1)

	live, total = p.Stats()
	require.Equal(t, int64(0), live)
	require.Equal(t, int64(1), total)

	n2 := p.Get(GFPAtomic)
	require.Equal(t, leafKind, n2.kind)
	require.Equal(t, 0, n2.numPivots)
}

func TestSyncPoolPutBulk(t *testing.T) {
	p := newSyncPool[string]()
	nodes := []*node[string]{p.Get(GFPAtomic), p.Get(GFPAtomic), p.Get(GFPAtomic)}

	live, _ := p.Stats()
	require.Equal(t, int64(3), live)

	p.PutBulk(nodes)
	live, _ = p.Stats()
	require.Equal(t, int64(0), live)
}

func TestEpochReclaimerDefersUntilReadersExit(t *testing.T) {
	r := newEpochReclaimer[string]()
	pool := newSyncPool[string]()

	epoch := r.EnterRead()

	n := pool.Get(GFPAtomic)
	n.markDead()
	r.Defer(n, pool)

	live, _ := pool.Stats()
	require.Equal(t, int64(1), live, "node must not be reclaimed while a reader is active")

	r.ExitRead(epoch)
	r.Poll(pool)

	live, _ = pool.Stats()
	require.Equal(t, int64(0), live)
}
