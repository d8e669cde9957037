// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSpanningStoreAcrossManyLeaves forces the tree tall enough that a
// single store_range crosses several leaves and at least one internal
// branch boundary, exercising the lockstep ancestor-ascend path in
// spanningStore (spec C5).
func TestSpanningStoreAcrossManyLeaves(t *testing.T) {
	tree := newTestTree(t)
	const n = 2000
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*3), &values[i]))
	}
	require.Greater(t, tree.height.Load(), int32(1), "fixture must be tall enough to exercise multi-level spanning")

	covered := "covered"
	require.NoError(t, tree.StoreRange(0, uint(n*3), &covered))

	for _, idx := range []uint{0, 3, 1500, uint(n * 3)} {
		got := tree.Load(idx)
		require.NotNil(t, got, "index %d", idx)
		require.Equal(t, "covered", *got)
	}
}

// TestSpanningStorePartialOverwritePreservesResidues checks that a spanning
// store only overwrites [first,last], leaving untouched entries on either
// side of the span intact.
func TestSpanningStorePartialOverwritePreservesResidues(t *testing.T) {
	tree := newTestTree(t)
	const n = 800
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "orig"
		require.NoError(t, tree.Insert(uint(i*5), &values[i]))
	}

	overwrite := "mid"
	first, last := uint(200), uint(3000)
	require.NoError(t, tree.StoreRange(first, last, &overwrite))

	beforeFirst := tree.Load(0)
	require.NotNil(t, beforeFirst)
	require.Equal(t, "orig", *beforeFirst)

	inSpan := tree.Load(1000)
	require.NotNil(t, inSpan)
	require.Equal(t, "mid", *inSpan)

	afterLast := tree.Load(uint((n - 1) * 5))
	require.NotNil(t, afterLast)
	require.Equal(t, "orig", *afterLast)
}

func TestSpanningStoreErasePropagatesNull(t *testing.T) {
	tree := newTestTree(t)
	const n = 1000
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*2), &values[i]))
	}

	require.NoError(t, tree.StoreRange(0, uint(n*2), nil))

	for _, idx := range []uint{0, 2, 500, uint(n * 2)} {
		require.Nil(t, tree.Load(idx), "index %d", idx)
	}
}
