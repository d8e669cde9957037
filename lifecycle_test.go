// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDestroyEmptiesTree(t *testing.T) {
	tree := newTestTree(t)
	const n = 100
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*4), &values[i]))
	}

	tree.Destroy()

	require.Equal(t, 0, tree.Len())
	require.Nil(t, tree.Load(0))
	require.Nil(t, tree.root.Load())
}

func TestDuplicateIndependentTrees(t *testing.T) {
	src := newTestTree(t)
	const n = 120
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, src.Insert(uint(i*7), &values[i]))
	}

	dst := &Tree[string]{}
	dst.Init(0)
	require.NoError(t, Duplicate(dst, src))

	for i := 0; i < n; i++ {
		got := dst.Load(uint(i * 7))
		require.NotNil(t, got, "index %d", i*7)
	}
	require.Equal(t, src.Len(), dst.Len())

	more := "new"
	require.NoError(t, dst.Insert(1, &more))
	require.Nil(t, src.Load(1))
}

func TestDuplicateEmptyTree(t *testing.T) {
	src := newTestTree(t)
	dst := &Tree[string]{}
	dst.Init(0)
	require.NoError(t, Duplicate(dst, src))
	require.Equal(t, 0, dst.Len())
	require.Nil(t, dst.root.Load())
}
