// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newAllocTree(t *testing.T) *Tree[string] {
	t.Helper()
	tree := &Tree[string]{}
	tree.Init(AllocMode)
	return tree
}

func TestAllocRangeOnEmptyTree(t *testing.T) {
	tree := newAllocTree(t)
	start, err := tree.AllocRange(10, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, uint(0), start)
}

func TestAllocRangeReverseOnEmptyTree(t *testing.T) {
	tree := newAllocTree(t)
	start, err := tree.AllocRangeReverse(10, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, uint(991), start)
}

func TestAllocRangeSkipsOccupied(t *testing.T) {
	tree := newAllocTree(t)
	v := "x"
	require.NoError(t, tree.StoreRange(0, 99, &v))

	start, err := tree.AllocRange(10, 0, 1000)
	require.NoError(t, err)
	require.GreaterOrEqual(t, start, uint(100))
}

func TestAllocRangeBusyWhenTooSmall(t *testing.T) {
	tree := newAllocTree(t)
	v := "x"
	require.NoError(t, tree.StoreRange(0, 999, &v))

	_, err := tree.AllocRange(1, 0, 999)
	require.ErrorIs(t, err, ErrBusy)
}

func TestAllocRangeInvalidArgs(t *testing.T) {
	tree := newAllocTree(t)
	_, err := tree.AllocRange(0, 0, 10)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = tree.AllocRange(1, 10, 5)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestRangeWidthFullSpan(t *testing.T) {
	require.Equal(t, ^uint64(0), rangeWidth(0, ^uint(0)))
	require.Equal(t, uint64(1), rangeWidth(5, 5))
	require.Equal(t, uint64(10), rangeWidth(0, 9))
}
