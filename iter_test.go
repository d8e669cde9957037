// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindNextPrev(t *testing.T) {
	tree := newTestTree(t)
	a, b, c := "a", "b", "c"
	require.NoError(t, tree.Insert(10, &a))
	require.NoError(t, tree.Insert(20, &b))
	require.NoError(t, tree.Insert(30, &c))

	v, lo, ok := tree.Find(15, ^uint(0))
	require.True(t, ok)
	require.Equal(t, uint(20), lo)
	require.Equal(t, "b", *v)

	v, lo, ok = tree.Next(20)
	require.True(t, ok)
	require.Equal(t, uint(30), lo)
	require.Equal(t, "c", *v)

	v, lo, ok = tree.Prev(20)
	require.True(t, ok)
	require.Equal(t, uint(10), lo)
	require.Equal(t, "a", *v)

	_, _, ok = tree.Next(30)
	require.False(t, ok)

	_, _, ok = tree.Prev(10)
	require.False(t, ok)
}

// Find's second argument bounds the scan: an entry past max is reported as
// no match, same as if the tree held nothing left to offer before max (spec
// C7 "find(min..max)").
func TestFindRespectsUpperBound(t *testing.T) {
	tree := newTestTree(t)
	a, b := "a", "b"
	require.NoError(t, tree.Insert(10, &a))
	require.NoError(t, tree.Insert(50, &b))

	_, _, ok := tree.Find(11, 40)
	require.False(t, ok, "next occupied entry (50) lies past the upper bound")

	v, lo, ok := tree.Find(11, 60)
	require.True(t, ok)
	require.Equal(t, uint(50), lo)
	require.Equal(t, "b", *v)
}

func TestLastEntry(t *testing.T) {
	tree := newTestTree(t)
	a, b, c := "a", "b", "c"
	require.NoError(t, tree.Insert(10, &a))
	require.NoError(t, tree.Insert(20, &b))
	require.NoError(t, tree.Insert(30, &c))

	v, lo, ok := tree.LastEntry(0)
	require.True(t, ok)
	require.Equal(t, uint(30), lo)
	require.Equal(t, "c", *v)

	_, _, ok = tree.LastEntry(31)
	require.False(t, ok, "the rightmost entry's lower bound falls short of limit")
}

func TestLastEntryEmptyTree(t *testing.T) {
	tree := newTestTree(t)
	_, _, ok := tree.LastEntry(0)
	require.False(t, ok)
}

// Iter drives cursor.pause()/resume across calls rather than re-walking from
// the root within one critical section (spec C2 "pause").
func TestIterResumable(t *testing.T) {
	tree := newTestTree(t)
	const n = 50
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*10), &values[i]))
	}

	it := tree.NewIter(0)
	var got []uint
	for {
		_, lo, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, lo)
	}
	require.Len(t, got, n)
	for i, lo := range got {
		require.Equal(t, uint(i*10), lo)
	}
}

// Iter starting mid-range skips everything before start.
func TestIterResumableFromMidpoint(t *testing.T) {
	tree := newTestTree(t)
	a, b, c := "a", "b", "c"
	require.NoError(t, tree.Insert(10, &a))
	require.NoError(t, tree.Insert(20, &b))
	require.NoError(t, tree.Insert(30, &c))

	it := tree.NewIter(15)
	v, lo, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, uint(20), lo)
	require.Equal(t, "b", *v)

	v, lo, ok = it.Next()
	require.True(t, ok)
	require.Equal(t, uint(30), lo)
	require.Equal(t, "c", *v)

	_, _, ok = it.Next()
	require.False(t, ok)
}

func TestWalkPreorderVisitsAllEntries(t *testing.T) {
	tree := newTestTree(t)
	const n = 200
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*5), &values[i]))
	}

	seen := map[uint]bool{}
	tree.Walk(func(lo, hi uint, value *string) bool {
		seen[lo] = true
		return true
	})

	for i := 0; i < n; i++ {
		require.True(t, seen[uint(i*5)], "missing %d", i*5)
	}
}

func TestWalkEarlyStop(t *testing.T) {
	tree := newTestTree(t)
	a, b := "a", "b"
	require.NoError(t, tree.Insert(1, &a))
	require.NoError(t, tree.Insert(2, &b))

	count := 0
	tree.Walk(func(lo, hi uint, value *string) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}

func TestPostOrderVisitsAllEntries(t *testing.T) {
	tree := newTestTree(t)
	const n = 150
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*3), &values[i]))
	}

	count := 0
	tree.PostOrder(func(lo, hi uint, value *string) bool {
		count++
		return true
	})
	require.Equal(t, n, count)
}
