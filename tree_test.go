// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeInitDefaults(t *testing.T) {
	var tree Tree[string]
	tree.Init(0)

	require.False(t, tree.allocMode())
	require.False(t, tree.rcuMode())
	require.Equal(t, 0, tree.Len())
	require.NotNil(t, tree.pool)
	require.NotNil(t, tree.reclaimer)
}

func TestTreeInitFlags(t *testing.T) {
	var tree Tree[string]
	tree.Init(AllocMode | RCUMode)

	require.True(t, tree.allocMode())
	require.True(t, tree.rcuMode())
}

func TestTreeSetCollaboratorsOverridesOnlyNonNil(t *testing.T) {
	var tree Tree[string]
	tree.Init(0)
	defaultPool := tree.pool

	tree.SetCollaborators(nil, newEpochReclaimer[string]())
	require.Same(t, defaultPool, tree.pool)

	customPool := newSyncPool[string]()
	tree.SetCollaborators(customPool, nil)
	require.Same(t, customPool, tree.pool)
}
