// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

// Package pagesize reports the host's memory page size, used to size the
// bulk-free batches Tree.Destroy hands to the node pool (spec C8 "Destroy":
// "frees leaves in sized batches rather than one at a time").
package pagesize

// defaultBatch is used on platforms where the page size query fails or is
// unavailable.
const defaultBatch = 4096
