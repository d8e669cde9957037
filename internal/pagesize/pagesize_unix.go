// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

//go:build unix || linux || darwin

package pagesize

import "golang.org/x/sys/unix"

// Get returns the host page size in bytes, falling back to defaultBatch if
// the underlying syscall is unavailable.
func Get() int {
	sz := unix.Getpagesize()
	if sz <= 0 {
		return defaultBatch
	}
	return sz
}

// NodeBatch returns how many nodes of size nodeBytes fit in one page,
// clamped to at least 1 (spec C8's batch-sizing for PutBulk calls).
func NodeBatch(nodeBytes int) int {
	if nodeBytes <= 0 {
		return Get()
	}
	n := Get() / nodeBytes
	if n < 1 {
		n = 1
	}
	return n
}
