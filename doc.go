// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

// Package maple implements an adaptive range-keyed tree: a B-tree variant
// that maps non-overlapping integer ranges [start..end] over a word-sized
// unsigned key space to opaque entry values.
//
// The tree supports point and range load, range store (insert, overwrite,
// erase), allocation-style empty-area search (lowest-fit and highest-fit for
// a requested size), and ordered iteration. A secondary allocation mode
// augments internal nodes with per-child gap summaries so that empty-area
// searches run in time proportional to tree height rather than linear in the
// number of stored ranges.
//
// The tree is safe for one writer concurrent with any number of readers.
// Writers serialize on a per-tree mutex; readers never block and never take
// the mutex, relying instead on release-ordered pointer publication and a
// restart-on-stale-node protocol (see cursor.go and walk.go).
package maple
