// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import "github.com/pkg/errors"

// Sentinel errors forming the boundary error taxonomy (spec §6/§7).
var (
	// ErrInvalid reports a bad range, a reserved entry value, or
	// out-of-order bounds (first > last).
	ErrInvalid = errors.New("maple: invalid argument")

	// ErrNoMemory reports a node-pool allocation failure. The public API
	// retries allocation-failed mutations after a pool refill; callers
	// only observe ErrNoMemory if refill itself cannot make progress.
	ErrNoMemory = errors.New("maple: out of memory")

	// ErrExist reports an insert over an already-occupied range.
	ErrExist = errors.New("maple: range already occupied")

	// ErrBusy reports that no empty area satisfying an allocation
	// request's size and bounds could be found.
	ErrBusy = errors.New("maple: no empty area large enough")

	// ErrNotFound reports iterator exhaustion (no further entry).
	ErrNotFound = errors.New("maple: no such entry")
)

// reservedValue marks an entry value as one of the two reserved entry-value
// ranges that insert_range/store_range must reject (spec §6): a tagged
// low-address sentinel, or the companion indexed-array "advanced" sentinel.
// The Go binding represents both reserved encodings with a single marker
// interface so callers can opt an entry type into the check; entries that
// don't implement it are never reserved.
type reservedValue interface {
	mapleReserved() bool
}

func isReservedEntry[V any](v V) bool {
	if rv, ok := any(v).(reservedValue); ok {
		return rv.mapleReserved()
	}
	return false
}

// wrapf annotates err with a formatted message using the pack's error
// wrapping idiom, and is itself a no-op (returns nil) for a nil err.
func wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
