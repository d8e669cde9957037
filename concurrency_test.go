// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConcurrentReadersDuringWriterMutation is scenario S5: a reader
// repeatedly scanning the whole tree never observes a crash or a stale
// dereference while a concurrent writer deletes and reinserts entries.
// Run with -race to verify the restart-on-dead-node protocol (spec §5,
// invariant 9) actually protects every read.
func TestConcurrentReadersDuringWriterMutation(t *testing.T) {
	tree := newTestTree(t)
	const n = 400
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = "v"
		require.NoError(t, tree.Insert(uint(i*2), &values[i]))
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// Load/Find never take tree.mu (spec §5): this is the
			// lock-free reader path the restart-on-dead-node protocol
			// must protect against racing with the writer goroutine
			// below.
			for i := 0; i < n; i += 37 {
				_ = tree.Load(uint(i * 2))
			}
			_, _, _ = tree.Find(0, ^uint(0))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for round := 0; round < 200; round++ {
			idx := uint((round % n) * 2)
			require.NoError(t, tree.Erase(idx))
			v := "v"
			values[round%n] = v
			require.NoError(t, tree.Insert(idx, &values[round%n]))
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent reader/writer test did not complete in time")
	}
	close(stop)
}
