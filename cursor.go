// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

// cursorState classifies the sentinel positions a cursor's current node can
// be in, mirroring the spec's START/ROOT/NONE/ERROR(errno) sentinels (§3).
type cursorState uint8

const (
	stateActive cursorState = iota // node holds a real current position
	stateStart                     // freshly reset, not yet descended
	stateNone                      // exhausted (iteration/allocation done)
	stateError                     // err holds the failure
)

// cursor is the walk state threaded through every descent, mirroring spec
// C2. It is re-entrant: the same cursor value is reused across pause/resume
// cycles and across the per-level loop of the spanning-store engine.
type cursor[V any] struct {
	tree *Tree[V]

	// the operation's requested range.
	index, last uint

	state   cursorState
	err     error
	current *node[V]
	slot    int // slot index within current that index resolves to

	// resolved bounds of the current node/slot, refreshed on each step.
	min, max uint

	// depth is the number of branch levels descended from the root.
	depth int

	// fullCount is signed: positive counts consecutive full ancestors,
	// negative counts consecutive under-full ancestors. walkForWrite
	// computes it; requestNodes sizes pre-allocation from the cached tree
	// height instead and does not read it.
	fullCount int

	// spanAnchor is the highest ancestor whose slot range is fully
	// overwritten by [index,last] (C3 walk_for_write).
	spanAnchor *node[V]
	spanning   bool

	// pool is the cursor's local pre-allocation pool: nodes obtained
	// before a mutation begins so that the mutation can apply atomically
	// without a mid-mutation allocation failure (spec §3, §4.4 step 4
	// "failure atomicity").
	pool []*node[V]
}

func newCursor[V any](t *Tree[V]) *cursor[V] {
	return &cursor[V]{tree: t, state: stateStart}
}

// reset returns the cursor to its freshly-constructed state, dropping any
// unconsumed pre-allocated nodes back to the tree's pool.
func (c *cursor[V]) reset() {
	for _, n := range c.pool {
		c.tree.pool.Put(n)
	}
	c.pool = c.pool[:0]
	c.state = stateStart
	c.err = nil
	c.current = nil
	c.slot = 0
	c.min, c.max = 0, ^uint(0)
	c.depth = 0
	c.fullCount = 0
	c.spanAnchor = nil
	c.spanning = false
}

// set seeds the cursor for a point operation at index.
func (c *cursor[V]) set(index uint) {
	c.reset()
	c.index, c.last = index, index
}

// setRange seeds the cursor for a range operation [index,last].
func (c *cursor[V]) setRange(index, last uint) {
	c.reset()
	c.index, c.last = index, last
}

func (c *cursor[V]) isNone() bool  { return c.state == stateNone }
func (c *cursor[V]) isError() bool { return c.state == stateError }

func (c *cursor[V]) fail(err error) {
	c.state = stateError
	c.err = err
}

// pause snapshots enough progress for the caller to drop the read-side
// critical section (or the write lock) and resume later: on resume, the
// walk restarts from the root at index = previous last + 1. If the
// previous last was the maximum key, the cursor saturates to NONE (spec
// C2 "pause").
func (c *cursor[V]) pause() {
	if c.last == ^uint(0) {
		c.state = stateNone
		return
	}
	nextIndex := c.last + 1
	c.reset()
	c.index = nextIndex
	c.last = ^uint(0)
	c.state = stateStart
}

// requestNodes ensures the cursor's local pool holds at least n
// pre-allocated nodes, and never fewer than three per level of the cached
// tree height (the most a split cascading from a leaf up to the root can
// consume), refilling from the tree's pool under gfp. Returns false (and
// transitions to the error sentinel) if allocation failed and gfp forbade
// blocking.
func (c *cursor[V]) requestNodes(n int, gfp GFP) bool {
	if worst := 3 * int(c.tree.height.Load()); n < worst {
		n = worst
	}
	for len(c.pool) < n {
		nn := c.tree.pool.Get(gfp)
		if nn == nil {
			c.fail(ErrNoMemory)
			return false
		}
		c.pool = append(c.pool, nn)
	}
	return true
}

// takeNode consumes one pre-allocated node from the cursor's pool. Callers
// must have called requestNodes first; takeNode panics on an empty pool
// since that indicates a pre-allocation sizing bug, not a recoverable
// runtime condition.
func (c *cursor[V]) takeNode() *node[V] {
	n := c.pool[len(c.pool)-1]
	c.pool[len(c.pool)-1] = nil
	c.pool = c.pool[:len(c.pool)-1]
	return n
}

// poolCount reports how many pre-allocated nodes remain in the cursor's
// local pool (spec C2: "count is recoverable by walking the pool's
// first-level slots" — here it is simply len, since maple's pool is a Go
// slice rather than a linked list of nodes).
func (c *cursor[V]) poolCount() int { return len(c.pool) }
