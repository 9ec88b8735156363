package vector

// Coordinates is the sparsity-tracking side structure of a vector: a dense
// assigned bitmap over [0,n), a stack of the currently present indices, and
// per-tile buffers that collect indices assigned while a pipeline executes.
//
// The stack holds nnz valid entries in unspecified order; iteration order
// over a sparse vector is therefore unspecified, and tile-local reordering
// during pipeline finalization is explicitly permitted.
type Coordinates struct {
	n   int
	cap int
	nnz int

	assigned []bool
	stack    []int

	// localNew collects, per tile, the indices first assigned during the
	// current pipeline execution. Sized by BeginSubsets, merged and
	// released by JoinSubsets.
	localNew [][]int
}

// NewCoordinates builds a tracker for indices in [0,n) holding at most
// capacity entries. Capacity is clamped into [0, n]; a negative capacity
// requests the full length.
func NewCoordinates(n, capacity int) *Coordinates {
	if capacity < 0 || capacity > n {
		capacity = n
	}
	return &Coordinates{
		n:        n,
		cap:      capacity,
		assigned: make([]bool, n),
		stack:    make([]int, 0, capacity),
	}
}

// N returns the tracked index-space length.
func (c *Coordinates) N() int { return c.n }

// Capacity returns the maximum number of simultaneously present entries.
func (c *Coordinates) Capacity() int { return c.cap }

// Nonzeroes returns the number of currently present entries.
func (c *Coordinates) Nonzeroes() int { return c.nnz }

// Dense reports whether every index is present.
func (c *Coordinates) Dense() bool { return c.nnz == c.n }

// Assigned reports whether index i is present. Callers guarantee i is in
// range; the executor's tile loops never step outside their tile.
func (c *Coordinates) Assigned(i int) bool { return c.assigned[i] }

// Index returns the k-th present index, 0 ≤ k < Nonzeroes(), in
// unspecified order.
func (c *Coordinates) Index(k int) int { return c.stack[k] }

// Assign marks index i present, outside of any pipeline execution.
// It reports whether the index was newly assigned; assigning beyond
// capacity reports false without mutating the tracker.
func (c *Coordinates) Assign(i int) (fresh, ok bool) {
	if c.assigned[i] {
		return false, true
	}
	if c.nnz == c.cap {
		return false, false
	}
	c.assigned[i] = true
	c.stack = append(c.stack[:c.nnz], i)
	c.nnz++
	return true, true
}

// AssignAll marks every index present. Requires capacity == n.
func (c *Coordinates) AssignAll() bool {
	if c.cap != c.n {
		return false
	}
	c.stack = c.stack[:0]
	for i := range c.assigned {
		c.assigned[i] = true
		c.stack = append(c.stack, i)
	}
	c.nnz = c.n
	return true
}

// Clear removes every entry. Capacity is unchanged.
func (c *Coordinates) Clear() {
	for _, i := range c.stack[:c.nnz] {
		c.assigned[i] = false
	}
	c.nnz = 0
	c.stack = c.stack[:0]
}

// GrowCapacity raises the capacity bound to at least want entries,
// clamped to n. Shrinking below the current nnz is refused.
func (c *Coordinates) GrowCapacity(want int) bool {
	if want > c.n {
		want = c.n
	}
	if want < c.nnz {
		return false
	}
	if want > c.cap {
		c.cap = want
		if cap(c.stack) < want {
			grown := make([]int, c.nnz, want)
			copy(grown, c.stack[:c.nnz])
			c.stack = grown
		}
	}
	return true
}

// BeginSubsets prepares per-tile local buffers for a pipeline execution
// over numTiles tiles. Any leftover buffers from an aborted run are
// discarded.
func (c *Coordinates) BeginSubsets(numTiles int) {
	if cap(c.localNew) >= numTiles {
		c.localNew = c.localNew[:numTiles]
		for t := range c.localNew {
			c.localNew[t] = c.localNew[t][:0]
		}
		return
	}
	c.localNew = make([][]int, numTiles)
}

// AssignLocal marks index i present from within tile t of a pipeline
// execution. The bitmap write is race-free because tiles own disjoint
// contiguous index ranges; the new index is published to the tile-local
// buffer and merged by JoinSubsets. Reports whether i was newly assigned.
func (c *Coordinates) AssignLocal(t, i int) bool {
	if c.assigned[i] {
		return false
	}
	c.assigned[i] = true
	c.localNew[t] = append(c.localNew[t], i)
	return true
}

// JoinSubsets merges the per-tile buffers into the stack after all tile
// workers have finished. Tile contributions are appended from last to
// first, each move freeing space for the next; entries may be reordered
// relative to assignment order, which clients must not rely upon.
//
// If the merged count would exceed capacity the tracker rolls the new
// assignments back and reports false; the owning container is then in the
// undefined post-OutOfMem state and must be cleared before reuse.
func (c *Coordinates) JoinSubsets() bool {
	total := 0
	for _, local := range c.localNew {
		total += len(local)
	}
	if total == 0 {
		c.localNew = c.localNew[:0]
		return true
	}
	if c.nnz+total > c.cap {
		c.DiscardSubsets()
		return false
	}
	c.stack = c.stack[:c.nnz+total]
	pos := c.nnz + total
	for t := len(c.localNew) - 1; t >= 0; t-- {
		local := c.localNew[t]
		pos -= len(local)
		copy(c.stack[pos:], local)
	}
	c.nnz += total
	c.localNew = c.localNew[:0]
	return true
}

// DiscardSubsets rolls back every index assigned during the current
// execution, unsetting the published bitmap bits and releasing the
// per-tile buffers. Called instead of JoinSubsets when a pipeline aborts,
// so a failed stage cannot leave present bits behind without matching
// stack entries.
func (c *Coordinates) DiscardSubsets() {
	for _, local := range c.localNew {
		for _, i := range local {
			c.assigned[i] = false
		}
	}
	c.localNew = c.localNew[:0]
}

// PendingSubsets returns the number of indices assigned during the current
// execution that have not been joined yet. Diagnostic, used by tests.
func (c *Coordinates) PendingSubsets() int {
	total := 0
	for _, local := range c.localNew {
		total += len(local)
	}
	return total
}
