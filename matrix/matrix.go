package matrix

import (
	"github.com/alpgo/grb/core"
)

// compressed is one indexing direction of the dual storage: classic
// (start, index, value) compressed rows or columns.
type compressed[T any] struct {
	start []int // len major+1, prefix-summed
	ind   []int // minor coordinate per stored entry
	vals  []T   // stored values; zero-sized for Pattern
}

func newCompressed[T any](major, capacity int) compressed[T] {
	return compressed[T]{
		start: make([]int, major+1),
		ind:   make([]int, capacity),
		vals:  make([]T, capacity),
	}
}

func (c *compressed[T]) ensure(capacity int) {
	if cap(c.ind) < capacity {
		ind := make([]int, capacity)
		copy(ind, c.ind)
		c.ind = ind
		vals := make([]T, capacity)
		copy(vals, c.vals)
		c.vals = vals
	}
	c.ind = c.ind[:capacity]
	c.vals = c.vals[:capacity]
}

// Matrix is an m × n sparse container with nonzero value type T. Storage
// is dual: compressed rows (primary) and compressed columns (secondary).
// The secondary indexing may lag while a pipeline writes the matrix and is
// rebuilt at pipeline exit; at every quiescent point both agree on the
// stored positions and values.
type Matrix[T any] struct {
	id   core.ContainerID
	m, n int
	cap  int
	nnz  int

	crs compressed[T]
	ccs compressed[T]

	// row-tile partition: boundaries into the row space, len numTiles+1,
	// and the per-tile nonzero counts with sum(nnzPerTile) == nnz.
	tileTarget int
	rowTiles   []int
	nnzPerTile []int

	ccsStale bool
	rebuilds int
}

// Option configures matrix construction.
type Option func(*options)

type options struct {
	capacity   int
	tileTarget int
}

// WithCapacity requests initial storage for the given number of nonzeroes.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithTileTarget overrides the number of values a row tile aims to hold.
// The default derives from the configured cache-line size and tile factor.
func WithTileTarget(target int) Option {
	return func(o *options) {
		if target > 0 {
			o.tileTarget = target
		}
	}
}

// New constructs an empty m × n matrix. The capacity hint bounds the
// nonzero storage allocated up front; it grows on demand and is clamped
// to m·n when finite.
func New[T any](m, n int, opts ...Option) *Matrix[T] {
	cfg := core.DefaultConfig()
	o := options{
		capacity:   0,
		tileTarget: cfg.TileFactor * cfg.CacheLineBytes / 8,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if max := m * n; max >= 0 && o.capacity > max {
		o.capacity = max
	}
	a := &Matrix[T]{
		id:         core.NextContainerID(),
		m:          m,
		n:          n,
		cap:        o.capacity,
		crs:        newCompressed[T](m, o.capacity),
		ccs:        newCompressed[T](n, o.capacity),
		tileTarget: o.tileTarget,
	}
	a.retile()
	return a
}

// ID returns the process-wide unique container handle.
func (a *Matrix[T]) ID() core.ContainerID { return a.id }

// Rows returns m.
func (a *Matrix[T]) Rows() int { return a.m }

// Cols returns n.
func (a *Matrix[T]) Cols() int { return a.n }

// Nonzeroes returns the stored entry count at the last quiescent point.
func (a *Matrix[T]) Nonzeroes() int { return a.nnz }

// Capacity returns the maximum number of storable nonzeroes.
func (a *Matrix[T]) Capacity() int { return a.cap }

// RebuildCount returns how many secondary-indexing rebuilds this matrix
// has performed. Diagnostic; used by pipeline tests.
func (a *Matrix[T]) RebuildCount() int { return a.rebuilds }

// EnsureCapacity grows the nonzero storage to hold at least want entries.
func (a *Matrix[T]) EnsureCapacity(want int) core.RC {
	if max := a.m * a.n; want > max {
		return core.Illegal
	}
	if want <= a.cap {
		return core.Success
	}
	a.crs.ensure(want)
	a.ccs.ensure(want)
	a.cap = want
	return core.Success
}

// RowView returns the column indices and values of row i, backed by the
// primary storage. The slices must not be mutated by readers.
func (a *Matrix[T]) RowView(i int) ([]int, []T) {
	lo, hi := a.crs.start[i], a.crs.start[i+1]
	return a.crs.ind[lo:hi], a.crs.vals[lo:hi]
}

// ColView returns the row indices and values of column j, backed by the
// secondary storage. Callers must only use it at quiescent points.
func (a *Matrix[T]) ColView(j int) ([]int, []T) {
	lo, hi := a.ccs.start[j], a.ccs.start[j+1]
	return a.ccs.ind[lo:hi], a.ccs.vals[lo:hi]
}

// At returns the entry at (i, j) and whether it is present.
func (a *Matrix[T]) At(i, j int) (T, bool) {
	var zero T
	if i < 0 || i >= a.m || j < 0 || j >= a.n {
		return zero, false
	}
	cols, vals := a.RowView(i)
	for k, c := range cols {
		if c == j {
			return vals[k], true
		}
	}
	return zero, false
}

// Iterate visits every stored entry; order within a row tile is
// unspecified.
func (a *Matrix[T]) Iterate(fn func(i, j int, v T)) {
	for i := 0; i < a.m; i++ {
		cols, vals := a.RowView(i)
		for k, j := range cols {
			fn(i, j, vals[k])
		}
	}
}

// Clear removes all entries; dimensions and capacity are unchanged.
func (a *Matrix[T]) Clear() {
	for i := range a.crs.start {
		a.crs.start[i] = 0
	}
	for j := range a.ccs.start {
		a.ccs.start[j] = 0
	}
	a.nnz = 0
	a.ccsStale = false
	a.retile()
}

// --- executor-facing write protocol -----------------------------------

// BeginWrite installs a fresh row-pointer array (len m+1, prefix-summed)
// and grows storage for the announced entry count. The column indexing is
// stale from this point until EndWrite. Tile workers then fill ColInd and
// Vals directly within their row ranges.
func (a *Matrix[T]) BeginWrite(rowPtr []int) core.RC {
	if len(rowPtr) != a.m+1 {
		return core.Mismatch
	}
	want := rowPtr[a.m]
	if rc := a.EnsureCapacity(want); rc != core.Success {
		return rc
	}
	copy(a.crs.start, rowPtr)
	a.ccsStale = true
	return core.Success
}

// RowPtr exposes the primary row pointers to tile workers.
func (a *Matrix[T]) RowPtr() []int { return a.crs.start }

// ColInd exposes the primary column indices to tile workers.
func (a *Matrix[T]) ColInd() []int { return a.crs.ind }

// Vals exposes the primary values to tile workers.
func (a *Matrix[T]) Vals() []T { return a.crs.vals }

// ColumnsStale reports whether the secondary indexing lags the primary.
func (a *Matrix[T]) ColumnsStale() bool { return a.ccsStale }

// EndWrite publishes a completed primary indexing: the nonzero count is
// taken from the row pointers, the secondary indexing is rebuilt, and the
// tile partition refreshed. One rebuild is counted per call.
func (a *Matrix[T]) EndWrite() core.RC {
	a.nnz = a.crs.start[a.m]
	if rc := a.rebuildColumns(); rc != core.Success {
		return rc
	}
	a.ccsStale = false
	a.rebuilds++
	a.retile()
	return core.Success
}

// rebuildColumns derives CCS from CRS by a counting pass.
func (a *Matrix[T]) rebuildColumns() core.RC {
	a.ccs.ensure(a.cap)
	start := a.ccs.start
	for j := range start {
		start[j] = 0
	}
	for k := 0; k < a.nnz; k++ {
		start[a.crs.ind[k]+1]++
	}
	for j := 0; j < a.n; j++ {
		start[j+1] += start[j]
	}
	cursor := make([]int, a.n)
	copy(cursor, start[:a.n])
	for i := 0; i < a.m; i++ {
		lo, hi := a.crs.start[i], a.crs.start[i+1]
		for k := lo; k < hi; k++ {
			j := a.crs.ind[k]
			at := cursor[j]
			cursor[j]++
			a.ccs.ind[at] = i
			a.ccs.vals[at] = a.crs.vals[k]
		}
	}
	return core.Success
}

// --- tile partition ----------------------------------------------------

// NumTiles returns the number of row tiles.
func (a *Matrix[T]) NumTiles() int { return len(a.rowTiles) - 1 }

// TileBounds returns the row range [lo, hi) of tile t.
func (a *Matrix[T]) TileBounds(t int) (lo, hi int) {
	return a.rowTiles[t], a.rowTiles[t+1]
}

// NnzPerTile returns a copy of the per-tile nonzero counts.
func (a *Matrix[T]) NnzPerTile() []int {
	out := make([]int, len(a.nnzPerTile))
	copy(out, a.nnzPerTile)
	return out
}

// retile recomputes the row-tile boundaries so that each tile holds about
// tileTarget values, then refreshes the per-tile counts.
func (a *Matrix[T]) retile() {
	a.rowTiles = a.rowTiles[:0]
	a.rowTiles = append(a.rowTiles, 0)
	inTile := 0
	for i := 0; i < a.m; i++ {
		inTile += a.crs.start[i+1] - a.crs.start[i]
		if inTile >= a.tileTarget {
			a.rowTiles = append(a.rowTiles, i+1)
			inTile = 0
		}
	}
	if a.rowTiles[len(a.rowTiles)-1] != a.m {
		a.rowTiles = append(a.rowTiles, a.m)
	}
	if a.m == 0 {
		a.rowTiles = []int{0, 0}
	}
	a.nnzPerTile = a.nnzPerTile[:0]
	for t := 0; t < len(a.rowTiles)-1; t++ {
		lo, hi := a.rowTiles[t], a.rowTiles[t+1]
		a.nnzPerTile = append(a.nnzPerTile, a.crs.start[hi]-a.crs.start[lo])
	}
}
