package vector

import (
	"errors"

	"github.com/alpgo/grb/core"
)

// Sentinel errors for container-level operations.
var (
	// ErrIndexRange indicates an index outside [0, n).
	ErrIndexRange = errors.New("vector: index out of range")

	// ErrDuplicate indicates a duplicate index handed to Build.
	ErrDuplicate = errors.New("vector: duplicate index")

	// ErrReadOnly indicates an entry-adding operation on a capacity-0
	// vector.
	ErrReadOnly = errors.New("vector: capacity is zero")
)

// Vector is a fixed-length sparse container mapping indices in [0,n) to
// values of type V. Entries not present are absent, not zero. Values are
// stored densely over the full length; presence is tracked by the
// Coordinates side structure so the capacity invariant nnz ≤ capacity ≤ n
// holds at every quiescent point.
type Vector[V any] struct {
	id     core.ContainerID
	values []V
	coords *Coordinates
}

// New constructs an empty vector of length n with the requested capacity.
// A negative capacity requests the full length; the capacity is clamped
// into [0, n].
func New[V any](n, capacity int) *Vector[V] {
	return &Vector[V]{
		id:     core.NextContainerID(),
		values: make([]V, n),
		coords: NewCoordinates(n, capacity),
	}
}

// ID returns the process-wide unique container handle.
func (v *Vector[V]) ID() core.ContainerID { return v.id }

// Size returns the immutable length n.
func (v *Vector[V]) Size() int { return v.coords.N() }

// Capacity returns the maximum number of simultaneously held entries.
func (v *Vector[V]) Capacity() int { return v.coords.Capacity() }

// Nonzeroes returns the entry count at the last quiescent point. A
// pending pipeline write is not reflected; observe through ops.NnzVector
// to force execution first.
func (v *Vector[V]) Nonzeroes() int { return v.coords.Nonzeroes() }

// Dense reports whether the vector is structurally full.
func (v *Vector[V]) Dense() bool { return v.coords.Dense() }

// Coordinates exposes the sparsity tracker to the pipeline executor.
func (v *Vector[V]) Coordinates() *Coordinates { return v.coords }

// Values exposes the dense value storage to the pipeline executor. Valid
// entries are exactly those whose index is present in Coordinates.
func (v *Vector[V]) Values() []V { return v.values }

// At returns the value at index i and whether the entry is present.
func (v *Vector[V]) At(i int) (V, bool) {
	var zero V
	if i < 0 || i >= v.coords.N() {
		return zero, false
	}
	if !v.coords.Assigned(i) {
		return zero, false
	}
	return v.values[i], true
}

// SetElement writes a single entry, creating it if absent.
func (v *Vector[V]) SetElement(i int, val V) error {
	if i < 0 || i >= v.coords.N() {
		return ErrIndexRange
	}
	if v.coords.Capacity() == 0 {
		return ErrReadOnly
	}
	if _, ok := v.coords.Assign(i); !ok {
		return core.ErrOutOfMem
	}
	v.values[i] = val
	return nil
}

// Build ingests index/value pairs, growing capacity as needed. Duplicate
// indices yield ErrDuplicate and out-of-range indices ErrIndexRange; in
// both cases the vector keeps the entries ingested so far cleared away,
// i.e. the container is reset to its pre-call state.
func (v *Vector[V]) Build(indices []int, values []V) error {
	if len(indices) != len(values) {
		return core.ErrMismatch
	}
	if len(indices) == 0 {
		return nil
	}
	if v.coords.N() == 0 {
		return ErrIndexRange
	}
	if v.coords.Capacity() == 0 {
		return ErrReadOnly
	}
	if !v.coords.GrowCapacity(v.coords.Nonzeroes() + len(indices)) {
		return core.ErrOutOfMem
	}
	start := v.coords.Nonzeroes()
	rollback := func() {
		for k := v.coords.Nonzeroes(); k > start; {
			k--
			// re-clear everything assigned by this call
			i := v.coords.Index(k)
			v.coords.assigned[i] = false
		}
		v.coords.stack = v.coords.stack[:start]
		v.coords.nnz = start
	}
	for k, i := range indices {
		if i < 0 || i >= v.coords.N() {
			rollback()
			return ErrIndexRange
		}
		fresh, ok := v.coords.Assign(i)
		if !ok {
			rollback()
			return core.ErrOutOfMem
		}
		if !fresh {
			rollback()
			return ErrDuplicate
		}
		v.values[i] = values[k]
	}
	return nil
}

// Clear removes all entries; length and capacity are unchanged.
func (v *Vector[V]) Clear() { v.coords.Clear() }

// GrowCapacity raises the capacity to at least want entries (clamped to
// the length). Shrinking below the current entry count is refused.
func (v *Vector[V]) GrowCapacity(want int) core.RC {
	if !v.coords.GrowCapacity(want) {
		return core.Illegal
	}
	return core.Success
}

// Iterate visits every present entry in unspecified order.
func (v *Vector[V]) Iterate(fn func(i int, val V)) {
	for k := 0; k < v.coords.Nonzeroes(); k++ {
		i := v.coords.Index(k)
		fn(i, v.values[i])
	}
}
