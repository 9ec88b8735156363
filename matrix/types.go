// Package matrix: iterator contract, build modes, and sentinel errors.
package matrix

import "errors"

// Sentinel errors for matrix construction and access.
var (
	// ErrDuplicate indicates a duplicate coordinate in a BuildUnique range.
	ErrDuplicate = errors.New("matrix: duplicate coordinate")

	// ErrIndexRange indicates a coordinate outside the matrix dimensions.
	ErrIndexRange = errors.New("matrix: coordinate out of range")

	// ErrNotRandom indicates parallel ingestion was requested from a
	// forward-only iterator.
	ErrNotRandom = errors.New("matrix: parallel build requires random access")
)

// Pattern is the value type of pattern matrices; only coordinates are
// stored and the value array is zero-sized.
type Pattern = struct{}

// BuildMode selects how BuildUnique distributes ingestion.
type BuildMode int

const (
	// Sequential ingestion: every process sees the same iterator range and
	// the matrix distributes internally.
	Sequential BuildMode = iota

	// Parallel ingestion: the iterator range is partitioned across workers;
	// requires a RandomAccess iterator.
	Parallel
)

// Iterator walks a range of nonzero triples; forward iteration at minimum.
// Next advances to the next triple and reports whether one exists; I, J
// and V are valid after a true Next.
type Iterator[T any] interface {
	Next() bool
	I() int
	J() int
	V() T
}

// RandomAccess extends Iterator with indexed access, enabling
// partition-based parallel ingestion.
type RandomAccess[T any] interface {
	Iterator[T]
	Len() int
	At(k int) (i, j int, v T)
}

// Triple is one nonzero coordinate with its value.
type Triple[T any] struct {
	I, J int
	V    T
}

// Triples is a RandomAccess iterator over an in-memory slice.
type Triples[T any] struct {
	data []Triple[T]
	pos  int
}

// NewTriples wraps a slice of triples as a random-access nonzero iterator.
func NewTriples[T any](data []Triple[T]) *Triples[T] {
	return &Triples[T]{data: data, pos: -1}
}

// Next advances the cursor.
func (it *Triples[T]) Next() bool {
	it.pos++
	return it.pos < len(it.data)
}

// I returns the row coordinate at the cursor.
func (it *Triples[T]) I() int { return it.data[it.pos].I }

// J returns the column coordinate at the cursor.
func (it *Triples[T]) J() int { return it.data[it.pos].J }

// V returns the value at the cursor.
func (it *Triples[T]) V() T { return it.data[it.pos].V }

// Len returns the range length.
func (it *Triples[T]) Len() int { return len(it.data) }

// At returns the k-th triple without moving the cursor.
func (it *Triples[T]) At(k int) (int, int, T) {
	t := it.data[k]
	return t.I, t.J, t.V
}
