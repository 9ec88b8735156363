// Package matrix implements the tiled sparse matrix container: an m × n
// object storing nonzeroes in dual compressed form (CRS and CCS) with a
// row-tile partition sized for cache-friendly pipeline execution.
//
// What
//
//   - Matrix[T]: dual row/column compressed storage. Both indexings agree
//     on the stored positions and values at every quiescent point; during
//     a pipeline run the column indexing may lag and is rebuilt at
//     pipeline exit.
//   - A tile partition of the row space into contiguous blocks, each
//     targeting a configurable number of values (cache-line pages × a
//     factor), with a side array of per-tile nonzero counts satisfying
//     sum(nnzPerTile) = Nonzeroes().
//   - BuildUnique ingestion from a nonzero iterator, sequential or
//     parallel (the parallel mode requires random access).
//   - Pattern matrices: Matrix[Pattern] stores coordinates only; value
//     storage is zero-sized. Numeric primitives over pattern matrices are
//     excluded at the type level.
//
// Invariants
//
//	Nonzeroes() ≤ Capacity() ≤ m·n, sum of per-tile counts equals
//	Nonzeroes(), and iterating the container visits each stored coordinate
//	exactly once (order within a tile is unspecified).
//
// Errors
//
//   - ErrDuplicate   - duplicate coordinate in a BuildUnique range.
//   - ErrIndexRange  - coordinate outside the matrix dimensions.
//   - ErrNotRandom   - parallel ingestion from a forward-only iterator.
package matrix
