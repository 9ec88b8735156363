// Package vector implements the sparsity-coordinate vector container: a
// fixed-length mapping from indices in [0,n) to values, where entries not
// in the mapping are absent (not zero).
//
// What
//
//   - Vector[V]: dense value storage of length n plus a Coordinates side
//     structure tracking which indices are present.
//   - Coordinates: an assigned bitmap, a stack of present indices, and
//     per-tile local update buffers used while a pipeline executes. The
//     capacity bounds how many entries may be present simultaneously:
//     nnz ≤ capacity ≤ n at every quiescent point.
//   - Build, Set, Clear and iteration over exactly the present indices.
//
// Concurrency
//
//	Vectors are deliberately unsynchronized. The dependence analyzer
//	guarantees a container is mutated by at most one pipeline at a time;
//	inside a pipeline, tile workers touch disjoint contiguous index ranges
//	and publish new indices through per-tile buffers that are joined after
//	all workers finish.
//
// Errors
//
//   - ErrIndexRange   - index outside [0, n).
//   - ErrDuplicate    - duplicate index handed to Build.
//   - ErrReadOnly     - entry-adding operation on a capacity-0 vector.
package vector
