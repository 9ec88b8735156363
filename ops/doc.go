// Package ops provides the user-facing sparse linear algebra primitives:
// container I/O, elementwise (BLAS-1), matrix-vector (BLAS-2), and
// matrix-matrix (BLAS-3) operations over the algebraic structures of
// package algebra.
//
// Two-phase contract
//
//	Every primitive that can grow an output takes a core.Phase argument.
//	Phase Resize is eager: pending work on the operands is flushed and
//	the output's capacity is raised to a bound sufficient for the
//	requested operation. Phase Execute is lazy: the call validates its
//	arguments, records a stage with the process recorder, and returns
//	Success before any element is computed. Output contents only become
//	observable at an observation point: a scalar-producing primitive,
//	Wait, NnzVector/NnzMatrix, or a forced flush decided by the
//	dependence analyzer.
//
// Error discipline
//
//	Validation failures (size mismatches, invalid descriptors, aliased
//	outputs where forbidden) are detected before anything is recorded,
//	so a non-Success return other than a deferred execution failure
//	leaves all operands untouched. Execution failures surface at the
//	observation point that triggered them.
//
// Masks
//
//	A nil mask means unmasked. A mask entry accepts its index when the
//	entry exists and its value is boolean true or numerically nonzero;
//	the Structural descriptor drops the value test and the InvertMask
//	descriptor complements the result.
//
// Pattern containers (Matrix[matrix.Pattern]) carry no values; semiring
// primitives consume them through operators whose matrix-side domain is
// the empty struct, conventionally mapping every entry to the semiring's
// multiplicative behavior on the remaining operand.
package ops
