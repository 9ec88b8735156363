// Package transition exposes the conjugate-gradient solver through a
// handle-based, type-erased surface for callers that cannot hold library
// types: foreign runtimes, long-lived services that outlive a single
// solver configuration, or code generated against a flat interface.
//
// What
//
//   - Init ingests a CRS triple (values, column indices, row pointers)
//     and returns an integer handle owning the system matrix.
//   - SetTolerance and SetMaxIter adjust the stopping criteria of a
//     handle between solves.
//   - Solve runs CG against caller-owned slices for the unknowns and the
//     right-hand side, writing the iterate back into the unknowns.
//   - Destroy releases the handle and its matrix.
//
// Status codes rather than errors cross this boundary: NoError,
// NullArgument, IllegalArgument, OutOfMemory, Unknown. Unknown covers
// non-convergence and every condition the flat surface cannot express.
//
// Handles are process-global and safe for concurrent use from multiple
// goroutines; each Solve runs on its own workspace.
package transition
