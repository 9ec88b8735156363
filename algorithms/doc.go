// Package algorithms builds end-to-end solvers on top of the primitive
// layer, exercising the deferred execution engine the way user code does.
//
// What
//
//   - BFSLevels: level-synchronous breadth-first search over an adjacency
//     matrix, one masked vector-matrix product per level.
//   - ConjugateGradient: the unpreconditioned CG iteration for symmetric
//     positive-definite systems, built from mxv, dot, and elementwise
//     lambda updates.
//
// Why
//
//	Both algorithms chain primitives without intermediate observation
//	wherever the mathematics allows it, so consecutive elementwise stages
//	fuse into a single pipeline sweep. Scalars the iteration branches on
//	(frontier size, residual norms) are the only observation points; the
//	engine runs everything pending up to each one.
package algorithms
