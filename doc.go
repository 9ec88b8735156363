// Package grb is a sparse linear-algebra engine with nonblocking
// execution: primitives record deferred stages, a dependence analyzer
// fuses compatible stages into pipelines, and a tiled parallel executor
// runs each pipeline in one cache-friendly sweep when a result is
// actually observed.
//
// 🚀 What is grb?
//
//	A generics-based GraphBLAS-style library that brings together:
//		• Algebra: operators, monoids and semirings as compile-time values
//		• Containers: sparse vectors with a coordinate tracker, matrices in dual CRS/CCS
//		• Primitives: two-phase (resize/execute) io, level-1, level-2 and level-3 ops
//		• Engine: stage recorder, dependence analyzer, tiled errgroup executor
//		• Algorithms: BFS levels and conjugate gradient built on the primitives
//		• Transition: a handle-based solver surface for type-erased callers
//
// ✨ Why nonblocking?
//
//   - Fusion – consecutive elementwise stages over the same containers run
//     in a single pass over memory instead of one pass per call
//   - Laziness – nothing computes until a scalar is read or a container is
//     handed outward, so dead intermediate results cost nothing
//   - Tiling – pipelines partition their index space once and drive all
//     fused stages tile by tile across a fixed worker set
//
// Everything is organized under these subpackages:
//
//	core/       — return codes, descriptors, phases, container identity, configuration
//	algebra/    — Operator, Monoid, Semiring and the named catalogue
//	vector/     — Vector[V] and the Coordinates sparsity tracker
//	matrix/     — Matrix[T] dual-indexed storage with row tiles
//	ops/        — the primitive layer; every call records or forces stages
//	pipeline/   — recorder, dependence analyzer, tiled executor
//	spmd/       — the collective-communication contract and its one-process form
//	algorithms/ — BFS levels, conjugate gradient
//	transition/ — handle-based CG surface
//
// Quick sketch: z = x .* y followed by a dot product records two stages,
// fuses them into one pipeline, and executes both in a single tiled sweep
// the moment the dot value is read.
//
//	go get github.com/alpgo/grb
package grb
