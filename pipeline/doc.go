// Package pipeline implements the nonblocking execution engine: the stage
// recorder, the dependence analyzer that fuses data-dependent stages into
// pipelines, and the tile-parallel pipeline executor.
//
// What
//
//   - Stage: one recorded, not-yet-executed primitive invocation: an
//     opcode, the container identities it reads and writes, and closures
//     for its capacity (resize) and per-tile execution components.
//   - Pipeline: an ordered list of fused stages over a bounded container
//     set, with a linear state machine (empty → recording → resizing →
//     executing → finalizing → empty).
//   - Recorder: the process-wide registry of live pipelines. Each new
//     stage either joins a pipeline, forces one to execute, or opens a
//     fresh one; the live set always partitions the recorded-but-
//     unexecuted stages with no read-write conflict crossing a boundary.
//
// Execution model
//
//	A pipeline executes in sub-phases: a capacity pass running pending
//	resize components in stage order (for chained matrix products this
//	propagates symbolic patterns), tile assignment (the coarsest common
//	partition of the matrix operands' tile arrays, or a cache-line-sized
//	partition of [0,n) for vector-only pipelines), a parallel tile sweep
//	by a fixed worker set, and finalization (coordinate subset joins,
//	dense-descriptor verification, secondary-indexing rebuilds of written
//	matrices). Workers claim tiles from an atomic cursor and do not
//	synchronize within a pipeline; pipelines containing stages that read
//	outside their own tile are swept stage-major with a barrier between
//	stages, all others tile-major for locality.
//
// Observation points
//
//	A stage producing a scalar, and any wait on a container, force the
//	owning pipeline to execute immediately. The recorder is not reentrant:
//	stage closures must not record new primitives.
//
// The only output of this package is a one-time warning through log/slog
// when the live-pipeline pool exceeds its configured capacity.
package pipeline
