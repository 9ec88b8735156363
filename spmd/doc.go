// Package spmd declares the collective-communication contract the runtime
// consumes, together with the in-process implementation used when only one
// user process exists.
//
// What
//
//   - Collective: the enumerated interface of cross-process combines the
//     core requires: allreduce and reduce under a commutative associative
//     combiner, value and array broadcast, process identity and barrier.
//   - Single: the degenerate one-process implementation; every collective
//     is the identity and never fails.
//
// Why
//
//	Primitives whose semantics are global (dot, fold to scalar over a
//	distributed container) combine their local partials through this
//	interface. The core consumes it and never provides a distributed
//	implementation; a BSP transport plugs in behind the interface. Any
//	primitive touching a collective is an observation point and forces
//	its pipeline before communicating, so access to the process-global
//	handle is serialized at pipeline granularity without locks.
//
// Failure
//
//	A collective either succeeds or reports Panic: a broken communication
//	substrate is not recoverable.
package spmd
