// Package core defines the shared kernel of the grb runtime: return codes,
// execution phases, descriptors, container identity, and the load-time
// configuration record consumed by every other package.
//
// What
//
//   - RC: the enumerated return code every primitive reports
//     (Success, Failed, Illegal, Mismatch, OutOfMem, Panic).
//   - Phase: the two-phase primitive contract (Resize computes capacities,
//     Execute produces values).
//   - Descriptor: a closed bitset that overrides default primitive behavior
//     (masks, transposition, density assertions, index-as-value, ...).
//   - Container IDs: process-wide unique integer handles; the only identity
//     the stage recorder retains for dependence analysis.
//   - Config: worker count, cache-line size, pipeline pool capacities,
//     capacity policies. Built from CPU introspection by DefaultConfig or
//     loaded from a YAML file by LoadConfig.
//
// Why
//
//	Pipelines, containers, and primitive shells all agree on these few
//	types; keeping them in one dependency-free package avoids import cycles
//	between the container packages and the pipeline engine.
//
// Errors
//
//   - ErrFailed      - algorithmic failure (e.g. non-convergence).
//   - ErrIllegal     - constraint violated by input.
//   - ErrMismatch    - dimension disagreement.
//   - ErrOutOfMem    - capacity could not be provided.
//   - ErrPanic       - communication layer or invariant broken.
//   - ErrConfig      - invalid or unreadable configuration.
package core
