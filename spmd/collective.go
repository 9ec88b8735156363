package spmd

import "github.com/alpgo/grb/core"

// Combiner folds the value at b into the value at a. Both slices hold one
// element of the fixed-size wire encoding; the operation must be
// associative and commutative so processes may combine in any order.
type Combiner func(a, b []byte)

// Collective is the cross-process contract consumed by primitives whose
// semantics span all user processes. Implementations are process-global;
// the force-execution rule serializes access at pipeline granularity.
type Collective interface {
	// Allreduce combines one fixed-size value across all processes; on
	// return every process holds the combined value in x.
	Allreduce(x []byte, combine Combiner) core.RC

	// Reduce combines one fixed-size value across all processes, gathered
	// at root; x is undefined elsewhere.
	Reduce(x []byte, combine Combiner, root int) core.RC

	// Broadcast distributes root's single value to all processes.
	Broadcast(x []byte, root int) core.RC

	// BroadcastArray distributes root's array of fixed-size elements.
	BroadcastArray(x []byte, elemSize int, root int) core.RC

	// PID returns this process's identifier in [0, NProcs).
	PID() int

	// NProcs returns the number of user processes.
	NProcs() int

	// Barrier synchronizes all user processes.
	Barrier() core.RC
}

// Single is the one-process Collective: every combine is the identity.
type Single struct{}

// Allreduce over one process leaves x unchanged.
func (Single) Allreduce([]byte, Combiner) core.RC { return core.Success }

// Reduce over one process leaves x unchanged.
func (Single) Reduce([]byte, Combiner, int) core.RC { return core.Success }

// Broadcast over one process leaves x unchanged.
func (Single) Broadcast([]byte, int) core.RC { return core.Success }

// BroadcastArray over one process leaves x unchanged.
func (Single) BroadcastArray([]byte, int, int) core.RC { return core.Success }

// PID of the only process is 0.
func (Single) PID() int { return 0 }

// NProcs reports a single user process.
func (Single) NProcs() int { return 1 }

// Barrier over one process returns immediately.
func (Single) Barrier() core.RC { return core.Success }
