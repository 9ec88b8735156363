// Package core: return codes and execution phases shared by all primitives.
package core

import "errors"

// Sentinel errors mirroring the non-Success return codes, so that callers
// who prefer error values may use errors.Is against RC.Err().
var (
	// ErrFailed indicates an algorithmic failure such as non-convergence.
	ErrFailed = errors.New("core: algorithm failed")

	// ErrIllegal indicates a constraint violated by an input or descriptor.
	ErrIllegal = errors.New("core: illegal argument")

	// ErrMismatch indicates a dimension disagreement between operands.
	ErrMismatch = errors.New("core: dimension mismatch")

	// ErrOutOfMem indicates a requested capacity could not be provided.
	ErrOutOfMem = errors.New("core: out of memory")

	// ErrPanic indicates the communication substrate or an internal
	// invariant is broken; the error is not recoverable.
	ErrPanic = errors.New("core: unrecoverable panic condition")
)

// RC is the return code reported by every primitive.
//
// Callers chain primitives with the short-circuit idiom: the first
// non-Success code is kept and all subsequent work is skipped.
type RC int

// Enumerated return codes. Success is the zero value.
const (
	// Success signals the primitive completed and outputs are valid.
	Success RC = iota

	// Failed signals an algorithmic failure; outputs hold a best-effort
	// result (e.g. the last iterate of an iterative solver).
	Failed

	// Illegal signals an input or descriptor constraint was violated.
	// Outputs are left untouched.
	Illegal

	// Mismatch signals a dimension disagreement. Outputs are left untouched.
	Mismatch

	// OutOfMem signals a capacity failure. During the Resize phase all
	// containers remain consistent; during Execute the output is undefined
	// until cleared or recomputed.
	OutOfMem

	// Panic signals the communication layer or an invariant is broken.
	Panic
)

// String returns the canonical name of the return code.
func (rc RC) String() string {
	switch rc {
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	case Illegal:
		return "ILLEGAL"
	case Mismatch:
		return "MISMATCH"
	case OutOfMem:
		return "OUTOFMEM"
	case Panic:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// Err maps the code to its sentinel error, or nil for Success.
func (rc RC) Err() error {
	switch rc {
	case Success:
		return nil
	case Failed:
		return ErrFailed
	case Illegal:
		return ErrIllegal
	case Mismatch:
		return ErrMismatch
	case OutOfMem:
		return ErrOutOfMem
	case Panic:
		return ErrPanic
	default:
		return ErrPanic
	}
}

// OK reports whether the code is Success.
func (rc RC) OK() bool { return rc == Success }

// Phase selects which half of the two-phase contract a primitive performs.
type Phase int

const (
	// Execute assumes output capacities suffice and produces values.
	// It is the default phase of every primitive.
	Execute Phase = iota

	// Resize inspects inputs, computes an upper bound on the nonzeroes the
	// outputs may acquire, and grows output capacity if needed.
	// No output values change.
	Resize
)

// String returns the canonical name of the phase.
func (p Phase) String() string {
	if p == Resize {
		return "RESIZE"
	}
	return "EXECUTE"
}
