package ops

import (
	"errors"
	"unsafe"

	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// Container is any sparse container with a process-wide identity.
type Container interface {
	ID() core.ContainerID
}

// rec returns the process recorder every primitive records against.
func rec() *pipeline.Recorder { return pipeline.Default() }

func elemSize[V any]() int {
	var v V
	return int(unsafe.Sizeof(v))
}

// Wait is the explicit observation point. With no arguments it flushes
// every live pipeline; otherwise it flushes the pipelines holding
// pending work on the given containers.
func Wait(cs ...Container) core.RC {
	if len(cs) == 0 {
		return rec().ExecuteAll()
	}
	rc := core.Success
	for _, c := range cs {
		if r2 := rec().ExecuteContainer(c.ID()); r2 != core.Success && rc == core.Success {
			rc = r2
		}
	}
	return rc
}

// truthy is the mask value test: boolean true or numerically nonzero.
// Values of any other type count by presence alone.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x != 0
	case int8:
		return x != 0
	case int16:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case uint:
		return x != 0
	case uint8:
		return x != 0
	case uint16:
		return x != 0
	case uint32:
		return x != 0
	case uint64:
		return x != 0
	case float32:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}

// maskFor compiles the per-index mask test under desc. A nil mask or a
// size-zero mask yields nil, meaning every index is accepted.
func maskFor[M any](mask *vector.Vector[M], desc core.Descriptor) func(i int) bool {
	if mask == nil || mask.Size() == 0 {
		return nil
	}
	coords := mask.Coordinates()
	vals := mask.Values()
	structural := desc.Has(core.Structural)
	invert := desc.Has(core.InvertMask)
	return func(i int) bool {
		ok := coords.Assigned(i)
		if ok && !structural {
			ok = truthy(vals[i])
		}
		if invert {
			return !ok
		}
		return ok
	}
}

// checkDescriptor rejects bit patterns outside the closed descriptor set.
func checkDescriptor(desc core.Descriptor) core.RC {
	if !desc.Valid() {
		return core.Illegal
	}
	return core.Success
}

// checkSizes verifies that all given lengths agree.
func checkSizes(n int, rest ...int) core.RC {
	for _, m := range rest {
		if m != n {
			return core.Mismatch
		}
	}
	return core.Success
}

// maskID returns the identity of an optional mask for dependence
// tracking, or NoContainer when unmasked.
func maskID[M any](mask *vector.Vector[M]) core.ContainerID {
	if mask == nil {
		return core.NoContainer
	}
	return mask.ID()
}

func maskCoords[M any](mask *vector.Vector[M]) *vector.Coordinates {
	if mask == nil {
		return nil
	}
	return mask.Coordinates()
}

// rowCuts extracts a matrix's row-tile partition as cut points for the
// pipeline's common-refinement merge.
func rowCuts[T any](a *matrix.Matrix[T]) []int {
	cuts := make([]int, 0, a.NumTiles()+1)
	cuts = append(cuts, 0)
	for t := 0; t < a.NumTiles(); t++ {
		_, hi := a.TileBounds(t)
		cuts = append(cuts, hi)
	}
	if len(cuts) == 1 {
		cuts = append(cuts, a.Rows())
	}
	return cuts
}

// buildError maps container ingestion errors onto return codes.
func buildError(err error) core.RC {
	switch {
	case err == nil:
		return core.Success
	case isAny(err, vector.ErrDuplicate, vector.ErrReadOnly, matrix.ErrDuplicate, matrix.ErrNotRandom):
		return core.Illegal
	case isAny(err, vector.ErrIndexRange, matrix.ErrIndexRange, core.ErrMismatch):
		return core.Mismatch
	case isAny(err, core.ErrOutOfMem):
		return core.OutOfMem
	}
	return core.Failed
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
