package ops

import (
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// SetScalar assigns alpha to every index of z, making z dense. The old
// contents of z are discarded; any pipeline touching z is flushed before
// the overwrite is recorded.
func SetScalar[V any](z *vector.Vector[V], alpha V, desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
		return rc
	}
	z.Clear()

	n := z.Size()
	vals := z.Values()
	coords := z.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpSetScalar,
		Size:       n,
		ElemSize:   elemSize[V](),
		Output:     z.ID(),
		CoorOutput: coords,
		Resize: func() core.RC {
			if coords.Capacity() < n {
				return core.Illegal
			}
			return core.Success
		},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				vals[i] = alpha
				coords.AssignLocal(t, i)
			}
			return core.Success
		},
	})
}

// SetScalarMasked assigns alpha to z at every index the mask accepts;
// other entries of z are retained.
func SetScalarMasked[V, M any](z *vector.Vector[V], mask *vector.Vector[M], alpha V, desc core.Descriptor, phase core.Phase) core.RC {
	if mask == nil || mask.Size() == 0 {
		return SetScalar(z, alpha, desc, phase)
	}
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), mask.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	accept := maskFor(mask, desc)
	vals := z.Values()
	coords := z.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpSetMaskedScalar,
		Size:       z.Size(),
		ElemSize:   elemSize[V](),
		Output:     z.ID(),
		Inputs:     []core.ContainerID{mask.ID()},
		CoorOutput: coords,
		CoorInputs: []*vector.Coordinates{mask.Coordinates()},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if accept(i) {
					vals[i] = alpha
					coords.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// SetVector copies x into z, structure included. The old contents of z
// are discarded.
func SetVector[V any](z, x *vector.Vector[V], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size()); rc != core.Success {
		return rc
	}
	if z.ID() == x.ID() {
		return core.Success
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
		return rc
	}
	z.Clear()

	zv, xv := z.Values(), x.Values()
	zc, xc := z.Coordinates(), x.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpSetVector,
		Size:       z.Size(),
		ElemSize:   elemSize[V](),
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if xc.Assigned(i) {
					zv[i] = xv[i]
					zc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// SetVectorMasked copies x into z where the mask accepts; other entries
// of z are retained.
func SetVectorMasked[V, M any](z *vector.Vector[V], mask *vector.Vector[M], x *vector.Vector[V], desc core.Descriptor, phase core.Phase) core.RC {
	if mask == nil || mask.Size() == 0 {
		return SetVector(z, x, desc, phase)
	}
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), mask.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	accept := maskFor(mask, desc)
	zv, xv := z.Values(), x.Values()
	zc, xc := z.Coordinates(), x.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpSetMaskedVector,
		Size:       z.Size(),
		ElemSize:   elemSize[V](),
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID(), mask.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc, mask.Coordinates()},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if xc.Assigned(i) && accept(i) {
					zv[i] = xv[i]
					zc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// ClearVector removes all entries of v. Pending work on v completes
// first; the clear itself is immediate.
func ClearVector[V any](v *vector.Vector[V]) core.RC {
	rc := rec().ExecuteContainer(v.ID())
	v.Clear()
	return rc
}

// ClearMatrix removes all entries of a.
func ClearMatrix[T any](a *matrix.Matrix[T]) core.RC {
	rc := rec().ExecuteContainer(a.ID())
	a.Clear()
	return rc
}

// ResizeVector raises v's capacity toward want, clamped to v's length.
// Shrinking below the current nonzero count is rejected by the tracker.
func ResizeVector[V any](v *vector.Vector[V], want int) core.RC {
	if want < 0 {
		return core.Illegal
	}
	if rc := rec().ExecuteContainer(v.ID()); rc != core.Success {
		return rc
	}
	return v.GrowCapacity(want)
}

// ResizeMatrix raises a's entry capacity toward want.
func ResizeMatrix[T any](a *matrix.Matrix[T], want int) core.RC {
	if want < 0 {
		return core.Illegal
	}
	if rc := rec().ExecuteContainer(a.ID()); rc != core.Success {
		return rc
	}
	return a.EnsureCapacity(want)
}

// BuildVector ingests index/value pairs into v, replacing its contents.
// Duplicate indices are Illegal, out-of-range indices Mismatch.
func BuildVector[V any](v *vector.Vector[V], indices []int, values []V) core.RC {
	if len(indices) != len(values) {
		return core.Mismatch
	}
	if rc := rec().ExecuteContainer(v.ID()); rc != core.Success {
		return rc
	}
	v.Clear()
	return buildError(v.Build(indices, values))
}

// BuildMatrix ingests unique triples into a through the requested build
// mode. Pending work on a completes first.
func BuildMatrix[T any](a *matrix.Matrix[T], it matrix.Iterator[T], mode matrix.BuildMode) core.RC {
	if rc := rec().ExecuteContainer(a.ID()); rc != core.Success {
		return rc
	}
	return buildError(matrix.BuildUnique(a, it, mode))
}

// NnzVector returns v's nonzero count. Observation point: pending writes
// to v complete first.
func NnzVector[V any](v *vector.Vector[V]) (int, core.RC) {
	if rc := rec().ExecuteContainer(v.ID()); rc != core.Success {
		return 0, rc
	}
	return v.Nonzeroes(), core.Success
}

// NnzMatrix returns a's nonzero count. Observation point.
func NnzMatrix[T any](a *matrix.Matrix[T]) (int, core.RC) {
	if rc := rec().ExecuteContainer(a.ID()); rc != core.Success {
		return 0, rc
	}
	return a.Nonzeroes(), core.Success
}
