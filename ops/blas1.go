package ops

import (
	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// Pair is the element type produced by Zip and consumed by Unzip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// EWiseApply overwrites z with op applied at the intersection of x and
// y's structures. Entries of z outside the intersection are discarded.
func EWiseApply[D1, D2, D3 any](z *vector.Vector[D3], x *vector.Vector[D1], y *vector.Vector[D2], op algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	return eWiseApplyMasked[D1, D2, D3, bool](z, nil, x, y, op, desc, phase)
}

// EWiseApplyMasked is EWiseApply restricted to indices the mask accepts.
func EWiseApplyMasked[D1, D2, D3, M any](z *vector.Vector[D3], mask *vector.Vector[M], x *vector.Vector[D1], y *vector.Vector[D2], op algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if mask != nil && mask.Size() != 0 {
		if rc := checkSizes(z.Size(), mask.Size()); rc != core.Success {
			return rc
		}
	}
	return eWiseApplyMasked(z, mask, x, y, op, desc, phase)
}

func eWiseApplyMasked[D1, D2, D3, M any](z *vector.Vector[D3], mask *vector.Vector[M], x *vector.Vector[D1], y *vector.Vector[D2], op algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), y.Size()); rc != core.Success {
		return rc
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

	accept := maskFor(mask, desc)
	dense := desc.Has(core.Dense)
	zv, xv, yv := z.Values(), x.Values(), y.Values()
	zc, xc, yc := z.Coordinates(), x.Coordinates(), y.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpEWiseApply,
		Size:       z.Size(),
		ElemSize:   elemSize[D3](),
		Blocksize:  op.Blocksize,
		DenseDescr: dense,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID(), y.ID(), maskID(mask)},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc, yc, maskCoords(mask)},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if !dense && !(xc.Assigned(i) && yc.Assigned(i)) {
					continue
				}
				if accept != nil && !accept(i) {
					continue
				}
				zv[i] = op.Apply(xv[i], yv[i])
				zc.AssignLocal(t, i)
			}
			return core.Success
		},
	})
}

// EWiseApplyMonoid overwrites z with the monoid applied at the union of
// x and y's structures: both present combine, a single entry passes
// through.
func EWiseApplyMonoid[D any](z, x, y *vector.Vector[D], m algebra.Monoid[D], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), y.Size()); rc != core.Success {
		return rc
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

	zv, xv, yv := z.Values(), x.Values(), y.Values()
	zc, xc, yc := z.Coordinates(), x.Coordinates(), y.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpEWiseApply,
		Size:       z.Size(),
		ElemSize:   elemSize[D](),
		Blocksize:  m.Op.Blocksize,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID(), y.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc, yc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				xa, ya := xc.Assigned(i), yc.Assigned(i)
				switch {
				case xa && ya:
					zv[i] = m.Op.Apply(xv[i], yv[i])
				case xa:
					zv[i] = xv[i]
				case ya:
					zv[i] = yv[i]
				default:
					continue
				}
				zc.AssignLocal(t, i)
			}
			return core.Success
		},
	})
}

// EWiseMul accumulates the ring product of x and y into z over the
// intersection of their structures: z(i) becomes z(i) ⊕ x(i) ⊗ y(i),
// with absent z entries created. Existing z entries outside the
// intersection are retained.
func EWiseMul[D1, D2, D3 any](z *vector.Vector[D3], x *vector.Vector[D1], y *vector.Vector[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), y.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	zv, xv, yv := z.Values(), x.Values(), y.Values()
	zc, xc, yc := z.Coordinates(), x.Coordinates(), y.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpEWiseMulAdd,
		Size:       z.Size(),
		ElemSize:   elemSize[D3](),
		Blocksize:  ring.Mul.Blocksize,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID(), y.ID(), z.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc, yc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if !(xc.Assigned(i) && yc.Assigned(i)) {
					continue
				}
				prod := ring.Mul.Apply(xv[i], yv[i])
				if zc.Assigned(i) {
					zv[i] = ring.Add.Op.Apply(zv[i], prod)
				} else {
					zv[i] = prod
					zc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// EWiseAdd accumulates x ⊕ y into z over the union of their structures.
func EWiseAdd[D any](z, x, y *vector.Vector[D], m algebra.Monoid[D], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), y.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	zv, xv, yv := z.Values(), x.Values(), y.Values()
	zc, xc, yc := z.Coordinates(), x.Coordinates(), y.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpEWiseApply,
		Size:       z.Size(),
		ElemSize:   elemSize[D](),
		Blocksize:  m.Op.Blocksize,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{x.ID(), y.ID(), z.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{xc, yc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				var contrib D
				xa, ya := xc.Assigned(i), yc.Assigned(i)
				switch {
				case xa && ya:
					contrib = m.Op.Apply(xv[i], yv[i])
				case xa:
					contrib = xv[i]
				case ya:
					contrib = yv[i]
				default:
					continue
				}
				if zc.Assigned(i) {
					zv[i] = m.Op.Apply(zv[i], contrib)
				} else {
					zv[i] = contrib
					zc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// EWiseLambda runs f at every present index of v. f receives the index
// and may read or mutate the values of v and the other listed containers
// at that index only; it must not change any container's structure.
func EWiseLambda[V any](v *vector.Vector[V], f func(i int), others ...Container) core.RC {
	ids := make([]core.ContainerID, 0, len(others)+1)
	ids = append(ids, v.ID())
	for _, c := range others {
		ids = append(ids, c.ID())
	}
	vc := v.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpEWiseLambda,
		Size:          v.Size(),
		ElemSize:      elemSize[V](),
		Inputs:        ids,
		InputsWritten: true,
		CoorInputs:    []*vector.Coordinates{vc},
		Run: func(_, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if vc.Assigned(i) {
					f(i)
				}
			}
			return core.Success
		},
	})
}

// FoldScalarIntoVector folds alpha into every present entry of z:
// z(i) becomes z(i) ⊕ alpha.
func FoldScalarIntoVector[D any](z *vector.Vector[D], alpha D, m algebra.Monoid[D], desc core.Descriptor) core.RC {
	return FoldScalarIntoVectorMasked[D, bool](z, nil, alpha, m, desc)
}

// FoldScalarIntoVectorMasked folds alpha into the present entries of z
// the mask accepts.
func FoldScalarIntoVectorMasked[D, M any](z *vector.Vector[D], mask *vector.Vector[M], alpha D, m algebra.Monoid[D], desc core.Descriptor) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if mask != nil && mask.Size() != 0 {
		if rc := checkSizes(z.Size(), mask.Size()); rc != core.Success {
			return rc
		}
	}
	accept := maskFor(mask, desc)
	zv := z.Values()
	zc := z.Coordinates()
	op := pipeline.OpFoldScalarIntoVector
	if accept != nil {
		op = pipeline.OpFoldMaskedScalarIntoVector
	}
	return rec().AddStage(pipeline.Stage{
		Opcode:     op,
		Size:       z.Size(),
		ElemSize:   elemSize[D](),
		Blocksize:  m.Op.Blocksize,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{z.ID(), maskID(mask)},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{maskCoords(mask)},
		Run: func(_, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if !zc.Assigned(i) {
					continue
				}
				if accept != nil && !accept(i) {
					continue
				}
				zv[i] = m.Op.Apply(zv[i], alpha)
			}
			return core.Success
		},
	})
}

// FoldVectorIntoVector folds y into z over the union of structures:
// z(i) becomes z(i) ⊕ y(i) where both exist, y's entries are adopted
// where z has none.
func FoldVectorIntoVector[D any](z, y *vector.Vector[D], m algebra.Monoid[D], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), y.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(z.ID()); rc != core.Success {
			return rc
		}
		return z.GrowCapacity(z.Size())
	}

	zv, yv := z.Values(), y.Values()
	zc, yc := z.Coordinates(), y.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpFoldVectorIntoVector,
		Size:       z.Size(),
		ElemSize:   elemSize[D](),
		Blocksize:  m.Op.Blocksize,
		Output:     z.ID(),
		Inputs:     []core.ContainerID{y.ID(), z.ID()},
		CoorOutput: zc,
		CoorInputs: []*vector.Coordinates{yc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if !yc.Assigned(i) {
					continue
				}
				if zc.Assigned(i) {
					zv[i] = m.Op.Apply(zv[i], yv[i])
				} else {
					zv[i] = yv[i]
					zc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// FoldVectorIntoScalar folds every present entry of y into *alpha under
// the monoid. Observation point: the call returns with *alpha final.
func FoldVectorIntoScalar[D any](alpha *D, y *vector.Vector[D], m algebra.Monoid[D], desc core.Descriptor) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	yv := y.Values()
	yc := y.Coordinates()

	var partials []D
	var touched []bool
	rc := rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpFoldVectorToScalar,
		Size:       y.Size(),
		ElemSize:   elemSize[D](),
		Blocksize:  m.Op.Blocksize,
		Inputs:     []core.ContainerID{y.ID()},
		CoorInputs: []*vector.Coordinates{yc},
		Init: func(numTiles int) core.RC {
			partials = make([]D, numTiles)
			touched = make([]bool, numTiles)
			return core.Success
		},
		Run: func(t, lo, hi int) core.RC {
			acc := m.Identity()
			any := false
			for i := lo; i < hi; i++ {
				if yc.Assigned(i) {
					acc = m.Op.Apply(acc, yv[i])
					any = true
				}
			}
			partials[t] = acc
			touched[t] = any
			return core.Success
		},
	})
	if rc != core.Success {
		return rc
	}
	for t := range partials {
		if touched[t] {
			*alpha = m.Op.Apply(*alpha, partials[t])
		}
	}
	return core.Success
}

// Dot accumulates the semiring inner product of x and y into *alpha over
// the intersection of their structures. Observation point.
func Dot[D1, D2, D3 any](alpha *D3, x *vector.Vector[D1], y *vector.Vector[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(x.Size(), y.Size()); rc != core.Success {
		return rc
	}
	xv, yv := x.Values(), y.Values()
	xc, yc := x.Coordinates(), y.Coordinates()

	var partials []D3
	var touched []bool
	rc := rec().AddStage(pipeline.Stage{
		Opcode:     pipeline.OpDot,
		Size:       x.Size(),
		ElemSize:   elemSize[D3](),
		Blocksize:  ring.Mul.Blocksize,
		Inputs:     []core.ContainerID{x.ID(), y.ID()},
		CoorInputs: []*vector.Coordinates{xc, yc},
		Init: func(numTiles int) core.RC {
			partials = make([]D3, numTiles)
			touched = make([]bool, numTiles)
			return core.Success
		},
		Run: func(t, lo, hi int) core.RC {
			acc := ring.Add.Identity()
			any := false
			for i := lo; i < hi; i++ {
				if xc.Assigned(i) && yc.Assigned(i) {
					acc = ring.Add.Op.Apply(acc, ring.Mul.Apply(xv[i], yv[i]))
					any = true
				}
			}
			partials[t] = acc
			touched[t] = any
			return core.Success
		},
	})
	if rc != core.Success {
		return rc
	}
	for t := range partials {
		if touched[t] {
			*alpha = ring.Add.Op.Apply(*alpha, partials[t])
		}
	}
	return core.Success
}

// Zip overwrites z with (x(i), y(i)) pairs at the intersection of x and
// y's structures.
func Zip[A, B any](z *vector.Vector[Pair[A, B]], x *vector.Vector[A], y *vector.Vector[B], desc core.Descriptor, phase core.Phase) core.RC {
	pairOp := algebra.Operator[A, B, Pair[A, B]]{
		Apply: func(a A, b B) Pair[A, B] { return Pair[A, B]{First: a, Second: b} },
	}
	return eWiseApplyMasked[A, B, Pair[A, B], bool](z, nil, x, y, pairOp, desc, phase)
}

// Unzip overwrites x and y with the components of z's pairs at z's
// structure.
func Unzip[A, B any](x *vector.Vector[A], y *vector.Vector[B], z *vector.Vector[Pair[A, B]], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if rc := checkSizes(z.Size(), x.Size(), y.Size()); rc != core.Success {
		return rc
	}
	if phase == core.Resize {
		if rc := Wait(x, y); rc != core.Success {
			return rc
		}
		if rc := x.GrowCapacity(x.Size()); rc != core.Success {
			return rc
		}
		return y.GrowCapacity(y.Size())
	}

	if rc := Wait(x, y); rc != core.Success {
		return rc
	}
	x.Clear()
	y.Clear()

	xv, yv, zv := x.Values(), y.Values(), z.Values()
	xc, yc, zc := x.Coordinates(), y.Coordinates(), z.Coordinates()
	return rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpUnzip,
		Size:          z.Size(),
		ElemSize:      elemSize[Pair[A, B]](),
		Output:        x.ID(),
		OutputAux:     y.ID(),
		Inputs:        []core.ContainerID{z.ID()},
		CoorOutput:    xc,
		CoorOutputAux: yc,
		CoorInputs:    []*vector.Coordinates{zc},
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if !zc.Assigned(i) {
					continue
				}
				xv[i] = zv[i].First
				yv[i] = zv[i].Second
				xc.AssignLocal(t, i)
				yc.AssignLocal(t, i)
			}
			return core.Success
		},
	})
}
