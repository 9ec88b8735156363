package ops

import (
	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// MxV accumulates the semiring product of a and x into y:
// y(i) becomes y(i) ⊕ ⊕_j a(i,j) ⊗ x(j) over present entries. The
// multiply receives the matrix element on the left. A nil mask means
// unmasked; TransposeMatrix applies the product to aᵀ.
//
// The stage reads x across tile boundaries, so the dependence analyzer
// flushes any pipeline still materializing x before this records.
func MxV[D1, D2, D3, M any](y *vector.Vector[D3], mask *vector.Vector[M], a *matrix.Matrix[D1], x *vector.Vector[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	transposed := desc.Has(core.TransposeMatrix)
	nrows, ncols := a.Rows(), a.Cols()
	if transposed {
		nrows, ncols = ncols, nrows
	}
	if rc := checkSizes(y.Size(), nrows); rc != core.Success {
		return rc
	}
	if rc := checkSizes(x.Size(), ncols); rc != core.Success {
		return rc
	}
	if mask != nil && mask.Size() != 0 {
		if rc := checkSizes(y.Size(), mask.Size()); rc != core.Success {
			return rc
		}
	}
	if y.ID() == x.ID() {
		return core.Illegal
	}
	if phase == core.Resize {
		if rc := rec().ExecuteContainer(y.ID()); rc != core.Success {
			return rc
		}
		return y.GrowCapacity(y.Size())
	}

	accept := maskFor(mask, desc)
	yv, xv := y.Values(), x.Values()
	yc, xc := y.Coordinates(), x.Coordinates()

	var bounds []int
	if !transposed {
		bounds = rowCuts(a)
	}
	row := a.RowView
	if transposed {
		row = a.ColView
	}

	return rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpMxV,
		Size:          y.Size(),
		ElemSize:      elemSize[D3](),
		Blocksize:     ring.Mul.Blocksize,
		CrossTile:     true,
		Output:        y.ID(),
		Inputs:        []core.ContainerID{x.ID(), maskID(mask), y.ID()},
		InputMatrices: []core.ContainerID{a.ID()},
		CoorOutput:    yc,
		CoorInputs:    []*vector.Coordinates{xc, maskCoords(mask)},
		TileBounds:    bounds,
		Run: func(t, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				if accept != nil && !accept(i) {
					continue
				}
				ind, vals := row(i)
				acc := ring.Add.Identity()
				any := false
				for k, j := range ind {
					if xc.Assigned(j) {
						acc = ring.Add.Op.Apply(acc, ring.Mul.Apply(vals[k], xv[j]))
						any = true
					}
				}
				if !any {
					continue
				}
				if yc.Assigned(i) {
					yv[i] = ring.Add.Op.Apply(yv[i], acc)
				} else {
					yv[i] = acc
					yc.AssignLocal(t, i)
				}
			}
			return core.Success
		},
	})
}

// MxVMonoid is MxV with the accumulator and multiply given separately,
// for callers holding a monoid and operator that do not form a named
// semiring.
func MxVMonoid[D1, D2, D3, M any](y *vector.Vector[D3], mask *vector.Vector[M], a *matrix.Matrix[D1], x *vector.Vector[D2], add algebra.Monoid[D3], mul algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	return MxV(y, mask, a, x, algebra.NewSemiring(add, mul), desc, phase)
}

// VxM accumulates the row-vector product x·a into z: z(j) gains
// ⊕_i x(i) ⊗ a(i,j). Realized as the transposed matrix-vector product,
// with the ring's multiply seeing the matrix element first.
func VxM[D1, D2, D3, M any](z *vector.Vector[D3], mask *vector.Vector[M], x *vector.Vector[D2], a *matrix.Matrix[D1], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	return MxV(z, mask, a, x, ring, desc^core.TransposeMatrix, phase)
}

// VxMMonoid is VxM with the accumulator and multiply given separately.
func VxMMonoid[D1, D2, D3, M any](z *vector.Vector[D3], mask *vector.Vector[M], x *vector.Vector[D2], a *matrix.Matrix[D1], add algebra.Monoid[D3], mul algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	return VxM(z, mask, x, a, algebra.NewSemiring(add, mul), desc, phase)
}
