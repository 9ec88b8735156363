package ops

import (
	"sort"

	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// MxM overwrites c with the semiring product a·b. The capacity pass is
// symbolic: it derives c's pattern (sorted column indices per row) from
// the operand patterns alone, so products over matrices still pending in
// the same pipeline chain correctly; the numeric sweep then runs
// stage-major. Transpose descriptors are not supported here. In-place
// products are rejected.
func MxM[D1, D2, D3 any](c *matrix.Matrix[D3], a *matrix.Matrix[D1], b *matrix.Matrix[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	return mxm[D1, D2, D3, bool](c, nil, a, b, ring, desc, phase)
}

// MxMMasked is MxM restricted to the positions of a mask matrix,
// honoring the Structural and InvertMask descriptors.
func MxMMasked[D1, D2, D3, MT any](c *matrix.Matrix[D3], mask *matrix.Matrix[MT], a *matrix.Matrix[D1], b *matrix.Matrix[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if mask == nil {
		return mxm[D1, D2, D3, MT](c, nil, a, b, ring, desc, phase)
	}
	if mask.Rows() != c.Rows() || mask.Cols() != c.Cols() {
		return core.Mismatch
	}
	return mxm(c, mask, a, b, ring, desc, phase)
}

func mxm[D1, D2, D3, MT any](c *matrix.Matrix[D3], mask *matrix.Matrix[MT], a *matrix.Matrix[D1], b *matrix.Matrix[D2], ring algebra.Semiring[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if desc.Has(core.TransposeMatrix) || desc.Has(core.TransposeRight) {
		return core.Illegal
	}
	if c.Rows() != a.Rows() || c.Cols() != b.Cols() || a.Cols() != b.Rows() {
		return core.Mismatch
	}
	if c.ID() == a.ID() || c.ID() == b.ID() {
		return core.Illegal
	}
	if phase == core.Resize {
		return Wait(c, a, b)
	}

	// The pattern overwrite in the capacity pass would clobber any
	// pending reader of c.
	if rc := rec().ExecuteContainer(c.ID()); rc != core.Success {
		return rc
	}
	// A value mask is read during the capacity pass, which runs before
	// any numeric sweep and so would observe values a fused producer has
	// not written yet. Complete the mask first.
	if mask != nil && !desc.Has(core.Structural) {
		if rc := rec().ExecuteContainer(mask.ID()); rc != core.Success {
			return rc
		}
	}

	opcode := pipeline.OpMxM
	if mask != nil {
		opcode = pipeline.OpMaskedMxM
	}
	s := pipeline.Stage{
		Opcode:        opcode,
		Size:          c.Rows(),
		ElemSize:      elemSize[D3](),
		CrossTile:     true,
		InputMatrices: []core.ContainerID{a.ID(), b.ID()},
		OutputMatrix:  c,
		TileBounds:    rowCuts(a),
		Resize: func() core.RC {
			return mxmSymbolic(c, mask, a, b, desc)
		},
		Run: func(_, lo, hi int) core.RC {
			mxmNumeric(c, a, b, ring, lo, hi)
			return core.Success
		},
	}
	if mask != nil {
		s.InputMatrices = append(s.InputMatrices, mask.ID())
	}
	return rec().AddStage(s)
}

// mxmSymbolic computes c's row pointers and sorted column indices from
// the patterns of a and b, optionally intersected with (or subtracted
// from, under InvertMask) the mask. Value masks are safe to read here:
// the caller flushed any pipeline still producing them.
func mxmSymbolic[D1, D2, D3, MT any](c *matrix.Matrix[D3], mask *matrix.Matrix[MT], a *matrix.Matrix[D1], b *matrix.Matrix[D2], desc core.Descriptor) core.RC {
	m, n := c.Rows(), c.Cols()
	ap, ai := a.RowPtr(), a.ColInd()
	bp, bi := b.RowPtr(), b.ColInd()

	mark := make([]int, n)
	for j := range mark {
		mark[j] = -1
	}
	allowed := maskRowTest(mask, desc)

	rowPtr := make([]int, m+1)
	for i := 0; i < m; i++ {
		inRow := allowed(i)
		cnt := 0
		for ka := ap[i]; ka < ap[i+1]; ka++ {
			k := ai[ka]
			for kb := bp[k]; kb < bp[k+1]; kb++ {
				j := bi[kb]
				if mark[j] != i && inRow(j) {
					mark[j] = i
					cnt++
				}
			}
		}
		rowPtr[i+1] = rowPtr[i] + cnt
	}

	if rc := c.BeginWrite(rowPtr); rc != core.Success {
		return rc
	}
	ci := c.ColInd()
	cursor := make([]int, m)
	copy(cursor, rowPtr[:m])
	for j := range mark {
		mark[j] = -1
	}
	for i := 0; i < m; i++ {
		inRow := allowed(i)
		for ka := ap[i]; ka < ap[i+1]; ka++ {
			k := ai[ka]
			for kb := bp[k]; kb < bp[k+1]; kb++ {
				j := bi[kb]
				if mark[j] != i && inRow(j) {
					mark[j] = i
					ci[cursor[i]] = j
					cursor[i]++
				}
			}
		}
		sort.Ints(ci[rowPtr[i]:rowPtr[i+1]])
	}
	return core.Success
}

// maskRowTest compiles the per-row mask test. With no mask every column
// is allowed.
func maskRowTest[MT any](mask *matrix.Matrix[MT], desc core.Descriptor) func(i int) func(j int) bool {
	if mask == nil {
		all := func(int) bool { return true }
		return func(int) func(int) bool { return all }
	}
	invert := desc.Has(core.InvertMask)
	structural := desc.Has(core.Structural)
	return func(i int) func(j int) bool {
		ind, vals := mask.RowView(i)
		return func(j int) bool {
			k := sort.SearchInts(ind, j)
			ok := k < len(ind) && ind[k] == j
			if ok && !structural {
				ok = truthy(vals[k])
			}
			if invert {
				return !ok
			}
			return ok
		}
	}
}

// mxmNumeric fills c's values for rows [lo,hi) with a row-major
// accumulator sweep over a and b.
func mxmNumeric[D1, D2, D3 any](c *matrix.Matrix[D3], a *matrix.Matrix[D1], b *matrix.Matrix[D2], ring algebra.Semiring[D1, D2, D3], lo, hi int) {
	cp, ci, cv := c.RowPtr(), c.ColInd(), c.Vals()
	ap, ai, av := a.RowPtr(), a.ColInd(), a.Vals()
	bp, bi, bv := b.RowPtr(), b.ColInd(), b.Vals()

	acc := make([]D3, c.Cols())
	for i := lo; i < hi; i++ {
		start, end := cp[i], cp[i+1]
		if start == end {
			continue
		}
		for k := start; k < end; k++ {
			acc[ci[k]] = ring.Add.Identity()
		}
		for ka := ap[i]; ka < ap[i+1]; ka++ {
			k := ai[ka]
			aval := av[ka]
			for kb := bp[k]; kb < bp[k+1]; kb++ {
				j := bi[kb]
				acc[j] = ring.Add.Op.Apply(acc[j], ring.Mul.Apply(aval, bv[kb]))
			}
		}
		for k := start; k < end; k++ {
			cv[k] = acc[ci[k]]
		}
	}
}

// OuterProduct overwrites c with the outer product of x and y: an entry
// mul(x(i), y(j)) at every (i, j) with both present. Pending work on x
// and y completes before the pattern is derived.
func OuterProduct[D1, D2, D3 any](c *matrix.Matrix[D3], x *vector.Vector[D1], y *vector.Vector[D2], mul algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if c.Rows() != x.Size() || c.Cols() != y.Size() {
		return core.Mismatch
	}
	if phase == core.Resize {
		return Wait(c, x, y)
	}

	// The pattern pass reads both structures in full.
	if rc := Wait(c, x, y); rc != core.Success {
		return rc
	}

	xv, yv := x.Values(), y.Values()
	xc, yc := x.Coordinates(), y.Coordinates()
	var ys []int
	return rec().AddStage(pipeline.Stage{
		Opcode:       pipeline.OpOuterProduct,
		Size:         c.Rows(),
		ElemSize:     elemSize[D3](),
		CrossTile:    true,
		Inputs:       []core.ContainerID{x.ID(), y.ID()},
		OutputMatrix: c,
		CoorInputs:   []*vector.Coordinates{xc, yc},
		Resize: func() core.RC {
			ys = ys[:0]
			for j := 0; j < y.Size(); j++ {
				if yc.Assigned(j) {
					ys = append(ys, j)
				}
			}
			rowPtr := make([]int, c.Rows()+1)
			for i := 0; i < c.Rows(); i++ {
				cnt := 0
				if xc.Assigned(i) {
					cnt = len(ys)
				}
				rowPtr[i+1] = rowPtr[i] + cnt
			}
			if rc := c.BeginWrite(rowPtr); rc != core.Success {
				return rc
			}
			ci := c.ColInd()
			at := 0
			for i := 0; i < c.Rows(); i++ {
				if xc.Assigned(i) {
					at += copy(ci[at:], ys)
				}
			}
			return core.Success
		},
		Run: func(_, lo, hi int) core.RC {
			cp, cv := c.RowPtr(), c.Vals()
			for i := lo; i < hi; i++ {
				start := cp[i]
				for k, j := range ys[:cp[i+1]-start] {
					cv[start+k] = mul.Apply(xv[i], yv[j])
				}
			}
			return core.Success
		},
	})
}

// EWiseApplyMatrix overwrites c with op applied at the intersection of a
// and b's patterns. The capacity pass is pattern-only, so the stage may
// chain onto pipelines still computing a or b.
func EWiseApplyMatrix[D1, D2, D3 any](c *matrix.Matrix[D3], a *matrix.Matrix[D1], b *matrix.Matrix[D2], op algebra.Operator[D1, D2, D3], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if c.Rows() != a.Rows() || c.Cols() != a.Cols() ||
		a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return core.Mismatch
	}
	if c.ID() == a.ID() || c.ID() == b.ID() {
		return core.Illegal
	}
	if phase == core.Resize {
		return Wait(c, a, b)
	}
	if rc := rec().ExecuteContainer(c.ID()); rc != core.Success {
		return rc
	}

	return rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpEWiseApplyMatrix,
		Size:          c.Rows(),
		ElemSize:      elemSize[D3](),
		InputMatrices: []core.ContainerID{a.ID(), b.ID()},
		OutputMatrix:  c,
		TileBounds:    rowCuts(a),
		Resize: func() core.RC {
			m := c.Rows()
			ap, ai := a.RowPtr(), a.ColInd()
			bp, bi := b.RowPtr(), b.ColInd()
			rowPtr := make([]int, m+1)
			for i := 0; i < m; i++ {
				rowPtr[i+1] = rowPtr[i] + intersectCount(ai[ap[i]:ap[i+1]], bi[bp[i]:bp[i+1]])
			}
			if rc := c.BeginWrite(rowPtr); rc != core.Success {
				return rc
			}
			ci := c.ColInd()
			at := 0
			for i := 0; i < m; i++ {
				at = intersectFill(ci, at, ai[ap[i]:ap[i+1]], bi[bp[i]:bp[i+1]])
			}
			return core.Success
		},
		Run: func(_, lo, hi int) core.RC {
			cp, ci, cv := c.RowPtr(), c.ColInd(), c.Vals()
			ap, ai, av := a.RowPtr(), a.ColInd(), a.Vals()
			bp, bi, bv := b.RowPtr(), b.ColInd(), b.Vals()
			for i := lo; i < hi; i++ {
				ka, kb := ap[i], bp[i]
				for k := cp[i]; k < cp[i+1]; k++ {
					j := ci[k]
					for ai[ka] != j {
						ka++
					}
					for bi[kb] != j {
						kb++
					}
					cv[k] = op.Apply(av[ka], bv[kb])
				}
			}
			return core.Success
		},
	})
}

func intersectCount(a, b []int) int {
	cnt, ka, kb := 0, 0, 0
	for ka < len(a) && kb < len(b) {
		switch {
		case a[ka] == b[kb]:
			cnt++
			ka++
			kb++
		case a[ka] < b[kb]:
			ka++
		default:
			kb++
		}
	}
	return cnt
}

func intersectFill(dst []int, at int, a, b []int) int {
	ka, kb := 0, 0
	for ka < len(a) && kb < len(b) {
		switch {
		case a[ka] == b[kb]:
			dst[at] = a[ka]
			at++
			ka++
			kb++
		case a[ka] < b[kb]:
			ka++
		default:
			kb++
		}
	}
	return at
}

// Select overwrites c with the entries of a accepted by pred. The
// predicate sees values, so pending work on a completes before the
// pattern is derived.
func Select[T any](c, a *matrix.Matrix[T], pred algebra.IndexPredicate[T], desc core.Descriptor, phase core.Phase) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}
	if c.Rows() != a.Rows() || c.Cols() != a.Cols() {
		return core.Mismatch
	}
	if c.ID() == a.ID() {
		return core.Illegal
	}
	if phase == core.Resize {
		return Wait(c, a)
	}
	if rc := Wait(c, a); rc != core.Success {
		return rc
	}

	return rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpSelect,
		Size:          c.Rows(),
		ElemSize:      elemSize[T](),
		InputMatrices: []core.ContainerID{a.ID()},
		OutputMatrix:  c,
		TileBounds:    rowCuts(a),
		Resize: func() core.RC {
			m := c.Rows()
			ap, ai, av := a.RowPtr(), a.ColInd(), a.Vals()
			rowPtr := make([]int, m+1)
			for i := 0; i < m; i++ {
				cnt := 0
				for k := ap[i]; k < ap[i+1]; k++ {
					if pred(i, ai[k], av[k]) {
						cnt++
					}
				}
				rowPtr[i+1] = rowPtr[i] + cnt
			}
			if rc := c.BeginWrite(rowPtr); rc != core.Success {
				return rc
			}
			ci := c.ColInd()
			at := 0
			for i := 0; i < m; i++ {
				for k := ap[i]; k < ap[i+1]; k++ {
					if pred(i, ai[k], av[k]) {
						ci[at] = ai[k]
						at++
					}
				}
			}
			return core.Success
		},
		Run: func(_, lo, hi int) core.RC {
			cp, ci, cv := c.RowPtr(), c.ColInd(), c.Vals()
			ap, ai, av := a.RowPtr(), a.ColInd(), a.Vals()
			for i := lo; i < hi; i++ {
				ka := ap[i]
				for k := cp[i]; k < cp[i+1]; k++ {
					for ai[ka] != ci[k] {
						ka++
					}
					cv[k] = av[ka]
					ka++
				}
			}
			return core.Success
		},
	})
}

// Tril overwrites c with a's lower triangle, diagonal included.
func Tril[T any](c, a *matrix.Matrix[T], desc core.Descriptor, phase core.Phase) core.RC {
	return Select(c, a, func(i, j int, _ T) bool { return j <= i }, desc, phase)
}

// Triu overwrites c with a's upper triangle, diagonal included.
func Triu[T any](c, a *matrix.Matrix[T], desc core.Descriptor, phase core.Phase) core.RC {
	return Select(c, a, func(i, j int, _ T) bool { return j >= i }, desc, phase)
}

// ZipMatrix rebuilds a from three positionally aligned vectors of row
// indices, column indices, and values: one triple per index present in
// all three. Duplicate coordinates are Illegal. Eager.
func ZipMatrix[T any](a *matrix.Matrix[T], is, js *vector.Vector[int], vs *vector.Vector[T]) core.RC {
	if rc := checkSizes(is.Size(), js.Size(), vs.Size()); rc != core.Success {
		return rc
	}
	if rc := Wait(a, is, js, vs); rc != core.Success {
		return rc
	}

	ic, jc, vc := is.Coordinates(), js.Coordinates(), vs.Coordinates()
	iv, jv, vv := is.Values(), js.Values(), vs.Values()
	triples := make([]matrix.Triple[T], 0, vs.Nonzeroes())
	for k := 0; k < is.Size(); k++ {
		if ic.Assigned(k) && jc.Assigned(k) && vc.Assigned(k) {
			triples = append(triples, matrix.Triple[T]{I: iv[k], J: jv[k], V: vv[k]})
		}
	}
	return buildError(matrix.BuildUnique(a, matrix.NewTriples(triples), matrix.Sequential))
}

// FoldMatrixToScalar folds every stored value of a into *alpha under the
// monoid. Observation point.
func FoldMatrixToScalar[D any](alpha *D, a *matrix.Matrix[D], m algebra.Monoid[D], desc core.Descriptor) core.RC {
	if rc := checkDescriptor(desc); rc != core.Success {
		return rc
	}
	if desc.Has(core.NoOperation) {
		return core.Success
	}

	var partials []D
	var touched []bool
	rc := rec().AddStage(pipeline.Stage{
		Opcode:        pipeline.OpFoldMatrixToScalar,
		Size:          a.Rows(),
		ElemSize:      elemSize[D](),
		InputMatrices: []core.ContainerID{a.ID()},
		TileBounds:    rowCuts(a),
		Init: func(numTiles int) core.RC {
			partials = make([]D, numTiles)
			touched = make([]bool, numTiles)
			return core.Success
		},
		Run: func(t, lo, hi int) core.RC {
			ap, av := a.RowPtr(), a.Vals()
			acc := m.Identity()
			any := false
			for k := ap[lo]; k < ap[hi]; k++ {
				acc = m.Op.Apply(acc, av[k])
				any = true
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
