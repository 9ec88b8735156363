package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

func requireMatrixEqual(t *testing.T, want [][]float64, got *matrix.Matrix[float64]) {
	t.Helper()
	dense := denseOf(got)
	require.Equal(t, len(want), len(dense))
	for i := range want {
		require.Equal(t, want[i], dense[i], "row %d", i)
	}
}

func TestMxM_SmallProduct(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 2, 3, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 0, J: 2, V: 2}, {I: 1, J: 1, V: 3},
	})
	b := buildMatrix(t, 3, 2, []matrix.Triple[float64]{
		{I: 0, J: 1, V: 4}, {I: 1, J: 0, V: 5}, {I: 2, J: 1, V: 6},
	})
	c := matrix.New[float64](2, 2)

	require.Equal(t, core.Success,
		MxM(c, a, b, algebra.PlusTimes[float64](), core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait(c))

	requireMatrixEqual(t, matMulRef(denseOf(a), denseOf(b)), c)
	require.Equal(t, 2, c.Nonzeroes()) // (0,1)=16, (1,0)=15
}

func TestMxM_ChainFusesAndRebuildsOncePerMatrix(t *testing.T) {
	resetRuntime(t)
	n := 6
	a := buildMatrix(t, n, n, []matrix.Triple[float64]{
		{I: 0, J: 1, V: 1}, {I: 1, J: 2, V: 2}, {I: 2, J: 3, V: 3},
		{I: 3, J: 4, V: 4}, {I: 4, J: 5, V: 5}, {I: 5, J: 0, V: 6},
		{I: 0, J: 0, V: 1}, {I: 3, J: 3, V: 1},
	})
	b := buildMatrix(t, n, n, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 2}, {I: 1, J: 1, V: 2}, {I: 2, J: 2, V: 2},
		{I: 3, J: 3, V: 2}, {I: 4, J: 4, V: 2}, {I: 5, J: 5, V: 2},
	})
	c := matrix.New[float64](n, n)
	d := matrix.New[float64](n, n)
	e := matrix.New[float64](n, n)
	ring := algebra.PlusTimes[float64]()

	baseC, baseD, baseE := c.RebuildCount(), d.RebuildCount(), e.RebuildCount()

	require.Equal(t, core.Success, MxM(c, a, b, ring, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, MxM(d, a, c, ring, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, MxM(e, c, d, ring, core.DefaultDescriptor, core.Execute))

	// All three products share one pipeline and nothing has run yet.
	require.Equal(t, 1, pipeline.Default().LivePipelines())
	require.Equal(t, 3, pipeline.Default().PendingStages())
	require.Equal(t, baseC, c.RebuildCount())
	require.Equal(t, baseD, d.RebuildCount())
	require.Equal(t, baseE, e.RebuildCount())

	require.Equal(t, core.Success, Wait(e))
	require.Zero(t, pipeline.Default().LivePipelines())

	// One secondary-indexing rebuild per written matrix.
	require.Equal(t, baseC+1, c.RebuildCount())
	require.Equal(t, baseD+1, d.RebuildCount())
	require.Equal(t, baseE+1, e.RebuildCount())

	da, db := denseOf(a), denseOf(b)
	dc := matMulRef(da, db)
	dd := matMulRef(da, dc)
	de := matMulRef(dc, dd)
	requireMatrixEqual(t, dc, c)
	requireMatrixEqual(t, dd, d)
	requireMatrixEqual(t, de, e)
}

func TestMxM_Validation(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 2, 3, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}})
	b := buildMatrix(t, 3, 2, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}})
	c := matrix.New[float64](2, 2)
	ring := algebra.PlusTimes[float64]()

	bad := matrix.New[float64](3, 3)
	require.Equal(t, core.Mismatch, MxM(bad, a, b, ring, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Illegal, MxM(c, a, b, ring, core.TransposeMatrix, core.Execute))

	sq := buildMatrix(t, 2, 2, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}})
	require.Equal(t, core.Illegal, MxM(sq, sq, sq, ring, core.DefaultDescriptor, core.Execute))
	require.Zero(t, pipeline.Default().PendingStages())
}

func TestMxMMasked(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 2, 2, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 0, J: 1, V: 2}, {I: 1, J: 0, V: 3}, {I: 1, J: 1, V: 4},
	})
	ring := algebra.PlusTimes[float64]()

	mask := buildMatrix(t, 2, 2, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}, {I: 1, J: 1, V: 1}})
	c := matrix.New[float64](2, 2)
	require.Equal(t, core.Success,
		MxMMasked(c, mask, a, a, ring, core.Structural, core.Execute))
	require.Equal(t, core.Success, Wait(c))

	full := matMulRef(denseOf(a), denseOf(a))
	require.Equal(t, 2, c.Nonzeroes())
	got := denseOf(c)
	require.Equal(t, full[0][0], got[0][0])
	require.Equal(t, full[1][1], got[1][1])
	require.Zero(t, got[0][1])

	// Structural complement keeps only the off-diagonal.
	inv := matrix.New[float64](2, 2)
	require.Equal(t, core.Success,
		MxMMasked(inv, mask, a, a, ring, core.Structural|core.InvertMask, core.Execute))
	require.Equal(t, core.Success, Wait(inv))
	gotInv := denseOf(inv)
	require.Zero(t, gotInv[0][0])
	require.Equal(t, full[0][1], gotInv[0][1])

	// A value complement treats a present-but-false entry as absent, so
	// its position is computed. (1,1) holds 0 in the value mask below.
	vm := buildMatrix(t, 2, 2, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}, {I: 1, J: 1, V: 0}})
	cv := matrix.New[float64](2, 2)
	require.Equal(t, core.Success,
		MxMMasked(cv, vm, a, a, ring, core.InvertMask, core.Execute))
	require.Equal(t, core.Success, Wait(cv))
	gotCv := denseOf(cv)
	require.Zero(t, gotCv[0][0])
	require.Equal(t, full[0][1], gotCv[0][1])
	require.Equal(t, full[1][0], gotCv[1][0])
	require.Equal(t, full[1][1], gotCv[1][1])
}

func TestMxMMasked_ValueMaskCompletesBeforeProduct(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 2, 2, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 0, J: 1, V: 2}, {I: 1, J: 0, V: 3}, {I: 1, J: 1, V: 4},
	})
	ring := algebra.PlusTimes[float64]()

	// Leave the mask pending in a pipeline: its values must exist before
	// the product's capacity pass reads them.
	seed := buildMatrix(t, 2, 2, []matrix.Triple[float64]{{I: 0, J: 0, V: 1}, {I: 1, J: 1, V: 1}})
	mask := matrix.New[float64](2, 2)
	require.Equal(t, core.Success,
		EWiseApplyMatrix(mask, seed, seed, algebra.Mul[float64](), core.DefaultDescriptor, core.Execute))
	require.NotZero(t, pipeline.Default().PendingStages())

	c := matrix.New[float64](2, 2)
	require.Equal(t, core.Success,
		MxMMasked(c, mask, a, a, ring, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait(c))

	full := matMulRef(denseOf(a), denseOf(a))
	got := denseOf(c)
	require.Equal(t, full[0][0], got[0][0])
	require.Equal(t, full[1][1], got[1][1])
	require.Zero(t, got[0][1])
	require.Zero(t, got[1][0])
}

func TestOuterProduct(t *testing.T) {
	resetRuntime(t)
	x := sparseVector(t, 3, []int{0, 2}, []float64{2, 3})
	y := sparseVector(t, 4, []int{1, 3}, []float64{5, 7})
	c := matrix.New[float64](3, 4)

	require.Equal(t, core.Success,
		OuterProduct(c, x, y, algebra.Mul[float64](), core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait(c))

	require.Equal(t, 4, c.Nonzeroes())
	want := [][]float64{
		{0, 10, 0, 14},
		{0, 0, 0, 0},
		{0, 15, 0, 21},
	}
	requireMatrixEqual(t, want, c)
}

func TestEWiseApplyMatrix_Intersection(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 2, 3, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 0, J: 2, V: 2}, {I: 1, J: 1, V: 3},
	})
	b := buildMatrix(t, 2, 3, []matrix.Triple[float64]{
		{I: 0, J: 2, V: 10}, {I: 1, J: 0, V: 20},
	})
	c := matrix.New[float64](2, 3)

	require.Equal(t, core.Success,
		EWiseApplyMatrix(c, a, b, algebra.Mul[float64](), core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait(c))

	require.Equal(t, 1, c.Nonzeroes())
	got, ok := c.At(0, 2)
	require.True(t, ok)
	require.Equal(t, 20.0, got)
}

func TestSelectTrilTriu(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 3, 3, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 0, J: 2, V: -2},
		{I: 1, J: 0, V: 3}, {I: 1, J: 1, V: -4},
		{I: 2, J: 2, V: 5},
	})

	pos := matrix.New[float64](3, 3)
	require.Equal(t, core.Success,
		Select(pos, a, func(_, _ int, v float64) bool { return v > 0 }, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait(pos))
	require.Equal(t, 3, pos.Nonzeroes())
	_, ok := pos.At(0, 2)
	require.False(t, ok)

	lower := matrix.New[float64](3, 3)
	require.Equal(t, core.Success, Tril(lower, a, core.DefaultDescriptor, core.Execute))
	upper := matrix.New[float64](3, 3)
	require.Equal(t, core.Success, Triu(upper, a, core.DefaultDescriptor, core.Execute))
	require.Equal(t, core.Success, Wait())

	require.Equal(t, 4, lower.Nonzeroes()) // diagonal included
	require.Equal(t, 4, upper.Nonzeroes())
	_, ok = lower.At(0, 2)
	require.False(t, ok)
	_, ok = upper.At(1, 0)
	require.False(t, ok)
}

func TestZipMatrix(t *testing.T) {
	resetRuntime(t)
	is := vector.New[int](3, 3)
	js := vector.New[int](3, 3)
	vs := vector.New[float64](3, 3)
	for k, tr := range []matrix.Triple[float64]{
		{I: 0, J: 1, V: 10}, {I: 2, J: 0, V: 20}, {I: 1, J: 2, V: 30},
	} {
		require.NoError(t, is.SetElement(k, tr.I))
		require.NoError(t, js.SetElement(k, tr.J))
		require.NoError(t, vs.SetElement(k, tr.V))
	}
	a := matrix.New[float64](3, 3)
	require.Equal(t, core.Success, ZipMatrix(a, is, js, vs))
	require.Equal(t, 3, a.Nonzeroes())
	got, ok := a.At(1, 2)
	require.True(t, ok)
	require.Equal(t, 30.0, got)

	// Duplicate coordinates are rejected.
	require.NoError(t, js.SetElement(2, 1))
	require.NoError(t, is.SetElement(2, 0))
	require.Equal(t, core.Illegal, ZipMatrix(a, is, js, vs))
}

func TestFoldMatrixToScalar(t *testing.T) {
	resetRuntime(t)
	a := buildMatrix(t, 3, 3, []matrix.Triple[float64]{
		{I: 0, J: 0, V: 1}, {I: 1, J: 2, V: 2}, {I: 2, J: 1, V: 4},
	})

	alpha := 3.0
	require.Equal(t, core.Success,
		FoldMatrixToScalar(&alpha, a, algebra.Plus[float64](), core.DefaultDescriptor))
	require.Equal(t, 10.0, alpha)

	empty := matrix.New[float64](4, 4)
	beta := 9.0
	require.Equal(t, core.Success,
		FoldMatrixToScalar(&beta, empty, algebra.Plus[float64](), core.DefaultDescriptor))
	require.Equal(t, 9.0, beta)
}
