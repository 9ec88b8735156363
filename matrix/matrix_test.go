package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/matrix"
)

func diagonal(n int) []matrix.Triple[float64] {
	out := make([]matrix.Triple[float64], n)
	for i := range out {
		out[i] = matrix.Triple[float64]{I: i, J: i, V: float64(i + 1)}
	}
	return out
}

// TestBuildUnique_Diagonal is the diagonal-construction scenario: both
// ingestion modes must produce element-wise equal matrices.
func TestBuildUnique_Diagonal(t *testing.T) {
	const n = 100
	seq := matrix.New[float64](n, n)
	par := matrix.New[float64](n, n)

	require.NoError(t, matrix.BuildUnique(seq, matrix.NewTriples(diagonal(n)), matrix.Sequential))
	require.NoError(t, matrix.BuildUnique(par, matrix.NewTriples(diagonal(n)), matrix.Parallel))

	require.Equal(t, n, seq.Nonzeroes())
	require.Equal(t, n, par.Nonzeroes())
	for i := 0; i < n; i++ {
		vs, ok := seq.At(i, i)
		require.True(t, ok)
		require.Equal(t, float64(i+1), vs)
		vp, ok := par.At(i, i)
		require.True(t, ok)
		require.Equal(t, vs, vp)
	}
}

// TestBuildUnique_IndexingsAgree verifies CRS and CCS expose the same
// entries after construction.
func TestBuildUnique_IndexingsAgree(t *testing.T) {
	a := matrix.New[int](4, 5)
	triples := []matrix.Triple[int]{
		{I: 0, J: 1, V: 10}, {I: 0, J: 4, V: 11},
		{I: 2, J: 0, V: 12}, {I: 3, J: 1, V: 13}, {I: 3, J: 3, V: 14},
	}
	require.NoError(t, matrix.BuildUnique(a, matrix.NewTriples(triples), matrix.Sequential))
	require.False(t, a.ColumnsStale())

	byRows := map[[2]int]int{}
	a.Iterate(func(i, j, v int) { byRows[[2]int{i, j}] = v })

	byCols := map[[2]int]int{}
	for j := 0; j < a.Cols(); j++ {
		rows, vals := a.ColView(j)
		for k, i := range rows {
			byCols[[2]int{i, j}] = vals[k]
		}
	}
	require.Equal(t, byRows, byCols)
	require.Len(t, byRows, len(triples))
}

// TestBuildUnique_Errors covers duplicates and out-of-range coordinates;
// the matrix must come out cleared.
func TestBuildUnique_Errors(t *testing.T) {
	a := matrix.New[int](3, 3)

	dup := []matrix.Triple[int]{{I: 1, J: 1, V: 1}, {I: 1, J: 1, V: 2}}
	err := matrix.BuildUnique(a, matrix.NewTriples(dup), matrix.Sequential)
	require.ErrorIs(t, err, matrix.ErrDuplicate)
	require.Equal(t, 0, a.Nonzeroes())

	oob := []matrix.Triple[int]{{I: 0, J: 3, V: 1}}
	err = matrix.BuildUnique(a, matrix.NewTriples(oob), matrix.Parallel)
	require.ErrorIs(t, err, matrix.ErrIndexRange)
	require.Equal(t, 0, a.Nonzeroes())
}

// TestBuildUnique_ParallelNeedsRandomAccess rejects forward-only input.
func TestBuildUnique_ParallelNeedsRandomAccess(t *testing.T) {
	a := matrix.New[int](2, 2)
	it := struct{ matrix.Iterator[int] }{matrix.NewTriples([]matrix.Triple[int]{{I: 0, J: 0, V: 1}})}
	require.ErrorIs(t, matrix.BuildUnique[int](a, it, matrix.Parallel), matrix.ErrNotRandom)
}

// TestTilePartition checks boundaries cover the row space and the side
// counts sum to the nonzero count.
func TestTilePartition(t *testing.T) {
	const n = 64
	a := matrix.New[float64](n, n, matrix.WithTileTarget(8))
	require.NoError(t, matrix.BuildUnique(a, matrix.NewTriples(diagonal(n)), matrix.Sequential))

	require.Greater(t, a.NumTiles(), 1, "a small tile target must split the rows")
	covered := 0
	sum := 0
	perTile := a.NnzPerTile()
	for tl := 0; tl < a.NumTiles(); tl++ {
		lo, hi := a.TileBounds(tl)
		require.Equal(t, covered, lo, "tiles are contiguous")
		require.LessOrEqual(t, lo, hi)
		covered = hi
		sum += perTile[tl]
	}
	require.Equal(t, n, covered, "tiles cover the row space")
	require.Equal(t, a.Nonzeroes(), sum, "sum(nnzPerTile) = nnz")
}

// TestPatternMatrix stores coordinates only.
func TestPatternMatrix(t *testing.T) {
	a := matrix.New[matrix.Pattern](3, 3)
	triples := []matrix.Triple[matrix.Pattern]{{I: 0, J: 1}, {I: 2, J: 2}}
	require.NoError(t, matrix.BuildUnique(a, matrix.NewTriples(triples), matrix.Sequential))
	require.Equal(t, 2, a.Nonzeroes())
	_, ok := a.At(0, 1)
	require.True(t, ok)
	_, ok = a.At(1, 1)
	require.False(t, ok)
}

// TestWriteProtocol drives BeginWrite/EndWrite directly the way the
// pipeline executor does, and checks the rebuild counter and invariants.
func TestWriteProtocol(t *testing.T) {
	a := matrix.New[float64](3, 3)
	before := a.RebuildCount()

	// rows: 0 -> {1}, 1 -> {}, 2 -> {0, 2}
	rowPtr := []int{0, 1, 1, 3}
	require.True(t, a.BeginWrite(rowPtr).OK())
	require.True(t, a.ColumnsStale())
	ind, vals := a.ColInd(), a.Vals()
	ind[0], vals[0] = 1, 0.5
	ind[1], vals[1] = 0, 1.5
	ind[2], vals[2] = 2, 2.5

	require.True(t, a.EndWrite().OK())
	require.False(t, a.ColumnsStale())
	require.Equal(t, before+1, a.RebuildCount())
	require.Equal(t, 3, a.Nonzeroes())

	rows, cvals := a.ColView(0)
	require.Equal(t, []int{2}, rows)
	require.Equal(t, []float64{1.5}, cvals)

	sum := 0
	for _, c := range a.NnzPerTile() {
		sum += c
	}
	require.Equal(t, 3, sum)
}

// TestZeroSized: a 0x0 matrix accepts an empty build and stays empty.
func TestZeroSized(t *testing.T) {
	a := matrix.New[float64](0, 0)
	require.NoError(t, matrix.BuildUnique(a, matrix.NewTriples[float64](nil), matrix.Sequential))
	require.Equal(t, 0, a.Nonzeroes())
	a.Iterate(func(int, int, float64) { t.Fatal("no entries expected") })
}
