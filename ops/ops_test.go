package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/pipeline"
	"github.com/alpgo/grb/vector"
)

// resetRuntime installs a fresh small-worker recorder so tests observe
// pipeline counts deterministically.
func resetRuntime(t *testing.T) {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Workers = 2
	cfg.TilesPerWorker = 2
	_, err := pipeline.Init(cfg)
	require.NoError(t, err)
}

func denseVector(t *testing.T, vals []float64) *vector.Vector[float64] {
	t.Helper()
	v := vector.New[float64](len(vals), len(vals))
	for i, x := range vals {
		require.NoError(t, v.SetElement(i, x))
	}
	return v
}

func sparseVector(t *testing.T, n int, idx []int, vals []float64) *vector.Vector[float64] {
	t.Helper()
	v := vector.New[float64](n, n)
	require.NoError(t, v.Build(idx, vals))
	return v
}

func buildMatrix(t *testing.T, m, n int, triples []matrix.Triple[float64]) *matrix.Matrix[float64] {
	t.Helper()
	a := matrix.New[float64](m, n)
	require.NoError(t, matrix.BuildUnique(a, matrix.NewTriples(triples), matrix.Sequential))
	return a
}

// denseOf materializes a matrix for reference comparisons.
func denseOf(a *matrix.Matrix[float64]) [][]float64 {
	out := make([][]float64, a.Rows())
	for i := range out {
		out[i] = make([]float64, a.Cols())
	}
	a.Iterate(func(i, j int, v float64) { out[i][j] = v })
	return out
}

func matMulRef(a, b [][]float64) [][]float64 {
	m, k, n := len(a), len(b), len(b[0])
	out := make([][]float64, m)
	for i := range out {
		out[i] = make([]float64, n)
		for kk := 0; kk < k; kk++ {
			if a[i][kk] == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i][j] += a[i][kk] * b[kk][j]
			}
		}
	}
	return out
}
