package pipeline

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/vector"
)

func testConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.Workers = 2
	cfg.TilesPerWorker = 2
	return cfg
}

// fakeMatrix satisfies MatrixWriter and counts finalizations.
type fakeMatrix struct {
	id   core.ContainerID
	ends atomic.Int32
}

func newFakeMatrix() *fakeMatrix { return &fakeMatrix{id: core.NextContainerID()} }

func (f *fakeMatrix) ID() core.ContainerID { return f.id }
func (f *fakeMatrix) EndWrite() core.RC {
	f.ends.Add(1)
	return core.Success
}

func TestVectorTileSize(t *testing.T) {
	tests := []struct {
		name                                   string
		n, perLine, block, workers, perW, maxT int
		wantMin, wantMax                       int
	}{
		{"small", 10, 8, 1, 4, 4, 1 << 16, 8, 16},
		{"one_element", 1, 8, 1, 4, 4, 1 << 16, 1, 8},
		{"large_balances", 1 << 20, 8, 1, 8, 4, 1 << 16, 1 << 15, 1 << 16},
		{"max_tiles_floor", 1 << 20, 1, 1, 1 << 20, 1, 4, 1 << 18, 1 << 20},
		{"block_divides_line", 1000, 8, 4, 2, 2, 1 << 16, 256, 256},
		{"block_wider_than_line", 1000, 8, 96, 2, 2, 1 << 16, 288, 288},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := vectorTileSize(tc.n, tc.perLine, tc.block, tc.workers, tc.perW, tc.maxT)
			require.GreaterOrEqual(t, got, tc.wantMin)
			require.LessOrEqual(t, got, tc.wantMax)
			require.Zero(t, got%tc.perLine)
			if tc.block > 1 {
				require.Zero(t, got%tc.block)
			}
		})
	}
}

func TestPipeline_AssignTilesHonorsStageBlocksize(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)
	p.addStage(Stage{Opcode: OpEWiseApply, Size: 1000, ElemSize: 8, Blocksize: 96,
		Run: func(int, int, int) core.RC { return core.Success }})

	numTiles := p.assignTiles()
	require.Positive(t, numTiles)
	for t2 := 0; t2 < numTiles-1; t2++ {
		require.Zero(t, (p.upper[t2]-p.lower[t2])%96)
	}
	require.Equal(t, 1000, p.upper[numTiles-1])
	p.clear()

	// Without a stage hint the configured default applies.
	cfg2 := testConfig()
	cfg2.Blocksize = 32
	p2 := newPipeline(&cfg2)
	p2.addStage(Stage{Opcode: OpEWiseApply, Size: 1000, ElemSize: 8,
		Run: func(int, int, int) core.RC { return core.Success }})
	numTiles = p2.assignTiles()
	for t2 := 0; t2 < numTiles-1; t2++ {
		require.Zero(t, (p2.upper[t2]-p2.lower[t2])%32)
	}
	p2.clear()
}

func TestPipeline_AssignTilesCoversRange(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)
	p.addStage(Stage{Opcode: OpEWiseApply, Size: 1000, ElemSize: 8,
		Run: func(int, int, int) core.RC { return core.Success }})

	numTiles := p.assignTiles()
	require.Positive(t, numTiles)
	require.Len(t, p.lower, numTiles)
	require.Len(t, p.upper, numTiles)
	require.Zero(t, p.lower[0])
	require.Equal(t, 1000, p.upper[numTiles-1])
	for i := 1; i < numTiles; i++ {
		require.Equal(t, p.upper[i-1], p.lower[i])
	}
	p.clear()
}

func TestPipeline_AssignTilesMatrixBounds(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)
	p.addStage(Stage{Opcode: OpMxM, Size: 10, ElemSize: 8, CrossTile: true,
		TileBounds: []int{0, 4, 10},
		Run:        func(int, int, int) core.RC { return core.Success }})
	p.addStage(Stage{Opcode: OpMxM, Size: 10, ElemSize: 8, CrossTile: true,
		TileBounds: []int{0, 7, 10},
		Run:        func(int, int, int) core.RC { return core.Success }})

	numTiles := p.assignTiles()
	require.Equal(t, 3, numTiles)
	require.Equal(t, []int{0, 4, 7}, p.lower)
	require.Equal(t, []int{4, 7, 10}, p.upper)
	p.clear()
}

func TestPipeline_TileMajorRunsStagesInOrder(t *testing.T) {
	const n = 257
	cfg := testConfig()
	p := newPipeline(&cfg)

	a := make([]int, n)
	b := make([]int, n)
	p.addStage(Stage{Opcode: OpSetScalar, Size: n, ElemSize: 8,
		Output: core.NextContainerID(),
		Run: func(_ int, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				a[i] = i
			}
			return core.Success
		}})
	p.addStage(Stage{Opcode: OpEWiseApply, Size: n, ElemSize: 8,
		Output: core.NextContainerID(),
		Run: func(_ int, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				b[i] = 2 * a[i]
			}
			return core.Success
		}})

	require.Equal(t, core.Success, p.Execute())
	require.True(t, p.Empty())
	for i := 0; i < n; i++ {
		require.Equal(t, 2*i, b[i])
	}
}

func TestPipeline_StageMajorBarrier(t *testing.T) {
	// Two cross-tile stages: every tile of the first must complete before
	// any tile of the second starts.
	const n = 512
	cfg := testConfig()
	p := newPipeline(&cfg)

	ma, mb := newFakeMatrix(), newFakeMatrix()
	var firstDone atomic.Int32
	var violations atomic.Int32

	p.addStage(Stage{Opcode: OpMxM, Size: n, ElemSize: 8, CrossTile: true,
		OutputMatrix: ma,
		Run: func(int, int, int) core.RC {
			firstDone.Add(1)
			return core.Success
		}})
	p.addStage(Stage{Opcode: OpMxM, Size: n, ElemSize: 8, CrossTile: true,
		InputMatrices: []core.ContainerID{ma.ID()},
		OutputMatrix:  mb,
		Run: func(int, int, int) core.RC {
			if int(firstDone.Load()) != len(p.lower) {
				violations.Add(1)
			}
			return core.Success
		}})

	require.Equal(t, core.Success, p.Execute())
	require.Zero(t, violations.Load())
	require.Equal(t, int32(1), ma.ends.Load())
	require.Equal(t, int32(1), mb.ends.Load())
}

func TestPipeline_ResizeRunsOncePerStage(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)

	var resizes atomic.Int32
	p.addStage(Stage{Opcode: OpEWiseApply, Size: 64, ElemSize: 8,
		Output: core.NextContainerID(),
		Resize: func() core.RC {
			resizes.Add(1)
			return core.Success
		},
		Run: func(int, int, int) core.RC { return core.Success }})

	require.Equal(t, core.Success, p.Execute())
	require.Equal(t, int32(1), resizes.Load())
}

func TestPipeline_FailedStagePropagatesAndClears(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)
	p.addStage(Stage{Opcode: OpEWiseApply, Size: 128, ElemSize: 8,
		Output: core.NextContainerID(),
		Run:    func(int, int, int) core.RC { return core.Failed }})

	require.Equal(t, core.Failed, p.Execute())
	require.True(t, p.Empty())
	require.Equal(t, StateEmpty, p.State())
}

func TestPipeline_DenseAssertionVerified(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)

	coords := vector.NewCoordinates(16, 16)
	p.addStage(Stage{Opcode: OpEWiseApply, Size: 16, ElemSize: 8,
		Output:     core.NextContainerID(),
		CoorOutput: coords,
		DenseDescr: true,
		Run:        func(int, int, int) core.RC { return core.Success }})

	// The output never becomes dense, so the asserted density is a lie.
	require.Equal(t, core.Illegal, p.Execute())
}

func TestPipeline_DenseAssertionCoversInputs(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(&cfg)

	out := vector.NewCoordinates(16, 16)
	require.True(t, out.AssignAll())
	in := vector.NewCoordinates(16, 16)
	fresh, ok := in.Assign(3)
	require.True(t, fresh)
	require.True(t, ok)

	p.addStage(Stage{Opcode: OpEWiseApply, Size: 16, ElemSize: 8,
		Output:     core.NextContainerID(),
		CoorOutput: out,
		CoorInputs: []*vector.Coordinates{in},
		DenseDescr: true,
		Run:        func(int, int, int) core.RC { return core.Success }})

	// A sparse input under an asserted-dense stage would have the kernel
	// read unassigned values; the executor must refuse, not succeed.
	require.Equal(t, core.Illegal, p.Execute())
}

func TestPipeline_AbortRollsBackAssignedIndices(t *testing.T) {
	const n = 128
	cfg := testConfig()
	p := newPipeline(&cfg)

	coords := vector.NewCoordinates(n, n)
	p.addStage(Stage{Opcode: OpSetScalar, Size: n, ElemSize: 8,
		Output:     core.NextContainerID(),
		CoorOutput: coords,
		Run: func(tile, lo, hi int) core.RC {
			for i := lo; i < hi; i++ {
				coords.AssignLocal(tile, i)
			}
			return core.Success
		}})
	p.addStage(Stage{Opcode: OpEWiseApply, Size: n, ElemSize: 8,
		Output: core.NextContainerID(),
		Run:    func(int, int, int) core.RC { return core.Failed }})

	require.Equal(t, core.Failed, p.Execute())

	// The first stage published bitmap bits before the abort; none may
	// survive, or the tracker would report present entries with nnz == 0.
	require.Zero(t, coords.Nonzeroes())
	require.Zero(t, coords.PendingSubsets())
	for i := 0; i < n; i++ {
		require.False(t, coords.Assigned(i), "index %d left assigned after abort", i)
	}
}

func TestPipeline_SubsetJoinAfterSweep(t *testing.T) {
	const n = 300
	cfg := testConfig()
	p := newPipeline(&cfg)

	coords := vector.NewCoordinates(n, n)
	p.addStage(Stage{Opcode: OpSetScalar, Size: n, ElemSize: 8,
		Output:     core.NextContainerID(),
		CoorOutput: coords,
		Run: func(tile, lo, hi int) core.RC {
			for i := lo; i < hi; i += 2 {
				coords.AssignLocal(tile, i)
			}
			return core.Success
		}})

	require.Equal(t, core.Success, p.Execute())
	require.Equal(t, (n+1)/2, coords.Nonzeroes())
	for i := 0; i < n; i++ {
		require.Equal(t, i%2 == 0, coords.Assigned(i))
	}
}
