package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/vector"
)

// State tracks a pipeline through its linear lifecycle. Transitions only
// move forward; any failure resets straight to StateEmpty.
type State int

const (
	StateEmpty State = iota
	StateRecording
	StateResizing
	StateExecuting
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRecording:
		return "recording"
	case StateResizing:
		return "resizing"
	case StateExecuting:
		return "executing"
	case StateFinalizing:
		return "finalizing"
	}
	return "unknown"
}

// Pipeline is an ordered set of fused stages over one iteration-space
// size. It owns the bookkeeping the dependence analyzer queries: which
// vectors the stages read, which they write, which of the read vectors
// feed a matrix-vector product (and so are read across tile boundaries),
// and which matrices are touched.
type Pipeline struct {
	cfg   *core.Config
	state State

	containersSize int
	elemSize       int
	blocksize      int
	crossTile      bool

	stages []Stage

	inputVectors    map[core.ContainerID]struct{}
	outputVectors   map[core.ContainerID]struct{}
	vxmInputVectors map[core.ContainerID]struct{}
	inputMatrices   map[core.ContainerID]struct{}
	outputMatrices  map[core.ContainerID]struct{}

	written []MatrixWriter

	accessedCoords map[*vector.Coordinates]struct{}
	denseCoords    []*vector.Coordinates

	// Cut points of the matrix operands' row-tile partitions, merged into
	// their coarsest common refinement. Empty for vector-only pipelines.
	tileBounds []int

	lower, upper []int
}

// newPipeline returns an empty pipeline bound to cfg. The recorder pools
// and reuses these across executions.
func newPipeline(cfg *core.Config) *Pipeline {
	return &Pipeline{
		cfg:             cfg,
		inputVectors:    make(map[core.ContainerID]struct{}),
		outputVectors:   make(map[core.ContainerID]struct{}),
		vxmInputVectors: make(map[core.ContainerID]struct{}),
		inputMatrices:   make(map[core.ContainerID]struct{}),
		outputMatrices:  make(map[core.ContainerID]struct{}),
		accessedCoords:  make(map[*vector.Coordinates]struct{}),
	}
}

// Empty reports whether the pipeline holds no pending stages.
func (p *Pipeline) Empty() bool { return len(p.stages) == 0 }

// NumStages returns the number of pending stages.
func (p *Pipeline) NumStages() int { return len(p.stages) }

// ContainersSize returns the iteration-space length shared by all pending
// stages, or zero when empty.
func (p *Pipeline) ContainersSize() int { return p.containersSize }

// State returns the lifecycle state.
func (p *Pipeline) State() State { return p.state }

// AccessesInputVector reports whether any pending stage reads id.
func (p *Pipeline) AccessesInputVector(id core.ContainerID) bool {
	_, ok := p.inputVectors[id]
	return ok
}

// AccessesOutputVector reports whether any pending stage writes id.
func (p *Pipeline) AccessesOutputVector(id core.ContainerID) bool {
	_, ok := p.outputVectors[id]
	return ok
}

// AccessesVector reports whether any pending stage reads or writes id.
func (p *Pipeline) AccessesVector(id core.ContainerID) bool {
	return p.AccessesInputVector(id) || p.AccessesOutputVector(id)
}

// ReadsCrossTile reports whether id feeds a pending matrix-vector product
// and is therefore read outside the writer's own tile.
func (p *Pipeline) ReadsCrossTile(id core.ContainerID) bool {
	_, ok := p.vxmInputVectors[id]
	return ok
}

// AccessesMatrix reports whether any pending stage reads or writes the
// matrix id.
func (p *Pipeline) AccessesMatrix(id core.ContainerID) bool {
	if _, ok := p.inputMatrices[id]; ok {
		return true
	}
	_, ok := p.outputMatrices[id]
	return ok
}

// WritesMatrix reports whether any pending stage writes the matrix id.
func (p *Pipeline) WritesMatrix(id core.ContainerID) bool {
	_, ok := p.outputMatrices[id]
	return ok
}

// addStage appends s. The caller (the recorder) has already established
// that s may legally join: sizes match and no forcing rule fired.
func (p *Pipeline) addStage(s Stage) {
	if p.Empty() {
		p.state = StateRecording
		p.containersSize = s.Size
	}
	if s.ElemSize > p.elemSize {
		p.elemSize = s.ElemSize
	}
	if s.Blocksize > p.blocksize {
		p.blocksize = s.Blocksize
	}
	if s.CrossTile {
		p.crossTile = true
	}

	if s.Output != core.NoContainer {
		p.outputVectors[s.Output] = struct{}{}
	}
	if s.OutputAux != core.NoContainer {
		p.outputVectors[s.OutputAux] = struct{}{}
	}
	for _, id := range s.Inputs {
		if id != core.NoContainer {
			p.inputVectors[id] = struct{}{}
			if s.InputsWritten {
				p.outputVectors[id] = struct{}{}
			}
			if s.CrossTile && s.OutputMatrix == nil {
				p.vxmInputVectors[id] = struct{}{}
			}
		}
	}
	for _, id := range s.InputMatrices {
		if id != core.NoContainer {
			p.inputMatrices[id] = struct{}{}
		}
	}
	if s.OutputMatrix != nil {
		if !p.WritesMatrix(s.OutputMatrix.ID()) {
			p.written = append(p.written, s.OutputMatrix)
		}
		p.outputMatrices[s.OutputMatrix.ID()] = struct{}{}
	}

	if s.CoorOutput != nil {
		p.accessedCoords[s.CoorOutput] = struct{}{}
		if s.DenseDescr {
			p.denseCoords = append(p.denseCoords, s.CoorOutput)
		}
	}
	if s.CoorOutputAux != nil {
		p.accessedCoords[s.CoorOutputAux] = struct{}{}
		if s.DenseDescr {
			p.denseCoords = append(p.denseCoords, s.CoorOutputAux)
		}
	}
	for _, c := range s.CoorInputs {
		if c != nil {
			p.accessedCoords[c] = struct{}{}
			if s.DenseDescr {
				p.denseCoords = append(p.denseCoords, c)
			}
		}
	}
	p.addTileBounds(s.TileBounds)

	p.stages = append(p.stages, s)
}

// addTileBounds merges row-partition cut points of a matrix operand into
// the pipeline's common refinement.
func (p *Pipeline) addTileBounds(bounds []int) {
	if len(bounds) == 0 {
		return
	}
	p.tileBounds = append(p.tileBounds, bounds...)
	sort.Ints(p.tileBounds)
	w := 0
	for i, b := range p.tileBounds {
		if i == 0 || b != p.tileBounds[w-1] {
			p.tileBounds[w] = b
			w++
		}
	}
	p.tileBounds = p.tileBounds[:w]
}

// merge folds other into p, oldest pipeline surviving. other is left
// empty and reusable.
func (p *Pipeline) merge(other *Pipeline) {
	p.stages = append(p.stages, other.stages...)
	for id := range other.inputVectors {
		p.inputVectors[id] = struct{}{}
	}
	for id := range other.outputVectors {
		p.outputVectors[id] = struct{}{}
	}
	for id := range other.vxmInputVectors {
		p.vxmInputVectors[id] = struct{}{}
	}
	for id := range other.inputMatrices {
		p.inputMatrices[id] = struct{}{}
	}
	for id := range other.outputMatrices {
		if !p.WritesMatrix(id) {
			for _, w := range other.written {
				if w.ID() == id {
					p.written = append(p.written, w)
				}
			}
		}
		p.outputMatrices[id] = struct{}{}
	}
	for c := range other.accessedCoords {
		p.accessedCoords[c] = struct{}{}
	}
	p.denseCoords = append(p.denseCoords, other.denseCoords...)
	p.addTileBounds(other.tileBounds)
	if other.elemSize > p.elemSize {
		p.elemSize = other.elemSize
	}
	if other.blocksize > p.blocksize {
		p.blocksize = other.blocksize
	}
	if other.crossTile {
		p.crossTile = true
	}
	other.clear()
}

// clear resets the pipeline to the empty state, keeping allocations.
func (p *Pipeline) clear() {
	p.state = StateEmpty
	p.containersSize = 0
	p.elemSize = 0
	p.blocksize = 0
	p.crossTile = false
	p.stages = p.stages[:0]
	for id := range p.inputVectors {
		delete(p.inputVectors, id)
	}
	for id := range p.outputVectors {
		delete(p.outputVectors, id)
	}
	for id := range p.vxmInputVectors {
		delete(p.vxmInputVectors, id)
	}
	for id := range p.inputMatrices {
		delete(p.inputMatrices, id)
	}
	for id := range p.outputMatrices {
		delete(p.outputMatrices, id)
	}
	p.written = p.written[:0]
	for c := range p.accessedCoords {
		delete(p.accessedCoords, c)
	}
	p.denseCoords = p.denseCoords[:0]
	p.tileBounds = p.tileBounds[:0]
}

// Execute runs every pending stage to completion and resets the pipeline.
// On any failure the pipeline is still reset; partial outputs are
// unspecified but all containers remain structurally valid.
func (p *Pipeline) Execute() core.RC {
	if p.Empty() {
		return core.Success
	}
	rc := p.execute()
	if rc != core.Success {
		// Unwind indices assigned by stages that ran before the abort,
		// so no bitmap bit survives without a matching stack entry.
		for c := range p.accessedCoords {
			c.DiscardSubsets()
		}
	}
	p.clear()
	return rc
}

func (p *Pipeline) execute() core.RC {
	// Capacity pass, in stage order. Matrix-product patterns propagate
	// through here before any numeric work starts.
	p.state = StateResizing
	for i := range p.stages {
		s := &p.stages[i]
		if s.Resize != nil && !s.resizeDone {
			if rc := s.Resize(); rc != core.Success {
				return rc
			}
			s.resizeDone = true
		}
	}

	numTiles := p.assignTiles()

	for c := range p.accessedCoords {
		c.BeginSubsets(numTiles)
	}
	for i := range p.stages {
		if init := p.stages[i].Init; init != nil {
			if rc := init(numTiles); rc != core.Success {
				return rc
			}
		}
	}

	p.state = StateExecuting
	var rc core.RC
	if p.crossTile {
		// Stage-major: a barrier between stages so cross-tile reads in a
		// later stage observe every tile of the earlier stage's output.
		for i := range p.stages {
			s := &p.stages[i]
			rc = p.runTiles(numTiles, func(t int) core.RC {
				return s.Run(t, p.lower[t], p.upper[t])
			})
			if rc != core.Success {
				return rc
			}
		}
	} else {
		// Tile-major: each worker streams a whole tile through all
		// stages while the tile is cache resident.
		rc = p.runTiles(numTiles, func(t int) core.RC {
			lo, hi := p.lower[t], p.upper[t]
			for i := range p.stages {
				if r := p.stages[i].Run(t, lo, hi); r != core.Success {
					return r
				}
			}
			return core.Success
		})
		if rc != core.Success {
			return rc
		}
	}

	p.state = StateFinalizing
	for c := range p.accessedCoords {
		if !c.JoinSubsets() {
			return core.OutOfMem
		}
	}
	for _, c := range p.denseCoords {
		if !c.Dense() {
			return core.Illegal
		}
	}
	for _, w := range p.written {
		if rc := w.EndWrite(); rc != core.Success {
			return rc
		}
	}
	return core.Success
}

// assignTiles fills lower/upper with the tile ranges for this execution
// and returns the tile count. Matrix pipelines use the merged operand
// partition; vector pipelines a partition of [0,n) sized so a tile of
// the widest element type spans a whole number of cache lines while
// every worker still gets several tiles to balance.
func (p *Pipeline) assignTiles() int {
	if len(p.tileBounds) > 0 {
		bounds := p.tileBounds
		// Drop a leading 0 or trailing n so bounds are interior cuts.
		if len(bounds) > 0 && bounds[0] == 0 {
			bounds = bounds[1:]
		}
		if len(bounds) > 0 && bounds[len(bounds)-1] == p.containersSize {
			bounds = bounds[:len(bounds)-1]
		}
		numTiles := len(bounds) + 1
		p.lower = p.lower[:0]
		p.upper = p.upper[:0]
		lo := 0
		for _, b := range bounds {
			p.lower = append(p.lower, lo)
			p.upper = append(p.upper, b)
			lo = b
		}
		p.lower = append(p.lower, lo)
		p.upper = append(p.upper, p.containersSize)
		return numTiles
	}

	n := p.containersSize
	elem := p.elemSize
	if elem <= 0 {
		elem = 8
	}
	perLine := p.cfg.CacheLineBytes / elem
	if perLine < 1 {
		perLine = 1
	}
	block := p.blocksize
	if block <= 0 {
		block = p.cfg.Blocksize
	}
	tileSize := vectorTileSize(n, perLine, block, p.cfg.Workers, p.cfg.TilesPerWorker, p.cfg.MaxTiles)
	numTiles := (n + tileSize - 1) / tileSize
	if numTiles < 1 {
		numTiles = 1
	}
	p.lower = p.lower[:0]
	p.upper = p.upper[:0]
	for t := 0; t < numTiles; t++ {
		lo := t * tileSize
		hi := lo + tileSize
		if hi > n {
			hi = n
		}
		p.lower = append(p.lower, lo)
		p.upper = append(p.upper, hi)
	}
	return numTiles
}

// vectorTileSize picks a tile size for an n-element iteration space:
// large enough to cover whole cache lines and a whole number of operator
// blocks, small enough that each worker claims tilesPerWorker or more
// tiles, and bounded so the tile count never exceeds maxTiles.
func vectorTileSize(n, perLine, block, workers, tilesPerWorker, maxTiles int) int {
	if n <= 0 {
		return 1
	}
	wantTiles := workers * tilesPerWorker
	if wantTiles < 1 {
		wantTiles = 1
	}
	size := (n + wantTiles - 1) / wantTiles
	// Round up to a whole number of cache lines.
	if rem := size % perLine; rem != 0 {
		size += perLine - rem
	}
	if size < perLine {
		size = perLine
	}
	// Then to a whole number of vectorized blocks, so every tile but the
	// last feeds the blocked inner loop without a remainder pass.
	if block > 1 {
		if rem := size % block; rem != 0 {
			size += block - rem
		}
	}
	// The tile-count cap wins over alignment.
	if maxTiles > 0 {
		minSize := (n + maxTiles - 1) / maxTiles
		if size < minSize {
			size = minSize
		}
	}
	return size
}

type rcError struct{ rc core.RC }

func (e rcError) Error() string { return fmt.Sprintf("pipeline stage: %v", e.rc) }

// runTiles sweeps fn over all tiles with the configured worker count.
// Workers claim tiles from a shared cursor; the first failing tile stops
// the sweep and its code is returned.
func (p *Pipeline) runTiles(numTiles int, fn func(tile int) core.RC) core.RC {
	workers := p.cfg.Workers
	if workers > numTiles {
		workers = numTiles
	}
	if workers <= 1 {
		for t := 0; t < numTiles; t++ {
			if rc := fn(t); rc != core.Success {
				return rc
			}
		}
		return core.Success
	}

	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				t := int(cursor.Add(1)) - 1
				if t >= numTiles {
					return nil
				}
				if rc := fn(t); rc != core.Success {
					return rcError{rc}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		var re rcError
		if errors.As(err, &re) {
			return re.rc
		}
		return core.Panic
	}
	return core.Success
}
