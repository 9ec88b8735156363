package pipeline

import (
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/vector"
)

// Opcode identifies the primitive a recorded stage stands for. The
// dependence analyzer keys its fusion rules off the opcode class, not the
// element types, so one opcode covers all instantiations of a primitive.
type Opcode int

const (
	OpNone Opcode = iota

	// I/O class.
	OpSetScalar
	OpSetMaskedScalar
	OpSetVector
	OpSetMaskedVector

	// BLAS-1 class: elementwise and folds over vectors.
	OpFoldScalarIntoVector
	OpFoldMaskedScalarIntoVector
	OpFoldVectorIntoVector
	OpFoldMaskedVectorIntoVector
	OpFoldVectorToScalar
	OpEWiseApply
	OpMaskedEWiseApply
	OpEWiseMulAdd
	OpDot
	OpEWiseLambda
	OpZip
	OpUnzip

	// BLAS-2 class: sparse matrix-vector products.
	OpMxV
	OpVxM

	// BLAS-3 class: matrix outputs.
	OpMxM
	OpMaskedMxM
	OpOuterProduct
	OpEWiseApplyMatrix
	OpSelect
	OpZipMatrix
	OpFoldMatrixToScalar
)

// String returns a short mnemonic for diagnostics.
func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "unknown"
	}
	return opcodeNames[op]
}

var opcodeNames = [...]string{
	"none",
	"set_scalar", "set_masked_scalar", "set_vector", "set_masked_vector",
	"fold_scalar_into_vector", "fold_masked_scalar_into_vector",
	"fold_vector_into_vector", "fold_masked_vector_into_vector",
	"fold_vector_to_scalar",
	"ewise_apply", "masked_ewise_apply", "ewise_muladd", "dot",
	"ewise_lambda", "zip", "unzip",
	"mxv", "vxm",
	"mxm", "masked_mxm", "outer_product", "ewise_apply_matrix",
	"select", "zip_matrix", "fold_matrix_to_scalar",
}

// MatrixWriter is the view the executor needs of a matrix a pipeline
// writes: an identity for dependence tracking and a finalization hook
// that seals the primary storage and rebuilds the secondary one.
type MatrixWriter interface {
	ID() core.ContainerID
	EndWrite() core.RC
}

// Stage is one recorded primitive invocation. The ops layer fills in the
// container identities so the analyzer can reason about data dependences
// without touching element types, and three closures carrying the typed
// work:
//
//   - Resize computes output capacity and, for matrix outputs, the
//     symbolic pattern. It runs once, in stage order, before any tile
//     executes, so a later stage's Resize may read patterns produced by
//     an earlier stage's Resize within the same pipeline.
//   - Init sizes per-execution scratch (for example per-tile partial
//     accumulators) once the tile count is known.
//   - Run computes the stage's contribution for one tile, the index
//     range [lo,hi) of the pipeline's iteration space.
//
// Size is the length of the iteration space the stage runs over: the
// vector length for vector stages, the output row count for matrix
// stages. Stages of differing Size never share a pipeline.
type Stage struct {
	Opcode   Opcode
	Size     int
	ElemSize int

	// Blocksize is the operator's vector-unit blocking hint. The widest
	// hint in a pipeline aligns its tile size; zero defers to the
	// configured default.
	Blocksize int

	// DenseDescr records that the invocation asserted structural density
	// of its operands; the executor verifies the assertion against the
	// coordinates of every operand after the tile sweep.
	DenseDescr bool

	// Output and OutputAux are the written vectors (zero when absent;
	// zip writes two). Inputs are the read vectors including masks.
	Output    core.ContainerID
	OutputAux core.ContainerID
	Inputs    []core.ContainerID

	// CoorOutput and CoorOutputAux are the coordinate structures of the
	// written vectors; the executor opens per-tile subsets on every
	// accessed coordinate structure and joins them at finalization.
	CoorOutput    *vector.Coordinates
	CoorOutputAux *vector.Coordinates
	CoorInputs    []*vector.Coordinates

	// InputMatrices are matrices the stage reads. OutputMatrix, when
	// non-nil, is the matrix the stage writes; it is sealed exactly once
	// at pipeline finalization regardless of how many stages wrote it.
	InputMatrices []core.ContainerID
	OutputMatrix  MatrixWriter

	// TileBounds carries the row-partition cut points of the stage's
	// matrix operands. Pipelines containing matrix stages execute over
	// the coarsest common refinement of all contributed partitions.
	TileBounds []int

	// InputsWritten marks lambda-style stages whose user function may
	// both read and mutate every listed input in place.
	InputsWritten bool

	// CrossTile marks stages that read container elements outside their
	// own tile range (matrix-vector and matrix-matrix products). Their
	// presence switches the pipeline to a stage-major sweep and tightens
	// the analyzer's fusion rules for pending vector writes.
	CrossTile bool

	Resize func() core.RC
	Init   func(numTiles int) core.RC
	Run    func(tile, lo, hi int) core.RC

	resizeDone bool
}

// writesScalar reports whether the stage has no container output at all,
// which makes it an observation point: its result is needed now.
func (s *Stage) writesScalar() bool {
	return s.Output == core.NoContainer &&
		s.OutputAux == core.NoContainer &&
		s.OutputMatrix == nil
}
