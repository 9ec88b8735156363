package transition

import (
	"errors"
	"sync"

	"github.com/alpgo/grb/algorithms"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/vector"
)

// Status is the flat result code of this surface.
type Status int

const (
	// NoError means the call completed.
	NoError Status = iota
	// NullArgument means a required slice or pointer was nil.
	NullArgument
	// IllegalArgument means an argument violated a documented constraint,
	// including an unknown handle.
	IllegalArgument
	// OutOfMemory means storage could not be grown.
	OutOfMemory
	// Unknown covers non-convergence and internal failures.
	Unknown
)

var statusNames = map[Status]string{
	NoError:         "no error",
	NullArgument:    "null argument",
	IllegalArgument: "illegal argument",
	OutOfMemory:     "out of memory",
	Unknown:         "unknown",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "invalid status"
}

// solver owns one system matrix and the stopping criteria applied to it.
type solver struct {
	a       *matrix.Matrix[float64]
	n       int
	tol     float64
	maxIter int
}

var (
	mu      sync.Mutex
	nextID  = 1
	solvers = make(map[int]*solver)
)

// Init ingests an n×n system matrix in CRS form and returns a handle to
// a solver holding it. rowPtr must have n+1 entries starting at zero;
// values and colInd must cover rowPtr[n] nonzeroes with in-range,
// per-row-unique column indices.
//
// The arrays are copied; the caller keeps ownership of its slices.
func Init(n int, values []float64, colInd, rowPtr []int) (int, Status) {
	if values == nil || colInd == nil || rowPtr == nil {
		return 0, NullArgument
	}
	if n < 0 || len(rowPtr) != n+1 || rowPtr[0] != 0 {
		return 0, IllegalArgument
	}
	nnz := rowPtr[n]
	if nnz < 0 || len(values) < nnz || len(colInd) < nnz {
		return 0, IllegalArgument
	}

	triples := make([]matrix.Triple[float64], 0, nnz)
	for i := 0; i < n; i++ {
		lo, hi := rowPtr[i], rowPtr[i+1]
		if lo > hi || hi > nnz {
			return 0, IllegalArgument
		}
		for k := lo; k < hi; k++ {
			if colInd[k] < 0 || colInd[k] >= n {
				return 0, IllegalArgument
			}
			triples = append(triples, matrix.Triple[float64]{I: i, J: colInd[k], V: values[k]})
		}
	}

	a := matrix.New[float64](n, n, matrix.WithCapacity(nnz))
	if err := matrix.BuildUnique(a, matrix.NewTriples(triples), matrix.Sequential); err != nil {
		if errors.Is(err, matrix.ErrDuplicate) || errors.Is(err, matrix.ErrIndexRange) {
			return 0, IllegalArgument
		}
		return 0, Unknown
	}

	mu.Lock()
	defer mu.Unlock()
	h := nextID
	nextID++
	solvers[h] = &solver{a: a, n: n, tol: 1e-8, maxIter: n}
	return h, NoError
}

// SetTolerance sets the residual 2-norm threshold for handle h.
func SetTolerance(h int, tol float64) Status {
	if tol <= 0 {
		return IllegalArgument
	}
	mu.Lock()
	defer mu.Unlock()
	s, ok := solvers[h]
	if !ok {
		return IllegalArgument
	}
	s.tol = tol
	return NoError
}

// SetMaxIter caps the iteration count for handle h.
func SetMaxIter(h int, max int) Status {
	if max < 0 {
		return IllegalArgument
	}
	mu.Lock()
	defer mu.Unlock()
	s, ok := solvers[h]
	if !ok {
		return IllegalArgument
	}
	s.maxIter = max
	return NoError
}

// Solve runs conjugate gradient on handle h's matrix: x holds the
// initial guess on entry and the final iterate on exit, b holds the
// right-hand side. Both must have the system's length.
//
// Non-convergence within the iteration cap reports Unknown; x still
// receives the last iterate.
func Solve(h int, x, b []float64) Status {
	if x == nil || b == nil {
		return NullArgument
	}
	mu.Lock()
	s, ok := solvers[h]
	if !ok {
		mu.Unlock()
		return IllegalArgument
	}
	a, tol, maxIter := s.a, s.tol, s.maxIter
	mu.Unlock()

	if len(x) != s.n || len(b) != s.n {
		return IllegalArgument
	}

	xv := denseVector(x)
	bv := denseVector(b)
	_, rc := algorithms.ConjugateGradient(xv, a, bv,
		algorithms.WithTolerance(tol), algorithms.WithMaxIterations(maxIter))
	if rc == core.Success || rc == core.Failed {
		copy(x, xv.Values())
	}
	return statusOf(rc)
}

// Destroy releases handle h.
func Destroy(h int) Status {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := solvers[h]; !ok {
		return IllegalArgument
	}
	delete(solvers, h)
	return NoError
}

func denseVector(vals []float64) *vector.Vector[float64] {
	v := vector.New[float64](len(vals), len(vals))
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	if err := v.Build(idx, vals); err != nil {
		panic(err)
	}
	return v
}

func statusOf(rc core.RC) Status {
	switch rc {
	case core.Success:
		return NoError
	case core.Mismatch, core.Illegal:
		return IllegalArgument
	case core.OutOfMem:
		return OutOfMemory
	default:
		return Unknown
	}
}
