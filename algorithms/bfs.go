package algorithms

import (
	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/ops"
	"github.com/alpgo/grb/vector"
)

// BFSLevels runs a level-synchronous breadth-first search over the
// directed graph whose adjacency matrix is a, with a(i,j) present meaning
// an edge i→j. Edge values are ignored; only the pattern matters.
//
// It returns the levels vector (entry i holds the number of edges on a
// shortest path from source to i, present only for reached vertices), the
// largest level assigned, and whether every vertex was reached.
//
// Each level is one vector-matrix product over the Boolean semiring: the
// current frontier is multiplied into the adjacency pattern, masked by
// the complement of the levels structure so already-visited vertices are
// never rediscovered. Reading the frontier size is the per-level
// observation point.
//
// Complexity: O(levels · (V + E)) work, O(V) extra memory.
func BFSLevels[T any](a *matrix.Matrix[T], source int) (*vector.Vector[int], int, bool, core.RC) {
	n := a.Rows()
	if a.Cols() != n {
		return nil, 0, false, core.Mismatch
	}
	if source < 0 || source >= n {
		return nil, 0, false, core.Mismatch
	}

	levels := vector.New[int](n, n)
	frontier := vector.New[bool](n, n)
	next := vector.New[bool](n, n)

	if rc := ops.BuildVector(levels, []int{source}, []int{0}); rc != core.Success {
		return nil, 0, false, rc
	}
	if rc := ops.BuildVector(frontier, []int{source}, []bool{true}); rc != core.Success {
		return nil, 0, false, rc
	}

	// Pattern sweep: the multiply ignores the stored edge value and
	// forwards the frontier flag; lor combines parallel discoveries.
	reach := algebra.NewSemiring(algebra.LorMonoid(),
		algebra.Operator[T, bool, bool]{Apply: func(_ T, f bool) bool { return f }})

	maxLevel := 0
	reached := 1
	for level := 1; level <= n; level++ {
		if rc := ops.ClearVector(next); rc != core.Success {
			return nil, 0, false, rc
		}
		// Discover the unvisited out-neighborhood of the frontier.
		if rc := ops.VxM(next, levels, frontier, a, reach,
			core.Structural|core.InvertMask, core.Execute); rc != core.Success {
			return nil, 0, false, rc
		}
		// Stamp the new vertices with their distance.
		if rc := ops.SetScalarMasked(levels, next, level,
			core.Structural, core.Execute); rc != core.Success {
			return nil, 0, false, rc
		}
		nnz, rc := ops.NnzVector(next)
		if rc != core.Success {
			return nil, 0, false, rc
		}
		if nnz == 0 {
			break
		}
		maxLevel = level
		reached += nnz
		frontier, next = next, frontier
	}

	return levels, maxLevel, reached == n, core.Success
}
