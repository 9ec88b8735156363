package algorithms

import (
	"math"

	"github.com/alpgo/grb/algebra"
	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/matrix"
	"github.com/alpgo/grb/ops"
	"github.com/alpgo/grb/vector"
)

// Float constrains the domains the solver iterates over.
type Float interface {
	~float32 | ~float64
}

// CGOption adjusts solver behavior.
type CGOption func(*cgConfig)

type cgConfig struct {
	tol     float64
	maxIter int
}

// WithTolerance sets the residual 2-norm below which the iteration stops.
// Default 1e-8.
func WithTolerance(tol float64) CGOption {
	return func(c *cgConfig) { c.tol = tol }
}

// WithMaxIterations caps the number of iterations. Default: the system
// size, the theoretical upper bound in exact arithmetic.
func WithMaxIterations(n int) CGOption {
	return func(c *cgConfig) { c.maxIter = n }
}

// CGResult reports how a conjugate-gradient run ended.
type CGResult struct {
	// Iterations is the number of completed iterations.
	Iterations int
	// Residual is the 2-norm of b - A·x at exit.
	Residual float64
	// Converged is true when Residual fell below the tolerance.
	Converged bool
}

// ConjugateGradient solves A·x = b for symmetric positive-definite A,
// refining the initial guess in x in place. Both x and b must be dense.
//
// On convergence it returns Success. When the iteration cap is reached
// first, it returns Failed and x holds the last iterate; the result still
// reports the residual reached. A non-positive curvature p·A·p, which a
// positive-definite A cannot produce, also returns Failed.
//
// Each iteration is one matrix-vector product, two inner products, and
// three elementwise updates. The inner products are the observation
// points; the updates in between fuse into shared pipelines.
func ConjugateGradient[D Float](x *vector.Vector[D], a *matrix.Matrix[D], b *vector.Vector[D], opts ...CGOption) (CGResult, core.RC) {
	n := a.Rows()
	if a.Cols() != n || x.Size() != n || b.Size() != n {
		return CGResult{}, core.Mismatch
	}
	cfg := cgConfig{tol: 1e-8, maxIter: n}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tol <= 0 || cfg.maxIter < 0 {
		return CGResult{}, core.Illegal
	}
	if rc := ops.Wait(x, b); rc != core.Success {
		return CGResult{}, rc
	}
	if !x.Dense() || !b.Dense() {
		return CGResult{}, core.Illegal
	}

	ring := algebra.PlusTimes[D]()
	desc := core.DefaultDescriptor

	r := vector.New[D](n, n)
	p := vector.New[D](n, n)
	ap := vector.New[D](n, n)

	xv, rv, pv, apv := x.Values(), r.Values(), p.Values(), ap.Values()

	// r = b - A·x, p = r.
	if rc := ops.SetVector(r, b, desc, core.Execute); rc != core.Success {
		return CGResult{}, rc
	}
	if rc := ops.SetScalar[D](ap, 0, desc, core.Execute); rc != core.Success {
		return CGResult{}, rc
	}
	if rc := ops.MxV[D, D, D, bool](ap, nil, a, x, ring, desc, core.Execute); rc != core.Success {
		return CGResult{}, rc
	}
	if rc := ops.EWiseLambda(r, func(i int) { rv[i] -= apv[i] }, ap); rc != core.Success {
		return CGResult{}, rc
	}
	if rc := ops.SetVector(p, r, desc, core.Execute); rc != core.Success {
		return CGResult{}, rc
	}

	var rr D
	if rc := ops.Dot(&rr, r, r, ring, desc); rc != core.Success {
		return CGResult{}, rc
	}
	residual := math.Sqrt(float64(rr))
	if residual <= cfg.tol {
		return CGResult{Residual: residual, Converged: true}, core.Success
	}

	for k := 1; k <= cfg.maxIter; k++ {
		if rc := ops.SetScalar[D](ap, 0, desc, core.Execute); rc != core.Success {
			return CGResult{}, rc
		}
		if rc := ops.MxV[D, D, D, bool](ap, nil, a, p, ring, desc, core.Execute); rc != core.Success {
			return CGResult{}, rc
		}
		var pap D
		if rc := ops.Dot(&pap, p, ap, ring, desc); rc != core.Success {
			return CGResult{}, rc
		}
		if pap <= 0 {
			return CGResult{Iterations: k - 1, Residual: residual}, core.Failed
		}

		alpha := rr / pap
		if rc := ops.EWiseLambda(x, func(i int) { xv[i] += alpha * pv[i] }, p); rc != core.Success {
			return CGResult{}, rc
		}
		if rc := ops.EWiseLambda(r, func(i int) { rv[i] -= alpha * apv[i] }, ap); rc != core.Success {
			return CGResult{}, rc
		}

		var rrNext D
		if rc := ops.Dot(&rrNext, r, r, ring, desc); rc != core.Success {
			return CGResult{}, rc
		}
		residual = math.Sqrt(float64(rrNext))
		if residual <= cfg.tol {
			if rc := ops.Wait(x); rc != core.Success {
				return CGResult{}, rc
			}
			return CGResult{Iterations: k, Residual: residual, Converged: true}, core.Success
		}

		beta := rrNext / rr
		if rc := ops.EWiseLambda(p, func(i int) { pv[i] = rv[i] + beta*pv[i] }, r); rc != core.Success {
			return CGResult{}, rc
		}
		rr = rrNext
	}

	// Flush the trailing search-direction update so x is quiescent.
	if rc := ops.Wait(x); rc != core.Success {
		return CGResult{}, rc
	}
	return CGResult{Iterations: cfg.maxIter, Residual: residual}, core.Failed
}
