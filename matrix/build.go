package matrix

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alpgo/grb/core"
)

// BuildUnique ingests a range of nonzero triples with unique coordinates
// into an empty (or cleared) matrix. Sequential mode walks the iterator
// once on the calling goroutine; Parallel mode partitions a RandomAccess
// range across the configured worker count. Duplicate coordinates yield
// ErrDuplicate; out-of-range coordinates yield ErrIndexRange. On any
// error the matrix is left cleared.
func BuildUnique[T any](a *Matrix[T], it Iterator[T], mode BuildMode) error {
	a.Clear()
	var err error
	if mode == Parallel {
		ra, ok := it.(RandomAccess[T])
		if !ok {
			return ErrNotRandom
		}
		err = buildParallel(a, ra)
	} else {
		err = buildSequential(a, it)
	}
	if err != nil {
		a.Clear()
		return err
	}
	if rc := a.EndWrite(); rc != core.Success {
		a.Clear()
		return rc.Err()
	}
	return nil
}

func buildSequential[T any](a *Matrix[T], it Iterator[T]) error {
	// Forward-only ranges are walked once; buffer the triples so the
	// counting pass and the fill pass see the same data.
	var buf []Triple[T]
	if ra, ok := it.(RandomAccess[T]); ok {
		buf = make([]Triple[T], ra.Len())
		for k := range buf {
			buf[k].I, buf[k].J, buf[k].V = ra.At(k)
		}
	} else {
		for it.Next() {
			buf = append(buf, Triple[T]{I: it.I(), J: it.J(), V: it.V()})
		}
	}

	counts := make([]int, a.m+1)
	for _, t := range buf {
		if t.I < 0 || t.I >= a.m || t.J < 0 || t.J >= a.n {
			return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndexRange, t.I, t.J, a.m, a.n)
		}
		counts[t.I+1]++
	}
	for i := 0; i < a.m; i++ {
		counts[i+1] += counts[i]
	}
	if rc := a.EnsureCapacity(counts[a.m]); rc != core.Success {
		return rc.Err()
	}
	copy(a.crs.start, counts)

	cursor := make([]int, a.m)
	copy(cursor, counts[:a.m])
	for _, t := range buf {
		at := cursor[t.I]
		cursor[t.I]++
		a.crs.ind[at] = t.J
		a.crs.vals[at] = t.V
	}
	return sortAndCheckRows(a, 0, a.m)
}

func buildParallel[T any](a *Matrix[T], ra RandomAccess[T]) error {
	cfg := core.DefaultConfig()
	workers := cfg.Workers
	total := ra.Len()
	if workers > total {
		workers = total
	}
	if workers == 0 {
		return nil
	}
	chunk := (total + workers - 1) / workers

	// Pass 1: per-worker, per-row counts.
	counts := make([][]int, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			lo, hi := w*chunk, (w+1)*chunk
			if hi > total {
				hi = total
			}
			local := make([]int, a.m)
			for k := lo; k < hi; k++ {
				i, j, _ := ra.At(k)
				if i < 0 || i >= a.m || j < 0 || j >= a.n {
					return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndexRange, i, j, a.m, a.n)
				}
				local[i]++
			}
			counts[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Row pointers and per-worker row offsets.
	rowPtr := make([]int, a.m+1)
	for i := 0; i < a.m; i++ {
		sum := 0
		for w := 0; w < workers; w++ {
			sum += counts[w][i]
		}
		rowPtr[i+1] = rowPtr[i] + sum
	}
	if rc := a.EnsureCapacity(rowPtr[a.m]); rc != core.Success {
		return rc.Err()
	}
	copy(a.crs.start, rowPtr)

	offsets := make([][]int, workers)
	for w := 0; w < workers; w++ {
		offsets[w] = make([]int, a.m)
	}
	for i := 0; i < a.m; i++ {
		at := rowPtr[i]
		for w := 0; w < workers; w++ {
			offsets[w][i] = at
			at += counts[w][i]
		}
	}

	// Pass 2: fill. Workers own disjoint slots by construction.
	var fill errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		fill.Go(func() error {
			lo, hi := w*chunk, (w+1)*chunk
			if hi > total {
				hi = total
			}
			cursor := offsets[w]
			for k := lo; k < hi; k++ {
				i, j, v := ra.At(k)
				at := cursor[i]
				cursor[i]++
				a.crs.ind[at] = j
				a.crs.vals[at] = v
			}
			return nil
		})
	}
	if err := fill.Wait(); err != nil {
		return err
	}

	// Pass 3: per-row sort and duplicate detection, row-partitioned.
	var check errgroup.Group
	rows := (a.m + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*rows, (w+1)*rows
		if hi > a.m {
			hi = a.m
		}
		if lo >= hi {
			continue
		}
		check.Go(func() error { return sortAndCheckRows(a, lo, hi) })
	}
	return check.Wait()
}

// sortAndCheckRows orders each row of [lo, hi) by column and rejects
// duplicate coordinates.
func sortAndCheckRows[T any](a *Matrix[T], lo, hi int) error {
	for i := lo; i < hi; i++ {
		s, e := a.crs.start[i], a.crs.start[i+1]
		ind := a.crs.ind[s:e]
		vals := a.crs.vals[s:e]
		sort.Sort(&rowSorter[T]{ind: ind, vals: vals})
		for k := 1; k < len(ind); k++ {
			if ind[k] == ind[k-1] {
				return fmt.Errorf("%w: (%d,%d)", ErrDuplicate, i, ind[k])
			}
		}
	}
	return nil
}

// rowSorter co-sorts a row's column indices and values.
type rowSorter[T any] struct {
	ind  []int
	vals []T
}

func (r *rowSorter[T]) Len() int           { return len(r.ind) }
func (r *rowSorter[T]) Less(a, b int) bool { return r.ind[a] < r.ind[b] }
func (r *rowSorter[T]) Swap(a, b int) {
	r.ind[a], r.ind[b] = r.ind[b], r.ind[a]
	r.vals[a], r.vals[b] = r.vals[b], r.vals[a]
}
