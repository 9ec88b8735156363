package vector_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/core"
	"github.com/alpgo/grb/vector"
)

// TestNew_CapacityClamp checks the capacity policy at construction.
func TestNew_CapacityClamp(t *testing.T) {
	v := vector.New[float64](10, 4)
	require.Equal(t, 10, v.Size())
	require.Equal(t, 4, v.Capacity())
	require.Equal(t, 0, v.Nonzeroes())

	full := vector.New[float64](10, -1)
	require.Equal(t, 10, full.Capacity())

	over := vector.New[float64](10, 99)
	require.Equal(t, 10, over.Capacity())
}

// TestSetElement_AndAt covers presence semantics: absent is not zero.
func TestSetElement_AndAt(t *testing.T) {
	v := vector.New[float64](8, 8)
	require.NoError(t, v.SetElement(3, 2.5))

	val, ok := v.At(3)
	require.True(t, ok)
	require.Equal(t, 2.5, val)

	_, ok = v.At(2)
	require.False(t, ok, "unset index must be absent, not zero")
	_, ok = v.At(-1)
	require.False(t, ok)
	require.ErrorIs(t, v.SetElement(8, 1), vector.ErrIndexRange)
}

// TestCapacityZero_ReadOnly: a capacity-0 vector rejects entry creation.
func TestCapacityZero_ReadOnly(t *testing.T) {
	v := vector.New[int](5, 0)
	require.ErrorIs(t, v.SetElement(0, 1), vector.ErrReadOnly)
	require.ErrorIs(t, v.Build([]int{1}, []int{7}), vector.ErrReadOnly)
}

// TestBuild_RoundTrip ingests entries and iterates them back.
func TestBuild_RoundTrip(t *testing.T) {
	v := vector.New[int](10, 2)
	require.NoError(t, v.Build([]int{7, 1, 4}, []int{70, 10, 40}))
	require.Equal(t, 3, v.Nonzeroes())
	require.GreaterOrEqual(t, v.Capacity(), 3, "Build grows capacity on demand")

	got := map[int]int{}
	v.Iterate(func(i, val int) { got[i] = val })
	require.Equal(t, map[int]int{7: 70, 1: 10, 4: 40}, got)
}

// TestBuild_Errors verifies duplicates and bad indices reset the vector.
func TestBuild_Errors(t *testing.T) {
	v := vector.New[int](10, 10)
	require.ErrorIs(t, v.Build([]int{1, 1}, []int{5, 6}), vector.ErrDuplicate)
	require.Equal(t, 0, v.Nonzeroes(), "failed Build leaves the vector unchanged")

	require.ErrorIs(t, v.Build([]int{1, 12}, []int{5, 6}), vector.ErrIndexRange)
	require.Equal(t, 0, v.Nonzeroes())

	require.ErrorIs(t, v.Build([]int{1}, []int{5, 6}), core.ErrMismatch)
}

// TestClear_Invariants: clear empties, capacity stays.
func TestClear_Invariants(t *testing.T) {
	v := vector.New[float64](6, 6)
	require.NoError(t, v.SetElement(2, 1))
	v.Clear()
	require.Equal(t, 0, v.Nonzeroes())
	require.Equal(t, 6, v.Capacity())
	_, ok := v.At(2)
	require.False(t, ok)
}

// TestCoordinates_SubsetJoin simulates a two-tile pipeline execution with
// tile-local assignment and a final join.
func TestCoordinates_SubsetJoin(t *testing.T) {
	c := vector.NewCoordinates(10, 10)
	c.BeginSubsets(2)

	// tile 0 owns [0,5), tile 1 owns [5,10)
	require.True(t, c.AssignLocal(0, 1))
	require.True(t, c.AssignLocal(0, 3))
	require.True(t, c.AssignLocal(1, 7))
	require.False(t, c.AssignLocal(1, 7), "second assignment is not fresh")
	require.Equal(t, 3, c.PendingSubsets())
	require.Equal(t, 0, c.Nonzeroes(), "not visible before join")

	require.True(t, c.JoinSubsets())
	require.Equal(t, 3, c.Nonzeroes())

	var idx []int
	for k := 0; k < c.Nonzeroes(); k++ {
		idx = append(idx, c.Index(k))
	}
	sort.Ints(idx)
	require.Equal(t, []int{1, 3, 7}, idx)
}

// TestCoordinates_JoinOverflow rolls back when capacity is exceeded.
func TestCoordinates_JoinOverflow(t *testing.T) {
	c := vector.NewCoordinates(10, 1)
	c.BeginSubsets(1)
	require.True(t, c.AssignLocal(0, 2))
	require.True(t, c.AssignLocal(0, 4))
	require.False(t, c.JoinSubsets(), "two new entries exceed capacity 1")
	require.Equal(t, 0, c.Nonzeroes())
	require.False(t, c.Assigned(2))
	require.False(t, c.Assigned(4))
}

// TestCoordinates_DiscardSubsets rolls back unjoined assignments, as on
// an aborted pipeline.
func TestCoordinates_DiscardSubsets(t *testing.T) {
	c := vector.NewCoordinates(10, 10)
	c.BeginSubsets(2)
	require.True(t, c.AssignLocal(0, 1))
	require.True(t, c.AssignLocal(1, 8))
	require.Equal(t, 2, c.PendingSubsets())

	c.DiscardSubsets()
	require.Equal(t, 0, c.Nonzeroes())
	require.Equal(t, 0, c.PendingSubsets())
	require.False(t, c.Assigned(1))
	require.False(t, c.Assigned(8))

	// The tracker is reusable after the rollback.
	c.BeginSubsets(1)
	require.True(t, c.AssignLocal(0, 1))
	require.True(t, c.JoinSubsets())
	require.Equal(t, 1, c.Nonzeroes())
	require.True(t, c.Assigned(1))
}

// TestCoordinates_DenseAndGrow checks AssignAll and capacity growth.
func TestCoordinates_DenseAndGrow(t *testing.T) {
	c := vector.NewCoordinates(4, 2)
	require.False(t, c.AssignAll(), "AssignAll needs full capacity")
	require.True(t, c.GrowCapacity(4))
	require.True(t, c.AssignAll())
	require.True(t, c.Dense())
	require.False(t, c.GrowCapacity(2), "shrinking below nnz is refused")
}
