// internal/reconcile/plan_test.go
//
// Unit-tests for the pure attendance diff.
//
// Run: go test ./internal/reconcile -v

package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPlanFirstSave(t *testing.T) {
	p, err := BuildPlan(nil, 0, []int64{1, 2, 3}, 2)
	require.NoError(t, err)

	require.Equal(t, []int64{1, 2, 3}, p.Added)
	require.Equal(t, []int64{1, 3}, p.Increments, "host earns promotion, not an increment")
	require.Empty(t, p.Removed)
	require.Empty(t, p.Decrements)
	require.NotNil(t, p.Promote)
	require.Equal(t, int64(2), p.Promote.MemberID)
	require.False(t, p.Promote.WasAttendee)
	require.Nil(t, p.Demote, "no prior host to demote")
}

func TestBuildPlanIdenticalResaveIsEmpty(t *testing.T) {
	p, err := BuildPlan([]int64{1, 2, 3}, 2, []int64{1, 2, 3}, 2)
	require.NoError(t, err)
	require.True(t, p.Empty(), "re-saving the same submission must be a no-op: %+v", p)
}

func TestBuildPlanAttendeeSwap(t *testing.T) {
	// B leaves, C arrives; host A unchanged.
	p, err := BuildPlan([]int64{1, 2}, 1, []int64{1, 3}, 1)
	require.NoError(t, err)

	require.Equal(t, []int64{3}, p.Added)
	require.Equal(t, []int64{3}, p.Increments)
	require.Equal(t, []int64{2}, p.Removed)
	require.Equal(t, []int64{2}, p.Decrements)
	require.Nil(t, p.Promote)
	require.Nil(t, p.Demote)
}

func TestBuildPlanHostChangeBetweenAttendees(t *testing.T) {
	// Both were plain attendees before; the correction moves the hosting
	// from A to B while both keep attending.
	p, err := BuildPlan([]int64{1, 2, 3}, 1, []int64{1, 2, 3}, 2)
	require.NoError(t, err)

	require.Empty(t, p.Added)
	require.Empty(t, p.Removed)
	require.Empty(t, p.Increments)
	require.Empty(t, p.Decrements)

	require.NotNil(t, p.Promote)
	require.Equal(t, int64(2), p.Promote.MemberID)
	require.True(t, p.Promote.WasAttendee,
		"new host already holds this lunch's increment")

	require.NotNil(t, p.Demote)
	require.Equal(t, int64(1), p.Demote.MemberID)
	require.True(t, p.Demote.StillAttending,
		"demoted host stays in the set and earns the increment back")
}

func TestBuildPlanHostRemovedEntirely(t *testing.T) {
	p, err := BuildPlan([]int64{1, 2}, 1, []int64{2, 3}, 3)
	require.NoError(t, err)

	require.Equal(t, []int64{3}, p.Added)
	require.Empty(t, p.Increments, "the only addition is the new host")
	require.Equal(t, []int64{1}, p.Removed)
	require.Empty(t, p.Decrements, "prior host's removal is handled by demotion")

	require.NotNil(t, p.Demote)
	require.Equal(t, int64(1), p.Demote.MemberID)
	require.False(t, p.Demote.StillAttending)
}

func TestBuildPlanRejectsHostOutsideSet(t *testing.T) {
	_, err := BuildPlan(nil, 0, []int64{1, 2}, 9)
	require.True(t, errors.Is(err, ErrInvalidHost))

	_, err = BuildPlan(nil, 0, []int64{1, 2}, 0)
	require.True(t, errors.Is(err, ErrInvalidHost), "zero host is never valid")
}

func TestBuildPlanOutputIsSorted(t *testing.T) {
	p, err := BuildPlan(nil, 0, []int64{9, 4, 7, 1}, 4)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4, 7, 9}, p.Added)
	require.Equal(t, []int64{1, 7, 9}, p.Increments)
}
