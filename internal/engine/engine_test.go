package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store/memstore"
)

var day = time.Date(2012, 3, 14, 0, 0, 0, 0, time.UTC)

// clock builds a model.Time at hh:mm:ss on the test day.
func clock(hh, mm, ss int) model.Time {
	return model.At(day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second))
}

func note(s string) *string { return &s }

func dash(owner, timeline, name string, start, end model.Time) *model.Dash {
	return &model.Dash{OwnerID: owner, Timeline: timeline, Name: name, Start: start, End: end}
}

func listDashes(t *testing.T, e *Engine, owner string) []*model.Dash {
	t.Helper()
	out, err := e.store.Dashes().Search(context.Background(), model.SearchRequest{OwnerID: owner})
	require.NoError(t, err)
	return out
}

func newEngine() *Engine { return New(memstore.New(), DefaultBuffer) }

func TestLogDashCreatesRecord(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	got, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)
	assert.NotEmpty(t, got.DashID)
	assert.Len(t, listDashes(t, e, "u1"), 1)
}

func TestLogDashRejectsInvertedRange(t *testing.T) {
	e := newEngine()
	_, err := e.LogDash(context.Background(), dash("u1", "work", "coding", clock(10, 10, 0), clock(10, 0, 0)))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestLogDashMergesWithinBuffer(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	first, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)

	// 3s gap, within the 5s buffer: the two collapse into one record
	// spanning the union, keeping the first record's id.
	second, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 10, 3), clock(10, 20, 0)))
	require.NoError(t, err)

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	assert.Equal(t, first.DashID, second.DashID)
	assert.True(t, all[0].Start.Equal(clock(10, 0, 0).Time))
	assert.True(t, all[0].End.Equal(clock(10, 20, 0).Time))
}

func TestLogDashDoesNotMergeBeyondBuffer(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)

	// 10s gap, beyond the 5s buffer: two distinct records remain.
	_, err = e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 10, 10), clock(10, 20, 0)))
	require.NoError(t, err)

	assert.Len(t, listDashes(t, e, "u1"), 2)
}

func TestLogDashIsIdempotent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	d := dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0))
	first, err := e.LogDash(ctx, d)
	require.NoError(t, err)
	second, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	assert.Equal(t, first.DashID, second.DashID)
	assert.True(t, all[0].Start.Equal(first.Start.Time))
	assert.True(t, all[0].End.Equal(first.End.Time))
}

func TestLogDashMergeIsMonotonic(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	inputs := []*model.Dash{
		dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 5, 0)),
		dash("u1", "work", "coding", clock(10, 4, 0), clock(10, 12, 0)),
		dash("u1", "work", "coding", clock(10, 11, 0), clock(10, 15, 0)),
	}
	for _, in := range inputs {
		_, err := e.LogDash(ctx, dash(in.OwnerID, in.Timeline, in.Name, in.Start, in.End))
		require.NoError(t, err)
	}

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	for _, in := range inputs {
		assert.False(t, all[0].Start.After(in.Start.Time), "merged start must not exceed %v", in.Start)
		assert.False(t, all[0].End.Before(in.End.Time), "merged end must not precede %v", in.End)
	}
}

func TestLogDashPreservesEarliestEndingID(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	a, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 5, 0)))
	require.NoError(t, err)
	_, err = e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 20, 0), clock(10, 30, 0)))
	require.NoError(t, err)

	// spans both: a ends earliest, so its id survives
	merged, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 4, 0), clock(10, 21, 0)))
	require.NoError(t, err)

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	assert.Equal(t, a.DashID, merged.DashID)
}

func TestLogDashConcatenatesNotes(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	d1 := dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 5, 0))
	d1.Note = note("kernel refactor")
	_, err := e.LogDash(ctx, d1)
	require.NoError(t, err)

	d2 := dash("u1", "work", "coding", clock(10, 5, 2), clock(10, 10, 0))
	d2.Note = note("code review")
	_, err = e.LogDash(ctx, d2)
	require.NoError(t, err)

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Note)
	// new note first, then the overlapped record's note, blank-line separated
	assert.Equal(t, "code review\n\nkernel refactor", *all[0].Note)
}

func TestLogDashZeroDurationParticipates(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 0, 0)))
	require.NoError(t, err)
	_, err = e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 3), clock(10, 5, 0)))
	require.NoError(t, err)

	all := listDashes(t, e, "u1")
	require.Len(t, all, 1)
	assert.True(t, all[0].Start.Equal(clock(10, 0, 0).Time))
}

func TestLogDashDifferentNamesDoNotMerge(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)
	_, err = e.LogDash(ctx, dash("u1", "work", "meeting", clock(10, 5, 0), clock(10, 15, 0)))
	require.NoError(t, err)

	// default policy allows overlap, so both survive untouched
	assert.Len(t, listDashes(t, e, "u1"), 2)
}

func TestLogDashDifferentTimelinesDoNotMerge(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)
	_, err = e.LogDash(ctx, dash("u1", "personal", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)

	assert.Len(t, listDashes(t, e, "u1"), 2)
}

func TestLogDashOwnersAreIsolated(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.LogDash(ctx, dash("u1", "work", "coding", clock(10, 0, 0), clock(10, 10, 0)))
	require.NoError(t, err)
	_, err = e.LogDash(ctx, dash("u2", "work", "coding", clock(10, 5, 0), clock(10, 15, 0)))
	require.NoError(t, err)

	assert.Len(t, listDashes(t, e, "u1"), 1)
	assert.Len(t, listDashes(t, e, "u2"), 1)
}

func exclusiveTimeline(t *testing.T, e *Engine, owner, name string) {
	t.Helper()
	_, err := e.store.Timelines().Create(context.Background(),
		&model.Timeline{OwnerID: owner, Name: name, AllowOverlap: false})
	require.NoError(t, err)
}

func TestExclusiveTimelineSplitsContainingActivity(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	exclusiveTimeline(t, e, "u1", "day")

	_, err := e.LogDash(ctx, dash("u1", "day", "sleep", clock(1, 0, 0), clock(9, 0, 0)))
	require.NoError(t, err)

	// logging B fully inside A leaves two remnants of A flanking B
	_, err = e.LogDash(ctx, dash("u1", "day", "feed cat", clock(5, 0, 0), clock(5, 30, 0)))
	require.NoError(t, err)

	sleeps, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "sleep"})
	require.NoError(t, err)
	require.Len(t, sleeps, 2)
	assert.True(t, sleeps[0].Start.Equal(clock(1, 0, 0).Time))
	assert.True(t, sleeps[0].End.Equal(clock(5, 0, 0).Time))
	assert.True(t, sleeps[1].Start.Equal(clock(5, 30, 0).Time))
	assert.True(t, sleeps[1].End.Equal(clock(9, 0, 0).Time))

	cats, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "feed cat"})
	require.NoError(t, err)
	require.Len(t, cats, 1)
}

func TestExclusiveTimelineTruncatesPrecedingActivity(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	exclusiveTimeline(t, e, "u1", "day")

	_, err := e.LogDash(ctx, dash("u1", "day", "sleep", clock(1, 0, 0), clock(9, 0, 0)))
	require.NoError(t, err)

	// new range overlaps A's tail: A is cut to end where the new one starts
	_, err = e.LogDash(ctx, dash("u1", "day", "breakfast", clock(8, 30, 0), clock(9, 15, 0)))
	require.NoError(t, err)

	sleeps, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "sleep"})
	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	assert.True(t, sleeps[0].End.Equal(clock(8, 30, 0).Time))
}

func TestExclusiveTimelineTruncatesFollowingActivity(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	exclusiveTimeline(t, e, "u1", "day")

	_, err := e.LogDash(ctx, dash("u1", "day", "lunch", clock(12, 0, 0), clock(13, 0, 0)))
	require.NoError(t, err)

	// new range overlaps A's head: A is pushed to start where the new one ends
	_, err = e.LogDash(ctx, dash("u1", "day", "meeting", clock(11, 30, 0), clock(12, 15, 0)))
	require.NoError(t, err)

	lunches, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "lunch"})
	require.NoError(t, err)
	require.Len(t, lunches, 1)
	assert.True(t, lunches[0].Start.Equal(clock(12, 15, 0).Time))
	assert.True(t, lunches[0].End.Equal(clock(13, 0, 0).Time))
}

func TestExclusiveTimelineKeepsZeroLengthRemnant(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	exclusiveTimeline(t, e, "u1", "day")

	_, err := e.LogDash(ctx, dash("u1", "day", "sleep", clock(1, 0, 0), clock(9, 0, 0)))
	require.NoError(t, err)

	// new range starts exactly where the old one does: the left remnant
	// collapses to zero length but is kept
	_, err = e.LogDash(ctx, dash("u1", "day", "gym", clock(1, 0, 0), clock(2, 0, 0)))
	require.NoError(t, err)

	sleeps, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "sleep"})
	require.NoError(t, err)
	require.Len(t, sleeps, 2)
	assert.True(t, sleeps[0].Start.Equal(sleeps[0].End.Time))
}

func TestExclusiveTimelineIgnoresNearMisses(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	exclusiveTimeline(t, e, "u1", "day")

	_, err := e.LogDash(ctx, dash("u1", "day", "sleep", clock(1, 0, 0), clock(9, 0, 0)))
	require.NoError(t, err)

	// 3s after sleep ends: within the merge buffer, but conflicts are
	// only carved on genuine overlap
	_, err = e.LogDash(ctx, dash("u1", "day", "run", clock(9, 0, 3), clock(9, 30, 0)))
	require.NoError(t, err)

	sleeps, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "sleep"})
	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	assert.True(t, sleeps[0].End.Equal(clock(9, 0, 0).Time))
}

func TestInvalidatePolicyPicksUpNewPolicy(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	// first write creates the timeline implicitly with overlap allowed
	_, err := e.LogDash(ctx, dash("u1", "day", "sleep", clock(1, 0, 0), clock(9, 0, 0)))
	require.NoError(t, err)

	exclusiveTimeline(t, e, "u1", "day")
	e.InvalidatePolicy("u1", "day")

	_, err = e.LogDash(ctx, dash("u1", "day", "gym", clock(2, 0, 0), clock(3, 0, 0)))
	require.NoError(t, err)

	sleeps, err := e.store.Dashes().Search(ctx, model.SearchRequest{OwnerID: "u1", Name: "sleep"})
	require.NoError(t, err)
	assert.Len(t, sleeps, 2)
}
