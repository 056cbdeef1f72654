// Package engine implements the interval consolidation algorithm: when a
// ranged activity is logged, existing activities of the same name within
// the contiguity buffer are merged into one spanning record, and on
// timelines that forbid overlap, conflicting activities of other names
// are truncated or split around the new range.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/kaezarrex/regularity/internal/interval"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// DefaultBuffer is the canonical contiguity buffer: two same-name dashes
// closer than this are treated as one continuous activity.
const DefaultBuffer = 5 * time.Second

const (
	policyTTL     = 5 * time.Minute
	policySweep   = 10 * time.Minute
	noteSeparator = "\n\n"
)

// Engine performs consolidated dash writes against a store. The store
// handle is explicit; the engine owns no global state.
type Engine struct {
	store    store.Store
	buffer   time.Duration
	policies *gocache.Cache
	locks    *keyLocks
}

// New creates an Engine with the given contiguity buffer. A negative
// buffer falls back to DefaultBuffer; zero disables the tolerance window
// so only literally touching ranges merge.
func New(s store.Store, buffer time.Duration) *Engine {
	if buffer < 0 {
		buffer = DefaultBuffer
	}
	return &Engine{
		store:    s,
		buffer:   buffer,
		policies: gocache.New(policyTTL, policySweep),
		locks:    newKeyLocks(),
	}
}

// Buffer returns the configured contiguity buffer.
func (e *Engine) Buffer() time.Duration { return e.buffer }

// LogDash records a ranged activity, consolidating it with any same-name
// dashes within the buffer and enforcing the timeline's overlap policy.
// The returned dash is the stored record after consolidation; its id is
// the id of the earliest-ending overlapping record when a merge occurred,
// so external references survive merges where possible.
func (e *Engine) LogDash(ctx context.Context, d *model.Dash) (*model.Dash, error) {
	if d.End.Before(d.Start.Time) {
		return nil, model.ErrInvalidRange
	}

	unlock := e.locks.lock(d.OwnerID, d.Timeline)
	defer unlock()

	allowOverlap, err := e.timelinePolicy(ctx, d.OwnerID, d.Timeline)
	if err != nil {
		return nil, err
	}

	winStart, winEnd := interval.Window(d.Start.Time, d.End.Time, e.buffer)
	overlapping, err := e.store.Dashes().FindOverlapping(ctx, d.OwnerID, d.Timeline, d.Name, winStart, winEnd)
	if err != nil {
		return nil, err
	}

	merged := *d
	var puts []*model.Dash
	var removes []string

	if len(overlapping) > 0 {
		// The earliest-ending record keeps its id across the merge.
		merged.DashID = overlapping[0].DashID

		spans := make([]interval.Range, len(overlapping))
		for i, o := range overlapping {
			spans[i] = interval.Range{Start: o.Start.Time, End: o.End.Time}
		}
		start, end := interval.Union(spans, d.Start.Time, d.End.Time)
		merged.Start = model.At(start)
		merged.End = model.At(end)

		var notes []string
		if d.Note != nil && *d.Note != "" {
			notes = append(notes, *d.Note)
		}
		for _, o := range overlapping {
			if o.Note != nil && *o.Note != "" {
				notes = append(notes, *o.Note)
			}
			if o.DashID != merged.DashID {
				removes = append(removes, o.DashID)
			}
		}
		merged.Note = nil
		if len(notes) > 0 {
			joined := strings.Join(notes, noteSeparator)
			merged.Note = &joined
		}
	} else {
		merged.DashID = uuid.New().String()
	}
	puts = append(puts, &merged)

	if !allowOverlap {
		conflictPuts, err := e.resolveConflicts(ctx, &merged)
		if err != nil {
			return nil, err
		}
		puts = append(puts, conflictPuts...)
	}

	if err := e.store.Dashes().Apply(ctx, d.OwnerID, puts, removes); err != nil {
		return nil, err
	}
	return &merged, nil
}

// resolveConflicts carves the merged range out of different-name dashes on
// an exclusive timeline. New writes always win:
//   - a conflict ending inside the new range is truncated to end where the
//     new range starts;
//   - a conflict starting inside is truncated to start where the new range
//     ends;
//   - a conflict containing the new range is split in two, the earlier
//     remnant keeping the original id.
//
// Zero-length remnants are kept rather than dropped. The conflict scan is
// unbuffered: only genuine time overlap is carved, near-misses are left
// alone.
func (e *Engine) resolveConflicts(ctx context.Context, merged *model.Dash) ([]*model.Dash, error) {
	conflicts, err := e.store.Dashes().FindConflicting(
		ctx, merged.OwnerID, merged.Timeline, merged.Name, merged.Start.Time, merged.End.Time)
	if err != nil {
		return nil, err
	}

	var puts []*model.Dash
	for _, r := range conflicts {
		switch {
		case r.End.Before(merged.End.Time):
			r.End = merged.Start
			puts = append(puts, r)
		case r.Start.After(merged.Start.Time):
			r.Start = merged.End
			puts = append(puts, r)
		default:
			left := *r
			left.End = merged.Start
			right := *r
			right.DashID = uuid.New().String()
			right.Start = merged.End
			puts = append(puts, &left, &right)
		}
	}
	return puts, nil
}

// timelinePolicy returns the timeline's allow-overlap flag, creating the
// timeline with the default policy on first use. Results are cached with
// a short TTL; InvalidatePolicy drops the cached value after an explicit
// policy change.
func (e *Engine) timelinePolicy(ctx context.Context, ownerID, timeline string) (bool, error) {
	key := ownerID + "\x00" + timeline
	if v, ok := e.policies.Get(key); ok {
		return v.(bool), nil
	}
	tl, err := e.store.Timelines().Ensure(ctx, ownerID, timeline)
	if err != nil {
		return false, err
	}
	e.policies.Set(key, tl.AllowOverlap, gocache.DefaultExpiration)
	return tl.AllowOverlap, nil
}

// InvalidatePolicy discards the cached overlap policy for a timeline.
func (e *Engine) InvalidatePolicy(ownerID, timeline string) {
	e.policies.Delete(ownerID + "\x00" + timeline)
}
