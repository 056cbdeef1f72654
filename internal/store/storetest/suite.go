// Package storetest holds the conformance suite every store.Store
// implementation must pass. Drivers call Run from their own test files
// with a factory producing a clean, isolated store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

func ts(sec int) model.Time {
	return model.At(time.Date(2012, 3, 14, 10, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second))
}

func note(s string) *string { return &s }

// Run exercises the compliance suite against a store.Store implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Owners
	owner, err := s.Owners().Create(ctx)
	if err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	if owner.OwnerID == "" {
		t.Fatalf("CreateOwner: empty id")
	}
	if got, err := s.Owners().Get(ctx, owner.OwnerID); err != nil || got.OwnerID != owner.OwnerID {
		t.Fatalf("GetOwner: got=%v err=%v", got, err)
	}
	if _, err := s.Owners().Get(ctx, "no-such-owner"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetOwner missing: want ErrNotFound, got %v", err)
	}

	// Timelines: Ensure creates with the default policy and is idempotent.
	tl, err := s.Timelines().Ensure(ctx, owner.OwnerID, "work")
	if err != nil {
		t.Fatalf("EnsureTimeline: %v", err)
	}
	if !tl.AllowOverlap {
		t.Fatalf("EnsureTimeline: default policy must allow overlap")
	}
	if again, err := s.Timelines().Ensure(ctx, owner.OwnerID, "work"); err != nil || !again.AllowOverlap {
		t.Fatalf("EnsureTimeline repeat: got=%v err=%v", again, err)
	}
	if _, err := s.Timelines().Create(ctx, &model.Timeline{OwnerID: owner.OwnerID, Name: "focus", AllowOverlap: false}); err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}
	if got, err := s.Timelines().Get(ctx, owner.OwnerID, "focus"); err != nil || got.AllowOverlap {
		t.Fatalf("GetTimeline: got=%v err=%v", got, err)
	}
	if lst, err := s.Timelines().List(ctx, owner.OwnerID); err != nil || len(lst) != 2 {
		t.Fatalf("ListTimelines: n=%d err=%v", len(lst), err)
	}

	// Dots
	d1, err := s.Dots().Create(ctx, &model.Dot{OwnerID: owner.OwnerID, Timeline: "work", Name: "standup", Time: ts(0)})
	if err != nil {
		t.Fatalf("CreateDot: %v", err)
	}
	if _, err := s.Dots().Create(ctx, &model.Dot{OwnerID: owner.OwnerID, Timeline: "work", Name: "Coffee Break", Time: ts(60)}); err != nil {
		t.Fatalf("CreateDot 2: %v", err)
	}
	if got, err := s.Dots().Get(ctx, owner.OwnerID, d1.DotID); err != nil || got.Name != "standup" {
		t.Fatalf("GetDot: got=%v err=%v", got, err)
	}
	d1.Note = note("ran long")
	if upd, err := s.Dots().Update(ctx, d1); err != nil || upd.Note == nil {
		t.Fatalf("UpdateDot: got=%v err=%v", upd, err)
	}

	// Name filters are case-insensitive substrings.
	if res, err := s.Dots().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID, Name: "coffee"}); err != nil || len(res) != 1 {
		t.Fatalf("SearchDots substring: n=%d err=%v", len(res), err)
	}
	// Limit keeps the most recent N, returned oldest-first.
	if res, err := s.Dots().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID, Limit: 1}); err != nil || len(res) != 1 || !res[0].Time.Equal(ts(60).Time) {
		t.Fatalf("SearchDots limit: res=%v err=%v", res, err)
	}

	// Dashes: Apply is an atomic upsert+delete batch.
	a := &model.Dash{OwnerID: owner.OwnerID, Timeline: "work", Name: "coding", Start: ts(0), End: ts(600), Note: note("first")}
	b := &model.Dash{OwnerID: owner.OwnerID, Timeline: "work", Name: "coding", Start: ts(700), End: ts(900)}
	if err := s.Dashes().Apply(ctx, owner.OwnerID, []*model.Dash{a, b}, nil); err != nil {
		t.Fatalf("ApplyDashes: %v", err)
	}
	all, err := s.Dashes().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID})
	if err != nil || len(all) != 2 {
		t.Fatalf("SearchDashes: n=%d err=%v", len(all), err)
	}
	// Order is ascending by end.
	if !all[0].End.Equal(ts(600).Time) || !all[1].End.Equal(ts(900).Time) {
		t.Fatalf("SearchDashes order: %v %v", all[0].End, all[1].End)
	}

	// FindOverlapping is scoped to the exact name and ordered by end.
	over, err := s.Dashes().FindOverlapping(ctx, owner.OwnerID, "work", "coding", ts(550).Time, ts(800).Time)
	if err != nil || len(over) != 2 {
		t.Fatalf("FindOverlapping: n=%d err=%v", len(over), err)
	}
	if over[0].End.After(over[1].End.Time) {
		t.Fatalf("FindOverlapping order: %v before %v", over[0].End, over[1].End)
	}
	if over, err := s.Dashes().FindOverlapping(ctx, owner.OwnerID, "work", "email", ts(0).Time, ts(900).Time); err != nil || len(over) != 0 {
		t.Fatalf("FindOverlapping wrong name: n=%d err=%v", len(over), err)
	}

	// FindConflicting sees only other names.
	c := &model.Dash{OwnerID: owner.OwnerID, Timeline: "work", Name: "meeting", Start: ts(100), End: ts(200)}
	if err := s.Dashes().Apply(ctx, owner.OwnerID, []*model.Dash{c}, nil); err != nil {
		t.Fatalf("ApplyDashes c: %v", err)
	}
	conf, err := s.Dashes().FindConflicting(ctx, owner.OwnerID, "work", "coding", ts(0).Time, ts(600).Time)
	if err != nil || len(conf) != 1 || conf[0].Name != "meeting" {
		t.Fatalf("FindConflicting: res=%v err=%v", conf, err)
	}

	// Upsert by id replaces in place; removals land in the same batch.
	allDashes, _ := s.Dashes().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID, Name: "coding"})
	first := allDashes[0]
	first.End = ts(950)
	if err := s.Dashes().Apply(ctx, owner.OwnerID, []*model.Dash{first}, []string{allDashes[1].DashID}); err != nil {
		t.Fatalf("ApplyDashes merge: %v", err)
	}
	merged, err := s.Dashes().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID, Name: "coding"})
	if err != nil || len(merged) != 1 || !merged[0].End.Equal(ts(950).Time) {
		t.Fatalf("ApplyDashes merge result: res=%v err=%v", merged, err)
	}

	if err := s.Dashes().Delete(ctx, owner.OwnerID, merged[0].DashID); err != nil {
		t.Fatalf("DeleteDash: %v", err)
	}
	if err := s.Dashes().Delete(ctx, owner.OwnerID, merged[0].DashID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteDash missing: want ErrNotFound, got %v", err)
	}

	// Pendings: one open pending per key.
	pen, err := s.Pendings().Create(ctx, &model.Pending{OwnerID: owner.OwnerID, Timeline: "work", Name: "review", Start: ts(0)})
	if err != nil {
		t.Fatalf("CreatePending: %v", err)
	}
	if _, err := s.Pendings().Create(ctx, &model.Pending{OwnerID: owner.OwnerID, Timeline: "work", Name: "review", Start: ts(10)}); !errors.Is(err, model.ErrAlreadyPending) {
		t.Fatalf("CreatePending duplicate: want ErrAlreadyPending, got %v", err)
	}
	if got, err := s.Pendings().FindOne(ctx, owner.OwnerID, "work", "review"); err != nil || got.PendingID != pen.PendingID {
		t.Fatalf("FindOnePending: got=%v err=%v", got, err)
	}
	if _, err := s.Pendings().FindOne(ctx, owner.OwnerID, "work", "absent"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("FindOnePending missing: want ErrNotFound, got %v", err)
	}
	if res, err := s.Pendings().Search(ctx, model.SearchRequest{OwnerID: owner.OwnerID, Name: "REV"}); err != nil || len(res) != 1 {
		t.Fatalf("SearchPendings: n=%d err=%v", len(res), err)
	}
	if err := s.Pendings().Delete(ctx, owner.OwnerID, pen.PendingID); err != nil {
		t.Fatalf("DeletePending: %v", err)
	}

	// Owner isolation: a foreign id looks identical to a missing one.
	other, err := s.Owners().Create(ctx)
	if err != nil {
		t.Fatalf("CreateOwner other: %v", err)
	}
	foreign, err := s.Dots().Create(ctx, &model.Dot{OwnerID: other.OwnerID, Timeline: "work", Name: "x", Time: ts(0)})
	if err != nil {
		t.Fatalf("CreateDot foreign: %v", err)
	}
	if _, err := s.Dots().Get(ctx, owner.OwnerID, foreign.DotID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetDot cross-owner: want ErrNotFound, got %v", err)
	}
	if res, err := s.Dots().Search(ctx, model.SearchRequest{OwnerID: other.OwnerID}); err != nil || len(res) != 1 {
		t.Fatalf("SearchDots other owner: n=%d err=%v", len(res), err)
	}
}
