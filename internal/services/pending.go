package services

import (
	"context"
	"errors"

	"github.com/kaezarrex/regularity/internal/engine"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// PendingService drives the open-activity lifecycle. A pending is keyed
// by (owner, timeline, name) with at most one open per key; it ends by
// being cancelled, or finished into a dash through the engine.
type PendingService struct {
	store  store.Store
	engine *engine.Engine
}

func NewPendingService(s store.Store, e *engine.Engine) *PendingService {
	return &PendingService{store: s, engine: e}
}

// StartPending opens a pending for the key. A second start on an open key
// fails with ErrAlreadyPending.
func (s *PendingService) StartPending(ctx context.Context, p *model.Pending) (*model.Pending, error) {
	if err := validateKey(p.OwnerID, p.Timeline, p.Name); err != nil {
		return nil, err
	}
	if p.Start.IsZero() {
		p.Start = model.Now()
	}
	if _, err := s.store.Timelines().Ensure(ctx, p.OwnerID, p.Timeline); err != nil {
		return nil, err
	}
	return s.store.Pendings().Create(ctx, p)
}

// FinishPending closes the open pending for the key, converting it into a
// dash spanning [pending.start, end] with the pending's note carried
// over. A zero end defaults to now. The pending is deleted only after the
// dash write succeeds, so a failed write leaves it open.
func (s *PendingService) FinishPending(ctx context.Context, ownerID, timeline, name string, end model.Time) (*model.Dash, error) {
	if err := validateKey(ownerID, timeline, name); err != nil {
		return nil, err
	}
	p, err := s.store.Pendings().FindOne(ctx, ownerID, timeline, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNoPending
		}
		return nil, err
	}
	if end.IsZero() {
		end = model.Now()
	}
	d, err := s.engine.LogDash(ctx, &model.Dash{
		OwnerID:  ownerID,
		Timeline: timeline,
		Name:     name,
		Start:    p.Start,
		End:      end,
		Note:     p.Note,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Pendings().Delete(ctx, ownerID, p.PendingID); err != nil {
		return nil, err
	}
	return d, nil
}

// CancelPending deletes the open pending for the key without recording a
// dash. Cancelling an absent pending is a no-op.
func (s *PendingService) CancelPending(ctx context.Context, ownerID, timeline, name string) error {
	if err := validateKey(ownerID, timeline, name); err != nil {
		return err
	}
	p, err := s.store.Pendings().FindOne(ctx, ownerID, timeline, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.Pendings().Delete(ctx, ownerID, p.PendingID)
}

func (s *PendingService) ListPendings(ctx context.Context, req model.SearchRequest) ([]*model.Pending, error) {
	return s.store.Pendings().Search(ctx, req)
}
