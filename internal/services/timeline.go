package services

import (
	"context"
	"fmt"

	"github.com/kaezarrex/regularity/internal/engine"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// TimelineService manages timelines and their overlap policy. Explicit
// creation is only needed to opt a timeline out of overlapping; writes
// against an unknown timeline create it implicitly with the default
// policy.
type TimelineService struct {
	store  store.Store
	engine *engine.Engine
}

func NewTimelineService(s store.Store, e *engine.Engine) *TimelineService {
	return &TimelineService{store: s, engine: e}
}

func (s *TimelineService) CreateTimeline(ctx context.Context, t *model.Timeline) (*model.Timeline, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("%w: timeline name is required", model.ErrValidation)
	}
	if _, err := s.store.Owners().Get(ctx, t.OwnerID); err != nil {
		return nil, err
	}
	out, err := s.store.Timelines().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	// The engine may hold a cached policy from an earlier implicit create.
	s.engine.InvalidatePolicy(t.OwnerID, t.Name)
	return out, nil
}

func (s *TimelineService) GetTimeline(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	return s.store.Timelines().Get(ctx, ownerID, name)
}

func (s *TimelineService) ListTimelines(ctx context.Context, ownerID string) ([]*model.Timeline, error) {
	return s.store.Timelines().List(ctx, ownerID)
}
