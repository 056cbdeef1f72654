package services

import (
	"context"

	"github.com/kaezarrex/regularity/internal/engine"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// DashService records ranged activities through the consolidation engine
// and serves dash queries from the store.
type DashService struct {
	store  store.Store
	engine *engine.Engine
}

func NewDashService(s store.Store, e *engine.Engine) *DashService {
	return &DashService{store: s, engine: e}
}

// LogDash records a ranged activity. A zero start defaults to now; a zero
// end defaults to the start, yielding a zero-duration dash that still
// participates in consolidation.
func (s *DashService) LogDash(ctx context.Context, d *model.Dash) (*model.Dash, error) {
	if err := validateKey(d.OwnerID, d.Timeline, d.Name); err != nil {
		return nil, err
	}
	if d.Start.IsZero() {
		d.Start = model.Now()
	}
	if d.End.IsZero() {
		d.End = d.Start
	}
	return s.engine.LogDash(ctx, d)
}

func (s *DashService) GetDash(ctx context.Context, ownerID, dashID string) (*model.Dash, error) {
	return s.store.Dashes().Get(ctx, ownerID, dashID)
}

func (s *DashService) DeleteDash(ctx context.Context, ownerID, dashID string) error {
	return s.store.Dashes().Delete(ctx, ownerID, dashID)
}

func (s *DashService) ListDashes(ctx context.Context, req model.SearchRequest) ([]*model.Dash, error) {
	return s.store.Dashes().Search(ctx, req)
}
