package services

import (
	"context"
	"fmt"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// DotService records and queries instantaneous events. Dots have no
// overlap semantics, so writes go straight to the store.
type DotService struct {
	store store.Store
}

func NewDotService(s store.Store) *DotService { return &DotService{store: s} }

func (s *DotService) LogDot(ctx context.Context, d *model.Dot) (*model.Dot, error) {
	if err := validateKey(d.OwnerID, d.Timeline, d.Name); err != nil {
		return nil, err
	}
	if d.Time.IsZero() {
		d.Time = model.Now()
	}
	if _, err := s.store.Timelines().Ensure(ctx, d.OwnerID, d.Timeline); err != nil {
		return nil, err
	}
	return s.store.Dots().Create(ctx, d)
}

func (s *DotService) GetDot(ctx context.Context, ownerID, dotID string) (*model.Dot, error) {
	return s.store.Dots().Get(ctx, ownerID, dotID)
}

// UpdateDot replaces the dot's fields by id. A zero time keeps the
// stored one.
func (s *DotService) UpdateDot(ctx context.Context, d *model.Dot) (*model.Dot, error) {
	if err := validateKey(d.OwnerID, d.Timeline, d.Name); err != nil {
		return nil, err
	}
	if d.Time.IsZero() {
		cur, err := s.store.Dots().Get(ctx, d.OwnerID, d.DotID)
		if err != nil {
			return nil, err
		}
		d.Time = cur.Time
	}
	return s.store.Dots().Update(ctx, d)
}

func (s *DotService) DeleteDot(ctx context.Context, ownerID, dotID string) error {
	return s.store.Dots().Delete(ctx, ownerID, dotID)
}

func (s *DotService) ListDots(ctx context.Context, req model.SearchRequest) ([]*model.Dot, error) {
	return s.store.Dots().Search(ctx, req)
}

// validateKey checks the record key shared by every write operation.
func validateKey(ownerID, timeline, name string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	if timeline == "" {
		return fmt.Errorf("%w: timeline is required", model.ErrValidation)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	return nil
}
