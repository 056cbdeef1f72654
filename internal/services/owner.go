// Package services holds the use-case layer: one service struct per
// entity, each a thin orchestration over the store and, for ranged
// activities, the consolidation engine.
package services

import (
	"context"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// OwnerService handles owner registration and lookup.
type OwnerService struct {
	store store.Store
}

func NewOwnerService(s store.Store) *OwnerService { return &OwnerService{store: s} }

func (s *OwnerService) CreateOwner(ctx context.Context) (*model.Owner, error) {
	return s.store.Owners().Create(ctx)
}

func (s *OwnerService) GetOwner(ctx context.Context, ownerID string) (*model.Owner, error) {
	return s.store.Owners().Get(ctx, ownerID)
}
