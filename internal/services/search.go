package services

import (
	"context"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

// SearchService is the fan-out query facade over the three record kinds.
type SearchService struct {
	store store.Store
}

func NewSearchService(s store.Store) *SearchService { return &SearchService{store: s} }

// Search runs the filter against dots, dashes and pendings and returns
// all three result sets.
func (s *SearchService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	dots, err := s.store.Dots().Search(ctx, req)
	if err != nil {
		return nil, err
	}
	dashes, err := s.store.Dashes().Search(ctx, req)
	if err != nil {
		return nil, err
	}
	pendings, err := s.store.Pendings().Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{Dots: dots, Dashes: dashes, Pendings: pendings}, nil
}
