package catalog

import (
	"context"

	"github.com/emedico/backend/internal/domain/catalog"
)

// Service serves catalog browsing
type Service struct {
	repo catalog.MedicineRepository
}

// NewService creates a new catalog service
func NewService(repo catalog.MedicineRepository) *Service {
	return &Service{repo: repo}
}

// ListInput carries the raw catalog view parameters
type ListInput struct {
	Search   string
	Category string
	Sort     string
}

// List returns the medicines matching input
func (s *Service) List(ctx context.Context, input ListInput) ([]catalog.Medicine, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(items, catalog.Query{
		Search:   input.Search,
		Category: input.Category,
		Sort:     catalog.ParseSortKey(input.Sort),
	}), nil
}

// Get returns one medicine or shared.ErrNotFound
func (s *Service) Get(ctx context.Context, id string) (*catalog.Medicine, error) {
	return s.repo.FindByID(ctx, id)
}

// Categories returns the category filter options
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(items), nil
}
