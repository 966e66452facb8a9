package services

import (
	"fmt"

	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"go.uber.org/zap"
)

// CatalogService handles business logic related to the product catalog.
type CatalogService struct {
	repo   repositories.ProductRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// Seed fills an empty repository with Generate(n). A repository that
// already holds products is left alone.
func (s *CatalogService) Seed(n int) error {
	count, err := s.repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}
	if count > 0 {
		s.logger.Info("catalog already seeded", zap.Int64("products", count))
		return nil
	}
	products := Generate(n)
	if err := s.repo.CreateBatch(products); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	s.logger.Info("catalog seeded", zap.Int("products", len(products)))
	return nil
}

// CatalogQuery combines filtering, ordering and paging.
type CatalogQuery struct {
	Filter   Filter
	Sort     SortKey
	PageSize int
	Page     int
}

// CatalogPage is one page of a catalog query.
type CatalogPage struct {
	Products []models.Product `json:"products"`
	PageInfo
}

// Query filters, sorts and paginates the catalog.
func (s *CatalogService) Query(q CatalogQuery) (*CatalogPage, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	matched := Sort(q.Filter.Apply(all), q.Sort)
	products, info := Paginate(matched, q.PageSize, q.Page)
	return &CatalogPage{Products: products, PageInfo: info}, nil
}

// GetProduct retrieves a single product by its ID.
func (s *CatalogService) GetProduct(id int64) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Categories lists the categories present in the catalog.
func (s *CatalogService) Categories() ([]string, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	return CategoriesOf(all), nil
}

// PriceBounds returns the lowest and highest catalog price.
func (s *CatalogService) PriceBounds() (lo, hi float64, err error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return 0, 0, err
	}
	lo, hi = PriceBounds(all)
	return lo, hi, nil
}
