package catalog

import (
	"context"
	"strings"

	"github.com/simp-lee/rentfront/internal/domain"
)

// Categories lists the product categories offered as filters.
var Categories = []string{
	"Electronics",
	"Furniture",
	"Appliances",
	"Vehicles",
	"Sports",
	"Tools",
	"Books",
	"Clothing",
}

// Filters accepted on product listings.
const (
	FilterCategory = "category"
	FilterSearch   = "search"
)

const featuredSort = "created_at:desc"

// productService implements domain.ProductService.
type productService struct {
	repo domain.ProductRepository
}

// NewService creates a new ProductService with the given repository.
func NewService(repo domain.ProductRepository) domain.ProductService {
	return &productService{repo: repo}
}

// ListProducts returns a page of products. Only the category and search
// filters are passed on.
func (s *productService) ListProducts(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Product], error) {
	filter := make(map[string]string, 2)
	for _, key := range []string{FilterCategory, FilterSearch} {
		if v := strings.TrimSpace(req.Filter[key]); v != "" {
			filter[key] = v
		}
	}
	req.Filter = filter
	return s.repo.List(ctx, req)
}

// GetProduct retrieves a product by ID.
func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewAppError(domain.CodeNotFound, "product not found", nil)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "product not found", err)
		}
		return nil, err
	}
	return p, nil
}

// FeaturedProducts returns the newest limit products.
func (s *productService) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		return []domain.Product{}, nil
	}
	result, err := s.repo.List(ctx, domain.PageRequest{
		Page:     1,
		PageSize: limit,
		Sort:     featuredSort,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
