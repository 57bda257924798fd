package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/simp-lee/rentfront/internal/domain"
)

// Filters the backend understands on GET /products.
var productFilters = []string{"category", "search"}

type productListResponse struct {
	Products      []domain.Product `json:"products"`
	TotalPages    int              `json:"totalPages"`
	TotalProducts int64            `json:"totalProducts"`
}

type productResponse struct {
	Product domain.Product `json:"product"`
}

type productRepository struct {
	client *Client
}

// NewProductRepository returns a domain.ProductRepository served by the backend.
func NewProductRepository(c *Client) domain.ProductRepository {
	return &productRepository{client: c}
}

func (r *productRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Product], error) {
	q := pageQuery(req)
	for _, key := range productFilters {
		if v := req.Filter[key]; v != "" {
			q.Set(key, v)
		}
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	var resp productListResponse
	if err := r.client.get(ctx, "GET /products", "/products", q, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Products {
		numberTiers(&resp.Products[i])
	}
	return pageResult(resp.Products, resp.TotalProducts, resp.TotalPages, req), nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	if err := r.client.get(ctx, "GET /products/{id}", "/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	numberTiers(&resp.Product)
	return &resp.Product, nil
}

// numberTiers records the backend's tier order in Position.
func numberTiers(p *domain.Product) {
	for i := range p.RentalPricing {
		p.RentalPricing[i].Position = i
	}
}

func pageQuery(req domain.PageRequest) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("limit", strconv.Itoa(req.PageSize))
	return q
}

// pageResult builds a PageResult from the backend's totals. The backend's
// page count is authoritative; it is recomputed only when missing.
func pageResult[T any](items []T, total int64, totalPages int, req domain.PageRequest) *domain.PageResult[T] {
	if items == nil {
		items = []T{}
	}
	if totalPages <= 0 && total > 0 && req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return &domain.PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}
