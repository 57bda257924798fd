package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

var (
	allowedSortFields   = []string{"created_at", "name", "sale_price"}
	allowedFilterFields = []string{FilterCategory}
)

// productRepository implements domain.ProductRepository using GORM.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a ProductRepository backed by the local database.
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

// List returns a page of products with their pricing tiers in insertion order.
func (r *productRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Product], error) {
	base := r.db.WithContext(ctx).Model(&domain.Product{}).
		Scopes(pkg.Filter(req, allowedFilterFields), search(req.Filter[FilterSearch]))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var products []domain.Product
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Preload("RentalPricing", orderedTiers).Find(&products).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPageResult(products, total, req), nil
}

// GetByID retrieves a product and its tiers.
func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("RentalPricing", orderedTiers).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &p, nil
}

func orderedTiers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// search matches term against name and description, case-insensitively.
func search(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return db
		}
		like := "%" + pkg.EscapeLike(term) + "%"
		return db.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}
}
