package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentalPricingTier is one rental-duration price option of a product.
type RentalPricingTier struct {
	ID              string  `gorm:"primaryKey;size:36" json:"id,omitempty"`
	ProductID       string  `gorm:"size:36;index;not null" json:"productId,omitempty"`
	DurationDays    int     `gorm:"not null" json:"durationDays"`
	ListPrice       float64 `gorm:"not null" json:"listPrice"`
	DiscountPercent float64 `gorm:"not null;default:0" json:"discountPercent"`
	DiscountedPrice float64 `gorm:"not null" json:"discountedPrice"`
	// Position preserves insertion order; it carries no business meaning.
	Position int `gorm:"not null;default:0" json:"-"`
}

// BeforeCreate assigns a UUID when the tier has none.
func (t *RentalPricingTier) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Validate checks the tier's field ranges and that the discounted price
// never exceeds the list price.
func (t RentalPricingTier) Validate() error {
	switch {
	case t.DurationDays <= 0:
		return NewAppError(CodeValidation, "duration must be at least one day", nil)
	case t.ListPrice < 0:
		return NewAppError(CodeValidation, "list price must not be negative", nil)
	case t.DiscountPercent < 0 || t.DiscountPercent > 100:
		return NewAppError(CodeValidation, "discount must be between 0 and 100 percent", nil)
	case t.DiscountedPrice < 0:
		return NewAppError(CodeValidation, "discounted price must not be negative", nil)
	case t.DiscountedPrice > t.ListPrice:
		return NewAppError(CodeValidation,
			fmt.Sprintf("discounted price %.2f exceeds list price %.2f", t.DiscountedPrice, t.ListPrice), nil)
	}
	return nil
}

// Savings returns how much the discounted price saves against the list price.
func (t RentalPricingTier) Savings() float64 {
	return t.ListPrice - t.DiscountedPrice
}

// BestTier returns the tier with the lowest discounted price. Ties resolve to
// the first tier in iteration order. ok is false when tiers is empty; callers
// must check it before using the returned tier.
func BestTier(tiers []RentalPricingTier) (best RentalPricingTier, ok bool) {
	if len(tiers) == 0 {
		return RentalPricingTier{}, false
	}
	best = tiers[0]
	for _, t := range tiers[1:] {
		if t.DiscountedPrice < best.DiscountedPrice {
			best = t
		}
	}
	return best, true
}

// Product is an item that can be rented and, optionally, bought.
type Product struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100;index" json:"category"`
	ImageURL    string `gorm:"size:500" json:"imageUrl"`
	Location    string `gorm:"size:200" json:"location"`
	// SalePrice is zero when the product is rent-only.
	SalePrice     float64             `json:"salePrice"`
	OwnerID       string              `gorm:"size:36;index" json:"ownerId,omitempty"`
	RentalPricing []RentalPricingTier `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"rentalPricing"`
}

// BestDeal returns the product's headline tier, see BestTier.
func (p *Product) BestDeal() (RentalPricingTier, bool) {
	return BestTier(p.RentalPricing)
}

// ForSale reports whether the product can also be bought outright.
func (p *Product) ForSale() bool {
	return p.SalePrice > 0
}

// TierFor returns the product's tier with the given duration.
func (p *Product) TierFor(durationDays int) (RentalPricingTier, bool) {
	for _, t := range p.RentalPricing {
		if t.DurationDays == durationDays {
			return t, true
		}
	}
	return RentalPricingTier{}, false
}

// ProductRepository is the data access interface for the catalog.
type ProductRepository interface {
	List(ctx context.Context, req PageRequest) (*PageResult[Product], error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

// ProductService is the catalog's business interface.
type ProductService interface {
	ListProducts(ctx context.Context, req PageRequest) (*PageResult[Product], error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]Product, error)
}
