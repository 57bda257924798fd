// Package store prepares the local database used when the storefront runs
// without the remote backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// Models lists every table of the local data source.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Product{},
		&domain.RentalPricingTier{},
		&domain.Order{},
		&domain.KYCSubmission{},
	}
}

// openSubmissionIndex allows at most one pending or approved KYC submission
// per user.
var openSubmissionIndex = fmt.Sprintf(
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_kyc_open_submission ON %s (user_id) WHERE status IN ('%s', '%s')",
	domain.KYCSubmission{}.TableName(), domain.KYCPending, domain.KYCApproved,
)

// Migrate creates or updates the local schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(openSubmissionIndex).Error; err != nil {
		return fmt.Errorf("create kyc submission index: %w", err)
	}
	return nil
}

// SeedOptions controls what Seed loads.
type SeedOptions struct {
	// Products loads the demo catalog when no product exists yet.
	Products      bool
	AdminEmail    string
	AdminPassword string
}

// Seed loads demo data into an empty catalog and creates the configured
// admin account. It is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, log *slog.Logger) error {
	if opts.Products {
		n, err := seedProducts(ctx, db)
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		if n > 0 {
			log.Info("demo catalog seeded", slog.Int("products", n))
		}
	}

	if opts.AdminEmail != "" {
		created, err := seedAdmin(ctx, db, opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info("admin account created", slog.String("email", strings.ToLower(opts.AdminEmail)))
		}
	}
	return nil
}

func seedProducts(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	products := DemoProducts()
	err := pkg.WithTx(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

func seedAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return false, errors.New("seed_admin_password must be at least 8 characters")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

// DemoProducts returns the demo catalog. Each product offers weekly,
// monthly and quarterly tiers with growing discounts.
func DemoProducts() []domain.Product {
	type demo struct {
		name, category, location, description string
		weekly, sale                          float64
	}
	demos := []demo{
		{"Canon EOS R6 Kit", "Electronics", "Bengaluru",
			"<p>Full-frame mirrorless camera with a <strong>24-105mm</strong> lens, two batteries and a 128GB card.</p>", 2100, 0},
		{"MacBook Pro 14\"", "Electronics", "Mumbai",
			"<p>M3 Pro, 18GB RAM, 512GB SSD. Charger and sleeve included.</p>", 2800, 165000},
		{"Three-seater Sofa", "Furniture", "Pune",
			"<p>Grey fabric sofa, free delivery and pickup within city limits.</p>", 900, 28000},
		{"Study Desk and Chair", "Furniture", "Hyderabad",
			"<p>Engineered wood desk with an ergonomic mesh chair.</p>", 450, 0},
		{"Front-load Washing Machine", "Appliances", "Delhi",
			"<p>7kg, 1200 RPM, installation included.</p>", 700, 32000},
		{"Double-door Refrigerator", "Appliances", "Chennai",
			"<p>340L frost-free refrigerator.</p>", 800, 0},
		{"Royal Enfield Classic 350", "Vehicles", "Goa",
			"<p>Helmet for rider and pillion included. Fuel not included.</p>", 4200, 0},
		{"Camping Kit for Four", "Sports", "Manali",
			"<p>Tent, four sleeping bags, stove and lantern.</p>", 1200, 0},
	}

	products := make([]domain.Product, 0, len(demos))
	for _, d := range demos {
		products = append(products, domain.Product{
			Name:          d.name,
			Category:      d.category,
			Location:      d.location,
			Description:   d.description,
			SalePrice:     d.sale,
			RentalPricing: demoTiers(d.weekly),
		})
	}
	return products
}

func demoTiers(weekly float64) []domain.RentalPricingTier {
	plans := []struct {
		days     int
		weeks    float64
		discount float64
	}{
		{7, 1, 0},
		{30, 30.0 / 7, 15},
		{90, 90.0 / 7, 25},
	}
	tiers := make([]domain.RentalPricingTier, 0, len(plans))
	for i, p := range plans {
		list := math.Round(weekly * p.weeks)
		tiers = append(tiers, domain.RentalPricingTier{
			DurationDays:    p.days,
			ListPrice:       list,
			DiscountPercent: p.discount,
			DiscountedPrice: math.Round(list * (100 - p.discount) / 100),
			Position:        i,
		})
	}
	return tiers
}
