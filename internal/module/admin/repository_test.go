package admin

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.RentalPricingTier{},
		&domain.Order{}, &domain.KYCSubmission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestStatsRepository_Empty(t *testing.T) {
	stats, err := NewStatsRepository(setupTestDB(t)).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if *stats != (domain.DashboardStats{}) {
		t.Errorf("stats = %+v; want zero", stats)
	}
}

func TestStatsRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	mustCreate := func(v any) {
		t.Helper()
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("create %T: %v", v, err)
		}
	}

	mustCreate(&domain.User{Name: "A", Email: "a@example.com", Role: domain.RoleCustomer})
	mustCreate(&domain.User{Name: "B", Email: "b@example.com", Role: domain.RoleAdmin})
	mustCreate(&domain.Product{Name: "Tent"})
	for _, o := range []domain.Order{
		{UserID: "u", ProductID: "p", DurationDays: 1, Amount: 250, Currency: "INR", Status: domain.OrderPaid},
		{UserID: "u", ProductID: "p", DurationDays: 1, Amount: 100.5, Currency: "INR", Status: domain.OrderPaid},
		{UserID: "u", ProductID: "p", DurationDays: 1, Amount: 999, Currency: "INR", Status: domain.OrderCreated},
	} {
		mustCreate(&o)
	}
	mustCreate(&domain.KYCSubmission{UserID: "u", DocumentType: domain.DocumentPAN, DocumentNumber: "1", Status: domain.KYCPending})
	mustCreate(&domain.KYCSubmission{UserID: "v", DocumentType: domain.DocumentPAN, DocumentNumber: "2", Status: domain.KYCApproved})

	stats, err := NewStatsRepository(db).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := domain.DashboardStats{
		TotalUsers:    2,
		TotalProducts: 1,
		TotalOrders:   3,
		PaidOrders:    2,
		Revenue:       350.5,
		PendingKYC:    1,
	}
	if *stats != want {
		t.Errorf("stats = %+v; want %+v", *stats, want)
	}
}
