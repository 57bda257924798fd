package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// statsRepository implements domain.StatsRepository over the local database.
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a StatsRepository backed by the local database.
func NewStatsRepository(db *gorm.DB) domain.StatsRepository {
	return &statsRepository{db: db}
}

// Stats counts users, products, orders and pending KYC submissions. Revenue
// is the sum of paid orders.
func (r *statsRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var stats domain.DashboardStats

	counts := []struct {
		model any
		where []any
		dest  *int64
	}{
		{&domain.User{}, nil, &stats.TotalUsers},
		{&domain.Product{}, nil, &stats.TotalProducts},
		{&domain.Order{}, nil, &stats.TotalOrders},
		{&domain.Order{}, []any{"status = ?", domain.OrderPaid}, &stats.PaidOrders},
		{&domain.KYCSubmission{}, []any{"status = ?", domain.KYCPending}, &stats.PendingKYC},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, pkg.MapDBError(err)
		}
	}

	if err := db.Model(&domain.Order{}).
		Where("status = ?", domain.OrderPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &stats, nil
}
