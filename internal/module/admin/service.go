package admin

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/session"
)

// RecentOrderCount is the number of orders listed on the dashboard.
const RecentOrderCount = 10

// Dashboard is the admin overview.
type Dashboard struct {
	Stats        domain.DashboardStats `json:"stats"`
	RecentOrders []domain.Order        `json:"recentOrders"`
}

// Service defines the admin dashboard operations.
type Service interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type adminService struct {
	stats  domain.StatsRepository
	orders domain.OrderRepository
}

// NewService creates an admin Service.
func NewService(stats domain.StatsRepository, orders domain.OrderRepository) Service {
	return &adminService{stats: stats, orders: orders}
}

func (s *adminService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.stats.Stats(ctx)
}

// Dashboard loads the statistics and the newest orders concurrently.
func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var (
		stats  *domain.DashboardStats
		recent []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.stats.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.orders.ListRecent(gctx, RecentOrderCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recent == nil {
		recent = []domain.Order{}
	}
	return &Dashboard{Stats: *stats, RecentOrders: recent}, nil
}

func requireAdmin(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return domain.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
