package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/backend"
	"github.com/simp-lee/rentfront/internal/config"
	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/module/admin"
	"github.com/simp-lee/rentfront/internal/module/auth"
	"github.com/simp-lee/rentfront/internal/module/catalog"
	"github.com/simp-lee/rentfront/internal/module/kyc"
	"github.com/simp-lee/rentfront/internal/module/order"
	"github.com/simp-lee/rentfront/internal/module/user"
	"github.com/simp-lee/rentfront/internal/session"
	"github.com/simp-lee/rentfront/internal/store"
)

// dataSource bundles the repositories the modules read and write through.
// users is nil with the remote backend; profiles then come from the session.
type dataSource struct {
	products domain.ProductRepository
	users    domain.UserRepository
	auth     domain.AuthGateway
	orders   domain.OrderRepository
	kyc      domain.KYCRepository
	stats    domain.StatsRepository

	// component names the dependency reported by the health check.
	component string
	ping      func(ctx context.Context) error
	db        *gorm.DB
}

func newRemoteSource(cfg *config.Config, collector *metrics.Collector) *dataSource {
	timeout := config.ParsedDuration(cfg.Backend.Timeout, 10*time.Second)
	client := backend.NewClient(cfg.Backend.BaseURL, timeout, collector)
	return &dataSource{
		products:  backend.NewProductRepository(client),
		auth:      backend.NewAuthGateway(client),
		orders:    backend.NewOrderRepository(client),
		kyc:       backend.NewKYCRepository(client),
		stats:     backend.NewStatsRepository(client),
		component: "backend",
		ping:      client.Ping,
	}
}

// newLocalSource opens the database, migrates it and loads seed data.
// Credentials are signed by issuer.
func newLocalSource(cfg *config.Config, log *slog.Logger, issuer *session.Issuer) (*dataSource, error) {
	db, err := config.SetupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if err := prepareLocalStore(db, cfg, log); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	users := user.NewUserRepository(db)
	return &dataSource{
		products:  catalog.NewProductRepository(db),
		users:     users,
		auth:      auth.NewLocalGateway(users, issuer),
		orders:    order.NewOrderRepository(db),
		kyc:       kyc.NewKYCRepository(db, cfg.KYC.UploadDir),
		stats:     admin.NewStatsRepository(db),
		component: "database",
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		db: db,
	}, nil
}

func prepareLocalStore(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	if err := store.Migrate(db); err != nil {
		return err
	}
	log.Info("auto migration completed")

	return store.Seed(context.Background(), db, store.SeedOptions{
		Products:      cfg.Database.Seed,
		AdminEmail:    cfg.Database.SeedAdminEmail,
		AdminPassword: cfg.Database.SeedAdminPassword,
	}, log)
}

// close releases the database connection, if any.
func (d *dataSource) close() error {
	if d == nil || d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
