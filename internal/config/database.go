package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database defaults applied when the configured value is zero or empty.
const (
	defaultMaxIdleConns    = 10
	defaultMaxOpenConns    = 100
	defaultConnMaxLifetime = time.Hour
	defaultSlowQuery       = 200 * time.Millisecond
)

// poolSettings is PoolConfig with defaults applied.
type poolSettings struct {
	maxIdle  int
	maxOpen  int
	lifetime time.Duration
}

func resolvePool(cfg *PoolConfig) (poolSettings, error) {
	p := poolSettings{
		maxIdle:  cfg.MaxIdleConns,
		maxOpen:  cfg.MaxOpenConns,
		lifetime: defaultConnMaxLifetime,
	}
	if p.maxIdle <= 0 {
		p.maxIdle = defaultMaxIdleConns
	}
	if p.maxOpen <= 0 {
		p.maxOpen = defaultMaxOpenConns
	}
	if raw := strings.TrimSpace(cfg.ConnMaxLifetime); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return p, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", cfg.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return p, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", cfg.ConnMaxLifetime)
		}
		p.lifetime = d
	}
	return p, nil
}

// SetupDatabase opens the GORM connection backing the local data source.
// GORM's own log output goes through logger: every statement at Debug,
// slow statements at Warn and failures at Error.
func SetupDatabase(cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := resolvePool(&cfg.Pool)
	if err != nil {
		return nil, err
	}
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger, ParsedDuration(cfg.SlowQuery, defaultSlowQuery)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetConnMaxLifetime(pool.lifetime)

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.maxIdle),
		slog.Int("max_open_conns", pool.maxOpen),
		slog.Duration("conn_max_lifetime", pool.lifetime),
	)
	return db, nil
}

func openDialector(cfg *DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(sqliteDSN(cfg.SQLite.Path)), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(&cfg.Postgres)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// gormSlog sends GORM's output to slog with the query's context, so
// statements carry the request_id of the request that issued them.
type gormSlog struct {
	logger *slog.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// newGormLogger traces every statement when logger has Debug enabled and
// otherwise only slow and failing ones.
func newGormLogger(logger *slog.Logger, slow time.Duration) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		level = gormlogger.Info
	}
	return &gormSlog{logger: logger.With(slog.String("component", "gorm")), level: level, slow: slow}
}

func (l *gormSlog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *gormSlog) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlog) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlog) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		level slog.Level
		msg   string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level, msg = slog.LevelError, "query failed"
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case l.level >= gormlogger.Info:
		level, msg = slog.LevelDebug, "query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// sqliteDSN enables foreign keys so pricing tiers cascade with their product.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	if cfg == nil {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}
