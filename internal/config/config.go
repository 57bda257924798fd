package config

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Data source modes.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Payment  PaymentConfig  `koanf:"payment"`
	KYC      KYCConfig      `koanf:"kyc"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string          `koanf:"host"`
	Port       int             `koanf:"port"`
	Mode       string          `koanf:"mode"`
	CSRFSecret string          `koanf:"csrf_secret"`
	Timeout    string          `koanf:"timeout"`
	CORS       CORSConfig      `koanf:"cors"`
	RateLimit  RateLimitConfig `koanf:"rate_limit"`
	// TrustRequestID reuses the X-Request-ID set by a fronting proxy.
	TrustRequestID bool `koanf:"trust_request_id"`
	// StaticMaxAge is the Cache-Control max-age of /static assets outside
	// debug mode.
	StaticMaxAge string `koanf:"static_max_age"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	ExposeHeaders    []string `koanf:"expose_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// BackendConfig selects and configures the data source.
type BackendConfig struct {
	// Mode is "remote" (backend REST API) or "local" (GORM database).
	Mode    string `koanf:"mode"`
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// DatabaseConfig holds database connection settings for the local data source.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
	// Seed loads demo products on startup when the catalog is empty.
	Seed bool `koanf:"seed"`
	// SeedAdminEmail and SeedAdminPassword create an admin account on
	// startup when no account with that email exists.
	SeedAdminEmail    string `koanf:"seed_admin_email"`
	SeedAdminPassword string `koanf:"seed_admin_password"`
	// SlowQuery is the duration above which a statement is logged at Warn.
	SlowQuery string `koanf:"slow_query"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
	// SlowRequest raises the access log line of slower requests to Warn.
	SlowRequest string `koanf:"slow_request"`
}

// AuthConfig holds session credential settings.
type AuthConfig struct {
	// JWTSecret verifies credentials; it is shared with the backend that signs them.
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
	Leeway      string `koanf:"leeway"`
	CookieName  string `koanf:"cookie_name"`
}

// PaymentConfig holds payment gateway credentials.
type PaymentConfig struct {
	KeyID     string `koanf:"key_id"`
	KeySecret string `koanf:"key_secret"`
	Currency  string `koanf:"currency"`
}

// KYCConfig holds document upload settings.
type KYCConfig struct {
	UploadDir   string `koanf:"upload_dir"`
	MaxUploadMB int    `koanf:"max_upload_mb"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Defaults applied by Validate when a field is left empty.
const (
	DefaultCookieName  = "token"
	DefaultTokenExpiry = "24h"
	DefaultCurrency    = "INR"
	DefaultUploadDir   = "data/kyc"
	DefaultMaxUploadMB = 5
	DefaultMetricsPath = "/metrics"
	DefaultBackendTime = "10s"
	DefaultStaticAge   = "24h"
)

// Load reads the YAML file at configPath, overlays APP__ environment
// variables and validates the result. A double underscore separates levels
// and single underscores stay in the key: APP__SERVER__PORT=9090 sets
// server.port and APP__BACKEND__BASE_URL sets backend.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const envPrefix = "APP__"

// envKey maps APP__DATABASE__POOL__MAX_IDLE_CONNS to database.pool.max_idle_conns.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks cross-field constraints and supported values, and fills defaults.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if c.Backend.Mode == BackendLocal {
		if err := c.validateDatabase(); err != nil {
			return err
		}
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validatePayment(); err != nil {
		return err
	}
	if err := c.validateKYC(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateServer() error {
	var err error
	if c.Server.Mode, err = oneOf("server.mode", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode); err != nil {
		return err
	}
	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	if c.Server.Host, err = required("server.host", c.Server.Host); err != nil {
		return err
	}

	c.Server.StaticMaxAge = cmp.Or(strings.TrimSpace(c.Server.StaticMaxAge), DefaultStaticAge)
	// Blank durations mean unset.
	for _, d := range []struct {
		field string
		v     *string
	}{
		{"server.timeout", &c.Server.Timeout},
		{"server.static_max_age", &c.Server.StaticMaxAge},
		{"server.cors.max_age", &c.Server.CORS.MaxAge},
	} {
		*d.v = strings.TrimSpace(*d.v)
		if err := optionalPositiveDuration(d.field, *d.v); err != nil {
			return err
		}
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	mode := strings.ToLower(strings.TrimSpace(c.Backend.Mode))
	if mode == "" {
		mode = BackendRemote
	}
	switch mode {
	case BackendRemote, BackendLocal:
		c.Backend.Mode = mode
	default:
		return fmt.Errorf("invalid backend.mode %q: must be one of %q, %q", c.Backend.Mode, BackendRemote, BackendLocal)
	}

	c.Backend.Timeout = strings.TrimSpace(c.Backend.Timeout)
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = DefaultBackendTime
	}
	if err := optionalPositiveDuration("backend.timeout", c.Backend.Timeout); err != nil {
		return err
	}

	if mode != BackendRemote {
		return nil
	}

	baseURL := strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if baseURL == "" {
		return fmt.Errorf("backend.base_url is required when backend.mode is %q", BackendRemote)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid backend.base_url %q: must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Server.Mode == gin.ReleaseMode && u.Scheme != "https" {
		return fmt.Errorf("invalid backend.base_url %q for server.mode %q: must use https", c.Backend.BaseURL, gin.ReleaseMode)
	}
	c.Backend.BaseURL = baseURL
	return nil
}

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		path, err := required("database.sqlite.path", c.Database.SQLite.Path)
		if err != nil {
			return fmt.Errorf("%w when driver is sqlite", err)
		}
		c.Database.SQLite.Path = path
	case "postgres":
		if err := c.validatePostgres(&c.Database.Postgres); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	c.Database.SeedAdminEmail = strings.TrimSpace(c.Database.SeedAdminEmail)
	if c.Database.SeedAdminEmail != "" && len(c.Database.SeedAdminPassword) < 8 {
		return fmt.Errorf("database.seed_admin_password must be at least 8 characters when seed_admin_email is set")
	}

	c.Database.SlowQuery = strings.TrimSpace(c.Database.SlowQuery)
	if err := optionalPositiveDuration("database.slow_query", c.Database.SlowQuery); err != nil {
		return err
	}
	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	return optionalPositiveDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
}

// validatePostgres trims pg in place. Release mode insists on an encrypted
// connection.
func (c *Config) validatePostgres(pg *PostgresConfig) error {
	var err error
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"database.postgres.host", &pg.Host},
		{"database.postgres.user", &pg.User},
		{"database.postgres.dbname", &pg.DBName},
	} {
		if *f.v, err = required(f.name, *f.v); err != nil {
			return fmt.Errorf("%w when driver is postgres", err)
		}
	}
	if err := validPort("database.postgres.port", pg.Port); err != nil {
		return err
	}

	if pg.SSLMode, err = oneOf("database.postgres.sslmode", pg.SSLMode, sslModes...); err != nil {
		return err
	}
	if c.Server.Mode == gin.ReleaseMode && !slices.Contains(sslModes[3:], pg.SSLMode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q", pg.SSLMode, gin.ReleaseMode, sslModes[3:])
	}
	return nil
}

func (c *Config) validateAuth() error {
	jwtSecret := strings.TrimSpace(c.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(jwtSecret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = jwtSecret

	c.Auth.TokenExpiry = strings.TrimSpace(c.Auth.TokenExpiry)
	if c.Auth.TokenExpiry == "" {
		c.Auth.TokenExpiry = DefaultTokenExpiry
	}
	if err := optionalPositiveDuration("auth.token_expiry", c.Auth.TokenExpiry); err != nil {
		return err
	}

	c.Auth.Leeway = strings.TrimSpace(c.Auth.Leeway)
	if l := c.Auth.Leeway; l != "" {
		d, err := time.ParseDuration(l)
		if err != nil {
			return fmt.Errorf("invalid auth.leeway %q: %w", l, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid auth.leeway %q: must not be negative", l)
		}
	}

	name := strings.TrimSpace(c.Auth.CookieName)
	if name == "" {
		name = DefaultCookieName
	}
	if strings.ContainsAny(name, " \t;,=") {
		return fmt.Errorf("invalid auth.cookie_name %q: must be a valid cookie token", c.Auth.CookieName)
	}
	c.Auth.CookieName = name
	return nil
}

func (c *Config) validatePayment() error {
	c.Payment.KeyID = strings.TrimSpace(c.Payment.KeyID)
	c.Payment.KeySecret = strings.TrimSpace(c.Payment.KeySecret)
	if (c.Payment.KeyID == "") != (c.Payment.KeySecret == "") {
		return fmt.Errorf("payment.key_id and payment.key_secret must be set together")
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Payment.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return fmt.Errorf("invalid payment.currency %q: must be a 3-letter ISO code", c.Payment.Currency)
	}
	c.Payment.Currency = currency
	return nil
}

func (c *Config) validateKYC() error {
	c.KYC.UploadDir = strings.TrimSpace(c.KYC.UploadDir)
	if c.KYC.UploadDir == "" {
		c.KYC.UploadDir = DefaultUploadDir
	}
	if c.KYC.MaxUploadMB == 0 {
		c.KYC.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.KYC.MaxUploadMB < 0 || c.KYC.MaxUploadMB > 50 {
		return fmt.Errorf("invalid kyc.max_upload_mb %d: must be between 1 and 50", c.KYC.MaxUploadMB)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	p := strings.TrimSpace(c.Metrics.Path)
	if p == "" {
		p = DefaultMetricsPath
	}
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("invalid metrics.path %q: must start with '/'", c.Metrics.Path)
	}
	c.Metrics.Path = p
	return nil
}

func (c *Config) validateLog() error {
	var err error
	if c.Log.Level, err = oneOf("log.level", strings.ToLower(c.Log.Level), "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if c.Log.Format, err = oneOf("log.format", strings.ToLower(c.Log.Format), "text", "json"); err != nil {
		return err
	}

	c.Log.SlowRequest = strings.TrimSpace(c.Log.SlowRequest)
	return optionalPositiveDuration("log.slow_request", c.Log.SlowRequest)
}

// ParsedDuration parses a duration already checked by Validate. Empty or
// malformed values yield fallback.
func ParsedDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func optionalPositiveDuration(field, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", field, v)
	}
	return nil
}

// CountSecretClasses counts the character classes present in secret:
// lowercase, uppercase, digit and anything else.
func CountSecretClasses(secret string) int {
	var seen [4]bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			seen[0] = true
		case unicode.IsUpper(r):
			seen[1] = true
		case unicode.IsDigit(r):
			seen[2] = true
		default:
			seen[3] = true
		}
	}

	n := 0
	for _, ok := range seen {
		if ok {
			n++
		}
	}
	return n
}

// required returns v trimmed, or an error naming field when v is blank.
func required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return v, nil
}

// oneOf returns v trimmed when it is one of allowed.
func oneOf(field, v string, allowed ...string) (string, error) {
	t := strings.TrimSpace(v)
	if !slices.Contains(allowed, t) {
		return "", fmt.Errorf("invalid %s %q: must be one of %q", field, v, allowed)
	}
	return t, nil
}

func validPort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %d: must be between 1 and 65535", field, port)
	}
	return nil
}
