package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "Str0ng-jwt-secret-for-tests-0123456789"

const testYAML = `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
  csrf_secret: "test-csrf-secret-value"
  rate_limit:
    enabled: true
    rps: 5
    burst: 10
backend:
  mode: "remote"
  base_url: "https://api.example.com/api/"
  timeout: "5s"
database:
  driver: "postgres"
  sqlite:
    path: "data/test.db"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "admin"
    password: "secret"
    dbname: "testdb"
    sslmode: "require"
  pool:
    max_idle_conns: 5
    max_open_conns: 50
    conn_max_lifetime: "30m"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "` + testSecret + `"
  token_expiry: "12h"
  leeway: "30s"
payment:
  key_id: "rzp_test_key"
  key_secret: "rzp_test_secret"
  currency: "inr"
kyc:
  upload_dir: "/var/lib/rentfront/kyc"
  max_upload_mb: 8
metrics:
  enabled: true
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// validBaseYAML returns a minimal valid YAML config string (local sqlite, debug mode).
func validBaseYAML(extras string) string {
	return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "debug"
backend:
  mode: "local"
database:
  driver: "sqlite"
  sqlite:
    path: "data/test.db"
  pool:
    max_idle_conns: 1
    max_open_conns: 1
    conn_max_lifetime: "1m"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "` + testSecret + `"
` + extras
}

// remoteBaseYAML returns a minimal valid YAML config string for the remote backend.
func remoteBaseYAML(mode, baseURL string) string {
	return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "` + mode + `"
backend:
  mode: "remote"
  base_url: "` + baseURL + `"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "` + testSecret + `"
`
}

func TestLoad_FullYAML(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Server.Mode = %q, want %q", cfg.Server.Mode, "release")
	}
	if cfg.Server.CSRFSecret != "test-csrf-secret-value" {
		t.Errorf("Server.CSRFSecret = %q, want %q", cfg.Server.CSRFSecret, "test-csrf-secret-value")
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RPS != 5 || cfg.Server.RateLimit.Burst != 10 {
		t.Errorf("Server.RateLimit = %+v", cfg.Server.RateLimit)
	}

	// Backend
	if cfg.Backend.Mode != BackendRemote {
		t.Errorf("Backend.Mode = %q, want %q", cfg.Backend.Mode, BackendRemote)
	}
	if cfg.Backend.BaseURL != "https://api.example.com/api" {
		t.Errorf("Backend.BaseURL = %q, want trailing slash trimmed", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != "5s" {
		t.Errorf("Backend.Timeout = %q, want %q", cfg.Backend.Timeout, "5s")
	}

	// Database is carried even when unused by the remote backend.
	if cfg.Database.Postgres.Host != "db.example.com" {
		t.Errorf("Postgres.Host = %q, want %q", cfg.Database.Postgres.Host, "db.example.com")
	}
	if cfg.Database.Pool.MaxOpenConns != 50 {
		t.Errorf("Pool.MaxOpenConns = %d, want %d", cfg.Database.Pool.MaxOpenConns, 50)
	}

	// Auth
	if cfg.Auth.JWTSecret != testSecret {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenExpiry != "12h" || cfg.Auth.Leeway != "30s" {
		t.Errorf("Auth durations = %q/%q", cfg.Auth.TokenExpiry, cfg.Auth.Leeway)
	}
	if cfg.Auth.CookieName != DefaultCookieName {
		t.Errorf("Auth.CookieName = %q, want default %q", cfg.Auth.CookieName, DefaultCookieName)
	}

	// Payment
	if cfg.Payment.KeyID != "rzp_test_key" || cfg.Payment.KeySecret != "rzp_test_secret" {
		t.Errorf("Payment = %+v", cfg.Payment)
	}
	if cfg.Payment.Currency != "INR" {
		t.Errorf("Payment.Currency = %q, want upper-cased %q", cfg.Payment.Currency, "INR")
	}

	// KYC
	if cfg.KYC.UploadDir != "/var/lib/rentfront/kyc" || cfg.KYC.MaxUploadMB != 8 {
		t.Errorf("KYC = %+v", cfg.KYC)
	}

	// Metrics
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}

	// Log
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__LOG__LEVEL", "error")
	t.Setenv("APP__BACKEND__BASE_URL", "https://backend.internal")
	t.Setenv("APP__AUTH__COOKIE_NAME", "rent_session")

	// Fields containing underscores: verify single _ is preserved.
	t.Setenv("APP__DATABASE__POOL__MAX_IDLE_CONNS", "20")
	t.Setenv("APP__KYC__MAX_UPLOAD_MB", "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d (env override)", cfg.Server.Port, 9090)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q (env override)", cfg.Log.Level, "error")
	}
	if cfg.Backend.BaseURL != "https://backend.internal" {
		t.Errorf("Backend.BaseURL = %q (env override)", cfg.Backend.BaseURL)
	}
	if cfg.Auth.CookieName != "rent_session" {
		t.Errorf("Auth.CookieName = %q (env override)", cfg.Auth.CookieName)
	}
	if cfg.Database.Pool.MaxIdleConns != 20 {
		t.Errorf("Pool.MaxIdleConns = %d, want %d (env override)", cfg.Database.Pool.MaxIdleConns, 20)
	}
	if cfg.KYC.MaxUploadMB != 12 {
		t.Errorf("KYC.MaxUploadMB = %d, want %d (env override)", cfg.KYC.MaxUploadMB, 12)
	}

	// Non-overridden values should remain from YAML.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q (unchanged)", cfg.Server.Host, "127.0.0.1")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validBaseYAML("")))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend.Timeout != DefaultBackendTime {
		t.Errorf("Backend.Timeout = %q, want %q", cfg.Backend.Timeout, DefaultBackendTime)
	}
	if cfg.Auth.TokenExpiry != DefaultTokenExpiry {
		t.Errorf("Auth.TokenExpiry = %q, want %q", cfg.Auth.TokenExpiry, DefaultTokenExpiry)
	}
	if cfg.Auth.CookieName != DefaultCookieName {
		t.Errorf("Auth.CookieName = %q, want %q", cfg.Auth.CookieName, DefaultCookieName)
	}
	if cfg.Payment.Currency != DefaultCurrency {
		t.Errorf("Payment.Currency = %q, want %q", cfg.Payment.Currency, DefaultCurrency)
	}
	if cfg.KYC.UploadDir != DefaultUploadDir || cfg.KYC.MaxUploadMB != DefaultMaxUploadMB {
		t.Errorf("KYC = %+v", cfg.KYC)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestLoad_BackendMode(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErr     bool
		wantContain string
		wantMode    string
	}{
		{
			name:     "empty mode defaults to remote",
			yaml:     strings.Replace(remoteBaseYAML("debug", "http://localhost:5000/api"), `  mode: "remote"`+"\n", "", 1),
			wantMode: BackendRemote,
		},
		{
			name:     "remote over plain http in debug",
			yaml:     remoteBaseYAML("debug", "http://localhost:5000/api"),
			wantMode: BackendRemote,
		},
		{
			name:        "remote requires base url",
			yaml:        remoteBaseYAML("debug", "  "),
			wantErr:     true,
			wantContain: "backend.base_url is required",
		},
		{
			name:        "relative base url rejected",
			yaml:        remoteBaseYAML("debug", "/api"),
			wantErr:     true,
			wantContain: "backend.base_url",
		},
		{
			name:        "unsupported scheme rejected",
			yaml:        remoteBaseYAML("debug", "ftp://api.example.com"),
			wantErr:     true,
			wantContain: "backend.base_url",
		},
		{
			name:        "release requires https",
			yaml:        remoteBaseYAML("release", "http://api.example.com"),
			wantErr:     true,
			wantContain: "must use https",
		},
		{
			name:        "unknown mode rejected",
			yaml:        strings.Replace(validBaseYAML(""), `mode: "local"`, `mode: "mock"`, 1),
			wantErr:     true,
			wantContain: "backend.mode",
		},
		{
			name:     "mode is case-insensitive",
			yaml:     strings.Replace(validBaseYAML(""), `mode: "local"`, `mode: " LOCAL "`, 1),
			wantMode: BackendLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTestConfig(t, tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantContain) {
					t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg.Backend.Mode != tt.wantMode {
				t.Errorf("Backend.Mode = %q, want %q", cfg.Backend.Mode, tt.wantMode)
			}
		})
	}
}

func TestLoad_RemoteSkipsDatabaseValidation(t *testing.T) {
	// No database section at all: valid for the remote backend.
	if _, err := Load(writeTestConfig(t, remoteBaseYAML("debug", "http://localhost:5000"))); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
}

func TestLoad_InvalidServerMode(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `mode: "debug"`, `mode: "production"`, 1)
	_, err := Load(writeTestConfig(t, yaml))
	if err == nil {
		t.Fatal("Load() expected error for invalid server.mode, got nil")
	}
	if !strings.Contains(err.Error(), "server.mode") {
		t.Errorf("error = %v, want mention of server.mode", err)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	for _, port := range []string{"0", "-1", "65536"} {
		t.Run(port, func(t *testing.T) {
			yaml := strings.Replace(validBaseYAML(""), "port: 3000", "port: "+port, 1)
			_, err := Load(writeTestConfig(t, yaml))
			if err == nil {
				t.Fatalf("Load() expected error for port %s, got nil", port)
			}
			if !strings.Contains(err.Error(), "server.port") {
				t.Errorf("error = %v, want mention of server.port", err)
			}
		})
	}
}

func TestLoad_InvalidServerHost(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `host: "127.0.0.1"`, `host: "   "`, 1)
	_, err := Load(writeTestConfig(t, yaml))
	if err == nil || !strings.Contains(err.Error(), "server.host is required") {
		t.Fatalf("Load() error = %v, want server.host is required", err)
	}
}

func TestLoad_RateLimit(t *testing.T) {
	tests := []struct {
		name        string
		block       string
		wantContain string
	}{
		{
			name:        "rps must be positive",
			block:       "    enabled: true\n    rps: 0\n    burst: 5\n",
			wantContain: "server.rate_limit.rps",
		},
		{
			name:        "burst must be positive",
			block:       "    enabled: true\n    rps: 2\n    burst: 0\n",
			wantContain: "server.rate_limit.burst",
		},
		{
			name:  "disabled ignores values",
			block: "    enabled: false\n    rps: 0\n    burst: 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := strings.Replace(validBaseYAML(""), `  mode: "debug"`+"\n", `  mode: "debug"`+"\n  rate_limit:\n"+tt.block, 1)
			_, err := Load(writeTestConfig(t, yaml))
			if tt.wantContain == "" {
				if err != nil {
					t.Fatalf("Load() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantContain) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
			}
		})
	}
}

func TestLoad_InvalidDatabaseDriver(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `driver: "sqlite"`, `driver: "mysql"`, 1)
	_, err := Load(writeTestConfig(t, yaml))
	if err == nil || !strings.Contains(err.Error(), "database.driver") {
		t.Fatalf("Load() error = %v, want database.driver error", err)
	}
}

func TestLoad_SQLiteMissingPath(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `path: "data/test.db"`, `path: "  "`, 1)
	_, err := Load(writeTestConfig(t, yaml))
	if err == nil || !strings.Contains(err.Error(), "database.sqlite.path is required") {
		t.Fatalf("Load() error = %v, want sqlite path error", err)
	}
}

func TestLoad_SeedAdmin(t *testing.T) {
	withSeed := func(password string) string {
		return strings.Replace(validBaseYAML(""), "  pool:\n",
			"  seed_admin_email: \" admin@example.com \"\n  seed_admin_password: \""+password+"\"\n  pool:\n", 1)
	}

	cfg, err := Load(writeTestConfig(t, withSeed("long-enough-pw")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.SeedAdminEmail != "admin@example.com" {
		t.Errorf("SeedAdminEmail = %q, want trimmed", cfg.Database.SeedAdminEmail)
	}

	_, err = Load(writeTestConfig(t, withSeed("short")))
	if err == nil || !strings.Contains(err.Error(), "seed_admin_password") {
		t.Fatalf("Load() error = %v, want seed_admin_password error", err)
	}
}

func TestLoad_Postgres(t *testing.T) {
	pg := func(mode, fields string) string {
		return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "` + mode + `"
backend:
  mode: "local"
database:
  driver: "postgres"
  postgres:
` + fields + `log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "` + testSecret + `"
`
	}
	full := "    host: \"db\"\n    port: 5432\n    user: \"u\"\n    dbname: \"d\"\n"

	tests := []struct {
		name        string
		yaml        string
		wantContain string
	}{
		{"missing host", pg("debug", "    port: 5432\n    user: \"u\"\n    dbname: \"d\"\n    sslmode: \"disable\"\n"), "database.postgres.host"},
		{"missing user", pg("debug", "    host: \"db\"\n    port: 5432\n    dbname: \"d\"\n    sslmode: \"disable\"\n"), "database.postgres.user"},
		{"missing dbname", pg("debug", "    host: \"db\"\n    port: 5432\n    user: \"u\"\n    sslmode: \"disable\"\n"), "database.postgres.dbname"},
		{"invalid port", pg("debug", "    host: \"db\"\n    port: 0\n    user: \"u\"\n    dbname: \"d\"\n    sslmode: \"disable\"\n"), "database.postgres.port"},
		{"invalid sslmode", pg("debug", full+"    sslmode: \"sometimes\"\n"), "database.postgres.sslmode"},
		{"release forbids disable", pg("release", full+"    sslmode: \"disable\"\n"), "release"},
		{"debug allows disable", pg("debug", full+"    sslmode: \"disable\"\n"), ""},
		{"release allows require", pg("release", full+"    sslmode: \"require\"\n"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, tt.yaml))
			if tt.wantContain == "" {
				if err != nil {
					t.Fatalf("Load() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantContain) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
			}
		})
	}
}

func TestLoad_NonPositiveDurations(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantContain string
	}{
		{
			name:        "server timeout must be positive",
			yaml:        strings.Replace(validBaseYAML(""), `  mode: "debug"`+"\n", `  mode: "debug"`+"\n  timeout: \"0s\"\n", 1),
			wantContain: "server.timeout",
		},
		{
			name:        "cors max age must be positive",
			yaml:        strings.Replace(validBaseYAML(""), `  mode: "debug"`+"\n", `  mode: "debug"`+"\n  cors:\n    max_age: \"-1s\"\n", 1),
			wantContain: "server.cors.max_age",
		},
		{
			name:        "pool lifetime must be positive",
			yaml:        strings.Replace(validBaseYAML(""), `conn_max_lifetime: "1m"`, `conn_max_lifetime: "0s"`, 1),
			wantContain: "database.pool.conn_max_lifetime",
		},
		{
			name:        "backend timeout must be positive",
			yaml:        strings.Replace(validBaseYAML(""), `  mode: "local"`, "  mode: \"local\"\n  timeout: \"-2s\"", 1),
			wantContain: "backend.timeout",
		},
		{
			name:        "token expiry must be positive",
			yaml:        validBaseYAML("  token_expiry: \"0h\"\n"),
			wantContain: "auth.token_expiry",
		},
		{
			name:        "leeway must not be negative",
			yaml:        validBaseYAML("  leeway: \"-1s\"\n"),
			wantContain: "auth.leeway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.yaml)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error for non-positive duration, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantContain) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
			}
		})
	}
}

func TestLoad_OptionalDurationWhitespace_NormalizedAsUnset(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `  mode: "debug"`+"\n", `  mode: "debug"`+"\n  timeout: \"   \"\n  cors:\n    max_age: \"   \"\n", 1)
	yaml = strings.Replace(yaml, `conn_max_lifetime: "1m"`, `conn_max_lifetime: "   "`, 1)

	cfg, err := Load(writeTestConfig(t, yaml))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Timeout != "" {
		t.Errorf("Server.Timeout = %q, want empty string", cfg.Server.Timeout)
	}
	if cfg.Server.CORS.MaxAge != "" {
		t.Errorf("Server.CORS.MaxAge = %q, want empty string", cfg.Server.CORS.MaxAge)
	}
	if cfg.Database.Pool.ConnMaxLifetime != "" {
		t.Errorf("Database.Pool.ConnMaxLifetime = %q, want empty string", cfg.Database.Pool.ConnMaxLifetime)
	}
}

func TestLoad_AuthConfig(t *testing.T) {
	withSecret := func(mode, secret, extra string) string {
		yaml := strings.Replace(validBaseYAML(extra), `jwt_secret: "`+testSecret+`"`, `jwt_secret: "`+secret+`"`, 1)
		return strings.Replace(yaml, `mode: "debug"`, `mode: "`+mode+`"`, 1)
	}

	tests := []struct {
		name        string
		yaml        string
		wantContain string
	}{
		{"secret required", withSecret("debug", "   ", ""), "auth.jwt_secret is required"},
		{"secret too short", withSecret("debug", "short-secret", ""), "at least 32 characters"},
		{"release needs three classes", withSecret("release", strings.Repeat("a", 40), ""), "character classes"},
		{"debug accepts single class", withSecret("debug", strings.Repeat("a", 40), ""), ""},
		{"cookie name with separator", validBaseYAML("  cookie_name: \"bad;name\"\n"), "auth.cookie_name"},
		{"custom cookie name", validBaseYAML("  cookie_name: \"rent_session\"\n"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, tt.yaml))
			if tt.wantContain == "" {
				if err != nil {
					t.Fatalf("Load() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantContain) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
			}
		})
	}
}

func TestLoad_PaymentAndKYC(t *testing.T) {
	tests := []struct {
		name        string
		extras      string
		wantContain string
	}{
		{"key id without secret", "payment:\n  key_id: \"rzp\"\n", "must be set together"},
		{"secret without key id", "payment:\n  key_secret: \"s\"\n", "must be set together"},
		{"bad currency", "payment:\n  currency: \"rupee\"\n", "payment.currency"},
		{"negative upload size", "kyc:\n  max_upload_mb: -1\n", "kyc.max_upload_mb"},
		{"oversized upload limit", "kyc:\n  max_upload_mb: 500\n", "kyc.max_upload_mb"},
		{"relative metrics path", "metrics:\n  path: \"metrics\"\n", "metrics.path"},
		{"no payment keys is fine", "payment:\n  currency: \"usd\"\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, validBaseYAML("")+tt.extras))
			if tt.wantContain == "" {
				if err != nil {
					t.Fatalf("Load() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantContain) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantContain)
			}
		})
	}
}

func TestLoad_InvalidLogSettings(t *testing.T) {
	bad := []struct{ from, to, want string }{
		{`level: "info"`, `level: "trace"`, "log.level"},
		{`format: "json"`, `format: "xml"`, "log.format"},
	}
	for _, b := range bad {
		t.Run(b.want, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, strings.Replace(validBaseYAML(""), b.from, b.to, 1)))
			if err == nil || !strings.Contains(err.Error(), b.want) {
				t.Fatalf("Load() error = %v, want contains %q", err, b.want)
			}
		})
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Verify loading the actual project config.yaml works.
	cfg, err := Load("../../configs/config.yaml")
	if err != nil {
		t.Fatalf("Load() error on project config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Backend.Mode != BackendLocal {
		t.Errorf("Backend.Mode = %q, want %q", cfg.Backend.Mode, BackendLocal)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Database.Pool.MaxIdleConns != 10 {
		t.Errorf("Pool.MaxIdleConns = %d, want %d", cfg.Database.Pool.MaxIdleConns, 10)
	}
	if cfg.Auth.TokenExpiry != "24h" {
		t.Errorf("Auth.TokenExpiry = %q, want %q", cfg.Auth.TokenExpiry, "24h")
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("Auth.CookieName = %q, want %q", cfg.Auth.CookieName, "token")
	}
	if got := ParsedDuration(cfg.Server.StaticMaxAge, 0); got != 24*time.Hour {
		t.Errorf("Server.StaticMaxAge = %v, want 24h", got)
	}
}

func TestParsedDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"bogus", time.Minute},
		{"-5s", time.Minute},
		{"10s", 10 * time.Second},
		{" 2h ", 2 * time.Hour},
	}
	for _, tt := range tests {
		if got := ParsedDuration(tt.in, time.Minute); got != tt.want {
			t.Errorf("ParsedDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCountSecretClasses(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{name: "empty string", secret: "", want: 0},
		{name: "lowercase only", secret: "abcdef", want: 1},
		{name: "uppercase only", secret: "ABCDEF", want: 1},
		{name: "digits only", secret: "123456", want: 1},
		{name: "symbols only", secret: "!@#$%^", want: 1},
		{name: "lower and upper", secret: "abcDEF", want: 2},
		{name: "lower upper digit", secret: "abcDEF123", want: 3},
		{name: "all four classes", secret: "abcDEF123!", want: 4},
		{name: "mixed with spaces", secret: "aA1 ", want: 4}, // space counts as symbol
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountSecretClasses(tt.secret)
			if got != tt.want {
				t.Errorf("CountSecretClasses(%q) = %d, want %d", tt.secret, got, tt.want)
			}
		})
	}
}
