package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/simp-lee/logger"
	"golang.org/x/time/rate"

	"github.com/simp-lee/rentfront/internal/config"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/middleware"
	"github.com/simp-lee/rentfront/internal/module/admin"
	"github.com/simp-lee/rentfront/internal/module/auth"
	"github.com/simp-lee/rentfront/internal/module/catalog"
	"github.com/simp-lee/rentfront/internal/module/kyc"
	"github.com/simp-lee/rentfront/internal/module/order"
	"github.com/simp-lee/rentfront/internal/module/user"
	"github.com/simp-lee/rentfront/internal/sanitize"
	"github.com/simp-lee/rentfront/internal/session"
	"github.com/simp-lee/rentfront/web"
)

const (
	// formOverhead is the room left above the upload limit for the other
	// multipart fields of a form.
	formOverhead = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// App is the storefront process: the configured engine plus everything that
// must be released on shutdown.
type App struct {
	engine  *gin.Engine
	source  *dataSource
	limiter *middleware.RateLimiter
	logger  *logger.Logger
	cfg     *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires an App from cfg: logging, metrics, the data source (remote
// backend or local database), sessions, middleware, templates and routes.
// Anything already opened is released again when a later step fails.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			a.release()
		}
	}()

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = log
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	// A nil collector records nothing.
	registry := prometheus.NewRegistry()
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(registry)
	}

	guard, err := session.NewGuard(cfg.Auth.JWTSecret,
		session.WithLeeway(config.ParsedDuration(cfg.Auth.Leeway, 0)))
	if err != nil {
		return nil, fmt.Errorf("setup session guard: %w", err)
	}

	if cfg.Backend.Mode == config.BackendLocal {
		issuer, err := session.NewIssuer(cfg.Auth.JWTSecret, config.ParsedDuration(cfg.Auth.TokenExpiry, 24*time.Hour))
		if err != nil {
			return nil, fmt.Errorf("setup session issuer: %w", err)
		}
		if a.source, err = newLocalSource(cfg, log.Logger, issuer); err != nil {
			return nil, err
		}
	} else {
		a.source = newRemoteSource(cfg, collector)
		log.Info("using remote backend", slog.String("base_url", cfg.Backend.BaseURL))
	}

	cookie := middleware.SessionCookie{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Server.Mode == gin.ReleaseMode,
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	var chain []gin.HandlerFunc
	chain, a.limiter = middlewareChain(cfg, log.Logger, collector)
	engine.Use(append(chain, middleware.Session(guard, cookie))...)

	fsys, err := webFS(cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	if engine.HTMLRender, err = NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode); err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}

	secret, err := csrfSecret(&cfg.Server, log.Logger)
	if err != nil {
		return nil, err
	}

	deps := &RouteDeps{
		Modules:       buildModules(cfg, a.source, collector, cookie),
		Health:        []HealthCheck{{Component: a.source.component, Ping: a.source.ping}},
		Web:           fsys,
		CSRFSecret:    secret,
		SecureCookies: cookie.Secure,
	}
	if cfg.Server.Mode != gin.DebugMode {
		deps.StaticMaxAge = config.ParsedDuration(cfg.Server.StaticMaxAge, 0)
	}
	if cfg.Metrics.Enabled {
		deps.MetricsPath = cfg.Metrics.Path
		deps.MetricsHandler = metrics.Handler(registry)
	}
	if err := RegisterRoutes(engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	a.engine = engine
	ready = true
	return a, nil
}

// middlewareChain returns the global middleware in order, ending before the
// session middleware, and the rate limiter when one is enabled.
func middlewareChain(cfg *config.Config, log *slog.Logger, collector *metrics.Collector) ([]gin.HandlerFunc, *middleware.RateLimiter) {
	chain := []gin.HandlerFunc{
		middleware.Recovery(log, collector),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.LoggerWithConfig(log, middleware.LoggerConfig{
			QuietPrefixes: quietLogPrefixes(cfg),
			SlowThreshold: config.ParsedDuration(cfg.Log.SlowRequest, 0),
		}),
		middleware.Metrics(collector),
		// Release mode without an allowlist denies cross-origin requests.
		middleware.CORS(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
		middleware.BodyLimit(int64(cfg.KYC.MaxUploadMB)<<20 + formOverhead),
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.Server.RateLimit.RPS),
			Burst: cfg.Server.RateLimit.Burst,
		}, collector)
		chain = append(chain, limiter.Middleware())
	}
	return append(chain, middleware.Timeout(config.ParsedDuration(cfg.Server.Timeout, 0))), limiter
}

// webFS returns the embedded templates and assets, or the web directory on
// disk in debug mode so edits show up without a rebuild.
func webFS(mode string) (fs.FS, error) {
	if mode != gin.DebugMode {
		return web.EmbeddedFS, nil
	}
	fsys, err := resolveDebugWebFS()
	if err != nil {
		return nil, fmt.Errorf("resolve debug template fs: %w", err)
	}
	return fsys, nil
}

// csrfSecret returns the configured secret. Outside release mode a missing or
// placeholder value is replaced by a random one that lives as long as the
// process.
func csrfSecret(cfg *config.ServerConfig, log *slog.Logger) (string, error) {
	if !isPlaceholderCSRFSecret(cfg.CSRFSecret) {
		return cfg.CSRFSecret, nil
	}
	if cfg.Mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	return hex.EncodeToString(b), nil
}

// buildModules wires every business module on top of source.
func buildModules(cfg *config.Config, source *dataSource, collector *metrics.Collector, cookie middleware.SessionCookie) []Module {
	settings := order.PaymentSettings{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		Currency:  cfg.Payment.Currency,
	}
	products := catalog.NewService(source.products)
	authSvc := auth.NewService(source.auth)
	orders := order.NewService(source.orders, products, settings, collector)
	kycSvc := kyc.NewService(source.kyc, cfg.KYC.MaxUploadMB, collector)
	adminSvc := admin.NewService(source.stats, source.orders)

	return []Module{
		catalog.NewModule(catalog.NewProductHandler(products), catalog.NewPageHandler(products, sanitize.New())),
		auth.NewModule(auth.NewHandler(authSvc), auth.NewPageHandler(authSvc, cookie)),
		user.NewModule(user.NewUserHandler(user.NewService(source.users))),
		order.NewModule(order.NewOrderHandler(orders), order.NewPageHandler(orders, settings)),
		kyc.NewModule(kyc.NewKYCHandler(kycSvc), kyc.NewPageHandler(kycSvc, cfg.KYC.MaxUploadMB)),
		admin.NewModule(admin.NewAdminHandler(adminSvc)),
	}
}

func isPlaceholderCSRFSecret(secret string) bool {
	switch strings.ToLower(strings.TrimSpace(secret)) {
	case "", "change-me-to-a-random-secret", "change-me-in-env":
		return true
	}
	return false
}

// quietLogPrefixes lists the paths hit by probes, scrapers and asset loads.
func quietLogPrefixes(cfg *config.Config) []string {
	prefixes := []string{"/health", "/static/"}
	if cfg.Metrics.Enabled && cfg.Metrics.Path != "" {
		prefixes = append(prefixes, cfg.Metrics.Path)
	}
	return prefixes
}

// resolveCORSConfig overlays the configured CORS settings on the defaults.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if cfg == nil {
		if mode == gin.ReleaseMode {
			corsConfig.AllowOrigins = []string{}
		}
		return corsConfig
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	if len(cfg.ExposeHeaders) > 0 {
		corsConfig.ExposeHeaders = cfg.ExposeHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if maxAge := config.ParsedDuration(cfg.MaxAge, 0); maxAge > 0 {
		corsConfig.MaxAge = maxAge
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// resolveDebugWebFS finds web/ next to the source tree, then next to the
// executable.
func resolveDebugWebFS() (fs.FS, error) {
	var candidates []string
	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "web"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "web"))
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(filepath.Clean(dir)), nil
		}
	}
	return nil, errors.New("debug web directory not found")
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts the server down
// within shutdownTimeout and releases the App's resources.
func (a *App) Run() error {
	switch {
	case a == nil:
		return errors.New("app is nil")
	case a.cfg == nil:
		return errors.New("app config is nil")
	case a.engine == nil:
		return errors.New("app engine is nil")
	}

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started",
			slog.String("addr", addr),
			slog.String("backend_mode", a.cfg.Backend.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
		cancel()
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	a.log().Info("server stopped")
	a.release()
	return runErr
}

// release stops the rate limiter and closes the data source and the logger,
// whichever of them are set.
func (a *App) release() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.source != nil && a.source.db != nil {
		if err := a.source.close(); err != nil {
			a.log().Error("database close error", slog.Any("error", err))
		} else {
			a.log().Info("database connection closed")
		}
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}

// log returns the app logger, or the default logger when the App was built
// without one.
func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
