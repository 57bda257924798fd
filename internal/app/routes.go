package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/rentfront/internal/middleware"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// healthTimeout bounds each dependency probe of the health check.
const healthTimeout = time.Second

// HealthCheck probes one dependency, e.g. the backend API or the local
// database, under the given component name.
type HealthCheck struct {
	Component string
	Ping      func(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	Health  []HealthCheck

	// Web is the tree holding static/ and templates/. StaticMaxAge sets the
	// Cache-Control of /static responses; zero disables caching.
	Web          fs.FS
	StaticMaxAge time.Duration

	CSRFSecret string
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool

	// MetricsPath and MetricsHandler expose Prometheus metrics when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// RegisterRoutes mounts the system routes, then lets every module add its
// JSON endpoints under /api/v1 and its pages under / (CSRF protected).
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	switch {
	case r == nil:
		return errors.New("router is nil")
	case deps == nil:
		return errors.New("route dependencies are nil")
	case len(deps.Modules) == 0:
		return errors.New("at least one module is required")
	case strings.TrimSpace(deps.CSRFSecret) == "":
		return errors.New("csrf secret is required")
	case deps.Web == nil:
		return errors.New("web filesystem is required")
	}
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
	}

	static, err := fs.Sub(deps.Web, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	r.GET("/static/*filepath", staticHandler(static, deps.StaticMaxAge))
	r.HEAD("/static/*filepath", staticHandler(static, deps.StaticMaxAge))

	r.GET("/health", healthHandler(deps.Health...))
	if deps.MetricsHandler != nil && deps.MetricsPath != "" {
		r.GET(deps.MetricsPath, gin.WrapH(deps.MetricsHandler))
	}

	api := r.Group("/api/v1")
	pages := r.Group("/")
	pages.Use(middleware.CSRF(middleware.CSRFConfig{
		Secret: deps.CSRFSecret,
		Secure: deps.SecureCookies,
	}))
	for _, m := range deps.Modules {
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

// healthHandler probes every check concurrently. The response is 200 when
// all components answer and 503 otherwise:
//
//	{"status":"degraded","components":{"backend":"error"}}
//
// With no checks configured the frontend has nothing to serve from and
// reports a failing "backend".
func healthHandler(checks ...HealthCheck) gin.HandlerFunc {
	if len(checks) == 0 {
		checks = []HealthCheck{{Component: "backend"}}
	}
	return func(c *gin.Context) {
		results := make([]error, len(checks))
		var g errgroup.Group
		for i, check := range checks {
			g.Go(func() error {
				results[i] = probe(c.Request.Context(), check.Ping)
				return nil
			})
		}
		_ = g.Wait()

		status, code := "ok", http.StatusOK
		components := make(gin.H, len(checks))
		for i, check := range checks {
			name := check.Component
			if name == "" {
				name = "backend"
			}
			components[name] = "ok"
			if results[i] != nil {
				components[name] = "error"
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "components": components})
	}
}

func probe(ctx context.Context, ping func(ctx context.Context) error) error {
	if ping == nil {
		return errors.New("no health probe configured")
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return ping(ctx)
}

// noRouteHandler answers unknown API paths with the JSON envelope and
// everything else through RenderError's content negotiation.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
			return
		}
		pkg.RenderError(c, http.StatusNotFound, "not found")
	}
}

// staticHandler serves files from fsys mounted at /static. Directory
// listings are not exposed.
func staticHandler(fsys fs.FS, maxAge time.Duration) gin.HandlerFunc {
	files := http.StripPrefix("/static", http.FileServerFS(fsys))
	cacheControl := "no-cache"
	if maxAge > 0 {
		cacheControl = "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	}
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("filepath"), "/")
		if name == "" || strings.HasSuffix(name, "/") {
			pkg.RenderError(c, http.StatusNotFound, "not found")
			return
		}
		c.Header("Cache-Control", cacheControl)
		files.ServeHTTP(c.Writer, c.Request)
	}
}
