package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

func newAccessLogRouter(log *slog.Logger, cfg LoggerConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), LoggerWithConfig(log, cfg))
	r.GET("/products/:id", func(c *gin.Context) { c.String(http.StatusOK, "camera") })
	r.POST("/orders", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
	r.GET("/orders/:id", func(c *gin.Context) { c.String(http.StatusNotFound, "missing") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/static/*filepath", func(c *gin.Context) { c.String(http.StatusOK, "css") })
	r.GET("/dashboard", func(c *gin.Context) {
		_ = c.Error(errors.New("backend unavailable"))
		c.String(http.StatusBadGateway, "bad gateway")
	})
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(20 * time.Millisecond)
		c.String(http.StatusOK, "done")
	})
	return r
}

func accessLog(t *testing.T, cfg LoggerConfig, level slog.Level, method, path string) string {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))
	r := newAccessLogRouter(log, cfg)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	return buf.String()
}

func TestLogger_LevelByOutcome(t *testing.T) {
	cfg := LoggerConfig{QuietPrefixes: []string{"/health", "/static/"}, SlowThreshold: 5 * time.Millisecond}

	tests := []struct {
		name   string
		method string
		path   string
		level  string
	}{
		{"success", http.MethodGet, "/products/p-1", "level=INFO"},
		{"created", http.MethodPost, "/orders", "level=INFO"},
		{"client error", http.MethodGet, "/orders/o-404", "level=WARN"},
		{"server error", http.MethodGet, "/dashboard", "level=ERROR"},
		{"slow", http.MethodGet, "/slow", "level=WARN"},
		{"health probe", http.MethodGet, "/health", "level=DEBUG"},
		{"asset", http.MethodGet, "/static/css/app.css", "level=DEBUG"},
		{"unknown route", http.MethodGet, "/static-pages", "level=WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := accessLog(t, cfg, slog.LevelDebug, tt.method, tt.path)
			if !strings.Contains(out, tt.level) {
				t.Errorf("expected %s, got:\n%s", tt.level, out)
			}
		})
	}
}

func TestLogger_QuietRequestsHiddenAtInfo(t *testing.T) {
	cfg := LoggerConfig{QuietPrefixes: []string{"/health"}}

	if out := accessLog(t, cfg, slog.LevelInfo, http.MethodGet, "/health"); out != "" {
		t.Errorf("health probe should not be logged at info:\n%s", out)
	}
	if out := accessLog(t, cfg, slog.LevelInfo, http.MethodGet, "/products/p-1"); out == "" {
		t.Error("catalog request should be logged at info")
	}
}

func TestLogger_SlowThresholdDisabledByDefault(t *testing.T) {
	out := accessLog(t, LoggerConfig{}, slog.LevelDebug, http.MethodGet, "/slow")
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("expected INFO without a threshold, got:\n%s", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	out := accessLog(t, LoggerConfig{}, slog.LevelDebug, http.MethodPost, "/orders")
	for _, want := range []string{"msg=request", "method=POST", "path=/orders", "route=/orders", "status=201", "bytes=7", "latency=", "client_ip="} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogger_HandlerErrors(t *testing.T) {
	out := accessLog(t, LoggerConfig{}, slog.LevelDebug, http.MethodGet, "/dashboard")
	if !strings.Contains(out, "backend unavailable") || !strings.Contains(out, "route=/dashboard") {
		t.Errorf("expected handler error in log:\n%s", out)
	}
}

func TestLogger_UnmatchedRouteHasEmptyRoute(t *testing.T) {
	out := accessLog(t, LoggerConfig{}, slog.LevelDebug, http.MethodGet, "/nowhere")
	if !strings.Contains(out, "route=\"\"") || !strings.Contains(out, "status=404") {
		t.Errorf("unexpected log:\n%s", out)
	}
}

func TestLogger_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&buf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	defer log.Close()

	r := gin.New()
	r.Use(RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}), Logger(log.Logger))
	r.GET("/orders", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(requestIDHeader, "edge-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "edge-42") {
		t.Errorf("expected request_id in log:\n%s", buf.String())
	}
}

func TestLogger_NilLoggerUsesDefault(t *testing.T) {
	r := gin.New()
	r.Use(Logger(nil))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHasAnyPrefix(t *testing.T) {
	prefixes := []string{"", "/static/", "/metrics"}
	tests := map[string]bool{
		"/static/js/checkout.js": true,
		"/metrics":               true,
		"/static":                false,
		"/orders":                false,
	}
	for path, want := range tests {
		if got := hasAnyPrefix(path, prefixes); got != want {
			t.Errorf("hasAnyPrefix(%q) = %v, want %v", path, got, want)
		}
	}
}
