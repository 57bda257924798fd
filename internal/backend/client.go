// Package backend is the remote data source: a REST client for the
// marketplace backend API and the repositories built on it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/pkg"
	"github.com/simp-lee/rentfront/internal/session"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Client talks to the marketplace backend. Every call carries the viewer's
// bearer token and the request id found on ctx. Identical concurrent GETs
// made with the same credential share one upstream request. Calls are never
// retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
	group      singleflight.Group
}

// NewClient creates a Client for baseURL (e.g. "https://api.example.com/api").
// timeout bounds each call.
func NewClient(baseURL string, timeout time.Duration, collector *metrics.Collector) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    collector,
	}
}

// errorBody is the backend's error envelope. Older endpoints use "error"
// instead of "message".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Ping checks that the backend answers. Any non-5xx response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}

// get fetches path and decodes the JSON body into out.
//
// The shared fetch is detached from the caller that started it and is
// bounded by the client timeout only, so one caller going away does not fail
// the others waiting on the same key. Each caller stops waiting when its own
// ctx ends.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	target := c.url(path, query)
	token := session.FromContext(ctx).Token
	key := target + "\x00" + token

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.roundTrip(fetchCtx, endpoint, http.MethodGet, target, nil, "")
	})

	select {
	case <-ctx.Done():
		return domain.NewAppError(domain.CodeUpstream, "backend unavailable", ctx.Err())
	case res := <-ch:
		if res.Shared {
			slog.DebugContext(ctx, "backend request coalesced", slog.String("endpoint", endpoint))
		}
		if res.Err != nil {
			return res.Err
		}
		return decode(endpoint, res.Val.([]byte), out)
	}
}

// send issues a non-GET request with a JSON body (in may be nil).
func (c *Client) send(ctx context.Context, endpoint, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode backend request", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	data, err := c.roundTrip(ctx, endpoint, method, c.url(path, nil), body, contentType)
	if err != nil {
		return err
	}
	return decode(endpoint, data, out)
}

// sendRaw issues a request with a prebuilt body, e.g. multipart.
func (c *Client) sendRaw(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string, out any) error {
	data, err := c.roundTrip(ctx, endpoint, method, c.url(path, nil), body, contentType)
	if err != nil {
		return err
	}
	return decode(endpoint, data, out)
}

func (c *Client) roundTrip(ctx context.Context, endpoint, method, target string, body io.Reader, contentType string) (data []byte, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordBackendCall(endpoint, err, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "build backend request", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := session.FromContext(ctx).Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := pkg.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "backend request failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err),
		)
		return nil, domain.NewAppError(domain.CodeUpstream, "backend unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		appErr := statusError(resp.StatusCode, raw)
		slog.DebugContext(ctx, "backend returned error",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return nil, appErr
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeUpstream, "read backend response", err)
	}
	return data, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func decode(endpoint string, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewAppError(domain.CodeUpstream, "malformed backend response", fmt.Errorf("%s: %w", endpoint, err))
	}
	return nil
}

// statusError maps a backend error status to a domain error. Only client
// error messages are carried through; server failures stay generic.
func statusError(status int, raw []byte) *domain.AppError {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	cause := fmt.Errorf("backend status %d", status)

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewAppError(domain.CodeValidation, orDefault(msg, "invalid request"), cause)
	case http.StatusUnauthorized:
		return domain.NewAppError(domain.CodeUnauthorized, orDefault(msg, "unauthorized"), cause)
	case http.StatusForbidden:
		return domain.NewAppError(domain.CodeForbidden, orDefault(msg, "forbidden"), cause)
	case http.StatusNotFound:
		return domain.NewAppError(domain.CodeNotFound, orDefault(msg, "not found"), cause)
	case http.StatusConflict:
		return domain.NewAppError(domain.CodeAlreadyExists, orDefault(msg, "already exists"), cause)
	default:
		return domain.NewAppError(domain.CodeUpstream, "backend unavailable", cause)
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
