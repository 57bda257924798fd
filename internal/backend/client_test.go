package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/pkg"
	"github.com/simp-lee/rentfront/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/api/", 2*time.Second, nil), ts
}

func viewerCtx(token string) context.Context {
	ctx := pkg.WithRequestID(context.Background(), "req-123")
	if token == "" {
		return ctx
	}
	return session.WithSession(ctx, session.Session{State: session.Authenticated, Token: token})
}

func TestClient_ForwardsCredentialAndRequestID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-123" {
			t.Errorf("X-Request-ID = %q", got)
		}
		w.Write([]byte(`{"stats":{"totalUsers":3,"revenue":1250.5}}`))
	})

	stats, err := NewStatsRepository(c).Stats(viewerCtx("tok-1"))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalUsers != 3 || stats.Revenue != 1250.5 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestClient_AnonymousSendsNoAuthorization(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		w.Write([]byte(`{"product":{"id":"p1","name":"Drill"}}`))
	})

	if _, err := NewProductRepository(c).GetByID(viewerCtx(""), "p1"); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{400, `{"message":"durationDays is required"}`, domain.IsValidation, "durationDays is required"},
		{422, `{"error":"bad document"}`, domain.IsValidation, "bad document"},
		{401, ``, domain.IsUnauthorized, "unauthorized"},
		{403, `{"message":"admins only"}`, domain.IsForbidden, "admins only"},
		{404, `{"message":"product not found"}`, domain.IsNotFound, "product not found"},
		{409, `{"message":"email taken"}`, domain.IsAlreadyExists, "email taken"},
		{500, `{"message":"pq: connection refused"}`, domain.IsUpstream, "backend unavailable"},
		{503, `oops`, domain.IsUpstream, "backend unavailable"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := NewProductRepository(c).GetByID(context.Background(), "p1")
			if !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
			var appErr *domain.AppError
			if !errors.As(err, &appErr) || appErr.Message != tt.message {
				t.Errorf("message = %v, want %q", err, tt.message)
			}
		})
	}
}

func TestClient_TransportErrorIsUpstream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewClient(url, time.Second, nil)
	_, err := NewProductRepository(c).List(context.Background(), domain.PageRequest{Page: 1, PageSize: 20})
	if !domain.IsUpstream(err) {
		t.Fatalf("err = %v, want upstream", err)
	}
}

func TestClient_MalformedBodyIsUpstream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product":`))
	})
	_, err := NewProductRepository(c).GetByID(context.Background(), "p1")
	if !domain.IsUpstream(err) {
		t.Fatalf("err = %v, want upstream", err)
	}
}

func TestClient_CoalescesIdenticalGets(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 8)
	release := make(chan struct{})

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		<-release
		w.Write([]byte(`{"product":{"id":"p1","name":"Drill"}}`))
	})
	repo := NewProductRepository(c)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	call := func() {
		defer wg.Done()
		p, err := repo.GetByID(viewerCtx("tok"), "p1")
		if err == nil && p.Name != "Drill" {
			t.Errorf("product = %+v", p)
		}
		results <- err
	}

	wg.Add(1)
	go call()
	<-arrived
	for range 4 {
		wg.Add(1)
		go call()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestClient_CoalescedGetSurvivesFirstCallerCancel(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 4)
	release := make(chan struct{})

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		<-release
		w.Write([]byte(`{"products":[{"id":"p1","name":"Drill"}],"totalPages":1,"totalProducts":1}`))
	})
	repo := NewProductRepository(c)
	req := domain.PageRequest{Page: 1, PageSize: 20}

	firstCtx, cancel := context.WithCancel(viewerCtx(""))
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := repo.List(firstCtx, req)
		firstErr <- err
	}()
	<-arrived

	secondErr := make(chan error, 1)
	go func() {
		res, err := repo.List(viewerCtx(""), req)
		if err == nil && (len(res.Items) != 1 || res.Items[0].Name != "Drill") {
			t.Errorf("result = %+v", res)
		}
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !domain.IsUpstream(err) || !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled caller err = %v, want upstream wrapping context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller still waiting on the shared fetch")
	}

	close(release)
	select {
	case err := <-secondErr:
		if err != nil {
			t.Fatalf("live caller err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("live caller did not receive the shared result")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestClient_DifferentCredentialsNotCoalesced(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"orders":[],"totalPages":0,"totalOrders":0}`))
	})
	repo := NewOrderRepository(c)
	req := domain.PageRequest{Page: 1, PageSize: 20}

	if _, err := repo.ListByUser(viewerCtx("alice"), "", req); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ListByUser(viewerCtx("bob"), "", req); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats":{}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second, metrics.NewCollector(reg))
	if _, err := NewStatsRepository(c).Stats(context.Background()); err != nil {
		t.Fatal(err)
	}

	families, _ := reg.Gather()
	for _, mf := range families {
		if mf.GetName() == "rentfront_backend_requests_total" {
			if v := mf.GetMetric()[0].GetCounter().GetValue(); v != 1 {
				t.Errorf("backend_requests_total = %v", v)
			}
			return
		}
	}
	t.Error("rentfront_backend_requests_total not found")
}

func TestClient_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(int(status.Load()))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping with 404: %v", err)
	}
	status.Store(http.StatusServiceUnavailable)
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping with 503 should fail")
	}
}
