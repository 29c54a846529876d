package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	limiter := newFakeLimiter()
	handler := RateLimit(NewRateLimitPolicy("browse", time.Minute, 2), limiter, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	if got := limiter.scopes["ip:browse:1.2.3.4"]; got != 2 {
		t.Fatalf("expected 2 hits on ip scope, got %d", got)
	}
}

func TestRateLimit_IPLimitTriggers(t *testing.T) {
	limiter := newFakeLimiter()
	handler := RateLimit(NewRateLimitPolicy("browse", time.Minute, 1), limiter, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("expected success, got %d", rec.Code)
		}
		if i == 1 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		}
	}
	if _, ok := limiter.scopes["ip:browse:9.9.9.9"]; !ok {
		t.Fatalf("expected first forwarded address to be used, got %v", limiter.scopes)
	}
}

func TestRateLimit_LimiterFailure(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("browse", time.Minute, 1), limiter, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when limiter fails, got %d", rec.Code)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("browse", 0, 1), newFakeLimiter(), nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}

	handler = RateLimit(NewRateLimitPolicy("browse", time.Minute, 1), nil, nil)(okHandler())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through without limiter, got %d", rec.Code)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type fakeLimiter struct {
	mu     sync.Mutex
	scopes map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{scopes: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.scopes[scope]++
	return f.scopes[scope] <= limit, f.scopes[scope], nil
}
