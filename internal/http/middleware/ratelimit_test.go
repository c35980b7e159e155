package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newLimitedEcho(t *testing.T, cfg RateLimitConfig) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.POST("/contact", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RateLimitMiddleware(cfg))
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_FixedWindowPerIP(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2025, 1, 1, 10, 0, 15, 0, time.UTC)
	limited := 0
	e := newLimitedEcho(t, RateLimitConfig{
		Redis:          rdb,
		Limit:          2,
		Window:         time.Minute,
		KeyPrefix:      "rl:contact:",
		RetryAfterHint: true,
		OnLimited:      func(echo.Context) { limited++ },
		Now:            func() time.Time { return now },
	})

	for i := 0; i < 2; i++ {
		if rec := post(e, "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}

	rec := post(e, "203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "45" {
		t.Errorf("Retry-After: got %q, want %q", got, "45")
	}
	if limited != 1 {
		t.Errorf("OnLimited calls: got %d, want 1", limited)
	}

	// other clients have their own budget
	if rec := post(e, "198.51.100.1"); rec.Code != http.StatusOK {
		t.Errorf("other ip: got %d, want 200", rec.Code)
	}

	// next window resets
	now = now.Add(time.Minute)
	if rec := post(e, "203.0.113.7"); rec.Code != http.StatusOK {
		t.Errorf("next window: got %d, want 200", rec.Code)
	}

	if ttl := mr.TTL("rl:contact:203.0.113.7:" + "1735725600"); ttl != 2*time.Minute {
		t.Errorf("ttl: got %v, want 2m", ttl)
	}
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	t.Parallel()

	e := newLimitedEcho(t, RateLimitConfig{Limit: 1})
	for i := 0; i < 3; i++ {
		if rec := post(e, "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	e := newLimitedEcho(t, RateLimitConfig{Redis: rdb, Limit: 1})
	for i := 0; i < 3; i++ {
		if rec := post(e, "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRateLimit_IgnoresSpoofedHeaders(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newLimitedEcho(t, RateLimitConfig{Redis: rdb, Limit: 1})

	codes := make([]int, 0, 3)
	for _, spoof := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("CF-Connecting-IP", spoof)
		req.Header.Set("X-Forwarded-For", spoof)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes: got %v, want [200 429 429]", codes)
	}
}
