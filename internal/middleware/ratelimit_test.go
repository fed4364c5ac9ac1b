// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/prepvault/internal/access"
)

// unreachableRedis forces every limiter onto the in-process fallback.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func ok200(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimiterFallsBackLocally(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit: PerMinute(1, 1),
	})
	h := rl.Handler(http.HandlerFunc(ok200))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/questions", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/questions", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestTieredRateLimiter(t *testing.T) {
	tiers := map[access.Tier]TierLimit{
		access.TierExplorer:  {RequestsPerMinute: 1, BurstSize: 1},
		access.TierInnovator: {RequestsPerMinute: 100, BurstSize: 100},
	}
	mw := TieredRateLimiter(unreachableRedis(t), tiers)
	h := mw(http.HandlerFunc(ok200))

	serve := func(p access.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req = req.WithContext(access.WithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	explorer := access.Principal{UserID: "u-explorer", Authenticated: true, Tier: access.TierExplorer}
	assert.Equal(t, http.StatusOK, serve(explorer).Code)
	limited := serve(explorer)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "Explorer", limited.Header().Get("X-RateLimit-Tier"))

	innovator := access.Principal{UserID: "u-innovator", Authenticated: true, Tier: access.TierInnovator}
	for range 5 {
		assert.Equal(t, http.StatusOK, serve(innovator).Code)
	}

	admin := access.Principal{UserID: "u-admin", Authenticated: true, Admin: true}
	for range 5 {
		rec := serve(admin)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Tier"))
	}
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/questions/42", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ratelimit:ip:10.0.0.1", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))

	authed := req.WithContext(access.WithPrincipal(req.Context(),
		access.Principal{UserID: "u-1", Authenticated: true}))
	assert.Equal(t, "ratelimit:user:u-1:endpoint:/v1/questions/{id}", KeyByUserAndEndpoint(authed))
}
