// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type RateLimitConfig struct {
	Limit redis_rate.Limit
	// LimitFunc picks the limit per request and takes precedence over Limit.
	LimitFunc  func(*http.Request) redis_rate.Limit
	KeyFunc    func(*http.Request) string
	BypassFunc func(*http.Request) bool
	FailOpen   bool
}

// RateLimiter counts requests in Redis. While Redis is unreachable each
// instance falls back to an in-process token bucket per key.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.LimitFunc == nil {
		limit := cfg.Limit
		cfg.LimitFunc = func(*http.Request) redis_rate.Limit { return limit }
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		limit := rl.config.LimitFunc(r)

		res, err := rl.allow(r.Context(), key, limit)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(err, "rate limiter unavailable",
				http.StatusServiceUnavailable, "UNAVAILABLE"))
			return
		}

		setRateLimitHeaders(w, res, limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, limit)
	if err == nil {
		return res, nil
	}
	return rl.fallback.allow(key, limit)
}

type TierLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultTierLimits gives higher subscription tiers more headroom.
// Anonymous traffic is limited as the lowest tier.
var DefaultTierLimits = map[access.Tier]TierLimit{
	access.TierExplorer:  {RequestsPerMinute: 60, BurstSize: 10},
	access.TierBuilder:   {RequestsPerMinute: 300, BurstSize: 50},
	access.TierInnovator: {RequestsPerMinute: 1200, BurstSize: 200},
}

// TieredRateLimiter limits by user and subscription tier. It must run after
// the principal has been attached; admins are not limited.
func TieredRateLimiter(
	rdb *redis.Client,
	tiers map[access.Tier]TierLimit,
) func(http.Handler) http.Handler {
	rl := NewRateLimiter(rdb, RateLimitConfig{
		KeyFunc: KeyByUser,
		LimitFunc: func(r *http.Request) redis_rate.Limit {
			tl, ok := tiers[access.FromContext(r.Context()).Tier]
			if !ok {
				tl = tiers[access.LowestTier()]
			}
			return PerMinute(tl.RequestsPerMinute, tl.BurstSize)
		},
		BypassFunc: func(r *http.Request) bool {
			return access.FromContext(r.Context()).Admin
		},
	})

	return func(next http.Handler) http.Handler {
		limited := rl.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := access.FromContext(r.Context())
			if !p.Admin {
				w.Header().Set("X-RateLimit-Tier", p.Tier.String())
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}

const keyPrefix = "ratelimit:"

// KeyByIP trusts the last X-Forwarded-For hop, which is the one appended
// by our own proxy.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return keyPrefix + "ip:" + strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return keyPrefix + "ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return keyPrefix + "ip:" + ip
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return keyPrefix + "user:" + userID
	}
	return KeyByIP(r)
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

// normalizeEndpoint folds ids out of a path so that every record shares
// one bucket per route.
func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if isUUID(part) || isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isUUID(s string) bool {
	return len(s) == 36 && s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-'
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Error: &core.ErrorBody{
			Code:    "RATE_LIMITED",
			Message: fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		},
	})
}
