// AngelaMos | 2026
// ratelimit_local.go

package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

type bucket struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

// localLimiter is the per-process fallback used while Redis is down.
// Buckets idle for entryTTL are swept.
type localLimiter struct {
	buckets sync.Map
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.sweep()
	return l
}

func (l *localLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.buckets.Range(func(key, value any) bool {
			if b, ok := value.(*bucket); ok && b.lastAccess.Load() < cutoff {
				l.buckets.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) get(key string, limit redis_rate.Limit, perSec float64) *bucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*bucket) //nolint:forcetypeassert // only buckets are stored
	}

	fresh := &bucket{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
	v, _ := l.buckets.LoadOrStore(key, fresh)
	return v.(*bucket) //nolint:forcetypeassert // only buckets are stored
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSec)

	b := l.get(key, limit, perSec)
	b.lastAccess.Store(time.Now().Unix())

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}

	if b.limiter.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.limiter.Tokens()), 0)

	return res, nil
}
