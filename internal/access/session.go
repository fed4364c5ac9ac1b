// AngelaMos | 2026
// session.go

package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccountSource is the persisted side of a principal: the profile's admin
// flag and the tier of the user's active subscription.
type AccountSource interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	// ActiveTier returns the tier name of the active subscription, or
	// ok=false when the user has none.
	ActiveTier(ctx context.Context, userID string) (name string, ok bool, err error)
}

type Cache interface {
	Get(ctx context.Context, userID string) (Principal, bool, error)
	Set(ctx context.Context, p Principal, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// Resolver builds the principal for an authenticated user and keeps it
// cached for the session. The cache is refreshed on sign-in, dropped on
// sign-out or tier change, and can be refreshed explicitly.
type Resolver struct {
	source AccountSource
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewResolver(
	source AccountSource,
	cache Cache,
	ttl time.Duration,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (Principal, error) {
	if userID == "" {
		return Anonymous(), nil
	}

	if p, ok, err := r.cache.Get(ctx, userID); err != nil {
		r.logger.Warn("session cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return p, nil
	}

	return r.load(ctx, userID)
}

// Refresh discards any cached principal and reads it again from the store.
func (r *Resolver) Refresh(ctx context.Context, userID string) (Principal, error) {
	if err := r.Invalidate(ctx, userID); err != nil {
		r.logger.Warn("session cache invalidate failed", "user_id", userID, "error", err)
	}
	return r.load(ctx, userID)
}

func (r *Resolver) Invalidate(ctx context.Context, userID string) error {
	if err := r.cache.Delete(ctx, userID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

func (r *Resolver) load(ctx context.Context, userID string) (Principal, error) {
	admin, err := r.source.IsAdmin(ctx, userID)
	if err != nil {
		return Anonymous(), fmt.Errorf("resolve principal: %w", err)
	}

	p := Principal{
		UserID:        userID,
		Authenticated: true,
		Admin:         admin,
		Tier:          LowestTier(),
	}

	name, ok, err := r.source.ActiveTier(ctx, userID)
	if err != nil {
		// Fail open to the lowest tier, and do not cache the degraded result.
		r.logger.Warn("subscription lookup failed, using lowest tier",
			"user_id", userID,
			"error", err,
		)
		return p, nil
	}

	if ok {
		tier, parseErr := ParseTier(name)
		if parseErr != nil {
			r.logger.Warn("unrecognised subscription tier, using lowest tier",
				"user_id", userID,
				"tier", name,
			)
		} else {
			p.Tier = tier
		}
	}

	if err := r.cache.Set(ctx, p, r.ttl); err != nil {
		r.logger.Warn("session cache write failed", "user_id", userID, "error", err)
	}

	return p, nil
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func sessionKey(userID string) string {
	return "session:principal:" + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) (Principal, bool, error) {
	raw, err := c.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Principal{}, false, nil
	}
	if err != nil {
		return Principal{}, false, fmt.Errorf("get cached principal: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Principal{}, false, fmt.Errorf("decode cached principal: %w", err)
	}

	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, p Principal, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}

	if err := c.client.Set(ctx, sessionKey(p.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache principal: %w", err)
	}

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cached principal: %w", err)
	}
	return nil
}
