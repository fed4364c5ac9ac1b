// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

// TierCounter counts the stored records of one content kind per tier.
type TierCounter func(ctx context.Context) (map[access.Tier]int, error)

type Pinger func(ctx context.Context) error

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     Pinger
	RedisPing  Pinger
	// Content maps a content kind name to its counter.
	Content map[string]TierCounter
}

// Handler serves operator statistics. Every section degrades on its own:
// a backend that is not wired reports nothing and a failing count is
// flagged on its entry.
type Handler struct {
	cfg   HandlerConfig
	kinds []string
}

func NewHandler(cfg HandlerConfig) *Handler {
	kinds := make([]string, 0, len(cfg.Content))
	for name := range cfg.Content {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)

	return &Handler{cfg: cfg, kinds: kinds}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.GetSystemStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
		r.Get("/content", h.GetContentStats)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.cfg.DBPing),
			Stats:   h.dbPool(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.cfg.RedisPing),
			Stats:   h.redisPool(),
		},
		Runtime: readRuntime(),
		Content: h.countContent(ctx),
	})
}

func (h *Handler) GetContentStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.countContent(r.Context()))
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.dbPool())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisPool())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntime())
}

// countContent reports per-tier totals in kind name order.
func (h *Handler) countContent(ctx context.Context) []ContentStats {
	stats := make([]ContentStats, 0, len(h.kinds))

	for _, name := range h.kinds {
		entry := ContentStats{Kind: name}

		counts, err := h.cfg.Content[name](ctx)
		if err != nil {
			slog.Error("content count failed", "kind", name, "error", err)
			entry.Error = "count failed"
		} else {
			entry.ByTier = counts
			for _, n := range counts {
				entry.Total += n
			}
		}

		stats = append(stats, entry)
	}

	return stats
}

// pingOK treats an unwired backend as healthy.
func pingOK(ctx context.Context, ping Pinger) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func (h *Handler) dbPool() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}

	s := h.cfg.DBStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxIdleTimeClosed:  s.MaxIdleTimeClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisPool() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}

	s := h.cfg.RedisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}
