// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/core"
	"github.com/carterperez-dev/postgate/internal/post"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int, error)
}

type PostCounter interface {
	CountByStatus(ctx context.Context) (map[post.Status]int, error)
}

type Handler struct {
	users      UserCounter
	posts      PostCounter
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
}

type HandlerConfig struct {
	Users      UserCounter
	Posts      PostCounter
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		users:      cfg.Users,
		posts:      cfg.Posts,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
	}
}

// RegisterRoutes mounts the dashboard on a router that already enforces
// the ADMIN role.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.GetStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

// GetStats is the moderation dashboard: who is registered, what is
// waiting for review, and whether the backing stores are reachable.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg         sync.WaitGroup
		userCounts map[access.Role]int
		postCounts map[post.Status]int
		userErr    error
		postErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		userCounts, userErr = h.users.CountByRole(ctx)
	}()
	go func() {
		defer wg.Done()
		postCounts, postErr = h.posts.CountByStatus(ctx)
	}()
	wg.Wait()

	if userErr != nil {
		core.InternalServerError(w, userErr)
		return
	}
	if postErr != nil {
		core.InternalServerError(w, postErr)
		return
	}

	response := StatsResponse{
		Users:    toUserStats(userCounts),
		Posts:    toPostStats(postCounts),
		Database: DatabaseStatus{Healthy: ping(ctx, h.dbPing), Stats: h.getDBStats()},
		Redis:    RedisStatus{Healthy: ping(ctx, h.redisPing), Stats: h.getRedisStats()},
	}

	core.OK(w, response)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	})
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	if fn == nil {
		return false
	}
	return fn(ctx) == nil
}

func toUserStats(counts map[access.Role]int) UserStats {
	stats := UserStats{ByRole: make(map[string]int, len(counts))}
	for role, n := range counts {
		stats.ByRole[role.String()] = n
		stats.Total += n
	}
	return stats
}

func toPostStats(counts map[post.Status]int) PostStats {
	stats := PostStats{ByStatus: make(map[string]int, len(counts))}
	for status, n := range counts {
		stats.ByStatus[status.String()] = n
		stats.Total += n
	}
	stats.AwaitingReview = counts[post.StatusPending]
	return stats
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}
