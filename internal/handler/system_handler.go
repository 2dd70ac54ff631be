package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SystemHandler reports runtime and dependency health for admins.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       redis.Cmdable
	tracker   *service.SessionTracker
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. pool and rdb may be nil.
func NewSystemHandler(pool *pgxpool.Pool, rdb redis.Cmdable, tracker *service.SessionTracker, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		tracker:   tracker,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStats struct {
	Uptime             string `json:"uptime"`
	Goroutines         int    `json:"goroutines"`
	HeapAllocBytes     uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes       uint64 `json:"heap_sys_bytes"`
	NumGC              uint32 `json:"num_gc"`
	ActiveTestSessions int64  `json:"active_test_sessions"`
	Postgres           string `json:"postgres"`
	Redis              string `json:"redis"`
}

// GetStats godoc
// GET /api/v1/admin/system/stats
// Returns Go runtime counters, live test count and dependency status.
func (h *SystemHandler) GetStats(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	stats := systemStats{
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
		Postgres:       "disabled",
		Redis:          "disabled",
	}

	if h.pool != nil {
		stats.Postgres = pingStatus(h.pool.Ping(ctx))
	}
	if h.rdb != nil {
		stats.Redis = pingStatus(h.rdb.Ping(ctx).Err())
	}
	if h.tracker != nil {
		n, err := h.tracker.Active(ctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("Active session count failed")
		}
		stats.ActiveTestSessions = n
	}

	response.Success(c, http.StatusOK, stats)
}

func pingStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
