package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts a go-redis client to Pinger.
type RedisPinger struct {
	Client redis.Cmdable
}

func (r RedisPinger) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

type HealthChecker struct {
	db    Pinger
	redis Pinger
	log   *slog.Logger
}

// NewHealthChecker builds the /healthz handler. redis may be nil when sessions are kept in memory.
func NewHealthChecker(log *slog.Logger, db Pinger, redis Pinger) *HealthChecker {
	return &HealthChecker{
		db:    db,
		redis: redis,
		log:   log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", "error", err)
	} else {
		status["database"] = "ok"
	}

	switch {
	case h.redis == nil:
		status["sessions"] = "memory"
	case h.redis.Ping(req.Context()) != nil:
		status["sessions"] = "unreachable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: Redis session store unreachable")
	default:
		status["sessions"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
