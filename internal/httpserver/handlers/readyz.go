package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/respond"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

const readyzTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz pings the database and Redis. Any failure answers 503.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"database": check(ctx, d, "database", d.Database, "imports-disabled"),
			"redis":    check(ctx, d, "redis", d.Redis, "authentication-degraded"),
		}

		ready := true
		for _, c := range components {
			ready = ready && c.OK
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, readyzResponse{
			Ready:      ready,
			Components: components,
		})
	}
}

func check(ctx context.Context, d deps.Deps, name string, p deps.Pinger, impact string) componentStatus {
	if p == nil {
		return componentStatus{OK: false, Impact: impact, Error: "not initialized"}
	}
	if err := p.Ping(ctx); err != nil {
		d.Logger.Warn("readiness check failed",
			logger.String("component", name),
			logger.Error(err))
		return componentStatus{OK: false, Impact: impact, Error: "unreachable"}
	}
	return componentStatus{OK: true}
}
