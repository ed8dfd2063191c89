package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gudang-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil redis
// pinger reports "disabled".
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger Pinger, redisPinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gudang-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "disabled"}
		failed := false

		if dbPinger == nil {
			checks["database"] = "missing"
			failed = true
		} else if err := dbPinger.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			failed = true
			warnUnavailable(ctx, logg, "health.database.unavailable", err)
		}

		if redisPinger != nil {
			checks["redis"] = "ok"
			if err := redisPinger.Ping(ctx); err != nil {
				checks["redis"] = "unavailable"
				failed = true
				warnUnavailable(ctx, logg, "health.redis.unavailable", err)
			}
		}

		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func warnUnavailable(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Warn(logg.WithField(ctx, "error", err.Error()), msg)
}
