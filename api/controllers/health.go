package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/pkg/config"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

const readyProbeTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TradeDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TradeDesk-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, pinger := range map[string]db.Pinger{"database": dbP, "redis": redisP} {
			if pinger == nil {
				checks[name] = "not configured"
				healthy = false
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "readiness probe failed", err)
				}
				checks[name] = "unreachable"
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, checks)
	}
}
