package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lynk-ai/lynk-backend/api/responses"
	"github.com/lynk-ai/lynk-backend/pkg/config"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

const (
	apiVersion   = "0.1.0"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency with a health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Root(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Welcome to %s", cfg.App.Name),
			"version": apiVersion,
			"endpoints": map[string]string{
				"events":  "/events",
				"cron":    "/cron",
				"email":   "/email",
				"hubspot": "/hubspot",
			},
		})
	}
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// HealthReady pings the database and redis; any failure is a 503.
func HealthReady(logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger Pinger
		}{
			{name: "database", pinger: dbP},
			{name: "redis", pinger: redisP},
		}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
