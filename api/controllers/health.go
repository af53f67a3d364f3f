package controllers

import (
	"net/http"

	"github.com/tradesphere/tradesphere-backend/api/responses"
	"github.com/tradesphere/tradesphere-backend/pkg/db"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// HealthReady reports readiness, including database reachability.
func HealthReady(pinger db.Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{
			"service":  "ok",
			"database": "ok",
		}

		httpStatus := http.StatusOK
		if err := pinger.Ping(r.Context()); err != nil {
			log.Error(r.Context(), "database health check failed", err)
			status["database"] = "unreachable"
			httpStatus = http.StatusServiceUnavailable
		}

		responses.WriteSuccess(w, httpStatus, status)
	}
}
