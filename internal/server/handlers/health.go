package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/api"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
)

// Pinger reports whether a dependency is reachable. provenance.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth godoc
//
//	@Summary		Health (liveness) Check
//	@Description	Check if the HTTP service is alive and responding.
//	@Tags			Common
//	@Produce		plain
//
//	@Success		200	{string}	string	"OK"
//
//	@Router			/health/live [get]
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleReadiness godoc
//
//	@Summary		Readiness Check
//	@Description	Checks if the service is ready to accept traffic (includes record store connectivity)
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	api.ReadinessResponse	"status ready"
//	@Failure		503	{object}	api.ReadinessResponse	"status not ready"
//	@Router			/health/ready [get]
func HandleReadiness(store Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.ContextRequestLogger(r.Context()).Warn("readiness check failed", slog.String("error", err.Error()))
			api.RespondWithJSONPayload(w, http.StatusServiceUnavailable, api.ReadinessResponse{
				Status: "not ready",
				Reason: "record store unavailable",
			})
			return
		}

		api.RespondWithJSONPayload(w, http.StatusOK, api.ReadinessResponse{Status: "ready"})
	}
}

// HandleRoot godoc
//
//	@Summary		Service banner
//	@Description	Confirms the API is running.
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	api.MessageResponse
//	@Router			/ [get]
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	api.RespondWithJSONPayload(w, http.StatusOK, api.MessageResponse{Message: "InkCrypt API is running"})
}
