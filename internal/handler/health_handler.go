package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-file-tree/internal/model"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler takes an optional pinger; nil means the in-memory store,
// which is always healthy.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Health(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{Status: "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}
