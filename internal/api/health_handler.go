package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/prime-api/internal/api/shared"
	"github.com/phrazzld/prime-api/internal/store"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	kv     store.KV
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(kv store.KV, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{kv: kv, logger: logger}
}

// Live handles GET /health requests. It only reports that the process is up.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", "error", err)
	}
}

// Ready handles GET /health/ready requests. Readiness requires the backing
// key-value store to answer a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.kv.Ping(r.Context()); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusServiceUnavailable, "Store unavailable", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
