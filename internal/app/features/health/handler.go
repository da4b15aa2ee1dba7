package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger is satisfied by docstore.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler for the given store backend.
func NewHandler(db Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Backend: backend, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"mongo" }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.Error(err))
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Backend:  h.Backend,
			Message:  "Database unavailable",
		})
		return
	}

	respond.JSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  h.Backend,
	})
}
