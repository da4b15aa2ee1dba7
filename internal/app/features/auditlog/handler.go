// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MaxLimit caps the number of events one request returns.
const MaxLimit = 1000

type Handler struct {
	Store *audit.Store
	Log   *zap.Logger
}

// NewHandler constructs an audit log feature handler over store.
func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}

type listResponse struct {
	Events []audit.Event `json:"events"`
}

// ServeList handles GET /api/audit?limit=&type=, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{EventType: strings.TrimSpace(r.URL.Query().Get("type"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = min(n, MaxLimit)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list audit events")
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		respond.ServerError(w, h.Log, "list audit events", err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Events: events})
}
