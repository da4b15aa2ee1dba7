// internal/app/features/influencers/backfill.go
package influencers

import (
	"net/http"

	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
)

// HandleBackfill handles POST /api/influencers/backfill: one synchronous
// pass that rewrites missing or stale derived fields.
func (h *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backfill(), h.Log, "backfill influencers")
	defer cancel()

	res, err := h.Store.Backfill(ctx, h.BackfillBatch)
	h.AuditLog.BackfillRun(ctx, r, actorID(r), res.Scanned, res.Updated, err)
	if err != nil {
		respond.ServerError(w, h.Log, "backfill influencers", err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
