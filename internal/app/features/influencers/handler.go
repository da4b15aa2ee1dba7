// internal/app/features/influencers/handler.go
package influencers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/auth"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
	"go.uber.org/zap"
)

// MaxLimit caps the limit a client may ask for on list and search.
const MaxLimit = 500

type Handler struct {
	Store         *influencerstore.Store
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
	BackfillBatch int
}

func NewHandler(store *influencerstore.Store, al *auditlog.Logger, backfillBatch int, logger *zap.Logger) *Handler {
	return &Handler{
		Store:         store,
		AuditLog:      al,
		Log:           logger,
		BackfillBatch: backfillBatch,
	}
}

// parseLimit reads the limit query parameter. Absent means zero, which the
// store replaces with its default.
func parseLimit(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, true
}

func actorID(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID
	}
	return ""
}

// presentFields lists the stored field names an input sets.
func presentFields(in models.InfluencerInput) []string {
	var out []string
	for k, v := range in.Doc() {
		if !opt.IsAbsent(v) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
