// internal/app/features/influencers/list.go
package influencers

import (
	"net/http"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

// ServeList handles GET /api/influencers?after=&limit=. The cursor is the
// nextCursor of the previous page. An empty after= is a cursor (the empty
// email); leaving the parameter out starts from the beginning.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	after := opt.None[string]()
	if qv := r.URL.Query(); qv.Has("after") {
		after = opt.Some(qv.Get("after"))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Search(), h.Log, "list influencers")
	defer cancel()

	page, err := h.Store.ListPage(ctx, limit, after)
	if err != nil {
		respond.ServerError(w, h.Log, "list influencers", err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

type searchResponse struct {
	Items []models.Influencer `json:"items"`
	Mode  string              `json:"mode"`
}

// ServeSearch handles GET /api/influencers/search?q=&mode=&limit=. A blank
// q yields an empty list, not an error.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	q := normalize.QueryParam(r.URL.Query().Get("q"))
	mode := influencerstore.ParseMode(r.URL.Query().Get("mode"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Search(), h.Log, "search influencers")
	defer cancel()

	items, err := h.Store.SearchSmart(ctx, q, mode, limit)
	if err != nil {
		respond.ServerError(w, h.Log, "search influencers", err)
		return
	}
	respond.JSON(w, http.StatusOK, searchResponse{Items: items, Mode: string(mode)})
}
