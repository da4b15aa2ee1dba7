// internal/app/features/influencers/records.go
package influencers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/go-chi/chi/v5"
)

type createResponse struct {
	ID string `json:"id"`
}

// ServeGet handles GET /api/influencers/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "get influencer")
	defer cancel()

	rec, found, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "get influencer", err)
		return
	}
	if !found {
		respond.Error(w, http.StatusNotFound, "influencer not found")
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

// HandleCreate handles POST /api/influencers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create influencer")
	defer cancel()

	id, err := h.Store.Create(ctx, in)
	if err != nil {
		respond.ServerError(w, h.Log, "create influencer", err)
		return
	}
	h.AuditLog.InfluencerCreated(ctx, r, actorID(r), id)
	respond.JSON(w, http.StatusCreated, createResponse{ID: id})
}

// HandlePatch handles PATCH /api/influencers/{id}. Only fields present in
// the body change.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := h.decodeInput(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "update influencer")
	defer cancel()

	err := h.Store.Update(ctx, id, in)
	if errors.Is(err, influencerstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "influencer not found")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "update influencer", err)
		return
	}
	h.AuditLog.InfluencerUpdated(ctx, r, actorID(r), id, presentFields(in))
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /api/influencers/{id}. Deleting a missing
// record succeeds.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "delete influencer")
	defer cancel()

	if err := h.Store.Remove(ctx, id); err != nil {
		respond.ServerError(w, h.Log, "delete influencer", err)
		return
	}
	h.AuditLog.InfluencerDeleted(ctx, r, actorID(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeInput reads and validates a record body, writing the 400 itself.
// Free text is stripped of markup before it reaches the store.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request, requireEmail bool) (models.InfluencerInput, bool) {
	var in models.InfluencerInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return in, false
	}

	email, present := in.Email.Get()
	switch {
	case present:
		email = strings.TrimSpace(email)
		if !validate.SimpleEmailValid(email) {
			respond.Error(w, http.StatusBadRequest, "a valid email is required")
			return in, false
		}
		in.Email = opt.Some(email)
	case requireEmail:
		respond.Error(w, http.StatusBadRequest, "a valid email is required")
		return in, false
	}
	return htmlsanitize.CleanInput(in), true
}
