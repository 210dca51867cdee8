package handler

import (
	"log/slog"
	"net/http"

	"vellum/internal/domain/services"
	"vellum/internal/httputil"
)

// DraftHandler handles autosave HTTP requests
type DraftHandler struct {
	draftService services.DraftService
	logger       *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService services.DraftService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		draftService: draftService,
		logger:       logger,
	}
}

// SaveDraft upserts the caller's draft for a document
// PUT /api/documents/{id}/draft
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req services.SaveDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftService.SaveDraft(r.Context(), tc, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, draft)
}

// GetDraft fetches the caller's draft for a document
// GET /api/documents/{id}/draft
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	draft, err := h.draftService.GetDraft(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, draft)
}

// DiscardDraft deletes the caller's draft without promoting it
// DELETE /api/documents/{id}/draft
func (h *DraftHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.draftService.DiscardDraft(r.Context(), tc, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
