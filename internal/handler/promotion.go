package handler

import (
	"log/slog"
	"net/http"

	"vellum/internal/domain/services"
	"vellum/internal/httputil"
)

// PromotionHandler handles draft promotion HTTP requests
type PromotionHandler struct {
	promotionService services.PromotionService
	logger           *slog.Logger
}

// NewPromotionHandler creates a new promotion handler
func NewPromotionHandler(promotionService services.PromotionService, logger *slog.Logger) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		logger:           logger,
	}
}

// PromoteDraft merges the caller's draft into the canonical document
// POST /api/documents/{id}/promote
// Returns 409 with both versions and diverged fields when the draft is stale
func (h *PromotionHandler) PromoteDraft(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.promotionService.PromoteDraft(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// CompleteDocument promotes any pending draft and marks the document completed
// POST /api/documents/{id}/complete
func (h *PromotionHandler) CompleteDocument(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.promotionService.CompleteDocument(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RollbackToVersion re-promotes a historical snapshot as a new version
// POST /api/documents/{id}/versions/{number}/rollback
func (h *PromotionHandler) RollbackToVersion(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	n, ok := versionNumber(w, r)
	if !ok {
		return
	}

	doc, err := h.promotionService.RollbackToVersion(r.Context(), tc, id, n)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
