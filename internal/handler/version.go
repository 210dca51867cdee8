package handler

import (
	"log/slog"
	"net/http"

	"vellum/internal/domain/services"
	"vellum/internal/httputil"
)

// VersionHandler handles version history HTTP requests
type VersionHandler struct {
	versionService services.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new version history handler
func NewVersionHandler(versionService services.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// ListVersions returns ledger history newest-first
// GET /api/documents/{id}/versions?page=&limit=
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	page, err := h.versionService.ListVersions(r.Context(), tc, id,
		queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// GetVersion fetches one snapshot by version number
// GET /api/documents/{id}/versions/{number}
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	n, ok := versionNumber(w, r)
	if !ok {
		return
	}

	rec, err := h.versionService.GetVersion(r.Context(), tc, id, n)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rec)
}
