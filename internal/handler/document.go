package handler

import (
	"log/slog"
	"net/http"
	"time"

	"vellum/internal/domain/models"
	"vellum/internal/domain/services"
	"vellum/internal/httputil"
)

// DocumentHandler handles document lifecycle HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// CreateDocument creates a new document
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), tc, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document together with the caller's draft state
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	result, err := h.docService.GetDocumentWithDraft(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListDocuments returns a page of document summaries
// GET /api/documents?status=&search=&page=&limit=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	filter := models.DocumentFilter{
		SearchTerm: r.URL.Query().Get("search"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 0),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.DocumentStatus(s)
		filter.Status = &status
	}

	page, err := h.docService.ListDocuments(r.Context(), tc, filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// ArchiveDocument transitions a completed document to archived
// POST /api/documents/{id}/archive
func (h *DocumentHandler) ArchiveDocument(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.ArchiveDocument(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RestoreDocument transitions an archived document back to completed
// POST /api/documents/{id}/restore
func (h *DocumentHandler) RestoreDocument(w http.ResponseWriter, r *http.Request) {
	tc := httputil.GetTenantContext(r)

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.RestoreDocument(r.Context(), tc, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
