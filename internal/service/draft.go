package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// draftService implements the DraftService interface. Draft writes never
// take the document row lock; the (document_id, actor_id) key serializes an
// actor's own autosaves.
type draftService struct {
	docRepo   repositories.DocumentRepository
	draftRepo repositories.DraftRepository
	logger    *slog.Logger
}

// NewDraftService creates a new draft staging service
func NewDraftService(docRepo repositories.DocumentRepository, draftRepo repositories.DraftRepository, logger *slog.Logger) services.DraftService {
	return &draftService{
		docRepo:   docRepo,
		draftRepo: draftRepo,
		logger:    logger,
	}
}

// SaveDraft upserts the caller's draft. The baseline version is recorded on
// first save and deliberately never advanced by later autosaves: it must
// keep pointing at the version the editor loaded, or conflict detection
// would silently lose its reference point.
func (s *draftService) SaveDraft(ctx context.Context, tc models.TenantContext, documentID string, req *services.SaveDraftRequest) (*models.Draft, error) {
	if req.PayloadDelta.IsEmpty() {
		return nil, &domain.ValidationError{
			Message: "draft delta is empty",
			Fields:  map[string]string{"payload_delta": "at least one section is required"},
		}
	}
	if req.Revision < 0 {
		return nil, &domain.ValidationError{
			Message: "invalid revision stamp",
			Fields:  map[string]string{"revision": "must not be negative"},
		}
	}

	doc, err := s.docRepo.GetByID(ctx, tc.TenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.StatusArchived {
		return nil, fmt.Errorf("%w: archived documents cannot be edited", domain.ErrValidation)
	}

	draft := &models.Draft{
		DocumentID:      documentID,
		ActorID:         tc.ActorID,
		BaselineVersion: doc.Version,
		PayloadDelta:    req.PayloadDelta,
		Revision:        req.Revision,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.draftRepo.Upsert(ctx, draft); err != nil {
		return nil, err
	}

	// Re-read: the upsert keeps the original baseline on update, and a
	// stale revision stamp leaves the stored delta untouched.
	return s.draftRepo.Get(ctx, documentID, tc.ActorID)
}

// GetDraft fetches the caller's draft for a document
func (s *draftService) GetDraft(ctx context.Context, tc models.TenantContext, documentID string) (*models.Draft, error) {
	if _, err := s.docRepo.GetByID(ctx, tc.TenantID, documentID); err != nil {
		return nil, err
	}
	return s.draftRepo.Get(ctx, documentID, tc.ActorID)
}

// DiscardDraft deletes the caller's draft without promoting it. The
// canonical document and the ledger are untouched.
func (s *draftService) DiscardDraft(ctx context.Context, tc models.TenantContext, documentID string) error {
	if _, err := s.docRepo.GetByID(ctx, tc.TenantID, documentID); err != nil {
		return err
	}
	if err := s.draftRepo.Delete(ctx, documentID, tc.ActorID); err != nil {
		return err
	}

	s.logger.Info("draft discarded", "document_id", documentID, "actor_id", tc.ActorID)
	return nil
}
