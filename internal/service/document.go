package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vellum/internal/config"
	"vellum/internal/doctype"
	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	draftRepo   repositories.DraftRepository
	txManager   repositories.TransactionManager
	registry    *doctype.Registry
	numbering   services.NumberingService
	detector    Detector
	logger      *slog.Logger
}

// NewDocumentService creates a new document lifecycle service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	draftRepo repositories.DraftRepository,
	txManager repositories.TransactionManager,
	registry *doctype.Registry,
	numbering services.NumberingService,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		draftRepo:   draftRepo,
		txManager:   txManager,
		registry:    registry,
		numbering:   numbering,
		logger:      logger,
	}
}

// CreateDocument creates a document at version 1 together with its first
// ledger record, so version always equals the highest ledger number.
func (s *documentService) CreateDocument(ctx context.Context, tc models.TenantContext, req *services.CreateDocumentRequest) (*models.Document, error) {
	def, err := s.registry.Get(req.DocumentType)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(def, req.InitialPayload, false); err != nil {
		return nil, err
	}

	// The allocator runs outside the creation transaction: a failed insert
	// leaves a gap in the sequence, which is acceptable.
	number, err := s.numbering.AllocateDocumentNumber(ctx, tc, req.DocumentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:                uuid.NewString(),
		TenantID:          tc.TenantID,
		DocumentType:      req.DocumentType,
		DocumentNumber:    number,
		OwnerActorID:      tc.ActorID,
		Status:            models.StatusDraft,
		Version:           1,
		Payload:           req.InitialPayload,
		CompletionPercent: req.InitialPayload.CompletionPercent(def.RequiredSections),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}
		rec := &models.VersionRecord{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			VersionNumber: 1,
			Snapshot:      req.InitialPayload,
			ChangedFields: models.DiffFields(models.Payload{}, req.InitialPayload),
			ChangeSummary: "created",
			ActorID:       tc.ActorID,
			CreatedAt:     now,
		}
		return s.versionRepo.Append(txCtx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"document_id", doc.ID,
		"document_type", doc.DocumentType,
		"document_number", doc.DocumentNumber,
		"tenant_id", tc.TenantID,
	)
	return doc, nil
}

// GetDocumentWithDraft retrieves a document plus the caller's draft state.
// When the draft baseline is behind the current version the conflict field
// carries both versions and the diverged fields, so the editor can warn
// before the user promotes.
func (s *documentService) GetDocumentWithDraft(ctx context.Context, tc models.TenantContext, documentID string) (*services.DocumentWithDraft, error) {
	doc, err := s.docRepo.GetByID(ctx, tc.TenantID, documentID)
	if err != nil {
		return nil, err
	}

	out := &services.DocumentWithDraft{Document: doc}

	draft, err := s.draftRepo.Get(ctx, documentID, tc.ActorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.Draft = draft

	if draft.Stale(doc.Version) {
		var baseline models.Payload
		if rec, err := s.versionRepo.Get(ctx, tc.TenantID, documentID, draft.BaselineVersion); err == nil {
			baseline = rec.Snapshot
		}
		out.Conflict = s.detector.State(draft.BaselineVersion, doc.Version, baseline, doc.Payload)
	}

	return out, nil
}

// ListDocuments returns a page of summaries for the caller's tenant
func (s *documentService) ListDocuments(ctx context.Context, tc models.TenantContext, filter models.DocumentFilter) (*models.Page[models.DocumentSummary], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, &domain.ValidationError{
			Message: "invalid status filter",
			Fields:  map[string]string{"status": fmt.Sprintf("unknown status %q", *filter.Status)},
		}
	}
	filter.ApplyDefaults(config.DefaultListLimit, config.MaxListLimit)

	items, total, err := s.docRepo.List(ctx, tc.TenantID, filter)
	if err != nil {
		return nil, err
	}

	return &models.Page[models.DocumentSummary]{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ArchiveDocument transitions completed -> archived
func (s *documentService) ArchiveDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error) {
	return s.transition(ctx, tc, documentID, models.StatusArchived)
}

// RestoreDocument transitions archived -> completed
func (s *documentService) RestoreDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error) {
	return s.transition(ctx, tc, documentID, models.StatusCompleted)
}

// transition applies a pure status change under the document lock. Version
// and payload are untouched; there is no path back to draft.
func (s *documentService) transition(ctx context.Context, tc models.TenantContext, documentID string, target models.DocumentStatus) (*models.Document, error) {
	var result *models.Document

	err := s.txManager.ExecLocked(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(txCtx, tc.TenantID, documentID)
		if err != nil {
			return err
		}
		if !doc.Status.CanTransition(target) {
			return fmt.Errorf("%w: cannot transition %s document to %s", domain.ErrValidation, doc.Status, target)
		}

		doc.Status = target
		doc.UpdatedAt = time.Now().UTC()
		if err := s.docRepo.UpdateStatus(txCtx, doc); err != nil {
			return err
		}

		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document status changed",
		"document_id", result.ID,
		"status", result.Status,
		"actor_id", tc.ActorID,
	)
	return result, nil
}
