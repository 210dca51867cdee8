package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vellum/internal/doctype"
	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// promotionService implements the PromotionService interface. Every
// operation runs one transaction around the document row lock: read version,
// conflict check, merge, validation, ledger append, counter bump and draft
// cleanup commit together or not at all.
type promotionService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	draftRepo   repositories.DraftRepository
	txManager   repositories.TransactionManager
	registry    *doctype.Registry
	detector    Detector
	logger      *slog.Logger
}

// NewPromotionService creates a new promotion engine
func NewPromotionService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	draftRepo repositories.DraftRepository,
	txManager repositories.TransactionManager,
	registry *doctype.Registry,
	logger *slog.Logger,
) services.PromotionService {
	return &promotionService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		draftRepo:   draftRepo,
		txManager:   txManager,
		registry:    registry,
		logger:      logger,
	}
}

// PromoteDraft merges the caller's draft into the canonical document
func (s *promotionService) PromoteDraft(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error) {
	return s.promote(ctx, tc, documentID, false)
}

// CompleteDocument runs the promote path with target status completed
func (s *promotionService) CompleteDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error) {
	return s.promote(ctx, tc, documentID, true)
}

func (s *promotionService) promote(ctx context.Context, tc models.TenantContext, documentID string, complete bool) (*models.Document, error) {
	var result *models.Document

	err := s.txManager.ExecLocked(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(txCtx, tc.TenantID, documentID)
		if err != nil {
			return err
		}

		if doc.Status == models.StatusArchived {
			return fmt.Errorf("%w: archived documents cannot be promoted", domain.ErrValidation)
		}
		if complete && !doc.Status.CanTransition(models.StatusCompleted) {
			return fmt.Errorf("%w: cannot complete a %s document", domain.ErrValidation, doc.Status)
		}

		merged := doc.Payload
		summary := "completed document"
		draft, err := s.draftRepo.Get(txCtx, documentID, tc.ActorID)
		switch {
		case err == nil:
			if conflict := s.checkDraft(txCtx, tc, doc, draft); conflict != nil {
				return conflict
			}
			merged = doc.Payload.Merge(draft.PayloadDelta)
			if !complete {
				summary = "promoted draft"
			}
		case errors.Is(err, domain.ErrNotFound):
			// Completing without pending edits promotes the payload as-is;
			// a plain promote with nothing staged is a caller mistake.
			if !complete {
				return err
			}
			draft = nil
		default:
			return err
		}

		def, err := s.registry.Get(doc.DocumentType)
		if err != nil {
			return err
		}
		if err := validatePayload(def, merged, complete); err != nil {
			return err
		}

		now := time.Now().UTC()
		rec := &models.VersionRecord{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			VersionNumber: doc.Version + 1,
			Snapshot:      merged,
			ChangedFields: models.DiffFields(doc.Payload, merged),
			ChangeSummary: summary,
			ActorID:       tc.ActorID,
			CreatedAt:     now,
		}
		if err := s.versionRepo.Append(txCtx, rec); err != nil {
			return err
		}

		doc.Payload = merged
		doc.Version = rec.VersionNumber
		doc.CompletionPercent = merged.CompletionPercent(def.RequiredSections)
		doc.UpdatedAt = now
		if complete {
			doc.Status = models.StatusCompleted
			doc.CompletedAt = &now
		}
		if err := s.docRepo.UpdatePromoted(txCtx, doc); err != nil {
			return err
		}

		if draft != nil {
			if err := s.draftRepo.Delete(txCtx, documentID, tc.ActorID); err != nil {
				return err
			}
		}

		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft promoted",
		"document_id", result.ID,
		"version", result.Version,
		"status", result.Status,
		"actor_id", tc.ActorID,
	)
	return result, nil
}

// checkDraft runs the conflict detector against the locked document state.
// The baseline snapshot comes from the ledger; if the draft predates the
// oldest retained record the diff degrades to "everything current".
func (s *promotionService) checkDraft(txCtx context.Context, tc models.TenantContext, doc *models.Document, draft *models.Draft) error {
	if !draft.Stale(doc.Version) {
		return nil
	}

	var baseline models.Payload
	rec, err := s.versionRepo.Get(txCtx, tc.TenantID, doc.ID, draft.BaselineVersion)
	if err == nil {
		baseline = rec.Snapshot
	}

	conflict := s.detector.Check(draft.BaselineVersion, doc.Version, baseline, doc.Payload)
	s.logger.Info("promotion rejected on version conflict",
		"document_id", doc.ID,
		"draft_version", conflict.DraftVersion,
		"current_version", conflict.CurrentVersion,
		"actor_id", tc.ActorID,
	)
	return conflict
}

// RollbackToVersion re-promotes a historical snapshot as a new version.
// The record for the rolled-back version is untouched; history is never
// truncated or renumbered.
func (s *promotionService) RollbackToVersion(ctx context.Context, tc models.TenantContext, documentID string, versionNumber int) (*models.Document, error) {
	var result *models.Document

	err := s.txManager.ExecLocked(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(txCtx, tc.TenantID, documentID)
		if err != nil {
			return err
		}
		if doc.Status == models.StatusArchived {
			return fmt.Errorf("%w: archived documents cannot be rolled back", domain.ErrValidation)
		}

		rec, err := s.versionRepo.Get(txCtx, tc.TenantID, documentID, versionNumber)
		if err != nil {
			return err
		}
		def, err := s.registry.Get(doc.DocumentType)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		newRec := &models.VersionRecord{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			VersionNumber: doc.Version + 1,
			Snapshot:      rec.Snapshot,
			ChangedFields: models.DiffFields(doc.Payload, rec.Snapshot),
			ChangeSummary: fmt.Sprintf("rollback to version %d", versionNumber),
			ActorID:       tc.ActorID,
			CreatedAt:     now,
		}
		if err := s.versionRepo.Append(txCtx, newRec); err != nil {
			return err
		}

		doc.Payload = rec.Snapshot
		doc.Version = newRec.VersionNumber
		doc.CompletionPercent = rec.Snapshot.CompletionPercent(def.RequiredSections)
		doc.UpdatedAt = now
		if err := s.docRepo.UpdatePromoted(txCtx, doc); err != nil {
			return err
		}

		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document rolled back",
		"document_id", result.ID,
		"restored_version", versionNumber,
		"new_version", result.Version,
		"actor_id", tc.ActorID,
	)
	return result, nil
}
