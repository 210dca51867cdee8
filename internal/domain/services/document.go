package services

import (
	"context"

	"vellum/internal/domain/models"
)

// DocumentService handles document lifecycle operations outside the
// promotion path.
type DocumentService interface {
	// CreateDocument creates a document at version 1, status draft, with a
	// freshly allocated document number.
	CreateDocument(ctx context.Context, tc models.TenantContext, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocumentWithDraft retrieves a document together with the caller's
	// draft, if any. Conflict is populated when the draft is stale.
	GetDocumentWithDraft(ctx context.Context, tc models.TenantContext, documentID string) (*DocumentWithDraft, error)

	// ListDocuments returns a page of summaries, optionally filtered by
	// status and search term.
	ListDocuments(ctx context.Context, tc models.TenantContext, filter models.DocumentFilter) (*models.Page[models.DocumentSummary], error)

	// ArchiveDocument transitions completed -> archived. No version bump.
	ArchiveDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error)

	// RestoreDocument transitions archived -> completed. No version bump.
	RestoreDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	DocumentType   string         `json:"document_type"`
	InitialPayload models.Payload `json:"payload"`
}

// DocumentWithDraft pairs a document with the caller's draft state.
type DocumentWithDraft struct {
	Document *models.Document      `json:"document"`
	Draft    *models.Draft         `json:"draft,omitempty"`
	Conflict *models.ConflictState `json:"conflict,omitempty"`
}

// DraftService handles autosave staging. Draft writes never take the
// document lock.
type DraftService interface {
	// SaveDraft upserts the caller's draft. Idempotent: re-saving identical
	// content only touches updated_at.
	SaveDraft(ctx context.Context, tc models.TenantContext, documentID string, req *SaveDraftRequest) (*models.Draft, error)

	// GetDraft fetches the caller's draft.
	GetDraft(ctx context.Context, tc models.TenantContext, documentID string) (*models.Draft, error)

	// DiscardDraft deletes the caller's draft without promoting it.
	DiscardDraft(ctx context.Context, tc models.TenantContext, documentID string) error
}

// SaveDraftRequest represents an autosave request
type SaveDraftRequest struct {
	PayloadDelta models.Payload `json:"payload_delta"`
	// Revision is an optional monotonic stamp; see models.Draft.
	Revision int64 `json:"revision,omitempty"`
}

// PromotionService orchestrates draft -> canonical transitions. Each
// operation is one transaction around the document row lock: conflict check,
// merge, validation, ledger append and draft cleanup commit or roll back
// together.
type PromotionService interface {
	// PromoteDraft merges the caller's draft into the canonical document and
	// appends a version. Rejected with a conflict error when the draft
	// baseline is behind the current version.
	PromoteDraft(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error)

	// CompleteDocument runs the promote path with target status completed;
	// validation enforces the document type's required sections. On failure
	// the status stays draft and no version is appended.
	CompleteDocument(ctx context.Context, tc models.TenantContext, documentID string) (*models.Document, error)

	// RollbackToVersion re-promotes a historical snapshot as a new, higher
	// version. History is never truncated or renumbered.
	RollbackToVersion(ctx context.Context, tc models.TenantContext, documentID string, versionNumber int) (*models.Document, error)
}

// VersionService exposes read access to the ledger.
type VersionService interface {
	// ListVersions returns history newest-first.
	ListVersions(ctx context.Context, tc models.TenantContext, documentID string, page, limit int) (*models.Page[models.VersionSummary], error)

	// GetVersion fetches one snapshot.
	GetVersion(ctx context.Context, tc models.TenantContext, documentID string, versionNumber int) (*models.VersionRecord, error)
}

// NumberingService issues formatted, collision-free document numbers.
type NumberingService interface {
	// AllocateDocumentNumber allocates the next number for the tenant and
	// type and formats it with the type's prefix.
	AllocateDocumentNumber(ctx context.Context, tc models.TenantContext, documentType string) (string, error)
}
