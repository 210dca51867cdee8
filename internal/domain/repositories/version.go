package repositories

import (
	"context"

	"vellum/internal/domain/models"
)

// VersionRepository defines data access for the append-only version ledger.
// Records are never updated or deleted. Reads are tenant-scoped through the
// owning document.
type VersionRepository interface {
	// Append inserts a ledger record. Called only inside the promotion
	// transaction, after the document row is locked, so the version number
	// is contiguous by construction.
	Append(ctx context.Context, rec *models.VersionRecord) error

	// Get fetches one snapshot by version number.
	Get(ctx context.Context, tenantID, documentID string, versionNumber int) (*models.VersionRecord, error)

	// List returns history ordered by version number descending, plus the
	// total record count.
	List(ctx context.Context, tenantID, documentID string, page, limit int) ([]models.VersionSummary, int, error)
}
