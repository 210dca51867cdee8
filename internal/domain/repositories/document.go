package repositories

import (
	"context"

	"vellum/internal/domain/models"
)

// DocumentRepository defines data access operations for documents. Every
// method takes the caller's tenant ID: an existing row owned by another
// tenant is a tenant-mismatch error, never an empty result.
type DocumentRepository interface {
	// Create inserts a new document at version 1. A uniqueness violation on
	// the formatted document number surfaces as a duplicate-sequence error.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document without locking.
	GetByID(ctx context.Context, tenantID, id string) (*models.Document, error)

	// GetForUpdate retrieves a document under a row lock. Must run inside a
	// transaction; the lock is the single serialization point for promotions.
	// A lock wait beyond the configured timeout is a retryable timeout error.
	GetForUpdate(ctx context.Context, tenantID, id string) (*models.Document, error)

	// UpdatePromoted persists the outcome of a promotion: payload, version,
	// completion percentage, status and timestamps.
	UpdatePromoted(ctx context.Context, doc *models.Document) error

	// UpdateStatus persists a pure status transition (archive/restore),
	// leaving version and payload untouched.
	UpdateStatus(ctx context.Context, doc *models.Document) error

	// List returns a page of document summaries plus the total match count.
	List(ctx context.Context, tenantID string, filter models.DocumentFilter) ([]models.DocumentSummary, int, error)
}
