package repositories

import (
	"context"

	"vellum/internal/domain/models"
)

// DraftRepository defines data access for per-editor draft rows. The unique
// (document_id, actor_id) key makes upserts idempotent and serializes an
// actor's own concurrent autosaves; no document lock is involved.
type DraftRepository interface {
	// Upsert inserts or replaces the actor's draft. When the draft carries a
	// nonzero revision stamp, an upsert whose stamp is not newer than the
	// stored one is ignored.
	Upsert(ctx context.Context, draft *models.Draft) error

	// Get fetches the actor's draft for a document.
	Get(ctx context.Context, documentID, actorID string) (*models.Draft, error)

	// Delete removes the draft. Deleting an absent draft is not an error.
	Delete(ctx context.Context, documentID, actorID string) error
}
