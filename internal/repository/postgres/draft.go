package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
)

// PostgresDraftRepository implements the DraftRepository interface
type PostgresDraftRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(config *RepositoryConfig) repositories.DraftRepository {
	return &PostgresDraftRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts or replaces the actor's draft in a single statement. The
// unique (document_id, actor_id) key serializes the actor's own concurrent
// autosaves. The WHERE guard drops out-of-order upserts when a revision
// stamp is in use; a zero stamp on both sides keeps plain last-write-wins.
func (r *PostgresDraftRepository) Upsert(ctx context.Context, draft *models.Draft) error {
	deltaJSON, err := json.Marshal(draft.PayloadDelta)
	if err != nil {
		return fmt.Errorf("marshal payload delta: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, actor_id, baseline_version, payload_delta, revision, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, actor_id) DO UPDATE
		SET payload_delta = EXCLUDED.payload_delta,
			revision = EXCLUDED.revision,
			updated_at = EXCLUDED.updated_at
		WHERE %s.revision < EXCLUDED.revision OR EXCLUDED.revision = 0
	`, r.tables.Drafts, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		draft.DocumentID,
		draft.ActorID,
		draft.BaselineVersion,
		deltaJSON,
		draft.Revision,
		draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}

	return nil
}

// Get fetches the actor's draft for a document
func (r *PostgresDraftRepository) Get(ctx context.Context, documentID, actorID string) (*models.Draft, error) {
	query := fmt.Sprintf(`
		SELECT document_id, actor_id, baseline_version, payload_delta, revision, updated_at
		FROM %s
		WHERE document_id = $1 AND actor_id = $2
	`, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)

	var draft models.Draft
	var deltaJSON []byte
	err := executor.QueryRow(ctx, query, documentID, actorID).Scan(
		&draft.DocumentID,
		&draft.ActorID,
		&draft.BaselineVersion,
		&deltaJSON,
		&draft.Revision,
		&draft.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{
				Message: fmt.Sprintf("no draft for document %s", documentID),
			}
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := json.Unmarshal(deltaJSON, &draft.PayloadDelta); err != nil {
		return nil, fmt.Errorf("unmarshal payload delta: %w", err)
	}

	return &draft, nil
}

// Delete removes the draft. Deleting an absent draft is not an error.
func (r *PostgresDraftRepository) Delete(ctx context.Context, documentID, actorID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE document_id = $1 AND actor_id = $2
	`, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, actorID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	return nil
}
