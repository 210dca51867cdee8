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

// PostgresVersionRepository implements the VersionRepository interface.
// The ledger is append-only: there is no update or delete path, by design.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version ledger repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts a ledger record. The unique (document_id, version_number)
// constraint backs up the row-locked numbering; it firing means a promotion
// ran outside the lock.
func (r *PostgresVersionRepository) Append(ctx context.Context, rec *models.VersionRecord) error {
	snapshotJSON, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version_number, snapshot, changed_fields,
			change_summary, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		rec.ID,
		rec.DocumentID,
		rec.VersionNumber,
		snapshotJSON,
		rec.ChangedFields,
		rec.ChangeSummary,
		rec.ActorID,
		rec.CreatedAt,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			r.logger.Error("version number collision - promotion ran outside the document lock",
				"document_id", rec.DocumentID,
				"version_number", rec.VersionNumber,
			)
			return fmt.Errorf("version %d already exists for document %s: %w",
				rec.VersionNumber, rec.DocumentID, domain.ErrConflict)
		}
		return fmt.Errorf("append version: %w", err)
	}

	return nil
}

// Get fetches one snapshot, scoped to the tenant through the owning document.
func (r *PostgresVersionRepository) Get(ctx context.Context, tenantID, documentID string, versionNumber int) (*models.VersionRecord, error) {
	query := fmt.Sprintf(`
		SELECT v.id, v.document_id, v.version_number, v.snapshot, v.changed_fields,
			v.change_summary, v.actor_id, v.created_at
		FROM %s v
		JOIN %s d ON d.id = v.document_id
		WHERE v.document_id = $1 AND v.version_number = $2 AND d.tenant_id = $3
	`, r.tables.Versions, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)

	var rec models.VersionRecord
	var snapshotJSON []byte
	err := executor.QueryRow(ctx, query, documentID, versionNumber, tenantID).Scan(
		&rec.ID,
		&rec.DocumentID,
		&rec.VersionNumber,
		&snapshotJSON,
		&rec.ChangedFields,
		&rec.ChangeSummary,
		&rec.ActorID,
		&rec.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{
				Message: fmt.Sprintf("version %d of document %s not found", versionNumber, documentID),
			}
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	if err := json.Unmarshal(snapshotJSON, &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &rec, nil
}

// List returns history ordered by version number descending
func (r *PostgresVersionRepository) List(ctx context.Context, tenantID, documentID string, page, limit int) ([]models.VersionSummary, int, error) {
	executor := GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s v
		JOIN %s d ON d.id = v.document_id
		WHERE v.document_id = $1 AND d.tenant_id = $2
	`, r.tables.Versions, r.tables.Documents)

	var total int
	if err := executor.QueryRow(ctx, countQuery, documentID, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count versions: %w", err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(`
		SELECT v.version_number, v.changed_fields, v.change_summary, v.actor_id, v.created_at
		FROM %s v
		JOIN %s d ON d.id = v.document_id
		WHERE v.document_id = $1 AND d.tenant_id = $2
		ORDER BY v.version_number DESC
		LIMIT $3 OFFSET $4
	`, r.tables.Versions, r.tables.Documents)

	rows, err := executor.Query(ctx, listQuery, documentID, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.VersionSummary, 0, limit)
	for rows.Next() {
		var s models.VersionSummary
		if err := rows.Scan(
			&s.VersionNumber,
			&s.ChangedFields,
			&s.ChangeSummary,
			&s.ActorID,
			&s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan version summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate versions: %w", err)
	}

	return summaries, total, nil
}
