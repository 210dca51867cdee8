package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, tenant_id, document_type, document_number, owner_actor_id,
		status, version, payload, completion_percentage, created_at, updated_at, completed_at`

// Create inserts a new document at version 1
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	payloadJSON, err := json.Marshal(doc.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, document_type, document_number, owner_actor_id,
			status, version, payload, completion_percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		doc.ID,
		doc.TenantID,
		doc.DocumentType,
		doc.DocumentNumber,
		doc.OwnerActorID,
		string(doc.Status),
		doc.Version,
		payloadJSON,
		doc.CompletionPercent,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			// The atomic allocator guarantees distinct numbers; the unique
			// constraint on (tenant_id, document_number) is defense in depth.
			// If it fires, the allocator is broken - escalate, never retry.
			r.logger.Error("SECURITY: document number uniqueness constraint fired - allocator defect",
				"tenant_id", doc.TenantID,
				"document_number", doc.DocumentNumber,
				"constraint", ConstraintName(err),
			)
			return &domain.DuplicateSequenceError{Number: doc.DocumentNumber}
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document without locking
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)
	return r.getOne(ctx, tenantID, id, query)
}

// GetForUpdate retrieves a document under a row lock. Must run inside a
// transaction started by the transaction manager.
func (r *PostgresDocumentRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*models.Document, error) {
	if repositories.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetForUpdate requires a transaction")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, documentColumns, r.tables.Documents)
	return r.getOne(ctx, tenantID, id, query)
}

// getOne fetches by ID alone, then enforces tenant scope explicitly: a row
// owned by another tenant is rejected loudly, never silently filtered out.
func (r *PostgresDocumentRepository) getOne(ctx context.Context, tenantID, id, query string) (*models.Document, error) {
	executor := GetExecutor(ctx, r.pool)

	var doc models.Document
	var status string
	var payloadJSON []byte

	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.DocumentType,
		&doc.DocumentNumber,
		&doc.OwnerActorID,
		&status,
		&doc.Version,
		&payloadJSON,
		&doc.CompletionPercent,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.CompletedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
		}
		if IsPgLockTimeoutError(err) {
			return nil, &domain.TransactionTimeoutError{
				Message: fmt.Sprintf("could not lock document %s in time", id),
			}
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	if doc.TenantID != tenantID {
		r.logger.Error("SECURITY: cross-tenant document access rejected",
			"tenant_id", tenantID,
			"document_id", id,
			"owner_tenant_id", doc.TenantID,
		)
		return nil, &domain.TenantMismatchError{TenantID: tenantID, ResourceID: id}
	}

	doc.Status = models.DocumentStatus(status)
	if err := json.Unmarshal(payloadJSON, &doc.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	return &doc, nil
}

// UpdatePromoted persists a promotion outcome. Called only inside the
// promotion transaction while the row lock is held.
func (r *PostgresDocumentRepository) UpdatePromoted(ctx context.Context, doc *models.Document) error {
	payloadJSON, err := json.Marshal(doc.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET payload = $1, version = $2, status = $3, completion_percentage = $4,
			updated_at = $5, completed_at = $6
		WHERE id = $7 AND tenant_id = $8
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		payloadJSON,
		doc.Version,
		string(doc.Status),
		doc.CompletionPercent,
		doc.UpdatedAt,
		doc.CompletedAt,
		doc.ID,
		doc.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update promoted document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", doc.ID)}
	}

	return nil
}

// UpdateStatus persists a pure status transition. Version and payload are
// never touched here.
func (r *PostgresDocumentRepository) UpdateStatus(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = $2, completed_at = $3
		WHERE id = $4 AND tenant_id = $5
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		string(doc.Status),
		doc.UpdatedAt,
		doc.CompletedAt,
		doc.ID,
		doc.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", doc.ID)}
	}

	return nil
}

// List returns a page of summaries plus the total match count
func (r *PostgresDocumentRepository) List(ctx context.Context, tenantID string, filter models.DocumentFilter) ([]models.DocumentSummary, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(document_number ILIKE $%d OR payload->'client'->>'name' ILIKE $%d)",
			len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	executor := GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Documents, where)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT id, document_type, document_number, owner_actor_id, status, version,
			COALESCE(payload->'client'->>'name', ''), completion_percentage, updated_at
		FROM %s
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, r.tables.Documents, where, len(args)-1, len(args))

	rows, err := executor.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.DocumentSummary, 0, filter.Limit)
	for rows.Next() {
		var s models.DocumentSummary
		var status string
		if err := rows.Scan(
			&s.ID,
			&s.DocumentType,
			&s.DocumentNumber,
			&s.OwnerActorID,
			&status,
			&s.Version,
			&s.ClientName,
			&s.CompletionPercent,
			&s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan document summary: %w", err)
		}
		s.Status = models.DocumentStatus(status)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}

	return summaries, total, nil
}
