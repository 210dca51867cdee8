package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"vellum/internal/domain/repositories"
)

// PostgresSequenceRepository implements the SequenceRepository interface
type PostgresSequenceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSequenceRepository creates a new sequence counter repository
func NewSequenceRepository(config *RepositoryConfig) repositories.SequenceRepository {
	return &PostgresSequenceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// NextNumber allocates the next number for (tenant, document type) in one
// atomic statement. The row-level increment-and-return means concurrent
// callers can never observe the same value; a read followed by a separate
// write would admit lost updates and is deliberately not used here.
func (r *PostgresSequenceRepository) NextNumber(ctx context.Context, tenantID, documentType string) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, document_type, next_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, document_type) DO UPDATE
		SET next_number = %s.next_number + 1
		RETURNING next_number
	`, r.tables.SequenceCounters, r.tables.SequenceCounters)

	executor := GetExecutor(ctx, r.pool)

	var n int
	if err := executor.QueryRow(ctx, query, tenantID, documentType).Scan(&n); err != nil {
		return 0, fmt.Errorf("allocate sequence number: %w", err)
	}

	return n, nil
}
