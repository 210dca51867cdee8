package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema for the configured table prefix. Statements are
// idempotent so the migrator can run on every deploy.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				tenant_id UUID NOT NULL,
				document_type TEXT NOT NULL,
				document_number TEXT NOT NULL,
				owner_actor_id UUID NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft'
					CHECK (status IN ('draft', 'completed', 'archived')),
				version INT NOT NULL DEFAULT 1,
				payload JSONB NOT NULL DEFAULT '{}',
				completion_percentage INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				completed_at TIMESTAMPTZ,
				UNIQUE (tenant_id, document_number)
			)`, tables.Documents),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_tenant_status_idx
			ON %s (tenant_id, status, updated_at DESC)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES %s (id),
				version_number INT NOT NULL,
				snapshot JSONB NOT NULL,
				changed_fields TEXT[] NOT NULL DEFAULT '{}',
				change_summary TEXT NOT NULL DEFAULT '',
				actor_id UUID NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (document_id, version_number)
			)`, tables.Versions, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_id UUID NOT NULL REFERENCES %s (id),
				actor_id UUID NOT NULL,
				baseline_version INT NOT NULL,
				payload_delta JSONB NOT NULL DEFAULT '{}',
				revision BIGINT NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (document_id, actor_id)
			)`, tables.Drafts, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				tenant_id UUID NOT NULL,
				document_type TEXT NOT NULL,
				next_number INT NOT NULL DEFAULT 0,
				PRIMARY KEY (tenant_id, document_type)
			)`, tables.SequenceCounters),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
