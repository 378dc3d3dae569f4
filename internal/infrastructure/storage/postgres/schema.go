package postgres

import (
	"context"
	"fmt"

	"assetdesk/pkg/logger"
)

// schemaStatements create the tables owned by this service. They are
// idempotent and run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS report_views (
		id          UUID PRIMARY KEY,
		user_id     TEXT        NOT NULL,
		report_id   TEXT        NOT NULL,
		name        TEXT        NOT NULL,
		quick       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		advanced    JSONB       NOT NULL DEFAULT '[]'::jsonb,
		columns     TEXT[]      NOT NULL DEFAULT '{}',
		sort_by     TEXT        NOT NULL DEFAULT '',
		sort_desc   BOOLEAN     NOT NULL DEFAULT false,
		is_default  BOOLEAN     NOT NULL DEFAULT false,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS report_views_user_report_name_uidx
		ON report_views (user_id, report_id, lower(name))`,
	`CREATE TABLE IF NOT EXISTS report_audit (
		id                 UUID PRIMARY KEY,
		user_id            TEXT        NOT NULL DEFAULT '',
		user_email         TEXT        NOT NULL DEFAULT '',
		report_id          TEXT        NOT NULL DEFAULT '',
		action             TEXT        NOT NULL,
		format             TEXT        NOT NULL DEFAULT '',
		row_count          INTEGER     NOT NULL DEFAULT 0,
		filters            JSONB,
		filters_compressed BYTEA,
		compression_algo   TEXT        NOT NULL DEFAULT 'none',
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS report_audit_created_idx
		ON report_audit (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS report_audit_report_idx
		ON report_audit (report_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS report_audit_user_idx
		ON report_audit (user_id, created_at DESC)`,
}

// EnsureSchema creates missing tables and indexes in one transaction.
func EnsureSchema(ctx context.Context, txManager *TxManager) error {
	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txManager.GetQuerier(ctx)
		for _, stmt := range schemaStatements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info(ctx, "database schema ready", "tables", []string{viewsTable, auditTable})
	return nil
}
