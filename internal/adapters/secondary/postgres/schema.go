package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS deployment (
	id                UUID PRIMARY KEY,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	finished_at       TIMESTAMPTZ,
	model_name        TEXT NOT NULL,
	model_package_arn TEXT NOT NULL DEFAULT '',
	resource_name     TEXT NOT NULL DEFAULT '',
	endpoint_arn      TEXT NOT NULL DEFAULT '',
	instance_type     TEXT NOT NULL,
	instance_count    INTEGER NOT NULL,
	action            TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	last_error        TEXT NOT NULL DEFAULT '',
	deleted_resources TEXT[] NOT NULL DEFAULT '{}',
	cleanup_failures  TEXT[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS deployment_model_name_created_at_idx
	ON deployment (model_name, created_at DESC);
`

// Migrate creates the deployment ledger if it does not exist
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
