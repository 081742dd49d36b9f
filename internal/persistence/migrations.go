package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS migration_journal (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL,
    customer    TEXT NOT NULL,
    ticket_id   TEXT NOT NULL,
    display_id  TEXT NOT NULL DEFAULT '',
    subject     TEXT NOT NULL DEFAULT '',
    state       TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_migration_journal_run ON migration_journal (run_id);
CREATE INDEX IF NOT EXISTS idx_migration_journal_ticket ON migration_journal (ticket_id);
`

// RunMigrations creates the journal table when a pool is configured.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return nil
	}
	if _, err := pool.Exec(ctx, journalSchema); err != nil {
		return err
	}
	logger.Info("journal schema ensured")
	return nil
}
