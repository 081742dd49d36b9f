package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-migrate/internal/domain"
)

// JournalRepository encapsulates journal persistence.
type JournalRepository interface {
	Record(ctx context.Context, entry *domain.JournalEntry) error
	CountByState(ctx context.Context, runID string) (map[string]int64, error)
}

type journalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository instantiates repository. A nil pool yields a
// repository whose writes are no-ops, matching the optional journal.
func NewJournalRepository(pool *pgxpool.Pool) JournalRepository {
	return &journalRepository{pool: pool}
}

func (r *journalRepository) Record(ctx context.Context, entry *domain.JournalEntry) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO migration_journal (run_id, customer, ticket_id, display_id, subject, state, detail)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.RunID,
		entry.Customer,
		entry.TicketID,
		entry.DisplayID,
		entry.Subject,
		entry.State,
		entry.Detail,
	).Scan(&entry.CreatedAt)
}

func (r *journalRepository) CountByState(ctx context.Context, runID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	if r.pool == nil {
		return counts, nil
	}
	const query = `SELECT state, COUNT(*) FROM migration_journal WHERE run_id=$1 GROUP BY state`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[state] = count
	}
	return counts, rows.Err()
}
