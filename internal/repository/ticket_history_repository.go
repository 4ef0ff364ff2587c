package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
)

// TicketHistoryRepository stores audit entries.
type TicketHistoryRepository interface {
	Append(ctx context.Context, ticketID int64, entries []domain.HistoryEntry) (int64, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
}

type ticketHistoryRepository struct {
	db DB
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DB) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

// Append stores entries not yet archived. Entries are keyed by their id, so
// replaying a ticket's full history is safe. It returns the number inserted.
func (r *ticketHistoryRepository) Append(ctx context.Context, ticketID int64, entries []domain.HistoryEntry) (int64, error) {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, kind, actor, target, reason, to_agent, tag, agent, merged_from, at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (id) DO NOTHING`
	var inserted int64
	for _, h := range entries {
		cmd, err := r.db.Exec(ctx, query,
			h.ID,
			ticketID,
			h.Kind,
			h.Actor,
			h.Target,
			h.Reason,
			h.To,
			h.Tag,
			h.Agent,
			h.From,
			h.At,
		)
		if err != nil {
			return inserted, err
		}
		inserted += cmd.RowsAffected()
	}
	return inserted, nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, kind, actor, target, reason, to_agent, tag, agent, merged_from, at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.HistoryEntry, error) {
		var h domain.HistoryEntry
		err := row.Scan(&h.ID, &h.Kind, &h.Actor, &h.Target, &h.Reason, &h.To, &h.Tag, &h.Agent, &h.From, &h.At)
		return h, err
	})
}
