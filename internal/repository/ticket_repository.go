package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
)

// TicketSnapshot is the archived state of a ticket as last presented.
type TicketSnapshot struct {
	Ticket     *domain.Ticket
	Local      bool
	MergedInto *int64
	ArchivedAt time.Time
}

// TicketRepository archives ticket snapshots for reporting.
type TicketRepository interface {
	Upsert(ctx context.Context, ticket *domain.Ticket, local bool) error
	MarkMerged(ctx context.Context, id, into int64) error
	GetByID(ctx context.Context, id int64) (*TicketSnapshot, error)
	ListByOdID(ctx context.Context, odID string, limit int) ([]TicketSnapshot, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Upsert(ctx context.Context, ticket *domain.Ticket, local bool) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode ticket %d: %w", ticket.ID, err)
	}
	const query = `
        INSERT INTO ticket_snapshots (id, od_id, status, priority, assigned_to, sla_deadline, local_only, payload, updated_at, archived_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
        ON CONFLICT (id) DO UPDATE SET od_id=EXCLUDED.od_id, status=EXCLUDED.status, priority=EXCLUDED.priority,
            assigned_to=EXCLUDED.assigned_to, local_only=EXCLUDED.local_only, payload=EXCLUDED.payload,
            updated_at=EXCLUDED.updated_at, archived_at=NOW()`
	_, err = r.db.Exec(ctx, query,
		ticket.ID,
		ticket.OdID,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.SLADeadline,
		local,
		payload,
		ticket.UpdatedAt,
	)
	return err
}

func (r *ticketRepository) MarkMerged(ctx context.Context, id, into int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE ticket_snapshots SET merged_into=$1, archived_at=NOW() WHERE id=$2`, into, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*TicketSnapshot, error) {
	const query = `
        SELECT payload, local_only, merged_into, archived_at
        FROM ticket_snapshots WHERE id=$1`
	snap, err := scanSnapshot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *ticketRepository) ListByOdID(ctx context.Context, odID string, limit int) ([]TicketSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT payload, local_only, merged_into, archived_at
        FROM ticket_snapshots WHERE od_id=$1 ORDER BY updated_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, odID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *snap)
	}
	return result, rows.Err()
}

func scanSnapshot(row pgx.Row) (*TicketSnapshot, error) {
	var (
		payload []byte
		snap    TicketSnapshot
	)
	if err := row.Scan(&payload, &snap.Local, &snap.MergedInto, &snap.ArchivedAt); err != nil {
		return nil, err
	}
	snap.Ticket = &domain.Ticket{}
	if err := json.Unmarshal(payload, snap.Ticket); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
