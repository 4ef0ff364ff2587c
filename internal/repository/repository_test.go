package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records Exec calls. Rows are reported as inserted until an id has
// been seen once, mimicking ON CONFLICT DO NOTHING.
type fakeDB struct {
	execs []execCall
	seen  map[any]bool
	err   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	if f.seen == nil {
		f.seen = map[any]bool{}
	}
	if strings.Contains(sql, "DO NOTHING") && len(args) > 0 {
		if f.seen[args[0]] {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		f.seen[args[0]] = true
	}
	if strings.HasPrefix(strings.TrimSpace(sql), "UPDATE") {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestUpsertStoresSnapshotPayload(t *testing.T) {
	db := &fakeDB{}
	repo := NewTicketRepository(db)
	tk := &domain.Ticket{ID: 1001, OdID: "OD-1", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh, UpdatedAt: time.Now()}

	require.NoError(t, repo.Upsert(context.Background(), tk, true))
	require.Len(t, db.execs, 1)
	args := db.execs[0].args
	assert.Equal(t, int64(1001), args[0])
	assert.Equal(t, true, args[6])

	var decoded domain.Ticket
	require.NoError(t, json.Unmarshal(args[7].([]byte), &decoded))
	assert.Equal(t, domain.TicketStatusResolved, decoded.Status)
}

func TestMarkMergedMissingRow(t *testing.T) {
	repo := NewTicketRepository(&fakeDB{})
	err := repo.MarkMerged(context.Background(), 1010, 1005)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestAppendHistoryIsReplaySafe(t *testing.T) {
	db := &fakeDB{}
	repo := NewTicketHistoryRepository(db)
	entries := []domain.HistoryEntry{
		{ID: "h1", Kind: domain.HistoryAssigned, Actor: "agent-1", To: "agent-1"},
		{ID: "h2", Kind: domain.HistoryResolved, Actor: "agent-1"},
	}

	n, err := repo.Append(context.Background(), 7, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries = append(entries, domain.HistoryEntry{ID: "h3", Kind: domain.HistoryReopened, Actor: "agent-1"})
	n, err = repo.Append(context.Background(), 7, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAppendStopsOnError(t *testing.T) {
	db := &fakeDB{err: errors.New("conn reset")}
	repo := NewTicketHistoryRepository(db)

	_, err := repo.Append(context.Background(), 7, []domain.HistoryEntry{{ID: "a"}, {ID: "b"}})
	assert.Error(t, err)
	assert.Len(t, db.execs, 1)
}
