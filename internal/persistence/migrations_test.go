package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMigrationDB keeps schema_migrations rows and the statements that were
// committed. A statement containing failOn makes its transaction fail.
type fakeMigrationDB struct {
	applied   []string
	committed []string
	failOn    string
}

func (f *fakeMigrationDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.committed = append(f.committed, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeMigrationDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return &nameRows{names: append([]string(nil), f.applied...)}, nil
}

func (f *fakeMigrationDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: f}, nil
}

type fakeTx struct {
	pgx.Tx
	db     *fakeMigrationDB
	execs  []string
	rows   []string
	closed bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.db.failOn != "" && strings.Contains(sql, tx.db.failOn) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	tx.execs = append(tx.execs, sql)
	if strings.HasPrefix(sql, "INSERT INTO schema_migrations") {
		tx.rows = append(tx.rows, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.db.committed = append(tx.db.committed, tx.execs...)
	tx.db.applied = append(tx.db.applied, tx.rows...)
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	return nil
}

type nameRows struct {
	pgx.Rows
	names []string
	pos   int
}

func (r *nameRows) Next() bool {
	r.pos++
	return r.pos <= len(r.names)
}

func (r *nameRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.names[r.pos-1]
	return nil
}

func (r *nameRows) Err() error { return nil }
func (r *nameRows) Close()     {}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestRunMigrationsWithoutPoolIsSkipped(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-exist", zap.NewNop()))
}

func TestMigrateRecordsEachFile(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"001_console.sql": "CREATE TABLE tickets ();",
		"002_history.sql": "CREATE TABLE ticket_history ();",
	})
	db := &fakeMigrationDB{}

	require.NoError(t, migrate(context.Background(), db, dir, zap.NewNop()))
	assert.Equal(t, []string{"001_console.sql", "002_history.sql"}, db.applied)
	assert.Equal(t, createMigrationsTable, db.committed[0])
	assert.Contains(t, db.committed, "CREATE TABLE tickets ();")
	assert.Contains(t, db.committed, "CREATE TABLE ticket_history ();")

	// A second run finds both rows and applies nothing.
	before := len(db.committed)
	require.NoError(t, migrate(context.Background(), db, dir, zap.NewNop()))
	assert.Equal(t, []string{"001_console.sql", "002_history.sql"}, db.applied)
	assert.Len(t, db.committed, before+1, "only the table check runs again")
}

func TestMigrateSkipsAppliedFiles(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"001_console.sql": "CREATE TABLE tickets ();",
		"002_history.sql": "CREATE TABLE ticket_history ();",
	})
	db := &fakeMigrationDB{applied: []string{"001_console.sql"}}

	require.NoError(t, migrate(context.Background(), db, dir, zap.NewNop()))
	assert.Equal(t, []string{"001_console.sql", "002_history.sql"}, db.applied)
	assert.NotContains(t, db.committed, "CREATE TABLE tickets ();")
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"001_console.sql": "CREATE TABLE tickets ();",
		"002_history.sql": "CREATE TABLE broken (;",
		"003_later.sql":   "CREATE TABLE later ();",
	})
	db := &fakeMigrationDB{failOn: "broken"}

	err := migrate(context.Background(), db, dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_history.sql")
	assert.Equal(t, []string{"001_console.sql"}, db.applied)
	assert.NotContains(t, db.committed, "CREATE TABLE later ();")
}

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"002_history.sql": "SELECT 1;",
		"001_console.sql": "SELECT 1;",
		"README.md":       "SELECT 1;",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_console.sql", "002_history.sql"}, files)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestShippedMigrationsAreListed(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	assert.Contains(t, files, "001_console.sql")
}
