package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUp_SQLiteCreatesSchema(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	applied, err := Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	for _, table := range []string{"users", "entries", "entry_items"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestUp_IsIdempotent(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := Up(ctx, db, SQLite)
	require.NoError(t, err)

	applied, err := Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestUp_UnknownDialect(t *testing.T) {
	db := openSQLite(t)

	_, err := Up(context.Background(), db, Dialect("mysql"))
	assert.Error(t, err)
}
