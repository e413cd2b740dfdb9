package dictionary

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestStore creates a Store backed by a fresh SQLite file.
func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SetupSchema(db), "failed to set up schema")

	s, err := NewStore(db)
	require.NoError(t, err, "NewStore() error")
	t.Cleanup(s.Close)

	return db, s
}
