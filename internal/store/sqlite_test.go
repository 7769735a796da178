package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdvault/internal/record"
)

func TestOpenSQL_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.db")

	s, err := OpenSQL(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpenSQL_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQL(path)
		require.NoError(t, err, "OpenSQL() iteration %d", i)
		s.Close()
	}

	s, err := OpenSQL(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	var index string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='commands_ind'").Scan(&index)
	assert.NoError(t, err, "commands_ind index missing")
}

func TestOpenSQL_InvalidPath(t *testing.T) {
	_, err := OpenSQL("/nonexistent/dir/cmd.db")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
}

func TestOpenSQL_MigratesLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvdb")

	// Layout written by the previous tool: nullable counts, no AUTOINCREMENT.
	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE cmd (id INTEGER PRIMARY KEY, command TEXT UNIQUE, used_times INTEGER);
		INSERT INTO cmd (command, used_times) VALUES ('git log', NULL), ('make', 3);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := OpenSQL(path)
	require.NoError(t, err)
	defer s.Close()

	var nulls int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM cmd WHERE used_times IS NULL").Scan(&nulls))
	assert.Zero(t, nulls)

	used, err := s.Query(context.Background(), record.Filter{UsedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, texts(used))

	var ddl string
	require.NoError(t, s.db.QueryRow("SELECT sql FROM sqlite_master WHERE type='table' AND name='cmd'").Scan(&ddl))
	assert.Contains(t, ddl, "AUTOINCREMENT")

	var index string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='commands_ind'").Scan(&index)
	assert.NoError(t, err, "commands_ind index missing")
}

func TestOpenSQL_LegacyIDsAreNotReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvdb")
	ctx := context.Background()

	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE cmd (id INTEGER PRIMARY KEY, command TEXT UNIQUE, used_times INTEGER);
		INSERT INTO cmd (command, used_times) VALUES ('git log', 1), ('make', 3);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := OpenSQL(path)
	require.NoError(t, err)
	defer s.Close()

	all, err := s.Query(ctx, record.Filter{Pattern: "git log"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)

	require.NoError(t, s.Delete(ctx, record.Record{Text: "make"}))
	require.NoError(t, s.Add(ctx, "ls"))

	added, err := s.Query(ctx, record.Filter{Pattern: "^ls$"})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Greater(t, added[0].ID, int64(2))
}

func TestSQLStore_QueryOrdersByUsage(t *testing.T) {
	s := createTestSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a"))
	require.NoError(t, s.InsertOrReplace(ctx, record.Record{Text: "b", UsageCount: 5}))
	require.NoError(t, s.InsertOrReplace(ctx, record.Record{Text: "c", UsageCount: 2}))

	got, err := s.Query(ctx, record.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Text)
	assert.Equal(t, "c", got[1].Text)
	assert.Equal(t, "a", got[2].Text)
}

func TestSQLStore_InsertOrReplaceKeepsID(t *testing.T) {
	s := createTestSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a"))
	before := findText(t, s, "a")

	require.NoError(t, s.InsertOrReplace(ctx, record.Record{Text: "a", UsageCount: 8}))
	after := findText(t, s, "a")

	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, int64(8), after.UsageCount)
}

func TestMatchRegexp(t *testing.T) {
	ok, err := matchRegexp("^git", "git log")
	require.NoError(t, err)
	assert.True(t, ok)

	// Served from the cache the second time.
	ok, err = matchRegexp("^git", "docker ps")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = matchRegexp("(", "x")
	assert.Error(t, err)
}
