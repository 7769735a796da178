package store

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// createTestSQLStore opens a SQLite store in a temporary directory.
func createTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQL(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestFileStore opens a CSV store on an in-memory filesystem.
func createTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := OpenFile(afero.NewMemMapFs(), "/home/user/.cmd/cmd.csv")
	require.NoError(t, err)
	return s
}

// eachBackend runs fn once per Backend realization.
func eachBackend(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestSQLStore(t)) })
	t.Run("csv", func(t *testing.T) { fn(t, createTestFileStore(t)) })
}
