package app

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdvault/internal/config"
	"github.com/roach88/cmdvault/internal/record"
)

func TestOpenCatalog_CSV(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	cfg := config.Default("/home/user/.cmd")
	cfg.Backend = config.BackendCSV

	cat, err := OpenCatalog(cfg, fs, nil)
	require.NoError(t, err)
	defer cat.Close()

	require.NoError(t, cat.Add(ctx, "ls"))
	require.NoError(t, cat.RecordSuccess(ctx, record.Record{Text: "ls"}, "ls"))

	data, err := afero.ReadFile(fs, cfg.CatalogPath())
	require.NoError(t, err)
	assert.Equal(t, "1,ls,0\n", string(data))

	data, err = afero.ReadFile(fs, cfg.UsagePath())
	require.NoError(t, err)
	assert.Equal(t, "1,ls,1\n", string(data))
}

func TestOpenCatalog_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())

	cat, err := OpenCatalog(cfg, afero.NewOsFs(), nil)
	require.NoError(t, err)

	require.NoError(t, cat.Add(ctx, "ls"))
	require.NoError(t, cat.RecordSuccess(ctx, record.Record{Text: "pwd"}, "pwd"))
	require.NoError(t, cat.Close())

	// Reopening sees the same data in separate databases.
	cat, err = OpenCatalog(cfg, afero.NewOsFs(), nil)
	require.NoError(t, err)
	defer cat.Close()

	saved, err := cat.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "ls", saved[0].Text)

	used, err := cat.SearchUsed(ctx, "")
	require.NoError(t, err)
	require.Len(t, used, 1)
	assert.Equal(t, "pwd", used[0].Text)
}

func TestOpenCatalog_SharedStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	cfg.SharedStore = true

	cat, err := OpenCatalog(cfg, afero.NewOsFs(), nil)
	require.NoError(t, err)

	require.NoError(t, cat.Add(ctx, "ls"))
	require.NoError(t, cat.RecordSuccess(ctx, record.Record{Text: "ls"}, "ls"))

	// One physical table backs both stores.
	used, err := cat.SearchUsed(ctx, "")
	require.NoError(t, err)
	require.Len(t, used, 1)
	saved, err := cat.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(1), saved[0].UsageCount)

	require.NoError(t, cat.Close())
}

func TestOpenCatalog_UnknownBackend(t *testing.T) {
	cfg := config.Default("/tmp")
	cfg.Backend = "postgres"

	_, err := OpenCatalog(cfg, afero.NewMemMapFs(), nil)
	assert.Error(t, err)
}
