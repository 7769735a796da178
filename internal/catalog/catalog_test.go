package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/store"
)

type fixture struct {
	catalog *Catalog
	saved   store.Backend
	used    store.Backend
}

func eachStoreKind(t *testing.T, fn func(t *testing.T, f fixture)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		saved, err := store.OpenSQL(filepath.Join(dir, "cmd.db"))
		require.NoError(t, err)
		used, err := store.OpenSQL(filepath.Join(dir, "cmd_used.db"))
		require.NoError(t, err)
		c := New(saved, used, nil)
		t.Cleanup(func() { c.Close() })
		fn(t, fixture{catalog: c, saved: saved, used: used})
	})

	t.Run("csv", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		saved, err := store.OpenFile(fs, "/cmd/cmd.csv")
		require.NoError(t, err)
		used, err := store.OpenFile(fs, "/cmd/cmd_used.csv")
		require.NoError(t, err)
		fn(t, fixture{catalog: New(saved, used, nil), saved: saved, used: used})
	})
}

func usageOf(t *testing.T, b store.Backend, text string) int64 {
	t.Helper()
	all, err := b.Query(context.Background(), record.Filter{})
	require.NoError(t, err)
	rows := record.WithText(all, text)
	require.Len(t, rows, 1, "expected one usage row for %q", text)
	return rows[0].UsageCount
}

func TestAdd_Duplicate(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		require.NoError(t, f.catalog.Add(ctx, "git log"))
		err := f.catalog.Add(ctx, "git log")
		assert.True(t, store.IsDuplicate(err))

		got, err := f.catalog.Search(ctx, "git log")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestAdd_Empty(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		assert.Error(t, f.catalog.Add(context.Background(), "   "))
	})
}

func TestRankedCandidates_MergeAndDedup(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		require.NoError(t, f.catalog.Add(ctx, "git log"))
		require.NoError(t, f.catalog.Add(ctx, "git branch"))
		require.NoError(t, f.used.InsertOrReplace(ctx, record.Record{Text: "git log", UsageCount: 2}))

		records, texts, err := f.catalog.RankedCandidates(ctx, "")
		require.NoError(t, err)

		assert.Equal(t, []string{"git log", "git branch"}, texts)
		require.Len(t, records, 2)
		assert.Equal(t, int64(2), records[0].UsageCount)
		assert.Equal(t, int64(0), records[1].UsageCount)
	})
}

func TestRankedCandidates_UsageOrdersAndTiesFavorUsage(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		require.NoError(t, f.catalog.Add(ctx, "make build"))
		require.NoError(t, f.used.InsertOrReplace(ctx, record.Record{Text: "make test", UsageCount: 1}))
		require.NoError(t, f.used.InsertOrReplace(ctx, record.Record{Text: "make lint", UsageCount: 6}))
		// Catalog-only entry with a count equal to a usage entry.
		require.NoError(t, f.saved.InsertOrReplace(ctx, record.Record{Text: "make docs", UsageCount: 1}))

		_, texts, err := f.catalog.RankedCandidates(ctx, "^make")
		require.NoError(t, err)
		assert.Equal(t, []string{"make lint", "make test", "make docs", "make build"}, texts)
	})
}

func TestRankedCandidates_PatternFilters(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		require.NoError(t, f.catalog.Add(ctx, "git log"))
		require.NoError(t, f.catalog.Add(ctx, "docker ps"))
		require.NoError(t, f.used.InsertOrReplace(ctx, record.Record{Text: "docker images", UsageCount: 3}))

		_, texts, err := f.catalog.RankedCandidates(ctx, "docker")
		require.NoError(t, err)
		assert.Equal(t, []string{"docker images", "docker ps"}, texts)
	})
}

func TestRankedCandidates_NoMatch(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git log"))

		_, _, err := f.catalog.RankedCandidates(ctx, "kubectl")
		require.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestRankedCandidates_IgnoresUnusedUsageRows(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.used.InsertOrReplace(ctx, record.Record{Text: "stale", UsageCount: 0}))

		_, _, err := f.catalog.RankedCandidates(ctx, "")
		require.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestRecordSuccess_AccumulatesWithAlias(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git commit -m {}"))

		for i := 0; i < 5; i++ {
			records, _, err := f.catalog.RankedCandidates(ctx, "commit")
			require.NoError(t, err)
			var canonical record.Record
			for _, r := range records {
				if r.Text == "git commit -m {}" {
					canonical = r
				}
			}
			require.NotEmpty(t, canonical.Text)
			require.NoError(t, f.catalog.RecordSuccess(ctx, canonical, "git commit -m X"))
		}

		assert.Equal(t, int64(5), usageOf(t, f.used, "git commit -m {}"))
		assert.Equal(t, int64(5), usageOf(t, f.used, "git commit -m X"))

		// The catalog keeps the template at its saved count.
		saved, err := f.catalog.Search(ctx, "commit")
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, int64(0), saved[0].UsageCount)
	})
}

func TestRecordSuccess_NoAliasWithoutPlaceholders(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		rec := record.Record{Text: "git status"}

		require.NoError(t, f.catalog.RecordSuccess(ctx, rec, "git status"))
		require.NoError(t, f.catalog.RecordSuccess(ctx, rec, "git status"))

		all, err := f.used.Query(ctx, record.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, int64(2), all[0].UsageCount)
	})
}

func TestRecordSuccess_FirstRunStartsAtOne(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		// A stale caller-side count does not leak into the first usage row.
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "ls", UsageCount: 40}, "ls"))
		assert.Equal(t, int64(1), usageOf(t, f.used, "ls"))
	})
}

func TestRecordSuccess_SelectingAliasBumpsAlias(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		tmpl := record.Record{Text: "echo {}"}

		require.NoError(t, f.catalog.RecordSuccess(ctx, tmpl, "echo hi"))

		records, texts, err := f.catalog.RankedCandidates(ctx, "echo")
		require.NoError(t, err)
		require.Contains(t, texts, "echo hi")
		for _, r := range records {
			if r.Text == "echo hi" {
				require.NoError(t, f.catalog.RecordSuccess(ctx, r, r.Text))
			}
		}

		assert.Equal(t, int64(2), usageOf(t, f.used, "echo hi"))
		assert.Equal(t, int64(1), usageOf(t, f.used, "echo {}"))
	})
}

func TestDelete_CatalogOnly(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git log"))
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git log"}, "git log"))

		require.NoError(t, f.catalog.Delete(ctx, record.Record{Text: "git log"}))

		saved, err := f.catalog.Search(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, saved)
		used, err := f.catalog.SearchUsed(ctx, "")
		require.NoError(t, err)
		assert.Len(t, used, 1)
	})
}

func TestDeletable_SkipsAliases(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git commit -m {}"))
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git commit -m {}"}, "git commit -m X"))

		_, err := f.catalog.Deletable(ctx, "commit -m X", false)
		require.ErrorIs(t, err, ErrNoMatch)

		got, err := f.catalog.Deletable(ctx, "commit", false)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "git commit -m {}", got[0].Text)
	})
}

func TestDeletable_UsedOnly(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		for _, text := range []string{"git log", "git status", "git diff"} {
			require.NoError(t, f.catalog.Add(ctx, text))
		}
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git log"}, "git log"))
		for i := 0; i < 3; i++ {
			require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git diff"}, "git diff"))
		}
		// Usage rows that are not saved commands stay out.
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git fetch"}, "git fetch"))

		all, err := f.catalog.Deletable(ctx, "git", false)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		used, err := f.catalog.Deletable(ctx, "git", true)
		require.NoError(t, err)
		require.Len(t, used, 2)
		assert.Equal(t, "git diff", used[0].Text)
		assert.Equal(t, int64(3), used[0].UsageCount)
		assert.Equal(t, "git log", used[1].Text)

		_, err = f.catalog.Deletable(ctx, "status", true)
		require.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestClearAll(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git log"))
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git log"}, "git log"))

		require.NoError(t, f.catalog.ClearAll(ctx))

		_, _, err := f.catalog.RankedCandidates(ctx, "")
		assert.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestSummary(t *testing.T) {
	eachStoreKind(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		require.NoError(t, f.catalog.Add(ctx, "git log"))
		require.NoError(t, f.catalog.RecordSuccess(ctx, record.Record{Text: "git log"}, "git log"))

		got, err := f.catalog.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t,
			"Stored commands (catalog):\n"+
				"- There are 1 commands that have been used 0 times\n"+
				"Stored commands (usage):\n"+
				"- There are 1 commands that have been used 1 times\n",
			got)
	})
}
