package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/roach88/cmdvault/internal/config"
	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/store"
)

// MigrateResult counts the rows written by Migrate.
type MigrateResult struct {
	Read          int    `json:"read"`
	CatalogAdded  int    `json:"catalog_added"`
	UsageAdded    int    `json:"usage_added"`
	UsageDatabase string `json:"usage_database"`
	Database      string `json:"database"`
}

// Migrate imports the flat-file stores into the SQLite databases.
//
// The catalog database receives every text from both files, counts summed
// per text. The usage database receives the used rows, summed the same way,
// so ranking carries over. Texts already in a database are left alone, and
// each database import is all-or-nothing.
func Migrate(ctx context.Context, cfg *config.Config, fs afero.Fs, logger *slog.Logger) (*MigrateResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	saved, err := readFlatFile(ctx, fs, cfg.CatalogPath())
	if err != nil {
		return nil, err
	}
	used, err := readFlatFile(ctx, fs, cfg.UsagePath())
	if err != nil {
		return nil, err
	}
	logger.Debug("read flat files", "catalog", len(saved), "usage", len(used))

	all := make([]record.Record, 0, len(used)+len(saved))
	all = append(all, used...)
	all = append(all, saved...)

	res := &MigrateResult{
		Read:          len(all),
		Database:      cfg.DatabasePath(),
		UsageDatabase: cfg.UsageDatabasePath(),
	}

	res.CatalogAdded, err = importInto(ctx, cfg.DatabasePath(), all)
	if err != nil {
		return nil, err
	}
	if cfg.SharedStore {
		res.UsageDatabase = res.Database
	} else {
		res.UsageAdded, err = importInto(ctx, cfg.UsageDatabasePath(), record.Filter{UsedOnly: true}.Apply(used))
		if err != nil {
			return nil, err
		}
	}

	logger.Info("migration complete", "catalog_added", res.CatalogAdded, "usage_added", res.UsageAdded)
	return res, nil
}

func readFlatFile(ctx context.Context, fs afero.Fs, path string) ([]record.Record, error) {
	if _, err := fs.Stat(path); err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return nil, nil
		}
		return nil, &store.StorageError{Backend: "csv", Op: "migrate", Err: err}
	}
	fileStore, err := store.OpenFile(fs, path)
	if err != nil {
		return nil, err
	}
	defer fileStore.Close()
	return fileStore.Query(ctx, record.Filter{})
}

func importInto(ctx context.Context, path string, records []record.Record) (int, error) {
	db, err := store.OpenSQL(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.Import(ctx, records)
}
