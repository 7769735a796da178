package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/roach88/cmdvault/internal/catalog"
	"github.com/roach88/cmdvault/internal/config"
	"github.com/roach88/cmdvault/internal/store"
)

// OpenCatalog opens the catalog and usage stores selected by cfg.
//
// The csv backend reads and writes through fs. With shared_store set, both
// stores are handles to one SQLite database.
func OpenCatalog(cfg *config.Config, fs afero.Fs, logger *slog.Logger) (*catalog.Catalog, error) {
	saved, used, err := openStores(cfg, fs)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("stores opened", "backend", cfg.Backend, "shared", cfg.SharedStore)
	}
	return catalog.New(saved, used, logger), nil
}

func openStores(cfg *config.Config, fs afero.Fs) (store.Backend, store.Backend, error) {
	switch cfg.Backend {
	case config.BackendCSV:
		saved, err := store.OpenFile(fs, cfg.CatalogPath())
		if err != nil {
			return nil, nil, err
		}
		used, err := store.OpenFile(fs, cfg.UsagePath())
		if err != nil {
			return nil, nil, err
		}
		return saved, used, nil

	case config.BackendSQLite:
		if cfg.SharedStore {
			db, err := store.OpenSQL(cfg.DatabasePath())
			if err != nil {
				return nil, nil, err
			}
			shared := store.Share(db)
			return shared.Handle(), shared.Handle(), nil
		}
		saved, err := store.OpenSQL(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		used, err := store.OpenSQL(cfg.UsageDatabasePath())
		if err != nil {
			saved.Close()
			return nil, nil, err
		}
		return saved, used, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
