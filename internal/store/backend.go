package store

import (
	"context"

	"github.com/roach88/cmdvault/internal/record"
)

// Backend is the capability set every command store exposes.
// Result ordering of Query is backend-defined; callers must not rely on it.
type Backend interface {
	// Add stores text with a usage count of 0.
	// Returns an error matching ErrDuplicateCommand if text is already stored.
	Add(ctx context.Context, text string) error

	// Upsert replaces the usage count of the record with equal text, or
	// creates it with a fresh id and a usage count of 1.
	Upsert(ctx context.Context, rec record.Record) error

	// InsertOrReplace writes rec keyed by text without the first-seen floor.
	InsertOrReplace(ctx context.Context, rec record.Record) error

	// Query returns the records accepted by f.
	Query(ctx context.Context, f record.Filter) ([]record.Record, error)

	// Delete removes every record whose text equals rec.Text.
	Delete(ctx context.Context, rec record.Record) error

	// Clear removes all records. Ids allocated before the clear stay retired.
	Clear(ctx context.Context) error

	// Summary returns record counts grouped by usage count, descending.
	Summary(ctx context.Context) ([]UsageGroup, error)

	// Name identifies the backend kind in errors and logs.
	Name() string

	Close() error
}

// UsageGroup is one line of a store summary.
type UsageGroup struct {
	UsageCount int64 `json:"usage_count"`
	Commands   int64 `json:"commands"`
}
