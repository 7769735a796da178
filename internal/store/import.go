package store

import (
	"context"

	"github.com/roach88/cmdvault/internal/record"
)

// Import merges legacy records into the store in one transaction.
//
// Records sharing a text are collapsed first, their usage counts summed.
// Texts already present in the store are left untouched. Either every new
// row is written or none is. Returns the number of rows inserted.
func (s *SQLStore) Import(ctx context.Context, records []record.Record) (int, error) {
	normalized := make([]record.Record, 0, len(records))
	for _, r := range records {
		r.Text = record.Normalize(r.Text)
		if r.Text == "" {
			continue
		}
		normalized = append(normalized, r)
	}
	merged := record.GroupAndSum(normalized)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.fail("import", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cmd (command, used_times) VALUES (?, ?)
		ON CONFLICT(command) DO NOTHING
	`)
	if err != nil {
		return 0, s.fail("import", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range merged {
		res, err := stmt.ExecContext(ctx, r.Text, max(r.UsageCount, 0))
		if err != nil {
			return 0, s.fail("import", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, s.fail("import", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, s.fail("import", err)
	}
	return inserted, nil
}
