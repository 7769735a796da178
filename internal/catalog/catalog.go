// Package catalog ranks saved commands against their usage history.
//
// A Catalog owns two independent stores: the catalog store holds every
// command the user saved, the usage store holds commands that actually ran,
// with their accumulated counts. Candidates offered to the user merge both,
// deduplicated by text, with usage deciding the order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/store"
)

// ErrNoMatch is returned when no stored command matches a pattern.
var ErrNoMatch = errors.New("no command matched the pattern")

// Catalog is the ranked view over a catalog store and a usage store.
type Catalog struct {
	saved  store.Backend
	used   store.Backend
	logger *slog.Logger
}

// New creates a Catalog over the given stores. A nil logger discards output.
func New(saved, used store.Backend, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{saved: saved, used: used, logger: logger}
}

// Add saves text in the catalog store.
// Returns an error matching store.ErrDuplicateCommand if it is already saved.
func (c *Catalog) Add(ctx context.Context, text string) error {
	if record.Normalize(text) == "" {
		return fmt.Errorf("add: empty command")
	}
	if err := c.saved.Add(ctx, text); err != nil {
		return err
	}
	c.logger.Debug("command saved", "text", text)
	return nil
}

// Search queries the catalog store.
func (c *Catalog) Search(ctx context.Context, pattern string) ([]record.Record, error) {
	return c.saved.Query(ctx, record.Filter{Pattern: pattern})
}

// SearchUsed queries the usage store for records that ran at least once.
func (c *Catalog) SearchUsed(ctx context.Context, pattern string) ([]record.Record, error) {
	return c.used.Query(ctx, record.Filter{Pattern: pattern, UsedOnly: true})
}

// RankedCandidates returns the merged candidate list for pattern and the
// texts to display for it.
//
// Usage records come first, followed by catalog records whose text is not
// already present, then the whole list is stable-sorted by usage count
// descending, so for equal counts usage records stay ahead.
// Returns ErrNoMatch if nothing matches.
func (c *Catalog) RankedCandidates(ctx context.Context, pattern string) ([]record.Record, []string, error) {
	used, err := c.SearchUsed(ctx, pattern)
	if err != nil {
		return nil, nil, err
	}
	saved, err := c.Search(ctx, pattern)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool, len(used))
	for _, r := range used {
		seen[r.Text] = true
	}

	merged := make([]record.Record, 0, len(used)+len(saved))
	merged = append(merged, used...)
	for _, r := range saved {
		if !seen[r.Text] {
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UsageCount > merged[j].UsageCount
	})

	c.logger.Debug("ranked candidates", "pattern", pattern, "used", len(used), "saved", len(saved), "merged", len(merged))

	if len(merged) == 0 {
		return nil, nil, fmt.Errorf("%w %q", ErrNoMatch, pattern)
	}

	texts := make([]string, len(merged))
	for i, r := range merged {
		texts[i] = r.Text
	}
	return merged, texts, nil
}

// Deletable returns the catalog records matching pattern. Usage-only
// aliases are never included since Delete cannot remove them.
//
// With usedOnly set, only saved commands that ran at least once are kept,
// carrying their usage count and ordered by it descending.
// Returns ErrNoMatch if nothing matches.
func (c *Catalog) Deletable(ctx context.Context, pattern string, usedOnly bool) ([]record.Record, error) {
	saved, err := c.Search(ctx, pattern)
	if err != nil {
		return nil, err
	}

	if usedOnly {
		used, err := c.SearchUsed(ctx, pattern)
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int64, len(used))
		for _, r := range used {
			counts[r.Text] += r.UsageCount
		}

		kept := saved[:0]
		for _, r := range saved {
			if n := counts[r.Text]; n > 0 {
				r.UsageCount = n
				kept = append(kept, r)
			}
		}
		saved = kept
		sort.SliceStable(saved, func(i, j int) bool {
			return saved[i].UsageCount > saved[j].UsageCount
		})
	}

	if len(saved) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, pattern)
	}
	return saved, nil
}

// RecordSuccess bumps usage after canonical ran successfully as realized.
//
// The new count is one above the sum of every usage row with the canonical
// text. When realized differs from the canonical text, the realized command
// is also stored as an alias carrying the same count, so the exact
// invocation ranks on its own next time.
func (c *Catalog) RecordSuccess(ctx context.Context, canonical record.Record, realized string) error {
	canonical.Text = record.Normalize(canonical.Text)
	realized = record.Normalize(realized)

	all, err := c.used.Query(ctx, record.Filter{})
	if err != nil {
		return err
	}
	count := record.SumCount(record.WithText(all, canonical.Text)) + 1

	canonical.UsageCount = count
	if err := c.used.Upsert(ctx, canonical); err != nil {
		return err
	}

	if realized != "" && realized != canonical.Text {
		alias := record.Record{Text: realized, UsageCount: count}
		if err := c.used.InsertOrReplace(ctx, alias); err != nil {
			return err
		}
		c.logger.Debug("alias recorded", "canonical", canonical.Text, "alias", realized, "count", count)
	}

	c.logger.Debug("usage recorded", "text", canonical.Text, "count", count)
	return nil
}

// Delete removes rec from the catalog store. Usage history is kept.
func (c *Catalog) Delete(ctx context.Context, rec record.Record) error {
	if err := c.saved.Delete(ctx, rec); err != nil {
		return err
	}
	c.logger.Debug("command deleted", "text", rec.Text)
	return nil
}

// ClearAll empties both stores.
func (c *Catalog) ClearAll(ctx context.Context) error {
	if err := c.saved.Clear(ctx); err != nil {
		return err
	}
	return c.used.Clear(ctx)
}

// Summary renders the diagnostic summary of both stores.
func (c *Catalog) Summary(ctx context.Context) (string, error) {
	saved, err := c.saved.Summary(ctx)
	if err != nil {
		return "", err
	}
	used, err := c.used.Summary(ctx)
	if err != nil {
		return "", err
	}
	return store.FormatSummary("catalog", saved) + store.FormatSummary("usage", used), nil
}

// Close closes both stores.
func (c *Catalog) Close() error {
	return errors.Join(c.saved.Close(), c.used.Close())
}
