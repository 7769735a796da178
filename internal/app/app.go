// Package app wires the catalog, the interactive collaborators, the
// extension chain and the process runner into the user-facing flows.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/cmdvault/internal/catalog"
	"github.com/roach88/cmdvault/internal/extension"
	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/resolve"
	"github.com/roach88/cmdvault/internal/runner"
	"github.com/roach88/cmdvault/internal/ui"
)

// AddPromptLabel is shown when add is called without a command.
const AddPromptLabel = "Write your command"

// ErrNotConfirmed is returned when the user declines a destructive action.
var ErrNotConfirmed = errors.New("not confirmed")

// Options configures an App.
type Options struct {
	Catalog    *catalog.Catalog
	Input      ui.Input
	Runner     runner.Runner
	Extensions extension.Chain

	// LookupEnv resolves $NAME tokens. Nil reads the process environment.
	LookupEnv resolve.LookupEnv

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// App runs one invocation of the tool.
type App struct {
	catalog    *catalog.Catalog
	input      ui.Input
	runner     runner.Runner
	extensions extension.Chain
	resolver   *resolve.Resolver
	logger     *slog.Logger
}

// New creates an App. Every log record carries a fresh run id so one
// search, pick, resolve, execute and record sequence can be followed.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		catalog:    opts.Catalog,
		input:      opts.Input,
		runner:     opts.Runner,
		extensions: opts.Extensions,
		resolver:   resolve.New(opts.Input, opts.LookupEnv),
		logger:     logger.With("run", newRunID()),
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Catalog returns the underlying catalog.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Get offers the ranked candidates for pattern, then executes the pick.
func (a *App) Get(ctx context.Context, pattern string) error {
	rec, err := a.pick(ctx, pattern)
	if err != nil {
		return err
	}
	return a.Execute(ctx, rec)
}

// Execute materializes rec, runs it and records usage on success.
//
// Extensions are offered rec first; the first one that recognizes the
// template does all of the work. Otherwise the template is resolved
// generically.
func (a *App) Execute(ctx context.Context, rec record.Record) error {
	env := extension.Env{
		Input:  a.input,
		Runner: a.runner,
		Usage:  a.catalog,
		Logger: a.logger,
	}
	if out, name := a.extensions.Dispatch(ctx, rec, env); out.Status == extension.Handled {
		if out.Err != nil {
			return fmt.Errorf("%s extension: %w", name, out.Err)
		}
		return nil
	}

	line, err := a.resolver.Resolve(ctx, rec.Text)
	if err != nil {
		return err
	}
	a.logger.Debug("executing", "template", rec.Text, "command", line)

	if err := a.runner.Run(ctx, line); err != nil {
		return err
	}
	return a.catalog.RecordSuccess(ctx, rec, line)
}

// Add saves text in the catalog, prompting for it when empty, and returns
// the saved text. With execute set, the saved command is then run like a
// picked one.
func (a *App) Add(ctx context.Context, text string, execute bool) (string, error) {
	if record.Normalize(text) == "" {
		answer, err := a.input.Prompt(ctx, AddPromptLabel)
		if err != nil {
			return "", err
		}
		text = answer
	}
	text = record.Normalize(text)

	if err := a.catalog.Add(ctx, text); err != nil {
		return text, err
	}
	if !execute {
		return text, nil
	}
	return text, a.Execute(ctx, record.Record{Text: text})
}

// Search returns the ranked candidates for pattern without executing.
func (a *App) Search(ctx context.Context, pattern string) ([]record.Record, error) {
	records, _, err := a.catalog.RankedCandidates(ctx, pattern)
	return records, err
}

// Delete lets the user pick one of the saved commands matching pattern and
// removes it from the catalog after confirmation. With usedOnly set, only
// saved commands that ran at least once are offered. Returns the deleted
// record.
func (a *App) Delete(ctx context.Context, pattern string, usedOnly bool) (record.Record, error) {
	records, err := a.catalog.Deletable(ctx, pattern, usedOnly)
	if err != nil {
		return record.Record{}, err
	}
	rec, err := a.choose(ctx, records)
	if err != nil {
		return record.Record{}, err
	}
	if !a.input.Confirm(ctx, fmt.Sprintf("Delete %q?", rec.Text)) {
		return record.Record{}, ErrNotConfirmed
	}
	if err := a.catalog.Delete(ctx, rec); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

// Clear empties both stores. Without yes the user must confirm first.
func (a *App) Clear(ctx context.Context, yes bool) error {
	if !yes && !a.input.Confirm(ctx, "Remove every saved and used command?") {
		return ErrNotConfirmed
	}
	if err := a.catalog.ClearAll(ctx); err != nil {
		return err
	}
	a.logger.Debug("stores cleared")
	return nil
}

// Debug returns the diagnostic summary of both stores.
func (a *App) Debug(ctx context.Context) (string, error) {
	return a.catalog.Summary(ctx)
}

// Close releases the stores.
func (a *App) Close() error {
	return a.catalog.Close()
}

func (a *App) pick(ctx context.Context, pattern string) (record.Record, error) {
	records, _, err := a.catalog.RankedCandidates(ctx, pattern)
	if err != nil {
		return record.Record{}, err
	}
	return a.choose(ctx, records)
}

func (a *App) choose(ctx context.Context, records []record.Record) (record.Record, error) {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	i, err := a.input.Select(ctx, texts, "")
	if err != nil {
		return record.Record{}, err
	}
	rec := records[i]
	a.logger.Debug("picked", "text", rec.Text, "used", rec.UsageCount)
	return rec, nil
}
