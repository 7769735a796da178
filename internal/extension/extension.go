// Package extension lets specialized handlers take over a selected command
// before generic placeholder resolution runs.
//
// Extensions are offered the selected record in a fixed registration order.
// An extension that recognizes the exact template resolves, executes and
// records usage on its own and reports Handled; otherwise it reports
// NotRecognized and the next extension is tried. The first Handled outcome
// wins.
package extension

import (
	"context"
	"log/slog"

	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/runner"
	"github.com/roach88/cmdvault/internal/ui"
)

// Status tags an Outcome.
type Status int

const (
	// NotRecognized means the extension does not know the template.
	NotRecognized Status = iota

	// Handled means the extension claimed the invocation; Err is its result.
	Handled
)

func (s Status) String() string {
	if s == Handled {
		return "handled"
	}
	return "not recognized"
}

// Outcome is the result of offering a record to an extension.
type Outcome struct {
	Status Status
	Err    error
}

// Pass reports that the template was not recognized.
func Pass() Outcome {
	return Outcome{Status: NotRecognized}
}

// Done reports that the invocation was handled, with its result.
func Done(err error) Outcome {
	return Outcome{Status: Handled, Err: err}
}

// Recorder records a successful execution.
type Recorder interface {
	RecordSuccess(ctx context.Context, canonical record.Record, realized string) error
}

// Env carries the collaborators an extension may use.
type Env struct {
	Input  ui.Input
	Runner runner.Runner
	Usage  Recorder
	Logger *slog.Logger
}

// Extension intercepts recognized templates.
type Extension interface {
	Name() string
	TryHandle(ctx context.Context, rec record.Record, env Env) Outcome
}

// Chain is an ordered list of extensions.
type Chain []Extension

// Dispatch offers rec to each extension in order and returns the first
// Handled outcome along with the extension's name. Returns a NotRecognized
// outcome and "" if no extension claims it.
func (c Chain) Dispatch(ctx context.Context, rec record.Record, env Env) (Outcome, string) {
	for _, ext := range c {
		out := ext.TryHandle(ctx, rec, env)
		if out.Status == Handled {
			if env.Logger != nil {
				env.Logger.Debug("extension handled command", "extension", ext.Name(), "text", rec.Text)
			}
			return out, ext.Name()
		}
	}
	return Pass(), ""
}
