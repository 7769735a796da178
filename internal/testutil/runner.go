package testutil

import (
	"context"
	"sync"

	"github.com/roach88/cmdvault/internal/runner"
)

// RecordingRunner implements runner.Runner without spawning processes.
// Lines listed in Fail return a ProcessError with exit code 1.
type RecordingRunner struct {
	mu    sync.Mutex
	Lines []string
	Fail  map[string]bool
}

// NewRecordingRunner creates a runner that fails on the given lines.
func NewRecordingRunner(fail ...string) *RecordingRunner {
	r := &RecordingRunner{Fail: make(map[string]bool)}
	for _, line := range fail {
		r.Fail[line] = true
	}
	return r
}

// Run implements runner.Runner.
func (r *RecordingRunner) Run(ctx context.Context, line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, line)
	if r.Fail[line] {
		return &runner.ProcessError{Command: line, ExitCode: 1}
	}
	return nil
}
