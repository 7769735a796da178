// Package runner executes resolved command lines as local processes.
//
// A command line is split on the && connector into segments. Each segment is
// split on whitespace into a program and its arguments, with no quoting
// rules, and run to completion before the next one starts. The first segment
// that fails to start or exits non-zero stops the chain.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Connector separates chained invocations in a command line.
const Connector = "&&"

// Runner executes a command line. A nil error means every segment succeeded.
type Runner interface {
	Run(ctx context.Context, line string) error
}

// ProcessError reports a segment that could not be spawned or exited non-zero.
type ProcessError struct {
	// Command is the failing segment.
	Command string

	// ExitCode is the process exit status, or -1 if it never ran.
	ExitCode int

	Err error
}

func (e *ProcessError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("cannot run command %q: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("cannot run command %q: %v", e.Command, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsProcessError reports whether err carries a ProcessError.
func IsProcessError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

// Segments splits a command line on the connector, dropping blank segments.
func Segments(line string) [][]string {
	var out [][]string
	for _, part := range strings.Split(line, Connector) {
		if fields := strings.Fields(part); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}

// Exec runs segments with os/exec, wired to the given standard streams.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExec creates an Exec attached to the process's own streams.
func NewExec(logger *slog.Logger) *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

// Run implements Runner.
func (r *Exec) Run(ctx context.Context, line string) error {
	segments := Segments(line)
	if len(segments) == 0 {
		return &ProcessError{Command: line, ExitCode: -1, Err: errors.New("no command to execute")}
	}

	for _, args := range segments {
		segment := strings.Join(args, " ")
		r.logger().Debug("executing", "command", segment)

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr

		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ProcessError{Command: segment, ExitCode: exitErr.ExitCode(), Err: err}
			}
			return &ProcessError{Command: segment, ExitCode: -1, Err: err}
		}
	}
	return nil
}

func (r *Exec) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
