// Package ui holds the interactive collaborators: a text prompt, a
// single-choice picker and a yes/no confirmation.
package ui

import (
	"context"
	"errors"
	"strings"
)

// ErrSelectionCancelled is returned when the user aborts a pick or prompt.
var ErrSelectionCancelled = errors.New("no command was selected")

// DefaultPickLabel is shown when a picker is opened without a label.
const DefaultPickLabel = "Pick a command"

// Prompter asks for one non-empty line of text, trailing newline stripped.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
}

// Picker asks the user to choose one of options and returns its index.
// Returns ErrSelectionCancelled if the user backs out.
type Picker interface {
	Select(ctx context.Context, options []string, label string) (int, error)
}

// Confirmer asks a yes/no question. Failures count as no.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Input is the full set of interactive collaborators.
type Input interface {
	Prompter
	Picker
	Confirmer
}

// ParseConfirm reports whether answer means yes. Anything else is no.
func ParseConfirm(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
