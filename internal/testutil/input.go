package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/cmdvault/internal/ui"
)

// Cancel is a Choices entry that makes Select return ui.ErrSelectionCancelled.
const Cancel = -1

// ScriptedInput implements ui.Input from queued answers.
//
// Every label shown is recorded in Labels, in order, so tests can check which
// collaborator asked what. Running out of answers fails the call.
type ScriptedInput struct {
	mu sync.Mutex

	Answers  []string
	Choices  []int
	Confirms []bool

	Labels  []string
	Options [][]string
}

// NewScriptedInput creates an input that answers prompts with answers.
func NewScriptedInput(answers ...string) *ScriptedInput {
	return &ScriptedInput{Answers: answers}
}

// WithChoices queues picker answers.
func (s *ScriptedInput) WithChoices(choices ...int) *ScriptedInput {
	s.Choices = append(s.Choices, choices...)
	return s
}

// WithConfirms queues confirmation answers.
func (s *ScriptedInput) WithConfirms(confirms ...bool) *ScriptedInput {
	s.Confirms = append(s.Confirms, confirms...)
	return s
}

// Prompt implements ui.Prompter.
func (s *ScriptedInput) Prompt(ctx context.Context, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Labels = append(s.Labels, label)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("testutil: no answer queued for prompt %q", label)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

// Select implements ui.Picker.
func (s *ScriptedInput) Select(ctx context.Context, options []string, label string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if label == "" {
		label = ui.DefaultPickLabel
	}
	s.Labels = append(s.Labels, label)
	s.Options = append(s.Options, append([]string(nil), options...))
	if len(s.Choices) == 0 {
		return 0, fmt.Errorf("testutil: no choice queued for picker %q", label)
	}
	choice := s.Choices[0]
	s.Choices = s.Choices[1:]
	if choice == Cancel {
		return 0, ui.ErrSelectionCancelled
	}
	if choice < 0 || choice >= len(options) {
		return 0, fmt.Errorf("testutil: choice %d out of range for %d options", choice, len(options))
	}
	return choice, nil
}

// Confirm implements ui.Confirmer. An empty queue answers no.
func (s *ScriptedInput) Confirm(ctx context.Context, prompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Labels = append(s.Labels, prompt)
	if len(s.Confirms) == 0 {
		return false
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer
}
