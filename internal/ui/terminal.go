package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
)

// pickerSize is how many options the picker shows before scrolling.
const pickerSize = 10

// Terminal implements Input on an interactive terminal using promptui.
type Terminal struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser

	label *color.Color
	muted *color.Color
}

// NewTerminal creates a Terminal on the process's standard streams.
func NewTerminal(noColor bool) *Terminal {
	return newTerminal(os.Stdin, os.Stdout, noColor)
}

func newTerminal(stdin io.ReadCloser, stdout io.Writer, noColor bool) *Terminal {
	t := &Terminal{
		stdin:  stdin,
		stdout: nopWriteCloser{stdout},
		label:  color.New(color.FgCyan, color.Bold),
		muted:  color.New(color.FgHiBlack),
	}
	if noColor {
		t.label.DisableColor()
		t.muted.DisableColor()
	}
	return t
}

// Prompt implements Prompter. Empty answers fail validation and are asked again.
func (t *Terminal) Prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if label == "" {
		label = ">"
	}
	prompt := promptui.Prompt{
		Label:    t.label.Sprint(label),
		Validate: nonEmpty,
		Stdin:    t.stdin,
		Stdout:   t.stdout,
	}
	line, err := prompt.Run()
	if err != nil {
		return "", readError(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Select implements Picker. Typing "/" filters the options by substring.
func (t *Terminal) Select(ctx context.Context, options []string, label string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(options) == 0 {
		return 0, ErrSelectionCancelled
	}
	if label == "" {
		label = DefaultPickLabel
	}
	prompt := promptui.Select{
		Label:    t.label.Sprint(label),
		Items:    options,
		Size:     pickerSize,
		Searcher: searchOptions(options),
		Stdin:    t.stdin,
		Stdout:   t.stdout,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return 0, readError(err)
	}
	return idx, nil
}

// Confirm implements Confirmer. Anything but an explicit yes is no.
func (t *Terminal) Confirm(ctx context.Context, label string) bool {
	if ctx.Err() != nil {
		return false
	}
	prompt := promptui.Prompt{
		Label:     t.label.Sprint(label),
		IsConfirm: true,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	result, err := prompt.Run()
	if err != nil {
		return false
	}
	return ParseConfirm(result)
}

func nonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errEmptyInput
	}
	return nil
}

var errEmptyInput = errors.New("input must not be empty")

// searchOptions matches the picker filter against the option text, ignoring case.
func searchOptions(options []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		return strings.Contains(strings.ToLower(options[index]), strings.ToLower(input))
	}
}

// readError maps terminal aborts to ErrSelectionCancelled.
func readError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt),
		errors.Is(err, promptui.ErrEOF),
		errors.Is(err, readline.ErrInterrupt),
		errors.Is(err, io.EOF):
		return ErrSelectionCancelled
	}
	return fmt.Errorf("read input: %w", err)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
