// Package resolve turns a command template into a concrete command line.
//
// Resolution runs two passes in order. The environment pass replaces every
// $NAME token whose variable is set and leaves unset ones verbatim. The
// positional pass prompts once per {} marker of the original template and
// fills the left-most remaining marker with each answer in turn.
package resolve

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/roach88/cmdvault/internal/record"
)

var envToken = regexp.MustCompile(`\$\w+`)

// Prompter asks the user for one line of text.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
}

// LookupEnv finds an environment variable; os.LookupEnv satisfies it.
type LookupEnv func(name string) (string, bool)

// Resolver fills command templates.
type Resolver struct {
	prompter Prompter
	lookup   LookupEnv
}

// New creates a Resolver. A nil lookup reads the process environment.
func New(prompter Prompter, lookup LookupEnv) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{prompter: prompter, lookup: lookup}
}

// ParamLabel is the prompt label for the i-th (0-based) placeholder.
func ParamLabel(i int) string {
	return fmt.Sprintf("Set param No.%d", i+1)
}

// Resolve runs the environment pass and then the positional pass.
func (r *Resolver) Resolve(ctx context.Context, template string) (string, error) {
	return r.FillPositional(ctx, template, r.ExpandEnv(template))
}

// ExpandEnv replaces $NAME tokens with their values. Tokens naming unset
// variables stay as they are.
func (r *Resolver) ExpandEnv(text string) string {
	return envToken.ReplaceAllStringFunc(text, func(token string) string {
		if value, ok := r.lookup(token[1:]); ok {
			return value
		}
		return token
	})
}

// FillPositional prompts once per marker counted in template and replaces the
// left-most remaining marker of working with each answer, in order.
func (r *Resolver) FillPositional(ctx context.Context, template, working string) (string, error) {
	count := strings.Count(template, record.Placeholder)
	for i := 0; i < count; i++ {
		answer, err := r.prompter.Prompt(ctx, ParamLabel(i))
		if err != nil {
			return "", fmt.Errorf("param %d: %w", i+1, err)
		}
		working = strings.Replace(working, record.Placeholder, answer, 1)
	}
	return working, nil
}
