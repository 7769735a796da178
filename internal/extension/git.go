package extension

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/runner"
)

// GitTemplates are the templates the git extension takes over.
var GitTemplates = []string{
	"git checkout {}",
	"git checkout {} && git pull --rebase && git checkout {}",
	"git checkout {} && git pull --rebase && git checkout {} && git merge {}",
}

// BranchLister lists local branch names.
type BranchLister interface {
	Branches(ctx context.Context) ([]string, error)
}

// Git fills branch placeholders of known git workflows by letting the user
// pick among local branches.
type Git struct {
	branches BranchLister
}

// NewGit creates the git workflow extension.
func NewGit(branches BranchLister) *Git {
	return &Git{branches: branches}
}

// Name implements Extension.
func (g *Git) Name() string {
	return "git"
}

// Recognizes reports whether text is one of GitTemplates.
func (g *Git) Recognizes(text string) bool {
	for _, tmpl := range GitTemplates {
		if text == tmpl {
			return true
		}
	}
	return false
}

// TryHandle implements Extension.
func (g *Git) TryHandle(ctx context.Context, rec record.Record, env Env) Outcome {
	if !g.Recognizes(rec.Text) {
		return Pass()
	}

	branches, err := g.branches.Branches(ctx)
	if err != nil {
		return Done(fmt.Errorf("git extension: %w", err))
	}

	line := rec.Text
	for _, label := range BranchLabels(rec.Text) {
		i, err := env.Input.Select(ctx, branches, label)
		if err != nil {
			return Done(err)
		}
		line = strings.Replace(line, record.Placeholder, branches[i], 1)
	}

	if env.Logger != nil {
		env.Logger.Debug("executing", "command", line)
	}
	if err := env.Runner.Run(ctx, line); err != nil {
		return Done(err)
	}
	return Done(env.Usage.RecordSuccess(ctx, rec, line))
}

// BranchLabels returns one picker label per placeholder of template, naming
// the subcommand text in front of it: "Select a branch for git checkout (1)".
func BranchLabels(template string) []string {
	var labels []string
	for _, segment := range strings.Split(template, runner.Connector) {
		parts := strings.Split(segment, record.Placeholder)
		for _, before := range parts[:len(parts)-1] {
			labels = append(labels, fmt.Sprintf("Select a branch for %s (%d)", strings.TrimSpace(before), len(labels)+1))
		}
	}
	return labels
}

// GitBranches lists local branches of the repository containing Dir.
type GitBranches struct {
	// Dir is any path inside the work tree. Empty means the working directory.
	Dir string
}

// Branches implements BranchLister. Names are sorted.
func (b GitBranches) Branches(ctx context.Context) ([]string, error) {
	dir := b.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("repository has no local branches")
	}

	sort.Strings(names)
	return names, nil
}
