package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/cmdvault/internal/app"
	"github.com/roach88/cmdvault/internal/config"
	"github.com/roach88/cmdvault/internal/extension"
	"github.com/roach88/cmdvault/internal/runner"
	"github.com/roach88/cmdvault/internal/ui"
)

var errConfig = errors.New("configuration error")

// env is what every command needs before touching the stores.
type env struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	fs     afero.Fs
	logger *slog.Logger
	out    *OutputFormatter
}

// session is an env with the stores open and the app wired.
type session struct {
	*env
	app *app.App
}

func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	dir, err := config.ResolveDir(opts.LookupEnv)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to locate settings directory", errors.Join(errConfig, err))
	}
	cfg, err := config.Load(fs, dir, opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", errors.Join(errConfig, err))
	}
	logger.Debug("config loaded", "dir", cfg.Dir, "backend", cfg.Backend)

	out := formatter(opts, cmd)
	out.VerboseLog("Settings directory: %s (%s backend)", cfg.Dir, cfg.Backend)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)

	return &env{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		fs:     fs,
		logger: logger,
		out:    out,
	}, nil
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return nil, err
	}

	cat, err := app.OpenCatalog(e.cfg, e.fs, e.logger)
	if err != nil {
		e.cancel()
		return nil, toExitError(err)
	}

	input := opts.Input
	if input == nil {
		input = ui.NewTerminal(opts.NoColor || e.cfg.NoColor)
	}
	run := opts.Runner
	if run == nil {
		run = runner.NewExec(e.logger)
	}
	branches := opts.Branches
	if branches == nil {
		branches = extension.GitBranches{}
	}

	a := app.New(app.Options{
		Catalog:    cat,
		Input:      input,
		Runner:     run,
		Extensions: extension.Chain{extension.NewGit(branches)},
		LookupEnv:  opts.LookupEnv,
		Logger:     e.logger,
	})
	return &session{env: e, app: a}, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.logger.Error("error closing stores", "error", err)
	}
	s.cancel()
}
