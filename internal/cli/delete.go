package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdvault/internal/app"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Used bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete [pattern]",
		Short: "Remove a saved command",
		Long: `Pick one of the saved commands matching pattern and remove it after
confirmation. Its usage history is kept.

Example:
  cmdvault delete docker
  cmdvault delete --used`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&opts.Used, "used", "u", false, "only offer commands that have been run")

	return cmd
}

func runDelete(opts *DeleteOptions, cmd *cobra.Command, pattern string) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	rec, err := s.app.Delete(s.ctx, pattern, opts.Used)
	if errors.Is(err, app.ErrNotConfirmed) {
		return s.out.Success("Nothing deleted.")
	}
	if err != nil {
		return toExitError(err)
	}
	s.out.VerboseLog("Usage history for %q is kept", rec.Text)

	if s.out.Format == "json" {
		return s.out.Success(map[string]any{"deleted": rec})
	}
	return s.out.Success("Command deleted: " + rec.Text)
}
