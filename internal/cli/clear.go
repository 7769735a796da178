package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdvault/internal/app"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Remove every saved command and all usage history",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	err = s.app.Clear(s.ctx, opts.Yes)
	if errors.Is(err, app.ErrNotConfirmed) {
		return s.out.Success("Nothing cleared.")
	}
	if err != nil {
		return toExitError(err)
	}
	return s.out.Success("All commands cleared.")
}
