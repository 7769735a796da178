package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [pattern]",
		Short: "Pick a saved command and run it",
		Long: `Offer every saved command matching pattern, most used first, and run
the one picked.

The pattern is a regular expression; one that does not compile is matched
as plain text. Without a pattern every command is offered. {} placeholders
are asked for one by one, $VARIABLES come from the environment. Known git
workflows ask for branches instead.

Example:
  cmdvault get docker
  cmdvault get '^git (checkout|merge)'`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd, strings.Join(args, " "))
		},
	}
}

func runGet(opts *RootOptions, cmd *cobra.Command, pattern string) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return toExitError(s.app.Get(s.ctx, pattern))
}
