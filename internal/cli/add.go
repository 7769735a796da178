package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdvault/internal/record"
	"github.com/roach88/cmdvault/internal/store"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Execute bool
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add [command...]",
		Short: "Save a command",
		Long: `Save a command for later. Without arguments the command is asked for.

Use {} for values to fill in at run time and $NAME for environment
variables. Saving a command twice is reported and ignored.

Example:
  cmdvault add 'docker logs -f {}'
  cmdvault add --execute make test`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&opts.Execute, "execute", "e", false, "run the command after saving it")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command, text string) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	saved, err := s.app.Add(s.ctx, text, opts.Execute)
	if store.IsDuplicate(err) {
		s.out.Warn("command already saved: %q", saved)
		return nil
	}
	if err != nil {
		return toExitError(err)
	}
	if (record.Record{Text: saved}).HasPlaceholders() {
		s.out.VerboseLog("Values for {} in %q are asked for when it runs", saved)
	}

	if s.out.Format == "json" {
		return s.out.Success(map[string]any{"added": saved, "executed": opts.Execute})
	}
	return s.out.Success("Command added: " + saved)
}
