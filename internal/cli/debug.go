package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDebugCommand creates the debug command.
func NewDebugCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "debug",
		Short:         "Show how many commands are stored, grouped by usage",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebug(rootOpts, cmd)
		},
	}
}

func runDebug(opts *RootOptions, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	summary, err := s.app.Debug(s.ctx)
	if err != nil {
		return toExitError(err)
	}

	if s.out.Format == "json" {
		return s.out.Success(map[string]any{
			"dir":     s.cfg.Dir,
			"backend": s.cfg.Backend,
			"summary": summary,
		})
	}
	fmt.Fprintf(s.out.Writer, "Settings directory: %s (%s)\n", s.cfg.Dir, s.cfg.Backend)
	fmt.Fprint(s.out.Writer, summary)
	return nil
}
