package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [pattern]",
		Short: "List matching commands without running them",
		Long: `List the commands get would offer for pattern, in the same order,
with their usage counts.

Example:
  cmdvault search git
  cmdvault search --format json kubectl`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, cmd, strings.Join(args, " "))
		},
	}
}

func runSearch(opts *RootOptions, cmd *cobra.Command, pattern string) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	records, err := s.app.Search(s.ctx, pattern)
	if err != nil {
		return toExitError(err)
	}

	if s.out.Format == "json" {
		return s.out.Success(records)
	}
	for _, r := range records {
		fmt.Fprintf(s.out.Writer, "%5d  %s\n", r.UsageCount, r.Text)
	}
	return nil
}
