package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdvault/internal/app"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Import the flat-file stores into SQLite",
		Long: `Import the commands and usage history kept in the flat files
(catalog_file and usage_file) into the SQLite databases.

Counts of rows with the same command are summed. Commands already in a
database are left alone, so running migrate twice is harmless. Each
database import is all-or-nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.cancel()

	res, err := app.Migrate(e.ctx, e.cfg, e.fs, e.logger)
	if err != nil {
		return toExitError(err)
	}

	if e.out.Format == "json" {
		return e.out.Success(res)
	}
	return e.out.Success(fmt.Sprintf("Read %d rows; added %d commands to %s and %d to %s.",
		res.Read, res.CatalogAdded, res.Database, res.UsageAdded, res.UsageDatabase))
}
