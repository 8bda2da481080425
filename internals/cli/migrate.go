// file: internals/cli/migrate.go
package cli

import (
	"database/sql"

	"github.com/spf13/cobra"

	database "dancestudio_backend/internals/databases"
)

// NewMigrateCommand groups the goose migration subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect SQL migrations",
	}

	cmd.AddCommand(migrateSub("up", "Apply all pending migrations", database.MigrateUp))
	cmd.AddCommand(migrateSub("down", "Roll back the latest migration", database.MigrateDown))
	cmd.AddCommand(migrateSub("status", "Print migration status", database.MigrateStatus))

	return cmd
}

func migrateSub(use, short string, run func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.OpenSQL()
			if err != nil {
				return err
			}
			defer db.Close()
			return run(db)
		},
	}
}
