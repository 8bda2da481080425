// file: internals/cli/seed.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/seeds"
)

// NewSeedCommand inserts demo studios (members, compensations, programs and
// lessons) into the configured database.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Insert demo studio data",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := database.ConnectDB()
			defer database.Close(db)

			res, err := seeds.RunAllSeeds(cmd.Context(), db, file)
			if err != nil {
				return err
			}
			for _, id := range res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "created studio %s\n", id)
			}
			if rootOpts.Verbose {
				for _, slug := range res.Skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped existing studio %s\n", slug)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON seed file (defaults to the bundled demo studio)")
	return cmd
}
