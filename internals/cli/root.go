// file: internals/cli/root.go
package cli

import (
	"github.com/spf13/cobra"

	"dancestudio_backend/internals/configs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the studioctl admin command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "studioctl",
		Short: "Dance studio backend admin tool",
		Long:  "Schema migrations, schema capability probing, demo data and development tokens for the dance studio backend.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configs.Conf == nil {
				configs.LoadEnv()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewProbeCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
