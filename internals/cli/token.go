// file: internals/cli/token.go
package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dancestudio_backend/internals/configs"
	authMiddleware "dancestudio_backend/internals/middlewares/auth"
)

type tokenOptions struct {
	Secret string
	TTL    time.Duration
}

// NewTokenCommand mints an HS256 bearer token for local testing.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:          "token <user-id>",
		Short:        "Mint a development bearer token",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			secret := opts.Secret
			if secret == "" {
				secret = configs.GetEnv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET")
			}
			tok, err := authMiddleware.SignToken(secret, userID, opts.TTL)
			if err != nil {
				return err
			}
			if rootOpts.Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "user=%s expires_in=%s\n", userID, opts.TTL)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Secret, "secret", "", "HMAC secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
