package main

import (
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/spf13/cobra"
)

func newIssueTokenCommand(a *app) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue-token <subject>",
		Short: "Print an HS256 bearer token for AUTH_PROVIDER=jwt deployments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			token, err := middleware.NewJWTVerifier(a.cfg.JWTSecret).IssueToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
