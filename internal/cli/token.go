package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	Operator string
	Scopes   string
}

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	opts := &TokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator API token",
		Long: `Sign a bearer token for the operator HTTP API with AUTH_JWT_SECRET.

Example:
  ticketbot token --operator alice --scopes tickets:read,panel:write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			scopes, err := auth.ParseScopes(opts.Scopes)
			if err != nil {
				return err
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(opts.Operator, scopes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "operator name recorded in the token (required)")
	cmd.Flags().StringVar(&opts.Scopes, "scopes", string(auth.ScopeRead), "comma separated scopes")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}
