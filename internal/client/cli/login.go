package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graviox/roundcube-carddav/internal/client/tokenstore"
	"github.com/graviox/roundcube-carddav/internal/server/auth"
	"github.com/spf13/cobra"
)

func (a *App) loginCommand() *cobra.Command {
	var (
		token    string
		owner    string
		secret   string
		validity time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for the endpoint",
		Long: `Store an access token for the configured endpoint in the OS keychain.

Pass a token issued by the webmail host with --token, or, for development,
mint one locally with --owner and --secret (the backend's JWT secret).
Without flags the token is prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)

			switch {
			case token != "":
			case owner != "":
				if secret == "" {
					return errors.New("--secret is required with --owner")
				}
				t, err := auth.GenerateToken(owner, []byte(secret), validity)
				if err != nil {
					return fmt.Errorf("mint token: %w", err)
				}
				token = t
			default:
				t, err := promptSecret(cmd.OutOrStdout(), "Enter access token: ")
				if err != nil {
					return err
				}
				token = t
			}

			if token == "" {
				return errors.New("token cannot be empty")
			}

			if err := a.tokens.SetToken(a.config.ServerEndpointAddr, token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved token for %s\n", a.config.ServerEndpointAddr)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (optional, overrides prompt)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner id to mint a development token for")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT secret used with --owner")
	cmd.Flags().DurationVar(&validity, "validity", 24*time.Hour, "lifetime of a minted token")

	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.tokens.DeleteToken(a.config.ServerEndpointAddr)
			if err != nil && !errors.Is(err, tokenstore.ErrTokenNotFound) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", a.config.ServerEndpointAddr)
			return nil
		},
	}
}
