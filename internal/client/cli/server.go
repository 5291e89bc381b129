package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/graviox/roundcube-carddav/internal/rpc"
	"github.com/spf13/cobra"
)

func (a *App) serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage registered CardDAV servers",
	}

	cmd.AddCommand(a.serverAddCommand())
	cmd.AddCommand(a.serverListCommand())
	cmd.AddCommand(a.serverDeleteCommand())

	return cmd
}

func (a *App) serverAddCommand() *cobra.Command {
	var label, url, username, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a CardDAV server",
		Long: `Register a CardDAV server. The backend checks that it can log in with
the given credentials before saving, then runs a first synchronization.

Example:
  carddavctl server add --label Work --url https://dav.example.com/ --username me`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(password) == "" {
				pw, err := promptSecret(cmd.OutOrStdout(), "Enter CardDAV password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				resp, err := api.RegisterServer(ctx, label, url, username, password)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, resp.Message)
				fmt.Fprintf(out, "ID: %s\n", resp.Server.ID)
				if resp.Initial.Succeeded {
					fmt.Fprintln(out, "Initial sync: ok")
				} else {
					fmt.Fprintf(out, "Initial sync: %s\n", resp.Initial.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display name of the server")
	cmd.Flags().StringVar(&url, "url", "", "CardDAV URL")
	cmd.Flags().StringVar(&username, "username", "", "CardDAV username")
	cmd.Flags().StringVar(&password, "password", "", "CardDAV password (optional, overrides prompt)")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *App) serverListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				servers, err := api.ListServers(ctx)
				if err != nil {
					return err
				}
				printServers(cmd.OutOrStdout(), servers)
				return nil
			})
		},
	}
}

func (a *App) serverDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <server-id>",
		Short: "Delete a server and its mirrored contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				resp, err := api.DeleteServer(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				if resp.CleanupFailed {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning: mirrored contacts of this server could not be removed.")
				}
				printServers(cmd.OutOrStdout(), resp.Servers)
				return nil
			})
		},
	}
}

func printServers(out io.Writer, servers []rpc.ServerInfo) {
	if len(servers) == 0 {
		fmt.Fprintln(out, "No servers registered.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tURL\tUSERNAME\tPASSWORD")
	fmt.Fprintln(w, "--\t-----\t---\t--------\t--------")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Label, s.URL, s.Username, s.Password)
	}
	w.Flush()
}
