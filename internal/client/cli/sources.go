package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the address-book sources exposed to the webmail host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				sources, err := api.ListSources(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(sources) == 0 {
					fmt.Fprintln(out, "No sources.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "SOURCE\tNAME\tREAD-ONLY\tGROUPS")
				for _, s := range sources {
					fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", s.SourceID, s.DisplayName, s.ReadOnly, s.SupportsGroups)
				}
				w.Flush()
				return nil
			})
		},
	}
}

func (a *App) availableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "Report whether any CardDAV server is registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				ok, err := api.Available(ctx)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintln(cmd.OutOrStdout(), "yes")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no")
				}
				return nil
			})
		},
	}
}

func (a *App) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAPI(cmd.Context(), false, func(ctx context.Context, api API) error {
				if err := api.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is serving\n", a.config.ServerEndpointAddr)
				return nil
			})
		},
	}
}
