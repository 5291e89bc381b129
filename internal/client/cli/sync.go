package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var errSyncIncomplete = errors.New("one or more servers failed to synchronize")

func (a *App) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [server-id]",
		Short: "Synchronize one server, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var serverID string
			if len(args) == 1 {
				serverID = args[0]
			}

			return a.withAPI(cmd.Context(), true, func(ctx context.Context, api API) error {
				resp, err := api.Sync(ctx, serverID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "SERVER\tSOURCE\tRESULT")
				for _, r := range resp.Results {
					result := "ok"
					if !r.Succeeded {
						result = r.Error
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.ServerID, r.SourceID, result)
				}
				w.Flush()
				fmt.Fprintln(out, resp.Message)

				if !resp.AllSucceeded {
					return errSyncIncomplete
				}
				return nil
			})
		},
	}
}
