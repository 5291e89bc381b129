package cli

import (
	"github.com/graviox/roundcube-carddav/internal/buildinfo"
	"github.com/graviox/roundcube-carddav/internal/client/config"
	"github.com/spf13/cobra"
)

func (a *App) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carddavctl",
		Short: "Manage CardDAV servers mirrored into the webmail address book",
		Long: `carddavctl talks to the CardDAV sync backend. It registers CardDAV
servers for the logged-in user, lists and deletes them, and triggers
synchronization of their address books.

Quick start:
  carddavctl login --token <jwt>
  carddavctl server add --label Work --url https://dav.example.com/ --username me
  carddavctl sync`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.BindFlags(cmd.PersistentFlags(), a.config)

	cmd.AddCommand(a.loginCommand())
	cmd.AddCommand(a.logoutCommand())
	cmd.AddCommand(a.serverCommand())
	cmd.AddCommand(a.syncCommand())
	cmd.AddCommand(a.sourcesCommand())
	cmd.AddCommand(a.availableCommand())
	cmd.AddCommand(a.healthCommand())
	cmd.AddCommand(versionCommand())

	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
