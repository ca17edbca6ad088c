package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tripgrid storage",
		Long:  "Create the configuration and data directories, then initialize the trip store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The config directory and config.yaml exist once configure ran.
			configDir, err := paths.ResolveConfigDir(a.configDir)
			if err != nil {
				return sysError("resolve config dir: %w", err)
			}
			store, cfg, err := a.openStore(false)
			if err != nil {
				return err
			}
			if err := store.Detach(); err != nil {
				return sysError("finalize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "tripgrid initialized")
			fmt.Fprintln(out, "  config:", paths.ConfigFile(configDir))
			fmt.Fprintln(out, "  data:  ", cfg.DataDir)
			return nil
		},
	}
}
