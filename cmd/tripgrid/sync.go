package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replicate local writes with the sync server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cfg, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Detach()
			if cfg.SyncURL == "" {
				return userError("sync: sync_url is not configured")
			}

			if err := store.Start(cmd.Context()); err != nil {
				return sysError("sync: %w", err)
			}
			tbl, err := tripsTable(store)
			if err != nil {
				return err
			}
			all, err := tbl.Fetch(nil)
			if err != nil {
				return sysError("fetch trips: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced with %s: %d %s\n", cfg.SyncURL, len(all), plural(len(all), "trip", "trips"))
			return nil
		},
	}
}
