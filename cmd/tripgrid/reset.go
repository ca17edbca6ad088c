package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
)

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the local cache and resynchronize",
		Long: `Reset drops every local trip and every write not yet replicated, then
restarts synchronization. With a sync_url the trips are pulled back from
the sync server; without one the store is left empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, store, err := a.openGrid()
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := g.Reset(cmd.Context()); err != nil {
				if errors.Is(err, grid.ErrEditInProgress) {
					return userError("reset: %w", err)
				}
				return sysError("reset: %w", err)
			}
			n := g.Len()
			fmt.Fprintf(cmd.OutOrStdout(), "Reset: %d %s\n", n, plural(n, "trip", "trips"))
			return nil
		},
	}
}
