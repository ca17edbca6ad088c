package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
)

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update trip fields",
		Long: `Update edits the name, description, location, date or image of a trip.

Example:
  tripgrid update 0192f0c1-7a4e-7cc0-9d1e-3b5a4c2d1e0f --date 2026-06-10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			values := changedFields(cmd, displayFieldFlags)
			if len(values) == 0 {
				return userError("update: at least one of --name, --description, --location, --date or --image must be provided")
			}

			g, store, err := a.openGrid()
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := g.Edit(id); err != nil {
				if errors.Is(err, grid.ErrRowNotFound) {
					return userError("trip %q not found", id)
				}
				return sysError("edit: %w", err)
			}
			if _, err := editAndSave(g, id, values); err != nil {
				return err
			}

			if a.jsonOut {
				trip, err := getTrip(store, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), trip)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
			return nil
		},
	}
	bindFieldFlags(cmd, displayFieldFlags)
	return cmd
}
