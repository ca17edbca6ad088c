package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a planned trip",
		Long: `Add creates a trip from the given fields. Every field is optional.

Example:
  tripgrid add --name Kyoto --location Japan --date 2026-04-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, store, err := a.openGrid()
			if err != nil {
				return err
			}
			defer store.Detach()

			id := g.CreateDraftRow()
			if _, err := editAndSave(g, id, changedFields(cmd, displayFieldFlags, cardFieldFlags)); err != nil {
				return err
			}

			if a.jsonOut {
				trip, err := getTrip(store, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), trip)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
			return nil
		},
	}
	bindFieldFlags(cmd, displayFieldFlags, cardFieldFlags)
	return cmd
}
