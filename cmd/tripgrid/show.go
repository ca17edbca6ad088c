package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a trip with full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.openStore(false)
			if err != nil {
				return err
			}
			defer store.Detach()

			trip, err := getTrip(store, args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), trip)
			}
			printTrip(cmd.OutOrStdout(), trip)
			return nil
		},
	}
}

// getTrip reads one trip; a missing trip is a user error.
func getTrip(store types.DataStore, id string) (*types.Trip, error) {
	tbl, err := tripsTable(store)
	if err != nil {
		return nil, err
	}
	entity, err := tbl.Get(id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, userError("trip %q not found", id)
		}
		return nil, sysError("get trip: %w", err)
	}
	trip, ok := entity.(*types.Trip)
	if !ok {
		return nil, sysError("entity %q is not a trip", id)
	}
	return trip, nil
}
