package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/catalog"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var (
		fromCatalog bool
		query       string
		location    string
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List planned trips",
		Long: `List prints the trips in the store ordered by date.

Example:
  tripgrid list
  tripgrid list --location France
  tripgrid list --query temple --limit 5
  tripgrid list --catalog --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var trips []*types.Trip
			if fromCatalog {
				var err error
				if trips, err = catalog.Load(); err != nil {
					return sysError("load catalog: %w", err)
				}
			} else {
				store, _, err := a.openStore(false)
				if err != nil {
					return err
				}
				defer store.Detach()
				tbl, err := tripsTable(store)
				if err != nil {
					return err
				}

				filter := types.Filter{}
				if query != "" {
					filter[types.FilterQuery] = query
				}
				if location != "" {
					filter[types.FieldLocation] = location
				}
				if limit > 0 {
					filter[types.FilterLimit] = limit
				}
				entities, err := tbl.Fetch(filter)
				if err != nil {
					return sysError("fetch trips: %w", err)
				}
				trips = asTrips(entities)
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), trips)
			}
			printTrips(cmd.OutOrStdout(), trips)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromCatalog, "catalog", false, "list the built-in trip catalog instead of the store")
	cmd.Flags().StringVar(&query, "query", "", "substring match on name, description and location")
	cmd.Flags().StringVar(&location, "location", "", "exact location match")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of trips")
	return cmd
}
