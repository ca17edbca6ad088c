package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/tui"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the trip grid editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, store, err := a.openGrid()
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := tui.Run(cmd.Context(), g); err != nil {
				return sysError("editor: %w", err)
			}
			return nil
		},
	}
}
