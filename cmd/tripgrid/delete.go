package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trip after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			g, store, err := a.openGrid()
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := g.RequestDelete(id); err != nil {
				if errors.Is(err, grid.ErrRowNotFound) {
					return userError("trip %q not found", id)
				}
				return sysError("delete: %w", err)
			}

			out := cmd.OutOrStdout()
			if !yes {
				row, _ := g.Row(id)
				fmt.Fprintf(out, "Delete %q (%s)? [y/N] ", row.Name, id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					g.CancelDelete()
					fmt.Fprintln(out, "Kept", id)
					return nil
				}
			}

			if err := g.ConfirmDelete(); err != nil {
				return userError("delete: %w", err)
			}
			// The grid drops the row even when the store refused the delete.
			tbl, err := tripsTable(store)
			if err != nil {
				return err
			}
			if _, err := tbl.Get(id); !errors.Is(err, types.ErrNotFound) {
				return sysError("trip %q was not deleted from the store", id)
			}
			fmt.Fprintln(out, "Deleted", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
