package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// fieldFlag binds a trip field to a command-line flag.
type fieldFlag struct {
	flag  string
	field string
	usage string
}

// displayFieldFlags are the fields an update writes to the store.
var displayFieldFlags = []fieldFlag{
	{flag: "name", field: types.FieldName, usage: "trip name"},
	{flag: "description", field: types.FieldDescription, usage: "description"},
	{flag: "location", field: types.FieldLocation, usage: "destination"},
	{flag: "date", field: types.FieldDate, usage: "travel date, e.g. 2026-05-01"},
	{flag: "image", field: types.FieldImage, usage: "image URL"},
}

// cardFieldFlags are only written when a trip is created.
var cardFieldFlags = []fieldFlag{
	{flag: "title", field: types.FieldTitle, usage: "card title"},
	{flag: "tooltip", field: types.FieldTooltipText, usage: "tooltip text"},
}

func bindFieldFlags(cmd *cobra.Command, ff ...[]fieldFlag) {
	for _, set := range ff {
		for _, f := range set {
			cmd.Flags().String(f.flag, "", f.usage)
		}
	}
}

type fieldValue struct {
	field string
	value string
}

// changedFields returns the field values given on the command line, in flag
// order.
func changedFields(cmd *cobra.Command, ff ...[]fieldFlag) []fieldValue {
	var out []fieldValue
	for _, set := range ff {
		for _, f := range set {
			if !cmd.Flags().Changed(f.flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(f.flag)
			out = append(out, fieldValue{field: f.field, value: v})
		}
	}
	return out
}

// editAndSave writes values into the draft of row id and saves it through
// the grid. A save that did not reach the store is a system error.
func editAndSave(g *grid.Grid, id string, values []fieldValue) (grid.Row, error) {
	for _, fv := range values {
		if err := g.SetField(id, fv.field, fv.value); err != nil {
			return grid.Row{}, sysError("set %s: %w", fv.field, err)
		}
	}
	if err := g.Save(id); err != nil {
		if errors.Is(err, grid.ErrMutationInFlight) {
			return grid.Row{}, userError("save: %w", err)
		}
		return grid.Row{}, sysError("save: %w", err)
	}
	if st, _ := g.Status(id); st == grid.Failed {
		return grid.Row{}, sysError("trip %q was not saved to the store", id)
	}
	row, _ := g.Row(id)
	return row, nil
}
