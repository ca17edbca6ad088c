package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// ago renders a timestamp relative to now, or "-" when unset.
func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// printTrips renders trips as a bordered table.
func printTrips(w io.Writer, trips []*types.Trip) {
	if len(trips) == 0 {
		fmt.Fprintln(w, "No trips")
		return
	}
	rows := make([][]string, 0, len(trips))
	for _, tr := range trips {
		rows = append(rows, []string{tr.TripID, tr.Name, tr.Location, tr.Date, ago(tr.UpdatedAt)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "LOCATION", "DATE", "UPDATED").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%s %s\n", humanize.Comma(int64(len(trips))), plural(len(trips), "trip", "trips"))
}

// printTrip renders one trip as labelled lines.
func printTrip(w io.Writer, tr *types.Trip) {
	fmt.Fprintf(w, "ID:          %s\n", tr.TripID)
	fmt.Fprintf(w, "Name:        %s\n", tr.Name)
	fmt.Fprintf(w, "Location:    %s\n", tr.Location)
	fmt.Fprintf(w, "Date:        %s\n", tr.Date)
	fmt.Fprintf(w, "Description: %s\n", tr.Description)
	if tr.Title != "" {
		fmt.Fprintf(w, "Title:       %s\n", tr.Title)
	}
	if tr.TooltipText != "" {
		fmt.Fprintf(w, "Tooltip:     %s\n", tr.TooltipText)
	}
	if tr.Image != "" {
		fmt.Fprintf(w, "Image:       %s\n", tr.Image)
	}
	fmt.Fprintf(w, "Version:     %d\n", tr.Version)
	fmt.Fprintf(w, "Created:     %s\n", ago(tr.CreatedAt))
	fmt.Fprintf(w, "Updated:     %s\n", ago(tr.UpdatedAt))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// asTrips converts Fetch results.
func asTrips(entities []any) []*types.Trip {
	out := make([]*types.Trip, 0, len(entities))
	for _, e := range entities {
		if tr, ok := e.(*types.Trip); ok {
			out = append(out, tr)
		}
	}
	return out
}
