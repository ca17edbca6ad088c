package grid

import (
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Row is one line of the grid.
type Row struct {
	ID          string
	Name        string
	Description string
	Location    string
	Date        string
	Image       string
	Title       string
	TooltipText string

	// IsNew is true from CreateDraftRow until the row is first committed.
	IsNew bool

	// Version is the store version the row was seeded or last committed at.
	Version int64
}

// RowFromTrip maps a trip 1:1 onto a row.
func RowFromTrip(t *types.Trip) Row {
	return Row{
		ID:          t.TripID,
		Name:        t.Name,
		Description: t.Description,
		Location:    t.Location,
		Date:        t.Date,
		Image:       t.Image,
		Title:       t.Title,
		TooltipText: t.TooltipText,
		Version:     t.Version,
	}
}

// Trip builds a new trip from every field of the row, under the row's ID.
func (r Row) Trip() *types.Trip {
	return &types.Trip{
		TripID:      r.ID,
		Name:        r.Name,
		Description: r.Description,
		Location:    r.Location,
		Date:        r.Date,
		Image:       r.Image,
		Title:       r.Title,
		TooltipText: r.TooltipText,
	}
}

// Field returns the named field's value.
func (r Row) Field(name string) (string, bool) {
	return r.Trip().Field(name)
}

// SetField assigns an editable field. Returns ErrUnknownField for anything
// not in types.EditableFields.
func (r *Row) SetField(name, value string) error {
	t := r.Trip()
	if err := t.SetField(name, value); err != nil {
		return ErrUnknownField
	}
	r.Name = t.Name
	r.Description = t.Description
	r.Location = t.Location
	r.Date = t.Date
	r.Image = t.Image
	r.Title = t.Title
	r.TooltipText = t.TooltipText
	return nil
}

// applyDisplayFields copies the fields an update persists onto a stored
// trip. Title and tooltip text stay local.
func (r Row) applyDisplayFields(t *types.Trip) {
	t.Name = r.Name
	t.Description = r.Description
	t.Location = r.Location
	t.Date = r.Date
	t.Image = r.Image
}
