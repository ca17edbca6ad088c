package types

import "time"

// Trip is a planned trip as held by the trip store. Every display field is
// optional; the empty string stands for an absent value.
type Trip struct {
	TripID      string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Date        string    `json:"date,omitempty"`
	Image       string    `json:"image,omitempty"`
	Title       string    `json:"title,omitempty"`
	TooltipText string    `json:"tooltipText,omitempty"`
	Version     int64     `json:"_version"`  // Concurrency token, bumped on every write.
	CreatedAt   time.Time `json:"createdAt"` // Set by the store on creation.
	UpdatedAt   time.Time `json:"updatedAt"` // Set by the store on every write.
}

// CopyOf returns a copy of t with mutate applied to it. The receiver is left
// untouched, so a value fetched from the store can be edited without
// aliasing the store's copy.
func (t *Trip) CopyOf(mutate func(updated *Trip)) *Trip {
	cp := *t
	if mutate != nil {
		mutate(&cp)
	}
	return &cp
}

// Trip field names, as used by the grid columns and by Fetch filters.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldDate        = "date"
	FieldImage       = "image"
	FieldTitle       = "title"
	FieldTooltipText = "tooltipText"
)

// EditableFields lists the trip fields a user may edit, in column order.
var EditableFields = []string{
	FieldName,
	FieldDescription,
	FieldLocation,
	FieldDate,
	FieldImage,
	FieldTitle,
	FieldTooltipText,
}

// Field returns the value of the named display field and whether the name is
// known.
func (t *Trip) Field(name string) (string, bool) {
	switch name {
	case FieldID:
		return t.TripID, true
	case FieldName:
		return t.Name, true
	case FieldDescription:
		return t.Description, true
	case FieldLocation:
		return t.Location, true
	case FieldDate:
		return t.Date, true
	case FieldImage:
		return t.Image, true
	case FieldTitle:
		return t.Title, true
	case FieldTooltipText:
		return t.TooltipText, true
	default:
		return "", false
	}
}

// SetField assigns the named display field. The ID is not settable here.
// Returns ErrInvalidField for unknown names.
func (t *Trip) SetField(name, value string) error {
	switch name {
	case FieldName:
		t.Name = value
	case FieldDescription:
		t.Description = value
	case FieldLocation:
		t.Location = value
	case FieldDate:
		t.Date = value
	case FieldImage:
		t.Image = value
	case FieldTitle:
		t.Title = value
	case FieldTooltipText:
		t.TooltipText = value
	default:
		return ErrInvalidField
	}
	return nil
}
