package grid

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// TripList is the trip list a grid is seeded from. Revision changes exactly
// when the content changes.
type TripList struct {
	Revision uint64
	Trips    []*types.Trip
}

// Source supplies the current trip list.
type Source interface {
	Trips() (TripList, error)
}

// StoreSource reads the trip list from a trips table.
type StoreSource struct {
	Table  types.Table
	Filter types.Filter
}

// Trips fetches the trips matching Filter.
func (s StoreSource) Trips() (TripList, error) {
	all, err := s.Table.Fetch(s.Filter)
	if err != nil {
		return TripList{}, fmt.Errorf("fetching trips: %w", err)
	}
	trips := make([]*types.Trip, 0, len(all))
	for _, v := range all {
		t, ok := v.(*types.Trip)
		if !ok {
			return TripList{}, fmt.Errorf("fetching trips: unexpected %T", v)
		}
		trips = append(trips, t)
	}
	return NewTripList(trips)
}

// revisionKey is the part of a trip the revision covers. Timestamps are left
// out; every write bumps Version anyway.
type revisionKey struct {
	ID          string
	Name        string
	Description string
	Location    string
	Date        string
	Image       string
	Title       string
	TooltipText string
	Version     int64
}

// NewTripList wraps trips with their content revision.
func NewTripList(trips []*types.Trip) (TripList, error) {
	keys := make([]revisionKey, 0, len(trips))
	for _, t := range trips {
		keys = append(keys, revisionKey{
			ID:          t.TripID,
			Name:        t.Name,
			Description: t.Description,
			Location:    t.Location,
			Date:        t.Date,
			Image:       t.Image,
			Title:       t.Title,
			TooltipText: t.TooltipText,
			Version:     t.Version,
		})
	}
	rev, err := hashstructure.Hash(keys, hashstructure.FormatV2, nil)
	if err != nil {
		return TripList{}, fmt.Errorf("hashing trip list: %w", err)
	}
	return TripList{Revision: rev, Trips: trips}, nil
}
