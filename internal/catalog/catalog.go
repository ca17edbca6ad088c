// Package catalog holds the built-in list of planned trips shown by the list
// view and used to seed an empty data store.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

//go:embed trips.json
var tripsJSON []byte

// Load returns a fresh copy of the catalog trips on every call, so callers
// may modify the result.
func Load() ([]*types.Trip, error) {
	var trips []*types.Trip
	if err := json.Unmarshal(tripsJSON, &trips); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return trips, nil
}
