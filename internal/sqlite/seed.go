package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/tripgrid/internal/catalog"
)

// seedCatalog inserts the built-in catalog trips when the trips table is
// empty. Seeding is idempotent: it only runs when trips.jsonl held no trips
// on startup. Seeded trips are not queued for replication.
func seedCatalog(db *sql.DB, dataDir string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&count); err != nil {
		return fmt.Errorf("counting trips: %w", err)
	}
	if count > 0 {
		return nil
	}

	trips, err := catalog.Load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range trips {
		t.Version = 1
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := insertTrip(tx, t); err != nil {
			return fmt.Errorf("seeding trip %s: %w", t.TripID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	if err := persistTrips(db, dataDir); err != nil {
		return fmt.Errorf("persisting seeded trips: %w", err)
	}
	return nil
}
