// Package sqlite implements the SQLite backend for the tripgrid data store.
// SQLite is the query engine; JSONL files in the data directory are the
// source of truth and are reloaded into a fresh database on every Attach.
package sqlite

// Schema DDL for all tables.
const (
	createTrips = `CREATE TABLE trips (
    trip_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    tooltip_text TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createOutbox = `CREATE TABLE outbox (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    mutation_id TEXT NOT NULL UNIQUE,
    operation TEXT NOT NULL,
    trip_id TEXT NOT NULL,
    payload TEXT,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxTripsLocation = `CREATE INDEX idx_trips_location ON trips(location);`
	idxTripsDate     = `CREATE INDEX idx_trips_date ON trips(date);`
	idxOutboxTrip    = `CREATE INDEX idx_outbox_trip ON outbox(trip_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTrips,
	createOutbox,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTripsLocation,
	idxTripsDate,
	idxOutboxTrip,
}

// JSONL file names in the data directory.
const (
	tripsJSONL  = "trips.jsonl"
	outboxJSONL = "outbox.jsonl"
)

// jsonlFiles lists every JSONL file the backend owns.
var jsonlFiles = []string{
	tripsJSONL,
	outboxJSONL,
}

// tripColumns is the column list shared by every trips SELECT.
const tripColumns = "trip_id, name, description, location, date, image, title, tooltip_text, version, created_at, updated_at"
