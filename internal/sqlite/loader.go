package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Order matters for the outbox: records load in file order, which is
// queue order.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{tripsJSONL, "trips", []string{"trip_id", "name", "description", "location", "date", "image", "title", "tooltip_text", "version", "created_at", "updated_at"}},
	{outboxJSONL, "outbox", []string{"mutation_id", "operation", "trip_id", "payload", "created_at"}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the corresponding SQLite table. Loading is transactional: all succeed
// or the database remains empty. Malformed lines and records that violate
// constraints are skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only
// columns listed in the mapping are extracted; missing text columns become
// empty strings so NOT NULL constraints hold for records written by older
// versions.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		// The first column is the primary key; records without one are
		// unusable.
		if key, _ := obj[columns[0]].(string); key == "" {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok || val == nil {
				args[i] = defaultColumnValue(col)
				continue
			}
			// Nested JSON (outbox payloads) is stored as text.
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			case float64:
				args[i] = int64(v)
			default:
				args[i] = val
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			// Skip records that violate constraints.
			continue
		}
	}

	return nil
}

// defaultColumnValue is used for columns absent from a JSONL record.
func defaultColumnValue(col string) any {
	switch col {
	case "payload":
		return nil
	case "version":
		return int64(1)
	default:
		return ""
	}
}
