// Package sqlite provides the fallback document store, used where the
// JSON file backend is unavailable. The whole document is held as one
// serialized row.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite database connection.
func Open(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 3000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &DB{db}, nil
}
