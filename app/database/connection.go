package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewConnection opens the sqlite database and applies the pragmas the
// pipeline relies on. WAL keeps reconciliation writes from blocking the
// HTTP read paths; busy_timeout covers overlapping bulk and manual syncs.
func NewConnection(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite allows a single writer; serializing writes through one
	// connection avoids SQLITE_BUSY churn under the worker pool.
	db.SetMaxOpenConns(1)

	return &DB{DB: db}, nil
}
