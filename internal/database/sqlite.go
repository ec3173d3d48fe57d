package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// sqliteParams enables foreign keys on every connection and stores
// time.Time values in a lexically sortable form.
const sqliteParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// MemoryPath names a private in-memory database.
const MemoryPath = ":memory:"

// OpenSQLite opens a SQLite database at path. An in-memory database lives
// inside a single connection, so the pool is pinned to one connection that
// is never recycled.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?"+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
