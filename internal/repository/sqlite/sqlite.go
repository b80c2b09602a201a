// Package sqlite backs the tag index with a SQLite database. The index is a
// derived projection of the profile records and can be rebuilt from a full
// scan at any time.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and hands out repositories.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and limits the pool to a single writer connection.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all unapplied schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return runMigrations(ctx, db.SqlDB)
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Tags returns the tag index repository.
func (db *DB) Tags() *TagIndex {
	return &TagIndex{db: db.SqlDB}
}
