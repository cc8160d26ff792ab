package store

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// NewTestStore creates a Store backed by an in-memory database. Only
// intended for use in tests.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("enabling foreign keys: %v", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		t.Fatalf("running migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return &Store{db}
}
