package database_test

import (
	"path/filepath"
	"testing"

	"showtrackr/internal/database"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := database.Open(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"watchlist_items", "sessions"} {
		var name string
		err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestOpenCreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := database.Open(database.Config{DatabasePath: path})
	if err != nil {
		t.Fatalf("failed to open database in missing directory: %v", err)
	}
	db.Close()
}
