// Package testing provides testing utilities and helpers for the oddlot project.
package testing

import (
	"os"
	"testing"

	"github.com/linyuchen/oddlot/internal/database"
	_ "modernc.org/sqlite"
)

// NewTestDB creates a temporary-file SQLite database for testing with the
// tracker schema applied. Returns the database instance and a cleanup
// function that closes the connection and removes the file. The cleanup
// function is idempotent and safe to call multiple times.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	// Each test gets its own temporary file so tests stay isolated.
	tmpFile, err := os.CreateTemp("", "test_tracker_*.db")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path: tmpPath,
		Name: "tracker",
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
		if err := os.Remove(tmpPath); err != nil {
			t.Logf("Warning: Failed to remove temporary database file %s: %v", tmpPath, err)
		}
	}
}

// MustExec executes SQL against the test database and fails the test on error.
func MustExec(t *testing.T, db *database.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Conn().Exec(query, args...); err != nil {
		t.Fatalf("Failed to execute %q: %v", query, err)
	}
}
