// Package test provides a sqlite-backed Store for integration tests. Each
// testing store gets its own database file under t.TempDir, so tests stay
// isolated and parallel-safe.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/clinisense/clinisense/internal/profile"
	"github.com/clinisense/clinisense/store"
	"github.com/clinisense/clinisense/store/db"
)

// NewTestingStore creates a migrated Store backed by a throwaway sqlite
// database. The database is removed with the test's temp directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "clinisense_test.db"),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close test store: %v", err)
		}
	})
	return ts
}
