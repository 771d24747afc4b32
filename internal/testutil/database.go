// Package testutil provides test helpers for packages that need a real,
// migrated store.
package testutil

import (
	"context"
	"testing"

	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/storage"
)

// User is the identity most tests scope their data to.
var User = identity.UserContext{UserID: "test-user"}

// SetupTestDB creates a migrated in-memory store and registers cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
