// Package testutil provides shared test helpers: migrated throwaway stores
// and a fluent builder for seeding accounts and categories.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/kopeck/internal/service"
	"github.com/Veraticus/kopeck/internal/storage"
)

// NewStore creates a migrated SQLite store in a temporary directory. It is
// closed automatically when the test ends.
func NewStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "kopeck.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewMemoryStore is NewStore backed by an in-memory database.
func NewMemoryStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// WithTransaction executes fn within a database transaction that is always
// rolled back afterwards.
func WithTransaction(ctx context.Context, store service.Storage, fn func(tx service.Transaction) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
