package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/kopeck/internal/model"
)

// createTestStorage creates a migrated storage instance in a temp directory.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func mustCreateAccount(t *testing.T, s *SQLiteStorage, name string) *model.Account {
	t.Helper()
	account := &model.Account{Name: name, Type: model.AccountTypeBank, IsActive: true}
	if err := s.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("Failed to create account %q: %v", name, err)
	}
	return account
}

func mustCreateCategory(t *testing.T, s *SQLiteStorage, kind model.CategoryKind, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Kind: kind, Name: name, Slug: slug}
	if err := s.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category %q: %v", name, err)
	}
	return category
}

func mustSave(t *testing.T, s *SQLiteStorage, date string, amount int64, body model.TransactionBody) *model.Transaction {
	t.Helper()
	day, err := model.ParseDate(date)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	txn := &model.Transaction{OccurredAt: day, Amount: amount, Body: body}
	if err := s.SaveTransaction(context.Background(), txn); err != nil {
		t.Fatalf("Failed to save transaction: %v", err)
	}
	return txn
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestSQLiteStorage_Transaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if err := tx.CreateAccount(ctx, &model.Account{Name: "Committed", Type: model.AccountTypeCash, IsActive: true}); err != nil {
		t.Fatalf("CreateAccount() in tx error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	tx, err = store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if err := tx.CreateAccount(ctx, &model.Account{Name: "Rolled back", Type: model.AccountTypeCash, IsActive: true}); err != nil {
		t.Fatalf("CreateAccount() in tx error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	accounts, err := store.ListAccounts(ctx, false)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "Committed" {
		t.Errorf("ListAccounts() = %+v, want only the committed account", accounts)
	}
}

func TestSQLiteTransaction_UnsupportedOperations(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.BeginTx(ctx); err == nil {
		t.Error("nested BeginTx() should fail")
	}
	if err := tx.Migrate(ctx); err == nil {
		t.Error("Migrate() inside a transaction should fail")
	}
	if err := tx.Close(); err == nil {
		t.Error("Close() on a transaction should fail")
	}
}

func TestSQLiteStorage_Migrations(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	store1, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if version, err := store1.SchemaVersion(ctx); err != nil || version != 0 {
		t.Fatalf("SchemaVersion() before migrating = %d, %v; want 0", version, err)
	}
	if err := store1.Migrate(ctx); err != nil {
		t.Fatalf("Initial migration failed: %v", err)
	}
	_ = store1.Close()

	// Running migrations again should not error
	store2, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store2.Close() }()

	if err := store2.Migrate(ctx); err != nil {
		t.Fatalf("Repeated migration failed: %v", err)
	}

	version, err := store2.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, ExpectedSchemaVersion)
	}

	// Verify database is functional after migrations
	mustCreateAccount(t, store2, "After migration")
}

func TestSQLiteStorage_AmountCheckConstraint(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := mustCreateAccount(t, store, "Card")
	category := mustCreateCategory(t, store, model.CategoryKindExpense, "Food", "food")

	for _, amount := range []int64{0, -100} {
		_, err := store.db.ExecContext(ctx, `
			INSERT INTO transactions (occurred_at, type, account_id, category_id, amount_cents)
			VALUES ('2026-01-05', 'expense', ?, ?, ?)`, account.ID, category.ID, amount)
		var sqliteErr sqlite3.Error
		if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
			t.Errorf("raw insert with amount %d: error = %v, want constraint violation", amount, err)
		}
	}

	txn := mustSave(t, store, "2026-01-05", 100, model.Expense{AccountID: account.ID, CategoryID: category.ID})
	_, err := store.db.ExecContext(ctx, `UPDATE transactions SET amount_cents = 0 WHERE id = ?`, txn.ID)
	if err == nil {
		t.Error("raw update to zero amount should violate the check constraint")
	}

	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE amount_cents <= 0`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d non-positive transactions", count)
	}
}

func TestSQLiteStorage_VariantShapeConstraint(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	a := mustCreateAccount(t, store, "A")
	b := mustCreateAccount(t, store, "B")

	tests := []struct {
		name  string
		query string
		args  []any
	}{
		{
			name:  "expense with transfer accounts",
			query: `INSERT INTO transactions (occurred_at, type, account_id, from_account_id, to_account_id, amount_cents) VALUES ('2026-01-01', 'expense', ?, ?, ?, 10)`,
			args:  []any{a.ID, a.ID, b.ID},
		},
		{
			name:  "transfer with primary account",
			query: `INSERT INTO transactions (occurred_at, type, account_id, from_account_id, to_account_id, amount_cents) VALUES ('2026-01-01', 'transfer', ?, ?, ?, 10)`,
			args:  []any{a.ID, a.ID, b.ID},
		},
		{
			name:  "transfer missing destination",
			query: `INSERT INTO transactions (occurred_at, type, from_account_id, amount_cents) VALUES ('2026-01-01', 'transfer', ?, 10)`,
			args:  []any{a.ID},
		},
		{
			name:  "unknown account",
			query: `INSERT INTO transactions (occurred_at, type, account_id, amount_cents) VALUES ('2026-01-01', 'income', 999, 10)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.db.ExecContext(ctx, tt.query, tt.args...); err == nil {
				t.Error("expected constraint violation")
			}
		})
	}
}

func TestWrapWriteError(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	mustCreateCategory(t, store, model.CategoryKindExpense, "Food", "food")
	err := store.CreateCategory(ctx, &model.Category{Kind: model.CategoryKindIncome, Name: "Food again", Slug: "food"})
	if !errors.Is(err, ErrConstraint) {
		t.Errorf("duplicate slug error = %v, want ErrConstraint", err)
	}

	plain := wrapWriteError("do thing", errors.New("disk I/O error"))
	if errors.Is(plain, ErrConstraint) {
		t.Error("non-constraint errors must not be tagged ErrConstraint")
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage("  "); !errors.Is(err, ErrEmptyString) {
		t.Errorf("NewSQLiteStorage(\"  \") error = %v, want ErrEmptyString", err)
	}
}
