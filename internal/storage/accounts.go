package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/model"
)

const accountColumns = `id, name, type, is_active, created_at`

// CreateAccount inserts a new account and fills in its ID.
func (s *queries) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (name, type, is_active, created_at)
		VALUES (?, ?, ?, ?)`

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, query, account.Name, account.Type, account.IsActive, now)
	if err != nil {
		return wrapWriteError("create account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}

	account.ID = id
	account.CreatedAt = now
	slog.Debug("created account", "id", id, "name", account.Name, "type", account.Type)
	return nil
}

// GetAccount returns the account with the given ID, or common.ErrNotFound.
func (s *queries) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccountByName returns the oldest account with exactly this name, or
// common.ErrNotFound.
func (s *queries) GetAccountByName(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE name = ? ORDER BY id LIMIT 1`
	account, err := scanAccount(s.q.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// ListAccounts returns accounts newest first.
func (s *queries) ListAccounts(ctx context.Context, activeOnly bool) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "count", len(accounts), "active_only", activeOnly)
	return accounts, nil
}

// SetAccountActive flips the active flag. It reports false when no account
// has the given ID.
func (s *queries) SetAccountActive(ctx context.Context, id int64, active bool) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, nil
	}

	result, err := s.q.ExecContext(ctx, `UPDATE accounts SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return false, wrapWriteError("update account", err)
	}

	// SQLite counts matched rows, so an unchanged flag still reports 1.
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var account model.Account
	if err := row.Scan(&account.ID, &account.Name, &account.Type, &account.IsActive, &account.CreatedAt); err != nil {
		return nil, err
	}
	return &account, nil
}
