package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

const transactionColumns = `id, occurred_at, type, account_id, category_id, from_account_id, to_account_id, amount_cents, note, external_id, created_at`

// transactionRow is the flat column layout shared by all transaction types.
type transactionRow struct {
	accountID     sql.NullInt64
	categoryID    sql.NullInt64
	fromAccountID sql.NullInt64
	toAccountID   sql.NullInt64
	note          sql.NullString
	externalID    sql.NullString
	occurredAt    string
	txType        model.TransactionType
}

func flattenTransaction(txn *model.Transaction) transactionRow {
	row := transactionRow{
		occurredAt: txn.OccurredAt.Format(model.DateLayout),
		txType:     txn.Type(),
		note:       sql.NullString{String: txn.Note, Valid: txn.Note != ""},
		externalID: sql.NullString{String: txn.ExternalID, Valid: txn.ExternalID != ""},
	}

	switch b := txn.Body.(type) {
	case model.Expense:
		row.accountID = sql.NullInt64{Int64: b.AccountID, Valid: true}
		row.categoryID = sql.NullInt64{Int64: b.CategoryID, Valid: true}
	case model.Income:
		row.accountID = sql.NullInt64{Int64: b.AccountID, Valid: true}
		row.categoryID = sql.NullInt64{Int64: b.CategoryID, Valid: true}
	case model.Transfer:
		row.fromAccountID = sql.NullInt64{Int64: b.FromAccountID, Valid: true}
		row.toAccountID = sql.NullInt64{Int64: b.ToAccountID, Valid: true}
		row.categoryID = nullableID(b.CategoryID)
	}
	return row
}

// SaveTransaction inserts a new transaction and fills in its ID.
func (s *queries) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (
			occurred_at, type, account_id, category_id, from_account_id, to_account_id,
			amount_cents, note, external_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	row := flattenTransaction(txn)
	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, query,
		row.occurredAt, row.txType, row.accountID, row.categoryID, row.fromAccountID, row.toAccountID,
		txn.Amount, row.note, row.externalID, now)
	if err != nil {
		return wrapWriteError("save transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}

	txn.ID = id
	txn.CreatedAt = now
	slog.Debug("saved transaction", "id", id, "type", row.txType, "amount", txn.Amount)
	return nil
}

// UpdateTransaction rewrites every field of an existing transaction. The
// columns of the previous type are cleared. It returns common.ErrNotFound if
// the ID does not resolve.
func (s *queries) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(txn.ID, "id"); err != nil {
		return err
	}

	query := `
		UPDATE transactions SET
			occurred_at = ?, type = ?, account_id = ?, category_id = ?,
			from_account_id = ?, to_account_id = ?, amount_cents = ?, note = ?, external_id = ?
		WHERE id = ?`

	row := flattenTransaction(txn)
	result, err := s.q.ExecContext(ctx, query,
		row.occurredAt, row.txType, row.accountID, row.categoryID, row.fromAccountID, row.toAccountID,
		txn.Amount, row.note, row.externalID, txn.ID)
	if err != nil {
		return wrapWriteError("update transaction", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", txn.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a transaction. It reports false when no
// transaction has the given ID.
func (s *queries) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, nil
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, wrapWriteError("delete transaction", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// GetTransaction returns a single transaction, or common.ErrNotFound.
func (s *queries) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns transactions matching every set filter, most
// recent first. An account filter matches the account of expenses and
// income and either side of a transfer.
func (s *queries) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Start != nil {
		where = append(where, "occurred_at >= ?")
		args = append(args, filter.Start.Format(model.DateLayout))
	}
	if filter.End != nil {
		where = append(where, "occurred_at <= ?")
		args = append(args, filter.End.Format(model.DateLayout))
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.AccountID != nil {
		where = append(where, "(account_id = ? OR from_account_id = ? OR to_account_id = ?)")
		args = append(args, *filter.AccountID, *filter.AccountID, *filter.AccountID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY occurred_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// ExternalIDExists reports whether a transaction with this import identifier
// has already been stored.
func (s *queries) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return false, err
	}

	var exists bool
	err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE external_id = ?)`, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check external ID: %w", err)
	}
	return exists, nil
}

func scanTransaction(scanner rowScanner) (*model.Transaction, error) {
	var (
		row transactionRow
		txn model.Transaction
	)
	if err := scanner.Scan(
		&txn.ID, &row.occurredAt, &row.txType, &row.accountID, &row.categoryID,
		&row.fromAccountID, &row.toAccountID, &txn.Amount, &row.note, &row.externalID, &txn.CreatedAt,
	); err != nil {
		return nil, err
	}

	occurredAt, err := time.Parse(model.DateLayout, row.occurredAt)
	if err != nil {
		return nil, fmt.Errorf("transaction %d has invalid date %q: %w", txn.ID, row.occurredAt, err)
	}
	txn.OccurredAt = occurredAt
	txn.Note = row.note.String
	txn.ExternalID = row.externalID.String

	switch row.txType {
	case model.TransactionTypeExpense:
		txn.Body = model.Expense{AccountID: row.accountID.Int64, CategoryID: row.categoryID.Int64}
	case model.TransactionTypeIncome:
		txn.Body = model.Income{AccountID: row.accountID.Int64, CategoryID: row.categoryID.Int64}
	case model.TransactionTypeTransfer:
		transfer := model.Transfer{FromAccountID: row.fromAccountID.Int64, ToAccountID: row.toAccountID.Int64}
		if row.categoryID.Valid {
			id := row.categoryID.Int64
			transfer.CategoryID = &id
		}
		txn.Body = transfer
	default:
		return nil, fmt.Errorf("transaction %d has unknown type %q", txn.ID, row.txType)
	}
	return &txn, nil
}
