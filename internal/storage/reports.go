package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
)

// AccountBalances derives the balance of every active account from its
// transactions, ordered by account name. Accounts without transactions
// report zero.
func (s *queries) AccountBalances(ctx context.Context) ([]model.AccountBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT a.id, a.name,
			COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
				WHERE t.type = 'income' AND t.account_id = a.id), 0)
			- COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
				WHERE t.type = 'expense' AND t.account_id = a.id), 0)
			- COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
				WHERE t.type = 'transfer' AND t.from_account_id = a.id), 0)
			+ COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
				WHERE t.type = 'transfer' AND t.to_account_id = a.id), 0)
		FROM accounts a
		WHERE a.is_active = 1
		ORDER BY a.name, a.id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var balances []model.AccountBalance
	for rows.Next() {
		var b model.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Name, &b.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}
		balances = append(balances, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balances: %w", err)
	}
	return balances, nil
}

// PeriodSummary totals income and expenses dated within [start, end].
func (s *queries) PeriodSummary(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE occurred_at >= ? AND occurred_at <= ?`

	var summary model.PeriodSummary
	err := s.q.QueryRowContext(ctx, query, start.Format(model.DateLayout), end.Format(model.DateLayout)).
		Scan(&summary.Income, &summary.Expense)
	if err != nil {
		return nil, fmt.Errorf("failed to query period summary: %w", err)
	}

	summary.Net = summary.Income - summary.Expense
	return &summary, nil
}

// TopExpenseCategories returns the categories with the largest expense totals
// within [start, end]. Equal totals are ordered by category ID.
func (s *queries) TopExpenseCategories(ctx context.Context, start, end time.Time, limit int) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.name, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = 'expense'
			AND t.occurred_at >= ? AND t.occurred_at <= ?
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.id ASC
		LIMIT ?`

	rows, err := s.q.QueryContext(ctx, query, start.Format(model.DateLayout), end.Format(model.DateLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}
