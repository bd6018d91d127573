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

const budgetColumns = `id, month_start, category_id, limit_cents, created_at, updated_at`

// GetBudgetForMonth returns the budget for a category in the month starting
// at monthStart, or common.ErrNotFound.
func (s *queries) GetBudgetForMonth(ctx context.Context, monthStart time.Time, categoryID int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE month_start = ? AND category_id = ?`
	budget, err := scanBudget(s.q.QueryRowContext(ctx, query, monthStart.Format(model.DateLayout), categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget for category %d in %s: %w", categoryID, monthStart.Format(model.MonthLayout), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// CreateBudget inserts a new budget and fills in its ID.
func (s *queries) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	query := `
		INSERT INTO budgets (month_start, category_id, limit_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, query,
		budget.MonthStart.Format(model.DateLayout), budget.CategoryID, budget.Limit, now, now)
	if err != nil {
		return wrapWriteError("create budget", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get budget ID: %w", err)
	}

	budget.ID = id
	budget.CreatedAt = now
	budget.UpdatedAt = now
	slog.Debug("created budget", "id", id, "category_id", budget.CategoryID, "month", budget.MonthStart.Format(model.MonthLayout))
	return nil
}

// UpdateBudgetLimit changes the limit of an existing budget and bumps its
// updated_at timestamp.
func (s *queries) UpdateBudgetLimit(ctx context.Context, id, limit int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE budgets SET limit_cents = ?, updated_at = ? WHERE id = ?`, limit, time.Now().UTC(), id)
	if err != nil {
		return wrapWriteError("update budget", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// ListBudgets returns the budgets of one month, newest first.
func (s *queries) ListBudgets(ctx context.Context, monthStart time.Time) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE month_start = ? ORDER BY id DESC`
	rows, err := s.q.QueryContext(ctx, query, monthStart.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget. It reports false when no budget has the
// given ID.
func (s *queries) DeleteBudget(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, nil
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return false, wrapWriteError("delete budget", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

func scanBudget(row rowScanner) (*model.Budget, error) {
	var (
		budget     model.Budget
		monthStart string
	)
	if err := row.Scan(&budget.ID, &monthStart, &budget.CategoryID, &budget.Limit, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(model.DateLayout, monthStart)
	if err != nil {
		return nil, fmt.Errorf("budget %d has invalid month %q: %w", budget.ID, monthStart, err)
	}
	budget.MonthStart = parsed
	return &budget, nil
}
