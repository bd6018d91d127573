package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// UpsertBudget sets the limit for a category in the month starting at
// monthStart, creating the budget when none exists.
func (s *Service) UpsertBudget(ctx context.Context, monthStart time.Time, categoryID, limit int64) (*model.Budget, error) {
	if monthStart.IsZero() || !model.IsMonthStart(monthStart) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMonth, monthStart.Format(model.DateLayout))
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: budget limit %d", ErrInvalidAmount, limit)
	}
	monthStart = model.Day(monthStart)

	var budget *model.Budget
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		if _, err := requireCategory(ctx, tx, categoryID); err != nil {
			return false, err
		}

		existing, err := tx.GetBudgetForMonth(ctx, monthStart, categoryID)
		switch {
		case err == nil:
			if err := tx.UpdateBudgetLimit(ctx, existing.ID, limit); err != nil {
				return false, err
			}
			budget, err = tx.GetBudgetForMonth(ctx, monthStart, categoryID)
			return true, err
		case isNotFound(err):
			budget = &model.Budget{MonthStart: monthStart, CategoryID: categoryID, Limit: limit}
			if err := tx.CreateBudget(ctx, budget); err != nil {
				return false, err
			}
			slog.Info("Created budget", "id", budget.ID, "month", monthStart.Format(model.MonthLayout), "category_id", categoryID)
			return true, nil
		default:
			return false, fmt.Errorf("failed to look up budget: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// ListBudgets returns the budgets of one month, newest first.
func (s *Service) ListBudgets(ctx context.Context, monthStart time.Time) ([]model.Budget, error) {
	var budgets []model.Budget
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		budgets, err = tx.ListBudgets(ctx, model.MonthStart(monthStart))
		return err
	})
	return budgets, err
}

// DeleteBudget removes a budget. It reports false when the id does not resolve.
func (s *Service) DeleteBudget(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		var err error
		deleted, err = tx.DeleteBudget(ctx, id)
		return deleted, err
	})
	return deleted, err
}

// BudgetStatus compares every budget of the month with what was actually
// spent. Expense categories count expenses, savings categories count the
// transfers tagged with them, and income categories never accumulate.
func (s *Service) BudgetStatus(ctx context.Context, monthStart time.Time) ([]model.BudgetProgress, error) {
	start := model.MonthStart(monthStart)
	end := model.MonthEnd(start)

	var progress []model.BudgetProgress
	err := s.withTx(ctx, func(tx service.Transaction) error {
		budgets, err := tx.ListBudgets(ctx, start)
		if err != nil {
			return err
		}

		progress = make([]model.BudgetProgress, 0, len(budgets))
		for _, budget := range budgets {
			category, err := requireCategory(ctx, tx, budget.CategoryID)
			if err != nil {
				return err
			}

			actual, err := actualSpend(ctx, tx, category, start, end)
			if err != nil {
				return err
			}

			progress = append(progress, model.BudgetProgress{
				Budget:       budget,
				CategoryName: category.Name,
				CategoryKind: category.Kind,
				Actual:       actual,
				Remaining:    budget.Limit - actual,
				PercentUsed:  percentUsed(actual, budget.Limit),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func actualSpend(ctx context.Context, tx service.Transaction, category *model.Category, start, end time.Time) (int64, error) {
	var txnType model.TransactionType
	switch category.Kind {
	case model.CategoryKindExpense:
		txnType = model.TransactionTypeExpense
	case model.CategoryKindSavings:
		txnType = model.TransactionTypeTransfer
	default:
		return 0, nil
	}

	categoryID := category.ID
	txns, err := tx.ListTransactions(ctx, service.TransactionFilter{
		Start:      &start,
		End:        &end,
		Type:       txnType,
		CategoryID: &categoryID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions for budget: %w", err)
	}

	var total int64
	for _, txn := range txns {
		total += txn.Amount
	}
	return total, nil
}

func percentUsed(actual, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return actual * 100 / limit
}
