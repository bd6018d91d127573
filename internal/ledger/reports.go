package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// AccountBalances returns one row per active account, ordered by name.
func (s *Service) AccountBalances(ctx context.Context) ([]model.AccountBalance, error) {
	var balances []model.AccountBalance
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		balances, err = tx.AccountBalances(ctx)
		return err
	})
	return balances, err
}

// PeriodSummary totals income and expense between start and end inclusive.
// Transfers are not counted.
func (s *Service) PeriodSummary(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	var summary *model.PeriodSummary
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		summary, err = tx.PeriodSummary(ctx, start, end)
		return err
	})
	return summary, err
}

// TopExpenseCategories returns the categories with the largest expense
// totals in the window. A non-positive limit means DefaultTopLimit.
func (s *Service) TopExpenseCategories(ctx context.Context, start, end time.Time, limit int) ([]model.CategoryTotal, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	var totals []model.CategoryTotal
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		totals, err = tx.TopExpenseCategories(ctx, start, end, limit)
		return err
	})
	return totals, err
}

// Dashboard gathers balances, the period summary and the top expense
// categories from a single read transaction.
func (s *Service) Dashboard(ctx context.Context, start, end time.Time, limit int) (*model.Dashboard, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	dash := &model.Dashboard{}
	err := s.withTx(ctx, func(tx service.Transaction) error {
		balances, err := tx.AccountBalances(ctx)
		if err != nil {
			return err
		}
		summary, err := tx.PeriodSummary(ctx, start, end)
		if err != nil {
			return err
		}
		top, err := tx.TopExpenseCategories(ctx, start, end, limit)
		if err != nil {
			return err
		}
		dash.Balances = balances
		dash.Summary = *summary
		dash.TopCategories = top
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}

func checkWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("report window requires both start and end")
	}
	if end.Before(start) {
		return fmt.Errorf("report window ends before it starts: %s > %s",
			start.Format(model.DateLayout), end.Format(model.DateLayout))
	}
	return nil
}
