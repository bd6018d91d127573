package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// DefaultMaxTransactions caps the transaction rows of one export.
const DefaultMaxTransactions = 10000

// Source is the part of the ledger service a report is built from.
type Source interface {
	Dashboard(ctx context.Context, start, end time.Time, limit int) (*model.Dashboard, error)
	BudgetStatus(ctx context.Context, monthStart time.Time) ([]model.BudgetProgress, error)
	ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// BuildReport gathers the reports for [start, end]. Budget progress is only
// included when the window is exactly one calendar month.
func BuildReport(ctx context.Context, src Source, start, end time.Time, topLimit, maxTransactions int) (*Report, error) {
	dashboard, err := src.Dashboard(ctx, start, end, topLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	report := &Report{
		Start:         start,
		End:           end,
		Summary:       dashboard.Summary,
		Balances:      dashboard.Balances,
		TopCategories: dashboard.TopCategories,
	}

	if model.IsMonthStart(start) && end.Equal(model.MonthEnd(start)) {
		if report.Budgets, err = src.BudgetStatus(ctx, start); err != nil {
			return nil, fmt.Errorf("failed to load budgets: %w", err)
		}
	}

	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}
	txns, err := src.ListTransactions(ctx, service.TransactionFilter{Start: &start, End: &end, Limit: maxTransactions})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	accounts, err := src.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	accountNames := make(map[int64]string, len(accounts))
	for _, acc := range accounts {
		accountNames[acc.ID] = acc.Name
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	report.Transactions = make([]TransactionRow, 0, len(txns))
	for _, txn := range txns {
		row := TransactionRow{
			Date:   txn.OccurredAt,
			Type:   txn.Type(),
			Note:   txn.Note,
			Amount: txn.Amount,
		}
		switch body := txn.Body.(type) {
		case model.Expense:
			row.Amount = -txn.Amount
			row.Account = accountNames[body.AccountID]
		case model.Income:
			row.Account = accountNames[body.AccountID]
		case model.Transfer:
			row.Account = accountNames[body.FromAccountID] + " → " + accountNames[body.ToAccountID]
		}
		if id, ok := txn.CategoryID(); ok {
			row.Category = categoryNames[id]
		}
		report.Transactions = append(report.Transactions, row)
	}

	return report, nil
}
