package sheets

import (
	"time"

	"github.com/Veraticus/kopeck/internal/model"
)

// Report is everything written to the spreadsheet for one period.
type Report struct {
	Start         time.Time
	End           time.Time
	Balances      []model.AccountBalance
	TopCategories []model.CategoryTotal
	Budgets       []model.BudgetProgress
	Transactions  []TransactionRow
	Summary       model.PeriodSummary
}

// TransactionRow is a transaction with its references resolved to names.
// Amount is signed: expenses are negative.
type TransactionRow struct {
	Date     time.Time
	Type     model.TransactionType
	Account  string
	Category string
	Note     string
	Amount   int64
}
