package model

// AccountBalance is the derived balance of one active account.
type AccountBalance struct {
	Name      string
	AccountID int64
	Balance   int64
}

// PeriodSummary totals income and expenses over a date range. Transfers are
// excluded.
type PeriodSummary struct {
	Income  int64
	Expense int64
	Net     int64
}

// CategoryTotal is the expense total attributed to one category.
type CategoryTotal struct {
	Name       string
	CategoryID int64
	Total      int64
}

// Dashboard bundles the three reports read from a single consistent snapshot.
type Dashboard struct {
	Balances      []AccountBalance
	TopCategories []CategoryTotal
	Summary       PeriodSummary
}
