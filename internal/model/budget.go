package model

import "time"

// Budget is a monthly spending or saving target for one category.
type Budget struct {
	MonthStart time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         int64
	CategoryID int64
	Limit      int64
}

// BudgetProgress compares a budget with what was actually recorded in its month.
type BudgetProgress struct {
	CategoryName string
	CategoryKind CategoryKind
	Budget       Budget
	Actual       int64
	Remaining    int64
	PercentUsed  int64
}
