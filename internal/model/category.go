package model

import "time"

// CategoryKind classifies a category as income, expense, or savings.
type CategoryKind string

const (
	// CategoryKindIncome represents categories for income transactions.
	CategoryKindIncome CategoryKind = "income"
	// CategoryKindExpense represents categories for expense transactions.
	CategoryKindExpense CategoryKind = "expense"
	// CategoryKindSavings represents categories that tag money moved into savings.
	CategoryKindSavings CategoryKind = "savings"
)

// CategoryKinds lists every supported category kind.
var CategoryKinds = []CategoryKind{CategoryKindIncome, CategoryKindExpense, CategoryKindSavings}

// Valid reports whether k is a supported category kind.
func (k CategoryKind) Valid() bool {
	switch k {
	case CategoryKindIncome, CategoryKindExpense, CategoryKindSavings:
		return true
	}
	return false
}

// Category classifies transactions for reporting. Slugs are unique across
// all kinds.
type Category struct {
	CreatedAt time.Time
	ParentID  *int64
	Kind      CategoryKind
	Name      string
	Slug      string
	ID        int64
}
