package model

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType is the discriminator stored alongside each transaction.
type TransactionType string

const (
	// TransactionTypeExpense is money leaving an account.
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeIncome is money entering an account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeTransfer is money moving between two accounts.
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransfer:
		return true
	}
	return false
}

// ErrInvalidTransaction is returned when a transaction body does not have the
// shape its type requires.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TransactionBody holds the variant-specific fields of a transaction.
// It is implemented by Expense, Income and Transfer.
type TransactionBody interface {
	Type() TransactionType
	validate() error
}

// Expense records money spent from an account.
type Expense struct {
	AccountID  int64
	CategoryID int64
}

// Type implements TransactionBody.
func (Expense) Type() TransactionType { return TransactionTypeExpense }

func (e Expense) validate() error {
	if e.AccountID <= 0 {
		return fmt.Errorf("%w: expense requires an account", ErrInvalidTransaction)
	}
	if e.CategoryID <= 0 {
		return fmt.Errorf("%w: expense requires a category", ErrInvalidTransaction)
	}
	return nil
}

// Income records money received into an account.
type Income struct {
	AccountID  int64
	CategoryID int64
}

// Type implements TransactionBody.
func (Income) Type() TransactionType { return TransactionTypeIncome }

func (i Income) validate() error {
	if i.AccountID <= 0 {
		return fmt.Errorf("%w: income requires an account", ErrInvalidTransaction)
	}
	if i.CategoryID <= 0 {
		return fmt.Errorf("%w: income requires a category", ErrInvalidTransaction)
	}
	return nil
}

// Transfer moves money between two accounts. A transfer tagged with a
// savings category is a savings flow.
type Transfer struct {
	CategoryID    *int64
	FromAccountID int64
	ToAccountID   int64
}

// Type implements TransactionBody.
func (Transfer) Type() TransactionType { return TransactionTypeTransfer }

func (t Transfer) validate() error {
	if t.FromAccountID <= 0 || t.ToAccountID <= 0 {
		return fmt.Errorf("%w: transfer requires source and destination accounts", ErrInvalidTransaction)
	}
	if t.CategoryID != nil && *t.CategoryID <= 0 {
		return fmt.Errorf("%w: invalid transfer category", ErrInvalidTransaction)
	}
	return nil
}

// Transaction is a single ledger entry. Amount is a positive number of
// kopecks; direction comes from the body type.
type Transaction struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	Body       TransactionBody
	Note       string
	ExternalID string
	ID         int64
	Amount     int64
}

// Type returns the transaction's discriminator, or an empty string if the
// body is missing.
func (t *Transaction) Type() TransactionType {
	if t.Body == nil {
		return ""
	}
	return t.Body.Type()
}

// Validate checks the structural invariants of the transaction.
func (t *Transaction) Validate() error {
	if t.Body == nil {
		return fmt.Errorf("%w: missing body", ErrInvalidTransaction)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if t.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return t.Body.validate()
}

// CategoryID returns the category attached to the transaction, if any.
func (t *Transaction) CategoryID() (int64, bool) {
	switch b := t.Body.(type) {
	case Expense:
		return b.CategoryID, true
	case Income:
		return b.CategoryID, true
	case Transfer:
		if b.CategoryID != nil {
			return *b.CategoryID, true
		}
	}
	return 0, false
}

// AccountIDs returns every account the transaction touches.
func (t *Transaction) AccountIDs() []int64 {
	switch b := t.Body.(type) {
	case Expense:
		return []int64{b.AccountID}
	case Income:
		return []int64{b.AccountID}
	case Transfer:
		return []int64{b.FromAccountID, b.ToAccountID}
	}
	return nil
}
