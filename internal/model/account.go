// Package model defines the core domain models used throughout the application.
package model

import "time"

// AccountType describes where the money in an account lives.
type AccountType string

const (
	// AccountTypeCash represents physical cash.
	AccountTypeCash AccountType = "cash"
	// AccountTypeBank represents a bank account or debit card.
	AccountTypeBank AccountType = "bank"
	// AccountTypeSavings represents a savings or deposit account.
	AccountTypeSavings AccountType = "savings"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{AccountTypeCash, AccountTypeBank, AccountTypeSavings}

// Valid reports whether t is a supported account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a named place where money lives. Balances are always derived
// from transactions and never stored on the account itself.
type Account struct {
	CreatedAt time.Time
	Name      string
	Type      AccountType
	ID        int64
	IsActive  bool
}
