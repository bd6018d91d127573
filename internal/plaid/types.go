package plaid

import (
	"context"
	"time"
)

// Transaction is a bank transaction as reported by Plaid. Amount is in
// minor units; outflows are negative.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	Name         string
	MerchantName string
	Amount       int64
	Pending      bool
}

// Account is an account linked to a Plaid item.
type Account struct {
	ID   string
	Name string
	Mask string
	Type string
}

// TransactionFetcher is the source a Syncer pulls from.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]Transaction, error)
	GetAccounts(ctx context.Context) ([]Account, error)
}
