// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
)

// TransactionFilter narrows a transaction listing. Nil and zero fields mean
// no constraint; a non-positive Limit means no limit.
type TransactionFilter struct {
	Start      *time.Time
	End        *time.Time
	AccountID  *int64
	CategoryID *int64
	Type       model.TransactionType
	Limit      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByName(ctx context.Context, name string) (*model.Account, error)
	ListAccounts(ctx context.Context, activeOnly bool) ([]model.Account, error)
	SetAccountActive(ctx context.Context, id int64, active bool) (bool, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	ListCategories(ctx context.Context, kind model.CategoryKind) ([]model.Category, error)

	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	ExternalIDExists(ctx context.Context, externalID string) (bool, error)

	// Budget operations
	GetBudgetForMonth(ctx context.Context, monthStart time.Time, categoryID int64) (*model.Budget, error)
	CreateBudget(ctx context.Context, budget *model.Budget) error
	UpdateBudgetLimit(ctx context.Context, id, limit int64) error
	ListBudgets(ctx context.Context, monthStart time.Time) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, id int64) (bool, error)

	// Report operations
	AccountBalances(ctx context.Context) ([]model.AccountBalance, error)
	PeriodSummary(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error)
	TopExpenseCategories(ctx context.Context, start, end time.Time, limit int) ([]model.CategoryTotal, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Storage
	Commit() error
	Rollback() error
}
