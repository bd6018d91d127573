package ledger

import (
	"errors"

	"github.com/Veraticus/kopeck/internal/model"
)

// Validation errors returned by the service. Callers match them with errors.Is.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrInvalidKind         = errors.New("invalid category kind")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSameAccount         = errors.New("source and destination accounts must differ")
	ErrInvalidMonth        = errors.New("month start must be the first day of a month")
	ErrNotSavingsCategory  = errors.New("category is not a savings category")

	// ErrInvalidTransaction is the model's error for malformed transaction bodies.
	ErrInvalidTransaction = model.ErrInvalidTransaction
)
