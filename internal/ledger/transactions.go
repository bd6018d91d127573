package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// DefaultSavingsNote is used for savings flows entered without a note.
const DefaultSavingsNote = "Накопления"

// AddExpense records money leaving accountID under categoryID.
func (s *Service) AddExpense(ctx context.Context, date time.Time, accountID, categoryID, amount int64, note string) (*model.Transaction, error) {
	return s.add(ctx, &model.Transaction{
		OccurredAt: date,
		Amount:     amount,
		Note:       note,
		Body:       model.Expense{AccountID: accountID, CategoryID: categoryID},
	})
}

// AddIncome records money arriving on accountID under categoryID.
func (s *Service) AddIncome(ctx context.Context, date time.Time, accountID, categoryID, amount int64, note string) (*model.Transaction, error) {
	return s.add(ctx, &model.Transaction{
		OccurredAt: date,
		Amount:     amount,
		Note:       note,
		Body:       model.Income{AccountID: accountID, CategoryID: categoryID},
	})
}

// AddTransfer moves money between two accounts. A category, when given,
// tags the transfer as a flow into that category.
func (s *Service) AddTransfer(ctx context.Context, date time.Time, fromID, toID, amount int64, note string, categoryID *int64) (*model.Transaction, error) {
	return s.add(ctx, &model.Transaction{
		OccurredAt: date,
		Amount:     amount,
		Note:       note,
		Body:       model.Transfer{FromAccountID: fromID, ToAccountID: toID, CategoryID: categoryID},
	})
}

// AddSavingsFlow records a transfer into a savings goal. The category must be
// of kind savings and the two accounts must differ.
func (s *Service) AddSavingsFlow(ctx context.Context, date time.Time, fromID, toID, categoryID, amount int64, note string) (*model.Transaction, error) {
	if fromID == toID {
		return nil, ErrSameAccount
	}
	if note == "" {
		note = DefaultSavingsNote
	}

	txn := &model.Transaction{
		OccurredAt: date,
		Amount:     amount,
		Note:       note,
		Body:       model.Transfer{FromAccountID: fromID, ToAccountID: toID, CategoryID: &categoryID},
	}
	if err := checkShape(txn); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		category, err := requireCategory(ctx, tx, categoryID)
		if err != nil {
			return false, err
		}
		if category.Kind != model.CategoryKindSavings {
			return false, fmt.Errorf("%w: %q is %s", ErrNotSavingsCategory, category.Name, category.Kind)
		}
		return true, s.insert(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) add(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := checkShape(txn); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		return true, s.insert(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) insert(ctx context.Context, tx service.Transaction, txn *model.Transaction) error {
	if err := checkReferences(ctx, tx, txn); err != nil {
		return err
	}
	if err := tx.SaveTransaction(ctx, txn); err != nil {
		return err
	}
	slog.Debug("Recorded transaction", "id", txn.ID, "type", txn.Type(), "amount", txn.Amount)
	return nil
}

// EditTransaction replaces every field of transaction id with those of
// updated. The body decides which references are kept; the rest are
// cleared. An empty ExternalID keeps the stored one.
func (s *Service) EditTransaction(ctx context.Context, id int64, updated model.Transaction) (*model.Transaction, error) {
	txn := updated
	txn.ID = id
	if err := checkShape(&txn); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		existing, err := s.requireTransaction(ctx, tx, id)
		if err != nil {
			return false, err
		}
		if txn.ExternalID == "" {
			txn.ExternalID = existing.ExternalID
		}
		txn.CreatedAt = existing.CreatedAt

		if err := checkReferences(ctx, tx, &txn); err != nil {
			return false, err
		}
		if err := tx.UpdateTransaction(ctx, &txn); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// DeleteTransaction removes a transaction. It reports false when the id does
// not resolve.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		var err error
		deleted, err = tx.DeleteTransaction(ctx, id)
		return deleted, err
	})
	return deleted, err
}

// GetTransaction returns the transaction with the given id.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		txn, err = s.requireTransaction(ctx, tx, id)
		return err
	})
	return txn, err
}

// ListTransactions returns transactions matching every set filter field,
// newest first. A non-positive limit means DefaultListLimit.
func (s *Service) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, filter.Type)
	}

	var txns []model.Transaction
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		txns, err = tx.ListTransactions(ctx, filter)
		return err
	})
	return txns, err
}

// RecentTransactions returns the latest transactions of any kind.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ListTransactions(ctx, service.TransactionFilter{Limit: limit})
}

func (s *Service) requireTransaction(ctx context.Context, tx service.Transaction, id int64) (*model.Transaction, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	txn, err := tx.GetTransaction(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// checkShape validates a transaction without touching the store.
func checkShape(txn *model.Transaction) error {
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, txn.Amount)
	}
	if err := txn.Validate(); err != nil {
		if errors.Is(err, model.ErrInvalidTransaction) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return nil
}

// checkReferences verifies that every account and category the body points
// at exists.
func checkReferences(ctx context.Context, tx service.Transaction, txn *model.Transaction) error {
	for _, id := range txn.AccountIDs() {
		if _, err := requireAccount(ctx, tx, id); err != nil {
			return err
		}
	}
	if id, ok := txn.CategoryID(); ok {
		if _, err := requireCategory(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}
