package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// CreateAccount returns the account called name, creating it when it does
// not exist yet. An existing account is returned unchanged whatever type is
// requested. An empty type means bank.
func (s *Service) CreateAccount(ctx context.Context, name string, accountType model.AccountType) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: account", ErrEmptyName)
	}
	if accountType == "" {
		accountType = model.AccountTypeBank
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, accountType)
	}

	var account *model.Account
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		existing, err := tx.GetAccountByName(ctx, name)
		if err == nil {
			account = existing
			return false, nil
		}
		if !isNotFound(err) {
			return false, fmt.Errorf("failed to look up account: %w", err)
		}

		account = &model.Account{Name: name, Type: accountType, IsActive: true}
		if err := tx.CreateAccount(ctx, account); err != nil {
			return false, err
		}
		slog.Info("Created account", "id", account.ID, "name", name, "type", accountType)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns the account with the given id.
func (s *Service) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var account *model.Account
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		account, err = requireAccount(ctx, tx, id)
		return err
	})
	return account, err
}

// requireAccount resolves id or fails with ErrAccountNotFound.
func requireAccount(ctx context.Context, tx service.Transaction, id int64) (*model.Account, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}
	account, err := tx.GetAccount(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount hides an account from balances and pickers. It reports
// false when the id does not resolve.
func (s *Service) DeactivateAccount(ctx context.Context, id int64) (bool, error) {
	return s.setAccountActive(ctx, id, false)
}

// ActivateAccount reverses DeactivateAccount.
func (s *Service) ActivateAccount(ctx context.Context, id int64) (bool, error) {
	return s.setAccountActive(ctx, id, true)
}

func (s *Service) setAccountActive(ctx context.Context, id int64, active bool) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		var err error
		found, err = tx.SetAccountActive(ctx, id, active)
		return found, err
	})
	return found, err
}

// ListActiveAccounts returns active accounts, newest first.
func (s *Service) ListActiveAccounts(ctx context.Context) ([]model.Account, error) {
	return s.listAccounts(ctx, true)
}

// ListAccounts returns all accounts, newest first.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.listAccounts(ctx, false)
}

func (s *Service) listAccounts(ctx context.Context, activeOnly bool) ([]model.Account, error) {
	var accounts []model.Account
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		accounts, err = tx.ListAccounts(ctx, activeOnly)
		return err
	})
	return accounts, err
}
