package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/money"
	"github.com/Veraticus/kopeck/internal/storage"
)

// openStore opens the configured database and brings its schema up to date.
func (a *app) openStore(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("failed to open database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStore(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	common.LogDebug("Database ready", common.Fields{"path": store.Path()})
	return store, nil
}

// withLedger runs fn against a ledger service backed by the configured
// database, closing the database afterwards.
func (a *app) withLedger(ctx context.Context, fn func(svc *ledger.Service) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	return describe(fn(ledger.New(store, nil)))
}

func closeStore(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "Failed to close database", common.Fields{"path": store.Path()})
	}
}

// describe turns ledger validation errors into messages fit for the terminal.
func describe(err error) error {
	if err == nil {
		return nil
	}

	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return err
	}

	for _, known := range []error{
		ledger.ErrInvalidAmount,
		ledger.ErrEmptyName,
		ledger.ErrInvalidKind,
		ledger.ErrInvalidAccountType,
		ledger.ErrAccountNotFound,
		ledger.ErrCategoryNotFound,
		ledger.ErrTransactionNotFound,
		ledger.ErrSameAccount,
		ledger.ErrInvalidMonth,
		ledger.ErrNotSavingsCategory,
		ledger.ErrInvalidTransaction,
		storage.ErrConstraint,
	} {
		if errors.Is(err, known) {
			return common.NewUserError(err.Error(), err)
		}
	}
	return err
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q", arg), err)
	}
	return id, nil
}

func parseAmount(text string) (int64, error) {
	amount, ok := money.Parse(text)
	if !ok {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q, expected e.g. 1 500,50", text), nil)
	}
	return amount, nil
}

// parseDateFlag reads a YYYY-MM-DD flag, defaulting to today.
func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return model.Day(time.Now()), nil
	}
	date, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, common.NewUserError(err.Error(), err)
	}
	return date, nil
}

// parseMonthFlag reads a YYYY-MM flag, defaulting to the current month.
func parseMonthFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return model.MonthStart(time.Now()), nil
	}
	month, err := model.ParseMonth(value)
	if err != nil {
		return time.Time{}, common.NewUserError(err.Error(), err)
	}
	return month, nil
}

// optionalID returns a pointer to the flag's value when it was set.
func optionalID(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	id, _ := cmd.Flags().GetInt64(name)
	return &id
}

func notFound(what string, id int64) error {
	return common.NewUserError(fmt.Sprintf("%s %d not found", what, id), common.ErrNotFound)
}

// nameIndex resolves account and category ids for display.
type nameIndex struct {
	accounts   map[int64]string
	categories map[int64]string
}

func loadNames(ctx context.Context, svc *ledger.Service) (*nameIndex, error) {
	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := svc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	idx := &nameIndex{
		accounts:   make(map[int64]string, len(accounts)),
		categories: make(map[int64]string, len(categories)),
	}
	for _, acc := range accounts {
		idx.accounts[acc.ID] = acc.Name
	}
	for _, cat := range categories {
		idx.categories[cat.ID] = cat.Name
	}
	return idx, nil
}

func (n *nameIndex) account(id int64) string {
	if name, ok := n.accounts[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func (n *nameIndex) category(id int64) string {
	if name, ok := n.categories[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
