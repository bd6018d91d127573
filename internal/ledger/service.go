// Package ledger implements the bookkeeping rules on top of the record
// store: account and category registries, transaction entry, reports and
// budgets. Every call runs inside one scoped store transaction and
// successful mutations are announced through a Notifier.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/service"
)

// Default result sizes.
const (
	DefaultListLimit   = 500
	DefaultRecentLimit = 200
	DefaultTopLimit    = 10
)

// Service is the application core used by the CLI and the dashboard.
type Service struct {
	store    service.Storage
	notifier *Notifier
}

// New creates a service over store. A nil notifier gets a fresh one.
func New(store service.Storage, notifier *Notifier) *Service {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Service{store: store, notifier: notifier}
}

// Notifier returns the notifier that receives change signals.
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// withTx runs fn inside a scoped transaction. The transaction is committed
// when fn succeeds and rolled back otherwise.
func (s *Service) withTx(ctx context.Context, fn func(tx service.Transaction) error) (err error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("Failed to roll back transaction", "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// mutate is withTx followed by a change notification when fn reports that
// it actually changed something.
func (s *Service) mutate(ctx context.Context, fn func(tx service.Transaction) (bool, error)) error {
	changed := false
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		changed, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	if changed {
		s.notifier.Notify()
	}
	return nil
}

// isNotFound reports whether err is a store lookup miss.
func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
