package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

var (
	// ErrNoAccountMap is returned when SyncOptions maps no Plaid account.
	ErrNoAccountMap = errors.New("sync requires at least one mapped account")

	errNoAccounts = errors.New("plaid item has no accounts")
)

// Ledger is the part of the ledger service a sync writes to.
type Ledger interface {
	ImportTransactions(ctx context.Context, txns []model.Transaction, progress func(done int)) (ledger.ImportResult, error)
}

// SyncOptions controls which Plaid transactions are recorded and where.
type SyncOptions struct {
	Start time.Time
	End   time.Time
	// AccountMap maps Plaid account ids to ledger account ids.
	AccountMap        map[string]int64
	Progress          func(done, total int)
	ExpenseCategoryID int64
	IncomeCategoryID  int64
	DryRun            bool
	IncludePending    bool
}

// SyncResult summarizes a sync.
type SyncResult struct {
	Transactions []model.Transaction
	// Missing lists mapped Plaid accounts the item no longer reports.
	Missing    []string
	Fetched    int
	Unmapped   int
	Pending    int
	Skipped    int
	Imported   int
	Duplicates int
}

// Syncer records Plaid transactions in a ledger.
type Syncer struct {
	fetcher TransactionFetcher
	ledger  Ledger
}

// NewSyncer creates a syncer reading from fetcher and writing to l.
func NewSyncer(fetcher TransactionFetcher, l Ledger) *Syncer {
	return &Syncer{fetcher: fetcher, ledger: l}
}

// Sync fetches the item's accounts and transactions concurrently and imports
// the transactions of mapped accounts. Plaid transaction ids become external
// ids, so repeated syncs of overlapping windows add nothing new.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if len(opts.AccountMap) == 0 {
		return nil, ErrNoAccountMap
	}

	var (
		accounts []Account
		fetched  []Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.fetcher.GetAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		fetched, err = s.fetcher.GetTransactions(gctx, opts.Start, opts.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch from Plaid: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errNoAccounts
	}

	result := &SyncResult{Fetched: len(fetched), Missing: missingAccounts(accounts, opts.AccountMap)}
	for _, id := range result.Missing {
		slog.Warn("Mapped Plaid account not found in item", "plaid_account", id)
	}

	for _, pt := range fetched {
		accountID, ok := opts.AccountMap[pt.AccountID]
		switch {
		case !ok:
			result.Unmapped++
			continue
		case pt.Pending && !opts.IncludePending:
			result.Pending++
			continue
		}

		txn, ok := Convert(pt, accountID, opts)
		if !ok {
			result.Skipped++
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	if opts.DryRun || len(result.Transactions) == 0 {
		return result, nil
	}

	total := len(result.Transactions)
	var progress func(int)
	if opts.Progress != nil {
		progress = func(done int) { opts.Progress(done, total) }
	}

	imported, err := s.ledger.ImportTransactions(ctx, result.Transactions, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to record Plaid transactions: %w", err)
	}
	result.Imported = imported.Imported
	result.Duplicates = imported.Duplicates

	slog.Info("Plaid sync finished",
		"fetched", result.Fetched,
		"unmapped", result.Unmapped,
		"pending", result.Pending,
		"imported", result.Imported,
		"duplicates", result.Duplicates)
	return result, nil
}

// Convert maps a Plaid transaction onto ledger account accountID. Zero
// amounts are reported as not convertible.
func Convert(pt Transaction, accountID int64, opts SyncOptions) (model.Transaction, bool) {
	if pt.Amount == 0 {
		return model.Transaction{}, false
	}

	txn := model.Transaction{
		OccurredAt: model.Day(pt.Date),
		Note:       pt.MerchantName,
		ExternalID: "plaid:" + pt.ID,
	}
	if pt.ID == "" {
		txn.ExternalID = ""
	}

	if pt.Amount < 0 {
		txn.Amount = -pt.Amount
		txn.Body = model.Expense{AccountID: accountID, CategoryID: opts.ExpenseCategoryID}
	} else {
		txn.Amount = pt.Amount
		txn.Body = model.Income{AccountID: accountID, CategoryID: opts.IncomeCategoryID}
	}
	return txn, true
}

func missingAccounts(accounts []Account, accountMap map[string]int64) []string {
	known := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		known[acc.ID] = true
	}
	var missing []string
	for id := range accountMap {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	return missing
}
