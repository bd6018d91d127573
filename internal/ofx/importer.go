package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

// ErrNoTarget is returned when ImportOptions does not name the target account.
var ErrNoTarget = errors.New("import requires a target account")

// Ledger is the part of the ledger service an import writes to.
type Ledger interface {
	ImportTransactions(ctx context.Context, txns []model.Transaction, progress func(done int)) (ledger.ImportResult, error)
}

// ImportOptions controls how statement entries become ledger transactions.
type ImportOptions struct {
	// Progress is called with the number of rows handled and the total.
	Progress          func(done, total int)
	AccountID         int64
	ExpenseCategoryID int64
	IncomeCategoryID  int64
	DryRun            bool
}

// ImportResult summarizes an import.
type ImportResult struct {
	Transactions []model.Transaction
	Parsed       int
	Skipped      int
	Imported     int
	Duplicates   int
}

// Importer loads OFX statements into a ledger.
type Importer struct {
	ledger Ledger
	parser *Parser
}

// NewImporter creates an importer writing to l.
func NewImporter(l Ledger) *Importer {
	return &Importer{ledger: l, parser: NewParser()}
}

// Import parses r and records every non-zero entry on opts.AccountID.
// Debits become expenses and credits become income. FITIDs are stored as
// external ids, so importing the same statement twice adds nothing.
// With DryRun set the converted transactions are returned without writing.
func (i *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	if opts.AccountID <= 0 {
		return nil, ErrNoTarget
	}

	entries, err := i.parser.Parse(ctx, r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Parsed: len(entries)}
	for _, entry := range entries {
		txn, ok := Convert(entry, opts)
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

	imported, err := i.ledger.ImportTransactions(ctx, result.Transactions, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to import statement: %w", err)
	}
	result.Imported = imported.Imported
	result.Duplicates = imported.Duplicates

	slog.Info("OFX import finished",
		"parsed", result.Parsed,
		"skipped", result.Skipped,
		"imported", result.Imported,
		"duplicates", result.Duplicates)
	return result, nil
}

// Convert maps a statement entry to a ledger transaction. Zero amounts are
// reported as not convertible.
func Convert(entry Entry, opts ImportOptions) (model.Transaction, bool) {
	if entry.Amount == 0 {
		return model.Transaction{}, false
	}

	txn := model.Transaction{
		OccurredAt: model.Day(entry.Posted),
		Note:       entry.Payee,
	}
	if entry.FITID != "" {
		txn.ExternalID = fmt.Sprintf("%d:%s", opts.AccountID, entry.FITID)
	}

	if entry.Amount < 0 {
		txn.Amount = -entry.Amount
		txn.Body = model.Expense{AccountID: opts.AccountID, CategoryID: opts.ExpenseCategoryID}
	} else {
		txn.Amount = entry.Amount
		txn.Body = model.Income{AccountID: opts.AccountID, CategoryID: opts.IncomeCategoryID}
	}
	return txn, true
}
