package ofx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
	"github.com/Veraticus/kopeck/internal/testutil"
)

func newImportEnv(t *testing.T) (*ledger.Service, ImportOptions) {
	t.Helper()
	store := testutil.NewStore(t)
	fx := testutil.NewBuilder(t).WithStandard().MustBuild(store)

	return ledger.New(store, nil), ImportOptions{
		AccountID:         fx.Account(t, testutil.AccountCard).ID,
		ExpenseCategoryID: fx.Category(t, testutil.CategoryFood).ID,
		IncomeCategoryID:  fx.Category(t, testutil.CategorySalary).ID,
	}
}

func TestImporter_Import(t *testing.T) {
	svc, opts := newImportEnv(t)
	ctx := context.Background()

	var calls [][2]int
	opts.Progress = func(done, total int) { calls = append(calls, [2]int{done, total}) }

	result, err := NewImporter(svc).Import(ctx, strings.NewReader(sampleBankOFX), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Parsed)
	assert.Equal(t, 4, result.Imported)
	assert.Zero(t, result.Duplicates)
	assert.Len(t, calls, 4)
	assert.Equal(t, [2]int{4, 4}, calls[3])

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	summary, err := svc.PeriodSummary(ctx, start, model.MonthEnd(start))
	require.NoError(t, err)
	assert.Equal(t, int64(2550+12500+50000), summary.Expense)
	assert.Equal(t, int64(250012), summary.Income)

	txns, err := svc.ListTransactions(ctx, service.TransactionFilter{Type: model.TransactionTypeIncome})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Payroll", txns[0].Note)
	assert.Contains(t, txns[0].ExternalID, ":2024013101")
}

func TestImporter_ReimportIsIdempotent(t *testing.T) {
	svc, opts := newImportEnv(t)
	ctx := context.Background()
	importer := NewImporter(svc)

	_, err := importer.Import(ctx, strings.NewReader(sampleCreditCardOFX), opts)
	require.NoError(t, err)

	result, err := importer.Import(ctx, strings.NewReader(sampleCreditCardOFX), opts)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, 2, result.Duplicates)

	txns, err := svc.RecentTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestImporter_DryRun(t *testing.T) {
	svc, opts := newImportEnv(t)
	ctx := context.Background()
	opts.DryRun = true

	result, err := NewImporter(svc).Import(ctx, strings.NewReader(sampleCreditCardOFX), opts)
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 2)
	assert.Zero(t, result.Imported)

	txns, err := svc.RecentTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestImporter_Errors(t *testing.T) {
	svc, opts := newImportEnv(t)
	ctx := context.Background()

	_, err := NewImporter(svc).Import(ctx, strings.NewReader(sampleBankOFX), ImportOptions{})
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = NewImporter(svc).Import(ctx, strings.NewReader("garbage"), opts)
	assert.Error(t, err)

	opts.ExpenseCategoryID = 9999
	_, err = NewImporter(svc).Import(ctx, strings.NewReader(sampleBankOFX), opts)
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)
}

type failingLedger struct{}

func (failingLedger) ImportTransactions(context.Context, []model.Transaction, func(int)) (ledger.ImportResult, error) {
	return ledger.ImportResult{}, errors.New("disk full")
}

func TestImporter_LedgerFailure(t *testing.T) {
	_, err := NewImporter(failingLedger{}).Import(context.Background(), strings.NewReader(sampleCreditCardOFX), ImportOptions{AccountID: 1})
	assert.ErrorContains(t, err, "disk full")
}

func TestConvert(t *testing.T) {
	opts := ImportOptions{AccountID: 7, ExpenseCategoryID: 3, IncomeCategoryID: 4}
	posted := time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		entry  Entry
		want   model.Transaction
		wantOK bool
	}{
		{
			name:  "debit becomes expense",
			entry: Entry{FITID: "A1", Posted: posted, Payee: "Cafe", Amount: -990},
			want: model.Transaction{
				OccurredAt: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
				Amount:     990,
				Note:       "Cafe",
				ExternalID: "7:A1",
				Body:       model.Expense{AccountID: 7, CategoryID: 3},
			},
			wantOK: true,
		},
		{
			name:  "credit becomes income",
			entry: Entry{Posted: posted, Payee: "Refund", Amount: 1500},
			want: model.Transaction{
				OccurredAt: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
				Amount:     1500,
				Note:       "Refund",
				Body:       model.Income{AccountID: 7, CategoryID: 4},
			},
			wantOK: true,
		},
		{
			name:  "zero is skipped",
			entry: Entry{FITID: "Z", Posted: posted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.entry, opts)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
