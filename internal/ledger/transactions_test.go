package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
	"github.com/Veraticus/kopeck/internal/testutil"
)

func TestAddExpense(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	food := env.category(t, testutil.CategoryFood)

	txn, err := env.svc.AddExpense(ctx, date(t, "2026-01-15"), cash, food, 45000, "Пятёрочка")
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	assert.Equal(t, 1, *env.notified)

	got, err := env.svc.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Expense{AccountID: cash, CategoryID: food}, got.Body)
	assert.Equal(t, int64(45000), got.Amount)
	assert.Equal(t, "Пятёрочка", got.Note)
}

func TestAddTransaction_RejectedBeforeWrite(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	card := env.account(t, testutil.AccountCard)
	food := env.category(t, testutil.CategoryFood)
	salary := env.category(t, testutil.CategorySalary)
	day := date(t, "2026-01-15")

	tests := []struct {
		name    string
		add     func() error
		wantErr error
	}{
		{
			name: "zero amount",
			add: func() error {
				_, err := env.svc.AddExpense(ctx, day, cash, food, 0, "")
				return err
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			add: func() error {
				_, err := env.svc.AddIncome(ctx, day, cash, salary, -100, "")
				return err
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unknown account",
			add: func() error {
				_, err := env.svc.AddExpense(ctx, day, 9999, food, 100, "")
				return err
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name: "unknown category",
			add: func() error {
				_, err := env.svc.AddIncome(ctx, day, cash, 9999, 100, "")
				return err
			},
			wantErr: ErrCategoryNotFound,
		},
		{
			name: "unknown transfer destination",
			add: func() error {
				_, err := env.svc.AddTransfer(ctx, day, card, 9999, 100, "", nil)
				return err
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name: "unknown transfer category",
			add: func() error {
				_, err := env.svc.AddTransfer(ctx, day, card, cash, 100, "", int64Ptr(9999))
				return err
			},
			wantErr: ErrCategoryNotFound,
		},
		{
			name: "missing account",
			add: func() error {
				_, err := env.svc.AddExpense(ctx, day, 0, food, 100, "")
				return err
			},
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.add(), tt.wantErr)
		})
	}

	txns, err := env.svc.RecentTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.Zero(t, *env.notified)
}

func TestAddSavingsFlow(t *testing.T) {
	env := newTestEnv(t)
	card := env.account(t, testutil.AccountCard)
	savings := env.account(t, testutil.AccountSavings)
	vacation := env.category(t, testutil.CategoryVacation)
	food := env.category(t, testutil.CategoryFood)
	day := date(t, "2026-02-01")

	txn, err := env.svc.AddSavingsFlow(ctx, day, card, savings, vacation, 500000, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSavingsNote, txn.Note)
	assert.Equal(t, model.TransactionTypeTransfer, txn.Type())

	_, err = env.svc.AddSavingsFlow(ctx, day, card, card, vacation, 100, "")
	assert.ErrorIs(t, err, ErrSameAccount)

	_, err = env.svc.AddSavingsFlow(ctx, day, card, savings, food, 100, "")
	assert.ErrorIs(t, err, ErrNotSavingsCategory)

	txns, err := env.svc.RecentTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestEditTransaction_ChangesVariant(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	card := env.account(t, testutil.AccountCard)
	food := env.category(t, testutil.CategoryFood)

	original, err := env.svc.AddExpense(ctx, date(t, "2026-01-10"), cash, food, 1000, "lunch")
	require.NoError(t, err)

	edited, err := env.svc.EditTransaction(ctx, original.ID, model.Transaction{
		OccurredAt: date(t, "2026-01-11"),
		Amount:     2500,
		Note:       "moved",
		Body:       model.Transfer{FromAccountID: card, ToAccountID: cash},
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, edited.ID)

	got, err := env.svc.GetTransaction(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Transfer{FromAccountID: card, ToAccountID: cash}, got.Body)
	assert.Equal(t, int64(2500), got.Amount)
	assert.Equal(t, "2026-01-11", got.OccurredAt.Format(model.DateLayout))
	_, hasCategory := got.CategoryID()
	assert.False(t, hasCategory)
}

func TestEditTransaction_Errors(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	food := env.category(t, testutil.CategoryFood)

	original, err := env.svc.AddExpense(ctx, date(t, "2026-01-10"), cash, food, 1000, "")
	require.NoError(t, err)

	_, err = env.svc.EditTransaction(ctx, 9999, model.Transaction{
		OccurredAt: date(t, "2026-01-10"),
		Amount:     1,
		Body:       model.Expense{AccountID: cash, CategoryID: food},
	})
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = env.svc.EditTransaction(ctx, original.ID, model.Transaction{
		OccurredAt: date(t, "2026-01-10"),
		Amount:     0,
		Body:       model.Expense{AccountID: cash, CategoryID: food},
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.svc.EditTransaction(ctx, original.ID, model.Transaction{
		OccurredAt: date(t, "2026-01-10"),
		Amount:     10,
		Body:       model.Expense{AccountID: cash, CategoryID: 9999},
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	got, err := env.svc.GetTransaction(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Amount, "failed edits must leave the row untouched")
}

func TestEditTransaction_KeepsExternalID(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	food := env.category(t, testutil.CategoryFood)

	_, err := env.svc.ImportTransactions(ctx, []model.Transaction{{
		OccurredAt: date(t, "2026-03-03"),
		Amount:     700,
		ExternalID: "1:abc",
		Body:       model.Expense{AccountID: cash, CategoryID: food},
	}}, nil)
	require.NoError(t, err)

	txns, err := env.svc.RecentTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	_, err = env.svc.EditTransaction(ctx, txns[0].ID, model.Transaction{
		OccurredAt: date(t, "2026-03-03"),
		Amount:     800,
		Body:       model.Expense{AccountID: cash, CategoryID: food},
	})
	require.NoError(t, err)

	got, err := env.svc.GetTransaction(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "1:abc", got.ExternalID)
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	food := env.category(t, testutil.CategoryFood)

	txn, err := env.svc.AddExpense(ctx, date(t, "2026-01-10"), cash, food, 1000, "")
	require.NoError(t, err)

	ok, err := env.svc.DeleteTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.DeleteTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.svc.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Equal(t, 2, *env.notified)
}

func TestListTransactions_FilterByAccount(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	card := env.account(t, testutil.AccountCard)
	savings := env.account(t, testutil.AccountSavings)
	food := env.category(t, testutil.CategoryFood)
	day := date(t, "2026-01-10")

	transfer, err := env.svc.AddTransfer(ctx, day, cash, card, 300, "", nil)
	require.NoError(t, err)
	_, err = env.svc.AddExpense(ctx, day, savings, food, 100, "")
	require.NoError(t, err)

	for _, id := range []int64{cash, card} {
		txns, err := env.svc.ListTransactions(ctx, service.TransactionFilter{AccountID: &id})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, transfer.ID, txns[0].ID)
	}
}

func TestListTransactions_OrderAndLimit(t *testing.T) {
	env := newTestEnv(t)
	cash := env.account(t, testutil.AccountCash)
	food := env.category(t, testutil.CategoryFood)

	var ids []int64
	for _, d := range []string{"2026-01-02", "2026-01-05", "2026-01-05", "2026-01-01"} {
		txn, err := env.svc.AddExpense(ctx, date(t, d), cash, food, 100, "")
		require.NoError(t, err)
		ids = append(ids, txn.ID)
	}

	txns, err := env.svc.ListTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 4)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0], ids[3]},
		[]int64{txns[0].ID, txns[1].ID, txns[2].ID, txns[3].ID})

	txns, err = env.svc.RecentTransactions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	_, err = env.svc.ListTransactions(ctx, service.TransactionFilter{Type: "refund"})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}
