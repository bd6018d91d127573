package model

import (
	"errors"
	"testing"
	"time"
)

func int64Ptr(v int64) *int64 { return &v }

func TestTransaction_Validate(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		txn     Transaction
		wantErr bool
	}{
		{
			name:    "valid expense",
			txn:     Transaction{OccurredAt: day, Amount: 1500, Body: Expense{AccountID: 1, CategoryID: 2}},
			wantErr: false,
		},
		{
			name:    "valid income",
			txn:     Transaction{OccurredAt: day, Amount: 1, Body: Income{AccountID: 1, CategoryID: 3}},
			wantErr: false,
		},
		{
			name:    "valid transfer without category",
			txn:     Transaction{OccurredAt: day, Amount: 100, Body: Transfer{FromAccountID: 1, ToAccountID: 2}},
			wantErr: false,
		},
		{
			name:    "valid transfer with category",
			txn:     Transaction{OccurredAt: day, Amount: 100, Body: Transfer{FromAccountID: 1, ToAccountID: 2, CategoryID: int64Ptr(4)}},
			wantErr: false,
		},
		{
			name:    "zero amount",
			txn:     Transaction{OccurredAt: day, Amount: 0, Body: Expense{AccountID: 1, CategoryID: 2}},
			wantErr: true,
		},
		{
			name:    "negative amount",
			txn:     Transaction{OccurredAt: day, Amount: -5, Body: Income{AccountID: 1, CategoryID: 2}},
			wantErr: true,
		},
		{
			name:    "missing body",
			txn:     Transaction{OccurredAt: day, Amount: 5},
			wantErr: true,
		},
		{
			name:    "missing date",
			txn:     Transaction{Amount: 5, Body: Expense{AccountID: 1, CategoryID: 2}},
			wantErr: true,
		},
		{
			name:    "expense without category",
			txn:     Transaction{OccurredAt: day, Amount: 5, Body: Expense{AccountID: 1}},
			wantErr: true,
		},
		{
			name:    "income without account",
			txn:     Transaction{OccurredAt: day, Amount: 5, Body: Income{CategoryID: 1}},
			wantErr: true,
		},
		{
			name:    "transfer missing destination",
			txn:     Transaction{OccurredAt: day, Amount: 5, Body: Transfer{FromAccountID: 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("Validate() error = %v, want ErrInvalidTransaction", err)
			}
		})
	}
}

func TestTransaction_CategoryAndAccounts(t *testing.T) {
	expense := Transaction{Body: Expense{AccountID: 7, CategoryID: 9}}
	if id, ok := expense.CategoryID(); !ok || id != 9 {
		t.Errorf("CategoryID() = %d, %v; want 9, true", id, ok)
	}
	if got := expense.AccountIDs(); len(got) != 1 || got[0] != 7 {
		t.Errorf("AccountIDs() = %v, want [7]", got)
	}

	transfer := Transaction{Body: Transfer{FromAccountID: 1, ToAccountID: 2}}
	if _, ok := transfer.CategoryID(); ok {
		t.Error("untagged transfer should have no category")
	}
	if got := transfer.AccountIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("AccountIDs() = %v, want [1 2]", got)
	}
	if transfer.Type() != TransactionTypeTransfer {
		t.Errorf("Type() = %q", transfer.Type())
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		in        time.Time
		wantStart string
		wantEnd   string
	}{
		{time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC), "2026-01-01", "2026-01-31"},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "2026-02-01", "2026-02-28"},
		{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), "2026-12-01", "2026-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.wantStart, func(t *testing.T) {
			if got := MonthStart(tt.in).Format(DateLayout); got != tt.wantStart {
				t.Errorf("MonthStart() = %s, want %s", got, tt.wantStart)
			}
			if got := MonthEnd(tt.in).Format(DateLayout); got != tt.wantEnd {
				t.Errorf("MonthEnd() = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2026-07")
	if err != nil {
		t.Fatalf("ParseMonth() error = %v", err)
	}
	if !IsMonthStart(got) || got.Month() != time.July {
		t.Errorf("ParseMonth() = %v", got)
	}
	if _, err := ParseMonth("2026-13"); err == nil {
		t.Error("expected error for invalid month")
	}
	if _, err := ParseDate("14.03.2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestAccountTypeAndKindValid(t *testing.T) {
	for _, at := range AccountTypes {
		if !at.Valid() {
			t.Errorf("%q should be valid", at)
		}
	}
	if AccountType("crypto").Valid() {
		t.Error("unknown account type should be invalid")
	}
	for _, k := range CategoryKinds {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if CategoryKind("transfer").Valid() {
		t.Error("transfer is not a category kind")
	}
}
