package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/model"
)

func TestSQLiteStorage_BudgetOperations(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	food := mustCreateCategory(t, store, model.CategoryKindExpense, "Food", "food")
	fun := mustCreateCategory(t, store, model.CategoryKindExpense, "Fun", "fun")
	march := day(t, "2026-03-01")
	april := day(t, "2026-04-01")

	first := &model.Budget{MonthStart: march, CategoryID: food.ID, Limit: 2000000}
	require.NoError(t, store.CreateBudget(ctx, first))
	second := &model.Budget{MonthStart: march, CategoryID: fun.ID, Limit: 500000}
	require.NoError(t, store.CreateBudget(ctx, second))
	require.NoError(t, store.CreateBudget(ctx, &model.Budget{MonthStart: april, CategoryID: food.ID, Limit: 1}))

	got, err := store.GetBudgetForMonth(ctx, march, food.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, int64(2000000), got.Limit)
	assert.True(t, got.MonthStart.Equal(march))

	_, err = store.GetBudgetForMonth(ctx, april, fun.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Duplicate (month, category) is rejected by the schema.
	err = store.CreateBudget(ctx, &model.Budget{MonthStart: march, CategoryID: food.ID, Limit: 5})
	assert.ErrorIs(t, err, ErrConstraint)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.UpdateBudgetLimit(ctx, first.ID, 2500000))
	got, err = store.GetBudgetForMonth(ctx, march, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), got.Limit)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt), "updated_at should move forward")

	assert.ErrorIs(t, store.UpdateBudgetLimit(ctx, 999, 1), common.ErrNotFound)

	budgets, err := store.ListBudgets(ctx, march)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, second.ID, budgets[0].ID, "budgets are listed newest first")
	assert.Equal(t, first.ID, budgets[1].ID)

	ok, err := store.DeleteBudget(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DeleteBudget(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	budgets, err = store.ListBudgets(ctx, march)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}

func TestSQLiteStorage_CreateBudgetValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	food := mustCreateCategory(t, store, model.CategoryKindExpense, "Food", "food")

	err := store.CreateBudget(ctx, &model.Budget{MonthStart: day(t, "2026-03-15"), CategoryID: food.ID, Limit: 1})
	assert.ErrorIs(t, err, ErrInvalidBudget)

	err = store.CreateBudget(ctx, &model.Budget{MonthStart: day(t, "2026-03-01"), Limit: 1})
	assert.ErrorIs(t, err, ErrInvalidBudget)

	err = store.CreateBudget(ctx, &model.Budget{MonthStart: day(t, "2026-03-01"), CategoryID: 777, Limit: 1})
	assert.ErrorIs(t, err, ErrConstraint)
}
