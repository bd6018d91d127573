package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/testutil"
)

func TestCreateCategory_SlugSuffixes(t *testing.T) {
	svc := New(testutil.NewStore(t), nil)

	var slugs []string
	for i := 0; i < 3; i++ {
		category, err := svc.CreateCategory(ctx, NewCategory{Name: "Food"})
		require.NoError(t, err)
		slugs = append(slugs, category.Slug)
	}

	assert.Equal(t, []string{"food", "food-2", "food-3"}, slugs)
}

func TestCreateCategory_SlugUniqueAcrossKinds(t *testing.T) {
	svc := New(testutil.NewStore(t), nil)

	expense, err := svc.CreateCategory(ctx, NewCategory{Kind: model.CategoryKindExpense, Name: "Бонусы"})
	require.NoError(t, err)
	income, err := svc.CreateCategory(ctx, NewCategory{Kind: model.CategoryKindIncome, Name: "Бонусы"})
	require.NoError(t, err)

	assert.Equal(t, "bonusy", expense.Slug)
	assert.Equal(t, "bonusy-2", income.Slug)
}

func TestCreateCategory_ExplicitSlug(t *testing.T) {
	svc := New(testutil.NewStore(t), nil)

	first, err := svc.CreateCategory(ctx, NewCategory{Name: "Groceries", Slug: "food"})
	require.NoError(t, err)
	second, err := svc.CreateCategory(ctx, NewCategory{Name: "Food"})
	require.NoError(t, err)

	assert.Equal(t, "food", first.Slug)
	assert.Equal(t, "food-2", second.Slug)
}

func TestCreateCategory_Validation(t *testing.T) {
	svc := New(testutil.NewStore(t), nil)
	notified := 0
	svc.Notifier().Subscribe(func() { notified++ })

	_, err := svc.CreateCategory(ctx, NewCategory{Name: ""})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.CreateCategory(ctx, NewCategory{Name: "Gifts", Kind: "loan"})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.CreateCategory(ctx, NewCategory{Name: "Child", ParentID: int64Ptr(404)})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, notified)
}

func TestCreateCategory_DefaultsAndParent(t *testing.T) {
	svc := New(testutil.NewStore(t), nil)

	parent, err := svc.CreateCategory(ctx, NewCategory{Name: "Дом"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryKindExpense, parent.Kind)

	child, err := svc.CreateCategory(ctx, NewCategory{Name: "Ремонт", ParentID: &parent.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	got, err := svc.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "remont", got.Slug)
}

func TestListCategoriesByKind(t *testing.T) {
	env := newTestEnv(t)

	expenses, err := env.svc.ListCategoriesByKind(ctx, model.CategoryKindExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, testutil.CategoryRent, expenses[0].Name)

	_, err = env.svc.ListCategoriesByKind(ctx, "other")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = env.svc.GetCategory(ctx, 9999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
