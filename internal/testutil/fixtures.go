package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
	"github.com/Veraticus/kopeck/internal/slug"
)

// Standard fixture names.
const (
	AccountCash    = "Наличные"
	AccountCard    = "Карта"
	AccountSavings = "Накопления"

	CategoryFood     = "Food"
	CategoryRent     = "Rent"
	CategorySalary   = "Salary"
	CategoryVacation = "Vacation"
)

// Fixture holds the entities created by a Builder, keyed by name.
type Fixture struct {
	Accounts   map[string]model.Account
	Categories map[string]model.Category
}

// Account returns the seeded account with the given name or fails the test.
func (f *Fixture) Account(t *testing.T, name string) model.Account {
	t.Helper()
	acc, ok := f.Accounts[name]
	if !ok {
		t.Fatalf("account %q not found in fixture", name)
	}
	return acc
}

// Category returns the seeded category with the given name or fails the test.
func (f *Fixture) Category(t *testing.T, name string) model.Category {
	t.Helper()
	cat, ok := f.Categories[name]
	if !ok {
		t.Fatalf("category %q not found in fixture", name)
	}
	return cat
}

// Builder provides a fluent interface for seeding accounts and categories.
type Builder struct {
	t          *testing.T
	accounts   []model.Account
	categories []model.Category
}

// NewBuilder creates an empty fixture builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithAccount adds an active account.
func (b *Builder) WithAccount(name string, accountType model.AccountType) *Builder {
	b.accounts = append(b.accounts, model.Account{Name: name, Type: accountType, IsActive: true})
	return b
}

// WithCategory adds a category whose slug is derived from its name.
func (b *Builder) WithCategory(kind model.CategoryKind, name string) *Builder {
	b.categories = append(b.categories, model.Category{Kind: kind, Name: name, Slug: slug.Make(name)})
	return b
}

// WithStandard adds three accounts and one category of each kind plus rent.
func (b *Builder) WithStandard() *Builder {
	return b.
		WithAccount(AccountCash, model.AccountTypeCash).
		WithAccount(AccountCard, model.AccountTypeBank).
		WithAccount(AccountSavings, model.AccountTypeSavings).
		WithCategory(model.CategoryKindExpense, CategoryFood).
		WithCategory(model.CategoryKindExpense, CategoryRent).
		WithCategory(model.CategoryKindIncome, CategorySalary).
		WithCategory(model.CategoryKindSavings, CategoryVacation)
}

// Build inserts everything into store.
func (b *Builder) Build(ctx context.Context, store service.Storage) (*Fixture, error) {
	fx := &Fixture{
		Accounts:   make(map[string]model.Account, len(b.accounts)),
		Categories: make(map[string]model.Category, len(b.categories)),
	}

	for _, acc := range b.accounts {
		if err := store.CreateAccount(ctx, &acc); err != nil {
			return nil, fmt.Errorf("failed to seed account %q: %w", acc.Name, err)
		}
		fx.Accounts[acc.Name] = acc
	}

	for _, cat := range b.categories {
		if err := store.CreateCategory(ctx, &cat); err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
		}
		fx.Categories[cat.Name] = cat
	}
	return fx, nil
}

// MustBuild is Build that fails the test on error.
func (b *Builder) MustBuild(store service.Storage) *Fixture {
	b.t.Helper()
	fx, err := b.Build(context.Background(), store)
	if err != nil {
		b.t.Fatalf("failed to build fixture: %v", err)
	}
	return fx
}
