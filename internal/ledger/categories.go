package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
	"github.com/Veraticus/kopeck/internal/slug"
)

// NewCategory describes a category to create. Kind defaults to expense and
// Slug to one derived from Name.
type NewCategory struct {
	ParentID *int64
	Kind     model.CategoryKind
	Name     string
	Slug     string
}

// CreateCategory inserts a category with a slug that is unique across all
// categories. When the requested slug is taken, -2, -3 and so on are
// appended until a free one is found.
func (s *Service) CreateCategory(ctx context.Context, req NewCategory) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category", ErrEmptyName)
	}
	kind := req.Kind
	if kind == "" {
		kind = model.CategoryKindExpense
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	base := strings.TrimSpace(req.Slug)
	if base == "" {
		base = slug.Make(name)
	}

	var category *model.Category
	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		if req.ParentID != nil {
			if _, err := requireCategory(ctx, tx, *req.ParentID); err != nil {
				return false, fmt.Errorf("parent: %w", err)
			}
		}

		unique, err := uniqueSlug(ctx, tx, base)
		if err != nil {
			return false, err
		}

		category = &model.Category{
			Kind:     kind,
			Name:     name,
			Slug:     unique,
			ParentID: req.ParentID,
		}
		if err := tx.CreateCategory(ctx, category); err != nil {
			return false, err
		}
		slog.Info("Created category", "id", category.ID, "kind", kind, "slug", unique)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func uniqueSlug(ctx context.Context, tx service.Transaction, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		exists, err := tx.CategorySlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// GetCategory returns the category with the given id.
func (s *Service) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var category *model.Category
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		category, err = requireCategory(ctx, tx, id)
		return err
	})
	return category, err
}

// ListCategories returns every category, newest first.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.listCategories(ctx, "")
}

// ListCategoriesByKind returns the categories of one kind, newest first.
func (s *Service) ListCategoriesByKind(ctx context.Context, kind model.CategoryKind) ([]model.Category, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return s.listCategories(ctx, kind)
}

func (s *Service) listCategories(ctx context.Context, kind model.CategoryKind) ([]model.Category, error) {
	var categories []model.Category
	err := s.withTx(ctx, func(tx service.Transaction) error {
		var err error
		categories, err = tx.ListCategories(ctx, kind)
		return err
	})
	return categories, err
}

// requireCategory resolves id or fails with ErrCategoryNotFound.
func requireCategory(ctx context.Context, tx service.Transaction, id int64) (*model.Category, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	category, err := tx.GetCategory(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}
