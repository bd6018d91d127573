package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/model"
)

const categoryColumns = `id, kind, name, slug, parent_id, created_at`

// CreateCategory inserts a new category and fills in its ID. The slug must
// not be taken yet.
func (s *queries) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	query := `
		INSERT INTO categories (kind, name, slug, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, query,
		category.Kind, category.Name, category.Slug, nullableID(category.ParentID), now)
	if err != nil {
		return wrapWriteError("create category", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}

	category.ID = id
	category.CreatedAt = now
	slog.Info("created new category", "name", category.Name, "slug", category.Slug, "id", id)
	return nil
}

// GetCategory returns the category with the given ID, or common.ErrNotFound.
func (s *queries) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// CategorySlugExists reports whether any category already uses slug.
func (s *queries) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ?)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

// ListCategories returns categories of the given kind, or all categories
// when kind is empty, newest first.
func (s *queries) ListCategories(ctx context.Context, kind model.CategoryKind) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "kind", kind)
	return categories, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		category model.Category
		parentID sql.NullInt64
	)
	if err := row.Scan(&category.ID, &category.Kind, &category.Name, &category.Slug, &parentID, &category.CreatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		category.ParentID = &parentID.Int64
	}
	return &category, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
