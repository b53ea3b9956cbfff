package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mfonseca/tally/internal/domain"
)

const categoryColumns = `id, name, kind, parent_id, color_code, created_at, updated_at`

func (s *Store) CreateCategory(category *domain.Category) (*domain.Category, error) {
	row := s.q.QueryRow(context.Background(), `
		INSERT INTO categories (name, kind, parent_id, color_code)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		category.Name, string(category.Kind), nullInt64(category.ParentID),
		nullString(category.ColorCode),
	)
	created, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

func (s *Store) GetCategory(id int64) (*domain.Category, error) {
	row := s.q.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return category, err
}

func (s *Store) ListCategories() ([]*domain.Category, error) {
	rows, err := s.q.Query(context.Background(),
		`SELECT `+categoryColumns+` FROM categories ORDER BY kind, name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	row := s.q.QueryRow(context.Background(), `
		UPDATE categories SET name = $1, kind = $2, parent_id = $3, color_code = $4, updated_at = now()
		WHERE id = $5
		RETURNING `+categoryColumns,
		category.Name, string(category.Kind), nullInt64(category.ParentID),
		nullString(category.ColorCode), category.ID,
	)
	updated, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return updated, err
}

func (s *Store) DeleteCategory(id int64) error {
	tag, err := s.q.Exec(context.Background(), `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapForeignKeyErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) CategoryHasTransactions(id int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category has transactions: %w", err)
	}
	return exists, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		category domain.Category
		kind     string
	)
	err := row.Scan(&category.ID, &category.Name, &kind, &category.ParentID,
		&category.ColorCode, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	category.Kind = domain.CategoryKind(kind)
	return &category, nil
}
