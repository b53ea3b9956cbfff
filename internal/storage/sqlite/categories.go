package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

const categoryColumns = `id, name, kind, parent_id, color_code, created_at, updated_at`

func (s *Store) CreateCategory(category *domain.Category) (*domain.Category, error) {
	now := time.Now().UTC()
	res, err := s.q.Exec(`
		INSERT INTO categories (name, kind, parent_id, color_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.Name, string(category.Kind), nullInt64(category.ParentID),
		nullString(category.ColorCode), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category insert id: %w", err)
	}
	return s.GetCategory(id)
}

func (s *Store) GetCategory(id int64) (*domain.Category, error) {
	row := s.q.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return category, err
}

func (s *Store) ListCategories() ([]*domain.Category, error) {
	rows, err := s.q.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY kind, name, id`)
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
	res, err := s.q.Exec(`
		UPDATE categories SET name = ?, kind = ?, parent_id = ?, color_code = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, string(category.Kind), nullInt64(category.ParentID),
		nullString(category.ColorCode), fmtTime(time.Now().UTC()), category.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if err := requireAffected(res, domain.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return s.GetCategory(category.ID)
}

func (s *Store) DeleteCategory(id int64) error {
	res, err := s.q.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapForeignKeyErr(err))
	}
	return requireAffected(res, domain.ErrCategoryNotFound)
}

func (s *Store) CategoryHasTransactions(id int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category has transactions: %w", err)
	}
	return exists, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category  domain.Category
		kind      string
		parentID  sql.NullInt64
		colorCode sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&category.ID, &category.Name, &kind, &parentID, &colorCode, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	category.Kind = domain.CategoryKind(kind)
	if parentID.Valid {
		category.ParentID = &parentID.Int64
	}
	if colorCode.Valid {
		category.ColorCode = &colorCode.String
	}
	if category.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if category.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &category, nil
}
