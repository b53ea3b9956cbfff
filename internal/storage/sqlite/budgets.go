package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

const budgetColumns = `id, category_id, amount, start_date, end_date, created_at, updated_at`

func (s *Store) CreateBudget(budget *domain.Budget) (*domain.Budget, error) {
	now := time.Now().UTC()
	res, err := s.q.Exec(`
		INSERT INTO budgets (category_id, amount, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		budget.CategoryID, budget.Amount.String(), fmtDate(budget.StartDate),
		fmtDate(budget.EndDate), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("budget insert id: %w", err)
	}
	return s.GetBudget(id)
}

func (s *Store) GetBudget(id int64) (*domain.Budget, error) {
	row := s.q.QueryRow(`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, err
}

func (s *Store) ListBudgets() ([]*domain.Budget, error) {
	rows, err := s.q.Query(`SELECT ` + budgetColumns + ` FROM budgets ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func (s *Store) DeleteBudget(id int64) error {
	res, err := s.q.Exec(`DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res, domain.ErrBudgetNotFound)
}

func (s *Store) BudgetExistsForCategory(categoryID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS (SELECT 1 FROM budgets WHERE category_id = ?)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("budget exists for category: %w", err)
	}
	return exists, nil
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var (
		budget    domain.Budget
		amount    string
		startDate string
		endDate   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&budget.ID, &budget.CategoryID, &amount, &startDate, &endDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if budget.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse budget amount: %w", err)
	}
	if budget.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	if budget.EndDate, err = parseDate(endDate); err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}
	if budget.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if budget.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &budget, nil
}
