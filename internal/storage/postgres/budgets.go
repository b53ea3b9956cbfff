package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfonseca/tally/internal/domain"
)

const budgetColumns = `id, category_id, amount, start_date, end_date, created_at, updated_at`

func (s *Store) CreateBudget(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		INSERT INTO budgets (category_id, amount, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetColumns,
		budget.CategoryID, amount, budget.StartDate, budget.EndDate,
	)
	created, err := scanBudget(row)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return created, nil
}

func (s *Store) GetBudget(id int64) (*domain.Budget, error) {
	row := s.q.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
	budget, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, err
}

func (s *Store) ListBudgets() ([]*domain.Budget, error) {
	rows, err := s.q.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets ORDER BY start_date, id`)
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
	tag, err := s.q.Exec(context.Background(), `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func (s *Store) BudgetExistsForCategory(categoryID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE category_id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("budget exists for category: %w", err)
	}
	return exists, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget domain.Budget
		amount pgtype.Numeric
	)
	err := row.Scan(&budget.ID, &budget.CategoryID, &amount,
		&budget.StartDate, &budget.EndDate, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, err
	}
	budget.Amount = pgNumericToDecimal(amount)
	return &budget, nil
}
