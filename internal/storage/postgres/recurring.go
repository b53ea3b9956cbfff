package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfonseca/tally/internal/domain"
)

const recurringColumns = `id, name, amount, type, account_id, category_id, frequency, due_day, active, created_at, updated_at`

func (s *Store) CreateRecurring(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	amount, err := decimalToPgNumeric(rt.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		INSERT INTO recurring_transactions (name, amount, type, account_id, category_id, frequency, due_day, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+recurringColumns,
		rt.Name, amount, string(rt.Type), rt.AccountID, nullInt64(rt.CategoryID),
		string(rt.Frequency), rt.DueDay, rt.Active,
	)
	created, err := scanRecurring(row)
	if err != nil {
		return nil, fmt.Errorf("insert recurring transaction: %w", err)
	}
	return created, nil
}

func (s *Store) GetRecurring(id int64) (*domain.RecurringTransaction, error) {
	row := s.q.QueryRow(context.Background(),
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1`, id)
	rt, err := scanRecurring(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecurringNotFound
	}
	return rt, err
}

func (s *Store) ListRecurring(activeOnly bool) ([]*domain.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name, id`

	rows, err := s.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var recurring []*domain.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		recurring = append(recurring, rt)
	}
	return recurring, rows.Err()
}

func (s *Store) UpdateRecurring(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	amount, err := decimalToPgNumeric(rt.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		UPDATE recurring_transactions
		SET name = $1, amount = $2, type = $3, account_id = $4, category_id = $5,
		    frequency = $6, due_day = $7, active = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+recurringColumns,
		rt.Name, amount, string(rt.Type), rt.AccountID, nullInt64(rt.CategoryID),
		string(rt.Frequency), rt.DueDay, rt.Active, rt.ID,
	)
	updated, err := scanRecurring(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecurringNotFound
	}
	return updated, err
}

func (s *Store) DeleteRecurring(id int64) error {
	tag, err := s.q.Exec(context.Background(), `DELETE FROM recurring_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecurringNotFound
	}
	return nil
}

func (s *Store) RecurringExistsForAccount(accountID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM recurring_transactions WHERE account_id = $1)`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring exists for account: %w", err)
	}
	return exists, nil
}

func (s *Store) RecurringExistsForCategory(categoryID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM recurring_transactions WHERE category_id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring exists for category: %w", err)
	}
	return exists, nil
}

func scanRecurring(row pgx.Row) (*domain.RecurringTransaction, error) {
	var (
		rt        domain.RecurringTransaction
		amount    pgtype.Numeric
		txType    string
		frequency string
	)
	err := row.Scan(&rt.ID, &rt.Name, &amount, &txType, &rt.AccountID, &rt.CategoryID,
		&frequency, &rt.DueDay, &rt.Active, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt.Amount = pgNumericToDecimal(amount)
	rt.Type = domain.TransactionType(txType)
	rt.Frequency = domain.Frequency(frequency)
	return &rt, nil
}
