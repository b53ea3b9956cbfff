package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

const recurringColumns = `id, name, amount, type, account_id, category_id, frequency, due_day, active, created_at, updated_at`

func (s *Store) CreateRecurring(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	now := time.Now().UTC()
	res, err := s.q.Exec(`
		INSERT INTO recurring_transactions (name, amount, type, account_id, category_id, frequency, due_day, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.Name, rt.Amount.String(), string(rt.Type), rt.AccountID, nullInt64(rt.CategoryID),
		string(rt.Frequency), rt.DueDay, rt.Active, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recurring transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("recurring insert id: %w", err)
	}
	return s.GetRecurring(id)
}

func (s *Store) GetRecurring(id int64) (*domain.RecurringTransaction, error) {
	row := s.q.QueryRow(`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)
	rt, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecurringNotFound
	}
	return rt, err
}

func (s *Store) ListRecurring(activeOnly bool) ([]*domain.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := s.q.Query(query)
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
	res, err := s.q.Exec(`
		UPDATE recurring_transactions
		SET name = ?, amount = ?, type = ?, account_id = ?, category_id = ?,
		    frequency = ?, due_day = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		rt.Name, rt.Amount.String(), string(rt.Type), rt.AccountID, nullInt64(rt.CategoryID),
		string(rt.Frequency), rt.DueDay, rt.Active, fmtTime(time.Now().UTC()), rt.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recurring transaction: %w", err)
	}
	if err := requireAffected(res, domain.ErrRecurringNotFound); err != nil {
		return nil, err
	}
	return s.GetRecurring(rt.ID)
}

func (s *Store) DeleteRecurring(id int64) error {
	res, err := s.q.Exec(`DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return requireAffected(res, domain.ErrRecurringNotFound)
}

func (s *Store) RecurringExistsForAccount(accountID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS (SELECT 1 FROM recurring_transactions WHERE account_id = ?)`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring exists for account: %w", err)
	}
	return exists, nil
}

func (s *Store) RecurringExistsForCategory(categoryID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS (SELECT 1 FROM recurring_transactions WHERE category_id = ?)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring exists for category: %w", err)
	}
	return exists, nil
}

func scanRecurring(row rowScanner) (*domain.RecurringTransaction, error) {
	var (
		rt         domain.RecurringTransaction
		amount     string
		txType     string
		categoryID sql.NullInt64
		frequency  string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&rt.ID, &rt.Name, &amount, &txType, &rt.AccountID, &categoryID,
		&frequency, &rt.DueDay, &rt.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if rt.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse recurring amount: %w", err)
	}
	rt.Type = domain.TransactionType(txType)
	if categoryID.Valid {
		rt.CategoryID = &categoryID.Int64
	}
	rt.Frequency = domain.Frequency(frequency)
	if rt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rt.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &rt, nil
}
