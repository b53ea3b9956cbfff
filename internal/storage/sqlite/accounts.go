package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

const accountColumns = `id, name, kind, opening_balance, balance, currency, description, archived, created_at, updated_at`

func (s *Store) CreateAccount(account *domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	res, err := s.q.Exec(`
		INSERT INTO accounts (name, kind, opening_balance, balance, currency, description, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Name, string(account.Kind), account.OpeningBalance.String(), account.Balance.String(),
		account.Currency, nullString(account.Description), account.Archived, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("account insert id: %w", err)
	}
	return s.GetAccount(id)
}

func (s *Store) GetAccount(id int64) (*domain.Account, error) {
	row := s.q.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return account, err
}

func (s *Store) ListAccounts(includeArchived bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name, id`

	rows, err := s.q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(id int64, name string, description *string) (*domain.Account, error) {
	res, err := s.q.Exec(`UPDATE accounts SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, nullString(description), fmtTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if err := requireAffected(res, domain.ErrAccountNotFound); err != nil {
		return nil, err
	}
	return s.GetAccount(id)
}

func (s *Store) SetAccountArchived(id int64, archived bool) error {
	res, err := s.q.Exec(`UPDATE accounts SET archived = ?, updated_at = ? WHERE id = ?`,
		archived, fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("set account archived: %w", err)
	}
	return requireAffected(res, domain.ErrAccountNotFound)
}

func (s *Store) AdjustAccountBalance(id int64, delta decimal.Decimal) error {
	account, err := s.GetAccount(id)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		account.Balance.Add(delta).String(), fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccount(id int64) error {
	res, err := s.q.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", mapForeignKeyErr(err))
	}
	return requireAffected(res, domain.ErrAccountNotFound)
}

func (s *Store) AccountHasTransactions(id int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS (SELECT 1 FROM transactions WHERE account_id = ? OR to_account_id = ?)`,
		id, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account has transactions: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account     domain.Account
		kind        string
		opening     string
		balance     string
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&account.ID, &account.Name, &kind, &opening, &balance,
		&account.Currency, &description, &account.Archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	account.Kind = domain.AccountKind(kind)
	if account.OpeningBalance, err = parseDecimal(opening); err != nil {
		return nil, fmt.Errorf("parse opening balance: %w", err)
	}
	if account.Balance, err = parseDecimal(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if description.Valid {
		account.Description = &description.String
	}
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if account.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &account, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
