package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

const accountColumns = `id, name, kind, opening_balance, balance, currency, description, archived, created_at, updated_at`

func (s *Store) CreateAccount(account *domain.Account) (*domain.Account, error) {
	opening, err := decimalToPgNumeric(account.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid opening balance: %w", err)
	}
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		INSERT INTO accounts (name, kind, opening_balance, balance, currency, description, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+accountColumns,
		account.Name, string(account.Kind), opening, balance,
		account.Currency, nullString(account.Description), account.Archived,
	)
	created, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (s *Store) GetAccount(id int64) (*domain.Account, error) {
	row := s.q.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return account, err
}

func (s *Store) ListAccounts(includeArchived bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !includeArchived {
		query += ` WHERE NOT archived`
	}
	query += ` ORDER BY name, id`

	rows, err := s.q.Query(context.Background(), query)
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
	row := s.q.QueryRow(context.Background(), `
		UPDATE accounts SET name = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+accountColumns,
		name, nullString(description), id,
	)
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return account, err
}

func (s *Store) SetAccountArchived(id int64, archived bool) error {
	tag, err := s.q.Exec(context.Background(),
		`UPDATE accounts SET archived = $1, updated_at = now() WHERE id = $2`, archived, id)
	if err != nil {
		return fmt.Errorf("set account archived: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *Store) AdjustAccountBalance(id int64, delta decimal.Decimal) error {
	num, err := decimalToPgNumeric(delta)
	if err != nil {
		return fmt.Errorf("invalid delta: %w", err)
	}
	tag, err := s.q.Exec(context.Background(),
		`UPDATE accounts SET balance = balance + $1, updated_at = now() WHERE id = $2`, num, id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *Store) DeleteAccount(id int64) error {
	tag, err := s.q.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", mapForeignKeyErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *Store) AccountHasTransactions(id int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE account_id = $1 OR to_account_id = $1)`,
		id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account has transactions: %w", err)
	}
	return exists, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		kind    string
		opening pgtype.Numeric
		balance pgtype.Numeric
	)
	err := row.Scan(&account.ID, &account.Name, &kind, &opening, &balance,
		&account.Currency, &account.Description, &account.Archived,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	account.Kind = domain.AccountKind(kind)
	account.OpeningBalance = pgNumericToDecimal(opening)
	account.Balance = pgNumericToDecimal(balance)
	return &account, nil
}
