package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

const transactionColumns = `id, reference, type, amount, txn_date, description, tags, account_id, to_account_id, category_id, recurring_id, created_at, updated_at`

func (s *Store) CreateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		INSERT INTO transactions (reference, type, amount, txn_date, description, tags, account_id, to_account_id, category_id, recurring_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		transaction.Reference, string(transaction.Type), amount, transaction.Date,
		transaction.Description, domain.JoinTags(transaction.Tags), transaction.AccountID,
		nullInt64(transaction.ToAccountID), nullInt64(transaction.CategoryID),
		nullInt64(transaction.RecurringID),
	)
	created, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return created, nil
}

func (s *Store) GetTransaction(id int64) (*domain.Transaction, error) {
	row := s.q.QueryRow(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, err
}

func (s *Store) UpdateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := s.q.QueryRow(context.Background(), `
		UPDATE transactions
		SET type = $1, amount = $2, txn_date = $3, description = $4, tags = $5,
		    account_id = $6, to_account_id = $7, category_id = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+transactionColumns,
		string(transaction.Type), amount, transaction.Date, transaction.Description,
		domain.JoinTags(transaction.Tags), transaction.AccountID,
		nullInt64(transaction.ToAccountID), nullInt64(transaction.CategoryID),
		transaction.ID,
	)
	updated, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return updated, err
}

func (s *Store) DeleteTransaction(id int64) error {
	tag, err := s.q.Exec(context.Background(), `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) ListTransactions(filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE TRUE`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.AccountID != nil {
			p := arg(*filter.AccountID)
			query += ` AND (account_id = ` + p + ` OR to_account_id = ` + p + `)`
		}
		if filter.CategoryID != nil {
			query += ` AND category_id = ` + arg(*filter.CategoryID)
		}
		if filter.Type != nil {
			query += ` AND type = ` + arg(string(*filter.Type))
		}
		if filter.StartDate != nil {
			query += ` AND txn_date >= ` + arg(*filter.StartDate)
		}
		if filter.EndDate != nil {
			query += ` AND txn_date < ` + arg(*filter.EndDate)
		}
	}

	query += ` ORDER BY txn_date DESC, id DESC`
	if filter != nil && filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := s.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (s *Store) SumByTypeAndDateRange(start, end time.Time, transactionType domain.TransactionType) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := s.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE type = $1 AND txn_date >= $2 AND txn_date < $3`,
		string(transactionType), start, end).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum by type: %w", err)
	}
	return pgNumericToDecimal(sum), nil
}

func (s *Store) ExpenseTotalsByCategory(start, end time.Time) ([]*domain.CategoryTotal, error) {
	rows, err := s.q.Query(context.Background(), `
		SELECT c.id, c.name, SUM(t.amount)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = 'expense' AND t.txn_date >= $1 AND t.txn_date < $2
		GROUP BY c.id, c.name
		ORDER BY c.id`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	var totals []*domain.CategoryTotal
	for rows.Next() {
		var (
			total domain.CategoryTotal
			sum   pgtype.Numeric
		)
		if err := rows.Scan(&total.CategoryID, &total.Name, &sum); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		total.Total = pgNumericToDecimal(sum)
		totals = append(totals, &total)
	}
	return totals, rows.Err()
}

func (s *Store) SumExpensesByCategory(categoryID int64, start, end time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := s.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE type = 'expense' AND category_id = $1 AND txn_date >= $2 AND txn_date < $3`,
		categoryID, start, end).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses by category: %w", err)
	}
	return pgNumericToDecimal(sum), nil
}

func (s *Store) AccountEffectTotals(accountID int64) (*domain.EffectTotals, error) {
	var income, expense, in, out pgtype.Numeric
	err := s.q.QueryRow(context.Background(), `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income' AND account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'transfer' AND to_account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'transfer' AND account_id = $1), 0)
		FROM transactions
		WHERE account_id = $1 OR to_account_id = $1`,
		accountID).Scan(&income, &expense, &in, &out)
	if err != nil {
		return nil, fmt.Errorf("account effect totals: %w", err)
	}
	return &domain.EffectTotals{
		Income:       pgNumericToDecimal(income),
		Expense:      pgNumericToDecimal(expense),
		TransfersIn:  pgNumericToDecimal(in),
		TransfersOut: pgNumericToDecimal(out),
	}, nil
}

func (s *Store) SumNetEffectBefore(day time.Time) (decimal.Decimal, error) {
	var net pgtype.Numeric
	err := s.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE txn_date < $1 AND type IN ('income', 'expense')`,
		day).Scan(&net)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum net effect before: %w", err)
	}
	return pgNumericToDecimal(net), nil
}

func (s *Store) DailyNetEffects(start, end time.Time) ([]*domain.DailyNet, error) {
	rows, err := s.q.Query(context.Background(), `
		SELECT txn_date, SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END)
		FROM transactions
		WHERE txn_date >= $1 AND txn_date < $2 AND type IN ('income', 'expense')
		GROUP BY txn_date
		ORDER BY txn_date`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("daily net effects: %w", err)
	}
	defer rows.Close()

	var effects []*domain.DailyNet
	for rows.Next() {
		var (
			effect domain.DailyNet
			net    pgtype.Numeric
		)
		if err := rows.Scan(&effect.Day, &net); err != nil {
			return nil, fmt.Errorf("scan daily net: %w", err)
		}
		effect.Net = pgNumericToDecimal(net)
		effects = append(effects, &effect)
	}
	return effects, rows.Err()
}

func (s *Store) RecurringTransactionExists(recurringID int64, year int, month time.Month) (bool, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var exists bool
	err := s.q.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE recurring_id = $1 AND txn_date >= $2 AND txn_date < $3
		)`,
		recurringID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring transaction exists: %w", err)
	}
	return exists, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		transaction domain.Transaction
		txType      string
		amount      pgtype.Numeric
		tags        string
	)
	err := row.Scan(&transaction.ID, &transaction.Reference, &txType, &amount,
		&transaction.Date, &transaction.Description, &tags, &transaction.AccountID,
		&transaction.ToAccountID, &transaction.CategoryID, &transaction.RecurringID,
		&transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return nil, err
	}
	transaction.Type = domain.TransactionType(txType)
	transaction.Amount = pgNumericToDecimal(amount)
	transaction.Tags = domain.SplitTags(tags)
	return &transaction, nil
}
