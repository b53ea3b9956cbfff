package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

const transactionColumns = `id, reference, type, amount, txn_date, description, tags, account_id, to_account_id, category_id, recurring_id, created_at, updated_at`

func (s *Store) CreateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	now := time.Now().UTC()
	res, err := s.q.Exec(`
		INSERT INTO transactions (reference, type, amount, txn_date, description, tags, account_id, to_account_id, category_id, recurring_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.Reference.String(), string(transaction.Type), transaction.Amount.String(),
		fmtDate(transaction.Date), transaction.Description, domain.JoinTags(transaction.Tags),
		transaction.AccountID, nullInt64(transaction.ToAccountID), nullInt64(transaction.CategoryID),
		nullInt64(transaction.RecurringID), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction insert id: %w", err)
	}
	return s.GetTransaction(id)
}

func (s *Store) GetTransaction(id int64) (*domain.Transaction, error) {
	row := s.q.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	transaction, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, err
}

func (s *Store) UpdateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	res, err := s.q.Exec(`
		UPDATE transactions
		SET type = ?, amount = ?, txn_date = ?, description = ?, tags = ?,
		    account_id = ?, to_account_id = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		string(transaction.Type), transaction.Amount.String(), fmtDate(transaction.Date),
		transaction.Description, domain.JoinTags(transaction.Tags), transaction.AccountID,
		nullInt64(transaction.ToAccountID), nullInt64(transaction.CategoryID),
		fmtTime(time.Now().UTC()), transaction.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireAffected(res, domain.ErrTransactionNotFound); err != nil {
		return nil, err
	}
	return s.GetTransaction(transaction.ID)
}

func (s *Store) DeleteTransaction(id int64) error {
	res, err := s.q.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, domain.ErrTransactionNotFound)
}

func (s *Store) ListTransactions(filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1 = 1`
	var args []any

	if filter != nil {
		if filter.AccountID != nil {
			query += ` AND (account_id = ? OR to_account_id = ?)`
			args = append(args, *filter.AccountID, *filter.AccountID)
		}
		if filter.CategoryID != nil {
			query += ` AND category_id = ?`
			args = append(args, *filter.CategoryID)
		}
		if filter.Type != nil {
			query += ` AND type = ?`
			args = append(args, string(*filter.Type))
		}
		if filter.StartDate != nil {
			query += ` AND txn_date >= ?`
			args = append(args, fmtDate(*filter.StartDate))
		}
		if filter.EndDate != nil {
			query += ` AND txn_date < ?`
			args = append(args, fmtDate(*filter.EndDate))
		}
	}

	query += ` ORDER BY txn_date DESC, id DESC`
	if filter != nil && filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.q.Query(query, args...)
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
	rows, err := s.q.Query(`
		SELECT amount FROM transactions
		WHERE type = ? AND txn_date >= ? AND txn_date < ?`,
		string(transactionType), fmtDate(start), fmtDate(end))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()
	return sumAmounts(rows)
}

func (s *Store) ExpenseTotalsByCategory(start, end time.Time) ([]*domain.CategoryTotal, error) {
	rows, err := s.q.Query(`
		SELECT c.id, c.name, t.amount
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = 'expense' AND t.txn_date >= ? AND t.txn_date < ?
		ORDER BY c.id`,
		fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	totalsByID := map[int64]*domain.CategoryTotal{}
	var order []int64
	for rows.Next() {
		var (
			id     int64
			name   string
			amount string
		)
		if err := rows.Scan(&id, &name, &amount); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("parse expense amount: %w", err)
		}
		total, ok := totalsByID[id]
		if !ok {
			total = &domain.CategoryTotal{CategoryID: id, Name: name}
			totalsByID[id] = total
			order = append(order, id)
		}
		total.Total = total.Total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totals := make([]*domain.CategoryTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, totalsByID[id])
	}
	return totals, nil
}

func (s *Store) SumExpensesByCategory(categoryID int64, start, end time.Time) (decimal.Decimal, error) {
	rows, err := s.q.Query(`
		SELECT amount FROM transactions
		WHERE type = 'expense' AND category_id = ? AND txn_date >= ? AND txn_date < ?`,
		categoryID, fmtDate(start), fmtDate(end))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()
	return sumAmounts(rows)
}

func (s *Store) AccountEffectTotals(accountID int64) (*domain.EffectTotals, error) {
	rows, err := s.q.Query(`
		SELECT type, amount, account_id, to_account_id FROM transactions
		WHERE account_id = ? OR to_account_id = ?`,
		accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("account effect totals: %w", err)
	}
	defer rows.Close()

	totals := &domain.EffectTotals{}
	for rows.Next() {
		var (
			txType      string
			amount      string
			srcID       int64
			toAccountID sql.NullInt64
		)
		if err := rows.Scan(&txType, &amount, &srcID, &toAccountID); err != nil {
			return nil, fmt.Errorf("scan effect row: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("parse effect amount: %w", err)
		}
		switch domain.TransactionType(txType) {
		case domain.TransactionTypeIncome:
			totals.Income = totals.Income.Add(d)
		case domain.TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(d)
		case domain.TransactionTypeTransfer:
			if srcID == accountID {
				totals.TransfersOut = totals.TransfersOut.Add(d)
			}
			if toAccountID.Valid && toAccountID.Int64 == accountID {
				totals.TransfersIn = totals.TransfersIn.Add(d)
			}
		}
	}
	return totals, rows.Err()
}

func (s *Store) SumNetEffectBefore(day time.Time) (decimal.Decimal, error) {
	rows, err := s.q.Query(`
		SELECT type, amount FROM transactions
		WHERE txn_date < ? AND type IN ('income', 'expense')`,
		fmtDate(day))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum net effect before: %w", err)
	}
	defer rows.Close()

	net := decimal.Zero
	for rows.Next() {
		var txType, amount string
		if err := rows.Scan(&txType, &amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan net effect: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse net amount: %w", err)
		}
		if domain.TransactionType(txType) == domain.TransactionTypeIncome {
			net = net.Add(d)
		} else {
			net = net.Sub(d)
		}
	}
	return net, rows.Err()
}

func (s *Store) DailyNetEffects(start, end time.Time) ([]*domain.DailyNet, error) {
	rows, err := s.q.Query(`
		SELECT txn_date, type, amount FROM transactions
		WHERE txn_date >= ? AND txn_date < ? AND type IN ('income', 'expense')
		ORDER BY txn_date`,
		fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("daily net effects: %w", err)
	}
	defer rows.Close()

	var effects []*domain.DailyNet
	for rows.Next() {
		var date, txType, amount string
		if err := rows.Scan(&date, &txType, &amount); err != nil {
			return nil, fmt.Errorf("scan daily net: %w", err)
		}
		day, err := parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse daily date: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("parse daily amount: %w", err)
		}
		if domain.TransactionType(txType) == domain.TransactionTypeExpense {
			d = d.Neg()
		}
		if n := len(effects); n > 0 && effects[n-1].Day.Equal(day) {
			effects[n-1].Net = effects[n-1].Net.Add(d)
		} else {
			effects = append(effects, &domain.DailyNet{Day: day, Net: d})
		}
	}
	return effects, rows.Err()
}

func (s *Store) RecurringTransactionExists(recurringID int64, year int, month time.Month) (bool, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var exists bool
	err := s.q.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE recurring_id = ? AND txn_date >= ? AND txn_date < ?
		)`,
		recurringID, fmtDate(start), fmtDate(end)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recurring transaction exists: %w", err)
	}
	return exists, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		transaction domain.Transaction
		reference   string
		txType      string
		amount      string
		date        string
		tags        string
		toAccountID sql.NullInt64
		categoryID  sql.NullInt64
		recurringID sql.NullInt64
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&transaction.ID, &reference, &txType, &amount, &date,
		&transaction.Description, &tags, &transaction.AccountID,
		&toAccountID, &categoryID, &recurringID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if transaction.Reference, err = uuid.Parse(reference); err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	transaction.Type = domain.TransactionType(txType)
	if transaction.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if transaction.Date, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	transaction.Tags = domain.SplitTags(tags)
	if toAccountID.Valid {
		transaction.ToAccountID = &toAccountID.Int64
	}
	if categoryID.Valid {
		transaction.CategoryID = &categoryID.Int64
	}
	if recurringID.Valid {
		transaction.RecurringID = &recurringID.Int64
	}
	if transaction.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if transaction.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &transaction, nil
}

func sumAmounts(rows *sql.Rows) (decimal.Decimal, error) {
	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount: %w", err)
		}
		sum = sum.Add(d)
	}
	return sum, rows.Err()
}
