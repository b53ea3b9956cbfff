package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the closed set of transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is a single ledger movement. Amount is always a positive
// magnitude; the sign of its effect on an account is derived from Type.
// AccountID is the affected account (the source for transfers); ToAccountID
// is set for transfers only, CategoryID for income and expense only.
type Transaction struct {
	ID          int64           `json:"id"`
	Reference   uuid.UUID       `json:"reference"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	AccountID   int64           `json:"accountId"`
	ToAccountID *int64          `json:"toAccountId,omitempty"`
	CategoryID  *int64          `json:"categoryId,omitempty"`
	RecurringID *int64          `json:"recurringId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionFilter narrows ListTransactions. AccountID matches either side
// of a transfer. Date bounds are half-open: [StartDate, EndDate).
type TransactionFilter struct {
	AccountID  *int64
	CategoryID *int64
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int32
}

// CategoryTotal is a per-category sum from an aggregate query.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Total      decimal.Decimal
}

// EffectTotals holds the from-scratch sums used to recompute an account's
// balance: opening + Income - Expense + TransfersIn - TransfersOut.
type EffectTotals struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	TransfersIn  decimal.Decimal
	TransfersOut decimal.Decimal
}

// DailyNet is the net effect (income - expense) of one calendar day.
type DailyNet struct {
	Day time.Time
	Net decimal.Decimal
}

type TransactionStore interface {
	CreateTransaction(transaction *Transaction) (*Transaction, error)
	GetTransaction(id int64) (*Transaction, error)
	UpdateTransaction(transaction *Transaction) (*Transaction, error)
	DeleteTransaction(id int64) error
	// ListTransactions returns matches ordered by date descending, ties
	// broken by id descending. The result is deterministic and restartable.
	ListTransactions(filter *TransactionFilter) ([]*Transaction, error)
	SumByTypeAndDateRange(start, end time.Time, transactionType TransactionType) (decimal.Decimal, error)
	ExpenseTotalsByCategory(start, end time.Time) ([]*CategoryTotal, error)
	SumExpensesByCategory(categoryID int64, start, end time.Time) (decimal.Decimal, error)
	AccountEffectTotals(accountID int64) (*EffectTotals, error)
	// SumNetEffectBefore sums income minus expense strictly before day.
	// Transfers cancel across accounts and are excluded.
	SumNetEffectBefore(day time.Time) (decimal.Decimal, error)
	DailyNetEffects(start, end time.Time) ([]*DailyNet, error)
	RecurringTransactionExists(recurringID int64, year int, month time.Month) (bool, error)
}

// JoinTags flattens tags to the comma-separated storage form.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// SplitTags parses the comma-separated storage form back into tags.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
