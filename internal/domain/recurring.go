package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
)

// RecurringTransaction is a monthly template. Concrete transactions are
// generated from it at most once per calendar month, linked back through
// Transaction.RecurringID.
type RecurringTransaction struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`
	AccountID  int64           `json:"accountId"`
	CategoryID *int64          `json:"categoryId,omitempty"`
	Frequency  Frequency       `json:"frequency"`
	DueDay     int             `json:"dueDay"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type RecurringStore interface {
	CreateRecurring(rt *RecurringTransaction) (*RecurringTransaction, error)
	GetRecurring(id int64) (*RecurringTransaction, error)
	ListRecurring(activeOnly bool) ([]*RecurringTransaction, error)
	UpdateRecurring(rt *RecurringTransaction) (*RecurringTransaction, error)
	DeleteRecurring(id int64) error
	RecurringExistsForAccount(accountID int64) (bool, error)
	RecurringExistsForCategory(categoryID int64) (bool, error)
}
