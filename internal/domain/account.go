package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountChecking   AccountKind = "checking"
	AccountSavings    AccountKind = "savings"
	AccountCredit     AccountKind = "credit"
	AccountCash       AccountKind = "cash"
	AccountInvestment AccountKind = "investment"
)

// Valid reports whether k is one of the closed set of account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment:
		return true
	}
	return false
}

// Account is a ledger account. Balance is a derived cache: it always equals
// OpeningBalance plus the signed effects of every transaction touching the
// account. Only the balance maintainer mutates it.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Kind           AccountKind     `json:"kind"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	Description    *string         `json:"description,omitempty"`
	Archived       bool            `json:"archived"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type AccountStore interface {
	CreateAccount(account *Account) (*Account, error)
	GetAccount(id int64) (*Account, error)
	ListAccounts(includeArchived bool) ([]*Account, error)
	UpdateAccount(id int64, name string, description *string) (*Account, error)
	SetAccountArchived(id int64, archived bool) error
	// AdjustAccountBalance applies a signed delta to the cached balance.
	AdjustAccountBalance(id int64, delta decimal.Decimal) error
	DeleteAccount(id int64) error
	AccountHasTransactions(id int64) (bool, error)
}
