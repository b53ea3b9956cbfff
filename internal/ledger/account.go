package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// AddAccountInput holds the input for creating an account.
type AddAccountInput struct {
	Name           string
	Kind           domain.AccountKind
	OpeningBalance decimal.Decimal
	Currency       string
	Description    *string
}

// AddAccount creates a new account. The cached balance is seeded with the
// opening balance, which may be negative (credit accounts).
func (l *Ledger) AddAccount(input AddAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidAccountKind
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = l.currency
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	account, err := l.store.CreateAccount(&domain.Account{
		Name:           name,
		Kind:           input.Kind,
		OpeningBalance: input.OpeningBalance,
		Balance:        input.OpeningBalance,
		Currency:       currency,
		Description:    input.Description,
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Int64("account_id", account.ID).Str("kind", string(account.Kind)).Msg("account created")
	return account, nil
}

// GetAccount retrieves an account by id.
func (l *Ledger) GetAccount(id int64) (*domain.Account, error) {
	return l.store.GetAccount(id)
}

// ListAccounts retrieves all accounts, optionally including archived ones.
func (l *Ledger) ListAccounts(includeArchived bool) ([]*domain.Account, error) {
	return l.store.ListAccounts(includeArchived)
}

// UpdateAccount renames an account and replaces its description. Kind,
// currency and opening balance are immutable after creation.
func (l *Ledger) UpdateAccount(id int64, name string, description *string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	return l.store.UpdateAccount(id, name, description)
}

// ArchiveAccount retires an account from new activity. Its history and
// balance remain intact and it still participates in consistency checks.
func (l *Ledger) ArchiveAccount(id int64) error {
	return l.store.SetAccountArchived(id, true)
}

// UnarchiveAccount returns an archived account to service.
func (l *Ledger) UnarchiveAccount(id int64) error {
	return l.store.SetAccountArchived(id, false)
}

// DeleteAccount removes an account. Deletion is rejected with
// ErrAccountInUse while any transaction or recurring template references
// the account, so no orphaned row can ever exist; the checks and the
// delete share one transaction.
func (l *Ledger) DeleteAccount(id int64) error {
	return l.store.WithinTx(func(tx domain.Store) error {
		inUse, err := tx.AccountHasTransactions(id)
		if err != nil {
			return err
		}
		if inUse {
			return domain.ErrAccountInUse
		}
		referenced, err := tx.RecurringExistsForAccount(id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.ErrAccountInUse
		}
		return tx.DeleteAccount(id)
	})
}
