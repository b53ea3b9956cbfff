package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// AddTransactionInput holds the input for recording an income or expense.
// Transfers go through Transfer.
type AddTransactionInput struct {
	Type        domain.TransactionType
	AccountID   int64
	CategoryID  *int64
	Amount      decimal.Decimal
	Date        *time.Time
	Description string
	Tags        []string
}

// AddTransaction records an income or expense and applies its effect to the
// account balance in the same store transaction.
func (l *Ledger) AddTransaction(input AddTransactionInput) (*domain.Transaction, error) {
	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	date := today()
	if input.Date != nil {
		date = normalizeDate(*input.Date)
	}

	transaction := &domain.Transaction{
		Reference:   uuid.New(),
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        date,
		Description: strings.TrimSpace(input.Description),
		Tags:        input.Tags,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
	}

	var created *domain.Transaction
	err := l.store.WithinTx(func(tx domain.Store) error {
		if err := validateTransaction(tx, transaction); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateTransaction(transaction)
		if err != nil {
			return err
		}
		return applyEffects(tx, created)
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Int64("transaction_id", created.ID).
		Str("type", string(created.Type)).
		Str("amount", created.Amount.String()).
		Msg("transaction recorded")
	return created, nil
}

// TransferInput holds the input for moving money between two accounts.
type TransferInput struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Date          *time.Time
	Description   string
	Tags          []string
}

// Transfer records a movement between two accounts: the source loses the
// amount, the destination gains it, and the net effect across both is zero.
func (l *Ledger) Transfer(input TransferInput) (*domain.Transaction, error) {
	date := today()
	if input.Date != nil {
		date = normalizeDate(*input.Date)
	}

	to := input.ToAccountID
	transaction := &domain.Transaction{
		Reference:   uuid.New(),
		Type:        domain.TransactionTypeTransfer,
		Amount:      input.Amount,
		Date:        date,
		Description: strings.TrimSpace(input.Description),
		Tags:        input.Tags,
		AccountID:   input.FromAccountID,
		ToAccountID: &to,
	}

	var created *domain.Transaction
	err := l.store.WithinTx(func(tx domain.Store) error {
		if err := validateTransaction(tx, transaction); err != nil {
			return err
		}
		if transaction.Description == "" {
			dest, err := tx.GetAccount(to)
			if err != nil {
				return err
			}
			transaction.Description = fmt.Sprintf("Transfer to %s", dest.Name)
		}
		var err error
		created, err = tx.CreateTransaction(transaction)
		if err != nil {
			return err
		}
		return applyEffects(tx, created)
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Int64("transaction_id", created.ID).
		Int64("from", input.FromAccountID).
		Int64("to", input.ToAccountID).
		Str("amount", created.Amount.String()).
		Msg("transfer recorded")
	return created, nil
}

// EditTransactionInput holds the replacement state for a transaction.
type EditTransactionInput struct {
	Type        domain.TransactionType
	AccountID   int64
	ToAccountID *int64
	CategoryID  *int64
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Tags        []string
}

// EditTransaction replaces a transaction. The old effect is reversed and
// the new one applied inside one store transaction, so no intermediate
// balance is ever committed.
func (l *Ledger) EditTransaction(id int64, input EditTransactionInput) (*domain.Transaction, error) {
	var updated *domain.Transaction
	err := l.store.WithinTx(func(tx domain.Store) error {
		old, err := tx.GetTransaction(id)
		if err != nil {
			return err
		}

		next := &domain.Transaction{
			ID:          id,
			Reference:   old.Reference,
			Type:        input.Type,
			Amount:      input.Amount,
			Date:        normalizeDate(input.Date),
			Description: strings.TrimSpace(input.Description),
			Tags:        input.Tags,
			AccountID:   input.AccountID,
			ToAccountID: input.ToAccountID,
			CategoryID:  input.CategoryID,
			RecurringID: old.RecurringID,
			CreatedAt:   old.CreatedAt,
		}
		if err := validateTransaction(tx, next); err != nil {
			return err
		}

		if err := reverseEffects(tx, old); err != nil {
			return err
		}
		updated, err = tx.UpdateTransaction(next)
		if err != nil {
			return err
		}
		return applyEffects(tx, updated)
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug().Int64("transaction_id", id).Msg("transaction updated")
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect
// exactly once.
func (l *Ledger) DeleteTransaction(id int64) error {
	err := l.store.WithinTx(func(tx domain.Store) error {
		old, err := tx.GetTransaction(id)
		if err != nil {
			return err
		}
		if err := reverseEffects(tx, old); err != nil {
			return err
		}
		return tx.DeleteTransaction(id)
	})
	if err != nil {
		return err
	}
	l.log.Debug().Int64("transaction_id", id).Msg("transaction deleted")
	return nil
}

// GetTransaction retrieves a transaction by id.
func (l *Ledger) GetTransaction(id int64) (*domain.Transaction, error) {
	return l.store.GetTransaction(id)
}

// ListTransactions retrieves transactions matching the filter, most recent
// first.
func (l *Ledger) ListTransactions(filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	return l.store.ListTransactions(filter)
}

// RecentTransactions retrieves the most recent transactions.
func (l *Ledger) RecentTransactions(limit int32) ([]*domain.Transaction, error) {
	return l.store.ListTransactions(&domain.TransactionFilter{Limit: limit})
}

// validateTransaction enforces the shape invariants before any write:
// positive amount, valid date, live accounts, and the type-specific rules
// for destination and category.
func validateTransaction(s domain.Store, t *domain.Transaction) error {
	if !t.Type.Valid() {
		return domain.ErrInvalidTransactionType
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return domain.ErrInvalidDate
	}
	if len(t.Description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}

	source, err := s.GetAccount(t.AccountID)
	if err != nil {
		return err
	}
	if source.Archived {
		return domain.ErrAccountArchived
	}

	switch t.Type {
	case domain.TransactionTypeTransfer:
		if t.CategoryID != nil {
			return domain.ErrTransferHasCategory
		}
		if t.ToAccountID == nil {
			return domain.ErrMissingDestination
		}
		if *t.ToAccountID == t.AccountID {
			return domain.ErrSameAccountTransfer
		}
		dest, err := s.GetAccount(*t.ToAccountID)
		if err != nil {
			return err
		}
		if dest.Archived {
			return domain.ErrAccountArchived
		}
		if dest.Currency != source.Currency {
			return domain.ErrCurrencyMismatch
		}
	default:
		if t.ToAccountID != nil {
			return domain.ErrStrayDestination
		}
		if t.CategoryID == nil {
			return domain.ErrCategoryRequired
		}
		category, err := s.GetCategory(*t.CategoryID)
		if err != nil {
			return err
		}
		if !categoryMatchesType(category.Kind, t.Type) {
			return domain.ErrCategoryKindMismatch
		}
	}
	return nil
}

func categoryMatchesType(kind domain.CategoryKind, t domain.TransactionType) bool {
	switch t {
	case domain.TransactionTypeIncome:
		return kind == domain.CategoryIncome
	case domain.TransactionTypeExpense:
		return kind == domain.CategoryExpense
	}
	return false
}

// normalizeDate truncates to a UTC calendar date; the ledger does not track
// time of day.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func today() time.Time {
	return normalizeDate(time.Now().UTC())
}
