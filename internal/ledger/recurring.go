package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// AddRecurringInput holds the input for creating a monthly template.
type AddRecurringInput struct {
	Name       string
	Amount     decimal.Decimal
	Type       domain.TransactionType
	AccountID  int64
	CategoryID *int64
	DueDay     int
}

// AddRecurring creates a monthly recurring template. Transfers cannot
// recur; templates are income or expense only.
func (l *Ledger) AddRecurring(input AddRecurringInput) (*domain.RecurringTransaction, error) {
	if err := l.validateRecurring(input); err != nil {
		return nil, err
	}
	return l.store.CreateRecurring(&domain.RecurringTransaction{
		Name:       strings.TrimSpace(input.Name),
		Amount:     input.Amount,
		Type:       input.Type,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Frequency:  domain.FrequencyMonthly,
		DueDay:     input.DueDay,
		Active:     true,
	})
}

// GetRecurring retrieves a recurring template by ID.
func (l *Ledger) GetRecurring(id int64) (*domain.RecurringTransaction, error) {
	return l.store.GetRecurring(id)
}

// ListRecurring retrieves recurring templates, optionally active only.
func (l *Ledger) ListRecurring(activeOnly bool) ([]*domain.RecurringTransaction, error) {
	return l.store.ListRecurring(activeOnly)
}

// UpdateRecurring replaces a template's definition, keeping its identity
// and generation history.
func (l *Ledger) UpdateRecurring(id int64, input AddRecurringInput, active bool) (*domain.RecurringTransaction, error) {
	if err := l.validateRecurring(input); err != nil {
		return nil, err
	}
	current, err := l.store.GetRecurring(id)
	if err != nil {
		return nil, err
	}
	return l.store.UpdateRecurring(&domain.RecurringTransaction{
		ID:         id,
		Name:       strings.TrimSpace(input.Name),
		Amount:     input.Amount,
		Type:       input.Type,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Frequency:  current.Frequency,
		DueDay:     input.DueDay,
		Active:     active,
		CreatedAt:  current.CreatedAt,
	})
}

// DeleteRecurring removes a template. Transactions already generated from
// it stay in the ledger.
func (l *Ledger) DeleteRecurring(id int64) error {
	return l.store.DeleteRecurring(id)
}

// GenerateDue creates the concrete transaction for every active template
// that has not produced one in the given month yet. Each generation runs in
// its own store transaction with full balance maintenance; the run is
// idempotent per template and month.
func (l *Ledger) GenerateDue(year int, month time.Month) ([]*domain.Transaction, error) {
	templates, err := l.store.ListRecurring(true)
	if err != nil {
		return nil, err
	}

	var generated []*domain.Transaction
	for _, rt := range templates {
		exists, err := l.store.RecurringTransactionExists(rt.ID, year, month)
		if err != nil {
			return generated, err
		}
		if exists {
			continue
		}

		recurringID := rt.ID
		transaction := &domain.Transaction{
			Reference:   uuid.New(),
			Type:        rt.Type,
			Amount:      rt.Amount,
			Date:        time.Date(year, month, clampDay(rt.DueDay, year, month), 0, 0, 0, 0, time.UTC),
			Description: rt.Name,
			AccountID:   rt.AccountID,
			CategoryID:  rt.CategoryID,
			RecurringID: &recurringID,
		}

		err = l.store.WithinTx(func(tx domain.Store) error {
			if err := validateTransaction(tx, transaction); err != nil {
				return err
			}
			created, err := tx.CreateTransaction(transaction)
			if err != nil {
				return err
			}
			if err := applyEffects(tx, created); err != nil {
				return err
			}
			transaction = created
			return nil
		})
		if err != nil {
			return generated, err
		}
		l.log.Info().
			Int64("recurring_id", rt.ID).
			Int64("transaction_id", transaction.ID).
			Msg("recurring transaction generated")
		generated = append(generated, transaction)
	}
	return generated, nil
}

func (l *Ledger) validateRecurring(input AddRecurringInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}
	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return domain.ErrInvalidTransactionType
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if input.DueDay < 1 || input.DueDay > 31 {
		return domain.ErrInvalidDueDay
	}

	account, err := l.store.GetAccount(input.AccountID)
	if err != nil {
		return err
	}
	if account.Archived {
		return domain.ErrAccountArchived
	}
	if input.CategoryID == nil {
		return domain.ErrCategoryRequired
	}
	category, err := l.store.GetCategory(*input.CategoryID)
	if err != nil {
		return err
	}
	if !categoryMatchesType(category.Kind, input.Type) {
		return domain.ErrCategoryKindMismatch
	}
	return nil
}

// clampDay pins a due day to the last day of the month when the month is
// shorter (a template due on the 31st fires on Feb 28).
func clampDay(day, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
