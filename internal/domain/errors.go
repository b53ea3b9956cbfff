package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps one of these so callers
// can match either the exact condition or the class with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrRecomputeMismatch  = errors.New("recompute mismatch")
)

// Not-found errors
var (
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget %w", ErrNotFound)
	ErrRecurringNotFound   = fmt.Errorf("recurring transaction %w", ErrNotFound)
)

// Integrity errors
var (
	ErrNameRequired           = fmt.Errorf("%w: name is required", ErrIntegrityViolation)
	ErrNameTooLong            = fmt.Errorf("%w: name exceeds maximum length", ErrIntegrityViolation)
	ErrDescriptionTooLong     = fmt.Errorf("%w: description exceeds maximum length", ErrIntegrityViolation)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be positive", ErrIntegrityViolation)
	ErrInvalidDate            = fmt.Errorf("%w: date is required", ErrIntegrityViolation)
	ErrInvalidAccountKind     = fmt.Errorf("%w: unknown account kind", ErrIntegrityViolation)
	ErrInvalidCategoryKind    = fmt.Errorf("%w: unknown category kind", ErrIntegrityViolation)
	ErrInvalidTransactionType = fmt.Errorf("%w: unknown transaction type", ErrIntegrityViolation)
	ErrInvalidCurrency        = fmt.Errorf("%w: currency must be a 3-letter code", ErrIntegrityViolation)
	ErrInvalidDueDay          = fmt.Errorf("%w: due day must be between 1 and 31", ErrIntegrityViolation)
	ErrInvalidDateRange       = fmt.Errorf("%w: end date precedes start date", ErrIntegrityViolation)

	ErrSameAccountTransfer = fmt.Errorf("%w: transfer source and destination must differ", ErrIntegrityViolation)
	ErrMissingDestination  = fmt.Errorf("%w: transfer requires a destination account", ErrIntegrityViolation)
	ErrStrayDestination    = fmt.Errorf("%w: only transfers may have a destination account", ErrIntegrityViolation)
	ErrCurrencyMismatch    = fmt.Errorf("%w: transfer accounts use different currencies", ErrIntegrityViolation)

	ErrCategoryRequired     = fmt.Errorf("%w: income and expense transactions require a category", ErrIntegrityViolation)
	ErrTransferHasCategory  = fmt.Errorf("%w: transfers do not take a category", ErrIntegrityViolation)
	ErrCategoryKindMismatch = fmt.Errorf("%w: category kind does not match transaction type", ErrIntegrityViolation)
	ErrCategoryCycle        = fmt.Errorf("%w: category parent would create a cycle", ErrIntegrityViolation)

	ErrAccountArchived     = fmt.Errorf("%w: account is archived", ErrIntegrityViolation)
	ErrAccountInUse        = fmt.Errorf("%w: account is referenced by transactions or recurring templates", ErrIntegrityViolation)
	ErrCategoryInUse       = fmt.Errorf("%w: category is referenced by transactions, budgets or recurring templates", ErrIntegrityViolation)
	ErrCategoryHasChildren = fmt.Errorf("%w: category has subcategories", ErrIntegrityViolation)
)

// Validation constants
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 255
)
