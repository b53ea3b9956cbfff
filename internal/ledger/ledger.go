// Package ledger is the single entry point external collaborators (CLI,
// GUI) use. Every mutating operation runs its store writes and balance
// updates inside one store transaction, so a failure partway through leaves
// nothing behind for a subsequent read to observe.
package ledger

import (
	"github.com/rs/zerolog"

	"github.com/mfonseca/tally/internal/domain"
)

const defaultCurrency = "USD"

// Ledger sequences store mutations and balance maintenance. Construct it
// with New; the zero value is not usable.
type Ledger struct {
	store    domain.Store
	log      zerolog.Logger
	currency string
}

// Options tunes facade defaults.
type Options struct {
	// DefaultCurrency is applied to new accounts that do not name one.
	DefaultCurrency string
}

// New creates a Ledger over the given store.
func New(store domain.Store, logger zerolog.Logger, opts Options) *Ledger {
	currency := opts.DefaultCurrency
	if currency == "" {
		currency = defaultCurrency
	}
	return &Ledger{
		store:    store,
		log:      logger,
		currency: currency,
	}
}
