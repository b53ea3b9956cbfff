package domain

// Store is the persistence surface the ledger facade is constructed with.
// WithinTx runs fn against a store bound to a single database transaction:
// fn returning an error rolls back every write made through that store, so
// one facade operation maps to one transactional unit. Nested WithinTx
// calls join the enclosing transaction.
type Store interface {
	AccountStore
	CategoryStore
	TransactionStore
	BudgetStore
	RecurringStore

	WithinTx(fn func(Store) error) error
	Close() error
}
