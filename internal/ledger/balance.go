package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// accountEffect is the signed contribution of a transaction to one account.
type accountEffect struct {
	accountID int64
	delta     decimal.Decimal
}

// effectsOf derives the balance effects of a transaction from its type:
// income adds to the account, expense subtracts from it, a transfer
// subtracts from the source and adds the same magnitude to the destination.
func effectsOf(t *domain.Transaction) []accountEffect {
	switch t.Type {
	case domain.TransactionTypeIncome:
		return []accountEffect{{t.AccountID, t.Amount}}
	case domain.TransactionTypeExpense:
		return []accountEffect{{t.AccountID, t.Amount.Neg()}}
	case domain.TransactionTypeTransfer:
		return []accountEffect{
			{t.AccountID, t.Amount.Neg()},
			{*t.ToAccountID, t.Amount},
		}
	}
	return nil
}

// applyEffects incrementally updates the cached balances for t.
func applyEffects(s domain.Store, t *domain.Transaction) error {
	for _, e := range effectsOf(t) {
		if err := s.AdjustAccountBalance(e.accountID, e.delta); err != nil {
			return err
		}
	}
	return nil
}

// reverseEffects undoes applyEffects exactly once.
func reverseEffects(s domain.Store, t *domain.Transaction) error {
	for _, e := range effectsOf(t) {
		if err := s.AdjustAccountBalance(e.accountID, e.delta.Neg()); err != nil {
			return err
		}
	}
	return nil
}

// Recompute derives an account's balance from scratch: opening balance plus
// the summed effect of every transaction touching the account. It does not
// mutate anything; it exists to be checked against the incrementally
// maintained balance.
func (l *Ledger) Recompute(accountID int64) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	totals, err := l.store.AccountEffectTotals(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.
		Add(totals.Income).
		Sub(totals.Expense).
		Add(totals.TransfersIn).
		Sub(totals.TransfersOut), nil
}

// CheckConsistency compares the cached balance with a from-scratch
// recomputation and returns ErrRecomputeMismatch on any divergence. A
// mismatch is a defect, never an acceptable eventual state.
func (l *Ledger) CheckConsistency(accountID int64) error {
	account, err := l.store.GetAccount(accountID)
	if err != nil {
		return err
	}
	recomputed, err := l.Recompute(accountID)
	if err != nil {
		return err
	}
	if !account.Balance.Equal(recomputed) {
		l.log.Error().
			Int64("account_id", accountID).
			Str("cached", account.Balance.String()).
			Str("recomputed", recomputed.String()).
			Msg("balance diverged from transaction history")
		return fmt.Errorf("%w: account %d cached %s, recomputed %s",
			domain.ErrRecomputeMismatch, accountID, account.Balance, recomputed)
	}
	return nil
}

// CheckAllConsistency verifies every account, archived ones included.
func (l *Ledger) CheckAllConsistency() error {
	accounts, err := l.store.ListAccounts(true)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if err := l.CheckConsistency(account.ID); err != nil {
			return err
		}
	}
	return nil
}
