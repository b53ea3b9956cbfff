package ledger

import (
	"errors"
	"testing"

	"github.com/mfonseca/tally/internal/domain"
)

func TestRecompute_MatchesIncrementalBalance(t *testing.T) {
	l, _ := newTestLedger()
	checking := mustAccount(t, l, "Checking", "1000.00")
	savings := mustAccount(t, l, "Savings", "250.00")
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)
	salary := mustCategory(t, l, "Salary", domain.CategoryIncome)

	steps := []func() error{
		func() error {
			_, err := l.AddTransaction(AddTransactionInput{Type: domain.TransactionTypeExpense, AccountID: checking.ID, CategoryID: &groceries.ID, Amount: dec("42.17")})
			return err
		},
		func() error {
			_, err := l.AddTransaction(AddTransactionInput{Type: domain.TransactionTypeIncome, AccountID: checking.ID, CategoryID: &salary.ID, Amount: dec("1500")})
			return err
		},
		func() error {
			_, err := l.Transfer(TransferInput{FromAccountID: checking.ID, ToAccountID: savings.ID, Amount: dec("300")})
			return err
		},
		func() error {
			_, err := l.Transfer(TransferInput{FromAccountID: savings.ID, ToAccountID: checking.ID, Amount: dec("25.50")})
			return err
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}

	for _, id := range []int64{checking.ID, savings.ID} {
		recomputed, err := l.Recompute(id)
		if err != nil {
			t.Fatalf("Expected no error recomputing account %d, got %v", id, err)
		}
		cached := balanceOf(t, l, id)
		if !recomputed.Equal(cached) {
			t.Errorf("Account %d: recomputed %s differs from cached %s", id, recomputed, cached)
		}
	}
}

func TestCheckConsistency_Clean(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)

	_, err := l.AddTransaction(AddTransactionInput{
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &groceries.ID,
		Amount:     dec("10"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := l.CheckConsistency(account.ID); err != nil {
		t.Errorf("Expected consistent account, got %v", err)
	}
	if err := l.CheckAllConsistency(); err != nil {
		t.Errorf("Expected all accounts consistent, got %v", err)
	}
}

func TestCheckConsistency_DetectsDrift(t *testing.T) {
	l, store := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")

	// Corrupt the cached balance behind the maintainer's back.
	store.Accounts[account.ID].Balance = dec("999")

	err := l.CheckConsistency(account.ID)
	if !errors.Is(err, domain.ErrRecomputeMismatch) {
		t.Fatalf("Expected ErrRecomputeMismatch, got %v", err)
	}

	if err := l.CheckAllConsistency(); !errors.Is(err, domain.ErrRecomputeMismatch) {
		t.Errorf("Expected ErrRecomputeMismatch from the full sweep, got %v", err)
	}
}

func TestCheckConsistency_UnknownAccount(t *testing.T) {
	l, _ := newTestLedger()
	if err := l.CheckConsistency(42); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
}
