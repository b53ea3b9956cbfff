package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

func TestAddRecurring_Validation(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	rent := mustCategory(t, l, "Rent", domain.CategoryExpense)

	cases := []struct {
		name  string
		input AddRecurringInput
		want  error
	}{
		{
			name:  "transfer type rejected",
			input: AddRecurringInput{Name: "Sweep", Amount: dec("10"), Type: domain.TransactionTypeTransfer, AccountID: account.ID, CategoryID: &rent.ID, DueDay: 1},
			want:  domain.ErrInvalidTransactionType,
		},
		{
			name:  "due day too large",
			input: AddRecurringInput{Name: "Rent", Amount: dec("10"), Type: domain.TransactionTypeExpense, AccountID: account.ID, CategoryID: &rent.ID, DueDay: 32},
			want:  domain.ErrInvalidDueDay,
		},
		{
			name:  "missing category",
			input: AddRecurringInput{Name: "Rent", Amount: dec("10"), Type: domain.TransactionTypeExpense, AccountID: account.ID, DueDay: 1},
			want:  domain.ErrCategoryRequired,
		},
		{
			name:  "zero amount",
			input: AddRecurringInput{Name: "Rent", Amount: dec("0"), Type: domain.TransactionTypeExpense, AccountID: account.ID, CategoryID: &rent.ID, DueDay: 1},
			want:  domain.ErrInvalidAmount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.AddRecurring(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerateDue_IdempotentPerMonth(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "2000")
	rent := mustCategory(t, l, "Rent", domain.CategoryExpense)

	_, err := l.AddRecurring(AddRecurringInput{
		Name:       "Rent",
		Amount:     dec("800"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		DueDay:     1,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	generated, err := l.GenerateDue(2026, time.March)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(generated) != 1 {
		t.Fatalf("Expected 1 generated transaction, got %d", len(generated))
	}
	if got := balanceOf(t, l, account.ID); !got.Equal(dec("1200")) {
		t.Errorf("Expected balance 1200 after generation, got %s", got)
	}

	again, err := l.GenerateDue(2026, time.March)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Expected second run to generate nothing, got %d", len(again))
	}
	if got := balanceOf(t, l, account.ID); !got.Equal(dec("1200")) {
		t.Errorf("Expected balance unchanged at 1200, got %s", got)
	}

	next, err := l.GenerateDue(2026, time.April)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(next) != 1 {
		t.Errorf("Expected a new month to generate again, got %d", len(next))
	}
}

func TestGenerateDue_ClampsDueDay(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	rent := mustCategory(t, l, "Rent", domain.CategoryExpense)

	_, err := l.AddRecurring(AddRecurringInput{
		Name:       "Rent",
		Amount:     dec("10"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		DueDay:     31,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	generated, err := l.GenerateDue(2026, time.February)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(generated) != 1 {
		t.Fatalf("Expected 1 generated transaction, got %d", len(generated))
	}
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !generated[0].Date.Equal(want) {
		t.Errorf("Expected due date clamped to %s, got %s", want, generated[0].Date)
	}
	if generated[0].RecurringID == nil {
		t.Error("Expected generated transaction to link back to its template")
	}
}

func TestGenerateDue_SkipsInactive(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	rent := mustCategory(t, l, "Rent", domain.CategoryExpense)

	rt, err := l.AddRecurring(AddRecurringInput{
		Name:       "Gym",
		Amount:     dec("30"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		DueDay:     5,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err = l.UpdateRecurring(rt.ID, AddRecurringInput{
		Name:       rt.Name,
		Amount:     rt.Amount,
		Type:       rt.Type,
		AccountID:  rt.AccountID,
		CategoryID: rt.CategoryID,
		DueDay:     rt.DueDay,
	}, false)
	if err != nil {
		t.Fatalf("Expected no error deactivating, got %v", err)
	}

	generated, err := l.GenerateDue(2026, time.March)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(generated) != 0 {
		t.Errorf("Expected inactive template to be skipped, got %d transactions", len(generated))
	}
}
