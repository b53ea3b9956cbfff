package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

func TestSetBudget_Validation(t *testing.T) {
	l, _ := newTestLedger()
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)
	salary := mustCategory(t, l, "Salary", domain.CategoryIncome)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input SetBudgetInput
		want  error
	}{
		{
			name:  "zero amount",
			input: SetBudgetInput{CategoryID: groceries.ID, Amount: dec("0"), StartDate: start, EndDate: end},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "inverted range",
			input: SetBudgetInput{CategoryID: groceries.ID, Amount: dec("100"), StartDate: end, EndDate: start},
			want:  domain.ErrInvalidDateRange,
		},
		{
			name:  "income category",
			input: SetBudgetInput{CategoryID: salary.ID, Amount: dec("100"), StartDate: start, EndDate: end},
			want:  domain.ErrCategoryKindMismatch,
		},
		{
			name:  "unknown category",
			input: SetBudgetInput{CategoryID: 999, Amount: dec("100"), StartDate: start, EndDate: end},
			want:  domain.ErrCategoryNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.SetBudget(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBudgetProgress_CountsWindowInclusive(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := l.SetBudget(SetBudgetInput{CategoryID: groceries.ID, Amount: dec("200"), StartDate: start, EndDate: end})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	spend := func(day time.Time, amount string) {
		t.Helper()
		_, err := l.AddTransaction(AddTransactionInput{
			Type:       domain.TransactionTypeExpense,
			AccountID:  account.ID,
			CategoryID: &groceries.ID,
			Amount:     dec(amount),
			Date:       &day,
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	spend(start, "40")                   // first day counts
	spend(end, "60")                     // last day counts
	spend(end.AddDate(0, 0, 1), "1000")  // day after the window does not
	spend(start.AddDate(0, 0, -1), "77") // day before the window does not

	progress, err := l.BudgetProgress()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(progress))
	}
	p := progress[0]
	if p.CategoryName != "Groceries" {
		t.Errorf("Expected category name Groceries, got %s", p.CategoryName)
	}
	if !p.Spent.Equal(dec("100")) {
		t.Errorf("Expected spent 100, got %s", p.Spent)
	}
	if !p.Remaining.Equal(dec("100")) {
		t.Errorf("Expected remaining 100, got %s", p.Remaining)
	}
}

func TestBudgetProgress_RemainingGoesNegative(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := l.SetBudget(SetBudgetInput{CategoryID: groceries.ID, Amount: dec("50"), StartDate: start, EndDate: end})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mid := start.AddDate(0, 0, 10)
	_, err = l.AddTransaction(AddTransactionInput{
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &groceries.ID,
		Amount:     dec("80"),
		Date:       &mid,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	progress, err := l.BudgetProgress()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !progress[0].Remaining.Equal(dec("-30")) {
		t.Errorf("Expected remaining -30, got %s", progress[0].Remaining)
	}
}
