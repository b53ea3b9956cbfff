package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/mfonseca/tally/internal/domain"
)

func TestAddCategory_ParentKindMustMatch(t *testing.T) {
	l, _ := newTestLedger()
	food := mustCategory(t, l, "Food", domain.CategoryExpense)

	_, err := l.AddCategory(AddCategoryInput{
		Name:     "Bonus",
		Kind:     domain.CategoryIncome,
		ParentID: &food.ID,
	})
	if !errors.Is(err, domain.ErrCategoryKindMismatch) {
		t.Fatalf("Expected ErrCategoryKindMismatch, got %v", err)
	}

	child, err := l.AddCategory(AddCategoryInput{
		Name:     "Groceries",
		Kind:     domain.CategoryExpense,
		ParentID: &food.ID,
	})
	if err != nil {
		t.Fatalf("Expected no error for matching kinds, got %v", err)
	}
	if child.ParentID == nil || *child.ParentID != food.ID {
		t.Errorf("Expected parent %d, got %v", food.ID, child.ParentID)
	}
}

func TestUpdateCategory_CycleRejected(t *testing.T) {
	l, _ := newTestLedger()
	a := mustCategory(t, l, "A", domain.CategoryExpense)

	b, err := l.AddCategory(AddCategoryInput{Name: "B", Kind: domain.CategoryExpense, ParentID: &a.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	c, err := l.AddCategory(AddCategoryInput{Name: "C", Kind: domain.CategoryExpense, ParentID: &b.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Re-parenting the root under its grandchild closes a cycle.
	_, err = l.UpdateCategory(a.ID, UpdateCategoryInput{
		Name:     a.Name,
		Kind:     a.Kind,
		ParentID: &c.ID,
	})
	if !errors.Is(err, domain.ErrCategoryCycle) {
		t.Fatalf("Expected ErrCategoryCycle, got %v", err)
	}

	// The tree is unchanged.
	reread, err := l.GetCategory(a.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reread.ParentID != nil {
		t.Errorf("Expected A to remain a root, got parent %v", *reread.ParentID)
	}
}

func TestUpdateCategory_SelfParentRejected(t *testing.T) {
	l, _ := newTestLedger()
	a := mustCategory(t, l, "A", domain.CategoryExpense)

	_, err := l.UpdateCategory(a.ID, UpdateCategoryInput{
		Name:     a.Name,
		Kind:     a.Kind,
		ParentID: &a.ID,
	})
	if !errors.Is(err, domain.ErrCategoryCycle) {
		t.Fatalf("Expected ErrCategoryCycle, got %v", err)
	}
}

func TestUpdateCategory_KindChangeBlockedWhileInUse(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "100")
	groceries := mustCategory(t, l, "Groceries", domain.CategoryExpense)

	_, err := l.AddTransaction(AddTransactionInput{
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &groceries.ID,
		Amount:     dec("5"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = l.UpdateCategory(groceries.ID, UpdateCategoryInput{
		Name: groceries.Name,
		Kind: domain.CategoryIncome,
	})
	if !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}
}

func TestUpdateCategory_KindChangeBlockedWithChildren(t *testing.T) {
	l, _ := newTestLedger()
	food := mustCategory(t, l, "Food", domain.CategoryExpense)
	_, err := l.AddCategory(AddCategoryInput{Name: "Groceries", Kind: domain.CategoryExpense, ParentID: &food.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = l.UpdateCategory(food.ID, UpdateCategoryInput{
		Name: food.Name,
		Kind: domain.CategoryIncome,
	})
	if !errors.Is(err, domain.ErrCategoryHasChildren) {
		t.Fatalf("Expected ErrCategoryHasChildren, got %v", err)
	}
}

func TestDeleteCategory_Guards(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "100")
	food := mustCategory(t, l, "Food", domain.CategoryExpense)
	groceries, err := l.AddCategory(AddCategoryInput{Name: "Groceries", Kind: domain.CategoryExpense, ParentID: &food.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := l.DeleteCategory(food.ID); !errors.Is(err, domain.ErrCategoryHasChildren) {
		t.Fatalf("Expected ErrCategoryHasChildren, got %v", err)
	}

	_, err = l.AddTransaction(AddTransactionInput{
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &groceries.ID,
		Amount:     dec("5"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := l.DeleteCategory(groceries.ID); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}

	empty := mustCategory(t, l, "Empty", domain.CategoryExpense)
	if err := l.DeleteCategory(empty.ID); err != nil {
		t.Fatalf("Expected no error deleting unused category, got %v", err)
	}
	if _, err := l.GetCategory(empty.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func TestDeleteCategory_RejectedWhileBudgetReferences(t *testing.T) {
	l, _ := newTestLedger()
	food := mustCategory(t, l, "Food", domain.CategoryExpense)

	budget, err := l.SetBudget(SetBudgetInput{
		CategoryID: food.ID,
		Amount:     dec("200"),
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := l.DeleteCategory(food.ID); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}

	// The budget must still resolve its category after the rejected delete.
	progress, err := l.BudgetProgress()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(progress))
	}
	if progress[0].CategoryName != "Food" {
		t.Errorf("Expected category name 'Food', got %q", progress[0].CategoryName)
	}

	if err := l.DeleteBudget(budget.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := l.DeleteCategory(food.ID); err != nil {
		t.Fatalf("Expected no error once the budget is gone, got %v", err)
	}
}

func TestDeleteCategory_RejectedWhileRecurringReferences(t *testing.T) {
	l, _ := newTestLedger()
	account := mustAccount(t, l, "Checking", "1000")
	rent := mustCategory(t, l, "Rent", domain.CategoryExpense)

	rt, err := l.AddRecurring(AddRecurringInput{
		Name:       "Rent",
		Amount:     dec("900"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		DueDay:     1,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := l.DeleteCategory(rent.ID); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}
	if err := l.DeleteRecurring(rt.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := l.DeleteCategory(rent.ID); err != nil {
		t.Fatalf("Expected no error once the template is gone, got %v", err)
	}
}
