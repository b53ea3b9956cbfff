package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// SetBudgetInput holds the input for creating a budget.
type SetBudgetInput struct {
	CategoryID int64
	Amount     decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

// SetBudget creates a spending budget for an expense category over a date
// window (whole days, both ends inclusive).
func (l *Ledger) SetBudget(input SetBudgetInput) (*domain.Budget, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	start, end := normalizeDate(input.StartDate), normalizeDate(input.EndDate)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	category, err := l.store.GetCategory(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != domain.CategoryExpense {
		return nil, domain.ErrCategoryKindMismatch
	}

	return l.store.CreateBudget(&domain.Budget{
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		StartDate:  start,
		EndDate:    end,
	})
}

// ListBudgets retrieves all budgets.
func (l *Ledger) ListBudgets() ([]*domain.Budget, error) {
	return l.store.ListBudgets()
}

// DeleteBudget removes a budget.
func (l *Ledger) DeleteBudget(id int64) error {
	return l.store.DeleteBudget(id)
}

// BudgetProgress reports spent and remaining amounts for every budget.
// Spent counts the category's direct expenses inside the budget window;
// Remaining goes negative when the budget is blown, never clamped.
func (l *Ledger) BudgetProgress() ([]*domain.BudgetProgress, error) {
	budgets, err := l.store.ListBudgets()
	if err != nil {
		return nil, err
	}

	progress := make([]*domain.BudgetProgress, 0, len(budgets))
	for _, budget := range budgets {
		category, err := l.store.GetCategory(budget.CategoryID)
		if err != nil {
			return nil, err
		}
		spent, err := l.store.SumExpensesByCategory(
			budget.CategoryID, budget.StartDate, budget.EndDate.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		progress = append(progress, &domain.BudgetProgress{
			Budget:       budget,
			CategoryName: category.Name,
			Spent:        spent,
			Remaining:    budget.Amount.Sub(spent),
		})
	}
	return progress, nil
}
