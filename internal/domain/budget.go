package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps expected spending for one category over a date window.
type Budget struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// BudgetProgress is the read model for one budget: how much of the window
// has been spent so far.
type BudgetProgress struct {
	Budget       *Budget         `json:"budget"`
	CategoryName string          `json:"categoryName"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

type BudgetStore interface {
	CreateBudget(budget *Budget) (*Budget, error)
	GetBudget(id int64) (*Budget, error)
	ListBudgets() ([]*Budget, error)
	DeleteBudget(id int64) error
	BudgetExistsForCategory(categoryID int64) (bool, error)
}
