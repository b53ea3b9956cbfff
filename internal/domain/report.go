package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one row of an expense breakdown, sorted for display by
// amount descending with ties broken by name.
type CategoryAmount struct {
	CategoryID int64           `json:"categoryId"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

// MonthlySummary aggregates one calendar month. NetSavings may be negative;
// SavingsRate is a fraction of income and is zero when income is zero.
type MonthlySummary struct {
	Year              int              `json:"year"`
	Month             time.Month       `json:"month"`
	TotalIncome       decimal.Decimal  `json:"totalIncome"`
	TotalExpenses     decimal.Decimal  `json:"totalExpenses"`
	NetSavings        decimal.Decimal  `json:"netSavings"`
	SavingsRate       decimal.Decimal  `json:"savingsRate"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
}

// CategoryRollup is one node of the category tree with totals. Total is
// Direct plus the recursive Total of every child.
type CategoryRollup struct {
	Category *Category         `json:"category"`
	Direct   decimal.Decimal   `json:"direct"`
	Total    decimal.Decimal   `json:"total"`
	Children []*CategoryRollup `json:"children,omitempty"`
}

// CategoryBreakdown is the expense view over a date range: a flat sorted
// list plus the per-root tree rollups.
type CategoryBreakdown struct {
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Totals  []CategoryAmount  `json:"totals"`
	Rollups []*CategoryRollup `json:"rollups,omitempty"`
}

// MonthComparison is one row of a year's income-vs-expense comparison.
type MonthComparison struct {
	Month         time.Month      `json:"month"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}

// TrendPoint is one month of the trailing trend series.
type TrendPoint struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	SavingsRate   decimal.Decimal `json:"savingsRate"`
}

// DailyBalance is the total balance across all accounts at end of Day.
type DailyBalance struct {
	Day     time.Time       `json:"day"`
	Balance decimal.Decimal `json:"balance"`
}
