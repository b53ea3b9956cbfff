package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// MonthlySummary aggregates one calendar month: totals, net savings,
// savings rate and the expense breakdown by category. An empty month yields
// zero totals, a zero rate and an empty breakdown.
func (l *Ledger) MonthlySummary(year int, month time.Month) (*domain.MonthlySummary, error) {
	start, end := monthRange(year, month)

	income, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}
	totals, err := l.store.ExpenseTotalsByCategory(start, end)
	if err != nil {
		return nil, err
	}

	net := income.Sub(expenses)
	return &domain.MonthlySummary{
		Year:              year,
		Month:             month,
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetSavings:        net,
		SavingsRate:       savingsRate(net, income),
		ExpenseByCategory: sortedAmounts(totals),
	}, nil
}

// CategoryBreakdown reports expense totals per category over [start, end]
// (whole days, both inclusive), flat and as tree rollups where a parent's
// total includes every descendant's.
func (l *Ledger) CategoryBreakdown(start, end time.Time) (*domain.CategoryBreakdown, error) {
	start, end = normalizeDate(start), normalizeDate(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	totals, err := l.store.ExpenseTotalsByCategory(start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	categories, err := l.store.ListCategories()
	if err != nil {
		return nil, err
	}

	return &domain.CategoryBreakdown{
		Start:   start,
		End:     end,
		Totals:  sortedAmounts(totals),
		Rollups: buildRollups(categories, totals),
	}, nil
}

// MonthlyComparison reports income vs expenses for each month of a year.
func (l *Ledger) MonthlyComparison(year int) ([]*domain.MonthComparison, error) {
	comparison := make([]*domain.MonthComparison, 0, 12)
	for month := time.January; month <= time.December; month++ {
		start, end := monthRange(year, month)
		income, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeIncome)
		if err != nil {
			return nil, err
		}
		expenses, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeExpense)
		if err != nil {
			return nil, err
		}
		comparison = append(comparison, &domain.MonthComparison{
			Month:         month,
			TotalIncome:   income,
			TotalExpenses: expenses,
		})
	}
	return comparison, nil
}

// Trends reports the trailing month-by-month income, expenses and savings
// rate for the given number of months, ending at year/month inclusive.
func (l *Ledger) Trends(year int, month time.Month, months int) ([]*domain.TrendPoint, error) {
	if months < 1 {
		months = 1
	}
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	points := make([]*domain.TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		at := anchor.AddDate(0, -i, 0)
		start, end := monthRange(at.Year(), at.Month())
		income, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeIncome)
		if err != nil {
			return nil, err
		}
		expenses, err := l.store.SumByTypeAndDateRange(start, end, domain.TransactionTypeExpense)
		if err != nil {
			return nil, err
		}
		net := income.Sub(expenses)
		points = append(points, &domain.TrendPoint{
			Year:          at.Year(),
			Month:         at.Month(),
			TotalIncome:   income,
			TotalExpenses: expenses,
			SavingsRate:   savingsRate(net, income),
		})
	}
	return points, nil
}

// DailyBalances reports the running total balance across all accounts for
// each day of [start, end], seeded from opening balances plus the net
// effect of everything before the range. Transfers move money between
// accounts and never change the total.
func (l *Ledger) DailyBalances(start, end time.Time) ([]*domain.DailyBalance, error) {
	start, end = normalizeDate(start), normalizeDate(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	accounts, err := l.store.ListAccounts(true)
	if err != nil {
		return nil, err
	}
	running := decimal.Zero
	for _, account := range accounts {
		running = running.Add(account.OpeningBalance)
	}

	before, err := l.store.SumNetEffectBefore(start)
	if err != nil {
		return nil, err
	}
	running = running.Add(before)

	effects, err := l.store.DailyNetEffects(start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]decimal.Decimal, len(effects))
	for _, e := range effects {
		byDay[e.Day.Format("2006-01-02")] = e.Net
	}

	var balances []*domain.DailyBalance
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if net, ok := byDay[day.Format("2006-01-02")]; ok {
			running = running.Add(net)
		}
		balances = append(balances, &domain.DailyBalance{Day: day, Balance: running})
	}
	return balances, nil
}

// monthRange returns the half-open UTC interval [first of month, first of
// next month).
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// savingsRate is net/income as a fraction, zero when there is no income so
// an empty month is never a division fault.
func savingsRate(net, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return net.Div(income)
}

// sortedAmounts orders breakdown rows by amount descending, ties broken by
// name ascending.
func sortedAmounts(totals []*domain.CategoryTotal) []domain.CategoryAmount {
	amounts := make([]domain.CategoryAmount, 0, len(totals))
	for _, t := range totals {
		amounts = append(amounts, domain.CategoryAmount{
			CategoryID: t.CategoryID,
			Name:       t.Name,
			Amount:     t.Total,
		})
	}
	sort.Slice(amounts, func(i, j int) bool {
		if !amounts[i].Amount.Equal(amounts[j].Amount) {
			return amounts[i].Amount.GreaterThan(amounts[j].Amount)
		}
		return amounts[i].Name < amounts[j].Name
	})
	return amounts
}

// buildRollups assembles the expense category forest with recursive totals.
func buildRollups(categories []*domain.Category, totals []*domain.CategoryTotal) []*domain.CategoryRollup {
	direct := make(map[int64]decimal.Decimal, len(totals))
	for _, t := range totals {
		direct[t.CategoryID] = t.Total
	}

	children := make(map[int64][]*domain.Category)
	var roots []*domain.Category
	for _, c := range categories {
		if c.Kind != domain.CategoryExpense {
			continue
		}
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var build func(c *domain.Category) *domain.CategoryRollup
	build = func(c *domain.Category) *domain.CategoryRollup {
		node := &domain.CategoryRollup{Category: c, Direct: decimal.Zero, Total: decimal.Zero}
		if d, ok := direct[c.ID]; ok {
			node.Direct = d
		}
		node.Total = node.Direct
		for _, child := range children[c.ID] {
			childNode := build(child)
			node.Children = append(node.Children, childNode)
			node.Total = node.Total.Add(childNode.Total)
		}
		sortRollups(node.Children)
		return node
	}

	var rollups []*domain.CategoryRollup
	for _, root := range roots {
		rollups = append(rollups, build(root))
	}
	sortRollups(rollups)
	return rollups
}

func sortRollups(nodes []*domain.CategoryRollup) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].Total.Equal(nodes[j].Total) {
			return nodes[i].Total.GreaterThan(nodes[j].Total)
		}
		return nodes[i].Category.Name < nodes[j].Category.Name
	})
}
