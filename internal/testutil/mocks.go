// Package testutil provides an in-memory domain.Store for service tests.
package testutil

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
)

// MockStore is an in-memory implementation of domain.Store. WithinTx
// snapshots all state before running fn and restores it when fn fails, so
// facade rollback behavior is observable without a database. The Fn fields
// allow tests to inject failures mid-operation.
type MockStore struct {
	Accounts     map[int64]*domain.Account
	Categories   map[int64]*domain.Category
	Transactions map[int64]*domain.Transaction
	Budgets      map[int64]*domain.Budget
	Recurring    map[int64]*domain.RecurringTransaction
	NextID       int64

	AdjustBalanceFn     func(id int64, delta decimal.Decimal) error
	CreateTransactionFn func(t *domain.Transaction) (*domain.Transaction, error)
	UpdateTransactionFn func(t *domain.Transaction) (*domain.Transaction, error)

	inTx bool
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		Accounts:     make(map[int64]*domain.Account),
		Categories:   make(map[int64]*domain.Category),
		Transactions: make(map[int64]*domain.Transaction),
		Budgets:      make(map[int64]*domain.Budget),
		Recurring:    make(map[int64]*domain.RecurringTransaction),
		NextID:       1,
	}
}

func (m *MockStore) nextID() int64 {
	id := m.NextID
	m.NextID++
	return id
}

// WithinTx snapshots state, runs fn, and restores the snapshot when fn
// returns an error. Nested calls join the outer transaction.
func (m *MockStore) WithinTx(fn func(domain.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	snapshot := m.snapshot()
	m.inTx = true
	err := fn(m)
	m.inTx = false
	if err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

// Close implements domain.Store.
func (m *MockStore) Close() error { return nil }

type mockSnapshot struct {
	accounts     map[int64]*domain.Account
	categories   map[int64]*domain.Category
	transactions map[int64]*domain.Transaction
	budgets      map[int64]*domain.Budget
	recurring    map[int64]*domain.RecurringTransaction
	nextID       int64
}

func (m *MockStore) snapshot() *mockSnapshot {
	s := &mockSnapshot{
		accounts:     make(map[int64]*domain.Account, len(m.Accounts)),
		categories:   make(map[int64]*domain.Category, len(m.Categories)),
		transactions: make(map[int64]*domain.Transaction, len(m.Transactions)),
		budgets:      make(map[int64]*domain.Budget, len(m.Budgets)),
		recurring:    make(map[int64]*domain.RecurringTransaction, len(m.Recurring)),
		nextID:       m.NextID,
	}
	for id, a := range m.Accounts {
		s.accounts[id] = cloneAccount(a)
	}
	for id, c := range m.Categories {
		s.categories[id] = cloneCategory(c)
	}
	for id, t := range m.Transactions {
		s.transactions[id] = cloneTransaction(t)
	}
	for id, b := range m.Budgets {
		clone := *b
		s.budgets[id] = &clone
	}
	for id, r := range m.Recurring {
		clone := *r
		if r.CategoryID != nil {
			v := *r.CategoryID
			clone.CategoryID = &v
		}
		s.recurring[id] = &clone
	}
	return s
}

func (m *MockStore) restore(s *mockSnapshot) {
	m.Accounts = s.accounts
	m.Categories = s.categories
	m.Transactions = s.transactions
	m.Budgets = s.budgets
	m.Recurring = s.recurring
	m.NextID = s.nextID
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	if a.Description != nil {
		v := *a.Description
		clone.Description = &v
	}
	return &clone
}

func cloneCategory(c *domain.Category) *domain.Category {
	clone := *c
	if c.ParentID != nil {
		v := *c.ParentID
		clone.ParentID = &v
	}
	if c.ColorCode != nil {
		v := *c.ColorCode
		clone.ColorCode = &v
	}
	return &clone
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	clone := *t
	if t.ToAccountID != nil {
		v := *t.ToAccountID
		clone.ToAccountID = &v
	}
	if t.CategoryID != nil {
		v := *t.CategoryID
		clone.CategoryID = &v
	}
	if t.RecurringID != nil {
		v := *t.RecurringID
		clone.RecurringID = &v
	}
	clone.Tags = append([]string(nil), t.Tags...)
	return &clone
}

// Accounts

func (m *MockStore) CreateAccount(account *domain.Account) (*domain.Account, error) {
	account.ID = m.nextID()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

func (m *MockStore) GetAccount(id int64) (*domain.Account, error) {
	if account, ok := m.Accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockStore) ListAccounts(includeArchived bool) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, a := range m.Accounts {
		if !includeArchived && a.Archived {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockStore) UpdateAccount(id int64, name string, description *string) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.Name = name
	account.Description = description
	account.UpdatedAt = time.Now().UTC()
	return account, nil
}

func (m *MockStore) SetAccountArchived(id int64, archived bool) error {
	account, ok := m.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Archived = archived
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) AdjustAccountBalance(id int64, delta decimal.Decimal) error {
	if m.AdjustBalanceFn != nil {
		if err := m.AdjustBalanceFn(id, delta); err != nil {
			return err
		}
	}
	account, ok := m.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(delta)
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) DeleteAccount(id int64) error {
	if _, ok := m.Accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.Accounts, id)
	return nil
}

func (m *MockStore) AccountHasTransactions(id int64) (bool, error) {
	for _, t := range m.Transactions {
		if t.AccountID == id || (t.ToAccountID != nil && *t.ToAccountID == id) {
			return true, nil
		}
	}
	return false, nil
}

// Categories

func (m *MockStore) CreateCategory(category *domain.Category) (*domain.Category, error) {
	category.ID = m.nextID()
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockStore) GetCategory(id int64) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockStore) ListCategories() ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range m.Categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (m *MockStore) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	current, ok := m.Categories[category.ID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	category.CreatedAt = current.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockStore) DeleteCategory(id int64) error {
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockStore) CategoryHasTransactions(id int64) (bool, error) {
	for _, t := range m.Transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// Transactions

func (m *MockStore) CreateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(transaction)
	}
	transaction.ID = m.nextID()
	transaction.CreatedAt = time.Now().UTC()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

func (m *MockStore) GetTransaction(id int64) (*domain.Transaction, error) {
	if transaction, ok := m.Transactions[id]; ok {
		return transaction, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockStore) UpdateTransaction(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.UpdateTransactionFn != nil {
		return m.UpdateTransactionFn(transaction)
	}
	current, ok := m.Transactions[transaction.ID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.CreatedAt = current.CreatedAt
	transaction.UpdatedAt = time.Now().UTC()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

func (m *MockStore) DeleteTransaction(id int64) error {
	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

func (m *MockStore) ListTransactions(filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	var matches []*domain.Transaction
	for _, t := range m.Transactions {
		if filter != nil && !matchesFilter(t, filter) {
			continue
		}
		matches = append(matches, t)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.After(matches[j].Date)
		}
		return matches[i].ID > matches[j].ID
	})
	if filter != nil && filter.Limit > 0 && int(filter.Limit) < len(matches) {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func matchesFilter(t *domain.Transaction, f *domain.TransactionFilter) bool {
	if f.AccountID != nil && t.AccountID != *f.AccountID &&
		(t.ToAccountID == nil || *t.ToAccountID != *f.AccountID) {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !t.Date.Before(*f.EndDate) {
		return false
	}
	return true
}

func (m *MockStore) SumByTypeAndDateRange(start, end time.Time, transactionType domain.TransactionType) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.Type == transactionType && inRange(t.Date, start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *MockStore) ExpenseTotalsByCategory(start, end time.Time) ([]*domain.CategoryTotal, error) {
	sums := make(map[int64]decimal.Decimal)
	for _, t := range m.Transactions {
		if t.Type != domain.TransactionTypeExpense || t.CategoryID == nil || !inRange(t.Date, start, end) {
			continue
		}
		sums[*t.CategoryID] = sums[*t.CategoryID].Add(t.Amount)
	}
	var totals []*domain.CategoryTotal
	for id, total := range sums {
		name := ""
		if c, ok := m.Categories[id]; ok {
			name = c.Name
		}
		totals = append(totals, &domain.CategoryTotal{CategoryID: id, Name: name, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].CategoryID < totals[j].CategoryID })
	return totals, nil
}

func (m *MockStore) SumExpensesByCategory(categoryID int64, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.Type == domain.TransactionTypeExpense && t.CategoryID != nil &&
			*t.CategoryID == categoryID && inRange(t.Date, start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *MockStore) AccountEffectTotals(accountID int64) (*domain.EffectTotals, error) {
	totals := &domain.EffectTotals{
		Income:       decimal.Zero,
		Expense:      decimal.Zero,
		TransfersIn:  decimal.Zero,
		TransfersOut: decimal.Zero,
	}
	for _, t := range m.Transactions {
		switch t.Type {
		case domain.TransactionTypeIncome:
			if t.AccountID == accountID {
				totals.Income = totals.Income.Add(t.Amount)
			}
		case domain.TransactionTypeExpense:
			if t.AccountID == accountID {
				totals.Expense = totals.Expense.Add(t.Amount)
			}
		case domain.TransactionTypeTransfer:
			if t.AccountID == accountID {
				totals.TransfersOut = totals.TransfersOut.Add(t.Amount)
			}
			if t.ToAccountID != nil && *t.ToAccountID == accountID {
				totals.TransfersIn = totals.TransfersIn.Add(t.Amount)
			}
		}
	}
	return totals, nil
}

func (m *MockStore) SumNetEffectBefore(day time.Time) (decimal.Decimal, error) {
	net := decimal.Zero
	for _, t := range m.Transactions {
		if !t.Date.Before(day) {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			net = net.Add(t.Amount)
		case domain.TransactionTypeExpense:
			net = net.Sub(t.Amount)
		}
	}
	return net, nil
}

func (m *MockStore) DailyNetEffects(start, end time.Time) ([]*domain.DailyNet, error) {
	byDay := make(map[string]decimal.Decimal)
	for _, t := range m.Transactions {
		if !inRange(t.Date, start, end) {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			byDay[t.Date.Format("2006-01-02")] = byDay[t.Date.Format("2006-01-02")].Add(t.Amount)
		case domain.TransactionTypeExpense:
			byDay[t.Date.Format("2006-01-02")] = byDay[t.Date.Format("2006-01-02")].Sub(t.Amount)
		}
	}
	var days []string
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	var effects []*domain.DailyNet
	for _, day := range days {
		d, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			return nil, err
		}
		effects = append(effects, &domain.DailyNet{Day: d, Net: byDay[day]})
	}
	return effects, nil
}

func (m *MockStore) RecurringTransactionExists(recurringID int64, year int, month time.Month) (bool, error) {
	for _, t := range m.Transactions {
		if t.RecurringID != nil && *t.RecurringID == recurringID &&
			t.Date.Year() == year && t.Date.Month() == month {
			return true, nil
		}
	}
	return false, nil
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && date.Before(end)
}

// Budgets

func (m *MockStore) CreateBudget(budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.nextID()
	budget.CreatedAt = time.Now().UTC()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

func (m *MockStore) GetBudget(id int64) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockStore) ListBudgets() ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, b := range m.Budgets {
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

func (m *MockStore) DeleteBudget(id int64) error {
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

func (m *MockStore) BudgetExistsForCategory(categoryID int64) (bool, error) {
	for _, b := range m.Budgets {
		if b.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

// Recurring

func (m *MockStore) CreateRecurring(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	rt.ID = m.nextID()
	rt.CreatedAt = time.Now().UTC()
	rt.UpdatedAt = rt.CreatedAt
	m.Recurring[rt.ID] = rt
	return rt, nil
}

func (m *MockStore) GetRecurring(id int64) (*domain.RecurringTransaction, error) {
	if rt, ok := m.Recurring[id]; ok {
		return rt, nil
	}
	return nil, domain.ErrRecurringNotFound
}

func (m *MockStore) ListRecurring(activeOnly bool) ([]*domain.RecurringTransaction, error) {
	var templates []*domain.RecurringTransaction
	for _, rt := range m.Recurring {
		if activeOnly && !rt.Active {
			continue
		}
		templates = append(templates, rt)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (m *MockStore) UpdateRecurring(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	current, ok := m.Recurring[rt.ID]
	if !ok {
		return nil, domain.ErrRecurringNotFound
	}
	rt.CreatedAt = current.CreatedAt
	rt.UpdatedAt = time.Now().UTC()
	m.Recurring[rt.ID] = rt
	return rt, nil
}

func (m *MockStore) DeleteRecurring(id int64) error {
	if _, ok := m.Recurring[id]; !ok {
		return domain.ErrRecurringNotFound
	}
	delete(m.Recurring, id)
	return nil
}

func (m *MockStore) RecurringExistsForAccount(accountID int64) (bool, error) {
	for _, rt := range m.Recurring {
		if rt.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) RecurringExistsForCategory(categoryID int64) (bool, error) {
	for _, rt := range m.Recurring {
		if rt.CategoryID != nil && *rt.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}
