package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonseca/tally/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedAccount(t *testing.T, s *Store, name, opening string) *domain.Account {
	t.Helper()
	balance, err := decimal.NewFromString(opening)
	require.NoError(t, err)
	account, err := s.CreateAccount(&domain.Account{
		Name:           name,
		Kind:           domain.AccountChecking,
		OpeningBalance: balance,
		Balance:        balance,
		Currency:       "USD",
	})
	require.NoError(t, err)
	return account
}

func seedCategory(t *testing.T, s *Store, name string, kind domain.CategoryKind) *domain.Category {
	t.Helper()
	category, err := s.CreateCategory(&domain.Category{Name: name, Kind: kind})
	require.NoError(t, err)
	return category
}

func seedTransaction(t *testing.T, s *Store, txType domain.TransactionType, accountID int64, categoryID *int64, amount string, date time.Time) *domain.Transaction {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	transaction, err := s.CreateTransaction(&domain.Transaction{
		Reference:  uuid.New(),
		Type:       txType,
		Amount:     d,
		Date:       date,
		AccountID:  accountID,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return transaction
}

func TestAccountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	desc := "main account"
	created, err := store.CreateAccount(&domain.Account{
		Name:           "Checking",
		Kind:           domain.AccountChecking,
		OpeningBalance: decimal.RequireFromString("1234.56"),
		Balance:        decimal.RequireFromString("1234.56"),
		Currency:       "USD",
		Description:    &desc,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := store.GetAccount(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1234.56")))
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.False(t, got.Archived)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetAccount_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetAccount(42)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustAccountBalance_ExactDecimal(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "Checking", "0.10")

	// Classic float trap: 0.1 + 0.2 must be exactly 0.3.
	require.NoError(t, store.AdjustAccountBalance(account.ID, decimal.RequireFromString("0.20")))

	got, err := store.GetAccount(account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("0.3")), "got %s", got.Balance)
}

func TestListAccounts_ArchivedFilter(t *testing.T) {
	store := newTestStore(t)
	seedAccount(t, store, "Active", "0")
	retired := seedAccount(t, store, "Retired", "0")
	require.NoError(t, store.SetAccountArchived(retired.ID, true))

	visible, err := store.ListAccounts(false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Active", visible[0].Name)

	all, err := store.ListAccounts(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "Checking", "100")
	category := seedCategory(t, store, "Groceries", domain.CategoryExpense)

	ref := uuid.New()
	created, err := store.CreateTransaction(&domain.Transaction{
		Reference:   ref,
		Type:        domain.TransactionTypeExpense,
		Amount:      decimal.RequireFromString("42.99"),
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "weekly shop",
		Tags:        []string{"food", "weekly"},
		AccountID:   account.ID,
		CategoryID:  &category.ID,
	})
	require.NoError(t, err)

	got, err := store.GetTransaction(created.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, got.Reference)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("42.99")))
	assert.True(t, got.Date.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"food", "weekly"}, got.Tags)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, category.ID, *got.CategoryID)
	assert.Nil(t, got.ToAccountID)
}

func TestListTransactions_FilterAndOrder(t *testing.T) {
	store := newTestStore(t)
	a := seedAccount(t, store, "A", "0")
	b := seedAccount(t, store, "B", "0")
	category := seedCategory(t, store, "Misc", domain.CategoryExpense)

	seedTransaction(t, store, domain.TransactionTypeExpense, a.ID, &category.ID, "1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, store, domain.TransactionTypeExpense, a.ID, &category.ID, "2", time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, store, domain.TransactionTypeExpense, b.ID, &category.ID, "3", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))

	all, err := store.ListTransactions(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.After(all[1].Date))
	assert.True(t, all[1].Date.After(all[2].Date))

	forA, err := store.ListTransactions(&domain.TransactionFilter{AccountID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	limited, err := store.ListTransactions(&domain.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.True(t, limited[0].Amount.Equal(decimal.RequireFromString("2")))
}

func TestListTransactions_AccountFilterMatchesTransferDestination(t *testing.T) {
	store := newTestStore(t)
	a := seedAccount(t, store, "A", "0")
	b := seedAccount(t, store, "B", "0")

	_, err := store.CreateTransaction(&domain.Transaction{
		Reference:   uuid.New(),
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.RequireFromString("10"),
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		AccountID:   a.ID,
		ToAccountID: &b.ID,
	})
	require.NoError(t, err)

	forB, err := store.ListTransactions(&domain.TransactionFilter{AccountID: &b.ID})
	require.NoError(t, err)
	assert.Len(t, forB, 1)
}

func TestAggregates(t *testing.T) {
	store := newTestStore(t)
	a := seedAccount(t, store, "A", "0")
	b := seedAccount(t, store, "B", "0")
	salary := seedCategory(t, store, "Salary", domain.CategoryIncome)
	rent := seedCategory(t, store, "Rent", domain.CategoryExpense)
	food := seedCategory(t, store, "Food", domain.CategoryExpense)

	march := func(day int) time.Time { return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC) }
	seedTransaction(t, store, domain.TransactionTypeIncome, a.ID, &salary.ID, "1000", march(1))
	seedTransaction(t, store, domain.TransactionTypeExpense, a.ID, &rent.ID, "400", march(2))
	seedTransaction(t, store, domain.TransactionTypeExpense, a.ID, &food.ID, "0.10", march(3))
	seedTransaction(t, store, domain.TransactionTypeExpense, a.ID, &food.ID, "0.20", march(4))
	_, err := store.CreateTransaction(&domain.Transaction{
		Reference:   uuid.New(),
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.RequireFromString("150"),
		Date:        march(5),
		AccountID:   a.ID,
		ToAccountID: &b.ID,
	})
	require.NoError(t, err)

	start, end := march(1), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	income, err := store.SumByTypeAndDateRange(start, end, domain.TransactionTypeIncome)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.RequireFromString("1000")), "got %s", income)

	expenses, err := store.SumByTypeAndDateRange(start, end, domain.TransactionTypeExpense)
	require.NoError(t, err)
	assert.True(t, expenses.Equal(decimal.RequireFromString("400.3")), "got %s", expenses)

	foodTotal, err := store.SumExpensesByCategory(food.ID, start, end)
	require.NoError(t, err)
	assert.True(t, foodTotal.Equal(decimal.RequireFromString("0.3")), "got %s", foodTotal)

	byCategory, err := store.ExpenseTotalsByCategory(start, end)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	effects, err := store.AccountEffectTotals(a.ID)
	require.NoError(t, err)
	assert.True(t, effects.Income.Equal(decimal.RequireFromString("1000")), "got %s", effects.Income)
	assert.True(t, effects.Expense.Equal(decimal.RequireFromString("400.3")), "got %s", effects.Expense)
	assert.True(t, effects.TransfersOut.Equal(decimal.RequireFromString("150")), "got %s", effects.TransfersOut)
	assert.True(t, effects.TransfersIn.IsZero())

	bEffects, err := store.AccountEffectTotals(b.ID)
	require.NoError(t, err)
	assert.True(t, bEffects.TransfersIn.Equal(decimal.RequireFromString("150")), "got %s", bEffects.TransfersIn)

	before, err := store.SumNetEffectBefore(march(3))
	require.NoError(t, err)
	assert.True(t, before.Equal(decimal.RequireFromString("600")), "got %s", before)

	daily, err := store.DailyNetEffects(start, end)
	require.NoError(t, err)
	require.Len(t, daily, 4)
	assert.True(t, daily[0].Day.Equal(march(1)))
	assert.True(t, daily[0].Net.Equal(decimal.RequireFromString("1000")), "got %s", daily[0].Net)
	assert.True(t, daily[1].Net.Equal(decimal.RequireFromString("-400")), "got %s", daily[1].Net)
}

func TestRecurringTransactionExists(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "A", "0")
	rent := seedCategory(t, store, "Rent", domain.CategoryExpense)

	rt, err := store.CreateRecurring(&domain.RecurringTransaction{
		Name:       "Rent",
		Amount:     decimal.RequireFromString("800"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		Frequency:  domain.FrequencyMonthly,
		DueDay:     1,
		Active:     true,
	})
	require.NoError(t, err)

	exists, err := store.RecurringTransactionExists(rt.ID, 2026, time.March)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.CreateTransaction(&domain.Transaction{
		Reference:   uuid.New(),
		Type:        domain.TransactionTypeExpense,
		Amount:      decimal.RequireFromString("800"),
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		AccountID:   account.ID,
		CategoryID:  &rent.ID,
		RecurringID: &rt.ID,
	})
	require.NoError(t, err)

	exists, err = store.RecurringTransactionExists(rt.ID, 2026, time.March)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.RecurringTransactionExists(rt.ID, 2026, time.April)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "A", "100")

	err := store.WithinTx(func(tx domain.Store) error {
		if err := tx.AdjustAccountBalance(account.ID, decimal.RequireFromString("50")); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	got, err := store.GetAccount(account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100")), "got %s", got.Balance)
}

func TestWithinTx_CommitsAndJoins(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "A", "100")

	err := store.WithinTx(func(tx domain.Store) error {
		if err := tx.AdjustAccountBalance(account.ID, decimal.RequireFromString("25")); err != nil {
			return err
		}
		// Nested call joins the open transaction.
		return tx.WithinTx(func(inner domain.Store) error {
			return inner.AdjustAccountBalance(account.ID, decimal.RequireFromString("25"))
		})
	})
	require.NoError(t, err)

	got, err := store.GetAccount(account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("150")), "got %s", got.Balance)
}

func TestBudgetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	rent := seedCategory(t, store, "Rent", domain.CategoryExpense)

	created, err := store.CreateBudget(&domain.Budget{
		CategoryID: rent.ID,
		Amount:     decimal.RequireFromString("900"),
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := store.GetBudget(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("900")))
	assert.True(t, got.StartDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, store.DeleteBudget(created.ID))
	_, err = store.GetBudget(created.ID)
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteTransaction(99)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestReferenceExistenceChecks(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "A", "0")
	rent := seedCategory(t, store, "Rent", domain.CategoryExpense)
	food := seedCategory(t, store, "Food", domain.CategoryExpense)

	exists, err := store.BudgetExistsForCategory(rent.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.CreateBudget(&domain.Budget{
		CategoryID: rent.ID,
		Amount:     decimal.RequireFromString("900"),
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	exists, err = store.BudgetExistsForCategory(rent.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.BudgetExistsForCategory(food.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.RecurringExistsForAccount(account.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.CreateRecurring(&domain.RecurringTransaction{
		Name:       "Rent",
		Amount:     decimal.RequireFromString("800"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &rent.ID,
		Frequency:  domain.FrequencyMonthly,
		DueDay:     1,
		Active:     true,
	})
	require.NoError(t, err)

	exists, err = store.RecurringExistsForAccount(account.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.RecurringExistsForCategory(rent.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.RecurringExistsForCategory(food.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDelete_ForeignKeyViolationMapsToIntegrityError(t *testing.T) {
	store := newTestStore(t)
	account := seedAccount(t, store, "A", "0")
	rent := seedCategory(t, store, "Rent", domain.CategoryExpense)

	_, err := store.CreateBudget(&domain.Budget{
		CategoryID: rent.ID,
		Amount:     decimal.RequireFromString("900"),
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = store.DeleteCategory(rent.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	_, err = store.GetCategory(rent.ID)
	assert.NoError(t, err)

	_, err = store.CreateRecurring(&domain.RecurringTransaction{
		Name:      "Salary",
		Amount:    decimal.RequireFromString("100"),
		Type:      domain.TransactionTypeIncome,
		AccountID: account.ID,
		Frequency: domain.FrequencyMonthly,
		DueDay:    1,
		Active:    true,
	})
	require.NoError(t, err)

	err = store.DeleteAccount(account.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	_, err = store.GetAccount(account.ID)
	assert.NoError(t, err)
}
