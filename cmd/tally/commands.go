package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
	"github.com/mfonseca/tally/internal/ledger"
)

func runAccount(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally account <add|list|show|rename|archive|unarchive|delete>")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("account add", flag.ExitOnError)
		name := fs.String("name", "", "account name")
		kind := fs.String("kind", "checking", "account kind (checking, savings, credit, cash, investment)")
		opening := fs.String("opening", "0", "opening balance")
		currency := fs.String("currency", "", "3-letter currency code")
		description := fs.String("desc", "", "description")
		fs.Parse(args[1:])

		amount, err := decimal.NewFromString(*opening)
		if err != nil {
			return fmt.Errorf("invalid opening balance: %w", err)
		}
		account, err := lgr.AddAccount(ledger.AddAccountInput{
			Name:           *name,
			Kind:           domain.AccountKind(*kind),
			OpeningBalance: amount,
			Currency:       *currency,
			Description:    optString(*description),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created account %d: %s\n", account.ID, account.Name)
		return nil

	case "list":
		fs := flag.NewFlagSet("account list", flag.ExitOnError)
		all := fs.Bool("all", false, "include archived accounts")
		fs.Parse(args[1:])

		accounts, err := lgr.ListAccounts(*all)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tNAME\tKIND\tBALANCE\tCURRENCY\tARCHIVED")
		for _, a := range accounts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n",
				a.ID, a.Name, a.Kind, a.Balance.StringFixed(2), a.Currency, a.Archived)
		}
		return w.Flush()

	case "show":
		fs := flag.NewFlagSet("account show", flag.ExitOnError)
		id := fs.Int64("id", 0, "account id")
		fs.Parse(args[1:])

		account, err := lgr.GetAccount(*id)
		if err != nil {
			return err
		}
		fmt.Printf("Account %d: %s (%s)\n", account.ID, account.Name, account.Kind)
		fmt.Printf("  Balance: %s %s (opening %s)\n",
			account.Balance.StringFixed(2), account.Currency, account.OpeningBalance.StringFixed(2))
		if account.Description != nil {
			fmt.Printf("  Description: %s\n", *account.Description)
		}
		if account.Archived {
			fmt.Println("  Archived")
		}
		return nil

	case "rename":
		fs := flag.NewFlagSet("account rename", flag.ExitOnError)
		id := fs.Int64("id", 0, "account id")
		name := fs.String("name", "", "new name")
		description := fs.String("desc", "", "new description")
		fs.Parse(args[1:])

		_, err := lgr.UpdateAccount(*id, *name, optString(*description))
		return err

	case "archive":
		fs := flag.NewFlagSet("account archive", flag.ExitOnError)
		id := fs.Int64("id", 0, "account id")
		fs.Parse(args[1:])
		return lgr.ArchiveAccount(*id)

	case "unarchive":
		fs := flag.NewFlagSet("account unarchive", flag.ExitOnError)
		id := fs.Int64("id", 0, "account id")
		fs.Parse(args[1:])
		return lgr.UnarchiveAccount(*id)

	case "delete":
		fs := flag.NewFlagSet("account delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "account id")
		fs.Parse(args[1:])
		return lgr.DeleteAccount(*id)

	default:
		return fmt.Errorf("unknown account subcommand %q", args[0])
	}
}

func runCategory(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally category <add|list|update|delete>")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("category add", flag.ExitOnError)
		name := fs.String("name", "", "category name")
		kind := fs.String("kind", "expense", "category kind (income, expense)")
		parent := fs.Int64("parent", 0, "parent category id")
		color := fs.String("color", "", "hex color code")
		fs.Parse(args[1:])

		category, err := lgr.AddCategory(ledger.AddCategoryInput{
			Name:      *name,
			Kind:      domain.CategoryKind(*kind),
			ParentID:  optID(*parent),
			ColorCode: optString(*color),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created category %d: %s\n", category.ID, category.Name)
		return nil

	case "list":
		categories, err := lgr.ListCategories()
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tNAME\tKIND\tPARENT")
		for _, c := range categories {
			parent := "-"
			if c.ParentID != nil {
				parent = fmt.Sprintf("%d", *c.ParentID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Kind, parent)
		}
		return w.Flush()

	case "update":
		fs := flag.NewFlagSet("category update", flag.ExitOnError)
		id := fs.Int64("id", 0, "category id")
		name := fs.String("name", "", "category name")
		kind := fs.String("kind", "", "category kind")
		parent := fs.Int64("parent", 0, "parent category id")
		color := fs.String("color", "", "hex color code")
		fs.Parse(args[1:])

		current, err := lgr.GetCategory(*id)
		if err != nil {
			return err
		}
		input := ledger.UpdateCategoryInput{
			Name:      current.Name,
			Kind:      current.Kind,
			ParentID:  current.ParentID,
			ColorCode: current.ColorCode,
		}
		if *name != "" {
			input.Name = *name
		}
		if *kind != "" {
			input.Kind = domain.CategoryKind(*kind)
		}
		if *parent != 0 {
			input.ParentID = optID(*parent)
		}
		if *color != "" {
			input.ColorCode = optString(*color)
		}
		_, err = lgr.UpdateCategory(*id, input)
		return err

	case "delete":
		fs := flag.NewFlagSet("category delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "category id")
		fs.Parse(args[1:])
		return lgr.DeleteCategory(*id)

	default:
		return fmt.Errorf("unknown category subcommand %q", args[0])
	}
}

func runTransaction(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally tx <add|list|edit|delete>")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("tx add", flag.ExitOnError)
		txType := fs.String("type", "expense", "transaction type (income, expense)")
		account := fs.Int64("account", 0, "account id")
		category := fs.Int64("category", 0, "category id")
		amount := fs.String("amount", "", "amount")
		date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
		description := fs.String("desc", "", "description")
		tags := fs.String("tags", "", "comma-separated tags")
		fs.Parse(args[1:])

		d, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		when, err := parseDateFlag(*date)
		if err != nil {
			return err
		}
		transaction, err := lgr.AddTransaction(ledger.AddTransactionInput{
			Type:        domain.TransactionType(*txType),
			AccountID:   *account,
			CategoryID:  optID(*category),
			Amount:      d,
			Date:        when,
			Description: *description,
			Tags:        domain.SplitTags(*tags),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s %s (transaction %d)\n", transaction.Type, transaction.Amount.StringFixed(2), transaction.ID)
		return nil

	case "list":
		fs := flag.NewFlagSet("tx list", flag.ExitOnError)
		account := fs.Int64("account", 0, "filter by account id")
		category := fs.Int64("category", 0, "filter by category id")
		txType := fs.String("type", "", "filter by type")
		from := fs.String("from", "", "start date (YYYY-MM-DD, inclusive)")
		to := fs.String("to", "", "end date (YYYY-MM-DD, exclusive)")
		limit := fs.Int("limit", 0, "maximum rows")
		fs.Parse(args[1:])

		filter := &domain.TransactionFilter{
			AccountID:  optID(*account),
			CategoryID: optID(*category),
			Limit:      int32(*limit),
		}
		if *txType != "" {
			t := domain.TransactionType(*txType)
			filter.Type = &t
		}
		var err error
		if filter.StartDate, err = parseDateFlag(*from); err != nil {
			return err
		}
		if filter.EndDate, err = parseDateFlag(*to); err != nil {
			return err
		}

		transactions, err := lgr.ListTransactions(filter)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tACCOUNT\tDESCRIPTION")
		for _, t := range transactions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
				t.ID, t.Date.Format("2006-01-02"), t.Type, t.Amount.StringFixed(2), t.AccountID, t.Description)
		}
		return w.Flush()

	case "edit":
		fs := flag.NewFlagSet("tx edit", flag.ExitOnError)
		id := fs.Int64("id", 0, "transaction id")
		txType := fs.String("type", "", "transaction type")
		account := fs.Int64("account", 0, "account id")
		toAccount := fs.Int64("to", 0, "destination account id (transfers)")
		category := fs.Int64("category", 0, "category id")
		amount := fs.String("amount", "", "amount")
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		description := fs.String("desc", "", "description")
		tags := fs.String("tags", "", "comma-separated tags")
		fs.Parse(args[1:])

		current, err := lgr.GetTransaction(*id)
		if err != nil {
			return err
		}
		input := ledger.EditTransactionInput{
			Type:        current.Type,
			AccountID:   current.AccountID,
			ToAccountID: current.ToAccountID,
			CategoryID:  current.CategoryID,
			Amount:      current.Amount,
			Date:        current.Date,
			Description: current.Description,
			Tags:        current.Tags,
		}
		if *txType != "" {
			input.Type = domain.TransactionType(*txType)
		}
		if *account != 0 {
			input.AccountID = *account
		}
		if *toAccount != 0 {
			input.ToAccountID = optID(*toAccount)
		}
		if *category != 0 {
			input.CategoryID = optID(*category)
		}
		if *amount != "" {
			if input.Amount, err = decimal.NewFromString(*amount); err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
		}
		if *date != "" {
			when, err := parseDateFlag(*date)
			if err != nil {
				return err
			}
			input.Date = *when
		}
		if *description != "" {
			input.Description = *description
		}
		if *tags != "" {
			input.Tags = domain.SplitTags(*tags)
		}
		_, err = lgr.EditTransaction(*id, input)
		return err

	case "delete":
		fs := flag.NewFlagSet("tx delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "transaction id")
		fs.Parse(args[1:])
		return lgr.DeleteTransaction(*id)

	default:
		return fmt.Errorf("unknown tx subcommand %q", args[0])
	}
}

func runTransfer(lgr *ledger.Ledger, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	from := fs.Int64("from", 0, "source account id")
	to := fs.Int64("to", 0, "destination account id")
	amount := fs.String("amount", "", "amount")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	description := fs.String("desc", "", "description")
	tags := fs.String("tags", "", "comma-separated tags")
	fs.Parse(args)

	d, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	when, err := parseDateFlag(*date)
	if err != nil {
		return err
	}
	transaction, err := lgr.Transfer(ledger.TransferInput{
		FromAccountID: *from,
		ToAccountID:   *to,
		Amount:        d,
		Date:          when,
		Description:   *description,
		Tags:          domain.SplitTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Transferred %s from account %d to account %d (transaction %d)\n",
		transaction.Amount.StringFixed(2), *from, *to, transaction.ID)
	return nil
}

func runBudget(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally budget <set|list|progress|delete>")
	}

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("budget set", flag.ExitOnError)
		category := fs.Int64("category", 0, "expense category id")
		amount := fs.String("amount", "", "budget amount")
		from := fs.String("from", "", "start date (YYYY-MM-DD)")
		to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		fs.Parse(args[1:])

		d, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		start, err := parseDateFlag(*from)
		if err != nil {
			return err
		}
		end, err := parseDateFlag(*to)
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			return fmt.Errorf("budget requires -from and -to dates")
		}
		budget, err := lgr.SetBudget(ledger.SetBudgetInput{
			CategoryID: *category,
			Amount:     d,
			StartDate:  *start,
			EndDate:    *end,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created budget %d\n", budget.ID)
		return nil

	case "list":
		budgets, err := lgr.ListBudgets()
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tCATEGORY\tAMOUNT\tFROM\tTO")
		for _, b := range budgets {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				b.ID, b.CategoryID, b.Amount.StringFixed(2),
				b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
		}
		return w.Flush()

	case "progress":
		progress, err := lgr.BudgetProgress()
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tCATEGORY\tBUDGET\tSPENT\tREMAINING")
		for _, p := range progress {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				p.Budget.ID, p.CategoryName, p.Budget.Amount.StringFixed(2),
				p.Spent.StringFixed(2), p.Remaining.StringFixed(2))
		}
		return w.Flush()

	case "delete":
		fs := flag.NewFlagSet("budget delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "budget id")
		fs.Parse(args[1:])
		return lgr.DeleteBudget(*id)

	default:
		return fmt.Errorf("unknown budget subcommand %q", args[0])
	}
}

func runRecurring(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally recurring <add|list|update|delete|generate>")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("recurring add", flag.ExitOnError)
		name := fs.String("name", "", "template name")
		amount := fs.String("amount", "", "amount")
		txType := fs.String("type", "expense", "transaction type (income, expense)")
		account := fs.Int64("account", 0, "account id")
		category := fs.Int64("category", 0, "category id")
		dueDay := fs.Int("due", 1, "day of month the transaction falls due")
		fs.Parse(args[1:])

		d, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		rt, err := lgr.AddRecurring(ledger.AddRecurringInput{
			Name:       *name,
			Amount:     d,
			Type:       domain.TransactionType(*txType),
			AccountID:  *account,
			CategoryID: optID(*category),
			DueDay:     *dueDay,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created recurring template %d: %s\n", rt.ID, rt.Name)
		return nil

	case "list":
		fs := flag.NewFlagSet("recurring list", flag.ExitOnError)
		all := fs.Bool("all", false, "include inactive templates")
		fs.Parse(args[1:])

		templates, err := lgr.ListRecurring(!*all)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tAMOUNT\tACCOUNT\tDUE\tACTIVE")
		for _, rt := range templates {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%t\n",
				rt.ID, rt.Name, rt.Type, rt.Amount.StringFixed(2), rt.AccountID, rt.DueDay, rt.Active)
		}
		return w.Flush()

	case "update":
		fs := flag.NewFlagSet("recurring update", flag.ExitOnError)
		id := fs.Int64("id", 0, "template id")
		name := fs.String("name", "", "template name")
		amount := fs.String("amount", "", "amount")
		txType := fs.String("type", "", "transaction type")
		account := fs.Int64("account", 0, "account id")
		category := fs.Int64("category", 0, "category id")
		dueDay := fs.Int("due", 0, "day of month")
		inactive := fs.Bool("inactive", false, "deactivate the template")
		fs.Parse(args[1:])

		current, err := lgr.GetRecurring(*id)
		if err != nil {
			return err
		}
		input := ledger.AddRecurringInput{
			Name:       current.Name,
			Amount:     current.Amount,
			Type:       current.Type,
			AccountID:  current.AccountID,
			CategoryID: current.CategoryID,
			DueDay:     current.DueDay,
		}
		if *name != "" {
			input.Name = *name
		}
		if *amount != "" {
			if input.Amount, err = decimal.NewFromString(*amount); err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
		}
		if *txType != "" {
			input.Type = domain.TransactionType(*txType)
		}
		if *account != 0 {
			input.AccountID = *account
		}
		if *category != 0 {
			input.CategoryID = optID(*category)
		}
		if *dueDay != 0 {
			input.DueDay = *dueDay
		}
		_, err = lgr.UpdateRecurring(*id, input, !*inactive)
		return err

	case "delete":
		fs := flag.NewFlagSet("recurring delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "template id")
		fs.Parse(args[1:])
		return lgr.DeleteRecurring(*id)

	case "generate":
		fs := flag.NewFlagSet("recurring generate", flag.ExitOnError)
		year := fs.Int("year", time.Now().UTC().Year(), "year")
		month := fs.Int("month", int(time.Now().UTC().Month()), "month (1-12)")
		fs.Parse(args[1:])

		generated, err := lgr.GenerateDue(*year, time.Month(*month))
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d transactions for %04d-%02d\n", len(generated), *year, *month)
		return nil

	default:
		return fmt.Errorf("unknown recurring subcommand %q", args[0])
	}
}

func runVerify(lgr *ledger.Ledger, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	account := fs.Int64("account", 0, "verify one account only")
	fs.Parse(args)

	if *account != 0 {
		if err := lgr.CheckConsistency(*account); err != nil {
			return err
		}
		fmt.Printf("Account %d is consistent\n", *account)
		return nil
	}
	if err := lgr.CheckAllConsistency(); err != nil {
		return err
	}
	fmt.Println("All account balances are consistent")
	return nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func optID(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return &t, nil
}
