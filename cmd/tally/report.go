package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfonseca/tally/internal/domain"
	"github.com/mfonseca/tally/internal/ledger"
)

var hundred = decimal.NewFromInt(100)

func runReport(lgr *ledger.Ledger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tally report <monthly|breakdown|compare|trends|daily>")
	}

	now := time.Now().UTC()

	switch args[0] {
	case "monthly":
		fs := flag.NewFlagSet("report monthly", flag.ExitOnError)
		year := fs.Int("year", now.Year(), "year")
		month := fs.Int("month", int(now.Month()), "month (1-12)")
		fs.Parse(args[1:])

		summary, err := lgr.MonthlySummary(*year, time.Month(*month))
		if err != nil {
			return err
		}
		fmt.Printf("%04d-%02d\n", summary.Year, summary.Month)
		fmt.Printf("  Income:       %s\n", summary.TotalIncome.StringFixed(2))
		fmt.Printf("  Expenses:     %s\n", summary.TotalExpenses.StringFixed(2))
		fmt.Printf("  Net savings:  %s\n", summary.NetSavings.StringFixed(2))
		fmt.Printf("  Savings rate: %s%%\n", summary.SavingsRate.Mul(hundred).StringFixed(1))
		if len(summary.ExpenseByCategory) > 0 {
			fmt.Println("  Expenses by category:")
			for _, c := range summary.ExpenseByCategory {
				fmt.Printf("    %-24s %s\n", c.Name, c.Amount.StringFixed(2))
			}
		}
		return nil

	case "breakdown":
		fs := flag.NewFlagSet("report breakdown", flag.ExitOnError)
		from := fs.String("from", "", "start date (YYYY-MM-DD)")
		to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		fs.Parse(args[1:])

		start, err := parseDateFlag(*from)
		if err != nil {
			return err
		}
		end, err := parseDateFlag(*to)
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			return fmt.Errorf("breakdown requires -from and -to dates")
		}

		breakdown, err := lgr.CategoryBreakdown(*start, *end)
		if err != nil {
			return err
		}
		fmt.Printf("Expenses %s to %s\n",
			breakdown.Start.Format("2006-01-02"), breakdown.End.Format("2006-01-02"))
		for _, t := range breakdown.Totals {
			fmt.Printf("  %-24s %s\n", t.Name, t.Amount.StringFixed(2))
		}
		if len(breakdown.Rollups) > 0 {
			fmt.Println("By category tree:")
			printRollups(breakdown.Rollups, 1)
		}
		return nil

	case "compare":
		fs := flag.NewFlagSet("report compare", flag.ExitOnError)
		year := fs.Int("year", now.Year(), "year")
		fs.Parse(args[1:])

		comparison, err := lgr.MonthlyComparison(*year)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES")
		for _, m := range comparison {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				m.Month, m.TotalIncome.StringFixed(2), m.TotalExpenses.StringFixed(2))
		}
		return w.Flush()

	case "trends":
		fs := flag.NewFlagSet("report trends", flag.ExitOnError)
		year := fs.Int("year", now.Year(), "ending year")
		month := fs.Int("month", int(now.Month()), "ending month (1-12)")
		months := fs.Int("months", 6, "number of trailing months")
		fs.Parse(args[1:])

		trends, err := lgr.Trends(*year, time.Month(*month), *months)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES\tSAVINGS RATE")
		for _, p := range trends {
			fmt.Fprintf(w, "%04d-%02d\t%s\t%s\t%s%%\n",
				p.Year, int(p.Month), p.TotalIncome.StringFixed(2),
				p.TotalExpenses.StringFixed(2), p.SavingsRate.Mul(hundred).StringFixed(1))
		}
		return w.Flush()

	case "daily":
		fs := flag.NewFlagSet("report daily", flag.ExitOnError)
		from := fs.String("from", "", "start date (YYYY-MM-DD)")
		to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		fs.Parse(args[1:])

		start, err := parseDateFlag(*from)
		if err != nil {
			return err
		}
		end, err := parseDateFlag(*to)
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			return fmt.Errorf("daily requires -from and -to dates")
		}

		balances, err := lgr.DailyBalances(*start, *end)
		if err != nil {
			return err
		}
		w := newTabWriter()
		fmt.Fprintln(w, "DAY\tBALANCE")
		for _, b := range balances {
			fmt.Fprintf(w, "%s\t%s\n", b.Day.Format("2006-01-02"), b.Balance.StringFixed(2))
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown report subcommand %q", args[0])
	}
}

func printRollups(nodes []*domain.CategoryRollup, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Printf("%s%-24s direct %s, total %s\n",
			indent, n.Category.Name, n.Direct.StringFixed(2), n.Total.StringFixed(2))
		printRollups(n.Children, depth+1)
	}
}
