package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mfonseca/tally/internal/config"
	"github.com/mfonseca/tally/internal/domain"
	"github.com/mfonseca/tally/internal/ledger"
	"github.com/mfonseca/tally/internal/storage/postgres"
	"github.com/mfonseca/tally/internal/storage/sqlite"
)

const usage = `Usage: tally <command> [subcommand] [flags]

Commands:
  account    manage accounts (add, list, show, rename, archive, unarchive, delete)
  category   manage categories (add, list, update, delete)
  tx         manage transactions (add, list, edit, delete)
  transfer   move money between accounts
  budget     manage budgets (set, list, progress, delete)
  recurring  manage recurring templates (add, list, update, delete, generate)
  report     reports (monthly, breakdown, compare, trends, daily)
  verify     recompute balances and report mismatches
`

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// log.Fatal would skip the store's deferred Close, so run returns the
	// error and the exit happens after cleanup.
	if err := run(cfg, os.Args[1], os.Args[2:]); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string, args []string) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	lgr := ledger.New(store, log.Logger, ledger.Options{DefaultCurrency: cfg.DefaultCurrency})
	return dispatch(lgr, command, args)
}

func openStore(cfg *config.Config) (domain.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return postgres.New(cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.SQLitePath)
	}
}

func dispatch(lgr *ledger.Ledger, command string, args []string) error {
	switch command {
	case "account":
		return runAccount(lgr, args)
	case "category":
		return runCategory(lgr, args)
	case "tx":
		return runTransaction(lgr, args)
	case "transfer":
		return runTransfer(lgr, args)
	case "budget":
		return runBudget(lgr, args)
	case "recurring":
		return runRecurring(lgr, args)
	case "report":
		return runReport(lgr, args)
	case "verify":
		return runVerify(lgr, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
