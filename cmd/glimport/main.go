// Command glimport ingests French general-ledger exports into the
// transaction store and reports on the result.
//
// Usage:
//
//	glimport import <file>     import one CSV/Excel/FEC export
//	glimport summary [-year N] [-fiscal-year NAME]
//	                           print aggregated financials
//	glimport watch             sweep the inbox on a schedule
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdelacour/grandlivre/internal/domain/finance"
	"github.com/tdelacour/grandlivre/internal/domain/ledger"
	"github.com/tdelacour/grandlivre/pkg/config"
	"github.com/tdelacour/grandlivre/pkg/metrics"
	"github.com/tdelacour/grandlivre/pkg/money"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: glimport <import|summary|watch> [args]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Close()

	if cfg.Observability.MetricsEnabled {
		go func() {
			if err := metrics.Serve(cfg.Observability.MetricsPort); err != nil {
				logger.Warn("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	switch os.Args[1] {
	case "import":
		err = runImport(ctx, deps, os.Args[2:])
	case "summary":
		err = runSummary(ctx, deps, os.Args[2:])
	case "watch":
		err = runWatch(deps)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func runImport(ctx context.Context, deps *Dependencies, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: glimport import <file>")
	}

	result, err := deps.ImportService.ImportPath(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("imported %d of %d rows (%d skipped, %d failed)\n",
		result.RowsImported, result.RowsTotal, result.RowsSkipped, result.RowsFailed)
	for _, msg := range result.Errors {
		fmt.Printf("  failed: %s\n", msg)
	}
	return nil
}

func runSummary(ctx context.Context, deps *Dependencies, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	year := fs.Int("year", time.Now().Year(), "calendar year for the monthly trend")
	fiscalYear := fs.String("fiscal-year", "", "restrict to one fiscal year by name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	transactions, err := listTransactions(ctx, deps, *fiscalYear)
	if err != nil {
		return err
	}
	categories, err := deps.CategorizationRepo.ListCategories(ctx)
	if err != nil {
		return err
	}
	budgetItems, err := deps.BudgetRepo.ListItems(ctx)
	if err != nil {
		return err
	}

	s := finance.Compute(transactions, categories, budgetItems, *year)

	fmt.Printf("income:          %s (%d transactions)\n", money.Format(s.TotalIncome), s.IncomeCount)
	fmt.Printf("expenses:        %s (%d transactions)\n", money.Format(s.TotalExpenses), s.ExpenseCount)
	fmt.Printf("net:             %s\n", money.Format(s.NetIncome))
	fmt.Printf("budget variance: %s\n", money.Format(s.BudgetVariance))
	if s.UnclassifiedCount > 0 {
		fmt.Printf("unclassified:    %d transactions\n", s.UnclassifiedCount)
	}

	fmt.Println("\nby category:")
	for _, c := range s.ByCategory {
		if c.Actual.IsZero() && c.Budget.IsZero() {
			continue
		}
		fmt.Printf("  %-24s actual %14s  budget %14s\n",
			c.Name, money.Format(c.Actual), money.Format(c.Budget))
	}

	fmt.Printf("\nmonthly trend %d:\n", *year)
	for _, p := range s.Trend {
		if p.Income.IsZero() && p.Expenses.IsZero() {
			continue
		}
		fmt.Printf("  %-10s income %14s  expenses %14s\n",
			p.Month, money.Format(p.Income), money.Format(p.Expenses))
	}
	return nil
}

func listTransactions(ctx context.Context, deps *Dependencies, fiscalYear string) ([]ledger.Transaction, error) {
	if fiscalYear == "" {
		return deps.TransactionRepo.ListTransactions(ctx)
	}

	years, err := deps.TransactionRepo.ListFiscalYears(ctx)
	if err != nil {
		return nil, err
	}
	for _, fy := range years {
		if fy.Name == fiscalYear {
			return deps.TransactionRepo.ListTransactionsByFiscalYear(ctx, fy.ID)
		}
	}
	return nil, fmt.Errorf("unknown fiscal year %q", fiscalYear)
}

func runWatch(deps *Dependencies) error {
	if err := deps.Scheduler.Start(); err != nil {
		return err
	}

	// Sweep once at startup so pending files don't wait for the schedule.
	deps.Scheduler.RunNow()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	<-deps.Scheduler.Stop().Done()
	return nil
}
