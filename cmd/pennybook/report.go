package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pennybook/pennybook/internal/cli"
	"github.com/pennybook/pennybook/internal/ledger"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize spending and income",
		Long:  `Daily, monthly, and per-category views over recorded transactions.`,
	}

	cmd.AddCommand(reportDaysCmd())
	cmd.AddCommand(reportMonthsCmd())
	cmd.AddCommand(reportCategoriesCmd())

	return cmd
}

// reportFilter builds the shared date/account filter for report commands.
func reportFilter(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")

	if fromFlag != "" {
		from, err := parseDate(fromFlag)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &from
	}
	if toFlag != "" {
		to, err := parseDate(toFlag)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &to
	}
	return filter, nil
}

func reportDaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "days",
		Short: "Daily totals with their transactions",
		Long: `Group transactions by calendar day, newest first. A day's total counts
income as positive and everything else, transfers included, as negative.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := reportFilter(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.GetTransactionRows(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			groups := ledger.GroupByDay(rows)
			if len(groups) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to report."))
				return nil
			}

			for _, group := range groups {
				fmt.Printf("%s  %s\n",
					cli.FormatTitle(group.Day.Format("Mon 2006-01-02")),
					signedTotal(group.Total))
				for _, row := range group.Rows {
					fmt.Printf("  %-28s %10s  %s\n",
						row.Transaction.Title,
						cli.FormatAmount(row.Transaction.Amount, row.Transaction.Type),
						cli.SubtleStyle.Render(row.Category.Name))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "start date YYYY-MM-DD (inclusive)")
	cmd.Flags().String("to", "", "end date YYYY-MM-DD (exclusive)")
	return cmd
}

func reportMonthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Monthly income and expense sums",
		Long: `Sum income and expenses per calendar month over a range. Months without
transactions still appear, so a year reads as twelve lines. Transfers move
money between accounts and count toward neither sum.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")

			now := time.Now()
			from := ledger.Month{Year: now.Year(), Month: time.January}
			to := ledger.MonthOf(now)

			if fromFlag != "" {
				t, err := parseMonth(fromFlag)
				if err != nil {
					return err
				}
				from = ledger.MonthOf(t)
			}
			if toFlag != "" {
				t, err := parseMonth(toFlag)
				if err != nil {
					return err
				}
				to = ledger.MonthOf(t)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.GetTransactionRows(ctx, service.TransactionFilter{})
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			groups := ledger.GroupByMonth(rows, from, to)
			if len(groups) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to report."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Month"),
				cli.HeaderStyle.Render("Income"),
				cli.HeaderStyle.Render("Expenses"),
				cli.HeaderStyle.Render("Net"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 7),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12))

			for _, group := range groups {
				net := group.Income.Sub(group.Expense)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					group.Month,
					cli.IncomeStyle.Render(model.FormatAmount(group.Income)),
					cli.ExpenseStyle.Render(model.FormatAmount(group.Expense)),
					signedTotal(net))
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "first month YYYY-MM (default: January this year)")
	cmd.Flags().String("to", "", "last month YYYY-MM (default: current month)")
	return cmd
}

func reportCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Per-category totals, largest first",
		Long: `Sum transaction amounts per category over a date range. Transfer legs are
excluded. Bars scale against the largest category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := reportFilter(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.GetTransactionRows(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			slices := ledger.CategoryBreakdown(rows)
			if len(slices) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to report."))
				return nil
			}

			largest := slices[0].Amount
			for _, slice := range slices {
				fmt.Printf("%-20s %12s  %s\n",
					cli.TagStyle(slice.Category.ColorTag).Render(slice.Category.Name),
					model.FormatAmount(slice.Amount),
					cli.TagStyle(slice.Category.ColorTag).Render(bar(slice.Amount, largest)),
				)
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "start date YYYY-MM-DD (inclusive)")
	cmd.Flags().String("to", "", "end date YYYY-MM-DD (exclusive)")
	return cmd
}

// signedTotal renders a net amount with an explicit sign, green for
// positive and red for negative.
func signedTotal(total decimal.Decimal) string {
	switch {
	case total.IsNegative():
		return cli.ExpenseStyle.Render(model.FormatAmount(total))
	case total.IsPositive():
		return cli.IncomeStyle.Render("+" + model.FormatAmount(total))
	default:
		return model.FormatAmount(total)
	}
}

// bar renders a proportional bar up to 30 cells wide.
func bar(amount, largest decimal.Decimal) string {
	if largest.IsZero() || !amount.IsPositive() {
		return ""
	}
	cells := amount.Mul(decimal.NewFromInt(30)).Div(largest).IntPart()
	if cells < 1 {
		cells = 1
	}
	return strings.Repeat("█", int(cells))
}
