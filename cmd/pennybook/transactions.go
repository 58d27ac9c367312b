package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pennybook/pennybook/internal/cli"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and browse transactions",
		Long:  `Add, list, edit, and delete income and expense transactions.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(showTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title] [amount]",
		Short: "Record an income or expense transaction",
		Long: `Record a transaction against an account. Expenses lower the account
balance, income raises it; both update the account's running totals.

Examples:
  pennybook tx add "Groceries" 42.50 --account Checking --category Food
  pennybook tx add "Paycheck" 2500 --account Checking --category Salary --income
  pennybook tx add "Dinner" 31.20 --account Cash --category Food --date 2024-03-05`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			accountRef, _ := cmd.Flags().GetString("account")
			categoryRef, _ := cmd.Flags().GetString("category")
			dateFlag, _ := cmd.Flags().GetString("date")
			details, _ := cmd.Flags().GetString("details")
			income, _ := cmd.Flags().GetBool("income")

			amount, err := model.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := resolveAccount(ctx, store, accountRef)
			if err != nil {
				return err
			}
			category, err := resolveCategory(ctx, store, categoryRef)
			if err != nil {
				return err
			}

			txnType := model.TypeExpense
			if income {
				txnType = model.TypeIncome
			}

			txn, err := recorder.RecordTransaction(ctx, model.Transaction{
				Title:      args[0],
				Amount:     amount,
				Type:       txnType,
				Date:       date,
				Details:    details,
				AccountID:  account.ID,
				CategoryID: category.ID,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s %s on %q (id %d)",
				txnType, cli.FormatAmount(txn.Amount, txnType), account.Name, txn.ID)))
			return nil
		},
	}

	cmd.Flags().String("account", "", "account name or id (required)")
	cmd.Flags().String("category", "", "category name or id (required)")
	cmd.Flags().String("date", "", "transaction date YYYY-MM-DD (default: today)")
	cmd.Flags().String("details", "", "free-form note")
	cmd.Flags().Bool("income", false, "record income instead of an expense")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func listTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			accountRef, _ := cmd.Flags().GetString("account")
			categoryRef, _ := cmd.Flags().GetString("category")
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			filter := service.TransactionFilter{Limit: limit}
			if accountRef != "" {
				account, err := resolveAccount(ctx, store, accountRef)
				if err != nil {
					return err
				}
				filter.AccountID = &account.ID
			}
			if categoryRef != "" {
				category, err := resolveCategory(ctx, store, categoryRef)
				if err != nil {
					return err
				}
				filter.CategoryID = &category.ID
			}
			if fromFlag != "" {
				from, err := parseDate(fromFlag)
				if err != nil {
					return err
				}
				filter.StartDate = &from
			}
			if toFlag != "" {
				to, err := parseDate(toFlag)
				if err != nil {
					return err
				}
				filter.EndDate = &to
			}

			rows, err := store.GetTransactionRows(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			if len(rows) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Title"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Account"),
				cli.HeaderStyle.Render("Category"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 10),
				strings.Repeat("-", 24),
				strings.Repeat("-", 10),
				strings.Repeat("-", 14),
				strings.Repeat("-", 14))

			for _, row := range rows {
				category := row.Category.Name
				if row.Transaction.IsTransfer() {
					category = cli.TransferStyle.Render(category)
				} else if row.Category.ID == 0 {
					category = cli.SubtleStyle.Render(category)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					row.Transaction.ID,
					row.Transaction.Date.Format("2006-01-02"),
					row.Transaction.Title,
					cli.FormatAmount(row.Transaction.Amount, row.Transaction.Type),
					cli.TagStyle(row.Account.ColorTag).Render(row.Account.Name),
					category)
			}
			return nil
		},
	}

	cmd.Flags().String("account", "", "only this account")
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().String("from", "", "start date YYYY-MM-DD (inclusive)")
	cmd.Flags().String("to", "", "end date YYYY-MM-DD (exclusive)")
	cmd.Flags().Int("limit", 0, "cap the number of rows")
	return cmd
}

func showTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one transaction in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(txn.Title))
			fmt.Printf("  id:       %d\n", txn.ID)
			fmt.Printf("  type:     %s\n", txn.Type)
			fmt.Printf("  amount:   %s\n", cli.FormatAmount(txn.Amount, txn.Type))
			fmt.Printf("  date:     %s\n", txn.Date.Format("2006-01-02 15:04"))
			if txn.Details != "" {
				fmt.Printf("  details:  %s\n", txn.Details)
			}

			if account, err := store.GetAccountByID(ctx, txn.AccountID); err == nil {
				fmt.Printf("  account:  %s\n", account.Name)
			}
			if category, err := store.GetCategoryByID(ctx, txn.CategoryID); err == nil {
				fmt.Printf("  category: %s\n", category.Name)
			}
			if txn.IsTransfer() {
				fmt.Printf("  pair:     %d\n", txn.PairID)
			}
			return nil
		},
	}
}

func editTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a transaction",
		Long: `Edit a transaction's fields. Account balances are reconciled as if the
original entry had never happened and the edited one always had. Transfer
legs are edited with 'pennybook transfer edit'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}
			if txn.IsTransfer() {
				return fmt.Errorf("transaction %d is a transfer leg; use 'pennybook transfer edit %d'", id, txn.PairID)
			}

			edited := *txn
			if cmd.Flags().Changed("title") {
				edited.Title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("amount") {
				raw, _ := cmd.Flags().GetString("amount")
				edited.Amount, err = model.ParseAmount(raw)
				if err != nil {
					return fmt.Errorf("invalid amount: %w", err)
				}
			}
			if cmd.Flags().Changed("date") {
				raw, _ := cmd.Flags().GetString("date")
				edited.Date, err = parseDate(raw)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("details") {
				edited.Details, _ = cmd.Flags().GetString("details")
			}
			if cmd.Flags().Changed("account") {
				raw, _ := cmd.Flags().GetString("account")
				account, err := resolveAccount(ctx, store, raw)
				if err != nil {
					return err
				}
				edited.AccountID = account.ID
			}
			if cmd.Flags().Changed("category") {
				raw, _ := cmd.Flags().GetString("category")
				category, err := resolveCategory(ctx, store, raw)
				if err != nil {
					return err
				}
				edited.CategoryID = category.ID
			}
			if cmd.Flags().Changed("income") {
				income, _ := cmd.Flags().GetBool("income")
				if income {
					edited.Type = model.TypeIncome
				} else {
					edited.Type = model.TypeExpense
				}
			}

			if err := recorder.UpdateTransaction(ctx, edited); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("date", "", "new date YYYY-MM-DD")
	cmd.Flags().String("details", "", "new note")
	cmd.Flags().String("account", "", "move to this account")
	cmd.Flags().String("category", "", "re-file under this category")
	cmd.Flags().Bool("income", false, "flip between income (true) and expense (false)")
	return cmd
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a transaction",
		Long: `Delete a transaction and reverse its effect on the account balance.
Deleting a transfer leg removes both legs of the transfer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := recorder.DeleteTransaction(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
			return nil
		},
	}
}
