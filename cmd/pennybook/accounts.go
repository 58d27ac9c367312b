package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pennybook/pennybook/internal/cli"
	"github.com/pennybook/pennybook/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List, add, rename, recolor, and delete the accounts money moves through.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(renameAccountCmd())
	cmd.AddCommand(colorAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts yet. Use 'pennybook accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Balance"),
				cli.HeaderStyle.Render("Income"),
				cli.HeaderStyle.Render("Expenses"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12))

			total := decimal.Zero
			for _, account := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					account.ID,
					cli.TagStyle(account.ColorTag).Render(account.Name),
					cli.FormatBalance(account.Balance),
					model.FormatAmount(account.IncomeTotal),
					model.FormatAmount(account.ExpenseTotal))
				total = total.Add(account.Balance)
			}

			fmt.Fprintf(w, "\t%s\t%s\t\t\n",
				cli.HeaderStyle.Render("Total"),
				cli.FormatBalance(total))
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a new account",
		Long: `Create an account with an optional opening balance. The opening balance
seeds the running balance directly and never counts toward income.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			balanceFlag, _ := cmd.Flags().GetString("balance")
			colorTag, _ := cmd.Flags().GetInt64("color")

			balance := decimal.Zero
			if balanceFlag != "" {
				var err error
				balance, err = model.ParseAmount(balanceFlag)
				if err != nil {
					return fmt.Errorf("invalid balance: %w", err)
				}
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := recorder.CreateAccount(ctx, model.Account{
				Name:     args[0],
				Balance:  balance,
				ColorTag: colorTag,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created account %q (id %d) with balance %s",
				account.Name, account.ID, model.FormatAmount(account.Balance))))
			return nil
		},
	}

	cmd.Flags().String("balance", "", "opening balance (e.g. 125.50)")
	cmd.Flags().Int64("color", 0, "color tag for listings")
	return cmd
}

func renameAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [account] [new-name]",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}

			if err := recorder.RenameAccount(ctx, account.ID, args[1]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Renamed account %q to %q", account.Name, args[1])))
			return nil
		},
	}
}

func colorAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color [account] [tag]",
		Short: "Set an account's color tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var tag int64
			if _, err := fmt.Sscanf(args[1], "%d", &tag); err != nil {
				return fmt.Errorf("invalid color tag %q", args[1])
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}

			if err := recorder.SetAccountColor(ctx, account.ID, tag); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Set color of %q to %s",
				account.Name, cli.TagStyle(tag).Render(fmt.Sprintf("%d", tag)))))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [account]",
		Short: "Delete an account and all of its transactions",
		Long: `Delete an account. Its transactions go with it; transfers into or out of
other accounts are unwound first so the other side keeps a correct balance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yes, _ := cmd.Flags().GetBool("yes")

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"This deletes account %q and every transaction on it. Re-run with --yes to confirm.",
					account.Name)))
				return nil
			}

			if err := recorder.DeleteAccount(ctx, account.ID); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted account %q", account.Name)))
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation")
	return cmd
}
