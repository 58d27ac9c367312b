package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pennybook/pennybook/internal/cli"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
		Long: `Record a transfer between two accounts. A transfer lowers one balance and
raises the other by the same amount; it never counts as income or expense.`,
	}

	cmd.AddCommand(addTransferCmd())
	cmd.AddCommand(editTransferCmd())
	cmd.AddCommand(deleteTransferCmd())

	return cmd
}

func addTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title] [amount]",
		Short: "Record a transfer",
		Long: `Record a transfer from one account to another.

Examples:
  pennybook transfer add "Monthly savings" 200 --from Checking --to Savings
  pennybook transfer add "Cash withdrawal" 50 --from Checking --to Cash --date 2024-03-10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fromRef, _ := cmd.Flags().GetString("from")
			toRef, _ := cmd.Flags().GetString("to")
			dateFlag, _ := cmd.Flags().GetString("date")
			details, _ := cmd.Flags().GetString("details")

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

			from, err := resolveAccount(ctx, store, fromRef)
			if err != nil {
				return err
			}
			to, err := resolveAccount(ctx, store, toRef)
			if err != nil {
				return err
			}

			out, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
				Date:          date,
				Title:         args[0],
				Details:       details,
				Amount:        amount,
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Transferred %s from %q to %q (pair %d)",
				model.FormatAmount(out.Amount), from.Name, to.Name, out.PairID)))
			return nil
		},
	}

	cmd.Flags().String("from", "", "source account name or id (required)")
	cmd.Flags().String("to", "", "destination account name or id (required)")
	cmd.Flags().String("date", "", "transfer date YYYY-MM-DD (default: today)")
	cmd.Flags().String("details", "", "free-form note")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func editTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [pair-id]",
		Short: "Edit a transfer",
		Long: `Edit a transfer pair. Both legs are reconciled together, so moving either
endpoint restores the old accounts and charges the new ones in one step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pairID, err := parseID(args[0])
			if err != nil {
				return err
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out, in, err := store.GetTransactionPair(ctx, pairID)
			if err != nil {
				return err
			}

			details := service.TransferDetails{
				Date:          out.Date,
				Title:         out.Title,
				Details:       out.Details,
				Amount:        out.Amount,
				FromAccountID: out.AccountID,
				ToAccountID:   in.AccountID,
			}

			if cmd.Flags().Changed("title") {
				details.Title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("amount") {
				raw, _ := cmd.Flags().GetString("amount")
				details.Amount, err = model.ParseAmount(raw)
				if err != nil {
					return fmt.Errorf("invalid amount: %w", err)
				}
			}
			if cmd.Flags().Changed("date") {
				raw, _ := cmd.Flags().GetString("date")
				details.Date, err = parseDate(raw)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("details") {
				details.Details, _ = cmd.Flags().GetString("details")
			}
			if cmd.Flags().Changed("from") {
				raw, _ := cmd.Flags().GetString("from")
				from, err := resolveAccount(ctx, store, raw)
				if err != nil {
					return err
				}
				details.FromAccountID = from.ID
			}
			if cmd.Flags().Changed("to") {
				raw, _ := cmd.Flags().GetString("to")
				to, err := resolveAccount(ctx, store, raw)
				if err != nil {
					return err
				}
				details.ToAccountID = to.ID
			}

			if err := recorder.UpdateTransfer(ctx, pairID, details); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated transfer %d", pairID)))
			return nil
		},
	}

	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("date", "", "new date YYYY-MM-DD")
	cmd.Flags().String("details", "", "new note")
	cmd.Flags().String("from", "", "new source account")
	cmd.Flags().String("to", "", "new destination account")
	return cmd
}

func deleteTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [pair-id]",
		Short: "Delete a transfer",
		Long:  `Delete both legs of a transfer and restore both account balances.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pairID, err := parseID(args[0])
			if err != nil {
				return err
			}

			recorder, store, err := initRecorder(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := recorder.DeleteTransfer(ctx, pairID); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transfer %d", pairID)))
			return nil
		},
	}
}
