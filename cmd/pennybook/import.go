package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pennybook/pennybook/internal/cli"
	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX bank exports",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your
bank. Debits become expenses, credits become income, and every imported row
reconciles the target account like a hand-entered transaction.

Examples:
  # Import into the Checking account, filing everything under Imported
  pennybook import-ofx ~/Downloads/statement.qfx --account Checking --category Imported

  # Preview without writing anything
  pennybook import-ofx ~/Downloads/*.qfx --account Checking --category Imported --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().String("account", "", "account to import into (required)")
	cmd.Flags().String("category", "", "fallback category for entries without a hint (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountRef, _ := cmd.Flags().GetString("account")
	categoryRef, _ := cmd.Flags().GetString("category")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var entries []ofx.Entry

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		// FITID is the bank's own transaction id; the same file imported
		// twice must not double-book.
		for _, entry := range parsed {
			if entry.FiTID != "" && seen[entry.FiTID] {
				continue
			}
			seen[entry.FiTID] = true
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Println(cli.InfoStyle.Render("No transactions found in the given files."))
		return nil
	}

	if dryRun {
		for _, entry := range entries {
			fmt.Printf("%s  %-30s %10s\n",
				entry.Date.Format("2006-01-02"),
				entry.Title,
				cli.FormatAmount(entry.Amount, entry.Type))
		}
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Dry run: %d transactions not saved", len(entries))))
		return nil
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
	fallback, err := resolveCategory(ctx, store, categoryRef)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing transactions..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	imported := 0
	for _, entry := range entries {
		categoryID := fallback.ID
		if entry.Category != "" {
			// A category hint from the statement is used only when a
			// category of that name already exists.
			if hinted, err := store.GetCategoryByName(ctx, entry.Category); err == nil {
				categoryID = hinted.ID
			} else if !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}

		_, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      entry.Title,
			Amount:     entry.Amount,
			Type:       entry.Type,
			Date:       entry.Date,
			Details:    entry.Details,
			AccountID:  account.ID,
			CategoryID: categoryID,
		})
		if err != nil {
			slog.Error("Failed to import transaction",
				"title", entry.Title, "date", entry.Date, "error", err)
			continue
		}
		imported++
		_ = bar.Add(1)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions into %q",
		imported, len(entries), account.Name)))
	return nil
}
