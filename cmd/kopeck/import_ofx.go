package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/ofx"
)

func importOFXCmd(a *app) *cobra.Command {
	var opts ofx.ImportOptions
	var noCheckpoint bool

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Debits become expenses and credits become income on the chosen account.
Each statement row is remembered by its bank id, so importing the same file
twice records nothing new. An automatic checkpoint is taken first.`,
		Example: `  # Import one statement into account 2
  kopeck import-ofx ~/Downloads/card_2024_01.qfx --account 2 \
    --expense-category 5 --income-category 1

  # Preview without saving
  kopeck import-ofx ~/Downloads/*.ofx --account 2 \
    --expense-category 5 --income-category 1 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			out := cmd.OutOrStdout()
			if !opts.DryRun && !noCheckpoint {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				manager.SetKeepAuto(a.cfg.KeepAutoCheckpoints)

				info, err := manager.AutoCheckpoint(ctx, "import-ofx")
				if err != nil {
					return fmt.Errorf("failed to create checkpoint before import: %w", err)
				}
				fmt.Fprintln(out, cli.FormatInfo("Checkpoint "+info.ID))
			}

			importer := ofx.NewImporter(ledger.New(store, nil))
			for _, path := range files {
				result, err := importFile(ctx, cmd, importer, path, opts)
				if err != nil {
					return describe(fmt.Errorf("%s: %w", filepath.Base(path), err))
				}
				printImportResult(out, path, result, opts.DryRun)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.AccountID, "account", 0, "account the statement belongs to")
	cmd.Flags().Int64Var(&opts.ExpenseCategoryID, "expense-category", 0, "category for debits")
	cmd.Flags().Int64Var(&opts.IncomeCategoryID, "income-category", 0, "category for credits")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "d", false, "preview import without saving")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("expense-category")
	_ = cmd.MarkFlagRequired("income-category")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid pattern %s", pattern), err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

func importFile(ctx context.Context, cmd *cobra.Command, importer *ofx.Importer, path string, opts ofx.ImportOptions) (*ofx.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewUserError("failed to open statement", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close statement", "file", path, "error", closeErr)
		}
	}()

	var bar *progressbar.ProgressBar
	opts.Progress = func(done, total int) {
		if bar == nil {
			bar = cli.NewProgressBar(cmd.ErrOrStderr(), total, "Importing "+filepath.Base(path))
		}
		cli.ProgressFunc(bar)(done, total)
	}

	return importer.Import(ctx, f, opts)
}

func printImportResult(out io.Writer, path string, result *ofx.ImportResult, dryRun bool) {
	name := filepath.Base(path)

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s: %d rows, %d would be recorded (dry run)",
			name, result.Parsed, len(result.Transactions))))

		table := cli.NewTable(out, "DATE", "TYPE", "AMOUNT", "NOTE")
		for _, txn := range result.Transactions {
			table.Row(
				txn.OccurredAt.Format(model.DateLayout),
				string(txn.Type()),
				cli.FormatAmount(signedAmount(&txn)),
				txn.Note,
			)
		}
		_ = table.Flush()
		return
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s: imported %d, duplicates %d, skipped %d",
		name, result.Imported, result.Duplicates, result.Skipped)))
}
