package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/config"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/plaid"
)

func syncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull transactions from connected banks",
	}

	cmd.AddCommand(syncPlaidCmd(a))
	cmd.AddCommand(plaidAccountsCmd(a))

	return cmd
}

func (a *app) plaidSettings() (*config.PlaidSettings, error) {
	settings, err := config.LoadPlaidConfig(a.v)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Plaid is not configured: %v", err), err)
	}
	return settings, nil
}

func syncPlaidCmd(a *app) *cobra.Command {
	var (
		days           int
		dryRun         bool
		includePending bool
		noCheckpoint   bool
	)

	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Record Plaid transactions on mapped accounts",
		Long: `Fetch transactions from Plaid and record them on the ledger accounts
listed in plaid.accounts ("plaid-account-id=ledger-account-id").

Outflows become expenses and inflows become income. Plaid transaction ids
are remembered, so overlapping syncs record nothing twice. Pending
transactions are skipped unless --pending is set.`,
		Example: `  # Sync the last 30 days
  kopeck sync plaid

  # Preview a specific window
  kopeck sync plaid --from-date 2024-01-01 --to-date 2024-01-31 --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := a.plaidSettings()
			if err != nil {
				return err
			}

			opts := plaid.SyncOptions{
				AccountMap:        settings.AccountMap,
				ExpenseCategoryID: settings.ExpenseCategoryID,
				IncomeCategoryID:  settings.IncomeCategoryID,
				DryRun:            dryRun,
				IncludePending:    includePending,
			}
			if id := optionalID(cmd, "expense-category"); id != nil {
				opts.ExpenseCategoryID = *id
			}
			if id := optionalID(cmd, "income-category"); id != nil {
				opts.IncomeCategoryID = *id
			}
			if opts.ExpenseCategoryID <= 0 || opts.IncomeCategoryID <= 0 {
				return common.NewUserError("expense and income categories are required (plaid.expense_category, plaid.income_category)", nil)
			}
			if len(opts.AccountMap) == 0 {
				return common.NewUserError("plaid.accounts maps no Plaid account to a ledger account", nil)
			}

			opts.End = model.Day(time.Now())
			opts.Start = opts.End.AddDate(0, 0, -days)
			if cmd.Flags().Changed("from-date") {
				if opts.Start, err = parseDateFlag(cmd, "from-date"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("to-date") {
				if opts.End, err = parseDateFlag(cmd, "to-date"); err != nil {
					return err
				}
			}

			client, err := plaid.NewClient(settings.Client)
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
			if !dryRun && !noCheckpoint {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				manager.SetKeepAuto(a.cfg.KeepAutoCheckpoints)

				info, err := manager.AutoCheckpoint(ctx, "sync-plaid")
				if err != nil {
					return fmt.Errorf("failed to create checkpoint before sync: %w", err)
				}
				fmt.Fprintln(out, cli.FormatInfo("Checkpoint "+info.ID))
			}

			var bar *progressbar.ProgressBar
			opts.Progress = func(done, total int) {
				if bar == nil {
					bar = cli.NewProgressBar(cmd.ErrOrStderr(), total, "Recording Plaid transactions")
				}
				cli.ProgressFunc(bar)(done, total)
			}

			result, err := plaid.NewSyncer(client, ledger.New(store, nil)).Sync(ctx, opts)
			if err != nil {
				return describe(err)
			}
			printSyncResult(cmd, result, dryRun)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "days to look back when --from-date is not set")
	cmd.Flags().String("from-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to-date", "", "end date (YYYY-MM-DD, default: today)")
	cmd.Flags().Int64("expense-category", 0, "category for outflows (overrides plaid.expense_category)")
	cmd.Flags().Int64("income-category", 0, "category for inflows (overrides plaid.income_category)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview without saving")
	cmd.Flags().BoolVar(&includePending, "pending", false, "include pending transactions")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")

	return cmd
}

func printSyncResult(cmd *cobra.Command, result *plaid.SyncResult, dryRun bool) {
	out := cmd.OutOrStdout()
	for _, id := range result.Missing {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Plaid account %s is mapped but not linked", id)))
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d fetched, %d would be recorded (dry run)",
			result.Fetched, len(result.Transactions))))

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

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Plaid: imported %d, duplicates %d, pending %d, unmapped %d",
		result.Imported, result.Duplicates, result.Pending, result.Unmapped)))
}

func plaidAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plaid-accounts",
		Short: "List the accounts linked to the Plaid item",
		Long: `List the accounts of the configured Plaid item with their ledger mapping.
Use the ids to fill in plaid.accounts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := a.plaidSettings()
			if err != nil {
				return err
			}
			client, err := plaid.NewClient(settings.Client)
			if err != nil {
				return err
			}

			accounts, err := client.GetAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list Plaid accounts: %w", err)
			}

			table := cli.NewTable(cmd.OutOrStdout(), "PLAID ID", "NAME", "MASK", "TYPE", "LEDGER ACCOUNT")
			for _, acc := range accounts {
				mapped := "-"
				if id, ok := settings.AccountMap[acc.ID]; ok {
					mapped = fmt.Sprintf("#%d", id)
				}
				table.Row(acc.ID, acc.Name, acc.Mask, acc.Type, mapped)
			}
			return table.Flush()
		},
	}
}
