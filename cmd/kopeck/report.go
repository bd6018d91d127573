package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Show balances and spending reports",
		Example: `  # Current balances of active accounts
  kopeck report balances

  # Income and expenses for January
  kopeck report summary --month 2024-01

  # Top five expense categories this month
  kopeck report top --limit 5`,
	}

	cmd.AddCommand(balancesCmd(a))
	cmd.AddCommand(summaryCmd(a))
	cmd.AddCommand(topCmd(a))

	return cmd
}

func balancesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show the balance of every active account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				balances, err := svc.AccountBalances(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(balances) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No active accounts."))
					return nil
				}

				var total int64
				table := cli.NewTable(out, "ACCOUNT", "BALANCE")
				for _, b := range balances {
					table.Row(b.Name, cli.FormatAmount(b.Balance))
					total += b.Balance
				}
				table.Row(cli.BoldStyle.Render("Total"), cli.FormatAmount(total))
				return table.Flush()
			})
		},
	}
}

func summaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total income and expenses over a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := reportWindow(cmd)
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				summary, err := svc.PeriodSummary(cmd.Context(), start, end)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s – %s",
					start.Format(model.DateLayout), end.Format(model.DateLayout))))

				table := cli.NewTable(out, "", "AMOUNT")
				table.Row("Income", cli.FormatAmount(summary.Income))
				table.Row("Expense", cli.FormatAmount(-summary.Expense))
				table.Row(cli.BoldStyle.Render("Net"), cli.FormatAmount(summary.Net))
				return table.Flush()
			})
		},
	}

	addWindowFlags(cmd)

	return cmd
}

func topCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank expense categories by total spent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := reportWindow(cmd)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.cfg.TopLimit
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				totals, err := svc.TopExpenseCategories(cmd.Context(), start, end, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(totals) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No expenses in this period."))
					return nil
				}

				table := cli.NewTable(out, "#", "CATEGORY", "SPENT")
				for i, total := range totals {
					table.Row(strconv.Itoa(i+1), total.Name, cli.FormatAmount(total.Total))
				}
				return table.Flush()
			})
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of categories (default from config)")

	return cmd
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("month", "m", "", "month (YYYY-MM, default: current)")
	cmd.Flags().String("from-date", "", "start date (YYYY-MM-DD), overrides --month")
	cmd.Flags().String("to-date", "", "end date (YYYY-MM-DD), overrides --month")
}

// reportWindow resolves the inclusive date range of a report. Explicit
// dates win over the month.
func reportWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	month, err := parseMonthFlag(cmd, "month")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := month, model.MonthEnd(month)

	if cmd.Flags().Changed("from-date") {
		if start, err = parseDateFlag(cmd, "from-date"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if cmd.Flags().Changed("to-date") {
		if end, err = parseDateFlag(cmd, "to-date"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
