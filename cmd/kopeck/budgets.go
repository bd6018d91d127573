package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

func budgetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Plan monthly limits per category",
		Long: `Set monthly limits for expense and savings categories and compare
them with what was actually recorded.

Expense budgets count expenses in the category. Savings budgets count
transfers tagged with the category.`,
		Example: `  # Spend at most 30 000 ₽ on food in March
  kopeck budgets set --month 2024-03 --category 5 --limit "30 000"

  # How is March going?
  kopeck budgets status --month 2024-03`,
	}

	cmd.AddCommand(setBudgetCmd(a))
	cmd.AddCommand(listBudgetsCmd(a))
	cmd.AddCommand(deleteBudgetCmd(a))
	cmd.AddCommand(budgetStatusCmd(a))

	return cmd
}

func setBudgetCmd(a *app) *cobra.Command {
	var categoryID int64
	var limitText string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or change a budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(cmd, "month")
			if err != nil {
				return err
			}
			limit, err := parseAmount(limitText)
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				budget, err := svc.UpsertBudget(cmd.Context(), month, categoryID, limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget #%d for %s: %s",
					budget.ID, budget.MonthStart.Format(model.MonthLayout), cli.FormatAmount(budget.Limit))))
				return nil
			})
		},
	}

	cmd.Flags().StringP("month", "m", "", "month (YYYY-MM, default: current)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&limitText, "limit", "", "limit in rubles")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func listBudgetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the budgets of a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(cmd, "month")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				budgets, err := svc.ListBudgets(cmd.Context(), month)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(budgets) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No budgets for this month."))
					return nil
				}

				names, err := loadNames(cmd.Context(), svc)
				if err != nil {
					return err
				}

				table := cli.NewTable(out, "ID", "CATEGORY", "LIMIT")
				for _, b := range budgets {
					table.Row(strconv.FormatInt(b.ID, 10), names.category(b.CategoryID), cli.FormatAmount(b.Limit))
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().StringP("month", "m", "", "month (YYYY-MM, default: current)")

	return cmd
}

func deleteBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				deleted, err := svc.DeleteBudget(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					return notFound("budget", id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted budget #%d", id)))
				return nil
			})
		},
	}
}

func budgetStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare budgets with actual spending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(cmd, "month")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				progress, err := svc.BudgetStatus(cmd.Context(), month)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(progress) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No budgets for this month."))
					return nil
				}

				table := cli.NewTable(out, "CATEGORY", "KIND", "LIMIT", "ACTUAL", "REMAINING", "USED")
				for _, p := range progress {
					used := fmt.Sprintf("%d%%", p.PercentUsed)
					if p.PercentUsed > 100 {
						used = cli.ErrorStyle.Render(used)
					}
					table.Row(
						p.CategoryName,
						string(p.CategoryKind),
						cli.FormatAmount(p.Budget.Limit),
						cli.FormatAmount(p.Actual),
						cli.FormatAmount(p.Remaining),
						used,
					)
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().StringP("month", "m", "", "month (YYYY-MM, default: current)")

	return cmd
}
