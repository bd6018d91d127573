package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/tui"
	"github.com/Veraticus/kopeck/internal/tui/themes"
)

func dashboardCmd(a *app) *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive monthly dashboard",
		Long: `Show balances, the monthly summary, top expense categories, and budget
progress in a full-screen view.

Use ←/→ to change month, tab to switch panes, r to refresh, and q to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(cmd, "month")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				return tui.RunDashboard(cmd.Context(), svc, svc.Notifier(),
					tui.WithMonth(month),
					tui.WithTheme(themes.GetTheme(theme)),
					tui.WithTopLimit(a.cfg.TopLimit),
				)
			})
		},
	}

	cmd.Flags().StringP("month", "m", "", "month to open (YYYY-MM, default: current)")
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin-mocha)")

	return cmd
}
