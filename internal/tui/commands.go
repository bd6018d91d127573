package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/kopeck/internal/model"
)

const loadTimeout = 10 * time.Second

// loadMonth fetches every report for month.
func (m Model) loadMonth(month time.Time) tea.Cmd {
	parent, reporter, limit := m.ctx, m.reporter, m.topLimit

	return func() tea.Msg {
		if reporter == nil {
			return dataLoadedMsg{month: month, err: fmt.Errorf("reporter not configured")}
		}

		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		dash, err := reporter.Dashboard(ctx, month, model.MonthEnd(month), limit)
		if err != nil {
			return dataLoadedMsg{month: month, err: fmt.Errorf("failed to load reports: %w", err)}
		}

		budgets, err := reporter.BudgetStatus(ctx, month)
		if err != nil {
			return dataLoadedMsg{month: month, err: fmt.Errorf("failed to load budgets: %w", err)}
		}

		return dataLoadedMsg{month: month, dashboard: dash, budgets: budgets}
	}
}
