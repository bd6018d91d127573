package tui

import (
	"time"

	"github.com/Veraticus/kopeck/internal/model"
)

// dataLoadedMsg carries the reports for one month.
type dataLoadedMsg struct {
	month     time.Time
	err       error
	dashboard *model.Dashboard
	budgets   []model.BudgetProgress
}

// dataChangedMsg signals that the ledger was modified elsewhere.
type dataChangedMsg struct{}
