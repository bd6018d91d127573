package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/model"
	tuitest "github.com/Veraticus/kopeck/internal/tui/testing"
)

type fakeReporter struct {
	err      error
	months   []time.Time
	budgets  []model.BudgetProgress
	dash     model.Dashboard
	topLimit int
}

func (f *fakeReporter) Dashboard(_ context.Context, start, end time.Time, limit int) (*model.Dashboard, error) {
	f.months = append(f.months, start)
	f.topLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if !end.Equal(model.MonthEnd(start)) {
		return nil, errors.New("window must cover the whole month")
	}
	dash := f.dash
	return &dash, nil
}

func (f *fakeReporter) BudgetStatus(_ context.Context, _ time.Time) ([]model.BudgetProgress, error) {
	return f.budgets, nil
}

func sampleReporter() *fakeReporter {
	return &fakeReporter{
		dash: model.Dashboard{
			Balances: []model.AccountBalance{
				{AccountID: 1, Name: "Карта", Balance: 1234567},
				{AccountID: 2, Name: "Наличные", Balance: -500},
			},
			TopCategories: []model.CategoryTotal{
				{CategoryID: 3, Name: "Food", Total: 45000},
			},
			Summary: model.PeriodSummary{Income: 100000, Expense: 45000, Net: 55000},
		},
		budgets: []model.BudgetProgress{
			{CategoryName: "Food", Budget: model.Budget{Limit: 60000}, Actual: 45000, Remaining: 15000, PercentUsed: 75},
		},
	}
}

var january = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// step applies msg and runs the resulting command, feeding its messages
// back into the model.
func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	for _, out := range tuitest.Drain(cmd) {
		if _, quit := out.(tea.QuitMsg); quit {
			continue
		}
		m, _ = m.Update(out)
	}
	return m
}

func loaded(t *testing.T, reporter Reporter, opts ...Option) Model {
	t.Helper()
	m := NewModel(context.Background(), reporter, append([]Option{WithMonth(january), WithSize(140, 40)}, opts...)...)
	var out tea.Model = m
	for _, msg := range tuitest.Drain(m.Init()) {
		out, _ = out.Update(msg)
	}
	return out.(Model)
}

func TestModel_InitialLoad(t *testing.T) {
	reporter := sampleReporter()
	m := loaded(t, reporter, WithTopLimit(5))

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "January 2026")
	assert.Contains(t, view, "12 345,67 ₽")
	assert.Contains(t, view, "-5,00 ₽")
	assert.Contains(t, view, "550,00 ₽")
	assert.Contains(t, view, "75%")
	assert.True(t, tuitest.ContainsInOrder(view, "Balances", "Top expenses", "Budgets"))
	assert.Equal(t, 5, reporter.topLimit)
}

func TestModel_LoadingView(t *testing.T) {
	m := NewModel(context.Background(), sampleReporter(), WithMonth(january))
	assert.Contains(t, tuitest.StripANSI(m.View()), "Loading")
}

func TestModel_MonthNavigation(t *testing.T) {
	reporter := sampleReporter()
	var m tea.Model = loaded(t, reporter)

	m = step(t, m, tuitest.KeyLeft())
	assert.Equal(t, time.December, m.(Model).Month().Month())
	assert.Equal(t, 2025, m.(Model).Month().Year())
	assert.Contains(t, tuitest.StripANSI(m.View()), "December 2025")

	m = step(t, m, tuitest.KeyRight())
	m = step(t, m, tuitest.KeyPress("l"))
	assert.Equal(t, time.February, m.(Model).Month().Month())

	require.Len(t, reporter.months, 4)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), reporter.months[3])
}

func TestModel_IgnoresStaleMonth(t *testing.T) {
	m := loaded(t, sampleReporter())

	out, _ := m.Update(dataLoadedMsg{month: january.AddDate(0, -1, 0), err: errors.New("stale")})
	assert.NoError(t, out.(Model).lastErr)
}

func TestModel_RefreshAndChangeReload(t *testing.T) {
	reporter := sampleReporter()
	var m tea.Model = loaded(t, reporter)

	m = step(t, m, tuitest.KeyPress("r"))
	m = step(t, m, dataChangedMsg{})

	assert.Len(t, reporter.months, 3)
	assert.False(t, m.(Model).loading)
}

func TestModel_ShowsErrors(t *testing.T) {
	reporter := &fakeReporter{err: errors.New("database is locked")}
	m := loaded(t, reporter)

	assert.Contains(t, tuitest.StripANSI(m.View()), "database is locked")
}

func TestModel_PaneFocusCycles(t *testing.T) {
	var m tea.Model = loaded(t, sampleReporter())
	assert.Equal(t, paneBalances, m.(Model).focus)

	m = step(t, m, tuitest.KeyTab())
	assert.Equal(t, paneTop, m.(Model).focus)
	m = step(t, m, tuitest.KeyTab())
	m = step(t, m, tuitest.KeyTab())
	assert.Equal(t, paneBalances, m.(Model).focus)
	assert.True(t, m.(Model).tables[paneBalances].Focused())
	assert.False(t, m.(Model).tables[paneTop].Focused())

	m = step(t, m, tuitest.KeyDown())
	assert.Equal(t, 1, m.(Model).tables[paneBalances].Cursor())
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, sampleReporter())

	out, cmd := m.Update(tuitest.KeyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, out.View())
}

func TestModel_NarrowLayoutStacksPanes(t *testing.T) {
	var m tea.Model = loaded(t, sampleReporter())
	m = step(t, m, tuitest.WindowSize(80, 60))

	view := tuitest.StripANSI(m.View())
	assert.True(t, tuitest.ContainsInOrder(view, "Balances", "Карта", "Top expenses", "Food", "Budgets"))
}

func TestModel_HelpToggle(t *testing.T) {
	var m tea.Model = loaded(t, sampleReporter())
	assert.False(t, m.(Model).help.ShowAll)

	m = step(t, m, tuitest.KeyPress("?"))
	assert.True(t, m.(Model).help.ShowAll)
	assert.Contains(t, tuitest.StripANSI(m.View()), "previous month")
}

func TestRunDashboard_RequiresReporter(t *testing.T) {
	assert.Error(t, RunDashboard(context.Background(), nil, nil))
}
