// Package tui implements the read-only terminal dashboard: the month's
// income and expense summary, account balances, top expense categories and
// budget progress.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/tui/themes"
)

// Reporter supplies the figures the dashboard shows.
type Reporter interface {
	Dashboard(ctx context.Context, start, end time.Time, limit int) (*model.Dashboard, error)
	BudgetStatus(ctx context.Context, monthStart time.Time) ([]model.BudgetProgress, error)
}

type pane int

const (
	paneBalances pane = iota
	paneTop
	paneBudgets
	paneCount
)

// Model holds the dashboard state.
type Model struct {
	ctx      context.Context
	reporter Reporter
	lastErr  error
	month    time.Time
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	summary  model.PeriodSummary
	tables   [paneCount]table.Model
	focus    pane
	width    int
	height   int
	topLimit int
	loading  bool
	ready    bool
	quitting bool
}

// NewModel creates a dashboard over reporter.
func NewModel(ctx context.Context, reporter Reporter, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := Model{
		ctx:      ctx,
		reporter: reporter,
		month:    cfg.Month,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		width:    cfg.Width,
		height:   cfg.Height,
		topLimit: cfg.TopLimit,
		loading:  true,
	}
	m.tables = newTables(cfg.Theme)
	m.setFocus(paneBalances)
	m.resize()
	return m
}

// Month returns the month currently shown.
func (m Model) Month() time.Time {
	return m.month
}

// Init starts loading the first month.
func (m Model) Init() tea.Cmd {
	return m.loadMonth(m.month)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case dataLoadedMsg:
		if !msg.month.Equal(m.month) {
			return m, nil
		}
		m.loading = false
		m.ready = true
		m.lastErr = msg.err
		if msg.err == nil {
			m.apply(msg)
		}
		return m, nil

	case dataChangedMsg:
		m.loading = true
		return m, m.loadMonth(m.month)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.PrevMonth):
		m.month = m.month.AddDate(0, -1, 0)
		m.loading = true
		return m, m.loadMonth(m.month)

	case key.Matches(msg, m.keymap.NextMonth):
		m.month = m.month.AddDate(0, 1, 0)
		m.loading = true
		return m, m.loadMonth(m.month)

	case key.Matches(msg, m.keymap.Refresh):
		m.loading = true
		return m, m.loadMonth(m.month)

	case key.Matches(msg, m.keymap.NextPane):
		m.setFocus((m.focus + 1) % paneCount)
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.focus], cmd = m.tables[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	for i := range m.tables {
		if pane(i) == p {
			m.tables[i].Focus()
		} else {
			m.tables[i].Blur()
		}
	}
}

func (m *Model) apply(msg dataLoadedMsg) {
	m.summary = msg.dashboard.Summary
	m.tables[paneBalances].SetRows(balanceRows(msg.dashboard.Balances))
	m.tables[paneTop].SetRows(topRows(msg.dashboard.TopCategories))
	m.tables[paneBudgets].SetRows(budgetRows(msg.budgets))
	for i := range m.tables {
		m.tables[i].GotoTop()
	}
}

func (m *Model) resize() {
	// Title, summary, pane borders and help take about ten lines.
	height := m.height - 10
	if m.width < wideLayout {
		height = height/int(paneCount) - 2
	}
	if height < 3 {
		height = 3
	}
	for i := range m.tables {
		m.tables[i].SetHeight(height)
	}
	m.help.Width = m.width
}
