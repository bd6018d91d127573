package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/money"
	"github.com/Veraticus/kopeck/internal/tui/themes"
)

// wideLayout is the terminal width from which panes sit side by side.
const wideLayout = 120

var paneTitles = [paneCount]string{
	paneBalances: "Balances",
	paneTop:      "Top expenses",
	paneBudgets:  "Budgets",
}

func newTables(theme themes.Theme) [paneCount]table.Model {
	styles := table.DefaultStyles()
	styles.Header = theme.TableHeader
	styles.Selected = theme.TableSelected

	build := func(columns []table.Column) table.Model {
		return table.New(
			table.WithColumns(columns),
			table.WithStyles(styles),
			table.WithHeight(5),
		)
	}

	return [paneCount]table.Model{
		paneBalances: build([]table.Column{
			{Title: "Account", Width: 18},
			{Title: "Balance", Width: 16},
		}),
		paneTop: build([]table.Column{
			{Title: "Category", Width: 18},
			{Title: "Spent", Width: 16},
		}),
		paneBudgets: build([]table.Column{
			{Title: "Category", Width: 14},
			{Title: "Limit", Width: 14},
			{Title: "Actual", Width: 14},
			{Title: "Used", Width: 5},
		}),
	}
}

func balanceRows(balances []model.AccountBalance) []table.Row {
	rows := make([]table.Row, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, table.Row{b.Name, money.Format(b.Balance)})
	}
	return rows
}

func topRows(totals []model.CategoryTotal) []table.Row {
	rows := make([]table.Row, 0, len(totals))
	for _, c := range totals {
		rows = append(rows, table.Row{c.Name, money.Format(c.Total)})
	}
	return rows
}

func budgetRows(progress []model.BudgetProgress) []table.Row {
	rows := make([]table.Row, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, table.Row{
			p.CategoryName,
			money.Format(p.Budget.Limit),
			money.Format(p.Actual),
			fmt.Sprintf("%d%%", p.PercentUsed),
		})
	}
	return rows
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}

	if !m.ready {
		sections = append(sections, m.theme.Subtitle.Render("Loading…"))
	} else {
		sections = append(sections, m.renderSummary(), m.renderPanes())
	}

	if m.lastErr != nil {
		sections = append(sections, m.theme.StatusError.Render("Error: "+m.lastErr.Error()))
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("kopeck")
	month := m.theme.Bold.Render(m.month.Format("January 2006"))
	status := ""
	if m.loading && m.ready {
		status = m.theme.Subtitle.Render(" refreshing…")
	}
	return title + "  " + month + status
}

func (m Model) renderSummary() string {
	net := m.theme.Positive
	if m.summary.Net < 0 {
		net = m.theme.Negative
	}

	parts := []string{
		m.theme.Subtitle.Render("Income ") + m.theme.Positive.Render(money.Format(m.summary.Income)),
		m.theme.Subtitle.Render("Expense ") + m.theme.Negative.Render(money.Format(m.summary.Expense)),
		m.theme.Subtitle.Render("Net ") + net.Render(money.Format(m.summary.Net)),
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderPanes() string {
	rendered := make([]string, 0, paneCount)
	for i := range m.tables {
		style := m.theme.Pane
		if pane(i) == m.focus {
			style = m.theme.FocusedPane
		}

		body := m.tables[i].View()
		if len(m.tables[i].Rows()) == 0 {
			body = m.theme.Subtitle.Render("Nothing yet")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, m.theme.Bold.Render(paneTitles[i]), body)
		rendered = append(rendered, style.Render(content))
	}

	if m.width >= wideLayout {
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
