package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Subscriber delivers change notifications. Subscribe returns a function
// that cancels the subscription.
type Subscriber interface {
	Subscribe(fn func()) func()
}

// RunDashboard shows the dashboard until the user quits or ctx ends. When
// changes is non-nil every notification reloads the current month.
func RunDashboard(ctx context.Context, reporter Reporter, changes Subscriber, opts ...Option) error {
	if reporter == nil {
		return fmt.Errorf("reporter is required")
	}

	program := tea.NewProgram(
		NewModel(ctx, reporter, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if changes != nil {
		unsubscribe := changes.Subscribe(func() {
			program.Send(dataChangedMsg{})
		})
		defer unsubscribe()
	}

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
