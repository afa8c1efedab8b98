package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/fx"

	"fleetsync/internal/config/logger"
)

// UI creates a Bubble Tea program for the live view
type UI func(ctx context.Context, title string) *tea.Program

// Module provides the sender, the process monitor and the UI factory
var Module = fx.Options(
	fx.Provide(
		NewSender,
		NewMonitor,
		NewUI,
	),
)

// NewUI creates a factory whose programs receive messages through sender
func NewUI(sender *Sender, monitor Monitor, log logger.Logger) UI {
	return func(ctx context.Context, title string) *tea.Program {
		p := tea.NewProgram(
			NewModel(title, monitor),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)

		sender.Set(p.Send)
		log.Debug().Msg("UI: Program created via factory")

		return p
	}
}
