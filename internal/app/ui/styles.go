package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"fleetsync/internal/app/connection"
)

// UI timing
const (
	tickInterval   = 100 * time.Millisecond
	ticksPerSecond = int(time.Second / tickInterval)
	statsEveryTick = 10
)

// Layout
const (
	feedSize       = 200
	headerHeight   = 3
	footerHeight   = 3
	minFeedRows    = 3
	timestampWidth = 8
	typeWidth      = 14
)

// Color palette
const (
	fgPrimary = lipgloss.Color("#7D56F4")
	fgMuted   = lipgloss.Color("7")
	fgBorder  = lipgloss.Color("8")

	fgLive    = lipgloss.Color("10")
	fgWarning = lipgloss.Color("11")
	fgError   = lipgloss.Color("9")
	fgOffline = lipgloss.Color("8")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgPrimary).
			Padding(1, 2, 0, 2)

	statusStyle = lipgloss.NewStyle().
			Padding(1, 2, 0, 0)

	helpStyle = lipgloss.NewStyle().
			Foreground(fgBorder).
			Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(fgMuted)

	typeStyle = lipgloss.NewStyle().
			Bold(true).
			Width(typeWidth)

	keysStyle = lipgloss.NewStyle().
			Foreground(fgMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(fgError).
			Padding(0, 2)

	emptyStyle = lipgloss.NewStyle().
			Foreground(fgMuted).
			Padding(1, 2)

	feedStyle = lipgloss.NewStyle().
			Padding(0, 2)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(fgPrimary)
)

// statusColors maps connection states to indicator colors
var statusColors = map[connection.State]lipgloss.Color{
	connection.Connected:    fgLive,
	connection.Connecting:   fgWarning,
	connection.Error:        fgError,
	connection.Disconnected: fgOffline,
}
