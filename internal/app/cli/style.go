package cli

import (
	"github.com/charmbracelet/lipgloss"

	"fleetsync/internal/app/connection"
	"fleetsync/internal/config"
)

// Headline - High-emphasis text for section headers
var (
	headlineLarge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
)

// Title - Medium-emphasis text for titles and subtitles
var (
	titleMedium = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

// Body - Main content text
var (
	bodyLarge  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
	bodyMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
)

// Label - Small text for labels, captions, and supplementary content
var (
	labelLarge = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")).Italic(true).MarginTop(1)
	labelSmall = lipgloss.NewStyle().Foreground(lipgloss.Color("#757575"))
)

// Semantic styles - mapped to the typography scale
var (
	sectionHeader = headlineLarge.MarginBottom(1)
	helpText      = labelLarge

	commandName = titleMedium
	exampleCode = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726"))

	appNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	appVersionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDBD"))
	titleWrapper    = lipgloss.NewStyle().MarginTop(1).MarginBottom(1)

	// Event feed styles
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	eventTypeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D7BF5")).Bold(true)
	keyStyle       = labelSmall
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF5350")).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA726"))
)

// statusStyles colors connection state transitions in the feed
var statusStyles = map[connection.State]lipgloss.Style{
	connection.Connected:    titleMedium,
	connection.Connecting:   warnStyle,
	connection.Error:        errorStyle,
	connection.Disconnected: labelSmall,
}

// RenderTitle renders the app title block with name, version, and description
func RenderTitle() string {
	title := titleWrapper.Render(
		appNameStyle.Render(config.AppName) + appVersionStyle.Render(" v"+config.Version),
	)
	description := bodyLarge.Render(config.AppDescription)

	return lipgloss.JoinVertical(lipgloss.Left, title, description)
}

// RenderHelp renders the exit hint shown under streaming output
func RenderHelp() string {
	return helpText.Render("Press ctrl+c to exit")
}
