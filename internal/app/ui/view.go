package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fleetsync/internal/app/connection"
)

// View renders the header, the event feed and the help line
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	if m.state.lastErr != nil {
		sections = append(sections, errorStyle.Render(m.state.lastErr.Error()))
	}

	sections = append(sections, m.renderFeed(), m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(m.title)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, statusStyle.Render(m.renderIndicator()))
}

// renderIndicator shows a spinner while connecting and the pulse otherwise
func (m Model) renderIndicator() string {
	style := lipgloss.NewStyle().Foreground(statusColors[m.state.status])

	var glyph string

	switch m.state.status {
	case connection.Connecting:
		glyph = m.ui.spinner.View()
	case connection.Connected:
		glyph = m.ui.pulse.Render(style)
	default:
		glyph = style.Render(pulseEmpty)
	}

	label := "offline"

	switch m.state.status {
	case connection.Connected:
		label = "live"
	case connection.Connecting:
		label = "connecting"
	case connection.Error:
		label = "error"
	}

	return fmt.Sprintf("%s %s  %s", glyph, style.Render(label), keysStyle.Render(fmt.Sprintf("%d events", m.state.received)))
}

func (m Model) renderFeed() string {
	if len(m.state.events) == 0 {
		return emptyStyle.Render("Waiting for events…")
	}

	rows := m.feedRows()
	events := m.state.events

	if len(events) > rows {
		events = events[len(events)-rows:]
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, m.renderEvent(ev))
	}

	return feedStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderEvent(ev EventMsg) string {
	ts := timestampStyle.Width(timestampWidth).Render(ev.Received.Format("15:04:05"))
	typ := typeStyle.Render(string(ev.Envelope.Type))

	keys := "-"
	if len(ev.Invalidated) > 0 {
		keys = strings.Join(ev.Invalidated, ", ")
	}

	return fmt.Sprintf("%s %s %s", ts, typ, keysStyle.Render(keys))
}

func (m Model) renderFooter() string {
	stats := keysStyle.Render(fmt.Sprintf("cpu %.1f%%  mem %.1fMB", m.state.stats.CPU, m.state.stats.MEM))

	return helpStyle.Render(stats + "  " + m.ui.help.View(m.ui.keys))
}

// feedRows returns how many events fit; without a known height every kept event is shown
func (m Model) feedRows() int {
	if m.ui.height == 0 {
		return feedSize
	}

	rows := m.ui.height - headerHeight - footerHeight
	if rows < minFeedRows {
		rows = minFeedRows
	}

	return rows
}
