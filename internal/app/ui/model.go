package ui

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"fleetsync/internal/app/connection"
)

// tickMsg signals a UI tick for animations
type tickMsg time.Time

// statsMsg carries a resource usage sample
type statsMsg Stats

// Model is the Bubble Tea model of the live event view
type Model struct {
	title   string
	monitor Monitor
	pid     int

	state struct {
		status   connection.State
		events   []EventMsg
		received int
		lastErr  error
		stats    Stats
	}

	ui struct {
		width       int
		height      int
		keys        KeyMap
		help        help.Model
		spinner     spinner.Model
		pulse       *Pulse
		tickCounter int
	}
}

// NewModel creates the live view for title, e.g. the subscription kind and identity
func NewModel(title string, monitor Monitor) Model {
	m := Model{
		title:   title,
		monitor: monitor,
		pid:     os.Getpid(),
	}

	m.state.status = connection.Disconnected
	m.ui.keys = DefaultKeyMap()
	m.ui.help = help.New()
	m.ui.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	m.ui.pulse = NewPulse()

	return m
}

// Init starts the spinner and the animation ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ui.spinner.Tick, tick())
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.ui.width = msg.Width
		m.ui.height = msg.Height
		m.ui.help.Width = msg.Width

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.ui.spinner, cmd = m.ui.spinner.Update(msg)

		return m, cmd

	case tickMsg:
		m.ui.pulse.Update()
		m.ui.tickCounter++

		cmds := []tea.Cmd{tick()}
		if m.ui.tickCounter%statsEveryTick == 0 && m.monitor != nil {
			cmds = append(cmds, m.sampleStats())
		}

		return m, tea.Batch(cmds...)

	case statsMsg:
		m.state.stats = Stats(msg)
		return m, nil

	case StatusMsg:
		m.setStatus(connection.State(msg))
		return m, nil

	case ErrorMsg:
		m.state.lastErr = msg.Err
		return m, nil

	case EventMsg:
		m.addEvent(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ui.keys.Quit), key.Matches(msg, m.ui.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.ui.keys.Clear):
		m.state.events = nil
		m.state.lastErr = nil
	}

	return m, nil
}

func (m *Model) setStatus(status connection.State) {
	m.state.status = status

	if status == connection.Connected {
		m.state.lastErr = nil
		m.ui.pulse.Start()

		return
	}

	m.ui.pulse.Stop()
}

// addEvent keeps the newest feedSize events, newest last
func (m *Model) addEvent(ev EventMsg) {
	if ev.Received.IsZero() {
		ev.Received = time.Now()
	}

	m.state.received++
	m.state.events = append(m.state.events, ev)

	if len(m.state.events) > feedSize {
		m.state.events = m.state.events[len(m.state.events)-feedSize:]
	}

	m.ui.pulse.Beat()
}

func (m Model) sampleStats() tea.Cmd {
	monitor, pid := m.monitor, m.pid

	return func() tea.Msg {
		stats, err := monitor.GetStats(pid)
		if err != nil {
			return nil
		}

		return statsMsg(stats)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
