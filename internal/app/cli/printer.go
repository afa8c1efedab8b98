package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"fleetsync/internal/app/cache"
	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/router"
	"fleetsync/internal/config/logger"
)

const (
	defaultWidth = 80
	minWidth     = 40
	typeColumn   = 14
)

// Printer writes the event feed either as styled lines or as JSON lines
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	width  int
	now    func() time.Time
}

// feedLine is the JSON form of one printed event
type feedLine struct {
	Time        string             `json:"time"`
	Type        protocol.EventType `json:"type,omitempty"`
	Status      string             `json:"status,omitempty"`
	Error       string             `json:"error,omitempty"`
	Invalidated []string           `json:"invalidated,omitempty"`
}

// NewPrinter creates a printer sized to out when it is a terminal
func NewPrinter(out io.Writer, format string) *Printer {
	return &Printer{
		out:    out,
		format: format,
		width:  terminalWidth(out),
		now:    time.Now,
	}
}

// Banner writes what the watch is subscribed to
func (p *Printer) Banner(fields [][2]string) {
	if p.format == logger.JSONFormat {
		return
	}

	muted := labelSmall.Render
	bold := bodyMedium.Bold(true).Render

	lines := []string{RenderTitle(), ""}
	for _, f := range fields {
		lines = append(lines, " "+muted(f[0]+":")+" "+bold(f[1]))
	}

	lines = append(lines, RenderHelp(), "")

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
}

// Event writes one envelope with the keys it invalidates
func (p *Printer) Event(env protocol.Envelope) {
	keys := planKeys(router.Keys(env))

	if p.format == logger.JSONFormat {
		p.writeJSON(feedLine{Type: env.Type, Invalidated: keys})
		return
	}

	summary := "-"
	if len(keys) > 0 {
		summary = strings.Join(keys, ", ")
	}

	p.writeLine(eventTypeStyle.Width(typeColumn).Render(string(env.Type)), keyStyle.Render(summary))
}

// Status writes a connection state change
func (p *Printer) Status(state connection.State) {
	if p.format == logger.JSONFormat {
		p.writeJSON(feedLine{Status: string(state)})
		return
	}

	style, ok := statusStyles[state]
	if !ok {
		style = labelSmall
	}

	p.writeLine(style.Width(typeColumn).Render(string(state)), "")
}

// Error writes a connection error
func (p *Printer) Error(err error) {
	if p.format == logger.JSONFormat {
		p.writeJSON(feedLine{Error: err.Error()})
		return
	}

	p.writeLine(errorStyle.Width(typeColumn).Render("error"), err.Error())
}

// Plan writes the invalidation plan of a routed envelope
func (p *Printer) Plan(plan router.Plan) {
	keys := planKeys(plan)

	if p.format == logger.JSONFormat {
		p.writeJSON(feedLine{Type: plan.Type, Invalidated: keys})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, eventTypeStyle.Render(string(plan.Type)))

	switch {
	case plan.All:
		fmt.Fprintln(p.out, "  "+warnStyle.Render("every cached query"))
	case len(keys) == 0 && protocol.IsKnown(plan.Type):
		fmt.Fprintln(p.out, "  "+keyStyle.Render("nothing to invalidate"))
	case len(keys) == 0:
		fmt.Fprintln(p.out, "  "+warnStyle.Render("unknown event type, ignored"))
	default:
		for _, key := range keys {
			fmt.Fprintln(p.out, "  "+separatorStyle.Render("•")+" "+bodyMedium.Render(key))
		}
	}
}

func (p *Printer) writeLine(label, message string) {
	ts := timestampStyle.Render(p.now().Format("15:04:05"))
	line := ts + " " + separatorStyle.Render("|") + " " + label + " " + message

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, lipgloss.NewStyle().MaxWidth(p.width).Render(line))
}

func (p *Printer) writeJSON(line feedLine) {
	line.Time = p.now().Format(time.RFC3339)

	data, err := json.Marshal(line)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, string(data))
}

// planKeys flattens a plan for display; a full refresh is shown as "*"
func planKeys(plan router.Plan) []string {
	if plan.All {
		return []string{"*"}
	}

	return cache.KeyStrings(plan.Keys)
}

// terminalWidth returns the width of out when it is a terminal
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return defaultWidth
	}

	width, _, err := term.GetSize(f.Fd())
	if err != nil || width < minWidth {
		return defaultWidth
	}

	return width
}
