package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/remote-tui/termhost/internal/input"
	"github.com/remote-tui/termhost/internal/term"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Dashboard is the built-in demo application: a navigable item list with
// a tick-driven spinner and uptime readout. Pressing q or Q quits the
// session.
type Dashboard struct {
	items    []string
	selected int
	tick     uint64
	started  time.Time
	lastKey  string
}

// NewDashboard creates a dashboard instance for one session.
func NewDashboard() App {
	return &Dashboard{
		items: []string{
			"Overview",
			"Connections",
			"Throughput",
			"Latency",
			"Alerts",
			"About",
		},
		started: time.Now(),
	}
}

func (d *Dashboard) HandleTick(tick uint64) {
	d.tick = tick
}

func (d *Dashboard) Draw(f *term.Frame) {
	width, _ := f.Size()

	spinner := spinnerFrames[int(d.tick/3)%len(spinnerFrames)]
	header := titleStyle.Render(fmt.Sprintf("%s termhost dashboard", spinner))
	status := dimStyle.Render(fmt.Sprintf("uptime %s · tick %d",
		time.Since(d.started).Round(time.Second), d.tick))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(status)
	b.WriteString("\n\n")
	for i, item := range d.items {
		if i == d.selected {
			b.WriteString(selectedStyle.Render("▸ " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if d.lastKey != "" {
		b.WriteString(dimStyle.Render("last key: "+d.lastKey) + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ navigate · home/end jump · q quit"))

	content := b.String()
	if width > 0 {
		content = lipgloss.NewStyle().MaxWidth(width).Render(content)
	}
	f.SetContent(content)
}

func (d *Dashboard) HandleKey(k input.Key) error {
	switch k.Type {
	case input.KeyUp:
		d.lastKey = "up"
		if d.selected > 0 {
			d.selected--
		}
	case input.KeyDown:
		d.lastKey = "down"
		if d.selected < len(d.items)-1 {
			d.selected++
		}
	case input.KeyHome, input.KeyPageUp:
		d.lastKey = "home"
		d.selected = 0
	case input.KeyEnd, input.KeyPageDown:
		d.lastKey = "end"
		d.selected = len(d.items) - 1
	case input.KeyEnter:
		d.lastKey = "enter"
	case input.KeyChar:
		d.lastKey = string(k.Rune)
		if k.Rune == 'q' || k.Rune == 'Q' {
			return ErrQuit
		}
	}
	return nil
}
