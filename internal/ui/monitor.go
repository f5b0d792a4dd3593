package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"plugmerge/internal/health"
)

// historySize is how many recent samples the monitor lists.
const historySize = 8

type monitorModel struct {
	title    string
	readings <-chan health.Reading
	spinner  spinner.Model
	prog     progress.Model
	last     health.Reading
	history  []health.Reading
	count    int
	width    int
	done     bool
}

type readingMsg health.Reading
type doneMsg struct{}

// NewHookTimeModel returns a Bubble Tea model that charts hook-time
// readings as they arrive. The program quits when readings is closed or
// the operator presses q or ctrl+c.
func NewHookTimeModel(title string, readings <-chan health.Reading) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 60

	return &monitorModel{
		title:    title,
		readings: readings,
		spinner:  sp,
		prog:     prog,
		width:    80,
	}
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForReading())
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readingMsg:
		cmd := m.applyReading(health.Reading(msg))
		return m, tea.Batch(cmd, m.listenForReading())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-24, 10)
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *monitorModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := truncate(m.title, m.width-4)
	if m.done {
		header = "stopped: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.count == 0 {
		b.WriteString(dimStyle.Render("  waiting for the first listing..."))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %s %s  %s\n",
		labelStyle.Render("min"), formatSeconds(m.last.Min), m.prog.View())
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("max"), formatSeconds(m.last.Max))
	fmt.Fprintf(&b, "  %s %s  (%d samples)\n\n",
		labelStyle.Render("now"), sampleStyle(m.last).Render(formatSeconds(m.last.Sample.Value)), m.count)

	for i := len(m.history) - 1; i >= 0; i-- {
		r := m.history[i]
		line := fmt.Sprintf("  #%-5d %s", r.Sample.Seq, formatSeconds(r.Sample.Value))
		b.WriteString(dimStyle.Render(truncate(line, m.width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  q to stop"))
	b.WriteString("\n")
	return b.String()
}

func (m *monitorModel) listenForReading() tea.Cmd {
	return func() tea.Msg {
		r, ok := <-m.readings
		if !ok {
			return doneMsg{}
		}
		return readingMsg(r)
	}
}

func (m *monitorModel) applyReading(r health.Reading) tea.Cmd {
	m.last = r
	m.count++
	m.history = append(m.history, r)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	return m.prog.SetPercent(Position(r))
}

// Position places the sample between the observed bounds: 0 at the
// minimum, 1 at the maximum. A single distinct value sits at 0.
func Position(r health.Reading) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	p := (r.Sample.Value - r.Min) / span
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func sampleStyle(r health.Reading) lipgloss.Style {
	switch {
	case r.Sample.Value <= r.Min:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case r.Sample.Value >= r.Max:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%8.4fs", v)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// the tail counts toward width
	return runewidth.Truncate(value, width, "...")
}
