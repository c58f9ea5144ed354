package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sysflow/internal/sim"
)

const (
	windowSize    = 200
	stepsPerFrame = 2
)

type TickMsg time.Time

// BuildFunc produces a fresh simulation for restarts.
type BuildFunc func() (*sim.Simulation, error)

// Model is the interactive live view: it steps its simulation a few
// steps per animation frame and charts one series at a time.
type Model struct {
	build    BuildFunc
	s        *sim.Simulation
	name     string
	duration float64

	series   []string
	selected int
	running  bool
	err      error
}

// NewModel wraps a freshly built simulation for live stepping. The
// duration bounds the run; at the end the view pauses.
func NewModel(build BuildFunc, name string, duration float64) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	return Model{
		build:    build,
		s:        s,
		name:     name,
		duration: duration,
		series:   s.Results().Names(),
		running:  true,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if len(m.series) > 0 {
				m.selected = (m.selected + 1) % len(m.series)
			}
		case "r":
			s, err := m.build()
			if err != nil {
				m.err = err
				m.running = false
				break
			}
			m.s = s
			m.err = nil
			m.running = true
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < stepsPerFrame; i++ {
				if m.s.Time() >= m.duration {
					m.running = false
					break
				}
				if err := m.s.Step(); err != nil {
					m.err = err
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "FAILED"
	case m.s.Time() >= m.duration:
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	b.WriteString(status + "\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}

	if len(m.series) > 0 {
		name := m.series[m.selected]
		values := m.s.Results().Series(name)
		if len(values) > windowSize {
			values = values[len(values)-windowSize:]
		}
		if chart := PlotSeries(values, name, 10); chart != "" {
			b.WriteString(graphStyle.Render(chart) + "\n\n")
		}
	}

	b.WriteString(labelStyle.Render("Time") +
		valueStyle.Render(fmt.Sprintf("%.2f / %.2f", m.s.Time(), m.duration)) + "\n")
	b.WriteString(labelStyle.Render("Steps") +
		valueStyle.Render(fmt.Sprintf("%d", m.s.StepCount())) + "\n")

	b.WriteString("\nSERIES\n")
	for i, name := range m.series {
		latest := 0.0
		if vs := m.s.Results().Series(name); len(vs) > 0 {
			latest = vs[len(vs)-1]
		}
		line := fmt.Sprintf("%-24s %12.4f", name, latest)
		if i == m.selected {
			b.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("SP:Pause Tab:Series R:Restart Q:Quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
