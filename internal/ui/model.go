package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/snowglobe/internal/accel"
	"github.com/olivier-w/snowglobe/internal/field"
	"github.com/olivier-w/snowglobe/internal/motion"
	"github.com/olivier-w/snowglobe/internal/sim"
	"github.com/olivier-w/snowglobe/internal/trigger"
	"github.com/olivier-w/snowglobe/internal/util"
	"github.com/olivier-w/snowglobe/internal/visualizer"
)

const (
	defaultInterval = 20 * time.Millisecond
	// chromeLines is everything around the field frame: header, blank,
	// frame border, status, bar, blank, help.
	chromeLines = 9
)

// Queue is the read-only view of the playback command queue shown in the
// status line.
type Queue interface {
	Len() int
	Cap() int
	Stats() trigger.Stats
}

// Options wires a Model to the simulation.
type Options struct {
	Driver   *sim.Driver
	Source   accel.Source
	Queue    Queue
	Title    string
	Interval time.Duration
}

// Model is the Bubbletea model for the snow globe. Each tick message
// advances the simulation by one reading, so the render loop is the
// simulation loop.
type Model struct {
	driver   *sim.Driver
	source   accel.Source
	tilt     *accel.Tilt
	queue    Queue
	title    string
	interval time.Duration

	modes  []visualizer.Visualizer
	mode   int
	points []field.Point
	last   sim.Result

	keys     keyMap
	help     help.Model
	progress progress.Model

	started  time.Time
	elapsed  time.Duration
	width    int
	height   int
	quitting bool
}

func New(opts Options) Model {
	tilt, _ := opts.Source.(*accel.Tilt)
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	p := progress.New(
		progress.WithScaledGradient("#5F87AF", "#F0F8FF"),
		progress.WithoutPercentage(),
	)
	p.Width = 40
	return Model{
		points:   opts.Driver.Snapshot(nil),
		driver:   opts.Driver,
		source:   opts.Source,
		tilt:     tilt,
		queue:    opts.Queue,
		title:    opts.Title,
		interval: interval,
		modes:    visualizer.Modes(),
		keys:     newKeyMap(tilt != nil),
		help:     help.New(),
		progress: p,
		started:  time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.interval), tea.SetWindowTitle("snowglobe"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.last = m.driver.Tick(m.source.Read())
		m.points = m.driver.Snapshot(m.points)
		m.elapsed = time.Since(m.started)
		return m, tickCmd(m.interval)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(20, min(60, msg.Width-8))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(m.keys, msg) {
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	switch {
	case key.Matches(msg, m.keys.View):
		m.mode = (m.mode + 1) % len(m.modes)
	case key.Matches(msg, m.keys.Left):
		m.tilt.Lean(-leanStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.tilt.Lean(leanStep, 0)
	case key.Matches(msg, m.keys.Up):
		m.tilt.Lean(0, -leanStep)
	case key.Matches(msg, m.keys.Down):
		m.tilt.Lean(0, leanStep)
	case key.Matches(msg, m.keys.Shake):
		m.tilt.Shake()
	case key.Matches(msg, m.keys.Level):
		m.tilt.Level()
	}
	return m, nil
}

// fieldSize returns the cell size of the area inside the frame.
func (m Model) fieldSize() (cols, rows int) {
	w, h := m.width, m.height
	if w < 30 {
		w = 64
	}
	if h < chromeLines+4 {
		h = chromeLines + 16
	}
	return w - 4, h - chromeLines
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	viz := m.modes[m.mode]
	cols, rows := m.fieldSize()
	fw, fh := m.driver.Bounds()
	viz.Update(m.points, fw, fh, cols, rows)

	header := headerStyle.Render("snowglobe")
	if m.title != "" {
		header += "  " + titleStyle.Render(m.title)
	}

	total := m.driver.Flakes()
	settled := float64(m.last.AtBottom) / float64(max(1, total))

	var b strings.Builder
	b.WriteString("  " + header + "\n\n")
	for _, line := range strings.Split(frameStyle.Render(viz.View()), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + m.statusLine(total) + "\n")
	b.WriteString("  " + m.progress.ViewAs(settled) + "\n")
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")

	view := b.String()
	if pad := m.height - lipgloss.Height(view); pad > 0 {
		view += strings.Repeat("\n", pad)
	}
	return view
}

func (m Model) statusLine(total int) string {
	state := statusStyle.Render("❄ " + m.last.State.String())
	if m.last.State == motion.Shaking {
		state = shakeStyle.Render("✱ shaking")
	}
	bottom := fmt.Sprintf("%d/%d down", m.last.AtBottom, total)
	if m.driver.Settled() {
		bottom += " settled"
	}
	parts := []string{state, statusStyle.Render(bottom)}
	if m.queue != nil {
		st := m.queue.Stats()
		parts = append(parts, statusStyle.Render(fmt.Sprintf("queue %d/%d  dropped %d", m.queue.Len(), m.queue.Cap(), st.Dropped)))
	}
	parts = append(parts, statusStyle.Render(m.modes[m.mode].Name()), timeStyle.Render(util.FormatDuration(m.elapsed)))
	return strings.Join(parts, "  ")
}
