package viz

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/engine"
	"github.com/san-kum/springsim/internal/storage"
)

const (
	width           = 80
	height          = 20
	historyCapacity = 600
	statsWidth      = 44
)

type TickMsg time.Time

// history keeps the most recent energies and displacements for the side
// panel. The engine resets it together with the log.
type history struct {
	energy       []float64
	displacement []float64
}

func (h *history) OnSample(s dynamo.Snapshot) {
	h.energy = appendCapped(h.energy, s.Total)
	h.displacement = appendCapped(h.displacement, s.Displacement)
}

func (h *history) Reset() {
	h.energy = h.energy[:0]
	h.displacement = h.displacement[:0]
}

func appendCapped(buf []float64, v float64) []float64 {
	buf = append(buf, v)
	if len(buf) > historyCapacity {
		buf = buf[1:]
	}
	return buf
}

// Live is the interactive terminal view. Its tick loop is the periodic
// scheduler: every TickMsg fires the engine's Manual scheduler once, which
// is a no-op while paused.
type Live struct {
	eng       *engine.Engine
	sched     *engine.Manual
	params    dynamo.Params
	cadence   time.Duration
	exportDir string
	canvas    *Canvas
	hist      *history
	status    string
	err       error
	now       func() time.Time
}

// NewLive wires a view to eng. The engine must have been built with sched.
// params are reapplied by the reset key; exports are written to exportDir.
func NewLive(eng *engine.Engine, sched *engine.Manual, params dynamo.Params, cadence time.Duration, exportDir string) Live {
	if cadence <= 0 {
		cadence = engine.DefaultCadence
	}
	h := &history{}
	eng.AddObserver(h)
	if s := eng.Snapshot(); eng.Count() > 0 {
		h.OnSample(s)
	}
	return Live{
		eng:       eng,
		sched:     sched,
		params:    params.Clone(),
		cadence:   cadence,
		exportDir: exportDir,
		canvas:    NewCanvas(width, height),
		hist:      h,
		now:       time.Now,
	}
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(m.cadence, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and drives the scheduler.
func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Pause()
			return m, tea.Quit
		case " ":
			if m.eng.Running() {
				m.eng.Pause()
				m.status = "paused"
			} else {
				m.eng.Start()
				m.status = "running"
			}
		case "s":
			if m.eng.StepOnce() {
				m.status = "stepped"
			} else {
				m.status = "pause before stepping"
			}
		case "r":
			m.err = m.eng.Reset(m.params)
			m.eng.Pause()
			m.status = "reset"
		case "up", "k":
			m.eng.SetStepSize(m.eng.StepSize() * 1.25)
			m.status = fmt.Sprintf("dt=%.4gs", m.eng.StepSize())
		case "down", "j":
			m.eng.SetStepSize(m.eng.StepSize() / 1.25)
			m.status = fmt.Sprintf("dt=%.4gs", m.eng.StepSize())
		case "e":
			m.export()
		}
	case tea.WindowSizeMsg:
		m.canvas.Resize(max(msg.Width-statsWidth-6, 20), max(msg.Height-4, 8))
	case TickMsg:
		m.sched.Fire()
		return m, m.tick()
	}
	return m, nil
}

func (m *Live) export() {
	path := filepath.Join(m.exportDir, storage.DefaultCSVName(m.now()))
	if err := storage.SaveCSV(path, m.eng.ExportRows(dynamo.Header)); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + path
}

// View renders the spring and the stats panel.
func (m Live) View() string {
	m.eng.Render(m.canvas, m.canvas.Viewport())
	canvasView := canvasStyle.Render(m.canvas.String())

	snap := m.eng.Snapshot()
	var s strings.Builder
	s.WriteString(headerStyle.Render("MASS-SPRING-DAMPER") + "\n")
	if m.eng.Running() {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.hist.energy) > 1 {
		chart := asciigraph.Plot(m.hist.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(SparklineChart(m.hist.displacement, 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Position", fmt.Sprintf("%.3fm", snap.Displacement))
	row("Velocity", fmt.Sprintf("%.3fm/s", snap.Velocity))
	row("Energy", fmt.Sprintf("%.4fJ", snap.Total))
	row("Step", fmt.Sprintf("%.4gs", m.eng.StepSize()))
	row("Samples", fmt.Sprintf("%d", m.eng.Count()))

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + m.status + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Run/Pause S:Step R:Reset\nE:Export ↑↓:dt Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
