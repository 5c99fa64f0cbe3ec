package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/config"
)

const (
	defaultCanvasWidth  = 56
	defaultCanvasHeight = 16
	panelWidth          = 52
	chartWidth          = 30
	chartHeight         = 5
)

var (
	errBusy       = errors.New("stop or reset the run before changing settings")
	errNotStepped = errors.New("switch to step mode (m) to step manually")
)

// EventMsg carries an engine event into the Bubble Tea update loop.
type EventMsg bisect.Event

// waitForEvent reads one event. Update re-issues it after every EventMsg so
// the engine's queue is drained for the whole session.
func waitForEvent(ch <-chan bisect.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EventMsg(ev)
	}
}

type param int

const (
	paramLow param = iota
	paramHigh
	paramIterations
	paramDelay
	numParams
)

var paramNames = [...]string{"low", "high", "iterations", "delay"}

func (p param) String() string { return paramNames[p] }

// Model is the interactive display. It drives the engine from key presses
// and renders from the events the engine publishes.
type Model struct {
	engine   *bisect.Engine
	events   <-chan bisect.Event
	cfg      config.Config
	keys     KeyMap
	help     help.Model
	theme    int
	styles   Styles
	canvas   *Canvas
	run      uint64
	selected param
	showHelp bool
	history  []bisect.StepResult
	message  string
	err      error
}

func NewModel(e *bisect.Engine, cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	theme := themeIndex(cfg.Theme)
	return Model{
		engine: e,
		events: e.Events(),
		cfg:    *cfg,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		theme:  theme,
		styles: NewStyles(Themes[theme]),
		canvas: NewCanvas(defaultCanvasWidth, defaultCanvasHeight),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil
	case EventMsg:
		m.handleEvent(bisect.Event(msg))
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.StartStop):
		m.startStop()
	case key.Matches(msg, m.keys.Step):
		m.step()
	case key.Matches(msg, m.keys.Mode):
		if m.engine.State().Active() {
			m.err = errBusy
			break
		}
		m.cfg.StepMode = !m.cfg.StepMode
		m.err = nil
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		m.clearRun()
	case key.Matches(msg, m.keys.NextParam):
		m.selected = (m.selected + 1) % numParams
	case key.Matches(msg, m.keys.Increase):
		m.adjust(1)
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Theme):
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = NewStyles(Themes[m.theme])
		m.cfg.Theme = Themes[m.theme].Name
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// begin configures the engine from the current settings and starts a run.
func (m *Model) begin(mode bisect.Mode) bool {
	if err := m.engine.Configure(m.cfg.RunConfig()); err != nil {
		m.err = err
		return false
	}
	m.clearRun()
	if err := m.engine.Start(mode); err != nil {
		m.err = err
		return false
	}
	m.run = m.engine.RunID()
	return true
}

func (m *Model) startStop() {
	if m.engine.State().Active() {
		m.engine.Stop()
		return
	}
	m.begin(m.cfg.RunConfig().Mode())
}

func (m *Model) step() {
	if !m.cfg.StepMode {
		m.err = errNotStepped
		return
	}
	switch m.engine.State() {
	case bisect.AwaitingStep:
	case bisect.Running:
		_, m.err = m.engine.Step()
		return
	default:
		if !m.begin(bisect.Manual) {
			return
		}
	}
	if _, err := m.engine.Step(); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

func (m *Model) adjust(dir int) {
	if m.engine.State().Active() {
		m.err = errBusy
		return
	}
	d := float64(dir)
	switch m.selected {
	case paramLow:
		m.cfg.Low = roundTenth(m.cfg.Low + 0.1*d)
	case paramHigh:
		m.cfg.High = roundTenth(m.cfg.High + 0.1*d)
	case paramIterations:
		m.cfg.MaxIterations = max(1, m.cfg.MaxIterations+dir)
	case paramDelay:
		m.cfg.DelaySeconds = math.Max(0.1, roundTenth(m.cfg.DelaySeconds+0.1*d))
	}
	m.err = nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func (m *Model) clearRun() {
	m.history = m.history[:0]
	m.message = ""
	m.err = nil
}

// handleEvent applies ev unless it belongs to a run that was replaced.
func (m *Model) handleEvent(ev bisect.Event) {
	if ev.RunID != m.run {
		return
	}
	switch ev.Kind {
	case bisect.EventStep:
		if ev.Result.Iteration == 1 {
			m.history = m.history[:0]
		}
		m.history = append(m.history, ev.Result)
	case bisect.EventConverged:
		m.message = fmt.Sprintf("Converged after %d iterations: root ≈ %.6f", ev.Result.Iteration, ev.Root)
	case bisect.EventExhausted:
		m.message = fmt.Sprintf("Iteration limit reached after %d iterations: root ≈ %.6f", ev.Result.Iteration, ev.Root)
	case bisect.EventStopped:
		m.message = fmt.Sprintf("Stopped at iteration %d", ev.Result.Iteration)
	case bisect.EventReset:
		m.history = m.history[:0]
		m.message = ""
	}
}

func (m *Model) resize(w, h int) {
	cw := w - panelWidth - 6
	ch := h - 6
	if cw < 20 {
		cw = 20
	}
	if ch < 8 {
		ch = 8
	}
	m.canvas = NewCanvas(cw, ch)
}

func (m Model) last() (bisect.StepResult, bool) {
	if len(m.history) == 0 {
		return bisect.StepResult{}, false
	}
	return m.history[len(m.history)-1], true
}

func (m Model) plot() Plot {
	p := Plot{Fn: m.engine.Function(), Range: m.cfg.RunConfig().Interval()}
	p.Bracket = p.Range
	if last, ok := m.last(); ok {
		p.Range = m.history[0].Bisected
		p.Bracket = last.Interval()
		p.Midpoint, p.HasMid = last.Midpoint, true
	}
	if !p.Range.Valid() {
		p.Range = bisect.Interval{Low: math.Min(p.Range.Low, p.Range.High) - 1, High: math.Max(p.Range.Low, p.Range.High) + 1}
	}
	return p
}

func (m Model) View() string {
	m.plot().Draw(m.canvas)
	canvasView := m.styles.Canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.Title.Render("BISECTION  "+m.engine.Function().String()) + "\n")
	s.WriteString(m.status() + "\n\n")
	m.writeReadouts(&s)

	if len(m.history) > 1 {
		errs := make([]float64, len(m.history))
		for i, r := range m.history {
			errs[i] = math.Log10(r.Error)
		}
		chart := asciigraph.Plot(errs, asciigraph.Height(chartHeight), asciigraph.Width(chartWidth), asciigraph.Caption("log10 error"))
		s.WriteString(m.styles.Graph.Render(chart) + "\n")
	}

	s.WriteString("\n" + m.styles.Muted.Render("SETTINGS") + "\n")
	m.writeSettings(&s)

	if m.message != "" {
		s.WriteString(m.styles.Message.Render(m.message) + "\n")
	}
	if m.err != nil {
		s.WriteString(m.styles.Error.Render("error: "+m.err.Error()) + "\n")
	}
	s.WriteString("\n" + m.help.View(m.keys))

	panel := m.styles.Panel.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}

func (m Model) status() string {
	state := m.engine.State()
	mode := "auto"
	if m.cfg.StepMode {
		mode = "step"
	}
	label := strings.ToUpper(state.String()) + "  (" + mode + " mode)"
	switch state {
	case bisect.Running, bisect.AwaitingStep:
		return m.styles.Running.Render(label)
	case bisect.Converged, bisect.Exhausted:
		return m.styles.Finished.Render(label)
	case bisect.Stopped:
		return m.styles.Stopped.Render(label)
	}
	return m.styles.Muted.Render(label)
}

func (m Model) row(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

func (m Model) writeReadouts(s *strings.Builder) {
	last, ok := m.last()
	if !ok {
		iv := m.cfg.RunConfig().Interval()
		s.WriteString(m.row("Iteration", fmt.Sprintf("0 / %d", m.cfg.MaxIterations)))
		s.WriteString(m.row("Interval", iv.String()))
		s.WriteString(m.row("Error", fmt.Sprintf("%.6g", iv.HalfWidth())))
		return
	}
	s.WriteString(m.row("Iteration", fmt.Sprintf("%d / %d %s", last.Iteration, m.cfg.MaxIterations,
		ProgressBar(last.Iteration, m.cfg.MaxIterations, 10))))
	s.WriteString(m.row("Interval", last.Interval().String()))
	s.WriteString(m.row("Midpoint", fmt.Sprintf("%.6f", last.Midpoint)))
	s.WriteString(m.row("f(mid)", fmt.Sprintf("%.6g", last.FMid)))
	s.WriteString(m.row("Error", fmt.Sprintf("%.6g", last.Error)))
}

func (m Model) writeSettings(s *strings.Builder) {
	values := [numParams]string{
		fmt.Sprintf("%.1f", m.cfg.Low),
		fmt.Sprintf("%.1f", m.cfg.High),
		fmt.Sprintf("%d", m.cfg.MaxIterations),
		fmt.Sprintf("%.1fs", m.cfg.DelaySeconds),
	}
	for p := param(0); p < numParams; p++ {
		line := fmt.Sprintf("%-10s %s", p, values[p])
		if p == m.selected {
			s.WriteString(m.styles.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.styles.Muted.Render(line) + "\n")
		}
	}
}

// Settings returns the configuration as edited in the UI.
func (m Model) Settings() config.Config { return m.cfg }

func (m Model) Message() string { return m.message }

func (m Model) Err() error { return m.err }

func (m Model) History() []bisect.StepResult { return m.history }

func (m Model) ThemeName() string { return Themes[m.theme].Name }

// Run shows the display until the user quits or ctx is cancelled. The
// engine is stopped on the way out.
func Run(ctx context.Context, e *bisect.Engine, cfg *config.Config) (config.Config, error) {
	p := tea.NewProgram(NewModel(e, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	e.Stop()
	if fm, ok := final.(Model); ok {
		return fm.Settings(), err
	}
	return config.Config{}, err
}
