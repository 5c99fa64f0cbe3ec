package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/config"
)

func newTestModel(t *testing.T, mutate func(*config.Config)) (Model, *bisect.Engine) {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e := bisect.New(nil)
	e.SetStopTimeout(time.Second)
	t.Cleanup(e.Stop)
	return NewModel(e, cfg), e
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

// drain feeds every queued event into the model without blocking.
func drain(m Model) Model {
	for {
		select {
		case ev := <-m.events:
			next, _ := m.Update(EventMsg(ev))
			m = next.(Model)
		default:
			return m
		}
	}
}

// awaitTerminal feeds events until a non-step event arrives.
func awaitTerminal(t *testing.T, m Model) Model {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-m.events:
			next, _ := m.Update(EventMsg(ev))
			m = next.(Model)
			if ev.Kind != bisect.EventStep {
				return m
			}
		case <-timeout:
			t.Fatal("timed out waiting for the run to finish")
		}
	}
}

func stepMode(c *config.Config) { c.StepMode = true }

func TestManualSteppingUpdatesDisplay(t *testing.T) {
	m, e := newTestModel(t, stepMode)

	m = drain(press(m, "n"))
	if e.State() != bisect.AwaitingStep || e.Iteration() != 1 {
		t.Fatalf("expected awaiting-step at iteration 1, got %s at %d", e.State(), e.Iteration())
	}
	if len(m.History()) != 1 || m.History()[0].Midpoint != 1.5 {
		t.Fatalf("unexpected history %+v", m.History())
	}
	if !strings.Contains(m.View(), "1.500000") {
		t.Error("view should show the first midpoint")
	}

	for i := 0; i < 9; i++ {
		m = drain(press(m, "n"))
	}
	if e.State() != bisect.Exhausted {
		t.Fatalf("expected exhausted, got %s", e.State())
	}
	if len(m.History()) != 10 {
		t.Errorf("expected 10 steps in history, got %d", len(m.History()))
	}
	if !strings.HasPrefix(m.Message(), "Iteration limit reached after 10 iterations: root ≈ ") {
		t.Errorf("unexpected message %q", m.Message())
	}
	// The panel wraps long messages, so only the opening words share a line.
	if !strings.Contains(m.View(), "Iteration limit reached") {
		t.Error("view should show the completion message")
	}
}

func TestEventsFromReplacedRunAreIgnored(t *testing.T) {
	m, e := newTestModel(t, func(c *config.Config) { c.StepMode = true })

	m = press(m, "n", "n", "s")
	if e.State() != bisect.Stopped {
		t.Fatalf("expected stopped, got %s", e.State())
	}
	first := e.RunID()

	// The old run's steps and its stop event are still queued.
	m = press(m, "s")
	if e.RunID() == first {
		t.Fatal("restart should begin a new run")
	}
	m = drain(m)
	if len(m.History()) != 0 {
		t.Errorf("stale steps leaked into the new run: %+v", m.History())
	}
	if m.Message() != "" {
		t.Errorf("stale message leaked into the new run: %q", m.Message())
	}

	m = drain(press(m, "n"))
	if h := m.History(); len(h) != 1 || h[0].Iteration != 1 {
		t.Errorf("expected the new run's first step, got %+v", h)
	}
}

func TestStepRequiresStepMode(t *testing.T) {
	m, e := newTestModel(t, nil)

	m = press(m, "n")
	if !errors.Is(m.Err(), errNotStepped) {
		t.Errorf("expected step-mode error, got %v", m.Err())
	}
	if e.Iteration() != 0 {
		t.Error("engine should not have stepped")
	}
}

func TestAutoRunConverges(t *testing.T) {
	m, e := newTestModel(t, func(c *config.Config) {
		c.MaxIterations = 50
		c.DelaySeconds = 0.001
	})

	m = press(m, "s")
	if s := e.State(); s != bisect.Running && !s.Terminal() {
		t.Fatalf("expected running, got %s", s)
	}
	m = awaitTerminal(t, m)

	if e.State() != bisect.Converged {
		t.Fatalf("expected converged, got %s", e.State())
	}
	if len(m.History()) != 21 {
		t.Errorf("expected 21 steps, got %d", len(m.History()))
	}
	if !strings.HasPrefix(m.Message(), "Converged after 21 iterations: root ≈ 2.000000") {
		t.Errorf("unexpected message %q", m.Message())
	}
	if !strings.Contains(m.View(), "log10 error") {
		t.Error("view should include the error chart")
	}
}

func TestStartStop(t *testing.T) {
	m, e := newTestModel(t, func(c *config.Config) { c.DelaySeconds = 10 })

	m = press(m, "s")
	if e.State() != bisect.Running {
		t.Fatalf("expected running, got %s", e.State())
	}

	m = press(m, "m")
	if !errors.Is(m.Err(), errBusy) {
		t.Errorf("mode change during a run should be refused, got %v", m.Err())
	}

	m = drain(press(m, "s"))
	if e.State() != bisect.Stopped {
		t.Fatalf("expected stopped, got %s", e.State())
	}
	if m.Message() != "Stopped at iteration 0" {
		t.Errorf("unexpected message %q", m.Message())
	}
}

func TestInvalidSettingsReported(t *testing.T) {
	m, e := newTestModel(t, func(c *config.Config) {
		c.Low, c.High = 1, 1.5
	})

	m = press(m, "s")
	if !bisect.IsConfigError(m.Err()) || !errors.Is(m.Err(), bisect.ErrNoSignChange) {
		t.Errorf("expected no-sign-change config error, got %v", m.Err())
	}
	if e.Configured() || e.State() != bisect.Idle {
		t.Error("engine should stay idle and unconfigured")
	}
	if !strings.Contains(m.View(), "error: ") {
		t.Error("view should show the error line")
	}
}

func TestReset(t *testing.T) {
	m, e := newTestModel(t, stepMode)

	m = drain(press(m, "n", "n", "n"))
	m = drain(press(m, "r"))

	if e.State() != bisect.Idle || e.Iteration() != 0 {
		t.Errorf("expected idle at iteration 0, got %s at %d", e.State(), e.Iteration())
	}
	if len(m.History()) != 0 || m.Message() != "" {
		t.Error("reset should clear the display")
	}
	if e.Interval() != (bisect.Interval{Low: 0, High: 3}) {
		t.Errorf("unexpected interval %v", e.Interval())
	}
}

func TestAdjustSettings(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = press(m, "up", "up")
	if got := m.Settings().Low; got != 0.2 {
		t.Errorf("expected low 0.2, got %v", got)
	}

	m = press(m, "tab", "up")
	if got := m.Settings().High; got != 3.1 {
		t.Errorf("expected high 3.1, got %v", got)
	}

	m = press(m, "tab")
	for i := 0; i < 20; i++ {
		m = press(m, "down")
	}
	if got := m.Settings().MaxIterations; got != 1 {
		t.Errorf("iterations should clamp at 1, got %d", got)
	}

	m = press(m, "tab")
	for i := 0; i < 20; i++ {
		m = press(m, "down")
	}
	if got := m.Settings().DelaySeconds; got != 0.1 {
		t.Errorf("delay should clamp at 0.1, got %v", got)
	}

	m = press(m, "m")
	if !m.Settings().StepMode {
		t.Error("m should toggle step mode while idle")
	}
}

func TestThemeAndHelp(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.ThemeName() != "cyberpunk" {
		t.Fatalf("unexpected default theme %s", m.ThemeName())
	}

	m = press(m, "t")
	if m.ThemeName() != "retro" || m.Settings().Theme != "retro" {
		t.Errorf("expected retro theme, got %s", m.ThemeName())
	}

	short := m.View()
	m = press(m, "?")
	if len(m.View()) <= len(short) {
		t.Error("full help should add to the view")
	}
}

func TestQuit(t *testing.T) {
	m, e := newTestModel(t, func(c *config.Config) { c.DelaySeconds = 10 })
	m = press(m, "s")

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if e.State() != bisect.Stopped {
		t.Errorf("quit should stop the engine, got %s", e.State())
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = next.(Model)
	if m.canvas.Width != 160-panelWidth-6 || m.canvas.Height != 34 {
		t.Errorf("unexpected canvas size %dx%d", m.canvas.Width, m.canvas.Height)
	}
}
