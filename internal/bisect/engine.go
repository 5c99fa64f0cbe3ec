package bisect

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/san-kum/bisect/internal/function"
	"github.com/san-kum/bisect/internal/logging"
)

const (
	DefaultEventBuffer = 64
	DefaultStopTimeout = 2 * time.Second
)

type Engine struct {
	fn     function.Func
	logger logging.Logger

	mu          sync.Mutex
	cfg         RunConfig
	configured  bool
	interval    Interval
	iteration   int
	state       State
	last        *StepResult
	runID       uint64
	cancel      context.CancelFunc
	done        chan struct{}
	changed     chan struct{}
	events      chan Event
	observers   []Observer
	stopTimeout time.Duration
}

// New creates an idle, unconfigured engine for fn. A nil fn selects the
// default quadratic.
func New(fn function.Func) *Engine {
	if fn == nil {
		fn = function.NewQuadratic()
	}
	return &Engine{
		fn:          fn,
		logger:      logging.NewNopLogger(),
		state:       Idle,
		changed:     make(chan struct{}),
		stopTimeout: DefaultStopTimeout,
	}
}

func (e *Engine) Function() function.Func { return e.fn }

func (e *Engine) SetLogger(l logging.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = logging.NewNopLogger()
	}
	e.logger = l
}

// SetStopTimeout bounds how long Stop, Reset and Configure wait for the
// background loop to exit.
func (e *Engine) SetStopTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.stopTimeout = d
	}
}

func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Events returns the queue of step and lifecycle events. The channel is
// created on first call; before that, nothing is queued.
func (e *Engine) Events() <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.events == nil {
		e.events = make(chan Event, DefaultEventBuffer)
	}
	return e.events
}

// Configure validates cfg and, on success, replaces the current run with a
// fresh idle one. On failure nothing changes.
func (e *Engine) Configure(cfg RunConfig) error {
	if err := e.validate(cfg); err != nil {
		e.log().Debug("configuration rejected", logging.Err(err))
		return err
	}

	e.mu.Lock()
	done := e.detachLoopLocked()
	e.cfg = cfg
	e.configured = true
	e.interval = cfg.Interval()
	e.iteration = 0
	e.last = nil
	e.setStateLocked(Idle)
	e.mu.Unlock()

	e.waitLoop(done)
	e.log().Debug("engine configured",
		logging.Float64("low", cfg.Low),
		logging.Float64("high", cfg.High),
		logging.Int("max_iterations", cfg.MaxIterations),
		logging.Duration("delay", cfg.Delay),
		logging.Bool("step_mode", cfg.StepMode))
	return nil
}

func (e *Engine) validate(cfg RunConfig) error {
	if !finite(cfg.Low) || !finite(cfg.High) || !finite(cfg.High-cfg.Low) {
		return &ConfigError{Field: "interval", Err: ErrInvalidBounds}
	}
	if !function.SignChange(e.fn, cfg.Low, cfg.High) {
		return &ConfigError{Field: "interval", Err: ErrNoSignChange}
	}
	if cfg.Low >= cfg.High {
		return &ConfigError{Field: "interval", Err: ErrInvalidBounds}
	}
	if cfg.MaxIterations <= 0 {
		return &ConfigError{Field: "max_iterations", Err: ErrInvalidIterationCap}
	}
	if cfg.Delay <= 0 {
		return &ConfigError{Field: "delay", Err: ErrInvalidDelay}
	}
	return nil
}

// Start begins a configured run. Manual mode waits for Step calls; Auto mode
// spawns the timed loop.
func (e *Engine) Start(mode Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkStartableLocked("start"); err != nil {
		return err
	}

	e.runID++
	if mode == Manual {
		e.setStateLocked(AwaitingStep)
		e.logger.Debug("manual run started")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	e.setStateLocked(Running)
	go e.loop(ctx, cancel, e.cfg.Delay, done)
	e.logger.Debug("auto run started", logging.Duration("delay", e.cfg.Delay))
	return nil
}

func (e *Engine) checkStartableLocked(op string) error {
	switch {
	case !e.configured:
		return &StepError{Op: op, State: e.state, Err: ErrNotConfigured}
	case e.state.Terminal():
		return &StepError{Op: op, State: e.state, Err: ErrAlreadyTerminal}
	case e.state.Active():
		return &StepError{Op: op, State: e.state, Err: ErrAlreadyStarted}
	}
	return nil
}

// Step performs one bisection step from the foreground. Calling it on a
// configured idle engine starts a manual run.
func (e *Engine) Step() (StepResult, error) {
	e.mu.Lock()
	switch {
	case !e.configured:
		err := &StepError{Op: "step", State: e.state, Err: ErrNotConfigured}
		e.mu.Unlock()
		return StepResult{}, err
	case e.state.Terminal():
		err := &StepError{Op: "step", State: e.state, Err: ErrAlreadyTerminal}
		e.mu.Unlock()
		return StepResult{}, err
	case e.state == Running:
		err := &StepError{Op: "step", State: e.state, Err: ErrAutoRunning}
		e.mu.Unlock()
		return StepResult{}, err
	case e.state == Idle:
		e.runID++
		e.setStateLocked(AwaitingStep)
	}

	res := e.stepLocked()
	state := e.state
	runID := e.runID
	observers := e.observersLocked()
	ch := e.events
	e.mu.Unlock()

	e.notify(observers, res, state)
	for _, ev := range stepEvents(runID, res, state) {
		e.offer(ch, ev)
	}
	return res, nil
}

// stepLocked bisects the current interval. Products that are not strictly
// negative, including an exact zero at the midpoint, keep the right half.
func (e *Engine) stepLocked() StepResult {
	a, b := e.interval.Low, e.interval.High
	fa := e.fn.Evaluate(a)
	c := (a + b) / 2
	fc := e.fn.Evaluate(c)

	next := Interval{Low: c, High: b}
	if fa*fc < 0 {
		next = Interval{Low: a, High: c}
	}

	e.iteration++
	e.interval = next

	res := StepResult{
		Iteration: e.iteration,
		Low:       next.Low,
		High:      next.High,
		Midpoint:  c,
		FLow:      e.fn.Evaluate(next.Low),
		FHigh:     e.fn.Evaluate(next.High),
		FMid:      fc,
		Error:     next.HalfWidth(),
		Bisected:  Interval{Low: a, High: b},
	}
	last := res
	e.last = &last

	switch {
	case res.Error < Tolerance:
		e.setStateLocked(Converged)
		e.logger.Info("bisection converged",
			logging.Int("iteration", res.Iteration),
			logging.Float64("root", res.Root()),
			logging.Float64("error", res.Error))
	case e.iteration >= e.cfg.MaxIterations:
		e.setStateLocked(Exhausted)
		e.logger.Info("iteration cap reached",
			logging.Int("iteration", res.Iteration),
			logging.Float64("root", res.Root()),
			logging.Float64("error", res.Error))
	default:
		e.logger.Debug("step",
			logging.Int("iteration", res.Iteration),
			logging.Float64("midpoint", c),
			logging.Float64("error", res.Error))
	}
	return res
}

// Stop cancels the current run. Idle, awaiting and running engines end up
// Stopped; terminal engines are left alone. It returns once the background
// loop has exited or the stop timeout elapsed.
func (e *Engine) Stop() {
	e.mu.Lock()
	done := e.detachLoopLocked()
	stopped := false
	if e.configured && !e.state.Terminal() {
		e.setStateLocked(Stopped)
		stopped = true
	}
	var last StepResult
	if e.last != nil {
		last = *e.last
	}
	observers := e.observersLocked()
	ch := e.events
	runID := e.runID
	e.mu.Unlock()

	e.waitLoop(done)
	if !stopped {
		return
	}
	e.log().Debug("run stopped", logging.Int("iteration", last.Iteration))
	e.notifyFinish(observers, Stopped, last)
	e.offer(ch, Event{RunID: runID, Kind: EventStopped, Result: last, Root: last.Root(), State: Stopped})
}

// Reset cancels any run and restores the last configured interval with the
// iteration count at zero.
func (e *Engine) Reset() {
	e.mu.Lock()
	done := e.detachLoopLocked()
	e.iteration = 0
	e.last = nil
	if e.configured {
		e.interval = e.cfg.Interval()
	} else {
		e.interval = Interval{}
	}
	e.setStateLocked(Idle)
	ch := e.events
	runID := e.runID
	e.mu.Unlock()

	e.waitLoop(done)
	e.log().Debug("engine reset")
	e.offer(ch, Event{RunID: runID, Kind: EventReset, State: Idle})
}

// Wait blocks until the engine is neither running nor awaiting a step.
func (e *Engine) Wait(ctx context.Context) (State, error) {
	for {
		e.mu.Lock()
		s, changed := e.state, e.changed
		e.mu.Unlock()

		if !s.Active() {
			return s, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Iteration() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.iteration
}

func (e *Engine) Interval() Interval {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

func (e *Engine) Config() RunConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// RunID identifies the current run. It increases every time a run starts,
// and every event carries the ID of the run that produced it.
func (e *Engine) RunID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

func (e *Engine) Configured() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configured
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:      e.state,
		Iteration:  e.iteration,
		Interval:   e.interval,
		Config:     e.cfg,
		Configured: e.configured,
		RunID:      e.runID,
	}
	if e.last != nil {
		last := *e.last
		s.Last = &last
	}
	return s
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	e.state = s
	close(e.changed)
	e.changed = make(chan struct{})
}

// detachLoopLocked cancels the loop while the lock is held, so the loop's
// re-check under the same lock cannot step afterwards.
func (e *Engine) detachLoopLocked() chan struct{} {
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	if cancel != nil {
		cancel()
	}
	return done
}

func (e *Engine) waitLoop(done chan struct{}) {
	if done == nil {
		return
	}
	e.mu.Lock()
	timeout := e.stopTimeout
	e.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		e.log().Warn("background loop did not exit in time", logging.Duration("timeout", timeout))
	}
}

func (e *Engine) observersLocked() []Observer {
	if len(e.observers) == 0 {
		return nil
	}
	return append([]Observer(nil), e.observers...)
}

func (e *Engine) notify(observers []Observer, res StepResult, state State) {
	for _, o := range observers {
		o.OnStep(res)
	}
	if state == Converged || state == Exhausted {
		e.notifyFinish(observers, state, res)
	}
}

func (e *Engine) notifyFinish(observers []Observer, state State, last StepResult) {
	for _, o := range observers {
		if fo, ok := o.(FinishObserver); ok {
			fo.OnFinish(state, last)
		}
	}
}

// offer queues ev without blocking; the foreground never waits on the
// display side.
func (e *Engine) offer(ch chan Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
		e.log().Debug("event queue full, dropping event", logging.String("kind", ev.Kind.String()))
	}
}

func (e *Engine) log() logging.Logger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logger
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func stepEvents(runID uint64, res StepResult, state State) []Event {
	evs := []Event{{RunID: runID, Kind: EventStep, Result: res, Root: res.Root(), State: state}}
	switch state {
	case Converged:
		evs = append(evs, Event{RunID: runID, Kind: EventConverged, Result: res, Root: res.Root(), State: state})
	case Exhausted:
		evs = append(evs, Event{RunID: runID, Kind: EventExhausted, Result: res, Root: res.Root(), State: state})
	}
	return evs
}
