package bisect

import (
	"fmt"
	"math"
	"time"
)

// Tolerance is the half-width below which the midpoint is accepted as the root.
const Tolerance = 1e-6

type Interval struct {
	Low  float64
	High float64
}

func (i Interval) Width() float64     { return i.High - i.Low }
func (i Interval) HalfWidth() float64 { return (i.High - i.Low) / 2 }
func (i Interval) Midpoint() float64  { return (i.Low + i.High) / 2 }
func (i Interval) Valid() bool        { return i.Low < i.High }

func (i Interval) String() string {
	return fmt.Sprintf("[%.6f, %.6f]", i.Low, i.High)
}

// StepResult is the immutable snapshot produced by one bisection step.
// Low and High bound the bracket after the step; Midpoint is the point that
// split Bisected.
type StepResult struct {
	Iteration int
	Low       float64
	High      float64
	Midpoint  float64
	FLow      float64
	FHigh     float64
	FMid      float64
	Error     float64
	Bisected  Interval
}

func (r StepResult) Interval() Interval { return Interval{Low: r.Low, High: r.High} }

// Root is the approximate root carried by this step: the midpoint of the
// remaining bracket.
func (r StepResult) Root() float64 { return (r.Low + r.High) / 2 }

type RunConfig struct {
	Low           float64
	High          float64
	MaxIterations int
	Delay         time.Duration
	StepMode      bool
}

func (c RunConfig) Interval() Interval { return Interval{Low: c.Low, High: c.High} }

func (c RunConfig) Mode() Mode {
	if c.StepMode {
		return Manual
	}
	return Auto
}

// DelayFromSeconds converts a user-facing delay in seconds. Positive values
// stay positive: they are clamped to [1ns, the largest Duration]. Zero,
// negative and NaN inputs map to zero, which Configure rejects.
func DelayFromSeconds(s float64) time.Duration {
	if math.IsNaN(s) || s <= 0 {
		return 0
	}
	ns := s * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	d := time.Duration(ns)
	if d < time.Nanosecond {
		return time.Nanosecond
	}
	return d
}

type Mode int

const (
	Manual Mode = iota
	Auto
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "manual"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type State int

const (
	Idle State = iota
	AwaitingStep
	Running
	Converged
	Exhausted
	Stopped
)

var stateNames = [...]string{
	Idle:         "idle",
	AwaitingStep: "awaiting-step",
	Running:      "running",
	Converged:    "converged",
	Exhausted:    "exhausted",
	Stopped:      "stopped",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further steps are possible without a reset.
func (s State) Terminal() bool {
	return s == Converged || s == Exhausted || s == Stopped
}

// Active reports whether a run is in progress.
func (s State) Active() bool {
	return s == AwaitingStep || s == Running
}

type EventKind int

const (
	EventStep EventKind = iota
	EventConverged
	EventExhausted
	EventStopped
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventStep:
		return "step"
	case EventConverged:
		return "converged"
	case EventExhausted:
		return "exhausted"
	case EventStopped:
		return "stopped"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is what the engine hands to the display side. Terminal events carry
// the approximate root of the last step. RunID tells events of a finished
// run apart from those of the run that replaced it.
type Event struct {
	RunID  uint64
	Kind   EventKind
	Result StepResult
	Root   float64
	State  State
}

// Snapshot is a consistent copy of the engine's mutable fields.
type Snapshot struct {
	State      State
	Iteration  int
	Interval   Interval
	Config     RunConfig
	Configured bool
	RunID      uint64
	Last       *StepResult
}

// Observer receives every step synchronously on the goroutine that produced
// it. Observers must not call back into the engine.
type Observer interface {
	OnStep(r StepResult)
}

// FinishObserver is optionally implemented by observers that want the
// terminal state of a run.
type FinishObserver interface {
	OnFinish(s State, last StepResult)
}
