package bisect

import (
	"context"
	"time"
)

// loop is the timed auto-stepper. It is the only mutator of the interval
// while the engine is Running. Cancellation is checked while sleeping and
// again under the engine lock right before each step.
func (e *Engine) loop(ctx context.Context, cancel context.CancelFunc, delay time.Duration, done chan struct{}) {
	defer close(done)
	defer cancel()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		runID, res, state, observers, ch, ok := e.advance(ctx)
		if !ok {
			return
		}

		e.notify(observers, res, state)
		for _, ev := range stepEvents(runID, res, state) {
			if !publish(ctx, ch, ev) {
				return
			}
		}

		if state.Terminal() {
			return
		}
		timer.Reset(delay)
	}
}

func (e *Engine) advance(ctx context.Context) (uint64, StepResult, State, []Observer, chan Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil || e.state != Running {
		return 0, StepResult{}, e.state, nil, nil, false
	}
	res := e.stepLocked()
	return e.runID, res, e.state, e.observersLocked(), e.events, true
}

// publish hands ev to the display side, giving up if the run is cancelled
// while the queue is full.
func publish(ctx context.Context, ch chan Event, ev Event) bool {
	if ch == nil {
		return true
	}
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
