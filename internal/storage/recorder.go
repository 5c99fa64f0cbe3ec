package storage

import (
	"sync"

	"github.com/san-kum/bisect/internal/bisect"
)

// Recorder is an engine observer that keeps every step of the current run.
// A step with iteration 1 starts a new run.
type Recorder struct {
	mu       sync.Mutex
	function string
	cfg      bisect.RunConfig
	steps    []bisect.StepResult
	outcome  bisect.State
	finished bool
}

func NewRecorder(function string, cfg bisect.RunConfig) *Recorder {
	return &Recorder{function: function, cfg: cfg}
}

// SetConfig starts a fresh recording for a reconfigured engine.
func (r *Recorder) SetConfig(cfg bisect.RunConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.steps = nil
	r.finished = false
}

func (r *Recorder) OnStep(s bisect.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Iteration == 1 {
		r.steps = r.steps[:0]
		r.finished = false
	}
	r.steps = append(r.steps, s)
}

func (r *Recorder) OnFinish(state bisect.State, _ bisect.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome = state
	r.finished = true
}

func (r *Recorder) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Run returns a copy of what has been recorded so far.
func (r *Recorder) Run() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]bisect.StepResult, len(r.steps))
	copy(steps, r.steps)
	return Run{
		Function: r.function,
		Config:   r.cfg,
		Outcome:  r.outcome,
		Steps:    steps,
	}
}
