package metrics

import "github.com/san-kum/bisect/internal/bisect"

// Metric folds a run's steps into a single value.
type Metric interface {
	Name() string
	Observe(r bisect.StepResult)
	Value() float64
	Reset()
}

func Standard() []Metric {
	return []Metric{NewResidual(), NewContraction()}
}

// Summarize runs the standard metrics over a finished run. A run without
// steps has no metrics.
func Summarize(steps []bisect.StepResult) map[string]float64 {
	out := make(map[string]float64)
	if len(steps) == 0 {
		return out
	}
	for _, m := range Standard() {
		for _, s := range steps {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
