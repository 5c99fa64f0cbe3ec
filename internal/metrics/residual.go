package metrics

import (
	"math"

	"github.com/san-kum/bisect/internal/bisect"
)

// Residual is |f| at the most recently evaluated midpoint.
type Residual struct {
	name    string
	value   float64
	samples int
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string {
	return r.name
}

func (r *Residual) Observe(s bisect.StepResult) {
	r.value = math.Abs(s.FMid)
	r.samples++
}

func (r *Residual) Value() float64 {
	if r.samples == 0 {
		return math.NaN()
	}
	return r.value
}

func (r *Residual) Reset() {
	r.value = 0
	r.samples = 0
}
