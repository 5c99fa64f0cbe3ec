package metrics

import (
	"github.com/san-kum/bisect/internal/bisect"
)

// Contraction is the mean ratio between the error after a step and the
// half-width of the bracket it split. Bisection keeps it at 0.5.
type Contraction struct {
	name    string
	sum     float64
	samples int
}

func NewContraction() *Contraction {
	return &Contraction{name: "contraction"}
}

func (c *Contraction) Name() string {
	return c.name
}

func (c *Contraction) Observe(s bisect.StepResult) {
	before := s.Bisected.HalfWidth()
	if before <= 0 {
		return
	}
	c.sum += s.Error / before
	c.samples++
}

func (c *Contraction) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Contraction) Reset() {
	c.sum = 0
	c.samples = 0
}
