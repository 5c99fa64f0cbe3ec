package viz

import (
	"math"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/function"
)

// Plot is what a frame shows: the function over a fixed x range, the current
// bracket and, once a step ran, the last midpoint.
type Plot struct {
	Fn       function.Func
	Range    bisect.Interval
	Bracket  bisect.Interval
	Midpoint float64
	HasMid   bool
}

// viewport fits the x range padded by 10% and the curve's y extent,
// always including the x axis.
func (p Plot) viewport(c *Canvas) Viewport {
	pad := p.Range.Width() * 0.1
	if pad == 0 {
		pad = 1
	}
	lo, hi := p.Range.Low-pad, p.Range.High+pad

	minY, maxY := 0.0, 0.0
	for _, pt := range function.Sample(p.Fn, lo, hi, c.PixelWidth()) {
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	if maxY == minY {
		maxY = minY + 1
	}
	return Viewport{MinX: lo, MaxX: hi, MinY: minY, MaxY: maxY, W: c.PixelWidth(), H: c.PixelHeight()}
}

// Draw renders the plot onto c, clearing it first.
func (p Plot) Draw(c *Canvas) Viewport {
	c.Clear()
	v := p.viewport(c)

	axis := v.Y(0)
	c.DashedHLine(axis)

	prevX, prevY := -1, 0
	for px := 0; px < v.W; px++ {
		y := v.Y(p.Fn.Evaluate(v.WorldX(px)))
		if prevX >= 0 {
			c.DrawLine(prevX, prevY, px, y)
		}
		prevX, prevY = px, y
	}

	if p.Bracket.Valid() {
		c.VLine(v.X(p.Bracket.Low), 0, v.H-1)
		c.VLine(v.X(p.Bracket.High), 0, v.H-1)
	}
	if p.HasMid {
		mx := v.X(p.Midpoint)
		c.VLine(mx, axis-3, axis+3)
	}
	return v
}
