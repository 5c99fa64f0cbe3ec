package viz

import (
	"testing"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/function"
)

func TestPlotDraw(t *testing.T) {
	c := NewCanvas(40, 12)
	p := Plot{
		Fn:       function.NewQuadratic(),
		Range:    bisect.Interval{Low: 0, High: 3},
		Bracket:  bisect.Interval{Low: 1.5, High: 3},
		Midpoint: 2.25,
		HasMid:   true,
	}
	v := p.Draw(c)

	if v.MinX >= 0 || v.MaxX <= 3 {
		t.Errorf("viewport should pad the range, got [%v, %v]", v.MinX, v.MaxX)
	}
	if v.MinY > -3.9 || v.MaxY < 0 {
		t.Errorf("viewport should include the curve minimum and the axis, got [%v, %v]", v.MinY, v.MaxY)
	}

	x := v.X(1.5)
	for y := 0; y < v.H; y++ {
		if !c.IsSet(x, y) {
			t.Fatalf("bracket edge at column %d not drawn at row %d", x, y)
		}
	}
	rx, ry := v.X(2), v.Y(0)
	if !c.IsSet(rx, ry-1) && !c.IsSet(rx, ry+1) && !c.IsSet(rx, ry) {
		t.Error("curve should cross the axis at the root")
	}
}

func TestPlotWithoutBracket(t *testing.T) {
	c := NewCanvas(10, 4)
	Plot{Fn: function.NewQuadratic(), Range: bisect.Interval{Low: 0, High: 3}}.Draw(c)
	if c.String() == NewCanvas(10, 4).String() {
		t.Error("expected the curve to be drawn")
	}
}
