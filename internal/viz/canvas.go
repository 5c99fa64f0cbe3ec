package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelWidth and PixelHeight give the canvas size in sub-pixels.
func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Set sets a pixel at (x, y) in sub-pixel coordinates. Out of range pixels
// are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DashedHLine sets every other pixel of row y.
func (c *Canvas) DashedHLine(y int) {
	for x := 0; x < c.PixelWidth(); x += 2 {
		c.Set(x, y)
	}
}

func (c *Canvas) VLine(x, y0, y1 int) {
	c.DrawLine(x, y0, x, y1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas sub-pixels, y pointing up.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
	W, H       int
}

func (v Viewport) X(x float64) int {
	if v.MaxX == v.MinX {
		return 0
	}
	return int(math.Round((x - v.MinX) / (v.MaxX - v.MinX) * float64(v.W-1)))
}

func (v Viewport) Y(y float64) int {
	if v.MaxY == v.MinY {
		return 0
	}
	return int(math.Round((v.MaxY - y) / (v.MaxY - v.MinY) * float64(v.H-1)))
}

// WorldX is the inverse of X.
func (v Viewport) WorldX(px int) float64 {
	if v.W <= 1 {
		return v.MinX
	}
	return v.MinX + float64(px)/float64(v.W-1)*(v.MaxX-v.MinX)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
