package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/function"
)

// SVGOptions controls the size and colors of a rendered run.
type SVGOptions struct {
	Width       int
	Height      int
	Background  string
	CurveColor  string
	AxisColor   string
	RangeColor  string
	MidColor    string
	CurveSample int
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       800,
		Height:      600,
		Background:  "#0a0a0a",
		CurveColor:  "#00ffff",
		AxisColor:   "#444444",
		RangeColor:  "#ff00ff",
		MidColor:    "#ffff00",
		CurveSample: 200,
	}
}

type viewport struct {
	minX, maxX, minY, maxY float64
	width, height          float64
}

func (v viewport) x(x float64) float64 {
	return (x - v.minX) / (v.maxX - v.minX) * v.width
}

func (v viewport) y(y float64) float64 {
	return v.height - (y-v.minY)/(v.maxY-v.minY)*v.height
}

// RunToSVG draws f over the initial bracket of the run, padded by 10%, with
// one horizontal bar per step below the plot. Each bar spans the bracket
// that was split and marks its midpoint.
func RunToSVG(f function.Func, steps []bisect.StepResult, opts SVGOptions) string {
	if len(steps) == 0 {
		return ""
	}

	initial := steps[0].Bisected
	pad := initial.Width() * 0.1
	lo, hi := initial.Low-pad, initial.High+pad

	curve := function.Sample(f, lo, hi, opts.CurveSample)
	minY, maxY := curve[0].Y, curve[0].Y
	for _, p := range curve {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	minY = math.Min(minY, 0)
	maxY = math.Max(maxY, 0)
	if rangeY := maxY - minY; rangeY > 0 {
		minY -= rangeY * 0.1
		maxY += rangeY * 0.1
	} else {
		minY, maxY = minY-1, maxY+1
	}

	plotHeight := float64(opts.Height) * 0.6
	barArea := float64(opts.Height) - plotHeight
	rowHeight := barArea / float64(len(steps)+1)

	v := viewport{minX: lo, maxX: hi, minY: minY, maxY: maxY, width: float64(opts.Width), height: plotHeight}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<title>%s</title>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background, escape(f.String()))

	fmt.Fprintf(&sb, `<line class="axis" x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>
`, v.y(0), opts.Width, v.y(0), opts.AxisColor)

	sb.WriteString(`<path class="curve" fill="none" stroke="` + opts.CurveColor + `" stroke-width="1.5" d="M`)
	for i, p := range curve {
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", v.x(p.X), v.y(p.Y))
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", v.x(p.X), v.y(p.Y))
		}
	}
	sb.WriteString("\"/>\n")

	for i, s := range steps {
		y := plotHeight + rowHeight*float64(i+1)
		fmt.Fprintf(&sb, `<line class="bracket" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, v.x(s.Bisected.Low), y, v.x(s.Bisected.High), y, opts.RangeColor)
		fmt.Fprintf(&sb, `<circle class="midpoint" cx="%.1f" cy="%.1f" r="2.5" fill="%s"/>
`, v.x(s.Midpoint), y, opts.MidColor)
	}

	last := steps[len(steps)-1]
	fmt.Fprintf(&sb, `<circle class="root" cx="%.1f" cy="%.1f" r="4" fill="none" stroke="%s" stroke-width="2"/>
`, v.x(last.Root()), v.y(0), opts.MidColor)

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(w io.Writer, f function.Func, steps []bisect.StepResult, opts SVGOptions) error {
	svg := RunToSVG(f, steps, opts)
	if svg == "" {
		return fmt.Errorf("export: run has no steps")
	}
	_, err := io.WriteString(w, svg)
	return err
}

func SaveSVG(path string, f function.Func, steps []bisect.StepResult, opts SVGOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSVG(file, f, steps, opts)
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return svgEscaper.Replace(s) }
