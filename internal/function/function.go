package function

// Func is a real-valued function of one variable. Implementations must be
// pure and total.
type Func interface {
	Evaluate(x float64) float64
	String() string
}

// Point is a sampled (x, f(x)) pair.
type Point struct {
	X, Y float64
}

// Quadratic is f(x) = x² - 4, with roots at ±2.
type Quadratic struct{}

func NewQuadratic() Quadratic { return Quadratic{} }

func (Quadratic) Evaluate(x float64) float64 { return x*x - 4 }

func (Quadratic) String() string { return "f(x) = x² - 4" }

// Roots returns the exact roots in ascending order.
func (Quadratic) Roots() []float64 { return []float64{-2, 2} }

// Sample evaluates f at n evenly spaced points on [lo, hi], endpoints
// included. n < 2 yields a single sample at lo.
func Sample(f Func, lo, hi float64, n int) []Point {
	if n < 2 {
		return []Point{{X: lo, Y: f.Evaluate(lo)}}
	}
	pts := make([]Point, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*step
		if i == n-1 {
			x = hi
		}
		pts[i] = Point{X: x, Y: f.Evaluate(x)}
	}
	return pts
}

// SignChange reports whether f has strictly opposite signs at a and b.
func SignChange(f Func, a, b float64) bool {
	return f.Evaluate(a)*f.Evaluate(b) < 0
}
