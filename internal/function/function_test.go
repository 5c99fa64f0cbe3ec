package function

import (
	"math"
	"testing"
)

func TestQuadraticEvaluate(t *testing.T) {
	f := NewQuadratic()

	tests := []struct {
		x, want float64
	}{
		{0, -4},
		{2, 0},
		{-2, 0},
		{1.5, -1.75},
		{3, 5},
	}

	for _, tt := range tests {
		if got := f.Evaluate(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestQuadraticRoots(t *testing.T) {
	f := NewQuadratic()
	for _, r := range f.Roots() {
		if f.Evaluate(r) != 0 {
			t.Errorf("f(%v) = %v, expected exact root", r, f.Evaluate(r))
		}
	}
}

func TestSample(t *testing.T) {
	f := NewQuadratic()

	pts := Sample(f, -5, 5, 11)
	if len(pts) != 11 {
		t.Fatalf("expected 11 points, got %d", len(pts))
	}
	if pts[0].X != -5 || pts[10].X != 5 {
		t.Errorf("endpoints not included: %v .. %v", pts[0].X, pts[10].X)
	}
	if pts[5].X != 0 || pts[5].Y != -4 {
		t.Errorf("expected (0, -4) at center, got %+v", pts[5])
	}

	single := Sample(f, 1, 2, 1)
	if len(single) != 1 || single[0].X != 1 {
		t.Errorf("expected single sample at lo, got %v", single)
	}
}

func TestSignChange(t *testing.T) {
	f := NewQuadratic()

	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"bracket positive root", 0, 3, true},
		{"bracket negative root", -3, 0, true},
		{"same sign positive", 1, 1.5, false},
		{"both roots inside", -3, 3, false},
		{"root at endpoint", 2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignChange(f, tt.a, tt.b); got != tt.want {
				t.Errorf("SignChange(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
