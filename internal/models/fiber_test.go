package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// TestFiberLength verifies the arc length of simple polylines
func TestFiberLength(t *testing.T) {
	tests := []struct {
		name   string
		points []r3.Vec
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", []r3.Vec{{X: 1, Y: 2, Z: 3}}, 0},
		{"straight", []r3.Vec{{}, {X: 3}, {X: 3, Y: 4}}, 7},
		{"diagonal", []r3.Vec{{}, {X: 1, Y: 1, Z: 1}}, math.Sqrt(3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Fiber{Points: tc.points}
			if got := f.Length(); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Expected length %f, got %f", tc.want, got)
			}
			if f.NumPoints() != len(tc.points) {
				t.Errorf("Expected %d points, got %d", len(tc.points), f.NumPoints())
			}
		})
	}
}

// TestFiberClone verifies that a clone does not alias the original points
func TestFiberClone(t *testing.T) {
	f := Fiber{Points: []r3.Vec{{X: 1}, {X: 2}}, Weight: 0.5}
	c := f.Clone()
	c.Points[0].X = 42

	if f.Points[0].X != 1 {
		t.Errorf("Clone aliased the original points")
	}
	if c.Weight != f.Weight {
		t.Errorf("Expected weight %f, got %f", f.Weight, c.Weight)
	}
}
