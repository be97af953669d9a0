package models

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Fiber represents a single streamline reconstructed by tractography
type Fiber struct {
	// Points is the ordered polyline in physical (world) coordinates, in mm
	Points []r3.Vec

	// Weight is the per-fiber scalar weight, 1 for unweighted tractograms
	Weight float64
}

// NumPoints returns the number of points on the fiber
func (f Fiber) NumPoints() int {
	return len(f.Points)
}

// Length returns the arc length of the polyline
func (f Fiber) Length() float64 {
	length := 0.0
	for i := 1; i < len(f.Points); i++ {
		length += r3.Norm(r3.Sub(f.Points[i], f.Points[i-1]))
	}
	return length
}

// Clone returns a copy of the fiber that shares no memory with f
func (f Fiber) Clone() Fiber {
	points := make([]r3.Vec, len(f.Points))
	copy(points, f.Points)
	return Fiber{Points: points, Weight: f.Weight}
}
