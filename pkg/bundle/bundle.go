// Package bundle provides the fiber bundle (tractogram) container used by the
// extraction pipeline: random access to fibers, deep copies, arc-length
// resampling and sub-bundle construction from index lists.
package bundle

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"tractfilter/internal/models"
)

var (
	// ErrInvalidSpacing is returned when resampling is requested with a non-positive step.
	ErrInvalidSpacing = errors.New("resampling spacing must be positive")

	// ErrIndexOutOfRange is returned when a fiber index does not exist in the bundle.
	ErrIndexOutOfRange = errors.New("fiber index out of range")
)

// Bundle is an ordered collection of fibers sharing one physical coordinate space.
// A Bundle is never modified by the operations in this package; every
// transformation returns a new Bundle.
type Bundle struct {
	fibers []models.Fiber
}

// New creates a bundle from the given fibers. The fibers are deep-copied.
func New(fibers []models.Fiber) *Bundle {
	b := &Bundle{fibers: make([]models.Fiber, len(fibers))}
	for i, f := range fibers {
		b.fibers[i] = f.Clone()
	}
	return b
}

// FromPolylines creates an unweighted bundle (all weights 1) from raw polylines.
func FromPolylines(polylines [][]r3.Vec) *Bundle {
	fibers := make([]models.Fiber, len(polylines))
	for i, pts := range polylines {
		fibers[i] = models.Fiber{Points: pts, Weight: 1}
	}
	return New(fibers)
}

// NumFibers returns the number of fibers in the bundle
func (b *Bundle) NumFibers() int {
	if b == nil {
		return 0
	}
	return len(b.fibers)
}

// Points returns the points of fiber i. The returned slice must not be modified.
func (b *Bundle) Points(i int) []r3.Vec {
	return b.fibers[i].Points
}

// Weight returns the weight of fiber i
func (b *Bundle) Weight(i int) float64 {
	return b.fibers[i].Weight
}

// Fiber returns a copy of fiber i
func (b *Bundle) Fiber(i int) models.Fiber {
	return b.fibers[i].Clone()
}

// Weights returns the weights of all fibers in bundle order
func (b *Bundle) Weights() []float64 {
	weights := make([]float64, len(b.fibers))
	for i, f := range b.fibers {
		weights[i] = f.Weight
	}
	return weights
}

// DeepCopy returns an independent copy of the bundle
func (b *Bundle) DeepCopy() *Bundle {
	return New(b.fibers)
}

// CreateFromIndices builds a new bundle holding the fibers at indices, in the
// given order. Duplicates are kept. Weights are carried over unchanged.
// An empty index list yields a valid, empty bundle.
func (b *Bundle) CreateFromIndices(indices []int) (*Bundle, error) {
	out := &Bundle{fibers: make([]models.Fiber, 0, len(indices))}
	for _, idx := range indices {
		if idx < 0 || idx >= len(b.fibers) {
			return nil, fmt.Errorf("%w: %d (bundle has %d fibers)", ErrIndexOutOfRange, idx, len(b.fibers))
		}
		out.fibers = append(out.fibers, b.fibers[idx].Clone())
	}
	return out, nil
}

// ResampleLinear returns a new bundle in which every fiber is redistributed
// along its arc length so that consecutive points are spacing apart. The first
// and last point of every fiber are preserved. Fibers with fewer than two
// points or zero length are copied as they are.
func (b *Bundle) ResampleLinear(spacing float64) (*Bundle, error) {
	if !(spacing > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidSpacing, spacing)
	}

	out := &Bundle{fibers: make([]models.Fiber, len(b.fibers))}
	for i, f := range b.fibers {
		out.fibers[i] = models.Fiber{
			Points: resamplePolyline(f.Points, spacing),
			Weight: f.Weight,
		}
	}
	return out, nil
}

// resamplePolyline walks the polyline and emits a point every spacing units of
// arc length, ending with the original last point.
func resamplePolyline(points []r3.Vec, spacing float64) []r3.Vec {
	if len(points) < 2 {
		return append([]r3.Vec(nil), points...)
	}

	total := 0.0
	for i := 1; i < len(points); i++ {
		total += r3.Norm(r3.Sub(points[i], points[i-1]))
	}
	if total == 0 {
		return append([]r3.Vec(nil), points...)
	}

	result := make([]r3.Vec, 0, int(total/spacing)+2)
	result = append(result, points[0])

	// distance still to travel before the next sample is emitted
	remaining := spacing
	for i := 1; i < len(points); i++ {
		start := points[i-1]
		seg := r3.Sub(points[i], start)
		segLen := r3.Norm(seg)
		if segLen == 0 {
			continue
		}

		pos := 0.0
		for segLen-pos >= remaining {
			pos += remaining
			result = append(result, r3.Add(start, r3.Scale(pos/segLen, seg)))
			remaining = spacing
		}
		remaining -= segLen - pos
	}

	last := points[len(points)-1]
	if r3.Norm(r3.Sub(last, result[len(result)-1])) > spacing*1e-6 {
		result = append(result, last)
	} else {
		result[len(result)-1] = last
	}
	return result
}

// Summary holds descriptive statistics of a bundle
type Summary struct {
	NumFibers    int
	NumPoints    int
	MeanLength   float64
	StdDevLength float64
	MinLength    float64
	MaxLength    float64
	TotalWeight  float64
}

// Summary computes descriptive statistics of fiber lengths and weights
func (b *Bundle) Summary() Summary {
	s := Summary{NumFibers: b.NumFibers()}
	if s.NumFibers == 0 {
		return s
	}

	lengths := make([]float64, len(b.fibers))
	for i, f := range b.fibers {
		lengths[i] = f.Length()
		s.NumPoints += f.NumPoints()
	}

	s.MeanLength = stat.Mean(lengths, nil)
	if len(lengths) > 1 {
		s.StdDevLength = stat.StdDev(lengths, nil)
	}
	s.MinLength = floats.Min(lengths)
	s.MaxLength = floats.Max(lengths)
	s.TotalWeight = floats.Sum(b.Weights())
	return s
}
