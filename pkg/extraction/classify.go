package extraction

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"tractfilter/pkg/bundle"
	"tractfilter/pkg/volume"
)

// chunksPerWorker trades scheduling overhead against load balance when fiber
// lengths vary a lot.
const chunksPerWorker = 4

// fiberFunc marks hits[m] for every ROI m the fiber is positive for
type fiberFunc func(points []r3.Vec, rois []*volume.Image, hits []bool) error

// Classifier runs the overlap or endpoint classification of a bundle
type Classifier struct {
	point           *PointClassifier
	mode            Mode
	overlapFraction float64
	bothEnds        bool
	workers         int

	progress ProgressCallback
}

// NewClassifier creates a classifier from validated parameters
func NewClassifier(params Params) (*Classifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		point:           NewPointClassifier(params),
		mode:            params.Mode,
		overlapFraction: params.OverlapFraction,
		bothEnds:        params.BothEnds,
		workers:         params.workers(),
	}, nil
}

// SetProgressCallback sets a callback that receives one tick per classified fiber
func (c *Classifier) SetProgressCallback(callback ProgressCallback) {
	c.progress = callback
}

// Classify dispatches to ClassifyOverlap or ClassifyEndpoints according to the mode
func (c *Classifier) Classify(ctx context.Context, b *bundle.Bundle, rois []*volume.Image) (*Result, error) {
	switch c.mode {
	case Overlap:
		return c.ClassifyOverlap(ctx, b, rois)
	case Endpoints:
		return c.ClassifyEndpoints(ctx, b, rois)
	default:
		return nil, configError("invalid mode %d", int(c.mode))
	}
}

// ClassifyOverlap marks a fiber positive for an ROI as soon as the fraction of
// its points inside the ROI strictly exceeds the overlap fraction.
func (c *Classifier) ClassifyOverlap(ctx context.Context, b *bundle.Bundle, rois []*volume.Image) (*Result, error) {
	return c.run(ctx, b, rois, c.overlapFiber)
}

// ClassifyEndpoints marks a fiber positive for an ROI when both endpoints, or
// with BothEnds disabled either endpoint, lie inside the ROI. Fibers with fewer
// than two points are always negative.
func (c *Classifier) ClassifyEndpoints(ctx context.Context, b *bundle.Bundle, rois []*volume.Image) (*Result, error) {
	return c.run(ctx, b, rois, c.endpointsFiber)
}

func (c *Classifier) overlapFiber(points []r3.Vec, rois []*volume.Image, hits []bool) error {
	numPoints := float64(len(points))
	for m, roi := range rois {
		hits[m] = false
		inside := 0
		for _, p := range points {
			positive, err := c.point.IsPositive(p, roi)
			if err != nil {
				return err
			}
			if positive {
				inside++
			}
			// the count never decreases, so the remaining points cannot undo a hit
			if float64(inside)/numPoints > c.overlapFraction {
				hits[m] = true
				break
			}
		}
	}
	return nil
}

func (c *Classifier) endpointsFiber(points []r3.Vec, rois []*volume.Image, hits []bool) error {
	for m := range hits {
		hits[m] = false
	}
	if len(points) <= 1 {
		return nil
	}

	first, last := points[0], points[len(points)-1]
	for m, roi := range rois {
		inside := 0
		for _, p := range [2]r3.Vec{first, last} {
			positive, err := c.point.IsPositive(p, roi)
			if err != nil {
				return err
			}
			if positive {
				inside++
			}
		}
		hits[m] = inside == 2 || (inside == 1 && !c.bothEnds)
	}
	return nil
}

// partial is the classification of one contiguous chunk of fibers
type partial struct {
	positives [][]int
	negatives []int
}

// run classifies all fibers in parallel. Fibers are split into contiguous
// chunks, each chunk accumulates its own lists, and the chunks are merged in
// index order so every output list is ascending.
func (c *Classifier) run(ctx context.Context, b *bundle.Bundle, rois []*volume.Image, classify fiberFunc) (*Result, error) {
	if err := validateRois(rois); err != nil {
		return nil, err
	}

	numFibers := b.NumFibers()
	result := &Result{
		Positives: make([][]int, len(rois)),
		Negatives: []int{},
		NumFibers: numFibers,
	}
	for m := range result.Positives {
		result.Positives[m] = []int{}
	}
	if numFibers == 0 {
		return result, nil
	}

	chunkSize := (numFibers + c.workers*chunksPerWorker - 1) / (c.workers * chunksPerWorker)
	if chunkSize < 1 {
		chunkSize = 1
	}
	numChunks := (numFibers + chunkSize - 1) / chunkSize
	partials := make([]partial, numChunks)
	progress := newProgressReporter(c.progress, numFibers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for chunk := 0; chunk < numChunks; chunk++ {
		chunk := chunk
		start := chunk * chunkSize
		end := min(start+chunkSize, numFibers)

		g.Go(func() error {
			part := partial{positives: make([][]int, len(rois))}
			hits := make([]bool, len(rois))

			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := classify(b.Points(i), rois, hits); err != nil {
					return fmt.Errorf("fiber %d: %w", i, err)
				}

				matched := false
				for m, hit := range hits {
					if hit {
						part.positives[m] = append(part.positives[m], i)
						matched = true
					}
				}
				if !matched {
					part.negatives = append(part.negatives, i)
				}
				progress.tick()
			}

			partials[chunk] = part
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, part := range partials {
		for m, ids := range part.positives {
			result.Positives[m] = append(result.Positives[m], ids...)
		}
		result.Negatives = append(result.Negatives, part.negatives...)
	}
	return result, nil
}

func validateRois(rois []*volume.Image) error {
	for m, roi := range rois {
		if roi == nil {
			return configError("ROI image %d is nil", m)
		}
	}
	return nil
}
