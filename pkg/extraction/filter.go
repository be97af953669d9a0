package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tractfilter/pkg/bundle"
	"tractfilter/pkg/volume"
)

// resampleDivisor sets the resampling step relative to the finest ROI voxel size
const resampleDivisor = 5

// Output holds the bundles produced by one extraction run
type Output struct {
	// Positives holds one bundle per ROI in ROI input order; empty when positives are suppressed
	Positives []*bundle.Bundle

	// Negatives holds the fibers matching no ROI; nil when negatives are suppressed
	Negatives *bundle.Bundle

	// Classification holds the underlying index lists
	Classification *Result
}

// Filter is the extraction orchestrator. It optionally resamples the input
// tractogram, classifies every fiber against the ROI images and extracts the
// positive and negative fibers into new bundles.
//
// The input bundle and ROI images are only read. Output bundles never share
// memory with the input.
type Filter struct {
	// params holds the extraction configuration
	params *Params

	logger   zerolog.Logger
	progress ProgressCallback

	// output of the last successful Process call
	output *Output
}

// NewFilter creates a new extraction filter with the provided parameters
func NewFilter(params *Params) *Filter {
	return &Filter{
		params: params,
		logger: zerolog.Nop(),
	}
}

// SetLogger sets the logger used for run notices
func (f *Filter) SetLogger(logger zerolog.Logger) {
	f.logger = logger
}

// SetProgressCallback sets a callback receiving one tick per classified fiber
// and informational messages with total == 0.
func (f *Filter) SetProgressCallback(callback ProgressCallback) {
	f.progress = callback
}

// Process runs the extraction pipeline. Configuration errors, including a nil
// ROI image, are reported before any fiber is processed.
func (f *Filter) Process(ctx context.Context, input *bundle.Bundle, rois []*volume.Image) error {
	f.output = nil

	if err := f.params.Validate(); err != nil {
		return err
	}
	if err := validateRois(rois); err != nil {
		return err
	}

	numFibers := input.NumFibers()
	if numFibers == 0 {
		f.logger.Info().Msg("No fibers in tractogram")
		f.output = emptyOutput(len(rois), f.params)
		return nil
	}

	classifier, err := NewClassifier(*f.params)
	if err != nil {
		return err
	}
	classifier.SetProgressCallback(f.progress)

	fib := input
	if f.params.Mode == Overlap && !f.params.DontResampleFibers {
		spacing := MinSpacing(rois) / resampleDivisor
		f.logger.Debug().Float64("spacing", spacing).Msg("Resampling fibers")
		f.reportMessage(fmt.Sprintf("Resampling %d fibers to %.3f mm", numFibers, spacing))

		fib, err = input.ResampleLinear(spacing)
		if err != nil {
			return fmt.Errorf("failed to resample fibers: %w", err)
		}
	}

	switch f.params.Mode {
	case Overlap:
		f.logger.Info().Float64("min_overlap", f.params.OverlapFraction).Int("rois", len(rois)).Msg("Extracting fibers")
	case Endpoints:
		f.logger.Info().Bool("both_ends", f.params.BothEnds).Int("rois", len(rois)).Msg("Extracting fibers (endpoints in mask)")
	}

	start := time.Now()
	result, err := classifier.Classify(ctx, fib, rois)
	if err != nil {
		return fmt.Errorf("failed to classify fibers: %w", err)
	}

	// resampling keeps fiber order, so indices address the original fibers
	positives, negatives, err := createBundles(input, result, f.params.NoPositives, f.params.NoNegatives)
	if err != nil {
		return err
	}

	f.logger.Info().
		Int("fibers", numFibers).
		Int("negatives", len(result.Negatives)).
		Dur("elapsed", time.Since(start)).
		Msg("Extraction finished")

	f.output = &Output{
		Positives:      positives,
		Negatives:      negatives,
		Classification: result,
	}
	return nil
}

func (f *Filter) reportMessage(msg string) {
	if f.progress != nil {
		f.progress(0, 0, msg)
	}
}

// Positives returns one bundle per ROI from the last run, in ROI order
func (f *Filter) Positives() []*bundle.Bundle {
	if f.output == nil {
		return nil
	}
	return f.output.Positives
}

// Negatives returns the bundle of fibers matching no ROI from the last run
func (f *Filter) Negatives() *bundle.Bundle {
	if f.output == nil {
		return nil
	}
	return f.output.Negatives
}

// Output returns everything produced by the last successful run, or nil
func (f *Filter) Output() *Output {
	return f.output
}

// Run is a convenience wrapper creating a Filter and processing one input
func Run(ctx context.Context, input *bundle.Bundle, rois []*volume.Image, params Params) (*Output, error) {
	f := NewFilter(&params)
	if err := f.Process(ctx, input, rois); err != nil {
		return nil, err
	}
	return f.Output(), nil
}

// MinSpacing returns the smallest voxel size along any axis of any ROI image,
// but never more than 1 mm: the running minimum starts at 1.
func MinSpacing(rois []*volume.Image) float64 {
	minSpacing := 1.0
	for _, roi := range rois {
		if s := roi.MinSpacing(); s < minSpacing {
			minSpacing = s
		}
	}
	return minSpacing
}

func emptyOutput(numRois int, params *Params) *Output {
	out := &Output{
		Positives: []*bundle.Bundle{},
		Classification: &Result{
			Positives: make([][]int, numRois),
			Negatives: []int{},
		},
	}
	for m := range out.Classification.Positives {
		out.Classification.Positives[m] = []int{}
	}
	if !params.NoNegatives {
		out.Negatives = bundle.New(nil)
	}
	return out
}
