package extraction

import (
	"fmt"
	"runtime"
	"strings"
)

// Mode selects the fiber classification algorithm
type Mode int

const (
	// Overlap classifies by the fraction of fiber points inside the ROI
	Overlap Mode = iota
	// Endpoints classifies by the first and last fiber point only
	Endpoints
)

func (m Mode) String() string {
	switch m {
	case Overlap:
		return "overlap"
	case Endpoints:
		return "endpoints"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "overlap" or "endpoints" (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overlap":
		return Overlap, nil
	case "endpoints", "endpoint":
		return Endpoints, nil
	default:
		return 0, configError("unknown mode %q", s)
	}
}

// InputType selects how ROI voxel values are interpreted
type InputType int

const (
	// NoInput is the zero value; it is rejected by Validate.
	NoInput InputType = iota
	// ScalarMap treats a point as inside when the sampled value exceeds Threshold
	ScalarMap
	// LabelMap treats a point as inside when the sampled value equals one of Labels
	LabelMap
)

func (t InputType) String() string {
	switch t {
	case NoInput:
		return "none"
	case ScalarMap:
		return "scalar"
	case LabelMap:
		return "label"
	default:
		return fmt.Sprintf("InputType(%d)", int(t))
	}
}

// ParseInputType parses "scalar" or "label" (case-insensitive)
func ParseInputType(s string) (InputType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar", "scalar_map", "scalarmap":
		return ScalarMap, nil
	case "label", "label_map", "labelmap":
		return LabelMap, nil
	default:
		return NoInput, configError("no valid input type selected (got %q)", s)
	}
}

// Params holds the extraction configuration. It is read once when a run
// starts and never modified by the filter.
type Params struct {
	// Mode selects overlap or endpoint classification
	Mode Mode

	// InputType selects scalar threshold or label-set semantics for ROI images
	InputType InputType

	// Threshold is the exclusive lower bound for "inside" in scalar maps
	Threshold float64

	// Labels is the set of label values counted as "inside" in label maps
	Labels []int

	// OverlapFraction is the fraction of fiber points (0-1) that must lie
	// inside an ROI, exclusively, for the fiber to be positive in overlap mode
	OverlapFraction float64

	// BothEnds requires both endpoints inside the ROI in endpoints mode
	BothEnds bool

	// Interpolate enables trilinear instead of nearest-neighbour sampling
	Interpolate bool

	// DontResampleFibers disables resampling before overlap classification
	DontResampleFibers bool

	// NoPositives suppresses creation of the positive bundles
	NoPositives bool

	// NoNegatives suppresses creation of the negative bundle
	NoNegatives bool

	// NumCores bounds the number of classification workers; <= 0 uses all CPUs
	NumCores int
}

// DefaultParams returns the default extraction parameters
func DefaultParams() Params {
	return Params{
		Mode:            Overlap,
		InputType:       ScalarMap,
		Threshold:       0.5,
		Labels:          []int{1},
		OverlapFraction: 0.8,
		BothEnds:        true,
		NumCores:        runtime.NumCPU(),
	}
}

// Validate checks the parameters without looking at any data
func (p *Params) Validate() error {
	if p.Mode != Overlap && p.Mode != Endpoints {
		return configError("invalid mode %d", int(p.Mode))
	}
	if p.InputType != ScalarMap && p.InputType != LabelMap {
		return configError("no valid input type selected")
	}
	if p.Mode == Overlap && !(p.OverlapFraction >= 0 && p.OverlapFraction <= 1) {
		return configError("overlap fraction %g outside [0,1]", p.OverlapFraction)
	}
	return nil
}

func (p *Params) workers() int {
	if p.NumCores > 0 {
		return p.NumCores
	}
	return runtime.NumCPU()
}
