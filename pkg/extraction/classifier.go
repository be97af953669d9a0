package extraction

import (
	"gonum.org/v1/gonum/spatial/r3"

	"tractfilter/pkg/interpolation"
	"tractfilter/pkg/volume"
)

// PointClassifier decides whether a physical point lies inside an ROI image.
// It holds no per-image state; the image is passed on every call, so a single
// classifier may be shared by concurrent workers.
type PointClassifier struct {
	inputType InputType
	threshold float64
	labels    []float64
	method    interpolation.Method
}

// NewPointClassifier creates a point classifier from the input-type related parameters
func NewPointClassifier(params Params) *PointClassifier {
	labels := make([]float64, len(params.Labels))
	for i, l := range params.Labels {
		labels[i] = float64(l)
	}
	return &PointClassifier{
		inputType: params.InputType,
		threshold: params.Threshold,
		labels:    labels,
		method:    interpolation.MethodFor(params.Interpolate),
	}
}

// IsPositive samples image at p and applies the scalar threshold or label-set test
func (c *PointClassifier) IsPositive(p r3.Vec, image *volume.Image) (bool, error) {
	switch c.inputType {
	case ScalarMap:
		value, ok := interpolation.Sample(image, p, c.method)
		return ok && value > c.threshold, nil
	case LabelMap:
		value, _ := interpolation.Sample(image, p, c.method)
		for _, l := range c.labels {
			if l == value {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, configError("no valid input type selected")
	}
}
