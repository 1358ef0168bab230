package normalize

import (
	"math"

	"github.com/philipparndt/modelfit/pkg/geometry"
)

// DefaultTargetSize is the edge length the largest model dimension is fitted to
const DefaultTargetSize = 2.0

// AutoFitScale returns the uniform scale that maps the largest dimension of
// size onto target. Degenerate sizes (all zero, or not finite) return 1 so the
// renderer never receives an infinite or NaN transform. A target that is not a
// positive finite number is replaced by DefaultTargetSize.
func AutoFitScale(size geometry.Vector3, target float64) float64 {
	if !(target > 0) || math.IsInf(target, 0) {
		target = DefaultTargetSize
	}
	maxDim := size.MaxComponent()
	if !(maxDim > 0) || math.IsInf(maxDim, 0) {
		return 1.0
	}
	scale := target / maxDim
	if math.IsInf(scale, 0) || scale == 0 {
		return 1.0
	}
	return scale
}
