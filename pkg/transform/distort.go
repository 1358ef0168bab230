package transform

import (
	"math"

	"github.com/philipparndt/modelfit/pkg/geometry"
)

// Distort is the alternate material mode: a volume preserving squash and
// stretch along Y that oscillates over time
type Distort struct {
	Amount float64
	Speed  float64
}

// Factors returns the per-axis scale at time t (seconds). Y stretches by
// 1+Amount*sin(t*Speed) and X and Z shrink so the volume stays constant.
func (d Distort) Factors(t float64) geometry.Vector3 {
	sy := 1 + d.Amount*math.Sin(t*d.Speed)
	if sy <= 0.05 {
		sy = 0.05
	}
	sxz := 1 / math.Sqrt(sy)
	return geometry.NewVector3(sxz, sy, sxz)
}

// Apply distorts a model-space point at time t
func (d Distort) Apply(p geometry.Vector3, t float64) geometry.Vector3 {
	f := d.Factors(t)
	return geometry.NewVector3(p.X*f.X, p.Y*f.Y, p.Z*f.Z)
}
