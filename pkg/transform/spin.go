// Package transform holds the per-frame model transform applied around
// normalized geometry. The geometry itself is never modified.
package transform

import (
	"math"

	"github.com/philipparndt/modelfit/pkg/geometry"
)

// Spin accumulates a rotation around the Y axis and combines it with the
// model scale. It is owned by the presentation layer.
type Spin struct {
	Angle float64 // radians, kept in [0, 2π)
	Scale float64
}

// NewSpin creates a spin with the given uniform scale and no rotation
func NewSpin(scale float64) *Spin {
	return &Spin{Scale: scale}
}

// Advance adds delta*speed to the angle. Negative speeds rotate the other
// way and a zero speed leaves the angle untouched.
func (s *Spin) Advance(delta, speed float64) {
	if speed == 0 || delta == 0 {
		return
	}
	s.Angle = math.Mod(s.Angle+delta*speed, 2*math.Pi)
	if s.Angle < 0 {
		s.Angle += 2 * math.Pi
	}
}

// Apply transforms a model-space point: scale first, then rotate
func (s *Spin) Apply(p geometry.Vector3) geometry.Vector3 {
	return p.Mul(s.Scale).RotateY(s.Angle)
}

// ApplyNormal rotates a direction without scaling it
func (s *Spin) ApplyNormal(n geometry.Vector3) geometry.Vector3 {
	return n.RotateY(s.Angle)
}

// Matrix returns the column-major 4x4 model matrix (rotate·scale)
func (s *Spin) Matrix() [16]float64 {
	sin, cos := math.Sincos(s.Angle)
	k := s.Scale
	return [16]float64{
		cos * k, 0, -sin * k, 0,
		0, k, 0, 0,
		sin * k, 0, cos * k, 0,
		0, 0, 0, 1,
	}
}
