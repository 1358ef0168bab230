// Package shading bakes a fixed directional light into vertex colors. Both
// viewers use it so a model looks the same in either window.
package shading

import (
	"math"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// Ambient is the minimum intensity of a surface facing away from the light
const Ambient = 0.3

// DefaultLight points from the upper front left into the scene
var DefaultLight = geometry.NewVector3(-0.5, -1.0, -0.5).Normalize()

// Intensity is the diffuse term of normal under light, never below Ambient
func Intensity(normal, light geometry.Vector3) float64 {
	return math.Max(Ambient, math.Min(1, -normal.Dot(light)))
}

// VertexColor picks the vertex color when the buffer has one and the base
// color otherwise
func VertexColor(buf *mesh.VertexBuffer, i int, base mesh.Color) mesh.Color {
	if buf.HasColors() {
		return buf.Colors[i]
	}
	return base
}

// Shade returns the lit color of vertex i. Vertices without a normal are
// lit fully.
func Shade(buf *mesh.VertexBuffer, i int, base mesh.Color, light geometry.Vector3) mesh.Color {
	c := VertexColor(buf, i, base)
	if !buf.HasNormals() {
		return c
	}
	return c.Scale(Intensity(buf.Normals[i], light))
}
