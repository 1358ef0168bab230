package mesh

import (
	"math/rand"

	"github.com/philipparndt/modelfit/pkg/geometry"
)

// UnitCube returns an 8-vertex cube spanning [0,1] on every axis with 12
// outward-facing triangles and no normals or colors.
func UnitCube() *VertexBuffer {
	return &VertexBuffer{
		Positions: []geometry.Vector3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Indices: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // -Z
			{4, 5, 6}, {4, 6, 7}, // +Z
			{0, 1, 5}, {0, 5, 4}, // -Y
			{3, 7, 6}, {3, 6, 2}, // +Y
			{0, 4, 7}, {0, 7, 3}, // -X
			{1, 2, 6}, {1, 6, 5}, // +X
		},
	}
}

// Cloud returns n random colored points inside a box of the given size
// centered on center. The same seed always yields the same cloud.
func Cloud(n int, seed int64, center geometry.Vector3, size float64) *VertexBuffer {
	rng := rand.New(rand.NewSource(seed))
	buf := &VertexBuffer{
		Positions: make([]geometry.Vector3, n),
		Colors:    make([]Color, n),
	}
	for i := 0; i < n; i++ {
		offset := geometry.NewVector3(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5)
		buf.Positions[i] = center.Add(offset.Mul(size))
		// Color encodes the position inside the box
		buf.Colors[i] = RGB(offset.X+0.5, offset.Y+0.5, offset.Z+0.5)
	}
	return buf
}
