package stl

import (
	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// Model represents a complete STL model
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// ToBuffer converts the triangle soup into an indexed vertex buffer.
// Corners with identical coordinates are welded into one vertex so shared
// edges get smooth normals. Facet normals are not carried over.
func (m *Model) ToBuffer() *mesh.VertexBuffer {
	buf := &mesh.VertexBuffer{
		Positions: make([]geometry.Vector3, 0, len(m.Triangles)),
		Indices:   make([][3]int, 0, len(m.Triangles)),
	}
	lookup := make(map[geometry.Vector3]int, len(m.Triangles))

	weld := func(v geometry.Vector3) int {
		if idx, ok := lookup[v]; ok {
			return idx
		}
		idx := len(buf.Positions)
		buf.Positions = append(buf.Positions, v)
		lookup[v] = idx
		return idx
	}

	for _, triangle := range m.Triangles {
		buf.Indices = append(buf.Indices, [3]int{
			weld(triangle.V1),
			weld(triangle.V2),
			weld(triangle.V3),
		})
	}
	return buf
}
