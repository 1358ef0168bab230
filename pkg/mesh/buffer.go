// Package mesh holds decoded vertex data as produced by the format loaders.
package mesh

import (
	"errors"
	"fmt"

	"github.com/philipparndt/modelfit/pkg/geometry"
)

var (
	// ErrAttributeLength is returned when a per-vertex attribute does not
	// match the number of positions.
	ErrAttributeLength = errors.New("attribute length mismatch")

	// ErrIndexRange is returned when a triangle references a missing vertex.
	ErrIndexRange = errors.New("index out of range")
)

// Attribute names used in validation errors
const (
	AttrColors  = "colors"
	AttrNormals = "normals"
	AttrIndices = "indices"
)

// AttributeError describes one malformed attribute of a VertexBuffer
type AttributeError struct {
	Attribute string
	Want      int
	Got       int
	Err       error
}

func (e *AttributeError) Error() string {
	if errors.Is(e.Err, ErrIndexRange) {
		return fmt.Sprintf("%s: triangle %d references vertex outside [0,%d)", e.Attribute, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %v: want %d, got %d", e.Attribute, e.Err, e.Want, e.Got)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// VertexBuffer is raw decoded geometry. Every attribute except Positions is
// optional; a nil or empty slice means the attribute is absent.
type VertexBuffer struct {
	Positions []geometry.Vector3
	Colors    []Color
	Indices   [][3]int
	Normals   []geometry.Vector3
}

// VertexCount returns the number of positions
func (b *VertexBuffer) VertexCount() int {
	return len(b.Positions)
}

// TriangleCount returns the number of index triples
func (b *VertexBuffer) TriangleCount() int {
	return len(b.Indices)
}

// HasColors reports whether per-vertex colors are present
func (b *VertexBuffer) HasColors() bool {
	return len(b.Colors) > 0
}

// HasNormals reports whether per-vertex normals are present
func (b *VertexBuffer) HasNormals() bool {
	return len(b.Normals) > 0
}

// HasIndices reports whether connectivity is present
func (b *VertexBuffer) HasIndices() bool {
	return len(b.Indices) > 0
}

// Triangle returns the corners of triangle i. The caller must have checked
// the indices with ValidateIndices.
func (b *VertexBuffer) Triangle(i int) geometry.Triangle {
	idx := b.Indices[i]
	return geometry.NewTriangle(b.Positions[idx[0]], b.Positions[idx[1]], b.Positions[idx[2]])
}

// Translate moves every position by offset
func (b *VertexBuffer) Translate(offset geometry.Vector3) {
	for i := range b.Positions {
		b.Positions[i] = b.Positions[i].Add(offset)
	}
}

// Clone returns a deep copy of the buffer
func (b *VertexBuffer) Clone() *VertexBuffer {
	return &VertexBuffer{
		Positions: cloneSlice(b.Positions),
		Colors:    cloneSlice(b.Colors),
		Indices:   cloneSlice(b.Indices),
		Normals:   cloneSlice(b.Normals),
	}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// ValidateColors checks that colors, when present, match the vertex count
func (b *VertexBuffer) ValidateColors() error {
	if b.HasColors() && len(b.Colors) != len(b.Positions) {
		return &AttributeError{Attribute: AttrColors, Want: len(b.Positions), Got: len(b.Colors), Err: ErrAttributeLength}
	}
	return nil
}

// ValidateNormals checks that normals, when present, match the vertex count
func (b *VertexBuffer) ValidateNormals() error {
	if b.HasNormals() && len(b.Normals) != len(b.Positions) {
		return &AttributeError{Attribute: AttrNormals, Want: len(b.Positions), Got: len(b.Normals), Err: ErrAttributeLength}
	}
	return nil
}

// ValidateIndices checks that every index references an existing vertex.
// The first offending triangle is reported.
func (b *VertexBuffer) ValidateIndices() error {
	n := len(b.Positions)
	for i, tri := range b.Indices {
		for _, idx := range tri {
			if idx < 0 || idx >= n {
				return &AttributeError{Attribute: AttrIndices, Want: n, Got: i, Err: ErrIndexRange}
			}
		}
	}
	return nil
}

// Validate checks all attribute invariants and joins every violation
func (b *VertexBuffer) Validate() error {
	return errors.Join(b.ValidateColors(), b.ValidateNormals(), b.ValidateIndices())
}
