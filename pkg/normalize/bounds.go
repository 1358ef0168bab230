package normalize

import (
	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// ComputeBounds returns the axis-aligned bounding box of the buffer's
// positions. A nil or empty buffer yields an empty box whose size is zero and
// whose center is the origin.
func ComputeBounds(buf *mesh.VertexBuffer) geometry.BoundingBox {
	if buf == nil {
		return geometry.NewBoundingBox()
	}
	return geometry.BoundsOf(buf.Positions)
}
