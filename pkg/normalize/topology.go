package normalize

import (
	"fmt"

	"github.com/philipparndt/modelfit/pkg/mesh"
)

// RenderMode decides which draw primitive the presentation layer uses
type RenderMode int

const (
	// PointCloud draws every vertex as an unlit, optionally colored point
	PointCloud RenderMode = iota
	// Surface draws lit triangles from the buffer's connectivity
	Surface
)

func (m RenderMode) String() string {
	switch m {
	case PointCloud:
		return "POINT_CLOUD"
	case Surface:
		return "SURFACE"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// Classify returns Surface when the buffer has at least one triangle and
// PointCloud otherwise.
func Classify(buf *mesh.VertexBuffer) RenderMode {
	if buf != nil && buf.HasIndices() {
		return Surface
	}
	return PointCloud
}
