package normalize

import (
	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// fallbackNormal is assigned to vertices no non-degenerate triangle touches
var fallbackNormal = geometry.NewVector3(0, 1, 0)

// SynthesizeNormals derives smooth per-vertex normals from the triangles when
// the buffer has connectivity but no normals. Each vertex normal is the
// normalized sum of the area-weighted face normals around it. It reports
// whether normals were written; buffers that already carry normals or have no
// indices are left unchanged.
//
// Indices must reference valid positions (see mesh.VertexBuffer.ValidateIndices).
func SynthesizeNormals(buf *mesh.VertexBuffer) bool {
	if buf == nil || buf.HasNormals() || !buf.HasIndices() {
		return false
	}

	normals := make([]geometry.Vector3, buf.VertexCount())
	for i, tri := range buf.Indices {
		face := buf.Triangle(i).FaceNormal()
		for _, idx := range tri {
			normals[idx] = normals[idx].Add(face)
		}
	}

	for i, n := range normals {
		if n.Length() == 0 || !n.IsFinite() {
			normals[i] = fallbackNormal
			continue
		}
		normals[i] = n.Normalize()
	}

	buf.Normals = normals
	return true
}
