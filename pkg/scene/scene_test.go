package scene

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var triangle = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

// triangleDoc holds one indexed triangle mesh that is not yet part of any node
func triangleDoc(withColors bool) *gltf.Document {
	doc := gltf.NewDocument()

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: modeler.WritePosition(doc, triangle),
			gltf.NORMAL:   modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
	}
	if withColors {
		prim.Attributes[gltf.COLOR_0] = modeler.WriteColor(doc, [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}})
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	return doc
}

func approx(t *testing.T, want, got geometry.Vector3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, 1e-9), "want %v, got %v", want, got)
}

func TestFromDocumentSingleNode(t *testing.T) {
	doc := triangleDoc(true)
	node := &gltf.Node{Mesh: gltf.Index(0)}
	node.Translation[0] = 10
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	buf, err := FromDocument(doc)
	require.NoError(t, err)

	require.Equal(t, 3, buf.VertexCount())
	approx(t, geometry.NewVector3(11, 0, 0), buf.Positions[1])
	assert.Equal(t, [][3]int{{0, 1, 2}}, buf.Indices)
	require.True(t, buf.HasColors())
	assert.Equal(t, 1.0, buf.Colors[0].R)
	require.True(t, buf.HasNormals())
	approx(t, geometry.NewVector3(0, 0, 1), buf.Normals[2])
}

func TestFromDocumentHierarchy(t *testing.T) {
	doc := triangleDoc(false)

	parent := &gltf.Node{Name: "parent"}
	parent.Scale[0], parent.Scale[1], parent.Scale[2] = 2, 2, 2
	parent.Children = append(parent.Children, 1, 2)

	left := &gltf.Node{Mesh: gltf.Index(0)}
	left.Translation[0] = 1

	// quarter turn about Z
	right := &gltf.Node{Mesh: gltf.Index(0)}
	right.Rotation[2], right.Rotation[3] = math.Sin(math.Pi/4), math.Cos(math.Pi/4)

	doc.Nodes = []*gltf.Node{parent, left, right}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	buf, err := FromDocument(doc)
	require.NoError(t, err)

	require.Equal(t, 6, buf.VertexCount())
	approx(t, geometry.NewVector3(2, 0, 0), buf.Positions[0])
	approx(t, geometry.NewVector3(4, 0, 0), buf.Positions[1])
	approx(t, geometry.NewVector3(0, 2, 0), buf.Positions[4])
	approx(t, geometry.NewVector3(-2, 0, 0), buf.Positions[5])
	assert.Equal(t, [][3]int{{0, 1, 2}, {3, 4, 5}}, buf.Indices)
	assert.False(t, buf.HasColors())
	approx(t, geometry.NewVector3(0, 0, 1), buf.Normals[4])
	assert.NoError(t, buf.Validate())
}

func TestFromDocumentExplicitMatrix(t *testing.T) {
	doc := triangleDoc(false)
	node := &gltf.Node{Mesh: gltf.Index(0)}
	// uniform scale 3 with translation (0, 0, 5), column-major
	for i, v := range []float64{3, 0, 0, 0, 0, 3, 0, 0, 0, 0, 3, 0, 0, 0, 5, 1} {
		node.Matrix[i] = v
	}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	buf, err := FromDocument(doc)
	require.NoError(t, err)
	approx(t, geometry.NewVector3(0, 3, 5), buf.Positions[2])
}

func TestFromDocumentWithoutScenes(t *testing.T) {
	doc := triangleDoc(false)
	doc.Scenes = nil
	doc.Scene = nil

	buf, err := FromDocument(doc)
	require.NoError(t, err)
	approx(t, geometry.NewVector3(1, 0, 0), buf.Positions[1])
}

func TestFromDocumentPoints(t *testing.T) {
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Mode:       gltf.PrimitivePoints,
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: modeler.WritePosition(doc, triangle)},
	}
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	buf, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, buf.VertexCount())
	assert.False(t, buf.HasIndices())
	assert.False(t, buf.HasNormals())
}

func TestFromDocumentEmpty(t *testing.T) {
	_, err := FromDocument(gltf.NewDocument())
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func TestFromDocumentBadNode(t *testing.T) {
	doc := triangleDoc(false)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 7)

	_, err := FromDocument(doc)
	assert.ErrorContains(t, err, "node 7 out of range")
}

func TestLoadRoundTrip(t *testing.T) {
	doc := triangleDoc(true)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	buf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, buf.VertexCount())
	assert.True(t, buf.HasColors())

	_, err = Load(filepath.Join(t.TempDir(), "missing.glb"))
	assert.ErrorContains(t, err, "failed to open glTF file")
}
