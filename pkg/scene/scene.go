// Package scene flattens packaged glTF 2.0 scenes (.gltf and .glb) into a
// single vertex buffer. Every mesh instance is baked into world space by
// walking the node hierarchy of the default scene.
package scene

import (
	"errors"
	"fmt"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/ungerik/go3d/float64/mat4"
)

// ErrNoGeometry is returned when no primitive of the scene carries positions
var ErrNoGeometry = errors.New("scene contains no geometry")

// Load opens a .gltf or .glb file and flattens its default scene
func Load(path string) (*mesh.VertexBuffer, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glTF file: %w", err)
	}
	return FromDocument(doc)
}

// part is one primitive instance in world space
type part struct {
	positions []geometry.Vector3
	normals   []geometry.Vector3
	colors    []mesh.Color
	indices   [][3]int
}

type flattener struct {
	doc   *gltf.Document
	parts []part
}

// FromDocument flattens the default scene of doc. Documents without scenes
// contribute every mesh untransformed.
func FromDocument(doc *gltf.Document) (*mesh.VertexBuffer, error) {
	f := &flattener{doc: doc}

	switch {
	case len(doc.Scenes) > 0:
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene %d out of range", sceneIdx)
		}
		for _, root := range doc.Scenes[sceneIdx].Nodes {
			if err := f.visit(int(root), mat4.Ident, 0); err != nil {
				return nil, err
			}
		}
	default:
		for i := range doc.Meshes {
			if err := f.addMesh(i, mat4.Ident); err != nil {
				return nil, err
			}
		}
	}

	return f.merge()
}

// maxDepth guards against cyclic node graphs
const maxDepth = 64

func (f *flattener) visit(nodeIdx int, parent mat4.T, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("node hierarchy deeper than %d levels", maxDepth)
	}
	if nodeIdx < 0 || nodeIdx >= len(f.doc.Nodes) {
		return fmt.Errorf("node %d out of range", nodeIdx)
	}
	node := f.doc.Nodes[nodeIdx]
	local := localMatrix(node)
	world := compose(&parent, &local)

	if node.Mesh != nil {
		if err := f.addMesh(int(*node.Mesh), world); err != nil {
			return fmt.Errorf("node %d: %w", nodeIdx, err)
		}
	}
	for _, child := range node.Children {
		if err := f.visit(int(child), world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix prefers an explicit matrix and otherwise composes TRS
func localMatrix(node *gltf.Node) mat4.T {
	var explicit [16]float64
	for i, v := range node.MatrixOrDefault() {
		explicit[i] = float64(v)
	}
	if m := matrixFromColumns(explicit); m != mat4.Ident {
		return m
	}

	t, r, s := node.TranslationOrDefault(), node.RotationOrDefault(), node.ScaleOrDefault()
	return trs(
		[3]float64{float64(t[0]), float64(t[1]), float64(t[2])},
		[4]float64{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])},
		[3]float64{float64(s[0]), float64(s[1]), float64(s[2])},
	)
}

func (f *flattener) addMesh(meshIdx int, world mat4.T) error {
	if meshIdx < 0 || meshIdx >= len(f.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	for i, prim := range f.doc.Meshes[meshIdx].Primitives {
		p, ok, err := f.readPrimitive(prim, world)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", meshIdx, i, err)
		}
		if ok {
			f.parts = append(f.parts, p)
		}
	}
	return nil
}

func (f *flattener) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(f.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return f.doc.Accessors[idx], nil
}

func (f *flattener) readPrimitive(prim *gltf.Primitive, world mat4.T) (part, bool, error) {
	var p part

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return p, false, nil
	}
	acr, err := f.accessor(int(posIdx))
	if err != nil {
		return p, false, err
	}
	positions, err := modeler.ReadPosition(f.doc, acr, nil)
	if err != nil {
		return p, false, fmt.Errorf("positions: %w", err)
	}
	p.positions = make([]geometry.Vector3, len(positions))
	for i, v := range positions {
		p.positions[i] = transformPoint(&world, vec(v))
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err := f.accessor(int(normIdx)); err == nil {
			if normals, err := modeler.ReadNormal(f.doc, acr, nil); err == nil && len(normals) == len(positions) {
				p.normals = make([]geometry.Vector3, len(normals))
				for i, n := range normals {
					p.normals[i] = transformNormal(&world, vec(n))
				}
			}
		}
	}

	if colorIdx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if acr, err := f.accessor(int(colorIdx)); err == nil {
			if colors, err := modeler.ReadColor(f.doc, acr, nil); err == nil && len(colors) == len(positions) {
				p.colors = make([]mesh.Color, len(colors))
				for i, c := range colors {
					p.colors[i] = mesh.Color{
						R: float64(c[0]) / 255,
						G: float64(c[1]) / 255,
						B: float64(c[2]) / 255,
						A: float64(c[3]) / 255,
					}
				}
			}
		}
	}

	if prim.Mode == gltf.PrimitivePoints {
		return p, true, nil
	}

	var order []uint32
	if prim.Indices != nil {
		acr, err := f.accessor(int(*prim.Indices))
		if err != nil {
			return p, false, err
		}
		if order, err = modeler.ReadIndices(f.doc, acr, nil); err != nil {
			return p, false, fmt.Errorf("indices: %w", err)
		}
	} else {
		order = make([]uint32, len(positions))
		for i := range order {
			order[i] = uint32(i)
		}
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(order); i += 3 {
			p.indices = append(p.indices, [3]int{int(order[i]), int(order[i+1]), int(order[i+2])})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(order); i++ {
			if i%2 == 0 {
				p.indices = append(p.indices, [3]int{int(order[i]), int(order[i+1]), int(order[i+2])})
			} else {
				p.indices = append(p.indices, [3]int{int(order[i+1]), int(order[i]), int(order[i+2])})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(order); i++ {
			p.indices = append(p.indices, [3]int{int(order[0]), int(order[i]), int(order[i+1])})
		}
	default:
		// line primitives have no surface, keep the vertices as points
	}

	return p, true, nil
}

func vec(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// merge concatenates all parts. Colors survive when any part has them,
// normals only when every part has them.
func (f *flattener) merge() (*mesh.VertexBuffer, error) {
	buf := &mesh.VertexBuffer{}
	anyColors, allNormals, anyIndices := false, len(f.parts) > 0, false
	for _, p := range f.parts {
		anyColors = anyColors || p.colors != nil
		allNormals = allNormals && p.normals != nil
		anyIndices = anyIndices || len(p.indices) > 0
	}

	for _, p := range f.parts {
		base := len(buf.Positions)
		buf.Positions = append(buf.Positions, p.positions...)

		if anyColors {
			if p.colors != nil {
				buf.Colors = append(buf.Colors, p.colors...)
			} else {
				for range p.positions {
					buf.Colors = append(buf.Colors, mesh.RGB(1, 1, 1))
				}
			}
		}
		if allNormals {
			buf.Normals = append(buf.Normals, p.normals...)
		}
		if anyIndices {
			for _, tri := range p.indices {
				buf.Indices = append(buf.Indices, [3]int{tri[0] + base, tri[1] + base, tri[2] + base})
			}
		}
	}

	if len(buf.Positions) == 0 {
		return nil, ErrNoGeometry
	}
	return buf, nil
}
