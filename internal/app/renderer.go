package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/shading"
)

// surfaceToRaylibMesh expands the indexed surface into one vertex per
// triangle corner with baked lighting and uploads it
func surfaceToRaylibMesh(buf *mesh.VertexBuffer, base mesh.Color) rl.Mesh {
	triangleCount := buf.TriangleCount()
	vertexCount := triangleCount * 3

	m := rl.Mesh{
		VertexCount:   int32(vertexCount),
		TriangleCount: int32(triangleCount),
	}

	vertices := make([]float32, vertexCount*3)
	normals := make([]float32, vertexCount*3)
	colors := make([]uint8, vertexCount*4)

	idx := 0
	for t, tri := range buf.Indices {
		faceNormal := buf.Triangle(t).Normal()
		for _, v := range tri {
			p := buf.Positions[v]
			n := faceNormal
			if buf.HasNormals() {
				n = buf.Normals[v]
			}
			c := shading.Shade(buf, v, base, shading.DefaultLight)
			if !buf.HasNormals() {
				c = c.Scale(shading.Intensity(faceNormal, shading.DefaultLight))
			}
			rgba := c.ToRGBA()

			vertices[idx*3+0] = float32(p.X)
			vertices[idx*3+1] = float32(p.Y)
			vertices[idx*3+2] = float32(p.Z)
			normals[idx*3+0] = float32(n.X)
			normals[idx*3+1] = float32(n.Y)
			normals[idx*3+2] = float32(n.Z)
			colors[idx*4+0] = rgba.R
			colors[idx*4+1] = rgba.G
			colors[idx*4+2] = rgba.B
			colors[idx*4+3] = rgba.A
			idx++
		}
	}

	if len(vertices) > 0 {
		m.Vertices = &vertices[0]
		m.Normals = &normals[0]
		m.Colors = &colors[0]
	}

	rl.UploadMesh(&m, false)
	return m
}

// modelMatrix combines distortion, display scale and spin: distort and
// scale in model space first, then rotate about Y
func (app *App) modelMatrix() rl.Matrix {
	scale := app.Model.result.DisplayScale(app.display.Scale)
	fx, fy, fz := scale, scale, scale
	if app.display.EnableDistort {
		f := app.Anim.distort.Factors(app.Anim.time)
		fx, fy, fz = f.X*scale, f.Y*scale, f.Z*scale
	}

	return rl.MatrixMultiply(
		rl.MatrixScale(float32(fx), float32(fy), float32(fz)),
		rl.MatrixRotateY(float32(app.Anim.spin.Angle)),
	)
}

// drawModel draws the current result in its render mode
func (app *App) drawModel() {
	result := app.Model.result
	if result == nil {
		return
	}

	transform := app.modelMatrix()

	switch result.RenderMode {
	case normalize.Surface:
		if app.View.showFilled && app.Model.hasMesh {
			rl.DrawMesh(app.Model.mesh, app.Model.material, transform)
		}
		if app.View.showWireframe {
			app.drawWireframe(transform)
		}
	case normalize.PointCloud:
		app.drawPoints(transform)
	}
}

// drawPoints draws every vertex as a point in its vertex color
func (app *App) drawPoints(transform rl.Matrix) {
	buf := app.Model.result.Buffer
	base := app.Model.baseColor

	for i, p := range buf.Positions {
		pos := rl.Vector3Transform(rl.Vector3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}, transform)
		c := shading.VertexColor(buf, i, base).ToRGBA()
		rl.DrawPoint3D(pos, rl.NewColor(c.R, c.G, c.B, c.A))
	}
}

// unloadModel releases the GPU mesh
func (app *App) unloadModel() {
	if app.Model.hasMesh {
		rl.UnloadMesh(&app.Model.mesh)
		app.Model.hasMesh = false
	}
}
