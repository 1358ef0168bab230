package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// maxWireframeEdges keeps the immediate mode wireframe interactive
const maxWireframeEdges = 200000

// drawWireframe draws every unique triangle edge once
func (app *App) drawWireframe(transform rl.Matrix) {
	report := app.Model.report
	if report == nil || report.EdgeCount > maxWireframeEdges {
		return
	}

	wireframeColor := rl.NewColor(100, 100, 100, 200)
	for _, edge := range report.Edges {
		a := rl.Vector3Transform(rl.Vector3{X: float32(edge.Start.X), Y: float32(edge.Start.Y), Z: float32(edge.Start.Z)}, transform)
		b := rl.Vector3Transform(rl.Vector3{X: float32(edge.End.X), Y: float32(edge.End.Y), Z: float32(edge.End.Z)}, transform)
		rl.DrawLine3D(a, b, wireframeColor)
	}
}
