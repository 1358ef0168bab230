package app

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/philipparndt/modelfit/version"
)

const (
	fontSize12 = float32(12)
	fontSize14 = float32(14)
	fontSize16 = float32(16)
	fontSize18 = float32(18)
	lineHeight = float32(20)
)

// drawUI draws the overlay for the current pipeline state
func (app *App) drawUI(snap pipeline.Snapshot) {
	screenWidth := float32(rl.GetScreenWidth())

	switch snap.State {
	case pipeline.StateLoading, pipeline.StateNormalizing:
		app.drawLoadingIndicator(screenWidth, snap.State)
	case pipeline.StateFailed:
		app.drawError(snap)
	case pipeline.StateEmpty:
		app.text("Drop a model file or press F1 / F2 for a sample", 10, 10, fontSize16, rl.LightGray)
	case pipeline.StateReady:
		if app.View.showInfo {
			app.drawInfo(snap)
		}
	}

	// Version and FPS in bottom-left corner
	bottomY := float32(rl.GetScreenHeight()) - 30
	versionText := fmt.Sprintf("v%s", version.GetVersion())
	app.text(versionText, 10, bottomY, fontSize12, rl.Gray)

	versionWidth := rl.MeasureTextEx(app.UI.font, versionText, fontSize12, 1).X
	app.text(fmt.Sprintf("FPS: %d", rl.GetFPS()), 10+versionWidth+15, bottomY, fontSize12, rl.Lime)
}

func (app *App) text(s string, x, y, size float32, color rl.Color) {
	rl.DrawTextEx(app.UI.font, s, rl.Vector2{X: x, Y: y}, size, 1, color)
}

// drawLoadingIndicator draws a spinner box in the top-right corner
func (app *App) drawLoadingIndicator(screenWidth float32, state pipeline.State) {
	elapsed := time.Since(app.UI.loadStartTime).Seconds()
	spinnerChars := []string{"|", "/", "-", "\\"}
	spinnerIdx := int(elapsed*10) % len(spinnerChars)

	label := "Loading"
	if state == pipeline.StateNormalizing {
		label = "Normalizing"
	}
	loadingText := fmt.Sprintf("%s %s... (%.1fs)", spinnerChars[spinnerIdx], label, elapsed)

	boxWidth := float32(250)
	boxHeight := float32(40)
	boxX := screenWidth - boxWidth - 20
	boxY := float32(20)

	rl.DrawRectangle(int32(boxX), int32(boxY), int32(boxWidth), int32(boxHeight), rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(int32(boxX), int32(boxY), int32(boxWidth), int32(boxHeight), rl.Yellow)

	textSize := rl.MeasureTextEx(app.UI.font, loadingText, fontSize18, 1)
	app.text(loadingText, boxX+(boxWidth-textSize.X)/2, boxY+(boxHeight-textSize.Y)/2, fontSize18, rl.Yellow)
}

func (app *App) drawError(snap pipeline.Snapshot) {
	y := float32(10)
	app.text("Failed to load model", 10, y, fontSize18, rl.Red)
	y += lineHeight * 1.5
	app.text(snap.Source, 10, y, fontSize14, rl.LightGray)
	y += lineHeight
	if snap.Err != nil {
		app.text(snap.Err.Error(), 10, y, fontSize14, rl.NewColor(255, 150, 150, 255))
	}
}

func (app *App) drawInfo(snap pipeline.Snapshot) {
	result := app.Model.result
	report := app.Model.report
	if result == nil || report == nil {
		return
	}

	y := float32(10)
	app.text("Model:", 10, y, fontSize16, rl.Yellow)
	y += lineHeight
	app.text(fmt.Sprintf("  Source: %s", snap.Source), 10, y, fontSize14, rl.White)
	y += lineHeight
	app.text(fmt.Sprintf("  Mode: %s", result.RenderMode), 10, y, fontSize14, rl.White)
	y += lineHeight
	app.text(fmt.Sprintf("  Vertices: %d | Triangles: %d", report.VertexCount, report.TriangleCount), 10, y, fontSize14, rl.White)
	y += lineHeight
	size := result.Bounds.Size()
	app.text(fmt.Sprintf("  Size: %.2f x %.2f x %.2f", size.X, size.Y, size.Z), 10, y, fontSize14, rl.White)
	y += lineHeight
	app.text(fmt.Sprintf("  Scale: %.4f (x%.2f)", result.ScaleFactor, app.display.Scale), 10, y, fontSize14, rl.NewColor(100, 200, 255, 255))
	y += lineHeight
	if result.FellBack {
		app.text("  Normalization fell back to raw geometry", 10, y, fontSize14, rl.Orange)
		y += lineHeight
	}
	for _, w := range result.Warnings() {
		app.text(fmt.Sprintf("  %s: %s", w.Step, w.Message), 10, y, fontSize14, rl.Orange)
		y += lineHeight
	}
	y += lineHeight

	app.text("Keys:", 10, y, fontSize16, rl.Yellow)
	y += lineHeight
	app.text("  Home: Reset | T: Top | 1: Front | 3: Side", 10, y, fontSize14, rl.LightGray)
	y += lineHeight
	app.text("  W: Wireframe | F: Fill | D: Distort | Space: Pause", 10, y, fontSize14, rl.LightGray)
	y += lineHeight
	app.text("  R: Reload | I: Info | Drop file: Open", 10, y, fontSize14, rl.LightGray)
}
