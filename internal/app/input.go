package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/pkg/loader"
)

// handleInput processes keyboard, mouse and dropped files
func (app *App) handleInput() {
	// Camera view preset shortcuts
	if rl.IsKeyPressed(rl.KeyHome) {
		app.resetCameraView()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		app.setCameraTopView()
	}
	if rl.IsKeyPressed(rl.KeyOne) {
		app.setCameraFrontView()
	}
	if rl.IsKeyPressed(rl.KeyThree) {
		app.setCameraSideView()
	}

	// Display toggles
	if rl.IsKeyPressed(rl.KeyW) {
		app.View.showWireframe = !app.View.showWireframe
	}
	if rl.IsKeyPressed(rl.KeyF) {
		app.View.showFilled = !app.View.showFilled
	}
	if rl.IsKeyPressed(rl.KeyI) {
		app.View.showInfo = !app.View.showInfo
	}
	if rl.IsKeyPressed(rl.KeyD) {
		app.display.EnableDistort = !app.display.EnableDistort
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		app.Anim.paused = !app.Anim.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		app.pipeline.Reload(app.ctx)
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		app.Interaction.isPanning = rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	}

	// Shift + left drag or middle drag pans, left drag orbits
	delta := rl.GetMouseDelta()
	switch {
	case (rl.IsMouseButtonDown(rl.MouseLeftButton) && app.Interaction.isPanning) || rl.IsMouseButtonDown(rl.MouseMiddleButton):
		app.doPan(delta)
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		app.doOrbit(delta)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		app.doZoom(wheel)
	}

	// Dropping a file switches the model; the latest drop wins
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		rl.UnloadDroppedFiles()
		for i := len(files) - 1; i >= 0; i-- {
			if app.registry.Supports(files[i]) {
				app.requestModel(files[i])
				break
			}
		}
	}

	// Builtin samples
	if rl.IsKeyPressed(rl.KeyF1) {
		app.requestModel(loader.BuiltinPrefix + "cube")
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		app.requestModel(loader.BuiltinPrefix + "cloud")
	}
}
