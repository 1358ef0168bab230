package app

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/philipparndt/modelfit/pkg/loader"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/philipparndt/modelfit/pkg/watcher"
)

// requestModel starts loading source. Any load still running is superseded.
func (app *App) requestModel(source string) {
	app.UI.loadStartTime = time.Now()
	app.pipeline.Request(app.ctx, source)

	if app.FileWatch.fileWatcher != nil {
		if err := app.watchSource(source); err != nil {
			app.log.Warn("auto-reload not available", "source", source, "error", err)
		}
	}
}

// setupFileWatcher creates the watcher used for auto-reload
func (app *App) setupFileWatcher() error {
	fw, err := watcher.NewFileWatcher(500*time.Millisecond, app.log)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.Start(app.ctx)
	app.FileWatch.fileWatcher = fw
	return nil
}

// watchSource replaces the watched files with those of source
func (app *App) watchSource(source string) error {
	fw := app.FileWatch.fileWatcher
	if err := fw.RemoveAll(); err != nil {
		return err
	}

	files, err := loader.WatchList(source, app.log)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		app.FileWatch.watchedFiles = nil
		return nil
	}

	if err := fw.ReloadOnChange(app.ctx, files, app.pipeline); err != nil {
		return fmt.Errorf("failed to watch files: %w", err)
	}
	app.FileWatch.watchedFiles = files
	app.log.Info("watching for changes", "files", len(files))
	return nil
}

// syncModel picks up a newly published result. GPU uploads must happen on
// the main thread, so the pipeline is polled once per frame.
func (app *App) syncModel() pipeline.Snapshot {
	snap := app.pipeline.Snapshot()
	if snap.Generation == app.Model.generation {
		return snap
	}

	switch snap.State {
	case pipeline.StateReady:
		app.applyResult(snap.Result)
		app.Model.generation = snap.Generation
	case pipeline.StateFailed, pipeline.StateEmpty:
		app.unloadModel()
		app.Model.result = nil
		app.Model.report = nil
		app.Model.generation = snap.Generation
	case pipeline.StateLoading, pipeline.StateNormalizing:
		// The previous result was discarded by the request
		app.unloadModel()
		app.Model.result = nil
		app.Model.report = nil
	}
	return snap
}

// applyResult uploads result and reframes the camera when the displayed
// size changed
func (app *App) applyResult(result *normalize.Result) {
	app.unloadModel()

	app.Model.result = result
	app.Model.report = analysis.Analyze(result.Buffer)

	switch result.RenderMode {
	case normalize.Surface:
		app.Model.mesh = surfaceToRaylibMesh(result.Buffer, app.Model.baseColor)
		app.Model.hasMesh = true
	case normalize.PointCloud:
		// points are drawn immediately every frame
	}

	size := float32(result.Bounds.Size().MaxComponent() * result.DisplayScale(app.display.Scale))
	if size != app.Model.displaySize {
		app.Model.displaySize = size
		app.initCamera(size)
	}

	app.log.Info("model applied",
		"mode", result.RenderMode.String(),
		"vertices", result.Buffer.VertexCount(),
		"triangles", result.Buffer.TriangleCount(),
		"load", time.Since(app.UI.loadStartTime).Round(time.Millisecond),
	)
	for _, w := range result.Warnings() {
		app.log.Warn("model diagnostic", "step", w.Step, "message", w.Message)
	}
	rl.SetWindowTitle(fmt.Sprintf("modelfit - %s", app.pipeline.Snapshot().Source))
}
