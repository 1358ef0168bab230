// Package app is the raylib viewer window. It drives the load pipeline,
// uploads normalized geometry and spins it every frame.
package app

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/internal/config"
	"github.com/philipparndt/modelfit/pkg/loader"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/philipparndt/modelfit/pkg/transform"
)

type App struct {
	Camera      CameraState
	Model       ModelData
	View        ViewSettings
	Anim        AnimationState
	Interaction InteractionState
	FileWatch   FileWatchState
	UI          UIState

	display  config.Display
	pipeline *pipeline.Pipeline
	registry *loader.Registry
	log      *slog.Logger
	ctx      context.Context
}

// Options configures the viewer
type Options struct {
	Source  string
	Display config.Display
	Logger  *slog.Logger
}

// Run opens the window and blocks until it is closed
func Run(opts Options) error {
	if err := opts.Display.Validate(); err != nil {
		return err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	baseColor, err := opts.Display.RGBA()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := loader.NewRegistry(loader.WithLogger(log))
	if opts.Source != "" && !registry.Supports(opts.Source) {
		return fmt.Errorf("%w: %s (supported: %v)", loader.ErrUnsupported, opts.Source, registry.Extensions())
	}

	normalizeOpts := opts.Display.NormalizeOptions()
	normalizeOpts.Logger = log

	app := &App{
		Model: ModelData{
			baseColor: mesh.FromColor(baseColor),
		},
		View: ViewSettings{
			showFilled: true,
			showInfo:   true,
		},
		Anim: AnimationState{
			spin:    transform.NewSpin(1),
			distort: transform.Distort{Amount: opts.Display.Distort, Speed: opts.Display.Speed},
		},
		display:  opts.Display,
		pipeline: pipeline.New(registry, pipeline.WithNormalizeOptions(normalizeOpts), pipeline.WithLogger(log)),
		registry: registry,
		log:      log,
		ctx:      ctx,
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint) // Must be before InitWindow
	rl.InitWindow(1400, 900, "modelfit")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	app.UI.font = rl.GetFontDefault()
	app.Model.material = rl.LoadMaterialDefault()
	app.initCamera(float32(opts.Display.TargetSize * opts.Display.Scale))

	if opts.Display.Watch {
		if err := app.setupFileWatcher(); err != nil {
			log.Warn("auto-reload not available", "error", err)
		} else {
			defer app.FileWatch.fileWatcher.Close()
		}
	}

	if opts.Source != "" {
		app.requestModel(opts.Source)
	}

	for !rl.WindowShouldClose() {
		delta := float64(rl.GetFrameTime())

		snap := app.syncModel()
		app.handleInput()
		if !app.Anim.paused {
			app.Anim.spin.Advance(delta, app.display.RotationSpeed)
			app.Anim.time += delta
		}
		app.updateCamera()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(15, 18, 25, 255))

		rl.BeginMode3D(app.Camera.camera)
		app.drawModel()
		rl.EndMode3D()

		app.drawUI(snap)
		rl.EndDrawing()
	}

	app.pipeline.Clear()
	app.unloadModel()
	return nil
}
