package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/modelfit/internal/config"
	"github.com/philipparndt/modelfit/internal/logx"
	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/philipparndt/modelfit/pkg/loader"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/philipparndt/modelfit/pkg/transform"
	"github.com/philipparndt/modelfit/pkg/viewer"
	"github.com/philipparndt/modelfit/version"
)

const frameInterval = 33 * time.Millisecond

type App struct {
	window    fyne.Window
	display   config.Display
	pipeline  *pipeline.Pipeline
	preview   *viewer.Preview
	status    *widget.Label
	modelInfo *widget.Label
	paused    bool
}

func main() {
	display := config.Default()
	display.RotationSpeed = 0.8

	level, _ := display.Level()
	log := logx.Setup(level)

	a := app.New()
	w := a.NewWindow(fmt.Sprintf("modelfit %s", version.GetVersion()))

	baseColor, err := display.RGBA()
	if err != nil {
		log.Error("invalid material color", "error", err)
		os.Exit(1)
	}
	opts := viewer.DefaultRenderOptions(0, 0)
	opts.Base = mesh.FromColor(baseColor)
	opts.Scale = display.Scale

	appInstance := &App{
		window:    w,
		display:   display,
		preview:   viewer.NewPreview(opts),
		status:    widget.NewLabel("Open a model to start"),
		modelInfo: widget.NewLabel(""),
	}

	normalizeOpts := display.NormalizeOptions()
	normalizeOpts.Logger = log
	appInstance.pipeline = pipeline.New(
		loader.NewRegistry(loader.WithLogger(log)),
		pipeline.WithNormalizeOptions(normalizeOpts),
		pipeline.WithLogger(log),
		pipeline.WithOnChange(func(snap pipeline.Snapshot) {
			// Runs under the pipeline lock; hand over to the UI goroutine
			fyne.Do(func() { appInstance.apply(snap) })
		}),
	)

	appInstance.setupMainUI()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go appInstance.animate(ctx)

	if len(os.Args) > 1 {
		appInstance.pipeline.Request(ctx, os.Args[1])
	}

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
	slog.Debug("window closed")
}

func (a *App) setupMainUI() {
	openButton := widget.NewButton("Open File", func() {
		a.showFileDialog()
	})
	cubeButton := widget.NewButton("Sample Cube", func() {
		a.pipeline.Request(context.Background(), loader.BuiltinPrefix+"cube")
	})
	cloudButton := widget.NewButton("Sample Cloud", func() {
		a.pipeline.Request(context.Background(), loader.BuiltinPrefix+"cloud")
	})
	reloadButton := widget.NewButton("Reload", func() {
		a.pipeline.Reload(context.Background())
	})

	wireframeCheck := widget.NewCheck("Wireframe", func(checked bool) {
		a.preview.SetWireframe(checked)
	})
	distortCheck := widget.NewCheck("Squash and stretch", func(checked bool) {
		if checked {
			a.preview.SetDistort(&transform.Distort{Amount: a.display.Distort, Speed: a.display.Speed})
		} else {
			a.preview.SetDistort(nil)
		}
	})
	pauseCheck := widget.NewCheck("Pause", func(checked bool) {
		a.paused = checked
	})

	speedSlider := widget.NewSlider(-3, 3)
	speedSlider.Step = 0.1
	speedSlider.SetValue(a.display.RotationSpeed)
	speedSlider.OnChanged = func(v float64) {
		a.display.RotationSpeed = v
	}

	instructions := widget.NewLabel(
		"Instructions:\n" +
			"• Drag to orbit the camera\n" +
			"• Scroll to zoom in/out\n" +
			"• Supported: STL, PLY, glTF, GLB, SCAD",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		widget.NewLabel("Status:"),
		a.status,
		widget.NewSeparator(),
		widget.NewLabel("Model Information:"),
		a.modelInfo,
		widget.NewSeparator(),
		widget.NewLabel("Display Options:"),
		wireframeCheck,
		distortCheck,
		pauseCheck,
		widget.NewLabel("Rotation speed (rad/s):"),
		speedSlider,
		widget.NewSeparator(),
		instructions,
		widget.NewSeparator(),
		openButton,
		cubeButton,
		cloudButton,
		reloadButton,
	)

	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	a.window.SetContent(container.NewBorder(nil, nil, nil, infoScroll, a.preview))
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.pipeline.Request(context.Background(), reader.URI().Path())
	}, a.window)
}

// apply shows a pipeline transition. It runs on the fyne goroutine.
func (a *App) apply(snap pipeline.Snapshot) {
	a.status.SetText(fmt.Sprintf("%s\n%s", snap.State, snap.Source))

	switch snap.State {
	case pipeline.StateLoading:
		// The previous result is discarded with the request
		a.preview.SetResult(nil)
		a.modelInfo.SetText("")
	case pipeline.StateNormalizing:
	case pipeline.StateReady:
		a.preview.SetResult(snap.Result)
		a.modelInfo.SetText(describe(snap))
	case pipeline.StateFailed:
		a.preview.SetResult(nil)
		a.modelInfo.SetText("")
		dialog.ShowError(fmt.Errorf("failed to load %s: %w", snap.Source, snap.Err), a.window)
	case pipeline.StateEmpty:
		a.preview.SetResult(nil)
		a.modelInfo.SetText("")
	}
}

func describe(snap pipeline.Snapshot) string {
	result := snap.Result
	report := analysis.Analyze(result.Buffer)

	text := fmt.Sprintf(
		"Mode: %s\nVertices: %d\nTriangles: %d\nEdges: %d\n\nOriginal size:\n  X: %.3f\n  Y: %.3f\n  Z: %.3f\n\nScale: %.4f",
		result.RenderMode,
		report.VertexCount,
		report.TriangleCount,
		report.EdgeCount,
		result.Bounds.Size().X,
		result.Bounds.Size().Y,
		result.Bounds.Size().Z,
		result.ScaleFactor,
	)
	if result.FellBack {
		text += "\n\nNormalization fell back to raw geometry"
	}
	for _, w := range result.Warnings() {
		text += fmt.Sprintf("\n%s: %s", w.Step, w.Message)
	}
	return text
}

// animate advances the spin from a ticker until ctx is done
func (a *App) animate(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			fyne.Do(func() {
				if a.paused || a.preview.Result() == nil {
					return
				}
				a.preview.Advance(delta, a.display.RotationSpeed)
			})
		}
	}
}
