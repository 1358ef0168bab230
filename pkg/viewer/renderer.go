// Package viewer is a software-rendered preview of normalized models for
// the fyne front end. RenderImage has no fyne dependency and can run
// headless.
package viewer

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/shading"
	"github.com/philipparndt/modelfit/pkg/transform"
)

// RenderOptions controls one software-rendered frame
type RenderOptions struct {
	Width, Height int

	Scale float64 // user display multiplier on top of the derived scale
	Angle float64 // spin around Y in radians

	// Distort is applied in model space before scale and spin when set
	Distort *transform.Distort
	Time    float64

	Base       mesh.Color
	Background color.RGBA
	Wireframe  bool
	PointSize  int
}

// DefaultRenderOptions returns options for a width×height frame
func DefaultRenderOptions(width, height int) RenderOptions {
	return RenderOptions{
		Width:      width,
		Height:     height,
		Scale:      1,
		Base:       mesh.RGB(1, 0.65, 0),
		Background: color.RGBA{R: 15, G: 18, B: 25, A: 255},
		PointSize:  2,
	}
}

// RenderImage draws result as seen from cam. A nil or empty result yields a
// frame with only the background.
func RenderImage(result *normalize.Result, cam *Camera, opts RenderOptions) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	r := newRaster(opts.Width, opts.Height, opts.Background)
	if result == nil || result.Buffer == nil || result.Buffer.VertexCount() == 0 {
		return r.img
	}

	spin := transform.Spin{Angle: opts.Angle, Scale: result.DisplayScale(opts.Scale)}
	world := make([]geometry.Vector3, len(result.Buffer.Positions))
	for i, p := range result.Buffer.Positions {
		if opts.Distort != nil {
			p = opts.Distort.Apply(p, opts.Time)
		}
		world[i] = spin.Apply(p)
	}

	switch result.RenderMode {
	case normalize.Surface:
		drawSurface(r, result.Buffer, world, cam, opts)
	case normalize.PointCloud:
		drawPoints(r, result.Buffer, world, cam, opts)
	}
	return r.img
}

func drawSurface(r *raster, buf *mesh.VertexBuffer, world []geometry.Vector3, cam *Camera, opts RenderOptions) {
	w, h := float64(opts.Width), float64(opts.Height)
	edge := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	for _, tri := range buf.Indices {
		a, b, c := world[tri[0]], world[tri[1]], world[tri[2]]

		// Light both sides: flip the normal towards the camera
		n := geometry.NewTriangle(a, b, c).Normal()
		if n.Dot(cam.Position.Sub(a)) < 0 {
			n = n.Neg()
		}

		col := averageColor(buf, tri, opts.Base).Scale(shading.Intensity(n, shading.DefaultLight)).ToRGBA()

		var screen [3][3]float64
		visible := true
		for k, p := range [3]geometry.Vector3{a, b, c} {
			x, y, z := cam.Project(p, w, h)
			if z <= 0.01 {
				visible = false
				break
			}
			screen[k] = [3]float64{x, y, z}
		}
		if !visible {
			continue
		}

		r.triangle(screen, col)
		if opts.Wireframe {
			for k := 0; k < 3; k++ {
				p, q := screen[k], screen[(k+1)%3]
				r.line(int(p[0]), int(p[1]), int(q[0]), int(q[1]), edge)
			}
		}
	}
}

func drawPoints(r *raster, buf *mesh.VertexBuffer, world []geometry.Vector3, cam *Camera, opts RenderOptions) {
	w, h := float64(opts.Width), float64(opts.Height)
	size := opts.PointSize
	if size < 1 {
		size = 1
	}

	for i, p := range world {
		x, y, z := cam.Project(p, w, h)
		if z <= 0.01 {
			continue
		}
		r.point(x, y, z, size, shading.VertexColor(buf, i, opts.Base).ToRGBA())
	}
}

func averageColor(buf *mesh.VertexBuffer, tri [3]int, base mesh.Color) mesh.Color {
	if !buf.HasColors() {
		return base
	}
	var sum mesh.Color
	for _, v := range tri {
		c := buf.Colors[v]
		sum.R += c.R
		sum.G += c.G
		sum.B += c.B
		sum.A += c.A
	}
	return mesh.Color{R: sum.R / 3, G: sum.G / 3, B: sum.B / 3, A: sum.A / 3}
}

// Preview is a fyne widget showing a normalized model. Drag orbits the
// camera and scrolling zooms. All methods must run on the fyne goroutine.
type Preview struct {
	widget.BaseWidget
	result    *normalize.Result
	camera    *Camera
	opts      RenderOptions
	image     *canvas.Image
	dragStart *fyne.Position
}

// NewPreview creates an empty preview
func NewPreview(opts RenderOptions) *Preview {
	p := &Preview{
		camera: NewCamera(normalize.DefaultTargetSize),
		opts:   opts,
	}
	p.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	p.image.FillMode = canvas.ImageFillStretch
	p.ExtendBaseWidget(p)
	return p
}

// SetResult replaces the displayed model and reframes the camera. A nil
// result clears the view.
func (p *Preview) SetResult(result *normalize.Result) {
	p.result = result
	if result != nil {
		size := result.Bounds.Size().MaxComponent() * result.DisplayScale(p.opts.Scale)
		p.camera = NewCamera(size)
	}
	p.redraw()
}

// Result returns the displayed model
func (p *Preview) Result() *normalize.Result {
	return p.result
}

// Advance spins the model and moves the distortion clock
func (p *Preview) Advance(delta, speed float64) {
	spin := transform.Spin{Angle: p.opts.Angle}
	spin.Advance(delta, speed)
	p.opts.Angle = spin.Angle
	p.opts.Time += delta
	p.redraw()
}

// SetWireframe toggles triangle outlines
func (p *Preview) SetWireframe(on bool) {
	p.opts.Wireframe = on
	p.redraw()
}

// SetDistort enables or disables the squash and stretch mode
func (p *Preview) SetDistort(d *transform.Distort) {
	p.opts.Distort = d
	p.redraw()
}

func (p *Preview) redraw() {
	if p.opts.Width <= 0 || p.opts.Height <= 0 {
		return
	}
	p.image.Image = RenderImage(p.result, p.camera, p.opts)
	p.image.Refresh()
}

// CreateRenderer creates the renderer for the widget
func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	return &previewRenderer{preview: p}
}

// Dragged handles mouse drag events for rotation
func (p *Preview) Dragged(event *fyne.DragEvent) {
	if p.dragStart != nil {
		deltaX := event.Position.X - p.dragStart.X
		deltaY := event.Position.Y - p.dragStart.Y
		p.camera.Rotate(float64(deltaY)*0.01, float64(-deltaX)*0.01)
		p.redraw()
	}
	pos := event.Position
	p.dragStart = &pos
}

// DragEnd handles the end of a drag event
func (p *Preview) DragEnd() {
	p.dragStart = nil
}

// Scrolled handles scroll events for zooming
func (p *Preview) Scrolled(event *fyne.ScrollEvent) {
	p.camera.Zoom(-float64(event.Scrolled.DY) * 0.001)
	p.redraw()
}

type previewRenderer struct {
	preview *Preview
}

func (r *previewRenderer) Layout(size fyne.Size) {
	r.preview.image.Resize(size)
	r.preview.opts.Width = int(size.Width)
	r.preview.opts.Height = int(size.Height)
	r.preview.redraw()
}

func (r *previewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *previewRenderer) Refresh() {
	canvas.Refresh(r.preview.image)
}

func (r *previewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.preview.image}
}

func (r *previewRenderer) Destroy() {}
