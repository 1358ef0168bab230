package viewer

import (
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, buf *mesh.VertexBuffer) *normalize.Result {
	t.Helper()
	result := normalize.Normalize(buf, normalize.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, result.Err())
	return result
}

func coloredPixels(img *image.RGBA, opts RenderOptions) int {
	count := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != opts.Background {
				count++
			}
		}
	}
	return count
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera(2)
	assert.InDelta(t, 4, cam.Distance, 1e-9)

	x, y, z := cam.Project(geometry.NewVector3(0, 0, 0), 100, 100)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.InDelta(t, 4, z, 1e-9)

	// Up is up on screen
	_, yUp, _ := cam.Project(geometry.NewVector3(0, 1, 0), 100, 100)
	assert.Less(t, yUp, 50.0)

	// Behind the camera
	_, _, z = cam.Project(geometry.NewVector3(0, 0, 10), 100, 100)
	assert.LessOrEqual(t, z, 0.0)
}

func TestCameraRotateAndZoom(t *testing.T) {
	cam := NewCamera(0)
	assert.Equal(t, 4.0, cam.Distance)

	cam.Rotate(10, 0)
	assert.InDelta(t, math.Pi/2-0.1, cam.RotationX, 1e-9)
	assert.InDelta(t, 4, cam.Position.Length(), 1e-9)

	cam.Zoom(-0.5)
	assert.InDelta(t, 2, cam.Distance, 1e-9)

	cam.Zoom(-1)
	assert.Equal(t, 0.1, cam.Distance)
}

func TestRenderImageEmpty(t *testing.T) {
	opts := DefaultRenderOptions(40, 30)

	img := RenderImage(nil, NewCamera(2), opts)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	assert.Zero(t, coloredPixels(img, opts))

	img = RenderImage(normalized(t, &mesh.VertexBuffer{}), NewCamera(2), opts)
	assert.Zero(t, coloredPixels(img, opts))

	img = RenderImage(nil, NewCamera(2), RenderOptions{})
	assert.True(t, img.Bounds().Empty())
}

func TestRenderImageSurface(t *testing.T) {
	result := normalized(t, mesh.UnitCube())
	require.Equal(t, normalize.Surface, result.RenderMode)

	opts := DefaultRenderOptions(100, 100)
	img := RenderImage(result, NewCamera(normalize.DefaultTargetSize), opts)

	center := img.RGBAAt(50, 50)
	assert.NotEqual(t, opts.Background, center)
	assert.Greater(t, center.R, center.G, "shaded base color keeps its hue")
	assert.Equal(t, uint8(0), center.B)

	// The cube does not reach the corners
	assert.Equal(t, opts.Background, img.RGBAAt(0, 0))
	assert.Equal(t, opts.Background, img.RGBAAt(99, 99))
}

func TestRenderImageDistort(t *testing.T) {
	result := normalized(t, mesh.UnitCube())
	cam := NewCamera(normalize.DefaultTargetSize)
	opts := DefaultRenderOptions(100, 100)

	plain := RenderImage(result, cam, opts)
	assert.Equal(t, opts.Background, plain.RGBAAt(50, 5))

	opts.Distort = &transform.Distort{Amount: 0.5, Speed: 1}
	opts.Time = math.Pi / 2
	stretched := RenderImage(result, cam, opts)
	assert.NotEqual(t, opts.Background, stretched.RGBAAt(50, 5))
}

func TestRenderImagePointCloud(t *testing.T) {
	result := normalized(t, mesh.Cloud(500, 7, geometry.NewVector3(10, 10, 10), 3))
	require.Equal(t, normalize.PointCloud, result.RenderMode)

	opts := DefaultRenderOptions(120, 120)
	img := RenderImage(result, NewCamera(normalize.DefaultTargetSize), opts)

	assert.Greater(t, coloredPixels(img, opts), 100)
	assert.Equal(t, opts.Background, img.RGBAAt(0, 0))
}

func TestRasterDepthTest(t *testing.T) {
	opts := DefaultRenderOptions(10, 10)
	r := newRaster(10, 10, opts.Background)

	near := opts.Base.ToRGBA()
	far := mesh.RGB(0, 0, 1).ToRGBA()

	r.plot(5, 5, 1, near)
	r.plot(5, 5, 2, far)
	assert.Equal(t, near, r.img.RGBAAt(5, 5))

	r.plot(-1, 5, 0, far)
	r.plot(5, 10, 0, far)
	assert.Equal(t, 1, coloredPixels(r.img, opts))
}

func TestRasterTriangle(t *testing.T) {
	opts := DefaultRenderOptions(20, 20)
	r := newRaster(20, 20, opts.Background)
	col := opts.Base.ToRGBA()

	r.triangle([3][3]float64{{2, 2, 1}, {17, 2, 1}, {2, 17, 1}}, col)

	assert.Equal(t, col, r.img.RGBAAt(4, 4))
	assert.Equal(t, opts.Background, r.img.RGBAAt(16, 16))
	assert.Equal(t, opts.Background, r.img.RGBAAt(0, 0))
}
