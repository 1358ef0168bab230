package app

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	defaultAngleX = 0.3
	defaultAngleY = 0.3
)

// initCamera frames a model of the given displayed size around the origin
func (app *App) initCamera(size float32) {
	distance := size * 2.0
	if distance <= 0 {
		distance = 4
	}

	app.Camera.defaultDist = distance
	app.Camera.defaultAngleX = defaultAngleX
	app.Camera.defaultAngleY = defaultAngleY
	app.Camera.camera = rl.Camera3D{
		Position:   rl.Vector3{X: 0, Y: 0, Z: distance},
		Target:     rl.Vector3{},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	app.resetCameraView()
}

// resetCameraView resets the camera to the default view
func (app *App) resetCameraView() {
	app.Camera.distance = app.Camera.defaultDist
	app.Camera.angleX = app.Camera.defaultAngleX
	app.Camera.angleY = app.Camera.defaultAngleY
	app.Camera.target = rl.Vector3{}
}

// setCameraTopView looks straight down
func (app *App) setCameraTopView() {
	app.Camera.angleX = math.Pi/2 - 0.01
	app.Camera.angleY = 0
	app.Camera.target = rl.Vector3{}
}

// setCameraFrontView looks along -Z
func (app *App) setCameraFrontView() {
	app.Camera.angleX = 0
	app.Camera.angleY = 0
	app.Camera.target = rl.Vector3{}
}

// setCameraSideView looks along -X
func (app *App) setCameraSideView() {
	app.Camera.angleX = 0
	app.Camera.angleY = math.Pi / 2
	app.Camera.target = rl.Vector3{}
}

// updateCamera updates camera position based on angles
func (app *App) updateCamera() {
	c := &app.Camera
	x := c.distance * float32(math.Cos(float64(c.angleX))) * float32(math.Sin(float64(c.angleY)))
	y := c.distance * float32(math.Sin(float64(c.angleX)))
	z := c.distance * float32(math.Cos(float64(c.angleX))) * float32(math.Cos(float64(c.angleY)))

	c.camera.Position = rl.Vector3{
		X: c.target.X + x,
		Y: c.target.Y + y,
		Z: c.target.Z + z,
	}
	c.camera.Target = c.target
}

// doPan performs camera panning based on mouse delta
func (app *App) doPan(delta rl.Vector2) {
	c := &app.Camera
	forward := rl.Vector3Normalize(rl.Vector3Subtract(c.target, c.camera.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, c.camera.Up))
	up := rl.Vector3Normalize(rl.Vector3CrossProduct(right, forward))

	// Pan speed based on distance from target
	panSpeed := c.distance * 0.001

	c.target = rl.Vector3Add(c.target, rl.Vector3Scale(right, -delta.X*panSpeed))
	c.target = rl.Vector3Add(c.target, rl.Vector3Scale(up, delta.Y*panSpeed))
}

// doOrbit rotates the camera around its target
func (app *App) doOrbit(delta rl.Vector2) {
	c := &app.Camera
	c.angleY -= delta.X * 0.005
	c.angleX += delta.Y * 0.005

	limit := float32(math.Pi/2 - 0.01)
	if c.angleX > limit {
		c.angleX = limit
	}
	if c.angleX < -limit {
		c.angleX = -limit
	}
}

// doZoom moves the camera towards or away from its target
func (app *App) doZoom(wheel float32) {
	c := &app.Camera
	c.distance *= 1 - wheel*0.1
	minDist := c.defaultDist * 0.05
	if c.distance < minDist {
		c.distance = minDist
	}
}
