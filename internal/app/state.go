package app

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/transform"
	"github.com/philipparndt/modelfit/pkg/watcher"
)

// CameraState holds all camera-related state
type CameraState struct {
	camera        rl.Camera3D
	distance      float32
	angleX        float32
	angleY        float32
	target        rl.Vector3 // Current camera target (can be panned)
	defaultDist   float32    // Default camera distance (for reset)
	defaultAngleX float32    // Default camera angle X (for reset)
	defaultAngleY float32    // Default camera angle Y (for reset)
}

// ModelData holds the normalized model and its GPU resources
type ModelData struct {
	result      *normalize.Result
	report      *analysis.Report
	generation  uint64 // Pipeline generation the mesh was built from
	mesh        rl.Mesh
	hasMesh     bool
	material    rl.Material
	baseColor   mesh.Color
	displaySize float32 // Largest extent after scaling, frames the camera
}

// ViewSettings holds display settings
type ViewSettings struct {
	showWireframe bool
	showFilled    bool
	showInfo      bool
}

// AnimationState holds the per-frame model transform
type AnimationState struct {
	spin    *transform.Spin
	distort transform.Distort
	time    float64 // Seconds since start, drives the distortion
	paused  bool
}

// InteractionState holds mouse state
type InteractionState struct {
	isPanning bool
}

// FileWatchState holds file watching state
type FileWatchState struct {
	fileWatcher  *watcher.FileWatcher
	watchedFiles []string
}

// UIState holds UI-related state
type UIState struct {
	font          rl.Font
	loadStartTime time.Time // When the current load was requested
}
