// Package normalize prepares decoded vertex data for display: it measures the
// bounding volume, derives an auto-fit scale, recenters the positions at the
// origin, classifies the topology and synthesizes normals where they can be
// derived.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

var (
	// ErrStepFailed marks a normalization step that could not complete
	ErrStepFailed = errors.New("normalization step failed")

	// ErrNonFinitePosition is returned when a position contains NaN or Inf
	ErrNonFinitePosition = errors.New("non-finite position")
)

// Step names reported in diagnostics
const (
	StepValidate = "validate"
	StepBounds   = "bounds"
	StepScale    = "scale"
	StepRecenter = "recenter"
	StepClassify = "classify"
	StepNormals  = "normals"
)

// Kind classifies a Diagnostic
type Kind int

const (
	// KindDegenerate is informational: empty or zero-extent geometry handled by a fallback
	KindDegenerate Kind = iota
	// KindMalformed reports an attribute that was dropped while the rest of the buffer was kept
	KindMalformed
	// KindStepFailure reports a step error that forced the un-normalized fallback
	KindStepFailure
)

func (k Kind) String() string {
	switch k {
	case KindDegenerate:
		return "degenerate"
	case KindMalformed:
		return "malformed"
	case KindStepFailure:
		return "step-failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is one non-fatal observation made while normalizing
type Diagnostic struct {
	Kind    Kind
	Step    string
	Message string
	Err     error
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", d.Kind, d.Step, d.Message, d.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Step, d.Message)
}

// StepError wraps the failure of a single step
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures a normalization pass
type Options struct {
	// TargetSize is the on-screen size the largest dimension is fitted to.
	// Zero means DefaultTargetSize.
	TargetSize float64
	Strategy   Strategy
	Logger     *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Result is the normalized geometry plus everything the presentation layer
// needs to draw it. It must be treated as read-only once returned.
type Result struct {
	Buffer          *mesh.VertexBuffer
	ScaleFactor     float64
	RenderMode      RenderMode
	HasVertexColors bool

	// Bounds is measured before recentering, Center is the offset removed
	Bounds geometry.BoundingBox
	Center geometry.Vector3

	NormalsSynthesized bool
	FellBack           bool
	Diagnostics        []Diagnostic
}

// DisplayScale combines the derived scale with a user display multiplier
func (r *Result) DisplayScale(userScale float64) float64 {
	return r.ScaleFactor * userScale
}

// Err joins the errors of every failed step, or returns nil
func (r *Result) Err() error {
	var errs []error
	for _, d := range r.Diagnostics {
		if d.Kind == KindStepFailure {
			errs = append(errs, d.Err)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the diagnostics that are not purely informational
func (r *Result) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind != KindDegenerate {
			out = append(out, d)
		}
	}
	return out
}

// normalizer carries the state of one pass
type normalizer struct {
	opts   Options
	log    *slog.Logger
	buf    *mesh.VertexBuffer
	result *Result

	// snapshot of the input taken before any step mutates the buffer
	original []geometry.Vector3
}

// Normalize runs bounds, scale, recenter, classification and normal
// synthesis on buf, in that order, and returns exactly one Result. The buffer
// is modified in place and owned by the Result afterwards; a nil buffer is
// treated as empty.
//
// Normalize never panics. Malformed colors or normals are dropped with a
// diagnostic. If any step fails, the Result falls back to the input positions
// with a scale of 1 and no synthesized normals, and FellBack is set.
func Normalize(buf *mesh.VertexBuffer, opts Options) *Result {
	if buf == nil {
		buf = &mesh.VertexBuffer{}
	}
	n := &normalizer{
		opts:     opts,
		log:      opts.logger(),
		buf:      buf,
		original: slices.Clone(buf.Positions),
		result: &Result{
			Buffer:      buf,
			ScaleFactor: 1.0,
			Bounds:      geometry.NewBoundingBox(),
		},
	}
	n.run()
	return n.result
}

func (n *normalizer) run() {
	n.dropMalformedAttributes()

	bounds, err := runStep(StepBounds, n.bounds)
	if err != nil {
		n.fallback(err)
		return
	}
	n.result.Bounds = bounds
	if bounds.IsEmpty() {
		n.note(StepBounds, "buffer has no vertices")
	} else if bounds.MaxDimension() == 0 {
		n.note(StepBounds, "all vertices coincide")
	}

	// Scale and recenter both only read the bounds
	scale, err := runStep(StepScale, func() (float64, error) {
		return AutoFitScale(bounds.Size(), n.opts.TargetSize), nil
	})
	if err != nil {
		n.fallback(err)
		return
	}

	center := bounds.Center()
	if _, err := runStep(StepRecenter, func() (struct{}, error) {
		Recenter(n.buf, center, n.opts.Strategy)
		return struct{}{}, n.checkFinite()
	}); err != nil {
		n.fallback(err)
		return
	}

	mode, err := runStep(StepClassify, n.classify)
	if err != nil {
		n.fallback(err)
		return
	}

	synthesized := false
	if mode == Surface {
		synthesized, err = runStep(StepNormals, func() (bool, error) {
			return SynthesizeNormals(n.buf), nil
		})
		if err != nil {
			n.fallback(err)
			return
		}
	}

	n.result.ScaleFactor = scale
	n.result.Center = center
	n.result.RenderMode = mode
	n.result.NormalsSynthesized = synthesized
	n.result.HasVertexColors = n.buf.HasColors()
}

// dropMalformedAttributes removes per-vertex attributes whose length does not
// match the positions. The buffer stays usable without them.
func (n *normalizer) dropMalformedAttributes() {
	if err := n.buf.ValidateColors(); err != nil {
		n.buf.Colors = nil
		n.warn(KindMalformed, StepValidate, "dropped vertex colors", err)
	}
	if err := n.buf.ValidateNormals(); err != nil {
		n.buf.Normals = nil
		n.warn(KindMalformed, StepValidate, "dropped vertex normals", err)
	}
}

func (n *normalizer) bounds() (geometry.BoundingBox, error) {
	if err := n.checkFinite(); err != nil {
		return geometry.BoundingBox{}, err
	}
	return ComputeBounds(n.buf), nil
}

func (n *normalizer) checkFinite() error {
	for i, p := range n.buf.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("vertex %d: %w", i, ErrNonFinitePosition)
		}
	}
	return nil
}

func (n *normalizer) classify() (RenderMode, error) {
	if err := n.buf.ValidateIndices(); err != nil {
		return PointCloud, err
	}
	return Classify(n.buf), nil
}

// fallback restores the input positions and presents the buffer without any
// normalization. Connectivity that failed validation is not handed on.
func (n *normalizer) fallback(err error) {
	n.warn(KindStepFailure, stepOf(err), "presenting geometry un-normalized", err)

	n.buf.Positions = n.original
	if n.buf.ValidateIndices() != nil {
		n.buf.Indices = nil
	}

	n.result.ScaleFactor = 1.0
	n.result.Center = geometry.Vector3{}
	n.result.NormalsSynthesized = false
	n.result.FellBack = true
	n.result.RenderMode = Classify(n.buf)
	n.result.HasVertexColors = n.buf.HasColors()
}

func (n *normalizer) note(step, msg string) {
	n.result.Diagnostics = append(n.result.Diagnostics, Diagnostic{Kind: KindDegenerate, Step: step, Message: msg})
	n.log.Debug("degenerate geometry", "step", step, "detail", msg, "vertices", n.buf.VertexCount())
}

func (n *normalizer) warn(kind Kind, step, msg string, err error) {
	n.result.Diagnostics = append(n.result.Diagnostics, Diagnostic{Kind: kind, Step: step, Message: msg, Err: err})
	n.log.Warn(msg, "kind", kind.String(), "step", step, "error", err)
}

// runStep runs fn and converts both returned errors and panics into a
// *StepError wrapping ErrStepFailed.
func runStep[T any](step string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StepError{Step: step, Err: fmt.Errorf("%w: panic: %v", ErrStepFailed, r)}
		}
	}()

	out, err = fn()
	if err != nil {
		return out, &StepError{Step: step, Err: fmt.Errorf("%w: %w", ErrStepFailed, err)}
	}
	return out, nil
}

func stepOf(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
