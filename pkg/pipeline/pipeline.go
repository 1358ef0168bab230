// Package pipeline tracks the asset currently shown: it starts loads, runs
// the normalization exactly once per decoded buffer and makes sure only the
// most recently requested source ever becomes current.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
)

// ErrNoBuffer is reported when a loader succeeds without producing geometry
var ErrNoBuffer = errors.New("loader returned no vertex buffer")

// ErrLoaderPanic is reported when a loader panics while decoding a source
var ErrLoaderPanic = errors.New("loader panicked")

// State is the lifecycle state of the current asset
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateNormalizing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateLoading:
		return "LOADING"
	case StateNormalizing:
		return "NORMALIZING"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Settled reports whether no load is in flight
func (s State) Settled() bool {
	return s == StateEmpty || s == StateReady || s == StateFailed
}

// Loader decodes a source reference into vertex data
type Loader interface {
	Load(ctx context.Context, source string) (*mesh.VertexBuffer, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, source string) (*mesh.VertexBuffer, error)

// Load calls f(ctx, source)
func (f LoaderFunc) Load(ctx context.Context, source string) (*mesh.VertexBuffer, error) {
	return f(ctx, source)
}

// Snapshot is a consistent view of the pipeline. Result is only set in
// StateReady and Err only in StateFailed. The Result is shared and must not
// be modified.
type Snapshot struct {
	State      State
	Source     string
	Generation uint64
	Result     *normalize.Result
	Err        error
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithNormalizeOptions sets the options used for every normalization pass
func WithNormalizeOptions(opts normalize.Options) Option {
	return func(p *Pipeline) {
		p.opts = opts
	}
}

// WithLogger sets the logger for load events
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithOnChange registers a callback invoked on every state transition. It
// runs while the pipeline is locked and must not call back into it.
func WithOnChange(fn func(Snapshot)) Option {
	return func(p *Pipeline) {
		p.onChange = fn
	}
}

// Pipeline owns the current asset and its normalization result
type Pipeline struct {
	loader   Loader
	opts     normalize.Options
	log      *slog.Logger
	onChange func(Snapshot)

	mu      sync.Mutex
	gen     uint64
	snap    Snapshot
	cancel  context.CancelFunc
	settled chan struct{}
	closed  bool
}

// New creates an empty pipeline
func New(loader Loader, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:  loader,
		log:     slog.Default(),
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.opts.Logger == nil {
		p.opts.Logger = p.log
	}
	p.wake()
	return p
}

// Snapshot returns the current state
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Request starts loading source in the background and returns the
// generation of the request. Any previous result is discarded and any load
// still in flight is superseded; its completion will be ignored.
func (p *Pipeline) Request(ctx context.Context, source string) uint64 {
	if p.loader == nil {
		panic("pipeline: Request without a loader")
	}
	loadCtx, cancel := context.WithCancel(ctx)
	gen := p.begin(source, cancel)

	go func() {
		defer cancel()
		buf, err := p.load(loadCtx, source)
		p.Complete(gen, buf, err)
	}()

	return gen
}

func (p *Pipeline) load(ctx context.Context, source string) (buf *mesh.VertexBuffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return p.loader.Load(ctx, source)
}

// Reload requests the current source again. It returns false when nothing
// has been requested yet.
func (p *Pipeline) Reload(ctx context.Context) (uint64, bool) {
	p.mu.Lock()
	source := p.snap.Source
	p.mu.Unlock()

	if source == "" {
		return 0, false
	}
	return p.Request(ctx, source), true
}

// Begin marks source as loading without starting a loader. The caller
// delivers the decoded buffer later through Complete with the returned
// generation.
func (p *Pipeline) Begin(source string) uint64 {
	return p.begin(source, nil)
}

func (p *Pipeline) begin(source string, cancel context.CancelFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.gen++

	// wake waiters of the superseded request so they re-check
	p.wake()
	p.settled = make(chan struct{})
	p.closed = false

	p.set(Snapshot{State: StateLoading, Source: source, Generation: p.gen})
	p.log.Info("loading model", "source", source, "generation", p.gen)
	return p.gen
}

// Complete delivers the outcome of a load. Completions for anything but the
// latest request are dropped and Complete returns false. A successful
// completion is normalized synchronously before the result is published.
func (p *Pipeline) Complete(gen uint64, buf *mesh.VertexBuffer, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.snap.State != StateLoading {
		p.log.Debug("discarding superseded load", "generation", gen, "current", p.gen)
		return false
	}
	source := p.snap.Source
	p.cancel = nil

	if err == nil && buf == nil {
		err = ErrNoBuffer
	}
	if err != nil {
		p.log.Error("failed to load model", "source", source, "error", err)
		p.set(Snapshot{State: StateFailed, Source: source, Generation: gen, Err: err})
		p.wake()
		return true
	}

	p.set(Snapshot{State: StateNormalizing, Source: source, Generation: gen})
	result := normalize.Normalize(buf, p.opts)

	p.log.Info("model ready",
		"source", source,
		"mode", result.RenderMode.String(),
		"vertices", result.Buffer.VertexCount(),
		"triangles", result.Buffer.TriangleCount(),
		"scale", result.ScaleFactor,
		"fallback", result.FellBack,
	)
	p.set(Snapshot{State: StateReady, Source: source, Generation: gen, Result: result})
	p.wake()
	return true
}

// Clear drops the current asset and supersedes any load in flight
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.set(Snapshot{State: StateEmpty, Generation: p.gen})
	p.wake()
}

// Wait blocks until the latest request has settled or ctx is done
func (p *Pipeline) Wait(ctx context.Context) (Snapshot, error) {
	for {
		p.mu.Lock()
		snap := p.snap
		ch := p.settled
		p.mu.Unlock()

		if snap.State.Settled() {
			return snap, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

func (p *Pipeline) set(snap Snapshot) {
	p.snap = snap
	if p.onChange != nil {
		p.onChange(snap)
	}
}

func (p *Pipeline) wake() {
	if !p.closed {
		close(p.settled)
		p.closed = true
	}
}
