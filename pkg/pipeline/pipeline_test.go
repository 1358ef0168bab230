package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func staticLoader(buffers map[string]*mesh.VertexBuffer) Loader {
	return LoaderFunc(func(ctx context.Context, source string) (*mesh.VertexBuffer, error) {
		buf, ok := buffers[source]
		if !ok {
			return nil, errors.New("not found: " + source)
		}
		return buf.Clone(), nil
	})
}

// gatedLoader blocks each source until release is called for it
type gatedLoader struct {
	mu    sync.Mutex
	gates map[string]chan *mesh.VertexBuffer
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{gates: make(map[string]chan *mesh.VertexBuffer)}
}

func (g *gatedLoader) gate(source string) chan *mesh.VertexBuffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[source]
	if !ok {
		ch = make(chan *mesh.VertexBuffer, 1)
		g.gates[source] = ch
	}
	return ch
}

func (g *gatedLoader) Load(ctx context.Context, source string) (*mesh.VertexBuffer, error) {
	select {
	case buf := <-g.gate(source):
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedLoader) release(source string, buf *mesh.VertexBuffer) {
	g.gate(source) <- buf
}

func waitSettled(t *testing.T, p *Pipeline) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := p.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func TestNewPipelineIsEmpty(t *testing.T) {
	p := New(nil, WithLogger(quiet))
	snap := p.Snapshot()

	assert.Equal(t, StateEmpty, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, snap, waitSettled(t, p))
}

func TestRequestReady(t *testing.T) {
	p := New(staticLoader(map[string]*mesh.VertexBuffer{"cube": mesh.UnitCube()}), WithLogger(quiet))

	gen := p.Request(context.Background(), "cube")
	snap := waitSettled(t, p)

	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "cube", snap.Source)
	assert.Equal(t, gen, snap.Generation)
	assert.NoError(t, snap.Err)
	require.NotNil(t, snap.Result)
	assert.Equal(t, normalize.Surface, snap.Result.RenderMode)
	assert.Equal(t, 2.0, snap.Result.ScaleFactor)
	assert.Len(t, snap.Result.Buffer.Normals, 8)
}

func TestRequestFailure(t *testing.T) {
	p := New(staticLoader(nil), WithLogger(quiet))

	p.Request(context.Background(), "missing")
	snap := waitSettled(t, p)

	assert.Equal(t, StateFailed, snap.State)
	assert.Nil(t, snap.Result)
	assert.ErrorContains(t, snap.Err, "not found")
}

func TestLoaderPanicFails(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, source string) (*mesh.VertexBuffer, error) {
		panic("makeslice: len out of range")
	})
	p := New(loader, WithLogger(quiet))

	p.Request(context.Background(), "broken.ply")
	snap := waitSettled(t, p)

	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "broken.ply", snap.Source)
	assert.Nil(t, snap.Result)
	assert.ErrorIs(t, snap.Err, ErrLoaderPanic)
	assert.ErrorContains(t, snap.Err, "makeslice")
}

func TestNilBufferFails(t *testing.T) {
	p := New(nil, WithLogger(quiet))

	gen := p.Begin("nothing")
	assert.True(t, p.Complete(gen, nil, nil))

	snap := p.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.ErrorIs(t, snap.Err, ErrNoBuffer)
}

func TestFailureDiscardsPreviousResult(t *testing.T) {
	p := New(staticLoader(map[string]*mesh.VertexBuffer{"cube": mesh.UnitCube()}), WithLogger(quiet))

	p.Request(context.Background(), "cube")
	require.Equal(t, StateReady, waitSettled(t, p).State)

	p.Request(context.Background(), "broken")
	snap := waitSettled(t, p)
	assert.Equal(t, StateFailed, snap.State)
	assert.Nil(t, snap.Result)
}

func TestLastRequestWins(t *testing.T) {
	x := mesh.UnitCube()
	y := mesh.Cloud(500, 1, geometry.NewVector3(3, 3, 3), 4)

	p := New(nil, WithLogger(quiet))
	genX := p.Begin("x")
	genY := p.Begin("y")
	require.NotEqual(t, genX, genY)

	assert.True(t, p.Complete(genY, y, nil))
	assert.False(t, p.Complete(genX, x, nil))

	snap := p.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "y", snap.Source)
	assert.Equal(t, genY, snap.Generation)
	assert.Same(t, y, snap.Result.Buffer)
	assert.Equal(t, normalize.PointCloud, snap.Result.RenderMode)
	assert.True(t, snap.Result.HasVertexColors)
	assert.Nil(t, snap.Result.Buffer.Normals)
	assert.Nil(t, snap.Result.Buffer.Indices)
}

func TestStaleCompletionWhileNewerLoads(t *testing.T) {
	p := New(nil, WithLogger(quiet))
	genX := p.Begin("x")
	genY := p.Begin("y")

	assert.False(t, p.Complete(genX, mesh.UnitCube(), nil))
	snap := p.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Equal(t, "y", snap.Source)
	assert.Nil(t, snap.Result)

	assert.True(t, p.Complete(genY, mesh.UnitCube(), nil))
	assert.Equal(t, StateReady, p.Snapshot().State)
}

func TestSuccessiveLoadsWithLoader(t *testing.T) {
	loader := newGatedLoader()
	p := New(loader, WithLogger(quiet))

	p.Request(context.Background(), "x")
	genY := p.Request(context.Background(), "y")

	// x was superseded, so its context is canceled and it never becomes current
	loader.release("y", mesh.Cloud(10, 2, geometry.Vector3{}, 1))
	snap := waitSettled(t, p)

	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "y", snap.Source)
	assert.Equal(t, genY, snap.Generation)
	assert.Equal(t, 10, snap.Result.Buffer.VertexCount())

	loader.release("x", mesh.UnitCube())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, snap, p.Snapshot())
}

func TestOnChangeSeesEveryState(t *testing.T) {
	var states []State
	p := New(nil, WithLogger(quiet), WithOnChange(func(s Snapshot) {
		states = append(states, s.State)
	}))

	gen := p.Begin("cube")
	p.Complete(gen, mesh.UnitCube(), nil)
	p.Clear()

	assert.Equal(t, []State{StateLoading, StateNormalizing, StateReady, StateEmpty}, states)
}

func TestClearSupersedesLoad(t *testing.T) {
	p := New(nil, WithLogger(quiet))
	gen := p.Begin("cube")
	p.Clear()

	assert.False(t, p.Complete(gen, mesh.UnitCube(), nil))
	assert.Equal(t, StateEmpty, p.Snapshot().State)
}

func TestReload(t *testing.T) {
	p := New(staticLoader(map[string]*mesh.VertexBuffer{"cube": mesh.UnitCube()}), WithLogger(quiet))

	_, ok := p.Reload(context.Background())
	assert.False(t, ok)

	first := p.Request(context.Background(), "cube")
	waitSettled(t, p)

	second, ok := p.Reload(context.Background())
	require.True(t, ok)
	assert.Greater(t, second, first)

	snap := waitSettled(t, p)
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, second, snap.Generation)
}

func TestMalformedBufferStillReady(t *testing.T) {
	buf := mesh.UnitCube()
	buf.Colors = make([]mesh.Color, 2)

	p := New(nil, WithLogger(quiet))
	gen := p.Begin("broken-colors")
	p.Complete(gen, buf, nil)

	snap := p.Snapshot()
	require.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Result.HasVertexColors)
	assert.NotEmpty(t, snap.Result.Warnings())
}

func TestWaitHonorsContext(t *testing.T) {
	p := New(newGatedLoader(), WithLogger(quiet))
	p.Request(context.Background(), "never")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snap, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateLoading, snap.State)
	p.Clear()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "READY", StateReady.String())
	assert.True(t, StateFailed.Settled())
	assert.False(t, StateNormalizing.Settled())
}
