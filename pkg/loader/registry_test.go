package loader

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asciiTriangle = `solid tri
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid tri
`

const plyPoints = `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
end_header
0 0 0
1 1 1
`

var _ pipeline.Loader = (*Registry)(nil)

func quietRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)...)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadByExtension(t *testing.T) {
	r := quietRegistry()

	buf, err := r.Load(context.Background(), writeTemp(t, "tri.STL", asciiTriangle))
	require.NoError(t, err)
	assert.Equal(t, 1, buf.TriangleCount())

	buf, err = r.Load(context.Background(), writeTemp(t, "points.ply", plyPoints))
	require.NoError(t, err)
	assert.Equal(t, 2, buf.VertexCount())
	assert.False(t, buf.HasIndices())
}

func TestLoadUnsupported(t *testing.T) {
	r := quietRegistry()

	_, err := r.Load(context.Background(), "model.obj")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, r.Supports("model.obj"))
	assert.True(t, r.Supports("model.glb"))
	assert.True(t, r.Supports("https://example.com/model.ply?raw=1"))
}

func TestLoadDecodeError(t *testing.T) {
	r := quietRegistry()
	path := writeTemp(t, "broken.ply", "not a ply\n")

	_, err := r.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestBuiltins(t *testing.T) {
	r := quietRegistry()
	assert.Equal(t, []string{"builtin:cloud", "builtin:cube"}, Builtins())

	cube, err := r.Load(context.Background(), "builtin:cube")
	require.NoError(t, err)
	assert.Equal(t, 12, cube.TriangleCount())

	cloud, err := r.Load(context.Background(), "builtin:cloud")
	require.NoError(t, err)
	assert.True(t, cloud.HasColors())
	assert.False(t, cloud.HasIndices())

	_, err = r.Load(context.Background(), "builtin:teapot")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, r.Supports("builtin:teapot"))
}

func TestRegisterCustomDecoder(t *testing.T) {
	r := quietRegistry()
	r.Register("XYZ", func(_ context.Context, _ string) (*mesh.VertexBuffer, error) {
		return mesh.UnitCube(), nil
	})

	assert.Contains(t, r.Extensions(), ".xyz")
	buf, err := r.Load(context.Background(), "anything.xyz")
	require.NoError(t, err)
	assert.Equal(t, 8, buf.VertexCount())
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/tri.stl":
			_, _ = io.WriteString(w, asciiTriangle)
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	r := quietRegistry(WithHTTPClient(srv.Client()))

	buf, err := r.Load(context.Background(), srv.URL+"/tri.stl?version=2")
	require.NoError(t, err)
	assert.Equal(t, 3, buf.VertexCount())

	_, err = r.Load(context.Background(), srv.URL+"/missing.stl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadRemoteCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-req.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietRegistry(WithHTTPClient(srv.Client())).Load(ctx, srv.URL+"/slow.stl")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryDrivesPipeline(t *testing.T) {
	p := pipeline.New(quietRegistry(), pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	p.Request(context.Background(), writeTemp(t, "tri.stl", asciiTriangle))

	snap, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StateReady, snap.State)
	assert.True(t, snap.Result.NormalsSynthesized)
}

func TestWatchList(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.scad")
	require.NoError(t, os.WriteFile(main, []byte("include <part.scad>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.scad"), []byte("cube(1);\n"), 0o644))

	files, err := WatchList(main, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{main, filepath.Join(dir, "part.scad")}, files)

	stlFile := writeTemp(t, "tri.stl", asciiTriangle)
	files, err = WatchList(stlFile, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{stlFile}, files)

	files, err = WatchList("https://example.com/a.stl", nil)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = WatchList("builtin:cube", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
