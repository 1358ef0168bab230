// Package loader maps source references to format decoders. It implements
// pipeline.Loader for local files, http(s) URLs and builtin sample models.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/pkg/openscad"
	"github.com/philipparndt/modelfit/pkg/ply"
	"github.com/philipparndt/modelfit/pkg/scene"
	"github.com/philipparndt/modelfit/pkg/stl"
)

// ErrUnsupported is returned for sources without a registered decoder
var ErrUnsupported = errors.New("unsupported model format")

// BuiltinPrefix marks procedurally generated sample models
const BuiltinPrefix = "builtin:"

// Decoder reads the model stored at a local path
type Decoder func(ctx context.Context, file string) (*mesh.VertexBuffer, error)

// Registry dispatches sources by file extension
type Registry struct {
	decoders map[string]Decoder
	client   *http.Client
	log      *slog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithHTTPClient sets the client used for remote sources
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		r.client = client
	}
}

// WithLogger sets the registry logger
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// NewRegistry returns a registry with the STL, PLY, glTF and OpenSCAD
// decoders installed
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		decoders: make(map[string]Decoder),
		client:   &http.Client{Timeout: 2 * time.Minute},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Register(".stl", decodeSTL)
	r.Register(".ply", func(_ context.Context, file string) (*mesh.VertexBuffer, error) {
		return ply.Load(file)
	})
	gltfDecoder := func(_ context.Context, file string) (*mesh.VertexBuffer, error) {
		return scene.Load(file)
	}
	r.Register(".gltf", gltfDecoder)
	r.Register(".glb", gltfDecoder)
	r.Register(".scad", r.decodeSCAD)
	return r
}

// Register installs d for ext, replacing any previous decoder
func (r *Registry) Register(ext string, d Decoder) {
	r.decoders[normalizeExt(ext)] = d
}

// Extensions lists the registered extensions in order
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether source can be loaded
func (r *Registry) Supports(source string) bool {
	if strings.HasPrefix(source, BuiltinPrefix) {
		_, ok := builtins[strings.TrimPrefix(source, BuiltinPrefix)]
		return ok
	}
	_, ok := r.decoders[sourceExt(source)]
	return ok
}

// Load implements pipeline.Loader
func (r *Registry) Load(ctx context.Context, source string) (*mesh.VertexBuffer, error) {
	if name, ok := strings.CutPrefix(source, BuiltinPrefix); ok {
		build, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown builtin model %q", ErrUnsupported, name)
		}
		return build(), nil
	}

	ext := sourceExt(source)
	decode, ok := r.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, source, strings.Join(r.Extensions(), ", "))
	}

	local := source
	if IsRemote(source) {
		tmp, err := r.fetch(ctx, source, ext)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		local = tmp
	}

	start := time.Now()
	buf, err := decode(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	r.log.Debug("decoded model",
		"source", source,
		"vertices", buf.VertexCount(),
		"triangles", buf.TriangleCount(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return buf, nil
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (r *Registry) fetch(ctx context.Context, source, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url %s: %w", source, err)
	}

	r.log.Info("downloading model", "url", source)
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: %s", source, resp.Status)
	}

	tmp, err := os.CreateTemp("", "modelfit-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download %s: %w", source, err)
	}

	r.log.Debug("downloaded model", "url", source, "bytes", n)
	return tmp.Name(), nil
}

func decodeSTL(_ context.Context, file string) (*mesh.VertexBuffer, error) {
	model, err := stl.Parse(file)
	if err != nil {
		return nil, err
	}
	return model.ToBuffer(), nil
}

func (r *Registry) decodeSCAD(ctx context.Context, file string) (*mesh.VertexBuffer, error) {
	renderer := openscad.NewRenderer(filepath.Dir(file), r.log)
	stlPath, err := renderer.RenderTemp(ctx, file)
	if err != nil {
		return nil, err
	}
	defer os.Remove(stlPath)

	return decodeSTL(ctx, stlPath)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// sourceExt returns the lowercase extension, ignoring URL query strings
func sourceExt(source string) string {
	if IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(source))
}

var builtins = map[string]func() *mesh.VertexBuffer{
	"cube":  mesh.UnitCube,
	"cloud": sampleCloud,
}

func sampleCloud() *mesh.VertexBuffer {
	return mesh.Cloud(2000, 1, geometry.NewVector3(0, 0, 0), 1)
}

// Builtins lists the builtin model names
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, BuiltinPrefix+name)
	}
	sort.Strings(names)
	return names
}

// WatchList returns the local files whose change should reload source. For
// OpenSCAD models these are the model and everything it uses or includes.
// Remote and builtin sources have nothing to watch.
func WatchList(source string, log *slog.Logger) ([]string, error) {
	if IsRemote(source) || strings.HasPrefix(source, BuiltinPrefix) {
		return nil, nil
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", source, err)
	}
	if sourceExt(abs) != ".scad" {
		return []string{abs}, nil
	}

	deps, err := openscad.NewRenderer(filepath.Dir(abs), log).ResolveDependencies(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	return deps, nil
}
