package config

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1.0, cfg.Scale)
	assert.Equal(t, 0.0, cfg.RotationSpeed)
	assert.Equal(t, "orange", cfg.Color)
	assert.False(t, cfg.EnableDistort)
	assert.Equal(t, 0.4, cfg.Distort)
	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, 2.0, cfg.TargetSize)
	require.NoError(t, cfg.Validate())

	c, err := cfg.RGBA()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}, c)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelfit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
url = "builtin:cube"
rotation_speed = -0.5
color = "#336699"
recenter_strategy = "per-vertex"
log_level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "builtin:cube", cfg.URL)
	assert.Equal(t, -0.5, cfg.RotationSpeed)
	assert.Equal(t, 1.0, cfg.Scale)
	assert.Equal(t, 0.4, cfg.Distort)

	strategy, err := cfg.Strategy()
	require.NoError(t, err)
	assert.Equal(t, normalize.StrategyPerVertex, strategy)
	assert.Equal(t, normalize.StrategyPerVertex, cfg.NormalizeOptions().Strategy)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelfit.toml")
	require.NoError(t, os.WriteFile(path, []byte("colour = \"red\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelfit.toml")
	require.NoError(t, os.WriteFile(path, []byte("scale = -1.0\ncolor = \"notacolor\"\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "scale")
	assert.Contains(t, err.Error(), "notacolor")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelfit.toml")
	cfg := Default()
	cfg.URL = "model.ply"
	cfg.Watch = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"orange", color.RGBA{0xff, 0xa5, 0x00, 0xff}, true},
		{"  SteelBlue ", color.RGBA{0x46, 0x82, 0xb4, 0xff}, true},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#102030", color.RGBA{0x10, 0x20, 0x30, 0xff}, true},
		{"#10203040", color.RGBA{0x10, 0x20, 0x30, 0x40}, true},
		{"#12345", color.RGBA{}, false},
		{"#zzzzzz", color.RGBA{}, false},
		{"blurple", color.RGBA{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
