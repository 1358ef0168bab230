// Package config holds the display settings of the viewers. Settings are
// read from a TOML file and may be overridden by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"golang.org/x/image/colornames"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Display is the configuration surface consumed by the viewers
type Display struct {
	URL              string  `toml:"url"`
	Scale            float64 `toml:"scale"`
	RotationSpeed    float64 `toml:"rotation_speed"`
	Color            string  `toml:"color"`
	EnableDistort    bool    `toml:"enable_distort"`
	Distort          float64 `toml:"distort"`
	Speed            float64 `toml:"speed"`
	TargetSize       float64 `toml:"target_size"`
	RecenterStrategy string  `toml:"recenter_strategy"`
	Watch            bool    `toml:"watch"`
	LogLevel         string  `toml:"log_level"`
}

// Default returns the built-in settings
func Default() Display {
	return Display{
		Scale:            1,
		RotationSpeed:    0,
		Color:            "orange",
		EnableDistort:    false,
		Distort:          0.4,
		Speed:            2,
		TargetSize:       normalize.DefaultTargetSize,
		RecenterStrategy: normalize.StrategyNative.String(),
		LogLevel:         "info",
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults; unknown keys are rejected.
func Load(path string) (Display, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("failed to parse %s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Save writes cfg as TOML
func Save(path string, cfg Display) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks ranges and enumerations
func (d Display) Validate() error {
	var errs []error
	if !(d.Scale > 0) || math.IsInf(d.Scale, 0) {
		errs = append(errs, fmt.Errorf("%w: scale must be positive, got %v", ErrInvalid, d.Scale))
	}
	if math.IsNaN(d.RotationSpeed) || math.IsInf(d.RotationSpeed, 0) {
		errs = append(errs, fmt.Errorf("%w: rotation_speed must be finite", ErrInvalid))
	}
	if !(d.TargetSize > 0) || math.IsInf(d.TargetSize, 0) {
		errs = append(errs, fmt.Errorf("%w: target_size must be positive, got %v", ErrInvalid, d.TargetSize))
	}
	if d.Distort < 0 || math.IsNaN(d.Distort) {
		errs = append(errs, fmt.Errorf("%w: distort must not be negative", ErrInvalid))
	}
	if _, err := d.Strategy(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if _, err := d.RGBA(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if _, err := d.Level(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Strategy parses RecenterStrategy
func (d Display) Strategy() (normalize.Strategy, error) {
	return normalize.ParseStrategy(d.RecenterStrategy)
}

// NormalizeOptions maps the settings onto normalization options
func (d Display) NormalizeOptions() normalize.Options {
	strategy, _ := d.Strategy()
	return normalize.Options{TargetSize: d.TargetSize, Strategy: strategy}
}

// RGBA resolves Color. Accepted are SVG color names and #rgb / #rrggbb /
// #rrggbbaa hex notation.
func (d Display) RGBA() (color.RGBA, error) {
	return ParseColor(d.Color)
}

// Level parses LogLevel
func (d Display) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(d.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", d.LogLevel)
	}
	return level, nil
}

// ParseColor resolves a color name or hex string
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(name, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
