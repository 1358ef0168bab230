package cmd

import (
	"fmt"
	"os"

	"github.com/philipparndt/modelfit/internal/app"
	"github.com/philipparndt/modelfit/internal/config"
	"github.com/philipparndt/modelfit/internal/logx"
	"github.com/philipparndt/modelfit/pkg/loader"
	"github.com/philipparndt/modelfit/version"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	scale         float64
	rotationSpeed float64
	materialColor string
	targetSize    float64
	strategy      string
	watch         bool
	logLevel      string
	enableDistort bool
	distortAmount float64
	distortSpeed  float64
)

var rootCmd = &cobra.Command{
	Use:   "modelfit [source]",
	Short: "Spinning viewer for STL, PLY, glTF and OpenSCAD models",
	Long: `modelfit loads a 3D model, fits it to a fixed display size, centers it on the
origin and spins it. Sources can be local files, http(s) URLs or one of the
builtin samples (builtin:cube, builtin:cloud). Without a source the URL from
the config file is used.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version.GetFullVersion(),
	RunE: func(cmd *cobra.Command, args []string) error {
		display, err := resolveDisplay(cmd)
		if err != nil {
			return err
		}

		level, err := display.Level()
		if err != nil {
			return err
		}
		log := logx.Setup(level)

		source := display.URL
		if len(args) == 1 {
			source = args[0]
		}
		log.Debug("starting viewer", "source", source, "builtins", loader.Builtins())

		return app.Run(app.Options{
			Source:  source,
			Display: display,
			Logger:  log,
		})
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.Float64VarP(&scale, "scale", "s", 1, "Display scale multiplier")
	flags.Float64VarP(&rotationSpeed, "rotation-speed", "r", 0, "Spin speed in radians per second")
	flags.StringVar(&materialColor, "color", "orange", "Material color (name or #rrggbb)")
	flags.Float64Var(&targetSize, "target-size", 0, "Size the largest dimension is fitted to")
	flags.StringVar(&strategy, "strategy", "native", "Recenter strategy (native or per-vertex)")
	flags.BoolVarP(&watch, "watch", "w", false, "Reload when the source file changes")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&enableDistort, "distort", false, "Enable the squash and stretch material")
	flags.Float64Var(&distortAmount, "distort-amount", 0.4, "Squash and stretch amplitude")
	flags.Float64Var(&distortSpeed, "distort-speed", 2, "Squash and stretch frequency")
}

// resolveDisplay loads the config file and applies every flag the user set
func resolveDisplay(cmd *cobra.Command) (config.Display, error) {
	display, err := config.Load(configPath)
	if err != nil {
		return display, err
	}

	flags := cmd.Flags()
	if flags.Changed("scale") {
		display.Scale = scale
	}
	if flags.Changed("rotation-speed") {
		display.RotationSpeed = rotationSpeed
	}
	if flags.Changed("color") {
		display.Color = materialColor
	}
	if flags.Changed("target-size") {
		display.TargetSize = targetSize
	}
	if flags.Changed("strategy") {
		display.RecenterStrategy = strategy
	}
	if flags.Changed("watch") {
		display.Watch = watch
	}
	if flags.Changed("log-level") {
		display.LogLevel = logLevel
	}
	if flags.Changed("distort") {
		display.EnableDistort = enableDistort
	}
	if flags.Changed("distort-amount") {
		display.Distort = distortAmount
	}
	if flags.Changed("distort-speed") {
		display.Speed = distortSpeed
	}

	return display, display.Validate()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
