package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/philipparndt/modelfit/internal/logx"
	"github.com/philipparndt/modelfit/pkg/loader"
	"github.com/philipparndt/modelfit/pkg/mesh"
	"github.com/philipparndt/modelfit/version"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	registry = loader.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "modelfit-cli",
	Short: "Inspect and normalize 3D models from the command line",
	Long: `modelfit-cli decodes STL, PLY, glTF and OpenSCAD sources and reports on the
geometry before and after normalization. Every command accepts a local file,
an http(s) URL or a builtin sample such as builtin:cube.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		log := logx.SetupWriter(cmd.ErrOrStderr(), level)
		registry = loader.NewRegistry(loader.WithLogger(log))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// loadSource decodes source into raw vertex data
func loadSource(cmd *cobra.Command, source string) (*mesh.VertexBuffer, error) {
	return registry.Load(cmd.Context(), source)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
