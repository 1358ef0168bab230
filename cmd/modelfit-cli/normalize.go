package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/normalize"
	"github.com/philipparndt/modelfit/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	normTargetSize float64
	normStrategy   string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [source]",
	Short: "Run the normalization pipeline and report the result",
	Long: `Load a source through the same pipeline the viewers use and print the derived
scale, the bounds before and after recentering, the render mode and every
diagnostic raised on the way.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := normalize.ParseStrategy(normStrategy)
		if err != nil {
			return err
		}

		p := pipeline.New(registry,
			pipeline.WithNormalizeOptions(normalize.Options{TargetSize: normTargetSize, Strategy: strategy}),
			pipeline.WithLogger(slog.Default()),
		)
		p.Request(cmd.Context(), args[0])

		snap, err := p.Wait(cmd.Context())
		if err != nil {
			return err
		}
		if snap.State == pipeline.StateFailed {
			return snap.Err
		}

		printNormalized(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().Float64Var(&normTargetSize, "target-size", normalize.DefaultTargetSize, "Size the largest dimension is fitted to")
	normalizeCmd.Flags().StringVar(&normStrategy, "strategy", normalize.StrategyNative.String(), "Recenter strategy (native or per-vertex)")
}

func printNormalized(out io.Writer, snap pipeline.Snapshot) {
	result := snap.Result

	fmt.Fprintln(out, "Normalization Result")
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Source: %s\n", snap.Source)
	fmt.Fprintf(out, "State: %s\n", snap.State)
	fmt.Fprintf(out, "Render mode: %s\n", result.RenderMode)
	fmt.Fprintf(out, "Vertices: %d\n", result.Buffer.VertexCount())
	fmt.Fprintf(out, "Triangles: %d\n", result.Buffer.TriangleCount())
	fmt.Fprintf(out, "Vertex colors: %s\n", yesNo(result.HasVertexColors))
	fmt.Fprintf(out, "Normals synthesized: %s\n", yesNo(result.NormalsSynthesized))
	fmt.Fprintf(out, "Fell back: %s\n\n", yesNo(result.FellBack))

	fmt.Fprintf(out, "Scale factor: %.6f\n", result.ScaleFactor)
	fmt.Fprintf(out, "Center removed: %s\n\n", analysis.FormatVector(result.Center))

	if !result.Bounds.IsEmpty() {
		fmt.Fprintln(out, "Bounds before:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.Bounds.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.Bounds.Max))

		after := geometry.BoundsOf(result.Buffer.Positions)
		fmt.Fprintln(out, "Bounds after:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(after.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(after.Max))
		fmt.Fprintf(out, "Displayed size: %.6f\n", result.Bounds.MaxDimension()*result.ScaleFactor)
	}

	if len(result.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Diagnostics:")
	for _, d := range result.Diagnostics {
		fmt.Fprintf(out, "  %s\n", d)
	}
}
