package main

import (
	"fmt"
	"io"

	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [source]",
	Short: "Display general information about a model",
	Long:  "Show dimensions, vertex and triangle counts, surface area, attributes and edge statistics of the decoded geometry.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := loadSource(cmd, args[0])
		if err != nil {
			return err
		}
		printInfo(cmd.OutOrStdout(), args[0], analysis.Analyze(buf))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(out io.Writer, source string, report *analysis.Report) {
	fmt.Fprintln(out, "Model Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "Source: %s\n\n", source)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Vertices: %d\n", report.VertexCount)
	fmt.Fprintf(out, "  Triangles: %d\n", report.TriangleCount)
	if report.DegenerateTriangles > 0 {
		fmt.Fprintf(out, "  Degenerate triangles: %d\n", report.DegenerateTriangles)
	}
	fmt.Fprintf(out, "  Edges: %d\n", report.EdgeCount)
	fmt.Fprintf(out, "  Vertex colors: %s\n", yesNo(report.HasColors))
	fmt.Fprintf(out, "  Vertex normals: %s\n", yesNo(report.HasNormals))
	fmt.Fprintf(out, "  Surface Area: %s\n\n", analysis.FormatMeasurement(report.SurfaceArea, "square units"))

	if report.VertexCount == 0 {
		return
	}

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(report.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(report.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(report.BoundingBox.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %.6f units\n", report.Dimensions.X)
	fmt.Fprintf(out, "  Height (Y): %.6f units\n", report.Dimensions.Y)
	fmt.Fprintf(out, "  Depth (Z): %.6f units\n", report.Dimensions.Z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n", report.BoundingBox.Diagonal())
	fmt.Fprintf(out, "  Volume: %.6f cubic units\n", report.Volume)

	if report.EdgeCount == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", report.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", report.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n", report.AvgEdgeLength)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
