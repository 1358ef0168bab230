package main

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/philipparndt/modelfit/pkg/analysis"
	"github.com/spf13/cobra"
)

var (
	triCount    int
	triLargest  bool
	triSmallest bool
)

type triangleInfo struct {
	Index     int
	Area      float64
	Perimeter float64
	Vertices  string
}

var trianglesCmd = &cobra.Command{
	Use:   "triangles [source]",
	Short: "Analyze triangles of a model",
	Long:  "Display information about triangles including area, perimeter, and vertex positions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriangles,
}

func init() {
	rootCmd.AddCommand(trianglesCmd)

	trianglesCmd.Flags().IntVarP(&triCount, "count", "n", 10, "Number of triangles to display")
	trianglesCmd.Flags().BoolVarP(&triLargest, "largest", "l", false, "Show largest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triSmallest, "smallest", "s", false, "Show smallest triangles by area")
	trianglesCmd.MarkFlagsMutuallyExclusive("largest", "smallest")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	buf, err := loadSource(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if err := buf.ValidateIndices(); err != nil {
		return err
	}
	if !buf.HasIndices() {
		fmt.Fprintln(out, "Model has no triangles (point cloud).")
		return nil
	}

	triangles := make([]triangleInfo, 0, buf.TriangleCount())
	totalArea := 0.0
	for i := range buf.Indices {
		tri := buf.Triangle(i)
		area := tri.Area()
		triangles = append(triangles, triangleInfo{
			Index:     i,
			Area:      area,
			Perimeter: tri.Perimeter(),
			Vertices: fmt.Sprintf("%s, %s, %s",
				analysis.FormatVector(tri.V1),
				analysis.FormatVector(tri.V2),
				analysis.FormatVector(tri.V3)),
		})
		totalArea += area
	}

	byArea := func(a, b triangleInfo) int { return cmp.Compare(a.Area, b.Area) }
	minTri := slices.MinFunc(triangles, byArea)
	maxTri := slices.MaxFunc(triangles, byArea)

	title := fmt.Sprintf("First %d Triangles", min(triCount, len(triangles)))
	switch {
	case triLargest:
		slices.SortStableFunc(triangles, func(a, b triangleInfo) int { return byArea(b, a) })
		title = fmt.Sprintf("Top %d Largest Triangles", min(triCount, len(triangles)))
	case triSmallest:
		slices.SortStableFunc(triangles, byArea)
		title = fmt.Sprintf("Top %d Smallest Triangles", min(triCount, len(triangles)))
	}

	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total triangles: %d\n", len(triangles))
	fmt.Fprintf(out, "Total surface area: %.6f square units\n", totalArea)
	fmt.Fprintf(out, "Min triangle area: %.6f square units\n", minTri.Area)
	fmt.Fprintf(out, "Max triangle area: %.6f square units\n", maxTri.Area)
	fmt.Fprintf(out, "Avg triangle area: %.6f square units\n\n", totalArea/float64(len(triangles)))

	for _, tri := range triangles[:min(triCount, len(triangles))] {
		fmt.Fprintf(out, "Triangle #%d:\n", tri.Index)
		fmt.Fprintf(out, "  Area: %.6f square units\n", tri.Area)
		fmt.Fprintf(out, "  Perimeter: %.6f units\n", tri.Perimeter)
		fmt.Fprintf(out, "  Vertices: %s\n\n", tri.Vertices)
	}
	return nil
}
