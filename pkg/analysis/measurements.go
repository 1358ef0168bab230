// Package analysis computes descriptive statistics of decoded vertex data.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// EdgeInfo is one undirected edge of the triangle connectivity
type EdgeInfo struct {
	A, B       int
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// Report contains the measurements of a vertex buffer
type Report struct {
	BoundingBox         geometry.BoundingBox
	Dimensions          geometry.Vector3
	Volume              float64
	SurfaceArea         float64
	VertexCount         int
	TriangleCount       int
	DegenerateTriangles int
	HasColors           bool
	HasNormals          bool
	EdgeCount           int
	MinEdgeLength       float64
	MaxEdgeLength       float64
	AvgEdgeLength       float64
	Edges               []EdgeInfo
}

// Analyze measures buf. Triangles referencing missing vertices are skipped.
func Analyze(buf *mesh.VertexBuffer) *Report {
	if buf == nil {
		buf = &mesh.VertexBuffer{}
	}

	report := &Report{
		BoundingBox:   geometry.BoundsOf(buf.Positions),
		VertexCount:   buf.VertexCount(),
		TriangleCount: buf.TriangleCount(),
		HasColors:     buf.HasColors(),
		HasNormals:    buf.HasNormals(),
	}
	report.Dimensions = report.BoundingBox.Size()
	report.Volume = report.BoundingBox.Volume()

	type edgeKey struct{ a, b int }
	seen := make(map[edgeKey]bool)

	minLength := math.MaxFloat64
	totalLength := 0.0
	n := buf.VertexCount()

	for i, idx := range buf.Indices {
		if !inRange(idx, n) {
			continue
		}
		tri := buf.Triangle(i)
		area := tri.Area()
		if area == 0 {
			report.DegenerateTriangles++
		}
		report.SurfaceArea += area

		for k := 0; k < 3; k++ {
			a, b := idx[k], idx[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			key := edgeKey{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true

			length := buf.Positions[a].Distance(buf.Positions[b])
			report.Edges = append(report.Edges, EdgeInfo{
				A:          a,
				B:          b,
				Start:      buf.Positions[a],
				End:        buf.Positions[b],
				Length:     length,
				TriangleID: i,
			})

			totalLength += length
			minLength = math.Min(minLength, length)
			report.MaxEdgeLength = math.Max(report.MaxEdgeLength, length)
		}
	}

	report.EdgeCount = len(report.Edges)
	if report.EdgeCount > 0 {
		report.MinEdgeLength = minLength
		report.AvgEdgeLength = totalLength / float64(report.EdgeCount)
	}

	return report
}

func inRange(idx [3]int, n int) bool {
	for _, v := range idx {
		if v < 0 || v >= n {
			return false
		}
	}
	return true
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(report *Report, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range report.Edges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the N longest edges
func FindLongestEdges(report *Report, count int) []EdgeInfo {
	return sortedEdges(report, count, func(a, b EdgeInfo) bool { return a.Length > b.Length })
}

// FindShortestEdges returns the N shortest edges
func FindShortestEdges(report *Report, count int) []EdgeInfo {
	return sortedEdges(report, count, func(a, b EdgeInfo) bool { return a.Length < b.Length })
}

func sortedEdges(report *Report, count int, less func(a, b EdgeInfo) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(report.Edges))
	copy(edges, report.Edges)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i], edges[j])
	})

	if count > len(edges) {
		count = len(edges)
	}
	if count < 0 {
		count = 0
	}
	return edges[:count]
}

// FindNearestVertex finds the vertex nearest to point. The index is -1 for
// an empty buffer.
func FindNearestVertex(buf *mesh.VertexBuffer, point geometry.Vector3) (int, float64) {
	nearest := -1
	minDistance := math.MaxFloat64

	for i, v := range buf.Positions {
		if d := point.Distance(v); d < minDistance {
			minDistance = d
			nearest = i
		}
	}
	return nearest, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
