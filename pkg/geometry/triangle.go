package geometry

// Triangle represents three corners of a face, wound counter-clockwise
type Triangle struct {
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(v1, v2, v3 Vector3) Triangle {
	return Triangle{V1: v1, V2: v2, V3: v3}
}

// FaceNormal returns the unnormalized face normal. Its length is twice the
// triangle area, so summing it weights faces by area.
func (t Triangle) FaceNormal() Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1))
}

// Normal returns the unit face normal, or the zero vector for a degenerate face
func (t Triangle) Normal() Vector3 {
	return t.FaceNormal().Normalize()
}

// Area calculates the area of the triangle
func (t Triangle) Area() float64 {
	return t.FaceNormal().Length() / 2.0
}

// EdgeLengths returns the lengths of the three edges V1-V2, V2-V3, V3-V1
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V3),
		t.V3.Distance(t.V1),
	}
}

// Perimeter returns the sum of the edge lengths
func (t Triangle) Perimeter() float64 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return t.V1.Add(t.V2).Add(t.V3).Mul(1.0 / 3.0)
}
