package mesh

import (
	"errors"
	"image/color"
	"testing"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCube(t *testing.T) {
	cube := UnitCube()

	assert.Equal(t, 8, cube.VertexCount())
	assert.Equal(t, 12, cube.TriangleCount())
	assert.True(t, cube.HasIndices())
	assert.False(t, cube.HasNormals())
	assert.False(t, cube.HasColors())
	require.NoError(t, cube.Validate())

	// Every face points away from the cube center
	center := geometry.NewVector3(0.5, 0.5, 0.5)
	for i := range cube.Indices {
		tri := cube.Triangle(i)
		outward := tri.Center().Sub(center)
		assert.Greater(t, tri.Normal().Dot(outward), 0.0, "triangle %d faces inward", i)
	}
}

func TestCloudIsDeterministic(t *testing.T) {
	a := Cloud(100, 7, geometry.Vector3{}, 2)
	b := Cloud(100, 7, geometry.Vector3{}, 2)

	assert.Equal(t, a, b)
	assert.Equal(t, 100, a.VertexCount())
	assert.True(t, a.HasColors())
	assert.False(t, a.HasIndices())
	require.NoError(t, a.Validate())

	for _, p := range a.Positions {
		assert.LessOrEqual(t, p.X, 1.0)
		assert.GreaterOrEqual(t, p.X, -1.0)
	}
}

func TestValidateColorLengthMismatch(t *testing.T) {
	buf := UnitCube()
	buf.Colors = []Color{RGB(1, 0, 0)}

	err := buf.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttributeLength))

	var attrErr *AttributeError
	require.True(t, errors.As(err, &attrErr))
	assert.Equal(t, AttrColors, attrErr.Attribute)
	assert.Equal(t, 8, attrErr.Want)
	assert.Equal(t, 1, attrErr.Got)
}

func TestValidateIndexRange(t *testing.T) {
	buf := UnitCube()
	buf.Indices = append(buf.Indices, [3]int{0, 1, 8})

	err := buf.ValidateIndices()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexRange))
	assert.Contains(t, err.Error(), "triangle 12")

	buf.Indices[12] = [3]int{-1, 0, 1}
	assert.ErrorIs(t, buf.ValidateIndices(), ErrIndexRange)
}

func TestValidateJoinsAllErrors(t *testing.T) {
	buf := UnitCube()
	buf.Colors = make([]Color, 3)
	buf.Normals = make([]geometry.Vector3, 2)
	buf.Indices[0] = [3]int{0, 1, 99}

	err := buf.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttributeLength)
	assert.ErrorIs(t, err, ErrIndexRange)
	assert.Contains(t, err.Error(), AttrColors)
	assert.Contains(t, err.Error(), AttrNormals)
}

func TestCloneIsDeep(t *testing.T) {
	buf := UnitCube()
	buf.Colors = make([]Color, 8)
	clone := buf.Clone()

	clone.Positions[0] = geometry.NewVector3(9, 9, 9)
	clone.Indices[0] = [3]int{7, 7, 7}
	clone.Colors[0] = RGB(1, 1, 1)

	assert.Equal(t, geometry.NewVector3(0, 0, 0), buf.Positions[0])
	assert.Equal(t, [3]int{0, 2, 1}, buf.Indices[0])
	assert.Equal(t, Color{}, buf.Colors[0])
	assert.Nil(t, clone.Normals)
}

func TestTranslate(t *testing.T) {
	buf := UnitCube()
	buf.Translate(geometry.NewVector3(-0.5, -0.5, -0.5))

	assert.Equal(t, geometry.NewVector3(-0.5, -0.5, -0.5), buf.Positions[0])
	assert.Equal(t, geometry.NewVector3(0.5, 0.5, 0.5), buf.Positions[6])
}

func TestColorConversions(t *testing.T) {
	c := RGB8(255, 128, 0)
	assert.InDelta(t, 1.0, c.R, 1e-12)
	assert.InDelta(t, 128.0/255.0, c.G, 1e-12)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, c.ToRGBA())

	back := FromColor(color.RGBA{R: 255, G: 165, B: 0, A: 255})
	assert.Equal(t, color.RGBA{R: 255, G: 165, B: 0, A: 255}, back.ToRGBA())

	assert.Equal(t, color.RGBA{R: 128, G: 64, B: 0, A: 255}, RGB8(255, 128, 0).Scale(0.5).ToRGBA())
}
