package scene

import (
	"math"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
	"github.com/ungerik/go3d/float64/vec4"
)

// glTF matrices and go3d matrices are both column-major: m[col][row]

func matrixFromColumns(values [16]float64) mat4.T {
	var m mat4.T
	for c := 0; c < 4; c++ {
		m[c] = vec4.T{values[c*4], values[c*4+1], values[c*4+2], values[c*4+3]}
	}
	return m
}

// compose returns parent * local
func compose(parent, local *mat4.T) mat4.T {
	var world mat4.T
	world.AssignMul(parent, local)
	return world
}

// trs composes translation * rotation * scale. The quaternion is x, y, z, w.
func trs(t [3]float64, r [4]float64, s [3]float64) mat4.T {
	q := quaternion.T{r[0], r[1], r[2], r[3]}
	rotation := mat4.Ident
	rotation.AssignQuaternion(&q)

	translation := mat4.Ident
	translation[3] = vec4.T{t[0], t[1], t[2], 1}

	scale := mat4.Ident
	scale[0][0], scale[1][1], scale[2][2] = s[0], s[1], s[2]

	tr := compose(&translation, &rotation)
	return compose(&tr, &scale)
}

func transformPoint(m *mat4.T, v geometry.Vector3) geometry.Vector3 {
	p := vec4.T{v.X, v.Y, v.Z, 1}
	out := m.MulVec4(&p)
	return geometry.NewVector3(out[0], out[1], out[2])
}

// transformNormal applies the cofactor of the linear part, which keeps
// normals perpendicular under non-uniform scale
func transformNormal(m *mat4.T, n geometry.Vector3) geometry.Vector3 {
	c0 := vec3.T{m[0][0], m[0][1], m[0][2]}
	c1 := vec3.T{m[1][0], m[1][1], m[1][2]}
	c2 := vec3.T{m[2][0], m[2][1], m[2][2]}

	x := vec3.Cross(&c1, &c2)
	y := vec3.Cross(&c2, &c0)
	z := vec3.Cross(&c0, &c1)

	out := geometry.NewVector3(x[0], x[1], x[2]).Mul(n.X).
		Add(geometry.NewVector3(y[0], y[1], y[2]).Mul(n.Y)).
		Add(geometry.NewVector3(z[0], z[1], z[2]).Mul(n.Z))
	if vec3.Dot(&c0, &x) < 0 {
		out = out.Mul(-1)
	}

	if l := out.Length(); l > 0 && !math.IsInf(l, 0) {
		return out.Mul(1 / l)
	}
	return n
}
