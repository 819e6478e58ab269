package math

import (
	"errors"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrSingularMatrix is returned by InverseStrict for a zero determinant.
var ErrSingularMatrix = errors.New("math: matrix is not invertible")

func Mat4Identity() Mat4 {
	return mgl32.Ident4()
}

func Mat3Identity() Mat3 {
	return mgl32.Ident3()
}

func Mat4Translation(t Vec3) Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2])
}

func Mat4Scale(s Vec3) Mat4 {
	return mgl32.Scale3D(s[0], s[1], s[2])
}

// Compose builds translation * rotation * scale.
func Compose(position Vec3, rotation Quat, scale Vec3) Mat4 {
	return Mat4Translation(position).Mul4(rotation.Mat4()).Mul4(Mat4Scale(scale))
}

// Position returns the translation column of m.
func Position(m Mat4) Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// MaxScaleOnAxis returns the largest scale factor of the basis vectors of m.
func MaxScaleOnAxis(m Mat4) float32 {
	sx := m[0]*m[0] + m[1]*m[1] + m[2]*m[2]
	sy := m[4]*m[4] + m[5]*m[5] + m[6]*m[6]
	sz := m[8]*m[8] + m[9]*m[9] + m[10]*m[10]
	return math32.Sqrt(max(sx, sy, sz))
}

// Inverse returns the inverse of m. A singular matrix is logged and replaced
// by the identity so scene updates keep going.
func Inverse(m Mat4) Mat4 {
	inv, err := InverseStrict(m)
	if err != nil {
		slog.Warn("singular matrix, using identity", slog.String("component", "math"))
		return mgl32.Ident4()
	}
	return inv
}

// InverseStrict returns ErrSingularMatrix instead of substituting identity.
func InverseStrict(m Mat4) (Mat4, error) {
	if m.Det() == 0 {
		return Mat4{}, ErrSingularMatrix
	}
	return m.Inv(), nil
}

// InversePolicy selects how matrix inversion treats a zero determinant.
type InversePolicy int

const (
	PolicyLenient InversePolicy = iota
	PolicyStrict
)

// Invert applies the policy: lenient never fails, strict surfaces the error.
func (p InversePolicy) Invert(m Mat4) (Mat4, error) {
	if p == PolicyStrict {
		return InverseStrict(m)
	}
	return Inverse(m), nil
}

// NormalMatrix is the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m Mat4) Mat3 {
	m3 := m.Mat3()
	if m3.Det() == 0 {
		return mgl32.Ident3()
	}
	return m3.Inv().Transpose()
}

// TransposeInPlace swaps m across its diagonal.
func TransposeInPlace(m *Mat4) {
	for c := 0; c < 4; c++ {
		for r := c + 1; r < 4; r++ {
			i, j := c*4+r, r*4+c
			m[i], m[j] = m[j], m[i]
		}
	}
}

// LookAtRotation returns the rotation matrix orienting an object at eye
// toward target. Cameras look down -Z, so for them the basis is flipped.
func LookAtRotation(eye, target, up Vec3, isCamera bool) Mat4 {
	z := eye.Sub(target)
	if !isCamera {
		z = target.Sub(eye)
	}
	if z.LenSqr() == 0 {
		z = Vec3{0, 0, 1}
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.LenSqr() == 0 {
		// up is parallel to z: nudge z and retry
		if math32.Abs(up[2]) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	return Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}
}
