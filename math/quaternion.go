package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func QuaternionIdentity() Quat {
	return mgl32.QuatIdent()
}

func QuaternionFromAxisAngle(axis Vec3, angle float32) Quat {
	return mgl32.QuatRotate(angle, axis.Normalize())
}

// QuaternionFromRotation extracts the rotation of a pure rotation matrix.
func QuaternionFromRotation(m Mat4) Quat {
	m11, m12, m13 := m[0], m[4], m[8]
	m21, m22, m23 := m[1], m[5], m[9]
	m31, m32, m33 := m[2], m[6], m[10]
	trace := m11 + m22 + m33

	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q.W = 0.25 / s
		q.V = Vec3{(m32 - m23) * s, (m13 - m31) * s, (m21 - m12) * s}
	case m11 > m22 && m11 > m33:
		s := 2 * math32.Sqrt(1+m11-m22-m33)
		q.W = (m32 - m23) / s
		q.V = Vec3{0.25 * s, (m12 + m21) / s, (m13 + m31) / s}
	case m22 > m33:
		s := 2 * math32.Sqrt(1+m22-m11-m33)
		q.W = (m13 - m31) / s
		q.V = Vec3{(m12 + m21) / s, 0.25 * s, (m23 + m32) / s}
	default:
		s := 2 * math32.Sqrt(1+m33-m11-m22)
		q.W = (m21 - m12) / s
		q.V = Vec3{(m13 + m31) / s, (m23 + m32) / s, 0.25 * s}
	}
	return q.Normalize()
}
