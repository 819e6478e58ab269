package math

import "github.com/go-gl/mathgl/mgl32"

// Value types shared by the whole pipeline. They are mgl32 types, so matrices
// are column-major and can be handed to the GPU without conversion.
type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Mat3 = mgl32.Mat3
	Mat4 = mgl32.Mat4
	Quat = mgl32.Quat
)

var (
	Vec3Zero  = Vec3{0, 0, 0}
	Vec3One   = Vec3{1, 1, 1}
	Vec3Up    = Vec3{0, 1, 0}
	Vec3Right = Vec3{1, 0, 0}
	// Vec3Front is the direction cameras and lights look along.
	Vec3Front = Vec3{0, 0, -1}
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// MinVec3 returns the component-wise minimum.
func MinVec3(a, b Vec3) Vec3 {
	return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// MaxVec3 returns the component-wise maximum.
func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// TransformPoint applies m to p including translation and perspective divide.
func TransformPoint(p Vec3, m Mat4) Vec3 {
	return mgl32.TransformCoordinate(p, m)
}

// TransformDirection applies the rotation/scale part of m to d and normalizes
// the result.
func TransformDirection(d Vec3, m Mat4) Vec3 {
	v := mgl32.TransformNormal(d, m)
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
