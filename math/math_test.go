package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneNormalize(t *testing.T) {
	p := PlaneFromComponents(0, 2, 0, 4).Normalize()

	assert.Equal(t, Vec3{0, 1, 0}, p.Normal)
	assert.Equal(t, float32(2), p.Constant)
	assert.InDelta(t, 3, p.DistanceToPoint(Vec3{5, 1, 5}), 1e-6)
}

func TestPlaneApplyMatrix(t *testing.T) {
	p := NewPlane(Vec3{0, 1, 0}, 0)
	m := Mat4Translation(Vec3{0, 3, 0})

	moved := p.ApplyMatrix4(m, NormalMatrix(m))

	assert.InDelta(t, 0, moved.DistanceToPoint(Vec3{7, 3, -2}), 1e-5)
	assert.InDelta(t, 1, moved.Normal.Y(), 1e-6)
}

func TestTransposeInPlace(t *testing.T) {
	m := Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	want := m.Transpose()

	TransposeInPlace(&m)
	assert.Equal(t, want, m)

	TransposeInPlace(&m)
	assert.Equal(t, want.Transpose(), m)
}

func TestInversePolicies(t *testing.T) {
	singular := Mat4{}

	assert.Equal(t, Mat4Identity(), Inverse(singular))

	_, err := InverseStrict(singular)
	require.ErrorIs(t, err, ErrSingularMatrix)

	_, err = PolicyStrict.Invert(singular)
	require.ErrorIs(t, err, ErrSingularMatrix)

	inv, err := PolicyLenient.Invert(singular)
	require.NoError(t, err)
	assert.Equal(t, Mat4Identity(), inv)

	m := Compose(Vec3{1, 2, 3}, QuaternionFromAxisAngle(Vec3Up, 0.5), Vec3{2, 2, 2})
	inv, err = InverseStrict(m)
	require.NoError(t, err)
	assert.True(t, m.Mul4(inv).ApproxEqualThreshold(Mat4Identity(), 1e-5))
}

func TestMaxScaleOnAxis(t *testing.T) {
	m := Mat4Scale(Vec3{1, 4, 2})
	assert.InDelta(t, 4, MaxScaleOnAxis(m), 1e-6)
}

func TestSphereApplyMatrix(t *testing.T) {
	s := Sphere{Center: Vec3{1, 0, 0}, Radius: 1}
	m := Mat4Translation(Vec3{0, 5, 0}).Mul4(Mat4Scale(Vec3{2, 2, 2}))

	out := s.ApplyMatrix4(m)

	assert.True(t, out.Center.ApproxEqual(Vec3{2, 5, 0}))
	assert.InDelta(t, 2, out.Radius, 1e-6)
}

func TestSphereFromPoints(t *testing.T) {
	s := SphereFromPoints([]float32{-1, 0, 0, 1, 0, 0, 0, 2, 0})

	assert.True(t, s.Center.ApproxEqual(Vec3{0, 1, 0}))
	assert.InDelta(t, math32.Sqrt(2), s.Radius, 1e-6)
	assert.True(t, SphereFromPoints(nil).IsEmpty())
}

func TestBox3ApplyMatrix(t *testing.T) {
	b := Box3{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	out := b.ApplyMatrix4(QuaternionFromAxisAngle(Vec3Up, math32.Pi/4).Mat4())

	assert.InDelta(t, math32.Sqrt(2), out.Max.X(), 1e-5)
	assert.InDelta(t, 1, out.Max.Y(), 1e-5)
	assert.True(t, EmptyBox3().IsEmpty())
}

func perspectiveFrustum() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	return FrustumFromMatrix(proj)
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := perspectiveFrustum()

	assert.True(t, f.IntersectsSphere(Sphere{Center: Vec3{0, 0, -10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(Sphere{Center: Vec3{0, 0, 10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(Sphere{Center: Vec3{100, 0, -10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(Sphere{Center: Vec3{0, 0, -200}, Radius: 1}))
	// straddling the near plane still counts
	assert.True(t, f.IntersectsSphere(Sphere{Center: Vec3{0, 0, 0.5}, Radius: 1}))
}

func TestFrustumIntersectsBox(t *testing.T) {
	f := perspectiveFrustum()

	assert.True(t, f.IntersectsBox(Box3{Min: Vec3{-1, -1, -11}, Max: Vec3{1, 1, -9}}))
	assert.False(t, f.IntersectsBox(Box3{Min: Vec3{-1, -1, 5}, Max: Vec3{1, 1, 6}}))
	assert.True(t, f.ContainsPoint(Vec3{0, 0, -1}))
	assert.False(t, f.ContainsPoint(Vec3{0, 0, 1}))
}

func TestLookAtRotation(t *testing.T) {
	rot := LookAtRotation(Vec3Zero, Vec3{1, 0, 0}, Vec3Up, true)
	forward := TransformDirection(Vec3Front, rot)
	assert.True(t, forward.ApproxEqualThreshold(Vec3{1, 0, 0}, 1e-6))

	rot = LookAtRotation(Vec3Zero, Vec3{0, 0, 5}, Vec3Up, false)
	assert.True(t, TransformDirection(Vec3{0, 0, 1}, rot).ApproxEqualThreshold(Vec3{0, 0, 1}, 1e-6))
}

func TestQuaternionFromRotation(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3{1, 2, 3}, 1.1)
	back := QuaternionFromRotation(q.Mat4())

	assert.True(t, q.Mat4().ApproxEqualThreshold(back.Mat4(), 1e-5))
}
