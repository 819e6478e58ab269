package clipping

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/math"
	"retained-renderer/scene"
)

func camera() *scene.Camera {
	c := scene.NewPerspectiveCamera(math32.Pi/3, 1, 0.1, 100)
	c.UpdateMatrixWorld()
	c.UpdateMatrixWorldInverse()
	return c
}

func TestInitReportsEnabled(t *testing.T) {
	s := New()
	cam := camera()
	assert.False(t, s.Init(nil, false, cam))
	assert.True(t, s.Init(nil, true, cam))
	assert.True(t, s.Init(nil, false, cam), "turning local clipping off still needs one more frame")
	assert.False(t, s.Init(nil, false, cam))
}

func TestGlobalPlanesAreProjected(t *testing.T) {
	s := New()
	cam := camera()
	cam.SetPosition(math.Vec3{0, 0, 5})
	cam.UpdateMatrixWorld()
	cam.UpdateMatrixWorldInverse()

	// x > 1 in world space stays x > 1 in view space for an unrotated camera.
	require.True(t, s.Init([]math.Plane{math.NewPlane(math.Vec3{1, 0, 0}, -1)}, false, cam))
	assert.Equal(t, 1, s.NumPlanes)
	v := s.Uniform.Value.([]float32)
	require.Len(t, v, 4)
	assert.InDeltaSlice(t, []float32{1, 0, 0, -1}, v, 1e-5)
	assert.True(t, s.Uniform.NeedsUpload())
}

func TestLocalPlanesFollowGlobal(t *testing.T) {
	s := New()
	cam := camera()
	global := []math.Plane{math.NewPlane(math.Vec3{0, 1, 0}, 0)}
	s.Init(global, true, cam)

	var cache []float32
	local := []math.Plane{math.NewPlane(math.Vec3{1, 0, 0}, 2), math.NewPlane(math.Vec3{0, 0, 1}, 3)}
	s.SetState(local, true, false, cam, &cache, false)

	assert.Equal(t, 3, s.NumPlanes)
	assert.Equal(t, 2, s.NumIntersection)
	require.Len(t, cache, 12)
	assert.InDeltaSlice(t, []float32{0, 1, 0, 0, 1, 0, 0, 2, 0, 0, 1, 3}, cache, 1e-5)
	assert.Equal(t, cache, s.Uniform.Value)

	// A material without local planes goes back to the global array.
	s.SetState(nil, false, false, cam, &cache, false)
	assert.Equal(t, 1, s.NumPlanes)
	assert.Equal(t, 0, s.NumIntersection)
	assert.Len(t, s.Uniform.Value, 4)
}

func TestCachedProjectionIsReused(t *testing.T) {
	s := New()
	cam := camera()
	s.Init(nil, true, cam)

	var cache []float32
	local := []math.Plane{math.NewPlane(math.Vec3{1, 0, 0}, 2)}
	s.SetState(local, false, false, cam, &cache, false)
	cache[3] = 42

	s.SetState(local, false, false, cam, &cache, true)
	assert.Equal(t, float32(42), cache[3], "fromCache skips the transform")
	s.SetState(local, false, false, cam, &cache, false)
	assert.Equal(t, float32(2), cache[3])
}

func TestShadowsIgnorePlanesUnlessRequested(t *testing.T) {
	s := New()
	cam := camera()
	s.Init([]math.Plane{math.NewPlane(math.Vec3{0, 1, 0}, 0)}, true, cam)

	s.BeginShadows()
	assert.Equal(t, 0, s.NumPlanes)

	var cache []float32
	local := []math.Plane{math.NewPlane(math.Vec3{1, 0, 0}, 0)}
	s.SetState(local, false, false, cam, &cache, false)
	assert.Equal(t, 0, s.NumPlanes)

	s.SetState(local, false, true, cam, &cache, false)
	assert.Equal(t, 1, s.NumPlanes, "global planes are skipped in the shadow pass")

	s.EndShadows()
	assert.Equal(t, 1, s.NumPlanes)
	assert.Len(t, s.Uniform.Value, 4)
}
