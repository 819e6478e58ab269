package lights

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/internal/programs"
	"retained-renderer/math"
	"retained-renderer/scene"
)

func camera() *scene.Camera {
	c := scene.NewPerspectiveCamera(math32.Pi/3, 1, 0.1, 100)
	c.UpdateMatrixWorld()
	c.UpdateMatrixWorldInverse()
	return c
}

func TestSetupAggregatesByType(t *testing.T) {
	var s State
	s.Init()
	s.PushLight(scene.NewAmbientLight(core.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, 1))
	s.PushLight(scene.NewAmbientLight(core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}, 2))

	sun := scene.NewDirectionalLight(core.ColorWhite, 2)
	sun.SetPosition(math.Vec3{0, 10, 0})
	sun.CastShadow = true
	sun.Light.Shadow.Bias = -0.001
	s.PushLight(sun)
	s.PushShadow(sun)

	lamp := scene.NewPointLight(core.ColorRed, 1, 20, 2)
	lamp.SetPosition(math.Vec3{1, 2, -3})
	s.PushLight(lamp)

	s.Setup(camera())

	assert.InDelta(t, 0.3, s.Ambient.R, 1e-6)
	assert.InDelta(t, 0.4, s.Ambient.G, 1e-6)
	assert.InDelta(t, 0.5, s.Ambient.B, 1e-6)

	require.Len(t, s.Directional, 1)
	d := s.Directional[0]
	assert.InDelta(t, 1, d.Direction[1], 1e-6)
	assert.Equal(t, core.Color{R: 2, G: 2, B: 2, A: 1}, d.Color)
	assert.True(t, d.Shadow)
	assert.Equal(t, float32(-0.001), d.ShadowBias)
	assert.Equal(t, math.Vec2{512, 512}, d.ShadowMapSize)
	assert.Len(t, s.DirectionalShadowMap, 1)
	assert.Len(t, s.DirectionalShadowMatrix, 1)

	require.Len(t, s.Point, 1)
	assert.Equal(t, math.Vec3{1, 2, -3}, s.Point[0].Position)
	assert.False(t, s.Point[0].Shadow)
	assert.Equal(t, math.Mat4Identity(), s.PointShadowMatrix[0])

	assert.Equal(t, programs.LightCounts{Directional: 1, Point: 1}, s.Counts())
	assert.Equal(t, "1,1,0,0,0,1", s.Hash)
}

func TestSetupIsInViewSpace(t *testing.T) {
	cam := camera()
	cam.SetPosition(math.Vec3{0, 0, 10})
	cam.UpdateMatrixWorld()
	cam.UpdateMatrixWorldInverse()

	var s State
	s.Init()
	lamp := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	s.PushLight(lamp)
	s.Setup(cam)

	require.Len(t, s.Point, 1)
	assert.InDelta(t, -10, s.Point[0].Position[2], 1e-5)
}

func TestSpotCone(t *testing.T) {
	var s State
	s.Init()
	spot := scene.NewSpotLight(core.ColorWhite, 1, 0, math32.Pi/4, 0.5, 1)
	s.PushLight(spot)
	s.Setup(camera())

	require.Len(t, s.Spot, 1)
	assert.InDelta(t, math32.Cos(math32.Pi/4), s.Spot[0].ConeCos, 1e-6)
	assert.InDelta(t, math32.Cos(math32.Pi/8), s.Spot[0].PenumbraCos, 1e-6)
}

func TestHashTracksCountsOnly(t *testing.T) {
	var s State
	s.Init()
	a := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	s.PushLight(a)
	s.Setup(camera())
	before := s.Hash

	a.Light.Intensity = 5
	a.SetPosition(math.Vec3{4, 4, 4})
	s.Setup(camera())
	assert.Equal(t, before, s.Hash)

	s.PushLight(scene.NewPointLight(core.ColorWhite, 1, 0, 1))
	s.Setup(camera())
	assert.NotEqual(t, before, s.Hash)
}

func TestApplyGatesUploads(t *testing.T) {
	var s State
	s.Init()
	s.PushLight(scene.NewDirectionalLight(core.ColorWhite, 1))
	s.Setup(camera())

	u := programs.LightUniforms()
	s.Apply(u, false)
	assert.False(t, u["directionalLights"].NeedsUpload())
	assert.Equal(t, s.Directional, u["directionalLights"].Value)

	s.Apply(u, true)
	assert.True(t, u["directionalLights"].NeedsUpload())
	assert.True(t, u["ambientLightColor"].NeedsUpload())
}
