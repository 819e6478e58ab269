package glstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/gpu"
	"retained-renderer/gpu/gputest"
	"retained-renderer/scene"
)

func newState(t *testing.T) (*State, *gputest.Recorder) {
	t.Helper()
	rec := gputest.NewRecorder()
	s := New(rec, nil)
	rec.Reset()
	return s, rec
}

func TestSetBlendingTwiceIssuesOnce(t *testing.T) {
	s, rec := newState(t)

	s.SetBlending(scene.NormalBlending, BlendParams{})
	first := len(rec.Calls)
	require.NotZero(t, first)
	assert.Equal(t, 1, rec.Count("BlendFuncSeparate"))
	assert.Equal(t, 1, rec.Count("Enable"))

	s.SetBlending(scene.NormalBlending, BlendParams{})
	assert.Len(t, rec.Calls, first, "second identical call must be filtered")
}

func TestPremultipliedAlphaRederivesFactors(t *testing.T) {
	s, rec := newState(t)

	s.SetBlending(scene.AdditiveBlending, BlendParams{})
	s.SetBlending(scene.AdditiveBlending, BlendParams{PremultipliedAlpha: true})

	funcs := rec.Filter("BlendFunc", "BlendFuncSeparate")
	require.Len(t, funcs, 2)
	assert.Equal(t, []any{gpu.SRC_ALPHA, gpu.ONE}, funcs[0].Args)
	assert.Equal(t, []any{gpu.ONE, gpu.ONE, gpu.ONE, gpu.ONE}, funcs[1].Args)
}

func TestCustomBlendingAlphaDefaultsToColor(t *testing.T) {
	s, rec := newState(t)

	p := BlendParams{Equation: scene.SubtractEquation, Src: scene.OneFactor, Dst: scene.DstColorFactor}
	s.SetBlending(scene.CustomBlending, p)
	s.SetBlending(scene.CustomBlending, p)

	eq := rec.Filter("BlendEquationSeparate")
	require.Len(t, eq, 1)
	assert.Equal(t, []any{gpu.FUNC_SUBTRACT, gpu.FUNC_SUBTRACT}, eq[0].Args)
	fn := rec.Filter("BlendFuncSeparate")
	require.Len(t, fn, 1)
	assert.Equal(t, []any{gpu.ONE, gpu.DST_COLOR, gpu.ONE, gpu.DST_COLOR}, fn[0].Args)

	// Leaving custom mode and coming back must reissue the factors.
	s.SetBlending(scene.NormalBlending, BlendParams{})
	s.SetBlending(scene.CustomBlending, p)
	assert.Len(t, rec.Filter("BlendEquationSeparate"), 3)
}

func TestNoBlendingDisables(t *testing.T) {
	s, rec := newState(t)
	s.SetBlending(scene.NoBlending, BlendParams{})
	s.SetBlending(scene.NoBlending, BlendParams{})
	assert.Equal(t, []string{"Disable"}, rec.Names())
}

func TestDepthFuncDefaultsToLessEqual(t *testing.T) {
	assert.Equal(t, gpu.LEQUAL, DepthFuncEnum(scene.LessEqualDepth))
	assert.Equal(t, gpu.LEQUAL, DepthFuncEnum(scene.DepthFunc(42)))
	assert.Equal(t, gpu.GREATER, DepthFuncEnum(scene.GreaterDepth))

	s, rec := newState(t)
	s.Depth.SetFunc(scene.DepthFunc(-3))
	s.Depth.SetFunc(scene.LessEqualDepth)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, []any{gpu.LEQUAL}, rec.Calls[0].Args)
}

func TestLockedMasksIgnoreSetters(t *testing.T) {
	s, rec := newState(t)
	s.Depth.SetMask(true)
	s.Depth.SetLocked(true)
	s.Depth.SetMask(false)
	s.Color.SetLocked(true)
	s.Color.SetMask(false)
	assert.Equal(t, []string{"DepthMask"}, rec.Names())
}

func TestResetForcesReissue(t *testing.T) {
	s, rec := newState(t)
	apply := func() {
		s.UseProgram(3)
		s.SetBlending(scene.NormalBlending, BlendParams{})
		s.Depth.SetTest(true)
		s.Depth.SetMask(true)
		s.Depth.SetFunc(scene.LessDepth)
		s.SetCullFace(CullFaceBack)
		s.SetFlipSided(false)
		s.SetLineWidth(1)
		s.Viewport(core.Rect{Width: 800, Height: 600})
		s.Color.SetClear(0, 0, 0, 1, false)
		s.BindFramebuffer(0)
	}

	apply()
	issued := len(rec.Calls)
	rec.Reset()
	apply()
	assert.Empty(t, rec.Calls)

	s.Reset()
	apply()
	assert.Len(t, rec.Calls, issued)
}

func TestSetMaterial(t *testing.T) {
	s, rec := newState(t)
	m := scene.NewBasicMaterial(core.ColorWhite)
	m.Side = scene.BackSide

	s.SetMaterial(m, false)
	assert.Equal(t, 1, rec.Count("FrontFace"))
	assert.Equal(t, []any{gpu.CW}, rec.Filter("FrontFace")[0].Args)
	assert.Equal(t, 0, rec.Count("BlendFuncSeparate"), "opaque normal blending disables blending")

	rec.Reset()
	s.SetMaterial(m, true)
	assert.Equal(t, []any{gpu.CCW}, rec.Filter("FrontFace")[0].Args, "negative determinant flips winding back")

	rec.Reset()
	m.Transparent = true
	m.Side = scene.DoubleSide
	s.SetMaterial(m, true)
	assert.Equal(t, 1, rec.Count("BlendFuncSeparate"))
	assert.Contains(t, rec.Filter("Disable"), gputest.Call{Name: "Disable", Args: []any{gpu.CULL_FACE}})
}

func TestBindTextureUsesPlaceholderForZero(t *testing.T) {
	s, rec := newState(t)
	s.ActiveTexture(gpu.TEXTURE0)
	s.BindTexture(gpu.TEXTURE_2D, 0)
	assert.Equal(t, 1, rec.Live("texture"))
	binds := rec.Filter("BindTexture")
	require.Len(t, binds, 2, "creation bind plus unit bind")

	rec.Reset()
	s.BindTexture(gpu.TEXTURE_2D, 0)
	assert.Empty(t, rec.Calls)

	s.ActiveTexture(gpu.TEXTURE0 + 1)
	s.BindTexture(gpu.TEXTURE_CUBE_MAP, 7)
	s.BindTexture(gpu.TEXTURE_CUBE_MAP, 7)
	assert.Equal(t, 1, rec.Count("BindTexture"))

	s.ReleasePlaceholders(false)
	assert.Zero(t, rec.Live("texture"))
}

func TestAttributeTracking(t *testing.T) {
	s, rec := newState(t)

	s.InitAttributes()
	s.EnableAttribute(0)
	s.EnableAttributeAndDivisor(1, 1)
	s.DisableUnusedAttributes()
	rec.Reset()

	s.InitAttributes()
	s.EnableAttribute(0)
	s.DisableUnusedAttributes()
	assert.Equal(t, []string{"DisableVertexAttribArray"}, rec.Names())
	assert.Equal(t, []any{uint32(1)}, rec.Calls[0].Args)

	rec.Reset()
	s.InitAttributes()
	s.EnableAttributeAndDivisor(1, 0)
	assert.Equal(t, []string{"EnableVertexAttribArray", "VertexAttribDivisor"}, rec.Names())
}

func TestPolygonOffset(t *testing.T) {
	s, rec := newState(t)
	s.SetPolygonOffset(true, 1, 2)
	s.SetPolygonOffset(true, 1, 2)
	s.SetPolygonOffset(false, 0, 0)
	assert.Equal(t, []string{"Enable", "PolygonOffset", "Disable"}, rec.Names())
}
