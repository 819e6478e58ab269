package uniforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/gpu"
	"retained-renderer/gpu/gputest"
	"retained-renderer/math"
	"retained-renderer/scene"
)

const vertexSrc = `
attribute vec3 position;
uniform mat4 modelViewMatrix;
void main() { gl_Position = modelViewMatrix * vec4( position, 1.0 ); }
`

const fragmentSrc = `
struct DirectionalLight {
	vec3 direction;
	vec3 color;
	int shadow;
};
uniform DirectionalLight directionalLights[ 2 ];
uniform vec4 clippingPlanes[ 3 ];
uniform vec3 diffuse;
uniform float opacity;
uniform sampler2D map;
void main() {}
`

type dirLight struct {
	Direction math.Vec3
	Color     core.Color
	Shadow    bool
}

type binder struct {
	next  int
	bound map[int]*scene.Texture
}

func (b *binder) AllocTextureUnit() int {
	u := b.next
	b.next++
	return u
}

func (b *binder) SetTexture2D(t *scene.Texture, unit int) {
	if b.bound == nil {
		b.bound = map[int]*scene.Texture{}
	}
	b.bound[unit] = t
}

func (b *binder) SetTextureCube(t *scene.Texture, unit int) { b.SetTexture2D(t, unit) }

func link(t *testing.T, rec *gputest.Recorder) gpu.Program {
	t.Helper()
	vs := rec.CreateShader(gpu.VERTEX_SHADER)
	rec.ShaderSource(vs, vertexSrc)
	rec.CompileShader(vs)
	fs := rec.CreateShader(gpu.FRAGMENT_SHADER)
	rec.ShaderSource(fs, fragmentSrc)
	rec.CompileShader(fs)
	p := rec.CreateProgram()
	rec.AttachShader(p, vs)
	rec.AttachShader(p, fs)
	rec.LinkProgram(p)
	require.Equal(t, 1, rec.GetProgramParameter(p, gpu.LINK_STATUS))
	rec.UseProgram(p)
	return p
}

func ids(seq []Uniform) []string {
	out := make([]string, len(seq))
	for i, u := range seq {
		out[i] = u.ID()
	}
	return out
}

func TestRegistryBuildsPathTree(t *testing.T) {
	rec := gputest.NewRecorder()
	reg := NewRegistry(rec, link(t, rec))

	assert.Equal(t, []string{"modelViewMatrix", "directionalLights", "clippingPlanes", "diffuse", "opacity", "map"}, ids(reg.Seq()))

	lights, ok := reg.Get("directionalLights").(*StructuredUniform)
	require.True(t, ok)
	assert.Equal(t, []string{"0", "1"}, ids(lights.Seq()))
	first, ok := lights.Seq()[0].(*StructuredUniform)
	require.True(t, ok)
	assert.Equal(t, []string{"direction", "color", "shadow"}, ids(first.Seq()))
	assert.IsType(t, &SingleUniform{}, first.Seq()[0])

	planes, ok := reg.Get("clippingPlanes").(*PureArrayUniform)
	require.True(t, ok)
	assert.Equal(t, 3, planes.Size())

	assert.IsType(t, &SingleUniform{}, reg.Get("diffuse"))
	assert.False(t, reg.Has("missing"))
}

func TestSeqWithValueKeepsOnlyPresentIDs(t *testing.T) {
	rec := gputest.NewRecorder()
	reg := NewRegistry(rec, link(t, rec))

	values := scene.Uniforms{
		"diffuse": scene.NewUniform(core.ColorRed),
		"opacity": scene.NewUniform(float32(0.5)),
		"unused":  scene.NewUniform(float32(1)),
	}
	assert.Equal(t, []string{"diffuse", "opacity"}, ids(SeqWithValue(reg.Seq(), values)))
}

func TestUploadStructuredAndCachedValues(t *testing.T) {
	rec := gputest.NewRecorder()
	p := link(t, rec)
	reg := NewRegistry(rec, p)

	values := scene.Uniforms{
		"directionalLights": scene.NewUniform([]dirLight{
			{Direction: math.Vec3{0, 1, 0}, Color: core.ColorWhite, Shadow: true},
			{Direction: math.Vec3{1, 0, 0}, Color: core.Color{R: 0.5, G: 0.25, B: 0, A: 1}},
		}),
		"diffuse": scene.NewUniform(core.Color{R: 1, G: 0.5, B: 0, A: 1}),
	}
	seq := SeqWithValue(reg.Seq(), values)
	tex := &binder{}
	Upload(seq, values, tex)

	v, ok := rec.UniformValue(p, "directionalLights[1].color")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, 0.25, 0}, v)
	v, _ = rec.UniformValue(p, "directionalLights[0].shadow")
	assert.Equal(t, int32(1), v)
	v, _ = rec.UniformValue(p, "directionalLights[1].shadow")
	assert.Equal(t, int32(0), v)
	v, _ = rec.UniformValue(p, "diffuse")
	assert.Equal(t, []float32{1, 0.5, 0}, v)

	rec.Reset()
	Upload(seq, values, tex)
	assert.Empty(t, rec.Calls, "unchanged values are not re-sent")

	values["diffuse"].Value = core.ColorGreen
	Upload(seq, values, tex)
	assert.Equal(t, 1, rec.Count("Uniform3fv"))
}

func TestUploadHonoursNeedsUpdate(t *testing.T) {
	rec := gputest.NewRecorder()
	p := link(t, rec)
	reg := NewRegistry(rec, p)

	opacity := scene.NewUniform(float32(0.25))
	opacity.SetNeedsUpdate(false)
	values := scene.Uniforms{"opacity": opacity}
	seq := SeqWithValue(reg.Seq(), values)

	Upload(seq, values, &binder{})
	assert.Equal(t, 0, rec.Count("Uniform1f"))

	opacity.SetNeedsUpdate(true)
	Upload(seq, values, &binder{})
	assert.Equal(t, 1, rec.Count("Uniform1f"))
	assert.False(t, opacity.NeedsUpload())
}

func TestSamplersAndPureArrays(t *testing.T) {
	rec := gputest.NewRecorder()
	p := link(t, rec)
	reg := NewRegistry(rec, p)

	tex := scene.NewSolidTexture("white", 255, 255, 255, 255)
	b := &binder{next: 3}
	reg.SetValue("map", tex, b)
	v, _ := rec.UniformValue(p, "map")
	assert.Equal(t, int32(3), v)
	assert.Same(t, tex, b.bound[3])

	planes := []math.Plane{
		math.NewPlane(math.Vec3{1, 0, 0}, 1),
		math.NewPlane(math.Vec3{0, 1, 0}, 2),
		math.NewPlane(math.Vec3{0, 0, 1}, 3),
	}
	reg.SetValue("clippingPlanes", planes, b)
	v, _ = rec.UniformValue(p, "clippingPlanes[0]")
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 1, 0, 2, 0, 0, 1, 3}, v)

	rec.Reset()
	reg.SetValue("missing", float32(1), b)
	assert.Empty(t, rec.Calls)
}

func TestMemberLookup(t *testing.T) {
	type tagged struct {
		SkyColor core.Color `uniform:"skyColor"`
		Weight   float32
	}
	v, ok := member(tagged{Weight: 2}, "weight")
	assert.True(t, ok)
	assert.Equal(t, float32(2), v)
	_, ok = member(tagged{}, "skyColor")
	assert.True(t, ok)
	_, ok = member([]float32{1, 2}, "5")
	assert.False(t, ok)
	v, ok = member(map[string]any{"a": 1}, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
