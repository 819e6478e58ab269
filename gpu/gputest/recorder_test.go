package gputest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/gpu"
)

const testVertex = `
#define NUM_LIGHTS 2
#define USE_MAP
attribute vec3 position;
attribute vec2 uv;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
#ifdef USE_MAP
uniform vec3 offsetRepeat; // trailing comment
#endif
#ifdef USE_SKINNING
uniform mat4 boneMatrices[ 4 ];
#endif
void main() {
	gl_Position = projectionMatrix * modelViewMatrix * vec4( position, 1.0 );
}
`

const testFragment = `
#define NUM_LIGHTS 2
#define USE_MAP
struct DirectionalLight {
	vec3 direction;
	vec3 color;
	int shadow;
	float weights[ 3 ];
};
/* block
uniform float hidden;
*/
#if NUM_LIGHTS > 0 && defined( USE_MAP )
uniform DirectionalLight directionalLights[ NUM_LIGHTS ];
#else
uniform float noLights;
#endif
#if 0
uniform float never;
#elif NUM_LIGHTS == 2
uniform vec3 diffuse, emissive;
#endif
uniform sampler2D map;
uniform mat4 projectionMatrix;
void main() {}
`

func TestReflectProgram(t *testing.T) {
	r := reflectProgram(testVertex, testFragment)

	names := make([]string, len(r.uniforms))
	for i, u := range r.uniforms {
		names[i] = u.Name
	}
	assert.Equal(t, []string{
		"modelViewMatrix",
		"projectionMatrix",
		"offsetRepeat",
		"directionalLights[0].direction",
		"directionalLights[0].color",
		"directionalLights[0].shadow",
		"directionalLights[0].weights[0]",
		"directionalLights[1].direction",
		"directionalLights[1].color",
		"directionalLights[1].shadow",
		"directionalLights[1].weights[0]",
		"diffuse",
		"emissive",
		"map",
	}, names)

	assert.Equal(t, gpu.ActiveInfo{Name: "directionalLights[1].weights[0]", Type: gpu.FLOAT, Size: 3}, r.uniforms[10])
	assert.Equal(t, gpu.SAMPLER_2D, r.uniforms[13].Type)

	require.Len(t, r.attribs, 2)
	assert.Equal(t, "position", r.attribs[0].Name)
	assert.Equal(t, gpu.FLOAT_VEC2, r.attribs[1].Type)
}

func TestEvalCondition(t *testing.T) {
	defines := map[string]string{"A": "3", "B": "A", "FLAG": ""}
	cases := map[string]bool{
		"A > 2":                      true,
		"B == 3":                     true,
		"defined( FLAG )":            true,
		"defined MISSING":            false,
		"!defined(MISSING) && A < 4": true,
		"MISSING || 0":               false,
		"(A - 3) || A >= 3":          true,
		"A != 3":                     false,
	}
	for expr, want := range cases {
		assert.Equal(t, want, evalCondition(expr, defines), expr)
	}
}

func TestRecorderCompileLinkAndUniforms(t *testing.T) {
	r := NewRecorder()
	vs := r.CreateShader(gpu.VERTEX_SHADER)
	r.ShaderSource(vs, testVertex)
	r.CompileShader(vs)
	fs := r.CreateShader(gpu.FRAGMENT_SHADER)
	r.ShaderSource(fs, testFragment)
	r.CompileShader(fs)
	require.Equal(t, 1, r.GetShaderParameter(vs, gpu.COMPILE_STATUS))

	p := r.CreateProgram()
	r.AttachShader(p, vs)
	r.AttachShader(p, fs)
	r.BindAttribLocation(p, 0, "uv")
	r.LinkProgram(p)
	require.Equal(t, 1, r.GetProgramParameter(p, gpu.LINK_STATUS))
	assert.Equal(t, 14, r.GetProgramParameter(p, gpu.ACTIVE_UNIFORMS))
	assert.Equal(t, 0, r.GetAttribLocation(p, "uv"))
	assert.Equal(t, 1, r.GetAttribLocation(p, "position"))

	r.UseProgram(p)
	loc := r.GetUniformLocation(p, "diffuse")
	r.Uniform3fv(loc, []float32{1, 2, 3})
	v, ok := r.UniformValue(p, "diffuse")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, v)

	assert.Equal(t, gpu.NoLocation, r.GetUniformLocation(p, "never"))
	assert.Equal(t, 1, r.Count("Uniform3fv"))
	assert.Equal(t, 1, r.Live("program"))

	r.DeleteProgram(p)
	assert.Zero(t, r.Live("program"))
	assert.Zero(t, r.CurrentProgram())
}

func TestRecorderForcedCompileFailure(t *testing.T) {
	r := NewRecorder()
	r.FailCompile = func(src string) bool { return strings.Contains(src, "broken") }

	s := r.CreateShader(gpu.FRAGMENT_SHADER)
	r.ShaderSource(s, "broken")
	r.CompileShader(s)
	assert.Zero(t, r.GetShaderParameter(s, gpu.COMPILE_STATUS))
	assert.NotEmpty(t, r.GetShaderInfoLog(s))

	p := r.CreateProgram()
	r.AttachShader(p, s)
	r.LinkProgram(p)
	assert.Zero(t, r.GetProgramParameter(p, gpu.LINK_STATUS))
	assert.NotEmpty(t, r.GetProgramInfoLog(p))
}

func TestReadPixelsReturnsClearColor(t *testing.T) {
	r := NewRecorder()
	r.ClearColor(1, 0, 0, 1)
	dst := make([]byte, 8)
	r.ReadPixels(0, 0, 2, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, dst)
	assert.Equal(t, []byte{255, 0, 0, 255, 255, 0, 0, 255}, dst)
	assert.Len(t, r.Filter("ClearColor", "ReadPixels"), 2)
}
