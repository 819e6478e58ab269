package programs

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/gpu/gputest"
	"retained-renderer/scene"
)

var testSettings = Settings{
	Precision:         "highp",
	GammaFactor:       2,
	MaxMorphTargets:   8,
	MaxMorphNormals:   4,
	MaxVertexUniforms: 1024,
	ShadowMapEnabled:  true,
	ShadowMapType:     scene.PCFShadowMap,
}

func newTestCache(t *testing.T) (*Cache, *gputest.Recorder) {
	t.Helper()
	rec := gputest.NewRecorder()
	c, err := NewCache(rec, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return c, rec
}

func TestDefaultLibraryValidates(t *testing.T) {
	require.NoError(t, DefaultLibrary().Validate())
}

func TestIncludeErrors(t *testing.T) {
	lib := &Library{Chunks: map[string]string{
		"a": "#include <b>",
		"b": "float x;\n#include <a>",
	}}
	err := lib.Validate()
	require.ErrorIs(t, err, ErrIncludeCycle)
	assert.Contains(t, err.Error(), "a -> b -> a")

	lib = &Library{Chunks: map[string]string{"a": "#include <nope>"}}
	require.ErrorIs(t, lib.Validate(), ErrUnknownChunk)

	_, err = NewCache(gputest.NewRecorder(), lib, nil)
	require.ErrorIs(t, err, ErrUnknownChunk)
}

func TestResolveIncludesNested(t *testing.T) {
	lib := &Library{Chunks: map[string]string{
		"outer": "// outer\n#include <inner>",
		"inner": "float inner;",
	}}
	out, err := lib.ResolveIncludes("void f();\n  #include <outer>\n")
	require.NoError(t, err)
	assert.Equal(t, "void f();\n// outer\nfloat inner;\n", out)
}

func TestUnrollLoops(t *testing.T) {
	src := "#pragma unroll_loop\n\tfor ( int i = 0; i < 3; i ++ ) {\n\t\tsum += v[ i ];\n\t}\n"
	out := unrollLoops(src)
	assert.Equal(t, "\n\t\tsum += v[ 0 ];\n\t\n\t\tsum += v[ 1 ];\n\t\n\t\tsum += v[ 2 ];\n\t\n", out)
	assert.Equal(t, "\n", unrollLoops("#pragma unroll_loop\nfor ( int i = 0; i < 0; i ++ ) { x[ i ]; }\n"))
}

func TestCacheSharesProgramsByKey(t *testing.T) {
	c, rec := newTestCache(t)
	a := scene.NewBasicMaterial(core.ColorRed)
	b := scene.NewBasicMaterial(core.ColorBlue)

	pa := c.Parameters(a, nil, Frame{}, testSettings)
	pb := c.Parameters(b, nil, Frame{}, testSettings)
	require.Equal(t, pa.Key(), pb.Key())

	first := c.Acquire(&pa)
	second := c.Acquire(&pb)
	assert.Same(t, first, second)
	assert.Equal(t, 2, first.UsedTimes)
	assert.Equal(t, 1, rec.Count("CreateProgram"))
	assert.True(t, first.Runnable)

	c.Release(first)
	assert.Equal(t, 0, rec.Count("DeleteProgram"))
	assert.Len(t, c.Programs(), 1)

	c.Release(second)
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
	assert.Empty(t, c.Programs())
	assert.Equal(t, 0, rec.Live("program"))
}

func TestReleaseSwapsWithLast(t *testing.T) {
	c, _ := newTestCache(t)
	var progs []*Program
	for _, m := range []*scene.Material{
		scene.NewBasicMaterial(core.ColorWhite),
		scene.NewPhongMaterial(core.ColorWhite),
		scene.NewStandardMaterial(core.ColorWhite, 0.5, 0),
	} {
		p := c.Parameters(m, nil, Frame{}, testSettings)
		progs = append(progs, c.Acquire(&p))
	}
	c.Release(progs[0])
	assert.Equal(t, []*Program{progs[2], progs[1]}, c.Programs())
	assert.Equal(t, []int{0, 1, 2}, []int{progs[0].ID, progs[1].ID, progs[2].ID})
}

func TestCompileFailureKeepsProgram(t *testing.T) {
	c, rec := newTestCache(t)
	rec.FailCompile = func(src string) bool {
		return strings.Contains(src, "SHADER_NAME MeshPhongMaterial") && strings.Contains(src, "gl_FragColor")
	}
	p := c.Parameters(scene.NewPhongMaterial(core.ColorWhite), nil, Frame{}, testSettings)
	prog := c.Acquire(&p)

	assert.False(t, prog.Runnable)
	assert.Contains(t, prog.FragmentLog, "forced compile failure")
	assert.Empty(t, prog.VertexLog)
	assert.Len(t, c.Programs(), 1)
	assert.Equal(t, 2, rec.Count("DeleteShader"))

	again := c.Acquire(&p)
	assert.Same(t, prog, again)
	assert.Equal(t, 1, rec.Count("CreateProgram"))
}

func TestParametersKey(t *testing.T) {
	c, _ := newTestCache(t)
	phong := scene.NewPhongMaterial(core.ColorWhite)
	basic := scene.NewBasicMaterial(core.ColorWhite)
	one := Frame{Lights: LightCounts{Directional: 1}}
	two := Frame{Lights: LightCounts{Directional: 2}}

	p1 := c.Parameters(phong, nil, one, testSettings)
	p2 := c.Parameters(phong, nil, two, testSettings)
	assert.NotEqual(t, p1.Key(), p2.Key())

	b1 := c.Parameters(basic, nil, one, testSettings)
	b2 := c.Parameters(basic, nil, two, testSettings)
	assert.Equal(t, b1.Key(), b2.Key(), "unlit materials ignore light counts")

	withDefine := phong.Clone()
	withDefine.Defines = map[string]string{"USE_CUSTOM": ""}
	p3 := c.Parameters(withDefine, nil, one, testSettings)
	assert.NotEqual(t, p1.Key(), p3.Key())
}

func TestShadowParametersNeedReceiver(t *testing.T) {
	c, _ := newTestCache(t)
	m := scene.NewLambertMaterial(core.ColorWhite)
	node := scene.NewMesh("mesh", scene.CreateBox(1, 1, 1), m)
	f := Frame{Lights: LightCounts{Directional: 1}, ShadowCount: 1}

	assert.False(t, c.Parameters(m, node, f, testSettings).ShadowMapEnabled)
	node.ReceiveShadow = true
	assert.True(t, c.Parameters(m, node, f, testSettings).ShadowMapEnabled)
	f.ShadowCount = 0
	assert.False(t, c.Parameters(m, node, f, testSettings).ShadowMapEnabled)
}

func TestPrefixesAndReflection(t *testing.T) {
	c, rec := newTestCache(t)
	m := scene.NewPhongMaterial(core.ColorWhite)
	m.Params.(*scene.PhongParams).Map = scene.NewSolidTexture("white", 255, 255, 255, 255)
	p := c.Parameters(m, nil, Frame{Lights: LightCounts{Point: 2}}, testSettings)
	prog := c.Acquire(&p)
	require.True(t, prog.Runnable)

	assert.Contains(t, prog.VertexPrefix, "#define USE_MAP\n")
	assert.Contains(t, prog.FragmentPrefix, "vec4 linearToOutputTexel( vec4 value ) { return LinearToLinear( value ); }")
	assert.NotContains(t, prog.FragmentPrefix, "#define TONE_MAPPING")

	_, fragment := rec.ProgramSource(prog.Program)
	assert.NotContains(t, fragment, "#include")
	assert.NotContains(t, fragment, "#pragma unroll_loop")
	assert.Contains(t, fragment, "pointLights[ 1 ]")

	reg := prog.Uniforms()
	assert.True(t, reg.Has("pointLights"))
	assert.True(t, reg.Has("map"))
	assert.False(t, reg.Has("directionalLights"))
	assert.Equal(t, 0, prog.Attributes()["position"])
}

func TestGLSL3Prefix(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.UseGLSL3 = true
	c, err := NewCache(rec, nil, nil)
	require.NoError(t, err)

	p := c.Parameters(scene.NewBasicMaterial(core.ColorWhite), nil, Frame{}, testSettings)
	prog := c.Acquire(&p)
	assert.True(t, strings.HasPrefix(prog.VertexPrefix, "#version 330 core\n"))
	assert.Contains(t, prog.FragmentPrefix, "#define gl_FragColor pc_fragColor")
}

func TestRawShaderGetsOnlyDefines(t *testing.T) {
	c, _ := newTestCache(t)
	m := scene.NewRawShaderMaterial("void main() {}", "void main() {}", nil)
	m.Defines = map[string]string{"COUNT": "3", "OFF": "false"}
	p := c.Parameters(m, nil, Frame{}, testSettings)
	prog := c.Acquire(&p)
	assert.Equal(t, "#define COUNT 3\n", prog.VertexPrefix)
	assert.Equal(t, "RawShaderMaterial", prog.Name)
}

func TestSkinningBoneBudget(t *testing.T) {
	c, _ := newTestCache(t)
	bones := make([]*scene.Node, 80)
	for i := range bones {
		bones[i] = scene.NewNode("bone")
	}
	node := scene.NewMesh("skinned", scene.CreateBox(1, 1, 1), nil)
	node.Skeleton = scene.NewSkeleton(bones, nil)
	m := scene.NewBasicMaterial(core.ColorWhite)
	m.Skinning = true

	s := testSettings
	s.MaxVertexUniforms = 256
	p := c.Parameters(m, node, Frame{}, s)
	assert.True(t, p.Skinning)
	assert.Equal(t, 59, p.MaxBones)

	s.MaxVertexUniforms = 1024
	assert.Equal(t, 80, c.Parameters(m, node, Frame{}, s).MaxBones)
}
