package programs

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"retained-renderer/gpu"
	"retained-renderer/internal/uniforms"
	"retained-renderer/scene"
)

// Diagnostics are the compile and link logs of a program. A program that
// failed to build is still cached so the failure is reported once.
type Diagnostics struct {
	Runnable       bool
	ProgramLog     string
	VertexLog      string
	FragmentLog    string
	VertexPrefix   string
	FragmentPrefix string
}

// Program is a linked GPU program shared by every material whose parameters
// produce the same key.
type Program struct {
	ID        int
	Name      string
	Code      string
	UsedTimes int
	Program   gpu.Program
	Diagnostics

	gl         gpu.Context
	uniforms   *uniforms.Registry
	attributes map[string]int
}

// Uniforms reflects the active uniforms on first use.
func (p *Program) Uniforms() *uniforms.Registry {
	if p.uniforms == nil {
		p.uniforms = uniforms.NewRegistry(p.gl, p.Program)
	}
	return p.uniforms
}

// Attributes maps active attribute names to their locations.
func (p *Program) Attributes() map[string]int {
	if p.attributes == nil {
		p.attributes = make(map[string]int)
		n := p.gl.GetProgramParameter(p.Program, gpu.ACTIVE_ATTRIBUTES)
		for i := 0; i < n; i++ {
			info := p.gl.GetActiveAttrib(p.Program, i)
			p.attributes[info.Name] = p.gl.GetAttribLocation(p.Program, info.Name)
		}
	}
	return p.attributes
}

// Destroy deletes the GPU program.
func (p *Program) Destroy() {
	p.gl.DeleteProgram(p.Program)
	p.Program = 0
}

// ── Program assembly ─────────────────────────────────────────────────────────

func newProgram(gl gpu.Context, lib *Library, log *slog.Logger, id int, code string, p *Parameters) *Program {
	vertexPrefix, fragmentPrefix := prefixes(gl, lib, p)
	vertexBody, fragmentBody := p.VertexShader, p.FragmentShader
	if p.ShaderID != "" {
		t := lib.Templates[p.ShaderID]
		vertexBody, fragmentBody = t.Vertex, t.Fragment
	}

	prog := &Program{ID: id, Name: p.Name, Code: code, UsedTimes: 1, gl: gl}
	prog.VertexPrefix = vertexPrefix
	prog.FragmentPrefix = fragmentPrefix

	vertexSrc, err := expandSource(lib, vertexPrefix+vertexBody, p)
	if err != nil {
		prog.VertexLog = err.Error()
	}
	fragmentSrc, ferr := expandSource(lib, fragmentPrefix+fragmentBody, p)
	if ferr != nil {
		prog.FragmentLog = ferr.Error()
	}

	vert, vlog := compileShader(gl, gpu.VERTEX_SHADER, vertexSrc)
	frag, flog := compileShader(gl, gpu.FRAGMENT_SHADER, fragmentSrc)
	if err == nil {
		prog.VertexLog = vlog
	}
	if ferr == nil {
		prog.FragmentLog = flog
	}

	prog.Program = gl.CreateProgram()
	gl.AttachShader(prog.Program, vert)
	gl.AttachShader(prog.Program, frag)
	// Attribute 0 must always be enabled; pin position there.
	gl.BindAttribLocation(prog.Program, 0, "position")
	gl.LinkProgram(prog.Program)

	linked := gl.GetProgramParameter(prog.Program, gpu.LINK_STATUS) != 0
	prog.ProgramLog = strings.TrimSpace(gl.GetProgramInfoLog(prog.Program))
	prog.Runnable = linked && err == nil && ferr == nil
	if !prog.Runnable {
		log.Error("shader program failed to build",
			"program", p.Name,
			"link", prog.ProgramLog,
			"vertex", prog.VertexLog,
			"fragment", prog.FragmentLog)
	} else if prog.ProgramLog != "" {
		log.Warn("shader program linked with warnings", "program", p.Name, "log", prog.ProgramLog)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog
}

func compileShader(gl gpu.Context, typ gpu.Enum, src string) (gpu.Shader, string) {
	s := gl.CreateShader(typ)
	gl.ShaderSource(s, src)
	gl.CompileShader(s)
	log := strings.TrimSpace(gl.GetShaderInfoLog(s))
	if gl.GetShaderParameter(s, gpu.COMPILE_STATUS) == 0 && log == "" {
		log = "compile failed"
	}
	return s, log
}

func expandSource(lib *Library, src string, p *Parameters) (string, error) {
	src, err := lib.ResolveIncludes(src)
	if err != nil {
		return "", fmt.Errorf("resolve includes: %w", err)
	}
	src = replaceLightNums(src, p)
	src = replaceClippingPlaneNums(src, p)
	return unrollLoops(src), nil
}

// ── Prefixes ─────────────────────────────────────────────────────────────────

func prefixes(gl gpu.Context, lib *Library, p *Parameters) (string, string) {
	customDefines := defineLines(p.Defines)
	var vertex, fragment []string

	if p.Raw {
		vertex = []string{customDefines}
		fragment = []string{customDefines}
	} else {
		vertex = vertexPrefix(p, customDefines)
		fragment = fragmentPrefix(gl, lib, p, customDefines)
	}

	if gl.GLSL3() {
		vertex = append([]string{
			"#version 330 core",
			"#define attribute in",
			"#define varying out",
			"#define texture2D texture",
		}, vertex...)
		fragment = append([]string{
			"#version 330 core",
			"#define varying in",
			"out highp vec4 pc_fragColor;",
			"#define gl_FragColor pc_fragColor",
			"#define texture2D texture",
			"#define textureCube texture",
		}, fragment...)
	}
	return joinLines(vertex), joinLines(fragment)
}

func vertexPrefix(p *Parameters, customDefines string) []string {
	return []string{
		precisionLines(p.Precision),
		"#define SHADER_NAME " + p.Name,
		customDefines,
		fmt.Sprintf("#define GAMMA_FACTOR %s", glslFloat(p.GammaFactor)),
		fmt.Sprintf("#define MAX_BONES %d", p.MaxBones),
		flag(p.UseFog && p.Fog, "USE_FOG"),
		flag(p.UseFog && p.FogExp2, "FOG_EXP2"),
		flag(p.Map, "USE_MAP"),
		flag(p.EnvMap, "USE_ENVMAP"),
		flag(p.LightMap, "USE_LIGHTMAP"),
		flag(p.AOMap, "USE_AOMAP"),
		flag(p.EmissiveMap, "USE_EMISSIVEMAP"),
		flag(p.BumpMap, "USE_BUMPMAP"),
		flag(p.NormalMap, "USE_NORMALMAP"),
		flag(p.SpecularMap, "USE_SPECULARMAP"),
		flag(p.RoughnessMap, "USE_ROUGHNESSMAP"),
		flag(p.MetalnessMap, "USE_METALNESSMAP"),
		flag(p.AlphaMap, "USE_ALPHAMAP"),
		flag(p.VertexColors, "USE_COLOR"),
		flag(p.FlatShading, "FLAT_SHADED"),
		flag(p.Skinning, "USE_SKINNING"),
		flag(p.MorphTargets, "USE_MORPHTARGETS"),
		flag(p.MorphNormals && !p.FlatShading, "USE_MORPHNORMALS"),
		flag(p.DoubleSided, "DOUBLE_SIDED"),
		flag(p.FlipSided, "FLIP_SIDED"),
		flag(p.ShadowMapEnabled, "USE_SHADOWMAP"),
		flag(p.ShadowMapEnabled, "SHADOWMAP_TYPE_"+shadowMapTypeName(p.ShadowMapType)),
		flag(p.SizeAttenuation, "USE_SIZEATTENUATION"),
		flag(p.LogDepthBuffer, "USE_LOGDEPTHBUF"),
		flag(p.DepthPacking != 0, fmt.Sprintf("DEPTH_PACKING %d", p.DepthPacking)),
		"uniform mat4 modelMatrix;",
		"uniform mat4 modelViewMatrix;",
		"uniform mat4 projectionMatrix;",
		"uniform mat4 viewMatrix;",
		"uniform mat3 normalMatrix;",
		"uniform vec3 cameraPosition;",
		"attribute vec3 position;",
		"attribute vec3 normal;",
		"attribute vec2 uv;",
		"#ifdef USE_COLOR",
		"\tattribute vec3 color;",
		"#endif",
		"#ifdef USE_MORPHTARGETS",
		"\tattribute vec3 morphTarget0;",
		"\tattribute vec3 morphTarget1;",
		"\tattribute vec3 morphTarget2;",
		"\tattribute vec3 morphTarget3;",
		"\t#ifdef USE_MORPHNORMALS",
		"\t\tattribute vec3 morphNormal0;",
		"\t\tattribute vec3 morphNormal1;",
		"\t\tattribute vec3 morphNormal2;",
		"\t\tattribute vec3 morphNormal3;",
		"\t#else",
		"\t\tattribute vec3 morphTarget4;",
		"\t\tattribute vec3 morphTarget5;",
		"\t\tattribute vec3 morphTarget6;",
		"\t\tattribute vec3 morphTarget7;",
		"\t#endif",
		"#endif",
		"#ifdef USE_SKINNING",
		"\tattribute vec4 skinIndex;",
		"\tattribute vec4 skinWeight;",
		"#endif",
		"",
	}
}

func fragmentPrefix(gl gpu.Context, lib *Library, p *Parameters, customDefines string) []string {
	var derivatives string
	if !gl.GLSL3() && (p.BumpMap || p.NormalMap || p.FlatShading) {
		derivatives = "#extension GL_OES_standard_derivatives : enable"
	}
	lines := []string{
		derivatives,
		precisionLines(p.Precision),
		"#define SHADER_NAME " + p.Name,
		customDefines,
		flag(p.AlphaTest > 0, fmt.Sprintf("ALPHATEST %s", glslFloat(p.AlphaTest))),
		fmt.Sprintf("#define GAMMA_FACTOR %s", glslFloat(p.GammaFactor)),
		flag(p.UseFog && p.Fog, "USE_FOG"),
		flag(p.UseFog && p.FogExp2, "FOG_EXP2"),
		flag(p.Map, "USE_MAP"),
		flag(p.EnvMap, "USE_ENVMAP"),
		flag(p.LightMap, "USE_LIGHTMAP"),
		flag(p.AOMap, "USE_AOMAP"),
		flag(p.EmissiveMap, "USE_EMISSIVEMAP"),
		flag(p.BumpMap, "USE_BUMPMAP"),
		flag(p.NormalMap, "USE_NORMALMAP"),
		flag(p.SpecularMap, "USE_SPECULARMAP"),
		flag(p.RoughnessMap, "USE_ROUGHNESSMAP"),
		flag(p.MetalnessMap, "USE_METALNESSMAP"),
		flag(p.AlphaMap, "USE_ALPHAMAP"),
		flag(p.VertexColors, "USE_COLOR"),
		flag(p.FlatShading, "FLAT_SHADED"),
		flag(p.DoubleSided, "DOUBLE_SIDED"),
		flag(p.FlipSided, "FLIP_SIDED"),
		flag(p.ShadowMapEnabled, "USE_SHADOWMAP"),
		flag(p.ShadowMapEnabled, "SHADOWMAP_TYPE_"+shadowMapTypeName(p.ShadowMapType)),
		flag(p.PremultipliedAlpha, "PREMULTIPLIED_ALPHA"),
		flag(p.PhysicallyCorrectLights, "PHYSICALLY_CORRECT_LIGHTS"),
		flag(p.LogDepthBuffer, "USE_LOGDEPTHBUF"),
		"uniform mat4 viewMatrix;",
		"uniform vec3 cameraPosition;",
	}
	if p.ToneMapping != scene.NoToneMapping {
		lines = append(lines,
			"#define TONE_MAPPING",
			lib.Chunks["tonemapping_pars_fragment"],
			toneMappingFunction(p.ToneMapping))
	}
	lines = append(lines,
		flag(p.Dithering, "DITHERING"),
		lib.Chunks["encodings_pars_fragment"],
		texelDecodingFunction("mapTexelToLinear", p.MapEncoding),
		texelDecodingFunction("envMapTexelToLinear", p.EnvMapEncoding),
		texelDecodingFunction("emissiveMapTexelToLinear", p.EmissiveMapEncoding),
		texelEncodingFunction("linearToOutputTexel", p.OutputEncoding),
		flag(p.DepthPacking != 0, fmt.Sprintf("DEPTH_PACKING %d", p.DepthPacking)),
		"",
	)
	return lines
}

func precisionLines(precision string) string {
	if precision == "" {
		precision = "highp"
	}
	return "precision " + precision + " float;\nprecision " + precision + " int;"
}

func defineLines(defines map[string]string) string {
	var lines []string
	for _, name := range slices.Sorted(maps.Keys(defines)) {
		if v := defines[name]; v == "false" {
			continue
		} else if v == "" || v == "true" {
			lines = append(lines, "#define "+name)
		} else {
			lines = append(lines, "#define "+name+" "+v)
		}
	}
	return strings.Join(lines, "\n")
}

func flag(on bool, define string) string {
	if !on {
		return ""
	}
	return "#define " + define
}

// joinLines drops empty entries so disabled flags leave no blank lines.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if l == "" && i != len(lines)-1 {
			continue
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func glslFloat(v float32) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func shadowMapTypeName(t scene.ShadowMapType) string {
	switch t {
	case scene.PCFShadowMap:
		return "PCF"
	case scene.PCFSoftShadowMap:
		return "PCF_SOFT"
	}
	return "BASIC"
}

func encodingComponents(e scene.Encoding) (name, args string) {
	switch e {
	case scene.SRGBEncoding:
		return "sRGB", "( value )"
	case scene.GammaEncoding:
		return "Gamma", "( value, float( GAMMA_FACTOR ) )"
	case scene.RGBEEncoding:
		return "RGBE", "( value )"
	}
	return "Linear", "( value )"
}

func texelDecodingFunction(fn string, e scene.Encoding) string {
	name, args := encodingComponents(e)
	return fmt.Sprintf("vec4 %s( vec4 value ) { return %sToLinear%s; }", fn, name, args)
}

func texelEncodingFunction(fn string, e scene.Encoding) string {
	name, args := encodingComponents(e)
	return fmt.Sprintf("vec4 %s( vec4 value ) { return LinearTo%s%s; }", fn, name, args)
}

func toneMappingFunction(t scene.ToneMapping) string {
	name := "Linear"
	switch t {
	case scene.ReinhardToneMapping:
		name = "Reinhard"
	case scene.Uncharted2ToneMapping:
		name = "Uncharted2"
	case scene.CineonToneMapping:
		name = "OptimizedCineon"
	}
	return fmt.Sprintf("vec3 toneMapping( vec3 color ) { return %sToneMapping( color ); }", name)
}
