package scene

import (
	"maps"
	"slices"

	"retained-renderer/core"
	"retained-renderer/math"
)

// MaterialKind selects the shader template and the payload type of a
// Material.
type MaterialKind int

const (
	MaterialBasic MaterialKind = iota
	MaterialLambert
	MaterialPhong
	MaterialStandard
	MaterialDepth
	MaterialDistance
	MaterialPoints
	MaterialLineBasic
	MaterialShader
	MaterialRawShader
)

var materialKindNames = [...]string{
	"MeshBasicMaterial",
	"MeshLambertMaterial",
	"MeshPhongMaterial",
	"MeshStandardMaterial",
	"MeshDepthMaterial",
	"MeshDistanceMaterial",
	"PointsMaterial",
	"LineBasicMaterial",
	"ShaderMaterial",
	"RawShaderMaterial",
}

func (k MaterialKind) String() string {
	if int(k) < len(materialKindNames) {
		return materialKindNames[k]
	}
	return "UnknownMaterial"
}

// MaterialParams is the kind-specific payload of a Material. The set of
// implementations is closed: BasicParams, LambertParams, PhongParams,
// StandardParams, DepthParams, DistanceParams, PointsParams, LineParams and
// ShaderParams.
type MaterialParams interface {
	Kind() MaterialKind
	clone() MaterialParams
}

type BasicParams struct {
	Color             core.Color
	Map               *Texture
	AlphaMap          *Texture
	AOMap             *Texture
	AOMapIntensity    float32
	LightMap          *Texture
	LightMapIntensity float32
	SpecularMap       *Texture
	EnvMap            *Texture
	Reflectivity      float32
}

type LambertParams struct {
	Color             core.Color
	Emissive          core.Color
	EmissiveIntensity float32
	Map               *Texture
	AlphaMap          *Texture
	EmissiveMap       *Texture
	AOMap             *Texture
	AOMapIntensity    float32
	EnvMap            *Texture
	Reflectivity      float32
}

type PhongParams struct {
	Color             core.Color
	Specular          core.Color
	Shininess         float32
	Emissive          core.Color
	EmissiveIntensity float32
	Map               *Texture
	AlphaMap          *Texture
	NormalMap         *Texture
	NormalScale       math.Vec2
	BumpMap           *Texture
	BumpScale         float32
	SpecularMap       *Texture
	EmissiveMap       *Texture
	EnvMap            *Texture
	Reflectivity      float32
}

// StandardParams is the metallic-roughness physically based model.
type StandardParams struct {
	Color             core.Color
	Roughness         float32
	Metalness         float32
	Emissive          core.Color
	EmissiveIntensity float32
	Map               *Texture
	AlphaMap          *Texture
	NormalMap         *Texture
	NormalScale       math.Vec2
	RoughnessMap      *Texture
	MetalnessMap      *Texture
	EmissiveMap       *Texture
	AOMap             *Texture
	AOMapIntensity    float32
	EnvMap            *Texture
	EnvMapIntensity   float32
}

// DepthParams renders fragment depth, optionally packed into RGBA8.
type DepthParams struct {
	DepthPacking DepthPacking
	Map          *Texture
	AlphaMap     *Texture
}

// DistanceParams renders the normalized distance to ReferencePosition,
// packed into RGBA8. Used for omnidirectional shadows.
type DistanceParams struct {
	ReferencePosition math.Vec3
	NearDistance      float32
	FarDistance       float32
	Map               *Texture
	AlphaMap          *Texture
}

type PointsParams struct {
	Color           core.Color
	Size            float32
	SizeAttenuation bool
	Map             *Texture
}

type LineParams struct {
	Color     core.Color
	LineWidth float32
}

// ShaderParams carries user GLSL. With Raw set, no prefix is injected.
type ShaderParams struct {
	Raw            bool
	VertexShader   string
	FragmentShader string
	Uniforms       Uniforms
	// Lights requests the light uniform block. Clipping requests clipping
	// planes.
	Lights   bool
	Clipping bool
}

func (p *BasicParams) Kind() MaterialKind    { return MaterialBasic }
func (p *LambertParams) Kind() MaterialKind  { return MaterialLambert }
func (p *PhongParams) Kind() MaterialKind    { return MaterialPhong }
func (p *StandardParams) Kind() MaterialKind { return MaterialStandard }
func (p *DepthParams) Kind() MaterialKind    { return MaterialDepth }
func (p *DistanceParams) Kind() MaterialKind { return MaterialDistance }
func (p *PointsParams) Kind() MaterialKind   { return MaterialPoints }
func (p *LineParams) Kind() MaterialKind     { return MaterialLineBasic }

func (p *ShaderParams) Kind() MaterialKind {
	if p.Raw {
		return MaterialRawShader
	}
	return MaterialShader
}

func (p *BasicParams) clone() MaterialParams    { c := *p; return &c }
func (p *LambertParams) clone() MaterialParams  { c := *p; return &c }
func (p *PhongParams) clone() MaterialParams    { c := *p; return &c }
func (p *StandardParams) clone() MaterialParams { c := *p; return &c }
func (p *DepthParams) clone() MaterialParams    { c := *p; return &c }
func (p *DistanceParams) clone() MaterialParams { c := *p; return &c }
func (p *PointsParams) clone() MaterialParams   { c := *p; return &c }
func (p *LineParams) clone() MaterialParams     { c := *p; return &c }

func (p *ShaderParams) clone() MaterialParams {
	c := *p
	c.Uniforms = p.Uniforms.Clone()
	return &c
}

// Material holds the state shared by every kind plus a kind payload.
// Changing anything that affects shader generation requires MarkDirty.
type Material struct {
	Name   string
	Params MaterialParams

	Visible     bool
	Side        Side
	Transparent bool
	Opacity     float32
	AlphaTest   float32

	Blending           Blending
	BlendSrc           BlendFactor
	BlendDst           BlendFactor
	BlendEquation      BlendEquation
	BlendSrcAlpha      BlendFactor
	BlendDstAlpha      BlendFactor
	BlendEquationAlpha BlendEquation
	PremultipliedAlpha bool

	DepthFunc  DepthFunc
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool

	PolygonOffset       bool
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32

	Fog                bool
	VertexColors       bool
	FlatShading        bool
	Wireframe          bool
	WireframeLinewidth float32
	Skinning           bool
	MorphTargets       bool
	MorphNormals       bool
	Dithering          bool

	ClippingPlanes   []math.Plane
	ClipIntersection bool
	ClipShadows      bool

	// Precision overrides the renderer's shader precision ("highp",
	// "mediump", "lowp") when set.
	Precision string
	Defines   map[string]string

	handle  Handle
	version uint32
}

// NewMaterial creates a material of the payload's kind with default state.
func NewMaterial(params MaterialParams) *Material {
	m := &Material{
		Name:               params.Kind().String(),
		Params:             params,
		Visible:            true,
		Opacity:            1,
		Blending:           NormalBlending,
		BlendSrc:           SrcAlphaFactor,
		BlendDst:           OneMinusSrcAlphaFactor,
		BlendEquation:      AddEquation,
		DepthTest:          true,
		DepthWrite:         true,
		ColorWrite:         true,
		WireframeLinewidth: 1,
		handle:             materialHandles.acquire(),
		version:            1,
	}
	switch params.Kind() {
	case MaterialDepth, MaterialDistance, MaterialShader, MaterialRawShader:
		m.Fog = false
	default:
		m.Fog = true
	}
	return m
}

func NewBasicMaterial(color core.Color) *Material {
	return NewMaterial(&BasicParams{Color: color, AOMapIntensity: 1, LightMapIntensity: 1, Reflectivity: 1})
}

func NewLambertMaterial(color core.Color) *Material {
	return NewMaterial(&LambertParams{Color: color, EmissiveIntensity: 1, AOMapIntensity: 1, Reflectivity: 1})
}

// NewPhongMaterial creates a Phong material with the given albedo color.
func NewPhongMaterial(color core.Color) *Material {
	return NewMaterial(&PhongParams{
		Color:             color,
		Specular:          core.ColorHex(0x111111),
		Shininess:         30,
		EmissiveIntensity: 1,
		NormalScale:       math.Vec2{1, 1},
		BumpScale:         1,
		Reflectivity:      1,
	})
}

// NewStandardMaterial creates a PBR material with the given albedo, roughness, and metalness.
func NewStandardMaterial(color core.Color, roughness, metalness float32) *Material {
	return NewMaterial(&StandardParams{
		Color:             color,
		Roughness:         roughness,
		Metalness:         metalness,
		EmissiveIntensity: 1,
		NormalScale:       math.Vec2{1, 1},
		AOMapIntensity:    1,
		EnvMapIntensity:   1,
	})
}

func NewDepthMaterial(packing DepthPacking) *Material {
	return NewMaterial(&DepthParams{DepthPacking: packing})
}

func NewDistanceMaterial() *Material {
	return NewMaterial(&DistanceParams{NearDistance: 1, FarDistance: 1000})
}

func NewPointsMaterial(color core.Color, size float32) *Material {
	return NewMaterial(&PointsParams{Color: color, Size: size, SizeAttenuation: true})
}

func NewLineMaterial(color core.Color) *Material {
	return NewMaterial(&LineParams{Color: color, LineWidth: 1})
}

// NewShaderMaterial wraps user shaders. The renderer prepends its standard
// declarations and defines.
func NewShaderMaterial(vertex, fragment string, uniforms Uniforms) *Material {
	if uniforms == nil {
		uniforms = Uniforms{}
	}
	return NewMaterial(&ShaderParams{VertexShader: vertex, FragmentShader: fragment, Uniforms: uniforms})
}

// NewRawShaderMaterial wraps user shaders that are compiled as given.
func NewRawShaderMaterial(vertex, fragment string, uniforms Uniforms) *Material {
	if uniforms == nil {
		uniforms = Uniforms{}
	}
	return NewMaterial(&ShaderParams{Raw: true, VertexShader: vertex, FragmentShader: fragment, Uniforms: uniforms})
}

func (m *Material) Kind() MaterialKind { return m.Params.Kind() }
func (m *Material) Handle() Handle     { return m.handle }
func (m *Material) Version() uint32    { return m.version }

// MarkDirty forces the program and uniform table to be rebuilt before the
// next draw with this material.
func (m *Material) MarkDirty() {
	m.version++
}

// UsesLights reports whether the light uniform block is bound.
func (m *Material) UsesLights() bool {
	switch p := m.Params.(type) {
	case *LambertParams, *PhongParams, *StandardParams:
		return true
	case *ShaderParams:
		return p.Lights
	}
	return false
}

// UsesClipping reports whether clipping planes are wired into the program.
func (m *Material) UsesClipping() bool {
	if p, ok := m.Params.(*ShaderParams); ok {
		return p.Clipping
	}
	return true
}

// MapTexture returns the base color map of kinds that have one.
func (m *Material) MapTexture() *Texture {
	switch p := m.Params.(type) {
	case *BasicParams:
		return p.Map
	case *LambertParams:
		return p.Map
	case *PhongParams:
		return p.Map
	case *StandardParams:
		return p.Map
	case *DepthParams:
		return p.Map
	case *DistanceParams:
		return p.Map
	case *PointsParams:
		return p.Map
	}
	return nil
}

// EnvMapTexture returns the environment map of kinds that have one.
func (m *Material) EnvMapTexture() *Texture {
	switch p := m.Params.(type) {
	case *BasicParams:
		return p.EnvMap
	case *LambertParams:
		return p.EnvMap
	case *PhongParams:
		return p.EnvMap
	case *StandardParams:
		return p.EnvMap
	}
	return nil
}

// Clone copies the material under a fresh handle.
func (m *Material) Clone() *Material {
	c := *m
	c.Params = m.Params.clone()
	c.ClippingPlanes = slices.Clone(m.ClippingPlanes)
	c.Defines = maps.Clone(m.Defines)
	c.handle = materialHandles.acquire()
	c.version = 1
	return &c
}

// Dispose returns the handle for reuse. Use Renderer.DisposeMaterial to
// release GPU state first.
func (m *Material) Dispose() {
	materialHandles.release(m.handle)
	m.handle = 0
}
