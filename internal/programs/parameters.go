package programs

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"retained-renderer/scene"
)

// Settings are the renderer-wide switches that select shader variants.
type Settings struct {
	Precision               string
	ToneMapping             scene.ToneMapping
	PhysicallyCorrectLights bool
	LogarithmicDepthBuffer  bool
	ShadowMapEnabled        bool
	ShadowMapType           scene.ShadowMapType
	MaxMorphTargets         int
	MaxMorphNormals         int
	// MaxBones caps skinning; 0 leaves only the uniform-space limit.
	MaxBones          int
	MaxVertexUniforms int
	GammaFactor       float32
}

// LightCounts is the number of lights of each kind in the frame.
type LightCounts struct {
	Directional, Point, Spot, RectArea, Hemi int
}

// Frame is the per-render context that feeds into parameters.
type Frame struct {
	Lights           LightCounts
	ShadowCount      int
	Fog              *scene.Fog
	ClippingPlanes   int
	ClipIntersection int
	OutputEncoding   scene.Encoding
}

// Parameters is the flattened description of one program variant. Two
// materials with equal Keys share a program.
type Parameters struct {
	ShaderID       string
	Name           string
	Raw            bool
	VertexShader   string
	FragmentShader string
	Defines        map[string]string

	Precision      string
	OutputEncoding scene.Encoding

	Map                 bool
	MapEncoding         scene.Encoding
	EnvMap              bool
	EnvMapEncoding      scene.Encoding
	LightMap            bool
	AOMap               bool
	EmissiveMap         bool
	EmissiveMapEncoding scene.Encoding
	BumpMap             bool
	NormalMap           bool
	SpecularMap         bool
	RoughnessMap        bool
	MetalnessMap        bool
	AlphaMap            bool
	VertexColors        bool

	Fog             bool
	UseFog          bool
	FogExp2         bool
	FlatShading     bool
	SizeAttenuation bool
	LogDepthBuffer  bool

	Skinning        bool
	MaxBones        int
	MorphTargets    bool
	MorphNormals    bool
	MaxMorphTargets int
	MaxMorphNormals int

	NumDirLights        int
	NumPointLights      int
	NumSpotLights       int
	NumRectAreaLights   int
	NumHemiLights       int
	NumClippingPlanes   int
	NumClipIntersection int

	ShadowMapEnabled        bool
	ShadowMapType           scene.ShadowMapType
	ToneMapping             scene.ToneMapping
	PhysicallyCorrectLights bool
	PremultipliedAlpha      bool
	AlphaTest               float32
	DoubleSided             bool
	FlipSided               bool
	DepthPacking            int
	Dithering               bool
	GammaFactor             float32
}

var shaderIDs = map[scene.MaterialKind]string{
	scene.MaterialBasic:     "basic",
	scene.MaterialLambert:   "lambert",
	scene.MaterialPhong:     "phong",
	scene.MaterialStandard:  "standard",
	scene.MaterialDepth:     "depth",
	scene.MaterialDistance:  "distanceRGBA",
	scene.MaterialPoints:    "points",
	scene.MaterialLineBasic: "basic",
}

// ShaderID is the template a material kind renders with, or "" for shader
// materials.
func ShaderID(kind scene.MaterialKind) string {
	return shaderIDs[kind]
}

type materialMaps struct {
	Map, EnvMap, LightMap, AOMap, EmissiveMap, BumpMap, NormalMap *scene.Texture
	SpecularMap, RoughnessMap, MetalnessMap, AlphaMap             *scene.Texture
}

func mapsOf(m *scene.Material) materialMaps {
	switch p := m.Params.(type) {
	case *scene.BasicParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap, AOMap: p.AOMap, LightMap: p.LightMap, SpecularMap: p.SpecularMap, EnvMap: p.EnvMap}
	case *scene.LambertParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap, EmissiveMap: p.EmissiveMap, AOMap: p.AOMap, EnvMap: p.EnvMap}
	case *scene.PhongParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap, NormalMap: p.NormalMap, BumpMap: p.BumpMap, SpecularMap: p.SpecularMap, EmissiveMap: p.EmissiveMap, EnvMap: p.EnvMap}
	case *scene.StandardParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap, NormalMap: p.NormalMap, RoughnessMap: p.RoughnessMap, MetalnessMap: p.MetalnessMap, EmissiveMap: p.EmissiveMap, AOMap: p.AOMap, EnvMap: p.EnvMap}
	case *scene.DepthParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap}
	case *scene.DistanceParams:
		return materialMaps{Map: p.Map, AlphaMap: p.AlphaMap}
	case *scene.PointsParams:
		return materialMaps{Map: p.Map}
	}
	return materialMaps{}
}

// textureEncoding is the color space a sampled texture is decoded from.
// Render target attachments are always linear.
func textureEncoding(t *scene.Texture) scene.Encoding {
	if t == nil || t.RenderTarget() != nil {
		return scene.LinearEncoding
	}
	return t.Encoding
}

// Parameters flattens everything that selects a program variant for
// drawing node with m.
func (c *Cache) Parameters(m *scene.Material, node *scene.Node, f Frame, s Settings) Parameters {
	mm := mapsOf(m)
	p := Parameters{
		ShaderID:       ShaderID(m.Kind()),
		Name:           m.Kind().String(),
		Defines:        m.Defines,
		Precision:      s.Precision,
		OutputEncoding: f.OutputEncoding,

		Map:                 mm.Map != nil,
		MapEncoding:         textureEncoding(mm.Map),
		EnvMap:              mm.EnvMap != nil,
		EnvMapEncoding:      textureEncoding(mm.EnvMap),
		LightMap:            mm.LightMap != nil,
		AOMap:               mm.AOMap != nil,
		EmissiveMap:         mm.EmissiveMap != nil,
		EmissiveMapEncoding: textureEncoding(mm.EmissiveMap),
		BumpMap:             mm.BumpMap != nil,
		NormalMap:           mm.NormalMap != nil,
		SpecularMap:         mm.SpecularMap != nil,
		RoughnessMap:        mm.RoughnessMap != nil,
		MetalnessMap:        mm.MetalnessMap != nil,
		AlphaMap:            mm.AlphaMap != nil,
		VertexColors:        m.VertexColors,

		Fog:            f.Fog != nil,
		UseFog:         m.Fog,
		FogExp2:        f.Fog != nil && f.Fog.Exp2,
		FlatShading:    m.FlatShading,
		LogDepthBuffer: s.LogarithmicDepthBuffer,

		MorphTargets:    m.MorphTargets,
		MorphNormals:    m.MorphNormals,
		MaxMorphTargets: s.MaxMorphTargets,
		MaxMorphNormals: s.MaxMorphNormals,

		NumClippingPlanes:   f.ClippingPlanes,
		NumClipIntersection: f.ClipIntersection,

		ShadowMapType:           s.ShadowMapType,
		ToneMapping:             s.ToneMapping,
		PhysicallyCorrectLights: s.PhysicallyCorrectLights,
		PremultipliedAlpha:      m.PremultipliedAlpha,
		AlphaTest:               m.AlphaTest,
		DoubleSided:             m.Side == scene.DoubleSide,
		FlipSided:               m.Side == scene.BackSide,
		Dithering:               m.Dithering,
		GammaFactor:             s.GammaFactor,
	}
	if m.Precision != "" {
		p.Precision = m.Precision
	}
	if sp, ok := m.Params.(*scene.ShaderParams); ok {
		p.Raw = sp.Raw
		p.VertexShader = sp.VertexShader
		p.FragmentShader = sp.FragmentShader
	}
	if pp, ok := m.Params.(*scene.PointsParams); ok {
		p.SizeAttenuation = pp.SizeAttenuation
	}
	if dp, ok := m.Params.(*scene.DepthParams); ok {
		p.DepthPacking = 3200 + int(dp.DepthPacking)
	}
	if m.UsesLights() {
		p.NumDirLights = f.Lights.Directional
		p.NumPointLights = f.Lights.Point
		p.NumSpotLights = f.Lights.Spot
		p.NumRectAreaLights = f.Lights.RectArea
		p.NumHemiLights = f.Lights.Hemi
		p.ShadowMapEnabled = s.ShadowMapEnabled && node != nil && node.ReceiveShadow && f.ShadowCount > 0
	}
	if m.Skinning && node != nil && node.Skeleton != nil {
		p.Skinning = true
		p.MaxBones = c.allocateBones(node.Skeleton, s)
	}
	return p
}

// allocateBones is the bone count the uniform budget allows.
func (c *Cache) allocateBones(sk *scene.Skeleton, s Settings) int {
	n := len(sk.Bones)
	limit := (s.MaxVertexUniforms - 20) / 4
	if s.MaxBones > 0 {
		limit = min(limit, s.MaxBones)
	}
	if limit < n {
		c.log.Warn("skeleton has more bones than the GPU supports", "bones", n, "max", limit)
		return limit
	}
	return n
}

// Key is the cache key: template id (or custom sources), sorted material
// defines, then every parameter in declaration order.
func (p *Parameters) Key() string {
	var b strings.Builder
	if p.ShaderID != "" {
		b.WriteString(p.ShaderID)
	} else {
		b.WriteString(p.FragmentShader)
		b.WriteByte(',')
		b.WriteString(p.VertexShader)
	}
	for _, name := range slices.Sorted(maps.Keys(p.Defines)) {
		fmt.Fprintf(&b, ",%s,%s", name, p.Defines[name])
	}
	fmt.Fprintf(&b, ",%t,%s,%d", p.Raw, p.Precision, p.OutputEncoding)
	fmt.Fprintf(&b, ",%t,%d,%t,%d,%t,%t,%t,%d", p.Map, p.MapEncoding, p.EnvMap, p.EnvMapEncoding, p.LightMap, p.AOMap, p.EmissiveMap, p.EmissiveMapEncoding)
	fmt.Fprintf(&b, ",%t,%t,%t,%t,%t,%t,%t", p.BumpMap, p.NormalMap, p.SpecularMap, p.RoughnessMap, p.MetalnessMap, p.AlphaMap, p.VertexColors)
	fmt.Fprintf(&b, ",%t,%t,%t,%t,%t,%t", p.Fog, p.UseFog, p.FogExp2, p.FlatShading, p.SizeAttenuation, p.LogDepthBuffer)
	fmt.Fprintf(&b, ",%t,%d,%t,%t,%d,%d", p.Skinning, p.MaxBones, p.MorphTargets, p.MorphNormals, p.MaxMorphTargets, p.MaxMorphNormals)
	fmt.Fprintf(&b, ",%d,%d,%d,%d,%d,%d,%d", p.NumDirLights, p.NumPointLights, p.NumSpotLights, p.NumRectAreaLights, p.NumHemiLights, p.NumClippingPlanes, p.NumClipIntersection)
	fmt.Fprintf(&b, ",%t,%d,%d,%t,%t,%g", p.ShadowMapEnabled, p.ShadowMapType, p.ToneMapping, p.PhysicallyCorrectLights, p.PremultipliedAlpha, p.AlphaTest)
	fmt.Fprintf(&b, ",%t,%t,%d,%t,%g", p.DoubleSided, p.FlipSided, p.DepthPacking, p.Dithering, p.GammaFactor)
	return b.String()
}
