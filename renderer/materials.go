package renderer

import (
	"retained-renderer/core"
	"retained-renderer/math"
	"retained-renderer/scene"
)

func refreshFog(u scene.Uniforms, fog *scene.Fog) {
	u.Set("fogColor", fog.Color)
	if fog.Exp2 {
		u.Set("fogDensity", fog.Density)
		return
	}
	u.Set("fogNear", fog.Near)
	u.Set("fogFar", fog.Far)
}

// commonMaps are the texture slots shared by the surface kinds.
type commonMaps struct {
	color             core.Color
	mapTex            *scene.Texture
	alphaMap          *scene.Texture
	specularMap       *scene.Texture
	envMap            *scene.Texture
	reflectivity      float32
	aoMap             *scene.Texture
	aoMapIntensity    float32
	lightMap          *scene.Texture
	lightMapIntensity float32
}

// refreshMaterialUniforms copies the payload of m into its value table.
// Shader materials own their table and are left alone.
func (r *Renderer) refreshMaterialUniforms(u scene.Uniforms, m *scene.Material) {
	switch p := m.Params.(type) {
	case *scene.BasicParams:
		refreshCommon(u, m, commonMaps{
			color: p.Color, mapTex: p.Map, alphaMap: p.AlphaMap, specularMap: p.SpecularMap,
			envMap: p.EnvMap, reflectivity: p.Reflectivity,
			aoMap: p.AOMap, aoMapIntensity: p.AOMapIntensity,
			lightMap: p.LightMap, lightMapIntensity: p.LightMapIntensity,
		})

	case *scene.LambertParams:
		refreshCommon(u, m, commonMaps{
			color: p.Color, mapTex: p.Map, alphaMap: p.AlphaMap,
			envMap: p.EnvMap, reflectivity: p.Reflectivity,
			aoMap: p.AOMap, aoMapIntensity: p.AOMapIntensity,
		})
		u.Set("emissive", p.Emissive.Scale(p.EmissiveIntensity))
		u.Set("emissiveMap", p.EmissiveMap)

	case *scene.PhongParams:
		refreshCommon(u, m, commonMaps{
			color: p.Color, mapTex: p.Map, alphaMap: p.AlphaMap, specularMap: p.SpecularMap,
			envMap: p.EnvMap, reflectivity: p.Reflectivity,
		})
		u.Set("specular", p.Specular)
		u.Set("shininess", max(p.Shininess, 1e-4))
		u.Set("emissive", p.Emissive.Scale(p.EmissiveIntensity))
		u.Set("emissiveMap", p.EmissiveMap)
		u.Set("bumpMap", p.BumpMap)
		u.Set("bumpScale", p.BumpScale)
		u.Set("normalMap", p.NormalMap)
		u.Set("normalScale", p.NormalScale)

	case *scene.StandardParams:
		refreshCommon(u, m, commonMaps{
			color: p.Color, mapTex: p.Map, alphaMap: p.AlphaMap,
			envMap: p.EnvMap, reflectivity: 1,
			aoMap: p.AOMap, aoMapIntensity: p.AOMapIntensity,
		})
		u.Set("roughness", p.Roughness)
		u.Set("metalness", p.Metalness)
		u.Set("roughnessMap", p.RoughnessMap)
		u.Set("metalnessMap", p.MetalnessMap)
		u.Set("emissive", p.Emissive.Scale(p.EmissiveIntensity))
		u.Set("emissiveMap", p.EmissiveMap)
		u.Set("normalMap", p.NormalMap)
		u.Set("normalScale", p.NormalScale)
		u.Set("envMapIntensity", p.EnvMapIntensity)

	case *scene.DepthParams:
		refreshMapOnly(u, m, p.Map, p.AlphaMap)

	case *scene.DistanceParams:
		refreshMapOnly(u, m, p.Map, p.AlphaMap)
		u.Set("referencePosition", p.ReferencePosition)
		u.Set("nearDistance", p.NearDistance)
		u.Set("farDistance", p.FarDistance)

	case *scene.PointsParams:
		u.Set("diffuse", p.Color)
		u.Set("opacity", m.Opacity)
		u.Set("size", p.Size*r.pixelRatio)
		u.Set("scale", float32(r.height)*0.5)
		u.Set("map", p.Map)
		if p.Map != nil {
			u.Set("uvTransform", uvTransform(p.Map))
		}

	case *scene.LineParams:
		u.Set("diffuse", p.Color)
		u.Set("opacity", m.Opacity)
	}
}

func refreshCommon(u scene.Uniforms, m *scene.Material, c commonMaps) {
	u.Set("opacity", m.Opacity)
	u.Set("diffuse", c.color)
	u.Set("map", c.mapTex)
	u.Set("alphaMap", c.alphaMap)
	u.Set("specularMap", c.specularMap)
	u.Set("envMap", c.envMap)
	u.Set("reflectivity", c.reflectivity)
	u.Set("aoMap", c.aoMap)
	u.Set("aoMapIntensity", c.aoMapIntensity)
	u.Set("lightMap", c.lightMap)
	u.Set("lightMapIntensity", c.lightMapIntensity)

	flip := float32(1)
	if c.envMap != nil && c.envMap.IsCube() {
		flip = -1
	}
	u.Set("flipEnvMap", flip)

	// The uv transform follows whichever map decides the texture coordinates.
	for _, t := range []*scene.Texture{c.mapTex, c.specularMap, c.alphaMap} {
		if t != nil {
			u.Set("uvTransform", uvTransform(t))
			break
		}
	}
}

func refreshMapOnly(u scene.Uniforms, m *scene.Material, mapTex, alphaMap *scene.Texture) {
	u.Set("opacity", m.Opacity)
	u.Set("map", mapTex)
	u.Set("alphaMap", alphaMap)
	if mapTex != nil {
		u.Set("uvTransform", uvTransform(mapTex))
	}
}

// uvTransform is the 3x3 offset/repeat matrix of t.
func uvTransform(t *scene.Texture) math.Mat3 {
	repeat := t.Repeat
	if repeat == (math.Vec2{}) {
		repeat = math.Vec2{1, 1}
	}
	return math.Mat3{
		repeat[0], 0, 0,
		0, repeat[1], 0,
		t.Offset[0], t.Offset[1], 1,
	}
}
