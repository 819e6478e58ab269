package programs

import (
	"retained-renderer/core"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// Template is a built-in shader pair plus the uniforms its materials start
// with.
type Template struct {
	Vertex   string
	Fragment string
	Uniforms func() scene.Uniforms
}

func commonUniforms() scene.Uniforms {
	return scene.Uniforms{
		"diffuse":           scene.NewUniform(core.ColorWhite),
		"opacity":           scene.NewUniform(float32(1)),
		"map":               scene.NewUniform((*scene.Texture)(nil)),
		"uvTransform":       scene.NewUniform(math.Mat3Identity()),
		"alphaMap":          scene.NewUniform((*scene.Texture)(nil)),
		"specularMap":       scene.NewUniform((*scene.Texture)(nil)),
		"envMap":            scene.NewUniform((*scene.Texture)(nil)),
		"flipEnvMap":        scene.NewUniform(float32(-1)),
		"reflectivity":      scene.NewUniform(float32(1)),
		"aoMap":             scene.NewUniform((*scene.Texture)(nil)),
		"aoMapIntensity":    scene.NewUniform(float32(1)),
		"lightMap":          scene.NewUniform((*scene.Texture)(nil)),
		"lightMapIntensity": scene.NewUniform(float32(1)),
	}
}

func fogUniforms() scene.Uniforms {
	return scene.Uniforms{
		"fogDensity": scene.NewUniform(float32(0.00025)),
		"fogNear":    scene.NewUniform(float32(1)),
		"fogFar":     scene.NewUniform(float32(2000)),
		"fogColor":   scene.NewUniform(core.ColorWhite),
	}
}

// LightUniforms are the light arrays every lit template declares. Values are
// replaced by the renderer's light state each frame.
func LightUniforms() scene.Uniforms {
	return scene.Uniforms{
		"ambientLightColor":       scene.NewUniform(math.Vec3{}),
		"directionalLights":       scene.NewUniform(nil),
		"directionalShadowMap":    scene.NewUniform([]*scene.Texture(nil)),
		"directionalShadowMatrix": scene.NewUniform([]math.Mat4(nil)),
		"spotLights":              scene.NewUniform(nil),
		"spotShadowMap":           scene.NewUniform([]*scene.Texture(nil)),
		"spotShadowMatrix":        scene.NewUniform([]math.Mat4(nil)),
		"pointLights":             scene.NewUniform(nil),
		"pointShadowMap":          scene.NewUniform([]*scene.Texture(nil)),
		"pointShadowMatrix":       scene.NewUniform([]math.Mat4(nil)),
		"hemisphereLights":        scene.NewUniform(nil),
		"rectAreaLights":          scene.NewUniform(nil),
	}
}

func merged(tables ...scene.Uniforms) scene.Uniforms {
	out := scene.Uniforms{}
	for _, t := range tables {
		out.Merge(t)
	}
	return out
}

func litUniforms() scene.Uniforms {
	return merged(commonUniforms(), fogUniforms(), LightUniforms(), scene.Uniforms{
		"emissive":    scene.NewUniform(core.ColorBlack),
		"emissiveMap": scene.NewUniform((*scene.Texture)(nil)),
		"bumpMap":     scene.NewUniform((*scene.Texture)(nil)),
		"bumpScale":   scene.NewUniform(float32(1)),
		"normalMap":   scene.NewUniform((*scene.Texture)(nil)),
		"normalScale": scene.NewUniform(math.Vec2{1, 1}),
	})
}

const basicVertex = `#include <common>
#include <uv_pars_vertex>
#include <uv2_pars_vertex>
#include <envmap_pars_vertex>
#include <color_pars_vertex>
#include <fog_pars_vertex>
#include <morphtarget_pars_vertex>
#include <skinning_pars_vertex>
#include <logdepthbuf_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <uv_vertex>
	#include <uv2_vertex>
	#include <color_vertex>
	#include <beginnormal_vertex>
	#include <morphnormal_vertex>
	#include <skinbase_vertex>
	#include <skinnormal_vertex>
	#include <defaultnormal_vertex>
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <skinning_vertex>
	#include <project_vertex>
	#include <logdepthbuf_vertex>
	#include <worldpos_vertex>
	#include <clipping_planes_vertex>
	#include <envmap_vertex>
	#include <fog_vertex>
}`

const basicFragment = `uniform vec3 diffuse;
uniform float opacity;
#include <common>
#include <color_pars_fragment>
#include <uv_pars_fragment>
#include <uv2_pars_fragment>
#include <map_pars_fragment>
#include <alphamap_pars_fragment>
#include <aomap_pars_fragment>
#include <lightmap_pars_fragment>
#include <envmap_pars_fragment>
#include <fog_pars_fragment>
#include <specularmap_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( diffuse, opacity );
	#include <map_fragment>
	#include <color_fragment>
	#include <alphamap_fragment>
	#include <alphatest_fragment>
	#include <specularmap_fragment>
	ReflectedLight reflectedLight = ReflectedLight( vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ) );
	#ifdef USE_LIGHTMAP
		reflectedLight.indirectDiffuse += texture2D( lightMap, vUv2 ).xyz * lightMapIntensity;
	#else
		reflectedLight.indirectDiffuse += vec3( 1.0 );
	#endif
	#include <aomap_fragment>
	reflectedLight.indirectDiffuse *= diffuseColor.rgb;
	vec3 outgoingLight = reflectedLight.indirectDiffuse;
	#include <envmap_fragment>
	gl_FragColor = vec4( outgoingLight, diffuseColor.a );
	#include <premultiplied_alpha_fragment>
	#include <tonemapping_fragment>
	#include <encodings_fragment>
	#include <fog_fragment>
}`

const phongVertex = `#define PHONG
varying vec3 vViewPosition;
#ifndef FLAT_SHADED
	varying vec3 vNormal;
#endif
#include <common>
#include <uv_pars_vertex>
#include <uv2_pars_vertex>
#include <envmap_pars_vertex>
#include <color_pars_vertex>
#include <fog_pars_vertex>
#include <morphtarget_pars_vertex>
#include <skinning_pars_vertex>
#include <shadowmap_pars_vertex>
#include <logdepthbuf_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <uv_vertex>
	#include <uv2_vertex>
	#include <color_vertex>
	#include <beginnormal_vertex>
	#include <morphnormal_vertex>
	#include <skinbase_vertex>
	#include <skinnormal_vertex>
	#include <defaultnormal_vertex>
#ifndef FLAT_SHADED
	vNormal = normalize( transformedNormal );
#endif
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <skinning_vertex>
	#include <project_vertex>
	#include <logdepthbuf_vertex>
	#include <clipping_planes_vertex>
	vViewPosition = - mvPosition.xyz;
	#include <worldpos_vertex>
	#include <envmap_vertex>
	#include <shadowmap_vertex>
	#include <fog_vertex>
}`

const phongFragment = `#define PHONG
uniform vec3 diffuse;
uniform vec3 emissive;
uniform vec3 specular;
uniform float shininess;
uniform float opacity;
#include <common>
#include <packing>
#include <dithering_pars_fragment>
#include <color_pars_fragment>
#include <uv_pars_fragment>
#include <uv2_pars_fragment>
#include <map_pars_fragment>
#include <alphamap_pars_fragment>
#include <aomap_pars_fragment>
#include <lightmap_pars_fragment>
#include <emissivemap_pars_fragment>
#include <envmap_pars_fragment>
#include <fog_pars_fragment>
#include <bsdfs>
#include <lights_pars_begin>
#include <lights_phong_pars_fragment>
#include <shadowmap_pars_fragment>
#include <bumpmap_pars_fragment>
#include <normalmap_pars_fragment>
#include <specularmap_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( diffuse, opacity );
	ReflectedLight reflectedLight = ReflectedLight( vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ) );
	vec3 totalEmissiveRadiance = emissive;
	#include <map_fragment>
	#include <color_fragment>
	#include <alphamap_fragment>
	#include <alphatest_fragment>
	#include <specularmap_fragment>
	#include <normal_fragment>
	#include <emissivemap_fragment>
	BlinnPhongMaterial material;
	material.diffuseColor = diffuseColor.rgb;
	material.specularColor = specular;
	material.specularShininess = shininess;
	material.specularStrength = specularStrength;
	#include <lights_fragment_begin>
	#include <lights_fragment_maps>
	#include <lights_fragment_end>
	#include <aomap_fragment>
	vec3 outgoingLight = reflectedLight.directDiffuse + reflectedLight.indirectDiffuse + reflectedLight.directSpecular + reflectedLight.indirectSpecular + totalEmissiveRadiance;
	#include <envmap_fragment>
	gl_FragColor = vec4( outgoingLight, diffuseColor.a );
	#include <tonemapping_fragment>
	#include <encodings_fragment>
	#include <fog_fragment>
	#include <premultiplied_alpha_fragment>
	#include <dithering_fragment>
}`

const standardVertex = `#define PHYSICAL
varying vec3 vViewPosition;
#ifndef FLAT_SHADED
	varying vec3 vNormal;
#endif
#include <common>
#include <uv_pars_vertex>
#include <uv2_pars_vertex>
#include <color_pars_vertex>
#include <fog_pars_vertex>
#include <morphtarget_pars_vertex>
#include <skinning_pars_vertex>
#include <shadowmap_pars_vertex>
#include <logdepthbuf_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <uv_vertex>
	#include <uv2_vertex>
	#include <color_vertex>
	#include <beginnormal_vertex>
	#include <morphnormal_vertex>
	#include <skinbase_vertex>
	#include <skinnormal_vertex>
	#include <defaultnormal_vertex>
#ifndef FLAT_SHADED
	vNormal = normalize( transformedNormal );
#endif
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <skinning_vertex>
	#include <project_vertex>
	#include <logdepthbuf_vertex>
	#include <clipping_planes_vertex>
	vViewPosition = - mvPosition.xyz;
	#include <worldpos_vertex>
	#include <shadowmap_vertex>
	#include <fog_vertex>
}`

const standardFragment = `#define PHYSICAL
uniform vec3 diffuse;
uniform vec3 emissive;
uniform float roughness;
uniform float metalness;
uniform float opacity;
varying vec3 vViewPosition;
#ifndef FLAT_SHADED
	varying vec3 vNormal;
#endif
#include <common>
#include <packing>
#include <dithering_pars_fragment>
#include <color_pars_fragment>
#include <uv_pars_fragment>
#include <uv2_pars_fragment>
#include <map_pars_fragment>
#include <alphamap_pars_fragment>
#include <aomap_pars_fragment>
#include <lightmap_pars_fragment>
#include <emissivemap_pars_fragment>
#include <fog_pars_fragment>
#include <bsdfs>
#include <lights_pars_begin>
#include <envmap_pars_fragment>
#include <lights_physical_pars_fragment>
#include <envmap_physical_pars_fragment>
#include <shadowmap_pars_fragment>
#include <bumpmap_pars_fragment>
#include <normalmap_pars_fragment>
#include <roughnessmap_pars_fragment>
#include <metalnessmap_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( diffuse, opacity );
	ReflectedLight reflectedLight = ReflectedLight( vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ), vec3( 0.0 ) );
	vec3 totalEmissiveRadiance = emissive;
	#include <map_fragment>
	#include <color_fragment>
	#include <alphamap_fragment>
	#include <alphatest_fragment>
	#include <roughnessmap_fragment>
	#include <metalnessmap_fragment>
	#include <normal_fragment>
	#include <emissivemap_fragment>
	PhysicalMaterial material;
	material.diffuseColor = diffuseColor.rgb * ( 1.0 - metalnessFactor );
	material.specularRoughness = clamp( roughnessFactor, 0.04, 1.0 );
	material.specularColor = mix( vec3( 0.04 ), diffuseColor.rgb, metalnessFactor );
	#include <lights_fragment_begin>
	#include <lights_fragment_maps>
	#include <lights_fragment_end>
	#include <aomap_fragment>
	vec3 outgoingLight = reflectedLight.directDiffuse + reflectedLight.indirectDiffuse + reflectedLight.directSpecular + reflectedLight.indirectSpecular + totalEmissiveRadiance;
	gl_FragColor = vec4( outgoingLight, diffuseColor.a );
	#include <tonemapping_fragment>
	#include <encodings_fragment>
	#include <fog_fragment>
	#include <premultiplied_alpha_fragment>
	#include <dithering_fragment>
}`

const depthVertex = `#include <common>
#include <uv_pars_vertex>
#include <morphtarget_pars_vertex>
#include <skinning_pars_vertex>
#include <logdepthbuf_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <uv_vertex>
	#include <skinbase_vertex>
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <skinning_vertex>
	#include <project_vertex>
	#include <logdepthbuf_vertex>
	#include <clipping_planes_vertex>
}`

const depthFragment = `#if DEPTH_PACKING == 3200
	uniform float opacity;
#endif
#include <common>
#include <packing>
#include <uv_pars_fragment>
#include <map_pars_fragment>
#include <alphamap_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( 1.0 );
	#if DEPTH_PACKING == 3200
		diffuseColor.a = opacity;
	#endif
	#include <map_fragment>
	#include <alphamap_fragment>
	#include <alphatest_fragment>
	#if DEPTH_PACKING == 3200
		gl_FragColor = vec4( vec3( 1.0 - gl_FragCoord.z ), opacity );
	#elif DEPTH_PACKING == 3201
		gl_FragColor = packDepthToRGBA( gl_FragCoord.z );
	#endif
}`

const distanceVertex = `#define DISTANCE
varying vec3 vWorldPosition;
#include <common>
#include <uv_pars_vertex>
#include <morphtarget_pars_vertex>
#include <skinning_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <uv_vertex>
	#include <skinbase_vertex>
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <skinning_vertex>
	#include <project_vertex>
	#include <worldpos_vertex>
	#include <clipping_planes_vertex>
	vWorldPosition = worldPosition.xyz;
}`

const distanceFragment = `#define DISTANCE
uniform vec3 referencePosition;
uniform float nearDistance;
uniform float farDistance;
varying vec3 vWorldPosition;
#include <common>
#include <packing>
#include <uv_pars_fragment>
#include <map_pars_fragment>
#include <alphamap_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( 1.0 );
	#include <map_fragment>
	#include <alphamap_fragment>
	#include <alphatest_fragment>
	float dist = length( vWorldPosition - referencePosition );
	dist = ( dist - nearDistance ) / ( farDistance - nearDistance );
	dist = saturate( dist );
	gl_FragColor = packDepthToRGBA( dist );
}`

const pointsVertex = `uniform float size;
uniform float scale;
#include <common>
#include <color_pars_vertex>
#include <fog_pars_vertex>
#include <morphtarget_pars_vertex>
#include <logdepthbuf_pars_vertex>
#include <clipping_planes_pars_vertex>
void main() {
	#include <color_vertex>
	#include <begin_vertex>
	#include <morphtarget_vertex>
	#include <project_vertex>
	#ifdef USE_SIZEATTENUATION
		gl_PointSize = size * ( scale / - mvPosition.z );
	#else
		gl_PointSize = size;
	#endif
	#include <logdepthbuf_vertex>
	#include <clipping_planes_vertex>
	#include <worldpos_vertex>
	#include <fog_vertex>
}`

const pointsFragment = `uniform vec3 diffuse;
uniform float opacity;
#include <common>
#include <color_pars_fragment>
#include <map_particle_pars_fragment>
#include <fog_pars_fragment>
#include <clipping_planes_pars_fragment>
void main() {
	#include <clipping_planes_fragment>
	vec4 diffuseColor = vec4( diffuse, opacity );
	#include <map_particle_fragment>
	#include <color_fragment>
	#include <alphatest_fragment>
	gl_FragColor = vec4( diffuseColor.rgb, diffuseColor.a );
	#include <premultiplied_alpha_fragment>
	#include <tonemapping_fragment>
	#include <encodings_fragment>
	#include <fog_fragment>
}`

func defaultTemplates() map[string]Template {
	return map[string]Template{
		"basic": {
			Vertex:   basicVertex,
			Fragment: basicFragment,
			Uniforms: func() scene.Uniforms { return merged(commonUniforms(), fogUniforms()) },
		},
		"lambert": {
			Vertex:   "#define LAMBERT\n" + phongVertex,
			Fragment: "#define LAMBERT\n" + phongFragment,
			Uniforms: litUniforms,
		},
		"phong": {
			Vertex:   phongVertex,
			Fragment: phongFragment,
			Uniforms: func() scene.Uniforms {
				return merged(litUniforms(), scene.Uniforms{
					"specular":  scene.NewUniform(core.ColorHex(0x111111)),
					"shininess": scene.NewUniform(float32(30)),
				})
			},
		},
		"standard": {
			Vertex:   standardVertex,
			Fragment: standardFragment,
			Uniforms: func() scene.Uniforms {
				return merged(litUniforms(), scene.Uniforms{
					"roughness":       scene.NewUniform(float32(0.5)),
					"metalness":       scene.NewUniform(float32(0.5)),
					"roughnessMap":    scene.NewUniform((*scene.Texture)(nil)),
					"metalnessMap":    scene.NewUniform((*scene.Texture)(nil)),
					"envMapIntensity": scene.NewUniform(float32(1)),
				})
			},
		},
		"depth": {
			Vertex:   depthVertex,
			Fragment: depthFragment,
			Uniforms: func() scene.Uniforms {
				return scene.Uniforms{
					"opacity":     scene.NewUniform(float32(1)),
					"map":         scene.NewUniform((*scene.Texture)(nil)),
					"alphaMap":    scene.NewUniform((*scene.Texture)(nil)),
					"uvTransform": scene.NewUniform(math.Mat3Identity()),
				}
			},
		},
		"distanceRGBA": {
			Vertex:   distanceVertex,
			Fragment: distanceFragment,
			Uniforms: func() scene.Uniforms {
				return scene.Uniforms{
					"referencePosition": scene.NewUniform(math.Vec3{}),
					"nearDistance":      scene.NewUniform(float32(1)),
					"farDistance":       scene.NewUniform(float32(1000)),
					"map":               scene.NewUniform((*scene.Texture)(nil)),
					"alphaMap":          scene.NewUniform((*scene.Texture)(nil)),
					"uvTransform":       scene.NewUniform(math.Mat3Identity()),
				}
			},
		},
		"points": {
			Vertex:   pointsVertex,
			Fragment: pointsFragment,
			Uniforms: func() scene.Uniforms {
				return merged(fogUniforms(), scene.Uniforms{
					"diffuse":     scene.NewUniform(core.ColorWhite),
					"opacity":     scene.NewUniform(float32(1)),
					"size":        scene.NewUniform(float32(1)),
					"scale":       scene.NewUniform(float32(1)),
					"map":         scene.NewUniform((*scene.Texture)(nil)),
					"uvTransform": scene.NewUniform(math.Mat3Identity()),
				})
			},
		},
	}
}
