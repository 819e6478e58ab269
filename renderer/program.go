package renderer

import (
	"log/slog"

	"github.com/chewxy/math32"

	"retained-renderer/internal/programs"
	"retained-renderer/internal/uniforms"
	"retained-renderer/scene"
)

// materialProperties is the renderer's per-material state, kept in a table
// indexed by the material handle.
type materialProperties struct {
	program      *programs.Program
	uniforms     scene.Uniforms
	uniformsList []uniforms.Uniform

	version           uint32
	fog               *scene.Fog
	lightsHash        string
	numClippingPlanes int
	numIntersection   int
	clippingCache     []float32
}

func (r *Renderer) properties(m *scene.Material) *materialProperties {
	props, ok := r.materials.Get(m.Handle())
	if !ok {
		props = &materialProperties{}
		r.materials.Put(m.Handle(), props)
	}
	return props
}

func (r *Renderer) settings() programs.Settings {
	return programs.Settings{
		Precision:               r.caps.Precision,
		ToneMapping:             r.ToneMapping,
		PhysicallyCorrectLights: r.PhysicallyCorrectLights,
		LogarithmicDepthBuffer:  r.caps.LogarithmicDepthBuffer,
		ShadowMapEnabled:        r.ShadowMap.Enabled,
		ShadowMapType:           r.ShadowMap.Type,
		MaxMorphTargets:         r.MaxMorphTargets,
		MaxMorphNormals:         r.MaxMorphNormals,
		MaxBones:                r.MaxBones,
		MaxVertexUniforms:       r.caps.MaxVertexUniforms,
		GammaFactor:             r.GammaFactor,
	}
}

func (r *Renderer) frame(fog *scene.Fog) programs.Frame {
	encoding := r.OutputEncoding
	if rt := r.currentRenderTarget; rt != nil && rt != r.offscreen {
		encoding = rt.Texture.Encoding
	}
	return programs.Frame{
		Lights:           r.lights.Counts(),
		ShadowCount:      len(r.lights.Shadows),
		Fog:              fog,
		ClippingPlanes:   r.clipping.NumPlanes,
		ClipIntersection: r.clipping.NumIntersection,
		OutputEncoding:   encoding,
	}
}

// initMaterial (re)selects the program of m and rebuilds its uniform table
// when the program changed.
func (r *Renderer) initMaterial(m *scene.Material, fog *scene.Fog, object *scene.Node) {
	props := r.properties(m)
	params := r.programs.Parameters(m, object, r.frame(fog), r.settings())
	code := params.Key()

	if props.program != nil && props.program.Code != code {
		r.programs.Release(props.program)
		props.program = nil
	}
	if props.program == nil {
		props.program = r.programs.Acquire(&params)
		props.uniforms = r.materialUniforms(m)
		if !props.program.Runnable {
			r.log.Error("material program is not runnable",
				slog.String("material", m.Name), slog.String("program", props.program.Name))
		}
	}

	props.version = m.Version()
	props.fog = fog
	if m.UsesLights() {
		props.lightsHash = r.lights.Hash
		r.lights.Apply(props.uniforms, true)
	}
	if m.UsesClipping() {
		props.numClippingPlanes = r.clipping.NumPlanes
		props.numIntersection = r.clipping.NumIntersection
		props.uniforms["clippingPlanes"] = r.clipping.Uniform
	}
	props.uniformsList = uniforms.SeqWithValue(props.program.Uniforms().Seq(), props.uniforms)
	r.info.Programs = len(r.programs.Programs())
}

// materialUniforms is the value table of m: a fresh copy of the template's
// defaults for built-in kinds, the material's own table for shader kinds.
func (r *Renderer) materialUniforms(m *scene.Material) scene.Uniforms {
	if sp, ok := m.Params.(*scene.ShaderParams); ok {
		if sp.Uniforms == nil {
			sp.Uniforms = scene.Uniforms{}
		}
		return sp.Uniforms
	}
	tpl, ok := r.programs.Library().Templates[programs.ShaderID(m.Kind())]
	if !ok || tpl.Uniforms == nil {
		return scene.Uniforms{}
	}
	return tpl.Uniforms()
}

// needsInit reports whether anything the program of m depends on moved
// since it was last selected.
func (r *Renderer) needsInit(m *scene.Material, props *materialProperties, fog *scene.Fog) bool {
	switch {
	case props.program == nil:
		return true
	case props.version != m.Version():
		return true
	case m.Fog && props.fog != fog:
		return true
	case m.UsesLights() && props.lightsHash != r.lights.Hash:
		return true
	case m.UsesClipping() && (props.numClippingPlanes != r.clipping.NumPlanes ||
		props.numIntersection != r.clipping.NumIntersection):
		return true
	}
	return false
}

// setProgram makes the program of m current for drawing object and uploads
// whatever changed since the previous draw.
func (r *Renderer) setProgram(camera *scene.Camera, fog *scene.Fog, m *scene.Material, object *scene.Node) *programs.Program {
	r.textures.ResetTextureUnits()
	props := r.properties(m)

	if r.clippingEnabled && (r.LocalClippingEnabled || camera != r.currentCamera) {
		fromCache := camera == r.currentCamera && m.Handle() == r.currentMaterial
		r.clipping.SetState(m.ClippingPlanes, m.ClipIntersection, m.ClipShadows, camera, &props.clippingCache, fromCache)
	}

	if r.needsInit(m, props, fog) {
		r.initMaterial(m, fog, object)
	}

	refreshProgram, refreshMaterial, refreshLights := false, false, false
	prog := props.program
	reg := prog.Uniforms()

	if r.state.UseProgram(prog.Program) {
		refreshProgram, refreshMaterial, refreshLights = true, true, true
	}
	if m.Handle() != r.currentMaterial {
		r.currentMaterial = m.Handle()
		refreshMaterial = true
	}

	if refreshProgram || camera != r.currentCamera {
		reg.SetValue("projectionMatrix", camera.ProjectionMatrix(), r.textures)
		if r.caps.LogarithmicDepthBuffer {
			reg.SetValue("logDepthBufFC", 2/math32.Log2(camera.Far+1), r.textures)
		}
		if camera != r.currentCamera {
			r.currentCamera = camera
			refreshMaterial = true
			refreshLights = true
		}
		reg.SetValue("cameraPosition", camera.WorldPosition(), r.textures)
		reg.SetValue("viewMatrix", camera.MatrixWorldInverse(), r.textures)
	}

	if m.Skinning && object.Skeleton != nil {
		reg.SetValue("bindMatrix", object.BindMatrix, r.textures)
		reg.SetValue("bindMatrixInverse", object.BindMatrixInverse, r.textures)
		reg.SetValue("boneMatrices", object.Skeleton.BoneMatrices(), r.textures)
	}

	if refreshMaterial {
		reg.SetValue("toneMappingExposure", r.ToneMappingExposure, r.textures)
		reg.SetValue("toneMappingWhitePoint", r.ToneMappingWhitePoint, r.textures)

		if m.UsesLights() {
			r.lights.Apply(props.uniforms, refreshLights)
		}
		if fog != nil && m.Fog {
			refreshFog(props.uniforms, fog)
		}
		r.refreshMaterialUniforms(props.uniforms, m)
		uniforms.Upload(props.uniformsList, props.uniforms, r.textures)
	}

	reg.SetValue("modelViewMatrix", object.ModelViewMatrix, r.textures)
	reg.SetValue("normalMatrix", object.NormalMatrix, r.textures)
	reg.SetValue("modelMatrix", object.GetWorldMatrix(), r.textures)
	return prog
}
