// Package shadow renders the depth maps of shadow-casting lights.
//
// Directional and spot lights render one depth view into their own target.
// Point lights render six cube faces side by side into a single target laid
// out as a 4x2 grid, and encode distance to the light instead of depth.
package shadow

import (
	"log/slog"

	"retained-renderer/core"
	"retained-renderer/internal/glstate"
	"retained-renderer/internal/renderlist"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// Renderer is the part of the main renderer the shadow pass draws through.
type Renderer interface {
	SetRenderTarget(rt *scene.RenderTarget)
	Clear(color, depth, stencil bool)
	// RenderShadowItem draws one item with a shadow material. ModelViewMatrix
	// of object is already relative to camera.
	RenderShadowItem(camera *scene.Camera, object *scene.Node, geometry *scene.Geometry, material *scene.Material, group *scene.Group)
}

const (
	morphingFlag = 1 << iota
	skinningFlag
	variantCount = 1 << iota
)

// Cube face order is +X, -X, +Z, -Z, +Y, -Y.
var (
	cubeDirections = [6]math.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {0, 1, 0}, {0, -1, 0}}
	cubeUps        = [6]math.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, -1}}
	// cubeCells is the (column, row) of each face in the 4x2 grid.
	cubeCells = [6][2]int{{2, 1}, {0, 1}, {3, 1}, {1, 1}, {3, 0}, {1, 0}}
)

// biasMatrix maps clip space [-1,1] into texture space [0,1].
var biasMatrix = math.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// Map is the shadow pass.
type Map struct {
	Enabled     bool
	AutoUpdate  bool
	NeedsUpdate bool
	Type        scene.ShadowMapType

	// RenderReverseSided draws back faces into the map to reduce acne;
	// RenderSingleSided draws double-sided materials as front-sided.
	RenderReverseSided bool
	RenderSingleSided  bool

	// LocalClipping mirrors the renderer's local clipping switch.
	LocalClipping bool
	// Inversion selects how a degenerate shadow camera is handled.
	Inversion math.InversePolicy

	renderer       Renderer
	state          *glstate.State
	maxTextureSize int
	log            *slog.Logger

	depthMaterials    [variantCount]*scene.Material
	distanceMaterials [variantCount]*scene.Material
	clipped           map[[2]scene.Handle]*scene.Material

	frustum math.Frustum
	// casters is rebuilt for every light view.
	casters *renderlist.List
}

// New creates a disabled shadow pass. maxTextureSize bounds map sizes.
func New(r Renderer, state *glstate.State, maxTextureSize int, logger *slog.Logger) *Map {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Map{
		AutoUpdate:         true,
		NeedsUpdate:        false,
		Type:               scene.PCFShadowMap,
		RenderReverseSided: true,
		RenderSingleSided:  true,
		renderer:           r,
		state:              state,
		maxTextureSize:     maxTextureSize,
		log:                logger.With(slog.String("component", "shadow")),
		clipped:            make(map[[2]scene.Handle]*scene.Material),
		casters:            renderlist.New(),
	}
	for i := range variantCount {
		depth := scene.NewDepthMaterial(scene.RGBADepthPacking)
		depth.MorphTargets = i&morphingFlag != 0
		depth.Skinning = i&skinningFlag != 0
		depth.Blending = scene.NoBlending
		m.depthMaterials[i] = depth

		dist := scene.NewDistanceMaterial()
		dist.MorphTargets = i&morphingFlag != 0
		dist.Skinning = i&skinningFlag != 0
		dist.Blending = scene.NoBlending
		m.distanceMaterials[i] = dist
	}
	return m
}

// Render updates the map of every light in lights. camera is the main
// camera; its layers decide which objects cast shadows.
func (m *Map) Render(lights []*scene.Node, sc *scene.Scene, camera *scene.Camera) {
	if !m.Enabled || (!m.AutoUpdate && !m.NeedsUpdate) || len(lights) == 0 {
		return
	}

	m.state.SetBlending(scene.NoBlending, glstate.BlendParams{})
	m.state.Color.SetClear(1, 1, 1, 1, false)
	m.state.Depth.SetTest(true)
	m.state.SetScissorTest(false)

	for _, node := range lights {
		light := node.Light
		sh := light.Shadow
		if sh == nil {
			m.log.Warn("light has no shadow configuration", slog.String("light", node.Name))
			continue
		}
		m.renderLight(node, sh, sc, camera)
	}
	m.NeedsUpdate = false
}

func (m *Map) renderLight(node *scene.Node, sh *scene.LightShadow, sc *scene.Scene, camera *scene.Camera) {
	light := node.Light
	isPoint := light.Type == scene.PointLight
	shadowCamera := sh.Camera

	w, h := min(sh.MapSize[0], m.maxTextureSize), min(sh.MapSize[1], m.maxTextureSize)
	vpW, vpH := w, h
	faces := 1
	if isPoint {
		vpW, vpH = min(w, m.maxTextureSize/4), min(h, m.maxTextureSize/2)
		w, h = vpW*4, vpH*2
		faces = 6
	}

	if sh.Map == nil {
		opts := scene.DefaultRenderTargetOptions()
		opts.MinFilter = scene.NearestFilter
		opts.MagFilter = scene.NearestFilter
		sh.Map = scene.NewRenderTarget(w, h, opts)
		sh.Map.Texture.Name = node.Name + ".shadowMap"
		shadowCamera.UpdateProjectionMatrix()
	} else {
		sh.Map.SetSize(w, h)
	}
	if light.Type == scene.SpotLight {
		light.UpdateSpotShadowCamera()
	}

	lightPos := node.WorldPosition()
	shadowCamera.SetPosition(lightPos)

	m.renderer.SetRenderTarget(sh.Map)
	m.renderer.Clear(true, true, true)

	for face := range faces {
		if isPoint {
			shadowCamera.Up = cubeUps[face]
			shadowCamera.LookAt(lightPos.Add(cubeDirections[face]))
			cell := cubeCells[face]
			m.state.Viewport(core.Rect{X: cell[0] * vpW, Y: cell[1] * vpH, Width: vpW, Height: vpH})
		} else {
			shadowCamera.LookAt(light.TargetPosition())
		}
		shadowCamera.UpdateMatrixWorld()
		if _, err := m.Inversion.Invert(shadowCamera.GetWorldMatrix()); err != nil {
			m.log.Error("shadow camera is degenerate", slog.String("light", node.Name), slog.Any("err", err))
			return
		}
		shadowCamera.UpdateMatrixWorldInverse()

		proj := shadowCamera.ProjectionMatrix()
		view := shadowCamera.MatrixWorldInverse()
		if isPoint {
			sh.Matrix = math.Mat4Translation(lightPos.Mul(-1))
		} else {
			sh.Matrix = biasMatrix.Mul4(proj).Mul4(view)
		}
		m.frustum = math.FrustumFromMatrix(proj.Mul4(view))

		m.casters.Init()
		m.projectObject(sc.Root, camera)
		m.casters.Finish()
		m.renderCasters(m.casters.Opaque, shadowCamera, node, isPoint)
		m.renderCasters(m.casters.Transparent, shadowCamera, node, isPoint)
	}
}

// projectObject pushes every visible caster inside the light frustum with
// the material it is drawn with in the main pass.
func (m *Map) projectObject(object *scene.Node, camera *scene.Camera) {
	if !object.Visible {
		return
	}
	if object.Layers.Test(camera.Layers) && object.Kind.IsDrawable() && object.CastShadow && object.Geometry != nil && m.inFrustum(object) {
		geo := object.Geometry
		if len(object.Materials) > 0 {
			for i := range geo.Groups {
				group := &geo.Groups[i]
				if mat := object.MaterialFor(group); mat != nil && mat.Visible {
					m.casters.Push(object, geo, mat, -1, 0, group)
				}
			}
		} else if mat := object.Material; mat != nil && mat.Visible {
			m.casters.Push(object, geo, mat, -1, 0, nil)
		}
	}
	for _, child := range object.Children {
		m.projectObject(child, camera)
	}
}

// renderCasters draws items with their depth material. The pooled depth
// materials carry per-draw state, so each is resolved right before its draw.
func (m *Map) renderCasters(items []*renderlist.Item, shadowCamera *scene.Camera, light *scene.Node, isPoint bool) {
	view := shadowCamera.MatrixWorldInverse()
	for _, it := range items {
		it.Object.ModelViewMatrix = view.Mul4(it.Object.GetWorldMatrix())
		depth := m.depthMaterial(it.Object, it.Material, isPoint, light, shadowCamera)
		m.renderer.RenderShadowItem(shadowCamera, it.Object, it.Geometry, depth, it.Group)
	}
}

func (m *Map) inFrustum(object *scene.Node) bool {
	if !object.FrustumCulled {
		return true
	}
	sphere := object.Geometry.BoundingSphere()
	if sphere.IsEmpty() {
		return true
	}
	return m.frustum.IntersectsSphere(sphere.ApplyMatrix4(object.GetWorldMatrix()))
}

// depthMaterial picks the pooled variant for object, or its custom override,
// and copies the per-draw state of the object's own material onto it.
func (m *Map) depthMaterial(object *scene.Node, material *scene.Material, isPoint bool, light *scene.Node, shadowCamera *scene.Camera) *scene.Material {
	variants, custom := &m.depthMaterials, object.CustomDepthMaterial
	if isPoint {
		variants, custom = &m.distanceMaterials, object.CustomDistanceMaterial
	}

	result := custom
	if result == nil {
		variant := 0
		if material.MorphTargets && len(object.Geometry.MorphPositions) > 0 {
			variant |= morphingFlag
		}
		if material.Skinning && object.Skeleton != nil {
			variant |= skinningFlag
		}
		result = variants[variant]
	}

	if m.LocalClipping && material.ClipShadows && len(material.ClippingPlanes) > 0 {
		key := [2]scene.Handle{result.Handle(), material.Handle()}
		clone, ok := m.clipped[key]
		if !ok {
			clone = result.Clone()
			m.clipped[key] = clone
		}
		result = clone
	}

	result.Visible = material.Visible
	result.Wireframe = material.Wireframe
	result.WireframeLinewidth = material.WireframeLinewidth

	side := material.Side
	if m.RenderSingleSided && side == scene.DoubleSide {
		side = scene.FrontSide
	}
	if m.RenderReverseSided {
		switch side {
		case scene.FrontSide:
			side = scene.BackSide
		case scene.BackSide:
			side = scene.FrontSide
		}
	}
	result.Side = side

	result.ClipShadows = material.ClipShadows
	result.ClippingPlanes = material.ClippingPlanes
	result.ClipIntersection = material.ClipIntersection

	if p, ok := result.Params.(*scene.DistanceParams); ok && isPoint {
		p.ReferencePosition = light.WorldPosition()
		p.NearDistance = shadowCamera.Near
		p.FarDistance = shadowCamera.Far
	}
	return result
}

// Materials returns every material the pass draws with, so their programs
// can be released when the renderer is disposed.
func (m *Map) Materials() []*scene.Material {
	out := make([]*scene.Material, 0, 2*variantCount+len(m.clipped))
	out = append(out, m.depthMaterials[:]...)
	out = append(out, m.distanceMaterials[:]...)
	for _, mat := range m.clipped {
		out = append(out, mat)
	}
	return out
}
