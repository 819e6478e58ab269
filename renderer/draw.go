package renderer

import (
	"cmp"
	"log/slog"
	gomath "math"
	"maps"
	"slices"
	"strconv"

	"github.com/chewxy/math32"

	"retained-renderer/gpu"
	"retained-renderer/internal/programs"
	"retained-renderer/internal/renderlist"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// maxMorphAttributes is the number of morphTargetN attributes the shader
// chunks declare.
const maxMorphAttributes = 8

var zeroMorphWeights [maxMorphAttributes]float32

// geometryProgram identifies the attribute bindings currently set up.
type geometryProgram struct {
	geometry  scene.Handle
	version   uint32
	program   int
	wireframe bool
}

type morphInfluence struct {
	index  int
	weight float32
}

// ── Lists ────────────────────────────────────────────────────────────────────

func (r *Renderer) renderObjects(items []*renderlist.Item, sc *scene.Scene, camera *scene.Camera, override *scene.Material) {
	for _, it := range items {
		m := it.Material
		if override != nil {
			m = override
		}
		r.renderObject(it.Object, sc, camera, it.Geometry, m, it.Group)
	}
}

func (r *Renderer) renderObject(object *scene.Node, sc *scene.Scene, camera *scene.Camera, geo *scene.Geometry, m *scene.Material, group *scene.Group) {
	world := object.GetWorldMatrix()
	if r.inversion == math.PolicyStrict {
		if _, err := r.inversion.Invert(world); err != nil {
			r.log.Error("skipping object with a singular world matrix", slog.String("object", object.Name), slog.Any("err", err))
			return
		}
	}
	object.ModelViewMatrix = camera.MatrixWorldInverse().Mul4(world)
	object.NormalMatrix = math.NormalMatrix(object.ModelViewMatrix)
	r.renderBufferDirect(camera, sc.Fog, geo, m, object, group)
}

// RenderShadowItem draws one shadow caster. The shadow pass has already set
// ModelViewMatrix relative to the shadow camera.
func (r *Renderer) RenderShadowItem(camera *scene.Camera, object *scene.Node, geo *scene.Geometry, m *scene.Material, group *scene.Group) {
	object.NormalMatrix = math.NormalMatrix(object.ModelViewMatrix)
	r.renderBufferDirect(camera, nil, r.updateGeometry(geo), m, object, group)
}

// ── Draw submission ─────────────────────────────────────────────────────────

func (r *Renderer) renderBufferDirect(camera *scene.Camera, fog *scene.Fog, geo *scene.Geometry, m *scene.Material, object *scene.Node, group *scene.Group) {
	if m.Handle() == 0 {
		r.log.Warn("skipping draw with a disposed material", slog.String("object", object.Name))
		return
	}
	prog := r.setProgram(camera, fog, m, object)

	frontFaceCW := object.Kind == scene.KindMesh && object.GetWorldMatrix().Det() < 0
	r.state.SetMaterial(m, frontFaceCW)

	key := geometryProgram{geometry: geo.Handle(), version: geo.Version(), program: prog.ID, wireframe: m.Wireframe}
	updateBuffers := key != r.currentGeometryProgram
	r.currentGeometryProgram = key

	switch {
	case len(object.MorphTargetInfluences) > 0 && m.MorphTargets:
		r.updateMorphTargets(object, geo, m, prog)
		updateBuffers = true
	case len(r.morphAttributes) > 0:
		// The previous draw bound morph buffers.
		clear(r.morphAttributes)
		updateBuffers = true
		fallthrough
	default:
		if m.MorphTargets {
			prog.Uniforms().SetValue("morphTargetInfluences", zeroMorphWeights[:r.MaxMorphTargets], r.textures)
		}
	}

	index := geo.Index
	rangeFactor := 1
	if m.Wireframe {
		index = r.geometries.Wireframe(geo)
		rangeFactor = 2
	}

	var indexType gpu.Enum
	var bytesPerIndex int
	if index != nil {
		buf := r.attributes.Get(index)
		if buf == nil {
			r.log.Warn("index buffer unavailable", slog.String("geometry", geo.Name))
			return
		}
		indexType, bytesPerIndex = buf.Type, buf.BytesPerElement
		if updateBuffers {
			r.gl.BindBuffer(gpu.ELEMENT_ARRAY_BUFFER, buf.Buffer)
		}
	}
	if updateBuffers {
		r.setupVertexAttributes(prog, geo)
	}

	start, count := drawRange(geo, group, index, rangeFactor)
	if count <= 0 {
		return
	}

	mode := r.drawMode(object, m)
	instances := 0
	if object.InstanceCount > 0 {
		if r.caps.InstancedArrays {
			instances = object.InstanceCount
		} else if !r.instancingWarned {
			r.instancingWarned = true
			r.log.Warn("instanced drawing unsupported, drawing one instance", slog.String("object", object.Name))
		}
	}

	switch {
	case index != nil && instances > 0:
		r.gl.DrawElementsInstanced(mode, count, indexType, start*bytesPerIndex, instances)
	case index != nil:
		r.gl.DrawElements(mode, count, indexType, start*bytesPerIndex)
	case instances > 0:
		r.gl.DrawArraysInstanced(mode, start, count, instances)
	default:
		r.gl.DrawArrays(mode, start, count)
	}

	if r.renderingShadows {
		r.info.UpdateShadow()
	} else {
		r.info.Update(count, mode, instances)
	}
}

// drawRange intersects the geometry draw range, the group range and the
// available data. Counts are in indices when index is set, vertices
// otherwise.
func drawRange(geo *scene.Geometry, group *scene.Group, index *scene.Attribute, rangeFactor int) (start, count int) {
	dataCount := 0
	switch {
	case index != nil:
		dataCount = index.Count()
	case geo.Position() != nil:
		dataCount = geo.Position().Count()
	}

	rangeStart := geo.DrawRange.Start * rangeFactor
	rangeEnd := gomath.MaxInt
	if geo.DrawRange.Count >= 0 {
		rangeEnd = rangeStart + geo.DrawRange.Count*rangeFactor
	}
	groupStart, groupEnd := 0, gomath.MaxInt
	if group != nil {
		groupStart = group.Start * rangeFactor
		groupEnd = groupStart + group.Count*rangeFactor
	}

	start = max(rangeStart, groupStart)
	end := min(dataCount, rangeEnd, groupEnd)
	return start, max(0, end-start)
}

func (r *Renderer) drawMode(object *scene.Node, m *scene.Material) gpu.Enum {
	switch {
	case object.Kind == scene.KindMesh:
		if m.Wireframe {
			r.state.SetLineWidth(m.WireframeLinewidth * r.pixelRatio)
			return gpu.LINES
		}
		switch object.DrawMode {
		case scene.TriangleStripDrawMode:
			return gpu.TRIANGLE_STRIP
		case scene.TriangleFanDrawMode:
			return gpu.TRIANGLE_FAN
		}
		return gpu.TRIANGLES

	case object.Kind.IsLine():
		width := float32(1)
		if p, ok := m.Params.(*scene.LineParams); ok && p.LineWidth > 0 {
			width = p.LineWidth
		}
		r.state.SetLineWidth(width * r.pixelRatio)
		switch object.Kind {
		case scene.KindLineSegments:
			return gpu.LINES
		case scene.KindLineLoop:
			return gpu.LINE_LOOP
		}
		return gpu.LINE_STRIP
	}
	return gpu.POINTS
}

// ── Vertex attributes ───────────────────────────────────────────────────────

// setupVertexAttributes points every active attribute of prog at its
// buffer. Morph target slots come from the last updateMorphTargets call.
func (r *Renderer) setupVertexAttributes(prog *programs.Program, geo *scene.Geometry) {
	r.state.InitAttributes()
	locations := prog.Attributes()
	for _, name := range slices.Sorted(maps.Keys(locations)) {
		loc := locations[name]
		if loc < 0 {
			continue
		}
		attr := r.morphAttributes[name]
		if attr == nil {
			attr = geo.Attributes[name]
		}
		if attr == nil {
			continue
		}
		buf := r.attributes.Get(attr)
		if buf == nil {
			continue
		}
		r.state.EnableAttribute(loc)
		r.gl.BindBuffer(gpu.ARRAY_BUFFER, buf.Buffer)
		r.gl.VertexAttribPointer(uint32(loc), attr.ItemSize, buf.Type, attr.Normalized, 0, 0)
	}
	r.state.DisableUnusedAttributes()
}

// updateMorphTargets binds the strongest influences of object to the
// morphTargetN (and morphNormalN) slots and uploads their weights.
func (r *Renderer) updateMorphTargets(object *scene.Node, geo *scene.Geometry, m *scene.Material, prog *programs.Program) {
	clear(r.morphAttributes)

	limit := r.MaxMorphTargets
	if m.MorphNormals {
		limit = min(limit, r.MaxMorphNormals)
	}

	active := r.morphScratch[:0]
	for i, w := range object.MorphTargetInfluences {
		if i < len(geo.MorphPositions) {
			active = append(active, morphInfluence{index: i, weight: w})
		}
	}
	slices.SortStableFunc(active, func(a, b morphInfluence) int {
		return cmp.Compare(math32.Abs(b.weight), math32.Abs(a.weight))
	})
	r.morphScratch = active

	weights := make([]float32, limit)
	for slot := range min(limit, len(active)) {
		in := active[slot]
		weights[slot] = in.weight
		r.morphAttributes["morphTarget"+strconv.Itoa(slot)] = geo.MorphPositions[in.index]
		if m.MorphNormals && in.index < len(geo.MorphNormals) {
			r.morphAttributes["morphNormal"+strconv.Itoa(slot)] = geo.MorphNormals[in.index]
		}
	}
	prog.Uniforms().SetValue("morphTargetInfluences", weights, r.textures)
}
