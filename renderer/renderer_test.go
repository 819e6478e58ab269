package renderer

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/gpu"
	"retained-renderer/gpu/gputest"
	"retained-renderer/math"
	"retained-renderer/scene"
)

type fixture struct {
	rec    *gputest.Recorder
	r      *Renderer
	scene  *scene.Scene
	camera *scene.Camera
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	rec := gputest.NewRecorder()
	opts := DefaultOptions()
	opts.Width, opts.Height = 800, 600
	opts.Logger = slog.New(slog.DiscardHandler)
	for _, fn := range configure {
		fn(&opts)
	}
	r, err := New(rec, opts)
	require.NoError(t, err)

	camera := scene.NewPerspectiveCamera(1, 4.0/3.0, 0.1, 100)
	camera.SetPosition(math.Vec3{0, 0, 5})
	return &fixture{rec: rec, r: r, scene: scene.NewScene(), camera: camera}
}

func (f *fixture) render() {
	f.rec.Reset()
	f.r.Render(f.scene, f.camera, nil, false)
}

func (f *fixture) addBox(name string, m *scene.Material, pos math.Vec3) *scene.Node {
	n := scene.NewMesh(name, scene.CreateBox(1, 1, 1), m)
	n.SetPosition(pos)
	f.scene.AddNode(n)
	return n
}

var red = core.Color{R: 1, A: 1}

func TestNewWithoutContext(t *testing.T) {
	_, err := New(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestEmptySceneDrawsNothing(t *testing.T) {
	f := newFixture(t)
	f.render()

	assert.Empty(t, f.rec.Draws())
	assert.Zero(t, f.r.Info().Render.Calls)
	list := f.r.lists.Get(f.scene.ID(), f.camera.Id)
	assert.Empty(t, list.Opaque)
	assert.Empty(t, list.Transparent)
	assert.Equal(t, 1, f.rec.Count("Clear"))
}

func TestSingleMeshIsDrawnOnce(t *testing.T) {
	f := newFixture(t)
	f.addBox("box", scene.NewBasicMaterial(red), math.Vec3{})
	f.render()

	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "DrawElements", draws[0].Name)
	assert.Equal(t, gpu.TRIANGLES, draws[0].Args[0])
	assert.Equal(t, 36, draws[0].Args[1])
	assert.Equal(t, 1, f.r.Info().Render.Calls)
	assert.Equal(t, 12, f.r.Info().Render.Faces)
}

func TestMaterialsShareProgram(t *testing.T) {
	f := newFixture(t)
	f.addBox("a", scene.NewBasicMaterial(red), math.Vec3{-1, 0, 0})
	f.addBox("b", scene.NewBasicMaterial(core.Color{G: 1, A: 1}), math.Vec3{1, 0, 0})
	f.render()

	assert.Len(t, f.rec.Draws(), 2)
	assert.Equal(t, 1, f.r.Info().Programs)
	assert.Equal(t, 1, f.rec.Live("program"))

	uploads := 0
	for _, c := range f.rec.Filter("Uniform3fv") {
		if v, ok := c.Args[1].([]float32); ok && len(v) == 3 && (v[0] == 1 || v[1] == 1) && v[2] == 0 {
			uploads++
		}
	}
	assert.GreaterOrEqual(t, uploads, 2, "each material uploads its own diffuse")
}

func TestDirectionalShadow(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Shadows.Enabled = true })

	light := scene.NewDirectionalLight(core.Color{R: 1, G: 1, B: 1, A: 1}, 1)
	light.CastShadow = true
	f.scene.AddNode(light)
	box := f.addBox("box", scene.NewLambertMaterial(red), math.Vec3{})
	box.CastShadow = true
	box.ReceiveShadow = true
	f.render()

	require.NotNil(t, light.Light.Shadow.Map)
	assert.Equal(t, 1, f.r.Info().Render.Calls)
	assert.Equal(t, 1, f.r.Info().Shadow.Calls)
	assert.Len(t, f.r.lights.Directional, 1)
	assert.True(t, f.r.lights.Directional[0].Shadow)
	assert.Len(t, f.rec.Draws(), 2)
}

func TestHiddenSubtreeIsSkipped(t *testing.T) {
	f := newFixture(t)
	group := scene.NewNode("group")
	group.Visible = false
	group.AddChild(scene.NewMesh("child", scene.CreateBox(1, 1, 1), scene.NewBasicMaterial(red)))
	f.scene.AddNode(group)
	f.render()

	assert.Empty(t, f.rec.Draws())
}

func TestFrustumCulling(t *testing.T) {
	f := newFixture(t)
	behind := f.addBox("behind", scene.NewBasicMaterial(red), math.Vec3{0, 0, 20})
	f.render()
	assert.Empty(t, f.rec.Draws())

	behind.FrustumCulled = false
	f.render()
	assert.Len(t, f.rec.Draws(), 1)
}

func TestOpaqueSortedFrontToBack(t *testing.T) {
	f := newFixture(t)
	m := scene.NewBasicMaterial(red)
	far := f.addBox("far", m, math.Vec3{0, 0, -10})
	near := f.addBox("near", m, math.Vec3{0, 0, 0})
	f.render()

	list := f.r.lists.Get(f.scene.ID(), f.camera.Id)
	require.Len(t, list.Opaque, 2)
	assert.Same(t, near, list.Opaque[0].Object)
	assert.Same(t, far, list.Opaque[1].Object)
}

func TestDrawRangeAndGroups(t *testing.T) {
	f := newFixture(t)
	box := f.addBox("box", scene.NewBasicMaterial(red), math.Vec3{})
	box.Geometry.DrawRange = scene.DrawRange{Start: 6, Count: 12}
	f.render()

	draws := f.rec.Filter("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, 12, draws[0].Args[1])
	assert.Equal(t, 6*2, draws[0].Args[3], "16-bit indices")

	geo := scene.CreateBox(1, 1, 1)
	geo.Groups = nil
	geo.AddGroup(0, 18, 0)
	geo.AddGroup(18, 18, 1)
	multi := scene.NewMultiMaterialMesh("multi", geo, []*scene.Material{
		scene.NewBasicMaterial(red), scene.NewBasicMaterial(core.Color{B: 1, A: 1}),
	})
	f.scene.RemoveNode(box)
	f.scene.AddNode(multi)
	f.render()

	draws = f.rec.Filter("DrawElements")
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, 18, d.Args[1])
	}
}

func TestWireframeDrawsLines(t *testing.T) {
	f := newFixture(t)
	m := scene.NewBasicMaterial(red)
	m.Wireframe = true
	f.addBox("box", m, math.Vec3{})
	f.render()

	draws := f.rec.Filter("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, gpu.LINES, draws[0].Args[0])
	assert.Equal(t, 1, f.r.Info().Render.Calls)
}

func TestInstancedDraw(t *testing.T) {
	f := newFixture(t)
	box := f.addBox("box", scene.NewBasicMaterial(red), math.Vec3{})
	box.InstanceCount = 3
	f.render()

	draws := f.rec.Filter("DrawElementsInstanced")
	require.Len(t, draws, 1)
	assert.Equal(t, 3, draws[0].Args[4])
}

func TestInstancedFallsBackWithoutExtension(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.Extensions = map[string]bool{}
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.DiscardHandler)
	r, err := New(rec, opts)
	require.NoError(t, err)

	sc := scene.NewScene()
	box := scene.NewMesh("box", scene.CreateBox(1, 1, 1), scene.NewBasicMaterial(red))
	box.InstanceCount = 3
	sc.AddNode(box)
	camera := scene.NewPerspectiveCamera(1, 1, 0.1, 100)
	camera.SetPosition(math.Vec3{0, 0, 5})
	rec.Reset()
	r.Render(sc, camera, nil, false)

	assert.Zero(t, rec.Count("DrawElementsInstanced"))
	assert.Equal(t, 1, rec.Count("DrawElements"))
}

func TestContextLossAndRestore(t *testing.T) {
	f := newFixture(t)
	f.addBox("box", scene.NewBasicMaterial(red), math.Vec3{})
	f.render()
	require.Len(t, f.rec.Draws(), 1)

	f.rec.Lost = true
	f.render()
	assert.Empty(t, f.rec.Calls)
	assert.True(t, f.r.contextLost)

	f.rec.Lost = false
	f.render()
	assert.False(t, f.r.contextLost)
	assert.Len(t, f.rec.Draws(), 1)
	assert.Equal(t, 1, f.r.Info().Programs)
	assert.Equal(t, 1, f.rec.Count("LinkProgram"), "programs are rebuilt after a restore")
}

func TestOffscreenTargetFollowsSize(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Offscreen = true })
	f.render()

	off := f.r.Offscreen()
	require.NotNil(t, off)
	assert.Equal(t, 800, off.Width)
	assert.Nil(t, f.r.RenderTarget())

	f.r.SetSize(400, 300)
	f.render()
	assert.Equal(t, 400, off.Width)
	assert.Equal(t, 300, off.Height)
	assert.Equal(t, core.Rect{Width: 400, Height: 300}, f.r.state.CurrentViewport())
	assert.Equal(t, 1, f.rec.Live("framebuffer"))
}

func TestReadRenderTargetPixels(t *testing.T) {
	f := newFixture(t)
	f.r.SetClearColor(red, 1)
	rt := scene.NewRenderTarget(4, 4, scene.DefaultRenderTargetOptions())
	f.rec.Reset()
	f.r.Render(f.scene, f.camera, rt, true)

	dst := make([]byte, 4)
	f.r.ReadRenderTargetPixels(rt, 1, 1, 1, 1, dst)
	assert.Equal(t, []byte{255, 0, 0, 255}, dst)

	f.rec.Reset()
	f.r.ReadRenderTargetPixels(rt, 3, 3, 2, 2, make([]byte, 16))
	assert.Zero(t, f.rec.Count("ReadPixels"), "out of range reads are skipped")
}

func TestDisposeMaterialReleasesProgram(t *testing.T) {
	f := newFixture(t)
	m := scene.NewBasicMaterial(red)
	box := f.addBox("box", m, math.Vec3{})
	f.render()
	require.Equal(t, 1, f.r.Info().Programs)

	f.r.DisposeMaterial(m)
	assert.Zero(t, m.Handle())
	assert.Zero(t, f.r.Info().Programs)
	assert.Zero(t, f.rec.Live("program"))

	f.r.DisposeGeometry(box.Geometry)
	assert.Zero(t, f.r.Info().Memory.Geometries)
}

func TestSceneBackgroundOverridesClearColor(t *testing.T) {
	f := newFixture(t)
	f.scene.Background = &core.Color{G: 1, A: 1}
	f.render()

	clears := f.rec.Filter("ClearColor")
	require.NotEmpty(t, clears)
	last := clears[len(clears)-1]
	assert.Equal(t, float32(1), last.Args[1])
}

func TestOverrideMaterial(t *testing.T) {
	f := newFixture(t)
	f.addBox("a", scene.NewLambertMaterial(red), math.Vec3{-1, 0, 0})
	f.addBox("b", scene.NewPhongMaterial(red), math.Vec3{1, 0, 0})
	f.scene.OverrideMaterial = scene.NewBasicMaterial(core.Color{B: 1, A: 1})
	f.render()

	assert.Len(t, f.rec.Draws(), 2)
	assert.Equal(t, 1, f.r.Info().Programs)
}

func TestMorphTargetsBindStrongestInfluences(t *testing.T) {
	f := newFixture(t)
	m := scene.NewBasicMaterial(red)
	m.MorphTargets = true
	box := f.addBox("box", m, math.Vec3{})
	pos := box.Geometry.Position()
	for range 3 {
		box.Geometry.MorphPositions = append(box.Geometry.MorphPositions,
			scene.NewFloatAttribute(append([]float32(nil), pos.Float...), 3))
	}
	box.MorphTargetInfluences = []float32{0.1, -0.9, 0.5}
	f.render()

	require.Len(t, f.rec.Draws(), 1)
	assert.Same(t, box.Geometry.MorphPositions[1], f.r.morphAttributes["morphTarget0"])
	assert.Same(t, box.Geometry.MorphPositions[2], f.r.morphAttributes["morphTarget1"])
	assert.Same(t, box.Geometry.MorphPositions[0], f.r.morphAttributes["morphTarget2"])
}

func TestDrawRangeIntersection(t *testing.T) {
	geo := scene.CreateBox(1, 1, 1)
	geo.DrawRange = scene.DrawRange{Start: 30, Count: -1}

	start, count := drawRange(geo, nil, geo.Index, 1)
	assert.Equal(t, 30, start)
	assert.Equal(t, 6, count)

	start, count = drawRange(geo, &scene.Group{Start: 0, Count: 12}, geo.Index, 2)
	assert.Equal(t, 60, start)
	assert.Zero(t, count)
}

func TestMorphBuffersDoNotLeakToNextDraw(t *testing.T) {
	f := newFixture(t)
	m := scene.NewBasicMaterial(red)
	m.MorphTargets = true
	a := f.addBox("a", m, math.Vec3{0, 0, 1})
	pos := a.Geometry.Position()
	a.Geometry.MorphPositions = append(a.Geometry.MorphPositions,
		scene.NewFloatAttribute(append([]float32(nil), pos.Float...), 3))
	a.MorphTargetInfluences = []float32{0.7}
	// b shares a's geometry and program, so only the morph state differs.
	b := scene.NewMesh("b", a.Geometry, m)
	b.SetPosition(math.Vec3{0, 0, -1})
	f.scene.AddNode(b)
	f.render()

	require.Len(t, f.rec.Draws(), 2)
	list := f.r.lists.Get(f.scene.ID(), f.camera.Id)
	require.Same(t, a, list.Opaque[0].Object)

	assert.Empty(t, f.r.morphAttributes)
	names := f.rec.Names()
	first := slices.Index(names, "DrawElements")
	assert.Contains(t, names[first+1:], "DisableVertexAttribArray", "morph slots are released before b is drawn")

	v, ok := f.rec.UniformValue(f.rec.CurrentProgram(), "morphTargetInfluences[0]")
	require.True(t, ok)
	assert.Equal(t, make([]float32, f.r.MaxMorphTargets), v)
}

// drawnDiffuse returns the diffuse color bound to the current program at
// each draw, in submission order.
func drawnDiffuse(rec *gputest.Recorder) [][]float32 {
	var current gpu.Program
	locs := map[gpu.Program]gpu.UniformLocation{}
	bound := map[gpu.Program][]float32{}
	var out [][]float32
	for _, c := range rec.Calls {
		switch c.Name {
		case "UseProgram":
			current = c.Args[0].(gpu.Program)
		case "Uniform3fv":
			loc, ok := locs[current]
			if !ok {
				loc = rec.GetUniformLocation(current, "diffuse")
				locs[current] = loc
			}
			if c.Args[0] == loc {
				bound[current] = c.Args[1].([]float32)
			}
		case "DrawArrays", "DrawElements", "DrawArraysInstanced", "DrawElementsInstanced":
			out = append(out, bound[current])
		}
	}
	return out
}

func TestTransparentDrawnAfterOpaqueBackToFront(t *testing.T) {
	f := newFixture(t)
	tagged := func(tag float32, transparent bool) *scene.Material {
		m := scene.NewBasicMaterial(core.Color{R: tag, A: 1})
		m.Transparent = transparent
		return m
	}
	f.addBox("glass near", tagged(0.4, true), math.Vec3{0, 0, 2})
	f.addBox("wall far", tagged(0.2, false), math.Vec3{0, 0, -6})
	f.addBox("glass far", tagged(0.3, true), math.Vec3{0, 0, -4})
	f.addBox("wall near", tagged(0.1, false), math.Vec3{0, 0, 0})
	f.render()

	require.Len(t, f.rec.Draws(), 4)
	assert.Equal(t, [][]float32{{0.1, 0, 0}, {0.2, 0, 0}, {0.3, 0, 0}, {0.4, 0, 0}}, drawnDiffuse(f.rec))
}
