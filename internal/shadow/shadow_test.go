package shadow

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/gpu/gputest"
	"retained-renderer/internal/glstate"
	"retained-renderer/math"
	"retained-renderer/scene"
)

type drawn struct {
	object   *scene.Node
	material *scene.Material
	side     scene.Side
	group    *scene.Group
}

type fakeRenderer struct {
	targets []*scene.RenderTarget
	clears  int
	items   []drawn
}

func (f *fakeRenderer) SetRenderTarget(rt *scene.RenderTarget) { f.targets = append(f.targets, rt) }
func (f *fakeRenderer) Clear(color, depth, stencil bool)       { f.clears++ }

func (f *fakeRenderer) RenderShadowItem(_ *scene.Camera, object *scene.Node, _ *scene.Geometry, material *scene.Material, group *scene.Group) {
	f.items = append(f.items, drawn{object: object, material: material, side: material.Side, group: group})
}

type fixture struct {
	rec    *gputest.Recorder
	fake   *fakeRenderer
	pass   *Map
	scene  *scene.Scene
	camera *scene.Camera
}

func newFixture(t *testing.T, maxTextureSize int) *fixture {
	t.Helper()
	rec := gputest.NewRecorder()
	logger := slog.New(slog.DiscardHandler)
	f := &fixture{
		rec:    rec,
		fake:   &fakeRenderer{},
		scene:  scene.NewScene(),
		camera: scene.NewPerspectiveCamera(1, 1, 0.1, 100),
	}
	f.pass = New(f.fake, glstate.New(rec, logger), maxTextureSize, logger)
	f.pass.Enabled = true
	rec.Reset()
	return f
}

func (f *fixture) addCaster(name string, mat *scene.Material) *scene.Node {
	n := scene.NewMesh(name, scene.CreateBox(1, 1, 1), mat)
	n.CastShadow = true
	f.scene.AddNode(n)
	return n
}

func (f *fixture) addLight(n *scene.Node, pos math.Vec3) *scene.Node {
	n.CastShadow = true
	n.SetPosition(pos)
	f.scene.AddNode(n)
	f.scene.UpdateMatrixWorld()
	return n
}

func TestDirectionalShadowAllocatesOneTarget(t *testing.T) {
	f := newFixture(t, 4096)
	mesh := f.addCaster("box", scene.NewBasicMaterial(core.ColorRed))
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{3, 10, 4})

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

	sh := light.Light.Shadow
	require.NotNil(t, sh.Map)
	assert.Equal(t, 512, sh.Map.Width)
	assert.Equal(t, 512, sh.Map.Height)
	assert.Equal(t, []*scene.RenderTarget{sh.Map}, f.fake.targets)
	assert.Equal(t, 1, f.fake.clears)
	require.Len(t, f.fake.items, 1)
	assert.Same(t, mesh, f.fake.items[0].object)
	assert.Equal(t, scene.MaterialDepth, f.fake.items[0].material.Kind())
	assert.Equal(t, scene.BackSide, f.fake.items[0].material.Side, "front faces render reversed")

	first := sh.Map
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	assert.Same(t, first, sh.Map, "the map is allocated once")
}

func TestShadowMatrixMapsNearPlaneIntoUnitRange(t *testing.T) {
	for _, tc := range []struct {
		name  string
		light *scene.Node
	}{
		{"directional", scene.NewDirectionalLight(core.ColorWhite, 1)},
		{"spot", scene.NewSpotLight(core.ColorWhite, 1, 0, 0.6, 0, 1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 4096)
			eye := math.Vec3{3, 10, 4}
			light := f.addLight(tc.light, eye)

			f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

			sh := light.Light.Shadow
			forward := light.Light.TargetPosition().Sub(eye).Normalize()
			p := eye.Add(forward.Mul(sh.Camera.Near))
			v := sh.Matrix.Mul4x1(p.Vec4(1))
			v = v.Mul(1 / v[3])
			for i := 0; i < 3; i++ {
				assert.GreaterOrEqual(t, v[i], float32(-1e-4))
				assert.LessOrEqual(t, v[i], float32(1+1e-4))
			}
			assert.InDelta(t, 0.5, v[0], 1e-3)
			assert.InDelta(t, 0.5, v[1], 1e-3)
			assert.InDelta(t, 0, v[2], 1e-3)
		})
	}
}

func TestPointLightUsesFourByTwoLayout(t *testing.T) {
	f := newFixture(t, 4096)
	f.addCaster("box", scene.NewBasicMaterial(core.ColorRed))
	pos := math.Vec3{0, 3, 0}
	light := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	light.Light.Shadow.MapSize = [2]int{256, 256}
	f.addLight(light, pos)

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

	sh := light.Light.Shadow
	require.NotNil(t, sh.Map)
	assert.Equal(t, 1024, sh.Map.Width)
	assert.Equal(t, 512, sh.Map.Height)

	var viewports [][]any
	for _, c := range f.rec.Filter("Viewport") {
		viewports = append(viewports, c.Args)
	}
	assert.Equal(t, [][]any{
		{512, 256, 256, 256},
		{0, 256, 256, 256},
		{768, 256, 256, 256},
		{256, 256, 256, 256},
		{768, 0, 256, 256},
		{256, 0, 256, 256},
	}, viewports)

	assert.Equal(t, math.Mat4Translation(math.Vec3{0, -3, 0}), sh.Matrix)
	require.NotEmpty(t, f.fake.items, "the -Y face sees the box")
	for _, it := range f.fake.items {
		require.Equal(t, scene.MaterialDistance, it.material.Kind())
		p := it.material.Params.(*scene.DistanceParams)
		assert.Equal(t, pos, p.ReferencePosition)
		assert.Equal(t, sh.Camera.Far, p.FarDistance)
	}
}

func TestMapSizeIsClamped(t *testing.T) {
	f := newFixture(t, 1024)
	dir := scene.NewDirectionalLight(core.ColorWhite, 1)
	dir.Light.Shadow.MapSize = [2]int{4096, 2048}
	f.addLight(dir, math.Vec3{0, 5, 1})
	point := scene.NewPointLight(core.ColorWhite, 1, 0, 1)
	f.addLight(point, math.Vec3{0, 5, 0})

	f.pass.Render([]*scene.Node{dir, point}, f.scene, f.camera)

	assert.Equal(t, [2]int{1024, 1024}, [2]int{dir.Light.Shadow.Map.Width, dir.Light.Shadow.Map.Height})
	assert.Equal(t, [2]int{1024, 1024}, [2]int{point.Light.Shadow.Map.Width, point.Light.Shadow.Map.Height})
}

func TestMaterialVariants(t *testing.T) {
	f := newFixture(t, 4096)
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{0, 10, 1})

	double := scene.NewBasicMaterial(core.ColorRed)
	double.Side = scene.DoubleSide
	plain := f.addCaster("double", double)

	skinnedMat := scene.NewBasicMaterial(core.ColorRed)
	skinnedMat.Skinning = true
	skinned := f.addCaster("skinned", skinnedMat)
	skinned.Skeleton = scene.NewSkeleton(nil, nil)

	custom := scene.NewDepthMaterial(scene.BasicDepthPacking)
	withCustom := f.addCaster("custom", scene.NewBasicMaterial(core.ColorRed))
	withCustom.CustomDepthMaterial = custom

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

	byObject := map[*scene.Node]*scene.Material{}
	for _, it := range f.fake.items {
		byObject[it.object] = it.material
	}
	require.Len(t, byObject, 3)
	assert.Equal(t, scene.BackSide, byObject[plain].Side, "double-sided renders single-sided, then reversed")
	assert.False(t, byObject[plain].Skinning)
	assert.True(t, byObject[skinned].Skinning)
	assert.Same(t, custom, byObject[withCustom])

	f.fake.items = nil
	f.pass.RenderSingleSided = false
	f.pass.RenderReverseSided = false
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	for _, it := range f.fake.items {
		if it.object == plain {
			assert.Equal(t, scene.DoubleSide, it.material.Side)
		}
	}
}

func TestClipShadowsUsesPerMaterialClone(t *testing.T) {
	f := newFixture(t, 4096)
	f.pass.LocalClipping = true
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{0, 10, 1})
	mat := scene.NewBasicMaterial(core.ColorRed)
	mat.ClipShadows = true
	mat.ClippingPlanes = []math.Plane{math.NewPlane(math.Vec3{1, 0, 0}, 0)}
	f.addCaster("clipped", mat)

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

	require.Len(t, f.fake.items, 2)
	clone := f.fake.items[0].material
	assert.Same(t, clone, f.fake.items[1].material)
	assert.NotSame(t, f.pass.depthMaterials[0], clone)
	assert.Equal(t, mat.ClippingPlanes, clone.ClippingPlanes)
	assert.Len(t, f.pass.Materials(), 2*variantCount+1)
}

func TestSkippedCasters(t *testing.T) {
	f := newFixture(t, 4096)
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{0, 10, 1})

	hidden := scene.NewNode("hidden")
	hidden.Visible = false
	child := scene.NewMesh("child", scene.CreateBox(1, 1, 1), scene.NewBasicMaterial(core.ColorRed))
	child.CastShadow = true
	hidden.AddChild(child)
	f.scene.AddNode(hidden)

	f.addCaster("receiver only", scene.NewBasicMaterial(core.ColorRed)).CastShadow = false

	far := f.addCaster("far away", scene.NewBasicMaterial(core.ColorRed))
	far.SetPosition(math.Vec3{100, 0, 0})
	f.scene.UpdateMatrixWorld()

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	assert.Empty(t, f.fake.items)

	far.FrustumCulled = false
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	require.Len(t, f.fake.items, 1)
	assert.Same(t, far, f.fake.items[0].object)
}

func TestCastersDrawFromList(t *testing.T) {
	f := newFixture(t, 4096)
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{0, 10, 1})

	glass := scene.NewBasicMaterial(core.ColorWhite)
	glass.Transparent = true
	glass.Side = scene.BackSide
	pane := f.addCaster("pane", glass)
	box := f.addCaster("box", scene.NewBasicMaterial(core.ColorRed))
	f.scene.UpdateMatrixWorld()

	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)

	require.Len(t, f.fake.items, 2)
	assert.Equal(t, 2, f.pass.casters.Len())
	assert.Same(t, box, f.fake.items[0].object, "opaque casters first")
	assert.Same(t, pane, f.fake.items[1].object)
	// Both share the pooled depth material; the side is resolved per draw.
	assert.Same(t, f.fake.items[0].material, f.fake.items[1].material)
	assert.Equal(t, scene.BackSide, f.fake.items[0].side)
	assert.Equal(t, scene.FrontSide, f.fake.items[1].side)
}

func TestUpdateGating(t *testing.T) {
	f := newFixture(t, 4096)
	light := f.addLight(scene.NewDirectionalLight(core.ColorWhite, 1), math.Vec3{0, 10, 1})

	f.pass.Enabled = false
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	assert.Empty(t, f.fake.targets)

	f.pass.Enabled = true
	f.pass.AutoUpdate = false
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	assert.Empty(t, f.fake.targets)

	f.pass.NeedsUpdate = true
	f.pass.Render([]*scene.Node{light}, f.scene, f.camera)
	assert.Len(t, f.fake.targets, 1)
	assert.False(t, f.pass.NeedsUpdate)
}
