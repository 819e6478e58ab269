package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/math"
)

func vecNear(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.Truef(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}

func TestWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	parent.SetPosition(math.Vec3{1, 0, 0})
	child.SetPosition(math.Vec3{0, 2, 0})
	vecNear(t, math.Vec3{1, 2, 0}, child.WorldPosition())

	parent.Translate(math.Vec3{0, 0, 3})
	vecNear(t, math.Vec3{1, 2, 3}, child.WorldPosition())

	parent.SetScale(math.Vec3{2, 2, 2})
	vecNear(t, math.Vec3{1, 4, 3}, child.WorldPosition())

	parent.RemoveChild(child)
	assert.Nil(t, child.Parent)
	vecNear(t, math.Vec3{0, 2, 0}, child.WorldPosition())
}

func TestCameraLookAtAndView(t *testing.T) {
	cam := NewPerspectiveCamera(math32.Pi/3, 1, 0.1, 100)
	cam.SetPosition(math.Vec3{0, 0, 5})
	cam.LookAt(math.Vec3Zero)

	forward := math.TransformDirection(math.Vec3{0, 0, -1}, cam.GetWorldMatrix())
	vecNear(t, math.Vec3{0, 0, -1}, forward)

	cam.UpdateMatrixWorldInverse()
	vecNear(t, math.Vec3{0, 0, -5}, math.TransformPoint(math.Vec3Zero, cam.MatrixWorldInverse()))

	cam.SetPosition(math.Vec3{5, 0, 0})
	cam.LookAt(math.Vec3Zero)
	forward = math.TransformDirection(math.Vec3{0, 0, -1}, cam.GetWorldMatrix())
	vecNear(t, math.Vec3{-1, 0, 0}, forward)
}

func TestLookAtUnderRotatedParent(t *testing.T) {
	parent := NewNode("pivot")
	parent.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Up, math32.Pi/2))
	light := NewSpotLight(core.ColorWhite, 1, 0, math32.Pi/6, 0, 1)
	parent.AddChild(light)
	light.SetPosition(math.Vec3{0, 0, 0})

	light.LookAt(math.Vec3{10, 0, 0})
	forward := math.TransformDirection(math.Vec3{0, 0, -1}, light.GetWorldMatrix())
	vecNear(t, math.Vec3{1, 0, 0}, forward)
}

func TestOrthographicProjectionZoom(t *testing.T) {
	cam := NewOrthographicCamera(-2, 2, 1, -1, 0.1, 10)
	p := math.TransformPoint(math.Vec3{2, 1, -1}, cam.ProjectionMatrix())
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 1, p[1], 1e-5)

	cam.Zoom = 2
	cam.UpdateProjectionMatrix()
	p = math.TransformPoint(math.Vec3{1, 0.5, -1}, cam.ProjectionMatrix())
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 1, p[1], 1e-5)
}

func TestGeometryBoundsCache(t *testing.T) {
	g := CreateBox(2, 2, 2)
	s := g.BoundingSphere()
	vecNear(t, math.Vec3Zero, s.Center)
	assert.InDelta(t, math32.Sqrt(3), s.Radius, 1e-4)

	pos := g.Position()
	for i := 0; i < len(pos.Float); i += 3 {
		pos.Float[i] += 10
	}
	// Stale until the attribute is marked dirty.
	vecNear(t, math.Vec3Zero, g.BoundingSphere().Center)
	pos.MarkDirty()
	vecNear(t, math.Vec3{10, 0, 0}, g.BoundingSphere().Center)
	vecNear(t, math.Vec3{9, -1, -1}, g.BoundingBox().Min)
}

func TestBoxGroupsAndMaterialFor(t *testing.T) {
	g := CreateBox(1, 1, 1)
	require.Len(t, g.Groups, 6)
	assert.Equal(t, 36, g.Index.Count())
	assert.Equal(t, 24, g.Position().Count())

	red := NewBasicMaterial(core.ColorRed)
	blue := NewBasicMaterial(core.ColorBlue)
	n := NewMultiMaterialMesh("box", g, []*Material{red, blue})
	assert.Same(t, red, n.MaterialFor(&g.Groups[0]))
	assert.Same(t, blue, n.MaterialFor(&g.Groups[1]))
	assert.Nil(t, n.MaterialFor(&g.Groups[2]))

	single := NewMesh("single", g, red)
	assert.Same(t, red, single.MaterialFor(&g.Groups[4]))
}

func TestMaterialVersionAndClone(t *testing.T) {
	m := NewPhongMaterial(core.ColorGreen)
	assert.Equal(t, MaterialPhong, m.Kind())
	assert.True(t, m.UsesLights())
	assert.True(t, m.Fog)

	v := m.Version()
	m.MarkDirty()
	assert.Equal(t, v+1, m.Version())

	c := m.Clone()
	assert.NotEqual(t, m.Handle(), c.Handle())
	c.Params.(*PhongParams).Shininess = 99
	assert.NotEqual(t, float32(99), m.Params.(*PhongParams).Shininess)

	raw := NewRawShaderMaterial("void main(){}", "void main(){}", nil)
	assert.Equal(t, MaterialRawShader, raw.Kind())
	assert.False(t, raw.UsesLights())
	assert.False(t, raw.UsesClipping())
	assert.False(t, raw.Fog)
	assert.NotNil(t, raw.Params.(*ShaderParams).Uniforms)
}

func TestHandlesAreRecycled(t *testing.T) {
	m := NewBasicMaterial(core.ColorWhite)
	h := m.Handle()
	require.NotZero(t, h)
	m.Dispose()
	assert.Zero(t, m.Handle())

	again := NewBasicMaterial(core.ColorWhite)
	assert.Equal(t, h, again.Handle())
}

func TestUniformUploadGate(t *testing.T) {
	u := NewUniform(float32(1))
	assert.True(t, u.NeedsUpload())
	u.Uploaded()
	assert.True(t, u.NeedsUpload(), "ungated uniforms always upload")

	u.SetNeedsUpdate(false)
	assert.False(t, u.NeedsUpload())
	u.SetNeedsUpdate(true)
	assert.True(t, u.NeedsUpload())
	u.Uploaded()
	assert.False(t, u.NeedsUpload())

	table := Uniforms{"a": NewUniform(1)}
	table.Set("a", 2)
	table.Set("b", 3)
	clone := table.Clone()
	clone.Set("a", 5)
	assert.Equal(t, 2, table["a"].Value)

	table.Merge(Uniforms{"a": NewUniform(9), "c": NewUniform(4)})
	assert.Equal(t, 2, table["a"].Value)
	assert.Equal(t, 4, table["c"].Value)
}

func TestRenderTargetSetSize(t *testing.T) {
	rt := NewRenderTarget(64, 32, DefaultRenderTargetOptions())
	assert.Same(t, rt, rt.Texture.RenderTarget())
	v := rt.Version()

	rt.SetSize(64, 32)
	assert.Equal(t, v, rt.Version())

	rt.SetSize(128, 32)
	assert.Equal(t, v+1, rt.Version())
	assert.Equal(t, core.Rect{Width: 128, Height: 32}, rt.Viewport)
}

func TestSceneLights(t *testing.T) {
	sc := NewScene()
	group := NewNode("group")
	sc.AddNode(group)
	group.AddChild(NewPointLight(core.ColorWhite, 1, 0, 2))
	sc.AddNode(NewAmbientLight(core.ColorWhite, 0.2))
	sc.AddNode(NewMesh("mesh", CreateSphere(1, 8, 6), NewBasicMaterial(core.ColorRed)))

	assert.Len(t, sc.Lights(), 2)
	assert.NotEqual(t, sc.ID(), NewScene().ID())
}

func TestSpotShadowCameraFollowsCone(t *testing.T) {
	n := NewSpotLight(core.ColorWhite, 1, 20, math32.Pi/8, 0.1, 1)
	n.Light.UpdateSpotShadowCamera()
	cam := n.Light.Shadow.Camera
	assert.InDelta(t, math32.Pi/4, cam.Fov, 1e-6)
	assert.Equal(t, float32(20), cam.Far)
}
