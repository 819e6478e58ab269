package resources

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/gpu"
	"retained-renderer/gpu/gputest"
	"retained-renderer/internal/glstate"
	"retained-renderer/scene"
)

type fixture struct {
	rec      *gputest.Recorder
	logs     *bytes.Buffer
	state    *glstate.State
	ext      *Extensions
	caps     *Capabilities
	info     *Info
	attrs    *Attributes
	geos     *Geometries
	textures *Textures
}

func newFixture(t *testing.T, rec *gputest.Recorder) *fixture {
	t.Helper()
	f := &fixture{rec: rec, logs: &bytes.Buffer{}, info: &Info{}}
	logger := slog.New(slog.NewTextHandler(f.logs, nil))
	f.state = glstate.New(rec, logger)
	f.ext = NewExtensions(rec, logger)
	f.caps = NewCapabilities(rec, f.ext, "highp", false, logger)
	f.attrs = NewAttributes(rec, f.caps, logger)
	f.geos = NewGeometries(f.attrs, f.info)
	f.textures = NewTextures(rec, f.state, f.caps, f.ext, f.info, logger)
	rec.Reset()
	return f
}

func TestTable(t *testing.T) {
	var tab Table[string]
	tab.Put(0, "ignored")
	assert.Equal(t, 0, tab.Len())

	tab.Put(3, "c")
	tab.Put(1, "a")
	v, ok := tab.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	_, ok = tab.Get(2)
	assert.False(t, ok)
	_, ok = tab.Get(99)
	assert.False(t, ok)

	var order []scene.Handle
	tab.Range(func(h scene.Handle, _ string) bool {
		order = append(order, h)
		return true
	})
	assert.Equal(t, []scene.Handle{1, 3}, order)

	v, ok = tab.Delete(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1, tab.Len())
	tab.Clear()
	assert.Equal(t, 0, tab.Len())
}

func TestAttributeUploadFollowsVersion(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	pos := scene.NewFloatAttribute([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3)

	b := f.attrs.Update(pos, gpu.ARRAY_BUFFER)
	require.NotNil(t, b)
	assert.Equal(t, gpu.FLOAT, b.Type)
	assert.Equal(t, 4, b.BytesPerElement)
	assert.Equal(t, []string{"CreateBuffer", "BindBuffer", "BufferData"}, f.rec.Names())
	assert.Equal(t, []any{gpu.ARRAY_BUFFER, 36, gpu.STATIC_DRAW}, f.rec.Filter("BufferData")[0].Args)

	f.rec.Reset()
	assert.Same(t, b, f.attrs.Update(pos, gpu.ARRAY_BUFFER))
	assert.Empty(t, f.rec.Calls)

	pos.MarkDirty()
	f.attrs.Update(pos, gpu.ARRAY_BUFFER)
	assert.Equal(t, 1, f.rec.Count("BufferData"))
	assert.Equal(t, 0, f.rec.Count("CreateBuffer"))
}

func TestDynamicAttributeUploadsRange(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	pos := scene.NewFloatAttribute(make([]float32, 12), 3)
	pos.Dynamic = true

	f.attrs.Update(pos, gpu.ARRAY_BUFFER)
	assert.Equal(t, []any{gpu.ARRAY_BUFFER, 48, gpu.DYNAMIC_DRAW}, f.rec.Filter("BufferData")[0].Args)

	f.rec.Reset()
	pos.UpdateRange.Offset = 3
	pos.UpdateRange.Count = 3
	pos.MarkDirty()
	f.attrs.Update(pos, gpu.ARRAY_BUFFER)
	require.Equal(t, 1, f.rec.Count("BufferSubData"))
	assert.Equal(t, []any{gpu.ARRAY_BUFFER, 12, 12}, f.rec.Filter("BufferSubData")[0].Args)
	assert.Equal(t, 0, f.rec.Count("BufferData"))
	assert.Equal(t, -1, pos.UpdateRange.Count)
}

func TestIndexWidth(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	small := scene.NewIndexAttribute([]uint32{0, 1, 2})
	b := f.attrs.Update(small, gpu.ELEMENT_ARRAY_BUFFER)
	require.NotNil(t, b)
	assert.Equal(t, gpu.UNSIGNED_SHORT, b.Type)
	assert.Equal(t, 6, f.rec.Filter("BufferData")[0].Args[1])

	big := scene.NewIndexAttribute([]uint32{0, 70000})
	b = f.attrs.Update(big, gpu.ELEMENT_ARRAY_BUFFER)
	require.NotNil(t, b)
	assert.Equal(t, gpu.UNSIGNED_INT, b.Type)

	rec := gputest.NewRecorder()
	rec.Extensions = map[string]bool{}
	limited := newFixture(t, rec)
	assert.Nil(t, limited.attrs.Update(scene.NewIndexAttribute([]uint32{0, 70000}), gpu.ELEMENT_ARRAY_BUFFER))
	assert.Contains(t, limited.logs.String(), "OES_element_index_uint")
}

func TestGeometryWireframeAndDispose(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	geo := scene.CreateBox(1, 1, 1)
	require.NotNil(t, geo.Index)

	f.geos.Get(geo)
	f.geos.Get(geo)
	assert.Equal(t, 1, f.info.Memory.Geometries)

	f.geos.Update(geo)
	wire := f.geos.Wireframe(geo)
	require.NotNil(t, wire)
	assert.Len(t, wire.Uint, 2*len(geo.Index.Uint))
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0}, wire.Uint[:6])
	assert.Same(t, wire, f.geos.Wireframe(geo), "cached until the source changes")

	geo.Index.MarkDirty()
	assert.NotSame(t, wire, f.geos.Wireframe(geo))

	require.NotZero(t, f.rec.Live("buffer"))
	f.geos.Dispose(geo)
	assert.Zero(t, f.rec.Live("buffer"))
	assert.Zero(t, f.info.Memory.Geometries)
}

func TestWireframeWithoutIndex(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	geo := scene.NewGeometry("tri")
	geo.SetAttribute("position", scene.NewFloatAttribute(make([]float32, 18), 3))

	wire := f.geos.Wireframe(geo)
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0, 3, 4, 4, 5, 5, 3}, wire.Uint)
}

func TestTextureUploadOncePerVersion(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	tex := scene.NewSolidTexture("white", 255, 255, 255, 255)

	f.textures.SetTexture2D(tex, 0)
	assert.Equal(t, 1, f.rec.Count("TexImage2D"))
	assert.Equal(t, 1, f.info.Memory.Textures)

	f.rec.Reset()
	f.textures.SetTexture2D(tex, 0)
	assert.Empty(t, f.rec.Calls)

	tex.MarkDirty()
	f.textures.SetTexture2D(tex, 0)
	assert.Equal(t, 1, f.rec.Count("TexImage2D"))
	assert.Equal(t, 0, f.rec.Count("CreateTexture"))

	f.textures.DisposeTexture(tex)
	assert.Zero(t, f.info.Memory.Textures)
	assert.Equal(t, 1, f.rec.Count("DeleteTexture"))
}

func TestMissingImageBindsPlaceholder(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	tex := scene.NewTexture("pending", nil)

	f.textures.SetTexture2D(tex, 2)
	assert.Contains(t, f.logs.String(), "texture image missing")
	assert.Zero(t, f.info.Memory.Textures)

	binds := f.rec.Filter("BindTexture")
	require.NotEmpty(t, binds)
	assert.NotEqual(t, gpu.Texture(0), binds[len(binds)-1].Args[1])
	assert.Equal(t, []any{gpu.TEXTURE0 + 2}, f.rec.Filter("ActiveTexture")[0].Args)
}

func TestCompressedTextureNeedsExtension(t *testing.T) {
	compressed := func() *scene.Texture {
		tex := scene.NewTexture("dxt", &scene.Image{Width: 4, Height: 4, Pixels: make([]byte, 8)})
		tex.Format = scene.RGBS3TCDXT1Format
		return tex
	}

	rec := gputest.NewRecorder()
	rec.Extensions = map[string]bool{}
	f := newFixture(t, rec)
	f.textures.SetTexture2D(compressed(), 0)
	assert.Contains(t, f.logs.String(), "unsupported compressed texture format")
	assert.Zero(t, f.rec.Count("CompressedTexImage2D"))

	f = newFixture(t, gputest.NewRecorder())
	f.textures.SetTexture2D(compressed(), 0)
	assert.Equal(t, 1, f.rec.Count("CompressedTexImage2D"))
	assert.Zero(t, f.rec.Count("GenerateMipmap"))
}

func TestNonPowerOfTwoIsClamped(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	tex := scene.NewTexture("npot", &scene.Image{Width: 3, Height: 2, Pixels: make([]byte, 24)})
	tex.WrapS = scene.RepeatWrapping

	f.textures.SetTexture2D(tex, 0)
	assert.Contains(t, f.rec.Calls, gputest.Call{Name: "TexParameteri", Args: []any{gpu.TEXTURE_2D, gpu.TEXTURE_WRAP_S, int32(gpu.CLAMP_TO_EDGE)}})
	assert.Contains(t, f.rec.Calls, gputest.Call{Name: "TexParameteri", Args: []any{gpu.TEXTURE_2D, gpu.TEXTURE_MIN_FILTER, int32(gpu.LINEAR)}})
	assert.Zero(t, f.rec.Count("GenerateMipmap"))
	assert.Contains(t, f.logs.String(), "not a power of two")
}

func TestRenderTargetRecreatedAfterResize(t *testing.T) {
	f := newFixture(t, gputest.NewRecorder())
	rt := scene.NewRenderTarget(800, 600, scene.DefaultRenderTargetOptions())

	f.state.BindFramebuffer(0)
	fb := f.textures.SetupRenderTarget(rt)
	require.NotZero(t, fb)
	assert.Equal(t, fb, f.textures.SetupRenderTarget(rt))
	assert.Equal(t, 1, f.rec.Count("CreateFramebuffer"))
	assert.Equal(t, 1, f.info.Memory.Textures)

	binds := f.rec.Filter("BindFramebuffer")
	assert.Equal(t, []any{gpu.FRAMEBUFFER, gpu.Framebuffer(0)}, binds[len(binds)-1].Args, "previous binding restored")

	rt.SetSize(400, 300)
	_, ok := f.textures.Framebuffer(rt)
	assert.False(t, ok)
	assert.Equal(t, 0, f.rec.Count("DeleteFramebuffer"), "resizing alone does not touch the GPU")

	f.textures.SetupRenderTarget(rt)
	assert.Equal(t, 1, f.rec.Count("DeleteFramebuffer"))
	assert.Equal(t, 1, f.rec.Count("DeleteRenderbuffer"))
	assert.Equal(t, 2, f.rec.Count("CreateFramebuffer"))
	storage := f.rec.Filter("RenderbufferStorage")
	assert.Equal(t, []any{gpu.RENDERBUFFER, gpu.DEPTH_COMPONENT16, 400, 300}, storage[len(storage)-1].Args)
	assert.Equal(t, 1, f.rec.Live("framebuffer"))
	assert.Equal(t, 1, f.info.Memory.Textures)

	f.textures.DisposeRenderTarget(rt)
	assert.Zero(t, f.rec.Live("framebuffer"))
	assert.Zero(t, f.rec.Live("renderbuffer"))
	assert.Zero(t, f.info.Memory.Textures)
}

func TestIncompleteFramebufferIsLogged(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FramebufferStatus = gpu.Enum(0x8CD6)
	f := newFixture(t, rec)

	f.textures.SetupRenderTarget(scene.NewRenderTarget(64, 64, scene.DefaultRenderTargetOptions()))
	assert.Contains(t, f.logs.String(), "framebuffer incomplete")
	assert.Contains(t, f.logs.String(), "level=ERROR")
}

func TestTextureUnitOverflowWarnsOnce(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.Params = map[gpu.Enum]int{gpu.MAX_TEXTURE_IMAGE_UNITS: 2}
	f := newFixture(t, rec)

	for want := 0; want < 4; want++ {
		assert.Equal(t, want, f.textures.AllocTextureUnit())
	}
	assert.Equal(t, 1, strings.Count(f.logs.String(), "texture units exceed"))

	f.textures.ResetTextureUnits()
	assert.Equal(t, 0, f.textures.AllocTextureUnit())
}

func TestInfoCounters(t *testing.T) {
	var info Info
	info.Memory.Geometries = 2
	info.Update(36, gpu.TRIANGLES, 1)
	info.Update(4, gpu.POINTS, 2)
	info.Update(5, gpu.LINE_STRIP, 0)
	info.UpdateShadow()

	assert.Equal(t, 3, info.Render.Calls)
	assert.Equal(t, 12, info.Render.Faces)
	assert.Equal(t, 36+8+5, info.Render.Vertices)
	assert.Equal(t, 8, info.Render.Points)
	assert.Equal(t, 4, info.Render.Lines)
	assert.Equal(t, 1, info.Shadow.Calls)

	info.Reset()
	assert.Equal(t, RenderInfo{Frame: 1}, info.Render)
	assert.Zero(t, info.Shadow.Calls)
	assert.Equal(t, 2, info.Memory.Geometries)
}

func TestCapabilitiesDegrade(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.Extensions = map[string]bool{}
	f := newFixture(t, rec)

	caps := NewCapabilities(rec, f.ext, "ultra", true, slog.New(slog.NewTextHandler(f.logs, nil)))
	assert.Equal(t, "highp", caps.Precision)
	assert.False(t, caps.LogarithmicDepthBuffer)
	assert.False(t, caps.InstancedArrays)
	assert.Equal(t, float32(1), caps.MaxAnisotropy)
	assert.Contains(t, f.logs.String(), ExtFragDepth)

	rec = gputest.NewRecorder()
	rec.Params = map[gpu.Enum]int{gpu.MAX_TEXTURE_MAX_ANISOTROPY_EXT: 16}
	f = newFixture(t, rec)
	caps = NewCapabilities(rec, f.ext, "mediump", true, nil)
	assert.Equal(t, "mediump", caps.Precision)
	assert.True(t, caps.LogarithmicDepthBuffer)
	assert.Equal(t, float32(16), caps.MaxAnisotropy)
	assert.Equal(t, 16, caps.MaxTextures)
}

func TestExtensionsWarnOnce(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.Extensions = map[string]bool{ExtInstancedArrays: true}
	var logs bytes.Buffer
	ext := NewExtensions(rec, slog.New(slog.NewTextHandler(&logs, nil)))

	assert.True(t, ext.Has(ExtInstancedArrays))
	assert.False(t, ext.Has(ExtDepthTexture))
	assert.Empty(t, logs.String(), "Has never warns")

	ext.Require(ExtDepthTexture)
	ext.Require(ExtDepthTexture)
	assert.Equal(t, 1, strings.Count(logs.String(), ExtDepthTexture))
}
