package resources

import (
	"log/slog"
	"math/bits"

	"github.com/chewxy/math32"

	"retained-renderer/gpu"
	"retained-renderer/internal/glstate"
	"retained-renderer/scene"
)

type textureEntry struct {
	texture gpu.Texture
	target  gpu.Enum
	version uint32
}

type targetEntry struct {
	framebuffer  gpu.Framebuffer
	renderbuffer gpu.Renderbuffer
	depthTexture gpu.Texture
	version      uint32
}

// Textures uploads textures, hands out texture units and owns the
// framebuffers of render targets.
type Textures struct {
	gl    gpu.Context
	state *glstate.State
	caps  *Capabilities
	ext   *Extensions
	info  *Info
	log   *slog.Logger

	textures Table[*textureEntry]
	targets  Table[*targetEntry]

	units     int
	unitsWarn bool
}

func NewTextures(gl gpu.Context, state *glstate.State, caps *Capabilities, ext *Extensions, info *Info, logger *slog.Logger) *Textures {
	if logger == nil {
		logger = slog.Default()
	}
	return &Textures{
		gl:    gl,
		state: state,
		caps:  caps,
		ext:   ext,
		info:  info,
		log:   logger.With(slog.String("component", "textures")),
	}
}

// ── Texture units ────────────────────────────────────────────────────────────

// ResetTextureUnits restarts unit allocation. Called once per program setup.
func (t *Textures) ResetTextureUnits() {
	t.units = 0
}

// AllocTextureUnit returns the next free unit, warning once when the
// context has fewer units than the program samples.
func (t *Textures) AllocTextureUnit() int {
	unit := t.units
	if unit >= t.caps.MaxTextures && !t.unitsWarn {
		t.unitsWarn = true
		t.log.Warn("texture units exceed the context limit",
			slog.Int("unit", unit), slog.Int("max", t.caps.MaxTextures))
	}
	t.units++
	return unit
}

// ── Sampling ─────────────────────────────────────────────────────────────────

// SetTexture2D makes tex sampleable on unit, uploading it first if needed.
// A nil texture binds the placeholder.
func (t *Textures) SetTexture2D(tex *scene.Texture, unit int) {
	t.state.ActiveTexture(gpu.TEXTURE0 + gpu.Enum(unit))
	if tex == nil {
		t.state.BindTexture(gpu.TEXTURE_2D, 0)
		return
	}
	if rt := tex.RenderTarget(); rt != nil {
		t.SetupRenderTarget(rt)
	}
	e, ok := t.textures.Get(tex.Handle())
	if !ok || e.version != tex.Version() {
		e = t.upload2D(tex, e)
	}
	if e == nil {
		t.state.BindTexture(gpu.TEXTURE_2D, 0)
		return
	}
	t.state.BindTexture(gpu.TEXTURE_2D, e.texture)
}

// SetTextureCube is SetTexture2D for cube textures.
func (t *Textures) SetTextureCube(tex *scene.Texture, unit int) {
	t.state.ActiveTexture(gpu.TEXTURE0 + gpu.Enum(unit))
	if tex == nil {
		t.state.BindTexture(gpu.TEXTURE_CUBE_MAP, 0)
		return
	}
	e, ok := t.textures.Get(tex.Handle())
	if !ok || e.version != tex.Version() {
		e = t.uploadCube(tex, e)
	}
	if e == nil {
		t.state.BindTexture(gpu.TEXTURE_CUBE_MAP, 0)
		return
	}
	t.state.BindTexture(gpu.TEXTURE_CUBE_MAP, e.texture)
}

func (t *Textures) create(tex *scene.Texture, target gpu.Enum) *textureEntry {
	e := &textureEntry{texture: t.gl.CreateTexture(), target: target}
	t.textures.Put(tex.Handle(), e)
	t.info.Memory.Textures++
	return e
}

// upload2D sends the image of tex. Missing images and unsupported formats
// keep whatever was uploaded before.
func (t *Textures) upload2D(tex *scene.Texture, e *textureEntry) *textureEntry {
	img := tex.Image
	if img == nil {
		if tex.RenderTarget() == nil {
			t.log.Warn("texture image missing", slog.String("texture", tex.Name))
		}
		return e
	}
	format, typ, ok := t.formats(tex)
	if !ok {
		return e
	}
	if e == nil {
		e = t.create(tex, gpu.TEXTURE_2D)
	}
	t.state.BindTexture(gpu.TEXTURE_2D, e.texture)
	t.gl.PixelStorei(gpu.UNPACK_FLIP_Y_WEBGL, boolParam(tex.FlipY))
	t.gl.PixelStorei(gpu.UNPACK_ALIGNMENT, 4)

	pot := isPowerOfTwo(img.Width, img.Height)
	t.setParameters(gpu.TEXTURE_2D, tex, pot)
	if tex.Format.IsCompressed() {
		t.gl.CompressedTexImage2D(gpu.TEXTURE_2D, 0, format, img.Width, img.Height, img.Pixels)
	} else {
		t.gl.TexImage2D(gpu.TEXTURE_2D, 0, format, img.Width, img.Height, format, typ, img.Pixels)
	}
	if tex.GenerateMipmaps && pot && !tex.Format.IsCompressed() {
		t.gl.GenerateMipmap(gpu.TEXTURE_2D)
	}
	e.version = tex.Version()
	return e
}

func (t *Textures) uploadCube(tex *scene.Texture, e *textureEntry) *textureEntry {
	faces := tex.CubeImages
	if len(faces) != 6 {
		t.log.Warn("cube texture needs six images", slog.String("texture", tex.Name), slog.Int("faces", len(faces)))
		return e
	}
	for _, f := range faces {
		if f == nil {
			t.log.Warn("texture image missing", slog.String("texture", tex.Name))
			return e
		}
	}
	format, typ, ok := t.formats(tex)
	if !ok {
		return e
	}
	if e == nil {
		e = t.create(tex, gpu.TEXTURE_CUBE_MAP)
	}
	t.state.BindTexture(gpu.TEXTURE_CUBE_MAP, e.texture)
	t.gl.PixelStorei(gpu.UNPACK_FLIP_Y_WEBGL, boolParam(tex.FlipY))

	pot := isPowerOfTwo(faces[0].Width, faces[0].Height)
	t.setParameters(gpu.TEXTURE_CUBE_MAP, tex, pot)
	for i, f := range faces {
		target := gpu.TEXTURE_CUBE_MAP_POSITIVE_X + gpu.Enum(i)
		if tex.Format.IsCompressed() {
			t.gl.CompressedTexImage2D(target, 0, format, f.Width, f.Height, f.Pixels)
		} else {
			t.gl.TexImage2D(target, 0, format, f.Width, f.Height, format, typ, f.Pixels)
		}
	}
	if tex.GenerateMipmaps && pot && !tex.Format.IsCompressed() {
		t.gl.GenerateMipmap(gpu.TEXTURE_CUBE_MAP)
	}
	e.version = tex.Version()
	return e
}

// formats resolves the GL format and type of tex, warning when the context
// lacks the extension the combination needs.
func (t *Textures) formats(tex *scene.Texture) (gpu.Enum, gpu.Enum, bool) {
	if tex.Format.IsCompressed() && !t.ext.Has(ExtCompressedS3TC) {
		t.log.Warn("unsupported compressed texture format", slog.String("texture", tex.Name))
		return 0, 0, false
	}
	switch tex.Type {
	case scene.FloatType:
		if !t.ext.Require(ExtTextureFloat) {
			return 0, 0, false
		}
	case scene.HalfFloatType:
		if !t.ext.Require(ExtTextureHalfFloat) {
			return 0, 0, false
		}
	}
	if tex.Format == scene.DepthFormat || tex.Format == scene.DepthStencilFormat {
		if !t.ext.Require(ExtDepthTexture) {
			return 0, 0, false
		}
	}
	return FormatEnum(tex.Format), TypeEnum(tex.Type), true
}

// setParameters applies wrapping, filtering and anisotropy. Textures that
// are not a power of two cannot repeat or mipmap and are clamped.
func (t *Textures) setParameters(target gpu.Enum, tex *scene.Texture, pot bool) {
	wrapS, wrapT := WrapEnum(tex.WrapS), WrapEnum(tex.WrapT)
	minFilter, magFilter := FilterEnum(tex.MinFilter), FilterEnum(tex.MagFilter)
	if !pot {
		if wrapS != gpu.CLAMP_TO_EDGE || wrapT != gpu.CLAMP_TO_EDGE || (tex.MinFilter != scene.NearestFilter && tex.MinFilter != scene.LinearFilter) {
			t.log.Warn("texture is not a power of two, clamping wrap and filter", slog.String("texture", tex.Name))
		}
		wrapS, wrapT = gpu.CLAMP_TO_EDGE, gpu.CLAMP_TO_EDGE
		minFilter = fallbackFilter(tex.MinFilter)
		magFilter = fallbackFilter(tex.MagFilter)
	}
	t.gl.TexParameteri(target, gpu.TEXTURE_WRAP_S, int32(wrapS))
	t.gl.TexParameteri(target, gpu.TEXTURE_WRAP_T, int32(wrapT))
	t.gl.TexParameteri(target, gpu.TEXTURE_MAG_FILTER, int32(magFilter))
	t.gl.TexParameteri(target, gpu.TEXTURE_MIN_FILTER, int32(minFilter))

	if tex.Anisotropy > 1 && t.ext.Has(ExtAnisotropic) {
		t.gl.TexParameterf(target, gpu.TEXTURE_MAX_ANISOTROPY_EXT, math32.Min(tex.Anisotropy, t.caps.MaxAnisotropy))
	}
}

// ── Render targets ───────────────────────────────────────────────────────────

// SetupRenderTarget returns the framebuffer of rt, creating it on first use
// and recreating it after the target was resized. The previous framebuffer
// binding is restored.
func (t *Textures) SetupRenderTarget(rt *scene.RenderTarget) gpu.Framebuffer {
	e, ok := t.targets.Get(rt.Handle())
	if ok && e.version == rt.Version() {
		return e.framebuffer
	}
	if ok {
		t.releaseTarget(rt, e)
	}
	if rt.Handle() == 0 {
		return 0
	}
	if prev, known := t.state.Framebuffer(); known {
		defer t.state.BindFramebuffer(prev)
	}

	e = &targetEntry{version: rt.Version(), framebuffer: t.gl.CreateFramebuffer()}
	t.targets.Put(rt.Handle(), e)

	tex := rt.Texture
	color := t.create(tex, gpu.TEXTURE_2D)
	color.version = tex.Version()
	pot := isPowerOfTwo(rt.Width, rt.Height)
	t.state.BindTexture(gpu.TEXTURE_2D, color.texture)
	t.setParameters(gpu.TEXTURE_2D, tex, pot)
	format, typ := FormatEnum(tex.Format), TypeEnum(tex.Type)
	t.gl.TexImage2D(gpu.TEXTURE_2D, 0, format, rt.Width, rt.Height, format, typ, nil)

	t.state.BindFramebuffer(e.framebuffer)
	t.gl.FramebufferTexture2D(gpu.FRAMEBUFFER, gpu.COLOR_ATTACHMENT0, gpu.TEXTURE_2D, color.texture, 0)

	switch {
	case rt.DepthTexture && t.ext.Require(ExtDepthTexture):
		e.depthTexture = t.gl.CreateTexture()
		t.state.BindTexture(gpu.TEXTURE_2D, e.depthTexture)
		t.gl.TexParameteri(gpu.TEXTURE_2D, gpu.TEXTURE_MIN_FILTER, int32(gpu.NEAREST))
		t.gl.TexParameteri(gpu.TEXTURE_2D, gpu.TEXTURE_MAG_FILTER, int32(gpu.NEAREST))
		attachment, format, typ := gpu.DEPTH_ATTACHMENT, gpu.DEPTH_COMPONENT, gpu.UNSIGNED_INT
		if rt.StencilBuffer {
			attachment, format, typ = gpu.DEPTH_STENCIL_ATTACHMENT, gpu.DEPTH_STENCIL, gpu.UNSIGNED_INT_24_8
		}
		t.gl.TexImage2D(gpu.TEXTURE_2D, 0, format, rt.Width, rt.Height, format, typ, nil)
		t.gl.FramebufferTexture2D(gpu.FRAMEBUFFER, attachment, gpu.TEXTURE_2D, e.depthTexture, 0)
	case rt.DepthBuffer || rt.DepthTexture:
		e.renderbuffer = t.gl.CreateRenderbuffer()
		t.gl.BindRenderbuffer(gpu.RENDERBUFFER, e.renderbuffer)
		if rt.StencilBuffer {
			t.gl.RenderbufferStorage(gpu.RENDERBUFFER, gpu.DEPTH_STENCIL, rt.Width, rt.Height)
			t.gl.FramebufferRenderbuffer(gpu.FRAMEBUFFER, gpu.DEPTH_STENCIL_ATTACHMENT, gpu.RENDERBUFFER, e.renderbuffer)
		} else {
			t.gl.RenderbufferStorage(gpu.RENDERBUFFER, gpu.DEPTH_COMPONENT16, rt.Width, rt.Height)
			t.gl.FramebufferRenderbuffer(gpu.FRAMEBUFFER, gpu.DEPTH_ATTACHMENT, gpu.RENDERBUFFER, e.renderbuffer)
		}
		t.gl.BindRenderbuffer(gpu.RENDERBUFFER, 0)
	}

	if status := t.gl.CheckFramebufferStatus(gpu.FRAMEBUFFER); status != gpu.FRAMEBUFFER_COMPLETE {
		t.log.Error("framebuffer incomplete",
			slog.Int("width", rt.Width), slog.Int("height", rt.Height), slog.Any("status", status))
	}
	if tex.GenerateMipmaps && pot {
		t.gl.GenerateMipmap(gpu.TEXTURE_2D)
	}
	return e.framebuffer
}

// Framebuffer returns the framebuffer of rt if it exists and is current.
func (t *Textures) Framebuffer(rt *scene.RenderTarget) (gpu.Framebuffer, bool) {
	e, ok := t.targets.Get(rt.Handle())
	if !ok || e.version != rt.Version() {
		return 0, false
	}
	return e.framebuffer, true
}

// UpdateRenderTargetMipmap regenerates the mip chain after rendering into rt.
func (t *Textures) UpdateRenderTargetMipmap(rt *scene.RenderTarget) {
	tex := rt.Texture
	if !tex.GenerateMipmaps || !isPowerOfTwo(rt.Width, rt.Height) {
		return
	}
	e, ok := t.textures.Get(tex.Handle())
	if !ok {
		return
	}
	t.state.BindTexture(gpu.TEXTURE_2D, e.texture)
	t.gl.GenerateMipmap(gpu.TEXTURE_2D)
}

// ── Disposal ─────────────────────────────────────────────────────────────────

// DisposeTexture deletes the GPU texture of tex.
func (t *Textures) DisposeTexture(tex *scene.Texture) {
	e, ok := t.textures.Delete(tex.Handle())
	if !ok {
		return
	}
	t.gl.DeleteTexture(e.texture)
	t.state.ForgetTexture(e.texture)
	t.info.Memory.Textures--
}

// DisposeRenderTarget deletes the framebuffer, attachments and color
// texture of rt.
func (t *Textures) DisposeRenderTarget(rt *scene.RenderTarget) {
	if e, ok := t.targets.Get(rt.Handle()); ok {
		t.releaseTarget(rt, e)
	}
}

func (t *Textures) releaseTarget(rt *scene.RenderTarget, e *targetEntry) {
	t.targets.Delete(rt.Handle())
	t.gl.DeleteFramebuffer(e.framebuffer)
	if e.renderbuffer != 0 {
		t.gl.DeleteRenderbuffer(e.renderbuffer)
	}
	if e.depthTexture != 0 {
		t.gl.DeleteTexture(e.depthTexture)
		t.state.ForgetTexture(e.depthTexture)
	}
	t.DisposeTexture(rt.Texture)
}

// Reset forgets every GPU object without deleting it. Used after context
// loss; memory counters drop to zero since nothing survives.
func (t *Textures) Reset() {
	t.textures.Clear()
	t.targets.Clear()
	t.info.Memory.Textures = 0
	t.units = 0
}

// ── Enum mapping ─────────────────────────────────────────────────────────────

func FormatEnum(f scene.Format) gpu.Enum {
	switch f {
	case scene.RGBFormat:
		return gpu.RGB
	case scene.AlphaFormat:
		return gpu.ALPHA
	case scene.LuminanceFormat:
		return gpu.LUMINANCE
	case scene.DepthFormat:
		return gpu.DEPTH_COMPONENT
	case scene.DepthStencilFormat:
		return gpu.DEPTH_STENCIL
	case scene.RGBS3TCDXT1Format:
		return gpu.COMPRESSED_RGB_S3TC_DXT1_EXT
	case scene.RGBAS3TCDXT5Format:
		return gpu.COMPRESSED_RGBA_S3TC_DXT5_EXT
	}
	return gpu.RGBA
}

func TypeEnum(t scene.DataType) gpu.Enum {
	switch t {
	case scene.FloatType:
		return gpu.FLOAT
	case scene.HalfFloatType:
		return gpu.HALF_FLOAT
	case scene.UnsignedShortType:
		return gpu.UNSIGNED_SHORT
	case scene.UnsignedIntType:
		return gpu.UNSIGNED_INT
	}
	return gpu.UNSIGNED_BYTE
}

func WrapEnum(w scene.Wrapping) gpu.Enum {
	switch w {
	case scene.RepeatWrapping:
		return gpu.REPEAT
	case scene.MirroredRepeatWrapping:
		return gpu.MIRRORED_REPEAT
	}
	return gpu.CLAMP_TO_EDGE
}

func FilterEnum(f scene.Filter) gpu.Enum {
	switch f {
	case scene.NearestFilter:
		return gpu.NEAREST
	case scene.NearestMipmapNearestFilter:
		return gpu.NEAREST_MIPMAP_NEAREST
	case scene.NearestMipmapLinearFilter:
		return gpu.NEAREST_MIPMAP_LINEAR
	case scene.LinearMipmapNearestFilter:
		return gpu.LINEAR_MIPMAP_NEAREST
	case scene.LinearMipmapLinearFilter:
		return gpu.LINEAR_MIPMAP_LINEAR
	}
	return gpu.LINEAR
}

// fallbackFilter drops the mipmap part of f.
func fallbackFilter(f scene.Filter) gpu.Enum {
	switch f {
	case scene.NearestFilter, scene.NearestMipmapNearestFilter, scene.NearestMipmapLinearFilter:
		return gpu.NEAREST
	}
	return gpu.LINEAR
}

func isPowerOfTwo(w, h int) bool {
	return w > 0 && h > 0 && bits.OnesCount(uint(w)) == 1 && bits.OnesCount(uint(h)) == 1
}

func boolParam(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
