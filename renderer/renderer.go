// Package renderer draws a scene graph through a gpu.Context once per
// Render call: it walks the graph, builds and sorts render lists, renders
// shadow maps, binds programs and uniforms, and submits draws. All GPU
// state goes through one state mirror so redundant commands are dropped.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"retained-renderer/core"
	"retained-renderer/gpu"
	"retained-renderer/internal/clipping"
	"retained-renderer/internal/glstate"
	"retained-renderer/internal/lights"
	"retained-renderer/internal/programs"
	"retained-renderer/internal/renderlist"
	"retained-renderer/internal/resources"
	"retained-renderer/internal/shadow"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// ErrNoContext is returned by New when no GPU context is given.
var ErrNoContext = errors.New("renderer: no GPU context")

// Renderer is the orchestrator. It is not safe for concurrent use; one
// Renderer owns its GPU context.
type Renderer struct {
	// Clearing before each Render.
	AutoClear        bool
	AutoClearColor   bool
	AutoClearDepth   bool
	AutoClearStencil bool

	SortObjects bool

	// ClippingPlanes are world-space planes applied to every program.
	// LocalClippingEnabled honors per-material planes.
	ClippingPlanes       []math.Plane
	LocalClippingEnabled bool

	GammaFactor             float32
	OutputEncoding          scene.Encoding
	PhysicallyCorrectLights bool
	ToneMapping             scene.ToneMapping
	ToneMappingExposure     float32
	ToneMappingWhitePoint   float32

	MaxMorphTargets int
	MaxMorphNormals int
	MaxBones        int

	ShadowMap *shadow.Map

	gl        gpu.Context
	log       *slog.Logger
	inversion math.InversePolicy

	state      *glstate.State
	ext        *resources.Extensions
	caps       *resources.Capabilities
	info       *resources.Info
	attributes *resources.Attributes
	geometries *resources.Geometries
	textures   *resources.Textures
	programs   *programs.Cache
	lists      *renderlist.Lists
	lights     lights.State
	clipping   *clipping.State
	materials  resources.Table[*materialProperties]

	premultipliedAlpha bool

	width, height int
	pixelRatio    float32
	viewport      core.Rect
	scissor       core.Rect
	scissorTest   bool
	clearColor    core.Color
	clearAlpha    float32

	offscreen           *scene.RenderTarget
	currentRenderTarget *scene.RenderTarget
	currentViewport     core.Rect
	currentScissor      core.Rect
	currentScissorTest  bool

	// Per-frame caches that let consecutive draws skip rebinding.
	currentCamera          *scene.Camera
	currentMaterial        scene.Handle
	currentGeometryProgram geometryProgram

	projScreen       math.Mat4
	frustum          math.Frustum
	clippingEnabled  bool
	renderingShadows bool
	contextLost      bool
	instancingWarned bool

	morphAttributes map[string]*scene.Attribute
	morphScratch    []morphInfluence
}

// New probes gl and returns a renderer sized per opts. It fails when gl is
// nil or the shader library does not resolve.
func New(gl gpu.Context, opts Options) (*Renderer, error) {
	if gl == nil {
		return nil, ErrNoContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "renderer"))

	cache, err := programs.NewCache(gl, opts.Library, logger.With(slog.String("component", "programs")))
	if err != nil {
		return nil, fmt.Errorf("create program cache: %w", err)
	}

	r := &Renderer{
		AutoClear:        opts.AutoClear,
		AutoClearColor:   true,
		AutoClearDepth:   true,
		AutoClearStencil: true,
		SortObjects:      opts.SortObjects,

		GammaFactor:             2,
		OutputEncoding:          opts.OutputEncoding,
		PhysicallyCorrectLights: opts.PhysicallyCorrectLights,
		ToneMapping:             opts.ToneMapping,
		ToneMappingExposure:     opts.ToneMappingExposure,
		ToneMappingWhitePoint:   1,

		MaxMorphTargets: opts.MaxMorphTargets,
		MaxMorphNormals: 4,
		MaxBones:        opts.MaxBones,

		gl:                 gl,
		log:                log,
		programs:           cache,
		premultipliedAlpha: opts.PremultipliedAlpha,
		pixelRatio:         opts.PixelRatio,
		clearColor:         opts.ClearColor,
		clearAlpha:         opts.ClearAlpha,
		morphAttributes:    make(map[string]*scene.Attribute),
	}
	if opts.StrictMatrixInversion {
		r.inversion = math.PolicyStrict
	}
	if r.pixelRatio <= 0 {
		r.pixelRatio = 1
	}
	if r.MaxMorphTargets <= 0 || r.MaxMorphTargets > maxMorphAttributes {
		r.MaxMorphTargets = maxMorphAttributes
	}

	r.ext = resources.NewExtensions(gl, logger)
	r.caps = resources.NewCapabilities(gl, r.ext, opts.Precision, opts.LogarithmicDepthBuffer, logger)
	r.state = glstate.New(gl, logger)
	r.info = &resources.Info{AutoReset: true}
	r.attributes = resources.NewAttributes(gl, r.caps, logger)
	r.geometries = resources.NewGeometries(r.attributes, r.info)
	r.textures = resources.NewTextures(gl, r.state, r.caps, r.ext, r.info, logger)
	r.lists = renderlist.NewLists()
	r.clipping = clipping.New()

	r.ShadowMap = shadow.New(r, r.state, r.caps.MaxTextureSize, logger)
	r.ShadowMap.Enabled = opts.Shadows.Enabled
	r.ShadowMap.Type = opts.Shadows.Type
	r.ShadowMap.AutoUpdate = opts.Shadows.AutoUpdate
	r.ShadowMap.RenderReverseSided = opts.Shadows.RenderReverseSided
	r.ShadowMap.RenderSingleSided = opts.Shadows.RenderSingleSided
	r.ShadowMap.Inversion = r.inversion

	if opts.Offscreen {
		w, h := r.drawingBufferSize(opts.Width, opts.Height)
		r.offscreen = scene.NewRenderTarget(w, h, scene.DefaultRenderTargetOptions())
		r.offscreen.Texture.Name = "offscreen"
	}

	r.SetSize(opts.Width, opts.Height)
	r.state.Color.SetClear(r.clearColor.R, r.clearColor.G, r.clearColor.B, r.clearAlpha, r.premultipliedAlpha)
	r.log.Debug("renderer ready",
		slog.String("precision", r.caps.Precision),
		slog.Int("maxTextures", r.caps.MaxTextures),
		slog.Bool("instancing", r.caps.InstancedArrays))
	return r, nil
}

// Info returns the frame and memory counters.
func (r *Renderer) Info() *resources.Info { return r.info }

// Capabilities returns the probed context limits.
func (r *Renderer) Capabilities() *resources.Capabilities { return r.caps }

// ── Frame ────────────────────────────────────────────────────────────────────

// Render draws sc as seen by camera into target, or into the default
// framebuffer when target is nil. forceClear clears even when AutoClear is
// off.
func (r *Renderer) Render(sc *scene.Scene, camera *scene.Camera, target *scene.RenderTarget, forceClear bool) {
	if sc == nil || camera == nil {
		r.log.Error("render called without a scene or camera")
		return
	}
	if !r.checkContext() {
		return
	}

	r.currentGeometryProgram = geometryProgram{}
	r.currentMaterial = 0
	r.currentCamera = nil

	if sc.AutoUpdate {
		sc.UpdateMatrixWorld()
	}
	if camera.Parent == nil {
		camera.UpdateMatrixWorld()
	}
	camera.UpdateMatrixWorldInverse()

	r.projScreen = camera.ProjectionMatrix().Mul4(camera.MatrixWorldInverse())
	r.frustum = math.FrustumFromMatrix(r.projScreen)

	r.lights.Init()
	r.clippingEnabled = r.clipping.Init(r.ClippingPlanes, r.LocalClippingEnabled, camera)

	list := r.lists.Get(sc.ID(), camera.Id)
	list.Init()
	r.projectObject(sc.Root, camera, list)
	list.Finish()
	if r.SortObjects {
		list.Sort()
	}

	if r.info.AutoReset {
		r.info.Reset()
	}

	// Shadow maps
	if r.clippingEnabled {
		r.clipping.BeginShadows()
	}
	r.ShadowMap.LocalClipping = r.LocalClippingEnabled
	r.renderingShadows = true
	r.ShadowMap.Render(r.lights.Shadows, sc, camera)
	r.renderingShadows = false
	r.lights.Setup(camera)
	if r.clippingEnabled {
		r.clipping.EndShadows()
	}

	// Main pass
	r.SetRenderTarget(target)
	if sc.Background != nil {
		bg := sc.Background
		r.state.Color.SetClear(bg.R, bg.G, bg.B, 1, r.premultipliedAlpha)
		if r.AutoClear || forceClear {
			r.Clear(true, r.AutoClearDepth, r.AutoClearStencil)
		}
	} else {
		r.state.Color.SetClear(r.clearColor.R, r.clearColor.G, r.clearColor.B, r.clearAlpha, r.premultipliedAlpha)
		if r.AutoClear || forceClear {
			r.Clear(r.AutoClearColor, r.AutoClearDepth, r.AutoClearStencil)
		}
	}

	override := sc.OverrideMaterial
	r.renderObjects(list.Opaque, sc, camera, override)
	r.renderObjects(list.Transparent, sc, camera, override)

	if rt := r.currentRenderTarget; rt != nil {
		r.textures.UpdateRenderTargetMipmap(rt)
	}

	// Leave writable buffers behind so the next clear works.
	r.state.Depth.SetTest(true)
	r.state.Depth.SetMask(true)
	r.state.Color.SetMask(true)
	r.state.SetPolygonOffset(false, 0, 0)

	r.info.Programs = len(r.programs.Programs())
}

// ── Context loss ─────────────────────────────────────────────────────────────

// checkContext tracks the context's lost flag and reports whether drawing
// can proceed.
func (r *Renderer) checkContext() bool {
	lost := r.gl.IsContextLost()
	switch {
	case lost && !r.contextLost:
		r.HandleContextLost()
	case !lost && r.contextLost:
		r.HandleContextRestored()
	}
	return !r.contextLost
}

// HandleContextLost stops rendering until the context is restored.
func (r *Renderer) HandleContextLost() {
	if r.contextLost {
		return
	}
	r.contextLost = true
	r.log.Debug("context lost")
}

// HandleContextRestored forgets every mirrored GPU state and cached GPU
// object. Everything is rebuilt lazily on the next draw.
func (r *Renderer) HandleContextRestored() {
	r.contextLost = false
	r.resetGLState()
	r.log.Debug("context restored")
}

func (r *Renderer) resetGLState() {
	r.state.ReleasePlaceholders(true)
	r.state.Reset()
	r.ext.Probe()
	r.programs.Reset()
	r.attributes.Reset()
	r.geometries.Reset()
	r.textures.Reset()
	r.materials.Clear()
	r.lists.Dispose()

	r.currentCamera = nil
	r.currentMaterial = 0
	r.currentGeometryProgram = geometryProgram{}
	r.info.Programs = 0

	r.state.Viewport(r.currentViewport)
	r.state.Scissor(r.currentScissor)
	r.state.Color.SetClear(r.clearColor.R, r.clearColor.G, r.clearColor.B, r.clearAlpha, r.premultipliedAlpha)
}

// ── Size and viewport ────────────────────────────────────────────────────────

// SetSize sets the output size in logical pixels. The viewport is reset to
// the full size and an offscreen default target is resized lazily.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	if r.offscreen != nil {
		r.offscreen.SetSize(r.drawingBufferSize(width, height))
	}
	r.SetViewport(0, 0, width, height)
}

// Size returns the output size in logical pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// SetPixelRatio scales the drawing buffer relative to the logical size.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		r.log.Warn("ignoring non-positive pixel ratio", slog.Any("ratio", ratio))
		return
	}
	r.pixelRatio = ratio
	r.SetSize(r.width, r.height)
}

// PixelRatio returns the drawing buffer scale.
func (r *Renderer) PixelRatio() float32 { return r.pixelRatio }

// DrawingBufferSize is the size in device pixels.
func (r *Renderer) DrawingBufferSize() (width, height int) {
	return r.drawingBufferSize(r.width, r.height)
}

func (r *Renderer) drawingBufferSize(width, height int) (int, int) {
	return int(float32(width) * r.pixelRatio), int(float32(height) * r.pixelRatio)
}

// SetViewport sets the viewport in logical pixels.
func (r *Renderer) SetViewport(x, y, width, height int) {
	r.viewport = core.Rect{X: x, Y: y, Width: width, Height: height}
	if r.drawsToDefault() {
		r.currentViewport = r.viewport.Scale(r.pixelRatio)
		r.state.Viewport(r.currentViewport)
	}
}

// Viewport returns the viewport in logical pixels.
func (r *Renderer) Viewport() core.Rect { return r.viewport }

// SetScissor sets the scissor box in logical pixels.
func (r *Renderer) SetScissor(x, y, width, height int) {
	r.scissor = core.Rect{X: x, Y: y, Width: width, Height: height}
	if r.drawsToDefault() {
		r.currentScissor = r.scissor.Scale(r.pixelRatio)
		r.state.Scissor(r.currentScissor)
	}
}

// SetScissorTest toggles scissoring of the default framebuffer.
func (r *Renderer) SetScissorTest(enabled bool) {
	r.scissorTest = enabled
	if r.drawsToDefault() {
		r.currentScissorTest = enabled
		r.state.SetScissorTest(enabled)
	}
}

func (r *Renderer) drawsToDefault() bool {
	return r.currentRenderTarget == nil || r.currentRenderTarget == r.offscreen
}

// ── Clearing ─────────────────────────────────────────────────────────────────

// SetClearColor sets the color Render clears to when the scene has no
// background.
func (r *Renderer) SetClearColor(c core.Color, alpha float32) {
	r.clearColor = c
	r.clearAlpha = alpha
	r.state.Color.SetClear(c.R, c.G, c.B, alpha, r.premultipliedAlpha)
}

// ClearColor returns the clear color.
func (r *Renderer) ClearColor() core.Color { return r.clearColor }

// ClearAlpha returns the clear alpha.
func (r *Renderer) ClearAlpha() float32 { return r.clearAlpha }

// Clear clears the selected buffers of the bound framebuffer.
func (r *Renderer) Clear(color, depth, stencil bool) {
	var mask gpu.Enum
	if color {
		mask |= gpu.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gpu.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gpu.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		r.gl.Clear(mask)
	}
}

// ── Render targets ───────────────────────────────────────────────────────────

// SetRenderTarget binds rt, or the default framebuffer (or the offscreen
// target when configured) for nil.
func (r *Renderer) SetRenderTarget(rt *scene.RenderTarget) {
	if rt == nil {
		rt = r.offscreen
	}
	r.currentRenderTarget = rt

	var fb gpu.Framebuffer
	if rt != nil {
		fb = r.textures.SetupRenderTarget(rt)
	}
	if rt == nil || rt == r.offscreen {
		r.currentViewport = r.viewport.Scale(r.pixelRatio)
		r.currentScissor = r.scissor.Scale(r.pixelRatio)
		r.currentScissorTest = r.scissorTest
	} else {
		r.currentViewport = rt.Viewport
		r.currentScissor = rt.Scissor
		r.currentScissorTest = rt.ScissorTest
	}

	r.state.BindFramebuffer(fb)
	r.state.Viewport(r.currentViewport)
	r.state.Scissor(r.currentScissor)
	r.state.SetScissorTest(r.currentScissorTest)
}

// RenderTarget returns the bound target; nil means the default framebuffer.
func (r *Renderer) RenderTarget() *scene.RenderTarget {
	if r.currentRenderTarget == r.offscreen {
		return nil
	}
	return r.currentRenderTarget
}

// Offscreen returns the owned default target, or nil when rendering goes
// to the window framebuffer.
func (r *Renderer) Offscreen() *scene.RenderTarget { return r.offscreen }

// ReadRenderTargetPixels copies an RGBA8 rectangle of rt into dst.
// Requests outside the target are skipped.
func (r *Renderer) ReadRenderTargetPixels(rt *scene.RenderTarget, x, y, width, height int, dst []byte) {
	if rt == nil {
		r.log.Warn("read pixels without a render target")
		return
	}
	fb, ok := r.textures.Framebuffer(rt)
	if !ok {
		r.log.Warn("read pixels from a target that was never rendered to")
		return
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x > rt.Width-width || y > rt.Height-height {
		return
	}
	if len(dst) < width*height*4 {
		r.log.Warn("read pixels buffer too small", slog.Int("need", width*height*4), slog.Int("have", len(dst)))
		return
	}
	tex := rt.Texture
	if tex.Format != scene.RGBAFormat || resources.TypeEnum(tex.Type) != gpu.UNSIGNED_BYTE {
		r.log.Warn("read pixels needs an RGBA8 target")
		return
	}

	if rt != r.currentRenderTarget {
		r.state.BindFramebuffer(fb)
		defer r.state.BindFramebuffer(r.boundFramebuffer())
	}
	if status := r.gl.CheckFramebufferStatus(gpu.FRAMEBUFFER); status != gpu.FRAMEBUFFER_COMPLETE {
		r.log.Error("read pixels from incomplete framebuffer", slog.Any("status", status))
		return
	}
	r.gl.ReadPixels(x, y, width, height, gpu.RGBA, gpu.UNSIGNED_BYTE, dst)
}

func (r *Renderer) boundFramebuffer() gpu.Framebuffer {
	if r.currentRenderTarget == nil {
		return 0
	}
	fb, _ := r.textures.Framebuffer(r.currentRenderTarget)
	return fb
}

// ── Textures ─────────────────────────────────────────────────────────────────

// AllocTextureUnit reserves the next texture unit for the program being set
// up. Units restart for every program.
func (r *Renderer) AllocTextureUnit() int { return r.textures.AllocTextureUnit() }

// SetTexture2D binds tex on unit, uploading it if needed.
func (r *Renderer) SetTexture2D(tex *scene.Texture, unit int) { r.textures.SetTexture2D(tex, unit) }

// SetTextureCube binds a cube texture on unit, uploading it if needed.
func (r *Renderer) SetTextureCube(tex *scene.Texture, unit int) { r.textures.SetTextureCube(tex, unit) }

// ── Disposal ─────────────────────────────────────────────────────────────────

// DisposeMaterial releases the program reference of m and returns its
// handle.
func (r *Renderer) DisposeMaterial(m *scene.Material) {
	r.releaseMaterial(m)
	m.Dispose()
}

func (r *Renderer) releaseMaterial(m *scene.Material) {
	props, ok := r.materials.Delete(m.Handle())
	if !ok {
		return
	}
	if props.program != nil {
		r.programs.Release(props.program)
	}
	if r.currentMaterial == m.Handle() {
		r.currentMaterial = 0
	}
	r.info.Programs = len(r.programs.Programs())
}

// DisposeGeometry deletes the buffers of g and returns its handles.
func (r *Renderer) DisposeGeometry(g *scene.Geometry) {
	r.geometries.Dispose(g)
	if r.currentGeometryProgram.geometry == g.Handle() {
		r.currentGeometryProgram = geometryProgram{}
	}
	g.Dispose()
}

// DisposeTexture deletes the GPU copy of t and returns its handle.
func (r *Renderer) DisposeTexture(t *scene.Texture) {
	r.textures.DisposeTexture(t)
	t.Dispose()
}

// DisposeRenderTarget deletes the framebuffer and attachments of rt and
// returns its handles.
func (r *Renderer) DisposeRenderTarget(rt *scene.RenderTarget) {
	r.textures.DisposeRenderTarget(rt)
	if r.currentRenderTarget == rt {
		r.currentRenderTarget = nil
	}
	rt.Dispose()
}

// Dispose releases everything the renderer created itself: shadow
// materials and maps, the offscreen target and the render lists. Scene
// objects are left to their owners.
func (r *Renderer) Dispose() {
	for _, m := range r.ShadowMap.Materials() {
		r.releaseMaterial(m)
	}
	for _, n := range r.lights.Shadows {
		if sh := n.Light.Shadow; sh != nil && sh.Map != nil {
			r.DisposeRenderTarget(sh.Map)
			sh.Map = nil
		}
	}
	if r.offscreen != nil {
		r.DisposeRenderTarget(r.offscreen)
		r.offscreen = nil
	}
	r.lists.Dispose()
	r.state.ReleasePlaceholders(false)
	r.log.Debug("renderer disposed", slog.Int("programs", len(r.programs.Programs())))
}
