package scene

import "retained-renderer/core"

type RenderTargetOptions struct {
	Format          Format
	Type            DataType
	MinFilter       Filter
	MagFilter       Filter
	WrapS, WrapT    Wrapping
	DepthBuffer     bool
	StencilBuffer   bool
	DepthTexture    bool
	GenerateMipmaps bool
}

// DefaultRenderTargetOptions is a linear-filtered RGBA target with a depth
// buffer.
func DefaultRenderTargetOptions() RenderTargetOptions {
	return RenderTargetOptions{
		Format:      RGBAFormat,
		MinFilter:   LinearFilter,
		MagFilter:   LinearFilter,
		DepthBuffer: true,
	}
}

// RenderTarget is an offscreen framebuffer. Its GPU resources are created on
// first bind and recreated lazily after a resize.
type RenderTarget struct {
	Width, Height int
	Texture       *Texture

	DepthBuffer   bool
	StencilBuffer bool
	DepthTexture  bool

	Viewport    core.Rect
	Scissor     core.Rect
	ScissorTest bool

	handle  Handle
	version uint32
}

func NewRenderTarget(width, height int, opts RenderTargetOptions) *RenderTarget {
	tex := NewTexture("RenderTarget", nil)
	tex.Format = opts.Format
	tex.Type = opts.Type
	tex.MinFilter = opts.MinFilter
	tex.MagFilter = opts.MagFilter
	tex.WrapS = opts.WrapS
	tex.WrapT = opts.WrapT
	tex.GenerateMipmaps = opts.GenerateMipmaps
	tex.FlipY = false

	rt := &RenderTarget{
		Width:         width,
		Height:        height,
		Texture:       tex,
		DepthBuffer:   opts.DepthBuffer,
		StencilBuffer: opts.StencilBuffer,
		DepthTexture:  opts.DepthTexture,
		Viewport:      core.Rect{Width: width, Height: height},
		Scissor:       core.Rect{Width: width, Height: height},
		handle:        renderTargetHandles.acquire(),
		version:       1,
	}
	tex.renderTarget = rt
	return rt
}

func (rt *RenderTarget) Handle() Handle  { return rt.handle }
func (rt *RenderTarget) Version() uint32 { return rt.version }

// SetSize resizes the target. GPU storage is not touched here; the renderer
// disposes and recreates it the next time the target is bound.
func (rt *RenderTarget) SetSize(width, height int) {
	if rt.Width == width && rt.Height == height {
		return
	}
	rt.Width, rt.Height = width, height
	rt.Viewport = core.Rect{Width: width, Height: height}
	rt.Scissor = core.Rect{Width: width, Height: height}
	rt.version++
}

func (rt *RenderTarget) Dispose() {
	rt.Texture.Dispose()
	renderTargetHandles.release(rt.handle)
	rt.handle = 0
}
