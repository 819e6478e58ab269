// Package glstate mirrors GPU pipeline state and filters redundant state
// commands. Every setter compares the requested value with the mirror and
// issues at most one command when they differ. Nothing else may change the
// pipeline state behind its back.
package glstate

import (
	"log/slog"

	"github.com/chewxy/math32"

	"retained-renderer/core"
	"retained-renderer/gpu"
	"retained-renderer/scene"
)

// tristate is a mirrored boolean that may be unknown.
type tristate int8

const (
	unknown tristate = iota
	off
	on
)

func triOf(b bool) tristate {
	if b {
		return on
	}
	return off
}

const unknownEnum = gpu.Enum(0xFFFFFFFF)

// CullFace selects which faces are discarded.
type CullFace int

const (
	CullFaceNone CullFace = iota
	CullFaceBack
	CullFaceFront
	CullFaceFrontBack
)

// State is the GPUStateCache.
type State struct {
	gl  gpu.Context
	log *slog.Logger

	Color   ColorBuffer
	Depth   DepthBuffer
	Stencil StencilBuffer

	capabilities map[gpu.Enum]bool

	currentProgram      gpu.Program
	currentProgramKnown bool

	blendingKnown             bool
	currentBlending           scene.Blending
	currentBlendEquation      gpu.Enum
	currentBlendSrc           gpu.Enum
	currentBlendDst           gpu.Enum
	currentBlendEquationAlpha gpu.Enum
	currentBlendSrcAlpha      gpu.Enum
	currentBlendDstAlpha      gpu.Enum
	currentPremultipliedAlpha tristate

	currentFlipSided tristate
	currentCullFace  CullFace
	cullFaceKnown    bool

	currentLineWidth           float32
	currentPolygonOffsetFactor float32
	currentPolygonOffsetUnits  float32

	currentViewport core.Rect
	viewportKnown   bool
	currentScissor  core.Rect
	scissorKnown    bool

	currentFramebuffer gpu.Framebuffer
	framebufferKnown   bool

	textures   textureUnits
	attributes attributeState
}

// New creates a state mirror with every value unknown. logger may be nil.
func New(gl gpu.Context, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		gl:  gl,
		log: logger.With(slog.String("component", "glstate")),
	}
	s.Color.state = s
	s.Depth.state = s
	s.Stencil.state = s
	s.textures.init(gl)
	s.attributes.init(gl)
	s.Reset()
	return s
}

// Reset forgets every mirrored value so the next setter of each kind
// reissues its command. Used after context loss and when external code has
// touched the GPU.
func (s *State) Reset() {
	s.capabilities = make(map[gpu.Enum]bool)

	s.currentProgram = 0
	s.currentProgramKnown = false

	s.blendingKnown = false
	s.resetCustomBlending()
	s.currentPremultipliedAlpha = unknown

	s.currentFlipSided = unknown
	s.cullFaceKnown = false

	s.currentLineWidth = math32.NaN()
	s.currentPolygonOffsetFactor = math32.NaN()
	s.currentPolygonOffsetUnits = math32.NaN()

	s.viewportKnown = false
	s.scissorKnown = false
	s.framebufferKnown = false

	s.Color.reset()
	s.Depth.reset()
	s.Stencil.reset()
	s.textures.reset()
	s.attributes.reset()

	s.log.Debug("state reset")
}

// Enable turns a capability on if the mirror does not already say so.
func (s *State) Enable(capability gpu.Enum) {
	if v, ok := s.capabilities[capability]; !ok || !v {
		s.gl.Enable(capability)
		s.capabilities[capability] = true
	}
}

// Disable turns a capability off if the mirror does not already say so.
func (s *State) Disable(capability gpu.Enum) {
	if v, ok := s.capabilities[capability]; !ok || v {
		s.gl.Disable(capability)
		s.capabilities[capability] = false
	}
}

// UseProgram binds p and reports whether a command was issued.
func (s *State) UseProgram(p gpu.Program) bool {
	if s.currentProgramKnown && s.currentProgram == p {
		return false
	}
	s.gl.UseProgram(p)
	s.currentProgram = p
	s.currentProgramKnown = true
	return true
}

// BindFramebuffer binds fb (0 is the default framebuffer) and reports
// whether a command was issued.
func (s *State) BindFramebuffer(fb gpu.Framebuffer) bool {
	if s.framebufferKnown && s.currentFramebuffer == fb {
		return false
	}
	s.gl.BindFramebuffer(gpu.FRAMEBUFFER, fb)
	s.currentFramebuffer = fb
	s.framebufferKnown = true
	return true
}

// Framebuffer returns the mirrored framebuffer binding and whether it is
// known.
func (s *State) Framebuffer() (gpu.Framebuffer, bool) {
	return s.currentFramebuffer, s.framebufferKnown
}

// SetFlipSided selects clockwise front faces when flip is set.
func (s *State) SetFlipSided(flip bool) {
	t := triOf(flip)
	if s.currentFlipSided == t {
		return
	}
	if flip {
		s.gl.FrontFace(gpu.CW)
	} else {
		s.gl.FrontFace(gpu.CCW)
	}
	s.currentFlipSided = t
}

func (s *State) SetCullFace(cull CullFace) {
	if cull == CullFaceNone {
		s.Disable(gpu.CULL_FACE)
	} else {
		s.Enable(gpu.CULL_FACE)
		if !s.cullFaceKnown || cull != s.currentCullFace {
			switch cull {
			case CullFaceBack:
				s.gl.CullFace(gpu.BACK)
			case CullFaceFront:
				s.gl.CullFace(gpu.FRONT)
			default:
				s.gl.CullFace(gpu.FRONT_AND_BACK)
			}
		}
	}
	s.currentCullFace = cull
	s.cullFaceKnown = true
}

func (s *State) SetLineWidth(width float32) {
	if width != s.currentLineWidth {
		s.gl.LineWidth(width)
		s.currentLineWidth = width
	}
}

// SetPolygonOffset toggles depth offsetting and updates the factor and
// units when enabled.
func (s *State) SetPolygonOffset(enabled bool, factor, units float32) {
	if !enabled {
		s.Disable(gpu.POLYGON_OFFSET_FILL)
		return
	}
	s.Enable(gpu.POLYGON_OFFSET_FILL)
	if s.currentPolygonOffsetFactor != factor || s.currentPolygonOffsetUnits != units {
		s.gl.PolygonOffset(factor, units)
		s.currentPolygonOffsetFactor = factor
		s.currentPolygonOffsetUnits = units
	}
}

func (s *State) SetScissorTest(enabled bool) {
	if enabled {
		s.Enable(gpu.SCISSOR_TEST)
	} else {
		s.Disable(gpu.SCISSOR_TEST)
	}
}

func (s *State) Viewport(r core.Rect) {
	if s.viewportKnown && s.currentViewport == r {
		return
	}
	s.gl.Viewport(r.X, r.Y, r.Width, r.Height)
	s.currentViewport = r
	s.viewportKnown = true
}

// CurrentViewport is the mirrored viewport, zero if unknown.
func (s *State) CurrentViewport() core.Rect {
	return s.currentViewport
}

func (s *State) Scissor(r core.Rect) {
	if s.scissorKnown && s.currentScissor == r {
		return
	}
	s.gl.Scissor(r.X, r.Y, r.Width, r.Height)
	s.currentScissor = r
	s.scissorKnown = true
}

// SetMaterial applies the fixed-function state of m. frontFaceCW flips the
// winding for objects with a negative-determinant world matrix.
func (s *State) SetMaterial(m *scene.Material, frontFaceCW bool) {
	if m.Side == scene.DoubleSide {
		s.Disable(gpu.CULL_FACE)
	} else {
		s.Enable(gpu.CULL_FACE)
	}
	flip := m.Side == scene.BackSide
	if frontFaceCW {
		flip = !flip
	}
	s.SetFlipSided(flip)

	if m.Blending == scene.NormalBlending && !m.Transparent {
		s.SetBlending(scene.NoBlending, BlendParams{})
	} else {
		s.SetBlending(m.Blending, BlendParams{
			Equation:           m.BlendEquation,
			Src:                m.BlendSrc,
			Dst:                m.BlendDst,
			EquationAlpha:      m.BlendEquationAlpha,
			SrcAlpha:           m.BlendSrcAlpha,
			DstAlpha:           m.BlendDstAlpha,
			PremultipliedAlpha: m.PremultipliedAlpha,
		})
	}

	s.Depth.SetFunc(m.DepthFunc)
	s.Depth.SetTest(m.DepthTest)
	s.Depth.SetMask(m.DepthWrite)
	s.Color.SetMask(m.ColorWrite)

	s.SetPolygonOffset(m.PolygonOffset, m.PolygonOffsetFactor, m.PolygonOffsetUnits)
}
